/*
Gridplan solves deterministic grid worlds by dynamic programming: value iteration and policy
iteration over a grid of open cells, walls, obstacles and a single absorbing goal. Solves can be
printed to the console, compared against each other, or watched converge in a browser.
*/

package main

import (
	"fmt"
	"os"

	. "gridplan/grid_world"
	"gridplan/reinforcement"

	"github.com/spf13/cobra"
)

var (
	configPath string
	algorithm  string
	theta      float64
	seed       uint64
	dbg        bool
	noColor    bool
	quiet      bool
)

func RootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "gridplan",
		Short:         "Solve grid worlds by value and policy iteration",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a solver config yaml; defaults to the built-in grids")
	cmd.PersistentFlags().StringVar(&algorithm, "algorithm", "", "Override the configured algorithm: vi or pi")
	cmd.PersistentFlags().Float64Var(&theta, "theta", 0, "Override the convergence threshold")
	cmd.PersistentFlags().Uint64Var(&seed, "seed", 0, "Seed for policy iteration's initial policy")
	cmd.PersistentFlags().BoolVar(&dbg, "debug", false, "Use the small debug grid when no config is given")
	cmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	cmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "Do not print live solver progress")

	cmd.AddCommand(
		solveCommand(),
		compareCommand(),
		serveCommand(),
	)
	return cmd
}

// loadConfig reads the config file, if any, and applies flag overrides.
func loadConfig(cmd *cobra.Command) (config *reinforcement.SolverConfig, err error) {
	if configPath != "" {
		if config, err = reinforcement.FromYaml(configPath); err != nil {
			return nil, err
		}
	} else {
		config = reinforcement.DefaultSolverConfig()
		if !dbg {
			config.Grid.Layout = PuddleGrid
		}
	}

	flags := cmd.Flags()
	if flags.Changed("algorithm") {
		if config.Algorithm, err = reinforcement.ParseAlgorithm(algorithm); err != nil {
			return nil, err
		}
	}
	if flags.Changed("theta") {
		config.SetHyperParam("theta", theta)
	}
	if flags.Changed("seed") {
		s := seed
		config.Seed = &s
	}
	return config, nil
}

// loadGrid builds and validates the configured grid.
func loadGrid(config *reinforcement.SolverConfig) (*Config, error) {
	grid, err := config.GridConfig()
	if err != nil {
		return nil, err
	}
	if err = Validate(grid); err != nil {
		return nil, err
	}
	return grid, nil
}

func main() {
	if err := RootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
