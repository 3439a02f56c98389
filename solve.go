package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	. "gridplan/grid_world"
	"gridplan/charts"
	"gridplan/reinforcement"

	"github.com/logrusorgru/aurora"
	"github.com/spf13/cobra"
)

func solveCommand() *cobra.Command {
	var chartPath string
	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Solve the configured grid and print its values and policy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			var config *reinforcement.SolverConfig
			if config, err = loadConfig(cmd); err != nil {
				return
			}
			var grid *Config
			if grid, err = loadGrid(config); err != nil {
				return
			}

			out := cmd.OutOrStdout()
			au := aurora.NewAurora(!noColor)
			ShowGrid(out, grid, au)

			var progress reinforcement.ProgressFunc
			var printer *statusPrinter
			if !quiet {
				printer = newStatusPrinter(cmd.ErrOrStderr(), statusRefresh)
				progress = printer.Track(string(config.Algorithm))
				printer.Start()
			}
			sol, solveErr := config.Solve(grid, progress)
			if printer != nil {
				printer.Stop()
			}
			if solveErr != nil && !errors.Is(solveErr, reinforcement.ErrPolicyUnstable) {
				return solveErr
			}

			report(out, au, grid, config.Algorithm, sol)
			if solveErr != nil {
				fmt.Fprintln(out, au.Yellow(solveErr.Error()))
			}

			if chartPath != "" {
				return writeChart(chartPath, charts.FromSolution(string(config.Algorithm), sol))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&chartPath, "chart", "", "Write a convergence chart to this html file")
	return cmd
}

// report prints a solution summary followed by its values and policy.
func report(
	w io.Writer,
	au aurora.Aurora,
	grid *Config,
	algorithm reinforcement.Algorithm,
	sol *reinforcement.Solution,
) {
	status := au.Green("converged")
	if !sol.Converged {
		status = au.Red("not converged")
	}
	fmt.Fprintf(w, "%s: %s after %d sweeps, %d improvements, residual %.3g\n",
		au.Bold(algorithm), status, sol.Sweeps, sol.Improvements, reinforcement.Residual(grid, sol.Values))
	ShowValues(w, grid, sol.Values.Lookup, au)
	ShowPolicy(w, grid, sol.Policy.Action, au)
}

func writeChart(path string, series ...charts.Series) (err error) {
	var f *os.File
	if f, err = os.Create(path); err != nil {
		return fmt.Errorf("chart: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
	}()
	return charts.Convergence(f, series...)
}
