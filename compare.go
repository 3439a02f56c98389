package main

import (
	"context"
	"errors"
	"fmt"

	. "gridplan/grid_world"
	"gridplan/charts"
	"gridplan/reinforcement"

	"github.com/logrusorgru/aurora"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// comparison holds the two solutions of the same grid.
type comparison struct {
	vi, pi   *reinforcement.Solution
	piErr    error
	distance float64
	differ   []State
}

// compareSolvers runs value and policy iteration on grid concurrently.
// An unstable policy is kept as a best-effort solution; other failures abort.
func compareSolvers(
	ctx context.Context,
	config *reinforcement.SolverConfig,
	grid *Config,
	viProgress, piProgress reinforcement.ProgressFunc,
) (cmp *comparison, err error) {
	cmp = &comparison{}
	viConfig, piConfig := *config, *config
	viConfig.Algorithm = reinforcement.VALUE_ITERATION
	piConfig.Algorithm = reinforcement.POLICY_ITERATION

	group, _ := errgroup.WithContext(ctx)
	group.Go(func() (solveErr error) {
		cmp.vi, solveErr = viConfig.Solve(grid, viProgress)
		return
	})
	group.Go(func() (solveErr error) {
		cmp.pi, solveErr = piConfig.Solve(grid, piProgress)
		if errors.Is(solveErr, reinforcement.ErrPolicyUnstable) {
			cmp.piErr, solveErr = solveErr, nil
		}
		return
	})
	if err = group.Wait(); err != nil {
		return nil, err
	}

	cmp.distance = reinforcement.MaxDistance(cmp.vi.Values, cmp.pi.Values)
	cmp.differ = reinforcement.Disagreements(cmp.vi.Policy, cmp.pi.Policy)
	return
}

func compareCommand() *cobra.Command {
	var chartPath string
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Solve the configured grid by both algorithms and compare the results",
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

			var viProgress, piProgress reinforcement.ProgressFunc
			var printer *statusPrinter
			if !quiet {
				printer = newStatusPrinter(cmd.ErrOrStderr(), statusRefresh)
				viProgress = printer.Track(string(reinforcement.VALUE_ITERATION))
				piProgress = printer.Track(string(reinforcement.POLICY_ITERATION))
				printer.Start()
			}
			cmp, err := compareSolvers(cmd.Context(), config, grid, viProgress, piProgress)
			if printer != nil {
				printer.Stop()
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			au := aurora.NewAurora(!noColor)
			ShowGrid(out, grid, au)
			report(out, au, grid, reinforcement.VALUE_ITERATION, cmp.vi)
			report(out, au, grid, reinforcement.POLICY_ITERATION, cmp.pi)
			if cmp.piErr != nil {
				fmt.Fprintln(out, au.Yellow(cmp.piErr.Error()))
			}

			fmt.Fprintf(out, "max value distance: %.3g\n", cmp.distance)
			if len(cmp.differ) == 0 {
				fmt.Fprintln(out, au.Green("policies agree"))
			} else {
				fmt.Fprintf(out, "%s %v\n", au.Yellow("policies differ at"), cmp.differ)
			}

			if chartPath != "" {
				return writeChart(chartPath,
					charts.FromSolution(string(reinforcement.VALUE_ITERATION), cmp.vi),
					charts.FromSolution(string(reinforcement.POLICY_ITERATION), cmp.pi))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&chartPath, "chart", "", "Write a convergence chart of both solves to this html file")
	return cmd
}
