package reinforcement

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	. "gridplan/grid_world"

	. "github.com/smartystreets/goconvey/convey"
)

const testSolverYaml = `kind: solver
def:
  algorithm: pi
  maxIters: 50
  maxEvalIters: 200
  seed: 7
  hyperparams:
    - key: theta
      val: 0.0001
    - key: gamma
      val: 0.95
  grid:
    obstacleReward: -3
    layout:
      - "ooo"
      - "oXo"
      - "oo+"
`

func writeConfig(t *testing.T, contents string) string {
	path := filepath.Join(t.TempDir(), "solver.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseAlgorithm(t *testing.T) {
	Convey("Algorithm names parse in full and abbreviated form", t, func() {
		for name, expected := range map[string]Algorithm{
			"vi":                 VALUE_ITERATION,
			"VI":                 VALUE_ITERATION,
			"value_iteration":    VALUE_ITERATION,
			"":                   VALUE_ITERATION,
			"pi":                 POLICY_ITERATION,
			" policy_iteration ": POLICY_ITERATION,
		} {
			alg, err := ParseAlgorithm(name)
			So(err, ShouldBeNil)
			So(alg, ShouldEqual, expected)
		}

		_, err := ParseAlgorithm("q_learning")
		So(errors.Is(err, ErrUnknownAlgorithm), ShouldBeTrue)
	})
}

func TestFromYaml(t *testing.T) {
	Convey("Given a solver config file", t, func() {
		cfg, err := FromYaml(writeConfig(t, testSolverYaml))
		So(err, ShouldBeNil)

		Convey("Keys are read regardless of case", func() {
			So(cfg.Algorithm, ShouldEqual, POLICY_ITERATION)
			So(cfg.MaxIters, ShouldEqual, 50)
			So(cfg.MaxEvalIters, ShouldEqual, 200)
			So(cfg.Seed, ShouldNotBeNil)
			So(*cfg.Seed, ShouldEqual, uint64(7))
			So(cfg.Theta(), ShouldEqual, 0.0001)
		})

		Convey("The grid carries its layout, gamma and reward overrides", func() {
			grid, err := cfg.GridConfig()
			So(err, ShouldBeNil)
			So(grid.Rows, ShouldEqual, 3)
			So(grid.Cols, ShouldEqual, 3)
			So(grid.Goal, ShouldResemble, State{X: 2, Y: 2})
			So(grid.IsObstacle(State{X: 1, Y: 1}), ShouldBeTrue)
			So(grid.Gamma, ShouldEqual, 0.95)
			So(grid.ObstacleReward, ShouldEqual, -3.0)
			So(grid.StepReward, ShouldEqual, DEFAULT_STEP_REWARD)
		})

		Convey("Solving dispatches to the configured algorithm", func() {
			grid, err := cfg.GridConfig()
			So(err, ShouldBeNil)

			var algorithms []Algorithm
			sol, err := cfg.Solve(grid, func(p Progress) {
				algorithms = append(algorithms, p.Algorithm)
			})
			So(err, ShouldBeNil)
			So(sol.Converged, ShouldBeTrue)
			So(sol.Improvements, ShouldBeGreaterThan, 0)
			So(algorithms, ShouldNotBeEmpty)
			for _, alg := range algorithms {
				So(alg, ShouldEqual, POLICY_ITERATION)
			}
		})
	})

	Convey("Unsupported documents are rejected", t, func() {
		_, err := FromYaml(writeConfig(t, "kind: agent\ndef:\n  algorithm: vi\n"))
		So(err, ShouldNotBeNil)

		_, err = FromYaml(writeConfig(t, "kind: solver\ndef:\n  algorithm: sarsa\n"))
		So(errors.Is(err, ErrUnknownAlgorithm), ShouldBeTrue)

		_, err = FromYaml(filepath.Join(t.TempDir(), "missing.yaml"))
		So(err, ShouldNotBeNil)
	})
}

func TestSolverConfig(t *testing.T) {
	Convey("Given the default solver config", t, func() {
		cfg := DefaultSolverConfig()

		Convey("It solves the debug grid by value iteration", func() {
			grid, err := cfg.GridConfig()
			So(err, ShouldBeNil)
			So(grid.Goal, ShouldResemble, State{X: 3, Y: 3})

			sol, err := cfg.Solve(grid, nil)
			So(err, ShouldBeNil)
			So(sol.Converged, ShouldBeTrue)
			So(sol.Improvements, ShouldEqual, 0)
		})

		Convey("Hyper parameters are overwritten in place", func() {
			cfg.SetHyperParam("theta", 0.1)
			cfg.SetHyperParam("THETA", 0.01)
			So(len(cfg.HyperParams), ShouldEqual, 1)
			So(cfg.Theta(), ShouldEqual, 0.01)
			So(cfg.GetHyperParamOrDefault("gamma", 0.5), ShouldEqual, 0.5)
		})

		Convey("An unseeded config has no source", func() {
			So(cfg.Source(), ShouldBeNil)
			seed := uint64(3)
			cfg.Seed = &seed
			So(cfg.Source(), ShouldNotBeNil)
		})

		Convey("A bad layout surfaces the layout error", func() {
			cfg.Grid.Layout = []string{"oo", "o"}
			_, err := cfg.GridConfig()
			So(errors.Is(err, ErrInvalidConfig), ShouldBeTrue)
		})
	})
}
