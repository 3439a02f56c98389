package reinforcement

import (
	"math"

	. "gridplan/grid_world"
)

const (
	DEFAULT_THETA          = 1e-6
	DEFAULT_MAX_ITERS      = 10_000
	DEFAULT_MAX_EVAL_ITERS = 10_000
)

// ValueIterationBuilder configures a value iteration solve.
type ValueIterationBuilder struct {
	cfg      *Config
	initial  *ValueFunction
	selector ActionSelector
	progress ProgressFunc
}

// NewValueIteration returns a builder for solving cfg by value iteration.
func NewValueIteration(cfg *Config) *ValueIterationBuilder {
	return &ValueIterationBuilder{
		cfg:      cfg,
		selector: DefaultTieBreak,
	}
}

// WithInitialValues warm-starts the sweeps from a previous solution's values.
// States the previous solution lacks start at 0; the goal is pinned to 0 regardless.
func (vb *ValueIterationBuilder) WithInitialValues(v *ValueFunction) *ValueIterationBuilder {
	vb.initial = v
	return vb
}

// WithProgress registers a callback invoked after every sweep and once on completion.
func (vb *ValueIterationBuilder) WithProgress(fn ProgressFunc) *ValueIterationBuilder {
	vb.progress = fn
	return vb
}

// ValueIteration computes V* and a greedy policy by full-sweep Bellman optimality backups,
// stopping once the largest change of a sweep falls below theta or after maxIters sweeps.
// Hitting the cap is not an error: the best values so far are returned with Converged false.
func ValueIteration(cfg *Config, theta float64, maxIters int) *Solution {
	return NewValueIteration(cfg).Solve(theta, maxIters)
}

// Solve runs value iteration. Sweeps update values in place, in the fixed sweep order of the
// state table, so later states in a sweep already see this sweep's earlier updates.
func (vb *ValueIterationBuilder) Solve(theta float64, maxIters int) (sol *Solution) {
	cfg := vb.cfg
	table := newStateTable(cfg)
	v := initialValues(table, vb.initial)

	sol = &Solution{}
	buf := make([]Candidate, 0, len(Actions))
	for iter := 0; iter < maxIters; iter++ {
		delta := 0.0
		for i, s := range table.states {
			if i == table.goal {
				continue
			}
			old := v[i]
			buf = lookahead(cfg, table, v, s, buf)
			v[i] = vb.selector.Select(UP, buf).Value
			delta = math.Max(delta, math.Abs(old-v[i]))
		}

		sol.Sweeps++
		sol.Deltas = append(sol.Deltas, delta)
		if vb.progress != nil {
			vb.report(Progress{
				Phase:  PHASE_VALUE_SWEEP,
				Sweep:  sol.Sweeps,
				Delta:  delta,
				Values: newValueFunction(table, v),
			})
		}

		if delta < theta {
			sol.Converged = true
			break
		}
	}

	sol.Values = newValueFunction(table, v)
	sol.Policy = greedyPolicy(cfg, table, v, vb.selector)
	vb.report(Progress{
		Phase:  PHASE_DONE,
		Sweep:  sol.Sweeps,
		Delta:  lastDelta(sol.Deltas),
		Values: sol.Values,
		Policy: sol.Policy,
	})
	return
}

func (vb *ValueIterationBuilder) report(p Progress) {
	if vb.progress != nil {
		p.Algorithm = VALUE_ITERATION
		vb.progress(p)
	}
}

// greedyPolicy extracts a policy by one-step lookahead against v, using the same selector as
// the sweeps. The goal gets the placeholder action.
func greedyPolicy(
	cfg *Config,
	table *stateTable,
	v []float64,
	selector ActionSelector,
) *Policy {
	actions := make([]Action, table.len())
	buf := make([]Candidate, 0, len(Actions))
	for i, s := range table.states {
		if i == table.goal {
			actions[i] = UP
			continue
		}
		buf = lookahead(cfg, table, v, s, buf)
		actions[i] = selector.Select(UP, buf).Action
	}
	return newPolicy(table, actions)
}

// initialValues builds a value arena, all zero or copied from a warm start. The goal is always 0.
func initialValues(table *stateTable, warm *ValueFunction) []float64 {
	v := make([]float64, table.len())
	if warm != nil {
		for i, s := range table.states {
			v[i], _ = warm.Lookup(s)
		}
	}
	v[table.goal] = 0
	return v
}

func lastDelta(deltas []float64) float64 {
	if len(deltas) == 0 {
		return 0
	}
	return deltas[len(deltas)-1]
}
