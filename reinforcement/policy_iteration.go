package reinforcement

import (
	"errors"
	"fmt"
	"math"
	"time"

	. "gridplan/grid_world"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/sampleuv"
)

// DefaultMaxImprovements caps the policy iteration outer loop.
const DefaultMaxImprovements = 1000

// ErrPolicyUnstable is returned alongside a best-effort solution when policy iteration
// exhausts its improvement cap while the policy is still changing.
var ErrPolicyUnstable = errors.New("policy iteration: policy not stable within improvement cap")

// PolicyIterationBuilder configures a policy iteration solve.
type PolicyIterationBuilder struct {
	cfg             *Config
	src             rand.Source
	initialPolicy   *Policy
	initialValues   *ValueFunction
	maxImprovements int
	selector        ActionSelector
	progress        ProgressFunc
}

// NewPolicyIteration returns a builder for solving cfg by policy iteration. The source drives
// the arbitrary initial policy; pass a seeded source for reproducible policies. A nil source
// is replaced by a time-seeded one.
func NewPolicyIteration(cfg *Config, src rand.Source) *PolicyIterationBuilder {
	if src == nil {
		src = rand.NewSource(uint64(time.Now().UnixNano()))
	}
	return &PolicyIterationBuilder{
		cfg:             cfg,
		src:             src,
		maxImprovements: DefaultMaxImprovements,
		selector:        DefaultBiasedScore,
	}
}

// WithInitialPolicy starts from a previous policy instead of a random one.
// States the previous policy lacks still draw a random action.
func (pb *PolicyIterationBuilder) WithInitialPolicy(p *Policy) *PolicyIterationBuilder {
	pb.initialPolicy = p
	return pb
}

// WithInitialValues warm-starts the first evaluation phase.
func (pb *PolicyIterationBuilder) WithInitialValues(v *ValueFunction) *PolicyIterationBuilder {
	pb.initialValues = v
	return pb
}

// WithMaxImprovements sets the outer loop cap; n <= 0 restores the default.
func (pb *PolicyIterationBuilder) WithMaxImprovements(n int) *PolicyIterationBuilder {
	if n <= 0 {
		n = DefaultMaxImprovements
	}
	pb.maxImprovements = n
	return pb
}

// WithProgress registers a callback invoked after every evaluation sweep, every improvement
// phase, and once on completion.
func (pb *PolicyIterationBuilder) WithProgress(fn ProgressFunc) *PolicyIterationBuilder {
	pb.progress = fn
	return pb
}

// PolicyIteration computes V* and π* by alternating iterative policy evaluation (at most
// maxEvalIters sweeps per phase, stopping once a sweep changes no value by theta or more)
// and greedy policy improvement, until no state's action changes.
func PolicyIteration(cfg *Config, theta float64, maxEvalIters int, src rand.Source) (*Solution, error) {
	return NewPolicyIteration(cfg, src).Solve(theta, maxEvalIters)
}

// Solve runs policy iteration. If the improvement cap is reached with the policy still
// changing, the latest values and policy are returned together with ErrPolicyUnstable.
func (pb *PolicyIterationBuilder) Solve(theta float64, maxEvalIters int) (sol *Solution, err error) {
	cfg := pb.cfg
	table := newStateTable(cfg)
	pi := pb.initialActions(table)
	v := initialValues(table, pb.initialValues)

	sol = &Solution{}
	buf := make([]Candidate, 0, len(Actions))
	for !sol.Converged && sol.Improvements < pb.maxImprovements {
		pb.evaluate(table, v, pi, theta, maxEvalIters, sol)

		// improvement
		stable := true
		for i, s := range table.states {
			if i == table.goal {
				continue
			}
			old := pi[i]
			buf = lookahead(cfg, table, v, s, buf)
			pi[i] = pb.selector.Select(old, buf).Action
			if pi[i] != old {
				stable = false
			}
		}
		sol.Improvements++
		sol.Converged = stable

		if pb.progress != nil {
			pb.report(Progress{
				Phase:       PHASE_IMPROVEMENT,
				Sweep:       sol.Sweeps,
				Improvement: sol.Improvements,
				Delta:       lastDelta(sol.Deltas),
				Values:      newValueFunction(table, v),
				Policy:      newPolicy(table, pi),
			})
		}
	}

	sol.Values = newValueFunction(table, v)
	sol.Policy = newPolicy(table, pi)
	pb.report(Progress{
		Phase:       PHASE_DONE,
		Sweep:       sol.Sweeps,
		Improvement: sol.Improvements,
		Delta:       lastDelta(sol.Deltas),
		Values:      sol.Values,
		Policy:      sol.Policy,
	})

	if !sol.Converged {
		err = fmt.Errorf("after %d improvements: %w", sol.Improvements, ErrPolicyUnstable)
	}
	return
}

// evaluate runs one evaluation phase of the fixed policy pi, updating v in place.
func (pb *PolicyIterationBuilder) evaluate(
	table *stateTable,
	v []float64,
	pi []Action,
	theta float64,
	maxEvalIters int,
	sol *Solution,
) {
	for iter := 0; iter < maxEvalIters; iter++ {
		delta := 0.0
		for i, s := range table.states {
			if i == table.goal {
				continue
			}
			old := v[i]
			next, reward, done := Step(pb.cfg, s, pi[i])
			v[i] = backup(pb.cfg, table, v, next, reward, done)
			delta = math.Max(delta, math.Abs(old-v[i]))
		}

		sol.Sweeps++
		sol.Deltas = append(sol.Deltas, delta)
		if pb.progress != nil {
			pb.report(Progress{
				Phase:       PHASE_EVALUATION,
				Sweep:       sol.Sweeps,
				Improvement: sol.Improvements,
				Delta:       delta,
				Values:      newValueFunction(table, v),
				Policy:      newPolicy(table, pi),
			})
		}

		if delta < theta {
			return
		}
	}
}

// initialActions draws a uniformly random action for every state, except states covered by a
// warm-start policy. The goal gets the placeholder action.
func (pb *PolicyIterationBuilder) initialActions(table *stateTable) []Action {
	uniform := make([]float64, len(Actions))
	for i := range uniform {
		uniform[i] = 1
	}
	sampler := sampleuv.NewWeighted(uniform, pb.src)

	pi := make([]Action, table.len())
	for i, s := range table.states {
		if pb.initialPolicy != nil {
			if a, ok := pb.initialPolicy.Action(s); ok {
				pi[i] = a
				continue
			}
		}
		// Take samples without replacement; restore the drawn weight for the next state.
		idx, _ := sampler.Take()
		sampler.Reweight(idx, 1)
		pi[i] = Actions[idx]
	}
	pi[table.goal] = UP
	return pi
}

func (pb *PolicyIterationBuilder) report(p Progress) {
	if pb.progress != nil {
		p.Algorithm = POLICY_ITERATION
		pb.progress(p)
	}
}
