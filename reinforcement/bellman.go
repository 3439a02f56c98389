package reinforcement

import (
	"math"

	. "gridplan/grid_world"

	"gonum.org/v1/gonum/floats"
)

// Residual returns the largest Bellman optimality residual of vf under cfg:
// max over non-goal states of |V(s) - max_a (r + gamma*V(s'))|. It is zero at the fixed point.
func Residual(cfg *Config, vf *ValueFunction) float64 {
	table := vf.table
	residuals := make([]float64, 0, table.len())
	buf := make([]Candidate, 0, len(Actions))
	for i, s := range table.states {
		if i == table.goal {
			continue
		}
		buf = lookahead(cfg, table, vf.values, s, buf)
		best := worstValue
		for _, c := range buf {
			best = math.Max(best, c.Value)
		}
		residuals = append(residuals, math.Abs(vf.values[i]-best))
	}
	if len(residuals) == 0 {
		return 0
	}
	return floats.Max(residuals)
}

// MaxDistance returns the sup-norm distance between two value functions over the union of their
// domains, with absent states read as 0.
func MaxDistance(a, b *ValueFunction) float64 {
	var xs, ys []float64
	for _, s := range a.table.states {
		xs = append(xs, a.Value(s))
		ys = append(ys, b.Value(s))
	}
	for _, s := range b.table.states {
		if _, ok := a.Lookup(s); !ok {
			xs = append(xs, 0)
			ys = append(ys, b.Value(s))
		}
	}
	if len(xs) == 0 {
		return 0
	}
	return floats.Distance(xs, ys, math.Inf(1))
}

// Disagreements returns the states, in a's order, where two policies choose different actions.
// States missing from either policy are skipped.
func Disagreements(a, b *Policy) (states []State) {
	for i, s := range a.table.states {
		if other, ok := b.Action(s); ok && other != a.actions[i] {
			states = append(states, s)
		}
	}
	return
}

// ActionGap returns how far the action chosen by p at each non-goal state falls short of the
// best raw lookahead under vf, maximized over states. An optimal policy has a gap near zero.
func ActionGap(cfg *Config, vf *ValueFunction, p *Policy) float64 {
	table := vf.table
	gap := 0.0
	buf := make([]Candidate, 0, len(Actions))
	for i, s := range table.states {
		if i == table.goal {
			continue
		}
		chosen, ok := p.Action(s)
		if !ok {
			continue
		}
		buf = lookahead(cfg, table, vf.values, s, buf)
		best := worstValue
		for _, c := range buf {
			best = math.Max(best, c.Value)
		}
		for _, c := range buf {
			if c.Action == chosen {
				gap = math.Max(gap, best-c.Value)
			}
		}
	}
	return gap
}
