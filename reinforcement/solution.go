package reinforcement

import (
	. "gridplan/grid_world"
)

// ValueFunction is an immutable snapshot of state values, one per arena entry.
type ValueFunction struct {
	table  *stateTable
	values []float64
}

func newValueFunction(table *stateTable, values []float64) *ValueFunction {
	return &ValueFunction{
		table:  table,
		values: append([]float64(nil), values...),
	}
}

// Value returns V(s), or 0 for states outside the domain.
func (vf *ValueFunction) Value(s State) float64 {
	return vf.table.valueOf(vf.values, s)
}

// Lookup returns V(s) and whether s is in the domain.
func (vf *ValueFunction) Lookup(s State) (float64, bool) {
	if i, ok := vf.table.index(s); ok {
		return vf.values[i], true
	}
	return 0, false
}

// States returns the domain in sweep order.
func (vf *ValueFunction) States() []State {
	return append([]State(nil), vf.table.states...)
}

// Slice returns the values in the order of States.
func (vf *ValueFunction) Slice() []float64 {
	return append([]float64(nil), vf.values...)
}

func (vf *ValueFunction) Map() map[State]float64 {
	m := make(map[State]float64, len(vf.values))
	for i, s := range vf.table.states {
		m[s] = vf.values[i]
	}
	return m
}

func (vf *ValueFunction) Len() int {
	return len(vf.values)
}

// Policy is an immutable snapshot of a deterministic policy. The goal's entry is a placeholder.
type Policy struct {
	table   *stateTable
	actions []Action
}

func newPolicy(table *stateTable, actions []Action) *Policy {
	return &Policy{
		table:   table,
		actions: append([]Action(nil), actions...),
	}
}

// Action returns π(s) and whether s is in the domain.
func (p *Policy) Action(s State) (Action, bool) {
	if i, ok := p.table.index(s); ok {
		return p.actions[i], true
	}
	return UP, false
}

func (p *Policy) States() []State {
	return append([]State(nil), p.table.states...)
}

func (p *Policy) Map() map[State]Action {
	m := make(map[State]Action, len(p.actions))
	for i, s := range p.table.states {
		m[s] = p.actions[i]
	}
	return m
}

func (p *Policy) Len() int {
	return len(p.actions)
}

// Solution is the output of one solver invocation.
type Solution struct {
	Values *ValueFunction
	Policy *Policy
	// Sweeps counts value sweeps: Bellman-optimality sweeps for value iteration, evaluation
	// sweeps summed over every evaluation phase for policy iteration.
	Sweeps int
	// Deltas holds the max absolute value change of each sweep, in order.
	Deltas []float64
	// Converged is false when an iteration cap was hit before the stopping criterion.
	// For policy iteration it reports a stable policy.
	Converged bool
	// Improvements counts policy-improvement phases; always zero for value iteration.
	Improvements int
}
