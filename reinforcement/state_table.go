package reinforcement

import (
	. "gridplan/grid_world"
)

// stateTable maps the static state set of a config onto dense arena indices, so that value
// functions and policies are flat slices swept in a fixed order rather than maps.
// The table is immutable once built and is shared by every snapshot taken from one solve.
type stateTable struct {
	states []State
	// cells maps x + y*cols to an arena index, -1 for walls.
	cells      []int
	rows, cols int
	goal       int
}

func newStateTable(cfg *Config) *stateTable {
	t := &stateTable{
		states: InteriorStates(cfg.Cols, cfg.Rows, cfg.Walls),
		rows:   max(cfg.Rows, 0),
		cols:   max(cfg.Cols, 0),
		goal:   -1,
	}

	t.cells = make([]int, t.rows*t.cols)
	for i := range t.cells {
		t.cells[i] = -1
	}
	for i, s := range t.states {
		t.cells[s.X+s.Y*t.cols] = i
		if s == cfg.Goal {
			t.goal = i
		}
	}

	// The goal always has an entry, even when it is malformed (walled or off-grid).
	if t.goal < 0 {
		t.goal = len(t.states)
		t.states = append(t.states, cfg.Goal)
		if t.inBounds(cfg.Goal) {
			t.cells[cfg.Goal.X+cfg.Goal.Y*t.cols] = t.goal
		}
	}
	return t
}

func (t *stateTable) inBounds(s State) bool {
	return s.X >= 0 && s.X < t.cols && s.Y >= 0 && s.Y < t.rows
}

// index returns the arena index of s, or false if s has no entry.
func (t *stateTable) index(s State) (int, bool) {
	if t.inBounds(s) {
		i := t.cells[s.X+s.Y*t.cols]
		return i, i >= 0
	}
	if s == t.states[t.goal] {
		return t.goal, true
	}
	return -1, false
}

// valueOf reads s from the value arena v. States without an entry are worth 0,
// the absorbing-boundary convention.
func (t *stateTable) valueOf(v []float64, s State) float64 {
	if i, ok := t.index(s); ok {
		return v[i]
	}
	return 0
}

func (t *stateTable) len() int {
	return len(t.states)
}
