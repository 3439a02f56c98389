package grid_world

import "fmt"

// State is a grid cell position. Y is the row index and grows downward, so (0,0) is the
// cell printed at the top left of the console; this matches the svg orientation of the views.
type State struct {
	X, Y int
}

func (s State) String() string {
	return fmt.Sprintf("(%d,%d)", s.X, s.Y)
}

// Action is one of the four compass moves.
type Action int

const (
	UP Action = iota
	RIGHT
	DOWN
	LEFT
)

// Actions is the fixed action enumeration. Its order is the order in which the solvers
// evaluate candidates, and therefore decides exact ties.
var Actions = []Action{UP, RIGHT, DOWN, LEFT}

// displacement per action, indexed by Action
var moves = [...]State{
	UP:    {X: 0, Y: -1},
	RIGHT: {X: 1, Y: 0},
	DOWN:  {X: 0, Y: 1},
	LEFT:  {X: -1, Y: 0},
}

func (a Action) String() string {
	switch a {
	case UP:
		return "up"
	case RIGHT:
		return "right"
	case DOWN:
		return "down"
	case LEFT:
		return "left"
	}
	return fmt.Sprintf("action(%d)", int(a))
}

// Arrow returns a rune pointing in the direction of the action, for console views.
func (a Action) Arrow() rune {
	switch a {
	case UP:
		return '^'
	case RIGHT:
		return '>'
	case DOWN:
		return 'v'
	case LEFT:
		return '<'
	}
	return '?'
}

// Degrees returns the clockwise rotation of an upward arrow that points along the action.
func (a Action) Degrees() int {
	return int(a) * 90
}

// ParseAction is the inverse of Action.String.
func ParseAction(name string) (Action, error) {
	for _, a := range Actions {
		if a.String() == name {
			return a, nil
		}
	}
	return UP, fmt.Errorf("unknown action %q", name)
}

func (a Action) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Action) UnmarshalText(text []byte) (err error) {
	*a, err = ParseAction(string(text))
	return
}

// StateSet is a set of grid cells, used for walls and obstacles.
type StateSet map[State]struct{}

func NewStateSet(states ...State) StateSet {
	set := make(StateSet, len(states))
	for _, s := range states {
		set[s] = struct{}{}
	}
	return set
}

// Contains is safe on a nil set.
func (set StateSet) Contains(s State) bool {
	_, ok := set[s]
	return ok
}

func (set StateSet) Add(s State) {
	set[s] = struct{}{}
}

// Config describes a deterministic grid MDP. Walls and obstacles are expected to be disjoint,
// and the goal is expected not to be a wall, but neither is enforced here; see Validate.
type Config struct {
	Rows, Cols int
	// Gamma is the discount factor in (0,1].
	Gamma     float64
	Goal      State
	Walls     StateSet
	Obstacles StateSet

	// Rewards
	StepReward     float64
	GoalReward     float64
	ObstacleReward float64
}

const (
	DEFAULT_GAMMA           = 0.9
	DEFAULT_STEP_REWARD     = -1.0
	DEFAULT_GOAL_REWARD     = 0.0
	DEFAULT_OBSTACLE_REWARD = -5.0
)

// DefaultConfig returns an open grid with the standard step/goal/obstacle reward scheme.
func DefaultConfig(rows, cols int, goal State) *Config {
	return &Config{
		Rows:           rows,
		Cols:           cols,
		Gamma:          DEFAULT_GAMMA,
		Goal:           goal,
		Walls:          NewStateSet(),
		Obstacles:      NewStateSet(),
		StepReward:     DEFAULT_STEP_REWARD,
		GoalReward:     DEFAULT_GOAL_REWARD,
		ObstacleReward: DEFAULT_OBSTACLE_REWARD,
	}
}

// InBounds reports whether s lies on the grid.
func (cfg *Config) InBounds(s State) bool {
	return s.X >= 0 && s.X < cfg.Cols && s.Y >= 0 && s.Y < cfg.Rows
}

func (cfg *Config) IsWall(s State) bool {
	return cfg.Walls.Contains(s)
}

func (cfg *Config) IsObstacle(s State) bool {
	return cfg.Obstacles.Contains(s)
}

// Step is the deterministic transition function: taking action a in state s yields the
// successor, the reward for the move, and whether the move ended the episode.
// Moves off the grid or into a wall leave the agent in place and cost a normal step.
// The goal is absorbing: stepping from it returns the goal with zero reward.
func Step(cfg *Config, s State, a Action) (next State, reward float64, done bool) {
	if s == cfg.Goal {
		return s, 0, true
	}

	next = State{X: s.X + moves[a].X, Y: s.Y + moves[a].Y}
	if !cfg.InBounds(next) || cfg.IsWall(next) {
		next = s
	}

	switch {
	case next == cfg.Goal:
		return next, cfg.GoalReward, true
	case cfg.IsObstacle(next):
		return next, cfg.ObstacleReward, false
	}
	return next, cfg.StepReward, false
}

// InteriorStates returns every non-wall cell of a cols x rows grid in row-major order
// (top row first, left to right). This is the sweep order of the solvers.
// Negative dimensions are treated as an empty grid.
func InteriorStates(cols, rows int, walls StateSet) (states []State) {
	states = make([]State, 0, max(cols, 0)*max(rows, 0))
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			s := State{X: x, Y: y}
			if !walls.Contains(s) {
				states = append(states, s)
			}
		}
	}
	return
}

// Manhattan returns the L1 grid distance between two cells.
func Manhattan(a, b State) int {
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}

func abs(i int) int {
	if i < 0 {
		return -i
	}
	return i
}

// Visit calls fn for every cell of the grid, walls included, in row-major order.
func Visit(cfg *Config, fn func(s State)) {
	for y := 0; y < cfg.Rows; y++ {
		for x := 0; x < cfg.Cols; x++ {
			fn(State{X: x, Y: y})
		}
	}
}
