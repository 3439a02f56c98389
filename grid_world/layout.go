package grid_world

import (
	"errors"
	"fmt"
)

const (
	// Layout cell types
	WALL     = 'W'
	OPEN     = 'o'
	GOAL     = '+'
	OBSTACLE = 'X'
)

// Some stock layouts. The debug grid is the 4x4 open grid with the goal at the bottom right.
var (
	DebugGrid []string = []string{
		"oooo",
		"oooo",
		"oooo",
		"ooo+",
	}

	PuddleGrid []string = []string{
		"oooooooo",
		"oWWWoooo",
		"ooXXooWo",
		"ooXXooWo",
		"ooooooW+",
		"oWWWoooo",
	}
)

var ErrNoGoal = errors.New("layout has no goal cell")

// FromLayout converts a layout of strings into a grid config, one string per row, top row first.
// Rewards and gamma are the defaults of DefaultConfig; callers override them as needed.
func FromLayout(layout []string) (cfg *Config, err error) {
	if len(layout) == 0 || len(layout[0]) == 0 {
		return nil, fmt.Errorf("layout: %w", ErrInvalidConfig)
	}

	rows, cols := len(layout), len(layout[0])
	cfg = DefaultConfig(rows, cols, State{})
	goals := 0
	for y, row := range layout {
		if len(row) != cols {
			return nil, fmt.Errorf("layout: row %d has %d cells, expected %d: %w", y, len(row), cols, ErrInvalidConfig)
		}
		for x, cell := range row {
			s := State{X: x, Y: y}
			switch cell {
			case WALL:
				cfg.Walls.Add(s)
			case OBSTACLE:
				cfg.Obstacles.Add(s)
			case GOAL:
				cfg.Goal = s
				goals++
			case OPEN:
			default:
				return nil, fmt.Errorf("layout: invalid cell %q at (%d,%d): %w", cell, x, y, ErrInvalidConfig)
			}
		}
	}

	if goals == 0 {
		return nil, ErrNoGoal
	}
	if goals > 1 {
		return nil, fmt.Errorf("layout: %d goal cells, expected one: %w", goals, ErrInvalidConfig)
	}
	return cfg, nil
}

// CellType returns the layout rune of a cell.
func (cfg *Config) CellType(s State) rune {
	switch {
	case s == cfg.Goal:
		return GOAL
	case cfg.IsWall(s):
		return WALL
	case cfg.IsObstacle(s):
		return OBSTACLE
	}
	return OPEN
}

// Layout is the inverse of FromLayout.
func (cfg *Config) Layout() []string {
	layout := make([]string, cfg.Rows)
	for y := 0; y < cfg.Rows; y++ {
		row := make([]rune, cfg.Cols)
		for x := 0; x < cfg.Cols; x++ {
			row[x] = cfg.CellType(State{X: x, Y: y})
		}
		layout[y] = string(row)
	}
	return layout
}
