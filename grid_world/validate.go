package grid_world

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid grid config")

// Validate checks a config for the malformations the solvers silently tolerate: bad dimensions,
// a discount outside (0,1], a goal that is off-grid or inside a wall, and a goal that cannot be
// reached from some open cell. The solvers never call this; the CLI and server do.
func Validate(cfg *Config) error {
	if cfg.Rows <= 0 || cfg.Cols <= 0 {
		return fmt.Errorf("dimensions must be positive, got %dx%d: %w", cfg.Cols, cfg.Rows, ErrInvalidConfig)
	}
	if cfg.Gamma <= 0 || cfg.Gamma > 1 {
		return fmt.Errorf("gamma must be in (0,1], got %v: %w", cfg.Gamma, ErrInvalidConfig)
	}
	if !cfg.InBounds(cfg.Goal) {
		return fmt.Errorf("goal %v is off the %dx%d grid: %w", cfg.Goal, cfg.Cols, cfg.Rows, ErrInvalidConfig)
	}
	if cfg.IsWall(cfg.Goal) {
		return fmt.Errorf("goal %v is a wall: %w", cfg.Goal, ErrInvalidConfig)
	}

	reached := reachable(cfg)
	for _, s := range InteriorStates(cfg.Cols, cfg.Rows, cfg.Walls) {
		if !reached.Contains(s) {
			return fmt.Errorf("goal unreachable from %v: %w", s, ErrInvalidConfig)
		}
	}
	return nil
}

// reachable runs a breadth-first search backward from the goal. Moves are symmetric on the grid,
// so the cells reached are those from which the goal is reachable.
func reachable(cfg *Config) StateSet {
	seen := NewStateSet(cfg.Goal)
	frontier := []State{cfg.Goal}
	for len(frontier) > 0 {
		s := frontier[0]
		frontier = frontier[1:]
		for _, a := range Actions {
			next := State{X: s.X + moves[a].X, Y: s.Y + moves[a].Y}
			if !cfg.InBounds(next) || cfg.IsWall(next) || seen.Contains(next) {
				continue
			}
			seen.Add(next)
			frontier = append(frontier, next)
		}
	}
	return seen
}
