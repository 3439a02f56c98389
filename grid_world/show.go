package grid_world

import (
	"fmt"
	"io"

	"github.com/logrusorgru/aurora"
)

// ValueFn and PolicyFn let the console views read solver output without this package
// depending on the solvers. The bool is false for cells the solver holds no entry for.
type (
	ValueFn  func(State) (float64, bool)
	PolicyFn func(State) (Action, bool)
)

// Show the grid layout, for visual reference.
func ShowGrid(w io.Writer, cfg *Config, au aurora.Aurora) {
	for y := 0; y < cfg.Rows; y++ {
		for x := 0; x < cfg.Cols; x++ {
			s := State{X: x, Y: y}
			fmt.Fprint(w, colorize(au, cfg, s, string(cfg.CellType(s))), " ")
		}
		fmt.Fprintln(w)
	}
}

// Show the value of every cell. Walls and cells without a value print as dashes.
func ShowValues(w io.Writer, cfg *Config, values ValueFn, au aurora.Aurora) {
	total := 0.0
	for y := 0; y < cfg.Rows; y++ {
		fmt.Fprint(w, " ")
		for x := 0; x < cfg.Cols; x++ {
			s := State{X: x, Y: y}
			val, ok := values(s)
			if !ok || cfg.IsWall(s) {
				fmt.Fprint(w, colorize(au, cfg, s, fmt.Sprintf("%7s ", "-")))
				continue
			}
			total += val
			fmt.Fprint(w, colorize(au, cfg, s, fmt.Sprintf("%7.2f ", val)))
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "Total: %.2f\n", total)
}

// Show the policy as one arrow per cell. The goal prints as its layout rune since its
// action is a placeholder that is never executed.
func ShowPolicy(w io.Writer, cfg *Config, policy PolicyFn, au aurora.Aurora) {
	for y := 0; y < cfg.Rows; y++ {
		fmt.Fprint(w, " ")
		for x := 0; x < cfg.Cols; x++ {
			s := State{X: x, Y: y}
			cell := string(cfg.CellType(s))
			if a, ok := policy(s); ok && s != cfg.Goal && !cfg.IsWall(s) {
				cell = string(a.Arrow())
			}
			fmt.Fprint(w, colorize(au, cfg, s, cell), " ")
		}
		fmt.Fprintln(w)
	}
}

func colorize(au aurora.Aurora, cfg *Config, s State, text string) aurora.Value {
	switch cfg.CellType(s) {
	case WALL:
		return au.Blue(text)
	case GOAL:
		return au.Bold(au.Green(text))
	case OBSTACLE:
		return au.Red(text)
	}
	return au.Cyan(text)
}
