// cell_views contains views derived from the Cell view-model.
package cell_views

import (
	. "gridplan/grid_world"
	"gridplan/reinforcement"
)

// Cell flattens a grid state and its current value and action into fields immediately usable
// as view parameters. Cells are indexed [x][y] with y growing downward, matching svg coordinates.
type Cell struct {
	X, Y  int
	Value float64
	// PolicyArrowRotation is the clockwise rotation in degrees of an upward arrow.
	PolicyArrowRotation int
	// PolicyArrowScale is 0 when the cell has no action to show: walls, the goal, or no policy yet.
	PolicyArrowScale int
	Fill             string
	Label            string
}

// Converter converts solver progress into cells for a fixed grid.
type Converter func(reinforcement.Progress) [][]Cell

// NewConverter returns a Converter for grid.
func NewConverter(grid *Config) Converter {
	return func(p reinforcement.Progress) [][]Cell {
		return Convert(grid, p.Values, p.Policy)
	}
}

// InitialCells returns the cells of grid before any solver progress: zero values, no arrows.
func InitialCells(grid *Config) [][]Cell {
	return Convert(grid, nil, nil)
}

// Convert builds the cells of grid from a value function and policy, either of which may be nil.
func Convert(
	grid *Config,
	values *reinforcement.ValueFunction,
	policy *reinforcement.Policy,
) (cells [][]Cell) {
	cells = make([][]Cell, grid.Cols)
	for x := range cells {
		cells[x] = make([]Cell, grid.Rows)
	}

	Visit(grid, func(s State) {
		cellType := grid.CellType(s)
		cell := Cell{
			X:     s.X,
			Y:     s.Y,
			Fill:  getFill(cellType),
			Label: string(cellType),
		}
		if values != nil {
			cell.Value = values.Value(s)
		}
		if policy != nil && cellType != WALL && cellType != GOAL {
			if a, ok := policy.Action(s); ok {
				cell.PolicyArrowRotation = a.Degrees()
				cell.PolicyArrowScale = 1
			}
		}
		cells[s.X][s.Y] = cell
	})
	return
}

func getFill(cellType rune) (fill string) {
	switch cellType {
	case WALL:
		fill = "lightgreen"
	case OBSTACLE:
		fill = "lightcoral"
	case GOAL:
		fill = "lightyellow"
	default:
		fill = "lightgray"
	}
	return
}
