package cell_views

import (
	"testing"

	. "gridplan/grid_world"
	"gridplan/reinforcement"

	. "github.com/smartystreets/goconvey/convey"
)

func TestConvert(t *testing.T) {
	Convey("Given a solved grid with a wall and an obstacle", t, func() {
		grid, err := FromLayout([]string{
			"oWo",
			"oXo",
			"oo+",
		})
		So(err, ShouldBeNil)
		sol := reinforcement.ValueIteration(grid, reinforcement.DEFAULT_THETA, reinforcement.DEFAULT_MAX_ITERS)

		Convey("Cells are indexed [x][y] and carry values and arrows", func() {
			cells := Convert(grid, sol.Values, sol.Policy)
			So(len(cells), ShouldEqual, 3)
			So(len(cells[0]), ShouldEqual, 3)

			cell := cells[2][1]
			So(cell.X, ShouldEqual, 2)
			So(cell.Y, ShouldEqual, 1)
			So(cell.Value, ShouldEqual, sol.Values.Value(State{X: 2, Y: 1}))
			So(cell.PolicyArrowRotation, ShouldEqual, DOWN.Degrees())
			So(cell.PolicyArrowScale, ShouldEqual, 1)
		})

		Convey("Walls and the goal show no arrow", func() {
			cells := Convert(grid, sol.Values, sol.Policy)
			So(cells[1][0].PolicyArrowScale, ShouldEqual, 0)
			So(cells[1][0].Fill, ShouldEqual, "lightgreen")
			So(cells[2][2].PolicyArrowScale, ShouldEqual, 0)
			So(cells[2][2].Label, ShouldEqual, "+")
			So(cells[1][1].Fill, ShouldEqual, "lightcoral")
		})

		Convey("Progress without a policy yields values only", func() {
			cells := NewConverter(grid)(reinforcement.Progress{Values: sol.Values})
			So(cells[0][0].Value, ShouldEqual, sol.Values.Value(State{X: 0, Y: 0}))
			So(cells[0][0].PolicyArrowScale, ShouldEqual, 0)
		})

		Convey("Initial cells are all zero", func() {
			for _, col := range InitialCells(grid) {
				for _, cell := range col {
					So(cell.Value, ShouldEqual, 0)
					So(cell.PolicyArrowScale, ShouldEqual, 0)
				}
			}
		})
	})
}

func TestValueFunctionView(t *testing.T) {
	Convey("Fills shade from blue at the minimum to red at the maximum", t, func() {
		So(getRGBFill(-10, -10, 0), ShouldEqual, "rgb(0%,0%,100%)")
		So(getRGBFill(0, -10, 0), ShouldEqual, "rgb(100%,0%,0%)")
		So(getRGBFill(-5, -10, 0), ShouldEqual, "rgb(50%,0%,50%)")
		So(getRGBFill(3, 3, 3), ShouldEqual, "rgb(100%,0%,0%)")
	})

	Convey("Every polygon and the framing group are updated", t, func() {
		grid := DefaultConfig(3, 3, State{X: 2, Y: 2})
		sol := reinforcement.ValueIteration(grid, reinforcement.DEFAULT_THETA, reinforcement.DEFAULT_MAX_ITERS)
		vf := &ValueFunction{id: "valuefunction"}

		ops := vf.onUpdate(Convert(grid, sol.Values, sol.Policy))
		So(len(ops), ShouldEqual, 2*2+1)
		So(ops[0].EleId, ShouldEqual, "0-0-value-polygon")
		So(ops[len(ops)-1].EleId, ShouldEqual, "valuefunction-group")

		So(vf.onUpdate([][]Cell{{{}}}), ShouldBeEmpty)
	})
}
