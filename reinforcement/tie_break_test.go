package reinforcement

import (
	"testing"

	. "gridplan/grid_world"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLexicographicTieBreak(t *testing.T) {
	Convey("When value iteration selects among candidates", t, func() {
		tb := DefaultTieBreak

		Convey("A clearly larger value wins regardless of the tuple", func() {
			best := tb.Select(UP, []Candidate{
				{Action: UP, Value: -1, DistBefore: 2, DistAfter: 1},
				{Action: RIGHT, Value: -0.5, Obstacle: true, DistBefore: 2, DistAfter: 3},
			})
			So(best.Action, ShouldEqual, RIGHT)
			So(best.Value, ShouldEqual, -0.5)
		})

		Convey("Among tied values, avoiding an obstacle beats moving closer", func() {
			best := tb.Select(UP, []Candidate{
				{Action: UP, Value: -1, Obstacle: true, DistBefore: 2, DistAfter: 1},
				{Action: RIGHT, Value: -1, DistBefore: 2, DistAfter: 3},
			})
			So(best.Action, ShouldEqual, RIGHT)
		})

		Convey("Among tied safe values, moving closer wins", func() {
			best := tb.Select(UP, []Candidate{
				{Action: UP, Value: -1, DistBefore: 2, DistAfter: 2},
				{Action: RIGHT, Value: -1, DistBefore: 2, DistAfter: 1},
			})
			So(best.Action, ShouldEqual, RIGHT)
		})

		Convey("Equal tuples keep the first candidate", func() {
			best := tb.Select(UP, []Candidate{
				{Action: RIGHT, Value: -1, DistBefore: 2, DistAfter: 1},
				{Action: DOWN, Value: -1, DistBefore: 2, DistAfter: 1},
			})
			So(best.Action, ShouldEqual, RIGHT)
		})

		Convey("A dominating tuple within eps replaces the incumbent with its own, lower value", func() {
			best := tb.Select(UP, []Candidate{
				{Action: UP, Value: -1, Obstacle: true, DistBefore: 2, DistAfter: 1},
				{Action: RIGHT, Value: -1 - 5e-10, DistBefore: 2, DistAfter: 1},
			})
			So(best.Action, ShouldEqual, RIGHT)
			So(best.Value, ShouldEqual, -1-5e-10)
		})

		Convey("A dominating tuple outside eps does not replace the incumbent", func() {
			best := tb.Select(UP, []Candidate{
				{Action: UP, Value: -1, Obstacle: true, DistBefore: 2, DistAfter: 1},
				{Action: RIGHT, Value: -1.001, DistBefore: 2, DistAfter: 1},
			})
			So(best.Action, ShouldEqual, UP)
		})

		Convey("No candidates leave the incumbent", func() {
			So(tb.Select(LEFT, nil).Action, ShouldEqual, LEFT)
		})
	})
}

func TestBiasedScore(t *testing.T) {
	Convey("When policy iteration scores candidates", t, func() {
		bs := DefaultBiasedScore

		Convey("Biases are added to the raw value", func() {
			So(bs.Score(Candidate{Value: -1, DistBefore: 2, DistAfter: 1}), ShouldAlmostEqual, -0.999, 1e-12)
			So(bs.Score(Candidate{Value: -1, DistBefore: 2, DistAfter: 3}), ShouldAlmostEqual, -1.001, 1e-12)
			So(bs.Score(Candidate{Value: -1, DistBefore: 2, DistAfter: 2}), ShouldEqual, -1)
			So(bs.Score(Candidate{Value: -1, Obstacle: true, DistBefore: 2, DistAfter: 1}), ShouldAlmostEqual, -1.009, 1e-12)
		})

		Convey("A bias can override a small raw value gap", func() {
			best := bs.Select(UP, []Candidate{
				{Action: UP, Value: -1, DistBefore: 2, DistAfter: 3},
				{Action: RIGHT, Value: -1.0015, DistBefore: 2, DistAfter: 1},
			})
			So(best.Action, ShouldEqual, RIGHT)
			So(best.Value, ShouldEqual, -1.0015)
		})

		Convey("The obstacle bias steers away from an obstacle of equal raw value", func() {
			best := bs.Select(UP, []Candidate{
				{Action: RIGHT, Value: -1, Obstacle: true, DistBefore: 2, DistAfter: 1},
				{Action: DOWN, Value: -1, DistBefore: 2, DistAfter: 1},
			})
			So(best.Action, ShouldEqual, DOWN)
		})

		Convey("Exact score ties keep the first candidate", func() {
			best := bs.Select(LEFT, []Candidate{
				{Action: RIGHT, Value: -1, DistBefore: 2, DistAfter: 1},
				{Action: DOWN, Value: -1, DistBefore: 2, DistAfter: 1},
			})
			So(best.Action, ShouldEqual, RIGHT)
		})
	})

	Convey("The two selectors can disagree on the same candidates", t, func() {
		candidates := []Candidate{
			{Action: UP, Value: -1, DistBefore: 2, DistAfter: 3},
			{Action: RIGHT, Value: -1.0015, DistBefore: 2, DistAfter: 1},
		}
		So(DefaultTieBreak.Select(UP, candidates).Action, ShouldEqual, UP)
		So(DefaultBiasedScore.Select(UP, candidates).Action, ShouldEqual, RIGHT)
	})
}

func TestStateTable(t *testing.T) {
	Convey("Given a grid with a wall", t, func() {
		cfg := DefaultConfig(2, 3, State{X: 2, Y: 1})
		cfg.Walls.Add(State{X: 1, Y: 0})
		table := newStateTable(cfg)

		Convey("Walls have no entry and the rest are indexed in sweep order", func() {
			So(table.len(), ShouldEqual, 5)
			_, ok := table.index(State{X: 1, Y: 0})
			So(ok, ShouldBeFalse)
			for i, s := range table.states {
				idx, ok := table.index(s)
				So(ok, ShouldBeTrue)
				So(idx, ShouldEqual, i)
			}
			So(table.states[table.goal], ShouldResemble, cfg.Goal)
		})

		Convey("Values of states without an entry read as zero", func() {
			v := []float64{1, 2, 3, 4, 5}
			So(table.valueOf(v, State{X: 1, Y: 0}), ShouldEqual, 0)
			So(table.valueOf(v, State{X: 9, Y: 9}), ShouldEqual, 0)
			So(table.valueOf(v, State{X: 0, Y: 1}), ShouldEqual, 3)
		})
	})
}
