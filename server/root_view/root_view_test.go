package root_view

import (
	"context"
	"fmt"
	"html/template"
	"strings"
	"testing"
	"time"

	. "gridplan/grid_world"
	"gridplan/reinforcement"
	"gridplan/server/cell_views"
	"gridplan/server/fastview"

	. "github.com/smartystreets/goconvey/convey"
)

func textUpdate(id, text string) fastview.EleUpdate {
	return fastview.EleUpdate{EleId: id, Ops: []fastview.Op{{Key: fastview.TextContent, Value: text}}}
}

func TestBatchify(t *testing.T) {
	Convey("Given a batching channel with a long window", t, func() {
		done := make(chan struct{})
		defer close(done)
		source := make(chan []fastview.EleUpdate)
		batches := batchify(done, source, time.Hour)

		Convey("Updates within the window collapse to the latest per id and flush on close", func() {
			go func() {
				defer close(source)
				source <- []fastview.EleUpdate{textUpdate("a", "1"), textUpdate("b", "1")}
				source <- []fastview.EleUpdate{textUpdate("a", "2")}
			}()

			var received [][]fastview.EleUpdate
			for batch := range batches {
				received = append(received, batch)
			}
			So(len(received), ShouldEqual, 1)
			So(received[0], ShouldResemble, []fastview.EleUpdate{textUpdate("a", "2"), textUpdate("b", "1")})
		})
	})
}

func TestRootView(t *testing.T) {
	Convey("Given a root view over a value iteration solve", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		grid := DefaultConfig(2, 2, State{X: 1, Y: 1})
		progress := make(chan reinforcement.Progress)
		rv, err := NewRootView(ctx, grid, progress)
		So(err, ShouldBeNil)

		Convey("The last batches carry the converged values and policy", func() {
			go func() {
				defer close(progress)
				reinforcement.NewValueIteration(grid).
					WithProgress(func(p reinforcement.Progress) { progress <- p }).
					Solve(reinforcement.DEFAULT_THETA, reinforcement.DEFAULT_MAX_ITERS)
			}()

			latest := map[string]fastview.EleUpdate{}
			for batch := range rv.Updates() {
				for _, update := range batch {
					latest[update.EleId] = update
				}
			}

			So(latest["0-0-value-text"].Ops[0].Value, ShouldEqual, "-1.00")
			So(latest["1-1-value-text"].Ops[0].Value, ShouldEqual, "0.00")
			// (0,0) breaks the tie toward RIGHT; the goal shows no arrow.
			So(latest["0-0-policy-arrow"].Ops[0].Value, ShouldEqual, fmt.Sprintf("rotate(%d) scale(1)", RIGHT.Degrees()))
			So(latest["1-1-policy-arrow"].Ops[0].Value, ShouldEqual, "rotate(0) scale(0)")
			So(latest, ShouldContainKey, "valuefunction-group")
		})

		Convey("The page renders the initial cells and the websocket bootstrap", func() {
			t := template.New("index.html")
			name, err := rv.Parse(t)
			So(err, ShouldBeNil)
			_, err = t.Parse(`{{ template "` + name + `" . }}`)
			So(err, ShouldBeNil)

			sb := &strings.Builder{}
			So(t.Execute(sb, cell_views.InitialCells(grid)), ShouldBeNil)
			page := sb.String()
			So(page, ShouldContainSubstring, `new WebSocket(`)
			So(page, ShouldContainSubstring, `id="1-0-value-text"`)
			So(page, ShouldContainSubstring, `id="0-0-value-polygon"`)
			So(page, ShouldContainSubstring, `valuefunction-group`)
		})
	})
}
