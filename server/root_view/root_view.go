package root_view

import (
	"context"
	"html/template"
	"time"

	. "gridplan/grid_world"
	"gridplan/reinforcement"
	"gridplan/server/cell_views"
	"gridplan/server/fastview"

	channerics "github.com/niceyeti/channerics/channels"
)

// RootView is the index page: the container for all view components and the wiring of their channels.
type RootView struct {
	views   []fastview.ViewComponent
	updates <-chan []fastview.EleUpdate
}

// NewRootView builds the page's views over a stream of solver progress on grid.
// All channels close once progress closes or ctx is cancelled.
func NewRootView(
	ctx context.Context,
	grid *Config,
	progress <-chan reinforcement.Progress,
) (*RootView, error) {
	views, err := fastview.NewViewBuilder[reinforcement.Progress, [][]cell_views.Cell]().
		WithContext(ctx).
		WithModel(progress, cell_views.NewConverter(grid)).
		WithView(func(
			done <-chan struct{},
			cellUpdates <-chan [][]cell_views.Cell) fastview.ViewComponent {
			return cell_views.NewValuesGrid(done, cellUpdates)
		}).
		WithView(func(
			done <-chan struct{},
			cellUpdates <-chan [][]cell_views.Cell) fastview.ViewComponent {
			return cell_views.NewValueFunction(done, cellUpdates)
		}).
		Build()
	if err != nil {
		return nil, err
	}

	return &RootView{
		views:   views,
		updates: fanIn(ctx.Done(), views),
	}, nil
}

// Updates returns the aggregated ele-update channel of all the views.
func (rv *RootView) Updates() <-chan []fastview.EleUpdate {
	return rv.updates
}

// Parse builds the page template with the websocket bootstrap code and returns its name.
// It also registers the arithmetic func-map the child views depend on.
func (rv *RootView) Parse(
	parent *template.Template,
) (name string, err error) {
	rt := parent.Funcs(
		template.FuncMap{
			"add":  func(i, j int) int { return i + j },
			"sub":  func(i, j int) int { return i - j },
			"mult": func(i, j int) int { return i * j },
			"div":  func(i, j int) int { return i / j },
		})

	var bodySpec string
	for _, vc := range rv.views {
		tname, parseErr := vc.Parse(rt)
		if parseErr != nil {
			return "", parseErr
		}
		bodySpec += `{{ template "` + tname + `" . }}`
	}

	name = "mainpage"
	indexTemplate := `
	{{ define "` + name + `" }}
	<!DOCTYPE html>
	<html>
		<head>
			<link rel="icon" href="data:,">
			<script>
				const ws = new WebSocket("ws://" + window.location.host + "/ws" + window.location.search);
				ws.onopen = function (event) {
					console.log("Web socket opened")
				};

				ws.onerror = function (event) {
					console.log('WebSocket error: ', event);
				};

				// The server pushes batches of element updates; apply each by element id.
				ws.onmessage = function (event) {
					const items = JSON.parse(event.data)
					for (const update of items) {
						const ele = document.getElementById(update.id)
						if (!ele) {
							continue
						}
						for (const op of update.ops) {
							if (op.key === "textContent") {
								ele.textContent = op.value;
							} else {
								ele.setAttribute(op.key, op.value)
							}
						}
					}
				}
			</script>
		</head>
		<body>
		` + bodySpec + `
		</body></html>
	{{ end }}
	`

	_, err = rt.Parse(indexTemplate)
	return
}

// fanIn merges the views' ele-update channels into a single batched channel.
func fanIn(
	done <-chan struct{},
	views []fastview.ViewComponent,
) <-chan []fastview.EleUpdate {
	inputs := make([]<-chan []fastview.EleUpdate, len(views))
	for i, view := range views {
		inputs[i] = view.Updates()
	}
	return batchify(
		done,
		channerics.Merge(done, inputs...),
		time.Millisecond*20)
}

// batchify batches updates within the passed time frame before sending, keeping only the latest
// update per ele-id. Whatever remains batched when source closes is sent before closing.
func batchify(
	done <-chan struct{},
	source <-chan []fastview.EleUpdate,
	rate time.Duration,
) <-chan []fastview.EleUpdate {
	output := make(chan []fastview.EleUpdate)

	go func() {
		defer close(output)

		data := map[string]fastview.EleUpdate{}
		order := []string{}
		send := func() bool {
			batch := make([]fastview.EleUpdate, 0, len(order))
			for _, id := range order {
				batch = append(batch, data[id])
			}
			select {
			case output <- batch:
				data = map[string]fastview.EleUpdate{}
				order = order[:0]
				return true
			case <-done:
				return false
			}
		}

		last := time.Now()
		for updates := range channerics.OrDone(done, source) {
			for _, update := range updates {
				if _, ok := data[update.EleId]; !ok {
					order = append(order, update.EleId)
				}
				data[update.EleId] = update
			}

			if time.Since(last) > rate && len(order) > 0 {
				if !send() {
					return
				}
				last = time.Now()
			}
		}
		if len(order) > 0 {
			send()
		}
	}()

	return output
}
