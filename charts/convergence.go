// charts renders solver convergence as echarts html pages.
package charts

import (
	"errors"
	"fmt"
	"io"

	"gridplan/reinforcement"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// Series is one solve's per-sweep deltas, i.e. the largest value change of each sweep.
type Series struct {
	Name   string
	Deltas []float64
}

// FromSolution names a solution's deltas.
func FromSolution(name string, sol *reinforcement.Solution) Series {
	return Series{Name: name, Deltas: sol.Deltas}
}

var ErrNoSeries = errors.New("no series to plot")

// Convergence writes a page with a line chart of every series' deltas by sweep.
func Convergence(w io.Writer, series ...Series) error {
	if len(series) == 0 {
		return ErrNoSeries
	}

	numSweeps := 0
	for _, s := range series {
		if len(s.Deltas) > numSweeps {
			numSweeps = len(s.Deltas)
		}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Convergence",
			Subtitle: "largest value change per sweep",
		}),
		charts.WithInitializationOpts(opts.Initialization{
			Theme: "shine",
		}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "sweep"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "delta"}),
	)

	sweeps := make([]string, 0, numSweeps)
	for i := 1; i <= numSweeps; i++ {
		sweeps = append(sweeps, fmt.Sprintf("%d", i))
	}
	line = line.SetXAxis(sweeps)

	for _, s := range series {
		items := make([]opts.LineData, 0, len(s.Deltas))
		for _, delta := range s.Deltas {
			items = append(items, opts.LineData{Value: delta})
		}
		line.AddSeries(s.Name, items)
	}

	page := components.NewPage()
	page.AddCharts(line)
	if err := page.Render(w); err != nil {
		return fmt.Errorf("render convergence chart: %w", err)
	}
	return nil
}
