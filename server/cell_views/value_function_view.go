package cell_views

import (
	"fmt"
	"html/template"
	"math"

	"gridplan/server/fastview"

	channerics "github.com/niceyeti/channerics/channels"
)

// ValueFunction shows the value function as an isometric 2d projection of the surface (x,y,V).
type ValueFunction struct {
	id      string
	updates <-chan []fastview.EleUpdate
}

func NewValueFunction(
	done <-chan struct{},
	cells <-chan [][]Cell,
) (vf *ValueFunction) {
	// Hyphenated ids interfere with html/template's `template` directive.
	vf = &ValueFunction{id: "valuefunction"}
	vf.updates = channerics.Convert(done, cells, vf.onUpdate)
	return
}

func (vf *ValueFunction) Updates() <-chan []fastview.EleUpdate {
	return vf.updates
}

const (
	cellDim = 80.0          // cell height and width in pixels
	xyscale = cellDim       // pixels per x or y unit
	zscale  = cellDim * 0.3 // pixels per unit of value
	ang     = math.Pi / 6   // angle of the x and y axes
)

var sinAng, cosAng = math.Sin(ang), math.Cos(ang)

// project applies an isometric projection to a point on the surface.
func project(x, y, z float64) (float64, float64) {
	sx := (x - y) * cosAng * xyscale
	sy := (x+y)*sinAng*xyscale - z*zscale
	return sx, sy
}

// Cell-A is bottom left, Cell-B is top left, Cell-C is top right, and Cell-D is bottom right.
func getPolyPoints(
	cellA Cell,
	cellB Cell,
	cellC Cell,
	cellD Cell,
) string {
	return makeFuncPolygon("", cellA, cellB, cellC, cellD).String()
}

// makeFuncPolygon returns the projected polygon spanning four adjacent cells.
func makeFuncPolygon(
	id string,
	cellA Cell,
	cellB Cell,
	cellC Cell,
	cellD Cell,
) (fp *funcPolygon) {
	fp = &funcPolygon{
		Id: id,
	}
	fp.ax, fp.ay = project(float64(cellA.X), float64(cellA.Y), cellA.Value)
	fp.bx, fp.by = project(float64(cellB.X), float64(cellB.Y), cellB.Value)
	fp.cx, fp.cy = project(float64(cellC.X), float64(cellC.Y), cellC.Value)
	fp.dx, fp.dy = project(float64(cellD.X), float64(cellD.Y), cellD.Value)
	return
}

type funcPolygon struct {
	Id     string
	ax, ay float64
	bx, by float64
	cx, cy float64
	dx, dy float64
}

// String returns the svg-polygon 'points' attribute, truncated to ints.
func (fp *funcPolygon) String() string {
	return fmt.Sprintf("%d,%d %d,%d %d,%d %d,%d",
		int(fp.ax), int(fp.ay),
		int(fp.bx), int(fp.by),
		int(fp.cx), int(fp.cy),
		int(fp.dx), int(fp.dy),
	)
}

func (fp *funcPolygon) MinX() float64 {
	return math.Min(math.Min(fp.ax, fp.bx), math.Min(fp.cx, fp.dx))
}

func (fp *funcPolygon) MinY() float64 {
	return math.Min(math.Min(fp.ay, fp.by), math.Min(fp.cy, fp.dy))
}

func (fp *funcPolygon) MaxX() float64 {
	return math.Max(math.Max(fp.ax, fp.bx), math.Max(fp.cx, fp.dx))
}

func (fp *funcPolygon) MaxY() float64 {
	return math.Max(math.Max(fp.ay, fp.by), math.Max(fp.cy, fp.dy))
}

func avg(f ...float64) float64 {
	sum := 0.0
	for _, fn := range f {
		sum += fn
	}
	return sum / float64(len(f))
}

// onUpdate returns the polygon and framing updates for the current values.
func (vf *ValueFunction) onUpdate(
	cells [][]Cell,
) (ops []fastview.EleUpdate) {
	if len(cells) < 2 || len(cells[0]) < 2 {
		return nil
	}
	width := float64(len(cells)) * cellDim
	height := float64(len(cells[0])) * cellDim

	// Each polygon is shaded by the average of its four corners, relative to the value range.
	minVal, maxVal := math.MaxFloat64, -math.MaxFloat64
	for _, col := range cells {
		for _, cell := range col {
			minVal = math.Min(minVal, cell.Value)
			maxVal = math.Max(maxVal, cell.Value)
		}
	}

	xmin, ymin := math.MaxFloat64, math.MaxFloat64
	xmax, ymax := -math.MaxFloat64, -math.MaxFloat64
	for xi, col := range cells[:len(cells)-1] {
		for yi, cell := range col[:len(col)-1] {
			cellA := cells[xi+1][yi]
			cellB := cells[xi][yi]
			cellC := cells[xi][yi+1]
			cellD := cells[xi+1][yi+1]
			polygon := makeFuncPolygon(
				polygonId(cell),
				cellA, cellB, cellC, cellD,
			)

			xmin = math.Min(xmin, polygon.MinX())
			xmax = math.Max(xmax, polygon.MaxX())
			ymin = math.Min(ymin, polygon.MinY())
			ymax = math.Max(ymax, polygon.MaxY())

			avgVal := avg(cellA.Value, cellB.Value, cellC.Value, cellD.Value)
			ops = append(ops, fastview.EleUpdate{
				EleId: polygon.Id,
				Ops: []fastview.Op{
					{Key: "points", Value: polygon.String()},
					{Key: "fill", Value: getRGBFill(avgVal, minVal, maxVal)},
				},
			})
		}
	}

	// Shift by the min x and y to frame the plot, scaling down only if it does not fit.
	scaler := math.Min(
		math.Min(
			math.Abs(width/(xmax-xmin)),
			math.Abs(height/(ymax-ymin)),
		),
		1.0,
	)

	ops = append(ops, fastview.EleUpdate{
		EleId: vf.id + "-group",
		Ops: []fastview.Op{
			{
				Key:   "transform",
				Value: fmt.Sprintf("scale(%f) translate(%d %d)", scaler, int(-xmin), int(-ymin)),
			},
		},
	})

	return
}

func polygonId(cell Cell) string {
	return fmt.Sprintf("%d-%d-value-polygon", cell.X, cell.Y)
}

// getRGBFill shades from blue at minVal to red at maxVal.
func getRGBFill(avgVal, minVal, maxVal float64) string {
	redPct := 100
	if span := maxVal - minVal; span > 0 {
		redPct = int(100.0 * (avgVal - minVal) / span)
	}
	return fmt.Sprintf("rgb(%d%%,0%%,%d%%)", redPct, 100-redPct)
}

// Parse adds an svg of polygons plotting the value surface to t.
func (vf *ValueFunction) Parse(
	t *template.Template,
) (name string, err error) {
	name = vf.id
	addedMap := template.FuncMap{
		"getPolyPoints": getPolyPoints,
		"polygonId":     polygonId,
	}
	// Polygons are drawn back to front so nearer ones obscure farther ones.
	_, err = t.Funcs(addedMap).Parse(
		`{{ define "` + name + `" }}
		<div style="padding:40px;">
			{{ $x_cells := len . }}
			{{ $y_cells := len (index . 0) }}
			{{ $num_x_polys := sub $x_cells 1 }}
			{{ $num_y_polys := sub $y_cells 1 }}
			{{ $cell_width := ` + fmt.Sprintf("%d", int(cellDim)) + ` }}
			{{ $width := mult $cell_width $x_cells }}
			{{ $height := mult $cell_width $y_cells }}
			<svg id="` + vf.id + `" xmlns='http://www.w3.org/2000/svg'
				width="{{ mult $width 2 }}px"
				height="{{ mult $height 2 }}px"
				style="shape-rendering: crispEdges; stroke: lightgrey; stroke-opacity: 1.0; stroke-width: 3;">
				<g id="` + vf.id + "-group" + `" transform="translate(0 0)">
				{{ $cells := . }}
				{{ range $xi, $col := $cells }}
					{{ if lt $xi $num_x_polys }}
						{{ range $j, $unused := $col }}
							{{ $yi := sub (sub (len $col) $j) 1 }}
							{{ $cell := index $col $yi }}
							{{ if lt $yi $num_y_polys }}
								<polygon id="{{ polygonId $cell }}"
									fill="black" fill-opacity="1.0"
									{{ $cell_a := index $cells (add $xi 1) $yi }}
									{{ $cell_b := index $cells $xi $yi }}
									{{ $cell_c := index $cells $xi (add $yi 1) }}
									{{ $cell_d := index $cells (add $xi 1) (add $yi 1) }}
									points="{{ getPolyPoints $cell_a $cell_b $cell_c $cell_d }}" />
							{{ end }}
						{{ end }}
					{{ end }}
				{{ end }}
				</g>
			</svg>
		</div>
		{{ end }}`)
	return
}
