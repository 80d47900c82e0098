package charts

import (
	"fmt"
	"io"
	"math"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"oxforecast/internal/models"
)

// Size is the pixel size of a rendered image
type Size struct {
	Width  int
	Height int
}

// DefaultPNGSize is used when RenderPNG gets a zero size
var DefaultPNGSize = Size{Width: 960, Height: 480}

// rendererCanvas adapts a go-chart renderer to the draw hook Canvas.
type rendererCanvas struct {
	r chart.Renderer
}

func (c rendererCanvas) FillRect(rect Rect, col Color) {
	if rect.Width <= 0 || rect.Height <= 0 {
		return
	}
	x0 := int(math.Round(rect.X))
	y0 := int(math.Round(rect.Y))
	x1 := int(math.Round(rect.X + rect.Width))
	y1 := int(math.Round(rect.Y + rect.Height))
	c.r.SetFillColor(col.drawingColor())
	c.r.MoveTo(x0, y0)
	c.r.LineTo(x1, y0)
	c.r.LineTo(x1, y1)
	c.r.LineTo(x0, y1)
	c.r.Close()
	c.r.Fill()
}

// drawHookSeries is listed first so the hook paints beneath every dataset.
// go-chart draws axes before series, so only the plot box is cleared.
type drawHookSeries struct {
	hook DrawHook
	axis chart.YAxisType
}

func (hs drawHookSeries) GetName() string           { return "background" }
func (hs drawHookSeries) GetStyle() chart.Style     { return chart.Style{} }
func (hs drawHookSeries) GetYAxis() chart.YAxisType { return hs.axis }
func (hs drawHookSeries) Len() int                  { return 0 }
func (hs drawHookSeries) Validate() error           { return nil }
func (hs drawHookSeries) Render(r chart.Renderer, canvasBox chart.Box, xrange, yrange chart.Range, defaults chart.Style) {
	area := PlotArea{
		Left:   float64(canvasBox.Left),
		Top:    float64(canvasBox.Top),
		Width:  float64(canvasBox.Width()),
		Height: float64(canvasBox.Height()),
	}
	bounds := Rect{X: area.Left, Y: area.Top, Width: area.Width, Height: area.Height}
	hs.hook.BeforeDraw(rendererCanvas{r: r}, bounds, area)
}

// gradientAreaSeries fills under a line with colors sampled from the gradient stops.
type gradientAreaSeries struct {
	name  string
	data  models.HourlySeries
	stops []GradientStop
	join  bool
	axis  chart.YAxisType
}

func (gs gradientAreaSeries) GetName() string           { return gs.name }
func (gs gradientAreaSeries) GetStyle() chart.Style     { return chart.Style{} }
func (gs gradientAreaSeries) GetYAxis() chart.YAxisType { return gs.axis }
func (gs gradientAreaSeries) Len() int                  { return len(gs.data) }
func (gs gradientAreaSeries) Validate() error           { return nil }
func (gs gradientAreaSeries) Render(r chart.Renderer, canvasBox chart.Box, xrange, yrange chart.Range, defaults chart.Style) {
	last := len(gs.data) - 1
	if last < 1 {
		return
	}
	base := canvasBox.Bottom - yrange.Translate(0)
	for _, run := range presentRuns(gs.data, gs.join) {
		for k := 1; k < len(run); k++ {
			i, j := run[k-1], run[k]
			xi := canvasBox.Left + xrange.Translate(float64(i))
			xj := canvasBox.Left + xrange.Translate(float64(j))
			yi := canvasBox.Bottom - yrange.Translate(gs.data[i].Value)
			yj := canvasBox.Bottom - yrange.Translate(gs.data[j].Value)

			mid := (float64(i) + float64(j)) / 2 / float64(last)
			col := ColorAt(gs.stops, mid)
			if col.IsTransparent() {
				continue
			}
			r.SetFillColor(col.drawingColor())
			r.MoveTo(xi, yi)
			r.LineTo(xj, yj)
			r.LineTo(xj, base)
			r.LineTo(xi, base)
			r.Close()
			r.Fill()
		}
	}
}

// annotationSeries writes the fixed text labels at data coordinates.
type annotationSeries struct {
	items []Annotation
	axis  chart.YAxisType
}

func (as annotationSeries) GetName() string           { return "annotations" }
func (as annotationSeries) GetStyle() chart.Style     { return chart.Style{} }
func (as annotationSeries) GetYAxis() chart.YAxisType { return as.axis }
func (as annotationSeries) Len() int                  { return len(as.items) }
func (as annotationSeries) Validate() error           { return nil }
func (as annotationSeries) Render(r chart.Renderer, canvasBox chart.Box, xrange, yrange chart.Range, defaults chart.Style) {
	r.SetFont(defaults.Font)
	r.SetFontSize(11)
	for _, a := range as.items {
		x := canvasBox.Left + xrange.Translate(float64(a.XIndex))
		y := canvasBox.Bottom - yrange.Translate(a.Y)
		r.SetFontColor(a.Color.drawingColor())
		r.Text(a.Text, x, y)
	}
}

// presentRuns groups the indexes of present samples. With join set, gaps are
// bridged and all present samples form one run.
func presentRuns(data models.HourlySeries, join bool) [][]int {
	var runs [][]int
	var cur []int
	for i, s := range data {
		if !s.Valid {
			if !join && len(cur) > 0 {
				runs = append(runs, cur)
				cur = nil
			}
			continue
		}
		cur = append(cur, i)
	}
	if len(cur) > 0 {
		runs = append(runs, cur)
	}
	return runs
}

// legendElement draws the visible dataset labels along the top of the plot.
func legendElement(spec *ChartSpec) chart.Renderable {
	return func(r chart.Renderer, canvasBox chart.Box, defaults chart.Style) {
		r.SetFont(defaults.Font)
		r.SetFontSize(10)
		r.SetFontColor(drawing.ColorBlack)
		x := canvasBox.Left + 8
		y := canvasBox.Top - 8
		for _, ds := range spec.Datasets {
			if !spec.Legend.Shows(ds.Label) {
				continue
			}
			r.SetFillColor(ds.BorderColor.drawingColor())
			r.MoveTo(x, y-8)
			r.LineTo(x+18, y-8)
			r.LineTo(x+18, y)
			r.LineTo(x, y)
			r.Close()
			r.Fill()
			r.Text(ds.Label, x+24, y)
			x += 24 + r.MeasureText(ds.Label).Width() + 20
		}
	}
}

// subtitleElement writes the "as of" caption in the top right corner.
func subtitleElement(text string) chart.Renderable {
	return func(r chart.Renderer, canvasBox chart.Box, defaults chart.Style) {
		if text == "" {
			return
		}
		r.SetFont(defaults.Font)
		r.SetFontSize(10)
		r.SetFontColor(drawing.Color{R: 80, G: 80, B: 80, A: 255})
		w := r.MeasureText(text).Width()
		r.Text(text, canvasBox.Right-w, canvasBox.Top-8)
	}
}

// NewPNGChart maps a ChartSpec onto a go-chart line chart.
func NewPNGChart(spec *ChartSpec, size Size) (*chart.Chart, error) {
	if spec == nil {
		return nil, fmt.Errorf("spec cannot be nil")
	}
	slots := spec.Slots()
	if slots < 2 {
		return nil, fmt.Errorf("%w: %d slots", ErrInvalidLayout, slots)
	}
	if size.Width <= 0 || size.Height <= 0 {
		size = DefaultPNGSize
	}

	var xTicks []chart.Tick
	for i, label := range spec.Scales.X.TickLabels {
		if label != nil {
			xTicks = append(xTicks, chart.Tick{Value: float64(i), Label: *label})
		}
	}
	var yTicks []chart.Tick
	for _, v := range spec.Scales.Y.Ticks() {
		yTicks = append(yTicks, chart.Tick{Value: v, Label: fmt.Sprintf("%.0f", v)})
	}

	grid := chart.Style{StrokeColor: drawing.Color{R: 220, G: 220, B: 220, A: 255}, StrokeWidth: 1}
	graph := chart.Chart{
		Title:      spec.Title,
		TitleStyle: chart.Style{FontSize: 16, FontColor: drawing.ColorBlack},
		Width:      size.Width,
		Height:     size.Height,
		Background: chart.Style{
			FillColor: spec.Background.drawingColor(),
			Padding:   chart.Box{Top: 40, Left: 20, Right: 30, Bottom: 20},
		},
		Canvas: chart.Style{FillColor: spec.Background.drawingColor()},
		XAxis: chart.XAxis{
			Style: chart.Style{FontSize: 10},
			Ticks: xTicks,
			Range: &chart.ContinuousRange{Min: 0, Max: float64(slots - 1)},
		},
	}
	axis := yAxisFor(spec.Scales.Y.Position)
	yAxis := chart.YAxis{
		Style: chart.Style{FontSize: 10},
		Ticks: yTicks,
		Range: &chart.ContinuousRange{Min: spec.Scales.Y.Min, Max: spec.Scales.Y.Max},
	}
	if spec.Scales.X.ShowTitle {
		graph.XAxis.Name = spec.Scales.X.Title
		graph.XAxis.NameStyle = chart.Style{FontSize: 11}
	}
	if spec.Scales.Y.Title != "" {
		yAxis.Name = spec.Scales.Y.Title
		yAxis.NameStyle = chart.Style{FontSize: 11}
	}
	if spec.Scales.Y.ShowGrid {
		yAxis.GridMajorStyle = grid
		for _, t := range yTicks {
			yAxis.GridLines = append(yAxis.GridLines, chart.GridLine{Value: t.Value})
		}
	}
	if axis == chart.YAxisSecondary {
		// go-chart sizes the secondary range from the primary ticks, so the
		// hidden primary axis keeps them.
		graph.YAxisSecondary = yAxis
		graph.YAxis = chart.YAxis{
			Style: chart.Style{Hidden: true},
			Ticks: yTicks,
			Range: &chart.ContinuousRange{Min: spec.Scales.Y.Min, Max: spec.Scales.Y.Max},
		}
	} else {
		graph.YAxis = yAxis
	}

	graph.Series = append(graph.Series, drawHookSeries{hook: spec, axis: axis})
	for _, ds := range spec.Datasets {
		if ds.Fill != nil && len(ds.Fill.Gradient) > 0 {
			graph.Series = append(graph.Series, gradientAreaSeries{
				name:  ds.ID + "-fill",
				data:  ds.Data,
				stops: ds.Fill.Gradient,
				join:  ds.SpanGaps,
				axis:  axis,
			})
		}
	}
	for _, ds := range spec.Datasets {
		style := chart.Style{
			StrokeColor: ds.BorderColor.drawingColor(),
			StrokeWidth: ds.BorderWidth,
		}
		if ds.ShowPoints {
			style.DotColor = ds.BorderColor.drawingColor()
			style.DotWidth = 2.5
		}
		for n, run := range presentRuns(ds.Data, ds.SpanGaps) {
			s := chart.ContinuousSeries{
				Name:    fmt.Sprintf("%s-%d", ds.ID, n),
				Style:   style,
				YAxis:   axis,
				XValues: make([]float64, len(run)),
				YValues: make([]float64, len(run)),
			}
			for k, i := range run {
				s.XValues[k] = float64(i)
				s.YValues[k] = ds.Data[i].Value
			}
			graph.Series = append(graph.Series, s)
		}
	}
	if len(spec.Annotations) > 0 {
		graph.Series = append(graph.Series, annotationSeries{items: spec.Annotations, axis: axis})
	}

	if spec.Legend.Display {
		graph.Elements = append(graph.Elements, legendElement(spec))
	}
	graph.Elements = append(graph.Elements, subtitleElement(spec.Subtitle))
	return &graph, nil
}

// yAxisFor maps a "left" or "right" scale position onto go-chart, which
// draws its primary axis on the right.
func yAxisFor(position string) chart.YAxisType {
	if position == "right" {
		return chart.YAxisPrimary
	}
	return chart.YAxisSecondary
}

// RenderPNG draws the chart as a PNG image.
func RenderPNG(spec *ChartSpec, w io.Writer, size Size) error {
	graph, err := NewPNGChart(spec, size)
	if err != nil {
		return err
	}
	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("failed to render chart png: %w", err)
	}
	return nil
}
