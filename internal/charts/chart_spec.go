package charts

import (
	"oxforecast/internal/models"
)

// ChartSpec is a complete, renderer-independent description of the forecast chart.
// Everything in it is plain data; the only behavior is BeforeDraw, which renderers
// call with the plot geometry they realized.
type ChartSpec struct {
	Type                string        `json:"type"`
	Title               string        `json:"title,omitempty"`
	Subtitle            string        `json:"subtitle,omitempty"`
	Labels              []string      `json:"labels"`
	Datasets            []Dataset     `json:"datasets"`
	Scales              Scales        `json:"scales"`
	Legend              Legend        `json:"legend"`
	Tooltip             Tooltip       `json:"tooltip"`
	Annotations         []Annotation  `json:"annotations,omitempty"`
	Background          Color         `json:"background"`
	Shading             *NightShading `json:"shading,omitempty"`
	Responsive          bool          `json:"responsive"`
	MaintainAspectRatio bool          `json:"maintainAspectRatio"`
}

// Dataset is one line on the chart
type Dataset struct {
	ID               string              `json:"id"`
	Label            string              `json:"label"`
	Data             models.HourlySeries `json:"data"`
	BorderColor      Color               `json:"borderColor"`
	BorderWidth      float64             `json:"borderWidth"`
	ShowPoints       bool                `json:"showPoints"`
	Tension          float64             `json:"tension"`
	Fill             *Fill               `json:"fill,omitempty"`
	BackgroundColors []Color             `json:"backgroundColor,omitempty"`
	XAxisID          string              `json:"xAxisID,omitempty"`
	YAxisID          string              `json:"yAxisID"`
	SpanGaps         bool                `json:"spanGaps"`
}

// Fill describes the area under a line.
type Fill struct {
	Target   string         `json:"target"`
	Gradient []GradientStop `json:"gradient,omitempty"`
}

// GradientStop is one horizontal color stop; Offset runs 0 (left edge) to 1 (right edge).
type GradientStop struct {
	Offset float64 `json:"offset"`
	Color  Color   `json:"color"`
}

type Scales struct {
	X XScale `json:"x"`
	Y YScale `json:"y"`
}

type XScale struct {
	Title      string `json:"title,omitempty"`
	ShowTitle  bool   `json:"showTitle"`
	ShowGrid   bool   `json:"showGrid"`
	TickAlign  string `json:"tickAlign,omitempty"`
	TickMirror bool   `json:"tickMirror"`
	// TickLabels has one entry per slot; nil entries are unlabelled.
	TickLabels []*string `json:"tickLabels"`
}

type YScale struct {
	ID          string  `json:"id"`
	Type        string  `json:"type"`
	Position    string  `json:"position"`
	BeginAtZero bool    `json:"beginAtZero"`
	Title       string  `json:"title,omitempty"`
	Min         float64 `json:"min"`
	Max         float64 `json:"max"`
	StepSize    float64 `json:"stepSize"`
	ShowGrid    bool    `json:"showGrid"`
	ShowBorder  bool    `json:"showBorder"`
}

// Ticks returns the y values from Min to Max at StepSize
func (y YScale) Ticks() []float64 {
	if y.StepSize <= 0 || y.Max < y.Min {
		return nil
	}
	var out []float64
	for v := y.Min; v <= y.Max+1e-9; v += y.StepSize {
		out = append(out, v)
	}
	return out
}

type Legend struct {
	Display      bool     `json:"display"`
	HiddenLabels []string `json:"hiddenLabels,omitempty"`
}

// Shows reports whether a dataset label appears in the legend
func (l Legend) Shows(label string) bool {
	if !l.Display {
		return false
	}
	for _, h := range l.HiddenLabels {
		if h == label {
			return false
		}
	}
	return true
}

type Tooltip struct {
	Enabled   bool   `json:"enabled"`
	Mode      string `json:"mode,omitempty"`
	Intersect bool   `json:"intersect"`
}

// Annotation is a fixed text label placed at data coordinates.
type Annotation struct {
	ID     string  `json:"id"`
	Text   string  `json:"text"`
	XIndex int     `json:"xIndex"`
	Y      float64 `json:"y"`
	Color  Color   `json:"color"`
}

// Slots is the number of positions on the x axis
func (s *ChartSpec) Slots() int {
	return len(s.Labels)
}

// Dataset looks a dataset up by ID
func (s *ChartSpec) Dataset(id string) (Dataset, bool) {
	for _, d := range s.Datasets {
		if d.ID == id {
			return d, true
		}
	}
	return Dataset{}, false
}

// BeforeDraw clears bounds to the background color and paints the night bands.
// It keeps no state, so renderers may call it on every repaint.
func (s *ChartSpec) BeforeDraw(c Canvas, bounds Rect, area PlotArea) {
	c.FillRect(bounds, s.Background)
	if s.Shading == nil {
		return
	}
	for _, r := range s.Shading.Rects(area) {
		if r.Width > 0 {
			c.FillRect(r, s.Shading.Color)
		}
	}
}

var _ DrawHook = (*ChartSpec)(nil)
