package charts

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"oxforecast/internal/models"
)

const (
	ForecastLabel    = "OX Prediction (ppb)"
	ObservedLabel    = "OX Observed (ppb)"
	ThresholdLabel   = "注意報レベル"
	ProbabilityLabel = "Probability of exceeding 120ppm (%)"

	DefaultThreshold = 120

	yMin  = 0
	yMax  = 150
	yStep = 30
)

// TickCadence selects which x axis slots carry a time label.
type TickCadence int

const (
	// TickEveryThird labels slot 0 and every slot whose 1-based position is a multiple of 3.
	TickEveryThird TickCadence = iota
	// TickSixHourly labels hours 6, 12 and 18 only.
	TickSixHourly
)

func (c TickCadence) String() string {
	switch c {
	case TickEveryThird:
		return "every-third"
	case TickSixHourly:
		return "six-hourly"
	default:
		return fmt.Sprintf("TickCadence(%d)", int(c))
	}
}

func (c TickCadence) labels(i int) bool {
	switch c {
	case TickSixHourly:
		return i == 6 || i == 12 || i == 18
	default:
		return i == 0 || (i+1)%3 == 0
	}
}

// Options configures one build. SimpleOptions and RichOptions cover the two shipped layouts.
type Options struct {
	WithObservations bool
	RichAnnotations  bool
	AxisLength       int
	TickCadence      TickCadence
	Threshold        float64
	Title            string
}

// SimpleOptions is the forecast-only chart on a 24 slot axis
func SimpleOptions() Options {
	return Options{
		AxisLength:  DayAxisSlots,
		TickCadence: TickEveryThird,
		Threshold:   DefaultThreshold,
	}
}

// RichOptions adds observations, annotations and tooltips on a 25 slot axis
func RichOptions() Options {
	return Options{
		WithObservations: true,
		RichAnnotations:  true,
		AxisLength:       AnchoredAxisSlots,
		TickCadence:      TickSixHourly,
		Threshold:        DefaultThreshold,
	}
}

// OptionsForVariant resolves a variant name ("simple" or "rich").
func OptionsForVariant(name string) (Options, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "simple":
		return SimpleOptions(), nil
	case "rich":
		return RichOptions(), nil
	default:
		return Options{}, fmt.Errorf("unknown chart variant %q", name)
	}
}

// Variant names the layout for logs and metrics.
func (o Options) Variant() string {
	if o.RichAnnotations {
		return "rich"
	}
	return "simple"
}

// Input is the raw material for one chart.
type Input struct {
	Forecast models.HourlySeries
	// Observed is ignored unless Options.WithObservations is set.
	Observed      models.HourlySeries
	Probabilities []float64
	// Now must already be expressed in the display zone.
	Now      time.Time
	SunTimes *models.SunTimes
}

// BuildChartConfig turns raw series and temporal context into a ChartSpec.
// It has no side effects; identical inputs produce deep-equal specs.
func BuildChartConfig(in Input, opts Options) (*ChartSpec, error) {
	aligner, err := NewAligner(opts.AxisLength)
	if err != nil {
		return nil, err
	}

	var observed models.HourlySeries
	if opts.WithObservations {
		observed = in.Observed
		if observed == nil {
			observed = models.HourlySeries{}
		}
	}

	aligned, err := aligner.Align(in.Now.Hour(), in.Forecast, observed, opts.Threshold, GradientColors(in.Probabilities))
	if err != nil {
		return nil, fmt.Errorf("failed to align series: %w", err)
	}

	shading, err := NewNightShading(in.SunTimes)
	if err != nil {
		return nil, err
	}

	slots := aligner.Slots
	spec := &ChartSpec{
		Type:       "line",
		Title:      opts.Title,
		Subtitle:   FormatStartTime(in.Now),
		Labels:     make([]string, slots),
		Background: Transparent,
		Shading:    shading,
		Responsive: true,
		Legend: Legend{
			Display:      true,
			HiddenLabels: []string{ProbabilityLabel},
		},
		Scales: Scales{
			X: XScale{
				Title:      "Hours",
				ShowTitle:  !opts.RichAnnotations,
				TickAlign:  "inner",
				TickMirror: true,
				TickLabels: tickLabels(in.Now, slots, opts.TickCadence),
			},
			Y: YScale{
				ID:          "y",
				Type:        "linear",
				Position:    "left",
				BeginAtZero: true,
				Title:       "OX (ppb)",
				Min:         yMin,
				Max:         yMax,
				StepSize:    yStep,
				ShowGrid:    !opts.RichAnnotations,
				ShowBorder:  true,
			},
		},
	}
	for i := range spec.Labels {
		spec.Labels[i] = strconv.Itoa(i + 1)
	}

	spec.Datasets = append(spec.Datasets, Dataset{
		ID:          "forecast",
		Label:       ForecastLabel,
		Data:        aligned.Forecast,
		BorderColor: ForecastLineColor,
		BorderWidth: 3,
		ShowPoints:  true,
		Tension:     0.1,
		Fill: &Fill{
			Target:   "origin",
			Gradient: gradientStops(aligned.Colors),
		},
		BackgroundColors: aligned.Colors,
		YAxisID:          "y",
		SpanGaps:         true,
	})
	if opts.WithObservations {
		spec.Datasets = append(spec.Datasets, Dataset{
			ID:          "observed",
			Label:       ObservedLabel,
			Data:        aligned.Observed,
			BorderColor: ObservedLineColor,
			BorderWidth: 3,
			ShowPoints:  true,
			Tension:     0.1,
			YAxisID:     "y",
			SpanGaps:    true,
		})
	}
	spec.Datasets = append(spec.Datasets, Dataset{
		ID:          "threshold",
		Label:       ThresholdLabel,
		Data:        aligned.Threshold,
		BorderColor: ThresholdLineColor,
		BorderWidth: 2,
		XAxisID:     "x",
		YAxisID:     "y",
		SpanGaps:    true,
	})

	if opts.RichAnnotations {
		spec.Tooltip = Tooltip{Enabled: true, Mode: "index", Intersect: false}
		spec.Annotations = annotations(slots, opts.Threshold, opts.WithObservations)
	}
	return spec, nil
}

func tickLabels(now time.Time, slots int, cadence TickCadence) []*string {
	out := make([]*string, slots)
	for i := range out {
		if cadence.labels(i) {
			label := FormatTime(slotTime(now, i))
			out[i] = &label
		}
	}
	return out
}

// gradientStops spreads colors evenly from the left edge (offset 0) to the right edge (offset 1).
func gradientStops(colors []Color) []GradientStop {
	if len(colors) == 0 {
		return nil
	}
	stops := make([]GradientStop, len(colors))
	for i, c := range colors {
		offset := 0.0
		if len(colors) > 1 {
			offset = float64(i) / float64(len(colors)-1)
		}
		stops[i] = GradientStop{Offset: offset, Color: c}
	}
	return stops
}

func annotations(slots int, threshold float64, withObserved bool) []Annotation {
	out := []Annotation{
		{ID: "threshold-label", Text: ThresholdLabel, XIndex: 1, Y: threshold + 5, Color: ThresholdLineColor},
		{ID: "forecast-label", Text: "予測", XIndex: slots - 2, Y: 140, Color: ForecastLineColor},
	}
	if withObserved {
		out = append(out, Annotation{ID: "observed-label", Text: "実測", XIndex: 1, Y: 140, Color: ObservedLineColor})
	}
	return out
}

// ColorAt interpolates a gradient at fraction f of the plot width.
func ColorAt(stops []GradientStop, f float64) Color {
	if len(stops) == 0 {
		return Transparent
	}
	if f <= stops[0].Offset {
		return stops[0].Color
	}
	for i := 1; i < len(stops); i++ {
		if f <= stops[i].Offset {
			prev := stops[i-1]
			span := stops[i].Offset - prev.Offset
			if span <= 0 {
				return stops[i].Color
			}
			return prev.Color.Mix(stops[i].Color, (f-prev.Offset)/span)
		}
	}
	return stops[len(stops)-1].Color
}
