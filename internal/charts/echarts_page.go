package charts

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

// NewEChartsLine maps a ChartSpec onto a go-echarts line chart for standalone pages.
func NewEChartsLine(spec *ChartSpec) (*charts.Line, error) {
	if spec == nil {
		return nil, fmt.Errorf("spec cannot be nil")
	}
	slots := spec.Slots()
	if slots < 2 {
		return nil, fmt.Errorf("%w: %d slots", ErrInvalidLayout, slots)
	}

	formatter, err := tickFormatter(spec.Scales.X.TickLabels)
	if err != nil {
		return nil, err
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle:       "OX Forecast",
			Theme:           types.ThemeWesteros,
			Width:           "960px",
			Height:          "480px",
			BackgroundColor: spec.Background.String(),
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    spec.Title,
			Subtitle: spec.Subtitle,
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: spec.Legend.Display,
			Data: legendLabels(spec),
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    spec.Tooltip.Enabled,
			Trigger: tooltipTrigger(spec.Tooltip),
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Name: axisName(spec.Scales.X),
			Type: "value",
			Min:  0,
			Max:  slots - 1,
			AxisLabel: &opts.AxisLabel{
				Show:      true,
				Inside:    spec.Scales.X.TickMirror,
				Formatter: opts.FuncOpts(formatter),
			},
			SplitLine: &opts.SplitLine{Show: spec.Scales.X.ShowGrid},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name:        spec.Scales.Y.Title,
			Type:        spec.Scales.Y.Type,
			Min:         spec.Scales.Y.Min,
			Max:         spec.Scales.Y.Max,
			SplitNumber: splitCount(spec.Scales.Y),
			SplitLine:   &opts.SplitLine{Show: spec.Scales.Y.ShowGrid},
		}),
	)

	for n, ds := range spec.Datasets {
		data := make([]opts.LineData, len(ds.Data))
		for i, s := range ds.Data {
			if s.Valid {
				data[i] = opts.LineData{Value: []interface{}{i, s.Value}}
			} else {
				data[i] = opts.LineData{Value: []interface{}{i, "-"}}
			}
		}

		seriesOpts := []charts.SeriesOpts{
			charts.WithLineChartOpts(opts.LineChart{
				Smooth:       ds.Tension > 0,
				ConnectNulls: ds.SpanGaps,
				ShowSymbol:   ds.ShowPoints,
			}),
			charts.WithLineStyleOpts(opts.LineStyle{
				Color: ds.BorderColor.String(),
				Width: float32(ds.BorderWidth),
			}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: ds.BorderColor.String()}),
		}
		if ds.Fill != nil && len(ds.Fill.Gradient) > 0 {
			gradient, err := gradientFunc(ds.Fill.Gradient)
			if err != nil {
				return nil, err
			}
			seriesOpts = append(seriesOpts, charts.WithAreaStyleOpts(opts.AreaStyle{
				Color:   opts.FuncOpts(gradient),
				Opacity: 1,
			}))
		}
		if n == 0 && spec.Shading != nil {
			seriesOpts = append(seriesOpts, charts.WithMarkAreaNameCoordItemOpts(nightAreas(spec, float64(slots-1))...))
		}
		if ds.ID == "forecast" {
			for _, a := range spec.Annotations {
				seriesOpts = append(seriesOpts, charts.WithMarkPointNameCoordItemOpts(opts.MarkPointNameCoordItem{
					Name:       a.Text,
					Coordinate: []interface{}{a.XIndex, a.Y},
					Label:      &opts.Label{Show: true, Color: a.Color.String(), Formatter: a.Text},
					SymbolSize: 1,
				}))
			}
		}
		line.AddSeries(ds.Label, data, seriesOpts...)
	}
	return line, nil
}

// RenderEChartsPage writes a self-contained HTML page with the chart.
func RenderEChartsPage(spec *ChartSpec, w io.Writer) error {
	line, err := NewEChartsLine(spec)
	if err != nil {
		return err
	}
	if err := line.Render(w); err != nil {
		return fmt.Errorf("failed to render echarts page: %w", err)
	}
	return nil
}

// nightAreas spans the full y range so the bands read as background.
func nightAreas(spec *ChartSpec, last float64) []opts.MarkAreaNameCoordItem {
	style := &opts.ItemStyle{Color: spec.Shading.Color.String()}
	var out []opts.MarkAreaNameCoordItem
	for _, span := range nightSpans(spec.Shading, last) {
		out = append(out, opts.MarkAreaNameCoordItem{
			Coordinate0: []interface{}{span[0], spec.Scales.Y.Min},
			Coordinate1: []interface{}{span[1], spec.Scales.Y.Max},
			ItemStyle:   style,
		})
	}
	return out
}

// splitCount is the segment count that puts a y tick every StepSize.
func splitCount(y YScale) int {
	if y.StepSize <= 0 || y.Max <= y.Min {
		return 0
	}
	return int(math.Round((y.Max - y.Min) / y.StepSize))
}

func legendLabels(spec *ChartSpec) []string {
	var out []string
	for _, ds := range spec.Datasets {
		if spec.Legend.Shows(ds.Label) {
			out = append(out, ds.Label)
		}
	}
	return out
}

func tickFormatter(labels []*string) (string, error) {
	b, err := json.Marshal(labels)
	if err != nil {
		return "", fmt.Errorf("failed to marshal tick labels: %w", err)
	}
	return fmt.Sprintf("function(v){var t=%s[Math.round(v)];return t===null||t===undefined?'':t;}", b), nil
}

func gradientFunc(stops []GradientStop) (string, error) {
	g := linearGradient(stops)
	b, err := json.Marshal(g["colorStops"])
	if err != nil {
		return "", fmt.Errorf("failed to marshal gradient: %w", err)
	}
	return "new echarts.graphic.LinearGradient(0, 0, 1, 0, " + strings.TrimSpace(string(b)) + ")", nil
}
