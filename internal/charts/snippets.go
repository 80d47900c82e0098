package charts

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// EChartsScriptURL is the ECharts bundle the snippets are written against.
const EChartsScriptURL = "https://cdn.jsdelivr.net/npm/echarts@5.4.3/dist/echarts.min.js"

// ChartSnippet represents an embeddable ECharts chart fragment.
// Div holds a single root <div id="..." style="..."></div>
// Script holds the <script>...</script> block that initializes the chart in that div.
// HTML combines both for direct template substitution.
type ChartSnippet struct {
	ID     string
	Title  string
	Div    string
	Script string
	HTML   string
}

// EChartsOption converts a ChartSpec into an ECharts option object.
// Night bands become markArea ranges on the forecast series and annotations
// become label-only markPoints, so ECharts repaints both on every resize.
func EChartsOption(spec *ChartSpec) (map[string]interface{}, error) {
	if spec == nil {
		return nil, fmt.Errorf("spec cannot be nil")
	}
	slots := spec.Slots()
	if slots < 2 {
		return nil, fmt.Errorf("%w: %d slots", ErrInvalidLayout, slots)
	}
	last := float64(slots - 1)

	var legend []string
	var series []interface{}
	for _, ds := range spec.Datasets {
		if spec.Legend.Shows(ds.Label) {
			legend = append(legend, ds.Label)
		}
		data := make([]interface{}, len(ds.Data))
		for i, s := range ds.Data {
			if s.Valid {
				data[i] = []interface{}{i, s.Value}
			} else {
				data[i] = []interface{}{i, "-"}
			}
		}
		item := map[string]interface{}{
			"id":           ds.ID,
			"name":         ds.Label,
			"type":         "line",
			"data":         data,
			"smooth":       ds.Tension > 0,
			"connectNulls": ds.SpanGaps,
			"showSymbol":   ds.ShowPoints,
			"symbolSize":   5,
			"lineStyle":    map[string]interface{}{"color": ds.BorderColor, "width": ds.BorderWidth},
			"itemStyle":    map[string]interface{}{"color": ds.BorderColor},
		}
		if ds.Fill != nil && len(ds.Fill.Gradient) > 0 {
			item["areaStyle"] = map[string]interface{}{
				"origin": "start",
				"color":  linearGradient(ds.Fill.Gradient),
			}
		}
		series = append(series, item)
	}

	if len(series) > 0 {
		first := series[0].(map[string]interface{})
		if spec.Shading != nil {
			first["markArea"] = nightMarkArea(spec.Shading, last)
		}
		if len(spec.Annotations) > 0 {
			first["markPoint"] = annotationMarkPoint(spec.Annotations)
		}
	}

	option := map[string]interface{}{
		"backgroundColor": spec.Background,
		"animation":       false,
		"title": map[string]interface{}{
			"text":    spec.Title,
			"subtext": spec.Subtitle,
			"right":   10,
		},
		"legend": map[string]interface{}{
			"show": spec.Legend.Display,
			"data": legend,
			"top":  8,
		},
		"tooltip": map[string]interface{}{
			"show":    spec.Tooltip.Enabled,
			"trigger": tooltipTrigger(spec.Tooltip),
		},
		"grid": map[string]interface{}{"left": 50, "right": 20, "top": 50, "bottom": 40},
		"xAxis": map[string]interface{}{
			"type":         "value",
			"min":          0,
			"max":          last,
			"interval":     1,
			"name":         axisName(spec.Scales.X),
			"nameLocation": "middle",
			"nameGap":      28,
			"splitLine":    map[string]interface{}{"show": spec.Scales.X.ShowGrid},
			"axisLabel":    map[string]interface{}{"inside": spec.Scales.X.TickMirror},
		},
		"yAxis": map[string]interface{}{
			"type":      spec.Scales.Y.Type,
			"position":  spec.Scales.Y.Position,
			"name":      spec.Scales.Y.Title,
			"min":       spec.Scales.Y.Min,
			"max":       spec.Scales.Y.Max,
			"interval":  spec.Scales.Y.StepSize,
			"splitLine": map[string]interface{}{"show": spec.Scales.Y.ShowGrid},
			"axisLine":  map[string]interface{}{"show": spec.Scales.Y.ShowBorder},
		},
		"series": series,
	}
	return option, nil
}

// EChartsSnippet renders spec as an embeddable div + script pair.
func EChartsSnippet(spec *ChartSpec, id string) (ChartSnippet, error) {
	option, err := EChartsOption(spec)
	if err != nil {
		return ChartSnippet{}, err
	}
	if id == "" {
		id = "ox-forecast-chart"
	}
	optJSON, err := json.Marshal(option)
	if err != nil {
		return ChartSnippet{}, fmt.Errorf("failed to marshal chart option: %w", err)
	}
	labelsJSON, err := json.Marshal(spec.Scales.X.TickLabels)
	if err != nil {
		return ChartSnippet{}, fmt.Errorf("failed to marshal tick labels: %w", err)
	}

	div := fmt.Sprintf("<div id=\"%s\" style=\"width:100%%;height:420px;\"></div>", id)
	script := fmt.Sprintf(`<script>(function(){var el=document.getElementById('%s');if(!el)return;var c=echarts.init(el);var option=%s;var ticks=%s;option.xAxis.axisLabel.formatter=function(v){var t=ticks[Math.round(v)];return t===null||t===undefined?'':t;};c.setOption(option);window.addEventListener('resize',function(){c.resize();});})();</script>`, id, string(optJSON), string(labelsJSON))

	completeHTML := fmt.Sprintf(`<script src="%s"></script>
<div class="chart-item">
	%s
</div>
%s`, EChartsScriptURL, div, script)

	return ChartSnippet{ID: id, Title: spec.Title, Div: div, Script: script, HTML: completeHTML}, nil
}

// linearGradient builds a left-to-right ECharts gradient. ECharts stretches the
// gradient over the series bounding box rather than the plot, so offsets are
// rescaled to the span of present samples.
func linearGradient(stops []GradientStop) map[string]interface{} {
	lo, hi := 0.0, 1.0
	for _, s := range stops {
		if !s.Color.IsTransparent() {
			lo = s.Offset
			break
		}
	}
	for i := len(stops) - 1; i >= 0; i-- {
		if !stops[i].Color.IsTransparent() {
			hi = stops[i].Offset
			break
		}
	}
	span := hi - lo
	var colorStops []interface{}
	for _, s := range stops {
		if s.Offset < lo || s.Offset > hi {
			continue
		}
		off := 0.0
		if span > 0 {
			off = (s.Offset - lo) / span
		}
		colorStops = append(colorStops, map[string]interface{}{
			"offset": math.Round(off*1e4) / 1e4,
			"color":  s.Color,
		})
	}
	return map[string]interface{}{
		"type":       "linear",
		"x":          0,
		"y":          0,
		"x2":         1,
		"y2":         0,
		"colorStops": colorStops,
	}
}

// nightSpans returns the night bands in x axis units on an axis of 0..last.
func nightSpans(n *NightShading, last float64) [][2]float64 {
	rise, set := n.Fractions()
	var out [][2]float64
	if rise > 0 {
		out = append(out, [2]float64{0, rise * last})
	}
	if set < 1 {
		out = append(out, [2]float64{set * last, last})
	}
	return out
}

func nightMarkArea(n *NightShading, last float64) map[string]interface{} {
	var data []interface{}
	for _, span := range nightSpans(n, last) {
		data = append(data, []interface{}{
			map[string]interface{}{"xAxis": span[0]},
			map[string]interface{}{"xAxis": span[1]},
		})
	}
	return map[string]interface{}{
		"silent":    true,
		"itemStyle": map[string]interface{}{"color": n.Color},
		"data":      data,
	}
}

func annotationMarkPoint(items []Annotation) map[string]interface{} {
	data := make([]interface{}, 0, len(items))
	for _, a := range items {
		data = append(data, map[string]interface{}{
			"name":       a.ID,
			"coord":      []interface{}{a.XIndex, a.Y},
			"symbolSize": 0,
			"label": map[string]interface{}{
				"show":      true,
				"formatter": a.Text,
				"color":     a.Color,
			},
		})
	}
	return map[string]interface{}{"data": data}
}

func tooltipTrigger(t Tooltip) string {
	if strings.EqualFold(t.Mode, "index") {
		return "axis"
	}
	return "item"
}

func axisName(x XScale) string {
	if !x.ShowTitle {
		return ""
	}
	return x.Title
}
