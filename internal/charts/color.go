package charts

import (
	"fmt"
	"math"
	"strconv"

	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Color is an RGBA color with a fractional alpha, serialized as "rgba(r, g, b, a)".
type Color struct {
	R, G, B uint8
	A       float64
}

var (
	// Transparent pads gradient slots that have no forecast.
	Transparent = Color{R: 255, G: 255, B: 255, A: 0}

	ForecastLineColor  = Color{R: 75, G: 192, B: 192, A: 1}
	ThresholdLineColor = Color{R: 255, G: 0, B: 0, A: 1}
	ObservedLineColor  = Color{R: 54, G: 162, B: 235, A: 1}
	NightShadeColor    = Color{R: 0, G: 0, B: 0, A: 0.20}
)

// GradientColor maps an exceedance probability in [0,1] to a half-transparent
// color running from cyan (0) to red (1). Inputs outside [0,1] are clamped and
// NaN is treated as 0.
func GradientColor(probability float64) Color {
	p := clamp01(probability)
	gb := uint8(math.Round(255 * (1 - p)))
	return Color{
		R: uint8(math.Round(255 * p)),
		G: gb,
		B: gb,
		A: 0.5,
	}
}

// GradientColors converts percentages (0..100) into gradient colors
func GradientColors(percentages []float64) []Color {
	out := make([]Color, len(percentages))
	for i, pct := range percentages {
		out[i] = GradientColor(pct / 100)
	}
	return out
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// String formats the color as a CSS rgba() value
func (c Color) String() string {
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", c.R, c.G, c.B, strconv.FormatFloat(c.A, 'f', -1, 64))
}

// IsTransparent reports whether the color paints nothing
func (c Color) IsTransparent() bool {
	return c.A <= 0
}

// MarshalJSON writes the CSS form
func (c Color) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(c.String())), nil
}

// Mix blends two colors channel by channel; t=0 yields c, t=1 yields other.
func (c Color) Mix(other Color, t float64) Color {
	t = clamp01(t)
	lerp := func(a, b uint8) uint8 {
		return uint8(math.Round(float64(a) + (float64(b)-float64(a))*t))
	}
	return Color{
		R: lerp(c.R, other.R),
		G: lerp(c.G, other.G),
		B: lerp(c.B, other.B),
		A: c.A + (other.A-c.A)*t,
	}
}

// drawingColor converts to the go-chart color type
func (c Color) drawingColor() drawing.Color {
	return drawing.Color{R: c.R, G: c.G, B: c.B, A: uint8(math.Round(clamp01(c.A) * 255))}
}
