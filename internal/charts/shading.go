package charts

import (
	"fmt"
	"time"

	"oxforecast/internal/models"
)

// Rect is an axis-aligned rectangle in renderer pixels.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// PlotArea is the realized plotting region handed to the draw hook at paint time.
type PlotArea struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Right is the x coordinate of the plot's right edge
func (p PlotArea) Right() float64 {
	return p.Left + p.Width
}

// NightBands is the horizontal extent of the two night overlays.
type NightBands struct {
	BeforeSunriseWidth float64 `json:"before_sunrise_width"`
	AfterSunsetX       float64 `json:"after_sunset_x"`
	AfterSunsetWidth   float64 `json:"after_sunset_width"`
}

// ShadeBounds computes the night overlays for a 24 hour plot: midnight to sunrise
// from the left edge, and sunset to midnight ending exactly on the right edge.
func ShadeBounds(sunrise, sunset time.Time, area PlotArea) NightBands {
	return boundsForHours(HourOfDay(sunrise), HourOfDay(sunset), area)
}

func boundsForHours(sunriseHour, sunsetHour float64, area PlotArea) NightBands {
	x := area.Left + (sunsetHour/24)*area.Width
	return NightBands{
		BeforeSunriseWidth: (sunriseHour / 24) * area.Width,
		AfterSunsetX:       x,
		AfterSunsetWidth:   area.Right() - x,
	}
}

// NightShading is the precomputed day/night decoration attached to a ChartSpec.
type NightShading struct {
	SunriseHour float64 `json:"sunrise_hour"`
	SunsetHour  float64 `json:"sunset_hour"`
	Color       Color   `json:"color"`
}

// NewNightShading validates sun times and converts them to fractional hours.
// Returns nil when no sun times are given.
func NewNightShading(sun *models.SunTimes) (*NightShading, error) {
	if sun == nil || (sun.Sunrise.IsZero() && sun.Sunset.IsZero()) {
		return nil, nil
	}
	rise, set := HourOfDay(sun.Sunrise), HourOfDay(sun.Sunset)
	if rise > set {
		return nil, fmt.Errorf("%w: sunrise %s after sunset %s", ErrInvalidSunTimes, FormatTime(sun.Sunrise), FormatTime(sun.Sunset))
	}
	return &NightShading{SunriseHour: rise, SunsetHour: set, Color: NightShadeColor}, nil
}

// Bounds places the bands on a realized plot area
func (n NightShading) Bounds(area PlotArea) NightBands {
	return boundsForHours(n.SunriseHour, n.SunsetHour, area)
}

// Rects returns the two overlays as full-height rectangles.
func (n NightShading) Rects(area PlotArea) []Rect {
	b := n.Bounds(area)
	return []Rect{
		{X: area.Left, Y: area.Top, Width: b.BeforeSunriseWidth, Height: area.Height},
		{X: b.AfterSunsetX, Y: area.Top, Width: b.AfterSunsetWidth, Height: area.Height},
	}
}

// Fractions returns the band edges as fractions of the plot width:
// night covers [0, sunrise) and [sunset, 1].
func (n NightShading) Fractions() (sunrise, sunset float64) {
	return n.SunriseHour / 24, n.SunsetHour / 24
}

// Canvas is the paint surface a renderer exposes to the draw hook.
type Canvas interface {
	FillRect(r Rect, c Color)
}

// DrawHook is invoked by a renderer on every paint, before any dataset is drawn.
type DrawHook interface {
	BeforeDraw(c Canvas, bounds Rect, area PlotArea)
}
