package charts

import (
	"errors"
	"fmt"
	"math"

	"oxforecast/internal/models"
)

const (
	// DayAxisSlots is the offset-insertion layout: one slot per hour 0..23, forecast starting at "now".
	DayAxisSlots = 24
	// AnchoredAxisSlots is the anchor-at-zero layout: hours 0..24 inclusive, observations
	// up to "now" and forecast from the following hour.
	AnchoredAxisSlots = 25

	// observedTail is the index of the newest sample in a day-long observation series.
	observedTail = 23
)

var (
	ErrHourOutOfRange  = errors.New("hour out of range")
	ErrInvalidSeries   = errors.New("invalid series")
	ErrInvalidLayout   = errors.New("invalid axis layout")
	ErrInvalidSunTimes = errors.New("invalid sun times")
)

// AlignedSeries holds every series padded onto the shared hour-of-day axis.
type AlignedSeries struct {
	Forecast  models.HourlySeries
	Observed  models.HourlySeries
	Threshold models.HourlySeries
	// Colors is aligned with Forecast; padded slots carry Transparent.
	Colors []Color
}

// Aligner places forecast, observation and threshold series on one axis of Slots hours.
type Aligner struct {
	Slots int
}

// NewAligner returns an aligner for a 24 or 25 slot axis
func NewAligner(slots int) (Aligner, error) {
	if slots != DayAxisSlots && slots != AnchoredAxisSlots {
		return Aligner{}, fmt.Errorf("%w: %d slots (want %d or %d)", ErrInvalidLayout, slots, DayAxisSlots, AnchoredAxisSlots)
	}
	return Aligner{Slots: slots}, nil
}

// Align reconciles the forecast (which starts at "now") and the observations (which
// end at "now") onto the axis. Missing data never fails: short or empty inputs are
// padded with absent samples. An hour outside [0,23] or an unusable input is rejected.
// The threshold line always spans every slot.
func (a Aligner) Align(nowHour int, forecast, observed models.HourlySeries, threshold float64, colors []Color) (AlignedSeries, error) {
	if a.Slots != DayAxisSlots && a.Slots != AnchoredAxisSlots {
		return AlignedSeries{}, fmt.Errorf("%w: %d slots", ErrInvalidLayout, a.Slots)
	}
	if nowHour < 0 || nowHour > 23 {
		return AlignedSeries{}, fmt.Errorf("%w: %d not in [0,23]", ErrHourOutOfRange, nowHour)
	}
	if len(observed) > models.MaxObservations {
		return AlignedSeries{}, fmt.Errorf("%w: %d observations exceed one day", ErrInvalidSeries, len(observed))
	}
	if math.IsNaN(threshold) || math.IsInf(threshold, 0) {
		return AlignedSeries{}, fmt.Errorf("%w: threshold %v is not finite", ErrInvalidSeries, threshold)
	}

	// The day layout puts the current hour's forecast at slot nowHour; the anchored
	// layout keeps slot nowHour for the current observation.
	lead := nowHour
	window := nowHour
	if a.Slots == AnchoredAxisSlots {
		lead = nowHour + 1
		window = nowHour + 1
	}
	keep := a.Slots - lead

	out := AlignedSeries{
		Forecast:  a.padSeries(lead, truncate(forecast, keep)),
		Threshold: constantSeries(a.Slots, threshold),
		Colors:    a.padColors(lead, truncateColors(colors, keep)),
	}
	if observed != nil {
		out.Observed = a.padSeries(0, observationWindow(observed, nowHour, window))
	}
	return out, nil
}

// observationWindow takes window samples starting at index 23-nowHour, the newest
// readings up to and including (anchored) or just before (day layout) the current hour.
func observationWindow(observed models.HourlySeries, nowHour, window int) models.HourlySeries {
	start := observedTail - nowHour
	if start >= len(observed) || window == 0 {
		return nil
	}
	end := start + window
	if end > len(observed) {
		end = len(observed)
	}
	return observed[start:end]
}

func (a Aligner) padSeries(lead int, body models.HourlySeries) models.HourlySeries {
	out := models.AbsentSeries(a.Slots)
	copy(out[lead:], body)
	return out
}

func (a Aligner) padColors(lead int, body []Color) []Color {
	out := make([]Color, a.Slots)
	for i := range out {
		out[i] = Transparent
	}
	copy(out[lead:], body)
	return out
}

func truncate(s models.HourlySeries, n int) models.HourlySeries {
	if n < len(s) {
		return s[:n]
	}
	return s
}

func truncateColors(c []Color, n int) []Color {
	if n < len(c) {
		return c[:n]
	}
	return c
}

func constantSeries(n int, v float64) models.HourlySeries {
	out := make(models.HourlySeries, n)
	for i := range out {
		out[i] = models.Some(v)
	}
	return out
}
