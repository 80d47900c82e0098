package charts

import (
	"fmt"
	"time"
)

// FormatTime renders the wall-clock hour and minute of t as "HH:MM".
// No zone conversion happens here; callers pass t already in the display zone.
func FormatTime(t time.Time) string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// FormatStartTime renders the "as of" caption shown above the chart, e.g. "10月19日 14時時点".
func FormatStartTime(t time.Time) string {
	return fmt.Sprintf("%02d月%02d日 %02d時時点", int(t.Month()), t.Day(), t.Hour())
}

// slotTime returns now's calendar day at the given hour, minute zero.
// Hour 24 rolls over to midnight of the following day.
func slotTime(now time.Time, hour int) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
}

// HourOfDay returns the hour of t with minutes as a fraction, in [0,24).
func HourOfDay(t time.Time) float64 {
	return float64(t.Hour()) + float64(t.Minute())/60
}
