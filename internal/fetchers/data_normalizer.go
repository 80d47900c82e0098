package fetchers

import (
	"fmt"
	"math"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"oxforecast/internal/models"
)

// timestampLayout is the hour-aligned request timestamp, e.g. 2024-07-01T09:00:00+09:00.
const timestampLayout = "2006-01-02T15:04:05-07:00"

// HourTimestamp converts now to loc and truncates it to the hour.
func HourTimestamp(now time.Time, loc *time.Location) string {
	if loc == nil {
		loc = now.Location()
	}
	t := now.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, loc).Format(timestampLayout)
}

// RoundCoordinate rounds to 3 decimal places, the precision the location endpoint is keyed on.
func RoundCoordinate(v float64) float64 {
	return math.Round(v*1000) / 1000
}

// FormatCoordinate writes a rounded coordinate without trailing zeros
func FormatCoordinate(v float64) string {
	s := fmt.Sprintf("%.3f", RoundCoordinate(v))
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

// NormalizeRegion folds a region name to the lowercase ASCII path segment the API
// uses: accents are stripped, width variants are folded and spaces become hyphens.
func NormalizeRegion(s string) (string, error) {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, strings.TrimSpace(s))
	if err != nil {
		return "", fmt.Errorf("failed to normalize region %q: %w", s, err)
	}
	out = strings.Join(strings.Fields(strings.ToLower(out)), "-")
	if out == "" {
		return "", fmt.Errorf("region is empty")
	}
	return out, nil
}

// NormalizeObservations replaces the missing-reading sentinel with absent samples.
// Non-finite values are treated the same way.
func NormalizeObservations(series models.HourlySeries) (models.HourlySeries, int) {
	out := make(models.HourlySeries, len(series))
	missing := 0
	for i, s := range series {
		if !s.Valid || s.Value == models.MissingObservation || math.IsNaN(s.Value) || math.IsInf(s.Value, 0) {
			out[i] = models.Absent()
			missing++
			continue
		}
		out[i] = s
	}
	return out, missing
}
