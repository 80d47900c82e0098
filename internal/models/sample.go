package models

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Sample is a single hourly reading. Valid is false when the hour has no data.
type Sample struct {
	Value float64
	Valid bool
}

// Some returns a present sample.
func Some(v float64) Sample {
	return Sample{Value: v, Valid: true}
}

// Absent returns a sample with no data.
func Absent() Sample {
	return Sample{}
}

// MarshalJSON encodes absent samples as null
func (s Sample) MarshalJSON() ([]byte, error) {
	if !s.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(s.Value, 'f', -1, 64)), nil
}

// UnmarshalJSON decodes null as an absent sample
func (s *Sample) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*s = Sample{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*s = Some(v)
	return nil
}

// HourlySeries is an ordered run of hourly samples.
type HourlySeries []Sample

// SeriesOf builds a fully populated series from plain values
func SeriesOf(values ...float64) HourlySeries {
	out := make(HourlySeries, len(values))
	for i, v := range values {
		out[i] = Some(v)
	}
	return out
}

// AbsentSeries returns n absent samples
func AbsentSeries(n int) HourlySeries {
	if n <= 0 {
		return HourlySeries{}
	}
	return make(HourlySeries, n)
}

// Present counts the samples that carry data
func (h HourlySeries) Present() int {
	n := 0
	for _, s := range h {
		if s.Valid {
			n++
		}
	}
	return n
}

// LeadingAbsent counts absent samples before the first present one
func (h HourlySeries) LeadingAbsent() int {
	for i, s := range h {
		if s.Valid {
			return i
		}
	}
	return len(h)
}

// Max returns the largest present value; ok is false when nothing is present
func (h HourlySeries) Max() (max float64, ok bool) {
	for _, s := range h {
		if !s.Valid {
			continue
		}
		if !ok || s.Value > max {
			max = s.Value
			ok = true
		}
	}
	return max, ok
}
