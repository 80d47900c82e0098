package models

import "time"

// MissingObservation is the upstream marker for an hour without a reading.
const MissingObservation = -9999

// ForecastResponse is the forecast payload, indexed by forecast-hour offset from "now".
type ForecastResponse struct {
	OX            HourlySeries `json:"ox" validate:"required,max=48"`
	Probabilities []float64    `json:"p" validate:"max=48,dive,gte=0,lte=100"`
}

// MaxObservations is one reading per hour of a day.
const MaxObservations = 24

// ObservationResponse is the observation payload, oldest hour first and ending at "now".
type ObservationResponse struct {
	OXObs HourlySeries `json:"ox_obs" validate:"max=24"`
}

// LocationResponse describes the address for a coordinate pair
type LocationResponse struct {
	Address string  `json:"address"`
	Region  string  `json:"region"`
	Lon     float64 `json:"lon"`
	Lat     float64 `json:"lat"`
}

// ProbabilityTable holds exceedance probability rows keyed by their first two cells.
type ProbabilityTable [][]float64

// FindRow returns the index of the first row whose first two cells equal a and b, or -1.
func (t ProbabilityTable) FindRow(a, b float64) int {
	for i, row := range t {
		if len(row) >= 2 && row[0] == a && row[1] == b {
			return i
		}
	}
	return -1
}

// SunTimes carries sunrise and sunset for the charted day.
// Only the hour and minute of each instant are used.
type SunTimes struct {
	Sunrise time.Time `json:"sunrise"`
	Sunset  time.Time `json:"sunset"`
}

// ChartData is everything fetched for one render
type ChartData struct {
	Region      string               `json:"region"`
	Now         time.Time            `json:"now"`
	Forecast    *ForecastResponse    `json:"forecast"`
	Observation *ObservationResponse `json:"observation,omitempty"`
	Location    *LocationResponse    `json:"location,omitempty"`
	SunTimes    *SunTimes            `json:"sun_times,omitempty"`
}
