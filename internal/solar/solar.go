package solar

import (
	"errors"
	"fmt"
	"time"

	"github.com/nathan-osman/go-sunrise"

	"oxforecast/internal/models"
)

// ErrNoSunEvent is returned for polar day or night, when the sun neither rises nor sets.
var ErrNoSunEvent = errors.New("sun does not rise or set on this date")

// Calculator computes sunrise and sunset for a fixed coordinate, expressed in the display zone.
type Calculator struct {
	lat, lon float64
	location *time.Location
}

// NewCalculator returns a calculator for the given coordinate; a nil location means UTC.
func NewCalculator(lat, lon float64, loc *time.Location) *Calculator {
	if loc == nil {
		loc = time.UTC
	}
	return &Calculator{lat: lat, lon: lon, location: loc}
}

// SunTimes returns sunrise and sunset for now's calendar date in the display zone.
func (c *Calculator) SunTimes(now time.Time) (*models.SunTimes, error) {
	if c.lat < -90 || c.lat > 90 || c.lon < -180 || c.lon > 180 {
		return nil, fmt.Errorf("coordinate out of range: lat=%v lon=%v", c.lat, c.lon)
	}
	local := now.In(c.location)
	rise, set := sunrise.SunriseSunset(c.lat, c.lon, local.Year(), local.Month(), local.Day())
	if rise.IsZero() || set.IsZero() {
		return nil, fmt.Errorf("%w: %s at %.4f,%.4f", ErrNoSunEvent, local.Format("2006-01-02"), c.lat, c.lon)
	}
	return &models.SunTimes{
		Sunrise: rise.In(c.location),
		Sunset:  set.In(c.location),
	}, nil
}
