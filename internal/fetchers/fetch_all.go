package fetchers

import (
	"context"
	"fmt"
	"time"

	"oxforecast/internal/logger"
	"oxforecast/internal/models"
)

// Request selects what FetchAll loads.
type Request struct {
	Region string
	Now    time.Time
	// Observations and Location are optional extras; their failures are logged
	// and leave the corresponding field nil.
	Observations bool
	Location     bool
	Lon, Lat     float64
}

// FetchAll loads the forecast plus the requested extras concurrently. Only a
// forecast failure fails the call.
func (c *Client) FetchAll(ctx context.Context, req Request) (*models.ChartData, error) {
	c.log.Debug("Starting data fetch", logger.Fields{"region": req.Region, "observations": req.Observations, "location": req.Location})

	forecastChan := make(chan *models.ForecastResponse, 1)
	observationChan := make(chan *models.ObservationResponse, 1)
	locationChan := make(chan *models.LocationResponse, 1)
	errChan := make(chan error, 3)

	pending := 1
	go func() {
		data, err := c.FetchForecast(ctx, req.Region, req.Now)
		if err != nil {
			errChan <- fmt.Errorf("forecast fetch failed: %w", err)
			return
		}
		forecastChan <- data
	}()

	if req.Observations {
		pending++
		go func() {
			data, err := c.FetchObservation(ctx, req.Region, req.Now)
			if err != nil {
				c.log.Warn("Observation fetch failed, charting without observations", logger.Fields{"error": err.Error()})
				observationChan <- nil
				return
			}
			observationChan <- data
		}()
	}

	if req.Location {
		pending++
		go func() {
			data, err := c.FetchLocation(ctx, req.Lon, req.Lat)
			if err != nil {
				c.log.Warn("Location lookup failed", logger.Fields{"error": err.Error()})
				locationChan <- nil
				return
			}
			locationChan <- data
		}()
	}

	result := &models.ChartData{Region: req.Region, Now: req.Now}
	var forecastErr error
	for pending > 0 {
		select {
		case data := <-forecastChan:
			result.Forecast = data
			pending--
		case data := <-observationChan:
			result.Observation = data
			pending--
		case data := <-locationChan:
			result.Location = data
			pending--
		case err := <-errChan:
			forecastErr = err
			pending--
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if forecastErr != nil {
		return nil, forecastErr
	}
	return result, nil
}
