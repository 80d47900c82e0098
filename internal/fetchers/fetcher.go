package fetchers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-resty/resty/v2"

	"oxforecast/internal/logger"
	"oxforecast/internal/metrics"
	"oxforecast/internal/models"
)

// Options configures a Client.
type Options struct {
	BaseURL string
	Timeout time.Duration
	// RPS and Burst bound the request rate; RPS <= 0 disables limiting.
	RPS   float64
	Burst int
	// Location is the display zone used for request timestamps.
	Location *time.Location
}

// Client talks to the forecast API. Failures are returned once and never retried.
type Client struct {
	client   *resty.Client
	limiter  *RateLimiter
	validate *validator.Validate
	location *time.Location
	log      *logger.Logger
}

// NewClient creates a new forecast API client
func NewClient(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	client := resty.New()
	client.SetBaseURL(strings.TrimRight(opts.BaseURL, "/"))
	client.SetTimeout(opts.Timeout)
	client.SetRetryCount(0)
	client.SetHeader("Accept", "application/json")

	return &Client{
		client:   client,
		limiter:  NewRateLimiter(opts.RPS, opts.Burst),
		validate: validator.New(),
		location: opts.Location,
		log:      logger.Component("fetchers"),
	}
}

// get performs one GET and decodes the JSON body into target.
func (c *Client) get(ctx context.Context, endpoint, path string, params map[string]string, target interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	start := time.Now()
	resp, err := c.client.R().
		SetContext(ctx).
		SetPathParams(params).
		Get(path)
	metrics.UpstreamRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())

	if err != nil {
		err = fmt.Errorf("failed to fetch %s: %w", endpoint, err)
		metrics.UpstreamRequestsTotal.WithLabelValues(endpoint, outcome(err)).Inc()
		c.log.Error("Upstream request failed", err, logger.Fields{"endpoint": endpoint})
		return err
	}

	url := resp.Request.URL
	if err := statusError(resp.StatusCode(), url, resp.Body()); err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(endpoint, outcome(err)).Inc()
		c.log.Warn("Upstream returned error status", logger.Fields{
			"endpoint": endpoint,
			"url":      url,
			"status":   resp.StatusCode(),
		})
		return err
	}

	if err := json.Unmarshal(resp.Body(), target); err != nil {
		err = fmt.Errorf("failed to parse %s response: %w", endpoint, err)
		metrics.UpstreamRequestsTotal.WithLabelValues(endpoint, outcome(err)).Inc()
		return err
	}

	metrics.UpstreamRequestsTotal.WithLabelValues(endpoint, "ok").Inc()
	c.log.Debug("Upstream request completed", logger.Fields{
		"endpoint":    endpoint,
		"url":         url,
		"status":      resp.StatusCode(),
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return nil
}

// FetchForecast loads the forecast and exceedance probabilities starting at now's hour.
func (c *Client) FetchForecast(ctx context.Context, region string, now time.Time) (*models.ForecastResponse, error) {
	r, err := NormalizeRegion(region)
	if err != nil {
		return nil, err
	}
	var data models.ForecastResponse
	if err := c.get(ctx, "forecast", "/ox/v0a/{region}/{timestamp}", map[string]string{
		"region":    r,
		"timestamp": HourTimestamp(now, c.location),
	}, &data); err != nil {
		return nil, err
	}
	if err := c.validate.Struct(&data); err != nil {
		return nil, fmt.Errorf("invalid forecast payload: %w", err)
	}
	return &data, nil
}

// FetchObservation loads the observed readings for now's day with missing hours normalized to absent.
func (c *Client) FetchObservation(ctx context.Context, region string, now time.Time) (*models.ObservationResponse, error) {
	r, err := NormalizeRegion(region)
	if err != nil {
		return nil, err
	}
	var data models.ObservationResponse
	if err := c.get(ctx, "observation", "/ox_obs/v0a/{region}/{timestamp}", map[string]string{
		"region":    r,
		"timestamp": HourTimestamp(now, c.location),
	}, &data); err != nil {
		return nil, err
	}
	if err := c.validate.Struct(&data); err != nil {
		return nil, fmt.Errorf("invalid observation payload: %w", err)
	}
	var missing int
	data.OXObs, missing = NormalizeObservations(data.OXObs)
	if missing > 0 {
		c.log.Debug("Observation hours missing", logger.Fields{"missing": missing, "total": len(data.OXObs)})
	}
	return &data, nil
}

// FetchLocation looks up the address for a coordinate pair rounded to 3 decimals.
func (c *Client) FetchLocation(ctx context.Context, lon, lat float64) (*models.LocationResponse, error) {
	var data models.LocationResponse
	if err := c.get(ctx, "location", "/loc/{lon}/{lat}", map[string]string{
		"lon": FormatCoordinate(lon),
		"lat": FormatCoordinate(lat),
	}, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// FetchProbabilityTable loads the exceedance probability lookup table.
func (c *Client) FetchProbabilityTable(ctx context.Context) (models.ProbabilityTable, error) {
	var data models.ProbabilityTable
	if err := c.get(ctx, "ptable", "/ptable/v0a", nil, &data); err != nil {
		return nil, err
	}
	return data, nil
}
