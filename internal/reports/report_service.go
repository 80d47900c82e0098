package reports

import (
	"context"
	"errors"
	"fmt"
	"time"

	"oxforecast/internal/charts"
	"oxforecast/internal/fetchers"
	"oxforecast/internal/logger"
	"oxforecast/internal/metrics"
	"oxforecast/internal/models"
)

// DataSource supplies chart inputs. fetchers.Client and mocks.MockService both satisfy it.
type DataSource interface {
	FetchAll(ctx context.Context, req fetchers.Request) (*models.ChartData, error)
	FetchProbabilityTable(ctx context.Context) (models.ProbabilityTable, error)
}

// SunTimesProvider returns sunrise and sunset for the date of now.
type SunTimesProvider interface {
	SunTimes(now time.Time) (*models.SunTimes, error)
}

// ServiceConfig holds what the service needs beyond its collaborators.
type ServiceConfig struct {
	Region   string
	Lat, Lon float64
	Location *time.Location
	Options  charts.Options
	Size     charts.Size
	Version  string
}

// Report is one complete render: the fetched data, every chart artifact and the page.
type Report struct {
	Data      *models.ChartData
	Artifacts *charts.Artifacts
	HTML      string
}

// ReportService orchestrates fetch, build and render for one chart
type ReportService struct {
	cfg      ServiceConfig
	source   DataSource
	sun      SunTimesProvider
	chartGen *charts.ChartGenerator
	pages    *PageBuilder
	log      *logger.Logger
}

// NewReportService creates a new report service. sun may be nil to skip night shading.
func NewReportService(cfg ServiceConfig, source DataSource, sun SunTimesProvider) *ReportService {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &ReportService{
		cfg:      cfg,
		source:   source,
		sun:      sun,
		chartGen: charts.NewChartGenerator(cfg.Options, cfg.Size),
		pages:    NewPageBuilder(cfg.Version),
		log:      logger.Component("reports"),
	}
}

// Pages exposes the page builder, e.g. for the unavailable page
func (rs *ReportService) Pages() *PageBuilder {
	return rs.pages
}

// Location is the display zone
func (rs *ReportService) Location() *time.Location {
	return rs.cfg.Location
}

// Fetch loads the chart data for now, including sun times when a provider is set.
func (rs *ReportService) Fetch(ctx context.Context, now time.Time) (*models.ChartData, error) {
	now = now.In(rs.cfg.Location)
	data, err := rs.source.FetchAll(ctx, fetchers.Request{
		Region:       rs.cfg.Region,
		Now:          now,
		Observations: rs.cfg.Options.WithObservations,
		Location:     true,
		Lon:          rs.cfg.Lon,
		Lat:          rs.cfg.Lat,
	})
	if err != nil {
		metrics.ChartFailuresTotal.WithLabelValues("fetch").Inc()
		return nil, fmt.Errorf("failed to fetch chart data: %w", err)
	}

	if rs.sun != nil {
		st, err := rs.sun.SunTimes(now)
		if err != nil {
			rs.log.Warn("Sun times unavailable, rendering without night shading", logger.Fields{"error": err.Error()})
		} else {
			data.SunTimes = st
		}
	}
	return data, nil
}

// Input converts fetched data into builder input.
func Input(data *models.ChartData) (charts.Input, error) {
	if data == nil || data.Forecast == nil {
		return charts.Input{}, errors.New("chart data has no forecast")
	}
	in := charts.Input{
		Forecast:      data.Forecast.OX,
		Probabilities: data.Forecast.Probabilities,
		Now:           data.Now,
		SunTimes:      data.SunTimes,
	}
	if data.Observation != nil {
		in.Observed = data.Observation.OXObs
	}
	return in, nil
}

// Build fetches and builds only the chart spec.
func (rs *ReportService) Build(ctx context.Context, now time.Time) (*charts.ChartSpec, error) {
	data, err := rs.Fetch(ctx, now)
	if err != nil {
		return nil, err
	}
	in, err := Input(data)
	if err != nil {
		return nil, err
	}
	spec, err := rs.chartGen.Build(in)
	if err != nil {
		metrics.ChartFailuresTotal.WithLabelValues("build").Inc()
		return nil, err
	}
	return spec, nil
}

// GenerateReport fetches, builds and renders every artifact plus the HTML page.
func (rs *ReportService) GenerateReport(ctx context.Context, now time.Time) (*Report, error) {
	start := time.Now()

	data, err := rs.Fetch(ctx, now)
	if err != nil {
		return nil, err
	}
	in, err := Input(data)
	if err != nil {
		return nil, err
	}

	artifacts, err := rs.chartGen.Generate(in)
	if err != nil {
		metrics.ChartFailuresTotal.WithLabelValues("render").Inc()
		return nil, fmt.Errorf("failed to generate chart: %w", err)
	}

	page, err := rs.pages.BuildPage(data, artifacts.Snippet, rs.cfg.Options.Threshold, rs.cfg.Location)
	if err != nil {
		metrics.ChartFailuresTotal.WithLabelValues("page").Inc()
		return nil, fmt.Errorf("failed to build page: %w", err)
	}

	variant := rs.cfg.Options.Variant()
	for _, format := range []string{"png", "echarts", "json", "html"} {
		metrics.ChartsRenderedTotal.WithLabelValues(format, variant).Inc()
	}

	rs.log.Info("Chart generated", logger.Fields{
		"variant":     variant,
		"slots":       artifacts.Spec.Slots(),
		"shading":     artifacts.Spec.Shading != nil,
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return &Report{Data: data, Artifacts: artifacts, HTML: page}, nil
}

// ProbabilityTable passes the lookup table through from the data source.
func (rs *ReportService) ProbabilityTable(ctx context.Context) (models.ProbabilityTable, error) {
	table, err := rs.source.FetchProbabilityTable(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch probability table: %w", err)
	}
	return table, nil
}
