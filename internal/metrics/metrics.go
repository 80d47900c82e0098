package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTPRequestsTotal counts served requests by path, method and status code.
var HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "oxforecast_http_requests_total",
	Help: "Total number of HTTP requests by path, method and code.",
}, []string{"path", "method", "code"})

var HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "oxforecast_http_request_duration_seconds",
	Help:    "HTTP request latency by path.",
	Buckets: prometheus.DefBuckets,
}, []string{"path"})

// UpstreamRequestsTotal counts calls to the forecast API by endpoint and outcome
// (ok, unavailable, failed, error).
var UpstreamRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "oxforecast_upstream_requests_total",
	Help: "Total number of forecast API requests by endpoint and outcome.",
}, []string{"endpoint", "outcome"})

var UpstreamRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "oxforecast_upstream_request_duration_seconds",
	Help:    "Forecast API latency by endpoint.",
	Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
}, []string{"endpoint"})

// ChartsRenderedTotal counts rendered charts by output format and variant.
var ChartsRenderedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "oxforecast_charts_rendered_total",
	Help: "Total number of charts rendered by format and variant.",
}, []string{"format", "variant"})

// ChartFailuresTotal counts chart requests that ended without a chart.
var ChartFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "oxforecast_chart_failures_total",
	Help: "Total number of failed chart requests by stage.",
}, []string{"stage"})
