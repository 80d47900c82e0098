package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCountersAreRegistered(t *testing.T) {
	ChartsRenderedTotal.Reset()
	ChartsRenderedTotal.WithLabelValues("png", "simple").Inc()
	ChartsRenderedTotal.WithLabelValues("png", "simple").Inc()
	ChartsRenderedTotal.WithLabelValues("html", "rich").Inc()

	assert.Equal(t, 2.0, testutil.ToFloat64(ChartsRenderedTotal.WithLabelValues("png", "simple")))
	assert.Equal(t, 2, testutil.CollectAndCount(ChartsRenderedTotal))
}

func TestUpstreamLabels(t *testing.T) {
	UpstreamRequestsTotal.Reset()
	UpstreamRequestsTotal.WithLabelValues("forecast", "unavailable").Inc()
	assert.Equal(t, 1.0, testutil.ToFloat64(UpstreamRequestsTotal.WithLabelValues("forecast", "unavailable")))
	assert.Equal(t, 0.0, testutil.ToFloat64(UpstreamRequestsTotal.WithLabelValues("forecast", "ok")))
}
