package mocks

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oxforecast/internal/fetchers"
)

var testNow = time.Date(2024, 7, 1, 9, 0, 0, 0, time.FixedZone("JST", 9*3600))

func TestFetchAllFromFixtures(t *testing.T) {
	svc := NewMockService(".")

	data, err := svc.FetchAll(context.Background(), fetchers.Request{
		Region: "kanagawa", Now: testNow, Observations: true, Location: true,
	})
	require.NoError(t, err)

	assert.Equal(t, testNow, data.Now)
	require.NotNil(t, data.Forecast)
	assert.Len(t, data.Forecast.OX, 24)
	assert.Len(t, data.Forecast.Probabilities, 24)

	require.NotNil(t, data.Observation)
	assert.Len(t, data.Observation.OXObs, 24)
	assert.False(t, data.Observation.OXObs[10].Valid, "sentinel normalized to absent")
	assert.Equal(t, 22, data.Observation.OXObs.Present())

	require.NotNil(t, data.Location)
	assert.Equal(t, "kanagawa", data.Location.Region)
}

func TestFetchAllOptionalParts(t *testing.T) {
	data, err := NewMockService(".").FetchAll(context.Background(), fetchers.Request{Region: "kanagawa", Now: testNow})
	require.NoError(t, err)
	assert.Nil(t, data.Observation)
	assert.Nil(t, data.Location)
}

func TestFetchProbabilityTable(t *testing.T) {
	table, err := NewMockService(".").FetchProbabilityTable(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, table.FindRow(120, 1))
	assert.Equal(t, -1, table.FindRow(140, 1))
}

func TestMissingFixtures(t *testing.T) {
	svc := NewMockService(t.TempDir())
	_, err := svc.FetchAll(context.Background(), fetchers.Request{Region: "kanagawa", Now: testNow})
	assert.ErrorContains(t, err, "forecast.json")
}

func TestBrokenFixture(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "data"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "data", "ptable.json"), []byte("{"), 0644))

	_, err := NewMockService(dir).FetchProbabilityTable(context.Background())
	assert.ErrorContains(t, err, "failed to unmarshal")
}
