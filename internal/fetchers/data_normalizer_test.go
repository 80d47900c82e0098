package fetchers

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oxforecast/internal/models"
)

func TestHourTimestamp(t *testing.T) {
	assert.Equal(t, "2024-07-01T09:00:00+09:00", HourTimestamp(testNow, jst))
	assert.Equal(t, "2024-07-01T23:00:00+09:00", HourTimestamp(time.Date(2024, 7, 1, 14, 59, 59, 0, time.UTC), jst))
	assert.Equal(t, "2024-07-02T00:00:00+09:00", HourTimestamp(time.Date(2024, 7, 1, 15, 0, 0, 0, time.UTC), jst))
	assert.Equal(t, "2024-07-01T00:00:00+00:00", HourTimestamp(testNow, nil))
}

func TestRoundCoordinate(t *testing.T) {
	assert.Equal(t, 139.642, RoundCoordinate(139.64249))
	assert.Equal(t, 35.448, RoundCoordinate(35.44781))
	assert.Equal(t, "139.6", FormatCoordinate(139.6))
	assert.Equal(t, "-0.001", FormatCoordinate(-0.0012))
	assert.Equal(t, "140", FormatCoordinate(139.9999))
}

func TestNormalizeRegion(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"kanagawa", "kanagawa"},
		{"  Kanagawa ", "kanagawa"},
		{"Kanagawa Ken", "kanagawa-ken"},
		{"Tōkyō", "tokyo"},
		{"ＫＡＮＡＧＡＷＡ", "kanagawa"},
	}
	for _, tt := range tests {
		got, err := NormalizeRegion(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
	_, err := NormalizeRegion("   ")
	assert.Error(t, err)
}

func TestNormalizeObservations(t *testing.T) {
	in := models.HourlySeries{
		models.Some(10),
		models.Some(models.MissingObservation),
		models.Absent(),
		models.Some(math.NaN()),
		models.Some(0),
	}
	out, missing := NormalizeObservations(in)
	assert.Equal(t, 3, missing)
	assert.Equal(t, models.HourlySeries{models.Some(10), models.Absent(), models.Absent(), models.Absent(), models.Some(0)}, out)
	assert.True(t, in[1].Valid, "input left untouched")
}

func TestRateLimiter(t *testing.T) {
	unlimited := NewRateLimiter(0, 0)
	for i := 0; i < 100; i++ {
		require.NoError(t, unlimited.Wait(context.Background()))
	}

	limited := NewRateLimiter(0.001, 1)
	require.NoError(t, limited.Wait(context.Background()))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.Error(t, limited.Wait(ctx))
}
