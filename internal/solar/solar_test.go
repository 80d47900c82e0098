package solar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var jst = time.FixedZone("JST", 9*3600)

func minutesOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

func TestSunTimesYokohama(t *testing.T) {
	calc := NewCalculator(35.4478, 139.6425, jst)

	tests := []struct {
		name             string
		date             time.Time
		riseFrom, riseTo int
		setFrom, setTo   int
	}{
		{"summer solstice", time.Date(2024, 6, 21, 12, 0, 0, 0, jst), 4*60 + 15, 4*60 + 40, 18*60 + 50, 19*60 + 10},
		{"winter solstice", time.Date(2024, 12, 21, 12, 0, 0, 0, jst), 6*60 + 35, 7 * 60, 16*60 + 20, 16*60 + 45},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, err := calc.SunTimes(tt.date)
			require.NoError(t, err)
			assert.Equal(t, jst, st.Sunrise.Location())
			assert.Equal(t, tt.date.Day(), st.Sunrise.Day())
			assert.True(t, st.Sunrise.Before(st.Sunset))
			assert.GreaterOrEqual(t, minutesOfDay(st.Sunrise), tt.riseFrom)
			assert.LessOrEqual(t, minutesOfDay(st.Sunrise), tt.riseTo)
			assert.GreaterOrEqual(t, minutesOfDay(st.Sunset), tt.setFrom)
			assert.LessOrEqual(t, minutesOfDay(st.Sunset), tt.setTo)
		})
	}
}

func TestSunTimesUsesDisplayDate(t *testing.T) {
	calc := NewCalculator(35.4478, 139.6425, jst)
	// 2024-06-20 20:00 UTC is already 2024-06-21 in Japan.
	st, err := calc.SunTimes(time.Date(2024, 6, 20, 20, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 21, st.Sunrise.Day())
}

func TestSunTimesPolar(t *testing.T) {
	calc := NewCalculator(78.22, 15.65, time.UTC)
	_, err := calc.SunTimes(time.Date(2024, 6, 21, 12, 0, 0, 0, time.UTC))
	assert.ErrorIs(t, err, ErrNoSunEvent)
}

func TestSunTimesInvalidCoordinate(t *testing.T) {
	_, err := NewCalculator(120, 0, nil).SunTimes(time.Now())
	assert.Error(t, err)
}
