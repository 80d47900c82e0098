package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSampleJSON(t *testing.T) {
	var series HourlySeries
	require.NoError(t, json.Unmarshal([]byte(`[10, null, 32.5]`), &series))

	require.Len(t, series, 3)
	assert.Equal(t, Some(10), series[0])
	assert.False(t, series[1].Valid)
	assert.Equal(t, Some(32.5), series[2])

	out, err := json.Marshal(series)
	require.NoError(t, err)
	assert.JSONEq(t, `[10, null, 32.5]`, string(out))
}

func TestSampleUnmarshalRejectsStrings(t *testing.T) {
	var s Sample
	assert.Error(t, json.Unmarshal([]byte(`"n/a"`), &s))
}

func TestHourlySeriesHelpers(t *testing.T) {
	series := append(AbsentSeries(3), SeriesOf(40, 90, 65)...)

	assert.Equal(t, 3, series.LeadingAbsent())
	assert.Equal(t, 3, series.Present())

	max, ok := series.Max()
	assert.True(t, ok)
	assert.Equal(t, 90.0, max)

	_, ok = AbsentSeries(4).Max()
	assert.False(t, ok)
	assert.Equal(t, 4, AbsentSeries(4).LeadingAbsent())
	assert.Empty(t, AbsentSeries(-1))
}

func TestProbabilityTableFindRow(t *testing.T) {
	table := ProbabilityTable{
		{0, 80, 5},
		{1, 100, 20},
		{1, 120, 55},
		{2},
	}

	tests := []struct {
		name string
		a, b float64
		want int
	}{
		{"first row", 0, 80, 0},
		{"matches both keys", 1, 120, 2},
		{"first key only", 1, 999, -1},
		{"short rows are skipped", 2, 0, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, table.FindRow(tt.a, tt.b))
		})
	}
}

func TestForecastResponseDecode(t *testing.T) {
	var resp ForecastResponse
	require.NoError(t, json.Unmarshal([]byte(`{"ox":[41,null,58],"p":[5,10,15]}`), &resp))

	assert.Len(t, resp.OX, 3)
	assert.Equal(t, 2, resp.OX.Present())
	assert.Equal(t, []float64{5, 10, 15}, resp.Probabilities)
}
