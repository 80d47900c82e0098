package charts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oxforecast/internal/models"
)

func sampleInput(hour int) Input {
	probabilities := make([]float64, 24)
	for i := range probabilities {
		probabilities[i] = float64(4 * i)
	}
	return Input{
		Forecast:      ramp(24, 20, 4),
		Observed:      ramp(24, 15, 3),
		Probabilities: probabilities,
		Now:           time.Date(2024, 7, 1, hour, 20, 0, 0, time.FixedZone("JST", 9*3600)),
		SunTimes: &models.SunTimes{
			Sunrise: time.Date(2024, 7, 1, 4, 30, 0, 0, time.UTC),
			Sunset:  time.Date(2024, 7, 1, 19, 0, 0, 0, time.UTC),
		},
	}
}

func labelsAt(spec *ChartSpec) map[int]string {
	out := map[int]string{}
	for i, l := range spec.Scales.X.TickLabels {
		if l != nil {
			out[i] = *l
		}
	}
	return out
}

func TestBuildSimpleVariant(t *testing.T) {
	spec, err := BuildChartConfig(sampleInput(9), SimpleOptions())
	require.NoError(t, err)

	assert.Equal(t, "line", spec.Type)
	assert.Equal(t, "07月01日 09時時点", spec.Subtitle)
	require.Len(t, spec.Labels, 24)
	assert.Equal(t, "1", spec.Labels[0])
	assert.Equal(t, "24", spec.Labels[23])

	require.Len(t, spec.Datasets, 2)
	forecast, ok := spec.Dataset("forecast")
	require.True(t, ok)
	assert.Equal(t, ForecastLabel, forecast.Label)
	assert.Equal(t, ForecastLineColor, forecast.BorderColor)
	assert.Equal(t, 9, forecast.Data.LeadingAbsent())
	assert.True(t, forecast.SpanGaps)
	require.NotNil(t, forecast.Fill)
	assert.Equal(t, "origin", forecast.Fill.Target)

	threshold, ok := spec.Dataset("threshold")
	require.True(t, ok)
	assert.Equal(t, ThresholdLabel, threshold.Label)
	assert.False(t, threshold.ShowPoints)
	assert.Equal(t, 24, threshold.Data.Present())

	_, ok = spec.Dataset("observed")
	assert.False(t, ok)

	assert.Equal(t, map[int]string{
		0: "00:00", 2: "02:00", 5: "05:00", 8: "08:00", 11: "11:00",
		14: "14:00", 17: "17:00", 20: "20:00", 23: "23:00",
	}, labelsAt(spec))

	assert.Equal(t, []float64{0, 30, 60, 90, 120, 150}, spec.Scales.Y.Ticks())
	assert.True(t, spec.Scales.Y.ShowGrid)
	assert.False(t, spec.Scales.X.ShowGrid)
	assert.True(t, spec.Scales.X.ShowTitle)
	assert.False(t, spec.Tooltip.Enabled)
	assert.Empty(t, spec.Annotations)
	assert.Equal(t, Transparent, spec.Background)
	require.NotNil(t, spec.Shading)
}

func TestBuildRichVariant(t *testing.T) {
	in := sampleInput(5)
	spec, err := BuildChartConfig(in, RichOptions())
	require.NoError(t, err)

	require.Len(t, spec.Labels, 25)
	require.Len(t, spec.Datasets, 3)

	observed, ok := spec.Dataset("observed")
	require.True(t, ok)
	assert.Equal(t, ObservedLineColor, observed.BorderColor)
	assert.Equal(t, in.Observed[18:24], observed.Data[:6])
	assert.Equal(t, 6, observed.Data.Present())

	forecast, _ := spec.Dataset("forecast")
	assert.Equal(t, 6, forecast.Data.LeadingAbsent())

	assert.Equal(t, map[int]string{6: "06:00", 12: "12:00", 18: "18:00"}, labelsAt(spec))
	assert.False(t, spec.Scales.Y.ShowGrid)
	assert.True(t, spec.Tooltip.Enabled)
	assert.Equal(t, "index", spec.Tooltip.Mode)

	require.Len(t, spec.Annotations, 3)
	assert.Equal(t, 23, spec.Annotations[1].XIndex)
	assert.Equal(t, 125.0, spec.Annotations[0].Y)
}

func TestBuildRichVariantWithoutObservations(t *testing.T) {
	in := sampleInput(5)
	in.Observed = nil
	spec, err := BuildChartConfig(in, RichOptions())
	require.NoError(t, err)

	observed, ok := spec.Dataset("observed")
	require.True(t, ok)
	assert.Len(t, observed.Data, 25)
	assert.Zero(t, observed.Data.Present())
}

func TestBuildGradientStops(t *testing.T) {
	spec, err := BuildChartConfig(sampleInput(3), SimpleOptions())
	require.NoError(t, err)

	forecast, _ := spec.Dataset("forecast")
	stops := forecast.Fill.Gradient
	require.Len(t, stops, 24)
	assert.Equal(t, 0.0, stops[0].Offset)
	assert.Equal(t, 1.0, stops[23].Offset)
	assert.InDelta(t, 3.0/23, stops[3].Offset, 1e-12)
	for i := 0; i < 3; i++ {
		assert.Equal(t, Transparent, stops[i].Color)
	}
	assert.Equal(t, GradientColor(0), stops[3].Color)
	assert.Equal(t, forecast.BackgroundColors[5], stops[5].Color)
}

func TestBuildIsDeterministic(t *testing.T) {
	for _, opts := range []Options{SimpleOptions(), RichOptions()} {
		a, err := BuildChartConfig(sampleInput(13), opts)
		require.NoError(t, err)
		b, err := BuildChartConfig(sampleInput(13), opts)
		require.NoError(t, err)
		assert.Equal(t, a, b)

		ca, cb := &recordingCanvas{}, &recordingCanvas{}
		area := PlotArea{Left: 30, Top: 5, Width: 900, Height: 400}
		a.BeforeDraw(ca, Rect{Width: 960, Height: 480}, area)
		b.BeforeDraw(cb, Rect{Width: 960, Height: 480}, area)
		assert.Equal(t, ca.fills, cb.fills)
	}
}

func TestBuildWithoutSunTimes(t *testing.T) {
	in := sampleInput(10)
	in.SunTimes = nil
	spec, err := BuildChartConfig(in, SimpleOptions())
	require.NoError(t, err)
	assert.Nil(t, spec.Shading)
}

func TestBuildErrors(t *testing.T) {
	in := sampleInput(10)
	in.Observed = ramp(30, 1, 1)
	_, err := BuildChartConfig(in, RichOptions())
	assert.ErrorIs(t, err, ErrInvalidSeries)

	in = sampleInput(10)
	in.SunTimes = &models.SunTimes{Sunrise: time.Date(2024, 7, 1, 20, 0, 0, 0, time.UTC), Sunset: time.Date(2024, 7, 1, 5, 0, 0, 0, time.UTC)}
	_, err = BuildChartConfig(in, SimpleOptions())
	assert.ErrorIs(t, err, ErrInvalidSunTimes)

	opts := SimpleOptions()
	opts.AxisLength = 48
	_, err = BuildChartConfig(sampleInput(10), opts)
	assert.ErrorIs(t, err, ErrInvalidLayout)
}

func TestLegendHidesProbabilityLabel(t *testing.T) {
	spec, err := BuildChartConfig(sampleInput(0), SimpleOptions())
	require.NoError(t, err)
	assert.False(t, spec.Legend.Shows(ProbabilityLabel))
	assert.True(t, spec.Legend.Shows(ForecastLabel))
	assert.False(t, Legend{}.Shows(ForecastLabel))
}

func TestOptionsForVariant(t *testing.T) {
	o, err := OptionsForVariant("rich")
	require.NoError(t, err)
	assert.Equal(t, RichOptions(), o)

	o, err = OptionsForVariant(" Simple ")
	require.NoError(t, err)
	assert.Equal(t, SimpleOptions(), o)

	o, err = OptionsForVariant("")
	require.NoError(t, err)
	assert.Equal(t, DayAxisSlots, o.AxisLength)

	_, err = OptionsForVariant("fancy")
	assert.Error(t, err)
}

func TestTickCadenceString(t *testing.T) {
	assert.Equal(t, "every-third", TickEveryThird.String())
	assert.Equal(t, "six-hourly", TickSixHourly.String())
}

func TestColorAt(t *testing.T) {
	stops := []GradientStop{
		{Offset: 0, Color: Color{R: 0, A: 1}},
		{Offset: 0.5, Color: Color{R: 100, A: 1}},
		{Offset: 1, Color: Color{R: 200, A: 1}},
	}
	assert.Equal(t, uint8(0), ColorAt(stops, -1).R)
	assert.Equal(t, uint8(50), ColorAt(stops, 0.25).R)
	assert.Equal(t, uint8(100), ColorAt(stops, 0.5).R)
	assert.Equal(t, uint8(200), ColorAt(stops, 2).R)
	assert.Equal(t, Transparent, ColorAt(nil, 0.5))
}

func TestBuildWithEmptyForecast(t *testing.T) {
	for name, opts := range map[string]Options{"simple": SimpleOptions(), "rich": RichOptions()} {
		t.Run(name, func(t *testing.T) {
			in := sampleInput(10)
			in.Forecast = models.HourlySeries{}
			in.Probabilities = nil

			spec, err := BuildChartConfig(in, opts)
			require.NoError(t, err)

			forecast, ok := spec.Dataset("forecast")
			require.True(t, ok)
			assert.Len(t, forecast.Data, opts.AxisLength)
			assert.Zero(t, forecast.Data.Present())

			threshold, ok := spec.Dataset("threshold")
			require.True(t, ok)
			assert.Equal(t, opts.AxisLength, threshold.Data.Present())
		})
	}
}
