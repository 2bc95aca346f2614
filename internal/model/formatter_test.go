package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

func TestFormatWeatherAliasesAndGustFallback(t *testing.T) {
	t.Parallel()

	raw := map[string]any{
		"temperature_2m": 18.5,
		"windspeed":      "12.0",
		"cloudcover":     40,
		"pressure_msl":   1016.3,
		"time":           "2026-08-30T09:00",
	}
	w := FormatWeather(raw, testNow)

	require.NotNil(t, w.Temperature)
	assert.InDelta(t, 18.5, *w.Temperature, 1e-9)
	require.NotNil(t, w.WindSpeed)
	assert.InDelta(t, 12.0, *w.WindSpeed, 1e-9)
	// no gust key: gust mirrors wind speed
	require.NotNil(t, w.WindGust)
	assert.InDelta(t, 12.0, *w.WindGust, 1e-9)
	require.NotNil(t, w.CloudCover)
	assert.InDelta(t, 40.0, *w.CloudCover, 1e-9)
	require.NotNil(t, w.Pressure)
	assert.InDelta(t, 1016.3, *w.Pressure, 1e-9)
	assert.Nil(t, w.PrecipitationProbability)
	assert.Equal(t, "2026-08-30T09:00:00Z", w.Time)
}

func TestFormatWeatherNilPayload(t *testing.T) {
	t.Parallel()

	w := FormatWeather(nil, testNow)
	assert.Nil(t, w.Temperature)
	assert.Nil(t, w.WindSpeed)
	assert.Equal(t, IsoZ(testNow), w.Time)
}

func TestFormatWeatherDropsUnparseableValues(t *testing.T) {
	t.Parallel()

	raw := map[string]any{
		"temperature": "warm",
		"wind_speed":  "",
		"pressure":    "nan",
	}
	w := FormatWeather(raw, testNow)
	assert.Nil(t, w.Temperature)
	assert.Nil(t, w.WindSpeed)
	assert.Nil(t, w.Pressure)
}

func TestFormatMarine(t *testing.T) {
	t.Parallel()

	raw := map[string]any{
		"waveHeight":  1.2,
		"wave_period": "8.5",
		"timestamp":   "2026-08-30T06:00:00Z",
	}
	m := FormatMarine(raw, testNow)
	require.NotNil(t, m.WaveHeight)
	assert.InDelta(t, 1.2, *m.WaveHeight, 1e-9)
	require.NotNil(t, m.WavePeriod)
	assert.InDelta(t, 8.5, *m.WavePeriod, 1e-9)
	assert.Nil(t, m.SwellWaveHeight)
	assert.Equal(t, "2026-08-30T06:00:00Z", m.Timestamp)
}

func TestFormatComponentScores(t *testing.T) {
	t.Parallel()

	cs := FormatComponentScores(map[string]float64{
		"tide":     8.2,
		"Moon":     11.0, // clamped to 10
		"waves":    -3.0, // clamped to 0
		"mystery":  4.0,  // dropped
		"pressure": 6.5,
	})

	assert.InDelta(t, 8.2, cs.Tide, 1e-9)
	assert.InDelta(t, 10.0, cs.Moon, 1e-9)
	assert.InDelta(t, 0.0, cs.Waves, 1e-9)
	assert.InDelta(t, 6.5, cs.Pressure, 1e-9)
	assert.InDelta(t, 0.0, cs.Season, 1e-9)

	named := cs.Named()
	assert.Len(t, named, 9)
	assert.InDelta(t, 8.2, named["Tide"], 1e-9)
}

func TestFormatTideDefaults(t *testing.T) {
	t.Parallel()

	rec := FormatTide(nil, testNow)
	assert.Equal(t, "unknown", rec.State)
	assert.Equal(t, 0, rec.Strength)
	assert.Equal(t, "unknown", rec.Confidence)
	assert.Equal(t, "proxy", rec.Source)
}

func TestFormatTideAliases(t *testing.T) {
	t.Parallel()

	rec := FormatTide(map[string]any{
		"tide_state": TideRising,
		"intensity":  "87.4",
		"high_tide":  "2026-08-30T14:30",
	}, testNow)
	assert.Equal(t, TideRising, rec.State)
	assert.Equal(t, 87, rec.Strength)
	assert.Equal(t, "2026-08-30T14:30:00Z", rec.NextHigh)
	assert.Empty(t, rec.NextLow)
}

func TestFormatAstro(t *testing.T) {
	t.Parallel()

	rec := FormatAstro(map[string]any{
		"phase":     0.52,
		"moon_rise": "2026-08-30T19:05",
		"sunset":    "2026-08-30T18:40:00Z",
	}, testNow)
	require.NotNil(t, rec.MoonPhase)
	assert.InDelta(t, 0.52, *rec.MoonPhase, 1e-9)
	require.NotNil(t, rec.Moonrise)
	assert.Equal(t, "2026-08-30T19:05:00Z", *rec.Moonrise)
	require.NotNil(t, rec.Sunset)
	assert.Nil(t, rec.Moonset)
	assert.Nil(t, rec.MoonTransit)
}

func TestBuildDailyForecast(t *testing.T) {
	t.Parallel()

	periods := map[string]PeriodForecast{
		"morning":   {Score: 6.0},
		"afternoon": {Score: 7.4},
		"evening":   {Score: 5.1},
	}
	d := BuildDailyForecast("2026-08-30", periods)
	assert.Equal(t, "Sunday", d.DayName)
	assert.InDelta(t, 6.2, d.DailyAvgScore, 1e-9)
	require.NotNil(t, d.BestPeriod)
	assert.Equal(t, "afternoon", *d.BestPeriod)
	assert.InDelta(t, 7.4, d.BestScore, 1e-9)
}

func TestBuildDailyForecastEmpty(t *testing.T) {
	t.Parallel()

	d := BuildDailyForecast("2026-08-30", nil)
	assert.Zero(t, d.DailyAvgScore)
	assert.Nil(t, d.BestPeriod)
	assert.Zero(t, d.BestScore)
	assert.NotNil(t, d.Periods)
}

func TestNormalizeForecastShapedAndFlat(t *testing.T) {
	t.Parallel()

	raw := map[string]any{
		"2026-08-30": map[string]any{
			"periods": map[string]any{
				"morning": map[string]any{
					"score":      "7.2",
					"tide_state": TideFalling,
					"hours":      "06:00-12:00",
					"weather":    map[string]any{"temperature": 16.0},
					"component_scores": map[string]any{
						"tide": 8.0, "moon": 6.0,
					},
				},
			},
		},
		"2026-08-31": map[string]any{
			"score":       5.5,
			"temperature": 14.0,
			"wind_speed":  20.0,
		},
	}

	out := NormalizeForecast(raw, testNow)
	require.Len(t, out, 2)

	shaped := out["2026-08-30"]
	require.Contains(t, shaped.Periods, "morning")
	p := shaped.Periods["morning"]
	assert.InDelta(t, 7.2, p.Score, 1e-9)
	assert.Equal(t, TideFalling, p.TideState)
	assert.Equal(t, "06:00-12:00", p.Hours)
	require.NotNil(t, p.Weather.Temperature)
	assert.InDelta(t, 8.0, p.ComponentScores.Tide, 1e-9)

	flat := out["2026-08-31"]
	require.Contains(t, flat.Periods, "day")
	fp := flat.Periods["day"]
	assert.InDelta(t, 5.5, fp.Score, 1e-9)
	require.NotNil(t, fp.Weather.WindSpeed)
	assert.InDelta(t, 20.0, *fp.Weather.WindSpeed, 1e-9)
	assert.Equal(t, SafetySafe, fp.Safety)
}
