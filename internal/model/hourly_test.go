package model

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hourlyAxis(start time.Time, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = start.Add(time.Duration(i) * time.Hour).Format("2006-01-02T15:04")
	}
	return out
}

func TestNormalizeHourlyMergedWeatherAxisWins(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	weather := &HourlySeries{
		Time: hourlyAxis(start, 168),
		Values: map[string][]any{
			"temperature_2m": repeat(168, 17.0),
			"wind_speed_10m": repeat(168, 11.0),
		},
	}
	// marine feed is shorter than the weather feed
	marine := &HourlySeries{
		Time: hourlyAxis(start, 120),
		Values: map[string][]any{
			"wave_height": repeat(120, 0.8),
		},
	}

	merged := NormalizeHourlyMerged(weather, marine, testNow)
	require.Len(t, merged, 168)

	require.NotNil(t, merged[119].WaveHeight)
	assert.InDelta(t, 0.8, *merged[119].WaveHeight, 1e-9)
	for _, h := range merged[120:] {
		assert.Nil(t, h.WaveHeight)
		require.NotNil(t, h.Temperature)
	}
}

func TestNormalizeHourlyMergedTimestampsAreUTC(t *testing.T) {
	t.Parallel()

	weather := &HourlySeries{
		Time:   []string{"2026-08-30T06:00", "2026-08-30T07:00"},
		Values: map[string][]any{"temperature_2m": {15.0, 16.0}},
	}
	merged := NormalizeHourlyMerged(weather, nil, testNow)
	require.Len(t, merged, 2)
	assert.Equal(t, "2026-08-30T06:00:00Z", merged[0].Time)
	assert.Equal(t, "2026-08-30T07:00:00Z", merged[1].Time)
}

func TestNormalizeHourlyMergedNilWeather(t *testing.T) {
	t.Parallel()

	assert.Empty(t, NormalizeHourlyMerged(nil, nil, testNow))
	assert.Empty(t, NormalizeHourlyMerged(&HourlySeries{}, nil, testNow))
}

func TestNormalizeHourlyMergedCoercesStringsAndNulls(t *testing.T) {
	t.Parallel()

	weather := &HourlySeries{
		Time: []string{"2026-08-30T06:00", "2026-08-30T07:00", "2026-08-30T08:00"},
		Values: map[string][]any{
			"temperature_2m": {"14.5", nil, "warm"},
			"pressure":       {1015.0, 1014.0, 1013.0},
		},
	}
	merged := NormalizeHourlyMerged(weather, nil, testNow)
	require.Len(t, merged, 3)

	require.NotNil(t, merged[0].Temperature)
	assert.InDelta(t, 14.5, *merged[0].Temperature, 1e-9)
	assert.Nil(t, merged[1].Temperature)
	assert.Nil(t, merged[2].Temperature)
	for i, h := range merged {
		require.NotNil(t, h.Pressure, fmt.Sprintf("hour %d", i))
	}
}

func repeat(n int, v float64) []any {
	out := make([]any, n)
	for i := range out {
		out[i] = v
	}
	return out
}
