package scoring

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fishcast/fishcast-go/internal/model"
	"github.com/fishcast/fishcast-go/internal/species"
)

func pondProfile() species.Profile {
	ideal := 60.0
	return species.Profile{
		ID:                 "common_carp",
		Name:               "Common carp",
		TempRange:          []float64{8, 30},
		IdealCloud:         &ideal,
		PrefersLowPressure: true,
		ActiveMonths:       []int{4, 5, 6, 7, 8, 9, 10},
	}
}

// mergedDay builds 24 hourly records for the given date with constant
// conditions.
func mergedDay(date string, temp, wind, cloud, pressure float64) []model.MergedHour {
	hours := make([]model.MergedHour, 0, 24)
	for h := 0; h < 24; h++ {
		hours = append(hours, model.MergedHour{
			Time:        fmt.Sprintf("%sT%02d:00:00Z", date, h),
			Temperature: model.Float(temp),
			WindSpeed:   model.Float(wind),
			CloudCover:  model.Float(cloud),
			Pressure:    model.Float(pressure),
		})
	}
	return hours
}

func TestNewHourlyForecasterUnknownBodyDefaultsToLake(t *testing.T) {
	t.Parallel()

	f := NewHourlyForecaster(pondProfile(), "swamp", time.UTC)
	assert.Equal(t, "lake", f.BodyType)
	assert.Equal(t, bodyTypeWeights["lake"], f.Weights)

	river := NewHourlyForecaster(pondProfile(), "river", time.UTC)
	assert.Equal(t, "river", river.BodyType)
}

func TestBodyTypeWeightsSumToOne(t *testing.T) {
	t.Parallel()

	for body, w := range bodyTypeWeights {
		total := w.Temperature + w.Cloud + w.PressureTrend + w.Wind +
			w.Precipitation + w.Twilight + w.Solunar + w.MoonPhase
		assert.InDelta(t, 1.0, total, 1e-9, "body type %s", body)
	}
}

func TestHourlyTemperatureFalloff(t *testing.T) {
	t.Parallel()

	f := NewHourlyForecaster(pondProfile(), "pond", time.UTC)
	assert.InDelta(t, 1.0, f.temperatureScore(model.Float(20)), 1e-9)
	assert.InDelta(t, 0.5, f.temperatureScore(model.Float(3)), 1e-9)  // 5 below range
	assert.InDelta(t, 0.0, f.temperatureScore(model.Float(45)), 1e-9) // far above
	assert.InDelta(t, 0.7, f.temperatureScore(nil), 1e-9)
}

func TestHourlyCloudScore(t *testing.T) {
	t.Parallel()

	f := NewHourlyForecaster(pondProfile(), "pond", time.UTC)
	assert.InDelta(t, 1.0, f.cloudScore(model.Float(60)), 1e-9)
	assert.InDelta(t, 0.6, f.cloudScore(model.Float(100)), 1e-9)
	assert.InDelta(t, 0.4, f.cloudScore(model.Float(0)), 1e-9)
}

func TestHourlyPressureTrend(t *testing.T) {
	t.Parallel()

	lowPressure := NewHourlyForecaster(pondProfile(), "pond", time.UTC)
	prev := &model.MergedHour{Pressure: model.Float(1015)}

	assert.InDelta(t, 1.0, lowPressure.pressureTrendScore(model.Float(1014), prev), 1e-9)
	assert.InDelta(t, 0.4, lowPressure.pressureTrendScore(model.Float(1016), prev), 1e-9)
	assert.InDelta(t, 0.7, lowPressure.pressureTrendScore(model.Float(1015.1), prev), 1e-9)
	assert.InDelta(t, 0.7, lowPressure.pressureTrendScore(model.Float(1015), nil), 1e-9)

	normal := NewHourlyForecaster(species.Profile{}, "lake", time.UTC)
	assert.InDelta(t, 1.0, normal.pressureTrendScore(model.Float(1016), prev), 1e-9)
	assert.InDelta(t, 0.4, normal.pressureTrendScore(model.Float(1014), prev), 1e-9)
	assert.InDelta(t, 0.9, normal.pressureTrendScore(model.Float(1015), prev), 1e-9)
}

func TestHourlySolunarBonuses(t *testing.T) {
	t.Parallel()

	f := NewHourlyForecaster(pondProfile(), "lake", time.UTC)
	astro := model.AstroRecord{
		MoonTransit:   model.String("2026-06-15T13:00:00Z"),
		MoonUnderfoot: model.String("2026-06-15T01:00:00Z"),
		Moonrise:      model.String("2026-06-15T19:00:00Z"),
		Moonset:       model.String("2026-06-15T06:30:00Z"),
	}
	at := func(h, m int) time.Time { return time.Date(2026, 6, 15, h, m, 0, 0, time.UTC) }

	assert.InDelta(t, 1.0, f.solunarScore(at(13, 30), astro), 1e-9)  // major, capped
	assert.InDelta(t, 0.85, f.solunarScore(at(19, 30), astro), 1e-9) // minor
	assert.InDelta(t, 0.6, f.solunarScore(at(10, 0), astro), 1e-9)   // floor
	assert.InDelta(t, 0.6, f.solunarScore(at(10, 0), model.AstroRecord{}), 1e-9)
}

func TestHourlyTwilightScore(t *testing.T) {
	t.Parallel()

	f := NewHourlyForecaster(pondProfile(), "lake", time.UTC)
	astro := model.AstroRecord{
		Sunrise: model.String("2026-06-15T04:45:00Z"),
		Sunset:  model.String("2026-06-15T19:30:00Z"),
	}
	assert.InDelta(t, 1.0, f.twilightScore(time.Date(2026, 6, 15, 5, 15, 0, 0, time.UTC), astro), 1e-9)
	assert.InDelta(t, 0.5, f.twilightScore(time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC), astro), 1e-9)
	assert.InDelta(t, 0.5, f.twilightScore(time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC), model.AstroRecord{}), 1e-9)
}

func TestHourScoreStaysInUnitRange(t *testing.T) {
	t.Parallel()

	f := NewHourlyForecaster(pondProfile(), "pond", time.UTC)
	astro := model.AstroRecord{
		MoonPhase:   model.Float(0.5),
		Sunrise:     model.String("2026-06-15T04:45:00Z"),
		Sunset:      model.String("2026-06-15T19:30:00Z"),
		MoonTransit: model.String("2026-06-15T05:00:00Z"),
	}
	hour := model.MergedHour{
		Time:        "2026-06-15T05:00:00Z",
		Temperature: model.Float(20),
		WindSpeed:   model.Float(10),
		CloudCover:  model.Float(60),
		Pressure:    model.Float(1010),
	}
	score := f.HourScore(hour, nil, astro, time.Date(2026, 6, 15, 5, 0, 0, 0, time.UTC))
	assert.GreaterOrEqual(t, score, 0.0)
	assert.LessOrEqual(t, score, 1.0)
	assert.Greater(t, score, 0.8, "prime dawn hour should score high")
}

func TestHourlyForecastPeriods(t *testing.T) {
	t.Parallel()

	f := NewHourlyForecaster(pondProfile(), "pond", time.UTC)
	now := time.Date(2026, 6, 15, 0, 30, 0, 0, time.UTC)

	hours := append(
		mergedDay("2026-06-15", 20, 8, 60, 1012),
		mergedDay("2026-06-16", 20, 8, 60, 1012)...,
	)
	astroDays := map[string]model.AstroRecord{
		"2026-06-15": {
			MoonPhase: model.Float(0.5),
			Sunrise:   model.String("2026-06-15T04:45:00Z"),
			Sunset:    model.String("2026-06-15T19:30:00Z"),
		},
		"2026-06-16": {
			MoonPhase: model.Float(0.53),
			Sunrise:   model.String("2026-06-16T04:45:00Z"),
			Sunset:    model.String("2026-06-16T19:30:00Z"),
		},
	}

	forecast := f.Forecast(now, 2, hours, astroDays)
	require.Len(t, forecast, 2)

	day := forecast["2026-06-15"]
	require.Contains(t, day.Periods, "morning")
	require.Contains(t, day.Periods, "afternoon")
	require.Contains(t, day.Periods, "evening")
	require.Contains(t, day.Periods, "night")

	morning := day.Periods["morning"]
	assert.Equal(t, "06:00-12:00", morning.Hours)
	assert.GreaterOrEqual(t, morning.Score, 0.0)
	assert.LessOrEqual(t, morning.Score, 10.0)
	assert.Equal(t, model.SafetySafe, morning.Safety)
	assert.InDelta(t, 20, model.Deref(morning.Weather.Temperature, 0), 1e-9)

	// the wrapped night block pulls hours 22-23 of day one and 0-5 of
	// day two
	night := day.Periods["night"]
	assert.Equal(t, "22:00-06:00", night.Hours)

	require.NotNil(t, day.BestPeriod)
	assert.Greater(t, day.DailyAvgScore, 0.0)
}

func TestHourlyForecastDawnDuskMode(t *testing.T) {
	t.Parallel()

	f := NewHourlyForecaster(pondProfile(), "lake", time.UTC)
	f.DawnDusk = true
	now := time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)

	astroDays := map[string]model.AstroRecord{
		"2026-06-15": {
			MoonPhase: model.Float(0.5),
			Sunrise:   model.String("2026-06-15T04:45:00Z"),
			Sunset:    model.String("2026-06-15T19:30:00Z"),
		},
	}
	forecast := f.Forecast(now, 1, mergedDay("2026-06-15", 20, 8, 60, 1012), astroDays)

	day := forecast["2026-06-15"]
	require.Contains(t, day.Periods, "dawn")
	require.Contains(t, day.Periods, "dusk")
	assert.NotContains(t, day.Periods, "morning")

	// days without sun events produce no dawn/dusk windows
	empty := f.Forecast(now, 1, mergedDay("2026-06-15", 20, 8, 60, 1012),
		map[string]model.AstroRecord{})
	assert.Empty(t, empty["2026-06-15"].Periods)
	assert.Nil(t, empty["2026-06-15"].BestPeriod)
	assert.Zero(t, empty["2026-06-15"].DailyAvgScore)
}

func TestHourlyForecastWindSafety(t *testing.T) {
	t.Parallel()

	f := NewHourlyForecaster(pondProfile(), "lake", time.UTC) // 25 km/h lake limit
	now := time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)

	forecast := f.Forecast(now, 1, mergedDay("2026-06-15", 20, 30, 60, 1012),
		map[string]model.AstroRecord{})
	morning := forecast["2026-06-15"].Periods["morning"]
	assert.Equal(t, model.SafetyUnsafe, morning.Safety)
	assert.NotEmpty(t, morning.SafetyReasons)
}
