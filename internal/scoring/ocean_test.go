package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fishcast/fishcast-go/internal/model"
	"github.com/fishcast/fishcast-go/internal/species"
)

func seaBassProfile() species.Profile {
	return species.Profile{
		ID:              "sea_bass",
		Name:            "European sea bass",
		BestTide:        "rising",
		LightPreference: "low_light",
		CloudBonus:      1.0,
		WavePreference:  "active",
		WaveBonus:       true,
		ActiveMonths:    []int{3, 4, 5, 6, 7, 8, 9, 10, 11},
	}
}

func oceanInputs(t time.Time) Inputs {
	return Inputs{
		Weather: model.WeatherRecord{
			Temperature:              model.Float(16),
			WindSpeed:                model.Float(12),
			WindGust:                 model.Float(18),
			CloudCover:               model.Float(80),
			PrecipitationProbability: model.Float(10),
			Pressure:                 model.Float(1016),
		},
		Astro: model.AstroRecord{
			MoonPhase: model.Float(0.02),
			Sunrise:   model.String("2026-06-15T04:45:00Z"),
			Sunset:    model.String("2026-06-15T19:30:00Z"),
		},
		Tide: &model.TideRecord{
			State:    model.TideRising,
			Strength: 90,
		},
		Marine: &model.MarineRecord{
			WaveHeight: model.Float(1.8),
			WavePeriod: model.Float(9),
		},
		Time: t,
	}
}

func TestOceanScoreStrongConditions(t *testing.T) {
	t.Parallel()

	s := NewOceanStrategy(seaBassProfile(), HabitatFor("rocky_point"), time.UTC)
	at := time.Date(2026, 6, 15, 4, 30, 0, 0, time.UTC) // dawn
	res := s.Score(oceanInputs(at))

	// tide 0.8+0.9*0.2=0.98, weather 1.0*0.6+(0.5+0.8)*0.4=1.12->weather
	// score is computed on raw values; waves active 1.0 + bonus capped,
	// light dawn 1.0, moon new 1.0, season June 1.0, pressure 1.0
	assert.GreaterOrEqual(t, res.Score, 9.0)
	assert.Equal(t, model.SafetySafe, res.Safety)
	assert.Equal(t, []string{"Conditions within safe limits"}, res.SafetyReasons)
	assert.Equal(t, model.TideRising, res.TideState)
	assert.Equal(t, "Current tide movement is favorable", res.BestWindow)
	assert.Contains(t, res.ConditionsSummary, "conditions. Best factor:")
}

func TestOceanUnsafeWindCapsScore(t *testing.T) {
	t.Parallel()

	s := NewOceanStrategy(seaBassProfile(), HabitatFor("rocky_point"), time.UTC)
	in := oceanInputs(time.Date(2026, 6, 15, 4, 30, 0, 0, time.UTC))
	in.Weather.WindSpeed = model.Float(40) // above the 30 km/h limit
	in.Weather.WindGust = model.Float(40)

	res := s.Score(in)
	assert.Equal(t, model.SafetyUnsafe, res.Safety)
	assert.LessOrEqual(t, res.Score, 3.0)
	require.NotEmpty(t, res.SafetyReasons)
	assert.Equal(t, "High wind: 40 km/h (max: 30)", res.SafetyReasons[0])
}

func TestOceanCautionCapsScore(t *testing.T) {
	t.Parallel()

	s := NewOceanStrategy(seaBassProfile(), HabitatFor("rocky_point"), time.UTC)
	in := oceanInputs(time.Date(2026, 6, 15, 4, 30, 0, 0, time.UTC))
	in.Weather.WindSpeed = model.Float(26) // above 80% of the 30 km/h limit
	in.Weather.WindGust = model.Float(26)

	res := s.Score(in)
	assert.Equal(t, model.SafetyCaution, res.Safety)
	assert.LessOrEqual(t, res.Score, 6.0)
}

func TestOceanSafetyReasons(t *testing.T) {
	t.Parallel()

	s := NewOceanStrategy(seaBassProfile(), HabitatFor("harbour"), time.UTC)

	weather := &model.WeatherRecord{
		WindSpeed:                model.Float(10),
		WindGust:                 model.Float(12),
		PrecipitationProbability: model.Float(75),
	}
	marine := &model.MarineRecord{WaveHeight: model.Float(1.6)}

	safety, reasons := s.CheckSafety(weather, marine)
	assert.Equal(t, model.SafetyUnsafe, safety) // waves above the 1.5m harbour limit
	assert.Contains(t, reasons, "High waves: 1.6m (max: 1.5m)")
	assert.Contains(t, reasons, "Heavy rain likely: 75%")

	safety, reasons = s.CheckSafety(nil, nil)
	assert.Equal(t, model.SafetyUnknown, safety)
	assert.Equal(t, []string{"Insufficient data to assess safety"}, reasons)
}

func TestOceanTideScoring(t *testing.T) {
	t.Parallel()

	cases := []struct {
		bestTide string
		state    string
		strength float64
		want     float64
	}{
		{"any", model.TideSlackLow, 0.5, 0.8},
		{"moving", model.TideRising, 1.0, 1.0},
		{"moving", model.TideSlackHigh, 1.0, 0.5},
		{"rising", model.TideRising, 0.5, 0.9},
		{"rising", model.TideFalling, 1.0, 0.5},
		{"falling", model.TideFalling, 1.0, 1.0},
		{"slack", model.TideSlackLow, 0.2, 0.9},
		{"slack_high", model.TideSlackHigh, 0.0, 1.0},
		{"slack_low", model.TideSlackLow, 0.0, 1.0},
		{"slack_low", model.TideRising, 0.0, 0.5},
	}
	for _, tc := range cases {
		prof := species.Profile{BestTide: tc.bestTide}
		s := NewOceanStrategy(prof, HabitatFor("rocky_point"), time.UTC)
		assert.InDelta(t, tc.want, s.scoreTide(tc.state, tc.strength), 1e-9,
			"best_tide=%s state=%s", tc.bestTide, tc.state)
	}
}

func TestOceanWaveScoring(t *testing.T) {
	t.Parallel()

	calm := NewOceanStrategy(species.Profile{WavePreference: "calm"}, HabitatFor("reef"), time.UTC)
	assert.InDelta(t, 1.0, calm.scoreWaves(0.3), 1e-9)
	assert.InDelta(t, 0.2, calm.scoreWaves(2.0), 1e-9)

	active := NewOceanStrategy(species.Profile{WavePreference: "active", WaveBonus: true}, HabitatFor("reef"), time.UTC)
	assert.InDelta(t, 1.0, active.scoreWaves(1.5), 1e-9) // 1.0 capped after bonus
	assert.InDelta(t, 1.0, active.scoreWaves(2.6), 1e-9) // 0.8 + 0.2 bonus
	assert.InDelta(t, 0.5, active.scoreWaves(0.5), 1e-9) // no bonus below 1m
}

func TestOceanSeasonCircularDistance(t *testing.T) {
	t.Parallel()

	s := NewOceanStrategy(species.Profile{ActiveMonths: []int{6, 7, 8}}, HabitatFor("rocky_point"), time.UTC)
	month := func(m time.Month) time.Time { return time.Date(2026, m, 15, 0, 0, 0, 0, time.UTC) }

	assert.InDelta(t, 1.0, s.scoreSeason(month(time.July)), 1e-9)
	assert.InDelta(t, 0.6, s.scoreSeason(month(time.May)), 1e-9)
	assert.InDelta(t, 0.4, s.scoreSeason(month(time.April)), 1e-9)
	assert.InDelta(t, 0.2, s.scoreSeason(month(time.January)), 1e-9)

	// December to June wraps: distance 6 keeps the far score
	dec := NewOceanStrategy(species.Profile{ActiveMonths: []int{1}}, HabitatFor("rocky_point"), time.UTC)
	assert.InDelta(t, 0.6, dec.scoreSeason(month(time.December)), 1e-9)

	empty := NewOceanStrategy(species.Profile{}, HabitatFor("rocky_point"), time.UTC)
	assert.InDelta(t, 0.7, empty.scoreSeason(month(time.July)), 1e-9)
}

func TestOceanLightCondition(t *testing.T) {
	t.Parallel()

	s := NewOceanStrategy(seaBassProfile(), HabitatFor("rocky_point"), time.UTC)
	astro := model.AstroRecord{
		Sunrise: model.String("2026-06-15T04:45:00Z"),
		Sunset:  model.String("2026-06-15T19:30:00Z"),
	}

	at := func(h, m int) time.Time { return time.Date(2026, 6, 15, h, m, 0, 0, time.UTC) }
	assert.Equal(t, model.LightDawn, s.lightCondition(at(4, 30), astro))
	assert.Equal(t, model.LightDay, s.lightCondition(at(12, 0), astro))
	assert.Equal(t, model.LightDusk, s.lightCondition(at(19, 45), astro))
	assert.Equal(t, model.LightNight, s.lightCondition(at(23, 0), astro))

	// no sun events falls back to hour bands
	assert.Equal(t, model.LightDawn, s.lightCondition(at(7, 0), model.AstroRecord{}))
	assert.Equal(t, model.LightNight, s.lightCondition(at(3, 0), model.AstroRecord{}))
}

func TestOceanForecastSkipsStartedPeriodsExceptNight(t *testing.T) {
	t.Parallel()

	s := NewOceanStrategy(seaBassProfile(), HabitatFor("rocky_point"), time.UTC)
	now := time.Date(2026, 6, 15, 13, 30, 0, 0, time.UTC) // afternoon underway

	forecast := s.Forecast(now, 2, ForecastConditions{}, nil, false)
	require.Len(t, forecast, 2)

	today := forecast["2026-06-15"]
	assert.NotContains(t, today.Periods, "morning")
	assert.NotContains(t, today.Periods, "afternoon")
	assert.Contains(t, today.Periods, "evening")
	assert.Contains(t, today.Periods, "night") // tonight is always kept

	tomorrow := forecast["2026-06-16"]
	assert.Len(t, tomorrow.Periods, 4)
	assert.NotNil(t, tomorrow.BestPeriod)
	assert.Greater(t, tomorrow.DailyAvgScore, 0.0)
}

func TestOceanForecastFullDayModeKeepsToday(t *testing.T) {
	t.Parallel()

	s := NewOceanStrategy(seaBassProfile(), HabitatFor("rocky_point"), time.UTC)
	now := time.Date(2026, 6, 15, 23, 30, 0, 0, time.UTC)

	forecast := s.Forecast(now, 1, ForecastConditions{}, nil, true)
	assert.Len(t, forecast["2026-06-15"].Periods, 4)
}

func TestOceanForecastUsesDayConditions(t *testing.T) {
	t.Parallel()

	s := NewOceanStrategy(seaBassProfile(), HabitatFor("rocky_point"), time.UTC)
	now := time.Date(2026, 6, 15, 1, 0, 0, 0, time.UTC)

	cond := ForecastConditions{
		Weather: map[string]model.WeatherRecord{
			"2026-06-16": {Temperature: model.Float(18), WindSpeed: model.Float(12)},
		},
		Marine: map[string]model.MarineDayAggregate{
			"2026-06-16": {WaveHeightAvg: model.Float(1.7), WavePeriodAvg: model.Float(8)},
		},
		Tide: map[string]model.TideDayRecord{
			"2026-06-16": {State: model.TideRising, Strength: 80, Source: "lunar_proxy"},
		},
	}

	forecast := s.Forecast(now, 2, cond, nil, false)
	day := forecast["2026-06-16"]
	require.Contains(t, day.Periods, "morning")
	morning := day.Periods["morning"]

	assert.Equal(t, "06:00-12:00", morning.Hours)
	assert.Equal(t, model.TideRising, morning.TideState)
	assert.InDelta(t, 18, model.Deref(morning.Weather.Temperature, 0), 1e-9)
	assert.InDelta(t, 1.7, model.Deref(morning.Marine.WaveHeight, 0), 1e-9)
	// gust backfills from wind, pressure from the 1013 default
	assert.InDelta(t, 12, model.Deref(morning.Weather.WindGust, 0), 1e-9)
	assert.InDelta(t, 1013, model.Deref(morning.Weather.Pressure, 0), 1e-9)
}

func TestOceanForecastTideSamplerWins(t *testing.T) {
	t.Parallel()

	s := NewOceanStrategy(seaBassProfile(), HabitatFor("rocky_point"), time.UTC)
	now := time.Date(2026, 6, 15, 1, 0, 0, 0, time.UTC)

	sampler := func(at time.Time) *model.TideRecord {
		return &model.TideRecord{State: model.TideSlackLow, Strength: 10}
	}
	forecast := s.Forecast(now, 1, ForecastConditions{
		Tide: map[string]model.TideDayRecord{"2026-06-15": {State: model.TideRising, Strength: 80}},
	}, sampler, true)

	for _, p := range forecast["2026-06-15"].Periods {
		assert.Equal(t, model.TideSlackLow, p.TideState)
	}
}

func TestOceanBestWindow(t *testing.T) {
	t.Parallel()

	s := NewOceanStrategy(seaBassProfile(), HabitatFor("rocky_point"), time.UTC)
	assert.Equal(t, "Tide data unavailable", s.BestWindow(nil))
	assert.Equal(t, "Slack high tide - good for some species",
		s.BestWindow(&model.TideRecord{State: model.TideSlackHigh}))
	assert.Equal(t, "Check tide times for best window",
		s.BestWindow(&model.TideRecord{State: model.TideUnknown}))
}

func TestOceanWeightsSumToOne(t *testing.T) {
	t.Parallel()

	var total float64
	for _, w := range NewOceanStrategy(species.Profile{}, HabitatFor("rocky_point"), time.UTC).FactorWeights() {
		total += w
	}
	require.InDelta(t, 1.0, total, 1e-9)
}
