// Package model defines the canonical record shapes exchanged between the
// fetchers, the scoring engine, and the API layer, together with the tolerant
// normalization helpers that coerce raw provider payloads into those shapes.
package model

import "time"

// Tide state values produced by the tide proxy.
const (
	TideRising    = "rising"
	TideFalling   = "falling"
	TideSlackHigh = "slack_high"
	TideSlackLow  = "slack_low"
	TideUnknown   = "unknown"
)

// Light condition values derived from sun events.
const (
	LightDawn  = "dawn"
	LightDay   = "day"
	LightDusk  = "dusk"
	LightNight = "night"
)

// Safety status values attached to period forecasts.
const (
	SafetySafe    = "safe"
	SafetyCaution = "caution"
	SafetyUnsafe  = "unsafe"
	SafetyUnknown = "unknown"
)

// WeatherRecord is the canonical weather snapshot. Pointer fields distinguish
// absent from zero; Time is a UTC ISO8601 string with a Z suffix.
type WeatherRecord struct {
	Temperature              *float64 `json:"temperature"`
	WindSpeed                *float64 `json:"wind_speed"`
	WindGust                 *float64 `json:"wind_gust"`
	CloudCover               *float64 `json:"cloud_cover"`
	PrecipitationProbability *float64 `json:"precipitation_probability"`
	Pressure                 *float64 `json:"pressure"`
	Time                     string   `json:"datetime"`
}

// MarineRecord is the canonical per-instant marine snapshot. All wave fields
// are optional; absence means no marine source covered this location.
type MarineRecord struct {
	WaveHeight      *float64 `json:"wave_height"`
	WavePeriod      *float64 `json:"wave_period"`
	WaveDirection   *float64 `json:"wave_direction"`
	WindWaveHeight  *float64 `json:"wind_wave_height"`
	WindWavePeriod  *float64 `json:"wind_wave_period"`
	SwellWaveHeight *float64 `json:"swell_wave_height"`
	SwellWavePeriod *float64 `json:"swell_wave_period"`
	Timestamp       string   `json:"timestamp"`
}

// MarineDayAggregate holds max/min/avg statistics over one day's non-null
// hourly marine values. A field with no valid hourly values stays nil.
type MarineDayAggregate struct {
	WaveHeightMax      *float64 `json:"wave_height_max"`
	WaveHeightAvg      *float64 `json:"wave_height_avg"`
	WaveHeightMin      *float64 `json:"wave_height_min"`
	WavePeriodAvg      *float64 `json:"wave_period_avg"`
	WindWaveHeightMax  *float64 `json:"wind_wave_height_max"`
	SwellWaveHeightMax *float64 `json:"swell_wave_height_max"`
}

// MarineBundle pairs the current snapshot with the date-keyed daily forecast.
type MarineBundle struct {
	Current     MarineRecord                  `json:"current"`
	Forecast    map[string]MarineDayAggregate `json:"forecast"`
	Source      string                        `json:"source"`
	LastUpdated string                        `json:"last_updated"`
}

// TideDayRecord is a per-day tide forecast entry sampled near moon transit.
type TideDayRecord struct {
	State    string `json:"state"`
	Strength int    `json:"strength"`
	Datetime string `json:"datetime"`
	Source   string `json:"source"`
}

// TideRecord is the canonical tide state.
type TideRecord struct {
	State      string                   `json:"state"`
	Strength   int                      `json:"strength"`
	NextHigh   string                   `json:"next_high"`
	NextLow    string                   `json:"next_low"`
	Confidence string                   `json:"confidence"`
	Source     string                   `json:"source"`
	Forecast   map[string]TideDayRecord `json:"forecast"`
}

// AstroRecord is the canonical per-day astronomical record. Every field is
// nullable: a missing ephemeris event never blocks the rest of the day.
type AstroRecord struct {
	MoonPhase     *float64 `json:"moon_phase"`
	Moonrise      *string  `json:"moonrise"`
	Moonset       *string  `json:"moonset"`
	MoonTransit   *string  `json:"moon_transit"`
	MoonUnderfoot *string  `json:"moon_underfoot"`
	Sunrise       *string  `json:"sunrise"`
	Sunset        *string  `json:"sunset"`
}

// ComponentScores is the fixed set of named factors, each clamped to [0,10].
// Fields not supplied by a scorer stay at the zero display default.
type ComponentScores struct {
	Season      float64 `json:"Season"`
	Temperature float64 `json:"Temperature"`
	Wind        float64 `json:"Wind"`
	Pressure    float64 `json:"Pressure"`
	Tide        float64 `json:"Tide"`
	Moon        float64 `json:"Moon"`
	Time        float64 `json:"Time"`
	Waves       float64 `json:"Waves"`
	Safety      float64 `json:"Safety"`
}

// ScoringResult is the outcome of one scoring call.
type ScoringResult struct {
	Score             float64         `json:"score"`
	ConditionsSummary string          `json:"conditions_summary"`
	ComponentScores   ComponentScores `json:"component_scores"`
	Breakdown         map[string]any  `json:"breakdown"`
}

// PeriodForecast is one named time block of a day with its score and the
// conditions it was scored from.
type PeriodForecast struct {
	TimeBlock       string          `json:"time_block"`
	Hours           string          `json:"hours"`
	Score           float64         `json:"score"`
	ComponentScores ComponentScores `json:"component_scores"`
	Safety          string          `json:"safety"`
	SafetyReasons   []string        `json:"safety_reasons"`
	TideState       string          `json:"tide_state"`
	Conditions      string          `json:"conditions"`
	Weather         WeatherRecord   `json:"weather"`
	Marine          MarineRecord    `json:"marine"`
}

// DailyForecast is an ordered day of period forecasts plus derived summary
// fields. BestPeriod is nil when the day has no remaining periods.
type DailyForecast struct {
	Date          string                    `json:"date"`
	DayName       string                    `json:"day_name"`
	Periods       map[string]PeriodForecast `json:"periods"`
	DailyAvgScore float64                   `json:"daily_avg_score"`
	BestPeriod    *string                   `json:"best_period"`
	BestScore     float64                   `json:"best_score"`
}

// Report is the full packaged result served to API and CLI consumers.
type Report struct {
	Score           float64                  `json:"score"`
	Conditions      string                   `json:"conditions"`
	ComponentScores ComponentScores          `json:"component_scores"`
	Weather         WeatherRecord            `json:"weather"`
	Marine          MarineBundle             `json:"marine"`
	Tide            TideRecord               `json:"tide"`
	Astro           AstroRecord              `json:"astro"`
	Forecast        map[string]DailyForecast `json:"forecast"`
	Mode            string                   `json:"mode"`
	Species         []string                 `json:"species"`
	Location        string                   `json:"location"`
	LastUpdated     string                   `json:"last_updated"`
}

// HourlySeries is a raw provider hourly block: a shared time axis with
// parallel-indexed value arrays keyed by variable name. Values are kept
// untyped so normalization can coerce strings and nulls uniformly.
type HourlySeries struct {
	Time   []string
	Values map[string][]any
}

// MergedHour is one record of the merged weather+marine hourly timeline.
type MergedHour struct {
	Time                     string   `json:"time"`
	Temperature              *float64 `json:"temperature"`
	WindSpeed                *float64 `json:"wind_speed"`
	WindGust                 *float64 `json:"wind_gust"`
	CloudCover               *float64 `json:"cloud_cover"`
	PrecipitationProbability *float64 `json:"precipitation_probability"`
	Pressure                 *float64 `json:"pressure"`
	WaveHeight               *float64 `json:"wave_height"`
	WavePeriod               *float64 `json:"wave_period"`
	WaveDirection            *float64 `json:"wave_direction"`
	WindWaveHeight           *float64 `json:"wind_wave_height"`
	SwellWaveHeight          *float64 `json:"swell_wave_height"`
}

// Float returns a pointer to v. Convenience for building records.
func Float(v float64) *float64 { return &v }

// String returns a pointer to s.
func String(s string) *string { return &s }

// TimePtr formats t as a UTC ISO string pointer, or nil for the zero time.
func TimePtr(t time.Time) *string {
	if t.IsZero() {
		return nil
	}
	s := IsoZ(t)
	return &s
}
