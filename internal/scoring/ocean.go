package scoring

import (
	"fmt"
	"math"
	"time"

	"github.com/fishcast/fishcast-go/internal/model"
	"github.com/fishcast/fishcast-go/internal/species"
)

// OceanStrategy scores shore fishing from tide, wave, light and
// weather conditions against one species profile. Component functions
// work internally on a 0-1 scale and are reported pre-scaled to 0-10
// so the shared aggregator's weighted average lands on the same value
// as summing the raw components against their weights and scaling.
type OceanStrategy struct {
	Profile species.Profile
	Habitat Habitat
	TZ      *time.Location
}

// OceanResult extends the shared result with the safety verdict and
// tide context that only the ocean variant produces.
type OceanResult struct {
	model.ScoringResult
	Safety        string
	SafetyReasons []string
	TideState     string
	BestWindow    string
}

// NewOceanStrategy builds an ocean scorer. A nil timezone means UTC.
func NewOceanStrategy(profile species.Profile, habitat Habitat, tz *time.Location) *OceanStrategy {
	if tz == nil {
		tz = time.UTC
	}
	return &OceanStrategy{Profile: profile, Habitat: habitat, TZ: tz}
}

// FactorWeights returns the ocean factor weights.
func (s *OceanStrategy) FactorWeights() map[string]float64 {
	return map[string]float64{
		"tide":     0.25,
		"weather":  0.20,
		"waves":    0.15,
		"light":    0.15,
		"moon":     0.10,
		"season":   0.10,
		"pressure": 0.05,
	}
}

// ComputeComponents calculates the seven ocean factor scores, each
// scaled to 0-10.
func (s *OceanStrategy) ComputeComponents(in Inputs) map[string]float64 {
	tideState := model.TideUnknown
	tideStrength := 0.5
	if in.Tide != nil {
		tideState = in.Tide.State
		tideStrength = model.Clamp(float64(in.Tide.Strength)/100.0, 0, 1)
	}

	waveHeight := 1.0
	if in.Marine != nil {
		waveHeight = model.Deref(in.Marine.WaveHeight, 1.0)
	}

	w := in.Weather
	wind := model.Deref(w.WindSpeed, 0)
	cloud := model.Deref(w.CloudCover, 50)
	pressure := model.Deref(w.Pressure, 1013)
	moonPhase := model.Deref(in.Astro.MoonPhase, 0.5)

	light := s.lightCondition(in.Time, in.Astro)

	return map[string]float64{
		"tide":     s.scoreTide(tideState, tideStrength) * 10,
		"weather":  s.scoreWeather(wind, cloud) * 10,
		"waves":    s.scoreWaves(waveHeight) * 10,
		"light":    s.scoreLight(light) * 10,
		"moon":     s.scoreMoon(moonPhase) * 10,
		"season":   s.scoreSeason(in.Time) * 10,
		"pressure": s.scorePressure(pressure) * 10,
	}
}

// Summarize names the overall quality and the strongest factor.
func (s *OceanStrategy) Summarize(score float64, in Inputs, components map[string]float64) string {
	best, _ := bestWorst(components)
	if best == "" {
		return "Insufficient data for summary"
	}
	return fmt.Sprintf("%s conditions. Best factor: %s", RatingWord(score), best)
}

// Score runs the full ocean pass: weighted components, the safety
// verdict with its hard score caps, and the best-window hint.
func (s *OceanStrategy) Score(in Inputs) OceanResult {
	base := Calculate(s, in)

	safety, reasons := s.CheckSafety(&in.Weather, in.Marine)
	capped := base.Score
	switch safety {
	case model.SafetyUnsafe:
		capped = math.Min(base.Score, 3.0)
	case model.SafetyCaution:
		capped = math.Min(base.Score, 6.0)
	}
	if capped != base.Score {
		base.Score = capped
		if raw, ok := base.Breakdown["component_scores"].(map[string]float64); ok {
			base.ConditionsSummary = s.Summarize(capped, in, raw)
		}
	}

	tideState := model.TideUnknown
	if in.Tide != nil {
		tideState = in.Tide.State
	}

	if base.Breakdown == nil {
		base.Breakdown = map[string]any{}
	}
	base.Breakdown["species"] = s.Profile.Name

	return OceanResult{
		ScoringResult: base,
		Safety:        safety,
		SafetyReasons: reasons,
		TideState:     tideState,
		BestWindow:    s.BestWindow(in.Tide),
	}
}

// CheckSafety compares conditions against the strategy's habitat.
func (s *OceanStrategy) CheckSafety(weather *model.WeatherRecord, marine *model.MarineRecord) (string, []string) {
	return CheckSafety(s.Habitat, weather, marine)
}

// CheckSafety compares conditions against the habitat limits. Above a
// limit is unsafe, above 80% of it is caution; likely rain adds a
// caution reason. Missing fields count as calm.
func CheckSafety(habitat Habitat, weather *model.WeatherRecord, marine *model.MarineRecord) (string, []string) {
	if weather == nil && marine == nil {
		return model.SafetyUnknown, []string{"Insufficient data to assess safety"}
	}

	var wind, gust, wave, precip float64
	if weather != nil {
		wind = model.Deref(weather.WindSpeed, 0)
		gust = model.Deref(weather.WindGust, wind)
		precip = model.Deref(weather.PrecipitationProbability, 0)
	}
	if marine != nil {
		wave = model.Deref(marine.WaveHeight, 0)
	}

	maxWind := habitat.MaxWindSpeed
	maxGust := habitat.MaxGustSpeed
	maxWave := habitat.MaxWaveHeight

	var reasons []string
	var unsafe, caution int

	switch {
	case wind > maxWind:
		reasons = append(reasons, fmt.Sprintf("High wind: %.0f km/h (max: %.0f)", wind, maxWind))
		unsafe++
	case wind > maxWind*0.8:
		reasons = append(reasons, fmt.Sprintf("Strong wind: %.0f km/h (caution at %.0f)", wind, maxWind*0.8))
		caution++
	}

	switch {
	case gust > maxGust:
		reasons = append(reasons, fmt.Sprintf("Dangerous gusts: %.0f km/h (max: %.0f)", gust, maxGust))
		unsafe++
	case gust > maxGust*0.8:
		reasons = append(reasons, fmt.Sprintf("Strong gusts: %.0f km/h (caution at %.0f)", gust, maxGust*0.8))
		caution++
	}

	switch {
	case wave > maxWave:
		reasons = append(reasons, fmt.Sprintf("High waves: %.1fm (max: %.1fm)", wave, maxWave))
		unsafe++
	case wave > maxWave*0.8:
		reasons = append(reasons, fmt.Sprintf("Large waves: %.1fm (caution at %.1fm)", wave, maxWave*0.8))
		caution++
	}

	switch {
	case precip > 70:
		reasons = append(reasons, fmt.Sprintf("Heavy rain likely: %d%%", int(precip)))
		caution++
	case precip > 50:
		reasons = append(reasons, fmt.Sprintf("Rain likely: %d%%", int(precip)))
		caution++
	}

	switch {
	case unsafe > 0:
		return model.SafetyUnsafe, reasons
	case caution > 0:
		return model.SafetyCaution, reasons
	default:
		return model.SafetySafe, []string{"Conditions within safe limits"}
	}
}

// BestWindow describes the most promising window given the tide.
func (s *OceanStrategy) BestWindow(tide *model.TideRecord) string {
	if tide == nil {
		return "Tide data unavailable"
	}
	switch tide.State {
	case model.TideRising, model.TideFalling:
		return "Current tide movement is favorable"
	case model.TideSlackHigh:
		return "Slack high tide - good for some species"
	case model.TideSlackLow:
		return "Slack low tide"
	default:
		return "Check tide times for best window"
	}
}

// lightCondition classifies the instant as dawn, day, dusk or night
// from proximity to the day's sun events, with a local-hour fallback.
func (s *OceanStrategy) lightCondition(now time.Time, astro model.AstroRecord) string {
	sunrise, okRise := eventTime(astro.Sunrise)
	sunset, okSet := eventTime(astro.Sunset)
	if okRise && okSet {
		nowUTC := now.UTC()
		switch {
		case within(nowUTC, sunrise, 30*time.Minute):
			return model.LightDawn
		case within(nowUTC, sunset, 30*time.Minute):
			return model.LightDusk
		case nowUTC.After(sunrise) && nowUTC.Before(sunset):
			return model.LightDay
		default:
			return model.LightNight
		}
	}

	hour := now.In(s.TZ).Hour()
	switch {
	case hour >= 6 && hour < 8:
		return model.LightDawn
	case hour >= 8 && hour < 18:
		return model.LightDay
	case hour >= 18 && hour < 20:
		return model.LightDusk
	default:
		return model.LightNight
	}
}

func (s *OceanStrategy) scoreTide(tideState string, tideStrength float64) float64 {
	bestTide := s.Profile.BestTide
	if bestTide == "" {
		bestTide = "moving"
	}

	score := 0.5
	switch bestTide {
	case "any":
		score = 0.8
	case "moving":
		if tideState == model.TideRising || tideState == model.TideFalling {
			score = 0.7 + tideStrength*0.3
		}
	case "rising":
		if tideState == model.TideRising {
			score = 0.8 + tideStrength*0.2
		}
	case "falling":
		if tideState == model.TideFalling {
			score = 0.8 + tideStrength*0.2
		}
	case "slack":
		if tideState == model.TideSlackHigh || tideState == model.TideSlackLow {
			score = 0.9
		}
	case "slack_high":
		if tideState == model.TideSlackHigh {
			score = 1.0
		}
	case "slack_low":
		if tideState == model.TideSlackLow {
			score = 1.0
		}
	}
	return score
}

func (s *OceanStrategy) scoreWeather(windSpeed, cloudCover float64) float64 {
	windSpeed = math.Max(0, windSpeed)
	cloudCover = model.Clamp(cloudCover, 0, 100)

	var windScore float64
	switch {
	case windSpeed < 5:
		windScore = 0.6
	case windSpeed < 15:
		windScore = 1.0
	case windSpeed < 25:
		windScore = 0.7
	case windSpeed < 35:
		windScore = 0.4
	default:
		windScore = 0.2
	}

	cloudBonus := model.Clamp(s.Profile.CloudBonus, 0, 1)
	cloudScore := 0.5 + cloudCover/100*cloudBonus

	return windScore*0.6 + cloudScore*0.4
}

func (s *OceanStrategy) scoreWaves(waveHeight float64) float64 {
	waveHeight = math.Max(0, waveHeight)

	var score float64
	switch s.Profile.WavePreference {
	case "calm":
		switch {
		case waveHeight < 0.5:
			score = 1.0
		case waveHeight < 1.0:
			score = 0.7
		case waveHeight < 1.5:
			score = 0.4
		default:
			score = 0.2
		}
	case "moderate", "":
		switch {
		case waveHeight < 0.5:
			score = 0.6
		case waveHeight < 1.5:
			score = 1.0
		case waveHeight < 2.5:
			score = 0.7
		default:
			score = 0.3
		}
	case "active":
		switch {
		case waveHeight < 1.0:
			score = 0.5
		case waveHeight < 2.5:
			score = 1.0
		case waveHeight < 3.5:
			score = 0.8
		default:
			score = 0.3
		}
	default:
		score = 0.7
	}

	if s.Profile.WaveBonus && waveHeight > 1.0 {
		score = math.Min(1.0, score+0.2)
	}
	return score
}

var lightScoreMap = map[string]map[string]float64{
	"day":       {model.LightDay: 1.0, model.LightDawn: 0.7, model.LightDusk: 0.7, model.LightNight: 0.3},
	"night":     {model.LightNight: 1.0, model.LightDusk: 0.7, model.LightDawn: 0.6, model.LightDay: 0.2},
	"dawn":      {model.LightDawn: 1.0, model.LightDay: 0.7, model.LightDusk: 0.6, model.LightNight: 0.4},
	"dusk":      {model.LightDusk: 1.0, model.LightNight: 0.7, model.LightDawn: 0.6, model.LightDay: 0.4},
	"dawn_dusk": {model.LightDawn: 1.0, model.LightDusk: 1.0, model.LightDay: 0.6, model.LightNight: 0.5},
	"low_light": {model.LightDawn: 1.0, model.LightDusk: 1.0, model.LightNight: 0.9, model.LightDay: 0.4},
}

func (s *OceanStrategy) scoreLight(lightCondition string) float64 {
	pref := s.Profile.LightPreference
	if pref == "" {
		pref = "dawn_dusk"
	}
	if score, ok := lightScoreMap[pref][lightCondition]; ok {
		return score
	}
	return 0.5
}

func (s *OceanStrategy) scoreMoon(moonPhase float64) float64 {
	phase := model.Clamp(moonPhase, 0, 1)
	switch {
	case phase < 0.1 || phase > 0.9:
		return 1.0
	case phase > 0.4 && phase < 0.6:
		return 0.9
	case (phase > 0.2 && phase < 0.3) || (phase > 0.7 && phase < 0.8):
		return 0.6
	default:
		return 0.7
	}
}

func (s *OceanStrategy) scoreSeason(now time.Time) float64 {
	if len(s.Profile.ActiveMonths) == 0 {
		return 0.7
	}
	month := int(now.In(s.TZ).Month())
	if s.Profile.ActiveInMonth(month) {
		return 1.0
	}

	distance := 12
	for _, m := range s.Profile.ActiveMonths {
		d := month - m
		if d < 0 {
			d = -d
		}
		if d > 6 {
			d = 12 - d
		}
		if d < distance {
			distance = d
		}
	}
	switch distance {
	case 1:
		return 0.6
	case 2:
		return 0.4
	default:
		return 0.2
	}
}

func (s *OceanStrategy) scorePressure(pressure float64) float64 {
	switch {
	case pressure >= 1013 && pressure <= 1020:
		return 1.0
	case pressure >= 1008 && pressure < 1013:
		return 0.8
	case pressure > 1020 && pressure <= 1025:
		return 0.7
	case pressure >= 1000 && pressure < 1008:
		return 0.6
	case pressure > 1025:
		return 0.5
	default:
		return 0.4
	}
}
