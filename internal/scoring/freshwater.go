package scoring

import (
	"fmt"
	"time"

	"github.com/fishcast/fishcast-go/internal/model"
	"github.com/fishcast/fishcast-go/internal/species"
)

// FreshwaterStrategy scores inland fishing from weather and astronomy
// alone. Components are on the 0-10 scale directly.
type FreshwaterStrategy struct {
	Profile species.Profile
	TZ      *time.Location
}

// NewFreshwaterStrategy builds a freshwater scorer for one species
// profile. A nil timezone means UTC.
func NewFreshwaterStrategy(profile species.Profile, tz *time.Location) *FreshwaterStrategy {
	if tz == nil {
		tz = time.UTC
	}
	return &FreshwaterStrategy{Profile: profile, TZ: tz}
}

// FactorWeights returns the freshwater factor weights.
func (s *FreshwaterStrategy) FactorWeights() map[string]float64 {
	return map[string]float64{
		"temperature": 0.25,
		"wind":        0.15,
		"pressure":    0.15,
		"clouds":      0.15,
		"time":        0.15,
		"season":      0.10,
		"moon":        0.05,
	}
}

// ComputeComponents calculates the seven freshwater factor scores.
func (s *FreshwaterStrategy) ComputeComponents(in Inputs) map[string]float64 {
	w := in.Weather

	components := map[string]float64{
		"wind":     s.scoreWind(model.Deref(w.WindSpeed, 0)),
		"pressure": s.scorePressure(model.Deref(w.Pressure, 1013)),
		"clouds":   s.scoreCloudCover(model.Deref(w.CloudCover, 50)),
		"time":     s.scoreTimeOfDay(in.Time, in.Astro),
		"season":   s.scoreSeason(in.Time),
		"moon":     s.scoreMoon(in.Astro.MoonPhase),
	}
	if w.Temperature != nil {
		components["temperature"] = s.scoreTemperature(*w.Temperature)
	} else {
		logger.Debug("temperature missing, using neutral temperature score")
		components["temperature"] = 5.0
	}
	return components
}

// Summarize builds the freshwater conditions line with best and worst
// factors and a weather readout.
func (s *FreshwaterStrategy) Summarize(score float64, in Inputs, components map[string]float64) string {
	best, worst := bestWorst(components)
	if best == "" {
		return RatingWord(score) + " conditions"
	}
	return fmt.Sprintf(
		"%s conditions. Best: %s (%.1f/10). Worst: %s (%.1f/10). Temp: %.1f°C, Wind: %.1f km/h",
		RatingWord(score),
		best, components[best],
		worst, components[worst],
		model.Deref(in.Weather.Temperature, 0),
		model.Deref(in.Weather.WindSpeed, 0),
	)
}

// scoreTemperature rates water-adjacent air temperature against the
// species' tolerated range. The middle 60% of the range is optimal;
// the rest of the range scores 7, and beyond it the score decays by
// half a point per degree down to a floor of 2.
func (s *FreshwaterStrategy) scoreTemperature(temperature float64) float64 {
	minTemp := s.Profile.TempMin()
	maxTemp := s.Profile.TempMax()
	if len(s.Profile.TempRange) < 2 {
		minTemp, maxTemp = 5, 30
	}
	span := maxTemp - minTemp
	if span <= 0 {
		return 5.0
	}

	optimalMin := minTemp + span*0.2
	optimalMax := maxTemp - span*0.2

	switch {
	case temperature >= optimalMin && temperature <= optimalMax:
		return 10.0
	case temperature >= minTemp && temperature <= maxTemp:
		return 7.0
	}
	distance := minTemp - temperature
	if temperature > maxTemp {
		distance = temperature - maxTemp
	}
	return max(2.0, 7.0-distance*0.5)
}

func (s *FreshwaterStrategy) scoreWind(windSpeed float64) float64 {
	switch {
	case windSpeed >= 5 && windSpeed <= 15:
		return 10.0
	case windSpeed > 25:
		return 3.0
	default:
		return 7.0
	}
}

func (s *FreshwaterStrategy) scorePressure(pressure float64) float64 {
	if s.Profile.PrefersLowPressure {
		switch {
		case pressure < 1010:
			return 10.0
		case pressure < 1015:
			return 8.0
		default:
			return 5.0
		}
	}
	switch {
	case pressure >= 1013 && pressure <= 1020:
		return 10.0
	case pressure >= 1010 && pressure <= 1025:
		return 7.0
	default:
		return 4.0
	}
}

func (s *FreshwaterStrategy) scoreCloudCover(cloudCover float64) float64 {
	ideal := 50.0
	if s.Profile.IdealCloud != nil {
		ideal = *s.Profile.IdealCloud
	}
	diff := cloudCover - ideal
	if diff < 0 {
		diff = -diff
	}
	switch {
	case diff <= 15:
		return 10.0
	case diff <= 30:
		return 7.0
	default:
		return 4.0
	}
}

func (s *FreshwaterStrategy) scoreMoon(moonPhase *float64) float64 {
	if moonPhase == nil {
		return 5.0
	}
	phase := model.Clamp(*moonPhase, 0, 1)
	switch {
	case phase < 0.1 || phase > 0.9:
		return 9.0
	case phase > 0.4 && phase < 0.6:
		return 9.0
	default:
		return 6.0
	}
}

// scoreTimeOfDay favors the half hour either side of sunrise and
// sunset. Without usable sun events it falls back to fixed local
// morning and evening hour bands.
func (s *FreshwaterStrategy) scoreTimeOfDay(now time.Time, astro model.AstroRecord) float64 {
	sunrise, okRise := eventTime(astro.Sunrise)
	sunset, okSet := eventTime(astro.Sunset)
	if okRise && okSet {
		nowUTC := now.UTC()
		if within(nowUTC, sunrise, 30*time.Minute) || within(nowUTC, sunset, 30*time.Minute) {
			return 10.0
		}
		return 6.0
	}

	hour := now.In(s.TZ).Hour()
	if (hour >= 5 && hour <= 8) || (hour >= 17 && hour <= 20) {
		return 10.0
	}
	return 6.0
}

func (s *FreshwaterStrategy) scoreSeason(now time.Time) float64 {
	if s.Profile.ActiveInMonth(int(now.In(s.TZ).Month())) {
		return 10.0
	}
	return 3.0
}

func eventTime(iso *string) (time.Time, bool) {
	if iso == nil {
		return time.Time{}, false
	}
	return model.ParseTimeUTC(*iso)
}

func within(t, ref time.Time, window time.Duration) bool {
	d := t.Sub(ref)
	if d < 0 {
		d = -d
	}
	return d <= window
}
