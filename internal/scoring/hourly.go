package scoring

import (
	"time"

	"github.com/fishcast/fishcast-go/internal/model"
	"github.com/fishcast/fishcast-go/internal/species"
)

// BodyWeights are the per-factor weights of one water body type for
// the hourly freshwater model. Each set sums to 1.0.
type BodyWeights struct {
	Temperature   float64
	Cloud         float64
	PressureTrend float64
	Wind          float64
	Precipitation float64
	Twilight      float64
	Solunar       float64
	MoonPhase     float64
}

// Larger, wind-exposed water weighs wind and temperature more; rivers
// respond to pressure fronts and runoff; small ponds track air
// temperature closely and barely feel wind.
var bodyTypeWeights = map[string]BodyWeights{
	"lake": {
		Temperature: 0.20, Cloud: 0.10, PressureTrend: 0.15, Wind: 0.10,
		Precipitation: 0.05, Twilight: 0.15, Solunar: 0.15, MoonPhase: 0.10,
	},
	"river": {
		Temperature: 0.15, Cloud: 0.10, PressureTrend: 0.20, Wind: 0.05,
		Precipitation: 0.15, Twilight: 0.15, Solunar: 0.10, MoonPhase: 0.10,
	},
	"pond": {
		Temperature: 0.25, Cloud: 0.15, PressureTrend: 0.10, Wind: 0.05,
		Precipitation: 0.05, Twilight: 0.15, Solunar: 0.15, MoonPhase: 0.10,
	},
	"reservoir": {
		Temperature: 0.20, Cloud: 0.10, PressureTrend: 0.15, Wind: 0.15,
		Precipitation: 0.05, Twilight: 0.15, Solunar: 0.10, MoonPhase: 0.10,
	},
}

// HourlyForecaster produces freshwater period forecasts from the
// merged hourly timeline. Per-hour sub-scores live on a 0-1 scale and
// are stretched onto 0-10 only at period aggregation.
type HourlyForecaster struct {
	Profile  species.Profile
	BodyType string
	Weights  BodyWeights
	Habitat  Habitat
	TZ       *time.Location
	DawnDusk bool
}

// NewHourlyForecaster builds the forecaster. An unknown body type
// falls back to lake.
func NewHourlyForecaster(profile species.Profile, bodyType string, tz *time.Location) *HourlyForecaster {
	if tz == nil {
		tz = time.UTC
	}
	weights, ok := bodyTypeWeights[bodyType]
	if !ok {
		logger.Warn("unknown water body type, defaulting to lake", "body_type", bodyType)
		bodyType = "lake"
		weights = bodyTypeWeights["lake"]
	}
	return &HourlyForecaster{
		Profile:  profile,
		BodyType: bodyType,
		Weights:  weights,
		Habitat:  HabitatFor(bodyType),
		TZ:       tz,
	}
}

// ScaleScore stretches a combined 0-1 hourly score onto the 0-10
// display scale. Weighted hourly averages cluster between 0.5 and 0.9,
// so that band maps linearly onto the full output range.
func ScaleScore(v float64) float64 {
	return model.Clamp((v-0.5)/0.4*10, 0, 10)
}

// HourScore computes the combined 0-1 score for one hour. prev is the
// preceding hour's record for the pressure trend, nil for the first.
func (f *HourlyForecaster) HourScore(hour model.MergedHour, prev *model.MergedHour, astro model.AstroRecord, t time.Time) float64 {
	w := f.Weights
	sum := w.Temperature*f.temperatureScore(hour.Temperature) +
		w.Cloud*f.cloudScore(hour.CloudCover) +
		w.PressureTrend*f.pressureTrendScore(hour.Pressure, prev) +
		w.Wind*f.windScore(model.Deref(hour.WindSpeed, 0)) +
		w.Precipitation*f.precipitationScore(model.Deref(hour.PrecipitationProbability, 0)) +
		w.Twilight*f.twilightScore(t, astro) +
		w.Solunar*f.solunarScore(t, astro) +
		w.MoonPhase*f.moonPhaseScore(astro.MoonPhase)
	return model.Clamp(sum, 0, 1)
}

// Forecast aggregates hourly scores into period forecasts for the
// requested days, keyed by ISO date.
func (f *HourlyForecaster) Forecast(
	now time.Time,
	days int,
	hours []model.MergedHour,
	astroDays map[string]model.AstroRecord,
) map[string]model.DailyForecast {
	parsed := f.parseHours(hours)
	forecast := make(map[string]model.DailyForecast, days)
	local := now.In(f.TZ)

	for offset := 0; offset < days; offset++ {
		dayStart := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, f.TZ).
			AddDate(0, 0, offset)
		dateKey := dayStart.Format("2006-01-02")
		astro := astroDays[dateKey]

		periods := make(map[string]model.PeriodForecast)
		for _, win := range f.periodWindows(dayStart, astro) {
			pf, ok := f.scoreWindow(win, parsed, astro)
			if ok {
				periods[win.name] = pf
			}
		}
		forecast[dateKey] = model.BuildDailyForecast(dateKey, periods)
	}
	return forecast
}

type hourSample struct {
	rec  model.MergedHour
	prev *model.MergedHour
	at   time.Time
}

func (f *HourlyForecaster) parseHours(hours []model.MergedHour) []hourSample {
	samples := make([]hourSample, 0, len(hours))
	for i := range hours {
		at, ok := model.ParseTimeUTC(hours[i].Time)
		if !ok {
			continue
		}
		var prev *model.MergedHour
		if i > 0 {
			prev = &hours[i-1]
		}
		samples = append(samples, hourSample{rec: hours[i], prev: prev, at: at.In(f.TZ)})
	}
	return samples
}

type periodWindow struct {
	name       string
	hoursLabel string
	start, end time.Time
}

// periodWindows yields either the fixed full-day blocks or, in
// dawn-dusk mode, two-hour windows centered on the day's sun events.
func (f *HourlyForecaster) periodWindows(dayStart time.Time, astro model.AstroRecord) []periodWindow {
	if f.DawnDusk {
		var wins []periodWindow
		if sunrise, ok := eventTime(astro.Sunrise); ok {
			s := sunrise.In(f.TZ)
			wins = append(wins, periodWindow{
				name:       "dawn",
				hoursLabel: s.Add(-time.Hour).Format("15:04") + "-" + s.Add(time.Hour).Format("15:04"),
				start:      s.Add(-time.Hour),
				end:        s.Add(time.Hour),
			})
		}
		if sunset, ok := eventTime(astro.Sunset); ok {
			s := sunset.In(f.TZ)
			wins = append(wins, periodWindow{
				name:       "dusk",
				hoursLabel: s.Add(-time.Hour).Format("15:04") + "-" + s.Add(time.Hour).Format("15:04"),
				start:      s.Add(-time.Hour),
				end:        s.Add(time.Hour),
			})
		}
		return wins
	}

	wins := make([]periodWindow, 0, len(freshwaterPeriods))
	for _, p := range freshwaterPeriods {
		start := dayStart.Add(time.Duration(p.StartHour) * time.Hour)
		end := dayStart.Add(time.Duration(p.EndHour) * time.Hour)
		if p.Wraps() {
			end = end.AddDate(0, 0, 1)
		}
		wins = append(wins, periodWindow{name: p.Name, hoursLabel: p.Hours(), start: start, end: end})
	}
	return wins
}

// scoreWindow averages the hourly scores inside one window and shapes
// the period record. A window with no covered hours is dropped.
func (f *HourlyForecaster) scoreWindow(win periodWindow, samples []hourSample, astro model.AstroRecord) (model.PeriodForecast, bool) {
	var scoreSum float64
	var count int
	var temps, winds, clouds, pressures meanAcc
	var gustMax, precipMax *float64

	for _, s := range samples {
		if s.at.Before(win.start) || !s.at.Before(win.end) {
			continue
		}
		scoreSum += f.HourScore(s.rec, s.prev, astro, s.at)
		count++

		temps.add(s.rec.Temperature)
		winds.add(s.rec.WindSpeed)
		clouds.add(s.rec.CloudCover)
		pressures.add(s.rec.Pressure)
		gustMax = maxPtr(gustMax, s.rec.WindGust)
		precipMax = maxPtr(precipMax, s.rec.PrecipitationProbability)
	}
	if count == 0 {
		return model.PeriodForecast{}, false
	}

	score := model.Round1(ScaleScore(scoreSum / float64(count)))
	weather := model.WeatherRecord{
		Temperature:              temps.mean(),
		WindSpeed:                winds.mean(),
		WindGust:                 gustMax,
		CloudCover:               clouds.mean(),
		PrecipitationProbability: precipMax,
		Pressure:                 pressures.mean(),
		Time:                     model.IsoZ(win.start.UTC()),
	}
	safety, reasons := CheckSafety(f.Habitat, &weather, nil)

	return model.PeriodForecast{
		TimeBlock:     win.name,
		Hours:         win.hoursLabel,
		Score:         score,
		Safety:        safety,
		SafetyReasons: reasons,
		Conditions:    RatingWord(score) + " conditions",
		Weather:       weather,
	}, true
}

type meanAcc struct {
	sum float64
	n   int
}

func (a *meanAcc) add(v *float64) {
	if v != nil {
		a.sum += *v
		a.n++
	}
}

func (a *meanAcc) mean() *float64 {
	if a.n == 0 {
		return nil
	}
	return model.Float(a.sum / float64(a.n))
}

func maxPtr(cur, v *float64) *float64 {
	if v == nil {
		return cur
	}
	if cur == nil || *v > *cur {
		return model.Float(*v)
	}
	return cur
}

// temperatureScore is full inside the species' tolerated range and
// falls off linearly over a 10 degree margin outside it.
func (f *HourlyForecaster) temperatureScore(temp *float64) float64 {
	if temp == nil {
		return 0.7
	}
	minTemp := f.Profile.TempMin()
	maxTemp := f.Profile.TempMax()
	if len(f.Profile.TempRange) < 2 {
		minTemp, maxTemp = 5, 30
	}
	t := *temp
	if t >= minTemp && t <= maxTemp {
		return 1.0
	}
	distance := minTemp - t
	if t > maxTemp {
		distance = t - maxTemp
	}
	return model.Clamp(1.0-distance/10.0, 0, 1)
}

func (f *HourlyForecaster) cloudScore(cloud *float64) float64 {
	ideal := 50.0
	if f.Profile.IdealCloud != nil {
		ideal = *f.Profile.IdealCloud
	}
	actual := model.Deref(cloud, 50)
	diff := actual - ideal
	if diff < 0 {
		diff = -diff
	}
	return model.Clamp(1.0-diff/100.0, 0, 1)
}

// pressureTrendScore rates the hour-over-hour pressure change. A
// species that feeds on falling fronts scores falling trends highest;
// everything else prefers steady or rising glass.
func (f *HourlyForecaster) pressureTrendScore(pressure *float64, prev *model.MergedHour) float64 {
	if pressure == nil || prev == nil || prev.Pressure == nil {
		return 0.7
	}
	diff := *pressure - *prev.Pressure
	const stable = 0.3 // hPa per hour

	if f.Profile.PrefersLowPressure {
		switch {
		case diff < -stable:
			return 1.0
		case diff > stable:
			return 0.4
		default:
			return 0.7
		}
	}
	switch {
	case diff > stable:
		return 1.0
	case diff < -stable:
		return 0.4
	default:
		return 0.9
	}
}

func (f *HourlyForecaster) windScore(wind float64) float64 {
	switch {
	case wind >= 5 && wind <= 15:
		return 1.0
	case wind < 5:
		return 0.7
	case wind <= 25:
		return 0.6
	default:
		return 0.3
	}
}

func (f *HourlyForecaster) precipitationScore(probability float64) float64 {
	switch {
	case probability <= 30:
		return 1.0
	case probability <= 60:
		return 0.7
	case probability <= 80:
		return 0.5
	default:
		return 0.3
	}
}

func (f *HourlyForecaster) twilightScore(t time.Time, astro model.AstroRecord) float64 {
	nowUTC := t.UTC()
	if sunrise, ok := eventTime(astro.Sunrise); ok && within(nowUTC, sunrise, time.Hour) {
		return 1.0
	}
	if sunset, ok := eventTime(astro.Sunset); ok && within(nowUTC, sunset, time.Hour) {
		return 1.0
	}
	return 0.5
}

// solunarScore rewards the classic solunar majors (moon overhead or
// underfoot) and minors (moonrise, moonset).
func (f *HourlyForecaster) solunarScore(t time.Time, astro model.AstroRecord) float64 {
	nowUTC := t.UTC()
	score := 0.6
	for _, major := range []*string{astro.MoonTransit, astro.MoonUnderfoot} {
		if ev, ok := eventTime(major); ok && within(nowUTC, ev, time.Hour) {
			score += 0.5
		}
	}
	for _, minor := range []*string{astro.Moonrise, astro.Moonset} {
		if ev, ok := eventTime(minor); ok && within(nowUTC, ev, time.Hour) {
			score += 0.25
		}
	}
	return model.Clamp(score, 0.6, 1.0)
}

func (f *HourlyForecaster) moonPhaseScore(moonPhase *float64) float64 {
	if moonPhase == nil {
		return 0.7
	}
	phase := model.Clamp(*moonPhase, 0, 1)
	switch {
	case phase < 0.1 || phase > 0.9:
		return 1.0
	case phase > 0.4 && phase < 0.6:
		return 1.0
	case (phase > 0.2 && phase < 0.3) || (phase > 0.7 && phase < 0.8):
		return 0.6
	default:
		return 0.75
	}
}
