package scoring

import (
	"time"

	"github.com/fishcast/fishcast-go/internal/model"
)

// ForecastConditions holds the per-day inputs the forecaster samples
// from, each keyed by ISO date. Missing days fall back to documented
// neutral defaults rather than being skipped.
type ForecastConditions struct {
	Weather map[string]model.WeatherRecord
	Marine  map[string]model.MarineDayAggregate
	Tide    map[string]model.TideDayRecord
	Astro   map[string]model.AstroRecord
}

// TideSampler resolves the tide state at an arbitrary instant. When
// nil the forecaster reuses the day-level tide record for every
// period of that day.
type TideSampler func(t time.Time) *model.TideRecord

// Forecast scores the next days period by period. For today, periods
// whose start has passed are omitted unless includeStarted is set; the
// night block always survives since it covers the coming early hours.
func (s *OceanStrategy) Forecast(
	now time.Time,
	days int,
	cond ForecastConditions,
	tideAt TideSampler,
	includeStarted bool,
) map[string]model.DailyForecast {
	forecast := make(map[string]model.DailyForecast, days)
	local := now.In(s.TZ)

	for offset := 0; offset < days; offset++ {
		dayStart := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.TZ).
			AddDate(0, 0, offset)
		dateKey := dayStart.Format("2006-01-02")
		isToday := offset == 0

		dayWeather := defaultDayWeather(dayStart)
		if w, ok := cond.Weather[dateKey]; ok {
			dayWeather = fillWeatherDefaults(w)
		}
		dayMarine := cond.Marine[dateKey]
		dayAstro := cond.Astro[dateKey]

		periods := make(map[string]model.PeriodForecast)
		for _, period := range OceanPeriods() {
			blockStart := dayStart.Add(time.Duration(period.StartHour) * time.Hour)
			if isToday && period.Name != "night" && !includeStarted && !local.Before(blockStart) {
				continue
			}

			tide := s.tideForBlock(blockStart, dateKey, cond.Tide, tideAt)
			marineRec := marineForBlock(dayMarine)

			result := s.Score(Inputs{
				Weather: dayWeather,
				Astro:   dayAstro,
				Tide:    tide,
				Marine:  &marineRec,
				Time:    blockStart,
			})

			periods[period.Name] = model.PeriodForecast{
				TimeBlock:       period.Name,
				Hours:           period.Hours(),
				Score:           result.Score,
				ComponentScores: result.ComponentScores,
				Safety:          result.Safety,
				SafetyReasons:   result.SafetyReasons,
				TideState:       result.TideState,
				Conditions:      result.ConditionsSummary,
				Weather:         dayWeather,
				Marine:          marineRec,
			}
		}

		forecast[dateKey] = model.BuildDailyForecast(dateKey, periods)
	}
	return forecast
}

func (s *OceanStrategy) tideForBlock(
	blockStart time.Time,
	dateKey string,
	dayTides map[string]model.TideDayRecord,
	tideAt TideSampler,
) *model.TideRecord {
	if tideAt != nil {
		if rec := tideAt(blockStart); rec != nil {
			return rec
		}
	}
	if day, ok := dayTides[dateKey]; ok {
		return &model.TideRecord{
			State:    day.State,
			Strength: day.Strength,
			Source:   day.Source,
		}
	}
	return nil
}

func marineForBlock(agg model.MarineDayAggregate) model.MarineRecord {
	height := 1.0
	if agg.WaveHeightAvg != nil {
		height = *agg.WaveHeightAvg
	}
	return model.MarineRecord{
		WaveHeight: model.Float(height),
		WavePeriod: agg.WavePeriodAvg,
	}
}

func defaultDayWeather(day time.Time) model.WeatherRecord {
	return fillWeatherDefaults(model.WeatherRecord{Time: model.IsoZ(day.UTC())})
}

// fillWeatherDefaults backfills the neutral forecast defaults so a day
// with a missing provider record still scores.
func fillWeatherDefaults(w model.WeatherRecord) model.WeatherRecord {
	if w.Temperature == nil {
		w.Temperature = model.Float(15)
	}
	if w.WindSpeed == nil {
		w.WindSpeed = model.Float(10)
	}
	if w.WindGust == nil {
		w.WindGust = model.Float(*w.WindSpeed)
	}
	if w.CloudCover == nil {
		w.CloudCover = model.Float(50)
	}
	if w.PrecipitationProbability == nil {
		w.PrecipitationProbability = model.Float(0)
	}
	if w.Pressure == nil {
		w.Pressure = model.Float(1013)
	}
	return w
}
