package model

import "time"

// BuildDailyForecast assembles the canonical daily record from its periods,
// deriving the daily average and best-period pointer. A day with no periods
// reports avg 0 and a nil best period.
func BuildDailyForecast(date string, periods map[string]PeriodForecast) DailyForecast {
	d := DailyForecast{
		Date:    date,
		DayName: DayName(date),
		Periods: periods,
	}
	if len(periods) == 0 {
		d.Periods = map[string]PeriodForecast{}
		return d
	}
	total := 0.0
	best := ""
	bestScore := -1.0
	for name, p := range periods {
		total += p.Score
		if p.Score > bestScore || (p.Score == bestScore && name < best) {
			bestScore = p.Score
			best = name
		}
	}
	d.DailyAvgScore = Round1(total / float64(len(periods)))
	d.BestPeriod = &best
	d.BestScore = Round1(bestScore)
	return d
}

// NormalizeForecast accepts either a pre-shaped day→periods structure or a
// flat day→weather-metrics structure and produces the uniform daily shape.
// Flat metric days are wrapped into a single all-day period.
func NormalizeForecast(raw map[string]any, now time.Time) map[string]DailyForecast {
	out := make(map[string]DailyForecast, len(raw))
	for date, dayRaw := range raw {
		day, ok := dayRaw.(map[string]any)
		if !ok {
			out[date] = BuildDailyForecast(date, nil)
			continue
		}
		if periodsRaw, ok := day["periods"].(map[string]any); ok {
			periods := make(map[string]PeriodForecast, len(periodsRaw))
			for name, pRaw := range periodsRaw {
				p, ok := pRaw.(map[string]any)
				if !ok {
					continue
				}
				periods[name] = normalizePeriod(name, p, now)
			}
			out[date] = BuildDailyForecast(date, periods)
			continue
		}
		// Flat metrics shape: wrap the day's weather into one period.
		period := PeriodForecast{
			TimeBlock:     "day",
			Hours:         "00:00-23:59",
			Score:         Round1(Clamp(FloatOr(day["score"], 0), 0, 10)),
			Safety:        stringOr(day["safety"], SafetySafe),
			SafetyReasons: []string{},
			TideState:     stringOr(day["tide_state"], "n/a"),
			Conditions:    stringOr(day["conditions"], ""),
			Weather:       FormatWeather(day, now),
			Marine:        MarineRecord{Timestamp: IsoZ(now)},
		}
		out[date] = BuildDailyForecast(date, map[string]PeriodForecast{"day": period})
	}
	return out
}

func normalizePeriod(name string, p map[string]any, now time.Time) PeriodForecast {
	weather, _ := p["weather"].(map[string]any)
	marine, _ := p["marine"].(map[string]any)
	scores := map[string]float64{}
	if cs, ok := p["component_scores"].(map[string]any); ok {
		for k, v := range cs {
			if f, ok := ToFloat(v); ok {
				scores[k] = f
			}
		}
	}
	reasons := []string{}
	if rs, ok := p["safety_reasons"].([]any); ok {
		for _, r := range rs {
			if s, ok := r.(string); ok {
				reasons = append(reasons, s)
			}
		}
	}
	return PeriodForecast{
		TimeBlock:       stringOr(p["time_block"], name),
		Hours:           stringOr(p["hours"], ""),
		Score:           Round1(Clamp(FloatOr(p["score"], 0), 0, 10)),
		ComponentScores: FormatComponentScores(scores),
		Safety:          stringOr(p["safety"], SafetySafe),
		SafetyReasons:   reasons,
		TideState:       stringOr(p["tide_state"], "n/a"),
		Conditions:      stringOr(p["conditions"], ""),
		Weather:         FormatWeather(weather, now),
		Marine:          FormatMarine(marine, now),
	}
}

func stringOr(v any, def string) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return def
}
