package model

import "time"

// marine variable names merged into the hourly timeline
var mergedMarineVars = []string{
	"wave_height", "wave_period", "wave_direction", "wind_wave_height", "swell_wave_height",
}

// NormalizeHourlyMerged merges a weather hourly series and an optional marine
// hourly series into a single timeline. The weather time axis is canonical:
// the result has exactly len(weather.Time) records. Marine values are matched
// by position; indexes beyond the marine arrays (or failing numeric coercion)
// yield nil fields. Every output timestamp is a UTC ISO string ending in Z.
func NormalizeHourlyMerged(weather, marine *HourlySeries, now time.Time) []MergedHour {
	if weather == nil || len(weather.Time) == 0 {
		return []MergedHour{}
	}

	at := func(s *HourlySeries, name string, i int) *float64 {
		if s == nil {
			return nil
		}
		vals, ok := s.Values[name]
		if !ok || i >= len(vals) {
			return nil
		}
		return FloatPtr(vals[i])
	}

	out := make([]MergedHour, 0, len(weather.Time))
	for i, ts := range weather.Time {
		h := MergedHour{
			Time:                     NormalizeTimestamp(ts, now),
			Temperature:              at(weather, "temperature_2m", i),
			WindSpeed:                at(weather, "wind_speed_10m", i),
			WindGust:                 at(weather, "wind_gusts_10m", i),
			CloudCover:               at(weather, "cloud_cover", i),
			PrecipitationProbability: at(weather, "precipitation_probability", i),
			Pressure:                 at(weather, "pressure_msl", i),
		}
		if h.Temperature == nil {
			h.Temperature = at(weather, "temperature", i)
		}
		if h.WindSpeed == nil {
			h.WindSpeed = at(weather, "wind_speed", i)
		}
		if h.WindGust == nil {
			h.WindGust = at(weather, "wind_gust", i)
		}
		if h.Pressure == nil {
			h.Pressure = at(weather, "pressure", i)
		}
		for _, name := range mergedMarineVars {
			v := at(marine, name, i)
			switch name {
			case "wave_height":
				h.WaveHeight = v
			case "wave_period":
				h.WavePeriod = v
			case "wave_direction":
				h.WaveDirection = v
			case "wind_wave_height":
				h.WindWaveHeight = v
			case "swell_wave_height":
				h.SwellWaveHeight = v
			}
		}
		out = append(out, h)
	}
	return out
}
