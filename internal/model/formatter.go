package model

import (
	"log/slog"
	"strings"
	"time"
)

// Accepted historical key aliases, consulted only at this normalization
// boundary. Scoring code never sees anything but the canonical names.
var (
	weatherAliases = map[string][]string{
		"temperature":               {"temperature", "temperature_2m", "temp", "air_temperature"},
		"wind_speed":                {"wind_speed", "wind_speed_10m", "wind", "windspeed"},
		"wind_gust":                 {"wind_gust", "gust", "wind_gusts_10m", "wind_gust_10m"},
		"cloud_cover":               {"cloud_cover", "cloudcover", "clouds", "cloud_coverage"},
		"precipitation_probability": {"precipitation_probability", "precipitation", "precip", "rain", "pop"},
		"pressure":                  {"pressure", "pressure_msl", "msl_pressure"},
		"datetime":                  {"datetime", "time", "time_utc", "timestamp"},
	}

	marineAliases = map[string][]string{
		"wave_height":       {"wave_height", "waveHeight", "mean_wave_height"},
		"wave_period":       {"wave_period", "wavePeriod", "peak_period"},
		"wave_direction":    {"wave_direction", "waveDirection"},
		"wind_wave_height":  {"wind_wave_height", "windWaveHeight"},
		"wind_wave_period":  {"wind_wave_period", "windWavePeriod"},
		"swell_wave_height": {"swell_wave_height", "swellHeight"},
		"swell_wave_period": {"swell_wave_period", "swellWavePeriod"},
		"timestamp":         {"timestamp", "time"},
	}

	componentAliases = map[string]string{
		"season":      "Season",
		"temperature": "Temperature",
		"temp":        "Temperature",
		"wind":        "Wind",
		"pressure":    "Pressure",
		"tide":        "Tide",
		"moon":        "Moon",
		"time":        "Time",
		"waves":       "Waves",
		"safety":      "Safety",
	}
)

func pick(raw map[string]any, canonical string, aliases map[string][]string) any {
	for _, k := range aliases[canonical] {
		if v, ok := raw[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

// FormatWeather coerces a raw weather payload into the canonical record.
// Unknown keys are dropped; the timestamp is normalized to UTC Z.
func FormatWeather(raw map[string]any, now time.Time) WeatherRecord {
	if raw == nil {
		return WeatherRecord{Time: IsoZ(now)}
	}
	w := WeatherRecord{
		Temperature:              FloatPtr(pick(raw, "temperature", weatherAliases)),
		WindSpeed:                FloatPtr(pick(raw, "wind_speed", weatherAliases)),
		WindGust:                 FloatPtr(pick(raw, "wind_gust", weatherAliases)),
		CloudCover:               FloatPtr(pick(raw, "cloud_cover", weatherAliases)),
		PrecipitationProbability: FloatPtr(pick(raw, "precipitation_probability", weatherAliases)),
		Pressure:                 FloatPtr(pick(raw, "pressure", weatherAliases)),
	}
	if w.WindGust == nil {
		w.WindGust = w.WindSpeed
	}
	if ts, ok := pick(raw, "datetime", weatherAliases).(string); ok {
		w.Time = NormalizeTimestamp(ts, now)
	} else {
		w.Time = IsoZ(now)
	}
	return w
}

// FormatMarine coerces a raw marine snapshot into the canonical record.
func FormatMarine(raw map[string]any, now time.Time) MarineRecord {
	if raw == nil {
		return MarineRecord{Timestamp: IsoZ(now)}
	}
	m := MarineRecord{
		WaveHeight:      FloatPtr(pick(raw, "wave_height", marineAliases)),
		WavePeriod:      FloatPtr(pick(raw, "wave_period", marineAliases)),
		WaveDirection:   FloatPtr(pick(raw, "wave_direction", marineAliases)),
		WindWaveHeight:  FloatPtr(pick(raw, "wind_wave_height", marineAliases)),
		WindWavePeriod:  FloatPtr(pick(raw, "wind_wave_period", marineAliases)),
		SwellWaveHeight: FloatPtr(pick(raw, "swell_wave_height", marineAliases)),
		SwellWavePeriod: FloatPtr(pick(raw, "swell_wave_period", marineAliases)),
	}
	if ts, ok := pick(raw, "timestamp", marineAliases).(string); ok {
		m.Timestamp = NormalizeTimestamp(ts, now)
	} else {
		m.Timestamp = IsoZ(now)
	}
	return m
}

// FormatComponentScores canonicalizes a loose factor→score map into the fixed
// TitleCase shape. Missing factors stay at the 0.0 display default; unknown
// keys are dropped.
func FormatComponentScores(raw map[string]float64) ComponentScores {
	var cs ComponentScores
	for k, v := range raw {
		canon, ok := componentAliases[strings.ToLower(k)]
		if !ok {
			slog.Debug("dropping unexpected component score key", "key", k)
			continue
		}
		val := Clamp(FloatOr(v, 0), 0, 10)
		switch canon {
		case "Season":
			cs.Season = val
		case "Temperature":
			cs.Temperature = val
		case "Wind":
			cs.Wind = val
		case "Pressure":
			cs.Pressure = val
		case "Tide":
			cs.Tide = val
		case "Moon":
			cs.Moon = val
		case "Time":
			cs.Time = val
		case "Waves":
			cs.Waves = val
		case "Safety":
			cs.Safety = val
		}
	}
	return cs
}

// Named returns the component scores as a factor→score map using the
// canonical TitleCase names.
func (cs ComponentScores) Named() map[string]float64 {
	return map[string]float64{
		"Season":      cs.Season,
		"Temperature": cs.Temperature,
		"Wind":        cs.Wind,
		"Pressure":    cs.Pressure,
		"Tide":        cs.Tide,
		"Moon":        cs.Moon,
		"Time":        cs.Time,
		"Waves":       cs.Waves,
		"Safety":      cs.Safety,
	}
}
