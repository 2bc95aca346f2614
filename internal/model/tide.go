package model

import "time"

var (
	tideAliases = map[string][]string{
		"state":      {"state", "tide_state", "status"},
		"strength":   {"strength", "tide_strength", "intensity"},
		"next_high":  {"next_high", "next_high_tide", "high_tide"},
		"next_low":   {"next_low", "next_low_tide", "low_tide"},
		"confidence": {"confidence", "quality"},
		"source":     {"source", "provider"},
	}

	astroAliases = map[string][]string{
		"moon_phase":     {"moon_phase", "phase", "lunar_phase"},
		"moonrise":       {"moonrise", "moon_rise"},
		"moonset":        {"moonset", "moon_set"},
		"moon_transit":   {"moon_transit", "transit", "moon_culmination"},
		"moon_underfoot": {"moon_underfoot", "underfoot", "lower_transit"},
		"sunrise":        {"sunrise", "sun_rise"},
		"sunset":         {"sunset", "sun_set"},
	}
)

// FormatTide coerces a loosely shaped tide payload into the canonical record.
// Unknown state and zero strength stand in for anything unparseable.
func FormatTide(raw map[string]any, now time.Time) TideRecord {
	rec := TideRecord{
		State:      "unknown",
		Strength:   0,
		Confidence: "unknown",
		Source:     "proxy",
	}
	if raw == nil {
		return rec
	}
	if s, ok := pick(raw, "state", tideAliases).(string); ok && s != "" {
		rec.State = s
	}
	if f, ok := ToFloat(pick(raw, "strength", tideAliases)); ok {
		rec.Strength = int(Clamp(f, 0, 100))
	}
	if s, ok := pick(raw, "confidence", tideAliases).(string); ok && s != "" {
		rec.Confidence = s
	}
	if s, ok := pick(raw, "source", tideAliases).(string); ok && s != "" {
		rec.Source = s
	}
	if s, ok := pick(raw, "next_high", tideAliases).(string); ok && s != "" {
		rec.NextHigh = NormalizeTimestamp(s, now)
	}
	if s, ok := pick(raw, "next_low", tideAliases).(string); ok && s != "" {
		rec.NextLow = NormalizeTimestamp(s, now)
	}
	return rec
}

// FormatAstro coerces a loosely shaped astro payload. Event fields stay nil
// when absent rather than being defaulted, since a missing event is a real
// state for polar days and ephemeris failures.
func FormatAstro(raw map[string]any, now time.Time) AstroRecord {
	var rec AstroRecord
	if raw == nil {
		return rec
	}
	if f, ok := ToFloat(pick(raw, "moon_phase", astroAliases)); ok {
		rec.MoonPhase = Float(Clamp(f, 0, 1))
	}
	event := func(key string, dst **string) {
		if s, ok := pick(raw, key, astroAliases).(string); ok && s != "" {
			*dst = String(NormalizeTimestamp(s, now))
		}
	}
	event("moonrise", &rec.Moonrise)
	event("moonset", &rec.Moonset)
	event("moon_transit", &rec.MoonTransit)
	event("moon_underfoot", &rec.MoonUnderfoot)
	event("sunrise", &rec.Sunrise)
	event("sunset", &rec.Sunset)
	return rec
}
