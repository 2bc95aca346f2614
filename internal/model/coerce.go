package model

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// ToFloat coerces raw provider values (numbers, numeric strings, bools) into
// a finite float. Empty strings, "nan", non-numeric text, NaN and infinities
// all report ok=false so callers can apply their own defaults.
func ToFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case nil:
		return 0, false
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return 0, false
		}
		return x, true
	case float32:
		return ToFloat(float64(x))
	case int:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	case string:
		s := strings.TrimSpace(x)
		if s == "" || strings.EqualFold(s, "nan") {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// FloatOr coerces v, falling back to def when coercion fails.
func FloatOr(v any, def float64) float64 {
	if f, ok := ToFloat(v); ok {
		return f
	}
	return def
}

// FloatPtr coerces v into a *float64, nil when coercion fails.
func FloatPtr(v any) *float64 {
	if f, ok := ToFloat(v); ok {
		return &f
	}
	return nil
}

// Deref returns *p, or def when p is nil.
func Deref(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// Round1 rounds to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// IsoZ renders t as a UTC ISO8601 string with a Z suffix.
func IsoZ(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05Z")
}

// ParseTimeUTC accepts the timestamp variants seen in provider payloads:
// RFC3339, ISO without zone (assumed UTC), "YYYY-MM-DDTHH:MM" and bare dates.
func ParseTimeUTC(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02T15:04",
		"2006-01-02 15:04:05",
		"2006-01-02",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// NormalizeTimestamp re-renders any parseable timestamp as a UTC Z string.
// Unparseable input falls back to now so a record never carries an empty or
// garbage time axis.
func NormalizeTimestamp(s string, now time.Time) string {
	if t, ok := ParseTimeUTC(s); ok {
		return IsoZ(t)
	}
	return IsoZ(now)
}

// DayName returns the weekday name for an ISO date string, or "" on failure.
func DayName(date string) string {
	d, ok := ParseTimeUTC(strings.SplitN(date, "T", 2)[0])
	if !ok {
		return ""
	}
	return d.Weekday().String()
}
