// Package suncalc calculates and caches sun event times for a location.
package suncalc

import (
	"fmt"
	"sync"
	"time"

	"github.com/sj14/astral/pkg/astral"
)

// SunEventTimes holds the calculated sun event times in local time
type SunEventTimes struct {
	CivilDawn time.Time // Civil dawn in local time
	Sunrise   time.Time // Sunrise in local time
	Sunset    time.Time // Sunset in local time
	CivilDusk time.Time // Civil dusk in local time
}

// cacheEntry holds the cached sun event times for a given date
type cacheEntry struct {
	times SunEventTimes
	date  time.Time
}

// SunCalc handles caching and calculation of sun event times
type SunCalc struct {
	cache    map[string]cacheEntry
	lock     sync.RWMutex
	observer astral.Observer
	tz       *time.Location
}

// NewSunCalc creates a new SunCalc instance. A nil timezone means UTC.
func NewSunCalc(latitude, longitude float64, tz *time.Location) *SunCalc {
	if tz == nil {
		tz = time.UTC
	}
	return &SunCalc{
		cache:    make(map[string]cacheEntry),
		observer: astral.Observer{Latitude: latitude, Longitude: longitude},
		tz:       tz,
	}
}

// GetSunEventTimes returns the sun event times for a given date, using cache if available
func (sc *SunCalc) GetSunEventTimes(date time.Time) (SunEventTimes, error) {
	dateKey := date.Format("2006-01-02")

	sc.lock.RLock()
	entry, exists := sc.cache[dateKey]
	sc.lock.RUnlock()

	if exists && entry.date.Equal(date) {
		return entry.times, nil
	}

	times, err := sc.calculateSunEventTimes(date)
	if err != nil {
		return SunEventTimes{}, err
	}

	sc.lock.Lock()
	sc.cache[dateKey] = cacheEntry{times: times, date: date}
	sc.lock.Unlock()

	return times, nil
}

// calculateSunEventTimes calculates the sun event times for a given date
func (sc *SunCalc) calculateSunEventTimes(date time.Time) (SunEventTimes, error) {
	civilDawn, err := astral.Dawn(sc.observer, date, astral.DepressionCivil)
	if err != nil {
		return SunEventTimes{}, fmt.Errorf("failed to calculate civil dawn: %w", err)
	}

	sunrise, err := astral.Sunrise(sc.observer, date)
	if err != nil {
		return SunEventTimes{}, fmt.Errorf("failed to calculate sunrise: %w", err)
	}

	sunset, err := astral.Sunset(sc.observer, date)
	if err != nil {
		return SunEventTimes{}, fmt.Errorf("failed to calculate sunset: %w", err)
	}

	civilDusk, err := astral.Dusk(sc.observer, date, astral.DepressionCivil)
	if err != nil {
		return SunEventTimes{}, fmt.Errorf("failed to calculate civil dusk: %w", err)
	}

	return SunEventTimes{
		CivilDawn: civilDawn.In(sc.tz),
		Sunrise:   sunrise.In(sc.tz),
		Sunset:    sunset.In(sc.tz),
		CivilDusk: civilDusk.In(sc.tz),
	}, nil
}

// GetSunriseTime returns the sunrise time for a given date
func (sc *SunCalc) GetSunriseTime(date time.Time) (time.Time, error) {
	sunEventTimes, err := sc.GetSunEventTimes(date)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to get sun event times: %w", err)
	}
	return sunEventTimes.Sunrise, nil
}

// GetSunsetTime returns the sunset time for a given date
func (sc *SunCalc) GetSunsetTime(date time.Time) (time.Time, error) {
	sunEventTimes, err := sc.GetSunEventTimes(date)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to get sun event times: %w", err)
	}
	return sunEventTimes.Sunset, nil
}

// LightCondition classifies an instant as dawn, day, dusk or night. Dawn and
// dusk are the half hour either side of sunrise and sunset. When sun events
// are unavailable (polar latitudes) a fixed hour split is used instead.
func (sc *SunCalc) LightCondition(t time.Time) string {
	events, err := sc.GetSunEventTimes(t)
	if err != nil {
		return hourFallbackLight(t.In(sc.tz).Hour())
	}

	const window = 30 * time.Minute
	switch {
	case t.Sub(events.Sunrise).Abs() <= window:
		return "dawn"
	case t.Sub(events.Sunset).Abs() <= window:
		return "dusk"
	case t.After(events.Sunrise) && t.Before(events.Sunset):
		return "day"
	default:
		return "night"
	}
}

func hourFallbackLight(hour int) string {
	switch {
	case hour >= 6 && hour < 8:
		return "dawn"
	case hour >= 8 && hour < 18:
		return "day"
	case hour >= 18 && hour < 20:
		return "dusk"
	default:
		return "night"
	}
}
