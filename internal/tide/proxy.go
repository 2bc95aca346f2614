// Package tide estimates tide state from lunar motion when no gauge data is
// available. The estimate treats the tide as a sinusoid locked to the lunar
// day, with spring/neap strength taken from the moon phase. It is a coarse
// proxy, so every record it produces is marked with proxy confidence.
package tide

import (
	"math"
	"sync"
	"time"

	"github.com/fishcast/fishcast-go/internal/astro"
	"github.com/fishcast/fishcast-go/internal/model"
)

const (
	lunarDayHours    = 24.84
	halfCycleHours   = lunarDayHours / 2 // high-to-high interval
	minTurnLeadHours = 0.5               // never report a turn as "now"
	cacheTTL         = 15 * time.Minute
)

// reference upper transit at Greenwich, used as the lunar day origin
var lunarEpoch = time.Date(2000, 1, 6, 18, 14, 0, 0, time.UTC)

// Proxy derives tide state for a fixed longitude.
type Proxy struct {
	longitude float64

	mu       sync.Mutex
	cached   model.TideRecord
	cachedAt time.Time
}

// NewProxy creates a tide proxy for the given longitude (degrees east).
func NewProxy(longitude float64) *Proxy {
	return &Proxy{longitude: longitude}
}

// lunarDayFraction returns the position within the local lunar day, 0..1,
// with 0 at upper transit.
func (p *Proxy) lunarDayFraction(now time.Time) float64 {
	hours := now.UTC().Sub(lunarEpoch).Hours() + p.longitude/15.0
	frac := math.Mod(hours, lunarDayHours) / lunarDayHours
	if frac < 0 {
		frac += 1
	}
	return frac
}

// moonAltitudeProxy maps the lunar day fraction onto a pseudo altitude in
// degrees: +90 at transit, -90 at underfoot.
func moonAltitudeProxy(frac float64) float64 {
	return 90 * math.Sin(2*math.Pi*frac+math.Pi/2)
}

// stateFor classifies the tide from the pseudo altitude: slack high when the
// moon is near transit or underfoot, slack low when it crosses the horizon,
// otherwise moving with the first half of the lunar day rising.
func stateFor(frac float64) string {
	alt := moonAltitudeProxy(frac)
	switch {
	case math.Abs(alt) > 70:
		return model.TideSlackHigh
	case math.Abs(alt) < 10:
		return model.TideSlackLow
	case frac < 0.5:
		return model.TideRising
	default:
		return model.TideFalling
	}
}

// strengthFor converts the moon phase into a spring/neap strength 0..100.
// Springs follow new (0) and full (0.5) moon; quarters give the weakest
// movement. Unknown phase reports the neutral 50.
func strengthFor(phase *float64) int {
	if phase == nil {
		return 50
	}
	p := math.Mod(*phase, 1)
	if p < 0 {
		p += 1
	}
	dist := math.Min(math.Min(p, math.Abs(p-0.5)), 1-p)
	strength := 100 * (1 - dist/0.25)
	return int(model.Clamp(strength, 0, 100))
}

// Current estimates the tide state at now. The optional moon phase from the
// astro calculator feeds the strength estimate. Results are cached for a
// quarter hour.
func (p *Proxy) Current(now time.Time, phase *float64) model.TideRecord {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.cachedAt.IsZero() && now.Sub(p.cachedAt) < cacheTTL {
		return p.cached
	}

	frac := p.lunarDayFraction(now)
	nextHigh, nextLow := p.nextTurns(now)

	rec := model.TideRecord{
		State:      stateFor(frac),
		Strength:   strengthFor(phase),
		NextHigh:   model.IsoZ(nextHigh),
		NextLow:    model.IsoZ(nextLow),
		Confidence: "proxy",
		Source:     "lunar_proxy",
	}

	p.cached = rec
	p.cachedAt = now
	return rec
}

// nextTurns returns the next high and low tide instants after now.
func (p *Proxy) nextTurns(now time.Time) (high, low time.Time) {
	hours := now.UTC().Sub(lunarEpoch).Hours() + p.longitude/15.0
	into := math.Mod(hours, halfCycleHours)
	if into < 0 {
		into += halfCycleHours
	}
	toHigh := halfCycleHours - into
	if toHigh < minTurnLeadHours {
		toHigh = halfCycleHours
	}
	high = now.Add(time.Duration(toHigh * float64(time.Hour)))
	low = high.Add(time.Duration(halfCycleHours / 2 * float64(time.Hour)))
	if lowCandidate := high.Add(-time.Duration(halfCycleHours / 2 * float64(time.Hour))); lowCandidate.After(now) {
		low = lowCandidate
	}
	return high, low
}

// Forecast produces one tide entry per astro day, sampled at the moon
// transit when known, otherwise local noon of the day.
func (p *Proxy) Forecast(days map[string]astro.Day, tz *time.Location) map[string]model.TideDayRecord {
	if tz == nil {
		tz = time.UTC
	}
	out := make(map[string]model.TideDayRecord, len(days))
	for date, day := range days {
		sample := sampleInstant(day, date, tz)
		frac := p.lunarDayFraction(sample)
		out[date] = model.TideDayRecord{
			State:    stateFor(frac),
			Strength: strengthFor(day.MoonPhase),
			Datetime: model.IsoZ(sample),
			Source:   "lunar_proxy",
		}
	}
	return out
}

func sampleInstant(day astro.Day, date string, tz *time.Location) time.Time {
	if day.MoonTransit != nil {
		return *day.MoonTransit
	}
	if d, ok := model.ParseTimeUTC(date); ok {
		return time.Date(d.Year(), d.Month(), d.Day(), 12, 0, 0, 0, tz)
	}
	return time.Now().UTC()
}
