package astro

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/fishcast/fishcast-go/internal/logging"
)

const (
	sunHorizon  = -0.833 // refraction plus solar semidiameter
	moonHorizon = 0.125  // refraction, parallax and lunar semidiameter combined
	scanStep    = 5 * time.Minute
	refineTo    = 30 * time.Second
)

// Day holds one civil day's astronomical figures. Every field besides Date
// is nullable: a failed ephemeris yields an all-null day and events that do
// not occur on the day (common for moonrise and moonset) stay nil.
type Day struct {
	Date          string
	MoonPhase     *float64
	Moonrise      *time.Time
	Moonset       *time.Time
	MoonTransit   *time.Time
	MoonUnderfoot *time.Time
	Sunrise       *time.Time
	Sunset        *time.Time
}

// Calculator computes daily astro figures for a fixed location.
type Calculator struct {
	eph       Ephemeris
	latitude  float64
	longitude float64
	tz        *time.Location
	logger    *slog.Logger
}

// NewCalculator creates a Calculator for the given location. A nil timezone
// means UTC civil days.
func NewCalculator(eph Ephemeris, latitude, longitude float64, tz *time.Location) *Calculator {
	if tz == nil {
		tz = time.UTC
	}
	return &Calculator{
		eph:       eph,
		latitude:  latitude,
		longitude: longitude,
		tz:        tz,
		logger:    logging.ForService("astro"),
	}
}

// Compute returns one Day per civil date, starting at the date containing
// start, keyed by ISO date. Context cancellation stops the computation and
// returns the days built so far.
func (c *Calculator) Compute(ctx context.Context, start time.Time, days int) map[string]Day {
	out := make(map[string]Day, days)
	local := start.In(c.tz)
	dayStart := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, c.tz)

	for i := 0; i < days; i++ {
		if ctx.Err() != nil {
			c.logger.Warn("astro computation cancelled", "completed_days", i)
			break
		}
		d := c.computeDay(dayStart.AddDate(0, 0, i))
		out[d.Date] = d
	}
	return out
}

func (c *Calculator) computeDay(dayStart time.Time) Day {
	dayEnd := dayStart.AddDate(0, 0, 1)
	d := Day{Date: dayStart.Format("2006-01-02")}

	if phase, err := c.phaseFor(dayStart, dayEnd); err == nil {
		d.MoonPhase = &phase
	} else if quarter, qerr := c.quarterPhase(dayStart, dayEnd); qerr == nil {
		c.logger.Warn("noon phase sampling failed, using nearest quarter phase",
			"date", d.Date, "error", err)
		d.MoonPhase = &quarter
	} else {
		c.logger.Error("ephemeris failed, phase unavailable", "date", d.Date, "error", qerr)
	}

	if rise, set, err := c.riseSet(dayStart, dayEnd, c.sunAltitude, sunHorizon); err == nil {
		d.Sunrise = rise
		d.Sunset = set
	}
	if rise, set, err := c.riseSet(dayStart, dayEnd, c.moonAltitude, moonHorizon); err == nil {
		d.Moonrise = rise
		d.Moonset = set
	}
	if transit, underfoot, err := c.moonMeridianCrossings(dayStart, dayEnd); err == nil {
		d.MoonTransit = transit
		d.MoonUnderfoot = underfoot
	}

	// A short lunar day can push an event just outside this civil day.
	// Search the surrounding window for anything still missing, keeping
	// whatever was already found.
	c.fillMissingMoonEvents(&d, dayStart, dayEnd)

	return d
}

// phaseFor samples the lunar phase at the most representative instant of the
// day: solar transit when it can be found, then longitude-corrected noon,
// then civil noon, then 12:00 UTC.
func (c *Calculator) phaseFor(dayStart, dayEnd time.Time) (float64, error) {
	sample := c.solarTransit(dayStart, dayEnd)
	if sample == nil {
		t := time.Date(dayStart.Year(), dayStart.Month(), dayStart.Day(), 12, 0, 0, 0, time.UTC).
			Add(-time.Duration(c.longitude/15.0*float64(time.Hour)))
		if t.After(dayStart) && t.Before(dayEnd) {
			sample = &t
		}
	}
	if sample == nil {
		t := time.Date(dayStart.Year(), dayStart.Month(), dayStart.Day(), 12, 0, 0, 0, c.tz)
		sample = &t
	}

	sun, err := c.eph.SunPosition(*sample)
	if err != nil {
		return 0, err
	}
	moon, err := c.eph.MoonPosition(*sample)
	if err != nil {
		return 0, err
	}
	return phaseFrom(sun, moon), nil
}

// quarterPhase retries the phase at coarse instants spread across the civil
// day and snaps the first usable sample to the nearest quarter of the cycle
// (new, first quarter, full, last quarter).
func (c *Calculator) quarterPhase(dayStart, dayEnd time.Time) (float64, error) {
	var lastErr error
	for _, h := range []int{0, 6, 18, 23} {
		at := dayStart.Add(time.Duration(h) * time.Hour)
		if !at.Before(dayEnd) {
			at = dayEnd.Add(-time.Minute)
		}
		sun, err := c.eph.SunPosition(at)
		if err != nil {
			lastErr = err
			continue
		}
		moon, err := c.eph.MoonPosition(at)
		if err != nil {
			lastErr = err
			continue
		}
		return nearestQuarter(phaseFrom(sun, moon)), nil
	}
	return 0, lastErr
}

// nearestQuarter snaps a cycle fraction to 0, 0.25, 0.5 or 0.75.
func nearestQuarter(phase float64) float64 {
	q := math.Round(phase*4) / 4
	if q >= 1 {
		q = 0
	}
	return q
}

func (c *Calculator) sunAltitude(t time.Time) (float64, error) {
	p, err := c.eph.SunPosition(t)
	if err != nil {
		return 0, err
	}
	return altitude(t, c.latitude, c.longitude, p), nil
}

func (c *Calculator) moonAltitude(t time.Time) (float64, error) {
	p, err := c.eph.MoonPosition(t)
	if err != nil {
		return 0, err
	}
	return altitude(t, c.latitude, c.longitude, p), nil
}

// riseSet scans the window for crossings of the horizon altitude and refines
// each crossing by bisection. The first upward crossing becomes the rise and
// the first downward crossing the set.
func (c *Calculator) riseSet(from, to time.Time, alt func(time.Time) (float64, error), horizon float64) (rise, set *time.Time, err error) {
	prev, err := alt(from)
	if err != nil {
		return nil, nil, err
	}
	for t := from.Add(scanStep); !t.After(to); t = t.Add(scanStep) {
		cur, err := alt(t)
		if err != nil {
			return nil, nil, err
		}
		switch {
		case rise == nil && prev < horizon && cur >= horizon:
			at := c.refineCrossing(t.Add(-scanStep), t, alt, horizon, true)
			rise = &at
		case set == nil && prev >= horizon && cur < horizon:
			at := c.refineCrossing(t.Add(-scanStep), t, alt, horizon, false)
			set = &at
		}
		prev = cur
	}
	return rise, set, nil
}

// refineCrossing bisects [lo, hi] down to refineTo around the horizon
// crossing. upward selects which side of the crossing is below the horizon.
func (c *Calculator) refineCrossing(lo, hi time.Time, alt func(time.Time) (float64, error), horizon float64, upward bool) time.Time {
	for hi.Sub(lo) > refineTo {
		mid := lo.Add(hi.Sub(lo) / 2)
		a, err := alt(mid)
		if err != nil {
			break
		}
		below := a < horizon
		if below == upward {
			lo = mid
		} else {
			hi = mid
		}
	}
	return lo.Add(hi.Sub(lo) / 2).Round(time.Second).UTC()
}

// solarTransit finds the instant the sun crosses the local meridian, nil if
// no crossing falls inside the window.
func (c *Calculator) solarTransit(from, to time.Time) *time.Time {
	at, err := c.meridianCrossing(from, to, func(t time.Time) (float64, error) {
		p, err := c.eph.SunPosition(t)
		if err != nil {
			return 0, err
		}
		return hourAngle(t, c.longitude, p), nil
	})
	if err != nil {
		return nil
	}
	return at
}

// moonMeridianCrossings finds the moon's upper transit and underfoot
// (lower transit) inside the window.
func (c *Calculator) moonMeridianCrossings(from, to time.Time) (transit, underfoot *time.Time, err error) {
	moonHA := func(t time.Time) (float64, error) {
		p, err := c.eph.MoonPosition(t)
		if err != nil {
			return 0, err
		}
		return hourAngle(t, c.longitude, p), nil
	}
	transit, err = c.meridianCrossing(from, to, moonHA)
	if err != nil {
		return nil, nil, err
	}
	// The lower transit is the zero crossing of the hour angle shifted half
	// a turn.
	underfoot, err = c.meridianCrossing(from, to, func(t time.Time) (float64, error) {
		h, err := moonHA(t)
		if err != nil {
			return 0, err
		}
		h += 180
		if h >= 180 {
			h -= 360
		}
		return h, nil
	})
	if err != nil {
		return nil, nil, err
	}
	return transit, underfoot, nil
}

// meridianCrossing finds the first instant the hour angle function crosses
// zero from negative to positive. Wraparound jumps near ±180 are skipped.
func (c *Calculator) meridianCrossing(from, to time.Time, ha func(time.Time) (float64, error)) (*time.Time, error) {
	prev, err := ha(from)
	if err != nil {
		return nil, err
	}
	for t := from.Add(scanStep); !t.After(to); t = t.Add(scanStep) {
		cur, err := ha(t)
		if err != nil {
			return nil, err
		}
		if prev < 0 && cur >= 0 && math.Abs(cur-prev) < 180 {
			lo, hi := t.Add(-scanStep), t
			for hi.Sub(lo) > refineTo {
				mid := lo.Add(hi.Sub(lo) / 2)
				v, err := ha(mid)
				if err != nil {
					return nil, err
				}
				if v < 0 {
					lo = mid
				} else {
					hi = mid
				}
			}
			at := lo.Add(hi.Sub(lo) / 2).Round(time.Second).UTC()
			return &at, nil
		}
		prev = cur
	}
	return nil, nil
}

// fillMissingMoonEvents widens the search to the surrounding days for moon
// events the civil day itself did not contain. Existing values are kept.
func (c *Calculator) fillMissingMoonEvents(d *Day, dayStart, dayEnd time.Time) {
	if d.Moonrise != nil && d.Moonset != nil && d.MoonTransit != nil && d.MoonUnderfoot != nil {
		return
	}
	from := dayStart.AddDate(0, 0, -1)
	to := dayEnd.AddDate(0, 0, 1)

	if d.Moonrise == nil || d.Moonset == nil {
		rise, set, err := c.riseSet(from, to, c.moonAltitude, moonHorizon)
		if err == nil {
			if d.Moonrise == nil {
				d.Moonrise = rise
			}
			if d.Moonset == nil {
				d.Moonset = set
			}
		}
	}
	if d.MoonTransit == nil || d.MoonUnderfoot == nil {
		transit, underfoot, err := c.moonMeridianCrossings(from, to)
		if err == nil {
			if d.MoonTransit == nil {
				d.MoonTransit = transit
			}
			if d.MoonUnderfoot == nil {
				d.MoonUnderfoot = underfoot
			}
		}
	}
}
