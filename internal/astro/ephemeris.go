// Package astro computes the daily solar and lunar figures used by the
// scoring engine: moon phase, rise, set, transit and underfoot times, and
// sun rise and set times. The ephemeris uses low-precision series accurate
// to a few minutes, which is ample for activity windows.
package astro

import (
	"math"
	"time"
)

const (
	deg   = math.Pi / 180
	j2000 = 2451545.0
)

// Position is an apparent body position at one instant. Angles in degrees.
type Position struct {
	EclipticLongitude float64 // degrees, 0..360
	RightAscension    float64 // degrees, 0..360
	Declination       float64 // degrees
}

// Ephemeris yields apparent positions for the sun and moon. Implementations
// may fail, in which case the calculator produces all-null days rather than
// propagating the error.
type Ephemeris interface {
	SunPosition(t time.Time) (Position, error)
	MoonPosition(t time.Time) (Position, error)
}

// meeusEphemeris implements the low-precision solar and lunar series.
type meeusEphemeris struct{}

// NewEphemeris returns the built-in low-precision ephemeris.
func NewEphemeris() Ephemeris {
	return meeusEphemeris{}
}

// julianDay converts t to a Julian day number.
func julianDay(t time.Time) float64 {
	return float64(t.UTC().UnixMilli())/86400000.0 + 2440587.5
}

func norm360(a float64) float64 {
	a = math.Mod(a, 360)
	if a < 0 {
		a += 360
	}
	return a
}

// obliquity returns the mean obliquity of the ecliptic in degrees.
func obliquity(n float64) float64 {
	return 23.439 - 0.0000004*n
}

// eclipticToEquatorial converts ecliptic longitude and latitude (degrees)
// to right ascension and declination (degrees).
func eclipticToEquatorial(lon, lat, eps float64) (ra, dec float64) {
	lonR, latR, epsR := lon*deg, lat*deg, eps*deg
	ra = math.Atan2(
		math.Sin(lonR)*math.Cos(epsR)-math.Tan(latR)*math.Sin(epsR),
		math.Cos(lonR),
	) / deg
	dec = math.Asin(
		math.Sin(latR)*math.Cos(epsR)+math.Cos(latR)*math.Sin(epsR)*math.Sin(lonR),
	) / deg
	return norm360(ra), dec
}

func (meeusEphemeris) SunPosition(t time.Time) (Position, error) {
	n := julianDay(t) - j2000

	meanLon := norm360(280.460 + 0.9856474*n)
	meanAnom := norm360(357.528+0.9856003*n) * deg

	lon := norm360(meanLon + 1.915*math.Sin(meanAnom) + 0.020*math.Sin(2*meanAnom))
	ra, dec := eclipticToEquatorial(lon, 0, obliquity(n))

	return Position{EclipticLongitude: lon, RightAscension: ra, Declination: dec}, nil
}

func (meeusEphemeris) MoonPosition(t time.Time) (Position, error) {
	n := julianDay(t) - j2000

	meanLon := norm360(218.316 + 13.176396*n)
	meanAnom := norm360(134.963+13.064993*n) * deg
	argLat := norm360(93.272+13.229350*n) * deg

	lon := norm360(meanLon + 6.289*math.Sin(meanAnom))
	lat := 5.128 * math.Sin(argLat)
	ra, dec := eclipticToEquatorial(lon, lat, obliquity(n))

	return Position{EclipticLongitude: lon, RightAscension: ra, Declination: dec}, nil
}

// siderealTime returns the local apparent sidereal time in degrees for the
// given instant and east longitude.
func siderealTime(t time.Time, longitude float64) float64 {
	n := julianDay(t) - j2000
	gmst := 280.46061837 + 360.98564736629*n
	return norm360(gmst + longitude)
}

// hourAngle returns the body's local hour angle in degrees, normalized to
// [-180, 180). Zero means the body is on the local meridian (upper transit).
func hourAngle(t time.Time, longitude float64, p Position) float64 {
	h := siderealTime(t, longitude) - p.RightAscension
	h = math.Mod(h+180, 360)
	if h < 0 {
		h += 360
	}
	return h - 180
}

// altitude returns the body's altitude above the horizon in degrees.
func altitude(t time.Time, latitude, longitude float64, p Position) float64 {
	h := hourAngle(t, longitude, p) * deg
	latR := latitude * deg
	decR := p.Declination * deg
	sinAlt := math.Sin(latR)*math.Sin(decR) + math.Cos(latR)*math.Cos(decR)*math.Cos(h)
	return math.Asin(math.Max(-1, math.Min(1, sinAlt))) / deg
}

// phaseFrom returns the lunar phase as a cycle fraction: 0 new moon,
// 0.5 full moon, increasing monotonically through the synodic month.
func phaseFrom(sun, moon Position) float64 {
	return norm360(moon.EclipticLongitude-sun.EclipticLongitude) / 360
}
