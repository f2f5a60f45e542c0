package model

import (
	"math"
	"time"
)

// J2000 is the J2000.0 epoch (2000-01-01 12:00 TT) expressed in UTC. TDB and
// TT differ by less than 2ms, which is ignored here.
var J2000 = time.Date(2000, time.January, 1, 11, 58, 55, 816000000, time.UTC)

// SecondsPerDay is the length of a Julian day in seconds.
const SecondsPerDay = 86400.0

// JulianDateJ2000 is the Julian date of the J2000 epoch.
const JulianDateJ2000 = 2451545.0

// SecondsSinceJ2000 converts a wall-clock time to simulation seconds.
func SecondsSinceJ2000(t time.Time) float64 {
	return t.Sub(J2000).Seconds()
}

// TimeFromJ2000Seconds converts simulation seconds back to a UTC time.
func TimeFromJ2000Seconds(sec float64) time.Time {
	whole, frac := math.Modf(sec)
	return J2000.Add(time.Duration(whole) * time.Second).Add(time.Duration(frac * float64(time.Second)))
}

// JulianDate returns the Julian date for simulation seconds past J2000.
func JulianDate(sec float64) float64 {
	return JulianDateJ2000 + sec/SecondsPerDay
}
