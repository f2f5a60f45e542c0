package model

import "math"

// OrbitalElements describes a Keplerian orbit. Angles are radians, distances
// km, mean motion rad/s and the epoch is seconds past J2000 TDB.
type OrbitalElements struct {
	PeriapsisDistance        float64
	Eccentricity             float64
	Inclination              float64
	LongitudeOfAscendingNode float64
	ArgumentOfPeriapsis      float64
	MeanAnomalyAtEpoch       float64
	MeanMotion               float64
	Epoch                    float64
}

// SemiMajorAxis returns q/(1-e). Only meaningful for elliptical orbits.
func (e OrbitalElements) SemiMajorAxis() float64 {
	return e.PeriapsisDistance / (1.0 - e.Eccentricity)
}

// OrbitalElementsFromSemiMajorAxis builds elements from the semi-major axis
// and derives the mean motion from the gravitational parameter mu (km^3/s^2).
func OrbitalElementsFromSemiMajorAxis(a, ecc, incl, node, argPeri, meanAnomaly, epoch, mu float64) OrbitalElements {
	return OrbitalElements{
		PeriapsisDistance:        a * (1.0 - ecc),
		Eccentricity:             ecc,
		Inclination:              incl,
		LongitudeOfAscendingNode: node,
		ArgumentOfPeriapsis:      argPeri,
		MeanAnomalyAtEpoch:       meanAnomaly,
		MeanMotion:               math.Sqrt(mu / (a * a * a)),
		Epoch:                    epoch,
	}
}
