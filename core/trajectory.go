package core

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/signalsfoundry/cosmoview/model"
)

// Trajectory gives the state of a body relative to its center at a time in
// seconds past J2000 TDB.
type Trajectory interface {
	State(t float64) model.StateVector
	BoundingSphereRadius() float64
	IsPeriodic() bool
	Period() float64
}

// OrbitOrientation returns the rotation from the orbital plane frame to the
// reference frame: Rz(node) * Rx(inclination) * Rz(argument of periapsis).
func OrbitOrientation(inclination, longitudeOfAscendingNode, argumentOfPeriapsis float64) quat.Number {
	return quat.Mul(
		quat.Mul(AxisAngle(unitZ, longitudeOfAscendingNode), AxisAngle(unitX, inclination)),
		AxisAngle(unitZ, argumentOfPeriapsis),
	)
}

// KeplerianTrajectory is a closed-form two-body orbit. Only elliptical orbits
// (eccentricity < 1) are supported.
type KeplerianTrajectory struct {
	elements    model.OrbitalElements
	orientation quat.Number
}

// NewKeplerianTrajectory creates a trajectory from orbital elements. The
// elements are copied and never modified.
func NewKeplerianTrajectory(elements model.OrbitalElements) *KeplerianTrajectory {
	return &KeplerianTrajectory{
		elements: elements,
		orientation: OrbitOrientation(
			elements.Inclination,
			elements.LongitudeOfAscendingNode,
			elements.ArgumentOfPeriapsis,
		),
	}
}

// Elements returns the orbital elements of the trajectory.
func (k *KeplerianTrajectory) Elements() model.OrbitalElements {
	return k.elements
}

// State computes position and velocity at time t.
func (k *KeplerianTrajectory) State(t float64) model.StateVector {
	ecc := k.elements.Eccentricity
	meanAnomaly := k.elements.MeanAnomalyAtEpoch + k.elements.MeanMotion*(t-k.elements.Epoch)
	E := EccentricAnomaly(ecc, meanAnomaly)
	sinE, cosE := math.Sincos(E)
	w := math.Sqrt(1.0 - ecc*ecc)

	a := k.elements.PeriapsisDistance / (1.0 - ecc)
	position := r3.Vec{
		X: a * (cosE - ecc),
		Y: a * w * sinE,
	}

	edot := k.elements.MeanMotion / (1 - ecc*cosE)
	velocity := r3.Vec{
		X: -a * sinE * edot,
		Y: a * w * cosE * edot,
	}

	return model.StateVector{
		Position: Rotate(k.orientation, position),
		Velocity: Rotate(k.orientation, velocity),
	}
}

// BoundingSphereRadius returns the semi-major axis.
func (k *KeplerianTrajectory) BoundingSphereRadius() float64 {
	return k.elements.SemiMajorAxis()
}

// IsPeriodic reports whether the orbit is closed.
func (k *KeplerianTrajectory) IsPeriodic() bool {
	return k.elements.Eccentricity < 1.0
}

// Period returns the orbital period in seconds, or 0 for orbits that are not
// periodic.
func (k *KeplerianTrajectory) Period() float64 {
	if k.elements.Eccentricity >= 1.0 {
		return 0.0
	}
	return 2.0 * math.Pi / k.elements.MeanMotion
}

// FixedPointTrajectory keeps a body at a constant offset from its center.
type FixedPointTrajectory struct {
	Position r3.Vec
}

// State returns the fixed position with zero velocity.
func (f FixedPointTrajectory) State(float64) model.StateVector {
	return model.StateVector{Position: f.Position}
}

// BoundingSphereRadius returns the distance from the center.
func (f FixedPointTrajectory) BoundingSphereRadius() float64 { return r3.Norm(f.Position) }

// IsPeriodic always reports false.
func (f FixedPointTrajectory) IsPeriodic() bool { return false }

// Period always returns 0.
func (f FixedPointTrajectory) Period() float64 { return 0 }
