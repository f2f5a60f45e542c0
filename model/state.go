package model

import "gonum.org/v1/gonum/spatial/r3"

// StateVector is a position (km) and velocity (km/s) pair at one instant.
type StateVector struct {
	Position r3.Vec
	Velocity r3.Vec
}

// Add returns the component-wise sum of two states.
func (s StateVector) Add(other StateVector) StateVector {
	return StateVector{
		Position: r3.Add(s.Position, other.Position),
		Velocity: r3.Add(s.Velocity, other.Velocity),
	}
}

// Sub returns s - other.
func (s StateVector) Sub(other StateVector) StateVector {
	return StateVector{
		Position: r3.Sub(s.Position, other.Position),
		Velocity: r3.Sub(s.Velocity, other.Velocity),
	}
}
