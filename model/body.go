package model

// MotionSource indicates how a body's trajectory is determined.
type MotionSource int

const (
	MotionSourceFixed     MotionSource = iota
	MotionSourceKeplerian              // closed-form two-body orbit
	MotionSourceTLE                    // SGP4 from a two-line element set
	MotionSourceEphemeris              // external JPL ephemeris
)

// RotationSource indicates how a body's orientation is determined.
type RotationSource int

const (
	RotationSourceFixed     RotationSource = iota
	RotationSourceUniform                  // constant spin about a fixed axis
	RotationSourceEphemeris                // external frame-transform service
	RotationSourceBodyFixed                // another body's rotation, half-turned about z
)

// BodyDefinition describes a celestial body or spacecraft before it is
// turned into an entity. It is plain data; see core.NewEntityFromDefinition.
type BodyDefinition struct {
	ID     string
	Name   string
	Type   string // e.g. "STAR", "PLANET", "MOON", "SPACECRAFT"
	Center string // ID of the body this one orbits; empty for the root

	MotionSource MotionSource
	Elements     OrbitalElements
	TLELine1     string
	TLELine2     string
	Position     [3]float64 // used by MotionSourceFixed, km

	RotationSource       RotationSource
	PoleInclination      float64 // radians
	PoleAscendingNode    float64 // radians
	RotationRate         float64 // rad/s
	MeridianAngleAtEpoch float64 // radians
	RotationEpoch        float64 // seconds past J2000
	// FrameName is the body-fixed frame queried from the frame service when
	// RotationSource is RotationSourceEphemeris. The inertial side is ICRF.
	FrameName string
	// RotationBody is the ID of the body whose rotation is followed when
	// RotationSource is RotationSourceBodyFixed.
	RotationBody string

	// SemiAxes of the body's reference ellipsoid (km). Zero means a point.
	SemiAxes [3]float64
}
