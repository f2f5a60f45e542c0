package core

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/signalsfoundry/cosmoview/internal/logging"
	"github.com/signalsfoundry/cosmoview/model"
)

// ErrUnsupportedSource is returned when a body definition asks for a motion
// or rotation source that no configured service can provide.
var ErrUnsupportedSource = errors.New("unsupported body source")

// Entity is a body with a trajectory relative to its center and an optional
// rotation model. A nil center means the entity is the root of the system
// (the solar system barycenter in practice).
type Entity struct {
	name       string
	center     *Entity
	trajectory Trajectory
	rotation   RotationModel
	shape      AlignedEllipsoid
}

// NewEntity creates an entity. Any of center, trajectory and rotation may be
// nil.
func NewEntity(name string, center *Entity, trajectory Trajectory, rotation RotationModel) *Entity {
	return &Entity{name: name, center: center, trajectory: trajectory, rotation: rotation}
}

// Name returns the entity name.
func (e *Entity) Name() string { return e.name }

// Center returns the center entity, or nil for the root.
func (e *Entity) Center() *Entity { return e.center }

// Trajectory returns the trajectory relative to the center.
func (e *Entity) Trajectory() Trajectory { return e.trajectory }

// RotationModel returns the rotation model, which may be nil.
func (e *Entity) RotationModel() RotationModel { return e.rotation }

// Shape returns the reference ellipsoid. A point body has all axes zero.
func (e *Entity) Shape() AlignedEllipsoid { return e.shape }

// SetShape sets the reference ellipsoid.
func (e *Entity) SetShape(s AlignedEllipsoid) { e.shape = s }

// State returns the state relative to the root of the system.
func (e *Entity) State(t float64) model.StateVector {
	var s model.StateVector
	if e.trajectory != nil {
		s = e.trajectory.State(t)
	}
	if e.center != nil {
		s = s.Add(e.center.State(t))
	}
	return s
}

// Position returns the position relative to the root of the system.
func (e *Entity) Position(t float64) r3.Vec {
	var p r3.Vec
	if e.trajectory != nil {
		p = e.trajectory.State(t).Position
	}
	if e.center != nil {
		p = r3.Add(p, e.center.Position(t))
	}
	return p
}

// Orientation returns the body orientation, or the identity when the entity
// has no rotation model.
func (e *Entity) Orientation(t float64) quat.Number {
	if e.rotation == nil {
		return Identity()
	}
	return e.rotation.Orientation(t)
}

// AngularVelocity returns zero when the entity has no rotation model.
func (e *Entity) AngularVelocity(t float64) r3.Vec {
	if e.rotation == nil {
		return r3.Vec{}
	}
	return e.rotation.AngularVelocity(t)
}

// EntityOption configures how body definitions become entities.
type EntityOption func(*entityBuilder)

// EphemerisTrajectoryFunc returns the trajectory of an ephemeris-backed body.
type EphemerisTrajectoryFunc func(def model.BodyDefinition) (Trajectory, error)

type entityBuilder struct {
	frames       FrameTransformer
	trajectories EphemerisTrajectoryFunc
	log          logging.Logger
	failures     FailureRecorder
	bodies       func(id string) *Entity
}

// WithFrameTransformer provides the frame service for ephemeris rotations.
func WithFrameTransformer(ft FrameTransformer) EntityOption {
	return func(b *entityBuilder) { b.frames = ft }
}

// WithEphemerisTrajectories provides ephemeris-backed trajectories.
func WithEphemerisTrajectories(fn EphemerisTrajectoryFunc) EntityOption {
	return func(b *entityBuilder) { b.trajectories = fn }
}

// WithEntityLogger sets the logger handed to ephemeris rotation models.
func WithEntityLogger(l logging.Logger) EntityOption {
	return func(b *entityBuilder) { b.log = l }
}

// WithEntityFailureRecorder sets the failure recorder handed to ephemeris
// rotation models.
func WithEntityFailureRecorder(r FailureRecorder) EntityOption {
	return func(b *entityBuilder) { b.failures = r }
}

// WithBodyLookup resolves the already-built bodies that body-fixed rotations
// refer to by ID.
func WithBodyLookup(lookup func(id string) *Entity) EntityOption {
	return func(b *entityBuilder) { b.bodies = lookup }
}

// NewEntityFromDefinition builds an entity from plain catalog data. center
// is the already-built entity named by def.Center, or nil.
func NewEntityFromDefinition(def model.BodyDefinition, center *Entity, opts ...EntityOption) (*Entity, error) {
	b := &entityBuilder{}
	for _, opt := range opts {
		opt(b)
	}

	name := def.Name
	if name == "" {
		name = def.ID
	}

	var traj Trajectory
	switch def.MotionSource {
	case model.MotionSourceFixed:
		traj = FixedPointTrajectory{Position: r3.Vec{X: def.Position[0], Y: def.Position[1], Z: def.Position[2]}}
	case model.MotionSourceKeplerian:
		if def.Elements.Eccentricity < 0 || def.Elements.Eccentricity >= 1 {
			return nil, fmt.Errorf("body %q: eccentricity %g: %w", def.ID, def.Elements.Eccentricity, ErrUnsupportedSource)
		}
		traj = NewKeplerianTrajectory(def.Elements)
	case model.MotionSourceTLE:
		tle, err := NewTLETrajectory(def.TLELine1, def.TLELine2)
		if err != nil {
			return nil, fmt.Errorf("body %q: %w", def.ID, err)
		}
		traj = tle
	case model.MotionSourceEphemeris:
		if b.trajectories == nil {
			return nil, fmt.Errorf("body %q: no ephemeris configured: %w", def.ID, ErrUnsupportedSource)
		}
		eph, err := b.trajectories(def)
		if err != nil {
			return nil, fmt.Errorf("body %q: %w", def.ID, err)
		}
		traj = eph
	default:
		return nil, fmt.Errorf("body %q: motion source %d: %w", def.ID, def.MotionSource, ErrUnsupportedSource)
	}

	var rot RotationModel
	switch def.RotationSource {
	case model.RotationSourceFixed:
		rot = FixedRotationModel{Rotation: Identity()}
	case model.RotationSourceUniform:
		rot = NewUniformRotationModel(
			def.PoleInclination,
			def.PoleAscendingNode,
			def.RotationRate,
			def.MeridianAngleAtEpoch,
			def.RotationEpoch,
		)
	case model.RotationSourceEphemeris:
		if b.frames == nil || def.FrameName == "" {
			return nil, fmt.Errorf("body %q: no frame service for %q: %w", def.ID, def.FrameName, ErrUnsupportedSource)
		}
		ropts := []EphemerisRotationOption{WithRotationLogger(b.log)}
		if b.failures != nil {
			ropts = append(ropts, WithFailureRecorder(b.failures))
		}
		rot = NewEphemerisRotationModel(b.frames, def.FrameName, FrameICRF, ropts...)
	case model.RotationSourceBodyFixed:
		var ref *Entity
		if b.bodies != nil {
			ref = b.bodies(def.RotationBody)
		}
		if ref == nil || ref.RotationModel() == nil {
			return nil, fmt.Errorf("body %q: rotation body %q not available: %w", def.ID, def.RotationBody, ErrUnsupportedSource)
		}
		rot = NewBodyFixedRotationModel(ref.RotationModel())
	default:
		return nil, fmt.Errorf("body %q: rotation source %d: %w", def.ID, def.RotationSource, ErrUnsupportedSource)
	}

	e := NewEntity(name, center, traj, rot)
	e.shape = NewAlignedEllipsoid(def.SemiAxes[0], def.SemiAxes[1], def.SemiAxes[2])
	return e, nil
}
