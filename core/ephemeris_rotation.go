package core

import (
	"context"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/signalsfoundry/cosmoview/internal/logging"
)

// FrameTransformer is an external service that returns transformations
// between named reference frames at an ephemeris time (seconds past J2000
// TDB). Errors are latched: after a failed call Failed reports true and
// ErrorMessage describes the problem until Reset is called.
type FrameTransformer interface {
	// Transform3 returns the 3x3 rotation taking vectors in from to vectors in to.
	Transform3(from, to string, et float64) *mat.Dense
	// Transform6 returns the 6x6 state transformation. The upper-left block is
	// the rotation and the lower-left block its time derivative.
	Transform6(from, to string, et float64) *mat.Dense
	Failed() bool
	ErrorMessage() string
	Reset()
}

// FailureRecorder counts external-service failures per rotation model.
type FailureRecorder interface {
	RecordEphemerisFailure(model string)
}

// EphemerisRotationModel reads a body's orientation from a FrameTransformer.
type EphemerisRotationModel struct {
	name      string
	fromFrame string
	toFrame   string
	service   FrameTransformer
	log       logging.Logger
	failures  FailureRecorder
}

// EphemerisRotationOption configures an EphemerisRotationModel.
type EphemerisRotationOption func(*EphemerisRotationModel)

// WithRotationLogger sets the logger used to report service failures.
func WithRotationLogger(l logging.Logger) EphemerisRotationOption {
	return func(m *EphemerisRotationModel) { m.log = logging.OrNoop(l) }
}

// WithFailureRecorder attaches a metrics recorder for service failures.
func WithFailureRecorder(r FailureRecorder) EphemerisRotationOption {
	return func(m *EphemerisRotationModel) { m.failures = r }
}

// NewEphemerisRotationModel creates a rotation model giving the orientation
// of fromFrame (usually body-fixed) relative to toFrame (usually inertial).
func NewEphemerisRotationModel(service FrameTransformer, fromFrame, toFrame string, opts ...EphemerisRotationOption) *EphemerisRotationModel {
	m := &EphemerisRotationModel{
		name:      fromFrame,
		fromFrame: fromFrame,
		toFrame:   toFrame,
		service:   service,
		log:       logging.Noop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Orientation returns the rotation at t, or the identity if the service
// reports an error.
func (m *EphemerisRotationModel) Orientation(t float64) quat.Number {
	r := m.service.Transform3(m.fromFrame, m.toFrame, t)
	if m.checkFailure("orientation", t) || r == nil {
		return Identity()
	}
	return QuatFromMatrix(r)
}

// AngularVelocity returns the angular velocity at t, or zero if the service
// reports an error.
func (m *EphemerisRotationModel) AngularVelocity(t float64) r3.Vec {
	x := m.service.Transform6(m.fromFrame, m.toFrame, t)
	if m.checkFailure("angular velocity", t) || x == nil {
		return r3.Vec{}
	}

	// W = dR/dt * R^T is skew-symmetric.
	var w r3.Mat
	w.Mul(x.Slice(3, 6, 0, 3), x.Slice(0, 3, 0, 3).T())
	return r3.Vec{X: -w.At(1, 2), Y: w.At(0, 2), Z: -w.At(0, 1)}
}

func (m *EphemerisRotationModel) checkFailure(what string, t float64) bool {
	if !m.service.Failed() {
		return false
	}
	m.log.Error(context.Background(), "frame transformer failed",
		logging.String("model", m.name),
		logging.String("query", what),
		logging.String("from", m.fromFrame),
		logging.String("to", m.toFrame),
		logging.Float64("et", t),
		logging.String("message", m.service.ErrorMessage()),
	)
	m.service.Reset()
	if m.failures != nil {
		m.failures.RecordEphemerisFailure(m.name)
	}
	return true
}
