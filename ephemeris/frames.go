// Package ephemeris provides frame-transform services and trajectories backed
// by tabulated data: an in-memory table of named frames and JPL DE binary
// ephemerides.
package ephemeris

import (
	"errors"
	"fmt"
	"sync"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/signalsfoundry/cosmoview/core"
)

// ErrUnknownFrame is latched when a transform names a frame the service
// cannot resolve.
var ErrUnknownFrame = errors.New("unknown frame")

// frameState is the orientation of a frame relative to ICRF and its time
// derivative (per second).
type frameState struct {
	rotation *r3.Mat
	rate     *r3.Mat
}

// rotatingState is the state of a frame with orientation q and angular
// velocity w (ICRF): dR/dt = [w]x R.
func rotatingState(q quat.Number, w r3.Vec) frameState {
	r := core.MatrixFromQuat(q)
	var wx r3.Mat
	wx.Skew(w)
	rate := r3.NewMat(nil)
	rate.Mul(&wx, r)
	return frameState{rotation: r, rate: rate}
}

// stateOf samples a core.Frame.
func stateOf(f core.Frame, et float64) frameState {
	return rotatingState(f.Orientation(et), f.AngularVelocity(et))
}

// resolveFunc returns the state of a named frame at et.
type resolveFunc func(name string, et float64) (frameState, error)

// transformer implements the latched-error FrameTransformer contract on top
// of a frame resolver. Once a call fails, later calls return nil until Reset.
type transformer struct {
	mu      sync.Mutex
	resolve resolveFunc
	err     error
}

func (t *transformer) relative(from, to string, et float64) (*r3.Mat, *r3.Mat, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.err != nil {
		return nil, nil, false
	}
	src, err := t.resolve(from, et)
	if err != nil {
		t.err = fmt.Errorf("transform %s -> %s: %w", from, to, err)
		return nil, nil, false
	}
	dst, err := t.resolve(to, et)
	if err != nil {
		t.err = fmt.Errorf("transform %s -> %s: %w", from, to, err)
		return nil, nil, false
	}

	// R = Dst^T Src, dR = dDst^T Src + Dst^T dSrc
	r := r3.NewMat(nil)
	r.Mul(dst.rotation.T(), src.rotation)
	var a, b r3.Mat
	a.Mul(dst.rate.T(), src.rotation)
	b.Mul(dst.rotation.T(), src.rate)
	rate := r3.NewMat(nil)
	rate.Add(&a, &b)
	return r, rate, true
}

// Transform3 returns the rotation taking vectors in from to vectors in to,
// or nil after an error.
func (t *transformer) Transform3(from, to string, et float64) *mat.Dense {
	r, _, ok := t.relative(from, to, et)
	if !ok {
		return nil
	}
	d := mat.NewDense(3, 3, nil)
	setBlock(d, 0, 0, r)
	return d
}

// Transform6 returns the 6x6 state transformation, or nil after an error.
func (t *transformer) Transform6(from, to string, et float64) *mat.Dense {
	r, rate, ok := t.relative(from, to, et)
	if !ok {
		return nil
	}
	d := mat.NewDense(6, 6, nil)
	setBlock(d, 0, 0, r)
	setBlock(d, 3, 0, rate)
	setBlock(d, 3, 3, r)
	return d
}

// Failed reports whether an error is latched.
func (t *transformer) Failed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err != nil
}

// ErrorMessage describes the latched error, or is empty.
func (t *transformer) ErrorMessage() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.err == nil {
		return ""
	}
	return t.err.Error()
}

// Err returns the latched error for errors.Is checks.
func (t *transformer) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// Reset clears the latched error.
func (t *transformer) Reset() {
	t.mu.Lock()
	t.err = nil
	t.mu.Unlock()
}

func setBlock(d *mat.Dense, row, col int, m *r3.Mat) {
	d.Slice(row, row+3, col, col+3).(*mat.Dense).Copy(m)
}

// resolveInertial looks name up in the built-in inertial frame table.
func resolveInertial(name string, et float64) (frameState, bool) {
	f, ok := core.InertialFrameByName(name)
	if !ok {
		return frameState{}, false
	}
	return rotatingState(f.Orientation(et), r3.Vec{}), true
}
