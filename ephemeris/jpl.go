package ephemeris

import (
	"context"
	"fmt"
	"strings"

	"github.com/mshafiee/jpleph"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/signalsfoundry/cosmoview/core"
	"github.com/signalsfoundry/cosmoview/internal/logging"
	"github.com/signalsfoundry/cosmoview/model"
)

// FrameMoonPA is the lunar principal-axis frame defined by the libration
// angles in a DE ephemeris.
const FrameMoonPA = "MOON_PA"

// defaultAU is used when a DE file carries no AU constant.
const defaultAU = 149597870.7

// JPLEphemeris is an open JPL DE binary ephemeris file.
type JPLEphemeris struct {
	eph    *jpleph.Ephemeris
	auInKm float64
	log    logging.Logger
}

// Option configures a JPLEphemeris.
type Option func(*JPLEphemeris)

// WithLogger sets the logger used to report lookup failures.
func WithLogger(l logging.Logger) Option {
	return func(e *JPLEphemeris) { e.log = logging.OrNoop(l) }
}

// Open loads a DE file such as de440.bin.
func Open(path string, opts ...Option) (*JPLEphemeris, error) {
	eph, err := jpleph.NewEphemeris(path, true)
	if err != nil {
		return nil, fmt.Errorf("open ephemeris %s: %w", path, err)
	}
	e := &JPLEphemeris{eph: eph, auInKm: eph.GetEphemerisDouble(jpleph.AUinKM), log: logging.Noop()}
	if e.auInKm <= 0 {
		e.auInKm = defaultAU
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Close releases the underlying file.
func (e *JPLEphemeris) Close() error { return e.eph.Close() }

// Version returns the DE number, e.g. 440.
func (e *JPLEphemeris) Version() int64 {
	return e.eph.GetEphemerisLong(jpleph.EphemerisVersion)
}

// Coverage returns the covered interval in seconds past J2000.
func (e *JPLEphemeris) Coverage() (start, end float64) {
	start = (e.eph.GetEphemerisDouble(jpleph.EphemerisStartJD) - model.JulianDateJ2000) * model.SecondsPerDay
	end = (e.eph.GetEphemerisDouble(jpleph.EphemerisEndJD) - model.JulianDateJ2000) * model.SecondsPerDay
	return start, end
}

// bodyIDs maps catalog IDs to DE body numbers.
var bodyIDs = map[string]int{
	"MERCURY": int(jpleph.Mercury),
	"VENUS":   int(jpleph.Venus),
	"EARTH":   int(jpleph.Earth),
	"MARS":    int(jpleph.Mars),
	"JUPITER": int(jpleph.Jupiter),
	"SATURN":  int(jpleph.Saturn),
	"URANUS":  int(jpleph.Uranus),
	"NEPTUNE": int(jpleph.Neptune),
	"PLUTO":   int(jpleph.Pluto),
	"MOON":    int(jpleph.Moon),
	"SUN":     int(jpleph.Sun),
	"SSB":     int(jpleph.SolarSystemBarycenter),
	"EMB":     int(jpleph.EarthMoonBarycenter),
}

func lookupBody(id string) (int, bool) {
	n, ok := bodyIDs[strings.ToUpper(id)]
	return n, ok
}

// Trajectory returns the state of target relative to center.
func (e *JPLEphemeris) Trajectory(target jpleph.Planet, center jpleph.CenterBody, boundingRadius float64) *JPLTrajectory {
	return &JPLTrajectory{eph: e, target: target, center: center, boundingRadius: boundingRadius}
}

// TrajectoryFor builds a trajectory for a catalog body. The body ID names the
// target and its Center field the DE center; an empty center means the solar
// system barycenter. It has the signature of core.EphemerisTrajectoryFunc.
func (e *JPLEphemeris) TrajectoryFor(def model.BodyDefinition) (core.Trajectory, error) {
	target, ok := lookupBody(def.ID)
	if !ok {
		return nil, fmt.Errorf("ephemeris has no body %q", def.ID)
	}
	centerID := def.Center
	if centerID == "" {
		centerID = "SSB"
	}
	center, ok := lookupBody(centerID)
	if !ok {
		return nil, fmt.Errorf("ephemeris has no center body %q", centerID)
	}

	// Sample once to fail early on files that do not cover J2000 or the body.
	if _, _, err := e.eph.CalculatePV(model.JulianDateJ2000, jpleph.Planet(target), jpleph.CenterBody(center), false); err != nil {
		return nil, fmt.Errorf("body %q: %w", def.ID, err)
	}
	radius := boundingRadii[strings.ToUpper(def.ID)]
	return e.Trajectory(jpleph.Planet(target), jpleph.CenterBody(center), radius), nil
}

// boundingRadii are approximate maximum distances (km) from the usual
// center, used to cull orbits.
var boundingRadii = map[string]float64{
	"MERCURY": 7.0e7,
	"VENUS":   1.1e8,
	"EARTH":   1.6e8,
	"MARS":    2.5e8,
	"JUPITER": 8.2e8,
	"SATURN":  1.51e9,
	"URANUS":  3.01e9,
	"NEPTUNE": 4.55e9,
	"PLUTO":   7.4e9,
	"MOON":    4.1e5,
	"SUN":     2.0e6,
	"EMB":     1.6e8,
}

// JPLTrajectory is a core.Trajectory read from a DE file. Lookup failures,
// including times outside the file's coverage, are logged and give the zero
// state.
type JPLTrajectory struct {
	eph            *JPLEphemeris
	target         jpleph.Planet
	center         jpleph.CenterBody
	boundingRadius float64
}

// State returns position (km) and velocity (km/s) at t seconds past J2000.
func (j *JPLTrajectory) State(t float64) model.StateVector {
	pos, vel, err := j.eph.eph.CalculatePV(model.JulianDate(t), j.target, j.center, true)
	if err != nil {
		j.eph.log.Error(context.Background(), "ephemeris state lookup failed",
			logging.Int("target", int(j.target)),
			logging.Int("center", int(j.center)),
			logging.Float64("et", t),
			logging.Err(err),
		)
		return model.StateVector{}
	}
	au := j.eph.auInKm
	return model.StateVector{
		Position: r3.Vec{X: pos.X * au, Y: pos.Y * au, Z: pos.Z * au},
		Velocity: r3.Scale(au/model.SecondsPerDay, r3.Vec{X: vel.DX, Y: vel.DY, Z: vel.DZ}),
	}
}

func (j *JPLTrajectory) BoundingSphereRadius() float64 { return j.boundingRadius }

// IsPeriodic is false; DE states are not closed orbits.
func (j *JPLTrajectory) IsPeriodic() bool { return false }

func (j *JPLTrajectory) Period() float64 { return 0 }

// JPLFrameService is a core.FrameTransformer for the lunar principal-axis
// frame (MOON_PA) and the built-in inertial frames.
type JPLFrameService struct {
	transformer
	eph *JPLEphemeris
}

// FrameService returns a frame service reading librations from the file.
func (e *JPLEphemeris) FrameService() *JPLFrameService {
	s := &JPLFrameService{eph: e}
	s.resolve = s.lookup
	return s
}

func (s *JPLFrameService) lookup(name string, et float64) (frameState, error) {
	if name == FrameMoonPA {
		angles, rates, err := s.eph.eph.CalculatePV(model.JulianDate(et), jpleph.Librations, jpleph.CenterMoon, true)
		if err != nil {
			return frameState{}, fmt.Errorf("lunar librations at et %g: %w", et, err)
		}
		return librationState(
			[3]float64{angles.X, angles.Y, angles.Z},
			[3]float64{rates.DX / model.SecondsPerDay, rates.DY / model.SecondsPerDay, rates.DZ / model.SecondsPerDay},
		), nil
	}
	if st, ok := resolveInertial(name, et); ok {
		return st, nil
	}
	return frameState{}, fmt.Errorf("%q: %w", name, ErrUnknownFrame)
}

// librationState builds the MOON_PA state from the Euler angles (φ, θ, ψ)
// and their rates (rad/s). The ICRF to PA transformation is the frame
// rotation Rz(ψ)·Rx(θ)·Rz(φ), so PA vectors map to ICRF through the
// active rotation Rz(φ)·Rx(θ)·Rz(ψ).
func librationState(angles, rates [3]float64) frameState {
	z, x := r3.Vec{Z: 1}, r3.Vec{X: 1}
	a := core.AxisAngle(z, angles[0])
	ab := quat.Mul(a, core.AxisAngle(x, angles[1]))
	q := quat.Mul(ab, core.AxisAngle(z, angles[2]))

	// Each Euler rate spins about its axis carried by the earlier rotations.
	w := r3.Add(r3.Scale(rates[0], z), r3.Add(
		r3.Scale(rates[1], core.Rotate(a, x)),
		r3.Scale(rates[2], core.Rotate(ab, z)),
	))
	return rotatingState(q, w)
}

var (
	_ core.FrameTransformer = (*JPLFrameService)(nil)
	_ core.Trajectory       = (*JPLTrajectory)(nil)
)
