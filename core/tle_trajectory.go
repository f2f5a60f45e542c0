package core

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/signalsfoundry/cosmoview/model"
)

// EarthGM is the WGS-72 gravitational parameter used by SGP4 (km^3/s^2).
const EarthGM = 398600.8

// ErrInvalidTLE is returned when two-line element text fails validation.
var ErrInvalidTLE = errors.New("invalid TLE")

// TLETrajectory propagates an Earth satellite with SGP4. States are in the
// TEME frame, km and km/s, relative to the Earth's center.
//
// go-satellite only accepts whole seconds, so states between seconds are
// linearly interpolated from the two neighbouring whole-second states.
type TLETrajectory struct {
	sat        satellite.Satellite
	meanMotion float64 // rad/s
	apoapsis   float64 // km
}

// NewTLETrajectory creates an SGP4 trajectory from TLE lines.
//
// Lines are validated (layout, checksums and every numeric field) before they
// reach go-satellite, which calls log.Fatal on malformed input.
func NewTLETrajectory(line1, line2 string) (*TLETrajectory, error) {
	line1 = strings.TrimSpace(line1)
	line2 = strings.TrimSpace(line2)
	if err := validateTLELines(line1, line2); err != nil {
		return nil, err
	}

	revsPerDay, err := strconv.ParseFloat(strings.TrimSpace(line2[52:63]), 64)
	if err != nil || revsPerDay <= 0 {
		return nil, fmt.Errorf("%w: mean motion %q", ErrInvalidTLE, line2[52:63])
	}
	ecc, err := strconv.ParseFloat("0."+strings.TrimSpace(line2[26:33]), 64)
	if err != nil {
		return nil, fmt.Errorf("%w: eccentricity %q", ErrInvalidTLE, line2[26:33])
	}

	sat := satellite.TLEToSat(line1, line2, satellite.GravityWGS72)
	if sat.Error != 0 {
		return nil, fmt.Errorf("%w: sgp4 init failed: code=%d %s", ErrInvalidTLE, sat.Error, sat.ErrorStr)
	}

	n := revsPerDay * 2 * math.Pi / model.SecondsPerDay
	a := math.Cbrt(EarthGM / (n * n))
	return &TLETrajectory{
		sat:        sat,
		meanMotion: n,
		apoapsis:   a * (1 + ecc),
	}, nil
}

func validateTLELines(line1, line2 string) error {
	if len(line1) != 69 {
		return fmt.Errorf("%w: line1 length %d, expected 69", ErrInvalidTLE, len(line1))
	}
	if len(line2) != 69 {
		return fmt.Errorf("%w: line2 length %d, expected 69", ErrInvalidTLE, len(line2))
	}
	if line1[0] != '1' {
		return fmt.Errorf("%w: line1 must start with '1', got '%c'", ErrInvalidTLE, line1[0])
	}
	if line2[0] != '2' {
		return fmt.Errorf("%w: line2 must start with '2', got '%c'", ErrInvalidTLE, line2[0])
	}
	if line1[2:7] != line2[2:7] {
		return fmt.Errorf("%w: catalog numbers differ (%s vs %s)", ErrInvalidTLE, line1[2:7], line2[2:7])
	}
	for i, line := range []string{line1, line2} {
		if want := tleChecksum(line); line[68] != byte('0'+want) {
			return fmt.Errorf("%w: line%d checksum '%c', computed %d", ErrInvalidTLE, i+1, line[68], want)
		}
	}
	for _, f := range tleFields {
		line := line1
		if f.line == 2 {
			line = line2
		}
		text := f.text(line)
		var err error
		if f.integer {
			_, err = strconv.ParseInt(text, 10, 0)
		} else {
			_, err = strconv.ParseFloat(text, 64)
		}
		if err != nil {
			return fmt.Errorf("%w: line%d %s %q", ErrInvalidTLE, f.line, f.name, text)
		}
	}
	return nil
}

// tleFields slices and rewrites each numeric column the way go-satellite
// does before parsing it.
var tleFields = []struct {
	name    string
	line    int
	integer bool
	text    func(line string) string
}{
	{"catalog number", 1, true, func(l string) string { return strings.TrimSpace(l[2:7]) }},
	{"epoch year", 1, true, func(l string) string { return l[18:20] }},
	{"epoch day", 1, false, func(l string) string { return l[20:32] }},
	{"mean motion derivative", 1, false, func(l string) string { return stripTLESpaces(l[33:43]) }},
	{"mean motion second derivative", 1, false, func(l string) string {
		return stripTLESpaces(l[44:45] + "." + l[45:50] + "e" + l[50:52])
	}},
	{"bstar", 1, false, func(l string) string {
		return stripTLESpaces(l[53:54] + "." + l[54:59] + "e" + l[59:61])
	}},
	{"inclination", 2, false, func(l string) string { return stripTLESpaces(l[8:16]) }},
	{"ascending node", 2, false, func(l string) string { return stripTLESpaces(l[17:25]) }},
	{"eccentricity", 2, false, func(l string) string { return "." + l[26:33] }},
	{"argument of perigee", 2, false, func(l string) string { return stripTLESpaces(l[34:42]) }},
	{"mean anomaly", 2, false, func(l string) string { return stripTLESpaces(l[43:51]) }},
	{"mean motion", 2, false, func(l string) string { return stripTLESpaces(l[52:63]) }},
}

func stripTLESpaces(s string) string { return strings.Replace(s, " ", "", 2) }

// tleChecksum is the modulo-10 sum of the digits in columns 1-68, with each
// minus sign counting as 1.
func tleChecksum(line string) int {
	sum := 0
	for _, c := range line[:68] {
		switch {
		case c >= '0' && c <= '9':
			sum += int(c - '0')
		case c == '-':
			sum++
		}
	}
	return sum % 10
}

// State propagates to t seconds past J2000. A failed propagation yields the
// zero state.
func (s *TLETrajectory) State(t float64) model.StateVector {
	when := model.TimeFromJ2000Seconds(t)
	base := when.Truncate(time.Second)
	frac := when.Sub(base).Seconds()

	p0, v0, ok := s.propagate(base)
	if !ok {
		return model.StateVector{}
	}
	if frac == 0 {
		return model.StateVector{Position: p0, Velocity: v0}
	}
	p1, v1, ok := s.propagate(base.Add(time.Second))
	if !ok {
		return model.StateVector{Position: p0, Velocity: v0}
	}
	return model.StateVector{
		Position: lerpVec(p0, p1, frac),
		Velocity: lerpVec(v0, v1, frac),
	}
}

func (s *TLETrajectory) propagate(when time.Time) (pos, vel r3.Vec, ok bool) {
	when = when.UTC()
	year, month, day := when.Date()
	hour, min, sec := when.Clock()

	p, v := satellite.Propagate(s.sat, year, int(month), day, hour, min, sec)
	pos = r3.Vec{X: p.X, Y: p.Y, Z: p.Z}
	vel = r3.Vec{X: v.X, Y: v.Y, Z: v.Z}
	if !finiteVec(pos) || !finiteVec(vel) {
		return r3.Vec{}, r3.Vec{}, false
	}
	return pos, vel, true
}

// BoundingSphereRadius returns the apoapsis radius implied by the TLE.
func (s *TLETrajectory) BoundingSphereRadius() float64 { return s.apoapsis }

// IsPeriodic always reports true; SGP4 only handles bound orbits.
func (s *TLETrajectory) IsPeriodic() bool { return true }

// Period returns the period from the TLE mean motion.
func (s *TLETrajectory) Period() float64 { return 2 * math.Pi / s.meanMotion }

func lerpVec(a, b r3.Vec, t float64) r3.Vec {
	return r3.Add(a, r3.Scale(t, r3.Sub(b, a)))
}

func finiteVec(v r3.Vec) bool {
	for _, c := range [3]float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}
