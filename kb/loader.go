package kb

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/signalsfoundry/cosmoview/core"
	"github.com/signalsfoundry/cosmoview/model"
)

// internal JSON shapes. Angles are degrees, distances km, times seconds past
// J2000 and rotation periods hours.
type catalogJSON struct {
	Bodies []bodyJSON `json:"bodies"`
}

type bodyJSON struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Type     string        `json:"type"`
	Center   string        `json:"center"`
	Motion   motionJSON    `json:"motion"`
	Rotation *rotationJSON `json:"rotation"`
	SemiAxes []float64     `json:"semi_axes"`
	Radius   float64       `json:"radius"`
}

type motionJSON struct {
	Source         string     `json:"source"` // fixed | keplerian | tle | ephemeris
	Position       [3]float64 `json:"position"`
	SemiMajorAxis  float64    `json:"semi_major_axis"`
	Eccentricity   float64    `json:"eccentricity"`
	Inclination    float64    `json:"inclination"`
	AscendingNode  float64    `json:"ascending_node"`
	ArgOfPeriapsis float64    `json:"arg_of_periapsis"`
	MeanAnomaly    float64    `json:"mean_anomaly"`
	Epoch          float64    `json:"epoch"`
	GM             float64    `json:"gm"`
	TLELine1       string     `json:"tle_line1"`
	TLELine2       string     `json:"tle_line2"`
}

type rotationJSON struct {
	Source        string  `json:"source"` // fixed | uniform | ephemeris | bodyfixed
	Inclination   float64 `json:"inclination"`
	AscendingNode float64 `json:"ascending_node"`
	MeridianAngle float64 `json:"meridian_angle"`
	PeriodHours   float64 `json:"period_hours"` // negative for retrograde spin
	Epoch         float64 `json:"epoch"`
	Frame         string  `json:"frame"`
	Body          string  `json:"body"` // bodyfixed: id of the body followed
}

// LoadCatalog decodes a JSON catalog from r and adds its bodies to c. Bodies
// may be listed in any order; each is built after the body it orbits. It
// returns the names added, in build order.
func LoadCatalog(c *Catalog, r io.Reader, opts ...core.EntityOption) ([]string, error) {
	if c == nil {
		return nil, fmt.Errorf("LoadCatalog: catalog is nil")
	}
	var payload catalogJSON
	if err := json.NewDecoder(r).Decode(&payload); err != nil {
		return nil, fmt.Errorf("LoadCatalog: decode failed: %w", err)
	}

	defs := make([]model.BodyDefinition, 0, len(payload.Bodies))
	for i, b := range payload.Bodies {
		def, err := b.definition()
		if err != nil {
			return nil, fmt.Errorf("LoadCatalog: body %d: %w", i, err)
		}
		defs = append(defs, def)
	}
	return LoadDefinitions(c, defs, opts...)
}

// LoadDefinitions builds entities from defs, resolving each Center by ID
// among defs, and adds them to c.
func LoadDefinitions(c *Catalog, defs []model.BodyDefinition, opts ...core.EntityOption) ([]string, error) {
	byID := make(map[string]model.BodyDefinition, len(defs))
	for _, d := range defs {
		if d.ID == "" {
			return nil, fmt.Errorf("body with empty id")
		}
		if _, dup := byID[d.ID]; dup {
			return nil, fmt.Errorf("body id %q: %w", d.ID, ErrDuplicateBody)
		}
		byID[d.ID] = d
	}

	built := make(map[string]*core.Entity, len(defs))
	opts = append(opts[:len(opts):len(opts)], core.WithBodyLookup(func(id string) *core.Entity { return built[id] }))
	names := make([]string, 0, len(defs))
	pending := defs
	for len(pending) > 0 {
		var next []model.BodyDefinition
		for _, d := range pending {
			ready, err := dependenciesBuilt(d, byID, built)
			if err != nil {
				return names, err
			}
			if !ready {
				next = append(next, d)
				continue
			}
			var center *core.Entity
			if d.Center != "" {
				center = built[d.Center]
			}
			e, err := core.NewEntityFromDefinition(d, center, opts...)
			if err != nil {
				return names, err
			}
			if err := c.AddBody(e); err != nil {
				return names, err
			}
			built[d.ID] = e
			names = append(names, e.Name())
		}
		if len(next) == len(pending) {
			return names, fmt.Errorf("dependency cycle among %d bodies starting at %q", len(next), next[0].ID)
		}
		pending = next
	}
	return names, nil
}

// dependenciesBuilt reports whether the bodies d refers to (its center and
// the body its rotation follows) have been built.
func dependenciesBuilt(d model.BodyDefinition, byID map[string]model.BodyDefinition, built map[string]*core.Entity) (bool, error) {
	ready := true
	for _, dep := range []struct{ role, id string }{{"center", d.Center}, {"rotation body", d.RotationBody}} {
		if dep.id == "" {
			continue
		}
		if _, known := byID[dep.id]; !known {
			return false, fmt.Errorf("body %q: unknown %s %q", d.ID, dep.role, dep.id)
		}
		if _, ok := built[dep.id]; !ok {
			ready = false
		}
	}
	return ready, nil
}

func (b bodyJSON) definition() (model.BodyDefinition, error) {
	if b.ID == "" {
		return model.BodyDefinition{}, fmt.Errorf("empty id")
	}
	def := model.BodyDefinition{
		ID:     b.ID,
		Name:   b.Name,
		Type:   strings.ToUpper(b.Type),
		Center: b.Center,
	}

	switch strings.ToLower(strings.TrimSpace(b.Motion.Source)) {
	case "", "fixed":
		def.MotionSource = model.MotionSourceFixed
		def.Position = b.Motion.Position
	case "keplerian", "kepler":
		m := b.Motion
		if m.SemiMajorAxis <= 0 || m.GM <= 0 {
			return def, fmt.Errorf("%q: keplerian motion needs semi_major_axis and gm", b.ID)
		}
		def.MotionSource = model.MotionSourceKeplerian
		def.Elements = model.OrbitalElementsFromSemiMajorAxis(
			m.SemiMajorAxis, m.Eccentricity,
			radians(m.Inclination), radians(m.AscendingNode), radians(m.ArgOfPeriapsis),
			radians(m.MeanAnomaly), m.Epoch, m.GM,
		)
	case "tle":
		def.MotionSource = model.MotionSourceTLE
		def.TLELine1 = b.Motion.TLELine1
		def.TLELine2 = b.Motion.TLELine2
	case "ephemeris", "jpl":
		def.MotionSource = model.MotionSourceEphemeris
	default:
		return def, fmt.Errorf("%q: unknown motion source %q", b.ID, b.Motion.Source)
	}

	if rot := b.Rotation; rot != nil {
		switch strings.ToLower(strings.TrimSpace(rot.Source)) {
		case "", "fixed":
			def.RotationSource = model.RotationSourceFixed
		case "uniform":
			def.RotationSource = model.RotationSourceUniform
			def.PoleInclination = radians(rot.Inclination)
			def.PoleAscendingNode = radians(rot.AscendingNode)
			def.MeridianAngleAtEpoch = radians(rot.MeridianAngle)
			def.RotationEpoch = rot.Epoch
			if rot.PeriodHours != 0 {
				def.RotationRate = 2 * math.Pi / (rot.PeriodHours * 3600)
			}
		case "ephemeris", "spice":
			def.RotationSource = model.RotationSourceEphemeris
			def.FrameName = rot.Frame
		case "bodyfixed", "body_fixed":
			if rot.Body == "" {
				return def, fmt.Errorf("%q: bodyfixed rotation needs a body", b.ID)
			}
			def.RotationSource = model.RotationSourceBodyFixed
			def.RotationBody = rot.Body
		default:
			return def, fmt.Errorf("%q: unknown rotation source %q", b.ID, rot.Source)
		}
	}

	switch {
	case len(b.SemiAxes) == 3:
		copy(def.SemiAxes[:], b.SemiAxes)
	case len(b.SemiAxes) != 0:
		return def, fmt.Errorf("%q: semi_axes needs 3 values, got %d", b.ID, len(b.SemiAxes))
	case b.Radius > 0:
		def.SemiAxes = [3]float64{b.Radius, b.Radius, b.Radius}
	}
	return def, nil
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }
