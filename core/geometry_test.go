package core

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func earthEllipsoid() AlignedEllipsoid {
	return NewAlignedEllipsoid(EarthEquatorialRadiusKm, EarthEquatorialRadiusKm, EarthPolarRadiusKm)
}

func TestHasLineOfSight_NoObstruction(t *testing.T) {
	// Two satellites high and on the same side of Earth, separated in Y.
	posA := r3.Vec{X: 8000}
	posB := r3.Vec{X: 8000, Y: 1000}

	if !HasLineOfSight(posA, posB, earthEllipsoid()) {
		t.Errorf("expected LoS between two high satellites on same side of Earth")
	}
}

func TestHasLineOfSight_Obstructed(t *testing.T) {
	// Two points on opposite sides: the chord passes through the Earth.
	posA := r3.Vec{X: 7000}
	posB := r3.Vec{X: -7000}

	if HasLineOfSight(posA, posB, earthEllipsoid()) {
		t.Errorf("expected LoS to be blocked by Earth")
	}
}

func TestHasLineOfSight_PolarFlattening(t *testing.T) {
	// The chord passes 6370 km from the center over the pole: inside a sphere
	// of equatorial radius, but clear of the flattened polar surface.
	posA := r3.Vec{X: -3000, Z: 6370}
	posB := r3.Vec{X: 3000, Z: 6370}
	if !HasLineOfSight(posA, posB, earthEllipsoid()) {
		t.Errorf("expected LoS above the flattened pole")
	}
	sphere := NewAlignedEllipsoid(EarthEquatorialRadiusKm, EarthEquatorialRadiusKm, EarthEquatorialRadiusKm)
	if HasLineOfSight(posA, posB, sphere) {
		t.Errorf("expected a spherical Earth to block the same chord")
	}
}

func TestElevationDegrees(t *testing.T) {
	earth := earthEllipsoid()
	site := r3.Vec{X: EarthEquatorialRadiusKm}

	if el := ElevationDegrees(site, r3.Vec{X: EarthEquatorialRadiusKm + 500}, earth); math.Abs(el-90) > 1e-9 {
		t.Fatalf("overhead target elevation %v, want 90", el)
	}
	if el := ElevationDegrees(site, r3.Vec{X: EarthEquatorialRadiusKm, Y: 1000}, earth); math.Abs(el) > 1e-9 {
		t.Fatalf("horizon target elevation %v, want 0", el)
	}
	if el := ElevationDegrees(site, r3.Vec{X: EarthEquatorialRadiusKm + 1000, Y: 1000}, earth); math.Abs(el-45) > 1e-9 {
		t.Fatalf("diagonal target elevation %v, want 45", el)
	}
	if el := ElevationDegrees(site, r3.Vec{X: -7000}, earth); el >= 0 {
		t.Fatalf("target through the Earth should be below the horizon, got %v", el)
	}
}
