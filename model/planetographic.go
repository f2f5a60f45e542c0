package model

// PlanetographicCoord is a point given by latitude and longitude (radians)
// and a height (km) above a reference ellipsoid, measured along the surface
// normal.
type PlanetographicCoord struct {
	Latitude  float64
	Longitude float64
	Height    float64
}
