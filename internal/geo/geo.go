// Package geo holds the shared geographic primitives: coordinates, bounding
// boxes, and great-circle distance. All angles are WGS84 degrees.
package geo

import "math"

const earthRadiusMeters = 6371000.0

// Coord is a longitude/latitude pair in degrees.
type Coord struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// BBox is a north/south/east/west rectangle in degrees.
type BBox struct {
	North float64 `json:"north"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	West  float64 `json:"west"`
}

// Center returns the box's center point.
func (b BBox) Center() Coord {
	return Coord{
		Lon: (b.East + b.West) / 2.0,
		Lat: (b.North + b.South) / 2.0,
	}
}

// Contains reports whether other fits strictly inside b.
func (b BBox) Contains(other BBox) bool {
	return b.ContainsWithin(other, 0)
}

// ContainsWithin reports whether other fits inside b with a tolerance of tol
// degrees on every side. A tol of 0 is strict containment.
func (b BBox) ContainsWithin(other BBox, tol float64) bool {
	return other.North <= b.North+tol &&
		other.South >= b.South-tol &&
		other.East <= b.East+tol &&
		other.West >= b.West-tol
}

// Shrink scales the box's span by factor around its own center. A factor of
// 0.5 halves the covered area's side lengths.
func (b BBox) Shrink(factor float64) BBox {
	c := b.Center()
	halfLat := (b.North - b.South) / 2.0 * factor
	halfLon := (b.East - b.West) / 2.0 * factor
	return BBox{
		North: c.Lat + halfLat,
		South: c.Lat - halfLat,
		East:  c.Lon + halfLon,
		West:  c.Lon - halfLon,
	}
}

// Pad grows the box by deg degrees on every side.
func (b BBox) Pad(deg float64) BBox {
	return BBox{
		North: b.North + deg,
		South: b.South - deg,
		East:  b.East + deg,
		West:  b.West - deg,
	}
}

// BBoxAround returns the smallest box covering both coordinates, padded by
// pad degrees on every side.
func BBoxAround(a, b Coord, pad float64) BBox {
	box := BBox{
		North: math.Max(a.Lat, b.Lat),
		South: math.Min(a.Lat, b.Lat),
		East:  math.Max(a.Lon, b.Lon),
		West:  math.Min(a.Lon, b.Lon),
	}
	return box.Pad(pad)
}

// Midpoint returns the arithmetic midpoint of two coordinates. Good enough at
// street scale; not a great-circle midpoint.
func Midpoint(a, b Coord) Coord {
	return Coord{
		Lon: (a.Lon + b.Lon) / 2.0,
		Lat: (a.Lat + b.Lat) / 2.0,
	}
}

// Haversine returns the great-circle distance between two coordinates in
// meters.
func Haversine(a, b Coord) float64 {
	phi1 := a.Lat * math.Pi / 180
	phi2 := b.Lat * math.Pi / 180
	dPhi := (b.Lat - a.Lat) * math.Pi / 180
	dLambda := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	return earthRadiusMeters * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// EuclideanDegrees returns the planar Euclidean distance between two
// coordinates on raw degrees. This is a deliberate approximation used for
// nearest-point matching, not a metric distance; callers must not assume
// meters.
func EuclideanDegrees(a, b Coord) float64 {
	dx := a.Lon - b.Lon
	dy := a.Lat - b.Lat
	return math.Sqrt(dx*dx + dy*dy)
}
