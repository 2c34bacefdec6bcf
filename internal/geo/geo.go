// Package geo provides the shared geographic primitives used by the building
// resolver and the solar estimator: coordinate validation, great-circle
// distance, and planar polygon math on a local projection.
//
// Geographic degrees are not uniform distance units (a degree of longitude
// shrinks with latitude), so polygon area is never computed in degree space.
// Rings are first projected onto a local tangent plane centered on the ring
// and all planar math runs in meters.
package geo

import (
	"math"

	"ecohome_backend/platform/apperr"
)

const (
	// earthRadiusM is the mean Earth radius used for distance and projection.
	earthRadiusM = 6371000.0

	degToRad = math.Pi / 180.0
)

// Coordinate is a WGS84 latitude/longitude pair.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Validate reports whether the coordinate lies within valid WGS84 bounds.
func (c Coordinate) Validate() error {
	if c.Lat < -90 || c.Lat > 90 {
		return apperr.Validation("latitude must be within [-90, 90]")
	}
	if c.Lon < -180 || c.Lon > 180 {
		return apperr.Validation("longitude must be within [-180, 180]")
	}
	return nil
}

// Ring is an ordered closed ring of coordinate vertices describing a polygon
// boundary. The closing vertex may be present or implied; both forms are
// accepted everywhere.
type Ring []Coordinate

// Point is a planar position in meters on a local projection.
type Point struct {
	X float64
	Y float64
}

// DistanceM returns the great-circle distance between two coordinates in
// meters, using the haversine formula.
func DistanceM(a, b Coordinate) float64 {
	dLat := (b.Lat - a.Lat) * degToRad
	dLon := (b.Lon - a.Lon) * degToRad

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)

	h := sinLat*sinLat + math.Cos(a.Lat*degToRad)*math.Cos(b.Lat*degToRad)*sinLon*sinLon
	return 2 * earthRadiusM * math.Asin(math.Sqrt(h))
}

// normalize strips a repeated closing vertex so planar math sees each vertex
// once, and validates that at least 3 distinct vertices remain.
func (r Ring) normalize() (Ring, error) {
	ring := r
	if len(ring) > 1 && ring[0] == ring[len(ring)-1] {
		ring = ring[:len(ring)-1]
	}

	distinct := make(map[Coordinate]struct{}, len(ring))
	for _, v := range ring {
		distinct[v] = struct{}{}
	}
	if len(distinct) < 3 {
		return nil, apperr.Validation("polygon ring needs at least 3 distinct vertices")
	}

	return ring, nil
}

// anchor returns the projection center for the ring: the mean of its
// vertices. The exact choice does not matter for area, only that it is close
// to the ring so the local plane stays faithful.
func (r Ring) anchor() Coordinate {
	var lat, lon float64
	for _, v := range r {
		lat += v.Lat
		lon += v.Lon
	}
	n := float64(len(r))
	return Coordinate{Lat: lat / n, Lon: lon / n}
}

// Project converts the ring's vertices into meters on an equirectangular
// plane centered on the ring. The closing vertex, if present, is dropped.
func (r Ring) Project() ([]Point, error) {
	ring, err := r.normalize()
	if err != nil {
		return nil, err
	}

	center := ring.anchor()
	cosLat := math.Cos(center.Lat * degToRad)

	points := make([]Point, len(ring))
	for i, v := range ring {
		points[i] = Point{
			X: (v.Lon - center.Lon) * degToRad * earthRadiusM * cosLat,
			Y: (v.Lat - center.Lat) * degToRad * earthRadiusM,
		}
	}
	return points, nil
}

// AreaM2 computes the planar area of the ring in square meters via the
// shoelace formula on the projected vertices. Winding order is irrelevant;
// the absolute value is returned.
func (r Ring) AreaM2() (float64, error) {
	points, err := r.Project()
	if err != nil {
		return 0, err
	}
	return math.Abs(shoelace(points)), nil
}

// Centroid computes the area-weighted centroid of the ring, reported as a
// geographic coordinate.
func (r Ring) Centroid() (Coordinate, error) {
	ring, err := r.normalize()
	if err != nil {
		return Coordinate{}, err
	}

	points, err := r.Project()
	if err != nil {
		return Coordinate{}, err
	}

	signed := shoelace(points)
	if signed == 0 {
		// Degenerate (collinear) ring: fall back to the vertex mean.
		return ring.anchor(), nil
	}

	var cx, cy float64
	n := len(points)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		cross := points[i].X*points[j].Y - points[j].X*points[i].Y
		cx += (points[i].X + points[j].X) * cross
		cy += (points[i].Y + points[j].Y) * cross
	}
	cx /= 6 * signed
	cy /= 6 * signed

	center := ring.anchor()
	cosLat := math.Cos(center.Lat * degToRad)

	return Coordinate{
		Lat: center.Lat + cy/(earthRadiusM*degToRad),
		Lon: center.Lon + cx/(earthRadiusM*cosLat*degToRad),
	}, nil
}

// shoelace returns the signed planar area of the polygon.
func shoelace(points []Point) float64 {
	var sum float64
	n := len(points)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += points[i].X*points[j].Y - points[j].X*points[i].Y
	}
	return sum / 2
}
