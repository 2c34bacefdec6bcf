// Package buildings resolves a coordinate (or postcode) to the nearest
// real-world building footprint and derives its geometric attributes.
package buildings

import (
	"ecohome_backend/internal/buildings/types"
	"ecohome_backend/internal/geo"
	"ecohome_backend/internal/roof"
)

// Candidate is a raw building polygon returned by the footprint provider.
type Candidate = types.Candidate

// FootprintProvider returns the building polygons near a coordinate.
// Implementations return an empty slice (not an error) when no building lies
// within the radius, and apperr.KindUnavailable on transport failure.
type FootprintProvider = types.FootprintProvider

// Footprint is a resolved building footprint. It is transient: recomputed
// per query, never persisted.
type Footprint struct {
	Ring         geo.Ring
	Centroid     geo.Coordinate
	AreaM2       float64
	Floors       int
	PropertyType roof.PropertyType
}
