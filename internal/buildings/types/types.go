// Package types holds the building-resolution types shared by the
// buildings package and its footprint provider client, so the client
// does not need to import its parent package.
package types

import (
	"context"

	"ecohome_backend/internal/geo"
)

// Candidate is a raw building polygon returned by the footprint provider.
type Candidate struct {
	Ring geo.Ring
	// Tag is the provider's building-type tag, when present (e.g. the OSM
	// "building" value).
	Tag string
}

// FootprintProvider returns the building polygons near a coordinate.
// Implementations return an empty slice (not an error) when no building lies
// within the radius, and apperr.KindUnavailable on transport failure.
type FootprintProvider interface {
	NearbyFootprints(ctx context.Context, center geo.Coordinate, radiusM float64) ([]Candidate, error)
}
