// Package geocode resolves postal codes to coordinates via an external
// lookup service, with an optional Redis-backed cache in front.
package geocode

import (
	"context"
	"strings"

	"ecohome_backend/internal/geo"
)

// Result is a resolved postcode.
type Result struct {
	Coordinate  geo.Coordinate `json:"coordinate"`
	Postcode    string         `json:"postcode"`
	DisplayName string         `json:"displayName,omitempty"`
}

// Geocoder resolves a postal code to a coordinate. Implementations return
// apperr.KindNotFound when the postcode has no match and
// apperr.KindUnavailable when the lookup service cannot be reached.
type Geocoder interface {
	GeocodePostcode(ctx context.Context, postcode string) (Result, error)
}

// NormalizePostcode uppercases the postcode and collapses interior
// whitespace, so "tv1  2ab" and "TV1 2AB" hit the same cache entry.
func NormalizePostcode(postcode string) string {
	return strings.Join(strings.Fields(strings.ToUpper(postcode)), " ")
}
