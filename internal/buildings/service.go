package buildings

import (
	"context"
	"fmt"
	"math"

	"ecohome_backend/internal/geo"
	"ecohome_backend/internal/geocode"
	"ecohome_backend/internal/roof"
	"ecohome_backend/platform/apperr"
	"ecohome_backend/platform/config"
	"ecohome_backend/platform/logger"
)

// ResolveRequest identifies the building to resolve. Exactly one of
// Postcode or Coordinate must be set; TotalFloorAreaM2 is optional and, when
// present, drives the floor-count derivation.
type ResolveRequest struct {
	Postcode         string
	Coordinate       *geo.Coordinate
	TotalFloorAreaM2 *float64
}

// Service resolves coordinates to building footprints. Stateless; the same
// coordinate against unchanged backing data yields the same footprint.
type Service struct {
	geocoder geocode.Geocoder
	provider FootprintProvider
	radiusM  float64
	log      *logger.Logger
}

// NewService creates a building resolver.
func NewService(geocoder geocode.Geocoder, provider FootprintProvider, cfg config.BuildingsConfig, log *logger.Logger) *Service {
	return &Service{
		geocoder: geocoder,
		provider: provider,
		radiusM:  cfg.GetFootprintSearchRadiusM(),
		log:      log,
	}
}

// Resolve finds the building footprint nearest to the request's coordinate
// (geocoding the postcode first when no coordinate is given) and derives its
// planar area, centroid, floor count, and property classification.
func (s *Service) Resolve(ctx context.Context, req ResolveRequest) (Footprint, error) {
	center, err := s.resolveCoordinate(ctx, req)
	if err != nil {
		return Footprint{}, err
	}

	candidates, err := s.provider.NearbyFootprints(ctx, center, s.radiusM)
	if err != nil {
		return Footprint{}, err
	}
	if len(candidates) == 0 {
		return Footprint{}, apperr.NotFound(fmt.Sprintf("no building within %.0fm of (%.5f, %.5f)", s.radiusM, center.Lat, center.Lon))
	}

	nearest, err := s.nearestCandidate(center, candidates)
	if err != nil {
		return Footprint{}, err
	}

	area, err := nearest.Ring.AreaM2()
	if err != nil {
		return Footprint{}, err
	}
	if area <= 0 {
		// The provider returned a degenerate polygon; treat it as no building
		// rather than surfacing a zero-area footprint.
		s.log.InvariantViolation("buildings", "footprint area not positive", area)
		return Footprint{}, apperr.NotFound("no usable building footprint at this location")
	}

	centroid, err := nearest.Ring.Centroid()
	if err != nil {
		return Footprint{}, err
	}

	return Footprint{
		Ring:         nearest.Ring,
		Centroid:     centroid,
		AreaM2:       area,
		Floors:       deriveFloors(req.TotalFloorAreaM2, area),
		PropertyType: classify(nearest.Tag),
	}, nil
}

func (s *Service) resolveCoordinate(ctx context.Context, req ResolveRequest) (geo.Coordinate, error) {
	if req.Coordinate != nil {
		if err := req.Coordinate.Validate(); err != nil {
			return geo.Coordinate{}, err
		}
		return *req.Coordinate, nil
	}

	if req.Postcode == "" {
		return geo.Coordinate{}, apperr.Validation("either a coordinate or a postcode is required")
	}

	result, err := s.geocoder.GeocodePostcode(ctx, req.Postcode)
	if err != nil {
		return geo.Coordinate{}, err
	}
	return result.Coordinate, nil
}

// nearestCandidate picks the polygon whose centroid is closest to the query
// coordinate. Distance ties break on smaller area so the choice is
// deterministic regardless of provider ordering.
func (s *Service) nearestCandidate(center geo.Coordinate, candidates []Candidate) (Candidate, error) {
	best := -1
	bestDistance := math.Inf(1)
	bestArea := math.Inf(1)

	for i, candidate := range candidates {
		centroid, err := candidate.Ring.Centroid()
		if err != nil {
			continue // skip degenerate polygons
		}
		area, err := candidate.Ring.AreaM2()
		if err != nil {
			continue
		}

		distance := geo.DistanceM(center, centroid)
		if distance < bestDistance || (distance == bestDistance && area < bestArea) {
			best = i
			bestDistance = distance
			bestArea = area
		}
	}

	if best < 0 {
		return Candidate{}, apperr.NotFound("no usable building footprint at this location")
	}
	return candidates[best], nil
}

// deriveFloors estimates the floor count from the declared total floor area
// and the footprint area, floored at one storey.
func deriveFloors(totalFloorAreaM2 *float64, footprintAreaM2 float64) int {
	if totalFloorAreaM2 == nil || *totalFloorAreaM2 <= 0 || footprintAreaM2 <= 0 {
		return 1
	}

	floors := int(math.Round(*totalFloorAreaM2 / footprintAreaM2))
	if floors < 1 {
		return 1
	}
	return floors
}

// classify maps the provider's building tag onto the property-type enum the
// roof model understands. OSM building values are a superset; anything
// unrecognized is "other".
func classify(tag string) roof.PropertyType {
	switch tag {
	case "detached", "house":
		return roof.PropertyDetached
	case "semidetached_house", "semi_detached", "semi":
		return roof.PropertySemiDetached
	case "terrace", "terraced":
		return roof.PropertyTerraced
	case "apartments", "flat", "flats", "residential":
		return roof.PropertyFlat
	case "bungalow":
		return roof.PropertyBungalow
	default:
		return roof.PropertyOther
	}
}
