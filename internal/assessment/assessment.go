// Package assessment orchestrates the full pipeline: postcode or coordinate
// to footprint, roof capacity and solar potential in one call.
package assessment

import (
	"context"

	"golang.org/x/sync/errgroup"

	"ecohome_backend/internal/buildings"
	"ecohome_backend/internal/geo"
	"ecohome_backend/internal/geocode"
	"ecohome_backend/internal/roof"
	"ecohome_backend/internal/solar"
	"ecohome_backend/platform/apperr"
	"ecohome_backend/platform/logger"
)

// Request carries the pipeline inputs. Either a postcode or a coordinate is
// required; the rest is derived.
type Request struct {
	Postcode         string
	Coordinate       *geo.Coordinate
	TotalFloorAreaM2 *float64
	PeakPowerKWp     *float64
}

// Result is the combined output of every pipeline stage.
type Result struct {
	Coordinate geo.Coordinate
	Footprint  buildings.Footprint
	Roof       roof.Capacity
	Solar      solar.Potential
}

// Service runs the assessment pipeline.
type Service struct {
	geocoder   geocode.Geocoder
	buildings  *buildings.Service
	roof       *roof.Service
	solar      *solar.Service
	irradiance solar.IrradianceProvider
	log        *logger.Logger
}

// NewService wires the pipeline from the individual stage services.
func NewService(
	geocoder geocode.Geocoder,
	buildingsSvc *buildings.Service,
	roofSvc *roof.Service,
	solarSvc *solar.Service,
	irradiance solar.IrradianceProvider,
	log *logger.Logger,
) *Service {
	return &Service{
		geocoder:   geocoder,
		buildings:  buildingsSvc,
		roof:       roofSvc,
		solar:      solarSvc,
		irradiance: irradiance,
		log:        log,
	}
}

// Assess resolves the building, estimates its roof capacity and computes the
// solar potential. Footprint resolution and irradiance retrieval only share
// the coordinate, so they run concurrently; the remaining stages are pure and
// run on their results.
func (s *Service) Assess(ctx context.Context, req Request) (Result, error) {
	coord, err := s.resolveCoordinate(ctx, req)
	if err != nil {
		return Result{}, err
	}

	var (
		footprint  buildings.Footprint
		irradiance float64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		footprint, err = s.buildings.Resolve(gctx, buildings.ResolveRequest{
			Coordinate:       &coord,
			TotalFloorAreaM2: req.TotalFloorAreaM2,
		})
		return err
	})
	g.Go(func() error {
		var err error
		irradiance, err = s.irradiance.AnnualYieldKWhPerKWp(gctx, coord)
		return err
	})
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	floorArea := footprint.AreaM2 * float64(footprint.Floors)
	if req.TotalFloorAreaM2 != nil {
		floorArea = *req.TotalFloorAreaM2
	}
	capacity, err := s.roof.Estimate(floorArea, footprint.Floors, footprint.PropertyType)
	if err != nil {
		return Result{}, err
	}

	potential, err := s.solar.EstimateWithYield(solar.EstimateRequest{
		Coordinate:   coord,
		RoofAreaM2:   capacity.RoofAreaM2,
		PeakPowerKWp: req.PeakPowerKWp,
	}, irradiance)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Coordinate: coord,
		Footprint:  footprint,
		Roof:       capacity,
		Solar:      potential,
	}, nil
}

func (s *Service) resolveCoordinate(ctx context.Context, req Request) (geo.Coordinate, error) {
	if req.Coordinate != nil {
		if err := req.Coordinate.Validate(); err != nil {
			return geo.Coordinate{}, err
		}
		return *req.Coordinate, nil
	}
	if req.Postcode == "" {
		return geo.Coordinate{}, apperr.Validation("either a postcode or a coordinate is required")
	}
	result, err := s.geocoder.GeocodePostcode(ctx, req.Postcode)
	if err != nil {
		return geo.Coordinate{}, err
	}
	return result.Coordinate, nil
}
