package assessment

import (
	"context"
	"math"
	"testing"
	"time"

	"ecohome_backend/internal/buildings"
	"ecohome_backend/internal/geo"
	"ecohome_backend/internal/geocode"
	"ecohome_backend/internal/roof"
	"ecohome_backend/internal/solar"
	"ecohome_backend/platform/apperr"
	"ecohome_backend/platform/logger"
)

type pipelineConfig struct{}

func (pipelineConfig) GetOverpassBaseURL() string { return "http://unused" }
func (pipelineConfig) GetFootprintSearchRadiusM() float64 { return 50 }
func (pipelineConfig) GetUpstreamTimeout() time.Duration { return 5 * time.Second }
func (pipelineConfig) GetRoofUsableFractions() map[string]float64 {
	return map[string]float64{"detached": 0.80, "terraced": 0.55}
}
func (pipelineConfig) GetRoofDefaultFraction() float64 { return 0.50 }
func (pipelineConfig) GetPVGISBaseURL() string { return "http://unused" }
func (pipelineConfig) GetPanelDensityKWpPerM2() float64 { return 0.20 }
func (pipelineConfig) GetSystemEfficiency() float64 { return 0.80 }
func (pipelineConfig) GetElectricityUnitPrice() float64 { return 0.27 }
func (pipelineConfig) GetInstallCostPerKWp() float64 { return 1500 }
func (pipelineConfig) GetInstallBaseCost() float64 { return 1200 }
func (pipelineConfig) GetGridCO2KgPerKWh() float64 { return 0.21 }

type fakeGeocoder struct {
	result geocode.Result
	err    error
}

func (g fakeGeocoder) GeocodePostcode(ctx context.Context, postcode string) (geocode.Result, error) {
	if g.err != nil {
		return geocode.Result{}, g.err
	}
	return g.result, nil
}

type fakeFootprints struct {
	candidates []buildings.Candidate
	err        error
}

func (p fakeFootprints) NearbyFootprints(ctx context.Context, center geo.Coordinate, radiusM float64) ([]buildings.Candidate, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.candidates, nil
}

type fakeIrradiance struct {
	yield float64
	err   error
}

func (p fakeIrradiance) AnnualYieldKWhPerKWp(ctx context.Context, coord geo.Coordinate) (float64, error) {
	if p.err != nil {
		return 0, p.err
	}
	return p.yield, nil
}

// squareRing builds an approximately square ring of the given side length in
// meters centered on the coordinate.
func squareRing(center geo.Coordinate, sideM float64) geo.Ring {
	halfLat := (sideM / 2) / 111194.9
	halfLon := (sideM / 2) / (111194.9 * math.Cos(center.Lat*math.Pi/180))
	return geo.Ring{
		{Lat: center.Lat - halfLat, Lon: center.Lon - halfLon},
		{Lat: center.Lat - halfLat, Lon: center.Lon + halfLon},
		{Lat: center.Lat + halfLat, Lon: center.Lon + halfLon},
		{Lat: center.Lat + halfLat, Lon: center.Lon - halfLon},
	}
}

func newPipeline(geocoder geocode.Geocoder, footprints buildings.FootprintProvider, irradiance solar.IrradianceProvider) *Service {
	log := logger.New("development")
	cfg := pipelineConfig{}
	buildingsSvc := buildings.NewService(geocoder, footprints, cfg, log)
	roofSvc := roof.NewService(cfg)
	solarSvc := solar.NewService(irradiance, cfg, log)
	return NewService(geocoder, buildingsSvc, roofSvc, solarSvc, irradiance, log)
}

func TestAssess_FullPipelineFromPostcode(t *testing.T) {
	center := geo.Coordinate{Lat: 51.5074, Lon: -0.1278}
	geocoder := fakeGeocoder{result: geocode.Result{Coordinate: center, Postcode: "TV1 2AB"}}
	footprints := fakeFootprints{candidates: []buildings.Candidate{
		{Ring: squareRing(center, 10.954), Tag: "house"}, // ~120 m2
	}}

	svc := newPipeline(geocoder, footprints, fakeIrradiance{yield: 950})

	result, err := svc.Assess(context.Background(), Request{Postcode: "TV1 2AB"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Coordinate != center {
		t.Fatalf("expected geocoded coordinate %v, got %v", center, result.Coordinate)
	}
	if math.Abs(result.Footprint.AreaM2-120)/120 > 0.01 {
		t.Fatalf("expected ~120 m2 footprint, got %v", result.Footprint.AreaM2)
	}
	if result.Footprint.PropertyType != roof.PropertyDetached {
		t.Fatalf("expected detached, got %s", result.Footprint.PropertyType)
	}

	// Single floor, detached: roof = area * 0.80.
	expectedRoof := result.Footprint.AreaM2 * 0.80
	if math.Abs(result.Roof.RoofAreaM2-expectedRoof) > 1e-9 {
		t.Fatalf("expected roof %v, got %v", expectedRoof, result.Roof.RoofAreaM2)
	}

	if result.Solar.PeakPowerKWp <= 0 || result.Solar.AnnualGenerationKWh <= 0 {
		t.Fatalf("expected positive solar outputs, got %+v", result.Solar)
	}
	if result.Solar.Assumptions.IrradianceKWhPerKWp != 950 {
		t.Fatalf("expected assumptions to carry the fetched yield, got %+v", result.Solar.Assumptions)
	}
}

func TestAssess_DeclaredFloorAreaDrivesFloors(t *testing.T) {
	center := geo.Coordinate{Lat: 51.5074, Lon: -0.1278}
	footprints := fakeFootprints{candidates: []buildings.Candidate{
		{Ring: squareRing(center, 10), Tag: "semidetached_house"}, // ~100 m2
	}}

	svc := newPipeline(fakeGeocoder{}, footprints, fakeIrradiance{yield: 950})

	total := 195.0
	result, err := svc.Assess(context.Background(), Request{Coordinate: &center, TotalFloorAreaM2: &total})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Footprint.Floors != 2 {
		t.Fatalf("expected 2 floors, got %d", result.Footprint.Floors)
	}
	// Declared floor area over two floors; semi_detached has no configured
	// fraction here so the default 0.50 applies.
	expected := (total / 2) * 0.50
	if math.Abs(result.Roof.RoofAreaM2-expected) > 1e-9 {
		t.Fatalf("expected roof %v, got %v", expected, result.Roof.RoofAreaM2)
	}
}

func TestAssess_GeocodeMissPropagates(t *testing.T) {
	svc := newPipeline(fakeGeocoder{err: apperr.NotFound("no match")}, fakeFootprints{}, fakeIrradiance{yield: 950})

	_, err := svc.Assess(context.Background(), Request{Postcode: "ZZ99 9ZZ"})
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected KindNotFound, got %v", err)
	}
}

func TestAssess_IrradianceOutagePropagates(t *testing.T) {
	center := geo.Coordinate{Lat: 51.5074, Lon: -0.1278}
	footprints := fakeFootprints{candidates: []buildings.Candidate{
		{Ring: squareRing(center, 10), Tag: "house"},
	}}

	svc := newPipeline(fakeGeocoder{}, footprints, fakeIrradiance{err: apperr.Unavailable("timeout")})

	_, err := svc.Assess(context.Background(), Request{Coordinate: &center})
	if !apperr.Is(err, apperr.KindUnavailable) {
		t.Fatalf("expected KindUnavailable, got %v", err)
	}
}

func TestAssess_MissingInputIsValidation(t *testing.T) {
	svc := newPipeline(fakeGeocoder{}, fakeFootprints{}, fakeIrradiance{yield: 950})

	_, err := svc.Assess(context.Background(), Request{})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected KindValidation, got %v", err)
	}
}
