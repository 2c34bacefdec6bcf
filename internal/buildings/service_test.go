package buildings

import (
	"context"
	"math"
	"testing"
	"time"

	"ecohome_backend/internal/geo"
	"ecohome_backend/internal/geocode"
	"ecohome_backend/internal/roof"
	"ecohome_backend/platform/apperr"
	"ecohome_backend/platform/logger"
)

type buildingsTestConfig struct{ radius float64 }

func (c buildingsTestConfig) GetOverpassBaseURL() string { return "http://unused" }
func (c buildingsTestConfig) GetFootprintSearchRadiusM() float64 {
	if c.radius == 0 {
		return 50
	}
	return c.radius
}
func (c buildingsTestConfig) GetUpstreamTimeout() time.Duration { return 5 * time.Second }

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

type fakeProvider struct {
	candidates []Candidate
	err        error
}

func (p fakeProvider) NearbyFootprints(ctx context.Context, center geo.Coordinate, radiusM float64) ([]Candidate, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.candidates, nil
}

// ringAround builds an approximately square ring of the given side length in
// meters centered on the coordinate.
func ringAround(center geo.Coordinate, sideM float64) geo.Ring {
	halfLat := (sideM / 2) / 111194.9
	halfLon := (sideM / 2) / (111194.9 * math.Cos(center.Lat*math.Pi/180))
	return geo.Ring{
		{Lat: center.Lat - halfLat, Lon: center.Lon - halfLon},
		{Lat: center.Lat - halfLat, Lon: center.Lon + halfLon},
		{Lat: center.Lat + halfLat, Lon: center.Lon + halfLon},
		{Lat: center.Lat + halfLat, Lon: center.Lon - halfLon},
	}
}

func TestResolve_FromCoordinate(t *testing.T) {
	center := geo.Coordinate{Lat: 51.5074, Lon: -0.1278}
	provider := fakeProvider{candidates: []Candidate{
		{Ring: ringAround(center, 10), Tag: "detached"},
	}}

	svc := NewService(fakeGeocoder{}, provider, buildingsTestConfig{}, logger.New("development"))

	footprint, err := svc.Resolve(context.Background(), ResolveRequest{Coordinate: &center})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if math.Abs(footprint.AreaM2-100)/100 > 0.01 {
		t.Fatalf("expected ~100 m2, got %v", footprint.AreaM2)
	}
	if footprint.PropertyType != roof.PropertyDetached {
		t.Fatalf("expected detached, got %s", footprint.PropertyType)
	}
	if footprint.Floors != 1 {
		t.Fatalf("expected default 1 floor, got %d", footprint.Floors)
	}
}

func TestResolve_FromPostcodeViaGeocoder(t *testing.T) {
	center := geo.Coordinate{Lat: 51.5074, Lon: -0.1278}
	geocoder := fakeGeocoder{result: geocode.Result{Coordinate: center, Postcode: "TV1 2AB"}}
	provider := fakeProvider{candidates: []Candidate{
		{Ring: ringAround(center, 11), Tag: "terrace"},
	}}

	svc := NewService(geocoder, provider, buildingsTestConfig{}, logger.New("development"))

	footprint, err := svc.Resolve(context.Background(), ResolveRequest{Postcode: "TV1 2AB"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if footprint.PropertyType != roof.PropertyTerraced {
		t.Fatalf("expected terraced, got %s", footprint.PropertyType)
	}
}

func TestResolve_PicksNearestCandidate(t *testing.T) {
	center := geo.Coordinate{Lat: 51.5074, Lon: -0.1278}
	far := geo.Coordinate{Lat: 51.5078, Lon: -0.1278} // ~44m north

	provider := fakeProvider{candidates: []Candidate{
		{Ring: ringAround(far, 20), Tag: "apartments"},
		{Ring: ringAround(center, 8), Tag: "bungalow"},
	}}

	svc := NewService(fakeGeocoder{}, provider, buildingsTestConfig{}, logger.New("development"))

	footprint, err := svc.Resolve(context.Background(), ResolveRequest{Coordinate: &center})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if footprint.PropertyType != roof.PropertyBungalow {
		t.Fatalf("expected the nearer bungalow, got %s", footprint.PropertyType)
	}
}

func TestResolve_DerivesFloorCount(t *testing.T) {
	center := geo.Coordinate{Lat: 51.5074, Lon: -0.1278}
	provider := fakeProvider{candidates: []Candidate{
		{Ring: ringAround(center, 10), Tag: "house"},
	}}

	svc := NewService(fakeGeocoder{}, provider, buildingsTestConfig{}, logger.New("development"))

	total := 195.0 // ~100 m2 footprint -> 2 floors
	footprint, err := svc.Resolve(context.Background(), ResolveRequest{Coordinate: &center, TotalFloorAreaM2: &total})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if footprint.Floors != 2 {
		t.Fatalf("expected 2 floors, got %d", footprint.Floors)
	}
}

func TestResolve_NoCandidatesIsNotFound(t *testing.T) {
	center := geo.Coordinate{Lat: 51.5074, Lon: -0.1278}
	svc := NewService(fakeGeocoder{}, fakeProvider{}, buildingsTestConfig{}, logger.New("development"))

	_, err := svc.Resolve(context.Background(), ResolveRequest{Coordinate: &center})
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected KindNotFound, got %v", err)
	}
}

func TestResolve_GeocodeMissPropagates(t *testing.T) {
	geocoder := fakeGeocoder{err: apperr.NotFound("no match")}
	svc := NewService(geocoder, fakeProvider{}, buildingsTestConfig{}, logger.New("development"))

	_, err := svc.Resolve(context.Background(), ResolveRequest{Postcode: "ZZ99 9ZZ"})
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected KindNotFound, got %v", err)
	}
}

func TestResolve_ProviderOutagePropagates(t *testing.T) {
	center := geo.Coordinate{Lat: 51.5074, Lon: -0.1278}
	svc := NewService(fakeGeocoder{}, fakeProvider{err: apperr.Unavailable("timeout")}, buildingsTestConfig{}, logger.New("development"))

	_, err := svc.Resolve(context.Background(), ResolveRequest{Coordinate: &center})
	if !apperr.Is(err, apperr.KindUnavailable) {
		t.Fatalf("expected KindUnavailable, got %v", err)
	}
}

func TestResolve_MissingInputIsValidation(t *testing.T) {
	svc := NewService(fakeGeocoder{}, fakeProvider{}, buildingsTestConfig{}, logger.New("development"))

	_, err := svc.Resolve(context.Background(), ResolveRequest{})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected KindValidation, got %v", err)
	}
}

func TestResolve_Deterministic(t *testing.T) {
	center := geo.Coordinate{Lat: 51.5074, Lon: -0.1278}
	provider := fakeProvider{candidates: []Candidate{
		{Ring: ringAround(center, 10), Tag: "house"},
	}}
	svc := NewService(fakeGeocoder{}, provider, buildingsTestConfig{}, logger.New("development"))

	first, err := svc.Resolve(context.Background(), ResolveRequest{Coordinate: &center})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.Resolve(context.Background(), ResolveRequest{Coordinate: &center})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.AreaM2 != second.AreaM2 || first.Centroid != second.Centroid {
		t.Fatalf("expected identical footprints, got %+v and %+v", first, second)
	}
}
