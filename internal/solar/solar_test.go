package solar

import (
	"context"
	"math"
	"testing"
	"time"

	"ecohome_backend/internal/geo"
	"ecohome_backend/platform/apperr"
	"ecohome_backend/platform/logger"
)

type solarTestConfig struct{}

func (solarTestConfig) GetPVGISBaseURL() string { return "http://unused" }
func (solarTestConfig) GetPanelDensityKWpPerM2() float64 { return 0.20 }
func (solarTestConfig) GetSystemEfficiency() float64 { return 0.80 }
func (solarTestConfig) GetElectricityUnitPrice() float64 { return 0.27 }
func (solarTestConfig) GetInstallCostPerKWp() float64 { return 1500 }
func (solarTestConfig) GetInstallBaseCost() float64 { return 1200 }
func (solarTestConfig) GetGridCO2KgPerKWh() float64 { return 0.21 }
func (solarTestConfig) GetUpstreamTimeout() time.Duration { return 5 * time.Second }

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

var london = geo.Coordinate{Lat: 51.5074, Lon: -0.1278}

func newTestService(provider IrradianceProvider) *Service {
	return NewService(provider, solarTestConfig{}, logger.New("development"))
}

func TestEstimate_DerivesCapacityFromRoofArea(t *testing.T) {
	svc := newTestService(fakeIrradiance{yield: 950})

	potential, err := svc.Estimate(context.Background(), EstimateRequest{
		Coordinate: london,
		RoofAreaM2: 48,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if potential.PeakPowerKWp != 9.6 {
		t.Fatalf("expected 9.6 kWp from 48 m2, got %v", potential.PeakPowerKWp)
	}
	// 9.6 * 950 * 0.80
	if potential.AnnualGenerationKWh != 7296 {
		t.Fatalf("expected 7296 kWh, got %v", potential.AnnualGenerationKWh)
	}
	if potential.AnnualSavings != 1969.92 {
		t.Fatalf("expected savings 1969.92, got %v", potential.AnnualSavings)
	}
	if potential.CO2SavedKg != 1532.16 {
		t.Fatalf("expected 1532.16 kg CO2, got %v", potential.CO2SavedKg)
	}
	if potential.PaybackYears == nil {
		t.Fatal("expected a payback period")
	}
	// (1200 + 9.6*1500) / 1969.92 = 7.92... -> 7.9
	if *potential.PaybackYears != 7.9 {
		t.Fatalf("expected payback 7.9 years, got %v", *potential.PaybackYears)
	}
	if potential.Assumptions.IrradianceKWhPerKWp != 950 {
		t.Fatalf("expected assumptions to carry the yield, got %+v", potential.Assumptions)
	}
}

func TestEstimate_DeclaredCapacityCappedByRoof(t *testing.T) {
	svc := newTestService(fakeIrradiance{yield: 950})

	declared := 25.0 // roof allows 48 * 0.20 = 9.6
	potential, err := svc.Estimate(context.Background(), EstimateRequest{
		Coordinate:   london,
		RoofAreaM2:   48,
		PeakPowerKWp: &declared,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if potential.PeakPowerKWp != 9.6 {
		t.Fatalf("expected cap at 9.6 kWp, got %v", potential.PeakPowerKWp)
	}
}

func TestEstimate_PaybackDecreasesWithPeakPower(t *testing.T) {
	svc := newTestService(fakeIrradiance{yield: 950})

	prev := math.Inf(1)
	for _, peak := range []float64{1, 2, 4, 6, 8} {
		declared := peak
		potential, err := svc.Estimate(context.Background(), EstimateRequest{
			Coordinate:   london,
			RoofAreaM2:   100,
			PeakPowerKWp: &declared,
		})
		if err != nil {
			t.Fatalf("unexpected error at %v kWp: %v", peak, err)
		}
		if potential.PaybackYears == nil {
			t.Fatalf("expected a payback period at %v kWp", peak)
		}
		if *potential.PaybackYears >= prev {
			t.Fatalf("payback did not decrease: %v years at %v kWp, previous %v", *potential.PaybackYears, peak, prev)
		}
		prev = *potential.PaybackYears
	}
}

func TestEstimate_OutputsNonNegativeAndMonotonic(t *testing.T) {
	svc := newTestService(fakeIrradiance{yield: 950})

	prevGen := 0.0
	for _, peak := range []float64{0.5, 1, 3, 9} {
		declared := peak
		potential, err := svc.Estimate(context.Background(), EstimateRequest{
			Coordinate:   london,
			RoofAreaM2:   100,
			PeakPowerKWp: &declared,
		})
		if err != nil {
			t.Fatalf("unexpected error at %v kWp: %v", peak, err)
		}
		if potential.AnnualGenerationKWh < prevGen {
			t.Fatalf("generation decreased at %v kWp: %v < %v", peak, potential.AnnualGenerationKWh, prevGen)
		}
		if potential.AnnualSavings < 0 || potential.CO2SavedKg < 0 {
			t.Fatalf("negative outputs at %v kWp: %+v", peak, potential)
		}
		prevGen = potential.AnnualGenerationKWh
	}
}

func TestEstimate_ZeroSavingsMeansNoPayback(t *testing.T) {
	svc := newTestService(fakeIrradiance{yield: 0.001})

	declared := 0.01
	potential, err := svc.Estimate(context.Background(), EstimateRequest{
		Coordinate:   london,
		RoofAreaM2:   100,
		PeakPowerKWp: &declared,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if potential.AnnualSavings != 0 {
		t.Fatalf("expected rounded savings of 0, got %v", potential.AnnualSavings)
	}
	if potential.PaybackYears != nil {
		t.Fatalf("expected no payback period, got %v", *potential.PaybackYears)
	}
}

func TestEstimate_Deterministic(t *testing.T) {
	svc := newTestService(fakeIrradiance{yield: 1034.57})

	req := EstimateRequest{Coordinate: london, RoofAreaM2: 37.3}
	first, err := svc.Estimate(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.Estimate(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.AnnualGenerationKWh != second.AnnualGenerationKWh ||
		first.AnnualSavings != second.AnnualSavings ||
		*first.PaybackYears != *second.PaybackYears {
		t.Fatalf("expected identical estimates, got %+v and %+v", first, second)
	}
}

func TestEstimate_Validation(t *testing.T) {
	svc := newTestService(fakeIrradiance{yield: 950})

	if _, err := svc.Estimate(context.Background(), EstimateRequest{
		Coordinate: geo.Coordinate{Lat: 91, Lon: 0},
		RoofAreaM2: 50,
	}); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected KindValidation for bad latitude, got %v", err)
	}

	if _, err := svc.Estimate(context.Background(), EstimateRequest{
		Coordinate: london,
		RoofAreaM2: 0,
	}); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected KindValidation for zero roof area, got %v", err)
	}

	negative := -1.0
	if _, err := svc.Estimate(context.Background(), EstimateRequest{
		Coordinate:   london,
		RoofAreaM2:   50,
		PeakPowerKWp: &negative,
	}); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected KindValidation for negative peak power, got %v", err)
	}
}

func TestEstimate_UpstreamFailurePropagates(t *testing.T) {
	svc := newTestService(fakeIrradiance{err: apperr.Unavailable("timeout")})

	_, err := svc.Estimate(context.Background(), EstimateRequest{Coordinate: london, RoofAreaM2: 50})
	if !apperr.Is(err, apperr.KindUnavailable) {
		t.Fatalf("expected KindUnavailable, got %v", err)
	}
}
