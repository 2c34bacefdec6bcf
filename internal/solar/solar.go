// Package solar estimates photovoltaic potential for a roof at a location.
package solar

import (
	"context"
	"math"

	"ecohome_backend/internal/geo"
	"ecohome_backend/platform/apperr"
	"ecohome_backend/platform/config"
	"ecohome_backend/platform/logger"
)

// IrradianceProvider returns the expected annual yield in kWh per installed
// kWp for a location.
type IrradianceProvider interface {
	AnnualYieldKWhPerKWp(ctx context.Context, coord geo.Coordinate) (float64, error)
}

// Assumptions is the parameter set a potential was computed with. It is
// returned with every estimate so callers can reproduce the numbers.
type Assumptions struct {
	IrradianceKWhPerKWp  float64 `json:"irradianceKWhPerKWp"`
	SystemEfficiency     float64 `json:"systemEfficiency"`
	UnitPrice            float64 `json:"unitPrice"`
	PanelDensityKWpPerM2 float64 `json:"panelDensityKWpPerM2"`
	InstallCostPerKWp    float64 `json:"installCostPerKWp"`
	InstallBaseCost      float64 `json:"installBaseCost"`
}

// Potential is the estimated output of a photovoltaic installation.
// PaybackYears is nil when annual savings are zero.
type Potential struct {
	PeakPowerKWp        float64     `json:"peakPowerKWp"`
	AnnualGenerationKWh float64     `json:"annualGenerationKWh"`
	AnnualSavings       float64     `json:"annualSavings"`
	CO2SavedKg          float64     `json:"co2SavedKg"`
	PaybackYears        *float64    `json:"paybackYears"`
	Assumptions         Assumptions `json:"assumptions"`
}

// EstimateRequest carries the inputs for a potential estimate. PeakPowerKWp
// is optional; when absent the capacity is derived from the roof area.
type EstimateRequest struct {
	Coordinate   geo.Coordinate
	RoofAreaM2   float64
	PeakPowerKWp *float64
}

// Service computes solar potential from roof capacity and local irradiance.
type Service struct {
	provider          IrradianceProvider
	panelDensity      float64
	systemEfficiency  float64
	unitPrice         float64
	installCostPerKWp float64
	installBaseCost   float64
	gridCO2PerKWh     float64
	log               *logger.Logger
}

// NewService creates a solar potential service.
func NewService(provider IrradianceProvider, cfg config.SolarConfig, log *logger.Logger) *Service {
	return &Service{
		provider:          provider,
		panelDensity:      cfg.GetPanelDensityKWpPerM2(),
		systemEfficiency:  cfg.GetSystemEfficiency(),
		unitPrice:         cfg.GetElectricityUnitPrice(),
		installCostPerKWp: cfg.GetInstallCostPerKWp(),
		installBaseCost:   cfg.GetInstallBaseCost(),
		gridCO2PerKWh:     cfg.GetGridCO2KgPerKWh(),
		log:               log,
	}
}

// Estimate computes the potential for the requested roof. Capacity never
// implies more panel area than the roof allows: a declared peak power is
// capped at roofArea x panel density, and a derived one starts there.
// Outputs are rounded (generation, savings, CO2 to 0.01; payback to 0.1)
// so identical inputs produce identical responses.
func (s *Service) Estimate(ctx context.Context, req EstimateRequest) (Potential, error) {
	if err := req.Coordinate.Validate(); err != nil {
		return Potential{}, err
	}
	if req.RoofAreaM2 <= 0 {
		return Potential{}, apperr.Validation("roof area must be positive")
	}
	irradiance, err := s.provider.AnnualYieldKWhPerKWp(ctx, req.Coordinate)
	if err != nil {
		return Potential{}, err
	}
	return s.EstimateWithYield(req, irradiance)
}

// EstimateWithYield computes the potential from an already retrieved yield
// factor. Pure; used by the assessment pipeline, which fetches irradiance
// concurrently with footprint resolution.
func (s *Service) EstimateWithYield(req EstimateRequest, irradianceKWhPerKWp float64) (Potential, error) {
	if req.RoofAreaM2 <= 0 {
		return Potential{}, apperr.Validation("roof area must be positive")
	}

	maxPeak := req.RoofAreaM2 * s.panelDensity
	peak := maxPeak
	if req.PeakPowerKWp != nil {
		if *req.PeakPowerKWp <= 0 {
			return Potential{}, apperr.Validation("peak power must be positive")
		}
		peak = math.Min(*req.PeakPowerKWp, maxPeak)
	}
	peak = round2(peak)

	irradiance := irradianceKWhPerKWp
	if irradiance < 0 {
		s.log.InvariantViolation("solar", "negative irradiance from provider", irradiance)
		irradiance = 0
	}

	generation := round2(peak * irradiance * s.systemEfficiency)
	savings := round2(generation * s.unitPrice)
	co2 := round2(generation * s.gridCO2PerKWh)

	var payback *float64
	if savings > 0 {
		years := round1((s.installBaseCost + peak*s.installCostPerKWp) / savings)
		payback = &years
	}

	return Potential{
		PeakPowerKWp:        peak,
		AnnualGenerationKWh: generation,
		AnnualSavings:       savings,
		CO2SavedKg:          co2,
		PaybackYears:        payback,
		Assumptions: Assumptions{
			IrradianceKWhPerKWp:  irradiance,
			SystemEfficiency:     s.systemEfficiency,
			UnitPrice:            s.unitPrice,
			PanelDensityKWpPerM2: s.panelDensity,
			InstallCostPerKWp:    s.installCostPerKWp,
			InstallBaseCost:      s.installBaseCost,
		},
	}, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
