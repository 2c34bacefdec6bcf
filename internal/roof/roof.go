// Package roof estimates usable rooftop area from floor area, floor count,
// and property-type classification.
package roof

import (
	"fmt"

	"ecohome_backend/platform/apperr"
	"ecohome_backend/platform/config"
)

// PropertyType is the closed classification of dwellings used by the roof
// model. Unrecognized values are valid input and map to a conservative
// default fraction.
type PropertyType string

const (
	PropertyDetached     PropertyType = "detached"
	PropertySemiDetached PropertyType = "semi_detached"
	PropertyTerraced     PropertyType = "terraced"
	PropertyFlat         PropertyType = "flat"
	PropertyBungalow     PropertyType = "bungalow"
	PropertyOther        PropertyType = "other"
)

// KnownPropertyTypes lists every recognized property type.
var KnownPropertyTypes = []PropertyType{
	PropertyDetached,
	PropertySemiDetached,
	PropertyTerraced,
	PropertyFlat,
	PropertyBungalow,
	PropertyOther,
}

// ParsePropertyType maps free-form input onto the closed enum, falling back
// to PropertyOther.
func ParsePropertyType(value string) PropertyType {
	for _, known := range KnownPropertyTypes {
		if string(known) == value {
			return known
		}
	}
	return PropertyOther
}

// Capacity is a usable-roof estimate, reported together with the fraction
// and classification that produced it so callers can reproduce the number.
type Capacity struct {
	RoofAreaM2     float64      `json:"roofAreaM2"`
	UsableFraction float64      `json:"usableFraction"`
	PropertyType   PropertyType `json:"propertyType"`
}

// Service computes usable rooftop area. It is stateless and pure: the same
// inputs always produce the same estimate.
type Service struct {
	fractions       map[string]float64
	defaultFraction float64
}

// NewService creates a roof capacity service from the configured
// usable-roof fractions.
func NewService(cfg config.RoofConfig) *Service {
	return &Service{
		fractions:       cfg.GetRoofUsableFractions(),
		defaultFraction: cfg.GetRoofDefaultFraction(),
	}
}

// Estimate derives the usable roof area: the per-floor footprint scaled by
// the property type's usable fraction. Detached and bungalow roofs are
// mostly usable; flats and terraces share or constrain roof access.
func (s *Service) Estimate(floorAreaM2 float64, floors int, propertyType PropertyType) (Capacity, error) {
	if floorAreaM2 <= 0 {
		return Capacity{}, apperr.Validation(fmt.Sprintf("floor area must be positive, got %.2f", floorAreaM2))
	}
	if floors < 1 {
		floors = 1
	}

	fraction := s.usableFraction(propertyType)
	footprint := floorAreaM2 / float64(floors)

	return Capacity{
		RoofAreaM2:     footprint * fraction,
		UsableFraction: fraction,
		PropertyType:   propertyType,
	}, nil
}

func (s *Service) usableFraction(propertyType PropertyType) float64 {
	if fraction, ok := s.fractions[string(propertyType)]; ok {
		return fraction
	}
	return s.defaultFraction
}
