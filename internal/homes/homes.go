// Package homes owns the home record, its improvement log and the append-only
// score history.
package homes

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"ecohome_backend/platform/apperr"
)

// Category is a closed energy-conservation measure category.
type Category string

const (
	CategoryHeatPump        Category = "heat_pump"
	CategoryLoftInsulation  Category = "loft_insulation"
	CategorySolarPV         Category = "solar_pv"
	CategoryGlazing         Category = "glazing"
	CategoryCavityWall      Category = "cavity_wall_insulation"
	CategorySmartThermostat Category = "smart_thermostat"
)

// KnownCategories lists every accepted improvement category.
var KnownCategories = []Category{
	CategoryHeatPump,
	CategoryLoftInsulation,
	CategorySolarPV,
	CategoryGlazing,
	CategoryCavityWall,
	CategorySmartThermostat,
}

// ParseCategory validates a raw category value.
func ParseCategory(raw string) (Category, error) {
	for _, c := range KnownCategories {
		if string(c) == raw {
			return c, nil
		}
	}
	return "", apperr.Validation(fmt.Sprintf("unknown improvement category %q", raw))
}

// Score history reasons. Improvement entries use the category itself as the
// reason.
const (
	ReasonInitialClaim  = "initial_claim"
	ReasonRecalculation = "recalculation"
)

// HomeRecord is a claimed home. The persistent store owns its lifecycle; the
// score engine only reads it and derives values.
type HomeRecord struct {
	ID                 uuid.UUID
	OwnerID            uuid.UUID
	Address            string
	Postcode           string
	Lat                *float64
	Lon                *float64
	TotalFloorAreaM2   *float64
	BaselineEfficiency float64
	CurrentScore       float64
	ScoreUpdatedAt     time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Improvement is an energy-conservation measure logged against a home.
// Immutable once written: before and after scores are frozen at logging time.
type Improvement struct {
	ID                     uuid.UUID
	HomeID                 uuid.UUID
	LoggedBy               uuid.UUID
	Category               Category
	Cost                   float64
	GrantUsed              bool
	GrantAmount            float64
	EstimatedAnnualSavings float64
	BeforeScore            float64
	AfterScore             float64
	CompletedAt            time.Time
	CreatedAt              time.Time
}

// ScoreHistoryEntry is one row of a home's append-only score audit log.
// Entries are never updated or deleted.
type ScoreHistoryEntry struct {
	ID        uuid.UUID
	HomeID    uuid.UUID
	Score     float64
	Reason    string
	Detail    map[string]any
	CreatedAt time.Time
}
