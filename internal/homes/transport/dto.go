// Package transport defines the request/response DTOs for the homes module.
package transport

import (
	"time"

	"github.com/google/uuid"
)

// ClaimHomeRequest is the body for claiming a home.
type ClaimHomeRequest struct {
	Address            string   `json:"address" validate:"required,min=1,max=255"`
	Postcode           string   `json:"postcode" validate:"required,min=2,max=16"`
	Lat                *float64 `json:"lat" validate:"omitempty,min=-90,max=90"`
	Lon                *float64 `json:"lon" validate:"omitempty,min=-180,max=180"`
	TotalFloorAreaM2   *float64 `json:"totalFloorAreaM2" validate:"omitempty,gt=0"`
	BaselineEfficiency float64  `json:"baselineEfficiency" validate:"min=0,max=100"`
}

// LogImprovementRequest is the body for logging an improvement against a home.
type LogImprovementRequest struct {
	Category               string    `json:"category" validate:"required,min=1,max=64"`
	Cost                   float64   `json:"cost" validate:"min=0"`
	GrantUsed              bool      `json:"grantUsed"`
	GrantAmount            float64   `json:"grantAmount" validate:"min=0"`
	EstimatedAnnualSavings float64   `json:"estimatedAnnualSavings" validate:"min=0"`
	BeforeScore            float64   `json:"beforeScore" validate:"min=0,max=100"`
	CompletedAt            time.Time `json:"completedAt" validate:"required"`
}

// RecalculateRequest optionally names what triggered the recalculation.
type RecalculateRequest struct {
	Trigger string `json:"trigger"`
}

// HomeResponse is a home record returned to callers.
type HomeResponse struct {
	ID                 uuid.UUID `json:"id"`
	Address            string    `json:"address"`
	Postcode           string    `json:"postcode"`
	Lat                *float64  `json:"lat,omitempty"`
	Lon                *float64  `json:"lon,omitempty"`
	TotalFloorAreaM2   *float64  `json:"totalFloorAreaM2,omitempty"`
	BaselineEfficiency float64   `json:"baselineEfficiency"`
	CurrentScore       float64   `json:"currentScore"`
	ScoreUpdatedAt     time.Time `json:"scoreUpdatedAt"`
	CreatedAt          time.Time `json:"createdAt"`
}

// ImprovementResponse is a logged improvement returned to callers.
type ImprovementResponse struct {
	ID                     uuid.UUID `json:"id"`
	Category               string    `json:"category"`
	Cost                   float64   `json:"cost"`
	GrantUsed              bool      `json:"grantUsed"`
	GrantAmount            float64   `json:"grantAmount"`
	EstimatedAnnualSavings float64   `json:"estimatedAnnualSavings"`
	BeforeScore            float64   `json:"beforeScore"`
	AfterScore             float64   `json:"afterScore"`
	CompletedAt            time.Time `json:"completedAt"`
	CreatedAt              time.Time `json:"createdAt"`
}

// ScoreHistoryEntryResponse is one audit log row.
type ScoreHistoryEntryResponse struct {
	Score     float64        `json:"score"`
	Reason    string         `json:"reason"`
	Detail    map[string]any `json:"detail,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

// RecalculateResponse carries the recalculated score.
type RecalculateResponse struct {
	Score float64 `json:"score"`
}
