// Package events defines the domain events the modules publish.
package events

import (
	"github.com/google/uuid"

	platform "ecohome_backend/platform/events"
	"ecohome_backend/platform/logger"
)

// Re-exported so modules depend on one events package.
type (
	Event       = platform.Event
	Bus         = platform.Bus
	Handler     = platform.Handler
	HandlerFunc = platform.HandlerFunc
	BaseEvent   = platform.BaseEvent
)

// NewInMemoryBus creates the default in-process bus.
func NewInMemoryBus(log *logger.Logger) Bus {
	return platform.NewInMemoryBus(log)
}

const (
	HomeClaimedName       = "homes.claimed"
	ImprovementLoggedName = "homes.improvement_logged"
	ScoreRecalculatedName = "homes.score_recalculated"
)

// HomeClaimed is published when a user claims a home and its initial score is
// recorded.
type HomeClaimed struct {
	BaseEvent
	HomeID       uuid.UUID `json:"homeId"`
	OwnerID      uuid.UUID `json:"ownerId"`
	InitialScore float64   `json:"initialScore"`
}

func (HomeClaimed) EventName() string { return HomeClaimedName }

// ImprovementLogged is published after an improvement and its audit entry
// are written. The stored score is only moved by a later recalculation.
type ImprovementLogged struct {
	BaseEvent
	HomeID      uuid.UUID `json:"homeId"`
	Category    string    `json:"category"`
	BeforeScore float64   `json:"beforeScore"`
	AfterScore  float64   `json:"afterScore"`
}

func (ImprovementLogged) EventName() string { return ImprovementLoggedName }

// ScoreRecalculated is published when a recalculation moves the stored
// score. Recalculations that land on the current score publish nothing.
type ScoreRecalculated struct {
	BaseEvent
	HomeID   uuid.UUID `json:"homeId"`
	OldScore float64   `json:"oldScore"`
	NewScore float64   `json:"newScore"`
	Trigger  string    `json:"trigger"`
}

func (ScoreRecalculated) EventName() string { return ScoreRecalculatedName }
