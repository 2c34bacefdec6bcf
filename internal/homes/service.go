package homes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"ecohome_backend/internal/events"
	"ecohome_backend/internal/homes/scoring"
	"ecohome_backend/platform/apperr"
	"ecohome_backend/platform/logger"
)

// Store is the persistence surface the service needs. Implemented by
// Repository; faked in tests.
type Store interface {
	CreateHome(ctx context.Context, home HomeRecord, history ScoreHistoryEntry) (HomeRecord, error)
	GetHome(ctx context.Context, id uuid.UUID) (HomeRecord, error)
	InsertImprovement(ctx context.Context, improvement Improvement, history ScoreHistoryEntry) (Improvement, error)
	ListImprovements(ctx context.Context, homeID uuid.UUID) ([]Improvement, error)
	RecordScore(ctx context.Context, homeID uuid.UUID, score float64, history ScoreHistoryEntry) error
	TouchScoreChecked(ctx context.Context, homeID uuid.UUID) error
	ListScoreHistory(ctx context.Context, homeID uuid.UUID) ([]ScoreHistoryEntry, error)
	ListStaleHomeIDs(ctx context.Context, cutoff time.Time, limit int) ([]uuid.UUID, error)
}

// ClaimRequest carries the inputs for claiming a home.
type ClaimRequest struct {
	OwnerID            uuid.UUID
	Address            string
	Postcode           string
	Lat                *float64
	Lon                *float64
	TotalFloorAreaM2   *float64
	BaselineEfficiency float64
}

// ImprovementRequest carries the inputs for logging an improvement.
// BeforeScore is the score the caller observed; it must match the home's
// current score or the write is rejected.
type ImprovementRequest struct {
	Category               string
	Cost                   float64
	GrantUsed              bool
	GrantAmount            float64
	EstimatedAnnualSavings float64
	BeforeScore            float64
	CompletedAt            time.Time
}

// Service owns home lifecycle operations and the score audit trail.
type Service struct {
	store  Store
	engine *scoring.Engine
	bus    events.Bus
	log    *logger.Logger
}

// NewService creates a homes service.
func NewService(store Store, engine *scoring.Engine, bus events.Bus, log *logger.Logger) *Service {
	return &Service{store: store, engine: engine, bus: bus, log: log}
}

// ClaimHome registers a home for a user, computes its initial score from the
// baseline efficiency and appends the first history entry.
func (s *Service) ClaimHome(ctx context.Context, req ClaimRequest) (HomeRecord, error) {
	if req.Address == "" || req.Postcode == "" {
		return HomeRecord{}, apperr.Validation("address and postcode are required")
	}

	score, err := s.engine.Compute(req.BaselineEfficiency, nil)
	if err != nil {
		return HomeRecord{}, err
	}

	home := HomeRecord{
		ID:                 uuid.New(),
		OwnerID:            req.OwnerID,
		Address:            req.Address,
		Postcode:           req.Postcode,
		Lat:                req.Lat,
		Lon:                req.Lon,
		TotalFloorAreaM2:   req.TotalFloorAreaM2,
		BaselineEfficiency: req.BaselineEfficiency,
		CurrentScore:       score,
	}

	created, err := s.store.CreateHome(ctx, home, ScoreHistoryEntry{
		ID:     uuid.New(),
		HomeID: home.ID,
		Score:  score,
		Reason: ReasonInitialClaim,
	})
	if err != nil {
		return HomeRecord{}, fmt.Errorf("claim home: %w", err)
	}

	s.bus.Publish(ctx, events.HomeClaimed{
		BaseEvent:    events.BaseEvent{Timestamp: time.Now()},
		HomeID:       created.ID,
		OwnerID:      created.OwnerID,
		InitialScore: created.CurrentScore,
	})
	return created, nil
}

// GetHome fetches a home by ID.
func (s *Service) GetHome(ctx context.Context, id uuid.UUID) (HomeRecord, error) {
	home, err := s.store.GetHome(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return HomeRecord{}, apperr.NotFound("home not found")
	}
	if err != nil {
		return HomeRecord{}, err
	}
	return home, nil
}

// LogImprovement writes an immutable improvement and appends a history entry
// whose reason is the improvement category. The after score is the engine's
// output with this improvement applied; the stored current score is not
// touched until the next recalculation. The caller's before score must equal
// the home's current score.
func (s *Service) LogImprovement(ctx context.Context, homeID, actorID uuid.UUID, req ImprovementRequest) (Improvement, error) {
	category, err := ParseCategory(req.Category)
	if err != nil {
		return Improvement{}, err
	}
	if req.Cost < 0 || req.GrantAmount < 0 || req.EstimatedAnnualSavings < 0 {
		return Improvement{}, apperr.Validation("cost, grant amount and savings must be non-negative")
	}

	home, err := s.GetHome(ctx, homeID)
	if err != nil {
		return Improvement{}, err
	}
	if req.BeforeScore != home.CurrentScore {
		return Improvement{}, apperr.Conflict(fmt.Sprintf(
			"before score %v does not match current score %v", req.BeforeScore, home.CurrentScore))
	}

	categories, err := s.improvementCategories(ctx, homeID)
	if err != nil {
		return Improvement{}, err
	}
	after, err := s.engine.Compute(home.BaselineEfficiency, append(categories, string(category)))
	if err != nil {
		return Improvement{}, err
	}

	improvement := Improvement{
		ID:                     uuid.New(),
		HomeID:                 homeID,
		LoggedBy:               actorID,
		Category:               category,
		Cost:                   req.Cost,
		GrantUsed:              req.GrantUsed,
		GrantAmount:            req.GrantAmount,
		EstimatedAnnualSavings: req.EstimatedAnnualSavings,
		BeforeScore:            home.CurrentScore,
		AfterScore:             after,
		CompletedAt:            req.CompletedAt,
	}

	written, err := s.store.InsertImprovement(ctx, improvement, ScoreHistoryEntry{
		ID:     uuid.New(),
		HomeID: homeID,
		Score:  after,
		Reason: string(category),
		Detail: map[string]any{"old_score": home.CurrentScore},
	})
	if err != nil {
		return Improvement{}, fmt.Errorf("log improvement: %w", err)
	}

	s.bus.Publish(ctx, events.ImprovementLogged{
		BaseEvent:   events.BaseEvent{Timestamp: time.Now()},
		HomeID:      homeID,
		Category:    string(category),
		BeforeScore: improvement.BeforeScore,
		AfterScore:  improvement.AfterScore,
	})
	return written, nil
}

// ListImprovements returns a home's improvement log.
func (s *Service) ListImprovements(ctx context.Context, homeID uuid.UUID) ([]Improvement, error) {
	if _, err := s.GetHome(ctx, homeID); err != nil {
		return nil, err
	}
	return s.store.ListImprovements(ctx, homeID)
}

// ScoreHistory returns a home's append-only audit log, oldest first.
func (s *Service) ScoreHistory(ctx context.Context, homeID uuid.UUID) ([]ScoreHistoryEntry, error) {
	if _, err := s.GetHome(ctx, homeID); err != nil {
		return nil, err
	}
	return s.store.ListScoreHistory(ctx, homeID)
}

// Recalculate recomputes a home's score from its baseline and improvement
// history. When the result differs from the stored score it persists the new
// score and appends a history entry carrying the previous score and the
// trigger; an unchanged score writes nothing to the score or the audit trail.
// Either way the check itself is recorded, so the staleness sweep moves on to
// the next home instead of re-picking this one.
func (s *Service) Recalculate(ctx context.Context, homeID uuid.UUID, trigger string) (float64, error) {
	home, err := s.GetHome(ctx, homeID)
	if err != nil {
		return 0, err
	}

	categories, err := s.improvementCategories(ctx, homeID)
	if err != nil {
		return 0, err
	}
	score, err := s.engine.Compute(home.BaselineEfficiency, categories)
	if err != nil {
		return 0, err
	}
	if score == home.CurrentScore {
		if err := s.store.TouchScoreChecked(ctx, homeID); err != nil && !errors.Is(err, ErrNotFound) {
			return 0, fmt.Errorf("recalculate: %w", err)
		}
		return score, nil
	}

	detail := map[string]any{"old_score": home.CurrentScore}
	if trigger != "" {
		detail["trigger"] = trigger
	}
	err = s.store.RecordScore(ctx, homeID, score, ScoreHistoryEntry{
		ID:     uuid.New(),
		HomeID: homeID,
		Score:  score,
		Reason: ReasonRecalculation,
		Detail: detail,
	})
	if errors.Is(err, ErrNotFound) {
		return 0, apperr.NotFound("home not found")
	}
	if err != nil {
		return 0, fmt.Errorf("recalculate: %w", err)
	}

	s.bus.Publish(ctx, events.ScoreRecalculated{
		BaseEvent: events.BaseEvent{Timestamp: time.Now()},
		HomeID:    homeID,
		OldScore:  home.CurrentScore,
		NewScore:  score,
		Trigger:   trigger,
	})
	return score, nil
}

// StaleHomeIDs lists homes whose last recalculation check predates the
// cutoff, least recently checked first.
func (s *Service) StaleHomeIDs(ctx context.Context, cutoff time.Time, limit int) ([]uuid.UUID, error) {
	return s.store.ListStaleHomeIDs(ctx, cutoff, limit)
}

func (s *Service) improvementCategories(ctx context.Context, homeID uuid.UUID) ([]string, error) {
	improvements, err := s.store.ListImprovements(ctx, homeID)
	if err != nil {
		return nil, fmt.Errorf("load improvements: %w", err)
	}
	categories := make([]string, 0, len(improvements))
	for _, improvement := range improvements {
		categories = append(categories, string(improvement.Category))
	}
	return categories, nil
}
