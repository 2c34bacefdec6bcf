package homes

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"ecohome_backend/internal/events"
	"ecohome_backend/internal/homes/scoring"
	"ecohome_backend/platform/apperr"
	"ecohome_backend/platform/logger"
)

type scoringTestConfig struct{}

func (scoringTestConfig) GetScoreCategoryDeltas() map[string]float64 {
	return map[string]float64{
		"heat_pump":              10,
		"loft_insulation":        8,
		"solar_pv":               12,
		"glazing":                6,
		"cavity_wall_insulation": 7,
		"smart_thermostat":       3,
	}
}

// memoryStore is an in-memory Store for service tests.
type memoryStore struct {
	homes        map[uuid.UUID]HomeRecord
	improvements map[uuid.UUID][]Improvement
	history      map[uuid.UUID][]ScoreHistoryEntry
	checked      map[uuid.UUID]time.Time
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		homes:        make(map[uuid.UUID]HomeRecord),
		improvements: make(map[uuid.UUID][]Improvement),
		history:      make(map[uuid.UUID][]ScoreHistoryEntry),
		checked:      make(map[uuid.UUID]time.Time),
	}
}

func (s *memoryStore) CreateHome(ctx context.Context, home HomeRecord, history ScoreHistoryEntry) (HomeRecord, error) {
	now := time.Now()
	home.ScoreUpdatedAt = now
	home.CreatedAt = now
	home.UpdatedAt = now
	s.homes[home.ID] = home
	s.checked[home.ID] = now

	history.CreatedAt = now
	s.history[home.ID] = append(s.history[home.ID], history)
	return home, nil
}

func (s *memoryStore) GetHome(ctx context.Context, id uuid.UUID) (HomeRecord, error) {
	home, ok := s.homes[id]
	if !ok {
		return HomeRecord{}, ErrNotFound
	}
	return home, nil
}

func (s *memoryStore) InsertImprovement(ctx context.Context, improvement Improvement, history ScoreHistoryEntry) (Improvement, error) {
	now := time.Now()
	improvement.CreatedAt = now
	s.improvements[improvement.HomeID] = append(s.improvements[improvement.HomeID], improvement)

	history.CreatedAt = now
	s.history[improvement.HomeID] = append(s.history[improvement.HomeID], history)
	return improvement, nil
}

func (s *memoryStore) ListImprovements(ctx context.Context, homeID uuid.UUID) ([]Improvement, error) {
	return s.improvements[homeID], nil
}

func (s *memoryStore) RecordScore(ctx context.Context, homeID uuid.UUID, score float64, history ScoreHistoryEntry) error {
	home, ok := s.homes[homeID]
	if !ok {
		return ErrNotFound
	}
	home.CurrentScore = score
	home.ScoreUpdatedAt = time.Now()
	s.homes[homeID] = home
	s.checked[homeID] = home.ScoreUpdatedAt

	history.CreatedAt = home.ScoreUpdatedAt
	s.history[homeID] = append(s.history[homeID], history)
	return nil
}

func (s *memoryStore) TouchScoreChecked(ctx context.Context, homeID uuid.UUID) error {
	if _, ok := s.homes[homeID]; !ok {
		return ErrNotFound
	}
	s.checked[homeID] = time.Now()
	return nil
}

func (s *memoryStore) ListScoreHistory(ctx context.Context, homeID uuid.UUID) ([]ScoreHistoryEntry, error) {
	return s.history[homeID], nil
}

func (s *memoryStore) ListStaleHomeIDs(ctx context.Context, cutoff time.Time, limit int) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0)
	for id := range s.homes {
		if s.checked[id].Before(cutoff) && len(ids) < limit {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func newTestService(t *testing.T) (*Service, *memoryStore) {
	t.Helper()
	log := logger.New("development")
	store := newMemoryStore()
	engine := scoring.NewEngine(scoringTestConfig{}, log)
	return NewService(store, engine, events.NewInMemoryBus(log), log), store
}

func claimTestHome(t *testing.T, svc *Service, baseline float64) HomeRecord {
	t.Helper()
	home, err := svc.ClaimHome(context.Background(), ClaimRequest{
		OwnerID:            uuid.New(),
		Address:            "1 Example Street",
		Postcode:           "TV1 2AB",
		BaselineEfficiency: baseline,
	})
	if err != nil {
		t.Fatalf("claim failed: %v", err)
	}
	return home
}

func TestClaimHome_InitialScoreAndHistory(t *testing.T) {
	svc, _ := newTestService(t)

	home := claimTestHome(t, svc, 62)
	if home.CurrentScore != 62 {
		t.Fatalf("expected initial score 62, got %v", home.CurrentScore)
	}

	history, err := svc.ScoreHistory(context.Background(), home.ID)
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected one history entry, got %d", len(history))
	}
	if history[0].Reason != ReasonInitialClaim || history[0].Score != 62 {
		t.Fatalf("unexpected initial entry: %+v", history[0])
	}
}

func TestClaimHome_RejectsBadBaseline(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.ClaimHome(context.Background(), ClaimRequest{
		OwnerID:            uuid.New(),
		Address:            "1 Example Street",
		Postcode:           "TV1 2AB",
		BaselineEfficiency: 120,
	})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected KindValidation, got %v", err)
	}
}

func TestLogImprovement_RecordsScoresAndHistory(t *testing.T) {
	svc, _ := newTestService(t)
	home := claimTestHome(t, svc, 62)

	improvement, err := svc.LogImprovement(context.Background(), home.ID, uuid.New(), ImprovementRequest{
		Category:    "heat_pump",
		Cost:        9500,
		BeforeScore: 62,
		CompletedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("log improvement failed: %v", err)
	}
	if improvement.BeforeScore != 62 || improvement.AfterScore != 72 {
		t.Fatalf("expected 62 -> 72, got %v -> %v", improvement.BeforeScore, improvement.AfterScore)
	}

	// Logging records the improvement and its history entry but does not
	// touch the stored score until a recalculation.
	current, err := svc.GetHome(context.Background(), home.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if current.CurrentScore != 62 {
		t.Fatalf("expected stored score to remain 62, got %v", current.CurrentScore)
	}

	history, err := svc.ScoreHistory(context.Background(), home.ID)
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected two entries, got %d", len(history))
	}
	latest := history[len(history)-1]
	if latest.Reason != "heat_pump" || latest.Score != 72 {
		t.Fatalf("unexpected improvement entry: %+v", latest)
	}
}

func TestLogImprovement_RejectsStaleBeforeScore(t *testing.T) {
	svc, _ := newTestService(t)
	home := claimTestHome(t, svc, 62)

	_, err := svc.LogImprovement(context.Background(), home.ID, uuid.New(), ImprovementRequest{
		Category:    "glazing",
		BeforeScore: 55,
		CompletedAt: time.Now(),
	})
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected KindConflict for stale before score, got %v", err)
	}
}

func TestLogImprovement_RejectsUnknownCategory(t *testing.T) {
	svc, _ := newTestService(t)
	home := claimTestHome(t, svc, 62)

	_, err := svc.LogImprovement(context.Background(), home.ID, uuid.New(), ImprovementRequest{
		Category:    "hot_tub",
		BeforeScore: 62,
		CompletedAt: time.Now(),
	})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected KindValidation, got %v", err)
	}
}

func TestRecalculate_AfterImprovement(t *testing.T) {
	svc, _ := newTestService(t)
	home := claimTestHome(t, svc, 62)

	if _, err := svc.LogImprovement(context.Background(), home.ID, uuid.New(), ImprovementRequest{
		Category:    "heat_pump",
		BeforeScore: 62,
		CompletedAt: time.Now(),
	}); err != nil {
		t.Fatalf("log improvement failed: %v", err)
	}

	score, err := svc.Recalculate(context.Background(), home.ID, "manual")
	if err != nil {
		t.Fatalf("recalculate failed: %v", err)
	}
	if score != 72 {
		t.Fatalf("expected 72, got %v", score)
	}

	current, err := svc.GetHome(context.Background(), home.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if current.CurrentScore != 72 {
		t.Fatalf("expected persisted score 72, got %v", current.CurrentScore)
	}

	history, err := svc.ScoreHistory(context.Background(), home.ID)
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	latest := history[len(history)-1]
	if latest.Reason != ReasonRecalculation {
		t.Fatalf("expected recalculation entry, got %+v", latest)
	}
	if latest.Detail["old_score"] != 62.0 {
		t.Fatalf("expected detail old_score 62, got %v", latest.Detail)
	}
	if latest.Detail["trigger"] != "manual" {
		t.Fatalf("expected detail trigger manual, got %v", latest.Detail)
	}
}

func TestRecalculate_UnchangedScoreIsNoOp(t *testing.T) {
	svc, _ := newTestService(t)
	home := claimTestHome(t, svc, 62)

	score, err := svc.Recalculate(context.Background(), home.ID, "manual")
	if err != nil {
		t.Fatalf("recalculate failed: %v", err)
	}
	if score != 62 {
		t.Fatalf("expected 62, got %v", score)
	}

	history, err := svc.ScoreHistory(context.Background(), home.ID)
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected no new history entry, got %d entries", len(history))
	}
}

func TestRecalculate_UnchangedScoreStillRecordsCheck(t *testing.T) {
	svc, store := newTestService(t)
	home := claimTestHome(t, svc, 62)

	// Make the home look stale, then recalculate to an unchanged score.
	past := time.Now().Add(-48 * time.Hour)
	store.checked[home.ID] = past

	if _, err := svc.Recalculate(context.Background(), home.ID, "periodic"); err != nil {
		t.Fatalf("recalculate failed: %v", err)
	}

	ids, err := svc.StaleHomeIDs(context.Background(), time.Now().Add(-time.Hour), 10)
	if err != nil {
		t.Fatalf("stale listing failed: %v", err)
	}
	for _, id := range ids {
		if id == home.ID {
			t.Fatalf("home still listed as stale after an unchanged recalculation")
		}
	}
	if !store.checked[home.ID].After(past) {
		t.Fatalf("expected check timestamp to advance, still %v", store.checked[home.ID])
	}
}

func TestRecalculate_UnknownHome(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Recalculate(context.Background(), uuid.New(), "manual")
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected KindNotFound, got %v", err)
	}
}

func TestScoreHistory_AppendOnlyAcrossLifecycle(t *testing.T) {
	svc, _ := newTestService(t)
	home := claimTestHome(t, svc, 50)

	if _, err := svc.LogImprovement(context.Background(), home.ID, uuid.New(), ImprovementRequest{
		Category:    "solar_pv",
		BeforeScore: 50,
		CompletedAt: time.Now(),
	}); err != nil {
		t.Fatalf("log improvement failed: %v", err)
	}
	if _, err := svc.Recalculate(context.Background(), home.ID, "manual"); err != nil {
		t.Fatalf("recalculate failed: %v", err)
	}

	history, err := svc.ScoreHistory(context.Background(), home.ID)
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}

	reasons := make([]string, 0, len(history))
	for _, entry := range history {
		reasons = append(reasons, entry.Reason)
	}
	expected := []string{ReasonInitialClaim, "solar_pv", ReasonRecalculation}
	if len(reasons) != len(expected) {
		t.Fatalf("expected %v, got %v", expected, reasons)
	}
	for i := range expected {
		if reasons[i] != expected[i] {
			t.Fatalf("expected %v, got %v", expected, reasons)
		}
	}
}
