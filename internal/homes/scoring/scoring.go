// Package scoring computes the normalized 0-100 home-energy score.
package scoring

import (
	"fmt"

	"ecohome_backend/platform/apperr"
	"ecohome_backend/platform/config"
	"ecohome_backend/platform/logger"
)

// Engine computes scores from a baseline efficiency and logged improvement
// categories. Pure: no persistence, no clock, no network.
type Engine struct {
	deltas map[string]float64
	log    *logger.Logger
}

// NewEngine creates a score engine with the configured category deltas.
func NewEngine(cfg config.ScoringConfig, log *logger.Logger) *Engine {
	return &Engine{deltas: cfg.GetScoreCategoryDeltas(), log: log}
}

// Compute returns the score for a home with the given baseline efficiency and
// improvement categories. Each distinct category counts once regardless of how
// often it appears, so the result is idempotent and order-independent. The
// result is clamped to [0,100].
func (e *Engine) Compute(baselineEfficiency float64, categories []string) (float64, error) {
	if baselineEfficiency < 0 || baselineEfficiency > 100 {
		return 0, apperr.Validation(fmt.Sprintf("baseline efficiency %v outside [0,100]", baselineEfficiency))
	}

	score := baselineEfficiency
	seen := make(map[string]struct{}, len(categories))
	for _, category := range categories {
		if _, dup := seen[category]; dup {
			continue
		}
		seen[category] = struct{}{}

		delta, ok := e.deltas[category]
		if !ok {
			// Unknown categories contribute nothing rather than failing:
			// delta tables shrink across calibration revisions but old
			// improvements stay on record.
			e.log.Warn("no score delta for category", "category", category)
			continue
		}
		score += delta
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score, nil
}
