// Command home-score-backfill recomputes scores for homes whose score data
// is stale, in batches, directly against the database.
package main

import (
	"context"
	"os"
	"strconv"
	"time"

	"ecohome_backend/internal/events"
	"ecohome_backend/internal/homes"
	"ecohome_backend/platform/config"
	"ecohome_backend/platform/db"
	"ecohome_backend/platform/logger"
	"ecohome_backend/platform/validator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting home score backfill")

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	homesModule := homes.NewModule(pool, cfg, events.NewInMemoryBus(log), validator.New(), log)
	svc := homesModule.Service()

	stalenessDays := getPositiveIntEnv("SCORE_STALENESS_DAYS", 30)
	cutoff := time.Now().Add(-time.Duration(stalenessDays) * 24 * time.Hour)

	// Every recalculation, changed or not, records a check, so processed
	// homes leave the stale listing and the loop drains to empty. A home
	// whose recalculation errors would reappear; skip it for this run.
	const batchSize = 100
	failed := make(map[string]struct{})
	recalculated := 0
	for {
		ids, err := svc.StaleHomeIDs(ctx, cutoff, batchSize)
		if err != nil {
			log.Error("failed to list stale homes", "error", err)
			return
		}

		progress := false
		for _, id := range ids {
			if _, skip := failed[id.String()]; skip {
				continue
			}
			progress = true

			score, err := svc.Recalculate(ctx, id, "backfill")
			if err != nil {
				log.Error("recalculation failed", "homeId", id, "error", err)
				failed[id.String()] = struct{}{}
				continue
			}
			log.Info("home recalculated", "homeId", id, "score", score)
			recalculated++
		}

		if !progress {
			log.Info("backfill complete", "recalculated", recalculated, "failed", len(failed))
			return
		}
	}
}

func getPositiveIntEnv(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed < 1 {
		return fallback
	}
	return parsed
}
