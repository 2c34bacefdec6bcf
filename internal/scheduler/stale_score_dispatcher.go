package scheduler

import (
	"context"
	"time"

	"ecohome_backend/internal/homes"
	"ecohome_backend/platform/logger"
)

const (
	defaultDispatchInterval = time.Hour
	defaultScoreStaleness   = 30 * 24 * time.Hour
	defaultDispatchBatch    = 200
)

// StaleScoreDispatcher periodically enqueues recalculations for homes whose
// score has not been recomputed recently.
type StaleScoreDispatcher struct {
	homes     *homes.Service
	scheduler RecalculationScheduler
	log       *logger.Logger
	interval  time.Duration
	staleness time.Duration
	batch     int
}

func NewStaleScoreDispatcher(homesSvc *homes.Service, scheduler RecalculationScheduler, log *logger.Logger, interval, staleness time.Duration, batch int) *StaleScoreDispatcher {
	if interval <= 0 {
		interval = defaultDispatchInterval
	}
	if staleness <= 0 {
		staleness = defaultScoreStaleness
	}
	if batch <= 0 {
		batch = defaultDispatchBatch
	}

	return &StaleScoreDispatcher{
		homes:     homesSvc,
		scheduler: scheduler,
		log:       log,
		interval:  interval,
		staleness: staleness,
		batch:     batch,
	}
}

func (d *StaleScoreDispatcher) Run(ctx context.Context) {
	if d == nil || d.homes == nil || d.scheduler == nil {
		return
	}

	d.dispatch(ctx)

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.dispatch(ctx)
		}
	}
}

func (d *StaleScoreDispatcher) dispatch(ctx context.Context) {
	cutoff := time.Now().Add(-d.staleness)
	ids, err := d.homes.StaleHomeIDs(ctx, cutoff, d.batch)
	if err != nil {
		d.log.Warn("stale score listing failed", "error", err)
		return
	}
	if len(ids) == 0 {
		return
	}

	enqueued := 0
	for _, id := range ids {
		err := d.scheduler.EnqueueScoreRecalculation(ctx, ScoreRecalculatePayload{
			HomeID:  id.String(),
			Trigger: "periodic",
		})
		if err != nil {
			d.log.Warn("recalculation enqueue failed", "home_id", id, "error", err)
			continue
		}
		enqueued++
	}

	if enqueued > 0 {
		d.log.Info("queued stale score recalculations", "count", enqueued)
	}
}
