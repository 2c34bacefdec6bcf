package scheduler

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"ecohome_backend/internal/homes"
	"ecohome_backend/platform/apperr"
	"ecohome_backend/platform/config"
	"ecohome_backend/platform/logger"
)

// Worker consumes recalculation tasks and runs them against the homes
// service.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	homes  *homes.Service
	log    *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, homesSvc *homes.Service, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server: server,
		mux:    mux,
		homes:  homesSvc,
		log:    log,
	}

	mux.HandleFunc(TaskScoreRecalculate, w.handleScoreRecalculate)

	return w, nil
}

func (w *Worker) handleScoreRecalculate(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseScoreRecalculatePayload(task)
	if err != nil {
		return err
	}

	homeID, err := uuid.Parse(payload.HomeID)
	if err != nil {
		return err
	}

	trigger := payload.Trigger
	if trigger == "" {
		trigger = "queued"
	}

	score, err := w.homes.Recalculate(ctx, homeID, trigger)
	if apperr.Is(err, apperr.KindNotFound) {
		// Home deleted between enqueue and processing; nothing to retry.
		w.log.Warn("recalculation for unknown home dropped", "home_id", payload.HomeID)
		return nil
	}
	if err != nil {
		return err
	}

	w.log.Info("score recalculated", "home_id", payload.HomeID, "score", score, "trigger", trigger)
	return nil
}

// Run blocks until the context is canceled.
func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}
