// Package scheduler queues and runs asynchronous score recalculations.
package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskScoreRecalculate = "homes.score.recalculate"

// ScoreRecalculatePayload identifies a home whose score should be recomputed
// and what triggered it (e.g. "periodic", "backfill").
type ScoreRecalculatePayload struct {
	HomeID  string `json:"homeId"`
	Trigger string `json:"trigger"`
}

func NewScoreRecalculateTask(payload ScoreRecalculatePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskScoreRecalculate, data), nil
}

func ParseScoreRecalculatePayload(task *asynq.Task) (ScoreRecalculatePayload, error) {
	var payload ScoreRecalculatePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return ScoreRecalculatePayload{}, err
	}
	return payload, nil
}
