package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// TaskTagRecompute sweeps every active member through the tag rules.
	TaskTagRecompute = "tags:recompute"

	// TagRecomputeCron runs the sweep nightly at 03:00.
	TagRecomputeCron = "0 3 * * *"
)

// TagRecomputePayload carries scheduling metadata.
type TagRecomputePayload struct {
	ScheduledFor time.Time `json:"scheduled_for"`
}

// TagSweeper reapplies the active rule set to every active member.
// *members.Service satisfies it.
type TagSweeper interface {
	RecomputeAllTags(ctx context.Context) (int, error)
}

// NewTagRecomputeTask constructs an Asynq task for the nightly sweep.
func NewTagRecomputeTask(at time.Time) (*asynq.Task, error) {
	body, err := json.Marshal(TagRecomputePayload{ScheduledFor: at})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTagRecompute, body, asynq.Queue(QueueDefault)), nil
}

// TagRecomputeHandler returns the handler for TaskTagRecompute bound to
// the given sweeper.
func TagRecomputeHandler(sweeper TagSweeper, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload TagRecomputePayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		started := time.Now()
		updated, err := sweeper.RecomputeAllTags(ctx)
		if err != nil {
			logger.Error("tag recompute sweep", slog.Any("error", err))
			return err
		}
		logger.Info("tag recompute sweep done",
			slog.Int("updated", updated),
			slog.Duration("elapsed", time.Since(started)))
		return nil
	}
}

// EnqueueTagRecompute submits an immediate sweep.
func (c *Client) EnqueueTagRecompute(ctx context.Context) (*asynq.TaskInfo, error) {
	task, err := NewTagRecomputeTask(time.Now())
	if err != nil {
		return nil, err
	}
	return c.client.EnqueueContext(ctx, task, asynq.Queue(QueueDefault))
}
