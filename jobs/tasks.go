package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/hireloop-ats/hireloop/internal/jobs"
	"github.com/hireloop-ats/hireloop/internal/screening"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeScreeningBatch processes one screening batch.
	TaskTypeScreeningBatch = "screening:process_batch"
	// TaskTypeRejectedCleanup purges stale rejected-potential records.
	TaskTypeRejectedCleanup = "screening:cleanup_rejected"
)

// rejectedRetention is how long not-interested records are kept before the
// nightly cleanup removes them.
const rejectedRetention = 30 * 24 * time.Hour

// ScreeningBatchPayload identifies the batch to process.
type ScreeningBatchPayload struct {
	BatchID int64 `json:"batch_id"`
}

// NewScreeningBatchTask constructs an Asynq task for a batch.
func NewScreeningBatchTask(batchID int64) (*asynq.Task, error) {
	data, err := json.Marshal(ScreeningBatchPayload{BatchID: batchID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeScreeningBatch, data), nil
}

// NewScreeningBatchHandler processes TaskTypeScreeningBatch tasks.
func NewScreeningBatchHandler(svc *screening.Service, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload ScreeningBatchPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		logger.Info("processing screening batch", slog.Int64("batch_id", payload.BatchID))
		tracker := jobmetrics.NewMetrics(nil).Track(TaskTypeScreeningBatch)
		if err := tracker.End(svc.ProcessBatch(ctx, payload.BatchID)); err != nil {
			logger.Error("screening batch failed",
				slog.Int64("batch_id", payload.BatchID),
				slog.Any("error", err))
			return err
		}
		return nil
	}
}

// NewRejectedCleanupTask constructs the nightly cleanup task.
func NewRejectedCleanupTask() *asynq.Task {
	return asynq.NewTask(TaskTypeRejectedCleanup, nil)
}

// NewRejectedCleanupHandler purges rejection records past retention.
func NewRejectedCleanupHandler(svc *screening.Service, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		tracker := jobmetrics.NewMetrics(nil).Track(TaskTypeRejectedCleanup)
		purged, err := svc.CleanupRejected(ctx, rejectedRetention)
		if err := tracker.End(err); err != nil {
			logger.Error("rejected cleanup failed", slog.Any("error", err))
			return err
		}
		logger.Info("rejected cleanup finished", slog.Int64("purged", purged))
		return nil
	}
}
