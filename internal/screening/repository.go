package screening

import (
	"context"
	"time"
)

// Repository defines persistence for screening batches, intake items,
// potentials, rejections, and the screening activity trail.
type Repository interface {
	InsertBatch(ctx context.Context, batch Batch) (*Batch, error)
	GetBatch(ctx context.Context, id int64) (*Batch, error)
	ListBatches(ctx context.Context, statuses []string) ([]Batch, error)
	SetBatchStatus(ctx context.Context, id int64, status string) (*Batch, error)
	SetBatchProgress(ctx context.Context, id int64, processed int) error
	DeleteBatch(ctx context.Context, id int64) error

	InsertItems(ctx context.Context, batchID int64, items []BatchItem) error
	PendingItems(ctx context.Context, batchID int64) ([]BatchItem, error)
	MarkItemProcessed(ctx context.Context, itemID int64) error

	InsertPotential(ctx context.Context, potential Potential) (*Potential, error)
	ListPotentials(ctx context.Context, batchID int64, excludeStatuses []string, limit, offset int) ([]Potential, int, error)
	GetPotential(ctx context.Context, id int64) (*Potential, error)
	SetPotentialStatus(ctx context.Context, id int64, status, assignedTo string) (*Potential, error)

	InsertRejected(ctx context.Context, rejected RejectedPotential) error
	ListRejected(ctx context.Context, batchID int64) ([]RejectedPotential, error)
	DeleteRejectedBefore(ctx context.Context, cutoff time.Time) (int64, error)

	InsertActivity(ctx context.Context, activity Activity) error
	ListActivities(ctx context.Context, batchID int64, limit int) ([]Activity, error)
}
