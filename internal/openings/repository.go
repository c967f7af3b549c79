package openings

import "context"

// Repository defines persistence operations for job openings.
type Repository interface {
	List(ctx context.Context) ([]Opening, error)
	Get(ctx context.Context, id int64) (*Opening, error)
	Insert(ctx context.Context, opening Opening) (*Opening, error)
	Deactivate(ctx context.Context, id int64) error
}
