package activity

import "context"

// Repository defines persistence for activity entries.
type Repository interface {
	Insert(ctx context.Context, entry Entry) error
	List(ctx context.Context, limit, offset int) ([]Entry, int, error)
}
