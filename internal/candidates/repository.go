package candidates

import "context"

// ListFilter narrows candidate listings.
type ListFilter struct {
	Search      string
	Status      string
	Blacklisted *bool
	Limit       int
	Offset      int
}

// Repository defines persistence operations for the candidates module.
type Repository interface {
	List(ctx context.Context, filter ListFilter) ([]Candidate, int, error)
	Get(ctx context.Context, id int64) (*Candidate, error)
	Insert(ctx context.Context, candidate Candidate) (*Candidate, error)
	UpdateStatus(ctx context.Context, id int64, status string, expectedVersion int, actor string) (*Candidate, error)
	Delete(ctx context.Context, id int64) error
	SetBlacklist(ctx context.Context, id int64, blacklisted bool, reason, actor string) (*Candidate, error)

	InsertComment(ctx context.Context, comment Comment) (*Comment, error)
	ListComments(ctx context.Context, candidateID int64) ([]Comment, error)
	GetComment(ctx context.Context, id int64) (*Comment, error)
	DeleteComment(ctx context.Context, id int64) error

	InsertNote(ctx context.Context, note Note) (*Note, error)
	ListNotes(ctx context.Context, candidateID int64) ([]Note, error)
	GetNote(ctx context.Context, id int64) (*Note, error)
	UpdateNote(ctx context.Context, id int64, body string) (*Note, error)
	SetNotePinned(ctx context.Context, id int64, pinned bool) (*Note, error)
	DeleteNote(ctx context.Context, id int64) error
	NotesByUser(ctx context.Context, userID int64) ([]Note, error)
	SearchNotes(ctx context.Context, userID int64, query string) ([]Note, error)
	CountNotes(ctx context.Context, candidateID int64) (int, error)
}
