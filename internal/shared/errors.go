package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthorized indicates a missing or rejected bearer token.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden indicates the actor lacks the required permission.
	ErrForbidden = errors.New("forbidden")
	// ErrVersionConflict indicates an optimistic-lock failure on update.
	ErrVersionConflict = errors.New("version conflict")
	// ErrDuplicate indicates a uniqueness violation (e.g. resume hash).
	ErrDuplicate = errors.New("duplicate record")
)
