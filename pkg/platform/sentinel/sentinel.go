// Package sentinel holds the storage-level facts every store reports.
// Services translate them into domain errors; input validation belongs in
// pkg/domain-errors instead.
package sentinel

import "errors"

var (
	// ErrNotFound: no row for the key.
	ErrNotFound = errors.New("not found")
	// ErrConflict: a uniqueness constraint rejected the write.
	ErrConflict = errors.New("conflict")
	// ErrInUse: the row is still referenced, e.g. a leader with affiliates.
	ErrInUse = errors.New("in use")
	// ErrInvalidState: the write would break a record invariant.
	ErrInvalidState = errors.New("invalid state")
)
