package errs

import "errors"

// Common sentinel errors for cross-layer signaling.
var (
	ErrNotFound  = errors.New("not_found")
	ErrForbidden = errors.New("forbidden")
	ErrInvalid   = errors.New("invalid")
	// ErrConflict indicates the stored previous state no longer matches what
	// the caller captured (a concurrent edit); the write is refused rather
	// than risk a wrong balance delta.
	ErrConflict = errors.New("conflict")
	// ErrInUse indicates a delete was refused because other rows still
	// reference the entity.
	ErrInUse = errors.New("in_use")
)
