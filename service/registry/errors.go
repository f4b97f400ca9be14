package registry

import "errors"

// Common registry errors. Callers detect them with errors.Is rather than
// string comparison.
var (
	// ErrInvalidID is returned for identifiers that can never be issued (< 1).
	ErrInvalidID = errors.New("registry: invalid id")

	// ErrUnknownID is returned for identifiers that were never issued or
	// have already been removed.
	ErrUnknownID = errors.New("registry: unknown id")

	// ErrFull indicates the registry reached its live-entry capacity.
	ErrFull = errors.New("registry: full")

	// ErrNilEntity is returned when the caller attempts to register nil.
	ErrNilEntity = errors.New("registry: nil entity")
)
