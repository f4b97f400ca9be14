package idgen

import (
	"sync/atomic"

	"github.com/google/uuid"
)

// NewFunc returns a new globally unique run identifier. It is a variable so
// tests can stub it.
var NewFunc = func() string { return uuid.New().String() }

// New returns a new run identifier.
func New() string { return NewFunc() }

// Sequence is a monotonic int64 generator starting at 1. Values are never
// reused for the lifetime of the sequence.
type Sequence struct {
	last atomic.Int64
}

// Next returns the next identifier.
func (s *Sequence) Next() int64 {
	return s.last.Add(1)
}

// Last returns the most recently issued identifier, or 0 if none was issued.
func (s *Sequence) Last() int64 {
	return s.last.Load()
}
