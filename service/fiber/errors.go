package fiber

import (
	"errors"
	"fmt"
	"runtime"
)

var (
	// ErrInvalidInput is returned by Spawn for a nil body.
	ErrInvalidInput = errors.New("fiber: nil function")

	// ErrCapacity is returned by Spawn when the running-fiber ceiling is reached.
	ErrCapacity = errors.New("fiber: running fiber limit reached")

	// ErrNotCompleted is returned by Release for a fiber that has not finished.
	ErrNotCompleted = errors.New("fiber: not completed")
)

// PanicError wraps a value recovered from a panicking fiber body together
// with the goroutine stack captured at the point of the panic.
type PanicError struct {
	FiberID int64
	Value   any
	Stack   string
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("fiber %d panic: %v\n\n%s", e.FiberID, e.Value, e.Stack)
}

func newPanicError(id int64, v any) *PanicError {
	buf := make([]byte, 8192)
	n := runtime.Stack(buf, false)
	return &PanicError{FiberID: id, Value: v, Stack: string(buf[:n])}
}
