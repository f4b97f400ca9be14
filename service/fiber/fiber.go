package fiber

import (
	"sync/atomic"
	"time"

	"github.com/viant/spindle/internal/clock"
)

// Func is a fiber body.
type Func func() int64

// State represents fiber lifecycle state
type State int32

const (
	StatePending State = iota
	StateRunning
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	}
	return "unknown"
}

// Fiber is one scheduled unit of work. Its result is written exactly once by
// whichever goroutine wins the Pending → Running transition.
type Fiber struct {
	id            int64
	fn            Func
	deterministic bool
	state         atomic.Int32
	result        int64
	panicErr      *PanicError
	done          chan struct{}
	SpawnedAt     time.Time
	CompletedAt   time.Time
}

func newFiber(fn Func, deterministic bool) *Fiber {
	return &Fiber{
		fn:            fn,
		deterministic: deterministic,
		done:          make(chan struct{}),
		SpawnedAt:     clock.Now(),
	}
}

// ID returns the fiber identity.
func (f *Fiber) ID() int64 { return f.id }

// State returns the current lifecycle state.
func (f *Fiber) State() State { return State(f.state.Load()) }

// Deterministic reports whether the fiber was spawned in deterministic mode.
func (f *Fiber) Deterministic() bool { return f.deterministic }

// Done is closed once the fiber has completed.
func (f *Fiber) Done() <-chan struct{} { return f.done }

// run executes the body if the fiber is still pending and reports whether
// this call performed the execution.
func (f *Fiber) run() (executed bool) {
	if !f.state.CompareAndSwap(int32(StatePending), int32(StateRunning)) {
		return false
	}
	executed = true
	defer func() {
		if r := recover(); r != nil {
			f.panicErr = newPanicError(f.id, r)
		}
		f.CompletedAt = clock.Now()
		f.state.Store(int32(StateCompleted))
		close(f.done)
	}()
	f.result = f.fn()
	return executed
}

// outcome returns the result once the fiber completed.
func (f *Fiber) outcome() (int64, error) {
	<-f.done
	if f.panicErr != nil {
		return f.result, f.panicErr
	}
	return f.result, nil
}
