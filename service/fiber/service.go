package fiber

import (
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/viant/spindle/internal/clock"
	"github.com/viant/spindle/progress"
	"github.com/viant/spindle/service/registry"
)

// Config represents scheduler configuration
type Config struct {
	// MaxRunning bounds concurrently running fibers in concurrent mode, 0 means unbounded.
	MaxRunning int `json:"maxRunning" yaml:"maxRunning"`

	// MaxFibers bounds registered (not yet released) fibers, 0 means unbounded.
	MaxFibers int `json:"maxFibers" yaml:"maxFibers"`

	// Deterministic selects the initial scheduling mode.
	Deterministic bool `json:"deterministic" yaml:"deterministic"`
}

// DefaultConfig returns the default scheduler configuration
func DefaultConfig() Config {
	return Config{
		MaxRunning: 10000,
	}
}

// Service schedules fibers
type Service struct {
	config   Config
	registry *registry.Registry[Fiber]
	progress *progress.Progress
	running  atomic.Int64

	// mux guards the mode flag and the replay queue; it is never held while
	// a fiber body executes.
	mux           sync.Mutex
	deterministic bool
	queue         []int64
}

// New creates a fiber scheduler
func New(options ...Option) *Service {
	ret := &Service{config: DefaultConfig(), progress: progress.New("fiber")}
	for _, opt := range options {
		opt(ret)
	}
	ret.registry = registry.New[Fiber](ret.config.MaxFibers)
	ret.deterministic = ret.config.Deterministic
	return ret
}

// SetDeterministicMode toggles deterministic scheduling. Enabling resets the
// replay queue. Call once before spawning; switching with fibers in flight is
// unsupported.
func (s *Service) SetDeterministicMode(enabled bool) {
	s.mux.Lock()
	defer s.mux.Unlock()
	s.deterministic = enabled
	if enabled {
		s.queue = nil
	}
}

// Deterministic reports the current scheduling mode.
func (s *Service) Deterministic() bool {
	s.mux.Lock()
	defer s.mux.Unlock()
	return s.deterministic
}

// Spawn registers fn as a new fiber and returns its id. In concurrent mode
// the body starts immediately on its own goroutine; in deterministic mode it
// is queued until awaited. The fiber is registered before it can start.
func (s *Service) Spawn(fn Func) (int64, error) {
	if fn == nil {
		return 0, ErrInvalidInput
	}
	s.mux.Lock()
	defer s.mux.Unlock()

	aFiber := newFiber(fn, s.deterministic)
	if !aFiber.deterministic {
		if max := s.config.MaxRunning; max > 0 && s.running.Add(1) > int64(max) {
			s.running.Add(-1)
			return 0, fmt.Errorf("%w: %d", ErrCapacity, max)
		}
	}
	id, err := s.registry.Add(aFiber, func(id int64, f *Fiber) error {
		f.id = id
		return nil
	})
	if err != nil {
		if !aFiber.deterministic && s.config.MaxRunning > 0 {
			s.running.Add(-1)
		}
		return 0, err
	}

	if aFiber.deterministic {
		s.queue = append(s.queue, id)
		s.progress.Update(progress.Delta{Spawned: 1, Pending: 1})
		return id, nil
	}
	s.progress.Update(progress.Delta{Spawned: 1, Running: 1})
	go s.execute(aFiber)
	return id, nil
}

func (s *Service) execute(aFiber *Fiber) {
	if !aFiber.deterministic && s.config.MaxRunning > 0 {
		defer s.running.Add(-1)
	}
	if !aFiber.run() {
		return
	}
	if aFiber.panicErr != nil {
		log.Printf("fiber %d: recovered panic: %v", aFiber.id, aFiber.panicErr.Value)
		s.progress.Update(progress.Delta{Running: -1, Failed: 1})
		return
	}
	s.progress.Update(progress.Delta{Running: -1, Completed: 1})
}

// Await blocks until fiber id completes and returns its result. In
// deterministic mode it first executes, in spawn order, every pending queued
// fiber up to and including id. Awaiting the same id more than once returns
// the same result.
func (s *Service) Await(id int64) (int64, error) {
	aFiber, err := s.registry.Load(id)
	if err != nil {
		return 0, err
	}
	if aFiber.deterministic && aFiber.State() == StatePending {
		s.replay(aFiber)
	}
	return aFiber.outcome()
}

// replay runs the queued prefix ending at target on the calling goroutine.
func (s *Service) replay(target *Fiber) {
	s.mux.Lock()
	index := -1
	for i, id := range s.queue {
		if id == target.id {
			index = i
			break
		}
	}
	var batch []int64
	if index >= 0 {
		batch = append(batch, s.queue[:index+1]...)
	}
	s.mux.Unlock()

	if index < 0 {
		// dropped from the queue by a mode reset
		s.runQueued(target)
		return
	}
	for _, id := range batch {
		aFiber, err := s.registry.Load(id)
		if err != nil {
			continue
		}
		s.runQueued(aFiber)
	}
	s.prune()
}

func (s *Service) runQueued(aFiber *Fiber) {
	if aFiber.State() != StatePending {
		return
	}
	s.progress.Update(progress.Delta{Pending: -1, Running: 1})
	if !aFiber.run() {
		s.progress.Update(progress.Delta{Pending: 1, Running: -1})
		return
	}
	if aFiber.panicErr != nil {
		log.Printf("fiber %d: recovered panic: %v", aFiber.id, aFiber.panicErr.Value)
		s.progress.Update(progress.Delta{Running: -1, Failed: 1})
		return
	}
	s.progress.Update(progress.Delta{Running: -1, Completed: 1})
}

// prune drops completed fibers from the replay queue.
func (s *Service) prune() {
	s.mux.Lock()
	defer s.mux.Unlock()
	pending := s.queue[:0]
	for _, id := range s.queue {
		aFiber, err := s.registry.Load(id)
		if err != nil || aFiber.State() == StateCompleted {
			continue
		}
		pending = append(pending, id)
	}
	s.queue = pending
}

// Pending returns the ids of queued deterministic fibers that have not run yet.
func (s *Service) Pending() []int64 {
	s.mux.Lock()
	defer s.mux.Unlock()
	var ret []int64
	for _, id := range s.queue {
		if aFiber, err := s.registry.Load(id); err == nil && aFiber.State() == StatePending {
			ret = append(ret, id)
		}
	}
	return ret
}

// Lookup returns the fiber registered under id.
func (s *Service) Lookup(id int64) (*Fiber, error) {
	return s.registry.Load(id)
}

// Release frees the registry slot of a completed fiber.
func (s *Service) Release(id int64) error {
	_, err := s.registry.RemoveIf(id, func(f *Fiber) error {
		if f.State() != StateCompleted {
			return fmt.Errorf("%w: %d", ErrNotCompleted, id)
		}
		return nil
	})
	return err
}

// Sleep pauses the calling goroutine for d. It does not yield to other
// fibers and always returns 0.
func (s *Service) Sleep(d time.Duration) int64 {
	clock.Sleep(d)
	return 0
}

// Yield returns value unchanged. No suspension takes place: fibers are not
// suspendable mid-body.
func (s *Service) Yield(value int64) int64 {
	return value
}

// Stats returns a snapshot of fiber lifecycle counters.
func (s *Service) Stats() progress.Progress {
	return s.progress.Snapshot()
}

// OnProgress registers fn to receive a counter snapshot after every change.
func (s *Service) OnProgress(fn func(progress.Progress)) {
	s.progress.OnChange(fn)
}

// Count returns the number of registered fibers.
func (s *Service) Count() int {
	return s.registry.Len()
}
