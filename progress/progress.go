package progress

import (
	"sync"
	"time"

	"github.com/viant/spindle/internal/clock"
)

// Delta represents an incremental counter change emitted by the scheduler or
// the process supervisor. The fields are signed and therefore can be either
// positive (increment) or negative (decrement).
type Delta struct {
	Spawned   int
	Completed int
	Failed    int
	Running   int
	Pending   int
}

// Progress keeps aggregated counters for one kind of runtime entity. It is
// safe for concurrent use.
type Progress struct {
	// Component names the tracked entity kind, e.g. "fiber" or "process".
	Component string
	StartedAt time.Time

	Spawned   int
	Completed int
	Failed    int
	Running   int
	Pending   int

	sync.Mutex
	onChange func(Progress)
}

// New creates a tracker for the supplied component.
func New(component string) *Progress {
	return &Progress{Component: component, StartedAt: clock.Now()}
}

// Update applies the supplied delta to the tracker. If an onChange callback
// has been registered it is invoked with a copy of the updated tracker outside
// the critical section.
func (p *Progress) Update(d Delta) {
	if p == nil {
		return
	}

	p.Lock()
	p.Spawned += d.Spawned
	p.Completed += d.Completed
	p.Failed += d.Failed
	p.Running += d.Running
	p.Pending += d.Pending

	snapshot := p.copyLocked()
	cb := p.onChange
	p.Unlock()

	if cb != nil {
		cb(snapshot)
	}
}

// Snapshot returns a copy of the tracker suitable for read-only inspection.
func (p *Progress) Snapshot() Progress {
	if p == nil {
		return Progress{}
	}
	p.Lock()
	defer p.Unlock()
	return p.copyLocked()
}

// OnChange registers a callback that is invoked after every Update. Passing
// nil disables the callback. Only one callback can be active.
func (p *Progress) OnChange(cb func(Progress)) {
	if p == nil {
		return
	}
	p.Lock()
	p.onChange = cb
	p.Unlock()
}

func (p *Progress) copyLocked() Progress {
	return Progress{
		Component: p.Component,
		StartedAt: p.StartedAt,
		Spawned:   p.Spawned,
		Completed: p.Completed,
		Failed:    p.Failed,
		Running:   p.Running,
		Pending:   p.Pending,
	}
}
