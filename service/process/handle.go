package process

import (
	"os"
	"sync"
	"time"

	"github.com/viant/spindle/internal/clock"
	"github.com/viant/spindle/tracing"
)

// ExitCodeUnknown is reported while the process has not exited.
const ExitCodeUnknown = -999

// ExitCodeAbnormal is recorded when the child was killed by a signal or its
// status could not be collected.
const ExitCodeAbnormal = -1

// State represents process lifecycle state
type State int

const (
	StateStarting State = iota
	StateRunning
	StateExited
)

func (s State) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateExited:
		return "exited"
	}
	return "unknown"
}

// Handle is the supervisory state of one child process. After start it is
// mutated only by its monitor goroutine.
type Handle struct {
	id      int64
	command string
	handler Handler
	pid     int

	stdoutFd int
	stderrFd int
	stdoutW  *os.File
	stderrW  *os.File

	mu         sync.Mutex
	state      State
	exitCode   int
	startedAt  time.Time
	finishedAt time.Time

	span *tracing.Span
	done chan struct{}
}

func newHandle(command string, handler Handler) *Handle {
	return &Handle{
		command:  command,
		handler:  handler,
		stdoutFd: -1,
		stderrFd: -1,
		state:    StateStarting,
		exitCode: ExitCodeUnknown,
		done:     make(chan struct{}),
	}
}

// ID returns the process identity.
func (h *Handle) ID() int64 { return h.id }

// Command returns the shell command.
func (h *Handle) Command() string { return h.command }

// Pid returns the OS process id.
func (h *Handle) Pid() int { return h.pid }

// Done is closed once the monitor has finished.
func (h *Handle) Done() <-chan struct{} { return h.done }

// State returns the lifecycle state.
func (h *Handle) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// ExitCode returns the exit code or ExitCodeUnknown.
func (h *Handle) ExitCode() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.exitCode
}

// Elapsed returns the run time, up to now for running processes.
func (h *Handle) Elapsed() time.Duration {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.finishedAt.IsZero() {
		return clock.Since(h.startedAt)
	}
	return h.finishedAt.Sub(h.startedAt)
}

func (h *Handle) finished() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}
