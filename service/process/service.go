package process

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/viant/spindle/internal/clock"
	"github.com/viant/spindle/progress"
	"github.com/viant/spindle/service/registry"
	"github.com/viant/spindle/service/shell"
	"github.com/viant/spindle/tracing"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sys/unix"
)

// Config represents supervisor configuration
type Config struct {
	// MaxProcesses bounds handles that were spawned and not yet cleaned up, 0 means unbounded.
	MaxProcesses int `json:"maxProcesses" yaml:"maxProcesses"`

	// Shell is the interpreter used to run commands.
	Shell string `json:"shell" yaml:"shell"`

	// PollInterval bounds a single readiness wait.
	PollInterval time.Duration `json:"pollInterval" yaml:"pollInterval"`

	// ChunkSize is the maximum number of bytes delivered per output event.
	ChunkSize int `json:"chunkSize" yaml:"chunkSize"`
}

// DefaultConfig returns the default supervisor configuration
func DefaultConfig() Config {
	return Config{
		MaxProcesses: 1000,
		Shell:        "/bin/sh",
		PollInterval: 100 * time.Millisecond,
		ChunkSize:    1023,
	}
}

// Service supervises child processes
type Service struct {
	config   Config
	registry *registry.Registry[Handle]
	progress *progress.Progress
	shell    *shell.Service
}

// New creates a process supervisor
func New(options ...Option) *Service {
	ret := &Service{config: DefaultConfig(), progress: progress.New("process")}
	for _, opt := range options {
		opt(ret)
	}
	defaults := DefaultConfig()
	if ret.config.Shell == "" {
		ret.config.Shell = defaults.Shell
	}
	if ret.config.PollInterval <= 0 {
		ret.config.PollInterval = defaults.PollInterval
	}
	if ret.config.ChunkSize <= 0 {
		ret.config.ChunkSize = defaults.ChunkSize
	}
	if ret.shell == nil {
		ret.shell = shell.New()
	}
	ret.registry = registry.New[Handle](ret.config.MaxProcesses)
	return ret
}

// SpawnWithHandler starts command through the shell and returns the process
// id. Events are delivered to handler from the process's monitor goroutine.
// On any failure no handle is registered and every descriptor is closed.
// The id is reserved first so fork and exec run without the registry lock.
func (s *Service) SpawnWithHandler(ctx context.Context, command string, handler Handler) (id int64, err error) {
	if command == "" || handler == nil {
		return 0, ErrInvalidInput
	}
	caller, traced := tracing.FromContext(ctx)
	_, span := tracing.StartProcess(ctx, command)

	aHandle := newHandle(command, handler)
	aHandle.span = span
	if id, err = s.registry.Reserve(); err != nil {
		span.Finish(err)
		return 0, err
	}
	aHandle.id = id
	if err = s.start(aHandle); err != nil {
		s.registry.Cancel(id)
		span.Finish(err)
		return 0, err
	}
	if err = s.registry.Publish(id, aHandle); err != nil {
		s.abort(aHandle)
		span.Finish(err)
		return 0, err
	}
	span.Started(id, aHandle.pid)
	if traced {
		caller.AddEvent("process.spawned", attribute.Int64("process.id", id), attribute.Int("process.pid", aHandle.pid))
	}
	s.progress.Update(progress.Delta{Spawned: 1, Running: 1})
	go s.monitor(aHandle)
	return id, nil
}

// start creates the pipes and the child. It runs before the handle becomes
// visible in the registry and without holding its lock.
func (s *Service) start(h *Handle) error {
	var stdoutFds, stderrFds [2]int
	if err := unix.Pipe2(stdoutFds[:], unix.O_CLOEXEC); err != nil {
		return fmt.Errorf("%w: %v", ErrPipe, err)
	}
	if err := unix.Pipe2(stderrFds[:], unix.O_CLOEXEC); err != nil {
		closeFds(stdoutFds[0], stdoutFds[1])
		return fmt.Errorf("%w: %v", ErrPipe, err)
	}
	stdoutW := os.NewFile(uintptr(stdoutFds[1]), "stdout")
	stderrW := os.NewFile(uintptr(stderrFds[1]), "stderr")

	proc, err := os.StartProcess(s.config.Shell, []string{"sh", "-c", h.command}, &os.ProcAttr{
		Env:   os.Environ(),
		Files: []*os.File{os.Stdin, stdoutW, stderrW},
	})
	if err != nil {
		_ = stdoutW.Close()
		_ = stderrW.Close()
		closeFds(stdoutFds[0], stderrFds[0])
		return fmt.Errorf("%w: %v", ErrFork, err)
	}
	h.pid = proc.Pid
	// the child is reaped with wait4 by the monitor
	_ = proc.Release()

	h.stdoutFd, h.stderrFd = stdoutFds[0], stderrFds[0]
	h.stdoutW, h.stderrW = stdoutW, stderrW
	h.mu.Lock()
	h.state = StateRunning
	h.startedAt = clock.Now()
	h.mu.Unlock()
	return nil
}

// abort kills and reaps a started child that could not be published.
func (s *Service) abort(h *Handle) {
	_ = unix.Kill(h.pid, unix.SIGKILL)
	var status unix.WaitStatus
	_, _ = unix.Wait4(h.pid, &status, 0, nil)
	_ = h.stdoutW.Close()
	_ = h.stderrW.Close()
	closeFds(h.stdoutFd, h.stderrFd)
}

// Await blocks until the monitor of process id has finished and returns the
// recorded exit code.
func (s *Service) Await(id int64) (int, error) {
	aHandle, err := s.registry.Load(id)
	if err != nil {
		return ExitCodeAbnormal, err
	}
	<-aHandle.done
	return aHandle.ExitCode(), nil
}

// Cleanup releases the handle of an exited process. Unknown or already
// removed ids are reported and otherwise ignored.
func (s *Service) Cleanup(id int64) error {
	_, err := s.registry.RemoveIf(id, func(h *Handle) error {
		if !h.finished() {
			return fmt.Errorf("%w: %d", ErrStillRunning, id)
		}
		return nil
	})
	return err
}

// Lookup returns the handle registered under id.
func (s *Service) Lookup(id int64) (*Handle, error) {
	return s.registry.Load(id)
}

// State returns the lifecycle state of process id.
func (s *Service) State(id int64) (State, error) {
	aHandle, err := s.registry.Load(id)
	if err != nil {
		return StateExited, err
	}
	return aHandle.State(), nil
}

// Run is the legacy synchronous path: it blocks for the whole command and
// returns its output and status with no streaming.
func (s *Service) Run(ctx context.Context, command string) (string, int, error) {
	if command == "" {
		return "", ExitCodeAbnormal, ErrInvalidInput
	}
	return s.shell.Run(ctx, command)
}

// Stats returns a snapshot of process lifecycle counters.
func (s *Service) Stats() progress.Progress {
	return s.progress.Snapshot()
}

// OnProgress registers fn to receive a counter snapshot after every change.
func (s *Service) OnProgress(fn func(progress.Progress)) {
	s.progress.OnChange(fn)
}

// Count returns the number of registered handles.
func (s *Service) Count() int {
	return s.registry.Len()
}

// Close releases the legacy shell session.
func (s *Service) Close() error {
	return s.shell.Close()
}

func closeFds(fds ...int) {
	for _, fd := range fds {
		if fd >= 0 {
			_ = unix.Close(fd)
		}
	}
}

func exitCodeText(code int) string {
	return strconv.Itoa(code)
}
