// Package shell runs commands synchronously through a local gosh session.
// It backs the legacy blocking execution path: the caller waits for the
// whole command and receives only its output and status, with no streaming.
package shell

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/viant/gosh"
	"github.com/viant/gosh/runner"
	"github.com/viant/gosh/runner/local"
)

// Config represents shell runner configuration
type Config struct {
	// Env is applied to the session before the first command runs.
	Env map[string]string `json:"env,omitempty" yaml:"env,omitempty"`
	// Timeout bounds a single command.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// DefaultConfig returns the default shell configuration
func DefaultConfig() Config {
	return Config{Timeout: time.Minute}
}

// Service executes commands one at a time in a lazily created local session.
type Service struct {
	config  Config
	mux     sync.Mutex
	session *gosh.Service
}

// Option configures the shell service
type Option func(*Service)

// WithConfig sets the configuration
func WithConfig(config Config) Option {
	return func(s *Service) { s.config = config }
}

// WithEnv sets environment variables for the session
func WithEnv(env map[string]string) Option {
	return func(s *Service) { s.config.Env = env }
}

// New creates a shell service
func New(options ...Option) *Service {
	ret := &Service{config: DefaultConfig()}
	for _, opt := range options {
		opt(ret)
	}
	return ret
}

// Run executes command and returns its stdout and exit status. It blocks for
// the full command duration. Each command runs in its own sh -c child with
// stdin detached, so exit, cd or exported variables never leak into the
// session or into later commands. A session that fails is dropped and
// recreated on the next call.
func (s *Service) Run(ctx context.Context, command string) (string, int, error) {
	if command == "" {
		return "", -1, fmt.Errorf("shell: empty command")
	}
	s.mux.Lock()
	defer s.mux.Unlock()
	session, err := s.ensureSession(ctx)
	if err != nil {
		return "", -1, err
	}
	timeout := s.config.Timeout
	if timeout <= 0 {
		timeout = DefaultConfig().Timeout
	}
	started := time.Now()
	stdout, status, err := session.Run(ctx, isolate(command), runner.WithTimeout(int(timeout.Milliseconds())))
	if err != nil {
		s.resetLocked()
		return stdout, -1, fmt.Errorf("shell: failed to run %v: %w", command, err)
	}
	if elapsed := time.Since(started); elapsed > timeout {
		s.resetLocked()
		return stdout, -1, fmt.Errorf("command %v timed out after: %s", command, elapsed)
	}
	return stdout, status, nil
}

// isolate wraps command in a child shell reading from /dev/null.
func isolate(command string) string {
	return "sh -c " + quote(command) + " < /dev/null"
}

// quote renders s as a single-quoted shell word.
func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func (s *Service) resetLocked() {
	if s.session == nil {
		return
	}
	_ = s.session.Close()
	s.session = nil
}

func (s *Service) ensureSession(ctx context.Context) (*gosh.Service, error) {
	if s.session != nil {
		return s.session, nil
	}
	var options []runner.Option
	if len(s.config.Env) > 0 {
		options = append(options, runner.WithEnvironment(s.config.Env))
	}
	session, err := gosh.New(ctx, local.New(options...))
	if err != nil {
		return nil, fmt.Errorf("shell: failed to start session: %w", err)
	}
	s.session = session
	return session, nil
}

// Close releases the session.
func (s *Service) Close() error {
	s.mux.Lock()
	defer s.mux.Unlock()
	if s.session == nil {
		return nil
	}
	err := s.session.Close()
	s.session = nil
	return err
}
