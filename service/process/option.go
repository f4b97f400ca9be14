package process

import (
	"time"

	"github.com/viant/spindle/service/shell"
)

// Option configures the supervisor
type Option func(*Service)

// WithConfig sets the configuration
func WithConfig(config Config) Option {
	return func(s *Service) {
		s.config = config
	}
}

// WithMaxProcesses bounds live process handles
func WithMaxProcesses(n int) Option {
	return func(s *Service) {
		s.config.MaxProcesses = n
	}
}

// WithPollInterval sets the readiness wait timeout
func WithPollInterval(d time.Duration) Option {
	return func(s *Service) {
		s.config.PollInterval = d
	}
}

// WithChunkSize sets the maximum bytes per output event
func WithChunkSize(n int) Option {
	return func(s *Service) {
		s.config.ChunkSize = n
	}
}

// WithShell sets the shell used for the legacy synchronous path
func WithShell(srv *shell.Service) Option {
	return func(s *Service) {
		s.shell = srv
	}
}
