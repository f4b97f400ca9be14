package spindle

import (
	"log"

	"github.com/viant/spindle/progress"
	"github.com/viant/spindle/service/channel"
	"github.com/viant/spindle/service/fiber"
	"github.com/viant/spindle/service/listener"
	"github.com/viant/spindle/service/process"
	"github.com/viant/spindle/service/shell"
	"github.com/viant/spindle/tracing"
)

// Service wires the runtime services together
type Service struct {
	runtime        *Runtime
	config         *Config
	compileHandler listener.RequestHandler
	runHandler     listener.RequestHandler
	onProgress     func(progress.Progress)
}

func (s *Service) init(options []Option) {
	for _, option := range options {
		option(s)
	}
	if t := s.config.Tracing; t.Enabled {
		if err := tracing.Init(t.ServiceName, t.ServiceVersion, t.OutputFile); err != nil {
			log.Printf("spindle: tracing disabled: %v", err)
		}
	}
	s.runtime.fibers = fiber.New(fiber.WithConfig(s.config.Fiber))
	s.runtime.channels = channel.New(channel.WithConfig(s.config.Channel))
	s.runtime.processes = process.New(
		process.WithConfig(s.config.Process),
		process.WithShell(shell.New(shell.WithConfig(s.config.Shell))),
	)
	if s.onProgress != nil {
		s.runtime.fibers.OnProgress(s.onProgress)
		s.runtime.processes.OnProgress(s.onProgress)
	}
	s.runtime.listenerOptions = []listener.Option{listener.WithConfig(s.config.Listener)}
	if s.compileHandler != nil {
		s.runtime.listenerOptions = append(s.runtime.listenerOptions, listener.WithCompileHandler(s.compileHandler))
	}
	if s.runHandler != nil {
		s.runtime.listenerOptions = append(s.runtime.listenerOptions, listener.WithRunHandler(s.runHandler))
	}
}

// Runtime returns the runtime
func (s *Service) Runtime() *Runtime {
	return s.runtime
}

// Config returns the effective configuration
func (s *Service) Config() *Config {
	return s.config
}

// New creates a runtime service
func New(options ...Option) *Service {
	ret := &Service{runtime: &Runtime{}, config: DefaultConfig()}
	ret.init(options)
	return ret
}
