package spindle

import (
	"github.com/viant/spindle/progress"
	"github.com/viant/spindle/service/channel"
	"github.com/viant/spindle/service/fiber"
	"github.com/viant/spindle/service/listener"
	"github.com/viant/spindle/service/process"
	"github.com/viant/spindle/service/shell"
	"github.com/viant/spindle/tracing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Option configures the Service
type Option func(s *Service)

// WithConfig replaces the whole configuration
func WithConfig(config *Config) Option {
	return func(s *Service) {
		if config != nil {
			s.config = config
		}
	}
}

// WithFiberConfig sets the scheduler configuration
func WithFiberConfig(config fiber.Config) Option {
	return func(s *Service) { s.config.Fiber = config }
}

// WithDeterministicMode selects the initial scheduling mode
func WithDeterministicMode(enabled bool) Option {
	return func(s *Service) { s.config.Fiber.Deterministic = enabled }
}

// WithChannelConfig sets the channel service configuration
func WithChannelConfig(config channel.Config) Option {
	return func(s *Service) { s.config.Channel = config }
}

// WithProcessConfig sets the supervisor configuration
func WithProcessConfig(config process.Config) Option {
	return func(s *Service) { s.config.Process = config }
}

// WithShellConfig sets the legacy shell runner configuration
func WithShellConfig(config shell.Config) Option {
	return func(s *Service) { s.config.Shell = config }
}

// WithListenerConfig sets the HTTP listener configuration
func WithListenerConfig(config listener.Config) Option {
	return func(s *Service) { s.config.Listener = config }
}

// WithCompileHandler sets the handler behind POST /api/compile
func WithCompileHandler(handler listener.RequestHandler) Option {
	return func(s *Service) { s.compileHandler = handler }
}

// WithRunHandler sets the handler behind POST /api/run
func WithRunHandler(handler listener.RequestHandler) Option {
	return func(s *Service) { s.runHandler = handler }
}

// WithProgressListener receives fiber and process counter snapshots after
// every change; Component tells them apart. fn runs on the goroutine that
// made the change and must not block.
func WithProgressListener(fn func(progress.Progress)) Option {
	return func(s *Service) { s.onProgress = fn }
}

// WithTracing configures OpenTelemetry tracing for the service. If outputFile is empty the
// stdout exporter is used; otherwise traces are written to the supplied file path. The function is
// safe to call multiple times – the first successful initialisation wins.
func WithTracing(serviceName, serviceVersion, outputFile string) Option {
	return func(s *Service) {
		_ = tracing.Init(serviceName, serviceVersion, outputFile)
	}
}

// WithTracingExporter configures OpenTelemetry tracing using a custom SpanExporter.
func WithTracingExporter(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) Option {
	return func(s *Service) {
		_ = tracing.InitWithExporter(serviceName, serviceVersion, exporter)
	}
}
