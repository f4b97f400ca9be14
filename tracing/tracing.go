package tracing

import (
	"context"
	"io"
	"os"
	"strconv"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/viant/spindle"

// Span names recorded by the runtime.
const (
	SpanProcess = "process.run"
	SpanServe   = "listener.serve"
	SpanRequest = "listener.request"
)

var (
	providerOnce sync.Once
	providerErr  error
)

// Init installs the stdout exporter, writing to outputFile or os.Stdout when
// empty. Only the first successful Init or InitWithExporter takes effect.
func Init(serviceName, serviceVersion, outputFile string) error {
	var w io.Writer = os.Stdout
	if outputFile != "" {
		f, err := os.Create(outputFile)
		if err != nil {
			return err
		}
		w = f
	}
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		return err
	}
	return InitWithExporter(serviceName, serviceVersion, exporter)
}

// InitWithExporter installs exporter as the global span sink.
func InitWithExporter(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) error {
	if exporter == nil {
		return nil
	}
	providerOnce.Do(func() {
		res, err := resource.New(context.Background(), resource.WithAttributes(
			attribute.String("service.name", serviceName),
			attribute.String("service.version", serviceVersion),
		))
		if err != nil {
			providerErr = err
			return
		}
		otel.SetTracerProvider(sdktrace.NewTracerProvider(
			sdktrace.WithSpanProcessor(sdktrace.NewSimpleSpanProcessor(exporter)),
			sdktrace.WithResource(res),
		))
	})
	return providerErr
}

// Span wraps an OpenTelemetry span. A nil *Span is a valid no-op.
type Span struct {
	span trace.Span
}

func start(ctx context.Context, name string, kind trace.SpanKind, attrs ...attribute.KeyValue) (context.Context, *Span) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, name, trace.WithSpanKind(kind), trace.WithAttributes(attrs...))
	return ctx, &Span{span: span}
}

// StartProcess opens the span covering one supervised process, from spawn to
// exit event.
func StartProcess(ctx context.Context, command string) (context.Context, *Span) {
	return start(ctx, SpanProcess, trace.SpanKindInternal, attribute.String("process.command", command))
}

// StartServe opens the span covering a listener's lifetime; request spans
// started from the returned context become its children.
func StartServe(ctx context.Context, address string) (context.Context, *Span) {
	return start(ctx, SpanServe, trace.SpanKindServer, attribute.String("net.address", address))
}

// StartRequest opens the span for one HTTP request.
func StartRequest(ctx context.Context, method, target string) (context.Context, *Span) {
	return start(ctx, SpanRequest, trace.SpanKindServer,
		attribute.String("http.method", method),
		attribute.String("http.target", target),
	)
}

// FromContext returns the recording span carried by ctx.
func FromContext(ctx context.Context) (*Span, bool) {
	span := trace.SpanFromContext(ctx)
	if !span.SpanContext().IsValid() {
		return nil, false
	}
	return &Span{span: span}, true
}

// Started records the identity of a process once its child is running.
func (s *Span) Started(id int64, pid int) {
	if s == nil {
		return
	}
	s.span.SetAttributes(attribute.Int64("process.id", id), attribute.Int("process.pid", pid))
}

// Output records one chunk delivered to the handler.
func (s *Span) Output(stream string, size int) {
	s.AddEvent("process.output", attribute.String("stream", stream), attribute.Int("bytes", size))
}

// AddEvent records a point-in-time event.
func (s *Span) AddEvent(name string, attrs ...attribute.KeyValue) {
	if s == nil {
		return
	}
	s.span.AddEvent(name, trace.WithAttributes(attrs...))
}

// Exited records the exit code and ends the span; non-zero codes are errors.
func (s *Span) Exited(code int) {
	if s == nil {
		return
	}
	s.span.SetAttributes(attribute.Int("process.exit_code", code))
	if code != 0 {
		s.span.SetStatus(codes.Error, "exit code "+strconv.Itoa(code))
	} else {
		s.span.SetStatus(codes.Ok, "")
	}
	s.span.End()
}

// Finish ends the span, recording err when set.
func (s *Span) Finish(err error) {
	if s == nil {
		return
	}
	if err != nil {
		s.span.RecordError(err)
		s.span.SetStatus(codes.Error, err.Error())
	} else {
		s.span.SetStatus(codes.Ok, "")
	}
	s.span.End()
}
