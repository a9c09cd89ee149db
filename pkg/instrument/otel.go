package instrument

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/sigslot-dev/sigslot/pkg/sigslot"
)

// Default tracer name for sigslot instrumentation.
const defaultTracerName = "sigslot"

// TraceConfig configures emission tracing.
type TraceConfig struct {
	// TracerName is the name of the tracer (default: "sigslot").
	TracerName string

	// Attributes are added to every emission span.
	Attributes []attribute.KeyValue

	// tracer is the resolved tracer instance.
	tracer trace.Tracer
}

// TraceOption configures emission tracing.
type TraceOption func(*TraceConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) TraceOption {
	return func(c *TraceConfig) {
		c.TracerName = name
	}
}

// WithSpanAttributes adds custom attributes to every emission span.
func WithSpanAttributes(attrs ...attribute.KeyValue) TraceOption {
	return func(c *TraceConfig) {
		c.Attributes = append(c.Attributes, attrs...)
	}
}

// defaultTraceConfig returns the default tracing configuration.
func defaultTraceConfig() TraceConfig {
	return TraceConfig{
		TracerName: defaultTracerName,
	}
}

// Traced wraps a signal and records an OpenTelemetry span around every
// traced emission. All registry operations pass through to the embedded
// signal.
type Traced[T any] struct {
	*sigslot.Signal[T]

	config TraceConfig
}

// Tracing wraps sig so that EmitContext records a span per emission,
// carrying the signal name and the number of slots notified.
//
// The tracer comes from the global OpenTelemetry tracer provider.
// Configure it in your main() before emitting:
//
//	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
//	otel.SetTracerProvider(tp)
func Tracing[T any](sig *sigslot.Signal[T], opts ...TraceOption) *Traced[T] {
	config := defaultTraceConfig()
	for _, opt := range opts {
		opt(&config)
	}

	config.tracer = otel.Tracer(config.TracerName)

	return &Traced[T]{Signal: sig, config: config}
}

// EmitContext emits v inside a span. The span covers the full synchronous
// fan-out; slots run on the calling goroutine before EmitContext returns.
func (tr *Traced[T]) EmitContext(ctx context.Context, v T) {
	name := tr.Signal.Name()
	if name == "" {
		name = "unnamed"
	}

	attrs := []attribute.KeyValue{
		attribute.String("sigslot.signal", name),
		attribute.Int("sigslot.slots", tr.Signal.Len()),
	}
	attrs = append(attrs, tr.config.Attributes...)

	_, span := tr.config.tracer.Start(
		ctx,
		"sigslot.emit "+name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
	defer span.End()

	tr.Signal.Emit(v)

	span.SetStatus(codes.Ok, "")
}
