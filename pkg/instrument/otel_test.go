package instrument

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/sigslot-dev/sigslot/pkg/sigslot"
)

// recordingTracer records span names and otherwise behaves like the noop
// tracer.
type recordingTracer struct {
	noop.Tracer
	names []string
}

func (t *recordingTracer) Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	t.names = append(t.names, name)
	return t.Tracer.Start(ctx, name, opts...)
}

type recordingProvider struct {
	noop.TracerProvider
	tracer *recordingTracer
}

func (p *recordingProvider) Tracer(name string, opts ...trace.TracerOption) trace.Tracer {
	return p.tracer
}

func TestTracingEmitsInsideSpan(t *testing.T) {
	rec := &recordingTracer{}
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(&recordingProvider{tracer: rec})
	defer otel.SetTracerProvider(prev)

	sig := sigslot.New[int](sigslot.WithName("orders"))
	traced := Tracing(sig, WithTracerName("test"))

	sum := 0
	sig.Connect(func(v int) { sum += v })

	traced.EmitContext(context.Background(), 5)
	traced.EmitContext(context.Background(), 7)

	if sum != 12 {
		t.Fatalf("traced Emit must fan out to slots, sum = %d", sum)
	}
	if len(rec.names) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(rec.names))
	}
	for _, name := range rec.names {
		if name != "sigslot.emit orders" {
			t.Errorf("unexpected span name %q", name)
		}
	}
}

func TestTracingWithNoopProvider(t *testing.T) {
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(noop.NewTracerProvider())
	defer otel.SetTracerProvider(prev)

	sig := sigslot.New[string]()
	traced := Tracing(sig)

	var got string
	sig.Connect(func(v string) { got = v })

	traced.EmitContext(context.Background(), "payload")

	if got != "payload" {
		t.Errorf("expected payload to reach slot under noop tracing, got %q", got)
	}
}
