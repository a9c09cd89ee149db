package instrument

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/sigslot-dev/sigslot/pkg/sigslot"
)

func resetGlobalMetricsForTest() {
	globalMetricsMu.Lock()
	globalMetrics = nil
	globalMetricsMu.Unlock()
}

func metricCounterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("counter Write() error: %v", err)
	}
	if m.Counter == nil {
		t.Fatal("expected counter metric to have Counter field")
	}
	return m.GetCounter().GetValue()
}

func metricHistogramCount(t *testing.T, o prometheus.Observer) uint64 {
	t.Helper()
	metric, ok := o.(prometheus.Metric)
	if !ok {
		t.Fatalf("observer %T does not implement prometheus.Metric", o)
	}
	var m dto.Metric
	if err := metric.Write(&m); err != nil {
		t.Fatalf("histogram Write() error: %v", err)
	}
	if m.Histogram == nil {
		t.Fatal("expected histogram metric to have Histogram field")
	}
	return m.GetHistogram().GetSampleCount()
}

func TestMetricsRecordsEmissions(t *testing.T) {
	resetGlobalMetricsForTest()
	reg := prometheus.NewRegistry()

	sig := sigslot.New[int](sigslot.WithName("clicks"))
	counted := Metrics(sig, WithRegistry(reg))

	sum := 0
	sig.Connect(func(v int) { sum += v })
	sig.ConnectBound(func(ctx any, v int) { *ctx.(*int) += v }, &sum)

	counted.Emit(3)
	counted.Emit(4)

	if sum != 14 {
		t.Fatalf("wrapped Emit must fan out to slots, sum = %d", sum)
	}

	m := globalMetrics
	if got := metricCounterValue(t, m.emitsTotal.WithLabelValues("clicks")); got != 2 {
		t.Errorf("emits_total = %v, want 2", got)
	}
	if got := metricCounterValue(t, m.slotsNotified.WithLabelValues("clicks")); got != 4 {
		t.Errorf("slots_notified_total = %v, want 4", got)
	}
	if got := metricHistogramCount(t, m.emitDuration.WithLabelValues("clicks")); got != 2 {
		t.Errorf("emit_duration_seconds sample count = %v, want 2", got)
	}
}

func TestMetricsUnnamedSignalLabel(t *testing.T) {
	resetGlobalMetricsForTest()
	reg := prometheus.NewRegistry()

	counted := Metrics(sigslot.New[string](), WithRegistry(reg))
	counted.Emit("hello")

	if got := metricCounterValue(t, globalMetrics.emitsTotal.WithLabelValues("unnamed")); got != 1 {
		t.Errorf(`emits_total{signal="unnamed"} = %v, want 1`, got)
	}
}

func TestMetricsSharedAcrossSignals(t *testing.T) {
	resetGlobalMetricsForTest()
	reg := prometheus.NewRegistry()

	a := Metrics(sigslot.New[int](sigslot.WithName("a")), WithRegistry(reg))
	b := Metrics(sigslot.New[int](sigslot.WithName("b")), WithRegistry(reg))

	if a.m != b.m {
		t.Fatal("expected both wrappers to share the process-wide metric set")
	}

	a.Emit(1)
	b.Emit(1)
	b.Emit(1)

	if got := metricCounterValue(t, globalMetrics.emitsTotal.WithLabelValues("a")); got != 1 {
		t.Errorf(`emits_total{signal="a"} = %v, want 1`, got)
	}
	if got := metricCounterValue(t, globalMetrics.emitsTotal.WithLabelValues("b")); got != 2 {
		t.Errorf(`emits_total{signal="b"} = %v, want 2`, got)
	}
}
