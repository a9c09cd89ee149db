package instrument

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/sigslot-dev/sigslot/pkg/sigslot"
)

// MetricsConfig configures the Prometheus emission metrics.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "sigslot").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for emit duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus emission metrics.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

// defaultMetricsConfig returns the default metrics configuration.
func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace:   "sigslot",
		Subsystem:   "",
		ConstLabels: nil,
		Buckets:     prometheus.DefBuckets,
		Registry:    prometheus.DefaultRegisterer,
	}
}

// metrics holds the Prometheus metrics shared by all counted signals.
type metrics struct {
	emitsTotal    *prometheus.CounterVec
	slotsNotified *prometheus.CounterVec
	emitDuration  *prometheus.HistogramVec
}

// globalMetrics is the singleton metrics instance, created on the first
// call to Metrics(). Later calls reuse it; their config is ignored.
var (
	globalMetrics   *metrics
	globalMetricsMu sync.Mutex
)

// initMetrics initializes the Prometheus metrics.
func initMetrics(config MetricsConfig) *metrics {
	factory := promauto.With(config.Registry)

	return &metrics{
		emitsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "emits_total",
			Help:        "Total number of signal emissions",
			ConstLabels: config.ConstLabels,
		}, []string{"signal"}),

		slotsNotified: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "slots_notified_total",
			Help:        "Total number of slot invocations across all emissions",
			ConstLabels: config.ConstLabels,
		}, []string{"signal"}),

		emitDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "emit_duration_seconds",
			Help:        "Duration of a full emission fan-out in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"signal"}),
	}
}

// Counted wraps a signal and records Prometheus metrics on every Emit.
// All other registry operations pass through to the embedded signal.
type Counted[T any] struct {
	*sigslot.Signal[T]

	label string
	m     *metrics
}

// Metrics wraps sig so that each Emit records an emission count, the
// number of slots notified, and the fan-out duration, labeled with the
// signal's name.
//
// The underlying metric set is process-wide and initialized on first use:
//
//	counted := instrument.Metrics(sig, instrument.WithNamespace("myapp"))
//	counted.Emit(payload)
//
//	// Expose the metrics endpoint
//	http.Handle("/metrics", promhttp.Handler())
func Metrics[T any](sig *sigslot.Signal[T], opts ...MetricsOption) *Counted[T] {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}

	globalMetricsMu.Lock()
	if globalMetrics == nil {
		globalMetrics = initMetrics(config)
	}
	m := globalMetrics
	globalMetricsMu.Unlock()

	label := sig.Name()
	if label == "" {
		label = "unnamed"
	}

	return &Counted[T]{Signal: sig, label: label, m: m}
}

// Emit invokes the underlying signal's Emit and records metrics for the
// emission. The slot count is sampled before fan-out, so slots that
// mutate the registry mid-emission do not skew the sample.
func (c *Counted[T]) Emit(v T) {
	slots := c.Signal.Len()
	start := time.Now()

	c.Signal.Emit(v)

	c.m.emitDuration.WithLabelValues(c.label).Observe(time.Since(start).Seconds())
	c.m.emitsTotal.WithLabelValues(c.label).Inc()
	c.m.slotsNotified.WithLabelValues(c.label).Add(float64(slots))
}
