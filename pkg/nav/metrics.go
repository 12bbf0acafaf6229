package nav

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Navigation result labels.
const (
	resultCommitted = "committed"
	resultFailed    = "failed"
	resultStale     = "stale"
	resultReload    = "reload"
)

// MetricsConfig configures navigation metrics.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "strada").
	Namespace string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for navigation duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

func (c *MetricsConfig) withDefaults() {
	if c.Namespace == "" {
		c.Namespace = "strada"
	}
	if c.Buckets == nil {
		c.Buckets = prometheus.DefBuckets
	}
	if c.Registry == nil {
		c.Registry = prometheus.DefaultRegisterer
	}
}

// Metrics holds the navigation instrumentation.
//
// Metrics collected:
//   - strada_navigations_total: Counter of navigations by result
//   - strada_navigation_duration_seconds: Histogram of committed navigation latency
//   - strada_prefetches_total: Counter of prefetches by strategy and result
type Metrics struct {
	Navigations *prometheus.CounterVec
	Duration    prometheus.Histogram
	Prefetches  *prometheus.CounterVec
}

// NewMetrics registers the navigation metrics with the configured registry.
func NewMetrics(config MetricsConfig) *Metrics {
	config.withDefaults()
	factory := promauto.With(config.Registry)

	return &Metrics{
		Navigations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "navigations_total",
			Help:        "Total number of navigations by result",
			ConstLabels: config.ConstLabels,
		}, []string{"result"}),

		Duration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Name:        "navigation_duration_seconds",
			Help:        "Committed navigation duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		Prefetches: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "prefetches_total",
			Help:        "Total number of prefetches by strategy and result",
			ConstLabels: config.ConstLabels,
		}, []string{"strategy", "result"}),
	}
}
