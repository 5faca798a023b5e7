package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all prometheus metrics
type Metrics struct {
	StrategyAttempts *prometheus.CounterVec
	StrategyLatency  *prometheus.HistogramVec
	Resolutions      *prometheus.CounterVec
	DirectoryLookups *prometheus.CounterVec
	DirectoryLearns  prometheus.Counter
	DirectorySize    prometheus.Gauge
	ContextMerges    *prometheus.CounterVec
	ContextsSwept    prometheus.Counter
	ResolveTime      prometheus.Histogram
	ErrorsCount      *prometheus.CounterVec
}

// NewMetrics creates metrics registered on the default registerer
func NewMetrics(namespace string) *Metrics {
	return NewMetricsWithRegisterer(namespace, prometheus.DefaultRegisterer)
}

// NewMetricsWithRegisterer creates metrics on reg. Tests pass a fresh
// prometheus.NewRegistry() to avoid duplicate registration panics.
func NewMetricsWithRegisterer(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		StrategyAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extraction_attempts_total",
			Help:      "Extraction strategy invocations by outcome",
		}, []string{"strategy", "outcome"}),
		StrategyLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "extraction_latency_seconds",
			Help:      "Time taken by each extraction strategy",
			Buckets:   prometheus.DefBuckets,
		}, []string{"strategy"}),
		Resolutions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolutions_total",
			Help:      "Resolved queries by winning strategy",
		}, []string{"strategy"}),
		DirectoryLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "airline_lookups_total",
			Help:      "Airline directory lookups by match kind",
		}, []string{"match"}),
		DirectoryLearns: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "airline_learns_total",
			Help:      "The total number of airline learn calls",
		}),
		DirectorySize: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "airline_directory_records",
			Help:      "Number of airline records in the in-memory index",
		}),
		ContextMerges: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "context_merges_total",
			Help:      "Conversation context merges by turn kind",
		}, []string{"turn"}),
		ContextsSwept: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "contexts_swept_total",
			Help:      "Expired conversation contexts physically deleted",
		}),
		ResolveTime: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "resolve_time_seconds",
			Help:      "Time taken by resolve and merge",
			Buckets:   prometheus.DefBuckets,
		}),
		ErrorsCount: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "The total number of errors",
		}, []string{"operation"}),
	}
}
