package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors a request's lifecycle feeds:
// read latency, cache hit rate, offload counts per reader kind, and
// backend error rate — the counters named in the engine's observability
// surface.
type Metrics struct {
	ReadDuration   *prometheus.HistogramVec
	OffloadsTotal  *prometheus.CounterVec
	CacheHits      prometheus.Counter
	CacheMisses    prometheus.Counter
	BackendErrors  *prometheus.CounterVec
}

// NewMetrics registers and returns the engine's collectors against reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ReadDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "graphqueryreader",
			Name:      "read_duration_seconds",
			Help:      "Time to execute one required-tree request, end to end.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"root_key"}),
		OffloadsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "graphqueryreader",
			Name:      "offloads_total",
			Help:      "Count of reader-to-reader offloads, by target reader kind.",
		}, []string{"reader_kind"}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "graphqueryreader",
			Name:      "config_cache_hits_total",
			Help:      "Count of (path, config) pairs skipped due to the per-request cache.",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "graphqueryreader",
			Name:      "config_cache_misses_total",
			Help:      "Count of (path, config) pairs materialized because they were not cached.",
		}),
		BackendErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "graphqueryreader",
			Name:      "backend_errors_total",
			Help:      "Count of backend errors surfaced to a response, by error type.",
		}, []string{"error_type"}),
	}

	reg.MustRegister(m.ReadDuration, m.OffloadsTotal, m.CacheHits, m.CacheMisses, m.BackendErrors)
	return m
}
