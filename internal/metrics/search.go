package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search pipeline Prometheus metrics.
var (
	AdapterRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sheetsearch",
			Name:      "adapter_requests_total",
			Help:      "Total retrieval adapter invocations",
		},
		[]string{"kind", "status"},
	)

	AdapterDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "sheetsearch",
			Name:      "adapter_duration_seconds",
			Help:      "Retrieval adapter duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"kind"},
	)

	AdapterHits = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "sheetsearch",
			Name:      "adapter_hits",
			Help:      "Candidates returned per adapter invocation",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50},
		},
		[]string{"kind"},
	)

	RerankStageTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sheetsearch",
			Name:      "rerank_stage_total",
			Help:      "Rerank cascade stage outcomes",
		},
		[]string{"stage", "status"}, // status: "ok" / "error" / "skipped"
	)

	ResponseCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sheetsearch",
			Name:      "response_cache_total",
			Help:      "Response cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	SearchOutcomeTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sheetsearch",
			Name:      "search_outcome_total",
			Help:      "Search outcomes by kind",
		},
		[]string{"outcome"},
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers search pipeline metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(AdapterRequestsTotal)
	prometheus.MustRegister(AdapterDuration)
	prometheus.MustRegister(AdapterHits)
	prometheus.MustRegister(RerankStageTotal)
	prometheus.MustRegister(ResponseCacheTotal)
	prometheus.MustRegister(SearchOutcomeTotal)
	searchMetricsRegistered = true
}
