package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search outcomes.
const (
	OutcomeShortCircuit = "short_circuit"
	OutcomeOK           = "ok"
	OutcomeError        = "error"
)

// Index ensure outcomes.
const (
	EnsureCreated = "created"
	EnsureExists  = "exists"
	EnsureError   = "error"
)

// Search Prometheus metrics.
var (
	SearchQueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "restodex",
			Name:      "search_queries_total",
			Help:      "Total number of search queries by outcome",
		},
		[]string{"outcome"},
	)

	SearchResults = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "restodex",
			Name:      "search_results",
			Help:      "Number of hits returned per executed search",
			Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100},
		},
	)

	IndexEnsureTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "restodex",
			Name:      "index_ensure_total",
			Help:      "Index ensure attempts by outcome",
		},
		[]string{"outcome"},
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers Prometheus search metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchQueriesTotal)
	prometheus.MustRegister(SearchResults)
	prometheus.MustRegister(IndexEnsureTotal)
	searchMetricsRegistered = true
}
