package metrics

import "github.com/prometheus/client_golang/prometheus"

// Indexing pipeline Prometheus metrics.
var (
	IndexingRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "visearch",
			Name:      "indexing_runs_total",
			Help:      "Total number of indexing runs",
		},
		[]string{"status"}, // "completed" / "aborted" / "busy"
	)

	IndexingItemsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "visearch",
			Name:      "indexing_items_total",
			Help:      "Products processed by the indexing pipeline",
		},
		[]string{"outcome"}, // "stored" / "skipped"
	)

	IndexingPendingProducts = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "visearch",
			Name:      "indexing_pending_products",
			Help:      "Products still awaiting embedding in the current run",
		},
	)

	IndexingRunDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "visearch",
			Name:      "indexing_run_duration_seconds",
			Help:      "Indexing run duration in seconds",
			Buckets:   []float64{1, 5, 15, 60, 300, 900, 3600},
		},
	)
)

var idxMetricsRegistered bool

// RegisterIndexingMetrics registers Prometheus indexing metrics. Must be called once from main.
func RegisterIndexingMetrics() {
	if idxMetricsRegistered {
		return
	}
	prometheus.MustRegister(IndexingRunsTotal)
	prometheus.MustRegister(IndexingItemsTotal)
	prometheus.MustRegister(IndexingPendingProducts)
	prometheus.MustRegister(IndexingRunDuration)
	idxMetricsRegistered = true
}
