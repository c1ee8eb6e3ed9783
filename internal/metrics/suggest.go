package metrics

import "github.com/prometheus/client_golang/prometheus"

// Suggestion pipeline Prometheus metrics.
var (
	SuggestRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "claimsight",
			Name:      "suggest_requests_total",
			Help:      "Total number of suggestion cycles",
		},
		[]string{"source", "status"}, // source: "ws" / "http"
	)

	SuggestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "claimsight",
			Name:      "suggest_duration_seconds",
			Help:      "End-to-end suggestion cycle duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"source"},
	)

	SuggestResults = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "claimsight",
			Name:      "suggest_results",
			Help:      "Number of suggestions returned per cycle",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50},
		},
	)

	CitationDropsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "claimsight",
			Name:      "citation_drops_total",
			Help:      "Results dropped because citation resolution failed",
		},
	)

	WSConnectionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "claimsight",
			Name:      "ws_connections_active",
			Help:      "Currently connected WebSocket clients",
		},
	)
)

var suggestMetricsRegistered bool

// RegisterSuggestMetrics registers suggestion pipeline metrics. Must be called once from main.
func RegisterSuggestMetrics() {
	if suggestMetricsRegistered {
		return
	}
	prometheus.MustRegister(SuggestRequestsTotal)
	prometheus.MustRegister(SuggestDuration)
	prometheus.MustRegister(SuggestResults)
	prometheus.MustRegister(CitationDropsTotal)
	prometheus.MustRegister(WSConnectionsActive)
	suggestMetricsRegistered = true
}
