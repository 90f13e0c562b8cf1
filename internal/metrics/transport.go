package metrics

import "github.com/prometheus/client_golang/prometheus"

// Hosted API client Prometheus metrics.
var (
	RemoteRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clusterops",
			Name:      "remote_requests_total",
			Help:      "Total number of hosted API requests",
		},
		[]string{"endpoint", "status"},
	)

	RemoteRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "clusterops",
			Name:      "remote_request_duration_seconds",
			Help:      "Hosted API request duration in seconds, retries included",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"endpoint"},
	)

	RemoteRetriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clusterops",
			Name:      "remote_retries_total",
			Help:      "Hosted API request retries",
		},
		[]string{"endpoint"},
	)
)

var transportMetricsRegistered bool

// RegisterTransportMetrics registers hosted API client metrics. Must be called once from main.
func RegisterTransportMetrics() {
	if transportMetricsRegistered {
		return
	}
	prometheus.MustRegister(RemoteRequestsTotal)
	prometheus.MustRegister(RemoteRequestDuration)
	prometheus.MustRegister(RemoteRetriesTotal)
	transportMetricsRegistered = true
}
