package metrics

import "github.com/prometheus/client_golang/prometheus"

// Clustering job Prometheus metrics.
var (
	ClusterJobsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clusterops",
			Name:      "cluster_jobs_total",
			Help:      "Total number of clustering runs",
		},
		[]string{"model", "status"},
	)

	ClusterJobDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "clusterops",
			Name:      "cluster_job_duration_seconds",
			Help:      "Clustering run duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 60, 300, 900},
		},
		[]string{"model"},
	)

	ClusterDocumentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clusterops",
			Name:      "cluster_documents_total",
			Help:      "Documents seen by clustering runs",
		},
		[]string{"result"}, // "labelled" / "skipped"
	)

	ClusterCentroidsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "clusterops",
			Name:      "cluster_centroids_total",
			Help:      "Centroids written back to the remote store",
		},
	)

	ClusterWriteBatchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clusterops",
			Name:      "cluster_write_batches_total",
			Help:      "Write-back batches by step and outcome",
		},
		[]string{"step", "status"},
	)
)

var clusterMetricsRegistered bool

// RegisterClusterMetrics registers clustering metrics. Must be called once from main.
func RegisterClusterMetrics() {
	if clusterMetricsRegistered {
		return
	}
	prometheus.MustRegister(ClusterJobsTotal)
	prometheus.MustRegister(ClusterJobDuration)
	prometheus.MustRegister(ClusterDocumentsTotal)
	prometheus.MustRegister(ClusterCentroidsTotal)
	prometheus.MustRegister(ClusterWriteBatchesTotal)
	clusterMetricsRegistered = true
}
