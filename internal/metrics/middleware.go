package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
)

// Emulator HTTP metrics.
var (
	EmulatorRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "clusterops",
			Subsystem: "emulator",
			Name:      "http_request_duration_seconds",
			Help:      "Emulator HTTP request duration in seconds",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 1},
		},
		[]string{"method", "route", "status"},
	)

	EmulatorRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clusterops",
			Subsystem: "emulator",
			Name:      "http_requests_total",
			Help:      "Total number of emulator HTTP requests",
		},
		[]string{"method", "route", "status"},
	)
)

var emulatorMetricsRegistered bool

// RegisterEmulatorMetrics registers emulator HTTP metrics. Must be called once from main.
func RegisterEmulatorMetrics() {
	if emulatorMetricsRegistered {
		return
	}
	prometheus.MustRegister(EmulatorRequestDuration)
	prometheus.MustRegister(EmulatorRequestsTotal)
	emulatorMetricsRegistered = true
}

// Middleware records request duration and count labelled by chi route pattern.
func Middleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)

			route := ""
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				route = rctx.RoutePattern()
			}
			route = normalizeRoute(route)
			status := strconv.Itoa(ww.status)

			EmulatorRequestDuration.WithLabelValues(r.Method, route, status).Observe(time.Since(start).Seconds())
			EmulatorRequestsTotal.WithLabelValues(r.Method, route, status).Inc()
		})
	}
}

// normalizeRoute keeps label cardinality bounded: unmatched requests share one label.
func normalizeRoute(route string) string {
	if route == "" {
		return "unmatched"
	}
	return route
}

type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(status int) {
	if !w.wroteHeader {
		w.status = status
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(b) //nolint:wrapcheck // delegating to underlying ResponseWriter
}
