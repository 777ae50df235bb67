package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal          *prometheus.CounterVec
	httpRequestDurationSeconds prometheus.Histogram
)

func initHTTP() {
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wikiharvest_http_requests_total",
			Help: "Total observability server requests, labeled by method and status.",
		},
		[]string{"method", "status"},
	)

	httpRequestDurationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "wikiharvest_http_request_duration_seconds",
			Help:    "Histogram of observability server request durations.",
			Buckets: prometheus.DefBuckets,
		},
	)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Middleware records request counts and durations for the observability
// server. It is a no-op until Init has run.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if httpRequestsTotal == nil {
			next.ServeHTTP(w, req)
			return
		}
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, req)
		httpRequestsTotal.WithLabelValues(req.Method, strconv.Itoa(rec.status)).Inc()
		httpRequestDurationSeconds.Observe(time.Since(start).Seconds())
	})
}
