// Package metrics exposes Prometheus collectors for the crawler.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	pagesFetchedTotal    *prometheus.CounterVec
	recordsKeptTotal     prometheus.Counter
	batchesWrittenTotal  *prometheus.CounterVec
	titlesEnumeratedTotal prometheus.Counter
	chunksLostTotal      prometheus.Counter
	activeWorkers        prometheus.Gauge
	rateLimitDelaySeconds prometheus.Histogram

	once sync.Once
)

// Fetch outcome labels for ObserveFetch.
const (
	FetchOK      = "ok"
	FetchMissing = "missing"
	FetchError   = "error"
)

// Batch kind labels for ObserveBatchWritten.
const (
	BatchKindTitles  = "titles"
	BatchKindContent = "content"
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		pagesFetchedTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wikiharvest_pages_fetched_total",
				Help: "Total number of page fetch attempts, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		recordsKeptTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "wikiharvest_records_kept_total",
				Help: "Total number of cleaned records that passed the length threshold.",
			},
		)

		batchesWrittenTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wikiharvest_batches_written_total",
				Help: "Total number of batch files written, labeled by kind.",
			},
			[]string{"kind"},
		)

		titlesEnumeratedTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "wikiharvest_titles_enumerated_total",
				Help: "Total number of titles produced by the enumerator.",
			},
		)

		chunksLostTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "wikiharvest_chunks_lost_total",
				Help: "Total number of chunks whose results were dropped after a worker failure.",
			},
		)

		activeWorkers = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "wikiharvest_active_workers",
				Help: "Number of workers currently processing a chunk.",
			},
		)

		rateLimitDelaySeconds = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "wikiharvest_rate_limit_delay_seconds",
				Help:    "Histogram of rate limit wait durations.",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
			},
		)

		initHTTP()
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveFetch increments the fetch counter for the given outcome.
func ObserveFetch(outcome string) {
	if pagesFetchedTotal == nil {
		return
	}
	pagesFetchedTotal.WithLabelValues(outcome).Inc()
}

// AddRecordsKept adds n to the kept-records counter.
func AddRecordsKept(n int) {
	if recordsKeptTotal == nil || n <= 0 {
		return
	}
	recordsKeptTotal.Add(float64(n))
}

// ObserveBatchWritten increments the batch counter for the given kind.
func ObserveBatchWritten(kind string) {
	if batchesWrittenTotal == nil {
		return
	}
	batchesWrittenTotal.WithLabelValues(kind).Inc()
}

// AddTitlesEnumerated adds n to the enumerated-titles counter.
func AddTitlesEnumerated(n int) {
	if titlesEnumeratedTotal == nil || n <= 0 {
		return
	}
	titlesEnumeratedTotal.Add(float64(n))
}

// ObserveChunkLost increments the lost-chunk counter.
func ObserveChunkLost() {
	if chunksLostTotal == nil {
		return
	}
	chunksLostTotal.Inc()
}

// IncActiveWorkers increments the active workers gauge.
func IncActiveWorkers() {
	if activeWorkers == nil {
		return
	}
	activeWorkers.Inc()
}

// DecActiveWorkers decrements the active workers gauge.
func DecActiveWorkers() {
	if activeWorkers == nil {
		return
	}
	activeWorkers.Dec()
}

// ObserveRateLimitDelay records the duration of a rate limit wait.
func ObserveRateLimitDelay(duration time.Duration) {
	if rateLimitDelaySeconds == nil {
		return
	}
	rateLimitDelaySeconds.Observe(duration.Seconds())
}
