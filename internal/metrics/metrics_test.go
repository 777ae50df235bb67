package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestInit(t *testing.T) {
	// Call Init multiple times to test idempotency; promauto panics on
	// duplicate registration, so surviving the second call is the check.
	Init()
	Init()

	if pagesFetchedTotal == nil || recordsKeptTotal == nil ||
		batchesWrittenTotal == nil || titlesEnumeratedTotal == nil ||
		chunksLostTotal == nil || activeWorkers == nil ||
		rateLimitDelaySeconds == nil || httpRequestsTotal == nil {
		t.Fatal("Init() did not initialize metrics collectors")
	}
}

func TestObserveHelpers(t *testing.T) {
	Init()

	before := testutil.ToFloat64(pagesFetchedTotal.WithLabelValues(FetchMissing))
	ObserveFetch(FetchMissing)
	if got := testutil.ToFloat64(pagesFetchedTotal.WithLabelValues(FetchMissing)); got != before+1 {
		t.Errorf("expected missing-fetch counter %f, got %f", before+1, got)
	}

	before = testutil.ToFloat64(recordsKeptTotal)
	AddRecordsKept(3)
	AddRecordsKept(0)
	AddRecordsKept(-1)
	if got := testutil.ToFloat64(recordsKeptTotal); got != before+3 {
		t.Errorf("expected kept-records counter %f, got %f", before+3, got)
	}

	before = testutil.ToFloat64(batchesWrittenTotal.WithLabelValues(BatchKindContent))
	ObserveBatchWritten(BatchKindContent)
	if got := testutil.ToFloat64(batchesWrittenTotal.WithLabelValues(BatchKindContent)); got != before+1 {
		t.Errorf("expected content-batch counter %f, got %f", before+1, got)
	}

	IncActiveWorkers()
	IncActiveWorkers()
	DecActiveWorkers()
	if got := testutil.ToFloat64(activeWorkers); got < 1 {
		t.Errorf("expected active workers gauge >= 1, got %f", got)
	}
	DecActiveWorkers()

	ObserveRateLimitDelay(250 * time.Millisecond)
	if val := testutil.CollectAndCount(rateLimitDelaySeconds); val <= 0 {
		t.Errorf("expected rate limit delay histogram to be registered, got %d", val)
	}
}
