package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLimiterFirstAcquireImmediate(t *testing.T) {
	t.Parallel()

	l := New(time.Second)
	start := time.Now()
	require.NoError(t, l.Wait(context.Background()))
	require.Less(t, time.Since(start), 50*time.Millisecond)
}

func TestLimiterSecondAcquireWaits(t *testing.T) {
	t.Parallel()

	l := New(100 * time.Millisecond)
	ctx := context.Background()
	require.NoError(t, l.Wait(ctx))

	start := time.Now()
	require.NoError(t, l.Wait(ctx))
	require.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)
}

func TestLimiterIndependentWorkers(t *testing.T) {
	t.Parallel()

	a := New(time.Second)
	b := New(time.Second)
	ctx := context.Background()
	require.NoError(t, a.Wait(ctx))

	// A second worker keeps its own cadence; worker A's acquisition must not
	// delay worker B's first.
	start := time.Now()
	require.NoError(t, b.Wait(ctx))
	require.Less(t, time.Since(start), 50*time.Millisecond)
}

func TestLimiterContextCancellation(t *testing.T) {
	t.Parallel()

	l := New(time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, l.Wait(ctx))

	done := make(chan error, 1)
	go func() {
		done <- l.Wait(ctx)
	}()
	cancel()

	select {
	case err := <-done:
		require.Error(t, err)
	case <-time.After(time.Second):
		t.Fatal("Wait did not honor context cancellation")
	}
}

func TestLimiterDisabled(t *testing.T) {
	t.Parallel()

	l := New(0)
	ctx := context.Background()
	start := time.Now()
	for range 10 {
		require.NoError(t, l.Wait(ctx))
	}
	require.Less(t, time.Since(start), 100*time.Millisecond)
}
