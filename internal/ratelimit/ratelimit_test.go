package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestWait_ZeroIntervalNeverSleeps(t *testing.T) {
	l := New(0)
	start := time.Now()
	for i := 0; i < 10000; i++ {
		if err := l.Wait(context.Background()); err != nil {
			t.Fatalf("Wait: %v", err)
		}
	}
	// 10k no-op waits must be effectively instant
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Fatalf("zero-interval limiter slept: %v", elapsed)
	}
}

func TestWait_NilLimiter(t *testing.T) {
	var l *Limiter
	if err := l.Wait(context.Background()); err != nil {
		t.Fatalf("nil limiter must be a no-op, got %v", err)
	}
}

func TestWait_EnforcesMinimumInterval(t *testing.T) {
	const d = 20 * time.Millisecond
	const n = 4
	l := New(d)
	start := time.Now()
	for i := 0; i < n; i++ {
		if err := l.Wait(context.Background()); err != nil {
			t.Fatalf("Wait: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed < (n-1)*d {
		t.Fatalf("elapsed %v < minimum %v for %d sequential probes", elapsed, (n-1)*d, n)
	}
}

func TestWait_FirstCallImmediate(t *testing.T) {
	l := New(time.Second)
	start := time.Now()
	if err := l.Wait(context.Background()); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Fatalf("first call waited %v", elapsed)
	}
}

func TestWait_Cancellable(t *testing.T) {
	l := New(time.Hour)
	_ = l.Wait(context.Background()) // arm the interval
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Wait(ctx) }()
	cancel()
	select {
	case err := <-done:
		if err == nil {
			t.Fatal("expected ctx error from cancelled wait")
		}
	case <-time.After(time.Second):
		t.Fatal("Wait did not unblock on cancellation")
	}
}
