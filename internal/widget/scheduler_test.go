package widget

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestTickerSchedulerTicksUntilStopped(t *testing.T) {
	var calls atomic.Int32
	stop := TickerScheduler{}.Every(10*time.Millisecond, func() { calls.Add(1) })

	deadline := time.Now().Add(2 * time.Second)
	for calls.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	stop()
	stop()

	if calls.Load() < 3 {
		t.Fatalf("ticks = %d, want at least 3", calls.Load())
	}

	// Ticks spawned right before stop may still land; wait until the count
	// holds steady, then make sure it stays there for many intervals.
	after := settle(&calls, 2*time.Second)
	time.Sleep(200 * time.Millisecond)
	if calls.Load() != after {
		t.Errorf("ticks continued after stop: %d -> %d", after, calls.Load())
	}
}

// settle polls n until it stops changing or the deadline passes.
func settle(n *atomic.Int32, timeout time.Duration) int32 {
	deadline := time.Now().Add(timeout)
	last := n.Load()
	for time.Now().Before(deadline) {
		time.Sleep(50 * time.Millisecond)
		cur := n.Load()
		if cur == last {
			return cur
		}
		last = cur
	}
	return last
}

func TestTickerSchedulerDoesNotWaitForSlowTicks(t *testing.T) {
	var calls atomic.Int32
	block := make(chan struct{})
	stop := TickerScheduler{}.Every(10*time.Millisecond, func() {
		calls.Add(1)
		<-block
	})
	defer close(block)

	deadline := time.Now().Add(2 * time.Second)
	for calls.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	stop()
	if calls.Load() < 2 {
		t.Fatalf("a blocked tick held back later ticks: %d calls", calls.Load())
	}
}
