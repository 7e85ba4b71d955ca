package strategy

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestAlignedTimerFiresAndStops(t *testing.T) {
	var fired atomic.Int64
	timer := NewAlignedTimer(10*time.Millisecond, 0, func() { fired.Add(1) })
	timer.Start()

	deadline := time.Now().Add(2 * time.Second)
	for fired.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if fired.Load() < 2 {
		t.Fatal("timer did not fire")
	}

	timer.Stop()
	count := fired.Load()
	time.Sleep(50 * time.Millisecond)
	if fired.Load() != count {
		t.Fatal("callback fired after Stop returned")
	}
}

func TestAlignedTimerStopIdempotent(t *testing.T) {
	timer := NewAlignedTimer(10*time.Millisecond, 0, func() {})
	timer.Stop()
	timer.Start()
	timer.Stop()
	timer.Stop()
}

func TestAlignedTimerRestart(t *testing.T) {
	var fired atomic.Int64
	timer := NewAlignedTimer(5*time.Millisecond, 0, func() { fired.Add(1) })
	timer.Start()
	timer.Stop()
	first := fired.Load()

	timer.Start()
	deadline := time.Now().Add(2 * time.Second)
	for fired.Load() <= first && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	timer.Stop()
	if fired.Load() <= first {
		t.Fatal("timer did not fire after restart")
	}
}

func TestAlignmentDelay(t *testing.T) {
	timer := NewAlignedTimer(time.Second, time.Minute, func() {})
	now := time.Date(2024, 5, 1, 10, 0, 45, 0, time.UTC)
	if got := timer.alignmentDelay(now); got != 15*time.Second {
		t.Fatalf("delay = %s, want 15s", got)
	}
	unaligned := NewAlignedTimer(time.Second, 0, func() {})
	if got := unaligned.alignmentDelay(now); got != 0 {
		t.Fatalf("delay = %s, want 0 without alignment", got)
	}
}
