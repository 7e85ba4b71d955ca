package strategy

import (
	"sync"
	"time"

	"github.com/sourcegraph/conc"
)

// AlignedTimer invokes a callback at a fixed interval, with the first firing
// aligned to the next wall clock multiple of the alignment frequency. It runs
// on its own goroutine; the callback must not touch dispatch-owned state.
type AlignedTimer struct {
	interval time.Duration
	align    time.Duration
	fn       func()

	mu      sync.Mutex
	quit    chan struct{}
	wg      conc.WaitGroup
	running bool
}

// NewAlignedTimer creates a stopped timer. A zero alignment frequency fires
// the first callback one interval after Start.
func NewAlignedTimer(interval, align time.Duration, fn func()) *AlignedTimer {
	return &AlignedTimer{
		interval: interval,
		align:    align,
		fn:       fn,
	}
}

// Start launches the timer goroutine. Starting a running timer is a no-op.
func (t *AlignedTimer) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running || t.interval <= 0 || t.fn == nil {
		return
	}
	t.running = true
	t.quit = make(chan struct{})
	quit := t.quit
	t.wg.Go(func() { t.run(quit) })
}

// Stop cancels the timer and blocks until its goroutine has exited, so no
// callback can fire after Stop returns. Stopping a stopped timer is a no-op.
func (t *AlignedTimer) Stop() {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return
	}
	t.running = false
	close(t.quit)
	t.mu.Unlock()
	t.wg.Wait()
}

func (t *AlignedTimer) run(quit chan struct{}) {
	if d := t.alignmentDelay(time.Now()); d > 0 {
		select {
		case <-quit:
			return
		case <-time.After(d):
		}
	}
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()
	for {
		select {
		case <-quit:
			return
		case <-ticker.C:
			t.fn()
		}
	}
}

// alignmentDelay computes the wait until the next alignment boundary.
func (t *AlignedTimer) alignmentDelay(now time.Time) time.Duration {
	if t.align <= 0 {
		return 0
	}
	next := now.Truncate(t.align).Add(t.align)
	return next.Sub(now)
}
