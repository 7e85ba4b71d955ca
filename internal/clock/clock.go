// Package clock provides a controllable notion of time so strategy runs can
// be replayed deterministically in tests.
package clock

import (
	"sync"
	"time"
)

// Clock is the time source threaded through the strategy runtime.
type Clock interface {
	Now() time.Time
}

// Wall reads the system clock in UTC.
type Wall struct{}

// Now returns the current wall-clock time.
func (Wall) Now() time.Time { return time.Now().UTC() }

// Virtual is an in-memory clock advanced manually by tests.
type Virtual struct {
	mu      sync.Mutex
	current time.Time
}

// NewVirtual initialises a clock starting at the provided timestamp.
func NewVirtual(start time.Time) *Virtual {
	return &Virtual{current: start}
}

// Now returns the current simulated time.
func (c *Virtual) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Advance moves the clock forward by the specified duration.
func (c *Virtual) Advance(d time.Duration) {
	if d <= 0 {
		return
	}
	c.mu.Lock()
	c.current = c.current.Add(d)
	c.mu.Unlock()
}

// AdvanceTo moves the clock to the supplied timestamp if it is in the future.
func (c *Virtual) AdvanceTo(ts time.Time) {
	c.mu.Lock()
	if ts.After(c.current) {
		c.current = ts
	}
	c.mu.Unlock()
}
