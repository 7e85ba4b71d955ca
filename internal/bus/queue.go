// Package bus provides the bounded FIFO handoff between the FIX transport
// and the strategy dispatch loop.
package bus

import (
	"sync"
	"time"

	"github.com/mtxpt/phx-fix-examples/errs"
	"github.com/mtxpt/phx-fix-examples/internal/schema"
)

// Queue is a bounded, blocking, first-in-first-out event queue. The transport
// pushes from arbitrary goroutines; the dispatch loop is the sole consumer.
type Queue struct {
	ch   chan schema.Event
	quit chan struct{}
	once sync.Once
}

// NewQueue allocates a queue with the given capacity.
func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = 1
	}
	return &Queue{
		ch:   make(chan schema.Event, capacity),
		quit: make(chan struct{}),
	}
}

// Push enqueues an event, blocking while the queue is full.
func (q *Queue) Push(ev schema.Event) error {
	if ev == nil {
		return errs.New("", errs.CodeInvalid, errs.WithMessage("nil event"))
	}
	select {
	case <-q.quit:
		return errs.New("", errs.CodeInvalid, errs.WithMessage("queue closed"))
	case q.ch <- ev:
		return nil
	}
}

// TryPush enqueues an event without blocking, reporting whether it was accepted.
func (q *Queue) TryPush(ev schema.Event) bool {
	if ev == nil {
		return false
	}
	select {
	case <-q.quit:
		return false
	case q.ch <- ev:
		return true
	default:
		return false
	}
}

// Pop dequeues the next event, waiting at most timeout. The second return is
// false when the wait expired or the queue closed with nothing buffered.
func (q *Queue) Pop(timeout time.Duration) (schema.Event, bool) {
	if timeout <= 0 {
		select {
		case ev := <-q.ch:
			return ev, true
		default:
			return nil, false
		}
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case ev := <-q.ch:
		return ev, true
	case <-timer.C:
		return nil, false
	case <-q.quit:
		// Drain anything already buffered before reporting closed.
		select {
		case ev := <-q.ch:
			return ev, true
		default:
			return nil, false
		}
	}
}

// Len reports the number of buffered events.
func (q *Queue) Len() int {
	return len(q.ch)
}

// Close stops the queue from accepting new events. Buffered events remain
// poppable.
func (q *Queue) Close() {
	q.once.Do(func() { close(q.quit) })
}
