package bus

import (
	"testing"
	"time"

	"github.com/mtxpt/phx-fix-examples/internal/schema"
)

func TestQueuePreservesFIFOOrder(t *testing.T) {
	q := NewQueue(8)
	first := &schema.Logon{SessionID: "s1"}
	second := &schema.Heartbeat{}
	third := &schema.Logout{SessionID: "s1"}

	for _, ev := range []schema.Event{first, second, third} {
		if err := q.Push(ev); err != nil {
			t.Fatalf("push failed: %v", err)
		}
	}

	for i, want := range []schema.Event{first, second, third} {
		got, ok := q.Pop(time.Second)
		if !ok {
			t.Fatalf("pop %d timed out", i)
		}
		if got != want {
			t.Fatalf("pop %d: got %T, want %T", i, got, want)
		}
	}
}

func TestQueuePopTimesOutWhenEmpty(t *testing.T) {
	q := NewQueue(1)
	start := time.Now()
	ev, ok := q.Pop(20 * time.Millisecond)
	if ok {
		t.Fatalf("expected timeout, got event %T", ev)
	}
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Fatalf("pop returned before timeout: %v", elapsed)
	}
}

func TestQueueRejectsNilEvent(t *testing.T) {
	q := NewQueue(1)
	if err := q.Push(nil); err == nil {
		t.Fatal("expected error pushing nil event")
	}
	if q.TryPush(nil) {
		t.Fatal("expected TryPush to reject nil event")
	}
}

func TestQueueCloseStopsPushesButDrains(t *testing.T) {
	q := NewQueue(2)
	if err := q.Push(&schema.Heartbeat{}); err != nil {
		t.Fatalf("push failed: %v", err)
	}
	q.Close()
	if err := q.Push(&schema.Heartbeat{}); err == nil {
		t.Fatal("expected push to fail after close")
	}
	if _, ok := q.Pop(time.Second); !ok {
		t.Fatal("expected buffered event to drain after close")
	}
	if _, ok := q.Pop(10 * time.Millisecond); ok {
		t.Fatal("expected empty closed queue to report no event")
	}
}

func TestQueueTryPushRespectsCapacity(t *testing.T) {
	q := NewQueue(1)
	if !q.TryPush(&schema.Heartbeat{}) {
		t.Fatal("expected first push to succeed")
	}
	if q.TryPush(&schema.Heartbeat{}) {
		t.Fatal("expected push beyond capacity to be rejected")
	}
	if q.Len() != 1 {
		t.Fatalf("unexpected queue length %d", q.Len())
	}
}
