package risk

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mtxpt/phx-fix-examples/internal/schema"
	"github.com/mtxpt/phx-fix-examples/internal/tracker"
)

var testTicker = schema.Ticker{Exchange: "EX1", Symbol: "BTCUSD"}

func TestManager_Allow_Throttle(t *testing.T) {
	limits := Default()
	limits.OrdersPerSecond = 10
	limits.Burst = 10
	manager := NewManager(limits)

	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 10; i++ {
		if !manager.Allow(now) {
			t.Fatalf("order %d should have passed the throttle", i+1)
		}
	}
	if manager.Allow(now) {
		t.Fatal("11th order in the same instant should have been throttled")
	}
	if !manager.Allow(now.Add(200 * time.Millisecond)) {
		t.Fatal("throttle should refill after 200ms at 10 orders/s")
	}
}

func TestManager_CheckOrder_QtyLimit(t *testing.T) {
	limits := Default()
	limits.MaxOrderQty = decimal.NewFromInt(10)
	manager := NewManager(limits)

	if err := manager.CheckOrder(testTicker, schema.SideBuy, decimal.NewFromInt(10), nil); err != nil {
		t.Fatalf("order at the limit should pass, got %v", err)
	}
	if err := manager.CheckOrder(testTicker, schema.SideBuy, decimal.NewFromInt(11), nil); err == nil {
		t.Fatal("order above the quantity limit should be rejected")
	}
	if err := manager.CheckOrder(testTicker, schema.SideBuy, decimal.Zero, nil); err == nil {
		t.Fatal("zero quantity order should be rejected")
	}
}

func TestManager_CheckOrder_PositionLimit(t *testing.T) {
	limits := Default()
	limits.MaxPositionSize = decimal.NewFromInt(10)
	manager := NewManager(limits)

	ts := time.Now().UTC()
	positions := tracker.NewPositionTracker("test", true, nil)
	positions.ApplyFill(testTicker, "acct", schema.SideBuy, decimal.NewFromInt(8), decimal.NewFromInt(100), ts)

	if err := manager.CheckOrder(testTicker, schema.SideBuy, decimal.NewFromInt(2), positions); err != nil {
		t.Fatalf("order reaching the position limit should pass, got %v", err)
	}
	if err := manager.CheckOrder(testTicker, schema.SideBuy, decimal.NewFromInt(3), positions); err == nil {
		t.Fatal("order breaching the position limit should be rejected")
	}
	// Selling reduces the long position and stays within limits.
	if err := manager.CheckOrder(testTicker, schema.SideSell, decimal.NewFromInt(3), positions); err != nil {
		t.Fatalf("reducing order should pass, got %v", err)
	}
}
