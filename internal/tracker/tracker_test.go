package tracker

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mtxpt/phx-fix-examples/internal/schema"
)

var testTicker = schema.Ticker{Exchange: "EX1", Symbol: "BTCUSD"}

func report(clOrdID string, execType schema.ExecType, status schema.OrdStatus) *schema.ExecReport {
	return &schema.ExecReport{
		Ticker:    testTicker,
		ClOrdID:   clOrdID,
		OrderID:   "o-" + clOrdID,
		ExecType:  execType,
		OrdStatus: status,
		Side:      schema.SideBuy,
		OrdType:   schema.OrdTypeLimit,
		Price:     decimal.NewFromInt(100),
		OrderQty:  decimal.NewFromInt(10),
	}
}

func TestOrderLifecycle(t *testing.T) {
	ts := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	ot := NewOrderTracker("test", nil, nil, false)

	ot.Process(report("c1", schema.ExecTypePendingNew, schema.OrdStatusPendingNew), ts)
	if len(ot.PendingOrders()) != 1 {
		t.Fatalf("pending = %d, want 1", len(ot.PendingOrders()))
	}

	r := report("c1", schema.ExecTypeNew, schema.OrdStatusNew)
	r.LeavesQty = decimal.NewFromInt(10)
	ot.Process(r, ts)
	if len(ot.PendingOrders()) != 0 || len(ot.OpenOrders()) != 1 {
		t.Fatalf("pending = %d open = %d, want 0/1",
			len(ot.PendingOrders()), len(ot.OpenOrders()))
	}
	if got := ot.OpenOrders()["c1"].Status; got != schema.OrdStatusNew {
		t.Fatalf("status = %s, want new", got)
	}

	fill := report("c1", schema.ExecTypeTrade, schema.OrdStatusPartiallyFilled)
	fill.LastQty = decimal.NewFromInt(4)
	fill.LastPx = decimal.NewFromInt(101)
	fill.CumQty = decimal.NewFromInt(4)
	fill.LeavesQty = decimal.NewFromInt(6)
	ot.Process(fill, ts)
	if got := ot.OpenOrders()["c1"].Status; got != schema.OrdStatusPartiallyFilled {
		t.Fatalf("status = %s, want partially_filled", got)
	}

	done := report("c1", schema.ExecTypeTrade, schema.OrdStatusFilled)
	done.LastQty = decimal.NewFromInt(6)
	done.LastPx = decimal.NewFromInt(102)
	done.CumQty = decimal.NewFromInt(10)
	done.LeavesQty = decimal.Zero
	ot.Process(done, ts)
	if len(ot.OpenOrders()) != 0 || len(ot.HistoryOrders()) != 1 {
		t.Fatalf("open = %d history = %d, want 0/1",
			len(ot.OpenOrders()), len(ot.HistoryOrders()))
	}
}

func TestOrderCancelFromPending(t *testing.T) {
	ts := time.Now().UTC()
	ot := NewOrderTracker("test", nil, nil, false)

	ot.Process(report("c2", schema.ExecTypePendingNew, schema.OrdStatusPendingNew), ts)
	ot.Process(report("c2", schema.ExecTypeRejected, schema.OrdStatusRejected), ts)
	if len(ot.PendingOrders()) != 0 {
		t.Fatalf("pending = %d, want 0", len(ot.PendingOrders()))
	}
	o, ok := ot.HistoryOrders()["c2"]
	if !ok {
		t.Fatal("rejected order not in history")
	}
	if o.Status != schema.OrdStatusRejected {
		t.Fatalf("status = %s, want rejected", o.Status)
	}
}

func TestSetSnapshotsOverwrite(t *testing.T) {
	ts := time.Now().UTC()
	ot := NewOrderTracker("test", nil, nil, false)
	ot.Process(report("old", schema.ExecTypeNew, schema.OrdStatusNew), ts)

	snap := []*schema.ExecReport{
		report("a", schema.ExecTypeOrderStatus, schema.OrdStatusNew),
		report("b", schema.ExecTypeOrderStatus, schema.OrdStatusPendingNew),
		report("c", schema.ExecTypeOrderStatus, schema.OrdStatusFilled),
	}
	ot.SetSnapshots(snap, ts, true)

	if _, ok := ot.OpenOrders()["old"]; ok {
		t.Fatal("overwrite kept stale order")
	}
	if len(ot.OpenOrders()) != 1 || len(ot.PendingOrders()) != 1 || len(ot.HistoryOrders()) != 1 {
		t.Fatalf("open/pending/history = %d/%d/%d, want 1/1/1",
			len(ot.OpenOrders()), len(ot.PendingOrders()), len(ot.HistoryOrders()))
	}
}

func TestPositionNetting(t *testing.T) {
	ts := time.Now().UTC()
	pt := NewPositionTracker("test", true, nil)

	pt.ApplyFill(testTicker, "acct", schema.SideBuy, decimal.NewFromInt(10), decimal.NewFromInt(100), ts)
	pt.ApplyFill(testTicker, "acct", schema.SideBuy, decimal.NewFromInt(10), decimal.NewFromInt(110), ts)
	p := pt.Position(testTicker)
	if p == nil {
		t.Fatal("position missing")
	}
	if !p.Quantity.Equal(decimal.NewFromInt(20)) {
		t.Fatalf("qty = %s, want 20", p.Quantity)
	}
	if !p.AvgPx.Equal(decimal.NewFromInt(105)) {
		t.Fatalf("avg px = %s, want 105", p.AvgPx)
	}

	pt.ApplyFill(testTicker, "acct", schema.SideSell, decimal.NewFromInt(25), decimal.NewFromInt(120), ts)
	if !p.Quantity.Equal(decimal.NewFromInt(-5)) {
		t.Fatalf("qty = %s, want -5", p.Quantity)
	}
}

func TestPositionSnapshots(t *testing.T) {
	ts := time.Now().UTC()
	pt := NewPositionTracker("test", true, nil)
	pt.SetSnapshots([]*schema.PositionReport{
		{Account: "acct", Ticker: testTicker, Qty: decimal.NewFromInt(7), AvgPx: decimal.NewFromInt(99)},
	}, ts, true)

	p := pt.Position(testTicker)
	if p == nil || !p.Quantity.Equal(decimal.NewFromInt(7)) {
		t.Fatalf("position = %+v, want qty 7", p)
	}
}

func TestFillUpdatesPositionTracker(t *testing.T) {
	ts := time.Now().UTC()
	pt := NewPositionTracker("test", true, nil)
	ot := NewOrderTracker("test", nil, pt, false)

	ot.Process(report("c3", schema.ExecTypeNew, schema.OrdStatusNew), ts)
	fill := report("c3", schema.ExecTypeTrade, schema.OrdStatusFilled)
	fill.LastQty = decimal.NewFromInt(10)
	fill.LastPx = decimal.NewFromInt(100)
	fill.CumQty = decimal.NewFromInt(10)
	fill.LeavesQty = decimal.Zero
	ot.Process(fill, ts)

	p := pt.Position(testTicker)
	if p == nil || !p.Quantity.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("position after fill = %+v, want qty 10", p)
	}
}
