package tracker

import (
	"time"

	"go.uber.org/zap"

	"github.com/mtxpt/phx-fix-examples/internal/schema"
)

// OrderTracker maintains pending, open and historical orders keyed by client
// order id. It is owned by the dispatch goroutine and not safe for
// concurrent use.
type OrderTracker struct {
	name         string
	log          *zap.Logger
	positions    *PositionTracker
	printReports bool

	pending map[string]*Order
	open    map[string]*Order
	history map[string]*Order
}

// NewOrderTracker constructs an empty order tracker. The position tracker is
// optional; when present, fills are applied to it.
func NewOrderTracker(name string, log *zap.Logger, positions *PositionTracker, printReports bool) *OrderTracker {
	if log == nil {
		log = zap.NewNop()
	}
	return &OrderTracker{
		name:         name,
		log:          log,
		positions:    positions,
		printReports: printReports,
		pending:      make(map[string]*Order),
		open:         make(map[string]*Order),
		history:      make(map[string]*Order),
	}
}

// PendingOrders returns the orders awaiting venue acknowledgement.
func (t *OrderTracker) PendingOrders() map[string]*Order { return t.pending }

// OpenOrders returns the orders currently working at the venue.
func (t *OrderTracker) OpenOrders() map[string]*Order { return t.open }

// HistoryOrders returns the terminally completed orders.
func (t *OrderTracker) HistoryOrders() map[string]*Order { return t.history }

// Process applies one execution report to the tracked order state.
func (t *OrderTracker) Process(r *schema.ExecReport, ts time.Time) {
	key := r.Key()
	if key == "" {
		t.log.Warn("exec report without order id dropped",
			zap.String("tracker", t.name),
			zap.String("exec_type", string(r.ExecType)))
		return
	}

	switch r.ExecType {
	case schema.ExecTypePendingNew:
		t.pending[key] = orderFromReport(r, ts)
	case schema.ExecTypeNew:
		o := t.take(key)
		if o == nil {
			o = orderFromReport(r, ts)
		}
		o.OrderID = r.OrderID
		o.Status = schema.OrdStatusNew
		o.LeavesQty = r.LeavesQty
		o.Updated = ts
		t.open[key] = o
	case schema.ExecTypeTrade:
		o := t.take(key)
		if o == nil {
			o = orderFromReport(r, ts)
		}
		o.CumQty = r.CumQty
		o.LeavesQty = r.LeavesQty
		o.AvgPx = r.LastPx
		o.Status = r.OrdStatus
		o.Updated = ts
		if t.positions != nil && r.LastQty.Sign() > 0 {
			t.positions.ApplyFill(r.Ticker, r.Account, r.Side, r.LastQty, r.LastPx, ts)
		}
		if o.Status == schema.OrdStatusFilled || o.LeavesQty.Sign() <= 0 {
			o.Status = schema.OrdStatusFilled
			t.history[key] = o
		} else {
			o.Status = schema.OrdStatusPartiallyFilled
			t.open[key] = o
		}
	case schema.ExecTypePendingCancel:
		if o := t.open[key]; o != nil {
			o.Status = schema.OrdStatusPendingCancel
			o.Updated = ts
		}
	case schema.ExecTypeReplaced:
		if o := t.open[key]; o != nil {
			o.Price = r.Price
			o.OrderQty = r.OrderQty
			o.LeavesQty = r.LeavesQty
			o.Updated = ts
		}
	case schema.ExecTypeCanceled, schema.ExecTypeExpired, schema.ExecTypeRejected:
		o := t.take(key)
		if o == nil {
			o = orderFromReport(r, ts)
		}
		o.Status = r.OrdStatus
		if !o.Status.Terminal() {
			o.Status = schema.OrdStatusCanceled
		}
		o.Updated = ts
		t.history[key] = o
	default:
		t.log.Warn("unhandled exec type",
			zap.String("tracker", t.name),
			zap.String("exec_type", string(r.ExecType)),
			zap.String("cl_ord_id", key))
		return
	}

	if t.printReports {
		t.log.Debug("exec report processed",
			zap.String("tracker", t.name),
			zap.String("cl_ord_id", key),
			zap.String("exec_type", string(r.ExecType)),
			zap.String("ord_status", string(r.OrdStatus)),
			zap.Int("pending", len(t.pending)),
			zap.Int("open", len(t.open)),
			zap.Int("history", len(t.history)))
	}
}

// SetSnapshots rebuilds the tracked order state from an order status
// snapshot. With overwrite set, all previously tracked orders are discarded
// first.
func (t *OrderTracker) SetSnapshots(reports []*schema.ExecReport, ts time.Time, overwrite bool) {
	if overwrite {
		t.pending = make(map[string]*Order)
		t.open = make(map[string]*Order)
		t.history = make(map[string]*Order)
	}
	for _, r := range reports {
		key := r.Key()
		if key == "" {
			continue
		}
		o := orderFromReport(r, ts)
		switch {
		case r.OrdStatus == schema.OrdStatusPendingNew:
			t.pending[key] = o
		case r.OrdStatus.Terminal():
			t.history[key] = o
		default:
			t.open[key] = o
		}
	}
	t.log.Info("order snapshots applied",
		zap.String("tracker", t.name),
		zap.Int("reports", len(reports)),
		zap.Bool("overwrite", overwrite),
		zap.Int("pending", len(t.pending)),
		zap.Int("open", len(t.open)),
		zap.Int("history", len(t.history)))
}

// take removes the order with the given key from the pending or open set.
func (t *OrderTracker) take(key string) *Order {
	if o, ok := t.pending[key]; ok {
		delete(t.pending, key)
		return o
	}
	if o, ok := t.open[key]; ok {
		delete(t.open, key)
		return o
	}
	return nil
}
