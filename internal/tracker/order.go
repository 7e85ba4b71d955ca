// Package tracker keeps the strategy's local view of orders and positions
// current from the execution report stream.
package tracker

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mtxpt/phx-fix-examples/internal/schema"
)

// Order is the tracked state of a single order.
type Order struct {
	ClOrdID     string
	OrigClOrdID string
	OrderID     string
	Ticker      schema.Ticker
	Side        schema.Side
	OrdType     schema.OrdType
	Price       decimal.Decimal
	OrderQty    decimal.Decimal
	CumQty      decimal.Decimal
	LeavesQty   decimal.Decimal
	AvgPx       decimal.Decimal
	Status      schema.OrdStatus
	Account     string
	Created     time.Time
	Updated     time.Time
}

// Key returns the id used to track the order.
func (o *Order) Key() string {
	if o.ClOrdID != "" {
		return o.ClOrdID
	}
	return o.OrderID
}

// Open reports whether the order still has live quantity at the venue.
func (o *Order) Open() bool {
	return !o.Status.Terminal() && o.Status != schema.OrdStatusPendingNew
}

// StatusCount tallies orders by status.
func StatusCount(orders map[string]*Order) map[schema.OrdStatus]int {
	counts := make(map[schema.OrdStatus]int, len(orders))
	for _, o := range orders {
		counts[o.Status]++
	}
	return counts
}

func orderFromReport(r *schema.ExecReport, ts time.Time) *Order {
	return &Order{
		ClOrdID:     r.ClOrdID,
		OrigClOrdID: r.OrigClOrdID,
		OrderID:     r.OrderID,
		Ticker:      r.Ticker,
		Side:        r.Side,
		OrdType:     r.OrdType,
		Price:       r.Price,
		OrderQty:    r.OrderQty,
		CumQty:      r.CumQty,
		LeavesQty:   r.LeavesQty,
		Status:      r.OrdStatus,
		Account:     r.Account,
		Created:     ts,
		Updated:     ts,
	}
}
