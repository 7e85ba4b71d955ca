package schema

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExecReport captures a single FIX execution report decoded by the transport.
//
// Reports replying to an order mass status request additionally carry the
// declared batch size and the last-report flag so the runtime can aggregate
// the multi-report response.
type ExecReport struct {
	Ticker       Ticker
	ClOrdID      string
	OrigClOrdID  string
	OrderID      string
	ExecID       string
	ExecType     ExecType
	OrdStatus    OrdStatus
	Side         Side
	OrdType      OrdType
	Price        decimal.Decimal
	OrderQty     decimal.Decimal
	CumQty       decimal.Decimal
	LeavesQty    decimal.Decimal
	LastQty      decimal.Decimal
	LastPx       decimal.Decimal
	Account      string
	Text         string
	TransactTime time.Time

	// Mass status response fields (absent on regular reports).
	MassStatus       bool
	TotNumReports    int
	LastRptRequested bool
}

func (*ExecReport) isEvent() {}

// Key returns the tracking key for the report's order.
func (r *ExecReport) Key() string {
	if r.ClOrdID != "" {
		return r.ClOrdID
	}
	return r.OrderID
}

// Tickers collects the distinct tickers referenced by the given reports.
func Tickers(reports []*ExecReport) []Ticker {
	seen := make(map[Ticker]struct{}, len(reports))
	out := make([]Ticker, 0, len(reports))
	for _, r := range reports {
		if _, ok := seen[r.Ticker]; ok {
			continue
		}
		seen[r.Ticker] = struct{}{}
		out = append(out, r.Ticker)
	}
	return out
}
