package tracker

import (
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mtxpt/phx-fix-examples/internal/schema"
)

// Position is the net (or per-account) holding for one ticker.
type Position struct {
	Ticker   schema.Ticker
	Account  string
	Quantity decimal.Decimal
	AvgPx    decimal.Decimal
	Updated  time.Time
}

// PositionTracker maintains per-ticker positions. With netting enabled, buys
// and sells offset into a single signed quantity per ticker.
type PositionTracker struct {
	name      string
	netting   bool
	log       *zap.Logger
	positions map[schema.Ticker]*Position
}

func NewPositionTracker(name string, netting bool, log *zap.Logger) *PositionTracker {
	if log == nil {
		log = zap.NewNop()
	}
	return &PositionTracker{
		name:      name,
		netting:   netting,
		log:       log,
		positions: make(map[schema.Ticker]*Position),
	}
}

// Positions returns the tracked positions keyed by ticker.
func (t *PositionTracker) Positions() map[schema.Ticker]*Position { return t.positions }

// Position returns the position for the given ticker, or nil.
func (t *PositionTracker) Position(ticker schema.Ticker) *Position {
	return t.positions[ticker]
}

// SetSnapshots replaces or merges tracked positions from position reports.
func (t *PositionTracker) SetSnapshots(reports []*schema.PositionReport, ts time.Time, overwrite bool) {
	if overwrite {
		t.positions = make(map[schema.Ticker]*Position)
	}
	for _, r := range reports {
		t.positions[r.Ticker] = &Position{
			Ticker:   r.Ticker,
			Account:  r.Account,
			Quantity: r.Qty,
			AvgPx:    r.AvgPx,
			Updated:  ts,
		}
	}
	t.log.Info("position snapshots applied",
		zap.String("tracker", t.name),
		zap.Int("reports", len(reports)),
		zap.Bool("overwrite", overwrite),
		zap.Int("positions", len(t.positions)))
}

// ApplyFill adjusts the position for an executed trade. Sells reduce the
// signed quantity, buys increase it.
func (t *PositionTracker) ApplyFill(ticker schema.Ticker, account string, side schema.Side, qty, px decimal.Decimal, ts time.Time) {
	signed := qty
	if side == schema.SideSell {
		signed = qty.Neg()
	}
	p, ok := t.positions[ticker]
	if !ok {
		t.positions[ticker] = &Position{
			Ticker:   ticker,
			Account:  account,
			Quantity: signed,
			AvgPx:    px,
			Updated:  ts,
		}
		return
	}
	prev := p.Quantity
	p.Quantity = prev.Add(signed)
	p.Updated = ts
	if t.netting {
		// Average price only tracks same-direction accumulation. A fill
		// that reduces or flips the position keeps the last traded price.
		if prev.Sign() == 0 || prev.Sign() == signed.Sign() {
			total := prev.Abs().Add(qty)
			if total.Sign() > 0 {
				p.AvgPx = p.AvgPx.Mul(prev.Abs()).Add(px.Mul(qty)).Div(total)
			}
		} else {
			p.AvgPx = px
		}
	} else {
		p.AvgPx = px
	}
}
