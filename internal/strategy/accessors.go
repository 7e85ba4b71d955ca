package strategy

import (
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mtxpt/phx-fix-examples/internal/clock"
	"github.com/mtxpt/phx-fix-examples/internal/gateway"
	"github.com/mtxpt/phx-fix-examples/internal/orderbook"
	"github.com/mtxpt/phx-fix-examples/internal/schema"
	"github.com/mtxpt/phx-fix-examples/internal/tracker"
)

// The accessors below expose read-only strategy state to the pluggable
// trading step. They must only be called from the dispatch goroutine.

// State returns the current execution state.
func (b *Base) State() ExecState { return b.state }

// Book returns the local order book replica for the ticker, or nil before
// its snapshot arrived.
func (b *Base) Book(ticker schema.Ticker) *orderbook.Book { return b.books[ticker] }

// Security returns the static instrument attributes for the ticker.
func (b *Base) Security(ticker schema.Ticker) (schema.Security, bool) {
	sec, ok := b.securities[ticker]
	return sec, ok
}

// OrderTracker returns the order state tracker.
func (b *Base) OrderTracker() *tracker.OrderTracker { return b.orders }

// PositionTracker returns the position state tracker.
func (b *Base) PositionTracker() *tracker.PositionTracker { return b.positions }

// Client returns the outbound gateway client.
func (b *Base) Client() gateway.Client { return b.client }

// Clock returns the run's time source.
func (b *Base) Clock() clock.Clock { return b.clk }

// Logger returns the run's structured logger.
func (b *Base) Logger() *zap.Logger { return b.log }

// TradingTickers returns the instruments the strategy trades.
func (b *Base) TradingTickers() []schema.Ticker { return b.tradingTickers }

// StartedAt returns the instant the starting phase began.
func (b *Base) StartedAt() time.Time { return b.startedAt }

// RoundDownToTick rounds the price down to the instrument's tick size.
// Prices pass through unchanged when no tick size is known.
func (b *Base) RoundDownToTick(ticker schema.Ticker, price decimal.Decimal) decimal.Decimal {
	sec, ok := b.securities[ticker]
	if !ok || sec.MinPriceIncrement.Sign() <= 0 {
		return price
	}
	return price.Div(sec.MinPriceIncrement).Floor().Mul(sec.MinPriceIncrement)
}

// RoundUpToTick rounds the price up to the instrument's tick size.
func (b *Base) RoundUpToTick(ticker schema.Ticker, price decimal.Decimal) decimal.Decimal {
	sec, ok := b.securities[ticker]
	if !ok || sec.MinPriceIncrement.Sign() <= 0 {
		return price
	}
	return price.Div(sec.MinPriceIncrement).Ceil().Mul(sec.MinPriceIncrement)
}
