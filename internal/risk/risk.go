package risk

import (
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"github.com/mtxpt/phx-fix-examples/errs"
	"github.com/mtxpt/phx-fix-examples/internal/schema"
	"github.com/mtxpt/phx-fix-examples/internal/tracker"
)

// Limits defines risk parameters for a single strategy.
type Limits struct {
	// MaxOrderQty is the maximum quantity of a single order.
	MaxOrderQty decimal.Decimal `yaml:"max_order_qty"`

	// MaxPositionSize is the maximum absolute quantity of a single
	// instrument that a strategy can hold.
	MaxPositionSize decimal.Decimal `yaml:"max_position_size"`

	// OrdersPerSecond is the maximum sustained order submission rate.
	OrdersPerSecond float64 `yaml:"orders_per_second"`

	// Burst is the token bucket depth for the order rate limiter.
	Burst int `yaml:"burst"`
}

// Default returns permissive limits suitable for demo runs.
func Default() Limits {
	return Limits{
		MaxOrderQty:     decimal.NewFromInt(1000),
		MaxPositionSize: decimal.NewFromInt(10000),
		OrdersPerSecond: 5,
		Burst:           5,
	}
}

// Manager enforces order rate and size limits. It is owned by the dispatch
// goroutine and needs no locking.
type Manager struct {
	limits  Limits
	limiter *rate.Limiter
}

func NewManager(limits Limits) *Manager {
	burst := limits.Burst
	if burst <= 0 {
		burst = 1
	}
	return &Manager{
		limits:  limits,
		limiter: rate.NewLimiter(rate.Limit(limits.OrdersPerSecond), burst),
	}
}

// Allow consumes one order token at the given instant. Taking the time as an
// argument keeps the limiter deterministic under a virtual clock.
func (m *Manager) Allow(now time.Time) bool {
	return m.limiter.AllowN(now, 1)
}

// CheckOrder evaluates an order against the size limits, taking the current
// position into account when a position tracker is supplied.
func (m *Manager) CheckOrder(ticker schema.Ticker, side schema.Side, qty decimal.Decimal, positions *tracker.PositionTracker) error {
	if qty.Sign() <= 0 {
		return errs.New(ticker.Exchange, errs.CodeInvalid,
			errs.WithMessage("non-positive order quantity "+qty.String()))
	}
	if m.limits.MaxOrderQty.Sign() > 0 && qty.GreaterThan(m.limits.MaxOrderQty) {
		return errs.New(ticker.Exchange, errs.CodeOrderReject,
			errs.WithMessage("order quantity "+qty.String()+" exceeds limit "+m.limits.MaxOrderQty.String()))
	}
	if m.limits.MaxPositionSize.Sign() <= 0 || positions == nil {
		return nil
	}
	held := decimal.Zero
	if p := positions.Position(ticker); p != nil {
		held = p.Quantity
	}
	signed := qty
	if side == schema.SideSell {
		signed = qty.Neg()
	}
	if held.Add(signed).Abs().GreaterThan(m.limits.MaxPositionSize) {
		return errs.New(ticker.Exchange, errs.CodeOrderReject,
			errs.WithMessage("resulting position exceeds limit "+m.limits.MaxPositionSize.String()))
	}
	return nil
}
