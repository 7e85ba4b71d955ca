// Package random implements a demonstration strategy that submits randomly
// directed orders on each tick. It exercises the full runtime scaffolding
// without encoding any alpha.
package random

import (
	"math/rand"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mtxpt/phx-fix-examples/errs"
	"github.com/mtxpt/phx-fix-examples/internal/config"
	"github.com/mtxpt/phx-fix-examples/internal/risk"
	"github.com/mtxpt/phx-fix-examples/internal/schema"
	"github.com/mtxpt/phx-fix-examples/internal/strategy"
)

// toPips converts a pip count into a relative price offset.
var toPips = decimal.New(1, -4)

// retryBudget bounds the wall clock time spent waiting out the rate limiter
// for a single submission before the attempt is abandoned.
const retryBudget = 2 * time.Second

// errRateBudget marks a submission abandoned because the rate limiter never
// granted a token within the retry budget.
var errRateBudget = errs.New("", errs.CodeRateLimited,
	errs.WithMessage("order submission abandoned after retry budget"))

// Strategy submits one random order per trading ticker per tick, either as
// market orders or as limit orders priced through the touch.
type Strategy struct {
	base *strategy.Base
	cfg  config.Config
	log  *zap.Logger
	risk *risk.Manager
	rng  *rand.Rand

	side    schema.Side
	nextIdx int
}

// New wires the random trader to a strategy runtime. Seed fixes the random
// stream for reproducible runs; zero derives one from the clock.
func New(base *strategy.Base, cfg config.Config, riskMgr *risk.Manager, seed int64) *Strategy {
	if seed == 0 {
		seed = base.Clock().Now().UnixNano()
	}
	s := &Strategy{
		base: base,
		cfg:  cfg,
		log:  base.Logger().Named("random"),
		risk: riskMgr,
		rng:  rand.New(rand.NewSource(seed)),
		side: cfg.InitialTradingDirection,
	}
	base.SetTrader(s)
	return s
}

// Trade runs once per started tick. It honors the configured warm-up delay,
// then submits orders for the selected tickers.
func (s *Strategy) Trade() error {
	if s.cfg.Delay > 0 {
		if s.base.Clock().Now().Sub(s.base.StartedAt()) < s.cfg.Delay.Std() {
			return nil
		}
	}
	for _, ticker := range s.selectTickers() {
		if err := s.submit(ticker); err != nil {
			s.log.Warn("submission failed",
				zap.String("ticker", ticker.String()), zap.Error(err))
		}
	}
	return nil
}

// selectTickers returns the tickers to trade this tick, either the whole
// universe or the next one in rotation.
func (s *Strategy) selectTickers() []schema.Ticker {
	tickers := s.base.TradingTickers()
	if len(tickers) == 0 {
		return nil
	}
	if s.cfg.SymbolSelection == config.SelectionOneByOne {
		t := tickers[s.nextIdx%len(tickers)]
		s.nextIdx++
		return []schema.Ticker{t}
	}
	return tickers
}

// nextSide picks the order side per the configured direction mode.
func (s *Strategy) nextSide() schema.Side {
	if s.cfg.TradingDirection == config.DirectionAlternate {
		side := s.side
		s.side = s.side.Opposite()
		return side
	}
	if s.rng.Intn(2) == 0 {
		return schema.SideBuy
	}
	return schema.SideSell
}

func (s *Strategy) submit(ticker schema.Ticker) error {
	side := s.nextSide()
	qty := s.cfg.Quantity

	if err := s.risk.CheckOrder(ticker, side, qty, s.base.PositionTracker()); err != nil {
		return err
	}
	if err := s.waitForThrottle(); err != nil {
		return err
	}

	client := s.base.Client()
	switch s.cfg.TradingMode {
	case config.ModeAggressiveLimitOrders:
		price, ok := s.aggressivePrice(ticker, side)
		if !ok {
			s.log.Debug("no book for aggressive limit order",
				zap.String("ticker", ticker.String()))
			return nil
		}
		clOrdID, err := client.NewOrderSingle(ticker, side, qty, &price,
			schema.OrdTypeLimit, client.Account())
		if err != nil {
			return err
		}
		s.log.Info("limit order submitted",
			zap.String("ticker", ticker.String()),
			zap.String("side", string(side)),
			zap.String("price", price.String()),
			zap.String("cl_ord_id", clOrdID))
	default:
		clOrdID, err := client.NewOrderSingle(ticker, side, qty, nil,
			schema.OrdTypeMarket, client.Account())
		if err != nil {
			return err
		}
		s.log.Info("market order submitted",
			zap.String("ticker", ticker.String()),
			zap.String("side", string(side)),
			zap.String("cl_ord_id", clOrdID))
	}
	return nil
}

// waitForThrottle retries against the rate limiter with exponential backoff
// until a token is granted or the retry budget is exhausted.
func (s *Strategy) waitForThrottle() error {
	if s.risk.Allow(s.base.Clock().Now()) {
		return nil
	}
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 50 * time.Millisecond
	bo.MaxInterval = 500 * time.Millisecond
	started := time.Now()
	for {
		wait := bo.NextBackOff()
		if wait == backoff.Stop || time.Since(started)+wait > retryBudget {
			return errRateBudget
		}
		time.Sleep(wait)
		if s.risk.Allow(s.base.Clock().Now()) {
			return nil
		}
	}
}

// aggressivePrice crosses the spread by the configured number of pips,
// rounded to a valid tick.
func (s *Strategy) aggressivePrice(ticker schema.Ticker, side schema.Side) (decimal.Decimal, bool) {
	book := s.base.Book(ticker)
	if book == nil {
		return decimal.Decimal{}, false
	}
	offset := decimal.NewFromInt(s.cfg.AggressivenessInPips).Mul(toPips)
	if side == schema.SideBuy {
		ask, ok := book.TopAsk()
		if !ok {
			return decimal.Decimal{}, false
		}
		price := ask.Price.Mul(decimal.NewFromInt(1).Add(offset))
		return s.base.RoundUpToTick(ticker, price), true
	}
	bid, ok := book.TopBid()
	if !ok {
		return decimal.Decimal{}, false
	}
	price := bid.Price.Mul(decimal.NewFromInt(1).Sub(offset))
	return s.base.RoundDownToTick(ticker, price), true
}
