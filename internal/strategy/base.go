// Package strategy implements the execution state machine, readiness
// barriers and inbound event dispatch that carry a trading strategy from
// session logon through steady-state trading to orderly wind-down.
package strategy

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/mtxpt/phx-fix-examples/errs"
	"github.com/mtxpt/phx-fix-examples/internal/bus"
	"github.com/mtxpt/phx-fix-examples/internal/clock"
	"github.com/mtxpt/phx-fix-examples/internal/config"
	"github.com/mtxpt/phx-fix-examples/internal/gateway"
	"github.com/mtxpt/phx-fix-examples/internal/orderbook"
	"github.com/mtxpt/phx-fix-examples/internal/schema"
	"github.com/mtxpt/phx-fix-examples/internal/tracker"
)

// Trader is the pluggable trading step, invoked once per dispatch tick while
// the strategy is started. Implementations read market and order state
// through the Base accessors and submit orders through the gateway client.
type Trader interface {
	Trade() error
}

// maxChainedTransitions bounds same-tick transition chains so a pathological
// instant-transition cycle cannot spin the evaluator forever.
const maxChainedTransitions = 8

// Base drives a strategy run. All of its state is owned by the single
// goroutine executing Run; the inbound queue is the only cross-goroutine
// handoff.
type Base struct {
	cfg    config.Config
	client gateway.Client
	queue  *bus.Queue
	clk    clock.Clock
	log    *zap.Logger
	trader Trader

	state    ExecState
	starting *Barriers
	stopping *Barriers

	books      map[schema.Ticker]*orderbook.Book
	securities map[schema.Ticker]schema.Security
	orders     *tracker.OrderTracker
	positions  *tracker.PositionTracker

	massBuf []*schema.ExecReport

	timer *AlignedTimer

	mktTickers     []schema.Ticker
	tradingTickers []schema.Ticker

	loggedIn   bool
	startedAt  time.Time
	stoppingAt time.Time
	completed  bool
	fault      error
	stopFlag   chan struct{}

	lastStartingVersion uint64
	lastStoppingVersion uint64

	eventsDispatched metric.Int64Counter
	eventsUnknown    metric.Int64Counter
	queueTimeouts    metric.Int64Counter
	stateTransitions metric.Int64Counter
}

// New assembles a strategy runtime from its collaborators. The clock and
// logger default to the wall clock and a no-op logger.
func New(cfg config.Config, client gateway.Client, queue *bus.Queue, clk clock.Clock, log *zap.Logger) *Base {
	if clk == nil {
		clk = clock.Wall{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	positions := tracker.NewPositionTracker("positions", true, log)
	b := &Base{
		cfg:            cfg,
		client:         client,
		queue:          queue,
		clk:            clk,
		log:            log,
		state:          Stopped,
		starting:       NewBarriers(),
		stopping:       NewBarriers(),
		books:          make(map[schema.Ticker]*orderbook.Book),
		securities:     make(map[schema.Ticker]schema.Security),
		positions:      positions,
		orders:         tracker.NewOrderTracker("orders", log, positions, cfg.PrintReports),
		mktTickers:     cfg.MarketDataTickers(),
		tradingTickers: cfg.TradingTickers(),
		stopFlag:       make(chan struct{}),
	}
	b.timer = NewAlignedTimer(cfg.TimerInterval.Std(), cfg.TimerAlignmentFreq.Std(), b.persistHistory)

	meter := otel.Meter("phx.strategy")
	b.eventsDispatched, _ = meter.Int64Counter("strategy.events.dispatched",
		metric.WithDescription("Inbound events routed to a handler"),
		metric.WithUnit("{event}"))
	b.eventsUnknown, _ = meter.Int64Counter("strategy.events.unknown",
		metric.WithDescription("Inbound events dropped as unroutable"),
		metric.WithUnit("{event}"))
	b.queueTimeouts, _ = meter.Int64Counter("strategy.queue.timeouts",
		metric.WithDescription("Queue waits that expired without an event"),
		metric.WithUnit("{timeout}"))
	b.stateTransitions, _ = meter.Int64Counter("strategy.state.transitions",
		metric.WithDescription("Execution state transitions"),
		metric.WithUnit("{transition}"))
	return b
}

// SetTrader installs the pluggable trading step. Must be called before Run.
func (b *Base) SetTrader(t Trader) { b.trader = t }

// RequestStop asks the run to wind down at the next evaluation point. Safe
// to call from any goroutine, typically a signal handler.
func (b *Base) RequestStop() {
	select {
	case <-b.stopFlag:
	default:
		close(b.stopFlag)
	}
}

func (b *Base) stopRequested() bool {
	select {
	case <-b.stopFlag:
		return true
	default:
		return false
	}
}

// Run executes the dispatch loop until the run completes. It returns the
// terminal fault, if any.
func (b *Base) Run() error {
	b.log.Info("strategy run starting",
		zap.String("account", b.client.Account()),
		zap.Duration("timeout", b.cfg.Timeout.Std()))
	for !b.completed {
		b.step()
	}
	b.timer.Stop()
	if b.fault != nil {
		b.log.Error("strategy run ended with fault", zap.Error(b.fault))
		return b.fault
	}
	b.log.Info("strategy run finished cleanly")
	return nil
}

// step processes at most one inbound event and then re-evaluates the state
// machine. A queue timeout is a scheduling tick, not an error.
func (b *Base) step() {
	ev, ok := b.queue.Pop(b.cfg.QueueTimeout.Std())
	if ok {
		b.safeRoute(ev)
	} else {
		b.queueTimeouts.Add(context.Background(), 1)
	}
	b.safeEvaluate()
}

// safeRoute dispatches one event, converting a handler panic into the run's
// terminal fault instead of unwinding the dispatch loop.
func (b *Base) safeRoute(ev schema.Event) {
	defer func() {
		if r := recover(); r != nil {
			b.fail(errs.New("", errs.CodeInternal,
				errs.WithMessage(fmt.Sprintf("panic in event handler: %v", r))))
		}
	}()
	b.eventsDispatched.Add(context.Background(), 1)
	b.route(ev)
}

func (b *Base) safeEvaluate() {
	defer func() {
		if r := recover(); r != nil {
			b.fail(errs.New("", errs.CodeInternal,
				errs.WithMessage(fmt.Sprintf("panic in state evaluation: %v", r))))
		}
	}()
	b.evaluate()
}

// evaluate runs chained state transitions until the state is stable, bounded
// so an instant-transition cycle cannot loop forever.
func (b *Base) evaluate() {
	for i := 0; i < maxChainedTransitions; i++ {
		if !b.evaluateOnce() {
			return
		}
	}
	b.fail(errs.New("", errs.CodeInternal,
		errs.WithMessage("state machine did not stabilize"),
		errs.WithText(b.state.String())))
}

// evaluateOnce applies one transition step, reporting whether the state
// changed and another step should run in the same tick.
func (b *Base) evaluateOnce() bool {
	switch b.state {
	case Stopped:
		if b.completed {
			return false
		}
		if b.stopRequested() {
			b.transition(Finished)
			b.completed = true
			return false
		}
		if err := b.client.Start(); err != nil {
			b.fail(errs.New("", errs.CodeGatewayNotReady,
				errs.WithMessage("transport start"), errs.WithCause(err)))
			return false
		}
		b.transition(LoggingIn)
		return false

	case LoggingIn:
		if b.stopRequested() {
			if err := b.client.Stop(); err != nil {
				b.log.Warn("transport stop failed", zap.Error(err))
			}
			b.transition(Finished)
			b.completed = true
			return false
		}
		if !b.loggedIn {
			return false
		}
		b.transition(LoggedIn)
		return true

	case LoggedIn:
		b.beginStarting()
		b.transition(Starting)
		return true

	case Starting:
		b.logProgress(b.starting, "starting", &b.lastStartingVersion)
		if b.starting.Empty() {
			b.log.Info("all starting barriers satisfied")
			b.transition(Started)
			return true
		}
		if b.timedOut() || b.stopRequested() {
			b.log.Warn("abandoning startup",
				zap.String("outstanding", b.starting.Progress()))
			b.beginStopping()
			return true
		}
		return false

	case Started:
		if b.trader != nil {
			if err := b.trader.Trade(); err != nil {
				b.log.Warn("trade step failed", zap.Error(err))
			}
		}
		if b.timedOut() || b.stopRequested() {
			b.beginStopping()
			return true
		}
		return false

	case Stopping:
		b.logProgress(b.stopping, "stopping", &b.lastStoppingVersion)
		if !b.stopping.Empty() && !b.cancelDeadlineExceeded() {
			return false
		}
		if !b.stopping.Empty() {
			b.log.Warn("cancel timeout expired with barriers outstanding",
				zap.String("outstanding", b.stopping.Progress()))
			b.stopping.Clear()
		}
		if err := b.client.Stop(); err != nil {
			b.log.Warn("transport stop failed", zap.Error(err))
		}
		b.loggedIn = false
		if b.timedOut() || b.stopRequested() {
			b.transition(Finished)
			b.completed = true
			return false
		}
		// Run budget remains, allow a restart on the next tick.
		b.transition(Stopped)
		return false

	case Finished:
		b.completed = true
		return false

	case Exception:
		// Drain only. The run timeout still bounds how long draining lasts.
		if b.timedOut() || b.stopRequested() {
			b.completed = true
		}
		return false

	default:
		return false
	}
}

func (b *Base) transition(next ExecState) {
	b.log.Info("execution state transition",
		zap.String("from", b.state.String()),
		zap.String("to", next.String()))
	b.stateTransitions.Add(context.Background(), 1)
	b.state = next
}

// fail records the run's terminal fault and forces the Exception state. A
// second fault after the first is logged but does not replace it.
func (b *Base) fail(err error) {
	if b.fault != nil {
		b.log.Error("fault while already in exception state", zap.Error(err))
		return
	}
	b.fault = err
	b.log.Error("terminal fault", zap.Error(err), zap.String("state", b.state.String()))
	b.timer.Stop()
	if b.startedAt.IsZero() {
		// Without a start instant the run timeout would never expire.
		b.startedAt = b.clk.Now()
	}
	b.transition(Exception)
}

// timedOut reports whether the configured run budget has elapsed. Expiry is
// detected only at evaluation points.
func (b *Base) timedOut() bool {
	if b.cfg.Timeout <= 0 || b.startedAt.IsZero() {
		return false
	}
	return b.clk.Now().Sub(b.startedAt) >= b.cfg.Timeout.Std()
}

func (b *Base) cancelDeadlineExceeded() bool {
	if b.cfg.CancelTimeout <= 0 || b.stoppingAt.IsZero() {
		return false
	}
	return b.clk.Now().Sub(b.stoppingAt) >= b.cfg.CancelTimeout.Std()
}

// beginStarting snapshots the starting barriers and issues every readiness
// request. The run timeout is measured from here.
func (b *Base) beginStarting() {
	b.startedAt = b.clk.Now()
	b.starting.Clear()
	b.starting.RequireCount(ReqSecurityReports, 1)
	b.starting.RequireSet(ReqOrderBookSnapshots, b.mktTickers)
	b.starting.RequireSet(ReqWorkingOrders, b.tradingTickers)
	b.starting.RequireCount(ReqPositionSnapshots, 1)

	if _, err := b.client.SecurityListRequest(); err != nil {
		b.log.Warn("security list request failed", zap.Error(err))
	}
	if _, err := b.client.MarketDataRequest(b.mktTickers, b.cfg.BookDepth,
		schema.SubscriptionSnapshotUpdates, schema.MarketDataBook); err != nil {
		b.log.Warn("market data request failed", zap.Error(err))
	}
	if _, err := b.client.MarketDataRequest(b.mktTickers, b.cfg.BookDepth,
		schema.SubscriptionSnapshotUpdates, schema.MarketDataTrade); err != nil {
		b.log.Warn("trade stream request failed", zap.Error(err))
	}
	for _, ticker := range b.tradingTickers {
		if err := b.client.OrderMassStatusRequest(ticker, b.client.NextRequestID()); err != nil {
			b.log.Warn("order mass status request failed",
				zap.String("ticker", ticker.String()), zap.Error(err))
		}
	}
	for _, exchange := range schema.Exchanges(b.tradingTickers) {
		if err := b.client.RequestForPositions(exchange, b.client.Account(),
			b.client.NextRequestID(), schema.SubscriptionSnapshot); err != nil {
			b.log.Warn("position request failed",
				zap.String("exchange", exchange), zap.Error(err))
		}
		if b.cfg.SubscribeForPositionUpdates {
			if err := b.client.RequestForPositions(exchange, b.client.Account(),
				b.client.NextRequestID(), schema.SubscriptionSnapshotUpdates); err != nil {
				b.log.Warn("position subscription failed",
					zap.String("exchange", exchange), zap.Error(err))
			}
		}
	}
	if b.cfg.SubscribeForTradeCaptureReports {
		if err := b.client.TradeCaptureReportRequest(b.client.NextRequestID(),
			schema.SubscriptionSnapshotUpdates); err != nil {
			b.log.Warn("trade capture subscription failed", zap.Error(err))
		}
	}
	b.timer.Start()
	b.log.Info("starting barriers armed", zap.String("checklist", b.starting.Progress()))
}

// beginStopping stops the timer, persists the message journal (before the
// cancel fan-out when configured, after it otherwise), arms the cancel
// barriers and transitions to Stopping. The cancel timeout bounds how long
// the barriers may stay outstanding.
func (b *Base) beginStopping() {
	b.timer.Stop()
	if b.cfg.SaveBeforeCancelOrdersOnExit {
		b.persistHistoryKeep()
	}
	b.stopping.Clear()
	if b.cfg.CancelOrdersOnExit && b.loggedIn {
		b.stopping.RequireSet(ReqCancelOpenOrders, b.tradingTickers)
		if b.cfg.UseMassCancelRequest {
			for _, ticker := range b.tradingTickers {
				if err := b.client.OrderMassCancelRequest(ticker); err != nil {
					b.log.Warn("mass cancel request failed",
						zap.String("ticker", ticker.String()), zap.Error(err))
				}
			}
		} else {
			for _, o := range b.orders.OpenOrders() {
				if _, err := b.client.OrderCancelRequest(o.Ticker, o.ClOrdID, o.Side, o.LeavesQty); err != nil {
					b.log.Warn("cancel request failed",
						zap.String("cl_ord_id", o.ClOrdID), zap.Error(err))
				}
			}
		}
	}
	if !b.cfg.SaveBeforeCancelOrdersOnExit {
		b.persistHistoryKeep()
	}
	b.stoppingAt = b.clk.Now()
	b.transition(Stopping)
	if !b.stopping.Empty() {
		b.log.Info("stopping barriers armed", zap.String("checklist", b.stopping.Progress()))
	}
}

// logProgress emits the barrier checklist whenever the set changed since it
// was last logged. Each barrier set carries its own last-logged version so
// the two phases cannot mask each other.
func (b *Base) logProgress(barriers *Barriers, phase string, last *uint64) {
	if barriers.Version() == *last {
		return
	}
	*last = barriers.Version()
	b.log.Info(phase+" barrier progress", zap.String("checklist", barriers.Progress()))
}

// persistHistory is the periodic timer callback. It runs on the timer
// goroutine and must not touch dispatch-owned state.
func (b *Base) persistHistory() {
	prefix := gateway.FileNamePrefix(b.client.Username(), b.client.Account(), b.clk.Now())
	if err := b.client.SaveMessageHistory(prefix, true); err != nil {
		b.log.Warn("periodic history save failed", zap.Error(err))
	}
}

func (b *Base) persistHistoryKeep() {
	prefix := gateway.FileNamePrefix(b.client.Username(), b.client.Account(), b.clk.Now())
	if err := b.client.SaveMessageHistory(prefix, false); err != nil {
		b.log.Warn("history save failed", zap.Error(err))
	}
}
