package strategy

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/mtxpt/phx-fix-examples/errs"
	"github.com/mtxpt/phx-fix-examples/internal/orderbook"
	"github.com/mtxpt/phx-fix-examples/internal/schema"
	"github.com/mtxpt/phx-fix-examples/internal/tracker"
)

// route maps each inbound event variant to its handler. An unknown variant
// is counted, logged and dropped without touching state.
func (b *Base) route(ev schema.Event) {
	switch e := ev.(type) {
	case *schema.ExecReport:
		b.onExecReport(e)
	case *schema.OrderBookSnapshot:
		b.onOrderBookSnapshot(e)
	case *schema.OrderBookUpdate:
		b.onOrderBookUpdate(e)
	case *schema.Trades:
		b.log.Debug("trades", zap.String("ticker", e.Ticker.String()), zap.Int("count", len(e.Trades)))
	case *schema.TradeCaptureReport:
		b.log.Debug("trade capture report",
			zap.String("ticker", e.Ticker.String()), zap.Int("trades", len(e.Trades)))
	case *schema.PositionReports:
		b.onPositionReports(e)
	case *schema.Heartbeat:
		b.log.Debug("heartbeat", zap.Time("time", e.Time))
	case *schema.OrderMassCancelReport:
		b.onOrderMassCancelReport(e)
	case *schema.Reject:
		b.log.Warn("session reject", zap.Error(errs.New("", errs.CodeSessionReject,
			errs.WithRefMsgType(e.RefMsgType),
			errs.WithRefSeqNum(e.RefSeqNum),
			errs.WithText(e.Reason))))
	case *schema.BusinessMessageReject:
		b.log.Warn("business message reject", zap.Error(errs.New("", errs.CodeBusinessReject,
			errs.WithRefMsgType(e.RefMsgType),
			errs.WithText(e.Reason))))
	case *schema.MarketDataRequestReject:
		b.log.Warn("market data request reject", zap.Error(errs.New("", errs.CodeMarketDataReject,
			errs.WithMessage("request "+e.MDReqID),
			errs.WithText(e.Reason))))
	case *schema.SecurityReport:
		b.onSecurityReport(e)
	case *schema.PositionRequestAck:
		b.log.Debug("position request ack",
			zap.String("pos_req_id", e.PosReqID), zap.String("text", e.Text))
	case *schema.TradeCaptureReportRequestAck:
		b.log.Debug("trade capture request ack",
			zap.String("trade_req_id", e.TradeReqID), zap.String("text", e.Text))
	case *schema.GatewayNotReady:
		b.fail(errs.New("", errs.CodeGatewayNotReady, errs.WithText(e.Text)))
	case *schema.Logon:
		b.log.Info("logon", zap.String("session_id", e.SessionID))
		b.loggedIn = true
	case *schema.Logout:
		b.onLogout(e)
	case *schema.SessionCreate:
		b.log.Debug("session created", zap.String("session_id", e.SessionID))
	default:
		b.eventsUnknown.Add(context.Background(), 1)
		b.log.Warn("unroutable event dropped", zap.Any("event", ev))
	}
}

// onExecReport classifies an execution report into one of three disjoint
// cases: a reply to a status inquiry, an explicit reject, or a regular
// order lifecycle report.
func (b *Base) onExecReport(r *schema.ExecReport) {
	switch {
	case r.ExecType == schema.ExecTypeOrderStatus:
		b.onOrderStatusReport(r)
	case r.ExecType == schema.ExecTypeRejected || r.OrdStatus == schema.OrdStatusRejected:
		b.log.Warn("order rejected", zap.Error(errs.New(r.Ticker.Exchange, errs.CodeOrderReject,
			errs.WithMessage("cl_ord_id "+r.ClOrdID),
			errs.WithText(r.Text))))
	default:
		b.orders.Process(r, b.clk.Now())
		b.recheckCancelBarrier()
	}
}

// onOrderStatusReport handles replies to an order status inquiry. A
// rejection is a "no orders" answer for the ticker; a report carrying batch
// framing joins the mass-status accumulator; anything else is informational.
func (b *Base) onOrderStatusReport(r *schema.ExecReport) {
	if r.OrdStatus == schema.OrdStatusRejected {
		b.onMassStatusNoOrders(r.Ticker, r.Text)
		return
	}
	if r.MassStatus {
		b.massBuf = append(b.massBuf, r)
		if len(b.massBuf) >= r.TotNumReports && r.LastRptRequested {
			batch := b.massBuf
			b.massBuf = nil
			b.onMassStatus(batch)
		}
		return
	}
	b.log.Info("order status report",
		zap.String("cl_ord_id", r.ClOrdID),
		zap.String("ord_status", string(r.OrdStatus)))
}

// onMassStatus applies a complete mass-status batch. A batch whose tickers
// are not all still outstanding is late or duplicated and is ignored.
func (b *Base) onMassStatus(reports []*schema.ExecReport) {
	tickers := schema.Tickers(reports)
	if !b.starting.ContainsAll(ReqWorkingOrders, tickers) {
		b.log.Info("late mass status batch ignored",
			zap.Int("reports", len(reports)))
		return
	}
	b.orders.SetSnapshots(reports, b.clk.Now(), true)
	b.starting.SatisfyTickers(ReqWorkingOrders, tickers)
}

// onMassStatusNoOrders records that a ticker has no working orders.
func (b *Base) onMassStatusNoOrders(ticker schema.Ticker, text string) {
	if !b.starting.HasTicker(ReqWorkingOrders, ticker) {
		b.log.Info("late no-orders status ignored", zap.String("ticker", ticker.String()))
		return
	}
	b.log.Info("no working orders",
		zap.String("ticker", ticker.String()),
		zap.String("text", strings.TrimSpace(text)))
	b.starting.SatisfyTicker(ReqWorkingOrders, ticker)
}

// recheckCancelBarrier clears the cancel requirement once the tracker shows
// no orders left working, driven by the execution report stream rather than
// mass cancel replies.
func (b *Base) recheckCancelBarrier() {
	if !b.stopping.Has(ReqCancelOpenOrders) {
		return
	}
	open := b.orders.OpenOrders()
	pending := b.orders.PendingOrders()
	if len(open) == 0 && len(pending) == 0 {
		b.stopping.SatisfyTickers(ReqCancelOpenOrders, b.stopping.Outstanding(ReqCancelOpenOrders))
		return
	}
	for status, n := range tracker.StatusCount(open) {
		b.log.Info("orders still working",
			zap.String("status", string(status)), zap.Int("count", n))
	}
}

func (b *Base) onOrderBookSnapshot(s *schema.OrderBookSnapshot) {
	b.starting.SatisfyTicker(ReqOrderBookSnapshots, s.Ticker)
	b.books[s.Ticker] = orderbook.New(s.Ticker, s.Bids, s.Asks, s.ExchangeTime, s.LocalTime)
}

// onOrderBookUpdate applies incremental depth changes. An update racing
// ahead of its snapshot is dropped.
func (b *Base) onOrderBookUpdate(u *schema.OrderBookUpdate) {
	book, ok := b.books[u.Ticker]
	if !ok {
		b.log.Debug("book update before snapshot dropped",
			zap.String("ticker", u.Ticker.String()))
		return
	}
	for _, entry := range u.Updates {
		book.Update(entry.Price, entry.Qty, entry.IsBid)
	}
}

func (b *Base) onPositionReports(p *schema.PositionReports) {
	if b.starting.Has(ReqPositionSnapshots) {
		b.positions.SetSnapshots(p.Reports, b.clk.Now(), true)
		b.starting.Satisfy(ReqPositionSnapshots)
		return
	}
	if b.cfg.PrintReports {
		for _, r := range p.Reports {
			b.log.Info("position report",
				zap.String("ticker", r.Ticker.String()),
				zap.String("qty", r.Qty.String()),
				zap.String("avg_px", r.AvgPx.String()))
		}
	}
}

func (b *Base) onSecurityReport(s *schema.SecurityReport) {
	for ticker, sec := range s.Securities {
		b.securities[ticker] = sec
	}
	b.starting.Satisfy(ReqSecurityReports)
}

func (b *Base) onOrderMassCancelReport(r *schema.OrderMassCancelReport) {
	if !b.stopping.HasTicker(ReqCancelOpenOrders, r.Ticker) {
		b.log.Debug("unexpected mass cancel report ignored",
			zap.String("ticker", r.Ticker.String()))
		return
	}
	if r.Response == schema.MassCancelRejected {
		b.log.Warn("mass cancel rejected", zap.Error(errs.New(r.Ticker.Exchange, errs.CodeMassCancelReject,
			errs.WithMessage(r.Ticker.String()),
			errs.WithText(r.Text))))
		return
	}
	b.stopping.SatisfyTicker(ReqCancelOpenOrders, r.Ticker)
}

// onLogout treats a logout outside of wind-down as a terminal session fault.
func (b *Base) onLogout(e *schema.Logout) {
	b.loggedIn = false
	switch b.state {
	case Stopping, Stopped, Finished, Exception:
		b.log.Info("logout", zap.String("text", e.Text))
	default:
		b.fail(errs.New("", errs.CodeSessionReject,
			errs.WithMessage("logout during run"),
			errs.WithText(e.Text)))
	}
}
