// Package sim provides an in-process trading gateway that answers every
// request class locally, so strategies can run end to end without a live
// FIX session.
package sim

import (
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mtxpt/phx-fix-examples/errs"
	"github.com/mtxpt/phx-fix-examples/internal/bus"
	"github.com/mtxpt/phx-fix-examples/internal/clock"
	"github.com/mtxpt/phx-fix-examples/internal/gateway"
	"github.com/mtxpt/phx-fix-examples/internal/schema"
)

const venue = "sim"

var (
	tickSize  = decimal.NewFromFloat(0.01)
	minQty    = decimal.NewFromFloat(0.001)
	halfSprd  = decimal.NewFromFloat(0.05)
	levelStep = decimal.NewFromFloat(0.02)
)

// Gateway simulates a venue behind the Client interface. Replies are pushed
// synchronously onto the strategy's event queue, so request and reply keep
// FIFO order with respect to other traffic.
type Gateway struct {
	account  string
	username string
	queue    *bus.Queue
	clk      clock.Clock
	log      *zap.Logger
	journal  *gateway.Journal
	rng      *rand.Rand

	mu    sync.Mutex
	mids  map[schema.Ticker]decimal.Decimal
	open  map[string]*schema.ExecReport
	posns map[schema.Ticker]decimal.Decimal
}

// Config seeds the simulated venue.
type Config struct {
	Account  string
	Username string
	// Tickers and their starting mid prices. Unlisted tickers default to 100.
	Mids map[schema.Ticker]decimal.Decimal
	// Seed fixes the price walk for reproducible runs. Zero derives a seed
	// from the clock.
	Seed       int64
	JournalDir string
}

func New(cfg Config, queue *bus.Queue, clk clock.Clock, log *zap.Logger) *Gateway {
	if log == nil {
		log = zap.NewNop()
	}
	if clk == nil {
		clk = clock.Wall{}
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = clk.Now().UnixNano()
	}
	mids := make(map[schema.Ticker]decimal.Decimal, len(cfg.Mids))
	for t, m := range cfg.Mids {
		mids[t] = m
	}
	dir := cfg.JournalDir
	if dir == "" {
		dir = "export"
	}
	return &Gateway{
		account:  cfg.Account,
		username: cfg.Username,
		queue:    queue,
		clk:      clk,
		log:      log,
		journal:  gateway.NewJournal(dir),
		rng:      rand.New(rand.NewSource(seed)),
		mids:     mids,
		open:     make(map[string]*schema.ExecReport),
		posns:    make(map[schema.Ticker]decimal.Decimal),
	}
}

func (g *Gateway) Account() string  { return g.account }
func (g *Gateway) Username() string { return g.username }

func (g *Gateway) NextRequestID() string { return uuid.NewString() }

func (g *Gateway) Start() error {
	sessionID := uuid.NewString()
	g.push("A", &schema.SessionCreate{SessionID: sessionID})
	g.push("A", &schema.Logon{SessionID: sessionID})
	g.log.Info("sim session started", zap.String("session_id", sessionID))
	return nil
}

func (g *Gateway) Stop() error {
	g.push("5", &schema.Logout{Text: "session closed"})
	return nil
}

func (g *Gateway) SecurityListRequest() (string, error) {
	reqID := g.NextRequestID()
	g.record(gateway.DirectionOut, "x", "SecurityListRequest id="+reqID)

	g.mu.Lock()
	securities := make(map[schema.Ticker]schema.Security, len(g.mids))
	for t := range g.mids {
		securities[t] = schema.Security{
			Ticker:            t,
			Description:       t.Symbol,
			Currency:          "USD",
			MinPriceIncrement: tickSize,
			MinTradeQty:       minQty,
		}
	}
	g.mu.Unlock()

	g.push("y", &schema.SecurityReport{Securities: securities})
	return reqID, nil
}

func (g *Gateway) MarketDataRequest(tickers []schema.Ticker, depth int, subType schema.SubscriptionType, content schema.MarketDataContent) (string, error) {
	reqID := g.NextRequestID()
	g.record(gateway.DirectionOut, "V", "MarketDataRequest id="+reqID)
	if depth <= 0 {
		depth = 5
	}
	now := g.clk.Now()
	for _, t := range tickers {
		switch content {
		case schema.MarketDataBook:
			g.push("W", g.snapshot(t, depth, now))
		case schema.MarketDataTrade:
			g.push("W", &schema.Trades{Ticker: t})
		default:
			return "", errs.New(venue, errs.CodeInvalid,
				errs.WithMessage("unsupported market data content "+string(content)))
		}
	}
	return reqID, nil
}

// PublishBookUpdate walks the mid price and emits an incremental depth
// change for the ticker. Tests and demo runs call this to keep books live.
func (g *Gateway) PublishBookUpdate(ticker schema.Ticker) {
	g.mu.Lock()
	mid := g.mid(ticker)
	drift := decimal.NewFromFloat((g.rng.Float64() - 0.5) * 0.1)
	mid = mid.Add(drift)
	g.mids[ticker] = mid
	g.mu.Unlock()

	now := g.clk.Now()
	g.push("W", &schema.OrderBookUpdate{
		Ticker: ticker,
		Updates: []schema.BookUpdateEntry{
			{Price: mid.Sub(halfSprd), Qty: decimal.NewFromInt(int64(1 + g.rng.Intn(9))), IsBid: true},
			{Price: mid.Add(halfSprd), Qty: decimal.NewFromInt(int64(1 + g.rng.Intn(9))), IsBid: false},
		},
		ExchangeTime: now,
		LocalTime:    now,
	})
}

func (g *Gateway) OrderMassStatusRequest(ticker schema.Ticker, reqID string) error {
	g.record(gateway.DirectionOut, "AF", "OrderMassStatusRequest id="+reqID)

	g.mu.Lock()
	var matched []*schema.ExecReport
	for _, r := range g.open {
		if r.Ticker == ticker {
			matched = append(matched, r)
		}
	}
	g.mu.Unlock()

	if len(matched) == 0 {
		g.push("8", &schema.ExecReport{
			Ticker:           ticker,
			ExecType:         schema.ExecTypeOrderStatus,
			OrdStatus:        schema.OrdStatusRejected,
			Text:             "NO ORDERS",
			TransactTime:     g.clk.Now(),
			MassStatus:       true,
			TotNumReports:    1,
			LastRptRequested: true,
		})
		return nil
	}
	for i, r := range matched {
		cp := *r
		cp.ExecType = schema.ExecTypeOrderStatus
		cp.MassStatus = true
		cp.TotNumReports = len(matched)
		cp.LastRptRequested = i == len(matched)-1
		g.push("8", &cp)
	}
	return nil
}

func (g *Gateway) RequestForPositions(exchange, account, reqID string, subType schema.SubscriptionType) error {
	g.record(gateway.DirectionOut, "AN", "RequestForPositions id="+reqID)
	g.push("AO", &schema.PositionRequestAck{PosReqID: reqID, Exchange: exchange})

	g.mu.Lock()
	reports := make([]*schema.PositionReport, 0, len(g.posns))
	for t, qty := range g.posns {
		reports = append(reports, &schema.PositionReport{
			Account: account,
			Ticker:  t,
			Qty:     qty,
		})
	}
	g.mu.Unlock()

	g.push("AP", &schema.PositionReports{PosReqID: reqID, Reports: reports})
	return nil
}

func (g *Gateway) TradeCaptureReportRequest(reqID string, subType schema.SubscriptionType) error {
	g.record(gateway.DirectionOut, "AD", "TradeCaptureReportRequest id="+reqID)
	g.push("AQ", &schema.TradeCaptureReportRequestAck{TradeReqID: reqID})
	return nil
}

func (g *Gateway) NewOrderSingle(ticker schema.Ticker, side schema.Side, qty decimal.Decimal, price *decimal.Decimal, ordType schema.OrdType, account string) (string, error) {
	if qty.Sign() <= 0 {
		return "", errs.New(venue, errs.CodeInvalid, errs.WithMessage("non-positive quantity"))
	}
	if ordType == schema.OrdTypeLimit && price == nil {
		return "", errs.New(venue, errs.CodeInvalid, errs.WithMessage("limit order without price"))
	}
	clOrdID := uuid.NewString()
	g.record(gateway.DirectionOut, "D", "NewOrderSingle cl_ord_id="+clOrdID)

	now := g.clk.Now()
	base := schema.ExecReport{
		Ticker:       ticker,
		ClOrdID:      clOrdID,
		OrderID:      uuid.NewString(),
		Side:         side,
		OrdType:      ordType,
		OrderQty:     qty,
		LeavesQty:    qty,
		Account:      account,
		TransactTime: now,
	}
	if price != nil {
		base.Price = *price
	}

	pending := base
	pending.ExecID = uuid.NewString()
	pending.ExecType = schema.ExecTypePendingNew
	pending.OrdStatus = schema.OrdStatusPendingNew
	g.push("8", &pending)

	ack := base
	ack.ExecID = uuid.NewString()
	ack.ExecType = schema.ExecTypeNew
	ack.OrdStatus = schema.OrdStatusNew
	g.push("8", &ack)

	if g.crosses(ticker, side, ordType, price) {
		g.fill(&base)
		return clOrdID, nil
	}

	g.mu.Lock()
	rest := base
	rest.OrdStatus = schema.OrdStatusNew
	g.open[clOrdID] = &rest
	g.mu.Unlock()
	return clOrdID, nil
}

func (g *Gateway) OrderCancelRequest(ticker schema.Ticker, origClOrdID string, side schema.Side, qty decimal.Decimal) (string, error) {
	clOrdID := uuid.NewString()
	g.record(gateway.DirectionOut, "F", "OrderCancelRequest orig="+origClOrdID)

	g.mu.Lock()
	r, ok := g.open[origClOrdID]
	if ok {
		delete(g.open, origClOrdID)
	}
	g.mu.Unlock()

	if !ok {
		g.push("8", &schema.ExecReport{
			Ticker:       ticker,
			ClOrdID:      clOrdID,
			OrigClOrdID:  origClOrdID,
			ExecType:     schema.ExecTypeRejected,
			OrdStatus:    schema.OrdStatusRejected,
			Side:         side,
			Text:         "unknown order",
			TransactTime: g.clk.Now(),
		})
		return clOrdID, nil
	}

	canceled := *r
	canceled.OrigClOrdID = origClOrdID
	canceled.ExecID = uuid.NewString()
	canceled.ExecType = schema.ExecTypeCanceled
	canceled.OrdStatus = schema.OrdStatusCanceled
	canceled.LeavesQty = decimal.Zero
	canceled.TransactTime = g.clk.Now()
	g.push("8", &canceled)
	return clOrdID, nil
}

func (g *Gateway) OrderMassCancelRequest(ticker schema.Ticker) error {
	g.record(gateway.DirectionOut, "q", "OrderMassCancelRequest "+ticker.String())

	g.mu.Lock()
	var canceled []*schema.ExecReport
	for id, r := range g.open {
		if r.Ticker != ticker {
			continue
		}
		delete(g.open, id)
		cp := *r
		cp.ExecID = uuid.NewString()
		cp.ExecType = schema.ExecTypeCanceled
		cp.OrdStatus = schema.OrdStatusCanceled
		cp.LeavesQty = decimal.Zero
		cp.TransactTime = g.clk.Now()
		canceled = append(canceled, &cp)
	}
	g.mu.Unlock()

	for _, r := range canceled {
		g.push("8", r)
	}
	g.push("r", &schema.OrderMassCancelReport{
		Ticker:   ticker,
		Response: schema.MassCancelAccepted,
	})
	return nil
}

func (g *Gateway) SaveMessageHistory(prefix string, purge bool) error {
	return g.journal.Save(prefix, purge)
}

// crosses reports whether an order would execute immediately against the
// simulated book.
func (g *Gateway) crosses(ticker schema.Ticker, side schema.Side, ordType schema.OrdType, price *decimal.Decimal) bool {
	if ordType == schema.OrdTypeMarket {
		return true
	}
	g.mu.Lock()
	mid := g.mid(ticker)
	g.mu.Unlock()
	if side == schema.SideBuy {
		return price.GreaterThanOrEqual(mid.Add(halfSprd))
	}
	return price.LessThanOrEqual(mid.Sub(halfSprd))
}

func (g *Gateway) fill(base *schema.ExecReport) {
	g.mu.Lock()
	mid := g.mid(base.Ticker)
	px := mid.Add(halfSprd)
	signed := base.OrderQty
	if base.Side == schema.SideSell {
		px = mid.Sub(halfSprd)
		signed = signed.Neg()
	}
	g.posns[base.Ticker] = g.posns[base.Ticker].Add(signed)
	g.mu.Unlock()

	filled := *base
	filled.ExecID = uuid.NewString()
	filled.ExecType = schema.ExecTypeTrade
	filled.OrdStatus = schema.OrdStatusFilled
	filled.LastQty = base.OrderQty
	filled.LastPx = px
	filled.CumQty = base.OrderQty
	filled.LeavesQty = decimal.Zero
	filled.TransactTime = g.clk.Now()
	g.push("8", &filled)
}

// mid returns the ticker's mid price, seeding unknown tickers at 100.
// Callers must hold g.mu.
func (g *Gateway) mid(ticker schema.Ticker) decimal.Decimal {
	mid, ok := g.mids[ticker]
	if !ok {
		mid = decimal.NewFromInt(100)
		g.mids[ticker] = mid
	}
	return mid
}

func (g *Gateway) snapshot(ticker schema.Ticker, depth int, now time.Time) *schema.OrderBookSnapshot {
	g.mu.Lock()
	mid := g.mid(ticker)
	g.mu.Unlock()

	bids := make([]schema.PriceLevel, 0, depth)
	asks := make([]schema.PriceLevel, 0, depth)
	for i := 0; i < depth; i++ {
		offset := halfSprd.Add(levelStep.Mul(decimal.NewFromInt(int64(i))))
		qty := decimal.NewFromInt(int64(1 + g.rng.Intn(9)))
		bids = append(bids, schema.PriceLevel{Price: mid.Sub(offset), Qty: qty})
		asks = append(asks, schema.PriceLevel{Price: mid.Add(offset), Qty: qty})
	}
	return &schema.OrderBookSnapshot{
		Ticker:       ticker,
		Bids:         bids,
		Asks:         asks,
		ExchangeTime: now,
		LocalTime:    now,
	}
}

func (g *Gateway) push(msgType string, ev schema.Event) {
	g.record(gateway.DirectionIn, msgType, "")
	if err := g.queue.Push(ev); err != nil {
		g.log.Warn("event dropped", zap.String("msg_type", msgType), zap.Error(err))
	}
}

func (g *Gateway) record(dir, msgType, body string) {
	g.journal.Record(dir, msgType, body, g.clk.Now())
}
