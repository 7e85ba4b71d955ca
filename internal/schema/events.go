package schema

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event is the closed set of typed messages the transport pushes onto the
// strategy's inbound queue. The unexported marker keeps the variant set
// closed to this package so the dispatcher's type switch stays exhaustive.
type Event interface {
	isEvent()
}

// PriceLevel is one rung of an order book ladder.
type PriceLevel struct {
	Price decimal.Decimal
	Qty   decimal.Decimal
}

// OrderBookSnapshot carries a full bid/ask ladder for one ticker.
type OrderBookSnapshot struct {
	Ticker       Ticker
	Bids         []PriceLevel
	Asks         []PriceLevel
	ExchangeTime time.Time
	LocalTime    time.Time
}

func (*OrderBookSnapshot) isEvent() {}

// BookUpdateEntry is a single incremental depth change. A zero quantity
// removes the level.
type BookUpdateEntry struct {
	Price decimal.Decimal
	Qty   decimal.Decimal
	IsBid bool
}

// OrderBookUpdate carries incremental depth changes for one ticker.
type OrderBookUpdate struct {
	Ticker       Ticker
	Updates      []BookUpdateEntry
	ExchangeTime time.Time
	LocalTime    time.Time
}

func (*OrderBookUpdate) isEvent() {}

// Trade is a single public trade print.
type Trade struct {
	Price     decimal.Decimal
	Qty       decimal.Decimal
	Aggressor Side
	Time      time.Time
}

// Trades batches trade prints for one ticker.
type Trades struct {
	Ticker Ticker
	Trades []Trade
}

func (*Trades) isEvent() {}

// TradeCaptureReport carries privately negotiated or captured trade details.
type TradeCaptureReport struct {
	Ticker  Ticker
	Account string
	Trades  []Trade
}

func (*TradeCaptureReport) isEvent() {}

// PositionReport is one account/instrument position entry.
type PositionReport struct {
	Account string
	Ticker  Ticker
	Qty     decimal.Decimal
	AvgPx   decimal.Decimal
}

// PositionReports batches the reply to a position request, snapshot or update.
type PositionReports struct {
	PosReqID string
	Reports  []*PositionReport
}

func (*PositionReports) isEvent() {}

// Heartbeat signals session liveness.
type Heartbeat struct {
	Time time.Time
}

func (*Heartbeat) isEvent() {}

// OrderMassCancelReport answers an order mass cancel request for one ticker.
type OrderMassCancelReport struct {
	Ticker   Ticker
	Response MassCancelResponse
	Text     string
}

func (*OrderMassCancelReport) isEvent() {}

// Reject is a session-level reject.
type Reject struct {
	RefSeqNum  int
	RefMsgType string
	Reason     string
}

func (*Reject) isEvent() {}

// BusinessMessageReject is an application-level reject.
type BusinessMessageReject struct {
	RefMsgType string
	Reason     string
}

func (*BusinessMessageReject) isEvent() {}

// MarketDataRequestReject refuses a market data subscription.
type MarketDataRequestReject struct {
	MDReqID string
	Reason  string
}

func (*MarketDataRequestReject) isEvent() {}

// SecurityReport carries the venue's security list with static instrument
// attributes.
type SecurityReport struct {
	Securities map[Ticker]Security
}

func (*SecurityReport) isEvent() {}

// PositionRequestAck acknowledges a position request.
type PositionRequestAck struct {
	PosReqID string
	Exchange string
	Text     string
}

func (*PositionRequestAck) isEvent() {}

// TradeCaptureReportRequestAck acknowledges a trade capture subscription.
type TradeCaptureReportRequestAck struct {
	TradeReqID string
	Text       string
}

func (*TradeCaptureReportRequestAck) isEvent() {}

// GatewayNotReady signals the gateway cannot serve the session.
type GatewayNotReady struct {
	Text string
}

func (*GatewayNotReady) isEvent() {}

// Logon signals a successful FIX session logon.
type Logon struct {
	SessionID string
}

func (*Logon) isEvent() {}

// Logout signals the FIX session ended.
type Logout struct {
	SessionID string
	Text      string
}

func (*Logout) isEvent() {}

// SessionCreate signals the FIX session object exists (pre-logon).
type SessionCreate struct {
	SessionID string
}

func (*SessionCreate) isEvent() {}
