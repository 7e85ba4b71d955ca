package gateway

import (
	"github.com/shopspring/decimal"

	"github.com/mtxpt/phx-fix-examples/internal/schema"
)

// Client is the outbound half of a trading session. Implementations render
// requests to the venue and feed replies back through the strategy's event
// queue. All methods are called from the dispatch goroutine only.
type Client interface {
	// Start opens the session. Replies arrive asynchronously on the queue,
	// beginning with SessionCreate and Logon.
	Start() error

	// Stop closes the session. A Logout event is pushed before the
	// transport shuts down.
	Stop() error

	// Account returns the trading account bound to the session.
	Account() string

	// Username returns the session login name.
	Username() string

	// NextRequestID returns a fresh unique request identifier.
	NextRequestID() string

	// SecurityListRequest asks for the venue's full security list.
	SecurityListRequest() (string, error)

	// MarketDataRequest subscribes to the given content for the tickers.
	MarketDataRequest(tickers []schema.Ticker, depth int, subType schema.SubscriptionType, content schema.MarketDataContent) (string, error)

	// OrderMassStatusRequest asks for status reports of all working orders
	// on one ticker. The reply is a batch of ExecReports tagged with the
	// request id.
	OrderMassStatusRequest(ticker schema.Ticker, reqID string) error

	// RequestForPositions asks for the account's positions on an exchange.
	RequestForPositions(exchange, account, reqID string, subType schema.SubscriptionType) error

	// TradeCaptureReportRequest subscribes to trade capture reports.
	TradeCaptureReportRequest(reqID string, subType schema.SubscriptionType) error

	// NewOrderSingle submits an order and returns the assigned client order
	// id. Price is nil for market orders.
	NewOrderSingle(ticker schema.Ticker, side schema.Side, qty decimal.Decimal, price *decimal.Decimal, ordType schema.OrdType, account string) (string, error)

	// OrderCancelRequest cancels one working order.
	OrderCancelRequest(ticker schema.Ticker, origClOrdID string, side schema.Side, qty decimal.Decimal) (string, error)

	// OrderMassCancelRequest cancels all working orders on one ticker. The
	// venue answers with an OrderMassCancelReport.
	OrderMassCancelRequest(ticker schema.Ticker) error

	// SaveMessageHistory persists the session's message journal under the
	// given file prefix, optionally purging the in-memory history.
	SaveMessageHistory(prefix string, purge bool) error
}
