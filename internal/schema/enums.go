package schema

// Side identifies the trade direction of an order.
type Side string

const (
	// SideBuy marks buy orders.
	SideBuy Side = "buy"
	// SideSell marks sell orders.
	SideSell Side = "sell"
)

// Opposite returns the flipped trading direction.
func (s Side) Opposite() Side {
	if s == SideBuy {
		return SideSell
	}
	return SideBuy
}

// OrdType enumerates supported order types.
type OrdType string

const (
	// OrdTypeMarket marks market orders.
	OrdTypeMarket OrdType = "market"
	// OrdTypeLimit marks limit orders.
	OrdTypeLimit OrdType = "limit"
)

// OrdStatus enumerates order lifecycle statuses carried on execution reports.
type OrdStatus string

const (
	OrdStatusPendingNew      OrdStatus = "pending_new"
	OrdStatusNew             OrdStatus = "new"
	OrdStatusPartiallyFilled OrdStatus = "partially_filled"
	OrdStatusFilled          OrdStatus = "filled"
	OrdStatusPendingCancel   OrdStatus = "pending_cancel"
	OrdStatusCanceled        OrdStatus = "canceled"
	OrdStatusRejected        OrdStatus = "rejected"
	OrdStatusExpired         OrdStatus = "expired"
)

// Terminal reports whether the status ends the order's life.
func (s OrdStatus) Terminal() bool {
	switch s {
	case OrdStatusFilled, OrdStatusCanceled, OrdStatusRejected, OrdStatusExpired:
		return true
	default:
		return false
	}
}

// ExecType classifies the semantics of an execution report.
type ExecType string

const (
	ExecTypePendingNew    ExecType = "pending_new"
	ExecTypeNew           ExecType = "new"
	ExecTypeTrade         ExecType = "trade"
	ExecTypePendingCancel ExecType = "pending_cancel"
	ExecTypeCanceled      ExecType = "canceled"
	ExecTypeReplaced      ExecType = "replaced"
	ExecTypeRejected      ExecType = "rejected"
	ExecTypeExpired       ExecType = "expired"
	// ExecTypeOrderStatus marks a reply to an order status inquiry, not a
	// fill or acknowledgement.
	ExecTypeOrderStatus ExecType = "order_status"
)

// MassCancelResponse captures the venue's answer to a mass cancel request.
type MassCancelResponse string

const (
	// MassCancelAccepted indicates the venue accepted the per-ticker cancel.
	MassCancelAccepted MassCancelResponse = "accepted"
	// MassCancelRejected indicates the cancel request was rejected.
	MassCancelRejected MassCancelResponse = "rejected"
)

// SubscriptionType selects snapshot-only or snapshot-plus-updates delivery.
type SubscriptionType string

const (
	SubscriptionSnapshot        SubscriptionType = "snapshot"
	SubscriptionSnapshotUpdates SubscriptionType = "snapshot_updates"
)

// MarketDataContent selects the market data stream requested for a ticker.
type MarketDataContent string

const (
	// MarketDataBook requests order book snapshots and incremental updates.
	MarketDataBook MarketDataContent = "book"
	// MarketDataTrade requests trade prints.
	MarketDataTrade MarketDataContent = "trade"
)
