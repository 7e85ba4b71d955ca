package schema

import "github.com/shopspring/decimal"

// Security holds static reference data for one instrument. Populated once
// from a security list response and read-only thereafter.
type Security struct {
	Ticker            Ticker
	Description       string
	Currency          string
	MinPriceIncrement decimal.Decimal
	MinTradeQty       decimal.Decimal
}
