// Package orderbook maintains a best-effort local replica of one
// instrument's bid/ask ladder, built from a snapshot and kept current by
// incremental updates.
package orderbook

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mtxpt/phx-fix-examples/internal/schema"
)

var two = decimal.NewFromInt(2)

// Book is a side-by-side bid/ask ladder for a single ticker. Bids are sorted
// best (highest) first, asks best (lowest) first.
type Book struct {
	ticker       schema.Ticker
	bids         []schema.PriceLevel
	asks         []schema.PriceLevel
	exchangeTime time.Time
	localTime    time.Time
}

// New builds a book from snapshot ladders. The input slices are copied and
// sorted, so callers may reuse them.
func New(ticker schema.Ticker, bids, asks []schema.PriceLevel, exchangeTime, localTime time.Time) *Book {
	b := &Book{
		ticker:       ticker,
		bids:         append([]schema.PriceLevel(nil), bids...),
		asks:         append([]schema.PriceLevel(nil), asks...),
		exchangeTime: exchangeTime,
		localTime:    localTime,
	}
	sort.Slice(b.bids, func(i, j int) bool { return b.bids[i].Price.GreaterThan(b.bids[j].Price) })
	sort.Slice(b.asks, func(i, j int) bool { return b.asks[i].Price.LessThan(b.asks[j].Price) })
	return b
}

// Ticker returns the instrument this book replicates.
func (b *Book) Ticker() schema.Ticker { return b.ticker }

// Update applies one incremental depth change. A zero (or negative) quantity
// removes the level; otherwise the level is inserted or replaced in place.
func (b *Book) Update(price, qty decimal.Decimal, isBid bool) {
	if isBid {
		b.bids = apply(b.bids, price, qty, func(a, c decimal.Decimal) bool { return a.GreaterThan(c) })
	} else {
		b.asks = apply(b.asks, price, qty, func(a, c decimal.Decimal) bool { return a.LessThan(c) })
	}
}

func apply(side []schema.PriceLevel, price, qty decimal.Decimal, better func(a, b decimal.Decimal) bool) []schema.PriceLevel {
	idx := sort.Search(len(side), func(i int) bool { return !better(side[i].Price, price) })
	if idx < len(side) && side[idx].Price.Equal(price) {
		if qty.Sign() <= 0 {
			return append(side[:idx], side[idx+1:]...)
		}
		side[idx].Qty = qty
		return side
	}
	if qty.Sign() <= 0 {
		return side
	}
	side = append(side, schema.PriceLevel{})
	copy(side[idx+1:], side[idx:])
	side[idx] = schema.PriceLevel{Price: price, Qty: qty}
	return side
}

// TopBid returns the best bid level, if any.
func (b *Book) TopBid() (schema.PriceLevel, bool) {
	if len(b.bids) == 0 {
		return schema.PriceLevel{}, false
	}
	return b.bids[0], true
}

// TopAsk returns the best ask level, if any.
func (b *Book) TopAsk() (schema.PriceLevel, bool) {
	if len(b.asks) == 0 {
		return schema.PriceLevel{}, false
	}
	return b.asks[0], true
}

// MidPrice returns the midpoint of the top of book. It is absent while
// either side is empty.
func (b *Book) MidPrice() (decimal.Decimal, bool) {
	bid, okBid := b.TopBid()
	ask, okAsk := b.TopAsk()
	if !okBid || !okAsk {
		return decimal.Decimal{}, false
	}
	return bid.Price.Add(ask.Price).Div(two), true
}

// Spread returns the top-of-book spread. Absent while either side is empty.
func (b *Book) Spread() (decimal.Decimal, bool) {
	bid, okBid := b.TopBid()
	ask, okAsk := b.TopAsk()
	if !okBid || !okAsk {
		return decimal.Decimal{}, false
	}
	return ask.Price.Sub(bid.Price), true
}

// Depth reports the number of bid and ask levels.
func (b *Book) Depth() (bids, asks int) {
	return len(b.bids), len(b.asks)
}

// ExchangeTime returns the venue timestamp of the underlying snapshot.
func (b *Book) ExchangeTime() time.Time { return b.exchangeTime }

// LocalTime returns the local receipt timestamp of the underlying snapshot.
func (b *Book) LocalTime() time.Time { return b.localTime }
