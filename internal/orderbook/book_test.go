package orderbook

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mtxpt/phx-fix-examples/internal/schema"
)

func level(price, qty string) schema.PriceLevel {
	return schema.PriceLevel{
		Price: decimal.RequireFromString(price),
		Qty:   decimal.RequireFromString(qty),
	}
}

func testBook() *Book {
	ticker := schema.NewTicker("phoenix", "BTC-USD")
	bids := []schema.PriceLevel{level("99", "2"), level("100", "1"), level("98", "5")}
	asks := []schema.PriceLevel{level("102", "3"), level("101", "1"), level("103", "4")}
	return New(ticker, bids, asks, time.Unix(1000, 0), time.Unix(1001, 0))
}

func TestNewSortsLaddersBestFirst(t *testing.T) {
	b := testBook()
	bid, ok := b.TopBid()
	if !ok || !bid.Price.Equal(decimal.RequireFromString("100")) {
		t.Fatalf("unexpected top bid %v ok=%v", bid, ok)
	}
	ask, ok := b.TopAsk()
	if !ok || !ask.Price.Equal(decimal.RequireFromString("101")) {
		t.Fatalf("unexpected top ask %v ok=%v", ask, ok)
	}
}

func TestMidPriceAndSpread(t *testing.T) {
	b := testBook()
	mid, ok := b.MidPrice()
	if !ok || !mid.Equal(decimal.RequireFromString("100.5")) {
		t.Fatalf("unexpected mid %v ok=%v", mid, ok)
	}
	spread, ok := b.Spread()
	if !ok || !spread.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("unexpected spread %v ok=%v", spread, ok)
	}
}

func TestUpdateReplacesInsertsAndRemovesLevels(t *testing.T) {
	b := testBook()

	// Replace top bid quantity in place.
	b.Update(decimal.RequireFromString("100"), decimal.RequireFromString("9"), true)
	bid, _ := b.TopBid()
	if !bid.Qty.Equal(decimal.RequireFromString("9")) {
		t.Fatalf("expected replaced bid qty, got %v", bid.Qty)
	}

	// Insert a new best ask.
	b.Update(decimal.RequireFromString("100.5"), decimal.RequireFromString("2"), false)
	ask, _ := b.TopAsk()
	if !ask.Price.Equal(decimal.RequireFromString("100.5")) {
		t.Fatalf("expected inserted best ask, got %v", ask.Price)
	}

	// Zero quantity removes.
	b.Update(decimal.RequireFromString("100.5"), decimal.Zero, false)
	ask, _ = b.TopAsk()
	if !ask.Price.Equal(decimal.RequireFromString("101")) {
		t.Fatalf("expected removal to restore prior ask, got %v", ask.Price)
	}

	bids, asks := b.Depth()
	if bids != 3 || asks != 3 {
		t.Fatalf("unexpected depth %d/%d", bids, asks)
	}
}

func TestRemoveMissingLevelIsNoOp(t *testing.T) {
	b := testBook()
	b.Update(decimal.RequireFromString("97.5"), decimal.Zero, true)
	bids, _ := b.Depth()
	if bids != 3 {
		t.Fatalf("expected depth unchanged, got %d", bids)
	}
}

func TestOneSidedBookHasNoMid(t *testing.T) {
	ticker := schema.NewTicker("phoenix", "BTC-USD")
	b := New(ticker, []schema.PriceLevel{level("100", "1")}, nil, time.Time{}, time.Time{})
	if _, ok := b.MidPrice(); ok {
		t.Fatal("expected no mid price for one-sided book")
	}
	if _, ok := b.Spread(); ok {
		t.Fatal("expected no spread for one-sided book")
	}
}
