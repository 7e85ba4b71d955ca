package strategy

import (
	"strings"
	"testing"

	"github.com/mtxpt/phx-fix-examples/internal/schema"
)

var (
	btc = schema.Ticker{Exchange: "EX1", Symbol: "BTCUSD"}
	eth = schema.Ticker{Exchange: "EX1", Symbol: "ETHUSD"}
)

func TestBarriersAnyOrderSatisfaction(t *testing.T) {
	orders := [][]func(*Barriers){
		{
			func(b *Barriers) { b.Satisfy(ReqSecurityReports) },
			func(b *Barriers) { b.SatisfyTicker(ReqOrderBookSnapshots, btc) },
			func(b *Barriers) { b.SatisfyTicker(ReqOrderBookSnapshots, eth) },
			func(b *Barriers) { b.Satisfy(ReqPositionSnapshots) },
		},
		{
			func(b *Barriers) { b.SatisfyTicker(ReqOrderBookSnapshots, eth) },
			func(b *Barriers) { b.Satisfy(ReqPositionSnapshots) },
			func(b *Barriers) { b.SatisfyTicker(ReqOrderBookSnapshots, btc) },
			func(b *Barriers) { b.Satisfy(ReqSecurityReports) },
		},
	}
	for i, steps := range orders {
		b := NewBarriers()
		b.RequireCount(ReqSecurityReports, 1)
		b.RequireSet(ReqOrderBookSnapshots, []schema.Ticker{btc, eth})
		b.RequireCount(ReqPositionSnapshots, 1)
		for _, step := range steps {
			step(b)
		}
		if !b.Empty() {
			t.Fatalf("order %d: barriers not empty: %s", i, b.Progress())
		}
	}
}

func TestBarriersDuplicateSatisfactionIdempotent(t *testing.T) {
	b := NewBarriers()
	b.RequireSet(ReqOrderBookSnapshots, []schema.Ticker{btc})
	b.SatisfyTicker(ReqOrderBookSnapshots, btc)
	if b.Has(ReqOrderBookSnapshots) {
		t.Fatal("requirement should be removed when its set empties")
	}
	// A duplicate must not reintroduce the key.
	b.SatisfyTicker(ReqOrderBookSnapshots, btc)
	if b.Has(ReqOrderBookSnapshots) || !b.Empty() {
		t.Fatal("duplicate satisfaction reintroduced the requirement")
	}
}

func TestBarriersRemoveOnEmpty(t *testing.T) {
	b := NewBarriers()
	b.RequireSet(ReqWorkingOrders, []schema.Ticker{btc, eth})
	b.SatisfyTicker(ReqWorkingOrders, btc)
	if !b.Has(ReqWorkingOrders) {
		t.Fatal("requirement removed while a ticker is still outstanding")
	}
	if got := b.Outstanding(ReqWorkingOrders); len(got) != 1 || got[0] != eth {
		t.Fatalf("outstanding = %v, want [%v]", got, eth)
	}
	b.SatisfyTicker(ReqWorkingOrders, eth)
	if b.Has(ReqWorkingOrders) {
		t.Fatal("requirement present with empty set")
	}
}

func TestBarriersEmptyRequirementsNotRegistered(t *testing.T) {
	b := NewBarriers()
	b.RequireSet(ReqOrderBookSnapshots, nil)
	b.RequireCount(ReqSecurityReports, 0)
	if !b.Empty() {
		t.Fatal("empty requirements must not register")
	}
}

func TestBarriersContainsAll(t *testing.T) {
	b := NewBarriers()
	b.RequireSet(ReqWorkingOrders, []schema.Ticker{btc})
	if !b.ContainsAll(ReqWorkingOrders, []schema.Ticker{btc}) {
		t.Fatal("outstanding ticker should be contained")
	}
	if b.ContainsAll(ReqWorkingOrders, []schema.Ticker{btc, eth}) {
		t.Fatal("ticker outside the set must not be contained")
	}
	b.SatisfyTicker(ReqWorkingOrders, btc)
	if b.ContainsAll(ReqWorkingOrders, []schema.Ticker{btc}) {
		t.Fatal("cleared requirement must not contain tickers")
	}
}

func TestBarriersReferenceSurvivesSatisfaction(t *testing.T) {
	b := NewBarriers()
	b.RequireSet(ReqOrderBookSnapshots, []schema.Ticker{btc, eth})
	b.SatisfyTicker(ReqOrderBookSnapshots, btc)
	b.SatisfyTicker(ReqOrderBookSnapshots, eth)

	// The reference snapshot still lists every original ticker.
	progress := b.Progress()
	if !strings.Contains(progress, btc.String()) || !strings.Contains(progress, eth.String()) {
		t.Fatalf("progress lost reference entries:\n%s", progress)
	}
	if strings.Contains(progress, "❌") {
		t.Fatalf("satisfied requirements rendered as outstanding:\n%s", progress)
	}
}

func TestBarriersVersionAdvancesOnMutation(t *testing.T) {
	b := NewBarriers()
	v0 := b.Version()
	b.RequireCount(ReqSecurityReports, 1)
	v1 := b.Version()
	if v1 == v0 {
		t.Fatal("version unchanged after registration")
	}
	b.Satisfy(ReqSecurityReports)
	if b.Version() == v1 {
		t.Fatal("version unchanged after satisfaction")
	}
	// No-op satisfactions leave the version alone.
	v2 := b.Version()
	b.Satisfy(ReqSecurityReports)
	if b.Version() != v2 {
		t.Fatal("no-op satisfaction bumped the version")
	}
}
