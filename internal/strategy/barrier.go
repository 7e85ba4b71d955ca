package strategy

import (
	"sort"
	"strconv"
	"strings"

	"github.com/mtxpt/phx-fix-examples/internal/schema"
)

// Requirement names a readiness precondition tracked by a barrier set.
type Requirement string

const (
	// ReqSecurityReports awaits the security list response.
	ReqSecurityReports Requirement = "SECURITY_REPORTS"
	// ReqOrderBookSnapshots awaits an order book snapshot per market ticker.
	ReqOrderBookSnapshots Requirement = "ORDERBOOK_SNAPSHOTS"
	// ReqWorkingOrders awaits a working-order mass status per trading ticker.
	ReqWorkingOrders Requirement = "WORKING_ORDERS"
	// ReqPositionSnapshots awaits the initial position snapshot.
	ReqPositionSnapshots Requirement = "POSITION_SNAPSHOTS"
	// ReqCancelOpenOrders awaits a cancel acknowledgement per trading ticker.
	ReqCancelOpenOrders Requirement = "CANCEL_OPEN_ORDERS"
)

// Barriers tracks outstanding readiness requirements. Counted requirements
// hold a remaining count, set requirements hold the remaining tickers. An
// immutable reference of the original requirement is kept for progress
// reporting. A requirement key present in the remaining maps always has a
// non-zero count or non-empty set; satisfaction removes the key atomically.
//
// Owned by the dispatch goroutine, no locking.
type Barriers struct {
	counts map[Requirement]int
	sets   map[Requirement]map[schema.Ticker]struct{}

	refCounts map[Requirement]int
	refSets   map[Requirement]map[schema.Ticker]struct{}

	version uint64
}

func NewBarriers() *Barriers {
	b := &Barriers{}
	b.Clear()
	return b
}

// Clear resets both the remaining and reference requirement maps.
func (b *Barriers) Clear() {
	b.counts = make(map[Requirement]int)
	b.sets = make(map[Requirement]map[schema.Ticker]struct{})
	b.refCounts = make(map[Requirement]int)
	b.refSets = make(map[Requirement]map[schema.Ticker]struct{})
	b.version++
}

// RequireCount registers a counted requirement. Non-positive counts are
// ignored so the remove-on-empty invariant holds from the start.
func (b *Barriers) RequireCount(req Requirement, n int) {
	if n <= 0 {
		return
	}
	b.counts[req] = n
	b.refCounts[req] = n
	b.version++
}

// RequireSet registers a set requirement over the given tickers. An empty
// ticker list registers nothing.
func (b *Barriers) RequireSet(req Requirement, tickers []schema.Ticker) {
	if len(tickers) == 0 {
		return
	}
	remaining := make(map[schema.Ticker]struct{}, len(tickers))
	reference := make(map[schema.Ticker]struct{}, len(tickers))
	for _, t := range tickers {
		remaining[t] = struct{}{}
		reference[t] = struct{}{}
	}
	b.sets[req] = remaining
	b.refSets[req] = reference
	b.version++
}

// Satisfy decrements a counted requirement, removing the key at zero. It is
// a no-op when the requirement is not outstanding.
func (b *Barriers) Satisfy(req Requirement) {
	n, ok := b.counts[req]
	if !ok {
		return
	}
	n--
	if n <= 0 {
		delete(b.counts, req)
	} else {
		b.counts[req] = n
	}
	b.version++
}

// SatisfyTicker removes one ticker from a set requirement, removing the key
// when the set empties. A ticker not outstanding is a no-op.
func (b *Barriers) SatisfyTicker(req Requirement, ticker schema.Ticker) {
	set, ok := b.sets[req]
	if !ok {
		return
	}
	if _, ok := set[ticker]; !ok {
		return
	}
	delete(set, ticker)
	if len(set) == 0 {
		delete(b.sets, req)
	}
	b.version++
}

// SatisfyTickers removes several tickers from a set requirement at once.
func (b *Barriers) SatisfyTickers(req Requirement, tickers []schema.Ticker) {
	for _, t := range tickers {
		b.SatisfyTicker(req, t)
	}
}

// Has reports whether the requirement is still outstanding.
func (b *Barriers) Has(req Requirement) bool {
	if _, ok := b.counts[req]; ok {
		return true
	}
	_, ok := b.sets[req]
	return ok
}

// HasTicker reports whether a set requirement still awaits the ticker.
func (b *Barriers) HasTicker(req Requirement, ticker schema.Ticker) bool {
	set, ok := b.sets[req]
	if !ok {
		return false
	}
	_, ok = set[ticker]
	return ok
}

// ContainsAll reports whether every given ticker is still outstanding for
// the set requirement. An empty ticker list is vacuously contained.
func (b *Barriers) ContainsAll(req Requirement, tickers []schema.Ticker) bool {
	set, ok := b.sets[req]
	if !ok {
		return len(tickers) == 0
	}
	for _, t := range tickers {
		if _, ok := set[t]; !ok {
			return false
		}
	}
	return true
}

// Outstanding returns the tickers still awaited by a set requirement.
func (b *Barriers) Outstanding(req Requirement) []schema.Ticker {
	set, ok := b.sets[req]
	if !ok {
		return nil
	}
	out := make([]schema.Ticker, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

// Empty reports whether no requirement remains outstanding.
func (b *Barriers) Empty() bool {
	return len(b.counts) == 0 && len(b.sets) == 0
}

// Version increments on every mutation, letting callers detect progress
// cheaply.
func (b *Barriers) Version() uint64 { return b.version }

// Progress renders a checklist of every reference requirement annotated with
// its satisfaction state. Reporting only, never drives control flow.
func (b *Barriers) Progress() string {
	var sb strings.Builder
	reqs := make([]string, 0, len(b.refCounts)+len(b.refSets))
	for req := range b.refCounts {
		reqs = append(reqs, string(req))
	}
	for req := range b.refSets {
		reqs = append(reqs, string(req))
	}
	sort.Strings(reqs)
	for _, name := range reqs {
		req := Requirement(name)
		if ref, ok := b.refCounts[req]; ok {
			mark := "✅"
			if _, outstanding := b.counts[req]; outstanding {
				mark = "❌"
			}
			sb.WriteString(mark)
			sb.WriteString(" ")
			sb.WriteString(name)
			if ref > 1 {
				remaining := b.counts[req]
				sb.WriteString(" (")
				sb.WriteString(strconv.Itoa(ref - remaining))
				sb.WriteString("/")
				sb.WriteString(strconv.Itoa(ref))
				sb.WriteString(")")
			}
			sb.WriteString("\n")
			continue
		}
		tickers := make([]schema.Ticker, 0, len(b.refSets[req]))
		for t := range b.refSets[req] {
			tickers = append(tickers, t)
		}
		sort.Slice(tickers, func(i, j int) bool { return tickers[i].String() < tickers[j].String() })
		sb.WriteString(name)
		sb.WriteString(":\n")
		for _, t := range tickers {
			mark := "✅"
			if b.HasTicker(req, t) {
				mark = "❌"
			}
			sb.WriteString("  ")
			sb.WriteString(mark)
			sb.WriteString(" ")
			sb.WriteString(t.String())
			sb.WriteString("\n")
		}
	}
	return sb.String()
}
