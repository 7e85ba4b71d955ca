// Package schema defines the typed domain model exchanged between the FIX
// gateway transport and the strategy runtime.
package schema

import "strings"

// Ticker identifies a tradable instrument on a venue as an (exchange, symbol) pair.
// It is comparable and used as the key for all symbol-scoped state.
type Ticker struct {
	Exchange string
	Symbol   string
}

// NewTicker constructs a ticker from an exchange and symbol identifier.
func NewTicker(exchange, symbol string) Ticker {
	return Ticker{
		Exchange: strings.TrimSpace(exchange),
		Symbol:   strings.TrimSpace(symbol),
	}
}

// Valid reports whether both legs of the ticker are populated.
func (t Ticker) Valid() bool {
	return t.Exchange != "" && t.Symbol != ""
}

func (t Ticker) String() string {
	return t.Exchange + ":" + t.Symbol
}

// Exchanges collects the distinct exchange identifiers of the given tickers.
func Exchanges(tickers []Ticker) []string {
	seen := make(map[string]struct{}, len(tickers))
	out := make([]string, 0, len(tickers))
	for _, t := range tickers {
		if _, ok := seen[t.Exchange]; ok {
			continue
		}
		seen[t.Exchange] = struct{}{}
		out = append(out, t.Exchange)
	}
	return out
}
