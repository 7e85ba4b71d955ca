package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mtxpt/phx-fix-examples/internal/schema"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "strategy.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
account: ACC1
username: alice
timeout: 30s
queue_timeout: 100ms
timer_interval: 2s
cancel_timeout: 3s
quantity: "2.5"
symbol_selection: one_by_one
trading_direction: alternate
initial_trading_direction: sell
trading_mode: aggressive_limit_orders
aggressiveness_in_pips: 4
trading_symbols:
  - exchange: EX1
    symbol: BTCUSD
  - exchange: EX1
    symbol: ETHUSD
mkt_data_symbols:
  - exchange: EX1
    symbol: BTCUSD
  - exchange: EX1
    symbol: SOLUSD
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Account != "ACC1" || cfg.Username != "alice" {
		t.Fatalf("identity = %s/%s", cfg.Account, cfg.Username)
	}
	if cfg.Timeout.Std() != 30*time.Second {
		t.Fatalf("timeout = %s, want 30s", cfg.Timeout)
	}
	if cfg.QueueTimeout.Std() != 100*time.Millisecond {
		t.Fatalf("queue_timeout = %s, want 100ms", cfg.QueueTimeout)
	}
	if !cfg.Quantity.Equal(decimal.NewFromFloat(2.5)) {
		t.Fatalf("quantity = %s, want 2.5", cfg.Quantity)
	}
	if cfg.SymbolSelection != SelectionOneByOne || cfg.TradingDirection != DirectionAlternate {
		t.Fatalf("selection/direction = %s/%s", cfg.SymbolSelection, cfg.TradingDirection)
	}
	if cfg.InitialTradingDirection != schema.SideSell {
		t.Fatalf("initial direction = %s, want sell", cfg.InitialTradingDirection)
	}

	trading := cfg.TradingTickers()
	if len(trading) != 2 || trading[0].Symbol != "BTCUSD" {
		t.Fatalf("trading tickers = %v", trading)
	}
	// BTCUSD appears in both lists and must not be duplicated.
	mkt := cfg.MarketDataTickers()
	if len(mkt) != 3 {
		t.Fatalf("market data tickers = %v, want 3 distinct", mkt)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"no symbols", "trading_symbols: []\n"},
		{"bad mode", "trading_mode: limit\n"},
		{"bad selection", "symbol_selection: everything\n"},
		{"bad direction", "trading_direction: sideways\n"},
		{"zero timeout", "timeout: 0s\n"},
		{"zero quantity", "quantity: \"0\"\n"},
		{"bad duration", "timeout: soon\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tc.body)); err == nil {
				t.Fatalf("config %q should not validate", tc.body)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("missing file should fail")
	}
}

func TestDefaultValidates(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestDurationRoundTrip(t *testing.T) {
	d := Duration(1500 * time.Millisecond)
	out, err := d.MarshalYAML()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if out != "1.5s" {
		t.Fatalf("marshal = %v, want 1.5s", out)
	}
}
