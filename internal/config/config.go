// Package config loads the strategy runtime configuration from YAML files.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/mtxpt/phx-fix-examples/errs"
	"github.com/mtxpt/phx-fix-examples/internal/risk"
	"github.com/mtxpt/phx-fix-examples/internal/schema"
)

// SymbolSelection orders how trading symbols enter the rotation.
type SymbolSelection string

const (
	// SelectionAllAtOnce trades every configured symbol on each tick.
	SelectionAllAtOnce SymbolSelection = "all_at_once"
	// SelectionOneByOne rotates through the symbols one per tick.
	SelectionOneByOne SymbolSelection = "one_by_one"
)

// TradingDirection chooses how the strategy picks order sides.
type TradingDirection string

const (
	// DirectionRandom picks buy or sell uniformly at random.
	DirectionRandom TradingDirection = "random"
	// DirectionAlternate flips the side on each trade.
	DirectionAlternate TradingDirection = "alternate"
)

// TradingMode chooses the order type the strategy submits.
type TradingMode string

const (
	// ModeMarketOrders submits market orders.
	ModeMarketOrders TradingMode = "market_orders"
	// ModeAggressiveLimitOrders submits limit orders priced through the
	// touch by a configured number of pips.
	ModeAggressiveLimitOrders TradingMode = "aggressive_limit_orders"
)

// TickerConfig names one tradable instrument in the YAML file.
type TickerConfig struct {
	Exchange string `yaml:"exchange"`
	Symbol   string `yaml:"symbol"`
}

// Config is the full runtime configuration tree.
type Config struct {
	// Session identity.
	Account  string `yaml:"account"`
	Username string `yaml:"username"`

	// Timeout bounds the whole strategy run.
	Timeout Duration `yaml:"timeout"`

	// QueueTimeout is the dispatch loop's blocking pop interval. It doubles
	// as the scheduling tick for state re-evaluation.
	QueueTimeout Duration `yaml:"queue_timeout"`
	QueueSize    int      `yaml:"queue_size"`

	// TimerInterval drives the recurring strategy timer. The timer fires
	// aligned to wall clock multiples of TimerAlignmentFreq.
	TimerInterval      Duration `yaml:"timer_interval"`
	TimerAlignmentFreq Duration `yaml:"timer_alignment_freq"`

	// Subscriptions beyond the mandatory security list and market data.
	SubscribeForPositionUpdates     bool `yaml:"subscribe_for_position_updates"`
	SubscribeForTradeCaptureReports bool `yaml:"subscribe_for_trade_capture_reports"`

	// Shutdown behaviour.
	CancelOrdersOnExit           bool     `yaml:"cancel_orders_on_exit"`
	UseMassCancelRequest         bool     `yaml:"use_mass_cancel_request"`
	CancelTimeout                Duration `yaml:"cancel_timeout"`
	SaveBeforeCancelOrdersOnExit bool     `yaml:"save_before_cancel_orders_on_exit"`

	// Reporting.
	PrintReports bool   `yaml:"print_reports"`
	ExportDir    string `yaml:"export_dir"`

	// Trading universe. The first MktDataOnly-false entries are traded;
	// entries marked MktDataOnly only feed order books.
	TradingSymbols []TickerConfig `yaml:"trading_symbols"`
	MktDataSymbols []TickerConfig `yaml:"mkt_data_symbols"`
	BookDepth      int            `yaml:"book_depth"`

	// Random strategy behaviour.
	Quantity                decimal.Decimal  `yaml:"quantity"`
	SymbolSelection         SymbolSelection  `yaml:"symbol_selection"`
	TradingDirection        TradingDirection `yaml:"trading_direction"`
	InitialTradingDirection schema.Side      `yaml:"initial_trading_direction"`
	TradingMode             TradingMode      `yaml:"trading_mode"`
	AggressivenessInPips    int64            `yaml:"aggressiveness_in_pips"`
	Delay                   Duration         `yaml:"delay"`

	// Risk limits applied before order submission.
	Risk risk.Limits `yaml:"risk"`
}

// Default returns a runnable configuration for a single-symbol demo session.
func Default() Config {
	return Config{
		Account:                 "TEST",
		Username:                "trader",
		Timeout:                 Duration(5 * time.Minute),
		QueueTimeout:            Duration(200 * time.Millisecond),
		QueueSize:               1024,
		TimerInterval:           Duration(time.Second),
		TimerAlignmentFreq:      Duration(time.Second),
		CancelOrdersOnExit:      true,
		UseMassCancelRequest:    true,
		CancelTimeout:           Duration(5 * time.Second),
		PrintReports:            false,
		ExportDir:               "export",
		TradingSymbols:          []TickerConfig{{Exchange: "phemex", Symbol: "BTCUSD"}},
		BookDepth:               5,
		Quantity:                decimal.NewFromInt(1),
		SymbolSelection:         SelectionAllAtOnce,
		TradingDirection:        DirectionRandom,
		InitialTradingDirection: schema.SideBuy,
		TradingMode:             ModeMarketOrders,
		AggressivenessInPips:    2,
		Delay:                   0,
		Risk:                    risk.Default(),
	}
}

// Load reads a YAML file over the defaults and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errs.New("", errs.CodeInvalid,
			errs.WithMessage("read config file"), errs.WithCause(err))
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errs.New("", errs.CodeInvalid,
			errs.WithMessage("parse config file"), errs.WithCause(err))
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks cross-field consistency.
func (c Config) Validate() error {
	fail := func(msg string) error {
		return errs.New("", errs.CodeInvalid, errs.WithMessage(msg))
	}
	if len(c.TradingSymbols) == 0 {
		return fail("at least one trading symbol required")
	}
	for _, t := range c.TradingSymbols {
		if strings.TrimSpace(t.Exchange) == "" || strings.TrimSpace(t.Symbol) == "" {
			return fail("trading symbol needs exchange and symbol")
		}
	}
	if c.Timeout <= 0 {
		return fail("timeout must be positive")
	}
	if c.QueueTimeout <= 0 {
		return fail("queue_timeout must be positive")
	}
	if c.TimerInterval <= 0 {
		return fail("timer_interval must be positive")
	}
	if c.CancelOrdersOnExit && c.CancelTimeout <= 0 {
		return fail("cancel_timeout must be positive when cancel_orders_on_exit is set")
	}
	if c.Quantity.Sign() <= 0 {
		return fail("quantity must be positive")
	}
	switch c.SymbolSelection {
	case SelectionAllAtOnce, SelectionOneByOne:
	default:
		return fail("unknown symbol_selection " + string(c.SymbolSelection))
	}
	switch c.TradingDirection {
	case DirectionRandom, DirectionAlternate:
	default:
		return fail("unknown trading_direction " + string(c.TradingDirection))
	}
	switch c.TradingMode {
	case ModeMarketOrders, ModeAggressiveLimitOrders:
	default:
		return fail("unknown trading_mode " + string(c.TradingMode))
	}
	if c.TradingMode == ModeAggressiveLimitOrders && c.AggressivenessInPips < 0 {
		return fail("aggressiveness_in_pips must not be negative")
	}
	switch c.InitialTradingDirection {
	case schema.SideBuy, schema.SideSell:
	default:
		return fail("unknown initial_trading_direction " + string(c.InitialTradingDirection))
	}
	return nil
}

// TradingTickers returns the tradable instruments as tickers.
func (c Config) TradingTickers() []schema.Ticker {
	out := make([]schema.Ticker, 0, len(c.TradingSymbols))
	for _, t := range c.TradingSymbols {
		out = append(out, schema.NewTicker(t.Exchange, t.Symbol))
	}
	return out
}

// MarketDataTickers returns the union of trading and market-data-only
// tickers, trading tickers first and without duplicates.
func (c Config) MarketDataTickers() []schema.Ticker {
	seen := make(map[schema.Ticker]struct{})
	out := make([]schema.Ticker, 0, len(c.TradingSymbols)+len(c.MktDataSymbols))
	for _, t := range append(c.TradingTickers(), c.mktDataOnly()...) {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func (c Config) mktDataOnly() []schema.Ticker {
	out := make([]schema.Ticker, 0, len(c.MktDataSymbols))
	for _, t := range c.MktDataSymbols {
		out = append(out, schema.NewTicker(t.Exchange, t.Symbol))
	}
	return out
}
