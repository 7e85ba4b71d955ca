// Command randomstrategy runs the example random trading strategy against
// the in-process simulated venue.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sourcegraph/conc"
	"go.uber.org/zap"

	"github.com/mtxpt/phx-fix-examples/internal/bus"
	"github.com/mtxpt/phx-fix-examples/internal/clock"
	"github.com/mtxpt/phx-fix-examples/internal/config"
	"github.com/mtxpt/phx-fix-examples/internal/gateway/sim"
	"github.com/mtxpt/phx-fix-examples/internal/risk"
	"github.com/mtxpt/phx-fix-examples/internal/schema"
	"github.com/mtxpt/phx-fix-examples/internal/strategy"
	"github.com/mtxpt/phx-fix-examples/internal/strategy/random"
	"github.com/mtxpt/phx-fix-examples/internal/telemetry"
)

const telemetryShutdownTimeout = 5 * time.Second

func main() {
	cfgPath := flag.String("config", "", "path to the strategy YAML configuration")
	seed := flag.Int64("seed", 0, "random seed, zero derives one from the clock")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	logger := newLogger(*debug)
	defer func() { _ = logger.Sync() }()

	cfg := config.Default()
	if *cfgPath != "" {
		loaded, err := config.Load(*cfgPath)
		if err != nil {
			logger.Fatal("load config", zap.String("path", *cfgPath), zap.Error(err))
		}
		cfg = loaded
	} else {
		logger.Info("no configuration file given, using defaults")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	provider, err := telemetry.NewProvider(ctx, telemetry.DefaultConfig())
	if err != nil {
		logger.Fatal("initialise telemetry", zap.Error(err))
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), telemetryShutdownTimeout)
		defer shutdownCancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			logger.Warn("telemetry shutdown", zap.Error(err))
		}
	}()

	queue := bus.NewQueue(cfg.QueueSize)
	clk := clock.Wall{}

	mids := make(map[schema.Ticker]decimal.Decimal)
	for _, ticker := range cfg.MarketDataTickers() {
		mids[ticker] = decimal.NewFromInt(30000)
	}
	gw := sim.New(sim.Config{
		Account:    cfg.Account,
		Username:   cfg.Username,
		Mids:       mids,
		Seed:       *seed,
		JournalDir: cfg.ExportDir,
	}, queue, clk, logger.Named("sim"))

	base := strategy.New(cfg, gw, queue, clk, logger.Named("strategy"))
	random.New(base, cfg, risk.NewManager(cfg.Risk), *seed)

	var lifecycle conc.WaitGroup
	lifecycle.Go(func() {
		<-ctx.Done()
		logger.Info("shutdown signal received")
		base.RequestStop()
	})

	runErr := base.Run()
	cancel()
	lifecycle.Wait()
	queue.Close()

	if runErr != nil {
		logger.Error("strategy run failed", zap.Error(runErr))
		os.Exit(1)
	}
}

func newLogger(debug bool) *zap.Logger {
	zcfg := zap.NewProductionConfig()
	zcfg.Encoding = "console"
	if debug {
		zcfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	logger, err := zcfg.Build()
	if err != nil {
		panic(err)
	}
	return logger
}
