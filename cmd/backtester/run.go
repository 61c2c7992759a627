package main

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"tickbacktester/internal/config"
	"tickbacktester/internal/engine"
	"tickbacktester/internal/logger"
	"tickbacktester/internal/metrics"
	"tickbacktester/internal/repository"
	"tickbacktester/strategies"
	"tickbacktester/types"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

var soloLabels = map[string]string{
	config.StrategyMACrossover: "ma_only",
	config.StrategyMomentum:    "mom_only",
}

func runAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	lg, err := logger.NewLogger(cfg.Log.Level)
	if err != nil {
		return err
	}
	defer lg.Sync()

	ticks, err := loadTicks(ctx, cfg.Data)
	if err != nil {
		return err
	}
	lg.Info("ticks loaded", zap.Int("count", len(ticks)))

	r := runner{
		cfg:    cfg,
		logger: lg.Logger,
		out:    cmd.Root().Writer,
	}
	if cfg.Engine.Seed != nil {
		seed := *cfg.Engine.Seed
		r.rng = rand.New(rand.NewPCG(seed, seed))
	}
	if cmd.Bool("progress") {
		r.progress = os.Stderr
	}
	if cfg.Metrics.Addr != "" {
		reg := prometheus.NewRegistry()
		srv, err := metrics.Serve(cfg.Metrics.Addr, reg)
		if err != nil {
			return err
		}
		defer srv.Close()
		r.registry = reg
		lg.Info("serving metrics", zap.String("addr", cfg.Metrics.Addr))
	}

	return r.runAll(ticks)
}

// resolveConfig starts from the config file (or defaults) and applies every
// flag the user set explicitly.
func resolveConfig(cmd *cli.Command) (config.Config, error) {
	cfg := config.Default()
	if path := cmd.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}

	if cmd.IsSet("csv") {
		cfg.Data.CSV = cmd.String("csv")
	}
	if cmd.IsSet("db-url") {
		cfg.Data.DatabaseURL = cmd.String("db-url")
	}
	if cmd.IsSet("outdir") {
		cfg.Report.OutDir = cmd.String("outdir")
	}
	if cmd.IsSet("cash") {
		cfg.Engine.InitialCash = cmd.Float("cash")
	}
	if cmd.IsSet("fail-prob") {
		cfg.Engine.FailProb = cmd.Float("fail-prob")
	}
	if cmd.IsSet("seed") {
		raw := cmd.Int("seed")
		if raw < 0 {
			return config.Config{}, fmt.Errorf("seed must not be negative, got %d", raw)
		}
		seed := uint64(raw)
		cfg.Engine.Seed = &seed
	}
	if cmd.IsSet("separate") {
		cfg.Report.Separate = cmd.Bool("separate")
	}
	if cmd.IsSet("log-level") {
		cfg.Log.Level = cmd.String("log-level")
	}
	if cmd.IsSet("metrics-addr") {
		cfg.Metrics.Addr = cmd.String("metrics-addr")
	}

	for i := range cfg.Strategies {
		sc := &cfg.Strategies[i]
		if cmd.IsSet("symbol") {
			sc.Symbol = cmd.String("symbol")
		}
		switch sc.Type {
		case config.StrategyMACrossover:
			if cmd.IsSet("fast") {
				sc.Fast = int(cmd.Int("fast"))
			}
			if cmd.IsSet("slow") {
				sc.Slow = int(cmd.Int("slow"))
			}
			if cmd.IsSet("qty-ma") {
				sc.Quantity = int(cmd.Int("qty-ma"))
			}
		case config.StrategyMomentum:
			if cmd.IsSet("mom-lb") {
				sc.Lookback = int(cmd.Int("mom-lb"))
			}
			if cmd.IsSet("mom-th") {
				sc.Threshold = cmd.Float("mom-th")
			}
			if cmd.IsSet("qty-mom") {
				sc.Quantity = int(cmd.Int("qty-mom"))
			}
		}
	}
	if cmd.IsSet("symbol") {
		cfg.Data.Symbol = cmd.String("symbol")
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func loadTicks(ctx context.Context, data config.DataConfig) ([]types.MarketTick, error) {
	if data.DatabaseURL != "" {
		db, err := repository.NewDatabase(ctx, data.DatabaseURL)
		if err != nil {
			return nil, err
		}
		defer db.Close()
		return db.GetTicks(ctx, data.Symbol, time.Time{}, time.Time{})
	}
	if data.CSV == "" {
		return nil, fmt.Errorf("no tick source: set --csv or --db-url")
	}
	return repository.LoadCSV(data.CSV)
}

type runner struct {
	cfg      config.Config
	logger   *zap.Logger
	out      io.Writer
	rng      engine.RandSource
	progress io.Writer
	registry *prometheus.Registry
}

// runAll runs the combined portfolio and, when asked, each strategy alone.
// Every run gets fresh strategy instances. A seeded source is shared, so
// later runs continue its sequence.
func (r runner) runAll(ticks []types.MarketTick) error {
	if err := os.MkdirAll(r.cfg.Report.OutDir, 0o755); err != nil {
		return fmt.Errorf("create outdir: %w", err)
	}

	if _, err := r.runCase("combined", ticks, r.cfg.Strategies); err != nil {
		return err
	}
	if !r.cfg.Report.Separate {
		return nil
	}

	seen := map[string]int{}
	for _, sc := range r.cfg.Strategies {
		label := soloLabels[sc.Type]
		seen[label]++
		if n := seen[label]; n > 1 {
			label = fmt.Sprintf("%s_%d", label, n)
		}
		if _, err := r.runCase(label, ticks, []config.StrategyConfig{sc}); err != nil {
			return err
		}
	}
	return nil
}

func (r runner) runCase(label string, ticks []types.MarketTick, cfgs []config.StrategyConfig) (*engine.Report, error) {
	strats, err := strategies.BuildAll(cfgs)
	if err != nil {
		return nil, err
	}

	engCfg := engine.NewEngineConfig(r.cfg.Engine.InitialCash, r.cfg.Engine.FailProb).
		WithLogger(r.logger.With(zap.String("run", label))).
		WithProgress(r.progress)
	if r.rng != nil {
		engCfg = engCfg.WithRand(r.rng)
	}
	if r.registry != nil {
		engCfg = engCfg.WithRecorder(metrics.New(r.registry, label))
	}

	eng, err := engine.NewEngine(engCfg, strats...)
	if err != nil {
		return nil, err
	}
	eng.Process(ticks)

	report := engine.GenerateReport(eng)
	equityFile := label + "_equity.csv"
	outDir := r.cfg.Report.OutDir

	if err := engine.WriteEquityCSVFile(filepath.Join(outDir, equityFile), eng.EquityCurve()); err != nil {
		return nil, err
	}
	if err := engine.WriteOrdersCSVFile(filepath.Join(outDir, label+"_orders.csv"), eng.OrderHistory()); err != nil {
		return nil, err
	}
	reportPath := filepath.Join(outDir, label+"_performance.md")
	if err := writeMarkdownFile(reportPath, report, equityFile); err != nil {
		return nil, err
	}

	fmt.Fprintf(r.out, "[%s] Orders: %d | Errors: %d\n", label, len(eng.OrderHistory()), len(eng.Errors()))
	fmt.Fprintf(r.out, "[%s] Report: %s\n", label, reportPath)
	return report, nil
}

func writeMarkdownFile(path string, report *engine.Report, equityFile string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	if err := engine.WriteMarkdownReport(f, report, equityFile); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
