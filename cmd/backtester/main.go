package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"tickbacktester/internal/config"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
)

func main() {
	// .env is optional; DATABASE_URL may come from the environment instead.
	_ = godotenv.Load()

	if err := newApp(os.Stdout).Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp(w io.Writer) *cli.Command {
	return &cli.Command{
		Name:   "backtester",
		Usage:  "Tick-driven strategy backtester",
		Writer: w,
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "Run a backtest and write reports",
				Flags:  runFlags(),
				Action: runAction,
			},
			{
				Name:  "schema",
				Usage: "Print the JSON schema of the config file",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					raw, err := config.Schema()
					if err != nil {
						return fmt.Errorf("generate schema: %w", err)
					}
					_, err = fmt.Fprintln(cmd.Root().Writer, string(raw))
					return err
				},
			},
			{
				Name:  "config",
				Usage: "Print the default config as YAML",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return config.Default().Save(cmd.Root().Writer)
				},
			},
		},
	}
}

func runFlags() []cli.Flag {
	def := config.Default()
	return []cli.Flag{
		&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "YAML config file; flags given explicitly override it"},
		&cli.StringFlag{Name: "csv", Usage: "Path to CSV (timestamp,symbol,price)", Value: def.Data.CSV},
		&cli.StringFlag{Name: "db-url", Usage: "Postgres URL to read market_ticks from instead of CSV", Sources: cli.EnvVars("DATABASE_URL")},
		&cli.StringFlag{Name: "symbol", Usage: "Symbol to backtest", Value: def.Data.Symbol},
		&cli.StringFlag{Name: "outdir", Usage: "Output directory for reports", Value: def.Report.OutDir},
		&cli.FloatFlag{Name: "cash", Usage: "Initial cash", Value: def.Engine.InitialCash},
		&cli.FloatFlag{Name: "fail-prob", Usage: "Simulated execution failure probability", Value: def.Engine.FailProb},
		&cli.IntFlag{Name: "fast", Usage: "Fast MA window", Value: 5},
		&cli.IntFlag{Name: "slow", Usage: "Slow MA window", Value: 20},
		&cli.IntFlag{Name: "mom-lb", Usage: "Momentum lookback", Value: 10},
		&cli.FloatFlag{Name: "mom-th", Usage: "Momentum threshold", Value: 0.005},
		&cli.IntFlag{Name: "qty-ma", Usage: "Qty per MA signal", Value: 10},
		&cli.IntFlag{Name: "qty-mom", Usage: "Qty per Momentum signal", Value: 5},
		&cli.BoolFlag{Name: "separate", Usage: "Also run each strategy on its own alongside the combined run"},
		&cli.IntFlag{Name: "seed", Usage: "Random seed for reproducible simulated failures"},
		&cli.StringFlag{Name: "log-level", Usage: "debug, info, warn or error", Value: def.Log.Level},
		&cli.StringFlag{Name: "metrics-addr", Usage: "Serve Prometheus metrics on this address while running"},
		&cli.BoolFlag{Name: "progress", Usage: "Draw a progress bar on stderr"},
	}
}
