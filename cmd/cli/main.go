package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"futures-backtest/internal/analysis"
	"futures-backtest/internal/backtest"
	"futures-backtest/internal/config"
	"futures-backtest/internal/data"
	"futures-backtest/internal/ledger"
	"futures-backtest/internal/market"
	"futures-backtest/internal/optimize"
	"futures-backtest/internal/store"
	"futures-backtest/internal/strategy"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "backtest":
		cmdBacktest(os.Args[2:])
	case "calendar":
		cmdCalendar(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Println("usage:")
	fmt.Println("  cli backtest --config examples/config.yaml --name mystrategy --out results/pnl.csv")
	fmt.Println("  cli calendar --config examples/config.yaml")
	fmt.Println("")
	fmt.Println("notes:")
	fmt.Println("  - backtest runs a walk-forward backtest and writes the PnL series as CSV")
	fmt.Println("  - calendar prints the generated walk-forward windows without running anything")
}

func cmdBacktest(args []string) {
	fs := flag.NewFlagSet("backtest", flag.ExitOnError)
	cfgPath := fs.String("config", "", "Path to YAML config")
	name := fs.String("name", "run", "Run name, used as the checkpoint key")
	outPath := fs.String("out", "results/pnl.csv", "Output CSV path")
	resume := fs.Bool("resume", false, "Resume from the last checkpoint")
	verbose := fs.Bool("v", false, "Debug logging")
	_ = fs.Parse(args)

	if *cfgPath == "" {
		fmt.Println("--config is required")
		os.Exit(2)
	}

	log := newLogger(*verbose)
	runner := buildRunner(log, *cfgPath, *name)

	if *resume {
		if err := runner.Load(); err != nil {
			fatal(log, err)
		}
	}
	if err := runner.Run(time.Now()); err != nil {
		fatal(log, err)
	}

	series, err := runner.Ledger().PnLSeries()
	if err != nil {
		fatal(log, err)
	}
	if err := os.MkdirAll(filepath.Dir(*outPath), 0o755); err != nil {
		fatal(log, err)
	}
	if err := backtest.WritePnLCSV(*outPath, series); err != nil {
		fatal(log, err)
	}

	sum := analysis.Summarize(series)
	fmt.Printf("Wrote %d rows to %s\n", len(series), *outPath)
	fmt.Printf("PnL decision=$%.2f execution=$%.2f costs=$%.2f max drawdown=$%.2f\n",
		sum.TotalPnLDecision, sum.TotalPnLExecution, sum.TotalCosts, sum.MaxDrawdown)
}

func cmdCalendar(args []string) {
	fs := flag.NewFlagSet("calendar", flag.ExitOnError)
	cfgPath := fs.String("config", "", "Path to YAML config")
	_ = fs.Parse(args)

	if *cfgPath == "" {
		fmt.Println("--config is required")
		os.Exit(2)
	}

	log := newLogger(false)
	runner := buildRunner(log, *cfgPath, "calendar")
	for i, w := range runner.Windows() {
		fmt.Printf("%3d  iis %s .. %s  oos %s .. %s\n", i,
			w.IISStart.Format("2006-01-02"), w.IISEnd.Format("2006-01-02"),
			w.OOSStart.Format("2006-01-02"), w.OOSEnd.Format("2006-01-02"))
	}
}

func buildRunner(log zerolog.Logger, cfgPath, name string) *backtest.Runner {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fatal(log, err)
	}
	if cfg.QuotesFile == "" {
		fatal(log, fmt.Errorf("quotes_file is required in %s", cfgPath))
	}
	series, err := data.LoadQuotesJSON(cfg.QuotesFile)
	if err != nil {
		fatal(log, err)
	}
	pricing := market.NewStatic(series)

	calCfg, err := cfg.CalendarConfig()
	if err != nil {
		fatal(log, err)
	}
	st, err := store.New(cfg.StoreDir)
	if err != nil {
		fatal(log, err)
	}

	newStrategy := func(led *ledger.Ledger) (strategy.Strategy, error) {
		return strategy.New(cfg.Strategy.Name, strategy.Context{
			Ledger:  led,
			Pricing: pricing,
			Log:     log,
		}, cfg.Strategy.Settings)
	}

	runner, err := backtest.NewRunner(
		name, pricing,
		market.FixedFee{PerContract: cfg.Costs.FeePerContract},
		cfg.RolloverDays(), pricing,
		newStrategy,
		optimize.NewGridSearch(cfg.Optimize.NBest, log),
		st, calCfg, log,
	)
	if err != nil {
		fatal(log, err)
	}
	return runner
}

func newLogger(verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
}

func fatal(log zerolog.Logger, err error) {
	log.Fatal().Err(err).Msg("backtest failed")
}
