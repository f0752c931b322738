// Demo runs a small walk-forward backtest against a synthetic futures
// quote series, end to end and with no input files.
package main

import (
	"fmt"
	"math"
	"os"
	"time"

	"github.com/rs/zerolog"

	"futures-backtest/internal/analysis"
	"futures-backtest/internal/backtest"
	"futures-backtest/internal/ledger"
	"futures-backtest/internal/market"
	"futures-backtest/internal/model"
	"futures-backtest/internal/optimize"
	"futures-backtest/internal/strategy"
	"futures-backtest/internal/wfo"
)

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	pricing := market.NewStatic([]market.Series{syntheticSeries()})

	newStrategy := func(led *ledger.Ledger) (strategy.Strategy, error) {
		return strategy.New("trend", strategy.Context{
			Ledger:  led,
			Pricing: pricing,
			Log:     log,
		}, map[string]any{
			"ticker":      "ES",
			"size":        2.0,
			"point_value": 50.0,
		})
	}

	runner, err := backtest.NewRunner(
		"demo", pricing,
		market.FixedFee{PerContract: 2.5},
		ledger.RolloverDays{Future: 7, Option: 7},
		pricing, newStrategy,
		optimize.NewGridSearch(2, log),
		nil,
		wfo.CalendarConfig{
			Period:     wfo.Weekly,
			WindowType: wfo.Rolling,
			OOSPeriods: 1,
			IISPeriods: 8,
			WeekAnchor: time.Friday,
		},
		log,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("wiring failed")
	}

	if err := runner.Run(time.Now()); err != nil {
		log.Fatal().Err(err).Msg("run failed")
	}

	series, err := runner.Ledger().PnLSeries()
	if err != nil {
		log.Fatal().Err(err).Msg("pnl failed")
	}
	sum := analysis.Summarize(series)
	fmt.Printf("windows=%d days=%d\n", len(runner.Windows()), sum.Days)
	fmt.Printf("PnL decision=$%.2f execution=$%.2f costs=$%.2f max drawdown=$%.2f\n",
		sum.TotalPnLDecision, sum.TotalPnLExecution, sum.TotalCosts, sum.MaxDrawdown)
}

// syntheticSeries builds half a year of weekday quotes with a slow sine
// drift, enough for the momentum signal to trade on.
func syntheticSeries() market.Series {
	asset := model.AssetRef{Ticker: "ES", Kind: model.KindFuture, PointValue: 50}
	sr := market.Series{Asset: asset}
	start := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 180; i++ {
		d := start.AddDate(0, 0, i)
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		px := 4000 + 120*math.Sin(float64(i)/17) + float64(i)*0.8
		sr.Quotes = append(sr.Quotes, market.Quote{
			Date:       d,
			DecisionPx: px,
			ExecPx:     px + 0.25,
		})
	}
	return sr
}
