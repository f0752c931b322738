// Package backtest drives a walk-forward run: it iterates the window
// calendar, lets the scheduler decide per window whether to optimize,
// replay, skip or stop, and checkpoints ledger and state after each
// processed window.
package backtest

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"futures-backtest/internal/ledger"
	"futures-backtest/internal/market"
	"futures-backtest/internal/model"
	"futures-backtest/internal/optimize"
	"futures-backtest/internal/replay"
	"futures-backtest/internal/store"
	"futures-backtest/internal/strategy"
	"futures-backtest/internal/wfo"
)

// QuoteCalendar exposes the trading-day axis of the quote source.
type QuoteCalendar interface {
	Days() []time.Time
	Range() model.DateRange
}

// StrategyFactory builds a strategy bound to a specific ledger. The
// runner needs fresh strategy instances for in-sample scoring against
// scratch ledgers.
type StrategyFactory func(led *ledger.Ledger) (strategy.Strategy, error)

// Runner owns one strategy's walk-forward backtest.
type Runner struct {
	Name  string
	RunID string

	pricing  market.Pricing
	costs    market.CostModel
	rollover ledger.RolloverDays
	quotes   QuoteCalendar

	newStrategy StrategyFactory
	strat       strategy.Strategy
	led         *ledger.Ledger
	optimizer   optimize.Optimizer
	st          *store.Store // nil disables checkpointing
	calendar    []model.WFOWindow
	state       model.WFOState

	log zerolog.Logger
}

// NewRunner wires a runner from its collaborators. The store may be nil
// for throwaway research runs.
func NewRunner(
	name string,
	pricing market.Pricing,
	costs market.CostModel,
	rollover ledger.RolloverDays,
	quotes QuoteCalendar,
	newStrategy StrategyFactory,
	optimizer optimize.Optimizer,
	st *store.Store,
	calCfg wfo.CalendarConfig,
	log zerolog.Logger,
) (*Runner, error) {
	calendar, err := wfo.BuildCalendar(calCfg, quotes.Range())
	if err != nil {
		return nil, err
	}
	r := &Runner{
		Name:        name,
		RunID:       uuid.NewString(),
		pricing:     pricing,
		costs:       costs,
		rollover:    rollover,
		quotes:      quotes,
		newStrategy: newStrategy,
		optimizer:   optimizer,
		st:          st,
		calendar:    calendar,
	}
	r.log = log.With().Str("component", "runner").Str("run", name).Str("run_id", r.RunID).Logger()
	r.led = ledger.New(pricing, costs, rollover, r.log)
	r.strat, err = newStrategy(r.led)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Ledger returns the run's position ledger.
func (r *Runner) Ledger() *ledger.Ledger { return r.led }

// State returns the current walk-forward checkpoint.
func (r *Runner) State() model.WFOState { return r.state }

// Windows returns the generated walk-forward calendar.
func (r *Runner) Windows() []model.WFOWindow { return r.calendar }

// Run drives the scheduler over the calendar until it breaks or the
// calendar is exhausted. now is the wall clock for the online
// re-optimization trigger; pass time.Now() outside of tests.
func (r *Runner) Run(now time.Time) error {
	qr := r.quotes.Range()
	for _, w := range r.calendar {
		action := wfo.NextAction(r.state.LastWindow, w, qr, now)
		r.log.Info().
			Time("oos_start", w.OOSStart).Time("oos_end", w.OOSEnd).
			Stringer("action", action).Msg("window scheduled")

		switch action {
		case wfo.Break:
			return nil
		case wfo.Skip:
			continue
		case wfo.Optimize:
			selected, err := r.optimizer.Search(r.strat.ParamUniverse(), r.scoreFunc(w))
			if err != nil {
				return fmt.Errorf("optimize window ending %s: %w", w.OOSEnd.Format("2006-01-02"), err)
			}
			r.state.SelectedParams = selected
		case wfo.Run:
			// Reuse previously selected parameters.
		}

		if err := r.replayWindow(w); err != nil {
			return err
		}
		win := w
		r.state.LastWindow = &win
		if err := r.Save(); err != nil {
			return err
		}
	}
	return nil
}

// replayWindow computes the selected members' exposures over the full
// window span and replays the out-of-sample slice onto the run ledger.
func (r *Runner) replayWindow(w model.WFOWindow) error {
	days := r.daysBetween(w.IISStart, w.OOSEnd)
	tables, err := r.exposureTables(r.strat, r.state.SelectedParams, days)
	if err != nil {
		return err
	}
	loop := replay.NewLoop(r.led, r.log)
	if _, err := loop.Run(w.OOSStart, w.OOSEnd, days, tables, r.strat.CalculatePosition); err != nil {
		return fmt.Errorf("replay window ending %s: %w", w.OOSEnd.Format("2006-01-02"), err)
	}
	return nil
}

// scoreFunc evaluates a parameter set by replaying the in-sample span on
// a scratch ledger and taking the final decision-price PnL.
func (r *Runner) scoreFunc(w model.WFOWindow) optimize.ScoreFunc {
	return func(params model.ParamSet) (float64, error) {
		scratch := ledger.New(r.pricing, r.costs, r.rollover, zerolog.Nop())
		strat, err := r.newStrategy(scratch)
		if err != nil {
			return 0, err
		}
		days := r.daysBetween(w.IISStart, w.IISEnd)
		tables, err := r.exposureTables(strat, []model.ParamSet{params}, days)
		if err != nil {
			return 0, err
		}
		loop := replay.NewLoop(scratch, zerolog.Nop())
		if _, err := loop.Run(w.IISStart, w.IISEnd, days, tables, strat.CalculatePosition); err != nil {
			return 0, err
		}
		series, err := scratch.PnLSeries()
		if err != nil {
			return 0, err
		}
		if len(series) == 0 {
			return 0, nil
		}
		return series[len(series)-1].PnLDecision, nil
	}
}

func (r *Runner) exposureTables(strat strategy.Strategy, members []model.ParamSet, days []time.Time) ([]*replay.ExposureTable, error) {
	tables := make([]*replay.ExposureTable, 0, len(members))
	for _, p := range members {
		t, err := strat.Calculate(p, days)
		if err != nil {
			return nil, fmt.Errorf("calculate exposures for %v: %w", p, err)
		}
		tables = append(tables, t)
	}
	return tables, nil
}

func (r *Runner) daysBetween(from, to time.Time) []time.Time {
	var out []time.Time
	for _, d := range r.quotes.Days() {
		if !d.Before(from) && !d.After(to) {
			out = append(out, d)
		}
	}
	return out
}

// Save checkpoints the ledger and walk-forward state, if a store is
// configured.
func (r *Runner) Save() error {
	if r.st == nil {
		return nil
	}
	if err := r.st.SaveLedger(r.Name, r.led); err != nil {
		return fmt.Errorf("save ledger %q: %w", r.Name, err)
	}
	if err := r.st.SaveState(r.Name, r.state); err != nil {
		return fmt.Errorf("save state %q: %w", r.Name, err)
	}
	return nil
}

// Load restores the ledger and state from the last checkpoint, rebinding
// the strategy to the restored ledger. Without a checkpoint the runner
// keeps its empty ledger.
func (r *Runner) Load() error {
	if r.st == nil {
		return nil
	}
	st, err := r.st.LoadState(r.Name)
	if err != nil {
		return fmt.Errorf("load state %q: %w", r.Name, err)
	}
	r.state = st
	if !r.st.HasLedger(r.Name) {
		return nil
	}
	led, err := r.st.LoadLedger(r.Name, r.pricing, r.costs, r.rollover, r.log)
	if err != nil {
		return fmt.Errorf("load ledger %q: %w", r.Name, err)
	}
	r.led = led
	r.strat, err = r.newStrategy(led)
	return err
}
