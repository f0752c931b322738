package replay

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"futures-backtest/internal/ledger"
	"futures-backtest/internal/model"
)

// PositionHook is the strategy's position-construction callback. It
// receives the assembled per-member exposure frame for one date and
// mutates the ledger through its public operations.
type PositionHook func(date time.Time, frame Frame) error

// Series is the recorded exposure history of a replay run: one frame per
// date on which the ledger actually held a position.
type Series struct {
	Dates []time.Time
	Rows  [][][]float64 // per date, per member, per column
}

// Loop replays out-of-sample days against a ledger.
type Loop struct {
	ledger *ledger.Ledger
	log    zerolog.Logger
}

// NewLoop binds a replay loop to its ledger.
func NewLoop(l *ledger.Ledger, log zerolog.Logger) *Loop {
	return &Loop{ledger: l, log: log.With().Str("component", "replay").Logger()}
}

// Run walks each date strictly after max(oosStart, ledger last date) up
// to oosEnd and applies the hook's effects.
//
// With no member tables the strategy is "off": each day is closed so the
// equity curve stays flat instead of erroring. Quote and option-chain
// lookups that fail inside the hook are logged and skipped per day; any
// other hook error aborts the run.
//
// days is the trading-day axis to walk when no member tables exist; with
// members the tables' shared date index is used instead.
func (r *Loop) Run(oosStart, oosEnd time.Time, days []time.Time, tables []*ExposureTable, hook PositionHook) (*Series, error) {
	if err := checkAligned(tables); err != nil {
		return nil, err
	}
	start := model.Day(oosStart)
	if last, ok := r.ledger.LastDate(); ok && last.After(start) {
		start = last
	}
	end := model.Day(oosEnd)

	axis := days
	if len(tables) > 0 {
		axis = tables[0].Dates
	}

	series := &Series{}
	for _, d := range axis {
		d = model.Day(d)
		if !d.After(start) || d.After(end) {
			continue
		}
		if len(tables) == 0 {
			if err := r.ledger.Close(d); err != nil {
				return nil, err
			}
			series.Dates = append(series.Dates, d)
			series.Rows = append(series.Rows, nil)
			continue
		}
		frame := Frame{Date: d, Columns: tables[0].Columns}
		for i, t := range tables {
			row, ok := t.Row(d)
			if !ok {
				return nil, fmt.Errorf("%w: exposure table %d missing date %s",
					model.ErrInvalidArgument, i, d.Format("2006-01-02"))
			}
			frame.Rows = append(frame.Rows, row)
		}
		if err := hook(d, frame); err != nil {
			if model.IsSoft(err) {
				// One bad day must not abort the whole backtest.
				r.log.Warn().Time("date", d).Err(err).Msg("position hook failed, skipping day")
				continue
			}
			return nil, fmt.Errorf("position hook at %s: %w", d.Format("2006-01-02"), err)
		}
		if r.ledger.HasPosition(d) {
			// Only record exposures for dates the ledger actually holds,
			// keeping the two date axes aligned.
			series.Dates = append(series.Dates, d)
			series.Rows = append(series.Rows, frame.Rows)
		}
	}
	return series, nil
}
