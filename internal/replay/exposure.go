// Package replay walks calendar days inside an out-of-sample window,
// feeding per-day exposure signals to a strategy's position hook and
// applying its effects to the ledger with soft-fail semantics.
package replay

import (
	"fmt"
	"time"

	"futures-backtest/internal/model"
)

// ExposureTable is one parameter set's exposure signal: a date index with
// one named row of values per date. All tables handed to a replay run
// must share the same date index and column names.
type ExposureTable struct {
	Columns []string
	Dates   []time.Time
	Rows    [][]float64 // Rows[i] aligns with Dates[i] and Columns

	index map[time.Time]int
}

// NewExposureTable builds a table and its date index.
func NewExposureTable(columns []string, dates []time.Time, rows [][]float64) (*ExposureTable, error) {
	if len(dates) != len(rows) {
		return nil, fmt.Errorf("%w: exposure table has %d dates but %d rows",
			model.ErrInvalidArgument, len(dates), len(rows))
	}
	t := &ExposureTable{
		Columns: columns,
		Dates:   make([]time.Time, len(dates)),
		Rows:    rows,
		index:   make(map[time.Time]int, len(dates)),
	}
	for i, d := range dates {
		d = model.Day(d)
		t.Dates[i] = d
		t.index[d] = i
	}
	return t, nil
}

// Row returns the values at date, if the date is in the index.
func (t *ExposureTable) Row(date time.Time) ([]float64, bool) {
	i, ok := t.index[model.Day(date)]
	if !ok {
		return nil, false
	}
	return t.Rows[i], true
}

// Frame is the per-date slice handed to the position hook: one row per
// selected parameter set, sharing column names.
type Frame struct {
	Date    time.Time
	Columns []string
	Rows    [][]float64
}

// checkAligned verifies that all member tables share identical date
// indexes and column names. Checked once per replay call.
func checkAligned(tables []*ExposureTable) error {
	if len(tables) < 2 {
		return nil
	}
	ref := tables[0]
	for i, t := range tables[1:] {
		if len(t.Dates) != len(ref.Dates) {
			return fmt.Errorf("%w: exposure table %d has %d rows, expected %d",
				model.ErrInvalidArgument, i+1, len(t.Dates), len(ref.Dates))
		}
		for j := range ref.Dates {
			if !t.Dates[j].Equal(ref.Dates[j]) {
				return fmt.Errorf("%w: exposure table %d date index diverges at row %d",
					model.ErrInvalidArgument, i+1, j)
			}
		}
		if len(t.Columns) != len(ref.Columns) {
			return fmt.Errorf("%w: exposure table %d has %d columns, expected %d",
				model.ErrInvalidArgument, i+1, len(t.Columns), len(ref.Columns))
		}
		for j := range ref.Columns {
			if t.Columns[j] != ref.Columns[j] {
				return fmt.Errorf("%w: exposure table %d column %q diverges from %q",
					model.ErrInvalidArgument, i+1, t.Columns[j], ref.Columns[j])
			}
		}
	}
	return nil
}
