package replay

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"futures-backtest/internal/ledger"
	"futures-backtest/internal/market"
	"futures-backtest/internal/model"
)

var es = model.AssetRef{Ticker: "ES", Kind: model.KindFuture, PointValue: 50}

func tradingDays(start string, n int) []time.Time {
	d, _ := time.Parse("2006-01-02", start)
	out := make([]time.Time, n)
	for i := range out {
		out[i] = d.AddDate(0, 0, i)
	}
	return out
}

func testLedger(days []time.Time) *ledger.Ledger {
	sr := market.Series{Asset: es}
	for i, d := range days {
		px := 4000 + float64(i)
		sr.Quotes = append(sr.Quotes, market.Quote{Date: d, DecisionPx: px, ExecPx: px})
	}
	return ledger.New(market.NewStatic([]market.Series{sr}), market.FixedFee{}, ledger.RolloverDays{}, zerolog.Nop())
}

func oneColumnTable(t *testing.T, days []time.Time, value float64) *ExposureTable {
	t.Helper()
	rows := make([][]float64, len(days))
	for i := range rows {
		rows[i] = []float64{value}
	}
	tab, err := NewExposureTable([]string{"exposure"}, days, rows)
	require.NoError(t, err)
	return tab
}

func TestRunInvokesHookPerDay(t *testing.T) {
	days := tradingDays("2023-01-02", 5)
	led := testLedger(days)
	loop := NewLoop(led, zerolog.Nop())

	var seen []time.Time
	hook := func(d time.Time, frame Frame) error {
		seen = append(seen, d)
		assert.Equal(t, []string{"exposure"}, frame.Columns)
		require.Len(t, frame.Rows, 2)
		return led.AddTransaction(d, es, frame.Rows[0][0]+frame.Rows[1][0])
	}

	tables := []*ExposureTable{
		oneColumnTable(t, days, 1),
		oneColumnTable(t, days, 2),
	}
	series, err := loop.Run(days[0], days[len(days)-1], days, tables, hook)
	require.NoError(t, err)

	// Days strictly after oosStart, up to oosEnd.
	assert.Equal(t, days[1:], seen)
	assert.Equal(t, days[1:], series.Dates)
}

func TestRunStartsAfterLedgerLastDate(t *testing.T) {
	days := tradingDays("2023-01-02", 5)
	led := testLedger(days)
	require.NoError(t, led.AddTransaction(days[2], es, 1))

	loop := NewLoop(led, zerolog.Nop())
	var seen []time.Time
	hook := func(d time.Time, frame Frame) error {
		seen = append(seen, d)
		return led.KeepPreviousPosition(d)
	}
	_, err := loop.Run(days[0], days[len(days)-1], days, []*ExposureTable{oneColumnTable(t, days, 1)}, hook)
	require.NoError(t, err)
	assert.Equal(t, days[3:], seen)
}

func TestRunEmptyMembersClosesEachDay(t *testing.T) {
	days := tradingDays("2023-01-02", 4)
	led := testLedger(days)
	require.NoError(t, led.AddTransaction(days[0], es, 3))

	loop := NewLoop(led, zerolog.Nop())
	series, err := loop.Run(days[0], days[len(days)-1], days, nil, func(time.Time, Frame) error {
		t.Fatal("hook must not run in strategy-off mode")
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, days[1:], series.Dates)

	for _, d := range days[1:] {
		assert.False(t, led.HasPosition(d))
		_, err := led.GetNetPosition(d)
		assert.NoError(t, err, "date key must exist for a flat equity curve")
	}
}

func TestRunSoftErrorsSkipDay(t *testing.T) {
	days := tradingDays("2023-01-02", 4)
	led := testLedger(days)
	loop := NewLoop(led, zerolog.Nop())

	hook := func(d time.Time, frame Frame) error {
		if d.Equal(days[2]) {
			return fmt.Errorf("option search: %w", model.ErrChainNotFound)
		}
		return led.AddTransaction(d, es, 1)
	}
	series, err := loop.Run(days[0], days[len(days)-1], days, []*ExposureTable{oneColumnTable(t, days, 1)}, hook)
	require.NoError(t, err)

	// The bad day is absent; the run carried on.
	assert.Equal(t, []time.Time{days[1], days[3]}, series.Dates)
}

func TestRunFatalErrorAborts(t *testing.T) {
	days := tradingDays("2023-01-02", 4)
	led := testLedger(days)
	loop := NewLoop(led, zerolog.Nop())

	boom := errors.New("boom")
	hook := func(d time.Time, frame Frame) error { return boom }
	_, err := loop.Run(days[0], days[len(days)-1], days, []*ExposureTable{oneColumnTable(t, days, 1)}, hook)
	assert.ErrorIs(t, err, boom)
}

func TestRunSkipsExposureWhenNoPosition(t *testing.T) {
	days := tradingDays("2023-01-02", 4)
	led := testLedger(days)
	loop := NewLoop(led, zerolog.Nop())

	hook := func(d time.Time, frame Frame) error {
		if d.Equal(days[1]) {
			return nil // hook declined to take a position
		}
		return led.AddTransaction(d, es, 1)
	}
	series, err := loop.Run(days[0], days[len(days)-1], days, []*ExposureTable{oneColumnTable(t, days, 1)}, hook)
	require.NoError(t, err)
	assert.Equal(t, []time.Time{days[2], days[3]}, series.Dates)
}

func TestRunRejectsMisalignedTables(t *testing.T) {
	days := tradingDays("2023-01-02", 4)
	led := testLedger(days)
	loop := NewLoop(led, zerolog.Nop())
	noop := func(time.Time, Frame) error { return nil }

	short := oneColumnTable(t, days[:3], 1)
	_, err := loop.Run(days[0], days[3], days, []*ExposureTable{oneColumnTable(t, days, 1), short}, noop)
	assert.ErrorIs(t, err, model.ErrInvalidArgument)

	rows := make([][]float64, len(days))
	for i := range rows {
		rows[i] = []float64{1}
	}
	otherCols, err := NewExposureTable([]string{"weight"}, days, rows)
	require.NoError(t, err)
	_, err = loop.Run(days[0], days[3], days, []*ExposureTable{oneColumnTable(t, days, 1), otherCols}, noop)
	assert.ErrorIs(t, err, model.ErrInvalidArgument)
}

func TestNewExposureTableRejectsRowMismatch(t *testing.T) {
	days := tradingDays("2023-01-02", 3)
	_, err := NewExposureTable([]string{"exposure"}, days, [][]float64{{1}})
	assert.ErrorIs(t, err, model.ErrInvalidArgument)
}
