package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"futures-backtest/internal/model"
)

func TestShiftedViewOffsetsLookups(t *testing.T) {
	l := aaplLedger()
	require.NoError(t, l.AddTransaction(d20110101, aapl, 3.0))

	v := NewShiftedView(l, 24*time.Hour)

	// A lookup at Jan 2 sees Jan 1's holdings.
	pos, err := v.GetNetPosition(d20110102)
	require.NoError(t, err)
	rec, _ := pos.Get("AAPL")
	assert.Equal(t, 3.0, rec.Qty)
	assert.True(t, v.HasPosition(d20110102))
	assert.False(t, v.HasPosition(d20110101))

	_, err = v.GetNetPosition(d20110101)
	assert.ErrorIs(t, err, model.ErrPositionNotFound)
}

func TestShiftedViewForbidsMutation(t *testing.T) {
	v := NewShiftedView(aaplLedger(), 24*time.Hour)

	assert.ErrorIs(t, v.AddTransaction(d20110101, aapl, 1.0), model.ErrReadOnly)
	assert.ErrorIs(t, v.AddNetPosition(d20110101, nil, 1.0), model.ErrReadOnly)
	assert.ErrorIs(t, v.SetNetPosition(d20110101, nil), model.ErrReadOnly)
	assert.ErrorIs(t, v.Close(d20110101), model.ErrReadOnly)
	assert.ErrorIs(t, v.KeepPreviousPosition(d20110101), model.ErrReadOnly)
}

func TestSnapshotRoundTrip(t *testing.T) {
	l := aaplLedger()
	require.NoError(t, l.AddTransaction(d20110101, aapl, 3.0))
	require.NoError(t, l.KeepPreviousPosition(d20110102))

	doc := l.Export()
	restored, err := Restore(doc, l.pricing, l.costs, l.rollover, l.log)
	require.NoError(t, err)
	assert.Equal(t, doc, restored.Export())
	assert.Equal(t, l.Dates(), restored.Dates())
}

func TestRestoreRejectsOutOfOrderDates(t *testing.T) {
	doc := SnapshotDoc{Dates: []DateDoc{
		{Date: "2011-01-02"},
		{Date: "2011-01-01"},
	}}
	l := aaplLedger()
	_, err := Restore(doc, l.pricing, l.costs, l.rollover, l.log)
	assert.ErrorIs(t, err, model.ErrInvalidArgument)
}
