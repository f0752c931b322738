package ledger

import (
	"time"

	"futures-backtest/internal/model"
)

// ShiftedView is a read-only wrapper over a ledger that offsets every
// lookup backward by a fixed decision-time shift. It is used when a
// consumer must see positions as they were known some days earlier.
//
// The view never mutates its base ledger, so it is safe to read from
// multiple goroutines as long as the base is no longer being written.
type ShiftedView struct {
	base  *Ledger
	shift time.Duration
}

// NewShiftedView wraps l with a backward decision-time shift.
func NewShiftedView(l *Ledger, decisionTimeShift time.Duration) *ShiftedView {
	return &ShiftedView{base: l, shift: decisionTimeShift}
}

func (v *ShiftedView) at(date time.Time) time.Time {
	return model.Day(date.Add(-v.shift))
}

// GetNetPosition delegates to the base ledger at the shifted date.
func (v *ShiftedView) GetNetPosition(date time.Time) (*Position, error) {
	return v.base.GetNetPosition(v.at(date))
}

func (v *ShiftedView) HasPosition(date time.Time) bool {
	return v.base.HasPosition(v.at(date))
}

func (v *ShiftedView) Delta(date time.Time) float64 {
	return v.base.Delta(v.at(date))
}

func (v *ShiftedView) AlmostExpiredRatio(date time.Time, override *RolloverDays) float64 {
	return v.base.AlmostExpiredRatio(v.at(date), override)
}

func (v *ShiftedView) LastTransactionDate(date time.Time) time.Time {
	return v.base.LastTransactionDate(v.at(date))
}

// Mutating operations are forbidden on a view.

func (v *ShiftedView) SetNetPosition(time.Time, []model.PositionRecord) error {
	return model.ErrReadOnly
}

func (v *ShiftedView) AddNetPosition(time.Time, []model.PositionRecord, float64) error {
	return model.ErrReadOnly
}

func (v *ShiftedView) AddTransaction(time.Time, model.AssetRef, float64) error {
	return model.ErrReadOnly
}

func (v *ShiftedView) Close(time.Time) error {
	return model.ErrReadOnly
}

func (v *ShiftedView) KeepPreviousPosition(time.Time) error {
	return model.ErrReadOnly
}
