package model

import "time"

// WFOWindow is one walk-forward step: parameters are optimized on the
// in-sample span [IISStart, IISEnd) and traded on the out-of-sample span
// [OOSStart, OOSEnd). IISEnd always equals OOSStart.
type WFOWindow struct {
	IISStart time.Time `json:"iis_start"`
	IISEnd   time.Time `json:"iis_end"`
	OOSStart time.Time `json:"oos_start"`
	OOSEnd   time.Time `json:"oos_end"`
}

// WFOState is the resumable checkpoint of a walk-forward run.
type WFOState struct {
	LastWindow     *WFOWindow `json:"last_window,omitempty"`
	SelectedParams []ParamSet `json:"selected_params"`
}

// DateRange is the inclusive span of available quote dates.
type DateRange struct {
	First time.Time
	Last  time.Time
}

// Contains reports whether d falls inside the range, inclusive on both ends.
func (r DateRange) Contains(d time.Time) bool {
	return !d.Before(r.First) && !d.After(r.Last)
}

// Day normalizes a timestamp to its UTC calendar date. All ledger and
// calendar keys pass through here so that map lookups are exact.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
