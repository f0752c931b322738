package wfo

import (
	"time"

	"futures-backtest/internal/model"
)

// Action is the scheduler's decision for one candidate window.
type Action int

const (
	// Skip advances to the next window without side effects.
	Skip Action = iota
	// Optimize runs the parameter search over the in-sample span, then
	// replays the out-of-sample slice.
	Optimize
	// Run replays the out-of-sample slice with previously selected
	// parameters, without re-optimizing.
	Run
	// Break stops the driving loop: nothing more to do yet.
	Break
)

func (a Action) String() string {
	switch a {
	case Skip:
		return "skip"
	case Optimize:
		return "optimize"
	case Run:
		return "run"
	case Break:
		return "break"
	default:
		return "unknown"
	}
}

// NextAction decides what to do with a candidate window given the last
// processed window, the available quote range, and the wall clock. It is
// a pure function and total: every input maps to exactly one action.
//
// The wall clock matters in one case only: when the candidate's
// out-of-sample span starts past the last available quote, an online run
// whose "now" already falls inside that span re-optimizes ahead of the
// data (the weekend-before-Monday trigger); otherwise the loop stops.
func NextAction(last *model.WFOWindow, candidate model.WFOWindow, quotes model.DateRange, now time.Time) Action {
	if last == nil {
		// First run ever: need the whole in-sample span covered by data.
		if quotes.Contains(candidate.IISEnd) {
			return Optimize
		}
		return Skip
	}
	switch {
	case last.OOSEnd.Equal(candidate.OOSEnd):
		// Same window re-processed: reuse the selected parameters.
		return Run
	case last.OOSEnd.After(candidate.OOSEnd):
		// Stale candidate, already passed.
		return Skip
	case candidate.OOSStart.After(quotes.Last):
		if !now.Before(candidate.OOSStart) && !now.After(candidate.OOSEnd) {
			return Optimize
		}
		return Break
	default:
		// New history is available past the last processed window.
		return Optimize
	}
}
