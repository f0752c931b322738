// Package wfo generates walk-forward windows and decides, per window,
// whether a run should optimize, replay, skip or stop.
package wfo

import (
	"fmt"
	"time"

	"futures-backtest/internal/model"
)

// Period is the calendar unit windows are measured in.
type Period string

const (
	Weekly  Period = "weekly"
	Monthly Period = "monthly"
)

// WindowType selects how the in-sample span grows over time.
type WindowType string

const (
	// Rolling keeps a fixed-length in-sample lookback.
	Rolling WindowType = "rolling"
	// Expanding pins the in-sample start to the first available quote date.
	Expanding WindowType = "expanding"
)

// Monthly strides that keep in-sample/out-of-sample month boundaries
// aligned across the year.
var validMonthlyStrides = map[int]bool{1: true, 2: true, 3: true, 4: true, 6: true, 12: true}

// CalendarConfig parameterizes window generation.
type CalendarConfig struct {
	Period     Period     `yaml:"period"`
	WindowType WindowType `yaml:"window_type"`
	OOSPeriods int        `yaml:"oos_periods"` // stride, in Period units
	IISPeriods int        `yaml:"iis_periods"` // lookback, in Period units
	// WeekAnchor is the weekday that closes a trading week. Window
	// boundaries snap to the last anchor on or before each stride point.
	WeekAnchor time.Weekday `yaml:"week_anchor"`
}

func (c CalendarConfig) validate() error {
	if c.Period != Weekly && c.Period != Monthly {
		return fmt.Errorf("%w: period must be weekly or monthly, got %q", model.ErrInvalidArgument, c.Period)
	}
	if c.WindowType != Rolling && c.WindowType != Expanding {
		return fmt.Errorf("%w: window_type must be rolling or expanding, got %q", model.ErrInvalidArgument, c.WindowType)
	}
	if c.OOSPeriods < 1 {
		return fmt.Errorf("%w: oos_periods must be >= 1, got %d", model.ErrInvalidArgument, c.OOSPeriods)
	}
	if c.IISPeriods < 1 {
		return fmt.Errorf("%w: iis_periods must be >= 1, got %d", model.ErrInvalidArgument, c.IISPeriods)
	}
	if c.Period == Monthly && !validMonthlyStrides[c.OOSPeriods] {
		return fmt.Errorf("%w: monthly stride must be one of 1,2,3,4,6,12, got %d", model.ErrInvalidArgument, c.OOSPeriods)
	}
	return nil
}

// BuildCalendar generates the ordered walk-forward windows over the
// available quote range. Stride points advance from the first quote date;
// every boundary snaps to the last week anchor on or before it. Windows
// whose in-sample lookback would begin before the first quote date are
// dropped. One window past the end of the quote range is included so an
// online run can decide to re-optimize before new data arrives.
func BuildCalendar(cfg CalendarConfig, quotes model.DateRange) ([]model.WFOWindow, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	first := model.Day(quotes.First)
	last := model.Day(quotes.Last)
	if first.After(last) {
		return nil, fmt.Errorf("%w: empty quote range", model.ErrInvalidArgument)
	}

	var out []model.WFOWindow
	for k := 1; ; k++ {
		// Stride point k periods past the first quote date.
		oosStart := weekAnchorOnOrBefore(addPeriods(cfg.Period, first, k*cfg.OOSPeriods), cfg.WeekAnchor)
		oosEnd := weekAnchorOnOrBefore(addPeriods(cfg.Period, first, (k+1)*cfg.OOSPeriods), cfg.WeekAnchor)

		var iisStart time.Time
		if cfg.WindowType == Expanding {
			iisStart = first
		} else {
			iisStart = weekAnchorOnOrBefore(addPeriods(cfg.Period, oosStart, -cfg.IISPeriods), cfg.WeekAnchor)
		}
		if !iisStart.Before(oosStart) || iisStart.Before(first) {
			// Not enough lookback history yet.
			if oosStart.After(last) {
				break
			}
			continue
		}
		out = append(out, model.WFOWindow{
			IISStart: iisStart,
			IISEnd:   oosStart,
			OOSStart: oosStart,
			OOSEnd:   oosEnd,
		})
		if oosStart.After(last) {
			break
		}
	}
	return out, nil
}

// addPeriods advances d by n calendar periods (n may be negative).
func addPeriods(p Period, d time.Time, n int) time.Time {
	if p == Weekly {
		return d.AddDate(0, 0, 7*n)
	}
	return d.AddDate(0, n, 0)
}

// weekAnchorOnOrBefore snaps d back to the nearest anchor weekday.
func weekAnchorOnOrBefore(d time.Time, anchor time.Weekday) time.Time {
	d = model.Day(d)
	diff := (int(d.Weekday()) - int(anchor) + 7) % 7
	return d.AddDate(0, 0, -diff)
}
