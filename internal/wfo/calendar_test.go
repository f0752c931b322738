package wfo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"futures-backtest/internal/model"
)

func quoteRange(first, last string) model.DateRange {
	f, _ := time.Parse("2006-01-02", first)
	l, _ := time.Parse("2006-01-02", last)
	return model.DateRange{First: f, Last: l}
}

func TestBuildCalendarWeeklyRolling(t *testing.T) {
	cfg := CalendarConfig{
		Period:     Weekly,
		WindowType: Rolling,
		OOSPeriods: 1,
		IISPeriods: 4,
		WeekAnchor: time.Friday,
	}
	windows, err := BuildCalendar(cfg, quoteRange("2023-01-02", "2023-06-30"))
	require.NoError(t, err)
	require.NotEmpty(t, windows)

	for i, w := range windows {
		assert.Equal(t, w.IISEnd, w.OOSStart, "window %d: iis_end must equal oos_start", i)
		assert.Equal(t, time.Friday, w.OOSStart.Weekday(), "window %d boundary not on anchor", i)
		assert.Equal(t, time.Friday, w.IISStart.Weekday(), "window %d boundary not on anchor", i)
		assert.True(t, w.IISStart.Before(w.IISEnd))
		assert.True(t, w.OOSStart.Before(w.OOSEnd))
		// Rolling lookback is exactly four weeks.
		assert.Equal(t, w.OOSStart.AddDate(0, 0, -28), w.IISStart, "window %d lookback", i)
		if i > 0 {
			assert.True(t, w.OOSStart.After(windows[i-1].OOSStart))
		}
		// Lookback never reaches before the data.
		assert.False(t, w.IISStart.Before(time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)))
	}
	// One window past the quote range for the online trigger.
	last := windows[len(windows)-1]
	assert.True(t, last.OOSStart.After(time.Date(2023, 6, 30, 0, 0, 0, 0, time.UTC)))
}

func TestBuildCalendarExpandingPinsIISStart(t *testing.T) {
	cfg := CalendarConfig{
		Period:     Weekly,
		WindowType: Expanding,
		OOSPeriods: 2,
		IISPeriods: 1,
		WeekAnchor: time.Friday,
	}
	windows, err := BuildCalendar(cfg, quoteRange("2023-01-02", "2023-04-28"))
	require.NoError(t, err)
	require.NotEmpty(t, windows)

	first := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	for _, w := range windows {
		assert.Equal(t, first, w.IISStart)
	}
	// Later windows keep growing their in-sample span.
	assert.True(t, windows[len(windows)-1].IISEnd.After(windows[0].IISEnd))
}

func TestBuildCalendarMonthlyStrideValidation(t *testing.T) {
	cfg := CalendarConfig{
		Period:     Monthly,
		WindowType: Rolling,
		OOSPeriods: 5, // not calendar-aligned
		IISPeriods: 6,
		WeekAnchor: time.Friday,
	}
	_, err := BuildCalendar(cfg, quoteRange("2020-01-01", "2023-01-01"))
	assert.ErrorIs(t, err, model.ErrInvalidArgument)
}

func TestBuildCalendarMonthly(t *testing.T) {
	cfg := CalendarConfig{
		Period:     Monthly,
		WindowType: Rolling,
		OOSPeriods: 1,
		IISPeriods: 3,
		WeekAnchor: time.Friday,
	}
	windows, err := BuildCalendar(cfg, quoteRange("2022-01-03", "2022-12-30"))
	require.NoError(t, err)
	require.NotEmpty(t, windows)
	for _, w := range windows {
		assert.Equal(t, time.Friday, w.OOSStart.Weekday())
		assert.Equal(t, w.IISEnd, w.OOSStart)
	}
}

func TestBuildCalendarRejectsBadParams(t *testing.T) {
	base := CalendarConfig{Period: Weekly, WindowType: Rolling, OOSPeriods: 1, IISPeriods: 4, WeekAnchor: time.Friday}
	r := quoteRange("2023-01-02", "2023-06-30")

	cfg := base
	cfg.Period = "daily"
	_, err := BuildCalendar(cfg, r)
	assert.ErrorIs(t, err, model.ErrInvalidArgument)

	cfg = base
	cfg.OOSPeriods = 0
	_, err = BuildCalendar(cfg, r)
	assert.ErrorIs(t, err, model.ErrInvalidArgument)

	cfg = base
	cfg.IISPeriods = 0
	_, err = BuildCalendar(cfg, r)
	assert.ErrorIs(t, err, model.ErrInvalidArgument)

	cfg = base
	cfg.WindowType = "sliding"
	_, err = BuildCalendar(cfg, r)
	assert.ErrorIs(t, err, model.ErrInvalidArgument)
}
