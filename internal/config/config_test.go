package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"futures-backtest/internal/wfo"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
strategy:
  name: trend
  settings:
    ticker: ES
    size: 2.0
calendar:
  oos_periods: 1
  iis_periods: 8
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, string(wfo.Weekly), cfg.Calendar.Period)
	assert.Equal(t, string(wfo.Rolling), cfg.Calendar.WindowType)
	assert.Equal(t, "Friday", cfg.Calendar.WeekAnchor)
	assert.Equal(t, 7, cfg.Rollover.FutureDays)
	assert.Equal(t, 7, cfg.Rollover.OptionDays)
	assert.Equal(t, 1, cfg.Optimize.NBest)
	assert.Equal(t, "results", cfg.StoreDir)

	cal, err := cfg.CalendarConfig()
	require.NoError(t, err)
	assert.Equal(t, time.Friday, cal.WeekAnchor)
	assert.Equal(t, 8, cal.IISPeriods)
}

func TestLoadRejectsMissingStrategy(t *testing.T) {
	path := writeConfig(t, `
calendar:
  oos_periods: 1
  iis_periods: 4
`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsBadMonthlyStride(t *testing.T) {
	path := writeConfig(t, `
strategy:
  name: trend
calendar:
  period: monthly
  oos_periods: 5
  iis_periods: 6
`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsUnknownWeekAnchor(t *testing.T) {
	path := writeConfig(t, `
strategy:
  name: trend
calendar:
  oos_periods: 1
  iis_periods: 4
  week_anchor: Funday
`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestQuotesFileResolvedRelativeToConfig(t *testing.T) {
	dir := t.TempDir()
	quotes := filepath.Join(dir, "quotes.json")
	require.NoError(t, os.WriteFile(quotes, []byte(`{"series":[]}`), 0o644))

	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
quotes_file: quotes.json
strategy:
  name: trend
calendar:
  oos_periods: 1
  iis_periods: 4
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, quotes, cfg.QuotesFile)
}
