package models

import "futures-backtest/internal/data"

// BacktestRequest is the request body for running a walk-forward
// backtest. Quote data comes inline or from a server-local file; exactly
// one of the two must be set.
type BacktestRequest struct {
	Name       string           `json:"name" binding:"required"`
	Quotes     *data.QuotesFile `json:"quotes,omitempty"`
	QuotesFile string           `json:"quotes_file,omitempty"`
	Strategy   StrategyConfig   `json:"strategy" binding:"required"`
	Calendar   CalendarConfig   `json:"calendar" binding:"required"`
	Costs      CostsConfig      `json:"costs,omitempty"`
	Rollover   RolloverConfig   `json:"rollover,omitempty"`
	Optimize   OptimizeConfig   `json:"optimize,omitempty"`
	Options    BacktestOptions  `json:"options,omitempty"`
}

// StrategyConfig names a registered strategy and its settings.
type StrategyConfig struct {
	Name     string         `json:"name" binding:"required"`
	Settings map[string]any `json:"settings,omitempty"`
}

// CalendarConfig shapes the walk-forward window generation.
type CalendarConfig struct {
	Period     string `json:"period" binding:"required"`      // weekly | monthly
	WindowType string `json:"window_type" binding:"required"` // rolling | expanding
	OOSPeriods int    `json:"oos_periods" binding:"required"`
	IISPeriods int    `json:"iis_periods" binding:"required"`
	WeekAnchor string `json:"week_anchor,omitempty"` // default Friday
}

type CostsConfig struct {
	FeePerContract float64 `json:"fee_per_contract,omitempty"`
}

type RolloverConfig struct {
	FutureDays int `json:"future_days,omitempty"`
	OptionDays int `json:"option_days,omitempty"`
}

type OptimizeConfig struct {
	NBest int `json:"nbest,omitempty"` // default 1
}

// BacktestOptions tunes the response shape.
type BacktestOptions struct {
	IncludeSeries bool `json:"include_series,omitempty"` // default: summary only
}
