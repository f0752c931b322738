package analysis

import (
	"time"

	"futures-backtest/internal/ledger"
)

// Summary aggregates an equity curve into headline numbers.
type Summary struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Days  int       `json:"days"`

	TotalPnLDecision  float64 `json:"total_pnl_decision"`
	TotalPnLExecution float64 `json:"total_pnl_execution"`
	TotalCosts        float64 `json:"total_costs"`
	ContractsTraded   float64 `json:"contracts_traded"`
	OptionsTraded     float64 `json:"options_traded"`

	// MaxDrawdown is the deepest peak-to-trough fall of the
	// decision-price curve, reported as a positive number.
	MaxDrawdown float64 `json:"max_drawdown"`
}

// Summarize reduces a PnL series to its summary.
func Summarize(series []ledger.PnLPoint) Summary {
	var s Summary
	if len(series) == 0 {
		return s
	}
	s.Start = series[0].Date
	s.End = series[len(series)-1].Date
	s.Days = len(series)

	peak := series[0].PnLDecision
	for _, p := range series {
		s.TotalCosts += p.Costs
		s.ContractsTraded += p.ContractsTraded
		s.OptionsTraded += p.OptionsTraded
		if p.PnLDecision > peak {
			peak = p.PnLDecision
		}
		if dd := peak - p.PnLDecision; dd > s.MaxDrawdown {
			s.MaxDrawdown = dd
		}
	}
	s.TotalPnLDecision = series[len(series)-1].PnLDecision
	s.TotalPnLExecution = series[len(series)-1].PnLExecution
	return s
}
