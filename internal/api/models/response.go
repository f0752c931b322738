package models

import (
	"futures-backtest/internal/analysis"
	"futures-backtest/internal/ledger"
	"futures-backtest/internal/model"
)

// BacktestResponse is the result of one walk-forward run.
type BacktestResponse struct {
	RunID   string             `json:"run_id"`
	Status  string             `json:"status"`
	Summary analysis.Summary   `json:"summary"`
	Windows []model.WFOWindow  `json:"windows,omitempty"`
	Series  []ledger.PnLPoint  `json:"series,omitempty"`
}

// StrategiesResponse lists the registered strategy names.
type StrategiesResponse struct {
	Strategies []string `json:"strategies"`
}

// ErrorResponse is the uniform error envelope.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries a stable machine code plus a human message.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
