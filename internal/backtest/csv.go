package backtest

import (
	"encoding/csv"
	"os"
	"strconv"

	"futures-backtest/internal/ledger"
)

// WritePnLCSV writes the equity curve as CSV, one row per date.
func WritePnLCSV(path string, series []ledger.PnLPoint) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{
		"date",
		"pnl_decision",
		"pnl_execution",
		"n_contracts_traded",
		"n_options_traded",
		"costs",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, p := range series {
		row := []string{
			p.Date.Format("2006-01-02"),
			fmtFloat(p.PnLDecision),
			fmtFloat(p.PnLExecution),
			fmtFloat(p.ContractsTraded),
			fmtFloat(p.OptionsTraded),
			fmtFloat(p.Costs),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return w.Error()
}

func fmtFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
