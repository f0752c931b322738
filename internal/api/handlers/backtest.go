package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"futures-backtest/internal/analysis"
	"futures-backtest/internal/api/models"
	"futures-backtest/internal/backtest"
	"futures-backtest/internal/data"
	"futures-backtest/internal/ledger"
	"futures-backtest/internal/market"
	"futures-backtest/internal/model"
	"futures-backtest/internal/optimize"
	"futures-backtest/internal/strategy"
	"futures-backtest/internal/wfo"
)

// BacktestHandler runs walk-forward backtests on request.
type BacktestHandler struct {
	log zerolog.Logger
}

// NewBacktestHandler creates a backtest handler.
func NewBacktestHandler(log zerolog.Logger) *BacktestHandler {
	return &BacktestHandler{log: log}
}

// RunBacktest handles POST /api/v1/backtest.
func (h *BacktestHandler) RunBacktest(c *gin.Context) {
	var req models.BacktestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", err)
		return
	}

	series, err := h.loadQuotes(req)
	if err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_QUOTES", err)
		return
	}
	pricing := market.NewStatic(series)

	calCfg, err := buildCalendarConfig(req.Calendar)
	if err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_CALENDAR", err)
		return
	}

	costs := market.FixedFee{PerContract: req.Costs.FeePerContract}
	rollover := ledger.RolloverDays{Future: defaultInt(req.Rollover.FutureDays, 7), Option: defaultInt(req.Rollover.OptionDays, 7)}
	nbest := defaultInt(req.Optimize.NBest, 1)

	newStrategy := func(led *ledger.Ledger) (strategy.Strategy, error) {
		return strategy.New(req.Strategy.Name, strategy.Context{
			Ledger:  led,
			Pricing: pricing,
			Log:     h.log,
		}, req.Strategy.Settings)
	}

	runner, err := backtest.NewRunner(
		req.Name, pricing, costs, rollover, pricing,
		newStrategy, optimize.NewGridSearch(nbest, h.log), nil, calCfg, h.log,
	)
	if err != nil {
		status, code := http.StatusBadRequest, "INVALID_CONFIG"
		if errors.Is(err, model.ErrUnknownStrategy) {
			code = "UNKNOWN_STRATEGY"
		}
		writeError(c, status, code, err)
		return
	}

	if err := runner.Run(time.Now()); err != nil {
		writeError(c, http.StatusUnprocessableEntity, "BACKTEST_FAILED", err)
		return
	}

	pnl, err := runner.Ledger().PnLSeries()
	if err != nil {
		writeError(c, http.StatusUnprocessableEntity, "PNL_FAILED", err)
		return
	}

	resp := models.BacktestResponse{
		RunID:   runner.RunID,
		Status:  "completed",
		Summary: analysis.Summarize(pnl),
	}
	if req.Options.IncludeSeries {
		resp.Series = pnl
		resp.Windows = runner.Windows()
	}
	c.JSON(http.StatusOK, resp)
}

func (h *BacktestHandler) loadQuotes(req models.BacktestRequest) ([]market.Series, error) {
	switch {
	case req.Quotes != nil && req.QuotesFile != "":
		return nil, errors.New("set either quotes or quotes_file, not both")
	case req.Quotes != nil:
		return req.Quotes.ToSeries()
	case req.QuotesFile != "":
		return data.LoadQuotesJSON(req.QuotesFile)
	default:
		return nil, errors.New("quotes or quotes_file is required")
	}
}

func buildCalendarConfig(cfg models.CalendarConfig) (wfo.CalendarConfig, error) {
	anchor := time.Friday
	if cfg.WeekAnchor != "" {
		found := false
		for wd := time.Sunday; wd <= time.Saturday; wd++ {
			if wd.String() == cfg.WeekAnchor {
				anchor = wd
				found = true
				break
			}
		}
		if !found {
			return wfo.CalendarConfig{}, errors.New("unknown week_anchor " + cfg.WeekAnchor)
		}
	}
	return wfo.CalendarConfig{
		Period:     wfo.Period(cfg.Period),
		WindowType: wfo.WindowType(cfg.WindowType),
		OOSPeriods: cfg.OOSPeriods,
		IISPeriods: cfg.IISPeriods,
		WeekAnchor: anchor,
	}, nil
}

func defaultInt(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

func writeError(c *gin.Context, status int, code string, err error) {
	c.JSON(status, models.ErrorResponse{
		Error: models.ErrorDetail{Code: code, Message: err.Error()},
	})
}
