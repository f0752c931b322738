package strategy

import (
	"errors"
	"fmt"
	"time"

	"futures-backtest/internal/model"
	"futures-backtest/internal/optimize"
	"futures-backtest/internal/replay"
)

func init() {
	Register("trend", newTrend)
}

// Trend is a simple momentum strategy over one futures contract series:
// exposure is the sign of the price move over a lookback window, and the
// target position is the summed member exposure scaled by a fixed size.
// It exists as the in-repo reference strategy; production strategies
// register the same way.
type Trend struct {
	ctx   Context
	asset model.AssetRef
	size  float64
	grid  map[string][]float64
}

func newTrend(ctx Context, settings map[string]any) (Strategy, error) {
	ticker, err := stringSetting(settings, "ticker")
	if err != nil {
		return nil, err
	}
	size, err := floatSetting(settings, "size")
	if err != nil {
		return nil, err
	}
	t := &Trend{
		ctx: ctx,
		asset: model.AssetRef{
			Ticker:     ticker,
			Kind:       model.KindFuture,
			PointValue: 1,
		},
		size: size,
		grid: map[string][]float64{"lookback": {5, 10, 20}},
	}
	if pv, err := floatSetting(settings, "point_value"); err == nil {
		t.asset.PointValue = pv
	}
	if lbs, ok := settings["lookbacks"].([]any); ok {
		var vals []float64
		for _, v := range lbs {
			f, err := toFloat(v)
			if err != nil {
				return nil, fmt.Errorf("lookbacks: %w", err)
			}
			vals = append(vals, f)
		}
		t.grid["lookback"] = vals
	}
	return t, nil
}

func (t *Trend) Name() string { return "trend" }

func (t *Trend) ParamUniverse() []model.ParamSet {
	return optimize.Universe(t.grid)
}

// Calculate marks each day with the sign of the lookback price move.
// Days without a quote on either end carry zero exposure.
func (t *Trend) Calculate(params model.ParamSet, days []time.Time) (*replay.ExposureTable, error) {
	lookback := int(params["lookback"])
	if lookback < 1 {
		return nil, fmt.Errorf("%w: lookback must be >= 1, got %d", model.ErrInvalidArgument, lookback)
	}
	rows := make([][]float64, len(days))
	for i, d := range days {
		var exp float64
		if i >= lookback {
			p1, _, err1 := t.ctx.Pricing.Price(t.asset, d)
			p0, _, err0 := t.ctx.Pricing.Price(t.asset, days[i-lookback])
			if err0 == nil && err1 == nil {
				switch {
				case p1 > p0:
					exp = 1
				case p1 < p0:
					exp = -1
				}
			} else if !recoverable(err0) || !recoverable(err1) {
				if err1 != nil {
					return nil, err1
				}
				return nil, err0
			}
		}
		rows[i] = []float64{exp}
	}
	return replay.NewExposureTable([]string{"exposure"}, days, rows)
}

// CalculatePosition carries yesterday's holdings forward and books the
// transaction that moves the asset to its target quantity.
func (t *Trend) CalculatePosition(date time.Time, frame replay.Frame) error {
	var target float64
	for _, row := range frame.Rows {
		target += row[0]
	}
	target *= t.size

	if err := t.ctx.Ledger.KeepPreviousPosition(date); err != nil {
		return err
	}
	var cur float64
	if pos, err := t.ctx.Ledger.GetNetPosition(date); err == nil {
		if r, ok := pos.Get(t.asset.Ticker); ok {
			cur = r.Qty
		}
	} else if !errors.Is(err, model.ErrPositionNotFound) {
		return err
	}
	if delta := target - cur; delta != 0 {
		return t.ctx.Ledger.AddTransaction(date, t.asset, delta)
	}
	return nil
}

func recoverable(err error) bool {
	return err == nil || errors.Is(err, model.ErrQuoteNotFound) || errors.Is(err, model.ErrAssetExpired)
}

func stringSetting(settings map[string]any, key string) (string, error) {
	v, ok := settings[key]
	if !ok {
		return "", fmt.Errorf("%w: missing strategy setting %q", model.ErrInvalidArgument, key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: setting %q must be a string", model.ErrInvalidArgument, key)
	}
	return s, nil
}

func floatSetting(settings map[string]any, key string) (float64, error) {
	v, ok := settings[key]
	if !ok {
		return 0, fmt.Errorf("%w: missing strategy setting %q", model.ErrInvalidArgument, key)
	}
	return toFloat(v)
}

func toFloat(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case int:
		return float64(x), nil
	default:
		return 0, fmt.Errorf("%w: expected number, got %T", model.ErrInvalidArgument, v)
	}
}
