package ledger

import (
	"fmt"
	"math"
	"time"

	"futures-backtest/internal/model"
)

// PnLPoint is one date on the equity curve. PnLDecision and PnLExecution
// are cumulative; the trade counts and costs are per-date diagnostics.
type PnLPoint struct {
	Date            time.Time `json:"date"`
	PnLDecision     float64   `json:"pnl_decision"`
	PnLExecution    float64   `json:"pnl_execution"`
	ContractsTraded float64   `json:"n_contracts_traded"`
	OptionsTraded   float64   `json:"n_options_traded"`
	Costs           float64   `json:"costs"`
}

// PnLSeries walks consecutive snapshot pairs and accumulates two equity
// curves, one marked at decision prices and one at execution prices.
//
// PnL accrues on the quantity held over from the previous date, never on
// the same-day fill, which keeps the curve free of look-ahead bias. A
// holding that disappears from a snapshot is re-priced at the later date
// and written back as a zero-quantity record so later reads do not hit
// the pricing source again.
func (l *Ledger) PnLSeries() ([]PnLPoint, error) {
	out := make([]PnLPoint, 0, len(l.dates))
	var cumDec, cumExe float64
	prev := NewPosition()
	for _, d := range l.dates {
		curr := l.byDate[d]
		pt, err := l.datePnL(d, prev, curr)
		if err != nil {
			return nil, err
		}
		cumDec += pt.PnLDecision
		cumExe += pt.PnLExecution
		pt.PnLDecision = cumDec
		pt.PnLExecution = cumExe
		out = append(out, pt)
		prev = curr
	}
	return out, nil
}

// datePnL computes the per-date PnL delta between two snapshots over the
// union of their assets.
func (l *Ledger) datePnL(date time.Time, prev, curr *Position) (PnLPoint, error) {
	pt := PnLPoint{Date: date}

	countTrade := func(asset model.AssetRef, qtyDelta float64) {
		if qtyDelta == 0 {
			return
		}
		if asset.Kind.IsOption() {
			pt.OptionsTraded += math.Abs(qtyDelta)
		} else {
			pt.ContractsTraded += math.Abs(qtyDelta)
		}
	}

	for _, t := range curr.Tickers() {
		cr, _ := curr.Get(t)
		pr, held := prev.Get(t)
		if !held {
			// Opened today: cost only, no price-delta component.
			cost := l.costs.Cost(cr.Asset, cr.Qty)
			pt.PnLDecision += cost
			pt.PnLExecution += cost
			pt.Costs += cost
			countTrade(cr.Asset, cr.Qty)
			continue
		}
		transQty := cr.Qty - pr.Qty
		var cost float64
		if transQty != 0 {
			cost = l.costs.Cost(cr.Asset, transQty)
		}
		pt.PnLDecision += cr.Asset.DollarPnL(pr.DecisionPx, cr.DecisionPx, pr.Qty) + cost
		pt.PnLExecution += cr.Asset.DollarPnL(pr.ExecutionPx, cr.ExecutionPx, pr.Qty) + cost
		pt.Costs += cost
		countTrade(cr.Asset, transQty)
	}

	// Assets that vanished from the snapshot: treat as closed today.
	for _, t := range prev.Tickers() {
		if _, ok := curr.Get(t); ok {
			continue
		}
		pr, _ := prev.Get(t)
		if pr.Qty == 0 {
			continue
		}
		dpx, epx, err := l.pricing.Price(pr.Asset, date)
		switch {
		case err == nil:
			// ok
		case isExpired(err):
			l.log.Warn().Time("date", date).Str("asset", pr.Asset.Ticker).
				Msg("pnl: asset expired with open quantity, closing at last known price")
			dpx, epx = pr.DecisionPx, pr.ExecutionPx
		default:
			return PnLPoint{}, fmt.Errorf("price %s at %s: %w", pr.Asset.Ticker, date.Format("2006-01-02"), err)
		}
		cost := l.costs.Cost(pr.Asset, -pr.Qty)
		pt.PnLDecision += pr.Asset.DollarPnL(pr.DecisionPx, dpx, pr.Qty) + cost
		pt.PnLExecution += pr.Asset.DollarPnL(pr.ExecutionPx, epx, pr.Qty) + cost
		pt.Costs += cost
		countTrade(pr.Asset, -pr.Qty)
		// Retain a closed record at the new marks (quantity zero) so the
		// next read does not re-price.
		curr.Set(model.PositionRecord{Asset: pr.Asset, DecisionPx: dpx, ExecutionPx: epx, Qty: 0})
	}
	return pt, nil
}
