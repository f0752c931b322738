package ledger

import "futures-backtest/internal/model"

// Position is one date's holdings. Records are keyed by ticker and keep
// their insertion order, so serialization and PnL iteration are
// deterministic across runs.
type Position struct {
	order []string
	recs  map[string]model.PositionRecord
}

// NewPosition returns an empty holdings snapshot.
func NewPosition() *Position {
	return &Position{recs: map[string]model.PositionRecord{}}
}

// Set inserts or replaces the record for rec's asset.
func (p *Position) Set(rec model.PositionRecord) {
	t := rec.Asset.Ticker
	if _, ok := p.recs[t]; !ok {
		p.order = append(p.order, t)
	}
	p.recs[t] = rec
}

// Get returns the record for ticker, if present.
func (p *Position) Get(ticker string) (model.PositionRecord, bool) {
	r, ok := p.recs[ticker]
	return r, ok
}

// Records returns all records in insertion order.
func (p *Position) Records() []model.PositionRecord {
	out := make([]model.PositionRecord, 0, len(p.order))
	for _, t := range p.order {
		out = append(out, p.recs[t])
	}
	return out
}

// Tickers returns the asset tickers in insertion order.
func (p *Position) Tickers() []string {
	out := make([]string, len(p.order))
	copy(out, p.order)
	return out
}

// Len returns the number of records, including zero-quantity ones.
func (p *Position) Len() int { return len(p.order) }

// GrossQty sums absolute quantities across all records.
func (p *Position) GrossQty() float64 {
	var sum float64
	for _, r := range p.recs {
		if r.Qty < 0 {
			sum -= r.Qty
		} else {
			sum += r.Qty
		}
	}
	return sum
}

// Clone returns a deep copy of the snapshot.
func (p *Position) Clone() *Position {
	out := NewPosition()
	for _, t := range p.order {
		out.Set(p.recs[t])
	}
	return out
}
