package ledger

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"futures-backtest/internal/market"
	"futures-backtest/internal/model"
)

const dateLayout = "2006-01-02"

// SnapshotDoc is the serialized form of a ledger: the date axis plus
// per-date records, both in ledger order.
type SnapshotDoc struct {
	Dates []DateDoc `json:"dates"`
}

// DateDoc is one date's records in insertion order.
type DateDoc struct {
	Date    string                 `json:"date"`
	Records []model.PositionRecord `json:"records"`
}

// Export serializes the ledger's ordered state. Prices and quantities
// round-trip through JSON float64s; bit-exactness is not a requirement.
func (l *Ledger) Export() SnapshotDoc {
	doc := SnapshotDoc{Dates: make([]DateDoc, 0, len(l.dates))}
	for _, d := range l.dates {
		doc.Dates = append(doc.Dates, DateDoc{
			Date:    d.Format(dateLayout),
			Records: l.byDate[d].Records(),
		})
	}
	return doc
}

// Restore rebuilds a ledger from its serialized form, rebinding it to
// live pricing and cost collaborators.
func Restore(doc SnapshotDoc, pricing market.Pricing, costs market.CostModel, rollover RolloverDays, log zerolog.Logger) (*Ledger, error) {
	l := New(pricing, costs, rollover, log)
	var last time.Time
	for i, dd := range doc.Dates {
		d, err := time.ParseInLocation(dateLayout, dd.Date, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("ledger snapshot date %q: %w", dd.Date, err)
		}
		if i > 0 && !d.After(last) {
			return nil, fmt.Errorf("%w: ledger snapshot dates out of order at %s", model.ErrInvalidArgument, dd.Date)
		}
		last = d
		p := NewPosition()
		for _, r := range dd.Records {
			p.Set(r)
		}
		l.dates = append(l.dates, d)
		l.byDate[d] = p
	}
	return l, nil
}
