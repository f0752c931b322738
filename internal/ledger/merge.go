package ledger

import (
	"fmt"
	"sort"
	"time"
)

// Merge combines several ledgers into one by summing per-asset quantities
// at each date. The result borrows the first input's collaborators.
//
// Inputs must be priced consistently: if two ledgers both record an asset
// on a date, their decision and execution marks must be identical. A
// mismatch panics: merging inconsistently priced ledgers is a bug in the
// caller, not a runtime condition. Dates missing from some inputs are
// skipped for those inputs.
func Merge(ledgers []*Ledger) *Ledger {
	if len(ledgers) == 0 {
		panic("ledger: merge of zero ledgers")
	}
	out := New(ledgers[0].pricing, ledgers[0].costs, ledgers[0].rollover, ledgers[0].log)

	all := map[time.Time]bool{}
	for _, l := range ledgers {
		for _, d := range l.dates {
			all[d] = true
		}
	}
	dates := make([]time.Time, 0, len(all))
	for d := range all {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	for _, d := range dates {
		merged := NewPosition()
		for _, l := range ledgers {
			p, ok := l.byDate[d]
			if !ok {
				continue
			}
			for _, r := range p.Records() {
				cur, ok := merged.Get(r.Asset.Ticker)
				if !ok {
					merged.Set(r)
					continue
				}
				if cur.DecisionPx != r.DecisionPx || cur.ExecutionPx != r.ExecutionPx {
					panic(fmt.Sprintf("ledger: merge price mismatch for %s at %s: (%v, %v) vs (%v, %v)",
						r.Asset.Ticker, d.Format("2006-01-02"),
						cur.DecisionPx, cur.ExecutionPx, r.DecisionPx, r.ExecutionPx))
				}
				cur.Qty += r.Qty
				merged.Set(cur)
			}
		}
		out.dates = append(out.dates, d)
		out.byDate[d] = merged
	}
	return out
}
