// Package ledger implements the transactional position store at the core
// of the backtester. A Ledger maps dates to per-asset holdings, in strict
// date order, and derives transaction costs and PnL from consecutive
// snapshots. It is single-threaded: one Ledger per strategy run, no
// internal locking.
package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"futures-backtest/internal/market"
	"futures-backtest/internal/model"
)

// RolloverDays holds the per-kind days-to-expiration thresholds below
// which a holding counts as almost expired.
type RolloverDays struct {
	Future int
	Option int
}

// Ledger is an ordered map date -> holdings. Dates only grow at the end
// through the additive operations; SetNetPosition is the one privileged
// exception and is documented as unsafe.
type Ledger struct {
	pricing  market.Pricing
	costs    market.CostModel
	rollover RolloverDays
	log      zerolog.Logger

	dates  []time.Time
	byDate map[time.Time]*Position
}

// New returns an empty ledger bound to its pricing and cost collaborators.
func New(pricing market.Pricing, costs market.CostModel, rollover RolloverDays, log zerolog.Logger) *Ledger {
	return &Ledger{
		pricing:  pricing,
		costs:    costs,
		rollover: rollover,
		log:      log.With().Str("component", "ledger").Logger(),
		byDate:   map[time.Time]*Position{},
	}
}

// Dates returns the recorded dates in ascending order.
func (l *Ledger) Dates() []time.Time {
	out := make([]time.Time, len(l.dates))
	copy(out, l.dates)
	return out
}

// LastDate returns the most recent recorded date, or false if empty.
func (l *Ledger) LastDate() (time.Time, bool) {
	if len(l.dates) == 0 {
		return time.Time{}, false
	}
	return l.dates[len(l.dates)-1], true
}

// snapshotAt returns the holdings at exactly date.
func (l *Ledger) snapshotAt(date time.Time) (*Position, bool) {
	p, ok := l.byDate[model.Day(date)]
	return p, ok
}

// ensureDate returns the snapshot at date, creating it if absent.
// Creation is append-only: a new date before the last recorded one is
// caller misuse.
func (l *Ledger) ensureDate(date time.Time) (*Position, error) {
	d := model.Day(date)
	if p, ok := l.byDate[d]; ok {
		return p, nil
	}
	if last, ok := l.LastDate(); ok && d.Before(last) {
		return nil, fmt.Errorf("%w: date %s precedes last recorded date %s",
			model.ErrInvalidArgument, d.Format("2006-01-02"), last.Format("2006-01-02"))
	}
	p := NewPosition()
	l.byDate[d] = p
	l.dates = append(l.dates, d)
	return p, nil
}

// SetNetPosition replaces the entire holdings snapshot at date.
//
// UNSAFE: this bypasses the append-only date invariant and the price
// continuity assertion. It exists only to seed ledgers from externally
// computed quote/position pairs (index construction). Inserting at an
// earlier date re-sorts the date axis.
func (l *Ledger) SetNetPosition(date time.Time, records []model.PositionRecord) {
	d := model.Day(date)
	if _, ok := l.byDate[d]; !ok {
		// Insert in ascending order.
		i := 0
		for ; i < len(l.dates) && l.dates[i].Before(d); i++ {
		}
		l.dates = append(l.dates, time.Time{})
		copy(l.dates[i+1:], l.dates[i:])
		l.dates[i] = d
	}
	p := NewPosition()
	for _, r := range records {
		p.Set(r)
	}
	l.byDate[d] = p
}

// AddTransaction books a quantity change for one asset at date, pricing
// it freshly. A repeated transaction on the same (date, asset) pair
// accumulates quantity at the prices captured by the first call.
func (l *Ledger) AddTransaction(date time.Time, asset model.AssetRef, qtyDelta float64) error {
	if qtyDelta == 0 {
		return fmt.Errorf("%w: zero transaction quantity for %s", model.ErrInvalidArgument, asset.Ticker)
	}
	d := model.Day(date)
	if last, ok := l.LastDate(); ok && d.Before(last) {
		return fmt.Errorf("%w: transaction date %s precedes last recorded date %s",
			model.ErrInvalidArgument, d.Format("2006-01-02"), last.Format("2006-01-02"))
	}
	dpx, epx, err := l.pricing.Price(asset, d)
	if err != nil {
		return fmt.Errorf("price %s at %s: %w", asset.Ticker, d.Format("2006-01-02"), err)
	}
	p, err := l.ensureDate(d)
	if err != nil {
		return err
	}
	if cur, ok := p.Get(asset.Ticker); ok {
		assertSamePrice(d, asset.Ticker, cur.DecisionPx, cur.ExecutionPx, dpx, epx)
		cur.Qty += qtyDelta
		p.Set(cur)
		return nil
	}
	p.Set(model.PositionRecord{Asset: asset, DecisionPx: dpx, ExecutionPx: epx, Qty: qtyDelta})
	return nil
}

// AddNetPosition books records scaled by qtyMultiplier at date. The
// caller's record quantities are templates for the delta; prices are
// always fetched fresh. With a zero multiplier the date key is still
// created so downstream PnL series stay date-continuous.
func (l *Ledger) AddNetPosition(date time.Time, records []model.PositionRecord, qtyMultiplier float64) error {
	d := model.Day(date)
	if last, ok := l.LastDate(); ok && d.Before(last) {
		return fmt.Errorf("%w: date %s precedes last recorded date %s",
			model.ErrInvalidArgument, d.Format("2006-01-02"), last.Format("2006-01-02"))
	}
	p, err := l.ensureDate(d)
	if err != nil {
		return err
	}
	if qtyMultiplier == 0 {
		return nil
	}
	for _, r := range records {
		dpx, epx, err := l.pricing.Price(r.Asset, d)
		if err != nil {
			return fmt.Errorf("price %s at %s: %w", r.Asset.Ticker, d.Format("2006-01-02"), err)
		}
		qty := r.Qty * qtyMultiplier
		if cur, ok := p.Get(r.Asset.Ticker); ok {
			assertSamePrice(d, r.Asset.Ticker, cur.DecisionPx, cur.ExecutionPx, dpx, epx)
			qty += cur.Qty
		}
		p.Set(model.PositionRecord{Asset: r.Asset, DecisionPx: dpx, ExecutionPx: epx, Qty: qty})
	}
	return nil
}

// Close zeroes every quantity recorded at date, preserving prices so the
// assets never need re-pricing. The date key is created if absent.
func (l *Ledger) Close(date time.Time) error {
	p, err := l.ensureDate(date)
	if err != nil {
		return err
	}
	for _, r := range p.Records() {
		r.Qty = 0
		p.Set(r)
	}
	return nil
}

// KeepPreviousPosition carries the most recent prior date's non-zero
// holdings forward to date at fresh prices. An expired asset is carried
// at its last known price with zero quantity (implicit close) rather
// than failing the whole call. With no prior position this is a warning
// no-op: it is the documented seeding path for a strategy's first day.
func (l *Ledger) KeepPreviousPosition(date time.Time) error {
	d := model.Day(date)
	prev, ok := l.lastSnapshotBefore(d)
	if !ok {
		l.log.Warn().Time("date", d).Msg("keep previous position: no prior position, nothing to carry")
		return nil
	}
	p, err := l.ensureDate(d)
	if err != nil {
		return err
	}
	for _, r := range prev.Records() {
		if r.Qty == 0 {
			continue
		}
		dpx, epx, err := l.pricing.Price(r.Asset, d)
		switch {
		case err == nil:
			p.Set(model.PositionRecord{Asset: r.Asset, DecisionPx: dpx, ExecutionPx: epx, Qty: r.Qty})
		case isExpired(err):
			l.log.Warn().Time("date", d).Str("asset", r.Asset.Ticker).
				Msg("keep previous position: asset expired, closing at last known price")
			p.Set(model.PositionRecord{Asset: r.Asset, DecisionPx: r.DecisionPx, ExecutionPx: r.ExecutionPx, Qty: 0})
		default:
			return fmt.Errorf("price %s at %s: %w", r.Asset.Ticker, d.Format("2006-01-02"), err)
		}
	}
	return nil
}

// GetNetPosition returns the holdings at exactly date. No interpolation.
func (l *Ledger) GetNetPosition(date time.Time) (*Position, error) {
	p, ok := l.snapshotAt(date)
	if !ok {
		return nil, fmt.Errorf("%w: no holdings at %s", model.ErrPositionNotFound, model.Day(date).Format("2006-01-02"))
	}
	return p, nil
}

// HasPosition reports whether date has a snapshot with any net quantity.
func (l *Ledger) HasPosition(date time.Time) bool {
	p, ok := l.snapshotAt(date)
	return ok && p.GrossQty() != 0
}

// AlmostExpiredRatio returns the fraction of non-zero holdings at date
// whose days to expiration fall at or below the rollover threshold for
// their kind. A nil override uses the ledger's configured thresholds.
// Returns 0 when there is no position.
func (l *Ledger) AlmostExpiredRatio(date time.Time, override *RolloverDays) float64 {
	thresholds := l.rollover
	if override != nil {
		thresholds = *override
	}
	p, ok := l.snapshotAt(date)
	if !ok {
		return 0
	}
	var held, near int
	for _, r := range p.Records() {
		if r.Qty == 0 {
			continue
		}
		held++
		limit := thresholds.Future
		if r.Asset.Kind.IsOption() {
			limit = thresholds.Option
		}
		if l.pricing.DaysToExpiration(r.Asset, date) <= limit {
			near++
		}
	}
	if held == 0 {
		return 0
	}
	return float64(near) / float64(held)
}

// Delta sums per-asset delta times quantity over the holdings at date.
func (l *Ledger) Delta(date time.Time) float64 {
	p, ok := l.snapshotAt(date)
	if !ok {
		return 0
	}
	var sum float64
	for _, r := range p.Records() {
		if r.Qty == 0 {
			continue
		}
		sum += l.pricing.Delta(r.Asset, date) * r.Qty
	}
	return sum
}

// LastTransactionDate scans backward from the last recorded date at or
// before date and returns the most recent date whose holdings differ in
// quantity from the preceding snapshot. With fewer than two snapshots in
// range it returns the zero time sentinel.
func (l *Ledger) LastTransactionDate(date time.Time) time.Time {
	d := model.Day(date)
	end := -1
	for i := len(l.dates) - 1; i >= 0; i-- {
		if !l.dates[i].After(d) {
			end = i
			break
		}
	}
	for i := end; i >= 1; i-- {
		if quantitiesDiffer(l.byDate[l.dates[i-1]], l.byDate[l.dates[i]]) {
			return l.dates[i]
		}
	}
	return time.Time{}
}

// quantitiesDiffer reports whether any asset in the union of two
// snapshots changed net quantity between them.
func quantitiesDiffer(prev, curr *Position) bool {
	seen := map[string]bool{}
	for _, t := range prev.Tickers() {
		seen[t] = true
		pr, _ := prev.Get(t)
		cr, _ := curr.Get(t)
		if pr.Qty != cr.Qty {
			return true
		}
	}
	for _, t := range curr.Tickers() {
		if seen[t] {
			continue
		}
		if cr, _ := curr.Get(t); cr.Qty != 0 {
			return true
		}
	}
	return false
}

func (l *Ledger) lastSnapshotBefore(d time.Time) (*Position, bool) {
	for i := len(l.dates) - 1; i >= 0; i-- {
		if l.dates[i].Before(d) {
			return l.byDate[l.dates[i]], true
		}
	}
	return nil, false
}

// assertSamePrice enforces price immutability within one (date, asset)
// pair. A mismatch means the pricing collaborator returned different
// marks for the same lookup, which is corruption, not a runtime
// condition; it must not be caught.
func assertSamePrice(date time.Time, ticker string, dpx0, epx0, dpx1, epx1 float64) {
	if dpx0 != dpx1 || epx0 != epx1 {
		panic(fmt.Sprintf("ledger: price mismatch for %s at %s: (%v, %v) vs (%v, %v)",
			ticker, date.Format("2006-01-02"), dpx0, epx0, dpx1, epx1))
	}
}

func isExpired(err error) bool {
	return errors.Is(err, model.ErrAssetExpired)
}
