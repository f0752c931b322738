package market

import (
	"math"
	"sort"
	"time"

	"futures-backtest/internal/model"
)

// Quote is one day's marks for one instrument.
type Quote struct {
	Date       time.Time `json:"date"`
	DecisionPx float64   `json:"decision_px"`
	ExecPx     float64   `json:"execution_px"`
	Delta      float64   `json:"delta,omitempty"`
}

// Series is the per-instrument quote history.
type Series struct {
	Asset      model.AssetRef `json:"asset"`
	Expiration time.Time      `json:"expiration,omitempty"` // zero = never expires
	Quotes     []Quote        `json:"quotes"`
}

// Static is an in-memory Pricing backed by preloaded quote tables.
// It is read-only after construction and therefore safe to share.
type Static struct {
	byTicker map[string]*staticSeries
	days     []time.Time
}

type staticSeries struct {
	expiration time.Time
	byDate     map[time.Time]Quote
}

// NewStatic indexes the given series by ticker and date.
func NewStatic(series []Series) *Static {
	s := &Static{byTicker: make(map[string]*staticSeries, len(series))}
	seen := map[time.Time]bool{}
	for _, sr := range series {
		ss := &staticSeries{
			expiration: sr.Expiration,
			byDate:     make(map[time.Time]Quote, len(sr.Quotes)),
		}
		for _, q := range sr.Quotes {
			d := model.Day(q.Date)
			ss.byDate[d] = q
			if !seen[d] {
				seen[d] = true
				s.days = append(s.days, d)
			}
		}
		s.byTicker[sr.Asset.Ticker] = ss
	}
	sort.Slice(s.days, func(i, j int) bool { return s.days[i].Before(s.days[j]) })
	return s
}

// Days returns the sorted union of all quote dates.
func (s *Static) Days() []time.Time { return s.days }

// Range returns the inclusive span of available quote dates.
func (s *Static) Range() model.DateRange {
	if len(s.days) == 0 {
		return model.DateRange{}
	}
	return model.DateRange{First: s.days[0], Last: s.days[len(s.days)-1]}
}

func (s *Static) Price(asset model.AssetRef, date time.Time) (float64, float64, error) {
	d := model.Day(date)
	ss, ok := s.byTicker[asset.Ticker]
	if !ok {
		return 0, 0, model.ErrQuoteNotFound
	}
	if !ss.expiration.IsZero() && d.After(ss.expiration) {
		return 0, 0, model.ErrAssetExpired
	}
	q, ok := ss.byDate[d]
	if !ok {
		return 0, 0, model.ErrQuoteNotFound
	}
	return q.DecisionPx, q.ExecPx, nil
}

func (s *Static) Delta(asset model.AssetRef, date time.Time) float64 {
	ss, ok := s.byTicker[asset.Ticker]
	if !ok {
		return 0
	}
	if q, ok := ss.byDate[model.Day(date)]; ok {
		if q.Delta != 0 {
			return q.Delta
		}
	}
	// Linear instruments default to unit delta.
	if !asset.Kind.IsOption() {
		return 1
	}
	return 0
}

func (s *Static) DaysToExpiration(asset model.AssetRef, date time.Time) int {
	ss, ok := s.byTicker[asset.Ticker]
	if !ok || ss.expiration.IsZero() {
		return math.MaxInt32
	}
	return int(ss.expiration.Sub(model.Day(date)).Hours() / 24)
}

// FixedFee charges a flat fee per contract traded, scaled by the absolute
// quantity change. Fees are negative dollars.
type FixedFee struct {
	PerContract float64
}

func (f FixedFee) Cost(asset model.AssetRef, qtyDelta float64) float64 {
	return -math.Abs(f.PerContract * qtyDelta)
}
