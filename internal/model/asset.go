package model

// AssetKind tags the instrument type of an AssetRef.
// Keep these values stable; they appear in persisted snapshots.
type AssetKind string

const (
	KindFuture AssetKind = "FUTURE"
	KindCall   AssetKind = "CALL"
	KindPut    AssetKind = "PUT"
	KindStock  AssetKind = "STOCK"
)

// IsOption reports whether the kind is an option leg.
func (k AssetKind) IsOption() bool {
	return k == KindCall || k == KindPut
}

// AssetRef identifies one tradable instrument.
//
// Identity is the canonical ticker string alone: two refs with the same
// Ticker refer to the same instrument, and position maps are keyed by
// Ticker. Kind and PointValue are descriptive metadata carried along so
// that PnL and trade-count aggregation do not need a side lookup.
type AssetRef struct {
	Ticker     string    `json:"ticker"`
	Kind       AssetKind `json:"kind"`
	PointValue float64   `json:"point_value"`
}

// DollarPnL converts a price move on a held quantity into dollars.
func (a AssetRef) DollarPnL(p0, p1, qty float64) float64 {
	return (p1 - p0) * qty * a.PointValue
}

// PositionRecord is one asset's holding on one date.
//
// DecisionPx and ExecutionPx are fixed once written for a (date, asset)
// pair; only Qty accumulates across transactions on the same date.
type PositionRecord struct {
	Asset       AssetRef `json:"asset"`
	DecisionPx  float64  `json:"decision_px"`
	ExecutionPx float64  `json:"execution_px"`
	Qty         float64  `json:"qty"`
}

// ParamSet is one point in a strategy's parameter space.
type ParamSet map[string]float64

// Clone returns an independent copy of the parameter set.
func (p ParamSet) Clone() ParamSet {
	out := make(ParamSet, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}
