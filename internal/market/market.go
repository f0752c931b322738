package market

import (
	"time"

	"futures-backtest/internal/model"
)

// Pricing is the quote capability the ledger consumes. Implementations
// are expected to be backed by an external data engine; the in-repo
// Static implementation serves demos and tests.
type Pricing interface {
	// Price returns the (decision, execution) marks for asset on date.
	// Fails with model.ErrAssetExpired once the instrument stops trading
	// and model.ErrQuoteNotFound for holes in the series.
	Price(asset model.AssetRef, date time.Time) (decision, execution float64, err error)

	// Delta returns the per-contract price sensitivity on date.
	// Futures and stock are 1.0 by convention.
	Delta(asset model.AssetRef, date time.Time) float64

	// DaysToExpiration returns calendar days until the instrument expires.
	DaysToExpiration(asset model.AssetRef, date time.Time) int
}

// CostModel prices a signed quantity change. Sign convention: costs are
// fees, so returned values are <= 0.
type CostModel interface {
	Cost(asset model.AssetRef, qtyDelta float64) float64
}
