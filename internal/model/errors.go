package model

import "errors"

// Error taxonomy.
//
// Invalid-argument errors signal caller misuse and are never retried.
// The not-found family are expected domain conditions; only these four are
// ever handled internally (soft failures). Everything else propagates to
// the top-level run driver and aborts the backtest.
var (
	// ErrInvalidArgument covers bad date ordering, zero transaction
	// quantities, malformed records and invalid calendar strides.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrPositionNotFound: no holdings recorded at the requested date.
	ErrPositionNotFound = errors.New("position not found")

	// ErrAssetExpired: the instrument no longer trades on the requested date.
	ErrAssetExpired = errors.New("asset expired")

	// ErrQuoteNotFound: no quote for the (asset, date) pair.
	ErrQuoteNotFound = errors.New("quote not found")

	// ErrChainNotFound: the option chain search found no usable contract.
	ErrChainNotFound = errors.New("option chain not found")

	// ErrReadOnly is returned by every mutating call on a shifted
	// read-only ledger view. Always API misuse.
	ErrReadOnly = errors.New("ledger view is read-only")

	// ErrUnknownStrategy: a persisted run names a strategy that was never
	// registered in this build.
	ErrUnknownStrategy = errors.New("unknown strategy")
)

// IsSoft reports whether err is one of the recoverable domain conditions
// that the replay loop may swallow per-day.
func IsSoft(err error) bool {
	return errors.Is(err, ErrChainNotFound) || errors.Is(err, ErrQuoteNotFound)
}
