package exchange

import "github.com/pkg/errors"

// Sentinel error kinds surfaced by the engine. Callers classify failures
// with errors.Is; the wrapped message carries the offending offer/leg.
var (
	// ErrInvalidOffer covers malformed offer parameters: zero units, bad
	// currency or collection, an unknown asset standard, or an amount that
	// is not a positive integer.
	ErrInvalidOffer = errors.New("invalid offer")

	// ErrNotAuthorized is returned when the party giving up the asset is no
	// longer its owner, or the transfer approval required by the engine is
	// absent at the moment of settlement.
	ErrNotAuthorized = errors.New("not authorized")

	// ErrInsufficientFunds is returned when an allowance, balance or
	// attached value does not cover the amount to be moved.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrOfferNotFound is returned for an id outside the counter of the
	// referenced offer kind, or an offer already in a terminal state.
	ErrOfferNotFound = errors.New("offer not found")

	// ErrPricingInconsistency is returned when commission plus the royalty
	// reported by the oracle exceeds the trade amount.
	ErrPricingInconsistency = errors.New("pricing inconsistency")

	// ErrExpired is returned when settlement is attempted past the offer's
	// expiry timestamp.
	ErrExpired = errors.New("offer expired")

	// ErrReentrantCall is returned when a settlement is invoked from within
	// another settlement's transfer leg, e.g. by a token transfer hook.
	ErrReentrantCall = errors.New("reentrant call")
)
