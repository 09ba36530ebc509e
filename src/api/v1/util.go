package v1

import (
	"github.com/pkg/errors"

	"github.com/ProjectsTask/EasySwapExchange/src/common/errcode"
	"github.com/ProjectsTask/EasySwapExchange/src/exchange"
)

// toAPIError maps engine error kinds to stable API codes. Anything
// unclassified is surfaced verbatim under the custom code so callers can
// always distinguish a rejected operation from a successful one.
func toAPIError(err error) error {
	switch {
	case errors.Is(err, exchange.ErrOfferNotFound):
		return errcode.ErrOfferNotFound
	case errors.Is(err, exchange.ErrNotAuthorized):
		return errcode.ErrNotAuthorized
	case errors.Is(err, exchange.ErrInsufficientFunds):
		return errcode.ErrInsufficientFunds
	case errors.Is(err, exchange.ErrPricingInconsistency):
		return errcode.ErrPricingInconsistent
	case errors.Is(err, exchange.ErrExpired):
		return errcode.ErrOfferExpired
	case errors.Is(err, exchange.ErrReentrantCall):
		return errcode.ErrReentrantCall
	case errors.Is(err, exchange.ErrInvalidOffer):
		return errcode.ErrInvalidParams
	default:
		return errcode.NewCustomErr(err.Error())
	}
}
