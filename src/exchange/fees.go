package exchange

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

// BasisPointsDenominator is the denominator of the commission rate: a rate
// of 250 takes 2.5% of the trade amount.
const BasisPointsDenominator = 10000

// feeAmount computes floor(amount * rateBps / 10000).
func feeAmount(amount *big.Int, rateBps uint64) *big.Int {
	fee := new(big.Int).Mul(amount, new(big.Int).SetUint64(rateBps))
	return fee.Div(fee, big.NewInt(BasisPointsDenominator))
}

// CalculateFee returns the protocol commission retained on a trade of the
// given amount under the configured rate.
func (e *Engine) CalculateFee(amount *big.Int) (*big.Int, error) {
	if amount == nil || amount.Sign() < 0 {
		return nil, errors.Wrap(ErrInvalidOffer, "fee amount must be a non-negative integer")
	}
	return feeAmount(amount, e.commissionBps), nil
}

// quoteRoyalty asks the oracle for the royalty carve-out on a trade, if the
// collection declares royalty support. The returned royalty together with
// the already-computed commission must fit inside the trade amount; an
// oracle reporting more is a pricing inconsistency and poisons the whole
// settlement rather than underflowing the seller's proceeds.
func (e *Engine) quoteRoyalty(ctx context.Context, collection common.Address, tokenID, amount, commission *big.Int) (common.Address, *big.Int, error) {
	supported, err := e.royalties.SupportsRoyalty(ctx, collection)
	if err != nil {
		return common.Address{}, nil, errors.Wrap(err, "failed on probe royalty support")
	}
	if !supported {
		return common.Address{}, new(big.Int), nil
	}

	receiver, royalty, err := e.royalties.RoyaltyInfo(ctx, collection, tokenID, amount)
	if err != nil {
		return common.Address{}, nil, errors.Wrap(err, "failed on query royalty info")
	}
	if royalty == nil || royalty.Sign() < 0 {
		return common.Address{}, nil, errors.Wrapf(ErrPricingInconsistency,
			"oracle returned malformed royalty for collection %s", collection.Hex())
	}

	carved := new(big.Int).Add(commission, royalty)
	if carved.Cmp(amount) > 0 {
		return common.Address{}, nil, errors.Wrapf(ErrPricingInconsistency,
			"commission %s + royalty %s exceeds trade amount %s", commission, royalty, amount)
	}
	return receiver, royalty, nil
}
