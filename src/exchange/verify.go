package exchange

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

// verifyAssetAuthority re-confirms, immediately before the transfer legs
// run, that owner still holds the asset and still grants the engine the
// authority to move it. The offer record is a claim, not a lock: ownership
// and approvals drift freely between offer creation and settlement, so this
// check is mandatory even though an equivalent one ran at creation time.
func (e *Engine) verifyAssetAuthority(ctx context.Context, standard AssetStandard, collection, owner common.Address, tokenID *big.Int, units uint64) error {
	switch standard {
	case StandardNonFungible:
		current, err := e.assets.OwnerOf(ctx, collection, tokenID)
		if err != nil {
			return errors.Wrap(err, "failed on query token owner")
		}
		if current != owner {
			return errors.Wrapf(ErrNotAuthorized, "%s no longer owns token %s of %s",
				owner.Hex(), tokenID, collection.Hex())
		}

		approved, err := e.assets.IsApproved(ctx, collection, tokenID, e.operator)
		if err != nil {
			return errors.Wrap(err, "failed on query token approval")
		}
		if approved {
			return nil
		}
		blanket, err := e.assets.IsApprovedForAll(ctx, collection, owner, e.operator)
		if err != nil {
			return errors.Wrap(err, "failed on query blanket approval")
		}
		if !blanket {
			return errors.Wrapf(ErrNotAuthorized, "engine lacks approval for token %s of %s",
				tokenID, collection.Hex())
		}
		return nil

	case StandardSemiFungible:
		balance, err := e.assets.BalanceOf(ctx, collection, owner, tokenID)
		if err != nil {
			return errors.Wrap(err, "failed on query token balance")
		}
		if balance.Cmp(new(big.Int).SetUint64(units)) < 0 {
			return errors.Wrapf(ErrNotAuthorized, "%s holds %s of token %s, offer needs %d",
				owner.Hex(), balance, tokenID, units)
		}
		blanket, err := e.assets.IsApprovedForAll(ctx, collection, owner, e.operator)
		if err != nil {
			return errors.Wrap(err, "failed on query blanket approval")
		}
		if !blanket {
			return errors.Wrapf(ErrNotAuthorized, "engine lacks blanket approval from %s on %s",
				owner.Hex(), collection.Hex())
		}
		return nil

	default:
		return errors.Wrapf(ErrInvalidOffer, "unsupported asset standard %d", standard)
	}
}

// verifyAllowance re-confirms the payer still grants the engine an allowance
// covering the full payment amount.
func (e *Engine) verifyAllowance(ctx context.Context, currency, payer common.Address, amount *big.Int) error {
	allowance, err := e.values.Allowance(ctx, currency, payer, e.operator)
	if err != nil {
		return errors.Wrap(err, "failed on query allowance")
	}
	if allowance.Cmp(amount) < 0 {
		return errors.Wrapf(ErrInsufficientFunds, "allowance %s below payment %s", allowance, amount)
	}
	return nil
}

// verifyNativeBalance confirms the buyer can actually attach the value they
// claim to attach.
func (e *Engine) verifyNativeBalance(ctx context.Context, payer common.Address, amount *big.Int) error {
	balance, err := e.native.BalanceOf(ctx, payer)
	if err != nil {
		return errors.Wrap(err, "failed on query native balance")
	}
	if balance.Cmp(amount) < 0 {
		return errors.Wrapf(ErrInsufficientFunds, "native balance %s below attached value %s", balance, amount)
	}
	return nil
}
