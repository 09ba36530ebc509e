package exchange

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// AssetRegistry fronts the ownership and approval state of token
// collections, both non-fungible and semi-fungible. Transfer must fail if
// the authorization observed by the verifier no longer holds.
type AssetRegistry interface {
	// OwnerOf returns the current owner of a non-fungible token.
	OwnerOf(ctx context.Context, collection common.Address, tokenID *big.Int) (common.Address, error)
	// BalanceOf returns owner's balance of a semi-fungible token type.
	BalanceOf(ctx context.Context, collection, owner common.Address, tokenID *big.Int) (*big.Int, error)
	// IsApproved reports whether operator holds the single-token approval.
	IsApproved(ctx context.Context, collection common.Address, tokenID *big.Int, operator common.Address) (bool, error)
	// IsApprovedForAll reports whether owner granted operator a blanket approval.
	IsApprovedForAll(ctx context.Context, collection, owner, operator common.Address) (bool, error)
	// Transfer moves units of tokenID from from to to.
	Transfer(ctx context.Context, collection, from, to common.Address, tokenID *big.Int, units uint64) error
}

// ValueTransfer fronts allowance-based fungible currency movements.
type ValueTransfer interface {
	// Allowance returns the amount owner allows spender to move.
	Allowance(ctx context.Context, currency, owner, spender common.Address) (*big.Int, error)
	// TransferFrom moves amount of currency from from to to, drawing on the
	// allowance granted to the engine. Fails on insufficient allowance or
	// balance.
	TransferFrom(ctx context.Context, currency, from, to common.Address, amount *big.Int) error
}

// NativeValue fronts direct transfers of the chain's native unit of value.
// Native payments are attached to the settlement call rather than drawn
// from an allowance, so there is no approval surface here.
type NativeValue interface {
	BalanceOf(ctx context.Context, account common.Address) (*big.Int, error)
	Transfer(ctx context.Context, from, to common.Address, amount *big.Int) error
}

// RoyaltyOracle reports the per-asset royalty carve-out declared by a
// collection. RoyaltyInfo is only consulted when SupportsRoyalty is true.
type RoyaltyOracle interface {
	SupportsRoyalty(ctx context.Context, collection common.Address) (bool, error)
	RoyaltyInfo(ctx context.Context, collection common.Address, tokenID *big.Int, amount *big.Int) (common.Address, *big.Int, error)
}

// CapabilityProbe detects which asset standard a collection implements.
type CapabilityProbe interface {
	DetectStandard(ctx context.Context, collection common.Address) (AssetStandard, error)
}

// Journal is an optional undo log over the external registries, in the
// manner of go-ethereum's state journal. When the engine's ports share a
// journal, the apply phase of a settlement snapshots before the first leg
// and reverts on any leg failure, so a half-executed trade leaves no
// observable state behind.
type Journal interface {
	// Snapshot returns a revision token for the current state.
	Snapshot() int
	// RevertTo undoes every mutation recorded after the given revision.
	RevertTo(revision int)
}
