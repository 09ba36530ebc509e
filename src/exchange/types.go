package exchange

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// AssetStandard tags which kind of token registry an offer references.
type AssetStandard uint8

const (
	StandardUnknown AssetStandard = iota
	// StandardNonFungible is a one-of-a-kind token owned by exactly one account.
	StandardNonFungible
	// StandardSemiFungible is a token type with a per-account balance of
	// interchangeable units.
	StandardSemiFungible
)

func (s AssetStandard) String() string {
	switch s {
	case StandardNonFungible:
		return "erc721"
	case StandardSemiFungible:
		return "erc1155"
	default:
		return "unknown"
	}
}

// OfferKind separates the two offer arenas. Bid and ask ids are independent
// sequences, so an id is only meaningful together with its kind.
type OfferKind uint8

const (
	KindBid OfferKind = iota + 1
	KindAsk
)

func (k OfferKind) String() string {
	switch k {
	case KindBid:
		return "bid"
	case KindAsk:
		return "ask"
	default:
		return "unknown"
	}
}

// OfferState is the lifecycle state of a stored offer. Offers start Open and
// move to exactly one terminal state; only Open offers can be settled or
// cancelled.
type OfferState uint8

const (
	StateOpen OfferState = iota
	StateSettled
	StateCancelled
	StateExpired
)

func (s OfferState) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateSettled:
		return "settled"
	case StateCancelled:
		return "cancelled"
	case StateExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// NativeCurrency is the sentinel currency address denoting the chain's
// native unit of value instead of a fungible token contract.
var NativeCurrency = common.Address{}

// Bid is a standing offer to buy. The record is immutable once stored; the
// lifecycle state lives in the offer store, not on the record.
type Bid struct {
	Bidder     common.Address
	Collection common.Address
	TokenID    *big.Int
	Units      uint64
	Standard   AssetStandard
	// Currency the bidder pays with. Bids are always currency-denominated;
	// the native sentinel is not accepted here.
	Currency  common.Address
	Amount    *big.Int
	CreatedAt int64
	// ExpiresAt is a unix timestamp; zero means the bid never expires.
	ExpiresAt int64
}

// Ask is a standing offer to sell at a posted buy-now price. Asks priced in
// NativeCurrency are settled through the native-value flow.
type Ask struct {
	Seller       common.Address
	Collection   common.Address
	TokenID      *big.Int
	Units        uint64
	Standard     AssetStandard
	Currency     common.Address
	BuyNowAmount *big.Int
	CreatedAt    int64
	ExpiresAt    int64
}

// Settlement summarises one executed trade: who paid whom, and how the
// amount was carved up between seller, royalty receiver and the protocol.
type Settlement struct {
	Kind       OfferKind
	OfferID    uint64
	Collection common.Address
	TokenID    *big.Int
	Units      uint64
	Currency   common.Address
	Buyer      common.Address
	Seller     common.Address

	Amount          *big.Int
	Commission      *big.Int
	Royalty         *big.Int
	RoyaltyReceiver common.Address
	SellerProceeds  *big.Int
}
