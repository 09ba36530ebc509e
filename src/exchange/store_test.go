package exchange

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func storeBid(collection common.Address, tokenID int64) *Bid {
	return &Bid{
		Bidder:     common.HexToAddress("0x0000000000000000000000000000000000000b1d"),
		Collection: collection,
		TokenID:    big.NewInt(tokenID),
		Units:      1,
		Standard:   StandardNonFungible,
		Currency:   common.HexToAddress("0x00000000000000000000000000000000000000cc"),
		Amount:     big.NewInt(1000),
	}
}

func storeAsk(collection common.Address, tokenID int64) *Ask {
	return &Ask{
		Seller:       common.HexToAddress("0x000000000000000000000000000000000000a5c0"),
		Collection:   collection,
		TokenID:      big.NewInt(tokenID),
		Units:        1,
		Standard:     StandardNonFungible,
		Currency:     common.HexToAddress("0x00000000000000000000000000000000000000cc"),
		BuyNowAmount: big.NewInt(1000),
	}
}

func TestStoreIDsAreDensePerKind(t *testing.T) {
	s := NewStore()
	collection := common.HexToAddress("0x0000000000000000000000000000000000000c01")

	require.Equal(t, uint64(0), s.AppendBid(storeBid(collection, 1)))
	require.Equal(t, uint64(0), s.AppendAsk(storeAsk(collection, 1)))
	require.Equal(t, uint64(1), s.AppendBid(storeBid(collection, 2)))
	require.Equal(t, uint64(1), s.AppendAsk(storeAsk(collection, 2)))

	bid, state, err := s.Bid(1)
	require.NoError(t, err)
	require.Equal(t, StateOpen, state)
	require.Equal(t, "2", bid.TokenID.String())
}

func TestStoreUnknownIDs(t *testing.T) {
	s := NewStore()
	collection := common.HexToAddress("0x0000000000000000000000000000000000000c01")
	s.AppendBid(storeBid(collection, 1))

	// The lone bid id must not resolve in the ask arena.
	_, _, err := s.Ask(0)
	require.True(t, errors.Is(err, ErrOfferNotFound))

	_, _, err = s.Bid(1)
	require.True(t, errors.Is(err, ErrOfferNotFound))
}

func TestStoreTokenIndexTracksOpenOffers(t *testing.T) {
	s := NewStore()
	collection := common.HexToAddress("0x0000000000000000000000000000000000000c01")
	tokenID := big.NewInt(7)

	first := s.AppendBid(storeBid(collection, 7))
	second := s.AppendBid(storeBid(collection, 7))
	s.AppendBid(storeBid(collection, 8))

	require.Equal(t, []uint64{first, second}, s.BidsForToken(collection, tokenID))

	require.NoError(t, s.Close(KindBid, first, StateCancelled))
	require.Equal(t, []uint64{second}, s.BidsForToken(collection, tokenID))

	_, state, err := s.Bid(first)
	require.NoError(t, err)
	require.Equal(t, StateCancelled, state)
}

func TestStoreCloseIsTerminal(t *testing.T) {
	s := NewStore()
	collection := common.HexToAddress("0x0000000000000000000000000000000000000c01")
	id := s.AppendAsk(storeAsk(collection, 1))

	require.True(t, errors.Is(s.Close(KindAsk, id, StateOpen), ErrInvalidOffer))

	require.NoError(t, s.Close(KindAsk, id, StateSettled))
	// A closed offer reads as not found on the settlement path.
	require.True(t, errors.Is(s.Close(KindAsk, id, StateCancelled), ErrOfferNotFound))
	require.True(t, errors.Is(s.Close(KindAsk, id+1, StateSettled), ErrOfferNotFound))
}
