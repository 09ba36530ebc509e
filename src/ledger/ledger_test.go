package ledger

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/ProjectsTask/EasySwapExchange/src/exchange"
)

var (
	op    = common.HexToAddress("0x00000000000000000000000000000000000000fe")
	alice = common.HexToAddress("0x1000000000000000000000000000000000000001")
	bob   = common.HexToAddress("0x2000000000000000000000000000000000000002")
	nft   = common.HexToAddress("0x5000000000000000000000000000000000000005")
	coin  = common.HexToAddress("0x7000000000000000000000000000000000000007")
)

func TestTransferFromDrawsDownAllowance(t *testing.T) {
	l := New(op)
	l.SetBalance(coin, alice, big.NewInt(1000))
	l.Approve(coin, alice, op, big.NewInt(600))

	require.NoError(t, l.TransferFrom(context.Background(), coin, alice, bob, big.NewInt(400)))

	allowance, err := l.Allowance(context.Background(), coin, alice, op)
	require.NoError(t, err)
	require.Equal(t, int64(200), allowance.Int64())
	require.Equal(t, int64(600), l.CurrencyBalanceOf(coin, alice).Int64())
	require.Equal(t, int64(400), l.CurrencyBalanceOf(coin, bob).Int64())

	// The remaining allowance no longer covers this draw.
	err = l.TransferFrom(context.Background(), coin, alice, bob, big.NewInt(300))
	require.Error(t, err)
}

func TestTransferFromRequiresBalance(t *testing.T) {
	l := New(op)
	l.SetBalance(coin, alice, big.NewInt(100))
	l.Approve(coin, alice, op, big.NewInt(1000))

	err := l.TransferFrom(context.Background(), coin, alice, bob, big.NewInt(500))
	require.Error(t, err)
	require.Equal(t, int64(100), l.CurrencyBalanceOf(coin, alice).Int64())
}

func TestNFTTransferAuthority(t *testing.T) {
	l := New(op)
	tokenID := big.NewInt(1)
	require.NoError(t, l.CreateCollection(nft, exchange.StandardNonFungible, 0, common.Address{}))
	require.NoError(t, l.MintNFT(nft, tokenID, alice))

	// Without any approval the operator cannot move the token.
	err := l.Transfer(context.Background(), nft, alice, bob, tokenID, 1)
	require.Error(t, err)

	require.NoError(t, l.ApproveToken(nft, tokenID, alice, op))
	require.NoError(t, l.Transfer(context.Background(), nft, alice, bob, tokenID, 1))

	owner, err := l.OwnerOf(context.Background(), nft, tokenID)
	require.NoError(t, err)
	require.Equal(t, bob, owner)

	// The single-token approval was consumed by the transfer.
	approved, err := l.IsApproved(context.Background(), nft, tokenID, op)
	require.NoError(t, err)
	require.False(t, approved)

	err = l.Transfer(context.Background(), nft, bob, alice, tokenID, 1)
	require.Error(t, err)
}

func TestJournalRevertRestoresState(t *testing.T) {
	l := New(op)
	tokenID := big.NewInt(1)
	require.NoError(t, l.CreateCollection(nft, exchange.StandardNonFungible, 0, common.Address{}))
	require.NoError(t, l.MintNFT(nft, tokenID, alice))
	require.NoError(t, l.SetApprovalForAll(nft, alice, op, true))
	l.SetBalance(coin, alice, big.NewInt(1000))
	l.Approve(coin, alice, op, big.NewInt(1000))
	l.SetNativeBalance(alice, big.NewInt(500))

	rev := l.Snapshot()

	require.NoError(t, l.TransferFrom(context.Background(), coin, alice, bob, big.NewInt(700)))
	require.NoError(t, l.Transfer(context.Background(), nft, alice, bob, tokenID, 1))
	require.NoError(t, l.NativeTransfer(context.Background(), alice, bob, big.NewInt(500)))

	l.RevertTo(rev)

	require.Equal(t, int64(1000), l.CurrencyBalanceOf(coin, alice).Int64())
	require.Equal(t, int64(0), l.CurrencyBalanceOf(coin, bob).Int64())
	allowance, err := l.Allowance(context.Background(), coin, alice, op)
	require.NoError(t, err)
	require.Equal(t, int64(1000), allowance.Int64())

	owner, err := l.OwnerOf(context.Background(), nft, tokenID)
	require.NoError(t, err)
	require.Equal(t, alice, owner)

	native, err := l.NativeBalanceOf(context.Background(), alice)
	require.NoError(t, err)
	require.Equal(t, int64(500), native.Int64())
}

func TestRoyaltyDeclaration(t *testing.T) {
	l := New(op)
	receiver := common.HexToAddress("0x4000000000000000000000000000000000000004")
	require.NoError(t, l.CreateCollection(nft, exchange.StandardNonFungible, 500, receiver))

	supported, err := l.SupportsRoyalty(context.Background(), nft)
	require.NoError(t, err)
	require.True(t, supported)

	got, royalty, err := l.RoyaltyInfo(context.Background(), nft, big.NewInt(1), big.NewInt(1000))
	require.NoError(t, err)
	require.Equal(t, receiver, got)
	require.Equal(t, int64(50), royalty.Int64())

	bare := common.HexToAddress("0x6000000000000000000000000000000000000006")
	require.NoError(t, l.CreateCollection(bare, exchange.StandardNonFungible, 0, common.Address{}))
	supported, err = l.SupportsRoyalty(context.Background(), bare)
	require.NoError(t, err)
	require.False(t, supported)
}

func TestSemiFungibleTransferRequiresBlanketApproval(t *testing.T) {
	l := New(op)
	sft := common.HexToAddress("0x6000000000000000000000000000000000000006")
	tokenID := big.NewInt(9)
	require.NoError(t, l.CreateCollection(sft, exchange.StandardSemiFungible, 0, common.Address{}))
	require.NoError(t, l.MintSFT(sft, tokenID, alice, 10))

	err := l.Transfer(context.Background(), sft, alice, bob, tokenID, 4)
	require.Error(t, err)

	require.NoError(t, l.SetApprovalForAll(sft, alice, op, true))
	require.NoError(t, l.Transfer(context.Background(), sft, alice, bob, tokenID, 4))

	balance, err := l.BalanceOf(context.Background(), sft, alice, tokenID)
	require.NoError(t, err)
	require.Equal(t, int64(6), balance.Int64())

	// More units than alice holds.
	err = l.Transfer(context.Background(), sft, alice, bob, tokenID, 7)
	require.Error(t, err)
}
