package service

import (
	"context"
	"fmt"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/ProjectsTask/EasySwapExchange/src/dao"
	"github.com/ProjectsTask/EasySwapExchange/src/exchange"
	"github.com/ProjectsTask/EasySwapExchange/src/ledger"
	"github.com/ProjectsTask/EasySwapExchange/src/service/svc"
	"github.com/ProjectsTask/EasySwapExchange/src/stores/gdb"
	types "github.com/ProjectsTask/EasySwapExchange/src/types/v1"
)

const (
	testOperator   = "0x00000000000000000000000000000000000000fe"
	testSeller     = "0x1000000000000000000000000000000000000001"
	testBuyer      = "0x2000000000000000000000000000000000000002"
	testCollection = "0x5000000000000000000000000000000000000005"
	testCurrency   = "0x7000000000000000000000000000000000000007"
)

// newTestServerCtx wires a ServerCtx onto an in-memory journal and a seeded
// ledger, with the engine clock under the test's control.
func newTestServerCtx(t *testing.T, now *time.Time) *svc.ServerCtx {
	t.Helper()

	operator := common.HexToAddress(testOperator)
	l := ledger.New(operator)
	require.NoError(t, l.CreateCollection(common.HexToAddress(testCollection), exchange.StandardNonFungible, 0, common.Address{}))
	require.NoError(t, l.MintNFT(common.HexToAddress(testCollection), big.NewInt(1), common.HexToAddress(testSeller)))
	require.NoError(t, l.SetApprovalForAll(common.HexToAddress(testCollection), common.HexToAddress(testSeller), operator, true))
	l.SetBalance(common.HexToAddress(testCurrency), common.HexToAddress(testBuyer), big.NewInt(1000))
	l.Approve(common.HexToAddress(testCurrency), common.HexToAddress(testBuyer), operator, big.NewInt(1000))

	store := exchange.NewStore()
	engine, err := exchange.New(
		exchange.Config{CommissionRateBps: 250, Operator: operator},
		store,
		l, l, l.Native(), l, l,
		exchange.WithJournal(l),
		exchange.WithClock(func() time.Time { return *now }),
	)
	require.NoError(t, err)

	db, err := gdb.NewDB(&gdb.Config{Driver: "sqlite", DSN: fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())})
	require.NoError(t, err)
	d := dao.New(context.Background(), db, nil)
	require.NoError(t, d.Migrate())

	return svc.NewServerCtx(
		svc.WithDB(db),
		svc.WithDao(d),
		svc.WithEngine(store, engine, l),
	)
}

func TestExpiredSettlementAttemptJournalsExpiry(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	svcCtx := newTestServerCtx(t, &now)
	ctx := context.Background()

	resp, err := PlaceAsk(ctx, svcCtx, types.PlaceAskReq{
		Caller:            testSeller,
		CollectionAddress: testCollection,
		TokenID:           "1",
		Units:             1,
		Currency:          testCurrency,
		BuyNowAmount:      "1000",
		ExpiresAt:         now.Unix() + 100,
	})
	require.NoError(t, err)

	now = now.Add(200 * time.Second)
	_, err = BuyNowWithCurrency(ctx, svcCtx, resp.OfferID, types.BuyNowReq{
		Caller: testBuyer,
		Amount: "1000",
	})
	require.True(t, errors.Is(err, exchange.ErrExpired))

	rows, total, err := svcCtx.Dao.QueryActivities(ctx, dao.ActivityFilter{EventTypes: []string{"expire_list"}}, 1, 10)
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Len(t, rows, 1)
	require.Equal(t, dao.ExpireListing, rows[0].EventType)
	require.Equal(t, exchange.KindAsk.String(), rows[0].OfferKind)
	require.Equal(t, resp.OfferID, rows[0].OfferID)

	// The transition is journaled once; a retry hits a terminal offer and
	// records nothing further.
	_, err = BuyNowWithCurrency(ctx, svcCtx, resp.OfferID, types.BuyNowReq{
		Caller: testBuyer,
		Amount: "1000",
	})
	require.True(t, errors.Is(err, exchange.ErrOfferNotFound))
	_, total, err = svcCtx.Dao.QueryActivities(ctx, dao.ActivityFilter{EventTypes: []string{"expire_list"}}, 1, 10)
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
}

func TestExpiredBidAcceptanceJournalsExpiry(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	svcCtx := newTestServerCtx(t, &now)
	ctx := context.Background()

	resp, err := PlaceBid(ctx, svcCtx, types.PlaceBidReq{
		Caller:            testBuyer,
		CollectionAddress: testCollection,
		TokenID:           "1",
		Units:             1,
		Currency:          testCurrency,
		Amount:            "1000",
		ExpiresAt:         now.Unix() + 100,
	})
	require.NoError(t, err)

	now = now.Add(200 * time.Second)
	_, err = AcceptBid(ctx, svcCtx, resp.OfferID, testSeller)
	require.True(t, errors.Is(err, exchange.ErrExpired))

	rows, total, err := svcCtx.Dao.QueryActivities(ctx, dao.ActivityFilter{EventTypes: []string{"expire_offer"}}, 1, 10)
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Len(t, rows, 1)
	require.Equal(t, dao.ExpireOffer, rows[0].EventType)
	require.Equal(t, exchange.KindBid.String(), rows[0].OfferKind)
	require.Equal(t, resp.OfferID, rows[0].OfferID)
}
