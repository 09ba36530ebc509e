package dao

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/ProjectsTask/EasySwapExchange/src/stores/gdb"
)

func newTestDao(t *testing.T) *Dao {
	t.Helper()
	db, err := gdb.NewDB(&gdb.Config{Driver: "sqlite", DSN: fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())})
	require.NoError(t, err)
	d := New(context.Background(), db, nil)
	require.NoError(t, d.Migrate())
	return d
}

func seedActivities(t *testing.T, d *Dao) {
	t.Helper()
	rows := []Activity{
		{EventType: Listing, OfferKind: "ask", OfferID: 0, CollectionAddress: "0xc1", TokenID: "1", Units: 1, Currency: "0xcc", Price: decimal.NewFromInt(1000), Maker: "0xa1", EventTime: 100},
		{EventType: MakeOffer, OfferKind: "bid", OfferID: 0, CollectionAddress: "0xc1", TokenID: "1", Units: 1, Currency: "0xcc", Price: decimal.NewFromInt(900), Maker: "0xb1", EventTime: 110},
		{EventType: Buy, OfferKind: "ask", OfferID: 0, CollectionAddress: "0xc1", TokenID: "1", Units: 1, Currency: "0xcc", Price: decimal.NewFromInt(1000), Maker: "0xa1", Taker: "0xb1", EventTime: 120},
		{EventType: Listing, OfferKind: "ask", OfferID: 1, CollectionAddress: "0xc2", TokenID: "7", Units: 5, Currency: "0xcc", Price: decimal.NewFromInt(500), Maker: "0xa2", EventTime: 130},
		{EventType: CancelListing, OfferKind: "ask", OfferID: 1, CollectionAddress: "0xc2", TokenID: "7", Units: 5, Currency: "0xcc", Price: decimal.NewFromInt(500), Maker: "0xa2", EventTime: 140},
	}
	for i := range rows {
		require.NoError(t, d.InsertActivity(context.Background(), &rows[i]))
	}
}

func TestQueryActivitiesNewestFirst(t *testing.T) {
	d := newTestDao(t)
	seedActivities(t, d)

	activities, total, err := d.QueryActivities(context.Background(), ActivityFilter{}, 1, 10)
	require.NoError(t, err)
	require.Equal(t, int64(5), total)
	require.Len(t, activities, 5)
	for i := 1; i < len(activities); i++ {
		require.GreaterOrEqual(t, activities[i-1].EventTime, activities[i].EventTime)
	}
}

func TestQueryActivitiesFilters(t *testing.T) {
	d := newTestDao(t)
	seedActivities(t, d)

	activities, total, err := d.QueryActivities(context.Background(), ActivityFilter{CollectionAddress: "0xc1", TokenID: "1"}, 1, 10)
	require.NoError(t, err)
	require.Equal(t, int64(3), total)
	require.Len(t, activities, 3)

	// User filter matches both maker and taker side.
	activities, total, err = d.QueryActivities(context.Background(), ActivityFilter{UserAddress: "0xb1"}, 1, 10)
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	require.Len(t, activities, 2)

	activities, total, err = d.QueryActivities(context.Background(), ActivityFilter{EventTypes: []string{"list"}}, 1, 10)
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	for _, a := range activities {
		require.Equal(t, Listing, a.EventType)
	}

	_, _, err = d.QueryActivities(context.Background(), ActivityFilter{EventTypes: []string{"bogus"}}, 1, 10)
	require.Error(t, err)
}

func TestQueryActivitiesPagination(t *testing.T) {
	d := newTestDao(t)
	seedActivities(t, d)

	page1, total, err := d.QueryActivities(context.Background(), ActivityFilter{}, 1, 2)
	require.NoError(t, err)
	require.Equal(t, int64(5), total)
	require.Len(t, page1, 2)

	page3, _, err := d.QueryActivities(context.Background(), ActivityFilter{}, 3, 2)
	require.NoError(t, err)
	require.Len(t, page3, 1)

	require.NotEqual(t, page1[0].ID, page3[0].ID)
}

func TestEventTypeNames(t *testing.T) {
	id, ok := EventTypeID("sale")
	require.True(t, ok)
	require.Equal(t, Sale, id)
	require.Equal(t, "sale", EventTypeName(Sale))

	_, ok = EventTypeID("bogus")
	require.False(t, ok)
}
