package dao

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Activity event types, one row per offer-book transition.
const (
	Listing = iota + 1
	MakeOffer
	Sale
	Buy
	CancelListing
	CancelOffer
	ExpireListing
	ExpireOffer
)

var eventTypesToID = map[string]int{
	"list":         Listing,
	"offer":        MakeOffer,
	"sale":         Sale,
	"buy":          Buy,
	"cancel_list":  CancelListing,
	"cancel_offer": CancelOffer,
	"expire_list":  ExpireListing,
	"expire_offer": ExpireOffer,
}

var idToEventTypes = map[int]string{
	Listing:       "list",
	MakeOffer:     "offer",
	Sale:          "sale",
	Buy:           "buy",
	CancelListing: "cancel_list",
	CancelOffer:   "cancel_offer",
	ExpireListing: "expire_list",
	ExpireOffer:   "expire_offer",
}

// EventTypeID resolves an API event-type name; unknown names yield ok false.
func EventTypeID(name string) (int, bool) {
	id, ok := eventTypesToID[name]
	return id, ok
}

// EventTypeName resolves an event-type id for API responses.
func EventTypeName(id int) string {
	return idToEventTypes[id]
}

// Activity is one row of the marketplace history: an offer placed, settled
// or cancelled. Prices are stored as integral decimals in base units.
type Activity struct {
	ID                int64           `gorm:"column:id;primaryKey;autoIncrement"`
	EventType         int             `gorm:"column:event_type;index:idx_event_type"`
	OfferKind         string          `gorm:"column:offer_kind;type:varchar(8)"`
	OfferID           uint64          `gorm:"column:offer_id"`
	CollectionAddress string          `gorm:"column:collection_address;type:varchar(64);index:idx_asset"`
	TokenID           string          `gorm:"column:token_id;type:varchar(128);index:idx_asset"`
	Units             uint64          `gorm:"column:units"`
	Currency          string          `gorm:"column:currency;type:varchar(64)"`
	Price             decimal.Decimal `gorm:"column:price;type:decimal(65,0)"`
	Maker             string          `gorm:"column:maker;type:varchar(64);index:idx_maker"`
	Taker             string          `gorm:"column:taker;type:varchar(64)"`
	EventTime         int64           `gorm:"column:event_time"`
}

func (Activity) TableName() string {
	return "ex_activities"
}

const activityCountCachePrefix = "cache:ex:activity:count:"
const activityCountCacheSeconds = 60

// ActivityFilter narrows an activity query. Zero fields are ignored.
type ActivityFilter struct {
	CollectionAddress string   `json:"collection_address"`
	TokenID           string   `json:"token_id"`
	UserAddress       string   `json:"user_address"`
	EventTypes        []string `json:"event_types"`
}

func activityCountCacheKey(f ActivityFilter) (string, error) {
	raw, err := json.Marshal(f)
	if err != nil {
		return "", errors.Wrap(err, "failed on marshal activity filter")
	}
	return activityCountCachePrefix + string(raw), nil
}

// InsertActivity appends one history row.
func (d *Dao) InsertActivity(ctx context.Context, activity *Activity) error {
	if err := d.DB.WithContext(ctx).Create(activity).Error; err != nil {
		return errors.Wrap(err, "failed on insert activity")
	}
	return nil
}

// QueryActivities pages through history rows matching the filter, newest
// first, returning the page and the total match count. The count is served
// from the kv cache when one is configured.
func (d *Dao) QueryActivities(ctx context.Context, filter ActivityFilter, page, pageSize int) ([]Activity, int64, error) {
	query := d.DB.WithContext(ctx).Model(&Activity{})
	if filter.CollectionAddress != "" {
		query = query.Where("collection_address = ?", filter.CollectionAddress)
	}
	if filter.TokenID != "" {
		query = query.Where("token_id = ?", filter.TokenID)
	}
	if filter.UserAddress != "" {
		query = query.Where("maker = ? OR taker = ?", filter.UserAddress, filter.UserAddress)
	}
	if len(filter.EventTypes) > 0 {
		ids := make([]int, 0, len(filter.EventTypes))
		for _, name := range filter.EventTypes {
			id, ok := eventTypesToID[name]
			if !ok {
				return nil, 0, errors.Errorf("unknown event type %q", name)
			}
			ids = append(ids, id)
		}
		query = query.Where("event_type IN ?", ids)
	}

	total, err := d.countActivities(filter, query.Session(&gorm.Session{}))
	if err != nil {
		return nil, 0, err
	}

	var activities []Activity
	err = query.
		Order("event_time DESC").
		Order("id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&activities).Error
	if err != nil {
		return nil, 0, errors.Wrap(err, "failed on query activities")
	}
	return activities, total, nil
}

// countActivities serves the match count through the kv cache when one is
// configured; cache failures fall back to the database silently.
func (d *Dao) countActivities(filter ActivityFilter, query *gorm.DB) (int64, error) {
	var cacheKey string
	if d.KvStore != nil {
		key, err := activityCountCacheKey(filter)
		if err == nil {
			cacheKey = key
			if total, ok, err := d.KvStore.GetInt64(cacheKey); err == nil && ok {
				return total, nil
			}
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return 0, errors.Wrap(err, "failed on count activities")
	}
	if d.KvStore != nil && cacheKey != "" {
		_ = d.KvStore.SetInt64(cacheKey, total, activityCountCacheSeconds)
	}
	return total, nil
}
