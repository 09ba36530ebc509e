package types

// ActivityFilterParam is the JSON filter accepted by the activities query.
type ActivityFilterParam struct {
	CollectionAddress string   `json:"collection_address"`
	TokenID           string   `json:"token_id"`
	UserAddress       string   `json:"user_address"`
	EventTypes        []string `json:"event_types"`
	Page              int      `json:"page"`
	PageSize          int      `json:"page_size"`
}

type ActivityItem struct {
	EventType         string `json:"event_type"`
	OfferKind         string `json:"offer_kind"`
	OfferID           uint64 `json:"offer_id"`
	CollectionAddress string `json:"collection_address"`
	TokenID           string `json:"token_id"`
	Units             uint64 `json:"units"`
	Currency          string `json:"currency,omitempty"`
	Price             string `json:"price"`
	Maker             string `json:"maker"`
	Taker             string `json:"taker,omitempty"`
	EventTime         int64  `json:"event_time"`
}

type ActivityResp struct {
	Result []ActivityItem `json:"result"`
	Count  int64          `json:"count"`
}
