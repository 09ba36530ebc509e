package types

// PlaceBidReq creates a standing offer to buy. Amounts are decimal strings
// in base units; caller identity is authenticated upstream.
type PlaceBidReq struct {
	Caller            string `json:"caller" binding:"required,address"`
	CollectionAddress string `json:"collection_address" binding:"required,address"`
	TokenID           string `json:"token_id" binding:"required"`
	Units             uint64 `json:"units" binding:"required"`
	Currency          string `json:"currency" binding:"required,address"`
	Amount            string `json:"amount" binding:"required"`
	ExpiresAt         int64  `json:"expires_at"`
}

// PlaceAskReq creates a standing offer to sell. An empty currency posts the
// ask in the chain's native unit of value.
type PlaceAskReq struct {
	Caller            string `json:"caller" binding:"required,address"`
	CollectionAddress string `json:"collection_address" binding:"required,address"`
	TokenID           string `json:"token_id" binding:"required"`
	Units             uint64 `json:"units" binding:"required"`
	Currency          string `json:"currency" binding:"omitempty,address"`
	BuyNowAmount      string `json:"buy_now_amount" binding:"required"`
	ExpiresAt         int64  `json:"expires_at"`
}

type PlaceOfferResp struct {
	Kind    string `json:"kind"`
	OfferID uint64 `json:"offer_id"`
}

// AcceptBidReq settles a bid; the caller must be the asset's current owner.
type AcceptBidReq struct {
	Caller string `json:"caller" binding:"required,address"`
}

// BuyNowReq settles an ask at the given amount, which must be at least the
// posted buy-now amount. For the native flow the amount is the value the
// buyer attaches to the call.
type BuyNowReq struct {
	Caller string `json:"caller" binding:"required,address"`
	Amount string `json:"amount" binding:"required"`
}

// CancelOfferReq withdraws an open offer; the caller must be its maker.
type CancelOfferReq struct {
	Caller string `json:"caller" binding:"required,address"`
}

// SettlementResp reports how a settled trade's amount was carved up.
type SettlementResp struct {
	Kind              string `json:"kind"`
	OfferID           uint64 `json:"offer_id"`
	CollectionAddress string `json:"collection_address"`
	TokenID           string `json:"token_id"`
	Units             uint64 `json:"units"`
	Currency          string `json:"currency"`
	Buyer             string `json:"buyer"`
	Seller            string `json:"seller"`
	Amount            string `json:"amount"`
	Commission        string `json:"commission"`
	Royalty           string `json:"royalty"`
	RoyaltyReceiver   string `json:"royalty_receiver,omitempty"`
	SellerProceeds    string `json:"seller_proceeds"`
}

type OfferIDsResp struct {
	OfferIDs []uint64 `json:"offer_ids"`
}

type FeeResp struct {
	Amount     string `json:"amount"`
	Commission string `json:"commission"`
}
