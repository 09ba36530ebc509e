package service

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/ProjectsTask/EasySwapExchange/src/common/utils"
	"github.com/ProjectsTask/EasySwapExchange/src/common/xzap"
	"github.com/ProjectsTask/EasySwapExchange/src/dao"
	"github.com/ProjectsTask/EasySwapExchange/src/exchange"
	"github.com/ProjectsTask/EasySwapExchange/src/service/svc"
	types "github.com/ProjectsTask/EasySwapExchange/src/types/v1"
)

// PlaceBid validates the request and stores a standing offer to buy.
func PlaceBid(ctx context.Context, svcCtx *svc.ServerCtx, req types.PlaceBidReq) (*types.PlaceOfferResp, error) {
	caller, collection, tokenID, err := parseAsset(req.Caller, req.CollectionAddress, req.TokenID)
	if err != nil {
		return nil, err
	}
	currency, err := utils.ParseAddress(req.Currency)
	if err != nil {
		return nil, errors.Wrap(exchange.ErrInvalidOffer, err.Error())
	}
	amount, err := utils.ParseAmount(req.Amount)
	if err != nil {
		return nil, errors.Wrap(exchange.ErrInvalidOffer, err.Error())
	}

	id, err := svcCtx.Engine.PlaceBid(ctx, exchange.PlaceBidParams{
		Bidder:     caller,
		Collection: collection,
		TokenID:    tokenID,
		Units:      req.Units,
		Currency:   currency,
		Amount:     amount,
		ExpiresAt:  req.ExpiresAt,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed on place bid")
	}

	recordActivity(ctx, svcCtx, &dao.Activity{
		EventType:         dao.MakeOffer,
		OfferKind:         exchange.KindBid.String(),
		OfferID:           id,
		CollectionAddress: collection.Hex(),
		TokenID:           tokenID.String(),
		Units:             req.Units,
		Currency:          currency.Hex(),
		Price:             decimal.NewFromBigInt(amount, 0),
		Maker:             caller.Hex(),
	})
	return &types.PlaceOfferResp{Kind: exchange.KindBid.String(), OfferID: id}, nil
}

// PlaceAsk validates the request and stores a standing offer to sell. An
// empty currency posts the ask in native value.
func PlaceAsk(ctx context.Context, svcCtx *svc.ServerCtx, req types.PlaceAskReq) (*types.PlaceOfferResp, error) {
	caller, collection, tokenID, err := parseAsset(req.Caller, req.CollectionAddress, req.TokenID)
	if err != nil {
		return nil, err
	}
	currency := exchange.NativeCurrency
	if req.Currency != "" {
		currency, err = utils.ParseAddress(req.Currency)
		if err != nil {
			return nil, errors.Wrap(exchange.ErrInvalidOffer, err.Error())
		}
	}
	buyNow, err := utils.ParseAmount(req.BuyNowAmount)
	if err != nil {
		return nil, errors.Wrap(exchange.ErrInvalidOffer, err.Error())
	}

	id, err := svcCtx.Engine.PlaceAsk(ctx, exchange.PlaceAskParams{
		Seller:       caller,
		Collection:   collection,
		TokenID:      tokenID,
		Units:        req.Units,
		Currency:     currency,
		BuyNowAmount: buyNow,
		ExpiresAt:    req.ExpiresAt,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed on place ask")
	}

	recordActivity(ctx, svcCtx, &dao.Activity{
		EventType:         dao.Listing,
		OfferKind:         exchange.KindAsk.String(),
		OfferID:           id,
		CollectionAddress: collection.Hex(),
		TokenID:           tokenID.String(),
		Units:             req.Units,
		Currency:          currencyLabel(currency),
		Price:             decimal.NewFromBigInt(buyNow, 0),
		Maker:             caller.Hex(),
	})
	return &types.PlaceOfferResp{Kind: exchange.KindAsk.String(), OfferID: id}, nil
}

// AcceptBid settles a bid on behalf of the asset's current owner.
func AcceptBid(ctx context.Context, svcCtx *svc.ServerCtx, bidID uint64, callerAddr string) (*types.SettlementResp, error) {
	caller, err := utils.ParseAddress(callerAddr)
	if err != nil {
		return nil, errors.Wrap(exchange.ErrInvalidOffer, err.Error())
	}

	settlement, err := svcCtx.Engine.AcceptBid(ctx, caller, bidID)
	if err != nil {
		recordExpiry(ctx, svcCtx, exchange.KindBid, bidID, err)
		return nil, errors.Wrap(err, "failed on accept bid")
	}

	recordSettlement(ctx, svcCtx, dao.Sale, settlement)
	return settlementResp(settlement), nil
}

// BuyNowWithCurrency settles a currency-priced ask for the caller.
func BuyNowWithCurrency(ctx context.Context, svcCtx *svc.ServerCtx, askID uint64, req types.BuyNowReq) (*types.SettlementResp, error) {
	caller, amount, err := parsePayment(req)
	if err != nil {
		return nil, err
	}

	settlement, err := svcCtx.Engine.BuyNowWithCurrency(ctx, caller, askID, amount)
	if err != nil {
		recordExpiry(ctx, svcCtx, exchange.KindAsk, askID, err)
		return nil, errors.Wrap(err, "failed on buy now")
	}

	recordSettlement(ctx, svcCtx, dao.Buy, settlement)
	return settlementResp(settlement), nil
}

// BuyNowWithNativeValue settles a native-priced ask with the attached value.
func BuyNowWithNativeValue(ctx context.Context, svcCtx *svc.ServerCtx, askID uint64, req types.BuyNowReq) (*types.SettlementResp, error) {
	caller, attached, err := parsePayment(req)
	if err != nil {
		return nil, err
	}

	settlement, err := svcCtx.Engine.BuyNowWithNativeValue(ctx, caller, askID, attached)
	if err != nil {
		recordExpiry(ctx, svcCtx, exchange.KindAsk, askID, err)
		return nil, errors.Wrap(err, "failed on buy now with native value")
	}

	recordSettlement(ctx, svcCtx, dao.Buy, settlement)
	return settlementResp(settlement), nil
}

// CancelOffer withdraws an open offer of the given kind for its maker.
func CancelOffer(ctx context.Context, svcCtx *svc.ServerCtx, kind exchange.OfferKind, offerID uint64, callerAddr string) error {
	caller, err := utils.ParseAddress(callerAddr)
	if err != nil {
		return errors.Wrap(exchange.ErrInvalidOffer, err.Error())
	}

	var eventType int
	switch kind {
	case exchange.KindBid:
		eventType = dao.CancelOffer
		err = svcCtx.Engine.CancelBid(ctx, caller, offerID)
	case exchange.KindAsk:
		eventType = dao.CancelListing
		err = svcCtx.Engine.CancelAsk(ctx, caller, offerID)
	default:
		return errors.Wrapf(exchange.ErrInvalidOffer, "unknown offer kind %d", kind)
	}
	if err != nil {
		return errors.Wrap(err, "failed on cancel offer")
	}

	recordActivity(ctx, svcCtx, &dao.Activity{
		EventType: eventType,
		OfferKind: kind.String(),
		OfferID:   offerID,
		Maker:     caller.Hex(),
	})
	return nil
}

// OffersForToken lists the open offer ids of one kind on an asset.
func OffersForToken(ctx context.Context, svcCtx *svc.ServerCtx, kind exchange.OfferKind, collectionAddr, tokenIDStr string) (*types.OfferIDsResp, error) {
	collection, err := utils.ParseAddress(collectionAddr)
	if err != nil {
		return nil, errors.Wrap(exchange.ErrInvalidOffer, err.Error())
	}
	tokenID, err := utils.ParseTokenID(tokenIDStr)
	if err != nil {
		return nil, errors.Wrap(exchange.ErrInvalidOffer, err.Error())
	}

	var ids []uint64
	switch kind {
	case exchange.KindBid:
		ids = svcCtx.Engine.BidsForToken(collection, tokenID)
	case exchange.KindAsk:
		ids = svcCtx.Engine.AsksForToken(collection, tokenID)
	default:
		return nil, errors.Wrapf(exchange.ErrInvalidOffer, "unknown offer kind %d", kind)
	}
	return &types.OfferIDsResp{OfferIDs: ids}, nil
}

// CalculateFee quotes the protocol commission on a hypothetical amount.
func CalculateFee(ctx context.Context, svcCtx *svc.ServerCtx, amountStr string) (*types.FeeResp, error) {
	amount, err := utils.ParseAmount(amountStr)
	if err != nil {
		return nil, errors.Wrap(exchange.ErrInvalidOffer, err.Error())
	}
	commission, err := svcCtx.Engine.CalculateFee(amount)
	if err != nil {
		return nil, errors.Wrap(err, "failed on calculate fee")
	}
	return &types.FeeResp{Amount: amount.String(), Commission: commission.String()}, nil
}

func parseAsset(callerAddr, collectionAddr, tokenIDStr string) (common.Address, common.Address, *big.Int, error) {
	caller, err := utils.ParseAddress(callerAddr)
	if err != nil {
		return common.Address{}, common.Address{}, nil, errors.Wrap(exchange.ErrInvalidOffer, err.Error())
	}
	collection, err := utils.ParseAddress(collectionAddr)
	if err != nil {
		return common.Address{}, common.Address{}, nil, errors.Wrap(exchange.ErrInvalidOffer, err.Error())
	}
	tokenID, err := utils.ParseTokenID(tokenIDStr)
	if err != nil {
		return common.Address{}, common.Address{}, nil, errors.Wrap(exchange.ErrInvalidOffer, err.Error())
	}
	return caller, collection, tokenID, nil
}

func parsePayment(req types.BuyNowReq) (common.Address, *big.Int, error) {
	caller, err := utils.ParseAddress(req.Caller)
	if err != nil {
		return common.Address{}, nil, errors.Wrap(exchange.ErrInvalidOffer, err.Error())
	}
	amount, err := utils.ParseAmount(req.Amount)
	if err != nil {
		return common.Address{}, nil, errors.Wrap(exchange.ErrInvalidOffer, err.Error())
	}
	return caller, amount, nil
}

func recordSettlement(ctx context.Context, svcCtx *svc.ServerCtx, eventType int, s *exchange.Settlement) {
	recordActivity(ctx, svcCtx, &dao.Activity{
		EventType:         eventType,
		OfferKind:         s.Kind.String(),
		OfferID:           s.OfferID,
		CollectionAddress: s.Collection.Hex(),
		TokenID:           s.TokenID.String(),
		Units:             s.Units,
		Currency:          currencyLabel(s.Currency),
		Price:             decimal.NewFromBigInt(s.Amount, 0),
		Maker:             s.Seller.Hex(),
		Taker:             s.Buyer.Hex(),
	})
}

// recordExpiry journals the lazy Open -> Expired transition: the offer store
// only moves an offer to Expired when a settlement attempt touches it, so
// this is the one place the transition becomes observable.
func recordExpiry(ctx context.Context, svcCtx *svc.ServerCtx, kind exchange.OfferKind, offerID uint64, err error) {
	if !errors.Is(err, exchange.ErrExpired) {
		return
	}
	eventType := dao.ExpireOffer
	if kind == exchange.KindAsk {
		eventType = dao.ExpireListing
	}
	recordActivity(ctx, svcCtx, &dao.Activity{
		EventType: eventType,
		OfferKind: kind.String(),
		OfferID:   offerID,
	})
}

// recordActivity appends a history row. History is observability, not part
// of the settlement itself, so a journal failure is logged and swallowed.
func recordActivity(ctx context.Context, svcCtx *svc.ServerCtx, activity *dao.Activity) {
	activity.EventTime = time.Now().Unix()
	if err := svcCtx.Dao.InsertActivity(ctx, activity); err != nil {
		xzap.WithContext(ctx).Error("failed on record activity",
			zap.String("offer_kind", activity.OfferKind),
			zap.Uint64("offer_id", activity.OfferID),
			zap.Error(err))
	}
}

func settlementResp(s *exchange.Settlement) *types.SettlementResp {
	resp := &types.SettlementResp{
		Kind:              s.Kind.String(),
		OfferID:           s.OfferID,
		CollectionAddress: s.Collection.Hex(),
		TokenID:           s.TokenID.String(),
		Units:             s.Units,
		Currency:          currencyLabel(s.Currency),
		Buyer:             s.Buyer.Hex(),
		Seller:            s.Seller.Hex(),
		Amount:            s.Amount.String(),
		Commission:        s.Commission.String(),
		Royalty:           s.Royalty.String(),
		SellerProceeds:    s.SellerProceeds.String(),
	}
	if s.Royalty.Sign() > 0 {
		resp.RoyaltyReceiver = s.RoyaltyReceiver.Hex()
	}
	return resp
}

func currencyLabel(currency common.Address) string {
	if currency == exchange.NativeCurrency {
		return "native"
	}
	return currency.Hex()
}
