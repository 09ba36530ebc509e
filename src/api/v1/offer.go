package v1

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ProjectsTask/EasySwapExchange/src/common/errcode"
	"github.com/ProjectsTask/EasySwapExchange/src/common/xhttp"
	"github.com/ProjectsTask/EasySwapExchange/src/exchange"
	"github.com/ProjectsTask/EasySwapExchange/src/service/svc"
	service "github.com/ProjectsTask/EasySwapExchange/src/service/v1"
	types "github.com/ProjectsTask/EasySwapExchange/src/types/v1"
)

// PlaceBidHandler stores a standing offer to buy an asset.
func PlaceBidHandler(svcCtx *svc.ServerCtx) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req types.PlaceBidReq
		if err := c.ShouldBindJSON(&req); err != nil {
			xhttp.Error(c, errcode.ErrInvalidParams)
			return
		}
		res, err := service.PlaceBid(c.Request.Context(), svcCtx, req)
		if err != nil {
			xhttp.Error(c, toAPIError(err))
			return
		}
		xhttp.OkJson(c, res)
	}
}

// PlaceAskHandler stores a standing offer to sell an asset.
func PlaceAskHandler(svcCtx *svc.ServerCtx) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req types.PlaceAskReq
		if err := c.ShouldBindJSON(&req); err != nil {
			xhttp.Error(c, errcode.ErrInvalidParams)
			return
		}
		res, err := service.PlaceAsk(c.Request.Context(), svcCtx, req)
		if err != nil {
			xhttp.Error(c, toAPIError(err))
			return
		}
		xhttp.OkJson(c, res)
	}
}

// AcceptBidHandler settles a bid; the caller must currently own the asset.
func AcceptBidHandler(svcCtx *svc.ServerCtx) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := offerIDParam(c)
		if !ok {
			return
		}
		var req types.AcceptBidReq
		if err := c.ShouldBindJSON(&req); err != nil {
			xhttp.Error(c, errcode.ErrInvalidParams)
			return
		}
		res, err := service.AcceptBid(c.Request.Context(), svcCtx, id, req.Caller)
		if err != nil {
			xhttp.Error(c, toAPIError(err))
			return
		}
		xhttp.OkJson(c, res)
	}
}

// BuyNowHandler settles a currency-priced ask at the request amount.
func BuyNowHandler(svcCtx *svc.ServerCtx) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := offerIDParam(c)
		if !ok {
			return
		}
		var req types.BuyNowReq
		if err := c.ShouldBindJSON(&req); err != nil {
			xhttp.Error(c, errcode.ErrInvalidParams)
			return
		}
		res, err := service.BuyNowWithCurrency(c.Request.Context(), svcCtx, id, req)
		if err != nil {
			xhttp.Error(c, toAPIError(err))
			return
		}
		xhttp.OkJson(c, res)
	}
}

// BuyNowNativeHandler settles a native-priced ask with the attached value.
func BuyNowNativeHandler(svcCtx *svc.ServerCtx) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := offerIDParam(c)
		if !ok {
			return
		}
		var req types.BuyNowReq
		if err := c.ShouldBindJSON(&req); err != nil {
			xhttp.Error(c, errcode.ErrInvalidParams)
			return
		}
		res, err := service.BuyNowWithNativeValue(c.Request.Context(), svcCtx, id, req)
		if err != nil {
			xhttp.Error(c, toAPIError(err))
			return
		}
		xhttp.OkJson(c, res)
	}
}

// CancelOfferHandler withdraws an open offer for its maker.
func CancelOfferHandler(svcCtx *svc.ServerCtx, kind exchange.OfferKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := offerIDParam(c)
		if !ok {
			return
		}
		var req types.CancelOfferReq
		if err := c.ShouldBindJSON(&req); err != nil {
			xhttp.Error(c, errcode.ErrInvalidParams)
			return
		}
		if err := service.CancelOffer(c.Request.Context(), svcCtx, kind, id, req.Caller); err != nil {
			xhttp.Error(c, toAPIError(err))
			return
		}
		xhttp.OkJson(c, struct{}{})
	}
}

// OffersForTokenHandler lists the open offer ids of one kind on an asset.
func OffersForTokenHandler(svcCtx *svc.ServerCtx, kind exchange.OfferKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		collection := c.Query("collection_address")
		tokenID := c.Query("token_id")
		if collection == "" || tokenID == "" {
			xhttp.Error(c, errcode.ErrInvalidParams)
			return
		}
		res, err := service.OffersForToken(c.Request.Context(), svcCtx, kind, collection, tokenID)
		if err != nil {
			xhttp.Error(c, toAPIError(err))
			return
		}
		xhttp.OkJson(c, res)
	}
}

// CalculateFeeHandler quotes the protocol commission on an amount.
func CalculateFeeHandler(svcCtx *svc.ServerCtx) gin.HandlerFunc {
	return func(c *gin.Context) {
		amount := c.Query("amount")
		if amount == "" {
			xhttp.Error(c, errcode.ErrInvalidParams)
			return
		}
		res, err := service.CalculateFee(c.Request.Context(), svcCtx, amount)
		if err != nil {
			xhttp.Error(c, toAPIError(err))
			return
		}
		xhttp.OkJson(c, res)
	}
}

func offerIDParam(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		xhttp.Error(c, errcode.ErrInvalidParams)
		return 0, false
	}
	return id, true
}
