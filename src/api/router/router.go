package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/ProjectsTask/EasySwapExchange/src/api/middleware"
	v1 "github.com/ProjectsTask/EasySwapExchange/src/api/v1"
	"github.com/ProjectsTask/EasySwapExchange/src/common/utils"
	"github.com/ProjectsTask/EasySwapExchange/src/exchange"
	"github.com/ProjectsTask/EasySwapExchange/src/service/svc"
)

func NewRouter(svcCtx *svc.ServerCtx) *gin.Engine {
	gin.ForceConsoleColor()
	gin.SetMode(gin.ReleaseMode)

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("address", utils.AddressValidator)
	}

	r := gin.New()
	r.Use(middleware.RecoverMiddleware())
	r.Use(middleware.RLog())

	r.Use(cors.New(cors.Config{
		AllowAllOrigins:  true,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "X-CSRF-Token", "Authorization", "AccessToken", "Token"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type", "Access-Control-Allow-Origin", "Access-Control-Allow-Headers"},
		AllowCredentials: true,
		MaxAge:           1 * time.Hour,
	}))
	loadV1(r, svcCtx)

	return r
}

func loadV1(r *gin.Engine, svcCtx *svc.ServerCtx) {
	api := r.Group("/api/v1")

	offers := api.Group("/offers")
	{
		offers.POST("/bids", v1.PlaceBidHandler(svcCtx))
		offers.POST("/asks", v1.PlaceAskHandler(svcCtx))
		offers.GET("/bids", v1.OffersForTokenHandler(svcCtx, exchange.KindBid))
		offers.GET("/asks", v1.OffersForTokenHandler(svcCtx, exchange.KindAsk))

		offers.POST("/bids/:id/accept", v1.AcceptBidHandler(svcCtx))
		offers.POST("/asks/:id/buy", v1.BuyNowHandler(svcCtx))
		offers.POST("/asks/:id/buy-native", v1.BuyNowNativeHandler(svcCtx))

		offers.POST("/bids/:id/cancel", v1.CancelOfferHandler(svcCtx, exchange.KindBid))
		offers.POST("/asks/:id/cancel", v1.CancelOfferHandler(svcCtx, exchange.KindAsk))
	}

	api.GET("/fee", v1.CalculateFeeHandler(svcCtx))
	api.GET("/activities", v1.ActivityHandler(svcCtx))
}
