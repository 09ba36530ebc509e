package app

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ProjectsTask/EasySwapExchange/src/common/xzap"
	"github.com/ProjectsTask/EasySwapExchange/src/config"
	"github.com/ProjectsTask/EasySwapExchange/src/service/svc"
)

// Platform bundles the config, router and service context of one process.
type Platform struct {
	config    *config.Config
	router    *gin.Engine
	serverCtx *svc.ServerCtx
}

func NewPlatform(config *config.Config, router *gin.Engine, serverCtx *svc.ServerCtx) (*Platform, error) {
	return &Platform{
		config:    config,
		router:    router,
		serverCtx: serverCtx,
	}, nil
}

// Start runs the HTTP server. It blocks until the listener fails.
func (p *Platform) Start() {
	xzap.WithContext(context.Background()).Info("EasySwap-Exchange run", zap.String("port", p.config.Api.Port))
	if err := p.router.Run(p.config.Api.Port); err != nil {
		panic(err)
	}
}
