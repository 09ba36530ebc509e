package main

import (
	"flag"

	"github.com/ProjectsTask/EasySwapExchange/src/api/router"
	"github.com/ProjectsTask/EasySwapExchange/src/app"
	"github.com/ProjectsTask/EasySwapExchange/src/config"
	"github.com/ProjectsTask/EasySwapExchange/src/service/svc"
)

const defaultConfigPath = "./config/config.toml"

func main() {
	conf := flag.String("conf", defaultConfigPath, "conf file path")
	flag.Parse()

	c, err := config.UnmarshalConfig(*conf)
	if err != nil {
		panic(err)
	}

	serverCtx, err := svc.NewServiceContext(c)
	if err != nil {
		panic(err)
	}

	r := router.NewRouter(serverCtx)
	platform, err := app.NewPlatform(c, r, serverCtx)
	if err != nil {
		panic(err)
	}
	platform.Start()
}
