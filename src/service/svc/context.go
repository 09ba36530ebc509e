package svc

import (
	"context"

	"github.com/pkg/errors"
	"github.com/zeromicro/go-zero/core/stores/cache"
	"github.com/zeromicro/go-zero/core/stores/kv"
	"github.com/zeromicro/go-zero/core/stores/redis"
	"gorm.io/gorm"

	"github.com/ProjectsTask/EasySwapExchange/src/common/utils"
	"github.com/ProjectsTask/EasySwapExchange/src/common/xzap"
	"github.com/ProjectsTask/EasySwapExchange/src/config"
	"github.com/ProjectsTask/EasySwapExchange/src/dao"
	"github.com/ProjectsTask/EasySwapExchange/src/exchange"
	"github.com/ProjectsTask/EasySwapExchange/src/ledger"
	"github.com/ProjectsTask/EasySwapExchange/src/stores/gdb"
	"github.com/ProjectsTask/EasySwapExchange/src/stores/xkv"
)

// ServerCtx bundles everything the handlers need: config, persistence, the
// offer store and the settlement engine with its ledger.
type ServerCtx struct {
	C  *config.Config
	DB *gorm.DB

	Dao     *dao.Dao
	KvStore *xkv.Store

	Store  *exchange.Store
	Engine *exchange.Engine
	Ledger *ledger.Ledger
}

// NewServiceContext wires the whole service from config: logger, database,
// optional redis cache, the genesis-seeded ledger and the engine on top.
func NewServiceContext(c *config.Config) (*ServerCtx, error) {
	if _, err := xzap.SetUp(c.Log); err != nil {
		return nil, errors.Wrap(err, "failed on set up logger")
	}

	var store *xkv.Store
	if c.Kv != nil && len(c.Kv.Redis) > 0 {
		var kvConf kv.KvConf
		for _, con := range c.Kv.Redis {
			kvConf = append(kvConf, cache.NodeConf{
				RedisConf: redis.RedisConf{
					Host: con.Host,
					Type: con.Type,
					Pass: con.Pass,
				},
				Weight: 1,
			})
		}
		store = xkv.NewStore(kvConf)
	}

	db, err := gdb.NewDB(c.DB)
	if err != nil {
		return nil, errors.Wrap(err, "failed on open database")
	}

	d := dao.New(context.Background(), db, store)
	if err := d.Migrate(); err != nil {
		return nil, errors.Wrap(err, "failed on migrate journal tables")
	}

	operator, err := utils.ParseAddress(c.Exchange.OperatorAddress)
	if err != nil {
		return nil, errors.Wrap(err, "failed on parse operator address")
	}

	l, err := seedLedger(operator, c.Ledger)
	if err != nil {
		return nil, errors.Wrap(err, "failed on seed ledger")
	}

	offerStore := exchange.NewStore()
	engine, err := exchange.New(
		exchange.Config{
			CommissionRateBps: c.Exchange.CommissionRateBps,
			Operator:          operator,
		},
		offerStore,
		l, l, l.Native(), l, l,
		exchange.WithJournal(l),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed on build settlement engine")
	}

	serverCtx := NewServerCtx(
		WithDB(db),
		WithKv(store),
		WithDao(d),
		WithEngine(offerStore, engine, l),
	)
	serverCtx.C = c
	return serverCtx, nil
}
