package svc

import (
	"gorm.io/gorm"

	"github.com/ProjectsTask/EasySwapExchange/src/dao"
	"github.com/ProjectsTask/EasySwapExchange/src/exchange"
	"github.com/ProjectsTask/EasySwapExchange/src/ledger"
	"github.com/ProjectsTask/EasySwapExchange/src/stores/xkv"
)

// CtxConfig builds a ServerCtx through options.
type CtxConfig struct {
	db      *gorm.DB
	dao     *dao.Dao
	KvStore *xkv.Store
	store   *exchange.Store
	engine  *exchange.Engine
	ledger  *ledger.Ledger
}

type CtxOption func(conf *CtxConfig)

func NewServerCtx(options ...CtxOption) *ServerCtx {
	c := &CtxConfig{}
	for _, opt := range options {
		opt(c)
	}
	return &ServerCtx{
		DB:      c.db,
		KvStore: c.KvStore,
		Dao:     c.dao,
		Store:   c.store,
		Engine:  c.engine,
		Ledger:  c.ledger,
	}
}

func WithKv(kv *xkv.Store) CtxOption {
	return func(conf *CtxConfig) {
		conf.KvStore = kv
	}
}

func WithDB(db *gorm.DB) CtxOption {
	return func(conf *CtxConfig) {
		conf.db = db
	}
}

func WithDao(dao *dao.Dao) CtxOption {
	return func(conf *CtxConfig) {
		conf.dao = dao
	}
}

func WithEngine(store *exchange.Store, engine *exchange.Engine, ledger *ledger.Ledger) CtxOption {
	return func(conf *CtxConfig) {
		conf.store = store
		conf.engine = engine
		conf.ledger = ledger
	}
}
