package dao

import (
	"context"

	"gorm.io/gorm"

	"github.com/ProjectsTask/EasySwapExchange/src/stores/xkv"
)

// Dao is the data access layer for the activity journal. KvStore caches
// expensive counts and may be nil when the service runs without Redis.
type Dao struct {
	ctx context.Context

	DB      *gorm.DB
	KvStore *xkv.Store
}

func New(ctx context.Context, db *gorm.DB, kvStore *xkv.Store) *Dao {
	return &Dao{
		ctx:     ctx,
		DB:      db,
		KvStore: kvStore,
	}
}

// Migrate creates the journal tables.
func (d *Dao) Migrate() error {
	return d.DB.AutoMigrate(&Activity{})
}
