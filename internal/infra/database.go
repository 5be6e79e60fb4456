package infra

import (
	"fmt"

	"systmix/internal/model"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewLocalDatabase opens (or creates) the SQLite file backing the local
// mirror store and the pending action queue, then runs AutoMigrate so a fresh
// install gets its schema on first start. Keeping both the mirrored entities
// and pending_actions in one file lets an offline mutation and its queued
// action commit in a single transaction.
func NewLocalDatabase(path string) (*gorm.DB, error) {
	dsn := path + "?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open local database: %w", err)
	}

	// SQLite serializes writers; a single connection avoids SQLITE_BUSY
	// storms from concurrent bridge requests.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&model.Produto{},
		&model.Cliente{},
		&model.Comanda{},
		&model.ItemComanda{},
		&model.Pagamento{},
		&model.Caixa{},
		&model.PendingAction{},
		&model.SyncAlias{},
	); err != nil {
		return nil, fmt.Errorf("AutoMigrate: %w", err)
	}

	return db, nil
}
