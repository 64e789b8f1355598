package repository

import (
	"testing"

	"auctionsystem/internal/model"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB 内存 SQLite 测试库
// 单连接（MaxOpenConns=1），保证所有语句落在同一个内存数据库上
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Account{},
		&model.AuctionItem{},
		&model.Bid{},
		&model.LedgerEntry{},
		&model.RentalProduct{},
		&model.RentalOrder{},
		&model.OutboxMessage{},
	))

	return db
}
