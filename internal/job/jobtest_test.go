package job

import (
	"testing"

	"auctionsystem/internal/config"
	"auctionsystem/internal/model"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

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

func newTestConfig(maxRetry int) *config.Config {
	return &config.Config{
		Kafka: config.KafkaConfig{
			Topic: config.KafkaTopicConfig{
				AuctionSettled: "auction_settled",
				AuctionExpired: "auction_expired",
			},
		},
		Business: config.BusinessConfig{
			SweepIntervalSeconds:  1,
			SweepBatchSize:        100,
			AdminUserID:           990,
			DefaultCommissionRate: "10",
			MaxRetryCount:         maxRetry,
		},
	}
}
