package service

import (
	"context"
	"testing"

	"auctionsystem/internal/config"
	"auctionsystem/internal/model"
	"auctionsystem/internal/repository"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testAdminUserID = int64(990)

// newTestDB 内存 SQLite 测试库，单连接保证所有语句落在同一个内存数据库上
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

func newTestConfig() *config.Config {
	return &config.Config{
		Kafka: config.KafkaConfig{
			Topic: config.KafkaTopicConfig{
				AuctionSettled: "auction_settled",
				AuctionExpired: "auction_expired",
			},
		},
		Business: config.BusinessConfig{
			SweepIntervalSeconds:  60,
			SweepBatchSize:        100,
			AdminUserID:           testAdminUserID,
			DefaultCommissionRate: "10",
			MaxRetryCount:         3,
		},
	}
}

// mockMailSender 邮件发送的 mock，验证通知的收件人和失败隔离
type mockMailSender struct {
	mock.Mock
}

func (m *mockMailSender) Send(to, subject, body string) error {
	args := m.Called(to, subject, body)
	return args.Error(0)
}

func createTestUser(t *testing.T, db *gorm.DB, username, email string) *model.User {
	t.Helper()
	user := &model.User{Username: username, Email: email, Role: model.UserRoleBuyer}
	require.NoError(t, repository.NewUserRepository(db).Create(context.Background(), user))
	return user
}

func accountBalance(t *testing.T, db *gorm.DB, userID int64) *model.Account {
	t.Helper()
	account, err := repository.NewAccountRepository(db).GetOrCreate(context.Background(), userID)
	require.NoError(t, err)
	return account
}
