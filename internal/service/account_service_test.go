package service

import (
	"context"
	"testing"

	"auctionsystem/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecharge(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	user := createTestUser(t, db, "recharge_u1", "recharge_u1@example.com")

	svc := NewAccountService(db)
	require.NoError(t, svc.Recharge(ctx, user.ID, 5000))
	require.NoError(t, svc.Recharge(ctx, user.ID, 3000))

	account, err := svc.GetAccount(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(8000), account.Balance)

	entries, total, err := svc.ListLedger(ctx, user.ID, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	for _, entry := range entries {
		assert.Equal(t, model.LedgerTypeRecharge, entry.Type)
		assert.NotEmpty(t, entry.TransactionNo)
	}
}

func TestRechargeInvalidAmount(t *testing.T) {
	db := newTestDB(t)
	svc := NewAccountService(db)

	assert.Error(t, svc.Recharge(context.Background(), 1, 0))
	assert.Error(t, svc.Recharge(context.Background(), 1, -100))
}

// 首次查询账户时自动开户
func TestGetAccountAutoCreate(t *testing.T) {
	db := newTestDB(t)
	svc := NewAccountService(db)

	account, err := svc.GetAccount(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, int64(42), account.UserID)
	assert.Equal(t, int64(0), account.Balance)
	assert.Equal(t, int64(0), account.CommissionBalance)
}
