package repository

import (
	"context"
	"testing"

	"auctionsystem/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountIncrease(t *testing.T) {
	db := newTestDB(t)
	repo := NewAccountRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &model.Account{UserID: 1, Balance: 0}))

	require.NoError(t, repo.IncreaseBalance(ctx, nil, 1, 1080))
	require.NoError(t, repo.IncreaseCommission(ctx, nil, 1, 120))

	account, err := repo.GetByUserID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1080), account.Balance)
	assert.Equal(t, int64(120), account.CommissionBalance)

	// 账户不存在时入账失败而不是静默丢失
	err = repo.IncreaseBalance(ctx, nil, 999, 100)
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestAccountDeduct(t *testing.T) {
	db := newTestDB(t)
	repo := NewAccountRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &model.Account{UserID: 2, Balance: 1000}))
	account, err := repo.GetByUserID(ctx, 2)
	require.NoError(t, err)

	// 余额不足
	err = repo.Deduct(ctx, nil, 2, 2000, account.Version)
	assert.ErrorIs(t, err, ErrBalanceNotEnough)

	// 版本号过期
	err = repo.Deduct(ctx, nil, 2, 500, account.Version+1)
	assert.ErrorIs(t, err, ErrOptimisticLock)

	// 正常扣款
	require.NoError(t, repo.Deduct(ctx, nil, 2, 500, account.Version))

	account, err = repo.GetByUserID(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(500), account.Balance)
}

func TestAccountGetOrCreate(t *testing.T) {
	db := newTestDB(t)
	repo := NewAccountRepository(db)
	ctx := context.Background()

	first, err := repo.GetOrCreate(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(0), first.Balance)

	// 再次调用拿到同一个账户
	second, err := repo.GetOrCreate(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}
