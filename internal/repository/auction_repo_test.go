package repository

import (
	"context"
	"testing"
	"time"

	"auctionsystem/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestItem(itemNo, status string, closeAt time.Time) *model.AuctionItem {
	return &model.AuctionItem{
		ItemNo:         itemNo,
		SellerID:       1,
		Title:          "测试拍品",
		StartingBid:    1000,
		MinIncrement:   100,
		CommissionRate: decimal.NewFromInt(10),
		CloseAt:        closeAt,
		Status:         status,
	}
}

func TestAuctionUpdateStatus(t *testing.T) {
	db := newTestDB(t)
	repo := NewAuctionRepository(db)
	ctx := context.Background()

	item := newTestItem("ITM-1", model.AuctionStatusOpen, time.Now().Add(-time.Minute))
	require.NoError(t, repo.Create(ctx, nil, item))

	// 非法跃迁被状态机拒绝
	err := repo.UpdateStatus(ctx, nil, "ITM-1", model.AuctionStatusOpen, model.AuctionStatusSettled)
	assert.ErrorIs(t, err, ErrAuctionStatusInvalid)

	// OPEN -> CLOSED
	require.NoError(t, repo.UpdateStatus(ctx, nil, "ITM-1", model.AuctionStatusOpen, model.AuctionStatusClosed))

	// 第二次关同一个拍品命不中条件
	err = repo.UpdateStatus(ctx, nil, "ITM-1", model.AuctionStatusOpen, model.AuctionStatusClosed)
	assert.ErrorIs(t, err, ErrAuctionStatusInvalid)

	got, err := repo.GetByItemNo(ctx, "ITM-1")
	require.NoError(t, err)
	assert.Equal(t, model.AuctionStatusClosed, got.Status)
}

func TestAuctionMarkSettledConflict(t *testing.T) {
	db := newTestDB(t)
	repo := NewAuctionRepository(db)
	ctx := context.Background()

	item := newTestItem("ITM-2", model.AuctionStatusClosed, time.Now().Add(-time.Minute))
	require.NoError(t, repo.Create(ctx, nil, item))

	require.NoError(t, repo.MarkSettled(ctx, nil, "ITM-2", 42, 1200))

	got, err := repo.GetByItemNo(ctx, "ITM-2")
	require.NoError(t, err)
	assert.Equal(t, model.AuctionStatusSettled, got.Status)
	require.NotNil(t, got.WinnerID)
	require.NotNil(t, got.FinalPrice)
	assert.Equal(t, int64(42), *got.WinnerID)
	assert.Equal(t, int64(1200), *got.FinalPrice)

	// 并发结算只有一个赢家，第二次拿到冲突
	err = repo.MarkSettled(ctx, nil, "ITM-2", 43, 1300)
	assert.ErrorIs(t, err, ErrSettlementConflict)

	// 结算后也不能再流拍
	err = repo.MarkExpired(ctx, nil, "ITM-2")
	assert.ErrorIs(t, err, ErrSettlementConflict)
}

func TestAuctionMarkExpired(t *testing.T) {
	db := newTestDB(t)
	repo := NewAuctionRepository(db)
	ctx := context.Background()

	item := newTestItem("ITM-3", model.AuctionStatusClosed, time.Now().Add(-time.Minute))
	require.NoError(t, repo.Create(ctx, nil, item))

	require.NoError(t, repo.MarkExpired(ctx, nil, "ITM-3"))

	got, err := repo.GetByItemNo(ctx, "ITM-3")
	require.NoError(t, err)
	assert.Equal(t, model.AuctionStatusExpired, got.Status)
	assert.Nil(t, got.WinnerID)
	assert.Nil(t, got.FinalPrice)
}

func TestAuctionDeleteSettledRejected(t *testing.T) {
	db := newTestDB(t)
	repo := NewAuctionRepository(db)
	ctx := context.Background()

	item := newTestItem("ITM-4", model.AuctionStatusClosed, time.Now().Add(-time.Minute))
	require.NoError(t, repo.Create(ctx, nil, item))
	require.NoError(t, repo.MarkSettled(ctx, nil, "ITM-4", 42, 1200))

	err := repo.Delete(ctx, "ITM-4")
	assert.ErrorIs(t, err, ErrAuctionSettled)

	// 未结算的可以删
	open := newTestItem("ITM-5", model.AuctionStatusOpen, time.Now().Add(time.Hour))
	require.NoError(t, repo.Create(ctx, nil, open))
	require.NoError(t, repo.Delete(ctx, "ITM-5"))

	_, err = repo.GetByItemNo(ctx, "ITM-5")
	assert.ErrorIs(t, err, ErrAuctionNotFound)
}

func TestGetDueOpenItems(t *testing.T) {
	db := newTestDB(t)
	repo := NewAuctionRepository(db)
	ctx := context.Background()

	due := newTestItem("ITM-6", model.AuctionStatusOpen, time.Now().Add(-time.Minute))
	notDue := newTestItem("ITM-7", model.AuctionStatusOpen, time.Now().Add(time.Hour))
	alreadyClosed := newTestItem("ITM-8", model.AuctionStatusClosed, time.Now().Add(-time.Minute))
	require.NoError(t, repo.Create(ctx, nil, due))
	require.NoError(t, repo.Create(ctx, nil, notDue))
	require.NoError(t, repo.Create(ctx, nil, alreadyClosed))

	items, err := repo.GetDueOpenItems(ctx, time.Now(), 100)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "ITM-6", items[0].ItemNo)

	closed, err := repo.GetClosedItems(ctx, 100)
	require.NoError(t, err)
	require.Len(t, closed, 1)
	assert.Equal(t, "ITM-8", closed[0].ItemNo)
}
