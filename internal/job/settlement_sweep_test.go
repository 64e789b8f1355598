package job

import (
	"context"
	"testing"
	"time"

	"auctionsystem/internal/infrastructure/mail"
	"auctionsystem/internal/model"
	"auctionsystem/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 一轮扫描走完全程：OPEN 到期 -> CLOSED -> 结算入账
func TestSweepOnce(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	cfg := newTestConfig(3)

	seller := &model.User{Username: "sweep_seller", Email: "sweep_seller@example.com", Role: model.UserRoleSeller}
	require.NoError(t, db.Create(seller).Error)
	bidder := &model.User{Username: "sweep_bidder", Email: "sweep_bidder@example.com", Role: model.UserRoleBuyer}
	require.NoError(t, db.Create(bidder).Error)

	item := &model.AuctionItem{
		ItemNo:         "ITM-sweep-1",
		SellerID:       seller.ID,
		Title:          "Sony WH-1000XM5",
		StartingBid:    1000,
		MinIncrement:   100,
		CommissionRate: decimal.NewFromInt(10),
		CloseAt:        time.Now().Add(-time.Minute),
		Status:         model.AuctionStatusOpen,
	}
	require.NoError(t, db.Create(item).Error)

	bid := &model.Bid{
		BidNo:    "BID-sweep-1",
		ItemNo:   item.ItemNo,
		BidderID: bidder.ID,
		Amount:   2000,
	}
	require.NoError(t, db.Create(bid).Error)

	// 还没到截止时间的拍品不受影响
	openItem := &model.AuctionItem{
		ItemNo:         "ITM-sweep-2",
		SellerID:       seller.ID,
		Title:          "AirPods Pro",
		StartingBid:    500,
		MinIncrement:   50,
		CommissionRate: decimal.NewFromInt(10),
		CloseAt:        time.Now().Add(time.Hour),
		Status:         model.AuctionStatusOpen,
	}
	require.NoError(t, db.Create(openItem).Error)

	sweep := NewSettlementSweepJob(db, cfg, &mail.NopSender{})
	sweep.SweepOnce(ctx)

	auctionRepo := repository.NewAuctionRepository(db)

	settled, err := auctionRepo.GetByItemNo(ctx, item.ItemNo)
	require.NoError(t, err)
	assert.Equal(t, model.AuctionStatusSettled, settled.Status)
	require.NotNil(t, settled.WinnerID)
	assert.Equal(t, bidder.ID, *settled.WinnerID)

	stillOpen, err := auctionRepo.GetByItemNo(ctx, openItem.ItemNo)
	require.NoError(t, err)
	assert.Equal(t, model.AuctionStatusOpen, stillOpen.Status)

	// 成交价 2000，佣金 10% -> 卖家 1800
	sellerAccount, err := repository.NewAccountRepository(db).GetByUserID(ctx, seller.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1800), sellerAccount.Balance)

	// 再扫一轮什么都不会变
	sweep.SweepOnce(ctx)
	sellerAccount, err = repository.NewAccountRepository(db).GetByUserID(ctx, seller.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1800), sellerAccount.Balance)
}

// 无人出价的拍品被扫成流拍
func TestSweepOnceExpiresNoBidItem(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	cfg := newTestConfig(3)

	seller := &model.User{Username: "sweep_seller2", Email: "sweep_seller2@example.com", Role: model.UserRoleSeller}
	require.NoError(t, db.Create(seller).Error)

	item := &model.AuctionItem{
		ItemNo:         "ITM-sweep-3",
		SellerID:       seller.ID,
		Title:          "Kindle Paperwhite",
		StartingBid:    800,
		MinIncrement:   50,
		CommissionRate: decimal.NewFromInt(10),
		CloseAt:        time.Now().Add(-time.Minute),
		Status:         model.AuctionStatusOpen,
	}
	require.NoError(t, db.Create(item).Error)

	sweep := NewSettlementSweepJob(db, cfg, &mail.NopSender{})
	sweep.SweepOnce(ctx)

	expired, err := repository.NewAuctionRepository(db).GetByItemNo(ctx, item.ItemNo)
	require.NoError(t, err)
	assert.Equal(t, model.AuctionStatusExpired, expired.Status)
	assert.Nil(t, expired.WinnerID)
}
