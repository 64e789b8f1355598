package service

import (
	"context"
	"strings"
	"testing"

	"auctionsystem/internal/model"
	"auctionsystem/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func createRentalProduct(t *testing.T, db *gorm.DB, productNo string, dailyRate int64, qty int) *model.RentalProduct {
	t.Helper()
	product := &model.RentalProduct{
		ProductNo:    productNo,
		Name:         "MacBook Pro 14",
		Category:     "laptop",
		DailyRate:    dailyRate,
		TotalQty:     qty,
		AvailableQty: qty,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func fundAccount(t *testing.T, db *gorm.DB, userID, amount int64) {
	t.Helper()
	ctx := context.Background()
	accountRepo := repository.NewAccountRepository(db)
	_, err := accountRepo.GetOrCreate(ctx, userID)
	require.NoError(t, err)
	require.NoError(t, accountRepo.IncreaseBalance(ctx, nil, userID, amount))
}

func TestReserve(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	renter := createTestUser(t, db, "renter_r1", "renter_r1@example.com")
	fundAccount(t, db, renter.ID, 10000)
	createRentalProduct(t, db, "PRD-r1", 500, 5)

	svc := NewRentalService(db, newTestConfig())
	resp, err := svc.Reserve(ctx, &ReserveRequest{
		RenterID: renter.ID, ProductNo: "PRD-r1", Qty: 2, Days: 3,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.RentalNo)
	// 日租金 500 * 2 件 * 3 天
	assert.Equal(t, int64(3000), resp.Fee)

	product, err := repository.NewRentalRepository(db).GetProductByNo(ctx, "PRD-r1")
	require.NoError(t, err)
	assert.Equal(t, 3, product.AvailableQty)

	assert.Equal(t, int64(7000), accountBalance(t, db, renter.ID).Balance)

	// 租金流水是负数，关联租单号
	entry, err := repository.NewLedgerRepository(db).GetByRefNoAndType(ctx, resp.RentalNo, model.LedgerTypeRental)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, int64(-3000), entry.Amount)

	order, err := repository.NewRentalRepository(db).GetOrderByNo(ctx, resp.RentalNo)
	require.NoError(t, err)
	assert.Equal(t, model.RentalStatusActive, order.Status)
}

func TestReserveBalanceNotEnough(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	renter := createTestUser(t, db, "renter_r2", "renter_r2@example.com")
	fundAccount(t, db, renter.ID, 100)
	createRentalProduct(t, db, "PRD-r2", 500, 5)

	svc := NewRentalService(db, newTestConfig())
	_, err := svc.Reserve(ctx, &ReserveRequest{
		RenterID: renter.ID, ProductNo: "PRD-r2", Qty: 1, Days: 1,
	})
	assert.ErrorIs(t, err, repository.ErrBalanceNotEnough)

	// 下单失败不占库存
	product, err := repository.NewRentalRepository(db).GetProductByNo(ctx, "PRD-r2")
	require.NoError(t, err)
	assert.Equal(t, 5, product.AvailableQty)
}

func TestReserveStockNotEnough(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	renter := createTestUser(t, db, "renter_r3", "renter_r3@example.com")
	fundAccount(t, db, renter.ID, 100000)
	createRentalProduct(t, db, "PRD-r3", 500, 2)

	svc := NewRentalService(db, newTestConfig())
	_, err := svc.Reserve(ctx, &ReserveRequest{
		RenterID: renter.ID, ProductNo: "PRD-r3", Qty: 3, Days: 1,
	})
	assert.ErrorIs(t, err, repository.ErrStockNotEnough)

	// 事务回滚，余额分文未动
	assert.Equal(t, int64(100000), accountBalance(t, db, renter.ID).Balance)
}

func TestReserveParamInvalid(t *testing.T) {
	db := newTestDB(t)
	svc := NewRentalService(db, newTestConfig())

	_, err := svc.Reserve(context.Background(), &ReserveRequest{
		RenterID: 1, ProductNo: "PRD-x", Qty: 0, Days: 1,
	})
	assert.ErrorIs(t, err, ErrRentalParamInvalid)

	_, err = svc.Reserve(context.Background(), &ReserveRequest{
		RenterID: 1, ProductNo: "PRD-x", Qty: 1, Days: -1,
	})
	assert.ErrorIs(t, err, ErrRentalParamInvalid)
}

func TestReturn(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	renter := createTestUser(t, db, "renter_r4", "renter_r4@example.com")
	fundAccount(t, db, renter.ID, 10000)
	createRentalProduct(t, db, "PRD-r4", 500, 5)

	svc := NewRentalService(db, newTestConfig())
	resp, err := svc.Reserve(ctx, &ReserveRequest{
		RenterID: renter.ID, ProductNo: "PRD-r4", Qty: 2, Days: 1,
	})
	require.NoError(t, err)

	require.NoError(t, svc.Return(ctx, resp.RentalNo))

	product, err := repository.NewRentalRepository(db).GetProductByNo(ctx, "PRD-r4")
	require.NoError(t, err)
	assert.Equal(t, 5, product.AvailableQty)

	order, err := repository.NewRentalRepository(db).GetOrderByNo(ctx, resp.RentalNo)
	require.NoError(t, err)
	assert.Equal(t, model.RentalStatusReturned, order.Status)

	// 重复归还被条件更新拦下，库存不会多还
	err = svc.Return(ctx, resp.RentalNo)
	assert.ErrorIs(t, err, repository.ErrRentalReturned)

	product, err = repository.NewRentalRepository(db).GetProductByNo(ctx, "PRD-r4")
	require.NoError(t, err)
	assert.Equal(t, 5, product.AvailableQty)
}

func TestCreateProduct(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	svc := NewRentalService(db, newTestConfig())
	product, err := svc.CreateProduct(ctx, &CreateProductRequest{
		Name: "Canon EOS R6", Category: "camera", DailyRate: 2000, TotalQty: 3,
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(product.ProductNo, "PRD"))
	assert.Equal(t, product.TotalQty, product.AvailableQty)
}
