package repository

import (
	"context"
	"errors"
	"time"

	"auctionsystem/internal/model"

	"gorm.io/gorm"
)

var (
	ErrProductNotFound = errors.New("租赁商品不存在")
	ErrStockNotEnough  = errors.New("库存不足")
	ErrRentalNotFound  = errors.New("租赁订单不存在")
	ErrRentalReturned  = errors.New("租赁订单已归还")
)

type RentalRepository struct {
	db *gorm.DB
}

func NewRentalRepository(db *gorm.DB) *RentalRepository {
	return &RentalRepository{db: db}
}

func (r *RentalRepository) CreateProduct(ctx context.Context, product *model.RentalProduct) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *RentalRepository) GetProductByNo(ctx context.Context, productNo string) (*model.RentalProduct, error) {
	var product model.RentalProduct
	err := r.db.WithContext(ctx).Where("product_no = ?", productNo).First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return &product, nil
}

// ReserveStock 库存扣减
//
// 【关键点】"够不够"的判断和扣减在同一条条件 UPDATE 里完成：
//
//	UPDATE rental_product SET available_qty = available_qty - ?
//	WHERE product_no = ? AND available_qty >= ?
//
// 并发下不可能超卖：K 个请求抢 N 件库存，数据库逐条执行条件更新，
// 恰好 N 条命中，其余拿到 RowsAffected=0
func (r *RentalRepository) ReserveStock(ctx context.Context, tx *gorm.DB, productNo string, qty int) error {
	if tx == nil {
		tx = r.db
	}

	result := tx.WithContext(ctx).
		Model(&model.RentalProduct{}).
		Where("product_no = ? AND available_qty >= ?", productNo, qty).
		UpdateColumn("available_qty", gorm.Expr("available_qty - ?", qty))

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		// 区分商品不存在和库存不足，查询必须走同一个事务
		var count int64
		if err := tx.WithContext(ctx).
			Model(&model.RentalProduct{}).
			Where("product_no = ?", productNo).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrProductNotFound
		}
		return ErrStockNotEnough
	}

	return nil
}

// ReleaseStock 归还库存，原子自增
func (r *RentalRepository) ReleaseStock(ctx context.Context, tx *gorm.DB, productNo string, qty int) error {
	if tx == nil {
		tx = r.db
	}

	result := tx.WithContext(ctx).
		Model(&model.RentalProduct{}).
		Where("product_no = ?", productNo).
		UpdateColumn("available_qty", gorm.Expr("available_qty + ?", qty))

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

func (r *RentalRepository) ListProducts(ctx context.Context, page, pageSize int) ([]*model.RentalProduct, int64, error) {
	var products []*model.RentalProduct
	var total int64

	query := r.db.WithContext(ctx).Model(&model.RentalProduct{})

	err := query.Count(&total).Error
	if err != nil {
		return nil, 0, err
	}

	err = query.
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&products).Error

	return products, total, err
}

func (r *RentalRepository) CreateOrder(ctx context.Context, tx *gorm.DB, order *model.RentalOrder) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Create(order).Error
}

func (r *RentalRepository) GetOrderByNo(ctx context.Context, rentalNo string) (*model.RentalOrder, error) {
	var order model.RentalOrder
	err := r.db.WithContext(ctx).Where("rental_no = ?", rentalNo).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRentalNotFound
		}
		return nil, err
	}
	return &order, nil
}

// MarkOrderReturned 条件更新：ACTIVE -> RETURNED，重复归还拿到 RowsAffected=0
func (r *RentalRepository) MarkOrderReturned(ctx context.Context, tx *gorm.DB, rentalNo string) error {
	if tx == nil {
		tx = r.db
	}

	now := time.Now()
	result := tx.WithContext(ctx).
		Model(&model.RentalOrder{}).
		Where("rental_no = ? AND status = ?", rentalNo, model.RentalStatusActive).
		Updates(map[string]interface{}{
			"status":    model.RentalStatusReturned,
			"return_at": &now,
		})

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrRentalReturned
	}

	return nil
}
