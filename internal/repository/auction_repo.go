package repository

import (
	"context"
	"errors"
	"time"

	"auctionsystem/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrAuctionNotFound      = errors.New("拍品不存在")
	ErrAuctionStatusInvalid = errors.New("拍品状态不合法")
	ErrSettlementConflict   = errors.New("拍品已被并发结算")
	ErrAuctionSettled       = errors.New("拍品已结算，不允许删除")
)

type AuctionRepository struct {
	db *gorm.DB
}

func NewAuctionRepository(db *gorm.DB) *AuctionRepository {
	return &AuctionRepository{db: db}
}

func (r *AuctionRepository) Create(ctx context.Context, tx *gorm.DB, item *model.AuctionItem) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Create(item).Error
}

func (r *AuctionRepository) GetByItemNo(ctx context.Context, itemNo string) (*model.AuctionItem, error) {
	var item model.AuctionItem
	err := r.db.WithContext(ctx).Where("item_no = ?", itemNo).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAuctionNotFound
		}
		return nil, err
	}
	return &item, nil
}

// UpdateStatus 带状态机校验的条件更新
// WHERE 里带上 fromStatus，RowsAffected=0 说明状态已被别人改掉
func (r *AuctionRepository) UpdateStatus(ctx context.Context, tx *gorm.DB, itemNo string, fromStatus, toStatus string) error {
	if !model.CanTransitionTo(fromStatus, toStatus) {
		return ErrAuctionStatusInvalid
	}

	if tx == nil {
		tx = r.db
	}

	result := tx.WithContext(ctx).
		Model(&model.AuctionItem{}).
		Where("item_no = ? AND status = ?", itemNo, fromStatus).
		Updates(map[string]interface{}{
			"status":  toStatus,
			"version": gorm.Expr("version + 1"),
		})

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrAuctionStatusInvalid
	}

	return nil
}

// MarkSettled 结算提交点：CLOSED -> SETTLED，同时写入中标者和成交价
//
// 【关键点】sold 判断和置位在同一条条件 UPDATE 里完成
// 两个并发的结算任务处理同一个拍品时，只有一个能命中 status=CLOSED，
// 另一个拿到 RowsAffected=0，返回 ErrSettlementConflict，由调用方当作无操作处理
func (r *AuctionRepository) MarkSettled(ctx context.Context, tx *gorm.DB, itemNo string, winnerID int64, finalPrice int64) error {
	if tx == nil {
		tx = r.db
	}

	result := tx.WithContext(ctx).
		Model(&model.AuctionItem{}).
		Where("item_no = ? AND status = ?", itemNo, model.AuctionStatusClosed).
		Updates(map[string]interface{}{
			"status":      model.AuctionStatusSettled,
			"winner_id":   winnerID,
			"final_price": finalPrice,
			"version":     gorm.Expr("version + 1"),
		})

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrSettlementConflict
	}

	return nil
}

// MarkExpired 无人出价的拍品流拍：CLOSED -> EXPIRED，不写中标者、不动余额
func (r *AuctionRepository) MarkExpired(ctx context.Context, tx *gorm.DB, itemNo string) error {
	if tx == nil {
		tx = r.db
	}

	result := tx.WithContext(ctx).
		Model(&model.AuctionItem{}).
		Where("item_no = ? AND status = ?", itemNo, model.AuctionStatusClosed).
		Updates(map[string]interface{}{
			"status":  model.AuctionStatusExpired,
			"version": gorm.Expr("version + 1"),
		})

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrSettlementConflict
	}

	return nil
}

// GetDueOpenItems 查询已过截止时间、仍处于 OPEN 的拍品
func (r *AuctionRepository) GetDueOpenItems(ctx context.Context, now time.Time, limit int) ([]*model.AuctionItem, error) {
	var items []*model.AuctionItem
	err := r.db.WithContext(ctx).
		Where("status = ? AND close_at <= ?", model.AuctionStatusOpen, now).
		Limit(limit).
		Find(&items).Error
	return items, err
}

// GetClosedItems 查询待结算的拍品
func (r *AuctionRepository) GetClosedItems(ctx context.Context, limit int) ([]*model.AuctionItem, error) {
	var items []*model.AuctionItem
	err := r.db.WithContext(ctx).
		Where("status = ?", model.AuctionStatusClosed).
		Order("close_at ASC").
		Limit(limit).
		Find(&items).Error
	return items, err
}

// Verify 管理员审核：设置佣金比例并打审核标记
func (r *AuctionRepository) Verify(ctx context.Context, itemNo string, commissionRate decimal.Decimal) error {
	result := r.db.WithContext(ctx).
		Model(&model.AuctionItem{}).
		Where("item_no = ? AND status = ?", itemNo, model.AuctionStatusOpen).
		Updates(map[string]interface{}{
			"commission_rate": commissionRate,
			"verified":        true,
			"version":         gorm.Expr("version + 1"),
		})

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrAuctionNotFound
	}

	return nil
}

// Delete 管理员删除拍品，进入终态后拒绝
func (r *AuctionRepository) Delete(ctx context.Context, itemNo string) error {
	result := r.db.WithContext(ctx).
		Where("item_no = ? AND status IN ?", itemNo, []string{model.AuctionStatusOpen, model.AuctionStatusClosed}).
		Delete(&model.AuctionItem{})

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		item, err := r.GetByItemNo(ctx, itemNo)
		if err != nil {
			return err
		}
		if item.Status == model.AuctionStatusSettled || item.Status == model.AuctionStatusExpired {
			return ErrAuctionSettled
		}
		return ErrAuctionNotFound
	}

	return nil
}

func (r *AuctionRepository) List(ctx context.Context, status string, page, pageSize int) ([]*model.AuctionItem, int64, error) {
	var items []*model.AuctionItem
	var total int64

	query := r.db.WithContext(ctx).Model(&model.AuctionItem{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	err := query.Count(&total).Error
	if err != nil {
		return nil, 0, err
	}

	err = query.
		Order("close_at ASC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&items).Error

	return items, total, err
}

func (r *AuctionRepository) ListBySellerID(ctx context.Context, sellerID int64, page, pageSize int) ([]*model.AuctionItem, int64, error) {
	var items []*model.AuctionItem
	var total int64

	query := r.db.WithContext(ctx).Model(&model.AuctionItem{}).Where("seller_id = ?", sellerID)

	err := query.Count(&total).Error
	if err != nil {
		return nil, 0, err
	}

	err = query.
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&items).Error

	return items, total, err
}
