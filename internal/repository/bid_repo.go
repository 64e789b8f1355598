package repository

import (
	"context"
	"errors"

	"auctionsystem/internal/model"

	"gorm.io/gorm"
)

type BidRepository struct {
	db *gorm.DB
}

func NewBidRepository(db *gorm.DB) *BidRepository {
	return &BidRepository{db: db}
}

func (r *BidRepository) Create(ctx context.Context, tx *gorm.DB, bid *model.Bid) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Create(bid).Error
}

// GetHighest 查询拍品当前最高出价
//
// 排序规则即平局裁决规则：金额相同时，先出价者赢
// （amount DESC, created_at ASC, id ASC —— id 兜底同一毫秒内的写入顺序）
func (r *BidRepository) GetHighest(ctx context.Context, itemNo string) (*model.Bid, error) {
	var bid model.Bid
	err := r.db.WithContext(ctx).
		Where("item_no = ?", itemNo).
		Order("amount DESC, created_at ASC, id ASC").
		First(&bid).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &bid, nil
}

func (r *BidRepository) ListByItemNo(ctx context.Context, itemNo string) ([]*model.Bid, error) {
	var bids []*model.Bid
	err := r.db.WithContext(ctx).
		Where("item_no = ?", itemNo).
		Order("amount DESC, created_at ASC, id ASC").
		Find(&bids).Error
	return bids, err
}
