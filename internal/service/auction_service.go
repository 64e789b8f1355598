package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"auctionsystem/internal/config"
	"auctionsystem/internal/model"
	"auctionsystem/internal/repository"
	"auctionsystem/pkg/idgen"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrCommissionRateInvalid = errors.New("佣金比例必须在 0-100 之间")
	ErrCloseTimeInvalid      = errors.New("截止时间必须晚于当前时间")
)

type AuctionService struct {
	db          *gorm.DB
	cfg         *config.Config
	auctionRepo *repository.AuctionRepository
	userRepo    *repository.UserRepository
}

func NewAuctionService(db *gorm.DB, cfg *config.Config) *AuctionService {
	return &AuctionService{
		db:          db,
		cfg:         cfg,
		auctionRepo: repository.NewAuctionRepository(db),
		userRepo:    repository.NewUserRepository(db),
	}
}

type CreateAuctionRequest struct {
	SellerID     int64  `json:"seller_id" binding:"required"`
	Title        string `json:"title" binding:"required"`
	Description  string `json:"description"`
	Category     string `json:"category"`
	StartingBid  int64  `json:"starting_bid" binding:"required,gt=0"`
	BuyNowPrice  *int64 `json:"buy_now_price"`
	MinIncrement int64  `json:"min_increment" binding:"required,gt=0"`
	CloseAt      string `json:"close_at" binding:"required"` // RFC3339
}

func (s *AuctionService) CreateAuction(ctx context.Context, req *CreateAuctionRequest) (*model.AuctionItem, error) {
	if _, err := s.userRepo.GetByID(ctx, req.SellerID); err != nil {
		return nil, err
	}

	closeAt, err := time.Parse(time.RFC3339, req.CloseAt)
	if err != nil {
		return nil, fmt.Errorf("截止时间格式不合法: %w", err)
	}
	if !closeAt.After(time.Now()) {
		return nil, ErrCloseTimeInvalid
	}

	// 未审核前先挂默认佣金比例，管理员审核时可以改
	rate, err := decimal.NewFromString(s.cfg.Business.DefaultCommissionRate)
	if err != nil {
		return nil, fmt.Errorf("默认佣金比例配置不合法: %w", err)
	}

	item := &model.AuctionItem{
		ItemNo:         idgen.GenerateItemNo(),
		SellerID:       req.SellerID,
		Title:          req.Title,
		Description:    req.Description,
		Category:       req.Category,
		StartingBid:    req.StartingBid,
		BuyNowPrice:    req.BuyNowPrice,
		MinIncrement:   req.MinIncrement,
		CommissionRate: rate,
		CloseAt:        closeAt,
		Status:         model.AuctionStatusOpen,
	}

	if err := s.auctionRepo.Create(ctx, nil, item); err != nil {
		return nil, fmt.Errorf("创建拍品失败: %w", err)
	}

	return item, nil
}

func (s *AuctionService) GetAuction(ctx context.Context, itemNo string) (*model.AuctionItem, error) {
	return s.auctionRepo.GetByItemNo(ctx, itemNo)
}

func (s *AuctionService) ListAuctions(ctx context.Context, status string, page, pageSize int) ([]*model.AuctionItem, int64, error) {
	return s.auctionRepo.List(ctx, status, page, pageSize)
}

func (s *AuctionService) ListSellerAuctions(ctx context.Context, sellerID int64, page, pageSize int) ([]*model.AuctionItem, int64, error) {
	return s.auctionRepo.ListBySellerID(ctx, sellerID, page, pageSize)
}

// VerifyAuction 管理员审核：确认拍品并设置佣金比例
func (s *AuctionService) VerifyAuction(ctx context.Context, itemNo string, commissionRate string) error {
	rate, err := decimal.NewFromString(commissionRate)
	if err != nil {
		return fmt.Errorf("佣金比例格式不合法: %w", err)
	}
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(100)) {
		return ErrCommissionRateInvalid
	}

	return s.auctionRepo.Verify(ctx, itemNo, rate)
}

// DeleteAuction 管理员删除拍品，已进入终态的拍品拒绝删除
func (s *AuctionService) DeleteAuction(ctx context.Context, itemNo string) error {
	return s.auctionRepo.Delete(ctx, itemNo)
}
