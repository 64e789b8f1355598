package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"auctionsystem/internal/config"
	"auctionsystem/internal/infrastructure/lock"
	"auctionsystem/internal/model"
	"auctionsystem/internal/repository"
	"auctionsystem/pkg/idgen"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrAuctionNotOpen = errors.New("竞拍已截止")
	ErrBidTooLow      = errors.New("出价不满足最小加价幅度")
)

type BiddingService struct {
	db          *gorm.DB
	redisClient *redis.Client
	cfg         *config.Config
	auctionRepo *repository.AuctionRepository
	bidRepo     *repository.BidRepository
	userRepo    *repository.UserRepository
}

func NewBiddingService(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *BiddingService {
	return &BiddingService{
		db:          db,
		redisClient: redisClient,
		cfg:         cfg,
		auctionRepo: repository.NewAuctionRepository(db),
		bidRepo:     repository.NewBidRepository(db),
		userRepo:    repository.NewUserRepository(db),
	}
}

type PlaceBidRequest struct {
	BidderID int64  `json:"bidder_id" binding:"required"`
	ItemNo   string `json:"item_no" binding:"required"`
	Amount   int64  `json:"amount" binding:"required,gt=0"`
}

type PlaceBidResponse struct {
	BidNo   string `json:"bid_no"`
	ItemNo  string `json:"item_no"`
	Amount  int64  `json:"amount"`
	Message string `json:"message,omitempty"`
}

// PlaceBid 出价
//
// 【关键点】出价接受的充要条件：竞拍仍在进行 且 金额满足加价幅度
// 1. 竞拍是否进行以服务端时钟为准，now >= close_at 严格拒绝，
//    所以结算扫描读到的出价集合不会再有合法的新增
// 2. "读最高价 + 校验 + 写入"在按拍品维度的分布式锁里串行执行，
//    两个并发出价不可能同时通过加价幅度校验
// 3. 出价记录本身只追加，写入不需要再加锁
func (s *BiddingService) PlaceBid(ctx context.Context, req *PlaceBidRequest) (*PlaceBidResponse, error) {
	item, err := s.auctionRepo.GetByItemNo(ctx, req.ItemNo)
	if err != nil {
		return nil, err
	}

	if item.Status != model.AuctionStatusOpen || !time.Now().Before(item.CloseAt) {
		return nil, ErrAuctionNotOpen
	}

	if _, err := s.userRepo.GetByID(ctx, req.BidderID); err != nil {
		return nil, err
	}

	// 获取按拍品维度的出价锁
	bidLock := lock.NewBidLock(s.redisClient, req.ItemNo, uuid.NewString())
	err = bidLock.Lock(ctx, 50*time.Millisecond, 40)
	if err != nil {
		return nil, fmt.Errorf("系统繁忙，请稍后重试: %w", err)
	}
	defer bidLock.Unlock(ctx)

	// 拿到锁后重新读拍品，截止时间和状态都可能在等锁期间发生变化
	item, err = s.auctionRepo.GetByItemNo(ctx, req.ItemNo)
	if err != nil {
		return nil, err
	}
	if item.Status != model.AuctionStatusOpen || !time.Now().Before(item.CloseAt) {
		return nil, ErrAuctionNotOpen
	}

	highest, err := s.bidRepo.GetHighest(ctx, req.ItemNo)
	if err != nil {
		return nil, fmt.Errorf("查询最高出价失败: %w", err)
	}

	// 第一口出价只需达到起拍价，之后必须比当前最高价至少高一个加价幅度
	threshold := item.StartingBid
	if highest != nil {
		threshold = highest.Amount + item.MinIncrement
	}

	if req.Amount < threshold {
		return nil, fmt.Errorf("%w: 最低出价 %d", ErrBidTooLow, threshold)
	}

	bid := &model.Bid{
		BidNo:    idgen.GenerateBidNo(),
		ItemNo:   req.ItemNo,
		BidderID: req.BidderID,
		Amount:   req.Amount,
	}

	if err := s.bidRepo.Create(ctx, nil, bid); err != nil {
		return nil, fmt.Errorf("写入出价失败: %w", err)
	}

	return &PlaceBidResponse{
		BidNo:   bid.BidNo,
		ItemNo:  bid.ItemNo,
		Amount:  bid.Amount,
		Message: "出价成功",
	}, nil
}

// ListBids 查询拍品的全部出价（按金额降序、时间升序）
func (s *BiddingService) ListBids(ctx context.Context, itemNo string) ([]*model.Bid, error) {
	if _, err := s.auctionRepo.GetByItemNo(ctx, itemNo); err != nil {
		return nil, err
	}
	return s.bidRepo.ListByItemNo(ctx, itemNo)
}
