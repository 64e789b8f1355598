package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"auctionsystem/internal/config"
	"auctionsystem/internal/infrastructure/mail"
	"auctionsystem/internal/model"
	"auctionsystem/internal/repository"
	"auctionsystem/pkg/idgen"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SettlementService 结算服务
//
// 【关键点】结算是整个系统最核心的操作，需要保证：
// 1. 恰好一次：同一个拍品无论被多少个扫描实例处理，只会产生一次入账
// 2. 原子性：状态置位、卖家入账、平台佣金入账、流水记录必须同时成功或同时失败
// 3. 失败可重试：入账失败整个事务回滚，拍品停留在 CLOSED，下一轮扫描重试
//
// 恰好一次的实现不依赖锁，而是把 CLOSED -> SETTLED 的条件更新当作提交点：
// 两个并发结算只有一个能命中 status=CLOSED，另一个拿到 ErrSettlementConflict，
// 按无操作处理。这和库存扣减用的条件更新是同一个套路。
type SettlementService struct {
	db          *gorm.DB
	cfg         *config.Config
	mailSender  mail.Sender
	auctionRepo *repository.AuctionRepository
	bidRepo     *repository.BidRepository
	accountRepo *repository.AccountRepository
	ledgerRepo  *repository.LedgerRepository
	outboxRepo  *repository.OutboxRepository
	userRepo    *repository.UserRepository
}

func NewSettlementService(db *gorm.DB, cfg *config.Config, mailSender mail.Sender) *SettlementService {
	return &SettlementService{
		db:          db,
		cfg:         cfg,
		mailSender:  mailSender,
		auctionRepo: repository.NewAuctionRepository(db),
		bidRepo:     repository.NewBidRepository(db),
		accountRepo: repository.NewAccountRepository(db),
		ledgerRepo:  repository.NewLedgerRepository(db),
		outboxRepo:  repository.NewOutboxRepository(db),
		userRepo:    repository.NewUserRepository(db),
	}
}

// CloseDueItems 截止阶段：把已过截止时间的 OPEN 拍品转为 CLOSED
// 条件更新保证每个拍品只被关一次，出价服务在截止时刻后严格拒绝新出价，
// 所以进入 CLOSED 后出价集合不会再变化
func (s *SettlementService) CloseDueItems(ctx context.Context, limit int) (int, error) {
	items, err := s.auctionRepo.GetDueOpenItems(ctx, time.Now(), limit)
	if err != nil {
		return 0, fmt.Errorf("查询到期拍品失败: %w", err)
	}

	closedCount := 0
	for _, item := range items {
		err := s.auctionRepo.UpdateStatus(ctx, nil, item.ItemNo, model.AuctionStatusOpen, model.AuctionStatusClosed)
		if err != nil {
			// 已被其他实例关掉，跳过即可
			continue
		}
		closedCount++
	}

	return closedCount, nil
}

// SettleClosedItems 结算阶段：逐个结算 CLOSED 拍品
// 单个拍品失败只记日志，不影响同一轮里的其他拍品
func (s *SettlementService) SettleClosedItems(ctx context.Context, limit int) (int, error) {
	items, err := s.auctionRepo.GetClosedItems(ctx, limit)
	if err != nil {
		return 0, fmt.Errorf("查询待结算拍品失败: %w", err)
	}

	settledCount := 0
	for _, item := range items {
		if err := s.SettleItem(ctx, item); err != nil {
			log.Printf("[Settlement] 结算失败: itemNo=%s, err=%v", item.ItemNo, err)
			continue
		}
		settledCount++
	}

	return settledCount, nil
}

// SettleItem 结算单个拍品
//
// 流程：
// 1. 取最高出价（金额相同先出价者赢）
// 2. 无人出价 -> 流拍（EXPIRED），不动任何余额
// 3. 有出价 -> 单个数据库事务内：
//    a. CLOSED -> SETTLED 条件更新，同时写入中标者和成交价（提交点）
//    b. 卖家入账 成交价-佣金，记 PROCEEDS 流水
//    c. 平台佣金账户入账 佣金，记 COMMISSION 流水
//    d. 写 auction_settled 发件箱消息
// 4. 事务提交后尽力而为地给中标者发邮件，失败只记日志
func (s *SettlementService) SettleItem(ctx context.Context, item *model.AuctionItem) error {
	if item.Status != model.AuctionStatusClosed {
		return repository.ErrAuctionStatusInvalid
	}

	highest, err := s.bidRepo.GetHighest(ctx, item.ItemNo)
	if err != nil {
		return fmt.Errorf("查询最高出价失败: %w", err)
	}

	if highest == nil {
		return s.expireItem(ctx, item)
	}

	commission, proceeds := SplitCommission(highest.Amount, item.CommissionRate)

	sellerAccount, err := s.accountRepo.GetOrCreate(ctx, item.SellerID)
	if err != nil {
		return fmt.Errorf("获取卖家账户失败: %w", err)
	}

	adminAccount, err := s.accountRepo.GetOrCreate(ctx, s.cfg.Business.AdminUserID)
	if err != nil {
		return fmt.Errorf("获取平台账户失败: %w", err)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		// 提交点：命不中 status=CLOSED 说明已被并发结算
		if err := s.auctionRepo.MarkSettled(ctx, tx, item.ItemNo, highest.BidderID, highest.Amount); err != nil {
			return err
		}

		if err := s.accountRepo.IncreaseBalance(ctx, tx, item.SellerID, proceeds); err != nil {
			return fmt.Errorf("卖家入账失败: %w", err)
		}

		sellerEntry := &model.LedgerEntry{
			TransactionNo: idgen.GenerateTransactionNo(),
			UserID:        item.SellerID,
			RefNo:         item.ItemNo,
			Amount:        proceeds,
			Type:          model.LedgerTypeProceeds,
			BalanceBefore: sellerAccount.Balance,
			BalanceAfter:  sellerAccount.Balance + proceeds,
			Remark:        fmt.Sprintf("拍卖成交-%s-%s", item.ItemNo, item.Title),
		}
		if err := s.ledgerRepo.Create(ctx, tx, sellerEntry); err != nil {
			return fmt.Errorf("记录卖家流水失败: %w", err)
		}

		if err := s.accountRepo.IncreaseCommission(ctx, tx, s.cfg.Business.AdminUserID, commission); err != nil {
			return fmt.Errorf("佣金入账失败: %w", err)
		}

		adminEntry := &model.LedgerEntry{
			TransactionNo: idgen.GenerateTransactionNo(),
			UserID:        s.cfg.Business.AdminUserID,
			RefNo:         item.ItemNo,
			Amount:        commission,
			Type:          model.LedgerTypeCommission,
			BalanceBefore: adminAccount.CommissionBalance,
			BalanceAfter:  adminAccount.CommissionBalance + commission,
			Remark:        fmt.Sprintf("平台佣金-%s-%s%%", item.ItemNo, item.CommissionRate.String()),
		}
		if err := s.ledgerRepo.Create(ctx, tx, adminEntry); err != nil {
			return fmt.Errorf("记录佣金流水失败: %w", err)
		}

		msgPayload := map[string]interface{}{
			"item_no":     item.ItemNo,
			"title":       item.Title,
			"seller_id":   item.SellerID,
			"winner_id":   highest.BidderID,
			"final_price": highest.Amount,
			"commission":  commission,
			"proceeds":    proceeds,
			"settled_at":  time.Now().Format(time.RFC3339),
		}
		payloadBytes, _ := json.Marshal(msgPayload)

		outboxMsg := &model.OutboxMessage{
			MessageKey: item.ItemNo,
			Topic:      s.cfg.Kafka.Topic.AuctionSettled,
			Payload:    string(payloadBytes),
			Status:     model.OutboxStatusPending,
		}
		if err := s.outboxRepo.Create(ctx, tx, outboxMsg); err != nil {
			return fmt.Errorf("写入消息失败: %w", err)
		}

		return nil
	})

	if err != nil {
		if errors.Is(err, repository.ErrSettlementConflict) {
			// 并发结算，对方已完成，按无操作处理
			log.Printf("[Settlement] 拍品已被并发结算，跳过: itemNo=%s", item.ItemNo)
			return nil
		}
		return err
	}

	log.Printf("[Settlement] 结算成功: itemNo=%s, winnerID=%d, finalPrice=%d, proceeds=%d, commission=%d",
		item.ItemNo, highest.BidderID, highest.Amount, proceeds, commission)

	// 通知失败绝不回滚结算
	s.notifyWinner(ctx, item, highest)

	return nil
}

// expireItem 无人出价的拍品流拍
func (s *SettlementService) expireItem(ctx context.Context, item *model.AuctionItem) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.auctionRepo.MarkExpired(ctx, tx, item.ItemNo); err != nil {
			return err
		}

		msgPayload := map[string]interface{}{
			"item_no":    item.ItemNo,
			"title":      item.Title,
			"seller_id":  item.SellerID,
			"expired_at": time.Now().Format(time.RFC3339),
		}
		payloadBytes, _ := json.Marshal(msgPayload)

		outboxMsg := &model.OutboxMessage{
			MessageKey: item.ItemNo,
			Topic:      s.cfg.Kafka.Topic.AuctionExpired,
			Payload:    string(payloadBytes),
			Status:     model.OutboxStatusPending,
		}
		return s.outboxRepo.Create(ctx, tx, outboxMsg)
	})

	if err != nil {
		if errors.Is(err, repository.ErrSettlementConflict) {
			return nil
		}
		return err
	}

	log.Printf("[Settlement] 拍品流拍: itemNo=%s", item.ItemNo)
	return nil
}

// notifyWinner 给中标者发邮件，尽力而为
func (s *SettlementService) notifyWinner(ctx context.Context, item *model.AuctionItem, winningBid *model.Bid) {
	winner, err := s.userRepo.GetByID(ctx, winningBid.BidderID)
	if err != nil {
		log.Printf("[Settlement] 查询中标者失败，跳过通知: itemNo=%s, bidderID=%d, err=%v",
			item.ItemNo, winningBid.BidderID, err)
		return
	}

	subject := fmt.Sprintf("恭喜中标：%s", item.Title)
	body := fmt.Sprintf("您对拍品「%s」的出价 %.2f 元已中标，请及时完成后续交易。",
		item.Title, float64(winningBid.Amount)/100)

	if err := s.mailSender.Send(winner.Email, subject, body); err != nil {
		log.Printf("[Settlement] 中标通知发送失败: itemNo=%s, to=%s, err=%v", item.ItemNo, winner.Email, err)
	}
}

// SplitCommission 佣金拆分
// 佣金向下取整到分，卖家拿剩余部分，两者之和恰好等于成交价
func SplitCommission(amount int64, rate decimal.Decimal) (commission int64, proceeds int64) {
	commission = decimal.NewFromInt(amount).
		Mul(rate).
		Div(decimal.NewFromInt(100)).
		Floor().
		IntPart()
	proceeds = amount - commission
	return commission, proceeds
}
