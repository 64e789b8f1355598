package service

import (
	"context"
	"errors"
	"fmt"

	"auctionsystem/internal/model"
	"auctionsystem/internal/repository"
	"auctionsystem/pkg/idgen"

	"gorm.io/gorm"
)

type AccountService struct {
	db          *gorm.DB
	accountRepo *repository.AccountRepository
	ledgerRepo  *repository.LedgerRepository
}

func NewAccountService(db *gorm.DB) *AccountService {
	return &AccountService{
		db:          db,
		accountRepo: repository.NewAccountRepository(db),
		ledgerRepo:  repository.NewLedgerRepository(db),
	}
}

func (s *AccountService) GetAccount(ctx context.Context, userID int64) (*model.Account, error) {
	return s.accountRepo.GetOrCreate(ctx, userID)
}

// Recharge 充值
// 入账和流水记录在同一个事务里，保证账随流水走
func (s *AccountService) Recharge(ctx context.Context, userID int64, amount int64) error {
	if amount <= 0 {
		return errors.New("充值金额必须大于0")
	}

	account, err := s.accountRepo.GetOrCreate(ctx, userID)
	if err != nil {
		return err
	}

	transactionNo := idgen.GenerateTransactionNo()

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.accountRepo.IncreaseBalance(ctx, tx, userID, amount); err != nil {
			return fmt.Errorf("充值入账失败: %w", err)
		}

		entry := &model.LedgerEntry{
			TransactionNo: transactionNo,
			UserID:        userID,
			RefNo:         transactionNo,
			Amount:        amount,
			Type:          model.LedgerTypeRecharge,
			BalanceBefore: account.Balance,
			BalanceAfter:  account.Balance + amount,
			Remark:        "账户充值",
		}
		if err := s.ledgerRepo.Create(ctx, tx, entry); err != nil {
			return fmt.Errorf("记录流水失败: %w", err)
		}

		return nil
	})
}

func (s *AccountService) ListLedger(ctx context.Context, userID int64, page, pageSize int) ([]*model.LedgerEntry, int64, error) {
	return s.ledgerRepo.ListByUserID(ctx, userID, page, pageSize)
}
