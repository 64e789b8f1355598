package service

import (
	"context"
	"errors"
	"fmt"

	"auctionsystem/internal/config"
	"auctionsystem/internal/model"
	"auctionsystem/internal/repository"
	"auctionsystem/pkg/idgen"

	"gorm.io/gorm"
)

var ErrRentalParamInvalid = errors.New("租赁数量和天数必须大于0")

type RentalService struct {
	db          *gorm.DB
	cfg         *config.Config
	rentalRepo  *repository.RentalRepository
	accountRepo *repository.AccountRepository
	ledgerRepo  *repository.LedgerRepository
	userRepo    *repository.UserRepository
}

func NewRentalService(db *gorm.DB, cfg *config.Config) *RentalService {
	return &RentalService{
		db:          db,
		cfg:         cfg,
		rentalRepo:  repository.NewRentalRepository(db),
		accountRepo: repository.NewAccountRepository(db),
		ledgerRepo:  repository.NewLedgerRepository(db),
		userRepo:    repository.NewUserRepository(db),
	}
}

type ReserveRequest struct {
	RenterID  int64  `json:"renter_id" binding:"required"`
	ProductNo string `json:"product_no" binding:"required"`
	Qty       int    `json:"qty" binding:"required,gt=0"`
	Days      int    `json:"days" binding:"required,gt=0"`
}

type ReserveResponse struct {
	RentalNo string `json:"rental_no"`
	Fee      int64  `json:"fee"`
	Message  string `json:"message,omitempty"`
}

// Reserve 租赁下单
//
// 【关键点】库存判断和扣减走一条带 available_qty >= ? 条件的原子 UPDATE，
// 这是防止并发超卖的唯一手段，绝不允许先查库存够不够、再另起一条语句扣减。
// 扣库存、扣租金、记流水、建租单在同一个事务里，租金不足时回滚会把库存还回去
func (s *RentalService) Reserve(ctx context.Context, req *ReserveRequest) (*ReserveResponse, error) {
	if req.Qty <= 0 || req.Days <= 0 {
		return nil, ErrRentalParamInvalid
	}

	if _, err := s.userRepo.GetByID(ctx, req.RenterID); err != nil {
		return nil, err
	}

	product, err := s.rentalRepo.GetProductByNo(ctx, req.ProductNo)
	if err != nil {
		return nil, err
	}

	fee := product.DailyRate * int64(req.Qty) * int64(req.Days)

	account, err := s.accountRepo.GetOrCreate(ctx, req.RenterID)
	if err != nil {
		return nil, fmt.Errorf("获取账户信息失败: %w", err)
	}
	if account.Balance < fee {
		return nil, repository.ErrBalanceNotEnough
	}

	rentalNo := idgen.GenerateRentalNo()

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.rentalRepo.ReserveStock(ctx, tx, req.ProductNo, req.Qty); err != nil {
			return err
		}

		if err := s.accountRepo.Deduct(ctx, tx, req.RenterID, fee, account.Version); err != nil {
			return err
		}

		entry := &model.LedgerEntry{
			TransactionNo: idgen.GenerateTransactionNo(),
			UserID:        req.RenterID,
			RefNo:         rentalNo,
			Amount:        -fee,
			Type:          model.LedgerTypeRental,
			BalanceBefore: account.Balance,
			BalanceAfter:  account.Balance - fee,
			Remark:        fmt.Sprintf("租赁-%s-%s", req.ProductNo, product.Name),
		}
		if err := s.ledgerRepo.Create(ctx, tx, entry); err != nil {
			return fmt.Errorf("记录流水失败: %w", err)
		}

		order := &model.RentalOrder{
			RentalNo:  rentalNo,
			ProductNo: req.ProductNo,
			RenterID:  req.RenterID,
			Qty:       req.Qty,
			Days:      req.Days,
			Fee:       fee,
			Status:    model.RentalStatusActive,
		}
		if err := s.rentalRepo.CreateOrder(ctx, tx, order); err != nil {
			return fmt.Errorf("创建租赁订单失败: %w", err)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return &ReserveResponse{
		RentalNo: rentalNo,
		Fee:      fee,
		Message:  "租赁成功",
	}, nil
}

// Return 归还
// 订单状态的条件更新和库存归还在同一个事务里，重复归还是无操作
func (s *RentalService) Return(ctx context.Context, rentalNo string) error {
	order, err := s.rentalRepo.GetOrderByNo(ctx, rentalNo)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.rentalRepo.MarkOrderReturned(ctx, tx, rentalNo); err != nil {
			return err
		}
		return s.rentalRepo.ReleaseStock(ctx, tx, order.ProductNo, order.Qty)
	})
}

type CreateProductRequest struct {
	Name      string `json:"name" binding:"required"`
	Category  string `json:"category"`
	DailyRate int64  `json:"daily_rate" binding:"required,gt=0"`
	TotalQty  int    `json:"total_qty" binding:"required,gt=0"`
}

func (s *RentalService) CreateProduct(ctx context.Context, req *CreateProductRequest) (*model.RentalProduct, error) {
	product := &model.RentalProduct{
		ProductNo:    idgen.GenerateProductNo(),
		Name:         req.Name,
		Category:     req.Category,
		DailyRate:    req.DailyRate,
		TotalQty:     req.TotalQty,
		AvailableQty: req.TotalQty,
	}

	if err := s.rentalRepo.CreateProduct(ctx, product); err != nil {
		return nil, fmt.Errorf("创建租赁商品失败: %w", err)
	}

	return product, nil
}

func (s *RentalService) ListProducts(ctx context.Context, page, pageSize int) ([]*model.RentalProduct, int64, error) {
	return s.rentalRepo.ListProducts(ctx, page, pageSize)
}
