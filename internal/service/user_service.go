package service

import (
	"context"
	"errors"
	"fmt"

	"auctionsystem/internal/model"
	"auctionsystem/internal/repository"

	"gorm.io/gorm"
)

var ErrRoleInvalid = errors.New("角色不合法")

type UserService struct {
	db          *gorm.DB
	userRepo    *repository.UserRepository
	accountRepo *repository.AccountRepository
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{
		db:          db,
		userRepo:    repository.NewUserRepository(db),
		accountRepo: repository.NewAccountRepository(db),
	}
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Role     string `json:"role"`
}

// Register 注册用户并顺带开好账户
func (s *UserService) Register(ctx context.Context, req *RegisterRequest) (*model.User, error) {
	role := req.Role
	if role == "" {
		role = model.UserRoleBuyer
	}
	switch role {
	case model.UserRoleBuyer, model.UserRoleSeller, model.UserRoleAdmin:
	default:
		return nil, ErrRoleInvalid
	}

	if existing, err := s.userRepo.GetByUsername(ctx, req.Username); err == nil && existing != nil {
		return nil, repository.ErrUsernameDuplicate
	}

	user := &model.User{
		Username: req.Username,
		Email:    req.Email,
		Role:     role,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("创建用户失败: %w", err)
	}

	if _, err := s.accountRepo.GetOrCreate(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("开立账户失败: %w", err)
	}

	return user, nil
}

func (s *UserService) GetUser(ctx context.Context, id int64) (*model.User, error) {
	return s.userRepo.GetByID(ctx, id)
}
