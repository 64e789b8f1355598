package model

import (
	"time"
)

const (
	UserRoleBuyer  = "BUYER"
	UserRoleSeller = "SELLER"
	UserRoleAdmin  = "ADMIN"
)

// User 用户表
// email 用于中标通知，role 只区分管理端权限，不参与结算逻辑
type User struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Username  string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"username"`
	Email     string    `gorm:"type:varchar(128);not null" json:"email"`
	Role      string    `gorm:"type:varchar(20);not null;default:BUYER" json:"role"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string {
	return "user"
}
