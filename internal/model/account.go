package model

import (
	"time"
)

// Account 用户账户表
// balance 记录卖家的可提余额，commission_balance 记录平台账户的佣金收入
// 两个字段只允许通过结算/充值事务里的原子自增修改，不允许读-改-写
type Account struct {
	ID                int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID            int64     `gorm:"uniqueIndex;not null" json:"user_id"`
	Balance           int64     `gorm:"not null;default:0" json:"balance"`            // 可用余额（分）
	CommissionBalance int64     `gorm:"not null;default:0" json:"commission_balance"` // 佣金余额（分），仅平台账户使用
	Version           int       `gorm:"not null;default:0" json:"version"`            // 乐观锁版本号
	CreatedAt         time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Account) TableName() string {
	return "account"
}
