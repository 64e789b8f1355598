package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	AuctionStatusOpen    = "OPEN"    // 竞拍中
	AuctionStatusClosed  = "CLOSED"  // 已截止，待结算
	AuctionStatusSettled = "SETTLED" // 已结算，有成交
	AuctionStatusExpired = "EXPIRED" // 已截止，无人出价，流拍
)

// ValidStatusTransitions 拍品状态机
// 结算只能发生在 CLOSED 状态上，SETTLED / EXPIRED 是终态
var ValidStatusTransitions = map[string][]string{
	AuctionStatusOpen:   {AuctionStatusClosed},
	AuctionStatusClosed: {AuctionStatusSettled, AuctionStatusExpired},
}

func CanTransitionTo(currentStatus, targetStatus string) bool {
	allowedStatuses, exists := ValidStatusTransitions[currentStatus]
	if !exists {
		return false
	}
	for _, s := range allowedStatuses {
		if s == targetStatus {
			return true
		}
	}
	return false
}

// AuctionItem 拍品表
//
// 【不变式】
// 1. status=SETTLED 时 winner_id 和 final_price 必须同时存在
// 2. status=EXPIRED 时 winner_id 和 final_price 必须同时为空
// 3. 进入终态后不允许删除
type AuctionItem struct {
	ID             int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	ItemNo         string          `gorm:"type:varchar(64);uniqueIndex;not null" json:"item_no"`
	SellerID       int64           `gorm:"index;not null" json:"seller_id"`
	Title          string          `gorm:"type:varchar(128);not null" json:"title"`
	Description    string          `gorm:"type:varchar(1024)" json:"description"`
	Category       string          `gorm:"type:varchar(64);index" json:"category"`
	StartingBid    int64           `gorm:"not null" json:"starting_bid"`              // 起拍价（分）
	BuyNowPrice    *int64          `json:"buy_now_price"`                             // 一口价（可选）
	MinIncrement   int64           `gorm:"not null" json:"min_increment"`             // 最小加价幅度（分）
	CommissionRate decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"commission_rate"` // 平台佣金比例（百分比）
	CloseAt        time.Time       `gorm:"index;not null" json:"close_at"`            // 截止时间
	Status         string          `gorm:"type:varchar(20);index;not null" json:"status"`
	WinnerID       *int64          `json:"winner_id"`    // 中标者，结算时写入
	FinalPrice     *int64          `json:"final_price"`  // 成交价（分），结算时写入
	Verified       bool            `gorm:"not null;default:false" json:"verified"` // 管理员审核标记
	Version        int             `gorm:"not null;default:0" json:"version"`
	CreatedAt      time.Time       `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (AuctionItem) TableName() string {
	return "auction_item"
}
