package model

import (
	"time"
)

// Bid 出价记录表
//
// 【重要】只追加，不修改，不删除
// 出价的合法性（加价幅度、截止时间）在写入前校验，表里的每一条记录都是有效出价
type Bid struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	BidNo     string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"bid_no"`
	ItemNo    string    `gorm:"type:varchar(64);index;not null" json:"item_no"`
	BidderID  int64     `gorm:"index;not null" json:"bidder_id"`
	Amount    int64     `gorm:"not null" json:"amount"` // 出价金额（分）
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (Bid) TableName() string {
	return "bid"
}
