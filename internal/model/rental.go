package model

import (
	"time"
)

const (
	RentalStatusActive   = "ACTIVE"   // 租赁中
	RentalStatusReturned = "RETURNED" // 已归还
)

// RentalProduct 租赁商品表
// available_qty 的扣减必须走带库存条件的原子更新，防止并发超卖
type RentalProduct struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductNo    string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"product_no"`
	Name         string    `gorm:"type:varchar(128);not null" json:"name"`
	Category     string    `gorm:"type:varchar(64);index" json:"category"`
	DailyRate    int64     `gorm:"not null" json:"daily_rate"`     // 日租金（分）
	TotalQty     int       `gorm:"not null" json:"total_qty"`      // 总库存
	AvailableQty int       `gorm:"not null" json:"available_qty"`  // 可租库存
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (RentalProduct) TableName() string {
	return "rental_product"
}

// RentalOrder 租赁订单表
type RentalOrder struct {
	ID        int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	RentalNo  string     `gorm:"type:varchar(64);uniqueIndex;not null" json:"rental_no"`
	ProductNo string     `gorm:"type:varchar(64);index;not null" json:"product_no"`
	RenterID  int64      `gorm:"index;not null" json:"renter_id"`
	Qty       int        `gorm:"not null" json:"qty"`
	Days      int        `gorm:"not null" json:"days"`
	Fee       int64      `gorm:"not null" json:"fee"` // 租金总额（分）
	Status    string     `gorm:"type:varchar(20);index;not null" json:"status"`
	ReturnAt  *time.Time `json:"return_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (RentalOrder) TableName() string {
	return "rental_order"
}
