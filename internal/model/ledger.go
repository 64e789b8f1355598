package model

import (
	"time"
)

// ============================================================================
// 账户流水类型常量
// ============================================================================

const (
	LedgerTypeRecharge   = "RECHARGE"   // 充值
	LedgerTypeProceeds   = "PROCEEDS"   // 结算入账（卖家所得）
	LedgerTypeCommission = "COMMISSION" // 结算佣金（平台所得）
	LedgerTypeRental     = "RENTAL"     // 租赁扣款
)

// ============================================================================
// 账户流水实体
// ============================================================================

// LedgerEntry 账户流水表
// 每一笔余额变动记一条带符号的流水，是对账的核心依据
//
// 【重要】流水表设计原则：
// 1. 只追加，不修改，不删除 —— 保证审计可追溯
// 2. 每笔流水必须关联业务单号（拍品号/租单号/充值单号）—— 便于对账
// 3. 记录变动前后余额 —— 便于校验余额一致性
// 4. 流水写入必须与触发它的余额变动在同一个数据库事务里
type LedgerEntry struct {
	ID            int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	TransactionNo string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"transaction_no"` // 流水号（全局唯一）
	UserID        int64     `gorm:"index;not null" json:"user_id"`                               // 用户ID
	RefNo         string    `gorm:"type:varchar(64);index;not null" json:"ref_no"`               // 关联业务单号
	Amount        int64     `gorm:"not null" json:"amount"`                                      // 金额（正数入账，负数出账）
	Type          string    `gorm:"type:varchar(20);not null" json:"type"`                       // 流水类型
	BalanceBefore int64     `gorm:"not null" json:"balance_before"`                              // 变动前余额
	BalanceAfter  int64     `gorm:"not null" json:"balance_after"`                               // 变动后余额
	Remark        string    `gorm:"type:varchar(256)" json:"remark"`                             // 备注
	CreatedAt     time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (LedgerEntry) TableName() string {
	return "ledger_entry"
}
