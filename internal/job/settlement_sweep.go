package job

import (
	"context"
	"log"
	"time"

	"auctionsystem/internal/config"
	"auctionsystem/internal/infrastructure/mail"
	"auctionsystem/internal/service"

	"gorm.io/gorm"
)

// SettlementSweepJob 结算扫描任务
//
// 固定间隔轮询，不做事件驱动。拍品截止后最多等一个扫描间隔才会结算，
// 这是文档化的时延上界，不是缺陷。
//
// 任务本身不做任何并发控制：多个服务实例各跑各的扫描也是安全的，
// 恰好一次由结算服务里 CLOSED -> SETTLED 的条件更新保证
type SettlementSweepJob struct {
	db        *gorm.DB
	cfg       *config.Config
	svc       *service.SettlementService
	stopCh    chan struct{}
	interval  time.Duration
	batchSize int
}

func NewSettlementSweepJob(db *gorm.DB, cfg *config.Config, mailSender mail.Sender) *SettlementSweepJob {
	interval := time.Duration(cfg.Business.SweepIntervalSeconds) * time.Second
	if interval <= 0 {
		interval = 60 * time.Second
	}
	batchSize := cfg.Business.SweepBatchSize
	if batchSize <= 0 {
		batchSize = 100
	}

	return &SettlementSweepJob{
		db:        db,
		cfg:       cfg,
		svc:       service.NewSettlementService(db, cfg, mailSender),
		stopCh:    make(chan struct{}),
		interval:  interval,
		batchSize: batchSize,
	}
}

func (j *SettlementSweepJob) Start(ctx context.Context) {
	log.Println("[SettlementSweep] 结算扫描任务启动")

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("[SettlementSweep] 收到停止信号，任务退出")
			return
		case <-j.stopCh:
			log.Println("[SettlementSweep] 任务停止")
			return
		case <-ticker.C:
			j.SweepOnce(ctx)
		}
	}
}

func (j *SettlementSweepJob) Stop() {
	close(j.stopCh)
}

// SweepOnce 一轮扫描：先关到期的，再结算已关的
func (j *SettlementSweepJob) SweepOnce(ctx context.Context) {
	closedCount, err := j.svc.CloseDueItems(ctx, j.batchSize)
	if err != nil {
		log.Printf("[SettlementSweep] 截止阶段失败: %v", err)
	} else if closedCount > 0 {
		log.Printf("[SettlementSweep] 本轮截止 %d 个拍品", closedCount)
	}

	settledCount, err := j.svc.SettleClosedItems(ctx, j.batchSize)
	if err != nil {
		log.Printf("[SettlementSweep] 结算阶段失败: %v", err)
		return
	}
	if settledCount > 0 {
		log.Printf("[SettlementSweep] 本轮结算 %d 个拍品", settledCount)
	}
}
