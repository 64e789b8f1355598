package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// ============================================================================
// 分布式锁实现
// ============================================================================
//
// 【为什么出价需要分布式锁？】
//
// 场景：两个用户同时对同一个拍品出价，当前最高价 1000，最小加价 100
//
// 如果没有分布式锁：
//   goroutine1: 读最高价=1000 -> 校验 1100 >= 1100 通过 -> 写入出价 1100
//   goroutine2: 读最高价=1000 -> 校验 1100 >= 1100 通过 -> 写入出价 1100
//   两条 1100 的出价都被接受，第二条并没有满足加价幅度！
//
// 加了按拍品维度的分布式锁：
//   goroutine1: 获取锁 -> 读最高价=1000 -> 写入 1100 -> 释放锁
//   goroutine2: 等待锁 -> 读最高价=1100 -> 1100 < 1200，拒绝
//
// 【Redis 分布式锁原理】
//
// 加锁：SET key value NX EX timeout
//   - NX: 只有 key 不存在时才设置（保证互斥）
//   - EX: 设置过期时间（防止死锁）
//   - value: 锁持有者标识（释放时验证，防止误删别人的锁）
//
// 释放锁：使用 Lua 脚本保证原子性
//   - 先检查 value 是否是自己的
//   - 再删除 key
//
// ============================================================================

var (
	ErrLockFailed  = errors.New("获取分布式锁失败")
	ErrLockExpired = errors.New("锁已过期")
)

// DistributedLock 分布式锁
type DistributedLock struct {
	client     *redis.Client
	key        string        // 锁的 key
	value      string        // 锁的 value（用于验证锁的持有者）
	expiration time.Duration // 锁的过期时间
}

// NewDistributedLock 创建分布式锁
func NewDistributedLock(client *redis.Client, key, value string, expiration time.Duration) *DistributedLock {
	return &DistributedLock{
		client:     client,
		key:        key,
		value:      value,
		expiration: expiration,
	}
}

// TryLock 尝试获取锁（非阻塞）
//
// 【关键点】使用 SetNX 命令，只有当 key 不存在时才能设置成功
// 这保证了同一时刻只有一个客户端能获取到锁
func (l *DistributedLock) TryLock(ctx context.Context) (bool, error) {
	success, err := l.client.SetNX(ctx, l.key, l.value, l.expiration).Result()
	if err != nil {
		return false, err
	}
	return success, nil
}

// Lock 阻塞式获取锁（带重试）
func (l *DistributedLock) Lock(ctx context.Context, retryInterval time.Duration, maxRetries int) error {
	for i := 0; i < maxRetries; i++ {
		success, err := l.TryLock(ctx)
		if err != nil {
			return err
		}
		if success {
			return nil
		}
		// 等待一段时间后重试
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryInterval):
			// 继续重试
		}
	}
	return ErrLockFailed
}

// Unlock 释放锁
//
// 【关键点】使用 Lua 脚本保证"检查+删除"操作的原子性
//
// 为什么要检查 value？
//
//	场景：A 获取锁 -> A 处理超时，锁自动过期 -> B 获取锁 -> A 执行完毕，调用 Unlock
//	如果不检查 value，A 会把 B 的锁删掉！
func (l *DistributedLock) Unlock(ctx context.Context) error {
	// Lua 脚本：检查 value 是否匹配，匹配则删除
	script := `
		if redis.call("GET", KEYS[1]) == ARGV[1] then
			return redis.call("DEL", KEYS[1])
		else
			return 0
		end
	`
	_, err := l.client.Eval(ctx, script, []string{l.key}, l.value).Result()
	return err
}

// ============================================================================
// 便捷函数：基于拍品维度的出价锁
// ============================================================================

// NewBidLock 创建出价锁（按拍品维度）
//
// 【设计思考】为什么按拍品维度加锁？
//
// 方案1：全局锁（所有拍品共用一把锁）
//   - 优点：实现简单
//   - 缺点：并发度极低，拍品A的出价会阻塞拍品B
//
// 方案2：按拍品加锁（每个拍品独立一把锁）  <-- 我们的选择
//   - 优点：不同拍品可以并发出价
//   - 缺点：同一拍品的出价串行化（这正是加价幅度校验需要的！）
func NewBidLock(client *redis.Client, itemNo string, holder string) *DistributedLock {
	key := fmt.Sprintf("bid:lock:item:%s", itemNo)
	// value 使用本次请求的标识，便于追踪是哪次出价持有锁
	return NewDistributedLock(client, key, holder, 30*time.Second)
}
