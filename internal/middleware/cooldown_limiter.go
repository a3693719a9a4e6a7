package middleware

import (
	"fmt"
	"sync"
	"time"
)

// ==================== CooldownLimiter 冷却限流器 ====================

// CooldownLimiter 同一 key 在冷却间隔内只允许一次
// 用于登录邮件等"用户主动触发、需要防刷"的操作
type CooldownLimiter struct {
	locks sync.Map // key -> *lockEntry
	now   func() time.Time
}

// lockEntry 锁条目
type lockEntry struct {
	lastTime time.Time
	mu       sync.Mutex
}

// NewCooldownLimiter 创建冷却限流器
func NewCooldownLimiter() *CooldownLimiter {
	return &CooldownLimiter{now: time.Now}
}

// CheckResult 检查结果
type CheckResult struct {
	Allowed    bool          // 是否允许
	RetryAfter time.Duration // 剩余冷却时间
}

// Check 检查并占用：允许时记录本次时间
func (r *CooldownLimiter) Check(key string, interval time.Duration) CheckResult {
	actual, _ := r.locks.LoadOrStore(key, &lockEntry{})
	entry := actual.(*lockEntry)

	entry.mu.Lock()
	defer entry.mu.Unlock()

	now := r.now()
	elapsed := now.Sub(entry.lastTime)
	if elapsed < interval {
		return CheckResult{
			Allowed:    false,
			RetryAfter: interval - elapsed,
		}
	}

	entry.lastTime = now
	return CheckResult{Allowed: true}
}

// Reset 重置指定 key（发送失败时释放冷却）
func (r *CooldownLimiter) Reset(key string) {
	r.locks.Delete(key)
}

// Sweep 清理已过冷却期的条目，返回清理数量
func (r *CooldownLimiter) Sweep(interval time.Duration) int {
	now := r.now()
	n := 0
	r.locks.Range(func(k, v interface{}) bool {
		entry := v.(*lockEntry)
		entry.mu.Lock()
		expired := now.Sub(entry.lastTime) >= interval
		entry.mu.Unlock()
		if expired {
			r.locks.Delete(k)
			n++
		}
		return true
	})
	return n
}

// ==================== Key 生成工具 ====================

// EmailLinkKey 登录邮件冷却 key
func EmailLinkKey(email string) string {
	return fmt.Sprintf("email_link:%s", email)
}

// FormatRetryMessage 格式化重试提示
func FormatRetryMessage(d time.Duration) string {
	seconds := int(d.Seconds())
	if seconds < 1 {
		seconds = 1
	}
	if seconds < 60 {
		return fmt.Sprintf("Please wait %d seconds before requesting another link", seconds)
	}
	return fmt.Sprintf("Please wait %d minutes before requesting another link", (seconds+59)/60)
}
