package clock

import (
	"sync"
	"time"
)

// Clock 时间源，统计窗口与令牌过期依赖它，测试中可替换
type Clock interface {
	Now() time.Time
}

// RealClock 系统时间（UTC）
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now().UTC() }

// MockClock 可控时间源
type MockClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewMockClock 创建固定在 t 的时钟
func NewMockClock(t time.Time) *MockClock {
	return &MockClock{now: t.UTC()}
}

func (m *MockClock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Set 设置当前时间
func (m *MockClock) Set(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = t.UTC()
}

// Advance 前进 d
func (m *MockClock) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
}

// StartOfDay 返回 t 所在 UTC 自然日的零点
func StartOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
