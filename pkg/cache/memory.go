package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryCache 进程内缓存，未配置 Redis 时使用
type MemoryCache struct {
	items sync.Map // key -> memoryItem
	now   func() time.Time
}

// memoryItem 内部结构，包含值和过期时间
type memoryItem struct {
	value     []byte
	expiresAt time.Time // 零值表示永不过期
}

// NewMemoryCache 创建进程内缓存
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{now: time.Now}
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	val, ok := c.items.Load(key)
	if !ok {
		return nil, ErrMiss
	}

	item := val.(memoryItem)
	if !item.expiresAt.IsZero() && c.now().After(item.expiresAt) {
		c.items.Delete(key) // 懒删除
		return nil, ErrMiss
	}
	return item.value, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	item := memoryItem{value: value}
	if ttl > 0 {
		item.expiresAt = c.now().Add(ttl)
	}
	c.items.Store(key, item)
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		c.items.Delete(k)
	}
	return nil
}
