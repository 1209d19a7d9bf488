package pricing

import (
	"sync"
	"time"
)

// Cache 参考价缓存。热路径只读缓存，写入来自带外更新。
type Cache interface {
	Get(symbol string) (float64, bool)
	Set(symbol string, price float64)
}

type entry struct {
	price float64
	ts    time.Time
}

// MemoryCache 进程内缓存。MaxAge > 0 时超龄条目视为未命中。
type MemoryCache struct {
	MaxAge time.Duration

	mu      sync.RWMutex
	prices  map[string]entry
	now     func() time.Time
}

func NewMemoryCache(maxAge time.Duration) *MemoryCache {
	return &MemoryCache{
		MaxAge: maxAge,
		prices: make(map[string]entry),
		now:    time.Now,
	}
}

func (c *MemoryCache) Get(symbol string) (float64, bool) {
	c.mu.RLock()
	e, ok := c.prices[symbol]
	c.mu.RUnlock()
	if !ok {
		return 0, false
	}
	if c.MaxAge > 0 && c.now().Sub(e.ts) > c.MaxAge {
		return 0, false
	}
	return e.price, true
}

func (c *MemoryCache) Set(symbol string, price float64) {
	c.mu.Lock()
	c.prices[symbol] = entry{price: price, ts: c.now()}
	c.mu.Unlock()
}
