package cache

import (
	"sync"

	"riskscan/internal/types"
)

// RatioCache 按 (symbol, 月份, 合约地址) 缓存已解析的价格比率。
// 并发重复写同一 key 采用 last-write-wins，相同输入下结果幂等。
type RatioCache struct {
	mu      sync.Mutex
	entries map[string]float64
}

func NewRatioCache() *RatioCache {
	return &RatioCache{entries: make(map[string]float64)}
}

func (c *RatioCache) Get(key string) (float64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ratio, ok := c.entries[key]
	return ratio, ok
}

func (c *RatioCache) Set(key string, ratio float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = ratio
}

// TokenInfoCache caches token metadata by lowercase contract address for the
// process lifetime. Entries are never invalidated, including the UNKNOWN
// fallback written after a failed metadata lookup.
type TokenInfoCache struct {
	mu      sync.Mutex
	entries map[string]types.TokenInfo
}

func NewTokenInfoCache() *TokenInfoCache {
	return &TokenInfoCache{entries: make(map[string]types.TokenInfo)}
}

func (c *TokenInfoCache) Get(address string) (types.TokenInfo, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	info, ok := c.entries[address]
	return info, ok
}

func (c *TokenInfoCache) Set(address string, info types.TokenInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[address] = info
}
