package cache

import "time"

// LayeredCache reads through a fast layer to a slow one and promotes hits
type LayeredCache struct {
	fast    Cache
	slow    Cache
	fastTTL time.Duration
}

// NewLayeredCache puts fast (usually memory) in front of slow (usually disk)
func NewLayeredCache(fast, slow Cache, fastTTL time.Duration) *LayeredCache {
	return &LayeredCache{fast: fast, slow: slow, fastTTL: fastTTL}
}

func (c *LayeredCache) Get(key string) ([]byte, bool) {
	if v, ok := c.fast.Get(key); ok {
		return v, true
	}
	v, ok := c.slow.Get(key)
	if !ok {
		return nil, false
	}
	_ = c.fast.Set(key, v, c.fastTTL)
	return v, true
}

func (c *LayeredCache) Set(key string, value []byte, ttl time.Duration) error {
	fastTTL := c.fastTTL
	if ttl > 0 && ttl < fastTTL {
		fastTTL = ttl
	}
	if err := c.fast.Set(key, value, fastTTL); err != nil {
		return err
	}
	return c.slow.Set(key, value, ttl)
}

func (c *LayeredCache) Delete(key string) error {
	if err := c.fast.Delete(key); err != nil {
		return err
	}
	return c.slow.Delete(key)
}

func (c *LayeredCache) Clear() error {
	if err := c.fast.Clear(); err != nil {
		return err
	}
	return c.slow.Clear()
}
