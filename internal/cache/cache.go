package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/ppiankov/episodic/internal/model"
	"github.com/ppiankov/episodic/internal/util"
)

// Cache stores fetched dictionary and transcript pages by key
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// PageKey derives the cache key for a page URL
func PageKey(url string) string {
	sum := sha256.Sum256([]byte(url))
	return "episodic-page-v1-" + hex.EncodeToString(sum[:])
}

// New builds the cache described by cfg: memory in front of disk, or a
// no-op cache when caching is disabled.
func New(cfg model.CacheConfig) Cache {
	if !cfg.Enabled {
		return Nop{}
	}
	memoryTTL := cfg.MemoryTTL
	if memoryTTL == 0 {
		memoryTTL = time.Hour
	}
	memory := NewMemoryCache(memoryTTL, 10*time.Minute)
	if cfg.Dir == "" {
		return memory
	}
	return NewLayeredCache(memory, NewDiskCache(util.ExpandHome(cfg.Dir), cfg.DiskTTL), memoryTTL)
}

// Nop is a cache that never stores anything
type Nop struct{}

func (Nop) Get(string) ([]byte, bool)               { return nil, false }
func (Nop) Set(string, []byte, time.Duration) error { return nil }
func (Nop) Delete(string) error                     { return nil }
func (Nop) Clear() error                            { return nil }
