package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DiskCache persists pages as JSON files so repeated builds do not hit the
// dictionary sites again. Files are sharded by the last two characters of
// the key.
type DiskCache struct {
	dir        string
	defaultTTL time.Duration
	now        func() time.Time
}

type diskEntry struct {
	Data      []byte    `json:"data"`
	ExpiresAt time.Time `json:"expires_at"`
}

// NewDiskCache creates a disk cache rooted at dir
func NewDiskCache(dir string, defaultTTL time.Duration) *DiskCache {
	if defaultTTL == 0 {
		defaultTTL = 30 * 24 * time.Hour
	}
	return &DiskCache{dir: dir, defaultTTL: defaultTTL, now: time.Now}
}

func (c *DiskCache) Get(key string) ([]byte, bool) {
	raw, err := os.ReadFile(c.path(key))
	if err != nil {
		return nil, false
	}

	var e diskEntry
	if err := json.Unmarshal(raw, &e); err != nil {
		_ = os.Remove(c.path(key))
		return nil, false
	}
	if c.now().After(e.ExpiresAt) {
		_ = os.Remove(c.path(key))
		return nil, false
	}
	return e.Data, true
}

func (c *DiskCache) Set(key string, value []byte, ttl time.Duration) error {
	if ttl == 0 {
		ttl = c.defaultTTL
	}
	raw, err := json.Marshal(diskEntry{Data: value, ExpiresAt: c.now().Add(ttl)})
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}

	path := c.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close cache file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("rename cache file: %w", err)
	}
	return nil
}

func (c *DiskCache) Delete(key string) error {
	err := os.Remove(c.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func (c *DiskCache) Clear() error {
	return os.RemoveAll(c.dir)
}

func (c *DiskCache) path(key string) string {
	shard := "00"
	if len(key) >= 2 {
		shard = key[len(key)-2:]
	}
	return filepath.Join(c.dir, shard, key+".json")
}
