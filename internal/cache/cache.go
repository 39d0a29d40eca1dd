// Package cache provides caching for thumbnails and compiled viewer links.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/allegro/bigcache/v3"
	lru "github.com/hashicorp/golang-lru/v2"
)

// Config contains cache configuration.
type Config struct {
	ThumbCacheSizeMB int
	ThumbTTL         time.Duration
	LinkCacheSize    int
}

// Manager manages the thumbnail byte cache and the compiled-link cache.
type Manager struct {
	thumbCache *bigcache.BigCache
	linkCache  *lru.Cache[string, string]
}

// NewManager creates a new cache manager.
func NewManager(cfg Config) (*Manager, error) {
	thumbCacheConfig := bigcache.Config{
		Shards:             256,
		LifeWindow:         cfg.ThumbTTL,
		CleanWindow:        cfg.ThumbTTL / 2,
		MaxEntriesInWindow: 10000,
		MaxEntrySize:       512 * 1024, // 512KB per thumbnail
		HardMaxCacheSize:   cfg.ThumbCacheSizeMB,
		Verbose:            false,
	}

	thumbCache, err := bigcache.New(context.Background(), thumbCacheConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create thumbnail cache: %w", err)
	}

	linkCache, err := lru.New[string, string](cfg.LinkCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create link cache: %w", err)
	}

	return &Manager{
		thumbCache: thumbCache,
		linkCache:  linkCache,
	}, nil
}

// GetThumb retrieves thumbnail bytes from cache.
func (m *Manager) GetThumb(key string) ([]byte, bool) {
	data, err := m.thumbCache.Get(key)
	if err != nil {
		return nil, false
	}
	return data, true
}

// SetThumb stores thumbnail bytes in cache.
func (m *Manager) SetThumb(key string, data []byte) error {
	return m.thumbCache.Set(key, data)
}

// GetLink retrieves a compiled viewer link from cache.
func (m *Manager) GetLink(key string) (string, bool) {
	return m.linkCache.Get(key)
}

// SetLink stores a compiled viewer link in cache.
func (m *Manager) SetLink(key, link string) {
	m.linkCache.Add(key, link)
}

// ThumbKey generates a cache key for a dataset thumbnail.
func ThumbKey(dataset string) string {
	return "thumb:" + dataset
}

// LinkKey generates a cache key for a compiled link. Selection order matters
// (it determines layer order), so the volume list is hashed as-is, not
// sorted.
func LinkKey(dataset string, volumes []string, view, viewerBase string) string {
	h := sha256.New()
	h.Write([]byte(dataset))
	h.Write([]byte{0})
	h.Write([]byte(strings.Join(volumes, "\x00")))
	h.Write([]byte{0})
	h.Write([]byte(view))
	h.Write([]byte{0})
	h.Write([]byte(viewerBase))
	return "link:" + dataset + ":" + hex.EncodeToString(h.Sum(nil))[:16]
}

// Stats returns cache statistics.
func (m *Manager) Stats() map[string]interface{} {
	return map[string]interface{}{
		"thumb_cache_len": m.thumbCache.Len(),
		"thumb_cache_cap": m.thumbCache.Capacity(),
		"link_cache_len":  m.linkCache.Len(),
	}
}

// Close closes the cache manager.
func (m *Manager) Close() error {
	return m.thumbCache.Close()
}
