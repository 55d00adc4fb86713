package services

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"

	"template-engine-service/config"
	"template-engine-service/models"
)

// CacheStats provides cache performance metrics
type CacheStats struct {
	Hits        int64     `json:"hits"`
	Misses      int64     `json:"misses"`
	HitRate     float64   `json:"hit_rate"`
	Size        int       `json:"size"`
	MaxSize     int       `json:"max_size"`
	Evictions   int64     `json:"evictions"`
	Generation  uint64    `json:"generation"`
	LastCleared time.Time `json:"last_cleared"`
}

// validationCacheEntry is one cached validation result.
type validationCacheEntry struct {
	summary   models.ContentValidationSummary
	expiresAt time.Time
	createdAt time.Time
}

// ValidationCache stores content validation summaries keyed by a digest of
// the document and its validation context. Keys embed a generation counter
// so changing the rule set invalidates previous results without scanning
// the cache.
type ValidationCache struct {
	mu         sync.RWMutex
	entries    map[string]*validationCacheEntry
	maxSize    int
	ttl        time.Duration
	generation uint64
	stats      CacheStats
	janitor    *time.Ticker
	stopChan   chan struct{}
	logger     *zap.Logger
}

// NewValidationCache creates a cache and starts its cleanup goroutine.
// Zero config fields fall back to the documented defaults.
func NewValidationCache(cfg config.CacheConfig, logger *zap.Logger) *ValidationCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = 1000
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = 5 * time.Minute
	}
	if cfg.DefaultTTL <= 0 {
		cfg.DefaultTTL = 30 * time.Minute
	}

	cache := &ValidationCache{
		entries:  make(map[string]*validationCacheEntry),
		maxSize:  cfg.MaxSize,
		ttl:      cfg.DefaultTTL,
		stats:    CacheStats{MaxSize: cfg.MaxSize, LastCleared: time.Now()},
		janitor:  time.NewTicker(cfg.CleanupInterval),
		stopChan: make(chan struct{}),
		logger:   logger,
	}

	go cache.cleanup()

	return cache
}

// Key derives the cache key for a raw document and its validation context.
// The current generation is part of the digest.
func (c *ValidationCache) Key(raw []byte, ctx *models.ValidationContext) string {
	c.mu.RLock()
	generation := c.generation
	c.mu.RUnlock()

	h := sha256.New()
	fmt.Fprintf(h, "gen:%d\n", generation)
	h.Write(raw)
	h.Write([]byte{0})
	if ctx != nil {
		for _, id := range ctx.RequiredVariables {
			io.WriteString(h, id)
			h.Write([]byte{0x1f})
		}
		h.Write([]byte{0x1e})
		for _, id := range ctx.ExistingVariables {
			io.WriteString(h, id)
			h.Write([]byte{0x1f})
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Get retrieves a cached summary. Expired entries are removed on access.
func (c *ValidationCache) Get(key string) (models.ContentValidationSummary, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, exists := c.entries[key]
	if !exists {
		c.stats.Misses++
		c.updateHitRate()
		return models.ContentValidationSummary{}, false
	}

	if time.Now().After(entry.expiresAt) {
		c.stats.Misses++
		delete(c.entries, key)
		c.stats.Size = len(c.entries)
		c.updateHitRate()
		return models.ContentValidationSummary{}, false
	}

	c.stats.Hits++
	c.updateHitRate()

	return entry.summary, true
}

// Set stores a summary under the given key, evicting the oldest entry when
// the cache is full.
func (c *ValidationCache) Set(key string, summary models.ContentValidationSummary) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) >= c.maxSize {
		c.evictOldest()
	}

	c.entries[key] = &validationCacheEntry{
		summary:   summary,
		expiresAt: time.Now().Add(c.ttl),
		createdAt: time.Now(),
	}
	c.stats.Size = len(c.entries)
}

// Invalidate bumps the generation so every previously issued key stops
// matching. Call it whenever the rule set changes.
func (c *ValidationCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	c.stats.Generation = c.generation
	c.logger.Debug("validation cache invalidated", zap.Uint64("generation", c.generation))
}

// Clear removes all entries from cache
func (c *ValidationCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*validationCacheEntry)
	c.stats.Size = 0
	c.stats.LastCleared = time.Now()
}

// Stats returns cache statistics
func (c *ValidationCache) Stats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := c.stats
	stats.Size = len(c.entries)
	stats.Generation = c.generation
	return stats
}

// Stop stops the cache cleanup goroutine
func (c *ValidationCache) Stop() {
	close(c.stopChan)
	c.janitor.Stop()
}

// cleanup removes expired entries periodically
func (c *ValidationCache) cleanup() {
	for {
		select {
		case <-c.janitor.C:
			c.removeExpired()
		case <-c.stopChan:
			return
		}
	}
}

// removeExpired removes all expired entries
func (c *ValidationCache) removeExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
		}
	}
	c.stats.Size = len(c.entries)
}

// evictOldest removes the oldest entry to make room for new ones
func (c *ValidationCache) evictOldest() {
	var oldestKey string
	var oldestTime time.Time

	for key, entry := range c.entries {
		if oldestKey == "" || entry.createdAt.Before(oldestTime) {
			oldestKey = key
			oldestTime = entry.createdAt
		}
	}

	if oldestKey != "" {
		delete(c.entries, oldestKey)
		c.stats.Evictions++
	}
}

// updateHitRate calculates the current hit rate
func (c *ValidationCache) updateHitRate() {
	total := c.stats.Hits + c.stats.Misses
	if total > 0 {
		c.stats.HitRate = float64(c.stats.Hits) / float64(total)
	}
}
