package knowledge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"georesolve/internal/logging"
)

// CacheStats counts cache traffic for one resolver lifetime.
type CacheStats struct {
	Hits    int
	Misses  int
	Expired int
}

type cacheEntry struct {
	GeonameID int64     `json:"geonameid"`
	Timestamp time.Time `json:"timestamp"`
}

// CachedResolver fronts another Resolver with a TTL-bounded JSON file cache.
// A missing or corrupt cache file starts empty instead of failing.
type CachedResolver struct {
	path    string
	ttl     time.Duration
	inner   Resolver
	entries map[string]cacheEntry
	stats   CacheStats
	logger  *slog.Logger
	now     func() time.Time
}

// NewCachedResolver loads the cache at path and wraps inner.
func NewCachedResolver(path string, ttl time.Duration, inner Resolver, logger *slog.Logger) *CachedResolver {
	c := &CachedResolver{
		path:    path,
		ttl:     ttl,
		inner:   inner,
		entries: make(map[string]cacheEntry),
		logger:  logging.NewComponentLogger(logger, "knowledge"),
		now:     time.Now,
	}
	c.load()
	return c
}

func (c *CachedResolver) load() {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			c.logger.Warn("cache unreadable, starting empty", logging.Error(err))
		}
		return
	}
	if err := json.Unmarshal(data, &c.entries); err != nil {
		c.logger.Warn("cache corrupt, starting empty", logging.Error(err))
		c.entries = make(map[string]cacheEntry)
		return
	}
	c.logger.Debug("cache loaded", logging.Int("entries", len(c.entries)))
}

// Save writes the cache back to disk.
func (c *CachedResolver) Save() error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}
	data, err := json.MarshalIndent(c.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cache: %w", err)
	}
	if err := os.WriteFile(c.path, data, 0o644); err != nil {
		return fmt.Errorf("write cache: %w", err)
	}
	return nil
}

// Stats returns traffic counters since construction.
func (c *CachedResolver) Stats() CacheStats {
	return c.stats
}

// ResolveBatch serves fresh entries from the cache and forwards the rest to
// the wrapped resolver, caching whatever it returns. The inner resolver's
// partial results survive even when it also returns an error.
func (c *CachedResolver) ResolveBatch(ctx context.Context, refs []string) (map[string]int64, error) {
	resolved := make(map[string]int64, len(refs))
	var misses []string

	for _, ref := range refs {
		entry, ok := c.entries[ref]
		if !ok {
			c.stats.Misses++
			misses = append(misses, ref)
			continue
		}
		if c.ttl > 0 && c.now().After(entry.Timestamp.Add(c.ttl)) {
			c.stats.Expired++
			delete(c.entries, ref)
			misses = append(misses, ref)
			continue
		}
		c.stats.Hits++
		resolved[ref] = entry.GeonameID
	}

	if len(misses) == 0 {
		return resolved, nil
	}

	fresh, err := c.inner.ResolveBatch(ctx, misses)
	for ref, id := range fresh {
		resolved[ref] = id
		c.entries[ref] = cacheEntry{GeonameID: id, Timestamp: c.now()}
	}
	if err != nil {
		return resolved, fmt.Errorf("resolve uncached refs: %w", err)
	}

	c.logger.Debug("cache pass",
		logging.Int("hits", c.stats.Hits),
		logging.Int("misses", len(misses)),
		logging.Int("resolved", len(fresh)))
	return resolved, nil
}
