package cache

import (
	"context"
	"sync"

	"github.com/dpup/vprofile/internal/lib/profile"
	"github.com/dpup/vprofile/internal/logging"
)

// RowCache remembers attribute rows by category so that a feature matched
// several times along a profile is looked up once. Misses are cached too;
// lookup errors are not.
type RowCache struct {
	source  profile.AttributeLookup
	entries map[int]*RowEntry
	stats   RowStats
	mutex   sync.Mutex
}

// RowEntry represents a cached lookup result
type RowEntry struct {
	Values []string
	Found  bool
}

// RowStats counts cache activity
type RowStats struct {
	Hits    int
	Misses  int
	Entries int
}

// NewRowCache wraps source with a category keyed cache
func NewRowCache(source profile.AttributeLookup) *RowCache {
	return &RowCache{
		source:  source,
		entries: make(map[int]*RowEntry),
	}
}

// Row implements profile.AttributeLookup
func (c *RowCache) Row(ctx context.Context, cat int) ([]string, bool, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if entry, ok := c.entries[cat]; ok {
		c.stats.Hits++
		return entry.Values, entry.Found, nil
	}
	c.stats.Misses++

	values, found, err := c.source.Row(ctx, cat)
	if err != nil {
		return nil, false, err
	}
	c.entries[cat] = &RowEntry{Values: values, Found: found}
	return values, found, nil
}

// Stats returns cache statistics
func (c *RowCache) Stats() RowStats {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	stats := c.stats
	stats.Entries = len(c.entries)
	return stats
}

// LogStats reports cache statistics at debug level
func (c *RowCache) LogStats(ctx context.Context) {
	stats := c.Stats()
	logging.Debugw(ctx, "Attribute cache", "hits", stats.Hits, "misses", stats.Misses, "entries", stats.Entries)
}
