package cache

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/epeers/dashboard/internal/models"
)

// MemoryCache memoizes fetched price tables by (symbol set, date range).
// Entries never expire: a different key is the only way to get fresh data,
// short of Clear.
type MemoryCache struct {
	tables map[string]tableEntry
	mu     sync.RWMutex
}

type tableEntry struct {
	table     models.PriceTable
	fetchedAt time.Time
}

// NewMemoryCache creates a new in-memory cache
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		tables: make(map[string]tableEntry),
	}
}

// TableKey builds the cache key for a request. Symbol order and duplicates
// do not matter.
func TableKey(symbols []string, r models.DateRange) string {
	set := make(map[string]bool, len(symbols))
	uniq := make([]string, 0, len(symbols))
	for _, s := range symbols {
		if !set[s] {
			set[s] = true
			uniq = append(uniq, s)
		}
	}
	sort.Strings(uniq)
	return strings.Join(uniq, ",") + "|" + r.String()
}

// GetTable retrieves a cached table if available
func (c *MemoryCache) GetTable(symbols []string, r models.DateRange) (models.PriceTable, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.tables[TableKey(symbols, r)]
	if !exists {
		return models.PriceTable{}, false
	}
	return entry.table, true
}

// SetTable caches a table
func (c *MemoryCache) SetTable(symbols []string, r models.DateRange, table models.PriceTable) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.tables[TableKey(symbols, r)] = tableEntry{
		table:     table,
		fetchedAt: time.Now(),
	}
}

// FetchedAt tells when the table for the key was stored
func (c *MemoryCache) FetchedAt(symbols []string, r models.DateRange) (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.tables[TableKey(symbols, r)]
	return entry.fetchedAt, exists
}

// Len returns the number of cached tables
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.tables)
}

// Clear removes all cached data
func (c *MemoryCache) Clear() {
	c.mu.Lock()
	c.tables = make(map[string]tableEntry)
	c.mu.Unlock()
}
