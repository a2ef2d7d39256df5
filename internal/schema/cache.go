// Package schema caches table and column metadata from the target
// database. Table lists load eagerly at session start; per-table details
// load lazily and are memoized until an explicit refresh.
package schema

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/querydesk/querydesk/internal/adapter"
)

// Cache is the lazy, memoized store of schema metadata.
type Cache struct {
	mu      sync.Mutex
	db      adapter.Adapter
	logger  *slog.Logger
	tables  []adapter.TableInfo
	loaded  bool
	details map[string]*adapter.TableDetails
}

// NewCache creates a schema cache over the given adapter.
func NewCache(db adapter.Adapter, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Cache{
		db:      db,
		logger:  logger,
		details: make(map[string]*adapter.TableDetails),
	}
}

// ListTables returns the tables and views in the target database,
// fetching them on first call and caching thereafter.
func (c *Cache) ListTables(ctx context.Context) ([]adapter.TableInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.loaded {
		return c.tables, nil
	}

	tables, err := c.db.ListTables(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}

	c.tables = tables
	c.loaded = true
	return tables, nil
}

// TableDetails returns the metadata for one table, fetching it at most
// once until the cache is refreshed.
func (c *Cache) TableDetails(ctx context.Context, name string) (*adapter.TableDetails, error) {
	c.mu.Lock()
	if d, ok := c.details[name]; ok {
		c.mu.Unlock()
		return d, nil
	}
	c.mu.Unlock()

	d, err := c.db.TableDetails(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to get table details for %s: %w", name, err)
	}

	c.mu.Lock()
	c.details[name] = d
	c.mu.Unlock()
	return d, nil
}

// Refresh invalidates the entire cache. The next reads re-fetch.
func (c *Cache) Refresh() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tables = nil
	c.loaded = false
	c.details = make(map[string]*adapter.TableDetails)
}

// Suggestions returns the merged autocomplete list: table names,
// qualified table.column names for every table whose details are
// fetchable, and the static SQL keyword set. Per-table fetch failures
// are logged and skipped, never fatal.
func (c *Cache) Suggestions(ctx context.Context) []string {
	var out []string

	tables, err := c.ListTables(ctx)
	if err != nil {
		c.logger.Warn("schema suggestions degraded", "error", err)
		return append(out, Keywords...)
	}

	for _, t := range tables {
		out = append(out, t.Name)
	}
	for _, t := range tables {
		d, err := c.TableDetails(ctx, t.Name)
		if err != nil {
			c.logger.Warn("no autocomplete for table", "table", t.Name, "error", err)
			continue
		}
		for _, col := range d.Columns {
			out = append(out, t.Name+"."+col.Name)
		}
	}

	return append(out, Keywords...)
}
