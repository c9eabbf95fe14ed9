package backend

import (
	"context"
	"time"

	"fintrack/internal/cache"
	"fintrack/internal/metrics"
	"fintrack/internal/sheets"
)

// CachedBackend keeps recently read tables in memory. Any write from
// this process drops the cached copy of the written sheet.
type CachedBackend struct {
	next    Backend
	tables  *cache.LRUCache[sheets.Table]
	metrics *metrics.Registry
}

var _ Backend = (*CachedBackend)(nil)

func NewCachedBackend(next Backend, size int, ttl time.Duration, reg *metrics.Registry) *CachedBackend {
	return &CachedBackend{
		next:    next,
		tables:  cache.NewLRUCache[sheets.Table](size, ttl),
		metrics: reg,
	}
}

// Cache exposes the table cache for periodic cleanup.
func (c *CachedBackend) Cache() *cache.LRUCache[sheets.Table] {
	return c.tables
}

func (c *CachedBackend) ReadTable(ctx context.Context, sheet string) (sheets.Table, error) {
	if t, ok := c.tables.Get(sheet); ok {
		c.metrics.CacheHit(sheet)
		return t.Clone(), nil
	}
	c.metrics.CacheMiss(sheet)
	t, err := c.next.ReadTable(ctx, sheet)
	if err != nil {
		return sheets.Table{}, err
	}
	c.tables.Set(sheet, t.Clone())
	return t, nil
}

func (c *CachedBackend) AppendRows(ctx context.Context, sheet string, rows [][]string) (string, error) {
	defer c.tables.Delete(sheet)
	return c.next.AppendRows(ctx, sheet, rows)
}

func (c *CachedBackend) UpdateCell(ctx context.Context, sheet string, row, col int, value string) error {
	defer c.tables.Delete(sheet)
	return c.next.UpdateCell(ctx, sheet, row, col, value)
}

func (c *CachedBackend) Ping(ctx context.Context) error {
	return c.next.Ping(ctx)
}
