package rates

import (
	"context"
	"errors"
	"slices"
	"sync"

	"go.uber.org/zap"
)

// Notices shown on the display when the table could not be loaded.
const (
	NoticeNetworkError = "Network Error"
	NoticeAPIError     = "API Error"
)

// Fetcher returns the latest table for a base currency.
type Fetcher interface {
	Latest(ctx context.Context, base string) (Table, error)
}

// Cache is the process-wide rate table. It is filled once by Load and then
// read concurrently; only another Load replaces it.
type Cache struct {
	fetcher  Fetcher
	snapshot Snapshotter
	logger   *zap.Logger
	base     string
	home     string

	mu     sync.RWMutex
	table  Table
	codes  []string
	notice string
	loaded bool
}

// NewCache creates an empty cache. snapshot may be nil.
func NewCache(fetcher Fetcher, snapshot Snapshotter, base, home string, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{
		fetcher:  fetcher,
		snapshot: snapshot,
		logger:   logger,
		base:     base,
		home:     home,
	}
}

// Load fetches the table and swaps it in wholesale. On failure the cache is
// left empty and Notice reports why; there is no retry.
func (c *Cache) Load(ctx context.Context) error {
	table, err := c.fetch(ctx)
	if err != nil {
		notice := NoticeNetworkError
		if errors.Is(err, ErrAPI) {
			notice = NoticeAPIError
		}

		c.mu.Lock()
		c.table = nil
		c.codes = nil
		c.notice = notice
		c.loaded = false
		c.mu.Unlock()

		c.logger.Error("rate table load failed",
			zap.String("base", c.base),
			zap.String("notice", notice),
			zap.Error(err),
		)
		return err
	}

	codes := make([]string, 0, len(table))
	for code := range table {
		codes = append(codes, code)
	}
	slices.Sort(codes)

	c.mu.Lock()
	c.table = table
	c.codes = codes
	c.notice = ""
	c.loaded = true
	c.mu.Unlock()

	c.logger.Info("rate table loaded",
		zap.String("base", c.base),
		zap.Int("currencies", len(codes)),
	)
	return nil
}

func (c *Cache) fetch(ctx context.Context) (Table, error) {
	if c.snapshot != nil {
		table, ok, err := c.snapshot.LoadRates(ctx, c.base)
		if err != nil {
			c.logger.Warn("rate snapshot read failed", zap.String("base", c.base), zap.Error(err))
		}
		if ok {
			c.logger.Debug("rate table served from snapshot", zap.String("base", c.base))
			return table, nil
		}
	}

	table, err := c.fetcher.Latest(ctx, c.base)
	if err != nil {
		return nil, err
	}

	if c.snapshot != nil {
		if err := c.snapshot.SaveRates(ctx, c.base, table); err != nil {
			c.logger.Warn("rate snapshot write failed", zap.String("base", c.base), zap.Error(err))
		}
	}
	return table, nil
}

// Rate returns the rate for code.
func (c *Cache) Rate(code string) (float64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	rate, ok := c.table[code]
	return rate, ok
}

// Currencies returns the selectable codes in sorted order.
func (c *Cache) Currencies() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return slices.Clone(c.codes)
}

// Defaults returns the initial picker selection: the base currency as source
// and the home currency as target. Codes missing from the table are empty.
func (c *Cache) Defaults() (from, to string) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if _, ok := c.table[c.base]; ok {
		from = c.base
	}
	if _, ok := c.table[c.home]; ok {
		to = c.home
	}
	return from, to
}

// Notice is the display text left by a failed load, or "".
func (c *Cache) Notice() string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.notice
}

// Loaded reports whether a table is in place.
func (c *Cache) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.loaded
}

func (c *Cache) Base() string { return c.base }

func (c *Cache) Home() string { return c.home }
