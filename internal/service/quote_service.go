package service

import (
	"context"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"weeklypay_go/internal/domain"
	"weeklypay_go/internal/infra"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// QuoteCache serves FX + price snapshots with a short time-to-live.
//
// Get never fails: upstream errors are replaced by the fallback FX rate and
// zero prices. Concurrent misses for the same symbol set share one external
// round. Snapshots are published whole under the write lock.
type QuoteCache struct {
	fx         domain.ExchangeRateProvider
	prices     domain.PriceBatchProvider
	ttl        time.Duration
	fallbackFX decimal.Decimal
	viewerLoc  *time.Location
	now        func() time.Time
	metrics    *infra.Metrics
	logger     *slog.Logger

	mu         sync.RWMutex
	entries    map[string]cacheEntry
	generation uint64
	group      singleflight.Group
}

type cacheEntry struct {
	snapshot domain.QuoteSnapshot
	storedAt time.Time
}

// QuoteCacheOption customizes a QuoteCache.
type QuoteCacheOption func(*QuoteCache)

// WithClock replaces the time source.
func WithClock(now func() time.Time) QuoteCacheOption {
	return func(c *QuoteCache) { c.now = now }
}

// WithMetrics records cache activity into m.
func WithMetrics(m *infra.Metrics) QuoteCacheOption {
	return func(c *QuoteCache) { c.metrics = m }
}

// WithViewerLocation sets the timezone FetchedAt is expressed in.
func WithViewerLocation(loc *time.Location) QuoteCacheOption {
	return func(c *QuoteCache) { c.viewerLoc = loc }
}

// WithFallbackFX sets the rate used when the FX fetch fails. Non-positive values are ignored.
func WithFallbackFX(rate decimal.Decimal) QuoteCacheOption {
	return func(c *QuoteCache) {
		if rate.IsPositive() {
			c.fallbackFX = rate
		}
	}
}

// NewQuoteCache creates a cache over the two upstream sources.
func NewQuoteCache(fx domain.ExchangeRateProvider, prices domain.PriceBatchProvider, ttl time.Duration, opts ...QuoteCacheOption) *QuoteCache {
	c := &QuoteCache{
		fx:         fx,
		prices:     prices,
		ttl:        ttl,
		fallbackFX: infra.DefaultFallbackFX,
		viewerLoc:  time.Local,
		now:        time.Now,
		metrics:    infra.NewMetrics(),
		logger:     slog.Default().With("module", "quote_cache"),
		entries:    make(map[string]cacheEntry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Metrics returns the metrics the cache records into.
func (c *QuoteCache) Metrics() *infra.Metrics {
	return c.metrics
}

// Get returns a snapshot for symbols, fetching when the cached one is older
// than the TTL or was invalidated. Symbol order and duplicates do not matter.
func (c *QuoteCache) Get(ctx context.Context, symbols []string) domain.QuoteSnapshot {
	canon := canonicalSymbols(symbols)
	key := strings.Join(canon, ",")

	c.mu.RLock()
	entry, ok := c.entries[key]
	gen := c.generation
	c.mu.RUnlock()

	if ok && c.fresh(entry) {
		c.metrics.RecordHit()
		return entry.snapshot.Clone()
	}
	c.metrics.RecordMiss()

	// The generation is part of the flight key so a call made after
	// Invalidate never joins a round that started before it.
	flightKey := strconv.FormatUint(gen, 10) + "|" + key
	v, _, _ := c.group.Do(flightKey, func() (any, error) {
		c.mu.RLock()
		entry, ok := c.entries[key]
		c.mu.RUnlock()
		if ok && c.fresh(entry) {
			return entry.snapshot, nil
		}

		// Once started, the round runs to completion even if the caller leaves.
		snap := c.refresh(context.WithoutCancel(ctx), canon)

		c.mu.Lock()
		if c.generation == gen {
			c.store(key, snap)
		}
		c.mu.Unlock()

		return snap, nil
	})

	return v.(domain.QuoteSnapshot).Clone()
}

// Invalidate drops every cached snapshot. The next Get always goes upstream.
func (c *QuoteCache) Invalidate() {
	c.mu.Lock()
	n := len(c.entries)
	c.entries = make(map[string]cacheEntry)
	c.generation++
	c.mu.Unlock()

	c.metrics.RecordInvalidation()
	c.logger.Info("Quote cache invalidated", slog.Int("entries", n))
}

// Refresh invalidates the cache and fetches symbols anew.
func (c *QuoteCache) Refresh(ctx context.Context, symbols []string) domain.QuoteSnapshot {
	c.Invalidate()
	return c.Get(ctx, symbols)
}

// store publishes snap under key and drops every expired entry, so the map
// only ever holds snapshots younger than the TTL. Callers hold c.mu.
func (c *QuoteCache) store(key string, snap domain.QuoteSnapshot) {
	for k, e := range c.entries {
		if !c.fresh(e) {
			delete(c.entries, k)
		}
	}
	c.entries[key] = cacheEntry{snapshot: snap, storedAt: c.now()}
}

func (c *QuoteCache) fresh(e cacheEntry) bool {
	return c.now().Sub(e.storedAt) < c.ttl
}

// refresh performs one external round. Both fetches absorb their own
// failures, so the group never reports an error.
func (c *QuoteCache) refresh(ctx context.Context, symbols []string) domain.QuoteSnapshot {
	start := c.now()

	var (
		rate   decimal.Decimal
		prices map[string]decimal.Decimal
		g      errgroup.Group
	)
	g.Go(func() error {
		rate = c.fetchRate(ctx)
		return nil
	})
	g.Go(func() error {
		prices = c.fetchPrices(ctx, symbols)
		return nil
	})
	_ = g.Wait()

	done := c.now()
	c.metrics.RecordFetch(done.Sub(start), done)

	return domain.QuoteSnapshot{
		FXRate:    rate,
		Prices:    prices,
		FetchedAt: done.In(c.viewerLoc),
	}
}

func (c *QuoteCache) fetchRate(ctx context.Context) decimal.Decimal {
	rate, err := c.fx.FetchRate(ctx)
	if err == nil && rate.IsPositive() {
		return rate
	}

	c.metrics.RecordFXFallback()
	c.logger.Warn("FX fetch failed, using fallback rate",
		slog.String("fallback", c.fallbackFX.String()),
		slog.String("received", rate.String()),
		slog.Any("error", err),
	)
	return c.fallbackFX
}

func (c *QuoteCache) fetchPrices(ctx context.Context, symbols []string) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(symbols))
	if len(symbols) == 0 {
		return out
	}

	fetched, err := c.prices.FetchPrices(ctx, symbols)
	if err != nil {
		c.metrics.RecordBatchFailure()
		c.metrics.RecordSymbolFallbacks(len(symbols))
		c.logger.Warn("Price batch failed, all symbols set to zero",
			slog.Int("symbols", len(symbols)),
			slog.Any("error", err),
		)
		fetched = nil
	}

	var missing []string
	for _, s := range symbols {
		p, ok := fetched[s]
		if !ok || p.IsNegative() {
			if err == nil {
				missing = append(missing, s)
			}
			p = decimal.Zero
		}
		out[s] = p
	}

	if len(missing) > 0 {
		c.metrics.RecordSymbolFallbacks(len(missing))
		c.logger.Warn("Prices unavailable for some symbols", slog.Any("symbols", missing))
	}
	return out
}

// canonicalSymbols trims, de-duplicates and sorts symbols so equivalent
// requests share a cache entry.
func canonicalSymbols(symbols []string) []string {
	seen := make(map[string]struct{}, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
