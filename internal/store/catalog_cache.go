package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	intmetrics "github.com/cloudalloc/cloudalloc/internal/metrics"
	"github.com/cloudalloc/cloudalloc/pkg/catalog"
)

// FetchFunc retrieves a full catalog snapshot for one provider and pricing
// model. It must respect ctx cancellation; the cache bounds it with the
// configured fetch timeout.
type FetchFunc func(ctx context.Context) ([]catalog.PricingRecord, error)

var errNoRecords = errors.New("fetch returned no records")

const (
	defaultCatalogTTL   = 1 * time.Hour
	defaultFetchTimeout = 30 * time.Second
)

// CatalogCache is a two-layer (in-memory + SQLite) TTL cache of pricing
// catalogs keyed by provider and pricing model. A fresh entry is served
// without fetching; on miss the fetch is single-flighted so N simultaneous
// misses trigger one upstream call; on fetch failure a stale entry is served
// as a fallback. GetOrFetch never returns an error: no data at all yields an
// empty slice, which callers must treat as "no data".
//
// All methods are nil-safe with respect to the database: if db is nil the
// cache operates purely in-memory.
type CatalogCache struct {
	db           *sql.DB
	defaultTTL   time.Duration
	fetchTimeout time.Duration

	mu      sync.RWMutex
	entries map[string]catalog.CacheEntry
	ttls    map[string]time.Duration

	group singleflight.Group

	now func() time.Time
}

// NewCatalogCache creates a CatalogCache backed by the given database.
// Zero ttl or fetchTimeout fall back to the defaults (1h, 30s).
func NewCatalogCache(db *sql.DB, ttl, fetchTimeout time.Duration) *CatalogCache {
	if ttl <= 0 {
		ttl = defaultCatalogTTL
	}
	if fetchTimeout <= 0 {
		fetchTimeout = defaultFetchTimeout
	}
	return &CatalogCache{
		db:           db,
		defaultTTL:   ttl,
		fetchTimeout: fetchTimeout,
		entries:      make(map[string]catalog.CacheEntry),
		ttls:         make(map[string]time.Duration),
		now:          time.Now,
	}
}

func cacheKey(provider catalog.Provider, model catalog.PricingModel) string {
	return string(provider) + ":" + string(model)
}

// SetTTL overrides the TTL for one provider+model key.
func (c *CatalogCache) SetTTL(provider catalog.Provider, model catalog.PricingModel, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ttls[cacheKey(provider, model)] = ttl
}

func (c *CatalogCache) ttlFor(key string) time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if ttl, ok := c.ttls[key]; ok {
		return ttl
	}
	return c.defaultTTL
}

// GetOrFetch returns the cached records for provider+model, fetching on a
// miss. Within the TTL the cached entry is returned without invoking fetch.
// On fetch failure or an empty fetch result, a stale entry is served if one
// exists; otherwise the result is empty.
func (c *CatalogCache) GetOrFetch(ctx context.Context, provider catalog.Provider, model catalog.PricingModel, fetch FetchFunc) []catalog.PricingRecord {
	key := cacheKey(provider, model)

	if e, ok := c.freshEntry(key); ok {
		intmetrics.CacheHits.WithLabelValues(string(provider), string(model)).Inc()
		return e.Records
	}

	// Promote a persisted entry before fetching: a fresh one is a hit, a
	// stale one becomes the fallback candidate.
	if e, ok := c.loadPersisted(provider, model); ok {
		c.mu.Lock()
		if cur, exists := c.entries[key]; !exists || e.FetchedAt.After(cur.FetchedAt) {
			c.entries[key] = e
		}
		c.mu.Unlock()
		if c.now().Sub(e.FetchedAt) < c.ttlFor(key) {
			intmetrics.CacheHits.WithLabelValues(string(provider), string(model)).Inc()
			return e.Records
		}
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		// A concurrent caller may have refreshed while we waited.
		if e, ok := c.freshEntry(key); ok {
			return e.Records, nil
		}
		return c.refresh(ctx, provider, model, fetch)
	})
	if err == nil {
		return v.([]catalog.PricingRecord)
	}

	if e, ok := c.anyEntry(key, provider, model); ok {
		slog.Warn("catalog cache: refresh failed, serving stale entry",
			"provider", provider, "model", model,
			"age", c.now().Sub(e.FetchedAt).Round(time.Second), "error", err)
		intmetrics.CacheStaleServed.WithLabelValues(string(provider), string(model)).Inc()
		return e.Records
	}

	slog.Warn("catalog cache: no data available",
		"provider", provider, "model", model, "error", err)
	return nil
}

// Refresh forces an upstream fetch regardless of entry age. On success the
// entry is replaced and the new record count returned; on failure the old
// entry is left untouched.
func (c *CatalogCache) Refresh(ctx context.Context, provider catalog.Provider, model catalog.PricingModel, fetch FetchFunc) (int, error) {
	v, err, _ := c.group.Do("refresh:"+cacheKey(provider, model), func() (any, error) {
		return c.refresh(ctx, provider, model, fetch)
	})
	if err != nil {
		return 0, err
	}
	return len(v.([]catalog.PricingRecord)), nil
}

func (c *CatalogCache) refresh(ctx context.Context, provider catalog.Provider, model catalog.PricingModel, fetch FetchFunc) ([]catalog.PricingRecord, error) {
	fctx := ctx
	if c.fetchTimeout > 0 {
		var cancel context.CancelFunc
		fctx, cancel = context.WithTimeout(ctx, c.fetchTimeout)
		defer cancel()
	}

	start := time.Now()
	records, err := fetch(fctx)
	intmetrics.CatalogFetchDuration.WithLabelValues(string(provider), string(model)).Observe(time.Since(start).Seconds())
	if err != nil {
		intmetrics.CatalogFetchTotal.WithLabelValues(string(provider), string(model), "error").Inc()
		return nil, err
	}

	records, dropped := catalog.SanitizeRecords(records)
	if dropped > 0 {
		slog.Warn("catalog cache: dropped invalid records at ingestion",
			"provider", provider, "model", model, "dropped", dropped)
		intmetrics.CatalogRecordsDropped.WithLabelValues(string(provider), string(model)).Add(float64(dropped))
	}
	if len(records) == 0 {
		intmetrics.CatalogFetchTotal.WithLabelValues(string(provider), string(model), "empty").Inc()
		return nil, errNoRecords
	}

	c.put(provider, model, records)
	intmetrics.CatalogFetchTotal.WithLabelValues(string(provider), string(model), "success").Inc()
	intmetrics.CatalogRecords.WithLabelValues(string(provider), string(model)).Set(float64(len(records)))
	return records, nil
}

func (c *CatalogCache) freshEntry(key string) (catalog.CacheEntry, bool) {
	ttl := c.ttlFor(key)
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	if !ok || c.now().Sub(e.FetchedAt) >= ttl {
		return catalog.CacheEntry{}, false
	}
	return e, true
}

// anyEntry returns an entry of any age, preferring memory over SQLite.
func (c *CatalogCache) anyEntry(key string, provider catalog.Provider, model catalog.PricingModel) (catalog.CacheEntry, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		return e, true
	}
	return c.loadPersisted(provider, model)
}

// put replaces the entry atomically in memory and persists it so a process
// restart does not force an immediate re-fetch storm.
func (c *CatalogCache) put(provider catalog.Provider, model catalog.PricingModel, records []catalog.PricingRecord) {
	entry := catalog.CacheEntry{Records: records, FetchedAt: c.now()}

	c.mu.Lock()
	c.entries[cacheKey(provider, model)] = entry
	c.mu.Unlock()

	if c.db == nil {
		return
	}

	blob, err := json.Marshal(records)
	if err != nil {
		slog.Warn("catalog cache: marshaling records for persistence failed",
			"provider", provider, "model", model, "error", err)
		return
	}
	_, err = c.db.Exec(
		`INSERT OR REPLACE INTO catalog_cache (provider, pricing_model, records, fetched_at)
		 VALUES (?, ?, ?, ?)`,
		string(provider), string(model), string(blob), entry.FetchedAt.Unix(),
	)
	if err != nil {
		slog.Warn("catalog cache: persisting entry failed",
			"provider", provider, "model", model, "error", err)
	}
}

func (c *CatalogCache) loadPersisted(provider catalog.Provider, model catalog.PricingModel) (catalog.CacheEntry, bool) {
	if c.db == nil {
		return catalog.CacheEntry{}, false
	}

	var blob string
	var fetchedAt int64
	err := c.db.QueryRow(
		`SELECT records, fetched_at FROM catalog_cache WHERE provider = ? AND pricing_model = ?`,
		string(provider), string(model),
	).Scan(&blob, &fetchedAt)
	if err != nil {
		return catalog.CacheEntry{}, false
	}

	var records []catalog.PricingRecord
	if err := json.Unmarshal([]byte(blob), &records); err != nil {
		slog.Warn("catalog cache: unmarshaling persisted entry failed",
			"provider", provider, "model", model, "error", err)
		return catalog.CacheEntry{}, false
	}

	return catalog.CacheEntry{Records: records, FetchedAt: time.Unix(fetchedAt, 0)}, true
}
