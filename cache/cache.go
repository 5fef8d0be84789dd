// Package cache provides the content-addressed lookup cache shared by the
// external-service clients. Entries are keyed by request fingerprint and
// carry a TTL; concurrent callers for the same key share a single in-flight
// fetch instead of issuing duplicate network calls.
package cache

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/teranos/bomx/db"
	"github.com/teranos/bomx/errors"
)

// FetchFunc produces the value for a cache key on miss
type FetchFunc func(ctx context.Context) ([]byte, error)

// Config holds cache configuration
type Config struct {
	// Path is the SQLite file backing the persistent tier.
	// Empty means memory-only (tests, ephemeral runs).
	Path       string
	MaxEntries int
	Logger     *zap.SugaredLogger
}

type entry struct {
	value     []byte
	expiresAt time.Time // zero = never expires
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// Cache is a two-tier (LRU memory + optional SQLite) lookup cache with
// single-flight fetch discipline.
type Cache struct {
	mem    *lru.Cache[string, entry]
	store  *Store
	group  singleflight.Group
	logger *zap.SugaredLogger

	// now is swappable for expiry tests
	now func() time.Time
}

// New creates a cache. A non-empty cfg.Path opens (creating if needed) the
// SQLite persistent tier so catalog lookups survive process restarts.
func New(cfg Config) (*Cache, error) {
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = 4096
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	mem, err := lru.New[string, entry](cfg.MaxEntries)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create memory tier")
	}

	var store *Store
	if cfg.Path != "" {
		store, err = OpenStore(cfg.Path)
		if err != nil {
			return nil, errors.Wrap(err, "failed to open persistent tier")
		}
	}

	return &Cache{
		mem:    mem,
		store:  store,
		logger: logger,
		now:    time.Now,
	}, nil
}

// GetOrFetch returns the cached value for key, fetching it at most once per
// expiry window. Concurrent callers for the same key block on the shared
// in-flight fetch and all receive its result. Expired entries are refetched
// (expire-then-refetch, no stale serving). ttl <= 0 means the entry never
// expires. Failed fetches are never written to either tier.
func (c *Cache) GetOrFetch(ctx context.Context, key string, ttl time.Duration, fetch FetchFunc) ([]byte, error) {
	if key == "" {
		return nil, errors.Wrap(errors.ErrInvalidRequest, "empty cache key")
	}

	if e, ok := c.mem.Get(key); ok && !e.expired(c.now()) {
		c.logger.Debugw("cache hit", "key", key, "tier", "memory")
		return e.value, nil
	}

	v, err, shared := c.group.Do(key, func() (interface{}, error) {
		// Re-check under the flight: a waiter that lost the race may find the
		// value already filled by the winner.
		if e, ok := c.mem.Get(key); ok && !e.expired(c.now()) {
			return e.value, nil
		}

		if c.store != nil {
			value, expiresAt, err := c.store.Get(key)
			if err != nil && !errors.IsNotFoundError(err) && !db.IsDatabaseClosed(err) {
				c.logger.Warnw("persistent tier read failed", "key", key, "error", err)
			}
			if err == nil {
				e := entry{value: value, expiresAt: expiresAt}
				if !e.expired(c.now()) {
					c.mem.Add(key, e)
					c.logger.Debugw("cache hit", "key", key, "tier", "sqlite")
					return value, nil
				}
			}
		}

		c.logger.Debugw("cache miss", "key", key)
		value, err := fetch(ctx)
		if err != nil {
			return nil, err
		}

		e := entry{value: value}
		if ttl > 0 {
			e.expiresAt = c.now().Add(ttl)
		}
		c.mem.Add(key, e)
		if c.store != nil {
			if err := c.store.Put(key, value, e.expiresAt); err != nil {
				// Memory tier already holds the value; persistence is best effort
				c.logger.Warnw("persistent tier write failed", "key", key, "error", err)
			}
		}

		return value, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		c.logger.Debugw("cache fetch shared with concurrent caller", "key", key)
	}

	return v.([]byte), nil
}

// Len returns the number of entries in the memory tier
func (c *Cache) Len() int {
	return c.mem.Len()
}

// Close releases the persistent tier, if any
func (c *Cache) Close() error {
	if c.store != nil {
		return c.store.Close()
	}
	return nil
}
