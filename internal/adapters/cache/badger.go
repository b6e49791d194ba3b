// Package cache provides a BadgerDB-backed recommendation cache.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/pai-platform/insight-service/internal/domain"
	"github.com/pai-platform/insight-service/internal/ports"
)

const recommendationKeyPrefix = "recommendation:"

// BadgerCache implements ports.RecommendationCache on BadgerDB. Entries
// carry a native TTL so expiry needs no sweeper, and keys are namespaced by
// normalized keyword plus optional category.
//
// Every operation is best-effort: a cache failure degrades to a miss and is
// logged, never returned.
type BadgerCache struct {
	db     *badger.DB
	logger *slog.Logger
}

// NewBadgerCache opens a BadgerDB at the given path.
func NewBadgerCache(path string, logger *slog.Logger) (*BadgerCache, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil // Suppress BadgerDB internal logs
	opts.ValueLogFileSize = 16 << 20

	return open(opts, logger)
}

// NewInMemoryBadgerCache opens a disk-less BadgerDB, for tests and for
// deployments without a cache volume.
func NewInMemoryBadgerCache(logger *slog.Logger) (*BadgerCache, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil

	return open(opts, logger)
}

func open(opts badger.Options, logger *slog.Logger) (*BadgerCache, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger cache: %w", err)
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &BadgerCache{
		db:     db,
		logger: logger.With(slog.String("component", "cache.BadgerCache")),
	}, nil
}

// Close releases the underlying database.
func (c *BadgerCache) Close() error {
	return c.db.Close()
}

var _ ports.RecommendationCache = (*BadgerCache)(nil)

// Key builds the cache key for a keyword/category pair. Keywords are
// trimmed and lowercased so lookups are insensitive to caller formatting.
func Key(keyword, category string) string {
	key := recommendationKeyPrefix + strings.ToLower(strings.TrimSpace(keyword))
	if category != "" {
		key += ":" + strings.ToLower(strings.TrimSpace(category))
	}
	return key
}

// Get returns the cached result for the pair, or not-ok on miss, expiry, or
// any cache failure.
func (c *BadgerCache) Get(ctx context.Context, keyword, category string) (*domain.SearchResult, bool) {
	var result domain.SearchResult

	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(Key(keyword, category)))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &result)
		})
	})
	if err != nil {
		if !errors.Is(err, badger.ErrKeyNotFound) {
			c.logger.WarnContext(ctx, "cache read failed",
				slog.String("keyword", keyword), slog.Any("error", err))
		}
		return nil, false
	}
	return &result, true
}

// Set stores the result with the given TTL. Failures are logged and dropped.
// Badger stores expiry with one-second granularity, so TTLs under a second
// expire effectively immediately.
func (c *BadgerCache) Set(ctx context.Context, keyword, category string, result *domain.SearchResult, ttl time.Duration) {
	data, err := json.Marshal(result)
	if err != nil {
		c.logger.WarnContext(ctx, "cache marshal failed",
			slog.String("keyword", keyword), slog.Any("error", err))
		return
	}

	err = c.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(Key(keyword, category)), data)
		if ttl > 0 {
			entry = entry.WithTTL(ttl)
		}
		return txn.SetEntry(entry)
	})
	if err != nil {
		c.logger.WarnContext(ctx, "cache write failed",
			slog.String("keyword", keyword), slog.Any("error", err))
	}
}

// Invalidate drops the entry for the pair, if present.
func (c *BadgerCache) Invalidate(ctx context.Context, keyword, category string) {
	err := c.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(Key(keyword, category)))
	})
	if err != nil {
		c.logger.WarnContext(ctx, "cache invalidate failed",
			slog.String("keyword", keyword), slog.Any("error", err))
	}
}
