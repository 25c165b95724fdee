// Package respcache is a time-boxed cache of assembled search outputs,
// backed by the shared key-value store. It is injected into the pipeline as
// an explicit dependency; a miss or a store failure is never fatal.
package respcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/worshipdeck/sheetsearch/internal/db"
	"github.com/worshipdeck/sheetsearch/internal/domain"
	"github.com/worshipdeck/sheetsearch/internal/songtext"
)

const cacheKeyPrefix = "resp_cache:"

// store is the consumer interface for the response cache.
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Key identifies one cacheable search. Queries differing only in whitespace
// or case share an entry.
type Key struct {
	Query string
	Key   string
	Limit int
}

func (k Key) hash(prefix string) string {
	h := sha256.Sum256([]byte(songtext.Normalize(k.Query) + "\x00" + k.Key + "\x00" + strconv.Itoa(k.Limit)))
	return prefix + cacheKeyPrefix + hex.EncodeToString(h[:])
}

// Cache stores search outputs with a TTL.
type Cache struct {
	store      store
	keyPrefix  string
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a response cache.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(
	s store, keyPrefix string, ttl time.Duration,
	cacheTotal *prometheus.CounterVec, logger *zap.Logger,
) *Cache {
	return &Cache{store: s, keyPrefix: keyPrefix, ttl: ttl, cacheTotal: cacheTotal, logger: logger}
}

// Get returns a cached output, if present and parseable.
func (c *Cache) Get(ctx context.Context, key Key) (domain.SearchOutput, bool) {
	data, err := c.store.Get(ctx, key.hash(c.keyPrefix))
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to read response cache", zap.Error(err))
		}
		c.incCache("miss")
		return domain.SearchOutput{}, false
	}

	var out domain.SearchOutput
	if err := json.Unmarshal(data, &out); err != nil {
		c.logger.Warn("Failed to parse cached response", zap.Error(err))
		c.incCache("miss")
		return domain.SearchOutput{}, false
	}

	c.incCache("hit")
	return out, true
}

// Set stores an output under the key for the cache's TTL.
func (c *Cache) Set(ctx context.Context, key Key, out domain.SearchOutput) {
	data, err := json.Marshal(out)
	if err != nil {
		c.logger.Warn("Failed to encode response for cache", zap.Error(err))
		return
	}
	if err := c.store.SetWithTTL(ctx, key.hash(c.keyPrefix), data, c.ttl); err != nil {
		c.logger.Warn("Failed to write response cache", zap.Error(err))
	}
}

func (c *Cache) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}
