package services

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/yathboss/revenue-vision/internal/database"
	"github.com/yathboss/revenue-vision/internal/models"
)

const resultCachePrefix = "forecast:result:"

// ResultCache memoizes complete forecast payloads by request signature.
// The in-memory tier lives for the process lifetime with no eviction
// (bounded signature space); an optional Redis tier persists results
// across restarts. Redis failures degrade to a recompute and never
// corrupt entries for other signatures.
type ResultCache struct {
	mu      sync.Mutex
	entries map[string]*models.ForecastPayload
	locks   map[string]*sync.Mutex

	redis  *database.RedisClient
	logger *logrus.Logger

	hits   atomic.Int64
	misses atomic.Int64
}

// NewResultCache builds the cache; redis may be nil to run memory-only.
func NewResultCache(redis *database.RedisClient, logger *logrus.Logger) *ResultCache {
	return &ResultCache{
		entries: make(map[string]*models.ForecastPayload),
		locks:   make(map[string]*sync.Mutex),
		redis:   redis,
		logger:  logger,
	}
}

// GetOrCompute returns the cached payload for the signature, computing it
// at most once: concurrent callers for the same signature block on a
// per-signature lock and read the stored result. The bool reports a hit.
func (c *ResultCache) GetOrCompute(ctx context.Context, signature string, compute func() (*models.ForecastPayload, error)) (*models.ForecastPayload, bool, error) {
	if payload, ok := c.lookup(signature); ok {
		c.hits.Add(1)
		return payload, true, nil
	}

	lock := c.signatureLock(signature)
	lock.Lock()
	defer lock.Unlock()

	// Double-check under the signature lock.
	if payload, ok := c.lookup(signature); ok {
		c.hits.Add(1)
		return payload, true, nil
	}

	if payload, ok := c.lookupRedis(ctx, signature); ok {
		c.store(signature, payload)
		c.hits.Add(1)
		return payload, true, nil
	}

	payload, err := compute()
	if err != nil {
		return nil, false, err
	}
	c.misses.Add(1)
	c.store(signature, payload)
	c.storeRedis(ctx, signature, payload)

	return payload, false, nil
}

// Stats reports hit and miss counts.
func (c *ResultCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// Flush clears both tiers. Manual invalidation entry point for when the
// underlying ledger changes.
func (c *ResultCache) Flush(ctx context.Context) error {
	c.mu.Lock()
	c.entries = make(map[string]*models.ForecastPayload)
	c.mu.Unlock()

	if c.redis != nil {
		if err := c.redis.DeleteByPrefix(ctx, resultCachePrefix); err != nil {
			return err
		}
	}
	return nil
}

func (c *ResultCache) lookup(signature string) (*models.ForecastPayload, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	payload, ok := c.entries[signature]
	return payload, ok
}

func (c *ResultCache) store(signature string, payload *models.ForecastPayload) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[signature] = payload
}

func (c *ResultCache) lookupRedis(ctx context.Context, signature string) (*models.ForecastPayload, bool) {
	if c.redis == nil {
		return nil, false
	}
	data, err := c.redis.Get(ctx, resultCachePrefix+signature)
	if err != nil {
		return nil, false
	}
	var payload models.ForecastPayload
	if err := json.Unmarshal([]byte(data), &payload); err != nil {
		c.logger.WithError(err).WithField("signature", signature).
			Warn("Discarding undecodable cached result")
		return nil, false
	}
	return &payload, true
}

func (c *ResultCache) storeRedis(ctx context.Context, signature string, payload *models.ForecastPayload) {
	if c.redis == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		c.logger.WithError(err).WithField("signature", signature).
			Warn("Failed to encode result for cache")
		return
	}
	if err := c.redis.Set(ctx, resultCachePrefix+signature, data, 0); err != nil {
		c.logger.WithError(err).WithField("signature", signature).
			Warn("Failed to persist result to cache")
	}
}

func (c *ResultCache) signatureLock(signature string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	lock, ok := c.locks[signature]
	if !ok {
		lock = &sync.Mutex{}
		c.locks[signature] = lock
	}
	return lock
}
