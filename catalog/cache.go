package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/growteq/storefront/localstore"
)

// CachePrefix prefixes every catalog cache key in local storage.
const CachePrefix = "@growteq_flower_cache_"

// DefaultCacheTTL is how long a cached catalog read is served without a fetch.
const DefaultCacheTTL = 30 * time.Minute

type cacheEntry struct {
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`
}

type cache struct {
	store  localstore.Store
	ttl    time.Duration
	now    func() time.Time
	logger *zap.Logger
}

// read decodes the entry under key into out. Expired entries are skipped
// unless ignoreExpiry is set. Unreadable entries count as missing.
func (c *cache) read(ctx context.Context, key string, ignoreExpiry bool, out interface{}) bool {
	raw, err := c.store.Get(ctx, CachePrefix+key)
	if err != nil {
		if !errors.Is(err, localstore.ErrNotFound) {
			c.logger.Warn("catalog cache read failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	var entry cacheEntry
	if err := json.Unmarshal(raw, &entry); err != nil || len(entry.Data) == 0 {
		c.logger.Warn("catalog cache entry corrupt", zap.String("key", key), zap.Error(err))
		return false
	}
	age := c.now().Sub(time.UnixMilli(entry.Timestamp))
	if age > c.ttl && !ignoreExpiry {
		return false
	}
	if err := json.Unmarshal(entry.Data, out); err != nil {
		c.logger.Warn("catalog cache entry corrupt", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (c *cache) write(ctx context.Context, key string, data interface{}) {
	payload, err := json.Marshal(data)
	if err == nil {
		payload, err = json.Marshal(cacheEntry{Data: payload, Timestamp: c.now().UnixMilli()})
	}
	if err == nil {
		err = c.store.Set(ctx, CachePrefix+key, payload)
	}
	if err != nil {
		c.logger.Warn("catalog cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (c *cache) clear(ctx context.Context) error {
	keys, err := c.store.Keys(ctx, CachePrefix)
	if err != nil {
		return err
	}
	for _, k := range keys {
		if err := c.store.Delete(ctx, k); err != nil {
			return err
		}
	}
	return nil
}
