package impl

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jangulo01/webhookd/internal/domain"
	"github.com/jangulo01/webhookd/internal/platform/logger"
	"github.com/jangulo01/webhookd/internal/repository/interfaces"
)

// cachedConfigStore is a cache-aside decorator over a ConfigStore, fronting
// GetActiveByName with Redis since Ingest re-reads the same handful of
// active configs on every request. Grounded on the pack's Redis cache
// wrapper shape (Get/Set/Delete around a redis.Client), generalized to a
// decorator instead of a standalone cache type so callers keep depending on
// interfaces.ConfigStore.
type cachedConfigStore struct {
	interfaces.ConfigStore
	redis *redis.Client
	ttl   time.Duration
	log   *logger.Logger
}

// NewCachedConfigStore wraps an existing ConfigStore with a Redis cache-aside
// layer. If redisClient is nil, it behaves exactly like the wrapped store.
func NewCachedConfigStore(store interfaces.ConfigStore, redisClient *redis.Client, ttl time.Duration) interfaces.ConfigStore {
	if redisClient == nil {
		return store
	}
	return &cachedConfigStore{
		ConfigStore: store,
		redis:       redisClient,
		ttl:         ttl,
		log:         logger.New("config-cache"),
	}
}

func (c *cachedConfigStore) cacheKey(name string) string {
	return "webhookd:config:" + name
}

func (c *cachedConfigStore) GetActiveByName(ctx context.Context, name string) (*domain.WebhookConfig, error) {
	key := c.cacheKey(name)

	if raw, err := c.redis.Get(ctx, key).Bytes(); err == nil {
		var cfg domain.WebhookConfig
		if jsonErr := json.Unmarshal(raw, &cfg); jsonErr == nil {
			return &cfg, nil
		}
	} else if err != redis.Nil {
		c.log.Error("redis config cache read failed: " + err.Error())
	}

	cfg, err := c.ConfigStore.GetActiveByName(ctx, name)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(cfg); err == nil {
		if err := c.redis.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			c.log.Error("redis config cache write failed: " + err.Error())
		}
	}

	return cfg, nil
}

// Update invalidates the cache entry in addition to delegating to the
// wrapped store, since a config's secret/target_url/active flag can change
// underneath a cached read.
func (c *cachedConfigStore) Update(ctx context.Context, cfg *domain.WebhookConfig) error {
	if err := c.ConfigStore.Update(ctx, cfg); err != nil {
		return err
	}
	if err := c.redis.Del(ctx, c.cacheKey(cfg.Name)).Err(); err != nil {
		c.log.Error("redis config cache invalidation failed: " + err.Error())
	}
	return nil
}
