package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"mangwale-nlu/internal/observability/metrics"
	"mangwale-nlu/internal/usecase/enrich"
)

// cacheKeyPrefix namespaces catalog search entries in Redis.
const cacheKeyPrefix = "catalog:search:"

// cachedMiss is stored for queries the catalog answered with no match, so
// repeated lookups for unknown dishes do not hammer the catalog service.
const cachedMiss = "__miss__"

// CachedClient is a Redis read-through cache in front of a catalog searcher.
// It implements enrich.Catalog. Redis failures are logged and treated as
// cache misses; the underlying searcher remains the source of truth.
type CachedClient struct {
	inner enrich.Catalog
	redis *redis.Client
	ttl   time.Duration
}

// NewCachedClient wraps inner with a Redis read-through cache.
func NewCachedClient(inner enrich.Catalog, redisClient *redis.Client, ttl time.Duration) *CachedClient {
	return &CachedClient{
		inner: inner,
		redis: redisClient,
		ttl:   ttl,
	}
}

// Redis exposes the underlying cache client for health checks.
func (c *CachedClient) Redis() *redis.Client {
	return c.redis
}

// Inner exposes the wrapped searcher.
func (c *CachedClient) Inner() enrich.Catalog {
	return c.inner
}

// Search returns the cached product for the query when present, otherwise
// delegates to the inner searcher and caches its answer (including misses).
func (c *CachedClient) Search(ctx context.Context, name string) (*enrich.Product, error) {
	key := cacheKeyPrefix + strings.ToLower(strings.TrimSpace(name))

	cached, err := c.redis.Get(ctx, key).Result()
	switch {
	case err == nil:
		metrics.RecordCatalogCache("hit")
		if cached == cachedMiss {
			return nil, nil
		}
		var product enrich.Product
		if err := json.Unmarshal([]byte(cached), &product); err == nil {
			return &product, nil
		}
		// Corrupt entry: drop it and fall through to the catalog.
		c.redis.Del(ctx, key)
	case errors.Is(err, redis.Nil):
		metrics.RecordCatalogCache("miss")
	default:
		metrics.RecordCatalogCache("error")
		slog.WarnContext(ctx, "catalog cache read failed, falling through",
			slog.String("key", key),
			slog.String("error", err.Error()))
	}

	product, err := c.inner.Search(ctx, name)
	if err != nil {
		return nil, err
	}

	c.store(ctx, key, product)
	return product, nil
}

// store caches the lookup answer best-effort.
func (c *CachedClient) store(ctx context.Context, key string, product *enrich.Product) {
	value := cachedMiss
	if product != nil {
		data, err := json.Marshal(product)
		if err != nil {
			return
		}
		value = string(data)
	}

	if err := c.redis.Set(ctx, key, value, c.ttl).Err(); err != nil {
		slog.WarnContext(ctx, "catalog cache write failed",
			slog.String("key", key),
			slog.String("error", err.Error()))
	}
}

// NewFromConfig builds the catalog searcher described by cfg: the HTTP
// client, wrapped in a Redis cache when a redis address is configured.
func NewFromConfig(cfg *Config) (enrich.Catalog, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client := NewClient(cfg)
	if cfg.RedisAddr == "" {
		return client, nil
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})
	slog.Info("catalog cache enabled",
		slog.String("redis_addr", cfg.RedisAddr),
		slog.Duration("ttl", cfg.CacheTTL))

	return NewCachedClient(client, redisClient, cfg.CacheTTL), nil
}
