package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"bazaar/internal/pkg/logger"
	"bazaar/internal/pkg/redis"
	"bazaar/internal/service/product/domain"
)

const productCacheTTL = 10 * time.Minute

// RedisProductCache caches catalog entries by id. Cache failures are
// logged and swallowed so Redis going away never takes reads down.
type RedisProductCache struct {
	client *redis.Client
}

func NewRedisProductCache(client *redis.Client) *RedisProductCache {
	return &RedisProductCache{client: client}
}

func cacheKey(id int64) string {
	return fmt.Sprintf("bazaar:product:%d", id)
}

func (c *RedisProductCache) Get(ctx context.Context, id int64) (*domain.Product, bool) {
	raw, err := c.client.Get(ctx, cacheKey(id))
	if errors.Is(err, redis.ErrCacheMiss) {
		return nil, false
	}
	if err != nil {
		logger.Ctx(ctx).Warn().Err(err).Int64("product_id", id).Msg("product cache read failed")
		return nil, false
	}
	var product domain.Product
	if err := json.Unmarshal([]byte(raw), &product); err != nil {
		logger.Ctx(ctx).Warn().Err(err).Int64("product_id", id).Msg("corrupt product cache entry")
		c.Invalidate(ctx, id)
		return nil, false
	}
	return &product, true
}

func (c *RedisProductCache) Set(ctx context.Context, product *domain.Product) {
	raw, err := json.Marshal(product)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, cacheKey(product.ID), string(raw), productCacheTTL); err != nil {
		logger.Ctx(ctx).Warn().Err(err).Int64("product_id", product.ID).Msg("product cache write failed")
	}
}

func (c *RedisProductCache) Invalidate(ctx context.Context, id int64) {
	if err := c.client.Del(ctx, cacheKey(id)); err != nil {
		logger.Ctx(ctx).Warn().Err(err).Int64("product_id", id).Msg("product cache invalidation failed")
	}
}
