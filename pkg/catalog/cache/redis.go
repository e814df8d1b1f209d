package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"

	"storefront/pkg/catalog"
)

// RedisCache caches products in Redis with a jittered TTL.
type RedisCache struct {
	client  *redis.Client
	baseTTL time.Duration
}

// NewRedisCache returns a cache backed by the given client.
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{
		client:  client,
		baseTTL: 15 * time.Minute,
	}
}

// Get returns the cached product or ErrCacheMiss.
func (r *RedisCache) Get(ctx context.Context, id string) (catalog.Product, error) {
	data, err := r.client.Get(ctx, cacheKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return catalog.Product{}, ErrCacheMiss
	}
	if err != nil {
		return catalog.Product{}, fmt.Errorf("redis get failed: %w", err)
	}

	var p catalog.Product
	if err := json.Unmarshal(data, &p); err != nil {
		return catalog.Product{}, fmt.Errorf("unmarshal product failed: %w", err)
	}
	return p, nil
}

// Set stores the product. TTL jitter keeps entries from expiring in lockstep.
func (r *RedisCache) Set(ctx context.Context, p catalog.Product) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal product failed: %w", err)
	}

	ttl := r.baseTTL + time.Duration(rand.Intn(5))*time.Minute
	if err := r.client.Set(ctx, cacheKey(p.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// Delete drops the cached product.
func (r *RedisCache) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, cacheKey(id)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func cacheKey(id string) string {
	return fmt.Sprintf("product:%s", id)
}
