package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisTokens stores session tokens in Redis with a TTL.
type RedisTokens struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisTokens returns a Redis-backed token store.
func NewRedisTokens(client *redis.Client, ttl time.Duration) *RedisTokens {
	return &RedisTokens{client: client, ttl: ttl}
}

// Set stores the token.
func (r *RedisTokens) Set(ctx context.Context, sid, username string) error {
	if err := r.client.Set(ctx, tokenKey(sid), username, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// Get resolves the token to its username, or ErrNoSession.
func (r *RedisTokens) Get(ctx context.Context, sid string) (string, error) {
	username, err := r.client.Get(ctx, tokenKey(sid)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNoSession
	}
	if err != nil {
		return "", fmt.Errorf("redis get failed: %w", err)
	}
	return username, nil
}

// Del removes the token.
func (r *RedisTokens) Del(ctx context.Context, sid string) error {
	if err := r.client.Del(ctx, tokenKey(sid)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func tokenKey(sid string) string {
	return "session:" + sid
}
