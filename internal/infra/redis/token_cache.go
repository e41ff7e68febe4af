package redis

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"

	"meeting-brief-service/internal/domain/ports/repository"
)

var _ repository.TokenCache = (*TokenCache)(nil)

// TokenCache stores short-lived credentials keyed by provider. Expiry is
// delegated to redis so a restarted process never sees a stale token.
type TokenCache struct {
	client RedisClient
}

func NewTokenCache(client RedisClient) *TokenCache {
	return &TokenCache{client: client}
}

func tokenKey(key string) string { return "token:" + key }

func (c *TokenCache) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := c.client.Get(ctx, tokenKey(key))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, err
	}
	return val, true, nil
}

func (c *TokenCache) Set(ctx context.Context, key, value string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return c.client.Set(ctx, tokenKey(key), value, ttl)
}

func (c *TokenCache) Invalidate(ctx context.Context, key string) error {
	return c.client.Del(ctx, tokenKey(key))
}
