// Package cache keeps cart sessions in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"printsociety/internal/cart"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned when no cart is stored under the requested ID.
var ErrCacheMiss = errors.New("cache miss")

// CartStore persists cart sessions.
type CartStore interface {
	Get(ctx context.Context, id uuid.UUID) (cart.Cart, error)
	Set(ctx context.Context, c cart.Cart) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// RedisCache stores carts as JSON with a jittered TTL, so sessions created together do not
// all expire together. Writes are last-write-wins.
type RedisCache struct {
	client  redis.UniversalClient
	baseTTL time.Duration
	jitter  time.Duration
}

// NewRedisCache creates a cart store. A zero baseTTL defaults to 7 days.
func NewRedisCache(client redis.UniversalClient, baseTTL time.Duration) *RedisCache {
	if baseTTL <= 0 {
		baseTTL = 7 * 24 * time.Hour
	}
	return &RedisCache{
		client:  client,
		baseTTL: baseTTL,
		jitter:  baseTTL / 10,
	}
}

func (r *RedisCache) Get(ctx context.Context, id uuid.UUID) (cart.Cart, error) {
	data, err := r.client.Get(ctx, cacheKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return cart.Cart{}, ErrCacheMiss
	}
	if err != nil {
		return cart.Cart{}, fmt.Errorf("redis get failed: %w", err)
	}

	var c cart.Cart
	if err := json.Unmarshal(data, &c); err != nil {
		return cart.Cart{}, fmt.Errorf("unmarshal cart failed: %w", err)
	}

	return c, nil
}

// Set stores c under its ID and refreshes the TTL.
func (r *RedisCache) Set(ctx context.Context, c cart.Cart) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal cart failed: %w", err)
	}

	if err := r.client.Set(ctx, cacheKey(c.ID), data, r.ttl()).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisCache) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.client.Del(ctx, cacheKey(id)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func (r *RedisCache) ttl() time.Duration {
	if r.jitter <= 0 {
		return r.baseTTL
	}
	return r.baseTTL + rand.N(r.jitter)
}

func cacheKey(id uuid.UUID) string {
	return fmt.Sprintf("cart:%s", id)
}
