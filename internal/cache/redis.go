package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/ShiLuis/KapePOS/internal/domain"
	"github.com/redis/go-redis/v9"
)

const menuKey = "menu:all"

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{
		client:  client,
		baseTTL: 15 * time.Minute,
		menuTTL: 5 * time.Minute,
	}
}

type RedisCache struct {
	client  *redis.Client
	baseTTL time.Duration
	menuTTL time.Duration
}

func (r *RedisCache) Get(ctx context.Context, terminalID string) (*domain.Cart, error) {
	var cart domain.Cart
	if err := r.getJSON(ctx, cartKey(terminalID), &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *RedisCache) Set(ctx context.Context, terminalID string, cart *domain.Cart) error {
	// jitter spreads expiry of carts written at the same moment
	ttl := r.baseTTL + time.Duration(rand.IntN(5))*time.Minute
	return r.setJSON(ctx, cartKey(terminalID), cart, ttl)
}

func (r *RedisCache) Delete(ctx context.Context, terminalID string) error {
	return r.del(ctx, cartKey(terminalID))
}

func (r *RedisCache) GetMenu(ctx context.Context) ([]domain.MenuItem, error) {
	var items []domain.MenuItem
	if err := r.getJSON(ctx, menuKey, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *RedisCache) SetMenu(ctx context.Context, items []domain.MenuItem) error {
	return r.setJSON(ctx, menuKey, items, r.menuTTL)
}

func (r *RedisCache) InvalidateMenu(ctx context.Context) error {
	return r.del(ctx, menuKey)
}

// MarkProcessed records key and reports whether this was the first time it was
// seen within ttl.
func (r *RedisCache) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := r.client.SetNX(ctx, "processed:"+key, 1, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx failed: %w", err)
	}
	return ok, nil
}

func (r *RedisCache) getJSON(ctx context.Context, key string, dst any) error {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrCacheMiss
	}
	if err != nil {
		return fmt.Errorf("redis get failed: %w", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("unmarshal %s failed: %w", key, err)
	}
	return nil
}

func (r *RedisCache) setJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s failed: %w", key, err)
	}
	if err := r.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisCache) del(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func cartKey(terminalID string) string {
	return fmt.Sprintf("cart:%s", terminalID)
}
