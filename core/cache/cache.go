package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"schedulr-api/core/config"
	"schedulr-api/core/constants"
	"schedulr-api/core/logger"
)

// Cache is the shared Redis surface. Slot caching keys are namespaced per
// organizer so rule/booking writes can invalidate everything for one
// organizer without touching others.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	Expire(ctx context.Context, key string, ttl time.Duration) error

	GetSlots(ctx context.Context, organizerID, key string) (string, bool, error)
	SetSlots(ctx context.Context, organizerID, key, value string) error
	InvalidateSlots(ctx context.Context, organizerID string) error

	IsTokenBlacklisted(ctx context.Context, token string) (bool, error)
	AddToTokenBlacklist(ctx context.Context, token string, ttl time.Duration) error
}

type redisCache struct {
	client *redis.Client
}

func NewRedisCache(cfg config.RedisConfig) (Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Error("Cache:Init:PingError", "addr", cfg.Addr, "error", err)
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("Cache:Init:Success", "addr", cfg.Addr, "db", cfg.DB)
	return &redisCache{client: client}, nil
}

func (c *redisCache) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (c *redisCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

func (c *redisCache) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

func (c *redisCache) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return c.client.Expire(ctx, key, ttl).Err()
}

func slotKey(organizerID, key string) string {
	return constants.RedisKeySlotCache + organizerID + ":" + key
}

func (c *redisCache) GetSlots(ctx context.Context, organizerID, key string) (string, bool, error) {
	return c.Get(ctx, slotKey(organizerID, key))
}

func (c *redisCache) SetSlots(ctx context.Context, organizerID, key, value string) error {
	return c.client.Set(ctx, slotKey(organizerID, key), value, constants.SlotCacheTTL).Err()
}

func (c *redisCache) InvalidateSlots(ctx context.Context, organizerID string) error {
	pattern := constants.RedisKeySlotCache + organizerID + ":*"
	iter := c.client.Scan(ctx, 0, pattern, 200).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	return c.Del(ctx, keys...)
}

func (c *redisCache) IsTokenBlacklisted(ctx context.Context, token string) (bool, error) {
	_, found, err := c.Get(ctx, constants.RedisKeyTokenBlacklist+token)
	return found, err
}

func (c *redisCache) AddToTokenBlacklist(ctx context.Context, token string, ttl time.Duration) error {
	return c.Set(ctx, constants.RedisKeyTokenBlacklist+token, "1", ttl)
}
