package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"

	"github.com/vendopos/api/internal/store"
)

type RedisPOSConfigCache struct {
	client *redis.Client
}

func NewRedisPOSConfigCache(addr string, password string, db int) *RedisPOSConfigCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	return &RedisPOSConfigCache{client: client}
}

func (c *RedisPOSConfigCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisPOSConfigCache) Close() error {
	return c.client.Close()
}

func key(tenantID uuid.UUID) string {
	return "pos_config:" + tenantID.String()
}

func (c *RedisPOSConfigCache) Get(ctx context.Context, tenantID uuid.UUID) (*store.POSConfig, bool, error) {
	val, err := c.client.Get(ctx, key(tenantID)).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var cfg store.POSConfig
	if err := json.Unmarshal([]byte(val), &cfg); err != nil {
		return nil, false, err
	}
	return &cfg, true, nil
}

func (c *RedisPOSConfigCache) Set(ctx context.Context, tenantID uuid.UUID, cfg *store.POSConfig, ttl time.Duration) error {
	if cfg == nil {
		return nil
	}
	payload, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key(tenantID), payload, ttl).Err()
}

func (c *RedisPOSConfigCache) Invalidate(ctx context.Context, tenantID uuid.UUID) error {
	return c.client.Del(ctx, key(tenantID)).Err()
}
