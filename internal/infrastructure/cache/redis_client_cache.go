// Package cache provides the Redis-backed client directory cache with an
// in-memory fallback for tests and single-node deployments.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Asdjeiflv/InvoicePilot/internal/domain/billing"
	"github.com/Asdjeiflv/InvoicePilot/internal/infrastructure/config"
)

const activeClientsKey = "invoicepilot:clients:active"

// NewRedisClient connects a Redis client from the configuration and verifies
// the connection.
func NewRedisClient(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// RedisClientCache caches the active client listing in Redis. Cache failures
// degrade to database reads and are logged, never returned.
type RedisClientCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisClientCache creates a cache over an existing Redis client. The
// caller retains ownership of the client and is responsible for closing it.
func NewRedisClientCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisClientCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisClientCache{client: client, ttl: ttl, logger: logger}
}

// GetActive returns the cached active client listing, or ok=false on a miss.
func (c *RedisClientCache) GetActive(ctx context.Context) ([]billing.Client, bool) {
	data, err := c.client.Get(ctx, activeClientsKey).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		c.logger.Warn("client cache read failed", zap.Error(err))
		return nil, false
	}

	var clients []billing.Client
	if err := json.Unmarshal(data, &clients); err != nil {
		c.logger.Warn("client cache entry corrupt, dropping it", zap.Error(err))
		c.Invalidate(ctx)
		return nil, false
	}
	return clients, true
}

// SetActive stores the active client listing with the configured TTL.
func (c *RedisClientCache) SetActive(ctx context.Context, clients []billing.Client) {
	data, err := json.Marshal(clients)
	if err != nil {
		c.logger.Warn("client cache marshal failed", zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, activeClientsKey, data, c.ttl).Err(); err != nil {
		c.logger.Warn("client cache write failed", zap.Error(err))
	}
}

// Invalidate drops the cached listing. Called after every client mutation.
func (c *RedisClientCache) Invalidate(ctx context.Context) {
	if err := c.client.Del(ctx, activeClientsKey).Err(); err != nil {
		c.logger.Warn("client cache invalidation failed", zap.Error(err))
	}
}
