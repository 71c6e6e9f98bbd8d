package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Asdjeiflv/InvoicePilot/internal/domain/shared"
)

const idempotencyKeyPrefix = "invoicepilot:idempotency:"

// RedisIdempotencyStore implements shared.IdempotencyStore on Redis, for
// deployments where several instances must share idempotency state.
type RedisIdempotencyStore struct {
	client *redis.Client
}

// NewRedisIdempotencyStore creates a store over an existing Redis client.
// The caller retains ownership of the client.
func NewRedisIdempotencyStore(client *redis.Client) *RedisIdempotencyStore {
	return &RedisIdempotencyStore{client: client}
}

// Get returns the stored response for the key, or nil on a miss.
func (s *RedisIdempotencyStore) Get(ctx context.Context, key string) (*shared.StoredResponse, error) {
	data, err := s.client.Get(ctx, idempotencyKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read idempotency key: %w", err)
	}
	var response shared.StoredResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return nil, fmt.Errorf("corrupt idempotency entry: %w", err)
	}
	return &response, nil
}

// Put stores a response under the key. SETNX keeps the first write.
func (s *RedisIdempotencyStore) Put(ctx context.Context, key string, response shared.StoredResponse, ttl time.Duration) error {
	data, err := json.Marshal(response)
	if err != nil {
		return err
	}
	if err := s.client.SetNX(ctx, idempotencyKeyPrefix+key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store idempotency key: %w", err)
	}
	return nil
}

// Close closes the underlying Redis client.
func (s *RedisIdempotencyStore) Close() error {
	return s.client.Close()
}

var _ shared.IdempotencyStore = (*RedisIdempotencyStore)(nil)
