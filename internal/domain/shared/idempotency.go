package shared

import (
	"context"
	"time"
)

// StoredResponse is a response captured under an idempotency key. Retries of
// the same mutation replay it instead of executing again.
type StoredResponse struct {
	Status int    `json:"status"`
	Body   []byte `json:"body"`
}

// IdempotencyStore keeps the first response produced under an idempotency
// key for a bounded time.
type IdempotencyStore interface {
	// Get returns the stored response for the key, or nil when the key is
	// unknown or expired.
	Get(ctx context.Context, key string) (*StoredResponse, error)

	// Put stores a response under the key with a TTL. An existing entry is
	// kept; the first response wins.
	Put(ctx context.Context, key string, response StoredResponse, ttl time.Duration) error

	// Close releases the store's resources.
	Close() error
}
