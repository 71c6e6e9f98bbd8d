package cache

import (
	"context"
	"sync"
	"time"

	"github.com/Asdjeiflv/InvoicePilot/internal/domain/shared"
)

type idempotencyEntry struct {
	response  shared.StoredResponse
	expiresAt time.Time
}

// InMemoryIdempotencyStore is a process-local shared.IdempotencyStore for
// single-node deployments and tests.
type InMemoryIdempotencyStore struct {
	mu      sync.RWMutex
	entries map[string]idempotencyEntry
	clock   shared.Clock
}

// NewInMemoryIdempotencyStore creates an in-memory store. A nil clock uses
// the system clock.
func NewInMemoryIdempotencyStore(clock shared.Clock) *InMemoryIdempotencyStore {
	if clock == nil {
		clock = shared.SystemClock
	}
	return &InMemoryIdempotencyStore{
		entries: make(map[string]idempotencyEntry),
		clock:   clock,
	}
}

// Get returns the stored response for the key, or nil on a miss or after
// expiry. Expired entries are dropped lazily.
func (s *InMemoryIdempotencyStore) Get(_ context.Context, key string) (*shared.StoredResponse, error) {
	s.mu.RLock()
	entry, exists := s.entries[key]
	s.mu.RUnlock()
	if !exists {
		return nil, nil
	}
	if s.clock().After(entry.expiresAt) {
		s.mu.Lock()
		delete(s.entries, key)
		s.mu.Unlock()
		return nil, nil
	}
	response := entry.response
	return &response, nil
}

// Put stores a response under the key; an unexpired existing entry is kept.
func (s *InMemoryIdempotencyStore) Put(_ context.Context, key string, response shared.StoredResponse, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry, exists := s.entries[key]; exists && s.clock().Before(entry.expiresAt) {
		return nil
	}
	s.entries[key] = idempotencyEntry{response: response, expiresAt: s.clock().Add(ttl)}
	return nil
}

// Close drops all entries.
func (s *InMemoryIdempotencyStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]idempotencyEntry)
	return nil
}

var _ shared.IdempotencyStore = (*InMemoryIdempotencyStore)(nil)
