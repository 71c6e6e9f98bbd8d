package cache

import (
	"context"
	"sync"
	"time"

	"github.com/Asdjeiflv/InvoicePilot/internal/domain/billing"
	"github.com/Asdjeiflv/InvoicePilot/internal/domain/shared"
)

// InMemoryClientCache is a process-local ClientCache for single-node
// deployments and tests. Entries expire after the TTL.
type InMemoryClientCache struct {
	mu        sync.RWMutex
	clients   []billing.Client
	populated bool
	expiresAt time.Time
	ttl       time.Duration
	clock     shared.Clock
}

// NewInMemoryClientCache creates an in-memory cache. A nil clock uses the
// system clock.
func NewInMemoryClientCache(ttl time.Duration, clock shared.Clock) *InMemoryClientCache {
	if clock == nil {
		clock = shared.SystemClock
	}
	return &InMemoryClientCache{ttl: ttl, clock: clock}
}

// GetActive returns the cached listing, or ok=false on a miss or after expiry.
func (c *InMemoryClientCache) GetActive(_ context.Context) ([]billing.Client, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.populated || c.clock().After(c.expiresAt) {
		return nil, false
	}
	out := make([]billing.Client, len(c.clients))
	copy(out, c.clients)
	return out, true
}

// SetActive stores the listing.
func (c *InMemoryClientCache) SetActive(_ context.Context, clients []billing.Client) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clients = make([]billing.Client, len(clients))
	copy(c.clients, clients)
	c.populated = true
	c.expiresAt = c.clock().Add(c.ttl)
}

// Invalidate drops the cached listing.
func (c *InMemoryClientCache) Invalidate(_ context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clients = nil
	c.populated = false
}
