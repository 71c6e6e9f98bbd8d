package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Asdjeiflv/InvoicePilot/internal/domain/billing"
)

func TestInMemoryClientCache(t *testing.T) {
	now := time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	c := NewInMemoryClientCache(5*time.Minute, clock)
	ctx := context.Background()

	_, ok := c.GetActive(ctx)
	assert.False(t, ok, "empty cache must miss")

	client, err := billing.NewClient("ACME", "Acme Corp", "Jordan", "ap@acme.example", 30)
	require.NoError(t, err)
	c.SetActive(ctx, []billing.Client{*client})

	got, ok := c.GetActive(ctx)
	require.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, "ACME", got[0].Code)

	// Expiry is clock-driven
	now = now.Add(6 * time.Minute)
	_, ok = c.GetActive(ctx)
	assert.False(t, ok, "expired entry must miss")
}

func TestInMemoryClientCacheInvalidate(t *testing.T) {
	c := NewInMemoryClientCache(time.Hour, nil)
	ctx := context.Background()

	c.SetActive(ctx, []billing.Client{})
	_, ok := c.GetActive(ctx)
	require.True(t, ok, "an empty listing is still a valid entry")

	c.Invalidate(ctx)
	_, ok = c.GetActive(ctx)
	assert.False(t, ok)
}

func TestInMemoryClientCacheCopies(t *testing.T) {
	c := NewInMemoryClientCache(time.Hour, nil)
	ctx := context.Background()

	client, err := billing.NewClient("ACME", "Acme Corp", "", "", 30)
	require.NoError(t, err)
	c.SetActive(ctx, []billing.Client{*client})

	got, ok := c.GetActive(ctx)
	require.True(t, ok)
	got[0].Code = "MUTATED"

	again, ok := c.GetActive(ctx)
	require.True(t, ok)
	assert.Equal(t, "ACME", again[0].Code, "callers must not share the cached slice")
}
