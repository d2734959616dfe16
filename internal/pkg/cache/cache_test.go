package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache_SetGet(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache("storefront")

	v, err := c.Get(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, v)

	require.NoError(t, c.Set(ctx, "k", "order-1", time.Minute))
	v, err = c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "order-1", v)
}

func TestMemoryCache_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewMemoryCache("storefront")
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "short", "a", time.Second))
	require.NoError(t, c.Set(ctx, "forever", "b", 0))

	now = now.Add(time.Second)

	v, _ := c.Get(ctx, "short")
	assert.Empty(t, v)
	v, _ = c.Get(ctx, "forever")
	assert.Equal(t, "b", v)
	assert.NotContains(t, c.entries, "short")
}

func TestGenerateKey(t *testing.T) {
	assert.Equal(t, "storefront:checkout:abc", NewMemoryCache("storefront").GenerateKey("checkout", "abc"))
	assert.Equal(t, "storefront:checkout:abc", NewRedisCache("localhost:6379", "storefront").GenerateKey("checkout", "abc"))
}
