package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return New(rdb), mr
}

type page struct {
	Names []string `json:"names"`
	Total int      `json:"total"`
}

func TestCache_JSONRoundTripAndTTL(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	var got page
	assert.ErrorIs(t, c.GetJSON(ctx, "catalog:list:x", &got), ErrMiss)

	require.NoError(t, c.SetJSON(ctx, "catalog:list:x", page{Names: []string{"Tote"}, Total: 1}, time.Minute))
	require.NoError(t, c.GetJSON(ctx, "catalog:list:x", &got))
	assert.Equal(t, []string{"Tote"}, got.Names)
	assert.Equal(t, time.Minute, mr.TTL("catalog:list:x"))

	mr.FastForward(2 * time.Minute)
	assert.ErrorIs(t, c.GetJSON(ctx, "catalog:list:x", &got), ErrMiss)
}

func TestCache_DeletePrefix(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	for _, k := range []string{"catalog:list:a", "catalog:list:b", "catalog:product:c", "wompi:event:1"} {
		require.NoError(t, c.SetJSON(ctx, k, 1, 0))
	}

	n, err := c.DeletePrefix(ctx, "catalog:")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.True(t, mr.Exists("wompi:event:1"))
	assert.False(t, mr.Exists("catalog:list:a"))
}

func TestCache_Claim(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	ok, err := c.Claim(ctx, "wompi:event:tx-1:APPROVED", 24*time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.Claim(ctx, "wompi:event:tx-1:APPROVED", 24*time.Hour)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 24*time.Hour, mr.TTL("wompi:event:tx-1:APPROVED"))

	require.NoError(t, c.Release(ctx, "wompi:event:tx-1:APPROVED"))
	ok, err = c.Claim(ctx, "wompi:event:tx-1:APPROVED", time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestKey_IsStable(t *testing.T) {
	a := Key("catalog:list", map[string]any{"page": 1, "sort": "newest"})
	b := Key("catalog:list", map[string]any{"sort": "newest", "page": 1})
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, Key("catalog:list", map[string]any{"page": 2, "sort": "newest"}))
}
