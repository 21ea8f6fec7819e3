package utils

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedThing struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func newCacheClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestCacheRoundTrip(t *testing.T) {
	_, rdb := newCacheClient(t)
	ctx := context.Background()

	// Missing key is a miss, not an error
	var out cachedThing
	found, err := GetCache(ctx, rdb, "thing:1", &out)
	require.NoError(t, err)
	assert.False(t, found)

	// Set then get round-trips the value
	in := cachedThing{Name: "hello", Count: 3}
	require.NoError(t, SetCache(ctx, rdb, "thing:1", in, time.Minute))
	found, err = GetCache(ctx, rdb, "thing:1", &out)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, in, out)
}

func TestCacheExpiry(t *testing.T) {
	mr, rdb := newCacheClient(t)
	ctx := context.Background()

	require.NoError(t, SetCache(ctx, rdb, "thing:1", cachedThing{Name: "x"}, time.Minute))
	mr.FastForward(61 * time.Second)

	var out cachedThing
	found, err := GetCache(ctx, rdb, "thing:1", &out)
	require.NoError(t, err)
	assert.False(t, found, "expired keys are misses")
}

func TestDeleteCache(t *testing.T) {
	mr, rdb := newCacheClient(t)
	ctx := context.Background()

	require.NoError(t, SetCache(ctx, rdb, "a", cachedThing{}, time.Minute))
	require.NoError(t, SetCache(ctx, rdb, "b", cachedThing{}, time.Minute))
	require.NoError(t, DeleteCache(ctx, rdb, "a", "b"))
	assert.False(t, mr.Exists("a"))
	assert.False(t, mr.Exists("b"))

	// Deleting nothing is a no-op
	require.NoError(t, DeleteCache(ctx, rdb))
}

func TestNilClientIsDisabledCache(t *testing.T) {
	ctx := context.Background()

	var out cachedThing
	found, err := GetCache(ctx, nil, "k", &out)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, SetCache(ctx, nil, "k", cachedThing{}, time.Minute))
	require.NoError(t, DeleteCache(ctx, nil, "k"))
}
