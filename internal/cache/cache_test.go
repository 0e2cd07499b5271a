package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisStore(t *testing.T) (Store, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, time.Minute), srv
}

func TestRedisStore_GetSetDelete(t *testing.T) {
	store, srv := newTestRedisStore(t)
	ctx := context.Background()

	_, err := store.Get(ctx, "orders:1")
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, store.Set(ctx, "orders:1", []byte("one"), 0))
	require.NoError(t, store.Set(ctx, "orders:2", []byte("two"), time.Second))
	assert.Equal(t, time.Minute, srv.TTL("orders:1"))

	got, err := store.Get(ctx, "orders:1")
	require.NoError(t, err)
	assert.Equal(t, []byte("one"), got)

	require.NoError(t, store.Delete(ctx, "orders:1", "orders:2", ""))
	assert.False(t, srv.Exists("orders:1"))
	assert.False(t, srv.Exists("orders:2"))
}

func TestRedisStore_Incr(t *testing.T) {
	store, _ := newTestRedisStore(t)
	ctx := context.Background()

	first, err := store.Incr(ctx, "loads:sequence")
	require.NoError(t, err)
	second, err := store.Incr(ctx, "loads:sequence")
	require.NoError(t, err)

	assert.Equal(t, int64(1), first)
	assert.Equal(t, int64(2), second)
}

func TestNoopStore(t *testing.T) {
	store := Noop()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", []byte("v"), 0))
	_, err := store.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
	_, err = store.Incr(ctx, "k")
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestJSONHelpers(t *testing.T) {
	store, _ := newTestRedisStore(t)
	ctx := context.Background()

	type snapshot struct {
		ID     string `json:"id"`
		Orders []int  `json:"orders"`
	}

	require.NoError(t, SetJSON(ctx, store, "loads:a", snapshot{ID: "a", Orders: []int{3, 1}}, 0))

	got, err := GetJSON[snapshot](ctx, store, "loads:a")
	require.NoError(t, err)
	assert.Equal(t, &snapshot{ID: "a", Orders: []int{3, 1}}, got)

	_, err = GetJSON[snapshot](ctx, store, "loads:b")
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, store.Set(ctx, "loads:bad", []byte("{"), 0))
	_, err = GetJSON[snapshot](ctx, store, "loads:bad")
	assert.ErrorContains(t, err, "decode cached loads:bad")

	_, err = GetJSON[snapshot](ctx, nil, "loads:a")
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.NoError(t, SetJSON(ctx, nil, "loads:a", snapshot{}, 0))
}
