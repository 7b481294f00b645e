package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	client, err := Connect(context.Background(), srv.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client, srv
}

func TestLockoutStoreWindow(t *testing.T) {
	client, srv := newTestClient(t)
	store := NewRedisLockoutStore(client)
	ctx := context.Background()
	now := time.Now().UTC()

	st, err := store.RecordFailure(ctx, "login-ip:10.0.0.1", now, 3, time.Minute)
	require.NoError(t, err)
	require.Equal(t, 1, st.FailedCount)
	require.Nil(t, st.LockedUntil)

	_, err = store.RecordFailure(ctx, "login-ip:10.0.0.1", now, 3, time.Minute)
	require.NoError(t, err)
	st, err = store.RecordFailure(ctx, "login-ip:10.0.0.1", now, 3, time.Minute)
	require.NoError(t, err)
	require.NotNil(t, st.LockedUntil)

	got, err := store.Get(ctx, "login-ip:10.0.0.1")
	require.NoError(t, err)
	require.Equal(t, 3, got.FailedCount)
	require.NotNil(t, got.LockedUntil)
	require.Equal(t, now.Add(time.Minute).Unix(), got.LockedUntil.Unix())

	srv.FastForward(2 * time.Minute)
	got, err = store.Get(ctx, "login-ip:10.0.0.1")
	require.NoError(t, err)
	require.Zero(t, got.FailedCount)

	_, err = store.RecordFailure(ctx, "login-ip:10.0.0.2", now, 3, time.Minute)
	require.NoError(t, err)
	require.NoError(t, store.Clear(ctx, "login-ip:10.0.0.2"))
	got, err = store.Get(ctx, "login-ip:10.0.0.2")
	require.NoError(t, err)
	require.Zero(t, got.FailedCount)
}

func TestSessionRevocationStore(t *testing.T) {
	client, _ := newTestClient(t)
	store := NewRedisSessionRevocationStore(client)
	ctx := context.Background()
	id := uuid.New()

	revoked, err := store.IsRevoked(ctx, id)
	require.NoError(t, err)
	require.False(t, revoked)

	require.NoError(t, store.MarkRevoked(ctx, id, time.Now().Add(time.Hour)))
	revoked, err = store.IsRevoked(ctx, id)
	require.NoError(t, err)
	require.True(t, revoked)
}

func TestContentCachePrefixInvalidation(t *testing.T) {
	client, _ := newTestClient(t)
	c := NewRedisContentCache(client)
	ctx := context.Background()

	miss, err := c.Get(ctx, "posts:slug:nota")
	require.NoError(t, err)
	require.Nil(t, miss)

	require.NoError(t, c.Set(ctx, "posts:slug:nota", []byte(`{"slug":"nota"}`), time.Minute))
	require.NoError(t, c.Set(ctx, "posts:list:1", []byte(`[]`), time.Minute))
	require.NoError(t, c.Set(ctx, "pages:sobre", []byte(`{}`), time.Minute))

	hit, err := c.Get(ctx, "posts:slug:nota")
	require.NoError(t, err)
	require.JSONEq(t, `{"slug":"nota"}`, string(hit))

	require.NoError(t, c.DeletePrefix(ctx, "posts:"))
	for _, key := range []string{"posts:slug:nota", "posts:list:1"} {
		v, err := c.Get(ctx, key)
		require.NoError(t, err)
		require.Nil(t, v, key)
	}
	v, err := c.Get(ctx, "pages:sobre")
	require.NoError(t, err)
	require.NotNil(t, v)

	require.NoError(t, c.Delete(ctx, "pages:sobre"))
	v, err = c.Get(ctx, "pages:sobre")
	require.NoError(t, err)
	require.Nil(t, v)
}
