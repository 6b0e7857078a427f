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

func newTestDenylist(t *testing.T) (*Denylist, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewDenylist(client, "revoked"), mr
}

func TestDenylistAddAndContains(t *testing.T) {
	dl, mr := newTestDenylist(t)
	ctx := context.Background()

	ok, err := dl.Contains(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, dl.Add(ctx, "jti-1", time.Minute))
	ok, err = dl.Contains(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, mr.Exists("revoked:jti-1"))

	mr.FastForward(2 * time.Minute)
	ok, err = dl.Contains(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDenylistIgnoresExpiredTTL(t *testing.T) {
	dl, mr := newTestDenylist(t)

	require.NoError(t, dl.Add(context.Background(), "jti-2", -time.Second))
	assert.False(t, mr.Exists("revoked:jti-2"))
}

func TestDenylistRequiresID(t *testing.T) {
	dl, _ := newTestDenylist(t)
	assert.Error(t, dl.Add(context.Background(), "", time.Minute))
}

func TestNewPingsServer(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	client, err := New(context.Background(), addr)
	require.NoError(t, err)
	require.NoError(t, client.Close())

	mr.Close()
	_, err = New(context.Background(), addr)
	assert.Error(t, err)
}
