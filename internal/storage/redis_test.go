package storage

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) *RedisClient {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	return NewRedisClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
}

func TestPresenceLifecycle(t *testing.T) {
	c := newTestRedis(t)
	ctx := context.Background()

	require.NoError(t, c.SetUserOnline(ctx, 42, time.Hour))

	n, err := c.GetClient().Exists(ctx, "user:42:online").Result()
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	require.NoError(t, c.RemoveUserOnline(ctx, 42))

	n, err = c.GetClient().Exists(ctx, "user:42:online").Result()
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)
}

func TestRemoveUserOnline_Absent(t *testing.T) {
	c := newTestRedis(t)

	// Deleting a key that was never set is not an error.
	require.NoError(t, c.RemoveUserOnline(context.Background(), 7))
}
