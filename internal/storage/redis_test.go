package storage

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis creates a miniredis server and returns a RedisStore instance
func setupTestRedis(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { client.Close() })

	return NewRedisStore(client), mr
}

func TestRedisStore_RoundTrip(t *testing.T) {
	s, _ := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "cart:u1", []byte(`[{"product_id":1}]`)))

	got, err := s.Get(ctx, "cart:u1")
	require.NoError(t, err)
	assert.Equal(t, []byte(`[{"product_id":1}]`), got)
}

func TestRedisStore_GetMissing(t *testing.T) {
	s, _ := setupTestRedis(t)

	_, err := s.Get(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStore_Delete(t *testing.T) {
	s, mr := setupTestRedis(t)
	ctx := context.Background()

	mr.Set("k", "v")
	require.NoError(t, s.Delete(ctx, "k"))

	_, err := s.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)
}
