package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T) (*miniredis.Miniredis, *RedisStore) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, NewRedisStore(client)
}

// storeContract runs the behaviour every Store shares.
func storeContract(t *testing.T, store Store) {
	ctx := context.Background()

	_, err := store.Load(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Save(ctx, "s1", map[string]string{"role": "staff", "user_id": "7"}, time.Hour))
	values, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"role": "staff", "user_id": "7"}, values)

	// save replaces, it does not merge
	require.NoError(t, store.Save(ctx, "s1", map[string]string{"role": "admin"}, time.Hour))
	values, err = store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"role": "admin"}, values)

	require.NoError(t, store.Delete(ctx, "s1"))
	_, err = store.Load(ctx, "s1")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Save(ctx, "a", map[string]string{"user_id": "9"}, time.Hour))
	require.NoError(t, store.Save(ctx, "b", map[string]string{"user_id": "9"}, time.Hour))
	require.NoError(t, store.Save(ctx, "c", map[string]string{"user_id": "10"}, time.Hour))
	require.NoError(t, store.Track(ctx, "9", "a", time.Hour))
	require.NoError(t, store.Track(ctx, "9", "b", time.Hour))
	require.NoError(t, store.Track(ctx, "10", "c", time.Hour))

	n, err := store.DeleteByUser(ctx, "9")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = store.Load(ctx, "a")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.Load(ctx, "b")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.Load(ctx, "c")
	assert.NoError(t, err)
}

func TestMemoryStore(t *testing.T) {
	storeContract(t, NewMemoryStore())
}

func TestRedisStore(t *testing.T) {
	_, store := newRedisStore(t)
	storeContract(t, store)
}

func TestMemoryStoreExpiry(t *testing.T) {
	now := time.Now()
	store := NewMemoryStore().WithClock(func() time.Time { return now })
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "s", map[string]string{"k": "v"}, time.Minute))
	now = now.Add(59 * time.Second)
	_, err := store.Load(ctx, "s")
	assert.NoError(t, err)

	now = now.Add(time.Second)
	_, err = store.Load(ctx, "s")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Zero(t, store.Len())
}

func TestRedisStoreExpiry(t *testing.T) {
	mr, store := newRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "s", map[string]string{"k": "v"}, time.Minute))
	assert.Equal(t, time.Minute, mr.TTL(redisSessionPrefix+"s"))

	mr.FastForward(time.Minute + time.Second)
	_, err := store.Load(ctx, "s")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStoreLoadError(t *testing.T) {
	mr, store := newRedisStore(t)
	mr.Close()

	_, err := store.Load(context.Background(), "s")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}
