package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mapCache is a plain in-memory Cache for exercising Tiered. err, when set,
// is returned from every call.
type mapCache struct {
	data map[string][]byte
	ttls map[string]time.Duration
	err  error
}

func newMapCache() *mapCache {
	return &mapCache{data: make(map[string][]byte), ttls: make(map[string]time.Duration)}
}

func (m *mapCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	if m.err != nil {
		return nil, false, m.err
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *mapCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if m.err != nil {
		return m.err
	}
	m.data[key] = value
	m.ttls[key] = ttl
	return nil
}

func (m *mapCache) Delete(_ context.Context, key string) error {
	if m.err != nil {
		return m.err
	}
	delete(m.data, key)
	return nil
}

func TestTiered(t *testing.T) {
	ctx := context.Background()

	t.Run("L1 hit", func(t *testing.T) {
		l1, l2 := newMapCache(), newMapCache()
		c := NewTiered(l1, l2, time.Minute)
		l1.data["k"] = []byte("v1")

		val, ok, err := c.Get(ctx, "k")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "v1", string(val))
	})

	t.Run("L2 hit backfills L1", func(t *testing.T) {
		l1, l2 := newMapCache(), newMapCache()
		c := NewTiered(l1, l2, time.Minute)
		l2.data["k"] = []byte("v2")

		val, ok, err := c.Get(ctx, "k")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "v2", string(val))
		assert.Equal(t, "v2", string(l1.data["k"]))
		assert.Equal(t, time.Minute, l1.ttls["k"])
	})

	t.Run("L2 failure is a miss", func(t *testing.T) {
		l1, l2 := newMapCache(), newMapCache()
		l2.err = errors.New("redis down")
		c := NewTiered(l1, l2, time.Minute)

		_, ok, err := c.Get(ctx, "k")
		require.NoError(t, err)
		assert.False(t, ok)

		assert.ErrorIs(t, c.Set(ctx, "k", []byte("v"), time.Hour), l2.err)
		assert.Equal(t, "v", string(l1.data["k"]), "L1 is still written")
	})

	t.Run("L1 copy is capped", func(t *testing.T) {
		l1, l2 := newMapCache(), newMapCache()
		c := NewTiered(l1, l2, 5*time.Minute)

		require.NoError(t, c.Set(ctx, "long", []byte("v"), time.Hour))
		assert.Equal(t, 5*time.Minute, l1.ttls["long"])
		assert.Equal(t, time.Hour, l2.ttls["long"])

		require.NoError(t, c.Set(ctx, "short", []byte("v"), time.Second))
		assert.Equal(t, time.Second, l1.ttls["short"])
	})

	t.Run("miss", func(t *testing.T) {
		c := NewTiered(newMapCache(), newMapCache(), time.Minute)
		_, ok, err := c.Get(ctx, "nope")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("set and delete hit both tiers", func(t *testing.T) {
		l1, l2 := newMapCache(), newMapCache()
		c := NewTiered(l1, l2, time.Minute)
		require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
		assert.Contains(t, l1.data, "k")
		assert.Contains(t, l2.data, "k")

		require.NoError(t, c.Delete(ctx, "k"))
		assert.NotContains(t, l1.data, "k")
		assert.NotContains(t, l2.data, "k")
	})
}

func TestRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	ctx := context.Background()
	c := NewRedis(rdb, "test:")

	_, ok, err := c.Get(ctx, "breeds")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "breeds", []byte(`["Bengal"]`), time.Minute))
	assert.True(t, mr.Exists("test:breeds"))

	val, ok, err := c.Get(ctx, "breeds")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `["Bengal"]`, string(val))

	mr.FastForward(2 * time.Minute)
	_, ok, err = c.Get(ctx, "breeds")
	require.NoError(t, err)
	assert.False(t, ok, "entry should expire")

	require.NoError(t, c.Set(ctx, "breeds", []byte("x"), time.Minute))
	require.NoError(t, c.Delete(ctx, "breeds"))
	assert.False(t, mr.Exists("test:breeds"))
}

func TestMemory(t *testing.T) {
	m, err := NewMemory(1 << 20)
	require.NoError(t, err)
	defer m.Close()

	ctx := context.Background()
	require.NoError(t, m.Set(ctx, "k", []byte("v"), time.Minute))

	val, ok, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", string(val))

	require.NoError(t, m.Delete(ctx, "k"))
	_, ok, err = m.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}
