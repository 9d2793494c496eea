package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCacheSetGet(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "k", "v", time.Minute))
	got, err := mc.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)

	_, err = mc.Get(ctx, "absent")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryCacheExpiry(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "k", "v", 10*time.Millisecond))
	time.Sleep(25 * time.Millisecond)

	_, err := mc.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)

	ok, err := mc.Exists(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryCacheDeleteAndExists(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "a", "1", time.Minute))
	require.NoError(t, mc.Set(ctx, "b", "2", time.Minute))

	ok, err := mc.Exists(ctx, "missing", "b")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, mc.Delete(ctx, "a", "b"))
	ok, err = mc.Exists(ctx, "a", "b")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryCacheEvictsLRU(t *testing.T) {
	mc := NewMemoryCache(WithMaxSize(3))
	defer mc.Close()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, mc.Set(ctx, fmt.Sprintf("k%d", i), "v", time.Minute))
		time.Sleep(2 * time.Millisecond)
	}

	// Touch k0 so k1 becomes least recently used.
	_, err := mc.Get(ctx, "k0")
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond)

	require.NoError(t, mc.Set(ctx, "k3", "v", time.Minute))

	_, err = mc.Get(ctx, "k1")
	assert.ErrorIs(t, err, ErrCacheMiss)
	for _, key := range []string{"k0", "k2", "k3"} {
		_, err := mc.Get(ctx, key)
		assert.NoError(t, err, key)
	}
}

func TestMemoryCacheZeroExpirationDefaults(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "k", "v", 0))
	got, err := mc.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)
}
