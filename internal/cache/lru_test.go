package cache

import (
	"context"
	"testing"

	"github.com/hupe1980/geoblob/internal/resource"
	"github.com/stretchr/testify/assert"
)

func TestLRUBlockCache(t *testing.T) {
	ctx := context.Background()
	c := NewLRUBlockCache(10, nil)

	k1 := Key{Path: "a", Block: 0}
	k2 := Key{Path: "a", Block: 1}
	k3 := Key{Path: "b", Block: 0}

	c.Set(ctx, k1, []byte("1234"))
	c.Set(ctx, k2, []byte("5678"))
	assert.Equal(t, int64(8), c.Size())

	// Touch k1 so k2 becomes the eviction candidate.
	v, ok := c.Get(ctx, k1)
	assert.True(t, ok)
	assert.Equal(t, "1234", string(v))

	c.Set(ctx, k3, []byte("abcd"))
	_, ok = c.Get(ctx, k2)
	assert.False(t, ok)
	_, ok = c.Get(ctx, k3)
	assert.True(t, ok)
	assert.Equal(t, 2, c.Len())

	hits, misses := c.Stats()
	assert.Equal(t, int64(2), hits)
	assert.Equal(t, int64(1), misses)

	// Larger than the whole cache.
	c.Set(ctx, Key{Path: "big"}, make([]byte, 11))
	_, ok = c.Get(ctx, Key{Path: "big"})
	assert.False(t, ok)
}

func TestLRUBlockCache_Invalidate(t *testing.T) {
	ctx := context.Background()
	c := NewLRUBlockCache(100, nil)

	c.Set(ctx, Key{Path: "a", Block: 0}, []byte("x"))
	c.Set(ctx, Key{Path: "a", Block: 1}, []byte("y"))
	c.Set(ctx, Key{Path: "b", Block: 0}, []byte("z"))

	c.Invalidate(func(k Key) bool { return k.Path == "a" })
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, int64(1), c.Size())
}

func TestLRUBlockCache_MemoryBudget(t *testing.T) {
	ctx := context.Background()
	rc := resource.NewController(resource.Config{MemoryLimitBytes: 6})
	c := NewLRUBlockCache(100, rc)

	c.Set(ctx, Key{Path: "a"}, []byte("1234"))
	assert.Equal(t, int64(4), rc.MemoryUsage())

	// Fits the cache but not the budget.
	c.Set(ctx, Key{Path: "b"}, []byte("5678"))
	_, ok := c.Get(ctx, Key{Path: "b"})
	assert.False(t, ok)
	assert.Equal(t, int64(4), rc.MemoryUsage())

	assert.NoError(t, c.Close())
	assert.Zero(t, rc.MemoryUsage())
}
