package arena

import (
	"errors"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArena_New(t *testing.T) {
	t.Run("default chunk size", func(t *testing.T) {
		a, err := New()
		require.NoError(t, err)
		defer a.Free()

		assert.Equal(t, DefaultChunkSize, a.chunkSize)
		assert.Equal(t, DefaultAlignment, a.alignment)
		assert.Equal(t, uint32(1), a.Generation())
		assert.Equal(t, uint64(1), a.Stats().ActiveChunks)
	})

	t.Run("custom chunk size rounds to alignment", func(t *testing.T) {
		a, err := New(WithChunkSize(4095))
		require.NoError(t, err)
		defer a.Free()

		assert.Equal(t, 4096, a.chunkSize)
	})
}

func TestArena_AllocBytes(t *testing.T) {
	t.Run("length and capacity", func(t *testing.T) {
		a, err := New(WithChunkSize(1024))
		require.NoError(t, err)
		defer a.Free()

		b, err := a.AllocBytes(100)
		require.NoError(t, err)
		assert.Len(t, b, 100)
		assert.Equal(t, 100, cap(b))
	})

	t.Run("zero size", func(t *testing.T) {
		a, err := New(WithChunkSize(1024))
		require.NoError(t, err)
		defer a.Free()

		b, err := a.AllocBytes(0)
		require.NoError(t, err)
		assert.Nil(t, b)
	})

	t.Run("alignment", func(t *testing.T) {
		a, err := New(WithChunkSize(1024))
		require.NoError(t, err)
		defer a.Free()

		for _, size := range []int{1, 3, 5, 7, 9, 15, 17} {
			b, err := a.AllocBytes(size)
			require.NoError(t, err)
			ptr := uintptr(unsafe.Pointer(&b[0]))
			assert.Zero(t, ptr%DefaultAlignment, "size=%d not aligned", size)
		}
	})

	t.Run("allocations do not overlap", func(t *testing.T) {
		a, err := New(WithChunkSize(256))
		require.NoError(t, err)
		defer a.Free()

		var slices [][]byte
		for i := 0; i < 20; i++ {
			b, err := a.AllocBytes(24)
			require.NoError(t, err)
			for j := range b {
				b[j] = byte(i)
			}
			slices = append(slices, b)
		}
		for i, b := range slices {
			for _, v := range b {
				require.Equal(t, byte(i), v)
			}
		}
		assert.Greater(t, a.Stats().ChunksAllocated, uint64(1))
	})

	t.Run("oversized allocation", func(t *testing.T) {
		a, err := New(WithChunkSize(128))
		require.NoError(t, err)
		defer a.Free()

		small, err := a.AllocBytes(16)
		require.NoError(t, err)

		big, err := a.AllocBytes(1000)
		require.NoError(t, err)
		assert.Len(t, big, 1000)

		// The current chunk keeps serving small requests.
		next, err := a.AllocBytes(16)
		require.NoError(t, err)
		assert.Equal(t, uintptr(unsafe.Pointer(&small[0]))+16, uintptr(unsafe.Pointer(&next[0])))
	})
}

func TestArena_Reset(t *testing.T) {
	a, err := New(WithChunkSize(128))
	require.NoError(t, err)
	defer a.Free()

	first, err := a.AllocBytes(64)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		_, err := a.AllocBytes(64)
		require.NoError(t, err)
	}
	require.Greater(t, a.Stats().ActiveChunks, uint64(1))

	gen := a.Generation()
	a.Reset()

	stats := a.Stats()
	assert.Equal(t, gen+1, a.Generation())
	assert.Equal(t, uint64(1), stats.ActiveChunks)
	assert.Equal(t, uint64(128), stats.BytesReserved)
	assert.Zero(t, stats.BytesUsed)
	assert.Equal(t, uint64(1), stats.Resets)

	again, err := a.AllocBytes(64)
	require.NoError(t, err)
	assert.Equal(t, unsafe.Pointer(&first[0]), unsafe.Pointer(&again[0]))
}

func TestArena_MaxChunks(t *testing.T) {
	a, err := New(WithChunkSize(64), WithMaxChunks(2))
	require.NoError(t, err)
	defer a.Free()

	_, err = a.AllocBytes(64)
	require.NoError(t, err)
	_, err = a.AllocBytes(64)
	require.NoError(t, err)

	_, err = a.AllocBytes(64)
	require.ErrorIs(t, err, ErrAllocationExhausted)

	// A failed allocation leaves the arena resettable.
	a.Reset()
	_, err = a.AllocBytes(64)
	assert.NoError(t, err)
}

type budget struct {
	limit, used int64
	released    int64
}

func (b *budget) AcquireMemory(n int64) error {
	if b.used+n > b.limit {
		return errors.New("over budget")
	}
	b.used += n
	return nil
}

func (b *budget) ReleaseMemory(n int64) {
	b.used -= n
	b.released += n
}

func TestArena_MemoryAcquirer(t *testing.T) {
	acq := &budget{limit: 256}
	a, err := New(WithChunkSize(128), WithMemoryAcquirer(acq))
	require.NoError(t, err)

	assert.Equal(t, int64(128), acq.used)

	_, err = a.AllocBytes(128)
	require.NoError(t, err)
	_, err = a.AllocBytes(128)
	require.NoError(t, err)
	assert.Equal(t, int64(256), acq.used)

	_, err = a.AllocBytes(8)
	require.ErrorIs(t, err, ErrAllocationExhausted)

	a.Reset()
	assert.Equal(t, int64(128), acq.used)

	a.Free()
	assert.Zero(t, acq.used)
}

func TestArena_Free(t *testing.T) {
	a, err := New()
	require.NoError(t, err)

	gen := a.Generation()
	a.Free()
	a.Free()

	assert.Equal(t, gen+1, a.Generation())
	_, err = a.AllocBytes(8)
	assert.ErrorIs(t, err, ErrClosed)
	assert.Zero(t, a.Stats().BytesReserved)
}

func TestArena_String(t *testing.T) {
	a, err := New(WithChunkSize(1024))
	require.NoError(t, err)
	defer a.Free()

	_, err = a.AllocBytes(512)
	require.NoError(t, err)
	assert.Contains(t, a.String(), "usage: 50.0%")
}
