package blobstore

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStoreLifecycle(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	data := []byte("hello world, this is a geometry block")
	require.NoError(t, store.Put(ctx, "blocks/a.gbc", data))
	require.NoError(t, store.Put(ctx, "blocks/b.gbc", []byte("b")))
	require.NoError(t, store.Put(ctx, "other.gbc", []byte("c")))

	blob, err := store.Open(ctx, "blocks/a.gbc")
	require.NoError(t, err)
	defer blob.Close()
	require.Equal(t, int64(len(data)), blob.Size())

	buf := make([]byte, 5)
	n, err := blob.ReadAt(ctx, buf, 6)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, "world", string(buf))

	// Short read at the end.
	n, err = blob.ReadAt(ctx, buf, int64(len(data)-3))
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, 3, n)

	_, err = blob.ReadAt(ctx, buf, int64(len(data)))
	assert.ErrorIs(t, err, io.EOF)

	all, err := Get(ctx, store, "blocks/a.gbc")
	require.NoError(t, err)
	assert.Equal(t, data, all)

	names, err := store.List(ctx, "blocks/")
	require.NoError(t, err)
	assert.Equal(t, []string{"blocks/a.gbc", "blocks/b.gbc"}, names)

	// Overwrite.
	require.NoError(t, store.Put(ctx, "blocks/b.gbc", []byte("bb")))
	all, err = Get(ctx, store, "blocks/b.gbc")
	require.NoError(t, err)
	assert.Equal(t, "bb", string(all))

	require.NoError(t, store.Delete(ctx, "blocks/b.gbc"))
	require.NoError(t, store.Delete(ctx, "blocks/b.gbc"))
	_, err = store.Open(ctx, "blocks/b.gbc")
	assert.ErrorIs(t, err, ErrNotFound)

	names, err = store.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"blocks/a.gbc", "other.gbc"}, names)
}

func TestMemoryStore(t *testing.T) {
	testStoreLifecycle(t, NewMemoryStore())
}

func TestMemoryStore_PutCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	data := []byte("abc")
	require.NoError(t, store.Put(ctx, "x", data))
	data[0] = 'z'

	got, err := Get(ctx, store, "x")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}

func TestLocalStore(t *testing.T) {
	dir := t.TempDir()
	testStoreLifecycle(t, NewLocalStore(dir))

	_, err := os.Stat(filepath.Join(dir, "blocks", "a.gbc"))
	assert.NoError(t, err)

	entries, err := os.ReadDir(filepath.Join(dir, "blocks"))
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".tmp-")
	}
}

func TestLocalStore_EmptyAndMissingRoot(t *testing.T) {
	ctx := context.Background()

	missing := NewLocalStore(filepath.Join(t.TempDir(), "nope"))
	names, err := missing.List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, names)

	store := NewLocalStore(t.TempDir())
	require.NoError(t, store.Put(ctx, "empty", nil))
	blob, err := store.Open(ctx, "empty")
	require.NoError(t, err)
	defer blob.Close()
	assert.Zero(t, blob.Size())

	data, err := ReadAll(ctx, blob)
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestNewReader(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	data := []byte("0123456789abcdefghij")
	require.NoError(t, store.Put(ctx, "r", data))

	blob, err := store.Open(ctx, "r")
	require.NoError(t, err)
	defer blob.Close()

	r := NewReader(ctx, blob)
	buf := make([]byte, 7)
	var got []byte
	for {
		n, err := r.Read(buf)
		got = append(got, buf[:n]...)
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
	}
	assert.Equal(t, data, got)
}
