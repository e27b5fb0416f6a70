package cache

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tilestream/internal/geo"
)

func key(x int) geo.TileID {
	return geo.TileID{Z: 10, X: x, Y: 5}
}

func TestMemoryCacheLRUEviction(t *testing.T) {
	c := NewMemoryCache(2)

	c.Set(key(1), []byte("one"))
	c.Set(key(2), []byte("two"))

	// Touch key 1 so key 2 becomes the eviction candidate.
	_, ok := c.Get(key(1))
	require.True(t, ok)

	c.Set(key(3), []byte("three"))

	assert.True(t, c.Has(key(1)))
	assert.False(t, c.Has(key(2)))
	assert.True(t, c.Has(key(3)))

	c.Clear()
	assert.False(t, c.Has(key(1)))
	assert.False(t, c.Has(key(3)))
}

func TestMemoryCacheOverwrite(t *testing.T) {
	c := NewMemoryCache(2)

	c.Set(key(1), []byte("old"))
	c.Set(key(1), []byte("new"))

	data, ok := c.Get(key(1))
	require.True(t, ok)
	assert.Equal(t, []byte("new"), data)
}

func TestFileCacheRoundtrip(t *testing.T) {
	c, err := NewFileCache(filepath.Join(t.TempDir(), "tiles"))
	require.NoError(t, err)

	_, ok := c.Get(key(1))
	assert.False(t, ok)

	c.Set(key(1), []byte("persisted"))
	assert.True(t, c.Has(key(1)))

	data, ok := c.Get(key(1))
	require.True(t, ok)
	assert.Equal(t, []byte("persisted"), data)

	c.Clear()
	assert.False(t, c.Has(key(1)))
}

func TestSQLiteCacheRoundtrip(t *testing.T) {
	c, err := NewSQLiteCache(filepath.Join(t.TempDir(), "cache.db"), zap.NewNop())
	require.NoError(t, err)
	defer c.Close()

	_, ok := c.Get(key(1))
	assert.False(t, ok)

	c.Set(key(1), []byte("v1"))
	data, ok := c.Get(key(1))
	require.True(t, ok)
	assert.Equal(t, []byte("v1"), data)

	// Upsert replaces.
	c.Set(key(1), []byte("v2"))
	data, _ = c.Get(key(1))
	assert.Equal(t, []byte("v2"), data)

	assert.True(t, c.Has(key(1)))
	c.Clear()
	assert.False(t, c.Has(key(1)))
}

func TestNoopCache(t *testing.T) {
	c := NewNoopCache()

	c.Set(key(1), []byte("dropped"))
	_, ok := c.Get(key(1))
	assert.False(t, ok)
	assert.False(t, c.Has(key(1)))
}

func TestFactory(t *testing.T) {
	log := zap.NewNop()

	c, err := New(Config{Type: "memory", MemoryTiles: 10}, log)
	require.NoError(t, err)
	assert.IsType(t, &MemoryCache{}, c)

	c, err = New(Config{Type: "disabled"}, log)
	require.NoError(t, err)
	assert.IsType(t, &NoopCache{}, c)

	_, err = New(Config{Type: "punch-cards"}, log)
	assert.Error(t, err)
}
