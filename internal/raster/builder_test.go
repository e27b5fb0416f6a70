package raster

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tilestream/internal/cache"
	"tilestream/internal/geo"
	"tilestream/internal/source"
)

// Tests stay on the cache-hit and failure paths; decoding real imagery
// needs libvips and is exercised by integration runs, not unit tests.

func TestBuildCacheHitSkipsFetch(t *testing.T) {
	id := geo.TileID{Z: 13, X: 100, Y: 200}
	bounds := geo.TileBounds(id.Z, id.X, id.Y)

	byteCache := cache.NewMemoryCache(10)
	byteCache.Set(id, []byte("normalized-jpeg"))

	// Empty source: any fetch attempt would fail the test via an error.
	b := New(source.NewStaticSource(), byteCache, time.Second, zap.NewNop())

	tile, err := b.Build(id, bounds)
	require.NoError(t, err)

	rt := tile.(*Tile)
	assert.Equal(t, []byte("normalized-jpeg"), rt.Data())
	assert.Equal(t, bounds.Center(), rt.Reference())
	assert.Equal(t, defaultTileSize, rt.Width())
	assert.Equal(t, defaultTileSize, rt.Height())

	rt.Release()
	assert.Nil(t, rt.Data())
}

func TestBuildMissingTile(t *testing.T) {
	id := geo.TileID{Z: 5, X: 1, Y: 1}

	b := New(source.NewStaticSource(), cache.NewNoopCache(), time.Second, zap.NewNop())

	_, err := b.Build(id, geo.TileBounds(id.Z, id.X, id.Y))
	assert.ErrorIs(t, err, source.ErrNotFound)
}

func TestBuildRejectsNonImageContent(t *testing.T) {
	id := geo.TileID{Z: 5, X: 1, Y: 1}

	src := staticWith(id, []byte("<html>not a tile</html>"))
	byteCache := cache.NewMemoryCache(10)

	b := New(src, byteCache, time.Second, zap.NewNop())

	_, err := b.Build(id, geo.TileBounds(id.Z, id.X, id.Y))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported tile content type")

	// Broken content must not be cached.
	assert.False(t, byteCache.Has(id))
}

func staticWith(id geo.TileID, data []byte) *source.StaticSource {
	s := source.NewStaticSource()
	s.Put(id, data)
	return s
}
