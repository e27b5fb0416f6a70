// Package tilecache keeps a quadtree of renderable map tiles populated
// around a moving viewer. The owning goroutine drives it with LoadLocality,
// Render and GarbageCollect; a single background loader materializes tiles
// through a Builder and splices them into the tree. Eviction is lazy:
// traversals mark the nodes they visit with the current generation, and
// GarbageCollect prunes whatever the last traversal did not touch.
package tilecache

import (
	"errors"

	"github.com/paulmach/orb"

	"tilestream/internal/geo"
)

// Tile is one unit of renderable map content covering a quadtree cell.
// Ownership passes to the cache when the loader delivers it; the cache
// calls Release exactly once when the tile is discarded or evicted.
type Tile interface {
	// Reference is the geographic point render transforms are anchored to.
	Reference() orb.Point
	// Draw submits the tile to the embedding renderer.
	Draw()
	// Release frees any resources backing the tile.
	Release()
}

// Builder materializes a tile for a cell. It is called only from the loader
// goroutine, with no cache lock held, and may take arbitrarily long.
type Builder interface {
	Build(id geo.TileID, bounds orb.Bound) (Tile, error)
}

// Viewer reports the current camera position.
type Viewer interface {
	Position() orb.Point
}

// LoadFlags modify LoadLocality behavior.
type LoadFlags int

const (
	// LoadSync skips the queue rebuild and the loader wakeup: wanted tiles
	// are appended to whatever is already queued. There is no blocking
	// same-call materialization behind this flag.
	LoadSync LoadFlags = 1 << iota
)

// Options configure the level-of-detail shape of the cache.
type Options struct {
	// LowResLevel and LowResRange describe the coarse ring around the
	// viewer. They are reserved for a low-detail pass and do not affect
	// the hi-res traversal.
	LowResLevel int
	LowResRange float64

	// HiResLevel is the leaf zoom level tiles are materialized at.
	// HiResRange is the viewer distance in metres within which cells at
	// any level are created and marked live.
	HiResLevel int
	HiResRange float64
}

// DefaultOptions returns the stock LOD configuration: coarse tiles at zoom
// 8 within 1000 km, detailed tiles at zoom 13 within 10 km.
func DefaultOptions() Options {
	return Options{
		LowResLevel: 8,
		LowResRange: 1000000,
		HiResLevel:  13,
		HiResRange:  10000,
	}
}

var (
	ErrNilBuilder = errors.New("tilecache: nil builder")
	ErrBadOptions = errors.New("tilecache: invalid options")
)

func (o Options) validate() error {
	if o.HiResLevel < 0 || o.HiResLevel > 30 {
		return ErrBadOptions
	}
	if o.LowResLevel < 0 || o.LowResLevel > o.HiResLevel {
		return ErrBadOptions
	}
	if o.HiResRange <= 0 || o.LowResRange <= 0 {
		return ErrBadOptions
	}
	return nil
}
