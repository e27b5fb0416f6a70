package tilecache

import (
	"errors"
	"sync"

	"github.com/paulmach/orb"

	"tilestream/internal/geo"
)

// staticViewer pins the camera to one point.
type staticViewer struct {
	pos orb.Point
}

func (v staticViewer) Position() orb.Point { return v.pos }

func viewerAt(id geo.TileID) staticViewer {
	return staticViewer{pos: geo.TileBounds(id.Z, id.X, id.Y).Center()}
}

// fakeTile counts draws and releases.
type fakeTile struct {
	mu       sync.Mutex
	ref      orb.Point
	drawn    int
	released int
}

func (t *fakeTile) Reference() orb.Point { return t.ref }

func (t *fakeTile) Draw() {
	t.mu.Lock()
	t.drawn++
	t.mu.Unlock()
}

func (t *fakeTile) Release() {
	t.mu.Lock()
	t.released++
	t.mu.Unlock()
}

func (t *fakeTile) drawCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.drawn
}

func (t *fakeTile) releaseCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.released
}

// fakeBuilder hands out fakeTiles, optionally blocking on gate first.
type fakeBuilder struct {
	mu    sync.Mutex
	built []geo.TileID
	tiles []*fakeTile
	gate  chan struct{}
	err   error
}

func (b *fakeBuilder) Build(id geo.TileID, bounds orb.Bound) (Tile, error) {
	if b.gate != nil {
		<-b.gate
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.built = append(b.built, id)
	if b.err != nil {
		return nil, b.err
	}
	t := &fakeTile{ref: bounds.Center()}
	b.tiles = append(b.tiles, t)
	return t, nil
}

func (b *fakeBuilder) builtCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.built)
}

func (b *fakeBuilder) lastTile() *fakeTile {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.tiles) == 0 {
		return nil
	}
	return b.tiles[len(b.tiles)-1]
}

var errBuildBroken = errors.New("build broken")

// narrowOptions keeps exactly one leaf tile in range when the viewer sits
// at a tile center: 100 m is well under the half tile width at any of the
// zoom-13 addresses the tests use.
func narrowOptions() Options {
	return Options{
		LowResLevel: 8,
		LowResRange: 1000000,
		HiResLevel:  13,
		HiResRange:  100,
	}
}
