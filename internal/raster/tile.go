package raster

import (
	"github.com/paulmach/orb"
)

// Tile is a raster tile payload: normalized encoded pixels plus the
// geographic anchor point. Texture upload and the actual draw call belong
// to the embedding renderer, which wraps or reads the tile.
type Tile struct {
	ref    orb.Point
	data   []byte
	width  int
	height int
}

func (t *Tile) Reference() orb.Point {
	return t.ref
}

// Data returns the encoded pixel buffer, nil after Release.
func (t *Tile) Data() []byte {
	return t.data
}

func (t *Tile) Width() int  { return t.width }
func (t *Tile) Height() int { return t.height }

func (t *Tile) Draw() {}

func (t *Tile) Release() {
	t.data = nil
}
