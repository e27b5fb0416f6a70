// Package source provides byte-level tile backends: something that, given
// a tile address, produces the encoded tile content.
package source

import (
	"context"
	"errors"

	"tilestream/internal/geo"
)

// ErrNotFound reports that the backend has no content for the tile.
var ErrNotFound = errors.New("tile not found")

// Source fetches raw tile bytes. Fetch may block for as long as the
// backend needs; callers pass a context to bound it.
type Source interface {
	Fetch(ctx context.Context, id geo.TileID) ([]byte, error)
	Close() error
}
