package cache

import "tilestream/internal/geo"

// Cache stores encoded tile bytes keyed by tile address. It sits between
// the tile source and the builder so recently evicted tiles are cheap to
// refetch. Implementations swallow backend errors: a failed Get is a miss,
// a failed Set is dropped.
type Cache interface {
	Get(key geo.TileID) ([]byte, bool)
	Set(key geo.TileID, value []byte)
	Has(key geo.TileID) bool // Check if tile exists without reading it (lightweight check)
	Clear()
}
