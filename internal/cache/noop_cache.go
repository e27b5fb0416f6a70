package cache

import "tilestream/internal/geo"

type NoopCache struct{}

func NewNoopCache() *NoopCache {
	return &NoopCache{}
}

func (c *NoopCache) Get(key geo.TileID) ([]byte, bool) {
	return nil, false
}

func (c *NoopCache) Set(key geo.TileID, value []byte) {
}

func (c *NoopCache) Has(key geo.TileID) bool {
	return false
}

func (c *NoopCache) Clear() {
}
