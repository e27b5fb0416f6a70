package source

import (
	"context"
	"sync"

	"tilestream/internal/geo"
)

// StaticSource serves tiles from an in-memory map. Used by tests and for
// embedding pre-baked tile sets.
type StaticSource struct {
	mu    sync.RWMutex
	tiles map[geo.TileID][]byte
}

func NewStaticSource() *StaticSource {
	return &StaticSource{tiles: make(map[geo.TileID][]byte)}
}

func (s *StaticSource) Put(id geo.TileID, data []byte) {
	s.mu.Lock()
	s.tiles[id] = data
	s.mu.Unlock()
}

func (s *StaticSource) Fetch(ctx context.Context, id geo.TileID) ([]byte, error) {
	s.mu.RLock()
	data, ok := s.tiles[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return data, nil
}

func (s *StaticSource) Close() error {
	return nil
}
