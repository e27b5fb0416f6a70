package viewer

import (
	"sync"

	"github.com/paulmach/orb"
)

// Mobile is a thread-safe camera position, updated by the HTTP surface and
// read by the streaming loop.
type Mobile struct {
	mu  sync.RWMutex
	pos orb.Point
}

func New(lon, lat float64) *Mobile {
	return &Mobile{pos: orb.Point{lon, lat}}
}

func (v *Mobile) Position() orb.Point {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.pos
}

func (v *Mobile) MoveTo(lon, lat float64) {
	v.mu.Lock()
	v.pos = orb.Point{lon, lat}
	v.mu.Unlock()
}
