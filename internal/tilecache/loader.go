package tilecache

import (
	"runtime"
	"time"

	"go.uber.org/zap"

	"tilestream/internal/metrics"
)

// loaderLoop is the single background worker. It drains the queue one task
// at a time: pop and mark in-flight under the queue lock, build with no
// lock held, splice under the tree lock alone, clear in-flight. Exactly one
// build is ever in flight. Build failures stay here; nothing crosses back
// to the owner.
func (m *Manager) loaderLoop() {
	defer close(m.loaderDone)

	for {
		t, ok := m.queue.next()
		if !ok {
			return
		}

		start := time.Now()
		tile, err := m.builder.Build(t.id, t.bounds)

		switch {
		case err != nil:
			metrics.TileBuildErrors.Inc()
			m.log.Warn("tile build failed",
				zap.Stringer("tile", t.id),
				zap.Error(err),
			)
		case tile == nil:
			metrics.TileBuildErrors.Inc()
			m.log.Warn("tile build returned nothing", zap.Stringer("tile", t.id))
		default:
			m.treeMu.Lock()
			m.placeTile(tile, t.id)
			m.treeMu.Unlock()
			metrics.TileBuildDuration.Observe(time.Since(start).Seconds())
		}

		// Give the owner a chance at the tree lock between rapid builds,
		// otherwise a burst of cheap tiles can stall rendering.
		runtime.Gosched()

		m.queue.finish()
	}
}
