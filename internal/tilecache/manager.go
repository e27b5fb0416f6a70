package tilecache

import (
	"sync"

	"github.com/paulmach/orb"
	"go.uber.org/zap"

	"tilestream/internal/geo"
	"tilestream/internal/metrics"
)

// Manager owns the quadtree and the loader goroutine.
//
// Two locks, never nested by the loader: treeMu guards every node field and
// payload; the queue carries its own mutex and condition. The owner nests
// queue inside LoadLocality (queue lock around the whole descent, tree lock
// inside it); the loader takes the queue lock, releases it for the build,
// then takes the tree lock alone for the splice.
type Manager struct {
	opts    Options
	builder Builder
	log     *zap.Logger

	treeMu     sync.Mutex
	root       *node
	generation uint64

	queue *loadQueue

	loaderDone chan struct{}
	closeOnce  sync.Once
}

// New validates the configuration, builds the tree root and starts the
// loader goroutine. The returned Manager must be closed when done.
func New(builder Builder, opts Options, log *zap.Logger) (*Manager, error) {
	if builder == nil {
		return nil, ErrNilBuilder
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}

	m := newManager(builder, opts, log)
	go m.loaderLoop()
	return m, nil
}

// newManager assembles a Manager without starting the loader. Tests drive
// the queue and splice paths directly through this.
func newManager(builder Builder, opts Options, log *zap.Logger) *Manager {
	return &Manager{
		opts:       opts,
		builder:    builder,
		log:        log,
		root:       newNode(0, 0, 0),
		queue:      newLoadQueue(),
		loaderDone: make(chan struct{}),
	}
}

// LoadLocality rebuilds the wanted set for the viewer's current position:
// it walks the tree from the root, creating cells that enter hi-res range,
// marking every visited cell with the current generation, and queueing
// fetches for unpopulated leaf cells. Without LoadSync the pending queue is
// rebuilt from scratch, so it always reflects the latest camera.
func (m *Manager) LoadLocality(v Viewer, flags LoadFlags) {
	pos := v.Position()
	n := m.queue.rebuild(flags&LoadSync != 0, func(p *rebuildPass) {
		m.treeMu.Lock()
		defer m.treeMu.Unlock()
		m.loadTiles(p, &m.root, 0, 0, 0, pos)
	})
	m.log.Debug("locality loaded",
		zap.Float64("lon", pos[0]),
		zap.Float64("lat", pos[1]),
		zap.Int("queued", n),
	)
}

// loadTiles is the recursive mark-and-enqueue descent. pn points at the
// parent's child slot so out-of-range cells are never materialized at all.
// Called with both the queue and tree locks held.
func (m *Manager) loadTiles(p *rebuildPass, pn **node, level, x, y int, pos orb.Point) {
	n := *pn
	var distSq float64

	if n == nil {
		b := geo.TileBounds(level, x, y)
		distSq = geo.ApproxDistanceSquare(b, pos)
		if distSq > m.opts.HiResRange*m.opts.HiResRange {
			return
		}
		n = &node{bounds: b}
		*pn = n
	} else {
		distSq = geo.ApproxDistanceSquare(n.bounds, pos)
		if distSq > m.opts.HiResRange*m.opts.HiResRange {
			// Out of range but alive until the collector decides otherwise.
			return
		}
	}

	n.mark = m.generation

	if level == m.opts.HiResLevel {
		if n.tile != nil {
			return
		}
		p.offer(task{id: geo.TileID{Z: level, X: x, Y: y}, bounds: n.bounds}, distSq)
		return
	}

	m.loadTiles(p, &n.children[0], level+1, x*2, y*2, pos)
	m.loadTiles(p, &n.children[1], level+1, x*2+1, y*2, pos)
	m.loadTiles(p, &n.children[2], level+1, x*2, y*2+1, pos)
	m.loadTiles(p, &n.children[3], level+1, x*2+1, y*2+1, pos)
}

// Render walks the tree and draws every populated node marked in the
// current generation. Nodes the last traversal skipped are invisible even
// if they still hold a tile. Safe against concurrent loader splices: the
// whole walk runs under the tree lock.
func (m *Manager) Render(v Viewer) {
	m.treeMu.Lock()
	defer m.treeMu.Unlock()
	m.renderTiles(m.root)
}

func (m *Manager) renderTiles(n *node) {
	if n == nil || n.mark != m.generation {
		return
	}

	for _, c := range n.children {
		m.renderTiles(c)
	}

	if n.tile != nil {
		n.tile.Draw()
		metrics.TilesDrawn.Inc()
	}
}

// GarbageCollect prunes every subtree the most recent traversal did not
// mark, then advances the generation so the next traversal's marks start
// clean. A node that falls out of range therefore survives exactly one
// collection after its last visit. The root is never collected.
func (m *Manager) GarbageCollect() {
	m.treeMu.Lock()
	evicted := m.sweep(m.root)
	m.generation++
	m.treeMu.Unlock()

	if evicted > 0 {
		metrics.TilesEvicted.Add(float64(evicted))
		m.log.Debug("garbage collected", zap.Int("tiles", evicted))
	}
}

func (m *Manager) sweep(n *node) int {
	evicted := 0
	for i, c := range n.children {
		if c == nil {
			continue
		}
		if c.mark != m.generation {
			evicted += destroy(c)
			n.children[i] = nil
		} else {
			evicted += m.sweep(c)
		}
	}
	return evicted
}

// placeTile splices a freshly built tile into the tree. If the target node
// was pruned meanwhile, or already holds a tile, the new one is released
// instead; neither case is an error.
func (m *Manager) placeTile(t Tile, id geo.TileID) {
	n := descend(m.root, id.Z, id.X, id.Y)
	if n == nil || n.tile != nil {
		t.Release()
		metrics.TilesDiscarded.Inc()
		return
	}
	n.tile = t
	metrics.TilesLoaded.Inc()
}

// LoadArea is a reserved entry point for bulk loading of an explicit
// region. It currently does nothing.
func (m *Manager) LoadArea(bounds orb.Bound, flags LoadFlags) {
}

// Close shuts the loader down, waits for it to exit, then releases the
// whole tree. An in-flight build is allowed to finish; its splice lands
// before teardown. Safe to call more than once.
func (m *Manager) Close() {
	m.closeOnce.Do(func() {
		m.queue.close()
		<-m.loaderDone

		m.treeMu.Lock()
		destroy(m.root)
		m.treeMu.Unlock()
	})
}
