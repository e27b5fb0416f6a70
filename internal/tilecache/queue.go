package tilecache

import (
	"math"
	"sync"

	"github.com/paulmach/orb"

	"tilestream/internal/geo"
	"tilestream/internal/metrics"
)

// maxQueuedTasks bounds the pending-fetch list. Tasks beyond the cap are
// dropped; they get re-offered by the next traversal if still wanted.
const maxQueuedTasks = 100

// task is one unit of fetch work, created during traversal and consumed by
// the loader.
type task struct {
	id     geo.TileID
	bounds orb.Bound
}

// loadQueue holds the pending fetch tasks and the single in-flight marker.
// It has its own mutex and condition; nothing reachable from a queue method
// touches the tree mutex, so the loader can never deadlock against an
// owner that nests queue over tree.
//
// The ordering is a heuristic approximation of nearest-first, not a sorted
// structure: within one rebuild pass, a task closer than anything offered
// so far jumps to the front, everything else is appended until the cap.
type loadQueue struct {
	mu   sync.Mutex
	cond *sync.Cond

	tasks    []task
	inFlight geo.TileID
	closed   bool
}

func newLoadQueue() *loadQueue {
	q := &loadQueue{inFlight: geo.NoTile}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// rebuildPass is the only handle traversal code gets to the queue. It lives
// for one fill call, during which the queue mutex is held, and tracks the
// running closest distance for the front-push heuristic.
type rebuildPass struct {
	q       *loadQueue
	closest float64
}

// offer applies the enqueue heuristic to one task. Returns whether the task
// was queued. The address currently being fetched is never re-queued.
func (p *rebuildPass) offer(t task, distSq float64) bool {
	q := p.q
	if t.id == q.inFlight {
		return false
	}

	switch {
	case len(q.tasks) == 0:
		q.tasks = append(q.tasks, t)
		p.closest = distSq

	case distSq < p.closest:
		// Record-breaking distance jumps the whole queue. Keep the cap a
		// hard bound by shedding the back element when full.
		q.tasks = append([]task{t}, q.tasks...)
		p.closest = distSq
		if len(q.tasks) > maxQueuedTasks {
			q.tasks = q.tasks[:maxQueuedTasks]
			metrics.TasksDropped.Inc()
		}

	case len(q.tasks) < maxQueuedTasks:
		q.tasks = append(q.tasks, t)

	default:
		metrics.TasksDropped.Inc()
		return false
	}
	return true
}

// rebuild runs fill with the queue locked, clearing the pending list first
// unless keep is set, and wakes the loader if tasks are waiting afterwards.
// fill receives a pass handle scoped to this call.
func (q *loadQueue) rebuild(keep bool, fill func(*rebuildPass)) int {
	q.mu.Lock()
	if !keep {
		q.tasks = q.tasks[:0]
	}
	fill(&rebuildPass{q: q, closest: math.Inf(1)})
	n := len(q.tasks)
	q.mu.Unlock()

	if !keep && n > 0 {
		q.cond.Signal()
	}
	metrics.QueueDepth.Set(float64(n))
	return n
}

// next blocks until a task is available or the queue is closed. On success
// the popped task's address becomes the in-flight marker; the caller must
// call finish once done with it.
func (q *loadQueue) next() (task, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for {
		if q.closed {
			return task{}, false
		}
		if len(q.tasks) > 0 {
			break
		}
		q.cond.Wait()
	}

	t := q.tasks[0]
	q.tasks = q.tasks[1:]
	q.inFlight = t.id
	metrics.QueueDepth.Set(float64(len(q.tasks)))
	return t, true
}

// finish clears the in-flight marker.
func (q *loadQueue) finish() {
	q.mu.Lock()
	q.inFlight = geo.NoTile
	q.mu.Unlock()
}

// close wakes the loader and makes all further next calls fail. Pending
// tasks are abandoned.
func (q *loadQueue) close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.cond.Broadcast()
}

func (q *loadQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks)
}
