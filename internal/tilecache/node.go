package tilecache

import (
	"github.com/paulmach/orb"

	"tilestream/internal/geo"
)

// node is one quadtree cell. bounds is computed from the address at
// creation and never changes; mark is the generation the node was last
// visited at; tile is set at most once by the loader splice. Children are
// ordered west-north, east-north, west-south, east-south at the next level.
// All fields are guarded by the manager's tree mutex.
type node struct {
	bounds   orb.Bound
	mark     uint64
	tile     Tile
	children [4]*node
}

func newNode(z, x, y int) *node {
	return &node{bounds: geo.TileBounds(z, x, y)}
}

// destroy releases the subtree rooted at n post-order, payloads included,
// and returns how many tiles were released. Safe on nil.
func destroy(n *node) int {
	if n == nil {
		return 0
	}
	released := 0
	if n.tile != nil {
		n.tile.Release()
		n.tile = nil
		released++
	}
	for i, c := range n.children {
		released += destroy(c)
		n.children[i] = nil
	}
	return released
}

// descend walks from n along the bit path of (z, x, y), returning the node
// at that address or nil if any link on the path is missing. n itself is
// the level-0 root of the walk.
func descend(n *node, z, x, y int) *node {
	for level := z; level > 0 && n != nil; level-- {
		mask := 1 << (level - 1)
		idx := 0
		if y&mask != 0 {
			idx |= 2
		}
		if x&mask != 0 {
			idx |= 1
		}
		n = n.children[idx]
	}
	return n
}
