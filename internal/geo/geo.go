package geo

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
)

// metres per degree of latitude, and per degree of longitude at the equator
const metresPerDegree = 111320.0

// TileID addresses one quadtree cell. Z is the zoom level (0 is the root,
// a single tile covering the world); X and Y are tile indices at that level.
type TileID struct {
	Z int
	X int
	Y int
}

// NoTile is the "nothing here" sentinel, used for the in-flight marker.
var NoTile = TileID{-1, -1, -1}

func (id TileID) String() string {
	return fmt.Sprintf("%d/%d/%d", id.Z, id.X, id.Y)
}

// Child returns the address of child i (0..3) of this tile. The low bit of
// i selects east/west, the high bit north/south half.
func (id TileID) Child(i int) TileID {
	return TileID{Z: id.Z + 1, X: id.X*2 + i&1, Y: id.Y*2 + i>>1}
}

// TileBounds returns the geographic bounding box of a tile in the standard
// Web-Mercator tiling scheme. Deterministic: bounds are computed once per
// node at creation and never change.
func TileBounds(z, x, y int) orb.Bound {
	return maptile.New(uint32(x), uint32(y), maptile.Zoom(z)).Bound()
}

// ApproxDistanceSquare returns the squared distance in metres from p to the
// nearest point of b, using a flat-earth approximation at p's latitude. It
// is cheap and slightly wrong near the poles and the antimeridian, which is
// acceptable for range checks and load ordering.
func ApproxDistanceSquare(b orb.Bound, p orb.Point) float64 {
	dLon := axisDistance(p[0], b.Min[0], b.Max[0])
	dLat := axisDistance(p[1], b.Min[1], b.Max[1])

	mx := dLon * metresPerDegree * math.Cos(p[1]*math.Pi/180)
	my := dLat * metresPerDegree

	return mx*mx + my*my
}

// axisDistance is the distance from v to the interval [lo, hi], zero when
// v lies inside it.
func axisDistance(v, lo, hi float64) float64 {
	switch {
	case v < lo:
		return lo - v
	case v > hi:
		return v - hi
	default:
		return 0
	}
}
