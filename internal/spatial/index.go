// Package spatial provides a static 2D k-d tree over lon/lat points for
// nearest-neighbor and radius queries. The metric is planar Euclidean on raw
// degrees, mirroring how the analysis-point feature table was produced.
package spatial

import (
	"math"
	"sort"

	"github.com/rotisserie/eris"

	"github.com/safepath/safepath/internal/geo"
)

// ErrEmpty is returned when an index is built over zero points.
var ErrEmpty = eris.New("spatial: no points")

// Index answers nearest-point and within-radius queries over a fixed point
// set. It is immutable after construction and safe for concurrent reads.
type Index struct {
	points []geo.Coord
	root   *node
}

type node struct {
	idx   int // position in points
	axis  int // 0 = lon, 1 = lat
	left  *node
	right *node
}

// New builds a k-d tree over the given points. The slice is copied; the
// caller may reuse it. Fails only on an empty input.
func New(points []geo.Coord) (*Index, error) {
	if len(points) == 0 {
		return nil, ErrEmpty
	}
	pts := make([]geo.Coord, len(points))
	copy(pts, points)

	order := make([]int, len(pts))
	for i := range order {
		order[i] = i
	}

	idx := &Index{points: pts}
	idx.root = idx.build(order, 0)
	return idx, nil
}

// Len returns the number of indexed points.
func (ix *Index) Len() int {
	return len(ix.points)
}

// At returns the indexed point at position i.
func (ix *Index) At(i int) geo.Coord {
	return ix.points[i]
}

func (ix *Index) build(order []int, depth int) *node {
	if len(order) == 0 {
		return nil
	}
	axis := depth % 2
	sort.Slice(order, func(a, b int) bool {
		return ix.coord(order[a], axis) < ix.coord(order[b], axis)
	})
	mid := len(order) / 2
	return &node{
		idx:   order[mid],
		axis:  axis,
		left:  ix.build(order[:mid], depth+1),
		right: ix.build(order[mid+1:], depth+1),
	}
}

func (ix *Index) coord(i, axis int) float64 {
	if axis == 0 {
		return ix.points[i].Lon
	}
	return ix.points[i].Lat
}

func queryCoord(q geo.Coord, axis int) float64 {
	if axis == 0 {
		return q.Lon
	}
	return q.Lat
}

// Nearest returns the position of the indexed point closest to q. Distance
// is planar Euclidean on degrees; ties resolve to the first point found in
// the fixed traversal order, so results are deterministic.
func (ix *Index) Nearest(q geo.Coord) int {
	best := -1
	bestDist := math.Inf(1)
	ix.nearest(ix.root, q, &best, &bestDist)
	return best
}

func (ix *Index) nearest(n *node, q geo.Coord, best *int, bestDist *float64) {
	if n == nil {
		return
	}
	d := geo.EuclideanDegrees(q, ix.points[n.idx])
	if d < *bestDist {
		*bestDist = d
		*best = n.idx
	}

	diff := queryCoord(q, n.axis) - ix.coord(n.idx, n.axis)
	near, far := n.left, n.right
	if diff > 0 {
		near, far = n.right, n.left
	}
	ix.nearest(near, q, best, bestDist)
	if math.Abs(diff) < *bestDist {
		ix.nearest(far, q, best, bestDist)
	}
}

// WithinRadius returns how many indexed points lie within radius r of q,
// boundary inclusive. Same degree-based metric as Nearest.
func (ix *Index) WithinRadius(q geo.Coord, r float64) int {
	return ix.within(ix.root, q, r)
}

func (ix *Index) within(n *node, q geo.Coord, r float64) int {
	if n == nil {
		return 0
	}
	count := 0
	if geo.EuclideanDegrees(q, ix.points[n.idx]) <= r {
		count++
	}
	diff := queryCoord(q, n.axis) - ix.coord(n.idx, n.axis)
	if diff <= r {
		count += ix.within(n.left, q, r)
	}
	if -diff <= r {
		count += ix.within(n.right, q, r)
	}
	return count
}
