// SPDX-License-Identifier: Unlicense OR MIT

// Package spatial answers point-proximity queries ("which node is
// near this pointer position") against a quadtree over the graph's
// current positions. It is rebuilt lazily rather than every frame,
// unlike forcelayout's Barnes-Hut tree which is rebuilt every tick;
// the two trees share no code because they carry different
// invariants (forcelayout's tree carries mass/center-of-mass, this
// one carries leaf node-index buckets for exact-position queries).
package spatial

import (
	"golang.org/x/exp/slices"

	"grapheon.dev/internal/vec"
)

// leafCapacity is the number of node indices a leaf holds before
// splitting into four children.
const leafCapacity = 8

// staleFraction, together with the meanRadius argument to Stale,
// implements the rebuild trigger: rebuild once >= 10% of nodes have
// moved farther than one mean node radius since the last rebuild.
const staleFraction = 0.10

type node struct {
	bounds   vec.Rectangle
	indices  []int32 // populated only at leaves
	children *[4]node
}

// Positions is the minimal read-only view the index needs from the
// graph store: a node count and a position per node. Both layout and
// render already have this information in graph.Node; Index takes this
// interface instead of a concrete graph type so it has no import-time
// dependency on package graph.
type Positions interface {
	Len() int
	Pos(i int) vec.Point
}

// Index is a quadtree over node positions, rebuilt lazily per the
// staleness rule above.
type Index struct {
	root node

	lastBuilt []vec.Point
	built     bool
}

// NewIndex returns an empty, unbuilt Index. Call Refresh before the
// first query.
func NewIndex() *Index {
	return &Index{}
}

// Stale reports whether the index needs a rebuild: either it has
// never been built, or at least staleFraction of tracked positions
// have drifted more than meanRadius from where they were at last
// build.
func (idx *Index) Stale(pos Positions, meanRadius float32) bool {
	if !idx.built || len(idx.lastBuilt) != pos.Len() {
		return true
	}
	moved := 0
	threshold := meanRadius
	for i := 0; i < pos.Len(); i++ {
		if pos.Pos(i).Sub(idx.lastBuilt[i]).Len() > threshold {
			moved++
		}
	}
	return float32(moved) >= staleFraction*float32(pos.Len())
}

// Refresh rebuilds the quadtree from pos's current positions.
func (idx *Index) Refresh(pos Positions) {
	n := pos.Len()
	idx.lastBuilt = make([]vec.Point, n)
	if n == 0 {
		idx.root = node{}
		idx.built = true
		return
	}
	bounds := vec.Rectangle{Min: pos.Pos(0), Max: pos.Pos(0)}
	for i := 0; i < n; i++ {
		p := pos.Pos(i)
		idx.lastBuilt[i] = p
		if p.X < bounds.Min.X {
			bounds.Min.X = p.X
		}
		if p.Y < bounds.Min.Y {
			bounds.Min.Y = p.Y
		}
		if p.X > bounds.Max.X {
			bounds.Max.X = p.X
		}
		if p.Y > bounds.Max.Y {
			bounds.Max.Y = p.Y
		}
	}
	bounds = bounds.Expand(1e-3)
	indices := make([]int32, n)
	for i := range indices {
		indices[i] = int32(i)
	}
	idx.root = node{bounds: bounds}
	idx.root.insertAll(pos, indices)
	idx.built = true
}

func (n *node) insertAll(pos Positions, indices []int32) {
	if len(indices) <= leafCapacity {
		n.indices = indices
		return
	}
	var buckets [4][]int32
	for _, i := range indices {
		q := vec.QuadrantOf(n.bounds, pos.Pos(int(i)))
		buckets[q] = append(buckets[q], i)
	}
	n.children = &[4]node{}
	for q := 0; q < 4; q++ {
		n.children[q] = node{bounds: n.bounds.Quadrant(q)}
		n.children[q].insertAll(pos, buckets[q])
	}
}

// NearestWithin returns the internal index of the node closest to
// (x,y) within radius r, ties broken by lowest index, or ok=false if
// none qualifies.
func (idx *Index) NearestWithin(pos Positions, q vec.Point, r float32) (index int32, ok bool) {
	if !idx.built {
		return 0, false
	}
	best := int32(-1)
	bestDist := r
	idx.root.query(pos, q, bestDist, &best, &bestDist)
	if best < 0 {
		return 0, false
	}
	return best, true
}

func (n *node) query(pos Positions, q vec.Point, radius float32, best *int32, bestDist *float32) {
	if n.bounds.Dx() != 0 || n.bounds.Dy() != 0 {
		closest := clampToRect(q, n.bounds)
		if closest.Sub(q).Len() > *bestDist {
			return
		}
	}
	if n.children == nil {
		candidates := append([]int32(nil), n.indices...)
		slices.Sort(candidates)
		for _, i := range candidates {
			d := pos.Pos(int(i)).Sub(q).Len()
			if d <= *bestDist && (*best < 0 || d < *bestDist || (d == *bestDist && i < *best)) {
				*best = i
				*bestDist = d
			}
		}
		return
	}
	for q2 := 0; q2 < 4; q2++ {
		n.children[q2].query(pos, q, radius, best, bestDist)
	}
}

func clampToRect(p vec.Point, r vec.Rectangle) vec.Point {
	x, y := p.X, p.Y
	if x < r.Min.X {
		x = r.Min.X
	} else if x > r.Max.X {
		x = r.Max.X
	}
	if y < r.Min.Y {
		y = r.Min.Y
	} else if y > r.Max.Y {
		y = r.Max.Y
	}
	return vec.Point{X: x, Y: y}
}
