// SPDX-License-Identifier: Unlicense OR MIT

// Package forcelayout implements the force-directed layout engine:
// a Barnes-Hut quadtree reduces the O(n^2) repulsion summation to
// O(n log n), an optional SIMD kernel (gated the way gio's
// gpu/compute.go gates its GPU-compute-vs-CPU fork on cpu.Supported)
// speeds up leaf summation, and a semi-implicit Euler integrator
// advances positions and velocities each tick.
package forcelayout

import "grapheon.dev/internal/vec"

// body is one point mass as seen by the Barnes-Hut tree: a position
// and a mass (always 1 in the current scheme).
type body struct {
	pos  vec.Point
	mass float32
}

// bhNode is a Barnes-Hut quadtree node: either an internal node
// carrying the mass-weighted mean position of its subtree, or a leaf
// referencing a single body. Rebuilt from scratch every tick (unlike
// spatial.Index, which is rebuilt lazily), so it favors fast bulk
// construction over incremental update.
type bhNode struct {
	bounds vec.Rectangle
	mass   float32
	com    vec.Point // center of mass

	children *[4]bhNode
	bodyIdx  int32 // valid only when children == nil && hasBody
	hasBody  bool
}

// bhTree owns the flat storage for one tick's quadtree build.
type bhTree struct {
	root   bhNode
	bodies []body
}

// buildBHTree computes the tight bounding box of positions (expanded
// by a small epsilon to avoid a zero-width root) and inserts every
// body into a fresh quadtree.
func buildBHTree(positions []vec.Point) *bhTree {
	n := len(positions)
	t := &bhTree{bodies: make([]body, n)}
	if n == 0 {
		return t
	}
	bounds := vec.Rectangle{Min: positions[0], Max: positions[0]}
	for i, p := range positions {
		t.bodies[i] = body{pos: p, mass: 1}
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
	t.root = bhNode{bounds: bounds}
	for i := range t.bodies {
		t.root.insert(t.bodies, int32(i))
	}
	return t
}

// insert adds body index i into the subtree rooted at n, rejecting
// (and dropping) bodies that have drifted outside the root bounds
// since the positions were sampled.
func (n *bhNode) insert(bodies []body, i int32) {
	p := bodies[i].pos
	if !n.bounds.Contains(p) && !onBoundary(n.bounds, p) {
		return
	}
	if n.children == nil && !n.hasBody {
		n.bodyIdx = i
		n.hasBody = true
		n.mass = bodies[i].mass
		n.com = p
		return
	}
	if n.children == nil {
		existing := n.bodyIdx
		if bodies[existing].pos == p {
			// Coincident bodies cannot be separated by subdividing, so
			// they share this leaf as one aggregate mass. The leaf keeps
			// the first body's index: only that body skips the leaf in
			// accumulateRepulsion.
			n.mass += bodies[i].mass
			return
		}
		// Split: move the existing body down, then continue with i.
		n.hasBody = false
		n.children = &[4]bhNode{}
		for q := 0; q < 4; q++ {
			n.children[q] = bhNode{bounds: n.bounds.Quadrant(q)}
		}
		moved := n.childFor(bodies[existing].pos)
		moved.insert(bodies, existing)
		// Carry along any coincident bodies aggregated into this leaf.
		moved.mass = n.mass
	}
	n.childFor(p).insert(bodies, i)
	// Incremental mass-weighted mean: combine the aggregate already
	// held for the rest of the subtree with this one new body, O(1)
	// per node on the insertion path instead of re-walking the
	// subtree, so a full tree build stays O(n log n).
	oldMass, oldCom := n.mass, n.com
	newMass := bodies[i].mass
	total := oldMass + newMass
	n.com = oldCom.Mul(oldMass / total).Add(p.Mul(newMass / total))
	n.mass = total
}

func (n *bhNode) childFor(p vec.Point) *bhNode {
	q := vec.QuadrantOf(n.bounds, p)
	return &n.children[q]
}

func onBoundary(r vec.Rectangle, p vec.Point) bool {
	return p.X == r.Max.X || p.Y == r.Max.Y
}
