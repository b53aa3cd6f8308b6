// SPDX-License-Identifier: Unlicense OR MIT

package forcelayout

import "grapheon.dev/internal/vec"

// repulsionBatch collects up to 4 leaf contacts (direct bodies or
// summarized far-field clusters alike; both present as a single mass
// at a point) before flushing them through sumRepulsion4, so the
// batched kernel sees real work instead of being called one-at-a-time
// and degenerating into the scalar path with extra overhead.
type repulsionBatch struct {
	sx, sy, mass  [4]float32
	n             int
	p             vec.Point
	repulsion     float32
	distanceFloor float32
	acc           *vec.Point
}

func (b *repulsionBatch) add(source vec.Point, mass float32) {
	b.sx[b.n] = source.X
	b.sy[b.n] = source.Y
	b.mass[b.n] = mass
	b.n++
	if b.n == 4 {
		b.flush()
	}
}

func (b *repulsionBatch) flush() {
	if b.n == 0 {
		return
	}
	var fx, fy float32
	if simdSupported {
		fx, fy = sumRepulsion4(b.p.X, b.p.Y, b.sx, b.sy, b.mass, b.n, b.repulsion, b.distanceFloor)
	} else {
		for k := 0; k < b.n; k++ {
			addRepulsion(b.acc, b.p, vec.Point{X: b.sx[k], Y: b.sy[k]}, b.mass[k], b.repulsion, b.distanceFloor)
		}
		b.n = 0
		return
	}
	*b.acc = b.acc.Add(vec.Point{X: fx, Y: fy})
	b.n = 0
}

// accumulateRepulsion walks the tree from n, adding the Coulomb-style
// repulsion felt by body i at position p into batch. Internal nodes
// whose side/distance ratio is below theta are treated as a single
// mass at their center of mass (the Barnes-Hut approximation);
// otherwise the traversal descends into children.
func (n *bhNode) accumulateRepulsion(i int32, batch *repulsionBatch, theta float32) {
	if n.mass == 0 {
		return
	}
	if n.children == nil {
		if n.hasBody && n.bodyIdx == i {
			return
		}
		batch.add(n.com, n.mass)
		return
	}
	d := n.com.Sub(batch.p).Len()
	if d > 0 && n.bounds.Side()/d < theta {
		batch.add(n.com, n.mass)
		return
	}
	for q := 0; q < 4; q++ {
		n.children[q].accumulateRepulsion(i, batch, theta)
	}
}

// addRepulsion adds the force exerted by a mass m at source on a unit
// body at p, strength scaled by repulsion and clamped below by
// distanceFloor to avoid the 1/d^2 singularity at coincident points.
// It is the scalar path repulsionBatch.flush takes when simdSupported
// is false.
func addRepulsion(acc *vec.Point, p, source vec.Point, m, repulsion, distanceFloor float32) {
	delta := p.Sub(source)
	d := delta.Len()
	if d < distanceFloor {
		d = distanceFloor
	}
	dir := delta.Normalized(vec.Point{X: 1, Y: 0})
	mag := repulsion * m / (d * d)
	*acc = acc.Add(dir.Mul(mag))
}

// accumulateAttraction adds the spring-like attraction along every
// edge incident to node i, pulling it toward its neighbors in
// proportion to distance (Hooke's law, not inverse-square).
func accumulateAttraction(positions []vec.Point, neighbors []int32, i int, attraction float32, acc *vec.Point) {
	p := positions[i]
	for _, j := range neighbors {
		if int(j) == i {
			continue
		}
		delta := positions[int(j)].Sub(p)
		*acc = acc.Add(delta.Mul(attraction))
	}
}

// accumulateGravity adds a weak pull toward the origin, keeping
// disconnected components from drifting away indefinitely.
func accumulateGravity(p vec.Point, gravity float32, acc *vec.Point) {
	*acc = acc.Add(p.Mul(-gravity))
}
