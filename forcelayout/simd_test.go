// SPDX-License-Identifier: Unlicense OR MIT

package forcelayout

import (
	"math"
	"testing"

	"grapheon.dev/internal/vec"
)

// scalarSum4 computes the same four-body repulsion sum as
// sumRepulsion4 by calling addRepulsion once per source, giving an
// independent reference to compare the batched kernel against.
func scalarSum4(px, py float32, sx, sy, mass [4]float32, n int, repulsion, distanceFloor float32) vec.Point {
	acc := vec.Point{}
	p := vec.Point{X: px, Y: py}
	for k := 0; k < n; k++ {
		addRepulsion(&acc, p, vec.Point{X: sx[k], Y: sy[k]}, mass[k], repulsion, distanceFloor)
	}
	return acc
}

const simdTolerance = 1e-4

func assertWithinTolerance(t *testing.T, name string, fx, fy float32, want vec.Point) {
	t.Helper()
	if math.Abs(float64(fx-want.X)) >= simdTolerance || math.Abs(float64(fy-want.Y)) >= simdTolerance {
		t.Fatalf("%s: sumRepulsion4=(%v,%v) scalar=(%v,%v), exceeds tolerance %v", name, fx, fy, want.X, want.Y, simdTolerance)
	}
}

// TestSumRepulsion4AgreesWithScalar asserts |simd - scalar| < 1e-4 per
// axis for a fixed set of seed configurations, covering a full batch
// of distinct bodies, a partial batch, exact coincidence, and
// near-coincidence inside distanceFloor - the agreement spec §4.3 and
// §8 require between the batched kernel and the scalar fallback.
func TestSumRepulsion4AgreesWithScalar(t *testing.T) {
	const repulsion = 800.0
	const distanceFloor = 0.5

	cases := []struct {
		name          string
		px, py        float32
		sx, sy, mass  [4]float32
		n             int
	}{
		{
			name: "four distinct bodies",
			px:   0, py: 0,
			sx: [4]float32{10, -5, 3, 8}, sy: [4]float32{4, 6, -9, 2},
			mass: [4]float32{1, 2.5, 0.5, 4}, n: 4,
		},
		{
			name: "partial batch of two",
			px:   1, py: 1,
			sx: [4]float32{5, -3}, sy: [4]float32{5, -3},
			mass: [4]float32{2, 1}, n: 2,
		},
		{
			name: "exact coincidence",
			px:   2, py: 2,
			sx: [4]float32{2, 2}, sy: [4]float32{2, 2},
			mass: [4]float32{1, 1}, n: 2,
		},
		{
			name: "near coincidence inside distanceFloor",
			px:   0, py: 0,
			sx: [4]float32{0.01, -0.02}, sy: [4]float32{0.02, 0.01},
			mass: [4]float32{1, 3}, n: 2,
		},
	}

	for _, c := range cases {
		fx, fy := sumRepulsion4(c.px, c.py, c.sx, c.sy, c.mass, c.n, repulsion, distanceFloor)
		want := scalarSum4(c.px, c.py, c.sx, c.sy, c.mass, c.n, repulsion, distanceFloor)
		assertWithinTolerance(t, c.name, fx, fy, want)
	}
}

// TestRepulsionBatchFlushAgreesAcrossPaths drives repulsionBatch.flush
// itself (not just the bare kernel), on whichever branch simdSupported
// selects on this platform, and compares it with a direct addRepulsion
// loop over the same inputs, since flush is what forcelayout.Engine
// actually calls every tick.
func TestRepulsionBatchFlushAgreesAcrossPaths(t *testing.T) {
	const repulsion = 600.0
	const distanceFloor = 0.75

	p := vec.Point{X: 1, Y: -1}
	sources := []vec.Point{
		{X: 4, Y: 2},
		{X: -6, Y: 3},
		{X: 1, Y: -1}, // coincident with p
		{X: 0.2, Y: -0.9},
	}
	masses := []float32{1.5, 2, 1, 3}

	var simdAcc vec.Point
	simdBatch := &repulsionBatch{p: p, repulsion: repulsion, distanceFloor: distanceFloor, acc: &simdAcc}
	for i, s := range sources {
		simdBatch.add(s, masses[i])
	}
	simdBatch.flush()

	var scalarAcc vec.Point
	for i, s := range sources {
		addRepulsion(&scalarAcc, p, s, masses[i], repulsion, distanceFloor)
	}

	assertWithinTolerance(t, "batch flush vs scalar loop", simdAcc.X, simdAcc.Y, scalarAcc)
}
