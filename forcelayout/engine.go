// SPDX-License-Identifier: Unlicense OR MIT

package forcelayout

import (
	"fmt"
	"math"
	"math/rand"

	"grapheon.dev/graph"
	"grapheon.dev/internal/vec"
)

// Params holds the tunable force-layout coefficients: repulsion,
// attraction, gravity, damping, theta, time step and distance floor.
// Zero-value Params is invalid; use DefaultParams as a starting point.
type Params struct {
	Repulsion     float32
	Attraction    float32
	Gravity       float32
	Damping       float32
	Theta         float32
	TimeStep      float32
	DistanceFloor float32
}

// DefaultParams returns the tuning used when an Engine is constructed
// without explicit overrides.
func DefaultParams() Params {
	return Params{
		Repulsion:     400,
		Attraction:    0.02,
		Gravity:       0.002,
		Damping:       0.9,
		Theta:         0.7,
		TimeStep:      1,
		DistanceFloor: 0.01,
	}
}

// validate reports the first parameter that is out of its documented
// range, so callers get a precise rejection instead of silently
// clamped or NaN-producing behavior.
func (p Params) validate() error {
	switch {
	case p.Repulsion < 0:
		return fmt.Errorf("forcelayout: repulsion must be >= 0, got %v", p.Repulsion)
	case p.Attraction < 0:
		return fmt.Errorf("forcelayout: attraction must be >= 0, got %v", p.Attraction)
	case p.Gravity < 0:
		return fmt.Errorf("forcelayout: gravity must be >= 0, got %v", p.Gravity)
	case p.Damping <= 0 || p.Damping > 1:
		return fmt.Errorf("forcelayout: damping must be in (0, 1], got %v", p.Damping)
	case p.Theta <= 0:
		return fmt.Errorf("forcelayout: theta must be > 0, got %v", p.Theta)
	case p.TimeStep <= 0:
		return fmt.Errorf("forcelayout: time_step must be > 0, got %v", p.TimeStep)
	case p.DistanceFloor <= 0:
		return fmt.Errorf("forcelayout: distance_floor must be > 0, got %v", p.DistanceFloor)
	}
	return nil
}

// AnomalyCounter tracks how often the integrator had to clamp a
// non-finite position or velocity back onto the simulation, so a
// numerical blow-up degrades gracefully instead of propagating
// NaN/Inf into the renderer.
type AnomalyCounter struct {
	Clamped uint64
}

// Engine runs the force-directed simulation for one graph. It mutates
// g.Nodes[i].Pos/Vel in place tick by tick under Step; everything else
// about g (topology, labels) stays immutable for the Engine's lifetime.
type Engine struct {
	g       *graph.Graph
	params  Params
	anomaly AnomalyCounter

	// snapshot is scratch storage for one tick's read-only position
	// sample, reused across ticks to avoid a per-Step allocation.
	snapshot []vec.Point
}

// NewEngine seeds positions for g using seed (deterministic: the same
// seed always produces the same initial layout) and returns an Engine
// ready to Step.
func NewEngine(g *graph.Graph, params Params, seed int64) (*Engine, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}
	e := &Engine{g: g, params: params}
	e.Reset(seed)
	return e, nil
}

// Reset reseeds positions at seeded random angles on a ring around the
// origin (radius 100, jittered by up to 10% either way; deterministic
// for a given seed and independent of edge structure) and zeroes
// velocities, without reallocating the graph.
func (e *Engine) Reset(seed int64) {
	n := e.g.NodeCount()
	r := rand.New(rand.NewSource(seed))
	const radius = 100
	for i := 0; i < n; i++ {
		angle := r.Float64() * 2 * math.Pi
		jitter := 0.9 + 0.2*r.Float64()
		node := e.g.Node(i)
		node.Pos = vec.Point{
			X: float32(radius * jitter * math.Cos(angle)),
			Y: float32(radius * jitter * math.Sin(angle)),
		}
		node.Vel = vec.Point{}
	}
	e.snapshot = make([]vec.Point, n)
	e.anomaly = AnomalyCounter{}
}

// Parameters replaces the engine's tuning, validating the same way
// NewEngine does. Existing positions and velocities are left alone so
// a live simulation can be retuned without restarting it.
func (e *Engine) Parameters(p Params) error {
	if err := p.validate(); err != nil {
		return err
	}
	e.params = p
	return nil
}

// Anomalies returns a copy of the engine's running anomaly counter.
func (e *Engine) Anomalies() AnomalyCounter { return e.anomaly }

// Step advances the simulation by n ticks of TimeStep each.
func (e *Engine) Step(n int) {
	for i := 0; i < n; i++ {
		e.step1()
	}
}

func (e *Engine) step1() {
	nodeCount := e.g.NodeCount()
	if nodeCount == 0 {
		return
	}
	for i := 0; i < nodeCount; i++ {
		e.snapshot[i] = e.g.Node(i).Pos
	}
	tree := buildBHTree(e.snapshot)
	forces := make([]vec.Point, nodeCount)

	for i := 0; i < nodeCount; i++ {
		var acc vec.Point
		batch := repulsionBatch{
			p:             e.snapshot[i],
			repulsion:     e.params.Repulsion,
			distanceFloor: e.params.DistanceFloor,
			acc:           &acc,
		}
		tree.root.accumulateRepulsion(int32(i), &batch, e.params.Theta)
		batch.flush()
		accumulateAttraction(e.snapshot, e.g.Neighbors(i), i, e.params.Attraction, &acc)
		accumulateGravity(e.snapshot[i], e.params.Gravity, &acc)
		forces[i] = acc
	}

	for i := 0; i < nodeCount; i++ {
		node := e.g.Node(i)
		prevPos := node.Pos
		newVel := node.Vel.Add(forces[i].Mul(e.params.TimeStep)).Mul(e.params.Damping)
		newPos := prevPos.Add(newVel.Mul(e.params.TimeStep))
		if !newPos.IsFinite() || !newVel.IsFinite() {
			// §4.3 clamp: zero the velocity, leave the position untouched.
			node.Vel = vec.Point{}
			e.anomaly.Clamped++
			continue
		}
		node.Vel = newVel
		node.Pos = newPos
	}
}
