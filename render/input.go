// SPDX-License-Identifier: Unlicense OR MIT

package render

import (
	"grapheon.dev/graph"
	"grapheon.dev/internal/vec"
	"grapheon.dev/spatial"
)

// graphPositions adapts a *graph.Graph to spatial.Positions, the same
// narrow-interface trick package spatial documents to avoid an
// import-time dependency on package graph.
type graphPositions struct{ g *graph.Graph }

func (p graphPositions) Len() int          { return p.g.NodeCount() }
func (p graphPositions) Pos(i int) vec.Point { return p.g.Node(i).Pos }

// meanRadius averages every node's world-space radius, the "one mean
// node radius" staleness unit spatial.Index.Stale expects.
func meanRadius(g *graph.Graph) float32 {
	n := g.NodeCount()
	if n == 0 {
		return 1
	}
	var sum float32
	for i := 0; i < n; i++ {
		sum += nodeRadius(g.Node(i).Importance)
	}
	return sum / float32(n)
}

// PickResult reports which node, if any, a pointer query resolved to.
type PickResult struct {
	Index int32
	Found bool
}

// Picker turns screen-space pointer events into node hits, generalized
// from gio's gesture.Hover/gesture.Click (io/gesture/gesture.go): those
// track a pointer inside a clip-recorded shape via op.Ops replay, while
// this tracks one against the spatial index's nearest-within query,
// since our "hit region" is a circle of radius 1.5 x
// nodeRadius(importance) around a moving point rather than a static
// clip path.
type Picker struct {
	index *spatial.Index
}

// NewPicker returns a Picker with an empty, unbuilt spatial index.
func NewPicker() *Picker {
	return &Picker{index: spatial.NewIndex()}
}

// Refresh rebuilds the underlying spatial index if it has drifted
// stale relative to g's current positions. Call once per frame (or
// once per pointer event, for a still camera) before Pick/Hover.
func (p *Picker) Refresh(g *graph.Graph) {
	pos := graphPositions{g}
	if p.index.Stale(pos, meanRadius(g)) {
		p.index.Refresh(pos)
	}
}

// Pick resolves a world-space point to the nearest node whose hit
// radius (1.5x its draw radius, a generous pointer-friendly margin)
// contains it.
func (p *Picker) Pick(g *graph.Graph, world vec.Point) PickResult {
	pos := graphPositions{g}
	const maxSearch = 64 // widest plausible node radius * margin, world units
	idx, ok := p.index.NearestWithin(pos, world, maxSearch)
	if !ok {
		return PickResult{}
	}
	n := g.Node(int(idx))
	hitR := nodeRadius(n.Importance) * 1.5
	if n.Pos.Sub(world).Len() > hitR {
		return PickResult{}
	}
	return PickResult{Index: idx, Found: true}
}

// HoverState tracks the node currently under the pointer across
// frames so callers can detect enter/leave transitions, the same
// edge-triggered shape gio's gesture.Hover exposes via its own
// Update/Enter state machine.
type HoverState struct {
	current int32
	active  bool
}

// HoverTransition reports what changed about the hovered node, if
// anything, between the previous and current Update call.
type HoverTransition struct {
	Left    int32
	HasLeft bool
	Entered int32
	HasEntered bool
}

// Update advances hover state from the latest Pick result. When the
// hovered node changes, it reports a leave for the previous node (if
// any) and an enter for the new one (if any) in the same transition,
// so a direct A->B move never drops A's leave event.
func (h *HoverState) Update(r PickResult) HoverTransition {
	if h.active && r.Found && h.current == r.Index {
		return HoverTransition{}
	}
	var t HoverTransition
	if h.active {
		t.Left, t.HasLeft = h.current, true
	}
	if r.Found {
		t.Entered, t.HasEntered = r.Index, true
	}
	h.current, h.active = r.Index, r.Found
	return t
}
