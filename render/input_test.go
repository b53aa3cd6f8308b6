// SPDX-License-Identifier: Unlicense OR MIT

package render

import (
	"testing"

	"grapheon.dev/graph"
	"grapheon.dev/internal/vec"
)

func buildTestGraph(t *testing.T) *graph.Graph {
	t.Helper()
	nodes := []graph.Node{
		{ID: 1, Importance: 1, Pos: vec.Point{X: 0, Y: 0}},
		{ID: 2, Importance: 0.1, Pos: vec.Point{X: 100, Y: 0}},
	}
	index := map[uint32]int32{1: 0, 2: 1}
	return graph.New(nodes, nil, index, nil)
}

func TestPickerPickFindsNearestNode(t *testing.T) {
	g := buildTestGraph(t)
	p := NewPicker()
	p.Refresh(g)

	r := p.Pick(g, vec.Point{X: 1, Y: 1})
	if !r.Found || r.Index != 0 {
		t.Fatalf("Pick near node 0 = %+v, want node index 0", r)
	}

	r = p.Pick(g, vec.Point{X: 50, Y: 50})
	if r.Found {
		t.Fatalf("Pick far from any node = %+v, want not found", r)
	}
}

func TestHoverStateReportsEnterAndLeave(t *testing.T) {
	var h HoverState

	t1 := h.Update(PickResult{Index: 0, Found: true})
	if !t1.HasEntered || t1.Entered != 0 || t1.HasLeft {
		t.Fatalf("first hover update = %+v, want enter(0) only", t1)
	}

	t2 := h.Update(PickResult{Index: 0, Found: true})
	if t2.HasEntered || t2.HasLeft {
		t.Fatalf("repeated hover over same node should be a no-op transition, got %+v", t2)
	}

	t3 := h.Update(PickResult{Index: 1, Found: true})
	if !t3.HasLeft || t3.Left != 0 || !t3.HasEntered || t3.Entered != 1 {
		t.Fatalf("switching hover node = %+v, want leave(0) and enter(1)", t3)
	}

	t4 := h.Update(PickResult{Found: false})
	if !t4.HasLeft || t4.Left != 1 || t4.HasEntered {
		t.Fatalf("hover moving off all nodes = %+v, want leave(1) only", t4)
	}
}
