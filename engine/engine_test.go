// SPDX-License-Identifier: Unlicense OR MIT

package engine

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"grapheon.dev/decode"
	"grapheon.dev/render"
)

// buildPayload assembles a minimal valid BLOM payload: a 3-node,
// 2-edge graph with no labels and no community section, enough to
// exercise LoadGraph end to end without depending on package decode's
// internal test fixtures.
func buildPayload(t *testing.T) []byte {
	t.Helper()
	bo := binary.LittleEndian
	buf := make([]byte, 0, 128)
	put32 := func(v uint32) { var b [4]byte; bo.PutUint32(b[:], v); buf = append(buf, b[:]...) }
	put16 := func(v uint16) { var b [2]byte; bo.PutUint16(b[:], v); buf = append(buf, b[:]...) }
	putF32 := func(v float32) { put32(math.Float32bits(v)) }

	put32(decode.Magic)
	put16(1) // version
	put32(3) // node_count
	put32(2) // edge_count
	put16(0) // flags: no labels, no community

	ids := []uint32{10, 20, 30}
	for _, id := range ids {
		put32(id)
	}
	importance := []float32{1, 0.5, 0.25}
	for _, v := range importance {
		putF32(v)
	}
	degree := []uint16{2, 1, 1}
	for _, d := range degree {
		put16(d)
	}
	edges := [][2]uint32{{10, 20}, {10, 30}}
	for _, e := range edges {
		put32(e[0])
	}
	for _, e := range edges {
		put32(e[1])
	}
	return buf
}

func TestEngineLoadGraphAndStepRender(t *testing.T) {
	e, err := New(render.NullDevice{}, 320, 240)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(e.Destroy)

	if n := e.NodeCount(); n != 0 {
		t.Fatalf("fresh Engine NodeCount = %v, want 0", n)
	}

	payload := buildPayload(t)
	if err := e.LoadGraph(payload, 1); err != nil {
		t.Fatalf("LoadGraph: %v", err)
	}
	if n := e.NodeCount(); n != 3 {
		t.Fatalf("NodeCount after load = %v, want 3", n)
	}

	e.Start()
	e.StepLayout(5)
	e.Render(1.0/60, 320, 240)
	if fps := e.FPS(); fps <= 0 {
		t.Fatalf("FPS after one render = %v, want > 0", fps)
	}
}

func TestEngineStatsReflectsLoadedGraphAndTier(t *testing.T) {
	e, err := New(render.NullDevice{}, 320, 240)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(e.Destroy)

	if s := e.Stats(); s.NodeCount != 0 || s.EdgeCount != 0 {
		t.Fatalf("fresh Stats = %+v, want zero node/edge counts", s)
	}

	payload := buildPayload(t)
	if err := e.LoadGraph(payload, 1); err != nil {
		t.Fatalf("LoadGraph: %v", err)
	}
	e.Start()
	e.StepLayout(5)
	e.Render(1.0/60, 320, 240)

	s := e.Stats()
	if s.NodeCount != 3 || s.EdgeCount != 2 {
		t.Fatalf("Stats after load = %+v, want NodeCount=3 EdgeCount=2", s)
	}
	if s.Tier != e.BackendTier() {
		t.Fatalf("Stats.Tier = %v, want %v", s.Tier, e.BackendTier())
	}
	if s.FPS <= 0 {
		t.Fatalf("Stats.FPS = %v, want > 0 after one render", s.FPS)
	}
}

func TestEngineNewRejectsEmptySurface(t *testing.T) {
	_, err := New(render.NullDevice{}, 0, 240)
	if err == nil {
		t.Fatalf("New with zero viewport width: expected a NoSurface InitError")
	}
	var initErr *InitError
	if !errors.As(err, &initErr) || initErr.Reason != NoSurface {
		t.Fatalf("New with zero viewport width: err = %v, want InitError{Reason: NoSurface}", err)
	}
}

func TestEngineLoadGraphFailurePreservesPriorGraph(t *testing.T) {
	e, err := New(render.NullDevice{}, 320, 240)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(e.Destroy)

	if err := e.LoadGraph(buildPayload(t), 1); err != nil {
		t.Fatalf("LoadGraph: %v", err)
	}
	before := e.NodeCount()

	if err := e.LoadGraph([]byte{0x01, 0x02}, 1); err == nil {
		t.Fatalf("LoadGraph with garbage payload: expected an error")
	}
	if after := e.NodeCount(); after != before {
		t.Fatalf("NodeCount changed after a failed LoadGraph: %v -> %v", before, after)
	}
}

func TestEngineFocusNodeUnknownId(t *testing.T) {
	e, err := New(render.NullDevice{}, 320, 240)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(e.Destroy)
	if err := e.LoadGraph(buildPayload(t), 1); err != nil {
		t.Fatalf("LoadGraph: %v", err)
	}
	err = e.FocusNode(999)
	if err == nil {
		t.Fatalf("FocusNode(999): expected a LookupError")
	}
	var lookupErr *LookupError
	if !errors.As(err, &lookupErr) {
		t.Fatalf("FocusNode(999) error = %v, want *LookupError", err)
	}
}

func TestEngineHighlightAndClear(t *testing.T) {
	e, err := New(render.NullDevice{}, 320, 240)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(e.Destroy)
	if err := e.LoadGraph(buildPayload(t), 1); err != nil {
		t.Fatalf("LoadGraph: %v", err)
	}

	e.HighlightNodes([]uint32{10, 999}) // 999 silently ignored
	if idx, _ := e.g.IndexOf(10); !e.g.Node(int(idx)).Highlighted {
		t.Fatalf("node 10 was not highlighted")
	}
	e.ClearHighlights()
	if idx, _ := e.g.IndexOf(10); e.g.Node(int(idx)).Highlighted {
		t.Fatalf("node 10 still highlighted after ClearHighlights")
	}
}

func TestEngineFitViewSetsCameraTarget(t *testing.T) {
	e, err := New(render.NullDevice{}, 320, 240)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(e.Destroy)
	if err := e.LoadGraph(buildPayload(t), 1); err != nil {
		t.Fatalf("LoadGraph: %v", err)
	}
	e.FitView(320, 240)
	cam := e.renderer.Camera()
	if cam.TargetZoom <= 0 {
		t.Fatalf("FitView TargetZoom = %v, want > 0", cam.TargetZoom)
	}
}
