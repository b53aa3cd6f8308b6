// SPDX-License-Identifier: Unlicense OR MIT

// Package engine is the single exported host API: it owns the graph,
// the layout engine, the renderer and the camera as one value with a
// synchronous, total call surface (outside LoadGraph/FocusNode), the
// same "one value owns everything, exported methods are the entire
// surface" shape gio's app.Window presents to a host even though its
// internals (gpu, op, io) are split across many packages.
package engine

import (
	"grapheon.dev/decode"
	"grapheon.dev/forcelayout"
	"grapheon.dev/graph"
	"grapheon.dev/render"
)

// NodeEvent is passed to the click/hover callbacks: the external id of
// the node involved, so the host can correlate it back to its own data.
type NodeEvent struct {
	ID uint32
}

// Engine is the host-facing handle. The zero value is not usable;
// construct with New.
type Engine struct {
	g       *graph.Graph
	layout  *forcelayout.Engine
	renderer *render.Renderer
	picker  *render.Picker
	hover   render.HoverState

	running bool
	fps     fpsTracker

	onClick func(NodeEvent)
	onHover func(NodeEvent, bool) // bool: true = entered, false = left

	destroyed bool
}

// New constructs an Engine bound to a render Device and an initial
// viewport size. It fails with NoSurface if either viewport dimension
// is not positive, and with NoBackend if render.New fails; the graph
// starts empty (NodeCount()==0) until the first load_graph.
func New(dev render.Device, viewportW, viewportH int) (*Engine, error) {
	if viewportW <= 0 || viewportH <= 0 {
		return nil, &InitError{Reason: NoSurface}
	}
	r, err := render.New(dev, viewportW, viewportH, 14)
	if err != nil {
		return nil, &InitError{Reason: NoBackend, Err: err}
	}
	e := &Engine{
		renderer: r,
		picker:   render.NewPicker(),
		g:        graph.New(nil, nil, map[uint32]int32{}, nil),
	}
	return e, nil
}

// LoadGraph decodes payload and, on success, atomically replaces the
// current graph, resets the layout engine with seed, and clears
// highlight/hover/camera state. On failure the previous graph (if any)
// is left completely intact.
func (e *Engine) LoadGraph(payload []byte, seed int64) error {
	g, err := decode.Decode(payload)
	if err != nil {
		return err
	}
	layout, err := forcelayout.NewEngine(g, forcelayout.DefaultParams(), seed)
	if err != nil {
		return err
	}
	e.g = g
	e.layout = layout
	e.hover = render.HoverState{}
	e.picker = render.NewPicker()
	cam := e.renderer.Camera()
	cam.JumpTo(0, 0, 1)
	return nil
}

// StepLayout runs n force-layout ticks synchronously.
func (e *Engine) StepLayout(n int) {
	if e.layout == nil {
		return
	}
	e.layout.Step(n)
}

// Render draws one frame and folds dtSeconds into the smoothed FPS
// counter the fps() call reports. It is a no-op (beyond a clear) on an
// empty graph.
func (e *Engine) Render(dtSeconds float32, viewportW, viewportH int) {
	if !e.running {
		return
	}
	e.renderer.Frame(e.g, dtSeconds, viewportW, viewportH)
	e.fps.addFrame(dtSeconds)
}

// Start sets the running bit; future Render calls take effect.
func (e *Engine) Start() { e.running = true }

// Stop clears the running bit; future Render calls short-circuit.
// Stop never cancels an in-flight StepLayout, which always runs to
// completion of its requested tick count.
func (e *Engine) Stop() { e.running = false }

// HighlightNodes sets the highlight flag for every id present in the
// graph, silently ignoring ids that are not.
func (e *Engine) HighlightNodes(ids []uint32) {
	for _, id := range ids {
		if idx, ok := e.g.IndexOf(id); ok {
			e.g.Node(int(idx)).Highlighted = true
		}
	}
}

// ClearHighlights clears every node's highlight flag.
func (e *Engine) ClearHighlights() {
	for i := 0; i < e.g.NodeCount(); i++ {
		e.g.Node(i).Highlighted = false
	}
}

// FocusNode sets the camera target to the given node's current
// position at a fixed zoom, or returns a *LookupError if id is
// unknown; the camera does not move on failure.
func (e *Engine) FocusNode(id uint32) error {
	idx, ok := e.g.IndexOf(id)
	if !ok {
		return &LookupError{Reason: UnknownId, ID: id}
	}
	const focusZoom = 2
	pos := e.g.Node(int(idx)).Pos
	e.renderer.Camera().SetTarget(pos.X, pos.Y, focusZoom)
	return nil
}

// FitView sets the camera target to frame every current node position
// with a 10% margin.
func (e *Engine) FitView(viewportW, viewportH float32) {
	x, y, zoom := render.FitView(e.g.Bounds(), viewportW, viewportH, 0.1)
	e.renderer.Camera().SetTarget(x, y, zoom)
}

// OnNodeClick registers the single callback invoked by HandlePointer
// on a click hit; it replaces any previously registered callback.
func (e *Engine) OnNodeClick(fn func(NodeEvent)) { e.onClick = fn }

// OnNodeHover registers the single callback invoked by HandlePointer
// on hover enter/leave; it replaces any previously registered
// callback.
func (e *Engine) OnNodeHover(fn func(NodeEvent, bool)) { e.onHover = fn }

// HandlePointer resolves a screen-space pointer position to a node
// hit, updates hover state (firing onHover on any transition), and, if
// click is true and a node is under the pointer, fires onClick. This
// is the host's single entry point for both move and click events,
// mirroring gio's io/pointer event funneling into gesture.Hover/Click
// but against our spatial-index pick instead of a clip-path test.
func (e *Engine) HandlePointer(screenX, screenY float32, viewportW, viewportH float32, click bool) {
	if e.g.Empty() {
		return
	}
	e.picker.Refresh(e.g)
	world := e.renderer.Camera().WorldFromScreen(screenX, screenY, viewportW, viewportH)
	result := e.picker.Pick(e.g, world)

	if t := e.hover.Update(result); e.onHover != nil {
		if t.HasLeft {
			e.onHover(NodeEvent{ID: e.g.Node(int(t.Left)).ID}, false)
		}
		if t.HasEntered {
			e.onHover(NodeEvent{ID: e.g.Node(int(t.Entered)).ID}, true)
		}
	}
	if click && result.Found && e.onClick != nil {
		e.onClick(NodeEvent{ID: e.g.Node(int(result.Index)).ID})
	}
}

// BackendTier returns the render tier selected at construction, 1-4.
func (e *Engine) BackendTier() int { return int(e.renderer.Tier()) }

// FPS returns the smoothed frame rate over roughly the last second of
// Render calls.
func (e *Engine) FPS() float32 { return e.fps.fps() }

// NodeCount returns the number of nodes in the currently loaded graph.
func (e *Engine) NodeCount() int { return e.g.NodeCount() }

// Stats is a read-only bundle of host-debugging counters, grouped the
// way gio's gpu.Caps bundles related read-only state instead of
// scattering it across single-field getters.
type Stats struct {
	NodeCount    int
	EdgeCount    int
	AnomalyCount uint64
	Tier         int
	FPS          float32
}

// Stats returns the current snapshot of engine counters.
func (e *Engine) Stats() Stats {
	s := Stats{
		NodeCount: e.g.NodeCount(),
		EdgeCount: e.g.EdgeCount(),
		Tier:      int(e.renderer.Tier()),
		FPS:       e.fps.fps(),
	}
	if e.layout != nil {
		s.AnomalyCount = e.layout.Anomalies().Clamped
	}
	return s
}

// Destroy releases every GPU resource the engine owns. The Engine must
// not be used again afterward.
func (e *Engine) Destroy() {
	if e.destroyed {
		return
	}
	e.running = false
	e.renderer.Release()
	e.destroyed = true
}
