// SPDX-License-Identifier: Unlicense OR MIT

package render

import (
	"time"

	"grapheon.dev/graph"
	"grapheon.dev/render/backend"
)

// Renderer owns one tier's Backend plus the three instanced passes and
// the Camera, and drives exactly one draw order per frame: edges,
// nodes, then labels.
type Renderer struct {
	dev    backend.Backend
	tier   backend.Tier
	camera *Camera
	atlas  *Atlas

	cameraBuf backend.Buffer

	edges  *edgePass
	nodes  *nodePass
	labels *labelPass

	// timers mirror gio's gpu/compute.go profiling triple (t.compact,
	// t.render, t.blit): one timer per draw pass, begin/end bracketed
	// each frame, surfaced through PassDurations for host-side
	// diagnostics instead of gio's profile string.
	edgeTimer  backend.Timer
	nodeTimer  backend.Timer
	labelTimer backend.Timer
}

// PassDurations reports the most recently completed frame's per-pass
// timings (edges, nodes, labels, in that order), and whether each is
// available yet - a tier/backend may not support timers at all, in
// which case every entry reports false.
type PassDurations struct {
	Edges, Nodes, Labels         time.Duration
	EdgesOK, NodesOK, LabelsOK bool
}

// New selects a backend tier via SelectTier, builds a glyph atlas at
// labelPixelHeight, and compiles all three draw passes against the
// selected backend.
func New(dev Device, viewportW, viewportH, labelPixelHeight int) (*Renderer, error) {
	be, tier, err := SelectTier(dev, viewportW, viewportH)
	if err != nil {
		return nil, err
	}

	atlas, err := NewAtlas(labelPixelHeight)
	if err != nil {
		be.Release()
		return nil, err
	}
	atlas.Upload(be)

	ep, err := newEdgePass(be)
	if err != nil {
		be.Release()
		return nil, err
	}
	np, err := newNodePass(be)
	if err != nil {
		be.Release()
		return nil, err
	}
	lp, err := newLabelPass(be, atlas)
	if err != nil {
		be.Release()
		return nil, err
	}

	cam := NewCamera()
	return &Renderer{
		dev:        be,
		tier:       tier,
		camera:     &cam,
		atlas:      atlas,
		cameraBuf:  be.NewBuffer(backend.BufferTypeUniforms, cameraUniformSize),
		edges:      ep,
		nodes:      np,
		labels:     lp,
		edgeTimer:  be.NewTimer(),
		nodeTimer:  be.NewTimer(),
		labelTimer: be.NewTimer(),
	}, nil
}

// Tier reports the backend tier selected at construction.
func (r *Renderer) Tier() backend.Tier { return r.tier }

// Camera returns the renderer's camera for pan/zoom control and
// screen<->world conversions.
func (r *Renderer) Camera() *Camera { return r.camera }

// Release tears down every GPU resource the renderer owns.
func (r *Renderer) Release() {
	r.edges.buf.release()
	r.nodes.buf.release()
	r.labels.buf.release()
	r.edges.prog.Release()
	r.nodes.prog.Release()
	r.labels.prog.Release()
	r.edges.layout.Release()
	r.nodes.layout.Release()
	r.labels.layout.Release()
	if r.cameraBuf != nil {
		r.cameraBuf.Release()
	}
	releaseTimer(r.edgeTimer)
	releaseTimer(r.nodeTimer)
	releaseTimer(r.labelTimer)
	if tex := r.atlas.Texture(); tex != nil {
		tex.Release()
	}
	r.dev.Release()
}

func releaseTimer(t backend.Timer) {
	if t != nil {
		t.Release()
	}
}

func (b *instanceBuffer) release() {
	if b.buf != nil {
		b.buf.Release()
		b.buf = nil
		b.capacity = 0
	}
}

// Frame renders one frame of g, advancing the camera by dtSeconds and
// encoding+uploading+drawing edges, nodes, then labels in that fixed
// order.
func (r *Renderer) Frame(g *graph.Graph, dtSeconds float32, viewportW, viewportH int) {
	r.camera.Update(dtSeconds)

	r.dev.BeginFrame()
	r.dev.Viewport(0, 0, viewportW, viewportH)
	r.dev.ClearColor(0.08, 0.08, 0.1, 1)
	r.dev.Clear(backend.BufferAttachmentColor | backend.BufferAttachmentDepth)
	r.dev.SetBlend(true)
	r.dev.BlendFunc(backend.BlendFactorOne, backend.BlendFactorOneMinusSrcAlpha)

	// §4.4 step 2: write the camera uniform (view-projection matrix +
	// viewport size in pixels) once per frame; every pass's program
	// binds the same buffer before its draw call.
	r.cameraBuf.Upload(r.camera.UniformBytes(float32(viewportW), float32(viewportH)))

	beginTimer(r.edgeTimer)
	r.drawEdges(g)
	endTimer(r.edgeTimer)

	beginTimer(r.nodeTimer)
	r.drawNodes(g)
	endTimer(r.nodeTimer)

	beginTimer(r.labelTimer)
	r.drawLabels(g, viewportW)
	endTimer(r.labelTimer)

	r.dev.EndFrame()
}

func beginTimer(t backend.Timer) {
	if t != nil {
		t.Begin()
	}
}

func endTimer(t backend.Timer) {
	if t != nil {
		t.End()
	}
}

// PassDurations returns the last frame's per-pass timings. A tier
// whose Timer is a no-op reports that entry's OK flag false. Frame
// brackets every pass with begin/end even when it draws zero
// instances, so such a pass still reports a (short) duration.
func (r *Renderer) PassDurations() PassDurations {
	var d PassDurations
	d.Edges, d.EdgesOK = timerDuration(r.edgeTimer)
	d.Nodes, d.NodesOK = timerDuration(r.nodeTimer)
	d.Labels, d.LabelsOK = timerDuration(r.labelTimer)
	return d
}

func timerDuration(t backend.Timer) (time.Duration, bool) {
	if t == nil {
		return 0, false
	}
	return t.Duration()
}

func (r *Renderer) drawEdges(g *graph.Graph) {
	n := g.EdgeCount()
	if n == 0 {
		return
	}
	buf := r.edges.scratch[:0]
	for j := 0; j < n; j++ {
		buf = encodeEdge(buf, g, j)
	}
	r.edges.scratch = buf
	r.edges.buf.upload(r.dev, buf, n)
	r.edges.prog.Bind()
	r.edges.prog.SetVertexUniforms(r.cameraBuf)
	r.edges.layout.Bind()
	r.edges.buf.buf.BindVertex(edgeInstanceStride, 0)
	r.dev.DrawArraysInstanced(backend.DrawModeTriangleStrip, 0, 4, n)
}

func (r *Renderer) drawNodes(g *graph.Graph) {
	n := g.NodeCount()
	if n == 0 {
		return
	}
	buf := r.nodes.scratch[:0]
	for i := 0; i < n; i++ {
		buf = encodeNode(buf, g, i)
	}
	r.nodes.scratch = buf
	r.nodes.buf.upload(r.dev, buf, n)
	r.nodes.prog.Bind()
	r.nodes.prog.SetVertexUniforms(r.cameraBuf)
	r.nodes.layout.Bind()
	r.nodes.buf.buf.BindVertex(nodeInstanceStride, 0)
	r.dev.DrawArraysInstanced(backend.DrawModeTriangleStrip, 0, 4, n)
}

func (r *Renderer) drawLabels(g *graph.Graph, viewportW int) {
	// screenSize is the glyph quad's world-space extent; like node
	// radius and edge thickness it is left in world units for the
	// camera uniform's view-projection to scale, not pre-multiplied by
	// zoom here.
	screenSize := float32(r.atlas.PixelHeight())
	buf := r.labels.scratch[:0]
	count := 0
	for i := 0; i < g.NodeCount(); i++ {
		n := g.Node(i)
		if n.Label == "" {
			continue
		}
		before := len(buf)
		buf = encodeLabels(buf, r.atlas, n, screenSize)
		count += (len(buf) - before) / labelInstanceStride
	}
	r.labels.scratch = buf
	if count == 0 {
		return
	}
	r.labels.buf.upload(r.dev, buf, count)
	r.labels.prog.Bind()
	r.labels.prog.SetVertexUniforms(r.cameraBuf)
	r.labels.layout.Bind()
	r.labels.buf.buf.BindVertex(labelInstanceStride, 0)
	if tex := r.atlas.Texture(); tex != nil {
		tex.Bind(0)
	}
	r.dev.DrawArraysInstanced(backend.DrawModeTriangleStrip, 0, 4, count)
}
