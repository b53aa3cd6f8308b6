// SPDX-License-Identifier: Unlicense OR MIT

// Package render is the tier-selecting GPU driver: a Camera with
// smoothed pan/zoom, three instanced draw passes (edges, nodes,
// labels, in that per-frame order), and the growable instance buffers
// and backend-tier selection that back them. It reads its per-frame
// input from the (x, y) position slots the forcelayout engine writes,
// a one-way data contract between the layout engine and the renderer.
package render

import (
	"encoding/binary"
	"math"

	"grapheon.dev/graph"
	"grapheon.dev/render/backend"
	"grapheon.dev/render/shaders"
)

// paletteSize buckets beyond this wrap around; sized generously for
// degree-bucket or community-id coloring alike.
const paletteSize = 16

// palette is a small fixed set of RGBA colors node buckets cycle
// through, the same "bucket index into a short fixed palette" scheme
// gio's widget/material theme uses for its color roles, generalized
// here from named semantic roles to numeric graph buckets.
var palette = buildPalette()

func buildPalette() [paletteSize][4]float32 {
	var p [paletteSize][4]float32
	for i := range p {
		hue := float32(i) / float32(len(p))
		r, g, b := hsvToRGB(hue, 0.55, 0.95)
		p[i] = [4]float32{r, g, b, 1}
	}
	return p
}

func hsvToRGB(h, s, v float32) (r, g, b float32) {
	i := math.Floor(float64(h) * 6)
	f := float32(float64(h)*6) - float32(i)
	p := v * (1 - s)
	q := v * (1 - s*f)
	t := v * (1 - s*(1-f))
	switch int(i) % 6 {
	case 0:
		return v, t, p
	case 1:
		return q, v, p
	case 2:
		return p, v, t
	case 3:
		return p, q, v
	case 4:
		return t, p, v
	default:
		return v, p, q
	}
}

const highlightBoost = 0.35

func nodeColor(g *graph.Graph, i int) [4]float32 {
	n := g.Node(i)
	c := palette[int(g.ColorBucket(i))%paletteSize]
	if n.Highlighted {
		c[0] = clamp01(c[0] + highlightBoost)
		c[1] = clamp01(c[1] + highlightBoost)
		c[2] = clamp01(c[2] + highlightBoost)
	}
	return c
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// nodeRadius maps importance (a pagerank-like score, >= 0) to a
// world-space radius, which the camera's view-projection scales to
// screen pixels.
func nodeRadius(importance float32) float32 {
	const minR, maxR, scale = 3, 22, 40
	r := minR + scale*sqrt32(importance)
	if r > maxR {
		return maxR
	}
	return r
}

func sqrt32(v float32) float32 {
	return float32(math.Sqrt(float64(v)))
}

// nodePass, edgePass and labelPass each own one instanceBuffer plus
// the compiled Program/InputLayout for their shader; Renderer drives
// them in the fixed edges -> nodes -> labels order.
type nodePass struct {
	buf     *instanceBuffer
	prog    backend.Program
	layout  backend.InputLayout
	scratch []byte
}

type edgePass struct {
	buf     *instanceBuffer
	prog    backend.Program
	layout  backend.InputLayout
	scratch []byte
}

type labelPass struct {
	buf     *instanceBuffer
	prog    backend.Program
	layout  backend.InputLayout
	scratch []byte
	atlas   *Atlas
}

const nodeInstanceStride = 28
const edgeInstanceStride = 36
const labelInstanceStride = 44

func newNodePass(dev backend.Backend) (*nodePass, error) {
	src := backend.ShaderSources{GLSLES300: "node", WGSL: shaders.Node}
	prog, err := dev.NewProgram(src, src)
	if err != nil {
		return nil, err
	}
	layout, err := dev.NewInputLayout(src, []backend.InputDesc{
		{Type: backend.DataTypeFloat, Size: 2, Offset: 0, InstanceDivisor: 1},
		{Type: backend.DataTypeFloat, Size: 1, Offset: 8, InstanceDivisor: 1},
		{Type: backend.DataTypeFloat, Size: 4, Offset: 12, InstanceDivisor: 1},
	})
	if err != nil {
		return nil, err
	}
	return &nodePass{buf: newInstanceBuffer(nodeInstanceStride), prog: prog, layout: layout}, nil
}

func newEdgePass(dev backend.Backend) (*edgePass, error) {
	src := backend.ShaderSources{GLSLES300: "edge", WGSL: shaders.Edge}
	prog, err := dev.NewProgram(src, src)
	if err != nil {
		return nil, err
	}
	layout, err := dev.NewInputLayout(src, []backend.InputDesc{
		{Type: backend.DataTypeFloat, Size: 2, Offset: 0, InstanceDivisor: 1},
		{Type: backend.DataTypeFloat, Size: 2, Offset: 8, InstanceDivisor: 1},
		{Type: backend.DataTypeFloat, Size: 4, Offset: 16, InstanceDivisor: 1},
		{Type: backend.DataTypeFloat, Size: 1, Offset: 32, InstanceDivisor: 1},
	})
	if err != nil {
		return nil, err
	}
	return &edgePass{buf: newInstanceBuffer(edgeInstanceStride), prog: prog, layout: layout}, nil
}

func newLabelPass(dev backend.Backend, atlas *Atlas) (*labelPass, error) {
	src := backend.ShaderSources{GLSLES300: "label", WGSL: shaders.Label}
	prog, err := dev.NewProgram(src, src)
	if err != nil {
		return nil, err
	}
	layout, err := dev.NewInputLayout(src, []backend.InputDesc{
		{Type: backend.DataTypeFloat, Size: 2, Offset: 0, InstanceDivisor: 1},
		{Type: backend.DataTypeFloat, Size: 4, Offset: 8, InstanceDivisor: 1},
		{Type: backend.DataTypeFloat, Size: 1, Offset: 24, InstanceDivisor: 1},
		{Type: backend.DataTypeFloat, Size: 4, Offset: 28, InstanceDivisor: 1},
	})
	if err != nil {
		return nil, err
	}
	return &labelPass{buf: newInstanceBuffer(labelInstanceStride), prog: prog, layout: layout, atlas: atlas}, nil
}

// encodeNode appends the node-instance bytes for node i to dst,
// tightly packed little-endian so the backend can upload it as a
// zero-copy byte cast of the instance layout.
func encodeNode(dst []byte, g *graph.Graph, i int) []byte {
	n := g.Node(i)
	dst = appendF32(dst, n.Pos.X)
	dst = appendF32(dst, n.Pos.Y)
	dst = appendF32(dst, nodeRadius(n.Importance))
	c := nodeColor(g, i)
	for _, v := range c {
		dst = appendF32(dst, v)
	}
	return dst
}

func encodeEdge(dst []byte, g *graph.Graph, j int) []byte {
	e := g.Edge(j)
	a := g.Node(int(e.Source))
	b := g.Node(int(e.Target))
	dst = appendF32(dst, a.Pos.X)
	dst = appendF32(dst, a.Pos.Y)
	dst = appendF32(dst, b.Pos.X)
	dst = appendF32(dst, b.Pos.Y)
	dst = appendF32(dst, 0.5)
	dst = appendF32(dst, 0.5)
	dst = appendF32(dst, 0.5)
	dst = appendF32(dst, 0.6)
	dst = appendF32(dst, 1.5)
	return dst
}

// encodeLabels appends one glyph instance per rune in n.Label, laid
// out left-to-right from the node's position. Labels are laid out on
// the CPU, not on the GPU; drawLabels calls this for every labelled
// node on every frame, and the layout is not cached between frames,
// whether or not the camera changed. screenSize
// and each glyph's advance are both world-space quantities (the same
// convention node radius and edge thickness use) so the camera's
// view-projection scales an entire label uniformly with the rest of
// the scene instead of the layout being pre-scaled by zoom here.
func encodeLabels(dst []byte, atlas *Atlas, n *graph.Node, screenSize float32) []byte {
	x := n.Pos.X + nodeRadius(n.Importance) + 2
	y := n.Pos.Y
	for _, r := range n.Label {
		g := atlas.Rect(r)
		dst = appendF32(dst, x)
		dst = appendF32(dst, y)
		dst = appendF32(dst, g.u)
		dst = appendF32(dst, g.v)
		dst = appendF32(dst, g.w)
		dst = appendF32(dst, g.h)
		dst = appendF32(dst, screenSize)
		dst = appendF32(dst, 1)
		dst = appendF32(dst, 1)
		dst = appendF32(dst, 1)
		dst = appendF32(dst, 1)
		x += g.advance
	}
	return dst
}

func appendF32(dst []byte, v float32) []byte {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], math.Float32bits(v))
	return append(dst, buf[:]...)
}
