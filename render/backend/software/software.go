// SPDX-License-Identifier: Unlicense OR MIT

// Package software implements render/backend.Backend as a pure-Go
// CPU rasterizer, the tier 4 "software 2D surface" fallback of the
// render tier table. It is the one backend guaranteed to be
// available on every target (no GPU required), grounded in gio's own
// raster package (gio's scanline stroke/fill rasterizer) generalized
// from path-stroke rasterization to instanced-primitive rasterization:
// this backend does not walk a vector path tree, it walks a flat
// instance buffer and paints one shape per instance directly into an
// image.RGBA, the same target gio's headless.Window reads a frame
// into for golden-image tests.
package software

import (
	"errors"
	"image"
	"image/color"
	"math"
	"time"

	"grapheon.dev/render/backend"
)

// Backend rasterizes every draw call directly against an in-memory
// RGBA surface. It understands exactly the three instance layouts
// this renderer defines (node/edge/label); NewProgram's shader
// sources are used only to select which of those three layouts a
// given program/buffer pairing paints, since there is no real shader
// compiler on this path.
type Backend struct {
	size    image.Point
	surface *image.RGBA
	clear   [4]float32

	bound         *program
	boundVertices *buffer
	buffers       map[*buffer]struct{}
}

// New creates a software backend targeting a width x height surface.
// It never fails preconditions the way a GPU context can, which is
// why it is always last in the tier fallback chain (render.SelectTier)
// rather than ever being a candidate for failure handling itself.
func New(width, height int) *Backend {
	return &Backend{
		size:    image.Pt(width, height),
		surface: image.NewRGBA(image.Rect(0, 0, width, height)),
		buffers: make(map[*buffer]struct{}),
	}
}

// Surface exposes the current frame's pixels, the software tier's
// equivalent of a swapchain present - the host copies this into a
// <canvas> ImageData or similar.
func (b *Backend) Surface() *image.RGBA { return b.surface }

func (b *Backend) BeginFrame() {}
func (b *Backend) EndFrame()   {}

func (b *Backend) Caps() backend.Caps {
	return backend.Caps{Tier: backend.TierSoftware, MaxTextureSize: 8192}
}

func (b *Backend) ClearColor(r, g, bl, a float32) { b.clear = [4]float32{r, g, bl, a} }

func (b *Backend) Clear(buffers backend.BufferAttachments) {
	if buffers&backend.BufferAttachmentColor == 0 {
		return
	}
	c := toNRGBA(b.clear)
	for y := 0; y < b.size.Y; y++ {
		for x := 0; x < b.size.X; x++ {
			b.surface.Set(x, y, c)
		}
	}
}

func (b *Backend) Viewport(x, y, width, height int) {
	if width != b.size.X || height != b.size.Y {
		b.size = image.Pt(width, height)
		b.surface = image.NewRGBA(image.Rect(0, 0, width, height))
	}
}

func (b *Backend) NewTexture(format backend.TextureFormat, width, height int, minFilter, magFilter backend.TextureFilter) backend.Texture {
	return &texture{pix: image.NewRGBA(image.Rect(0, 0, width, height))}
}

func (b *Backend) NewBuffer(typ backend.BufferType, size int) backend.Buffer {
	buf := &buffer{backend: b, typ: typ, data: make([]byte, size)}
	b.buffers[buf] = struct{}{}
	return buf
}

func (b *Backend) NewProgram(vs, fs backend.ShaderSources) (backend.Program, error) {
	kind, ok := passKindFromShader(vs)
	if !ok {
		return nil, errors.New("software: unrecognized shader source, no matching draw pass")
	}
	return &program{backend: b, kind: kind}, nil
}

func (b *Backend) NewInputLayout(vs backend.ShaderSources, layout []backend.InputDesc) (backend.InputLayout, error) {
	return &inputLayout{}, nil
}

// NewTimer returns a wall-clock timer, the software tier's analogue of
// gio's GL_TIME_ELAPSED_EXT query object
// (app/internal/gpu/timer.go): begin()/end() bracket a pass and
// Duration() reports the elapsed time once it's available. There is no
// query object or disjoint-GPU-clock concern on this tier, so the
// result is available as soon as End returns rather than polled later.
func (b *Backend) NewTimer() backend.Timer { return &timer{} }

func (b *Backend) DrawArraysInstanced(mode backend.DrawMode, first, count, instanceCount int) {
	if b.bound == nil {
		return
	}
	b.bound.drawInstanced(instanceCount)
}

func (b *Backend) DrawElementsInstanced(mode backend.DrawMode, count, instanceCount int) {
	b.DrawArraysInstanced(mode, 0, count, instanceCount)
}

func (b *Backend) SetBlend(enable bool)                          {}
func (b *Backend) BlendFunc(sf, df backend.BlendFactor)          {}

func (b *Backend) Release() {
	b.buffers = nil
	b.surface = nil
}

type texture struct{ pix *image.RGBA }

func (t *texture) Upload(data []byte, width, height int) {
	t.pix = image.NewRGBA(image.Rect(0, 0, width, height))
	copy(t.pix.Pix, data)
}
func (t *texture) Release()     {}
func (t *texture) Bind(unit int) {}

type buffer struct {
	backend *Backend
	typ     backend.BufferType
	data    []byte
}

// BindVertex records this buffer as the one the next draw call reads
// instance attributes from. A real GPU backend would bind it into a
// vertex array object via InputLayout; the software rasterizer has no
// attribute pipeline, so it just remembers which buffer is "current"
// the same way internal/gl.Functions.BindBuffer records an Enum-keyed
// current binding.
func (buf *buffer) BindVertex(stride, offset int) {
	if buf.backend != nil {
		buf.backend.boundVertices = buf
	}
}
func (buf *buffer) BindIndex() {}
func (buf *buffer) Release()   { buf.data = nil }
func (buf *buffer) Upload(data []byte) {
	if len(data) > len(buf.data) {
		buf.data = make([]byte, len(data))
	}
	n := copy(buf.data, data)
	buf.data = buf.data[:n]
}

type inputLayout struct{}

func (l *inputLayout) Bind()    {}
func (l *inputLayout) Release() {}

type timerState uint8

const (
	timerIdle timerState = iota
	timerRunning
	timerDone
)

// timer is the software tier's wall-clock stand-in for a GPU timer
// query object; Begin/End bracket a pass the same way
// app/internal/gpu/timer.go's begin()/end() bracket a GL_TIME_ELAPSED_EXT
// query, but the elapsed duration is available immediately since there
// is no asynchronous query result to poll.
type timer struct {
	state   timerState
	started time.Time
	elapsed time.Duration
}

func (t *timer) Begin() {
	if t.state == timerRunning {
		return
	}
	t.started = time.Now()
	t.state = timerRunning
}

func (t *timer) End() {
	if t.state != timerRunning {
		return
	}
	t.elapsed = time.Since(t.started)
	t.state = timerDone
}

func (t *timer) Duration() (time.Duration, bool) {
	if t.state != timerDone {
		return 0, false
	}
	return t.elapsed, true
}

func (t *timer) Release() { t.state = timerIdle }

// passKind distinguishes the three instance layouts this renderer
// defines, since the software backend paints each differently.
type passKind int

const (
	passNode passKind = iota
	passEdge
	passLabel
)

func passKindFromShader(vs backend.ShaderSources) (passKind, bool) {
	switch vs.GLSLES300 {
	case "node":
		return passNode, true
	case "edge":
		return passEdge, true
	case "label":
		return passLabel, true
	}
	return 0, false
}

type program struct {
	backend      *Backend
	kind         passKind
	vertUniforms backend.Buffer
}

func (p *program) Bind()                                 { p.backend.bound = p }
func (p *program) Release()                               {}
func (p *program) SetVertexUniforms(buf backend.Buffer)   { p.vertUniforms = buf }
func (p *program) SetFragmentUniforms(buf backend.Buffer) {}

func (p *program) drawInstanced(count int) {
	buf := p.backend.boundVertices
	if buf == nil {
		return
	}
	cam := decodeCameraUniform(p.vertUniforms, p.backend.size)
	switch p.kind {
	case passNode:
		p.backend.paintNodes(buf.data, count, cam)
	case passEdge:
		p.backend.paintEdges(buf.data, count, cam)
	case passLabel:
		p.backend.paintLabels(buf.data, count, cam)
	}
}

// cameraUniform is the software rasterizer's decode of the 32-byte
// camera uniform render.Camera.UniformBytes packs (view-projection
// matrix + viewport size), the CPU-side equivalent of the WGSL
// vertex shaders' `camera.viewProjection * vec3(world, 1.0)` transform
// the shader design in spec.md §4.4 describes: a real vertex shader
// expands each instance's world-space quad and projects it through
// this same matrix, so this backend must do the identical work per
// painted pixel instead of per vertex.
type cameraUniform struct {
	a, b, c, d, e, f float32
	viewportW        float32
	viewportH        float32
}

// identityCamera passes world coordinates straight through to screen
// space, the degenerate 1:1 mapping used only when a pass is drawn
// without a bound camera uniform (e.g. a test backend exercising the
// rasterizer directly).
func identityCamera(size image.Point) cameraUniform {
	return cameraUniform{a: 1, d: 1, viewportW: float32(size.X), viewportH: float32(size.Y)}
}

func decodeCameraUniform(buf backend.Buffer, size image.Point) cameraUniform {
	vb, ok := buf.(*buffer)
	if !ok || len(vb.data) < 32 {
		return identityCamera(size)
	}
	d := vb.data
	return cameraUniform{
		a:         readF32(d[0:4]),
		b:         readF32(d[4:8]),
		c:         readF32(d[8:12]),
		d:         readF32(d[12:16]),
		e:         readF32(d[16:20]),
		f:         readF32(d[20:24]),
		viewportW: readF32(d[24:28]),
		viewportH: readF32(d[28:32]),
	}
}

// toScreen maps a world point to a screen pixel coordinate, the same
// translate/scale/project composition render.Camera.ViewProjection
// encodes, inverted from clip space ([-1,1]) back to pixels since this
// backend paints pixels directly rather than handing clip coordinates
// to a rasterizer stage.
func (c cameraUniform) toScreen(x, y float32) (float32, float32) {
	clipX := c.a*x + c.c*y + c.e
	clipY := c.b*x + c.d*y + c.f
	return (clipX + 1) * 0.5 * c.viewportW, (clipY + 1) * 0.5 * c.viewportH
}

// scale is the camera's current screen-pixels-per-world-unit factor,
// derived (rather than hardcoded against the matrix's specific field
// layout) by measuring how far one world-space unit moves on screen -
// the same quantity a vertex shader applies implicitly to every
// instance's world-space radius/thickness/size field when it
// transforms quad corners through camera.viewProjection.
func (c cameraUniform) scale() float32 {
	x0, y0 := c.toScreen(0, 0)
	x1, y1 := c.toScreen(1, 0)
	return float32(math.Hypot(float64(x1-x0), float64(y1-y0)))
}

// paintNodes rasterizes the 28-byte node instance layout directly as
// hard-edged solid discs: every pixel whose center lies within the
// scaled radius is overwritten with the node color. Unlike node.wgsl's
// fragment stage, it applies no smoothstep edge antialiasing and no
// alpha blending.
func (b *Backend) paintNodes(data []byte, count int, cam cameraUniform) {
	const stride = 28
	scale := cam.scale()
	for i := 0; i < count && (i+1)*stride <= len(data); i++ {
		rec := data[i*stride : (i+1)*stride]
		x := readF32(rec[0:4])
		y := readF32(rec[4:8])
		r := readF32(rec[8:12])
		col := [4]float32{readF32(rec[12:16]), readF32(rec[16:20]), readF32(rec[20:24]), readF32(rec[24:28])}
		sx, sy := cam.toScreen(x, y)
		b.paintDisc(sx, sy, r*scale, col)
	}
}

// paintEdges rasterizes the 36-byte edge instance layout: a line
// between two endpoints with solid color.
func (b *Backend) paintEdges(data []byte, count int, cam cameraUniform) {
	const stride = 36
	scale := cam.scale()
	for i := 0; i < count && (i+1)*stride <= len(data); i++ {
		rec := data[i*stride : (i+1)*stride]
		ax, ay := readF32(rec[0:4]), readF32(rec[4:8])
		bx, by := readF32(rec[8:12]), readF32(rec[12:16])
		col := [4]float32{readF32(rec[16:20]), readF32(rec[20:24]), readF32(rec[24:28]), readF32(rec[28:32])}
		thickness := readF32(rec[32:36])
		sax, say := cam.toScreen(ax, ay)
		sbx, sby := cam.toScreen(bx, by)
		b.paintLine(sax, say, sbx, sby, thickness*scale, col)
	}
}

// paintLabels rasterizes the glyph-instance layout as flat-colored
// boxes; the SDF sampling the label fragment shader design describes
// needs the glyph atlas texture, which render.Renderer binds - the
// software path approximates it with a solid box at the glyph anchor
// since there is no SDF sampler on this tier. The box's pixel size
// comes from the instance's screenSize field (the world-space quad
// extent label.wgsl's vertex shader expands `anchor + corner *
// inst.screenSize` from), not the atlas rect's u/v/w/h - those are
// normalized texture-space fractions used only by a real sampler.
func (b *Backend) paintLabels(data []byte, count int, cam cameraUniform) {
	// anchor(x,y) + atlas rect(u,v,w,h) + screen size + RGBA color.
	const stride = 44
	scale := cam.scale()
	for i := 0; i < count && (i+1)*stride <= len(data); i++ {
		rec := data[i*stride : (i+1)*stride]
		x, y := readF32(rec[0:4]), readF32(rec[4:8])
		size := readF32(rec[24:28])
		col := [4]float32{readF32(rec[28:32]), readF32(rec[32:36]), readF32(rec[36:40]), readF32(rec[40:44])}
		sx, sy := cam.toScreen(x, y)
		boxSize := size * scale
		b.paintBox(sx, sy, boxSize, boxSize, col)
	}
}

func (b *Backend) paintDisc(cx, cy, r float32, col [4]float32) {
	minX, maxX := int(cx-r), int(cx+r)
	minY, maxY := int(cy-r), int(cy+r)
	c := toNRGBA(col)
	for y := minY; y <= maxY; y++ {
		if y < 0 || y >= b.size.Y {
			continue
		}
		for x := minX; x <= maxX; x++ {
			if x < 0 || x >= b.size.X {
				continue
			}
			dx, dy := float64(x)-float64(cx), float64(y)-float64(cy)
			if math.Hypot(dx, dy) <= float64(r) {
				b.surface.Set(x, y, c)
			}
		}
	}
}

func (b *Backend) paintLine(ax, ay, bx, by, thickness float32, col [4]float32) {
	steps := int(math.Hypot(float64(bx-ax), float64(by-ay))) + 1
	half := thickness / 2
	for s := 0; s <= steps; s++ {
		t := float32(s) / float32(steps)
		x, y := ax+(bx-ax)*t, ay+(by-ay)*t
		b.paintDisc(x, y, half, col)
	}
}

func readF32(b []byte) float32 {
	bits := uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
	return math.Float32frombits(bits)
}

func toNRGBA(c [4]float32) color.NRGBA {
	clamp := func(v float32) uint8 {
		if v <= 0 {
			return 0
		}
		if v >= 1 {
			return 255
		}
		return uint8(v * 255)
	}
	return color.NRGBA{R: clamp(c[0]), G: clamp(c[1]), B: clamp(c[2]), A: clamp(c[3])}
}

func (b *Backend) paintBox(x, y, w, h float32, col [4]float32) {
	c := toNRGBA(col)
	for py := int(y); py < int(y+h); py++ {
		if py < 0 || py >= b.size.Y {
			continue
		}
		for px := int(x); px < int(x+w); px++ {
			if px < 0 || px >= b.size.X {
				continue
			}
			b.surface.Set(px, py, c)
		}
	}
}
