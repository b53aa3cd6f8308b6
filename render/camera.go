// SPDX-License-Identifier: Unlicense OR MIT

package render

import (
	"encoding/binary"
	"math"

	"grapheon.dev/internal/vec"
)

// cameraUniformSize is the byte size of the packed camera uniform the
// WGSL shaders' `struct Camera { viewProjection: mat3x2<f32>; viewport:
// vec2<f32> }` expects: six f32 matrix components followed by the
// viewport width/height in pixels.
const cameraUniformSize = 32

// easing is the fixed camera-smoothing constant k:
// cur += (target-cur) * (1 - exp(-k*dt)). Larger k eases out faster.
const easing = 5.0

// Camera holds the current and target (x, y, zoom) and produces the
// world-to-clip matrix the per-frame uniform upload needs. Mirrors
// gio's op.TransformOp composition (translate, then scale, then
// project) but keeps its own minimal Affine2D-shaped math instead of
// pulling in op's full operation-recording machinery, since the
// renderer only ever needs one transform per frame, not a stack of
// nested clips and transforms.
type Camera struct {
	X, Y, Zoom             float32
	TargetX, TargetY, TargetZoom float32
}

// NewCamera returns a camera centered at the origin with zoom 1.
func NewCamera() Camera {
	return Camera{Zoom: 1, TargetZoom: 1}
}

// Update eases the camera toward its target over dtSeconds. The
// factor is clamped to [0,1] so that for any dt >= 0, |cur-target|
// never increases - a very large dt snaps to the target instead of
// overshooting past it.
func (c *Camera) Update(dtSeconds float32) {
	if dtSeconds < 0 {
		dtSeconds = 0
	}
	factor := float32(1 - math.Exp(-easing*float64(dtSeconds)))
	if factor < 0 {
		factor = 0
	}
	if factor > 1 {
		factor = 1
	}
	c.X += (c.TargetX - c.X) * factor
	c.Y += (c.TargetY - c.Y) * factor
	c.Zoom += (c.TargetZoom - c.Zoom) * factor
}

// SetTarget replaces the camera's destination; Update eases toward it
// over subsequent frames.
func (c *Camera) SetTarget(x, y, zoom float32) {
	c.TargetX, c.TargetY, c.TargetZoom = x, y, zoom
}

// JumpTo sets both current and target state immediately, used when
// constructing a fresh camera for a newly loaded graph.
func (c *Camera) JumpTo(x, y, zoom float32) {
	c.X, c.Y, c.Zoom = x, y, zoom
	c.TargetX, c.TargetY, c.TargetZoom = x, y, zoom
}

// Matrix is a 3x2 affine world->clip transform: translate by -camera,
// scale by zoom, then map into normalized device coordinates [-1,1]
// given a viewport in pixels.
type Matrix struct {
	A, B, C, D, E, F float32
}

// ViewProjection builds the world-to-clip matrix: translate by
// -camera.xy, scale by camera.zoom, then project to normalized device
// coordinates for the given viewport size.
func (c Camera) ViewProjection(viewportW, viewportH float32) Matrix {
	if viewportW == 0 {
		viewportW = 1
	}
	if viewportH == 0 {
		viewportH = 1
	}
	sx := 2 * c.Zoom / viewportW
	sy := -2 * c.Zoom / viewportH
	return Matrix{
		A: sx, B: 0,
		C: 0, D: sy,
		E: -c.X * sx,
		F: -c.Y * sy,
	}
}

// UniformBytes packs c's view-projection matrix and the given viewport
// size into the little-endian layout the camera uniform buffer
// uploads every frame (render.Renderer.Frame step 2: "write camera
// uniform"), matching the field order the shader's Camera struct
// declares.
func (c Camera) UniformBytes(viewportW, viewportH float32) []byte {
	m := c.ViewProjection(viewportW, viewportH)
	buf := make([]byte, cameraUniformSize)
	put := func(off int, v float32) { binary.LittleEndian.PutUint32(buf[off:off+4], math.Float32bits(v)) }
	put(0, m.A)
	put(4, m.B)
	put(8, m.C)
	put(12, m.D)
	put(16, m.E)
	put(20, m.F)
	put(24, viewportW)
	put(28, viewportH)
	return buf
}

// Apply maps a world point to clip space using m.
func (m Matrix) Apply(p vec.Point) vec.Point {
	return vec.Point{
		X: m.A*p.X + m.C*p.Y + m.E,
		Y: m.B*p.X + m.D*p.Y + m.F,
	}
}

// WorldFromScreen inverts the camera transform, mapping pixel
// coordinates (origin top-left) to world coordinates, the step input
// handling needs before querying the spatial index. Y is negated
// relative to X because ViewProjection flips Y (screen down vs. world
// up) when mapping to clip space.
func (c Camera) WorldFromScreen(px, py, viewportW, viewportH float32) vec.Point {
	cx, cy := viewportW/2, viewportH/2
	return vec.Point{
		X: c.X + (px-cx)/c.Zoom,
		Y: c.Y - (py-cy)/c.Zoom,
	}
}

// FitView computes the target (x, y, zoom) that frames bounds with
// the given margin (fraction of the viewport reserved as blank
// border).
func FitView(bounds vec.Rectangle, viewportW, viewportH, margin float32) (x, y, zoom float32) {
	cx := (bounds.Min.X + bounds.Max.X) / 2
	cy := (bounds.Min.Y + bounds.Max.Y) / 2
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 && h <= 0 {
		return cx, cy, 1
	}
	avail := 1 - margin
	if avail <= 0 {
		avail = 0.01
	}
	zoomX := float32(math.Inf(1))
	if w > 0 {
		zoomX = viewportW * avail / w
	}
	zoomY := float32(math.Inf(1))
	if h > 0 {
		zoomY = viewportH * avail / h
	}
	zoom = zoomX
	if zoomY < zoom {
		zoom = zoomY
	}
	if math.IsInf(float64(zoom), 1) {
		zoom = 1
	}
	return cx, cy, zoom
}
