// SPDX-License-Identifier: Unlicense OR MIT

// Package backend abstracts the GPU APIs the renderer can draw
// through, generalized from gioui.org/gpu's Backend interface. gio's
// Backend never needed instanced draws because its vector rasterizer
// batches geometry into triangle strips; this renderer draws one
// instanced call per pass (nodes, edges, labels), so this interface
// adds DrawArraysInstanced/DrawElementsInstanced and an
// InstanceDivisor on InputDesc to the shape gio already defines.
package backend

import "time"

// Backend is the capability surface a render tier must satisfy. Tiers
// 1-3 (modern GPU API, legacy GPU API with SIMD compute, legacy GPU
// API with scalar compute) share this same draw interface; only the
// compute side of the tier table differs, and that lives in the
// layout engine, not here. Tier 4 (software) implements it too, so
// the renderer's per-frame code (render.Renderer.Frame) never
// branches on tier after construction: dispatch across tiers is
// resolved once at init.
type Backend interface {
	BeginFrame()
	EndFrame()
	Caps() Caps

	NewTexture(format TextureFormat, width, height int, minFilter, magFilter TextureFilter) Texture
	NewBuffer(typ BufferType, size int) Buffer
	NewProgram(vertexShader, fragmentShader ShaderSources) (Program, error)
	NewInputLayout(vertexShader ShaderSources, layout []InputDesc) (InputLayout, error)
	// NewTimer returns a GPU/CPU timer scoped to begin/end pairs around
	// a draw pass, gio's gpu/compute.go pattern of profiling compact,
	// render and blit passes individually (t.compact, t.render, t.blit)
	// generalized from three fixed compute stages to this renderer's
	// three fixed draw passes (edges, nodes, labels).
	NewTimer() Timer

	ClearColor(r, g, b, a float32)
	Clear(buffers BufferAttachments)
	Viewport(x, y, width, height int)

	// DrawArraysInstanced replicates one vertex-count-sized primitive
	// (the unit quad every pass draws) across instanceCount
	// per-instance attribute sets, the instanced-draw contract nodes,
	// edges and labels all share.
	DrawArraysInstanced(mode DrawMode, first, count, instanceCount int)
	// DrawElementsInstanced is the indexed counterpart, used when a
	// pass's unit primitive is built from an index buffer instead of
	// a bare vertex run (e.g. a quad as two triangles sharing
	// vertices).
	DrawElementsInstanced(mode DrawMode, count int, instanceCount int)

	SetBlend(enable bool)
	BlendFunc(sfactor, dfactor BlendFactor)

	Release()
}

// ShaderSources mirrors gio's gpu.ShaderSources: per-backend shader
// text/bytecode plus the uniform/attribute/texture binding tables a
// Program needs to wire them up.
type ShaderSources struct {
	GLSLES300 string
	WGSL      string
	Uniforms  []UniformLocation
	Inputs    []InputLocation
	Textures  []TextureBinding
}

type TextureBinding struct {
	Name    string
	Binding int
}

type UniformLocation struct {
	Name   string
	Type   DataType
	Size   int
	Offset int
}

type InputLocation struct {
	Name     string
	Location int
	Type     DataType
	Size     int
}

// InputDesc describes one vertex/instance attribute's layout inside a
// Buffer. InstanceDivisor is the addition over gio's InputDesc: 0
// means "advance per vertex", 1 means "advance per instance" - the
// flag every one of our three passes sets for its per-instance data
// (gio never sets it because it never instances).
type InputDesc struct {
	Type   DataType
	Size   int
	Offset int

	InstanceDivisor int
}

type InputLayout interface {
	Bind()
	Release()
}

type BlendFactor uint8
type DrawMode uint8
type BufferAttachments uint
type TextureFilter uint8
type TextureFormat uint8
type BufferType uint8
type DataType uint8
type Features uint

type Caps struct {
	Tier           Tier
	Features       Features
	MaxTextureSize int
}

// Tier is the capability tier selected at init. It is a plain int, not
// a dynamically-dispatched type, so that render.Renderer can store it
// once and never branch on it again outside construction - gio's own
// "resolved once, monomorphic after" discipline applied to a 4-way
// instead of a 2-way (GPU/CPU) fork.
type Tier int

const (
	// TierModernCompute is tier 1: modern GPU draw API + GPU compute.
	TierModernCompute Tier = 1
	// TierLegacySIMD is tier 2: legacy GPU draw API + CPU/SIMD compute.
	TierLegacySIMD Tier = 2
	// TierLegacyScalar is tier 3: legacy GPU draw API + CPU scalar compute.
	TierLegacyScalar Tier = 3
	// TierSoftware is tier 4: software 2D surface + CPU scalar compute.
	TierSoftware Tier = 4
)

func (t Tier) String() string {
	switch t {
	case TierModernCompute:
		return "modern-compute"
	case TierLegacySIMD:
		return "legacy-simd"
	case TierLegacyScalar:
		return "legacy-scalar"
	case TierSoftware:
		return "software"
	default:
		return "unknown"
	}
}

type Program interface {
	Bind()
	Release()
	SetVertexUniforms(buf Buffer)
	SetFragmentUniforms(buf Buffer)
}

type Buffer interface {
	BindVertex(stride, offset int)
	BindIndex()
	Release()
	Upload(data []byte)
}

type Texture interface {
	Upload(data []byte, width, height int)
	Release()
	Bind(unit int)
}

type Timer interface {
	Begin()
	End()
	Duration() (time.Duration, bool)
	Release()
}

const (
	BufferAttachmentColor BufferAttachments = 1 << iota
	BufferAttachmentDepth
)

const (
	DataTypeFloat DataType = iota
	DataTypeShort
)

const (
	BufferTypeIndices BufferType = iota
	BufferTypeVertices
	BufferTypeUniforms
)

const (
	TextureFormatSRGBA TextureFormat = iota
	TextureFormatR8
)

const (
	FilterNearest TextureFilter = iota
	FilterLinear
)

const (
	FeatureCompute Features = 1 << iota
	FeatureSIMD
)

const (
	DrawModeTriangleStrip DrawMode = iota
	DrawModeTriangles
)

const (
	BlendFactorOne BlendFactor = iota
	BlendFactorOneMinusSrcAlpha
	BlendFactorZero
)

func (f Features) Has(feats Features) bool {
	return f&feats == feats
}
