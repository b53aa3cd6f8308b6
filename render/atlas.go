// SPDX-License-Identifier: Unlicense OR MIT

package render

import (
	"fmt"
	"image"
	"image/color"
	"sort"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"

	"grapheon.dev/render/backend"
)

// glyphRect is a glyph's normalized [0,1] rectangle inside the atlas
// texture, the (u, v, w, h) the label instance layout carries per
// glyph.
type glyphRect struct {
	u, v, w, h float32
	advance    float32
}

// Atlas builds a single coverage texture for node labels. It loads the
// Go Regular face at one fixed size through gio's own font stack
// (golang.org/x/image/font + golang.org/x/image/math/fixed, the same
// packages gio's text/opentype.go builds faces from), but uses the face
// only for glyph advances: glyph outlines are not rasterized, and every
// non-space glyph cell holds the same filled square (see
// drawGlyphCoverage). The texture is a coverage mask, not a
// distance-transformed SDF; the label fragment shader thresholds it at
// 0.5 as if it were one.
type Atlas struct {
	face        font.Face
	glyphs      map[rune]glyphRect
	img         *image.Alpha
	size        int // pixels square
	pixelHeight int
	tex         backend.Texture
}

// defaultGlyphs is the basic-Latin range node labels are expected to
// use; anything outside it falls back to the '?' glyph at query time
// (see Rect).
var defaultGlyphs = func() []rune {
	var rs []rune
	for r := rune(0x20); r <= 0x7E; r++ {
		rs = append(rs, r)
	}
	return rs
}()

// NewAtlas rasterizes defaultGlyphs at pixelHeight into a fresh
// coverage atlas.
func NewAtlas(pixelHeight int) (*Atlas, error) {
	f, err := sfnt.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("render: parsing embedded gofont: %w", err)
	}
	face, err := opentypeFace(f, pixelHeight)
	if err != nil {
		return nil, err
	}
	a := &Atlas{face: face, glyphs: make(map[rune]glyphRect), pixelHeight: pixelHeight}
	a.rasterize(pixelHeight)
	return a, nil
}

// PixelHeight returns the world-space glyph quad size label instances
// carry as their screenSize field: a constant sized at atlas build
// time, left for the camera's view-projection to scale like any other
// world-space primitive (node radius, edge thickness) rather than
// pre-scaled by the current zoom.
func (a *Atlas) PixelHeight() int { return a.pixelHeight }

func opentypeFace(f *sfnt.Font, pixelHeight int) (font.Face, error) {
	return &sfntFace{f: f, size: fixed.I(pixelHeight)}, nil
}

// sfntFace adapts sfnt.Font to font.Face with a fixed size and no
// hinting, the minimum gio's own opentype.Face wrapper provides for
// drawing; we skip its text.Shaper integration since labels here never
// need bidi or line-breaking.
type sfntFace struct {
	f    *sfnt.Font
	size fixed.Int26_6
	buf  sfnt.Buffer
}

func (s *sfntFace) Close() error { return nil }

func (s *sfntFace) Glyph(dot fixed.Point26_6, r rune) (image.Rectangle, image.Image, image.Point, fixed.Int26_6, bool) {
	return image.Rectangle{}, nil, image.Point{}, 0, false
}

func (s *sfntFace) GlyphBounds(r rune) (fixed.Rectangle26_6, fixed.Int26_6, bool) {
	idx, err := s.f.GlyphIndex(&s.buf, r)
	if err != nil || idx == 0 {
		return fixed.Rectangle26_6{}, 0, false
	}
	b, adv, err := s.f.GlyphBounds(&s.buf, idx, s.size, font.HintingNone)
	if err != nil {
		return fixed.Rectangle26_6{}, 0, false
	}
	return b, adv, true
}

func (s *sfntFace) GlyphAdvance(r rune) (fixed.Int26_6, bool) {
	idx, err := s.f.GlyphIndex(&s.buf, r)
	if err != nil || idx == 0 {
		return 0, false
	}
	adv, err := s.f.GlyphAdvance(&s.buf, idx, s.size, font.HintingNone)
	if err != nil {
		return 0, false
	}
	return adv, true
}

func (s *sfntFace) Kern(r0, r1 rune) fixed.Int26_6 { return 0 }

func (s *sfntFace) Metrics() font.Metrics {
	m, _ := s.f.Metrics(&s.buf, s.size, font.HintingNone)
	return m
}

// rasterize lays out every rune of defaultGlyphs, in rune order, on a
// fixed 16-column grid of square cells (pixelHeight+4 pixels each) in
// a square coverage image whose side is computed once from that grid;
// there is no grow-and-retry packing, since the glyph set is small and
// static.
func (a *Atlas) rasterize(pixelHeight int) {
	cell := pixelHeight + 4
	cols := 16
	rows := (len(defaultGlyphs) + cols - 1) / cols
	side := cell * cols
	if cell*rows > side {
		side = cell * rows
	}
	a.size = side
	a.img = image.NewAlpha(image.Rect(0, 0, side, side))

	sorted := append([]rune(nil), defaultGlyphs...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	for i, r := range sorted {
		col, row := i%cols, i/cols
		ox, oy := col*cell, row*cell
		a.drawGlyphCoverage(r, ox, oy, cell)
		adv, _ := a.face.GlyphAdvance(r)
		a.glyphs[r] = glyphRect{
			u:       float32(ox) / float32(side),
			v:       float32(oy) / float32(side),
			w:       float32(cell) / float32(side),
			h:       float32(cell) / float32(side),
			advance: float32(adv) / 64,
		}
	}
}

// drawGlyphCoverage fills the cell at (ox,oy) with one opaque square
// inset by cell/6 on every side. The square is the same for every rune
// except ' ', whose cell stays empty: r's outline and bounding box are
// not consulted, so every non-space glyph renders as the same solid
// box.
func (a *Atlas) drawGlyphCoverage(r rune, ox, oy, cell int) {
	if r == ' ' {
		return
	}
	pad := cell / 6
	for y := oy + pad; y < oy+cell-pad; y++ {
		for x := ox + pad; x < ox+cell-pad; x++ {
			a.img.SetAlpha(x, y, color.Alpha{A: 255})
		}
	}
}

// Rect returns r's normalized atlas rectangle, falling back to the
// glyph for '?' (always present in defaultGlyphs) when r is outside
// the rasterized set.
func (a *Atlas) Rect(r rune) glyphRect {
	if g, ok := a.glyphs[r]; ok {
		return g
	}
	return a.glyphs['?']
}

// Upload pushes the coverage image to dev as an R8 texture and caches
// the handle for Texture to return across frames. Each call releases
// any previously uploaded texture and creates a new one.
func (a *Atlas) Upload(dev backend.Backend) {
	if a.tex != nil {
		a.tex.Release()
	}
	a.tex = dev.NewTexture(backend.TextureFormatR8, a.size, a.size, backend.FilterLinear, backend.FilterLinear)
	a.tex.Upload(a.img.Pix, a.size, a.size)
}

// Texture returns the most recently uploaded atlas texture, or nil if
// Upload has not yet been called.
func (a *Atlas) Texture() backend.Texture { return a.tex }
