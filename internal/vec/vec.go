// SPDX-License-Identifier: Unlicense OR MIT

// Package vec is a float32 implementation of 2D points and rectangles,
// generalized from gioui.org/f32 for use in the
// layout, spatial and render packages.
package vec

import "math"

// A Point is a two dimensional point.
type Point struct {
	X, Y float32
}

// A Rectangle contains the points (X, Y) where Min.X <= X < Max.X,
// Min.Y <= Y < Max.Y.
type Rectangle struct {
	Min, Max Point
}

// Add return the point p+p2.
func (p Point) Add(p2 Point) Point {
	return Point{X: p.X + p2.X, Y: p.Y + p2.Y}
}

// Sub returns the vector p-p2.
func (p Point) Sub(p2 Point) Point {
	return Point{X: p.X - p2.X, Y: p.Y - p2.Y}
}

// Mul returns p scaled by s.
func (p Point) Mul(s float32) Point {
	return Point{X: p.X * s, Y: p.Y * s}
}

// Len returns the Euclidean length of p as a vector from the origin.
func (p Point) Len() float32 {
	return float32(math.Sqrt(float64(p.X*p.X + p.Y*p.Y)))
}

// LenSquared avoids the square root when only comparisons are needed.
func (p Point) LenSquared() float32 {
	return p.X*p.X + p.Y*p.Y
}

// Normalized returns p scaled to unit length. If p is the zero vector,
// fallback is returned instead.
func (p Point) Normalized(fallback Point) Point {
	l := p.Len()
	if l == 0 {
		return fallback
	}
	return Point{X: p.X / l, Y: p.Y / l}
}

// Dot returns the dot product of p and p2.
func (p Point) Dot(p2 Point) float32 {
	return p.X*p2.X + p.Y*p2.Y
}

// IsFinite reports whether both components of p are finite numbers.
func (p Point) IsFinite() bool {
	return !math.IsNaN(float64(p.X)) && !math.IsInf(float64(p.X), 0) &&
		!math.IsNaN(float64(p.Y)) && !math.IsInf(float64(p.Y), 0)
}

// Size returns r's width and height.
func (r Rectangle) Size() Point {
	return Point{X: r.Dx(), Y: r.Dy()}
}

// Dx returns r's width.
func (r Rectangle) Dx() float32 {
	return r.Max.X - r.Min.X
}

// Dy returns r's Height.
func (r Rectangle) Dy() float32 {
	return r.Max.Y - r.Min.Y
}

// Center returns the midpoint of r.
func (r Rectangle) Center() Point {
	return Point{X: (r.Min.X + r.Max.X) / 2, Y: (r.Min.Y + r.Max.Y) / 2}
}

// Side returns the larger of r's width and height, for use as a
// quadtree cell's "side" in the Barnes-Hut opening-angle test.
func (r Rectangle) Side() float32 {
	dx, dy := r.Dx(), r.Dy()
	if dx > dy {
		return dx
	}
	return dy
}

// Contains reports whether p lies within r (Min inclusive, Max exclusive).
func (r Rectangle) Contains(p Point) bool {
	return r.Min.X <= p.X && p.X < r.Max.X && r.Min.Y <= p.Y && p.Y < r.Max.Y
}

// Intersect returns the intersection of r and s.
func (r Rectangle) Intersect(s Rectangle) Rectangle {
	if r.Min.X < s.Min.X {
		r.Min.X = s.Min.X
	}
	if r.Min.Y < s.Min.Y {
		r.Min.Y = s.Min.Y
	}
	if r.Max.X > s.Max.X {
		r.Max.X = s.Max.X
	}
	if r.Max.Y > s.Max.Y {
		r.Max.Y = s.Max.Y
	}
	return r
}

// Union returns the union of r and s.
func (r Rectangle) Union(s Rectangle) Rectangle {
	if r.Min.X > s.Min.X {
		r.Min.X = s.Min.X
	}
	if r.Min.Y > s.Min.Y {
		r.Min.Y = s.Min.Y
	}
	if r.Max.X < s.Max.X {
		r.Max.X = s.Max.X
	}
	if r.Max.Y < s.Max.Y {
		r.Max.Y = s.Max.Y
	}
	return r
}

// Expand grows r by d on every side.
func (r Rectangle) Expand(d float32) Rectangle {
	return Rectangle{
		Min: Point{X: r.Min.X - d, Y: r.Min.Y - d},
		Max: Point{X: r.Max.X + d, Y: r.Max.Y + d},
	}
}

// Empty reports whether r represents the empty area.
func (r Rectangle) Empty() bool {
	return r.Min.X >= r.Max.X || r.Min.Y >= r.Max.Y
}

// Quadrant splits r into its four equally sized quadrants, numbered
// 0 (top-left) through 3 (bottom-right) in row-major order.
func (r Rectangle) Quadrant(i int) Rectangle {
	c := r.Center()
	switch i {
	case 0:
		return Rectangle{Min: r.Min, Max: c}
	case 1:
		return Rectangle{Min: Point{X: c.X, Y: r.Min.Y}, Max: Point{X: r.Max.X, Y: c.Y}}
	case 2:
		return Rectangle{Min: Point{X: r.Min.X, Y: c.Y}, Max: Point{X: c.X, Y: r.Max.Y}}
	default:
		return Rectangle{Min: c, Max: r.Max}
	}
}

// QuadrantOf reports which quadrant of r contains p.
func QuadrantOf(r Rectangle, p Point) int {
	c := r.Center()
	right := p.X >= c.X
	bottom := p.Y >= c.Y
	switch {
	case !right && !bottom:
		return 0
	case right && !bottom:
		return 1
	case !right && bottom:
		return 2
	default:
		return 3
	}
}
