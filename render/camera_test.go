// SPDX-License-Identifier: Unlicense OR MIT

package render

import (
	"testing"

	"grapheon.dev/internal/vec"
)

func TestCameraUpdateMovesTowardTarget(t *testing.T) {
	c := NewCamera()
	c.SetTarget(100, 0, 2)
	for i := 0; i < 30; i++ {
		c.Update(1.0 / 60)
	}
	if c.X < 50 || c.X > 100 {
		t.Fatalf("after 0.5s easing, X = %v, want roughly between 50 and 100", c.X)
	}
	if c.Zoom <= 1 || c.Zoom > 2 {
		t.Fatalf("Zoom = %v, want in (1, 2]", c.Zoom)
	}
}

func TestCameraUpdateDistanceNeverIncreases(t *testing.T) {
	c := NewCamera()
	c.JumpTo(0, 0, 1)
	c.SetTarget(50, -30, 3)
	dist := func() float32 {
		return vec.Point{X: c.TargetX - c.X, Y: c.TargetY - c.Y}.Len()
	}
	prev := dist()
	for i := 0; i < 120; i++ {
		c.Update(0.25) // deliberately large dt to probe the overshoot clamp
		cur := dist()
		if cur > prev+1e-4 {
			t.Fatalf("distance to target increased: %v -> %v", prev, cur)
		}
		prev = cur
	}
}

func TestCameraUpdateNegativeDtIsTreatedAsZero(t *testing.T) {
	c := NewCamera()
	c.JumpTo(1, 2, 1)
	c.SetTarget(100, 100, 5)
	c.Update(-1)
	if c.X != 1 || c.Y != 2 || c.Zoom != 1 {
		t.Fatalf("negative dt moved the camera: %+v", c)
	}
}

func TestWorldFromScreenInvertsViewProjection(t *testing.T) {
	c := NewCamera()
	c.JumpTo(10, -5, 2)
	const vw, vh = 800, 600
	world := vec.Point{X: 42, Y: -17}
	clip := c.ViewProjection(vw, vh).Apply(world)
	screenX := (clip.X+1)/2*vw
	screenY := (clip.Y+1)/2*vh
	got := c.WorldFromScreen(screenX, screenY, vw, vh)
	if abs(got.X-world.X) > 1e-2 || abs(got.Y-world.Y) > 1e-2 {
		t.Fatalf("WorldFromScreen round-trip = %+v, want %+v", got, world)
	}
}

func abs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

func TestFitViewFramesBounds(t *testing.T) {
	bounds := vec.Rectangle{Min: vec.Point{X: -50, Y: -20}, Max: vec.Point{X: 50, Y: 20}}
	x, y, zoom := FitView(bounds, 800, 400, 0.1)
	if x != 0 || y != 0 {
		t.Fatalf("FitView center = (%v, %v), want (0, 0)", x, y)
	}
	if zoom <= 0 {
		t.Fatalf("FitView zoom = %v, want > 0", zoom)
	}
}

func TestFitViewDegenerateBounds(t *testing.T) {
	x, y, zoom := FitView(vec.Rectangle{}, 800, 400, 0.1)
	if x != 0 || y != 0 || zoom != 1 {
		t.Fatalf("FitView on a degenerate box = (%v, %v, %v), want (0, 0, 1)", x, y, zoom)
	}
}
