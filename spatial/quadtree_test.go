// SPDX-License-Identifier: Unlicense OR MIT

package spatial

import (
	"math/rand"
	"testing"

	"grapheon.dev/internal/vec"
)

type fixedPositions []vec.Point

func (f fixedPositions) Len() int          { return len(f) }
func (f fixedPositions) Pos(i int) vec.Point { return f[i] }

func TestNearestWithinExactMatch(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	pts := make(fixedPositions, 100)
	for i := range pts {
		pts[i] = vec.Point{X: float32(r.Intn(1000)), Y: float32(r.Intn(1000))}
	}
	idx := NewIndex()
	idx.Refresh(pts)

	for i, p := range pts {
		got, ok := idx.NearestWithin(pts, p, 0)
		if !ok {
			t.Fatalf("node %d: exact-position query found nothing", i)
		}
		if pts[got] != p {
			t.Fatalf("node %d: got position %+v, want %+v", i, pts[got], p)
		}
	}
}

func TestNearestWithinTieBreakLowestIndex(t *testing.T) {
	pts := fixedPositions{{X: 0, Y: 0}, {X: 0, Y: 0}, {X: 5, Y: 5}}
	idx := NewIndex()
	idx.Refresh(pts)
	got, ok := idx.NearestWithin(pts, vec.Point{X: 0, Y: 0}, 1)
	if !ok || got != 0 {
		t.Fatalf("got %d, %v; want index 0", got, ok)
	}
}

func TestNearestWithinNoneInRadius(t *testing.T) {
	pts := fixedPositions{{X: 100, Y: 100}}
	idx := NewIndex()
	idx.Refresh(pts)
	_, ok := idx.NearestWithin(pts, vec.Point{X: 0, Y: 0}, 1)
	if ok {
		t.Fatal("expected no match")
	}
}

func TestStaleTriggersOnPositionDrift(t *testing.T) {
	pts := fixedPositions{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 20, Y: 0}, {X: 30, Y: 0}, {X: 40, Y: 0},
		{X: 50, Y: 0}, {X: 60, Y: 0}, {X: 70, Y: 0}, {X: 80, Y: 0}, {X: 90, Y: 0}}
	idx := NewIndex()
	idx.Refresh(pts)
	if idx.Stale(pts, 1) {
		t.Fatal("freshly built index reported stale with unchanged positions")
	}
	untouched := append(fixedPositions{}, pts...)
	if idx.Stale(untouched, 1) {
		t.Fatal("expected 0% moved to not trigger staleness")
	}
	moved := append(fixedPositions{}, pts...)
	moved[0] = vec.Point{X: 1000, Y: 1000}
	if !idx.Stale(moved, 1) {
		t.Fatal("expected 10% moved (the rebuild threshold) to trigger staleness")
	}
}

func TestEmptyIndexAlwaysMisses(t *testing.T) {
	idx := NewIndex()
	idx.Refresh(fixedPositions{})
	_, ok := idx.NearestWithin(fixedPositions{}, vec.Point{}, 100)
	if ok {
		t.Fatal("expected no match on empty index")
	}
}
