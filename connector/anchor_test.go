package connector

import (
	"testing"

	"wirecanvas/pkg/geometry"
)

func TestSideAnchorStaysOnSide(t *testing.T) {
	n := Node{ID: "a", Bounds: geometry.NewRect(10, 20, 100, 60)}

	for i := 0; i <= 10; i++ {
		tv := float64(i) / 10

		for _, side := range []geometry.Side{geometry.SideLeft, geometry.SideRight} {
			p := SideAnchor(n, side, tv)
			wantX := n.Bounds.X
			if side == geometry.SideRight {
				wantX = n.Bounds.Right()
			}
			if p.X != wantX {
				t.Errorf("%s t=%.1f: expected x %.1f, got %.1f", side, tv, wantX, p.X)
			}
			if p.Y < n.Bounds.Y || p.Y > n.Bounds.Bottom() {
				t.Errorf("%s t=%.1f: y %.1f outside node", side, tv, p.Y)
			}
		}

		for _, side := range []geometry.Side{geometry.SideTop, geometry.SideBottom} {
			p := SideAnchor(n, side, tv)
			wantY := n.Bounds.Y
			if side == geometry.SideBottom {
				wantY = n.Bounds.Bottom()
			}
			if p.Y != wantY {
				t.Errorf("%s t=%.1f: expected y %.1f, got %.1f", side, tv, wantY, p.Y)
			}
			if p.X < n.Bounds.X || p.X > n.Bounds.Right() {
				t.Errorf("%s t=%.1f: x %.1f outside node", side, tv, p.X)
			}
		}
	}
}

func TestSideAnchorClampsAndCenters(t *testing.T) {
	n := Node{ID: "a", Bounds: geometry.NewRect(0, 0, 100, 100)}

	if p := SideAnchor(n, geometry.SideLeft, 1.5); p.Y != 100 {
		t.Errorf("expected t clamped to 1, got y %.1f", p.Y)
	}
	if p := SideAnchor(n, geometry.SideCenter, 0.1); p != geometry.Pt(50, 50) {
		t.Errorf("expected center 50,50, got %+v", p)
	}
}

func TestSideAnchorOverride(t *testing.T) {
	helper := pointerNode(geometry.Pt(300, 400))
	for _, side := range geometry.Sides {
		if p := SideAnchor(helper, side, 0.9); p != geometry.Pt(300, 400) {
			t.Errorf("%s: expected override 300,400, got %+v", side, p)
		}
	}
}

func TestEndpointAnchorOffset(t *testing.T) {
	n := Node{ID: "a", Bounds: geometry.NewRect(0, 0, 100, 200)}
	p := EndpointAnchor(n, Endpoint{NodeID: "a", Side: geometry.SideRight, Offset: 20}, 0.5)
	if p != geometry.Pt(100, 120) {
		t.Errorf("expected 100,120, got %+v", p)
	}
}

func TestAnchorTInverse(t *testing.T) {
	n := Node{ID: "a", Bounds: geometry.NewRect(0, 100, 50, 200)}
	if got := AnchorT(n, geometry.SideLeft, geometry.Pt(0, 150)); got != 0.25 {
		t.Errorf("expected 0.25, got %f", got)
	}
	if got := AnchorT(n, geometry.SideLeft, geometry.Pt(0, 900)); got != 1 {
		t.Errorf("expected clamp to 1, got %f", got)
	}
	if got := AnchorT(n, geometry.SideTop, geometry.Pt(10, 0)); got != 0.2 {
		t.Errorf("expected 0.2, got %f", got)
	}
}

func TestNearestSide(t *testing.T) {
	n := Node{ID: "a", Bounds: geometry.NewRect(0, 0, 100, 100)}
	tests := map[geometry.Point]geometry.Side{
		geometry.Pt(2, 50):  geometry.SideLeft,
		geometry.Pt(97, 40): geometry.SideRight,
		geometry.Pt(50, 3):  geometry.SideTop,
		geometry.Pt(40, 99): geometry.SideBottom,
	}
	for p, want := range tests {
		if got := NearestSide(n, p); got != want {
			t.Errorf("point %+v: expected %s, got %s", p, want, got)
		}
	}
}
