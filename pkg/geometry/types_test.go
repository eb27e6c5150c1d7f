package geometry

import (
	"math"
	"testing"
)

func TestRectUnionAndExpand(t *testing.T) {
	a := NewRect(0, 0, 100, 50)
	b := NewRect(200, 100, 10, 10)

	u := a.Union(b)
	if u != NewRect(0, 0, 210, 110) {
		t.Errorf("expected union 0,0,210,110, got %+v", u)
	}

	e := a.Expand(10)
	if e != NewRect(-10, -10, 120, 70) {
		t.Errorf("expected expanded rect -10,-10,120,70, got %+v", e)
	}
	if !e.ContainsRect(a) {
		t.Error("expanded rect should contain the original")
	}
}

func TestRectKeyIgnoresSubPixelJitter(t *testing.T) {
	a := NewRect(10.2, 20.1, 100.4, 50)
	b := NewRect(10.4, 19.9, 100.3, 50.2)
	if a.Key() != b.Key() {
		t.Errorf("expected equal keys, got %q and %q", a.Key(), b.Key())
	}
	if a.Key() == NewRect(30, 20, 100, 50).Key() {
		t.Error("different bounds should not share a key")
	}
}

func TestSegmentIntersectsRect(t *testing.T) {
	r := NewRect(100, 100, 50, 50)

	tests := []struct {
		name string
		a, b Point
		want bool
	}{
		{"crosses horizontally", Pt(0, 125), Pt(300, 125), true},
		{"passes above", Pt(0, 50), Pt(300, 50), false},
		{"crosses vertically", Pt(120, 0), Pt(120, 300), true},
		{"diagonal miss", Pt(0, 0), Pt(90, 300), false},
		{"ends inside", Pt(0, 0), Pt(120, 120), true},
		{"stops short", Pt(0, 125), Pt(90, 125), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SegmentIntersectsRect(tt.a, tt.b, r); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestDistanceToSegment(t *testing.T) {
	d := DistanceToSegment(Pt(5, 5), Pt(0, 0), Pt(10, 0))
	if math.Abs(d-5) > 1e-9 {
		t.Errorf("expected 5, got %f", d)
	}
	d = DistanceToSegment(Pt(-3, 4), Pt(0, 0), Pt(10, 0))
	if math.Abs(d-5) > 1e-9 {
		t.Errorf("expected 5 past the segment start, got %f", d)
	}
}

func TestSideNormals(t *testing.T) {
	for _, s := range Sides {
		n := s.Normal()
		o := s.Opposite().Normal()
		if n.Add(o) != (Point{}) {
			t.Errorf("side %s: normal %+v is not opposite of %+v", s, n, o)
		}
		if s.Horizontal() == s.Vertical() {
			t.Errorf("side %s must be exactly one of horizontal/vertical", s)
		}
	}
	if _, err := ParseSide("diagonal"); err == nil {
		t.Error("expected error for unknown side")
	}
}
