package rastersurface

import (
	"bytes"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"wirecanvas/connector"
	"wirecanvas/pkg/geometry"
)

func renderStraight(t *testing.T, opts Options) *Surface {
	t.Helper()
	var surfaces []*Surface
	m := connector.NewManager(Factory(opts, func(s *Surface) { surfaces = append(surfaces, s) }), connector.DefaultOptions())
	m.AddNode(connector.Node{ID: "a", Bounds: geometry.NewRect(0, 0, 100, 60)})
	m.AddNode(connector.Node{ID: "b", Bounds: geometry.NewRect(300, 0, 100, 60)})
	err := m.AddEdge(connector.Edge{
		ID:     "e1",
		Source: connector.Endpoint{NodeID: "a", Side: geometry.SideRight},
		Target: connector.Endpoint{NodeID: "b", Side: geometry.SideLeft},
		Style: connector.EdgeStyle{
			Path:        connector.PathStraight,
			StrokeWidth: 2,
			MarkerEnd:   connector.Marker{Type: connector.MarkerArrowClosed, Size: 10},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.Render(); err != nil {
		t.Fatalf("render: %v", err)
	}
	if len(surfaces) != 1 {
		t.Fatalf("expected one surface, got %d", len(surfaces))
	}
	return surfaces[0]
}

func isWhite(c color.Color) bool {
	r, g, b, _ := c.RGBA()
	return r == 0xffff && g == 0xffff && b == 0xffff
}

func TestSurfaceRasterizesEdge(t *testing.T) {
	s := renderStraight(t, Options{})
	img := s.Image()
	if img == nil {
		t.Fatal("expected an image after flush")
	}
	if got := img.Bounds().Size(); got.X != 800 || got.Y != 460 {
		t.Errorf("expected 800x460, got %v", got)
	}
	// Canvas (200, 30) sits on the stroke; the image origin is at (-200, -200).
	if isWhite(img.At(400, 230)) {
		t.Error("expected the edge to be drawn")
	}
	if !isWhite(img.At(5, 5)) {
		t.Error("expected a white background")
	}
}

func TestSurfaceScale(t *testing.T) {
	s := renderStraight(t, Options{Scale: 2, ShowNodes: true, Labels: map[string]string{"a": "A"}})
	if got := s.Image().Bounds().Size(); got.X != 1600 || got.Y != 920 {
		t.Errorf("expected 1600x920, got %v", got)
	}
}

func TestSurfacePNGOutput(t *testing.T) {
	s := renderStraight(t, Options{})

	path := filepath.Join(t.TempDir(), "out.png")
	if err := s.SavePNG(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	if info, err := os.Stat(path); err != nil || info.Size() == 0 {
		t.Errorf("expected a non-empty file, got %v", err)
	}

	var buf bytes.Buffer
	if err := s.EncodePNG(&buf); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, err := png.Decode(&buf); err != nil {
		t.Errorf("expected a valid png: %v", err)
	}
}

func TestSurfaceNothingToExport(t *testing.T) {
	s, err := New(geometry.NewRect(0, 0, 10, 10), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SavePNG(filepath.Join(t.TempDir(), "x.png")); err == nil {
		t.Error("expected an error before the first flush")
	}
}
