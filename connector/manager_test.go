package connector

import (
	"bytes"
	"errors"
	"log"
	"reflect"
	"strings"
	"testing"

	"wirecanvas/pkg/geometry"
)

type countingFactory struct {
	created []*DisplayList
}

func (f *countingFactory) factory() SurfaceFactory {
	return DisplayListFactory(func(dl *DisplayList) {
		f.created = append(f.created, dl)
	})
}

func (f *countingFactory) last() *DisplayList {
	if len(f.created) == 0 {
		return nil
	}
	return f.created[len(f.created)-1]
}

func testOptions(buf *bytes.Buffer) Options {
	opts := DefaultOptions()
	opts.Logger = log.New(buf, "", 0)
	return opts
}

func newTestManager(t *testing.T) (*Manager, *countingFactory, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	f := &countingFactory{}
	m := NewManager(f.factory(), testOptions(&buf))
	m.AddNode(node("a", 0, 0, 100, 100))
	m.AddNode(node("b", 400, 0, 100, 100))
	return m, f, &buf
}

func TestManagerRenderDrawsInOrder(t *testing.T) {
	m, f, _ := newTestManager(t)
	m.AddNode(node("c", 400, 200, 100, 100))
	e1 := edge("e1", "a", geometry.SideRight, "b", geometry.SideLeft)
	e1.Style.MarkerEnd = Marker{Type: MarkerArrow, Size: 10}
	e2 := edge("e2", "a", geometry.SideRight, "c", geometry.SideLeft)
	e2.Style.MarkerEnd = Marker{Type: MarkerArrow, Size: 10}
	e2.Style.MarkerStart = Marker{Type: MarkerCircle, Size: 6}
	for _, e := range []Edge{e1, e2} {
		if err := m.AddEdge(e); err != nil {
			t.Fatalf("add edge: %v", err)
		}
	}

	if _, err := m.Render(); err != nil {
		t.Fatalf("render: %v", err)
	}
	dl := f.last()
	if dl == nil {
		t.Fatal("expected a surface")
	}
	if len(dl.Markers) != 2 {
		t.Errorf("expected 2 distinct marker definitions, got %d", len(dl.Markers))
	}
	if !reflect.DeepEqual(dl.NodeOrder, []string{"a", "b", "c"}) {
		t.Errorf("expected nodes in insertion order, got %v", dl.NodeOrder)
	}
	if len(dl.Edges) != 2 || dl.Edges[0].ID != "e1" || dl.Edges[1].ID != "e2" {
		t.Errorf("expected edges in declaration order, got %+v", dl.Edges)
	}
	if dl.Flushes != 1 {
		t.Errorf("expected one flush, got %d", dl.Flushes)
	}
}

func TestManagerRenderIsIdempotent(t *testing.T) {
	m, f, _ := newTestManager(t)
	if err := m.AddEdge(edge("e1", "a", geometry.SideRight, "b", geometry.SideLeft)); err != nil {
		t.Fatal(err)
	}

	first, err := m.Render()
	if err != nil {
		t.Fatal(err)
	}
	second, err := m.Render()
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first.Edges, second.Edges) || first.Bounds != second.Bounds {
		t.Error("expected identical frames for unchanged input")
	}
	if !first.Recreated || second.Recreated {
		t.Errorf("expected only the first render to create a surface, got %v/%v", first.Recreated, second.Recreated)
	}
	if len(f.created) != 1 {
		t.Errorf("expected one surface, got %d", len(f.created))
	}
	if got := len(f.last().Edges); got != 1 {
		t.Errorf("expected the surface to be cleared between renders, got %d edges", got)
	}
}

func TestManagerRecreatesSurfaceOnlyWhenBoundsChange(t *testing.T) {
	m, f, _ := newTestManager(t)
	if err := m.AddEdge(edge("e1", "a", geometry.SideRight, "b", geometry.SideLeft)); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Render(); err != nil {
		t.Fatal(err)
	}

	// Moving a node inside the existing bounds keeps the surface.
	m.UpdateNode(node("b", 400, 0.2, 100, 100))
	frame, _ := m.Render()
	if frame.Recreated || len(f.created) != 1 {
		t.Errorf("sub-pixel move should not recreate the surface, got %d surfaces", len(f.created))
	}

	m.UpdateNode(node("b", 900, 0, 100, 100))
	frame, _ = m.Render()
	if !frame.Recreated || len(f.created) != 2 {
		t.Errorf("expected a new surface after bounds grew, got %d surfaces", len(f.created))
	}
	if !f.created[0].Destroyed {
		t.Error("expected the old surface to be destroyed")
	}
	want := geometry.NewRect(-200, -200, 1400, 500)
	if frame.Bounds != want {
		t.Errorf("expected bounds %+v, got %+v", want, frame.Bounds)
	}
}

func TestManagerTearsDownWithoutEdges(t *testing.T) {
	m, f, _ := newTestManager(t)
	if err := m.AddEdge(edge("e1", "a", geometry.SideRight, "b", geometry.SideLeft)); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Render(); err != nil {
		t.Fatal(err)
	}

	m.RemoveEdge("e1")
	if _, err := m.Render(); err != nil {
		t.Fatalf("render without edges: %v", err)
	}
	if m.Surface() != nil {
		t.Error("expected surface to be torn down")
	}
	if !f.created[0].Destroyed {
		t.Error("expected surface destroy to be called")
	}
	// A second render with nothing to draw must not fail either.
	if _, err := m.Render(); err != nil {
		t.Fatalf("second empty render: %v", err)
	}
}

func TestManagerPreviewKeepsSurfaceAlive(t *testing.T) {
	m, f, _ := newTestManager(t)
	m.SetPreview(&Preview{
		Fixed:     Endpoint{NodeID: "a", Side: geometry.SideRight},
		FixedT:    0.5,
		FixedRole: EndSource,
		Pointer:   geometry.Pt(300, 400),
	})

	frame, err := m.Render()
	if err != nil {
		t.Fatal(err)
	}
	if len(f.created) != 1 || len(frame.Edges) != 1 || !frame.Edges[0].Preview {
		t.Fatalf("expected a preview edge on a fresh surface, got %+v", frame.Edges)
	}
	pe := frame.Edges[0]
	if pe.Path.Start != geometry.Pt(100, 50) || pe.Path.End != geometry.Pt(300, 400) {
		t.Errorf("expected preview from 100,50 to 300,400, got %+v -> %+v", pe.Path.Start, pe.Path.End)
	}
	if !frame.Bounds.Contains(geometry.Pt(300, 400)) {
		t.Error("bounds should include the pointer")
	}
}

func TestManagerRemoveNodeCascades(t *testing.T) {
	m, _, _ := newTestManager(t)
	m.AddNode(node("c", 400, 200, 100, 100))
	_ = m.AddEdge(edge("ab", "a", geometry.SideRight, "b", geometry.SideLeft))
	_ = m.AddEdge(edge("bc", "b", geometry.SideBottom, "c", geometry.SideTop))
	_ = m.AddEdge(edge("ac", "a", geometry.SideBottom, "c", geometry.SideLeft))
	m.SetSelected("ab")

	if !m.RemoveNode("b") {
		t.Fatal("expected node b to be removed")
	}
	edges := m.Edges()
	if len(edges) != 1 || edges[0].ID != "ac" {
		t.Errorf("expected only ac to remain, got %+v", edges)
	}
	if m.Selected() != "" {
		t.Errorf("expected selection to be cleared, got %q", m.Selected())
	}
}

func TestManagerSkipsDanglingEdges(t *testing.T) {
	m, _, buf := newTestManager(t)
	_ = m.AddEdge(edge("ok", "a", geometry.SideRight, "b", geometry.SideLeft))
	_ = m.AddEdge(edge("dangling", "a", geometry.SideBottom, "ghost", geometry.SideTop))

	frame, err := m.Render()
	if err != nil {
		t.Fatal(err)
	}
	if len(frame.Edges) != 1 || frame.Edges[0].ID != "ok" {
		t.Errorf("expected only the valid edge, got %+v", frame.Edges)
	}
	if !reflect.DeepEqual(frame.Skipped, []string{"dangling"}) {
		t.Errorf("expected dangling edge to be reported, got %v", frame.Skipped)
	}
	if !strings.Contains(buf.String(), "warning: edge dangling") {
		t.Errorf("expected a warning, got %q", buf.String())
	}
}

func TestManagerRejectsInvalidEdges(t *testing.T) {
	m, _, _ := newTestManager(t)
	if err := m.AddEdge(edge("e1", "a", geometry.SideRight, "b", geometry.SideLeft)); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		e    Edge
		want error
	}{
		{"self loop", edge("loop", "a", geometry.SideRight, "a", geometry.SideLeft), ErrSelfLoop},
		{"duplicate tuple", edge("e2", "a", geometry.SideRight, "b", geometry.SideLeft), ErrDuplicateEdge},
		{"duplicate id", edge("e1", "b", geometry.SideRight, "a", geometry.SideLeft), ErrDuplicateEdge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := m.AddEdge(tt.e); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}

	if err := m.UpdateEdge(edge("missing", "a", geometry.SideTop, "b", geometry.SideTop)); !errors.Is(err, ErrEdgeNotFound) {
		t.Errorf("expected ErrEdgeNotFound, got %v", err)
	}
	moved := edge("e1", "a", geometry.SideRight, "b", geometry.SideTop)
	if err := m.UpdateEdge(moved); err != nil {
		t.Errorf("updating an edge onto a free tuple should succeed, got %v", err)
	}
}

func TestManagerSelectedEdgeGetsHandles(t *testing.T) {
	m, _, _ := newTestManager(t)
	_ = m.AddEdge(edge("e1", "a", geometry.SideRight, "b", geometry.SideLeft))
	m.SetSelected("e1")
	m.SetScale(2)

	frame, err := m.Render()
	if err != nil {
		t.Fatal(err)
	}
	if len(frame.Handles) != 2 {
		t.Fatalf("expected 2 handles, got %d", len(frame.Handles))
	}
	if frame.Handles[0].Center != geometry.Pt(100, 50) || frame.Handles[1].Center != geometry.Pt(400, 50) {
		t.Errorf("unexpected handle positions %+v", frame.Handles)
	}
	if frame.Handles[0].Radius != DefaultOptions().HandleRadius/2 {
		t.Errorf("expected handle radius scaled by zoom, got %f", frame.Handles[0].Radius)
	}
	if !frame.Edges[0].Selected {
		t.Error("expected the edge to be flagged as selected")
	}
}

func TestManagerNoFactory(t *testing.T) {
	var buf bytes.Buffer
	m := NewManager(nil, testOptions(&buf))
	m.AddNode(node("a", 0, 0, 100, 100))
	m.AddNode(node("b", 400, 0, 100, 100))
	_ = m.AddEdge(edge("e1", "a", geometry.SideRight, "b", geometry.SideLeft))

	if _, err := m.Render(); !errors.Is(err, ErrNoSurface) {
		t.Errorf("expected ErrNoSurface, got %v", err)
	}
}

func TestManagerAnchor(t *testing.T) {
	m, _, _ := newTestManager(t)
	if p, ok := m.Anchor("b", geometry.SideTop); !ok || p != geometry.Pt(450, 0) {
		t.Errorf("expected 450,0, got %+v (%v)", p, ok)
	}
	if _, ok := m.Anchor("ghost", geometry.SideTop); ok {
		t.Error("expected no anchor for a missing node")
	}
}
