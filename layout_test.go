package main

import (
	"testing"

	"wirecanvas/connector"
	"wirecanvas/pkg/geometry"
)

func edge(id, from, to string) connector.Edge {
	return connector.Edge{
		ID:     id,
		Source: connector.Endpoint{NodeID: from, Side: geometry.SideRight},
		Target: connector.Endpoint{NodeID: to, Side: geometry.SideLeft},
	}
}

func TestArrangeTree(t *testing.T) {
	c := NewCanvasFromDocument(Document{
		Nodes: []connector.Node{
			{ID: "a", Bounds: geometry.NewRect(0, 40, 160, 64)},
			{ID: "b", Bounds: geometry.NewRect(1000, 300, 160, 64)},
			{ID: "c", Bounds: geometry.NewRect(1000, 100, 160, 64)},
		},
		Edges: []connector.Edge{edge("e1", "a", "b"), edge("e2", "a", "c")},
	})
	c.ArrangeTree()

	a, _ := c.Node("a")
	if a.Bounds.X != 0 || a.Bounds.Y != 40 {
		t.Errorf("expected the root to stay at (0,40), got (%v,%v)", a.Bounds.X, a.Bounds.Y)
	}
	// c was above b, so it stays on top.
	want := map[string]geometry.Point{"c": geometry.Pt(224, 0), "b": geometry.Pt(224, 80)}
	for id, p := range want {
		n, _ := c.Node(id)
		if n.Bounds.X != p.X || n.Bounds.Y != p.Y {
			t.Errorf("expected %s at (%v,%v), got (%v,%v)", id, p.X, p.Y, n.Bounds.X, n.Bounds.Y)
		}
	}
}

func TestArrangeTreeIgnoresCycles(t *testing.T) {
	c := NewCanvasFromDocument(Document{
		Nodes: []connector.Node{
			{ID: "a", Bounds: geometry.NewRect(0, 0, 160, 64)},
			{ID: "b", Bounds: geometry.NewRect(0, 400, 160, 64)},
		},
		Edges: []connector.Edge{edge("e1", "a", "b"), edge("e2", "b", "a")},
	})

	parents := c.treeParents()
	if len(parents) != 1 || parents["b"] != "a" {
		t.Fatalf("expected only b -> a, got %v", parents)
	}
	c.ArrangeTree()
	b, _ := c.Node("b")
	if b.Bounds.X != 224 || b.Bounds.Y != 0 {
		t.Errorf("expected b at (224,0), got (%v,%v)", b.Bounds.X, b.Bounds.Y)
	}
}

func TestArrangeKeyIsUndoable(t *testing.T) {
	m := newTestModel(t)
	buf := m.getCurrentBuffer()
	buf.canvas.Restore(Document{
		Nodes: []connector.Node{
			{ID: "a", Bounds: geometry.NewRect(0, 0, 160, 64)},
			{ID: "b", Bounds: geometry.NewRect(0, 400, 160, 64)},
		},
		Edges: []connector.Edge{edge("e1", "a", "b")},
	})
	buf.sync()

	m = key(m, "A")
	if b, _ := m.getCanvas().Node("b"); b.Bounds.X != 224 {
		t.Errorf("expected b to move right of a, got x=%v", b.Bounds.X)
	}
	m = key(m, "u")
	if b, _ := m.getCanvas().Node("b"); b.Bounds.X != 0 || b.Bounds.Y != 400 {
		t.Errorf("expected undo to restore b, got (%v,%v)", b.Bounds.X, b.Bounds.Y)
	}
}
