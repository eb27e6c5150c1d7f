package connector

import (
	"math"
	"testing"

	"wirecanvas/pkg/geometry"
)

func node(id string, x, y, w, h float64) Node {
	return Node{ID: id, Bounds: geometry.NewRect(x, y, w, h)}
}

func edge(id, src string, srcSide geometry.Side, dst string, dstSide geometry.Side) Edge {
	return Edge{
		ID:     id,
		Source: Endpoint{NodeID: src, Side: srcSide},
		Target: Endpoint{NodeID: dst, Side: dstSide},
	}
}

func TestSpreadOrdersByFarNode(t *testing.T) {
	nodes := NodeIndex([]Node{
		node("a", 0, 0, 100, 100),
		node("b", 400, 0, 100, 100),
		node("c", 400, 200, 100, 100),
	})
	// Declared in the "wrong" order on purpose.
	edges := []Edge{
		edge("to-c", "a", geometry.SideRight, "c", geometry.SideLeft),
		edge("to-b", "a", geometry.SideRight, "b", geometry.SideLeft),
	}

	got := ResolveSpread(nodes, edges, DefaultSpreadOptions())
	if got["to-b"].SourceT >= got["to-c"].SourceT {
		t.Errorf("expected edge to b above edge to c, got %.2f and %.2f", got["to-b"].SourceT, got["to-c"].SourceT)
	}
	if got["to-b"].SourceT != 0.35 || got["to-c"].SourceT != 0.65 {
		t.Errorf("expected band ends 0.35/0.65, got %.2f/%.2f", got["to-b"].SourceT, got["to-c"].SourceT)
	}
}

func TestSpreadMonotonic(t *testing.T) {
	nodes := map[string]Node{"hub": node("hub", 0, 0, 100, 300)}
	var edges []Edge
	for i, y := range []float64{500, -100, 250, 40, 900} {
		id := string(rune('p' + i))
		nodes[id] = node(id, 400, y, 80, 60)
		edges = append(edges, edge("e-"+id, "hub", geometry.SideRight, id, geometry.SideLeft))
	}

	got := ResolveSpread(nodes, edges, DefaultSpreadOptions())
	for _, a := range edges {
		for _, b := range edges {
			ya := nodes[a.Target.NodeID].Bounds.Center().Y
			yb := nodes[b.Target.NodeID].Bounds.Center().Y
			if ya < yb && got[a.ID].SourceT >= got[b.ID].SourceT {
				t.Errorf("%s (y %.0f) should sit above %s (y %.0f)", a.ID, ya, b.ID, yb)
			}
		}
	}
}

func TestSpreadSingleEdgeStaysCentered(t *testing.T) {
	nodes := NodeIndex([]Node{node("a", 0, 0, 100, 100), node("b", 400, 0, 100, 100)})
	edges := []Edge{edge("e1", "a", geometry.SideRight, "b", geometry.SideLeft)}

	got := ResolveSpread(nodes, edges, DefaultSpreadOptions())["e1"]
	if got.SourceT != 0.5 {
		t.Errorf("expected sourceT 0.5, got %f", got.SourceT)
	}
	if got.TargetT != 0.5 {
		t.Errorf("expected aligned targetT 0.5, got %f", got.TargetT)
	}
	if got.LaneCount != 1 || got.LaneIndex != 0 {
		t.Errorf("expected a single lane, got %d/%d", got.LaneIndex, got.LaneCount)
	}
}

func TestSpreadAlignsTarget(t *testing.T) {
	nodes := NodeIndex([]Node{
		node("a", 0, 100, 100, 100),
		node("tall", 400, 0, 100, 400),
		node("far", 400, 1000, 100, 100),
	})
	edges := []Edge{
		edge("aligned", "a", geometry.SideRight, "tall", geometry.SideLeft),
		edge("center", "a", geometry.SideBottom, "far", geometry.SideLeft),
	}

	got := ResolveSpread(nodes, edges, DefaultSpreadOptions())
	// Source anchor sits at y=150 on a node spanning 0..400.
	if math.Abs(got["aligned"].TargetT-0.375) > 1e-9 {
		t.Errorf("expected targetT 0.375, got %f", got["aligned"].TargetT)
	}
	if got["center"].TargetT != 0.5 {
		t.Errorf("expected fallback targetT 0.5, got %f", got["center"].TargetT)
	}
}

func TestSpreadAlignmentClampsToMargin(t *testing.T) {
	nodes := NodeIndex([]Node{node("a", 0, 0, 100, 2), node("b", 400, 0, 100, 100)})
	edges := []Edge{edge("e1", "a", geometry.SideRight, "b", geometry.SideLeft)}

	got := ResolveSpread(nodes, edges, DefaultSpreadOptions())["e1"]
	if got.TargetT != 0.05 {
		t.Errorf("expected targetT clamped to 0.05, got %f", got.TargetT)
	}
}

func TestSpreadAssignsTargetLanes(t *testing.T) {
	nodes := NodeIndex([]Node{
		node("low", 0, 300, 100, 100),
		node("high", 0, 0, 100, 100),
		node("sink", 400, 150, 100, 100),
	})
	edges := []Edge{
		edge("from-low", "low", geometry.SideRight, "sink", geometry.SideLeft),
		edge("from-high", "high", geometry.SideRight, "sink", geometry.SideLeft),
	}

	got := ResolveSpread(nodes, edges, DefaultSpreadOptions())
	if got["from-high"].LaneIndex != 0 || got["from-low"].LaneIndex != 1 {
		t.Errorf("expected lanes ordered by source y, got high=%d low=%d", got["from-high"].LaneIndex, got["from-low"].LaneIndex)
	}
	for id, p := range got {
		if p.LaneCount != 2 {
			t.Errorf("%s: expected lane count 2, got %d", id, p.LaneCount)
		}
	}
}

func TestSpreadStoredTWins(t *testing.T) {
	nodes := NodeIndex([]Node{
		node("a", 0, 0, 100, 100),
		node("b", 400, 0, 100, 100),
		node("c", 400, 200, 100, 100),
	})
	edges := []Edge{
		edge("to-b", "a", geometry.SideRight, "b", geometry.SideLeft),
		edge("to-c", "a", geometry.SideRight, "c", geometry.SideLeft),
	}
	edges[0].SourceT = Float(0.9)
	edges[0].TargetT = Float(0.1)

	got := ResolveSpread(nodes, edges, DefaultSpreadOptions())
	if got["to-b"].SourceT != 0.9 || got["to-b"].TargetT != 0.1 {
		t.Errorf("expected stored 0.9/0.1, got %f/%f", got["to-b"].SourceT, got["to-b"].TargetT)
	}
}

func TestSpreadSkipsDanglingEdges(t *testing.T) {
	nodes := NodeIndex([]Node{node("a", 0, 0, 100, 100)})
	edges := []Edge{edge("e1", "a", geometry.SideRight, "ghost", geometry.SideLeft)}

	if got := ResolveSpread(nodes, edges, DefaultSpreadOptions()); len(got) != 0 {
		t.Errorf("expected no placements, got %v", got)
	}
}

func TestSpreadVerticalSidesUseX(t *testing.T) {
	nodes := NodeIndex([]Node{
		node("top", 200, 0, 100, 100),
		node("right", 500, 400, 100, 100),
		node("left", 0, 400, 100, 100),
	})
	edges := []Edge{
		edge("to-right", "top", geometry.SideBottom, "right", geometry.SideTop),
		edge("to-left", "top", geometry.SideBottom, "left", geometry.SideTop),
	}

	got := ResolveSpread(nodes, edges, DefaultSpreadOptions())
	if got["to-left"].SourceT >= got["to-right"].SourceT {
		t.Errorf("expected left edge first along the bottom side, got %f and %f", got["to-left"].SourceT, got["to-right"].SourceT)
	}
}
