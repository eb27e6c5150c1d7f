package connector

import (
	"math"

	"wirecanvas/pkg/geometry"
)

// DefaultT is the anchor parameter of a side's midpoint.
const DefaultT = 0.5

// SideAnchor returns the connection point on a node side at parameter t.
// For left/right x sits on the edge and y = y0 + height*t; top/bottom is symmetric.
// Center ignores t. An override in n.Anchors wins over the computed point.
func SideAnchor(n Node, side geometry.Side, t float64) geometry.Point {
	if p, ok := n.Anchors[side]; ok {
		return p
	}
	t = geometry.Clamp(t, 0, 1)
	b := n.Bounds
	switch side {
	case geometry.SideLeft:
		return geometry.Pt(b.X, b.Y+b.Height*t)
	case geometry.SideRight:
		return geometry.Pt(b.Right(), b.Y+b.Height*t)
	case geometry.SideTop:
		return geometry.Pt(b.X+b.Width*t, b.Y)
	case geometry.SideBottom:
		return geometry.Pt(b.X+b.Width*t, b.Bottom())
	}
	return b.Center()
}

// EndpointAnchor resolves an edge endpoint on its node, applying the endpoint's
// offset along the side and keeping the result on the node's edge.
func EndpointAnchor(n Node, ep Endpoint, t float64) geometry.Point {
	if ep.Offset == 0 {
		return SideAnchor(n, ep.Side, t)
	}
	if _, ok := n.Anchors[ep.Side]; ok {
		return SideAnchor(n, ep.Side, t)
	}
	span := n.Bounds.Height
	if ep.Side.Vertical() {
		span = n.Bounds.Width
	}
	if span > 0 {
		t += ep.Offset / span
	}
	return SideAnchor(n, ep.Side, t)
}

// AnchorT is the inverse of SideAnchor: the t of the point on side closest to p.
func AnchorT(n Node, side geometry.Side, p geometry.Point) float64 {
	b := n.Bounds
	switch {
	case side.Horizontal():
		if b.Height <= 0 {
			return DefaultT
		}
		return geometry.Clamp((p.Y-b.Y)/b.Height, 0, 1)
	case side.Vertical():
		if b.Width <= 0 {
			return DefaultT
		}
		return geometry.Clamp((p.X-b.X)/b.Width, 0, 1)
	}
	return DefaultT
}

// NearestSide returns the side of n whose edge is closest to p.
func NearestSide(n Node, p geometry.Point) geometry.Side {
	b := n.Bounds
	best := geometry.SideLeft
	bestDist := math.Abs(p.X - b.X)
	candidates := []struct {
		side geometry.Side
		dist float64
	}{
		{geometry.SideRight, math.Abs(p.X - b.Right())},
		{geometry.SideTop, math.Abs(p.Y - b.Y)},
		{geometry.SideBottom, math.Abs(p.Y - b.Bottom())},
	}
	for _, c := range candidates {
		if c.dist < bestDist {
			best, bestDist = c.side, c.dist
		}
	}
	return best
}

// pointerNode builds the zero-size helper node that stands in for the pointer
// while a connection is being dragged.
func pointerNode(p geometry.Point) Node {
	anchors := make(map[geometry.Side]geometry.Point, len(geometry.Sides)+1)
	for _, s := range geometry.Sides {
		anchors[s] = p
	}
	anchors[geometry.SideCenter] = p
	return Node{
		ID:      pointerNodeID,
		Bounds:  geometry.Rect{X: p.X, Y: p.Y},
		Anchors: anchors,
	}
}

const pointerNodeID = "__pointer__"
