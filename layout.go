package main

import (
	"sort"

	"wirecanvas/pkg/geometry"
)

const (
	treeLevelGap   = 8 * cellWidth
	treeSiblingGap = cellHeight
)

// treeParents maps every node to the source of its first incoming edge.
// Edges that would close a cycle are ignored.
func (c *Canvas) treeParents() map[string]string {
	parents := map[string]string{}
	for _, e := range c.edges {
		child, parent := e.Target.NodeID, e.Source.NodeID
		if _, ok := parents[child]; ok || child == parent {
			continue
		}
		if c.nodeIndex(child) < 0 || c.nodeIndex(parent) < 0 {
			continue
		}
		cycle := false
		for p, ok := parent, true; ok; p, ok = parents[p] {
			if p == child {
				cycle = true
				break
			}
		}
		if !cycle {
			parents[child] = parent
		}
	}
	return parents
}

// treeChildren returns the children of id ordered by their current Y.
func (c *Canvas) treeChildren(id string, parents map[string]string) []string {
	var children []string
	for child, parent := range parents {
		if parent == id {
			children = append(children, child)
		}
	}
	c.sortByY(children)
	return children
}

func (c *Canvas) sortByY(ids []string) {
	sort.Slice(ids, func(i, j int) bool {
		a, _ := c.Node(ids[i])
		b, _ := c.Node(ids[j])
		if a.Bounds.Y != b.Bounds.Y {
			return a.Bounds.Y < b.Bounds.Y
		}
		return ids[i] < ids[j]
	})
}

// subtreeHeight is the vertical space a node and its descendants need.
func (c *Canvas) subtreeHeight(id string, parents map[string]string) float64 {
	n, _ := c.Node(id)
	children := c.treeChildren(id, parents)
	if len(children) == 0 {
		return n.Bounds.Height
	}
	total := 0.0
	for i, child := range children {
		total += c.subtreeHeight(child, parents)
		if i < len(children)-1 {
			total += treeSiblingGap
		}
	}
	if total > n.Bounds.Height {
		return total
	}
	return n.Bounds.Height
}

// ArrangeTree lays nodes out as left to right trees following the edges.
// Roots keep their position; every child is placed one level to the right of
// its parent, centered on the space its own subtree needs.
func (c *Canvas) ArrangeTree() {
	parents := c.treeParents()
	var roots []string
	for _, n := range c.nodes {
		if _, ok := parents[n.ID]; !ok {
			roots = append(roots, n.ID)
		}
	}
	c.sortByY(roots)
	for _, id := range roots {
		c.layoutSubtree(id, parents)
	}
}

func (c *Canvas) layoutSubtree(id string, parents map[string]string) {
	children := c.treeChildren(id, parents)
	if len(children) == 0 {
		return
	}
	n, _ := c.Node(id)

	heights := make([]float64, len(children))
	total := 0.0
	for i, child := range children {
		heights[i] = c.subtreeHeight(child, parents)
		total += heights[i]
		if i < len(children)-1 {
			total += treeSiblingGap
		}
	}

	y := n.Bounds.Center().Y - total/2
	x := n.Bounds.Right() + treeLevelGap
	for i, child := range children {
		cn, _ := c.Node(child)
		c.SetNodePosition(child, geometry.Pt(x, y+(heights[i]-cn.Bounds.Height)/2))
		y += heights[i] + treeSiblingGap
		c.layoutSubtree(child, parents)
	}
}

// arrangeTree lays out the current buffer as trees.
func (m *model) arrangeTree() {
	buf := m.getCurrentBuffer()
	if buf == nil {
		return
	}
	before := buf.canvas.Document()
	buf.canvas.ArrangeTree()
	buf.recordAction(ActionArrange, before, buf.canvas.Document())
	buf.sync()
}
