package main

import (
	"math"
	"strings"

	"github.com/mattn/go-runewidth"

	"wirecanvas/connector"
	"wirecanvas/pkg/geometry"
)

// Canvas is the host side document: it owns the nodes and the edge list the
// connector engine reads.
type Canvas struct {
	nodes []connector.Node
	edges []connector.Edge
}

func NewCanvas() *Canvas {
	return &Canvas{}
}

// NewCanvasFromDocument builds a canvas holding a copy of doc.
func NewCanvasFromDocument(doc Document) *Canvas {
	c := NewCanvas()
	c.Restore(doc)
	return c
}

func (c *Canvas) Nodes() []connector.Node { return c.nodes }
func (c *Canvas) Edges() []connector.Edge { return c.edges }

// Document returns a copy of the canvas contents.
func (c *Canvas) Document() Document {
	return Document{Version: documentVersion, Nodes: c.nodes, Edges: c.edges}.Clone()
}

// Restore replaces the canvas contents with a copy of doc.
func (c *Canvas) Restore(doc Document) {
	doc = doc.Clone()
	c.nodes = doc.Nodes
	c.edges = doc.Edges
}

// AddNode places a new node with its top left corner at p and returns its id.
func (c *Canvas) AddNode(kind connector.NodeKind, p geometry.Point, label string) string {
	id := connector.NewID("n")
	c.nodes = append(c.nodes, connector.Node{
		ID:     id,
		Kind:   kind,
		Bounds: geometry.NewRect(snap(p.X, cellWidth), snap(p.Y, cellHeight), defaultNodeWidth, defaultNodeHeight),
		Label:  label,
	})
	return id
}

// DeleteNode removes a node and every edge attached to it.
func (c *Canvas) DeleteNode(id string) bool {
	idx := c.nodeIndex(id)
	if idx < 0 {
		return false
	}
	c.nodes = append(c.nodes[:idx:idx], c.nodes[idx+1:]...)

	kept := c.edges[:0:0]
	for _, e := range c.edges {
		if e.Source.NodeID != id && e.Target.NodeID != id {
			kept = append(kept, e)
		}
	}
	c.edges = kept
	return true
}

// SetNodePosition moves a node's top left corner to p, snapped to the cell grid.
func (c *Canvas) SetNodePosition(id string, p geometry.Point) bool {
	idx := c.nodeIndex(id)
	if idx < 0 {
		return false
	}
	b := &c.nodes[idx].Bounds
	b.X, b.Y = snap(p.X, cellWidth), snap(p.Y, cellHeight)
	return true
}

func (c *Canvas) Node(id string) (connector.Node, bool) {
	if idx := c.nodeIndex(id); idx >= 0 {
		return c.nodes[idx], true
	}
	return connector.Node{}, false
}

// GetNodeAt returns the topmost node containing p, or "".
func (c *Canvas) GetNodeAt(p geometry.Point) string {
	for i := len(c.nodes) - 1; i >= 0; i-- {
		if c.nodes[i].Bounds.Contains(p) {
			return c.nodes[i].ID
		}
	}
	return ""
}

// SetEdges adopts an edge list emitted by the controller.
func (c *Canvas) SetEdges(edges []connector.Edge) {
	c.edges = connector.CloneEdges(edges)
}

// UpdateEdge replaces the edge with the same id.
func (c *Canvas) UpdateEdge(e connector.Edge) bool {
	for i := range c.edges {
		if c.edges[i].ID == e.ID {
			c.edges[i] = e.Clone()
			return true
		}
	}
	return false
}

func (c *Canvas) Edge(id string) (connector.Edge, bool) {
	for _, e := range c.edges {
		if e.ID == id {
			return e.Clone(), true
		}
	}
	return connector.Edge{}, false
}

func (c *Canvas) nodeIndex(id string) int {
	for i, n := range c.nodes {
		if n.ID == id {
			return i
		}
	}
	return -1
}

func snap(v, step float64) float64 {
	return math.Round(v/step) * step
}

type cellClass uint8

const (
	clsNone cellClass = iota
	clsNode
	clsNodeSelected
	clsEdge
	clsEdgeSelected
	clsPreview
	clsHandle
)

type grid struct {
	width, height int
	runes         [][]rune
	class         [][]cellClass
}

func newGrid(width, height int) *grid {
	g := &grid{width: width, height: height}
	g.runes = make([][]rune, height)
	g.class = make([][]cellClass, height)
	for y := range g.runes {
		g.runes[y] = []rune(strings.Repeat(" ", width))
		g.class[y] = make([]cellClass, width)
	}
	return g
}

func (g *grid) set(x, y int, r rune, cls cellClass) {
	if x < 0 || y < 0 || x >= g.width || y >= g.height {
		return
	}
	g.runes[y][x] = r
	g.class[y][x] = cls
}

func (g *grid) text(x, y int, s string, cls cellClass) {
	for _, r := range s {
		g.set(x, y, r, cls)
		x++
	}
}

// lines renders the grid row by row, styling runs of equal class.
func (g *grid) lines(st styles) []string {
	out := make([]string, g.height)
	for y := 0; y < g.height; y++ {
		var sb strings.Builder
		start := 0
		for x := 1; x <= g.width; x++ {
			if x < g.width && g.class[y][x] == g.class[y][start] {
				continue
			}
			run := string(g.runes[y][start:x])
			switch g.class[y][start] {
			case clsNode:
				run = st.node.Render(run)
			case clsNodeSelected:
				run = st.nodeSelected.Render(run)
			case clsEdge:
				run = st.edge.Render(run)
			case clsEdgeSelected:
				run = st.edgeSelected.Render(run)
			case clsPreview:
				run = st.preview.Render(run)
			case clsHandle:
				run = st.handle.Render(run)
			}
			sb.WriteString(run)
			start = x
		}
		out[y] = sb.String()
	}
	return out
}

// toCell maps a canvas point to the terminal cell it falls in.
func toCell(vp connector.Viewport, p geometry.Point) (int, int) {
	scale := vp.Scale
	if scale <= 0 {
		scale = 1
	}
	sx := p.X*scale + vp.X
	sy := p.Y*scale + vp.Y
	return int(math.Floor(sx / cellWidth)), int(math.Floor(sy / cellHeight))
}

// cellCenter returns the screen point at the middle of a terminal cell.
func cellCenter(x, y int) geometry.Point {
	return geometry.Pt(float64(x)*cellWidth+cellWidth/2, float64(y)*cellHeight+cellHeight/2)
}

// Render rasterizes the canvas into width x height terminal cells. Nodes come
// from the canvas; edges, markers and handles come from the engine's display
// list, which may be nil when nothing is connected.
func (c *Canvas) Render(width, height int, vp connector.Viewport, dl *connector.DisplayList, selectedNode string, st styles) []string {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	g := newGrid(width, height)

	var edges []connector.RenderedEdge
	var handles []connector.HandleMark
	if dl != nil && !dl.Destroyed {
		edges, handles = dl.Edges, dl.Handles
	}

	for _, e := range edges {
		drawEdgeCells(g, vp, e)
	}
	for _, n := range c.nodes {
		drawNodeCells(g, vp, n, n.ID == selectedNode)
	}
	for _, e := range edges {
		cls := edgeClass(e)
		drawMarkerCell(g, vp, e.Style.MarkerStart, e.Path.Start, e.Path.StartDir, cls)
		drawMarkerCell(g, vp, e.Style.MarkerEnd, e.Path.End, e.Path.EndDir, cls)
	}
	for _, h := range handles {
		x, y := toCell(vp, h.Center)
		g.set(x, y, '◆', clsHandle)
	}
	return g.lines(st)
}

func edgeClass(e connector.RenderedEdge) cellClass {
	switch {
	case e.Preview:
		return clsPreview
	case e.Selected:
		return clsEdgeSelected
	}
	return clsEdge
}

func drawEdgeCells(g *grid, vp connector.Viewport, e connector.RenderedEdge) {
	cls := edgeClass(e)
	pts := e.Path.Flatten(16)
	for i := 1; i < len(pts); i++ {
		a, b := pts[i-1], pts[i]
		glyph := lineGlyph(b.Sub(a))
		if e.Preview {
			glyph = '·'
		}
		ax, ay := toCell(vp, a)
		bx, by := toCell(vp, b)
		steps := max(abs(bx-ax), abs(by-ay))
		if steps == 0 {
			g.set(ax, ay, glyph, cls)
			continue
		}
		for s := 0; s <= steps; s++ {
			f := float64(s) / float64(steps)
			x := ax + int(math.Round(f*float64(bx-ax)))
			y := ay + int(math.Round(f*float64(by-ay)))
			g.set(x, y, glyph, cls)
		}
	}
}

// lineGlyph picks a box drawing rune for a segment direction. Cells are twice
// as tall as they are wide, which the thresholds account for.
func lineGlyph(d geometry.Point) rune {
	dx, dy := math.Abs(d.X), math.Abs(d.Y)
	switch {
	case dx == 0 && dy == 0:
		return '─'
	case dy < dx*0.5:
		return '─'
	case dx < dy*0.25:
		return '│'
	case (d.X > 0) == (d.Y > 0):
		return '╲'
	}
	return '╱'
}

func drawMarkerCell(g *grid, vp connector.Viewport, m connector.Marker, tip, dir geometry.Point, cls cellClass) {
	if m.Type == connector.MarkerNone {
		return
	}
	x, y := toCell(vp, tip)
	if m.Type == connector.MarkerCircle {
		g.set(x, y, '●', cls)
		return
	}
	closed := m.Type == connector.MarkerArrowClosed
	var r rune
	switch {
	case math.Abs(dir.X) >= math.Abs(dir.Y) && dir.X >= 0:
		r = pick(closed, '▶', '>')
	case math.Abs(dir.X) >= math.Abs(dir.Y):
		r = pick(closed, '◀', '<')
	case dir.Y > 0:
		r = pick(closed, '▼', 'v')
	default:
		r = pick(closed, '▲', '^')
	}
	g.set(x, y, r, cls)
}

func pick(cond bool, a, b rune) rune {
	if cond {
		return a
	}
	return b
}

func drawNodeCells(g *grid, vp connector.Viewport, n connector.Node, selected bool) {
	cls := clsNode
	if selected {
		cls = clsNodeSelected
	}
	r := n.Bounds
	x0, y0 := toCell(vp, geometry.Pt(r.X, r.Y))
	x1, y1 := toCell(vp, geometry.Pt(r.Right()-0.5, r.Bottom()-0.5))
	if x1-x0 < 2 || y1-y0 < 1 {
		g.set(x0, y0, '■', cls)
		return
	}

	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			var ch rune = ' '
			switch {
			case y == y0 && x == x0:
				ch = '┌'
			case y == y0 && x == x1:
				ch = '┐'
			case y == y1 && x == x0:
				ch = '└'
			case y == y1 && x == x1:
				ch = '┘'
			case y == y0 || y == y1:
				ch = '─'
			case x == x0 || x == x1:
				ch = '│'
			}
			g.set(x, y, ch, cls)
		}
	}

	inner := x1 - x0 - 1
	if n.Kind != "" && inner > 2 {
		g.text(x0+1, y0, runewidth.Truncate(string(n.Kind), inner, ""), cls)
	}
	if n.Label != "" && y1-y0 >= 2 {
		label := runewidth.Truncate(n.Label, inner, "…")
		g.text(x0+1+(inner-runewidth.StringWidth(label))/2, (y0+y1)/2, label, cls)
	}

	// Side handles sit where the engine anchors edges by default.
	cx, cy := toCell(vp, r.Center())
	g.set(x0, cy, '┤', cls)
	g.set(x1, cy, '├', cls)
	g.set(cx, y0, '┴', cls)
	g.set(cx, y1, '┬', cls)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
