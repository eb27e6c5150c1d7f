package connector

import (
	"fmt"
	"log"

	"wirecanvas/pkg/geometry"
)

// Preview is the in-progress connection drawn while a handle is being dragged.
// One end is attached to a node, the other follows the pointer.
type Preview struct {
	Fixed  Endpoint
	FixedT float64
	// FixedRole is the end of the drawn path the fixed endpoint sits at.
	FixedRole EndRole
	Pointer   geometry.Point
	// EdgeID names the edge being reconnected. It is hidden while the preview
	// is shown.
	EdgeID string
}

// Frame describes the result of one render.
type Frame struct {
	Bounds    geometry.Rect
	Recreated bool
	Edges     []RenderedEdge
	Handles   []HandleMark
	// Skipped lists edges that reference a missing node.
	Skipped []string
}

// Edge returns the rendered edge with the given id.
func (f Frame) Edge(id string) (RenderedEdge, bool) {
	for _, e := range f.Edges {
		if e.ID == id && !e.Preview {
			return e, true
		}
	}
	return RenderedEdge{}, false
}

// Manager owns the drawing surface and redraws nodes and edges onto it.
//
// The surface is sized to the edges actually drawn and is only recreated when
// those bounds change, so dragging a connection does not rebuild it on every
// pointer move. A Manager is not safe for concurrent use.
type Manager struct {
	factory   SurfaceFactory
	surface   Surface
	boundsKey string

	nodes     map[string]Node
	nodeOrder []string
	edges     []Edge

	preview  *Preview
	selected string
	scale    float64

	frame Frame
	opts  Options
	log   *log.Logger
}

// NewManager returns a manager that draws through surfaces built by factory.
func NewManager(factory SurfaceFactory, opts Options) *Manager {
	opts = opts.withDefaults()
	return &Manager{
		factory: factory,
		nodes:   map[string]Node{},
		scale:   1,
		opts:    opts,
		log:     opts.Logger,
	}
}

// Options returns the manager's effective options.
func (m *Manager) Options() Options { return m.opts }

// AddNode adds n, replacing any node with the same id.
func (m *Manager) AddNode(n Node) {
	if _, ok := m.nodes[n.ID]; !ok {
		m.nodeOrder = append(m.nodeOrder, n.ID)
	}
	m.nodes[n.ID] = n
}

// UpdateNode replaces an existing node. It reports false when the id is unknown.
func (m *Manager) UpdateNode(n Node) bool {
	if _, ok := m.nodes[n.ID]; !ok {
		return false
	}
	m.nodes[n.ID] = n
	return true
}

// RemoveNode deletes a node and every edge attached to it.
func (m *Manager) RemoveNode(id string) bool {
	if _, ok := m.nodes[id]; !ok {
		return false
	}
	delete(m.nodes, id)
	for i, nid := range m.nodeOrder {
		if nid == id {
			m.nodeOrder = append(m.nodeOrder[:i], m.nodeOrder[i+1:]...)
			break
		}
	}
	kept := m.edges[:0]
	for _, e := range m.edges {
		if e.Source.NodeID == id || e.Target.NodeID == id {
			if e.ID == m.selected {
				m.selected = ""
			}
			continue
		}
		kept = append(kept, e)
	}
	m.edges = kept
	return true
}

// Node returns the node with the given id.
func (m *Manager) Node(id string) (Node, bool) {
	n, ok := m.nodes[id]
	return n, ok
}

// Nodes returns the nodes in insertion order.
func (m *Manager) Nodes() []Node {
	out := make([]Node, 0, len(m.nodeOrder))
	for _, id := range m.nodeOrder {
		out = append(out, m.nodes[id])
	}
	return out
}

// NodeMap returns a copy of the node lookup.
func (m *Manager) NodeMap() map[string]Node {
	out := make(map[string]Node, len(m.nodes))
	for id, n := range m.nodes {
		out[id] = n
	}
	return out
}

// AddEdge appends an edge. Self loops and duplicate connections are rejected.
// Edges may reference nodes that have not been added yet; they are skipped
// when rendering until the nodes arrive.
func (m *Manager) AddEdge(e Edge) error {
	if _, ok := m.edgeIndex(e.ID); ok {
		return fmt.Errorf("add edge %s: %w", e.ID, ErrDuplicateEdge)
	}
	if err := ValidateConnection(nil, m.edges, e, ""); err != nil {
		return fmt.Errorf("add edge %s: %w", e.ID, err)
	}
	m.edges = append(m.edges, e.Clone())
	return nil
}

// UpdateEdge replaces the edge with the same id, keeping its position in the
// draw order.
func (m *Manager) UpdateEdge(e Edge) error {
	i, ok := m.edgeIndex(e.ID)
	if !ok {
		return fmt.Errorf("update edge %s: %w", e.ID, ErrEdgeNotFound)
	}
	if err := ValidateConnection(nil, m.edges, e, e.ID); err != nil {
		return fmt.Errorf("update edge %s: %w", e.ID, err)
	}
	m.edges[i] = e.Clone()
	return nil
}

// RemoveEdge deletes an edge. It reports false when the id is unknown.
func (m *Manager) RemoveEdge(id string) bool {
	i, ok := m.edgeIndex(id)
	if !ok {
		return false
	}
	m.edges = append(m.edges[:i], m.edges[i+1:]...)
	if m.selected == id {
		m.selected = ""
	}
	return true
}

// Edge returns a copy of the edge with the given id.
func (m *Manager) Edge(id string) (Edge, bool) {
	i, ok := m.edgeIndex(id)
	if !ok {
		return Edge{}, false
	}
	return m.edges[i].Clone(), true
}

// Edges returns a copy of the edge list in draw order.
func (m *Manager) Edges() []Edge {
	return CloneEdges(m.edges)
}

func (m *Manager) edgeIndex(id string) (int, bool) {
	for i, e := range m.edges {
		if e.ID == id {
			return i, true
		}
	}
	return -1, false
}

// SetSnapshot replaces nodes and edges with the host's current lists. The
// edges are copied; validation is the host's concern at this point.
func (m *Manager) SetSnapshot(nodes []Node, edges []Edge) {
	m.nodes = make(map[string]Node, len(nodes))
	m.nodeOrder = m.nodeOrder[:0]
	for _, n := range nodes {
		m.AddNode(n)
	}
	m.edges = CloneEdges(edges)
	if _, ok := m.edgeIndex(m.selected); !ok {
		m.selected = ""
	}
}

// SetPreview shows or, with nil, hides the in-progress connection.
func (m *Manager) SetPreview(p *Preview) {
	if p == nil {
		m.preview = nil
		return
	}
	cp := *p
	m.preview = &cp
}

// SetSelected marks an edge as selected. An empty id clears the selection.
func (m *Manager) SetSelected(id string) { m.selected = id }

// Selected returns the selected edge id, or "".
func (m *Manager) Selected() string { return m.selected }

// SetScale tells the manager the current viewport zoom, so handles keep their
// on-screen size.
func (m *Manager) SetScale(scale float64) {
	if scale <= 0 {
		scale = 1
	}
	m.scale = scale
}

// Anchor returns the midpoint anchor of a node side.
func (m *Manager) Anchor(nodeID string, side geometry.Side) (geometry.Point, bool) {
	n, ok := m.nodes[nodeID]
	if !ok {
		return geometry.Point{}, false
	}
	return SideAnchor(n, side, DefaultT), true
}

// Surface returns the current surface, or nil when nothing is drawn.
func (m *Manager) Surface() Surface { return m.surface }

// LastFrame returns the result of the most recent render.
func (m *Manager) LastFrame() Frame { return m.frame }

// Clear drops every node, edge, preview and selection. The surface is torn
// down by the next Render.
func (m *Manager) Clear() {
	m.nodes = map[string]Node{}
	m.nodeOrder = nil
	m.edges = nil
	m.preview = nil
	m.selected = ""
	if m.surface != nil {
		m.surface.Clear()
	}
}

// Destroy releases the surface. The manager can render again afterwards.
func (m *Manager) Destroy() {
	if m.surface != nil {
		m.surface.Destroy()
	}
	m.surface = nil
	m.boundsKey = ""
	m.frame = Frame{}
}

// Render redraws everything onto the surface. Calling it twice with unchanged
// inputs produces the same frame.
func (m *Manager) Render() (Frame, error) {
	var live []Edge
	var skipped []string
	for _, e := range m.edges {
		if m.preview != nil && e.ID == m.preview.EdgeID {
			continue
		}
		_, okS := m.nodes[e.Source.NodeID]
		_, okT := m.nodes[e.Target.NodeID]
		if !okS || !okT {
			m.log.Printf("warning: edge %s references a missing node (%s -> %s), skipping", e.ID, e.Source.NodeID, e.Target.NodeID)
			skipped = append(skipped, e.ID)
			continue
		}
		live = append(live, e)
	}

	bounds, ok := m.bounds(live)
	if !ok {
		m.Destroy()
		m.frame = Frame{Skipped: skipped}
		return m.frame, nil
	}

	frame := Frame{Bounds: bounds, Skipped: skipped}
	if key := bounds.Key(); m.surface == nil || key != m.boundsKey {
		if m.factory == nil {
			return Frame{}, ErrNoSurface
		}
		surface, err := m.factory(bounds)
		if err != nil {
			return Frame{}, fmt.Errorf("create surface: %w", err)
		}
		if m.surface != nil {
			m.surface.Destroy()
		}
		m.surface, m.boundsKey = surface, key
		frame.Recreated = true
	}

	placements := ResolveSpread(m.nodes, live, m.opts.Spread)
	for _, e := range live {
		frame.Edges = append(frame.Edges, m.routeEdge(e, placements[e.ID]))
	}
	if pe, ok := m.routePreview(); ok {
		frame.Edges = append(frame.Edges, pe)
	}
	if sel, ok := frame.Edge(m.selected); ok {
		r := m.opts.HandleRadius / m.scale
		frame.Handles = []HandleMark{
			{Center: sel.SourceAnchor, Radius: r},
			{Center: sel.TargetAnchor, Radius: r},
		}
	}

	s := m.surface
	s.Clear()
	s.DefineMarkers(markerDefs(frame.Edges))
	for _, id := range m.nodeOrder {
		s.DrawNode(id, m.nodes[id].Bounds)
	}
	for _, re := range frame.Edges {
		s.DrawEdge(re)
	}
	for _, h := range frame.Handles {
		s.DrawHandle(h.Center, h.Radius)
	}
	if err := s.Flush(); err != nil {
		return Frame{}, fmt.Errorf("flush surface: %w", err)
	}

	m.frame = frame
	return frame, nil
}

// bounds is the padded union of every drawn edge's endpoint nodes and the
// preview's ends. It reports false when there is nothing to draw.
func (m *Manager) bounds(live []Edge) (geometry.Rect, bool) {
	var r geometry.Rect
	have := false
	add := func(x geometry.Rect) {
		if !have {
			r, have = x, true
			return
		}
		r = r.Union(x)
	}
	for _, e := range live {
		add(m.nodes[e.Source.NodeID].Bounds)
		add(m.nodes[e.Target.NodeID].Bounds)
	}
	if p := m.preview; p != nil {
		if n, ok := m.nodes[p.Fixed.NodeID]; ok {
			add(geometry.RectFromPoints(SideAnchor(n, p.Fixed.Side, p.FixedT), p.Pointer))
		}
	}
	if !have {
		return geometry.Rect{}, false
	}
	return r.Expand(m.opts.Padding), true
}

func (m *Manager) routeEdge(e Edge, pl Placement) RenderedEdge {
	src, dst := m.nodes[e.Source.NodeID], m.nodes[e.Target.NodeID]
	srcPt := EndpointAnchor(src, e.Source, pl.SourceT)
	dstPt := EndpointAnchor(dst, e.Target, pl.TargetT)

	obstacles := make([]geometry.Rect, 0, len(m.nodes))
	for _, id := range m.nodeOrder {
		if id == src.ID || id == dst.ID {
			continue
		}
		obstacles = append(obstacles, m.nodes[id].Bounds)
	}

	path := Route(RouteRequest{
		Source:         srcPt,
		Target:         dstPt,
		SourceSide:     e.Source.Side,
		TargetSide:     e.Target.Side,
		Style:          e.Style.Path,
		Curvature:      e.Style.Curvature,
		BorderRadius:   e.Style.BorderRadius,
		Obstacles:      obstacles,
		BendPoints:     e.BendPoints,
		LaneIndex:      pl.LaneIndex,
		LaneCount:      pl.LaneCount,
		LaneSpacing:    m.opts.LaneSpacing,
		MarkerStartGap: m.markerGap(e.Style.MarkerStart),
		MarkerEndGap:   m.markerGap(e.Style.MarkerEnd),
	})
	return RenderedEdge{
		ID:           e.ID,
		Path:         path,
		Style:        e.Style,
		SourceAnchor: srcPt,
		TargetAnchor: dstPt,
		Selected:     e.ID == m.selected,
	}
}

func (m *Manager) routePreview() (RenderedEdge, bool) {
	p := m.preview
	if p == nil {
		return RenderedEdge{}, false
	}
	fixed, ok := m.nodes[p.Fixed.NodeID]
	if !ok {
		return RenderedEdge{}, false
	}
	loose := pointerNode(p.Pointer)
	fixedPt := EndpointAnchor(fixed, p.Fixed, p.FixedT)
	looseSide := p.Fixed.Side.Opposite()

	req := RouteRequest{Style: m.opts.PreviewStyle.Path}
	re := RenderedEdge{ID: p.EdgeID, Style: m.opts.PreviewStyle, Preview: true}
	if p.FixedRole == EndSource {
		req.Source, req.SourceSide = fixedPt, p.Fixed.Side
		req.Target, req.TargetSide = SideAnchor(loose, looseSide, DefaultT), looseSide
	} else {
		req.Source, req.SourceSide = SideAnchor(loose, looseSide, DefaultT), looseSide
		req.Target, req.TargetSide = fixedPt, p.Fixed.Side
	}
	re.Path = Route(req)
	re.SourceAnchor, re.TargetAnchor = req.Source, req.Target
	return re, true
}

func (m *Manager) markerGap(mk Marker) float64 {
	if mk.Type == MarkerNone {
		return 0
	}
	return m.opts.MarkerGap
}
