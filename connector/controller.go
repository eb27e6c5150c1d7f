package connector

import (
	"log"

	"wirecanvas/pkg/geometry"
)

// Mode is the interaction state of the controller.
type Mode int

const (
	ModeIdle Mode = iota
	ModeConnecting
	ModeReconnecting
	ModeEdgeSelected
)

func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModeConnecting:
		return "connecting"
	case ModeReconnecting:
		return "reconnecting"
	case ModeEdgeSelected:
		return "edge-selected"
	}
	return "unknown"
}

// Connection is a new edge being dragged out of a side handle.
type Connection struct {
	Source  Endpoint
	SourceT float64
	Pointer geometry.Point
}

// Reconnect is an existing edge whose end is being dragged to another node.
type Reconnect struct {
	EdgeID  string
	End     EndRole
	Pointer geometry.Point
	// FixedT is where the other end was attached when the drag started.
	FixedT float64
}

// AnchorDrag is a selected edge's anchor handle being slid along its side.
type AnchorDrag struct {
	EdgeID string
	End    EndRole
	T      float64
	Moved  bool
}

// State is the whole interaction state. At most one of Connection, Reconnect
// and AnchorDrag is set, and only in the matching mode.
type State struct {
	Mode       Mode
	Connection *Connection
	Reconnect  *Reconnect
	AnchorDrag *AnchorDrag
	Selected   string
}

// Viewport maps screen coordinates to canvas coordinates:
// screen = canvas*Scale + (X, Y). Width and Height are the screen size.
type Viewport struct {
	Scale         float64
	X, Y          float64
	Width, Height float64
}

// ToCanvas converts a screen point into canvas coordinates.
func (v Viewport) ToCanvas(p geometry.Point) geometry.Point {
	s := v.Scale
	if s <= 0 {
		s = 1
	}
	return geometry.Pt((p.X-v.X)/s, (p.Y-v.Y)/s)
}

// Host is what the controller needs from the canvas that embeds it.
type Host interface {
	// MeasuredNode returns the current on-canvas rectangle of a node.
	MeasuredNode(id string) (geometry.Rect, bool)
	Viewport() Viewport
	// PanBy moves the canvas content by dx, dy screen pixels.
	PanBy(dx, dy float64)
}

// Callbacks report committed changes to the host.
type Callbacks struct {
	// OnEdgesChange receives the complete new edge list after a create,
	// reconnect, delete or anchor move. The host stores it and hands it back
	// through SetSnapshot.
	OnEdgesChange func(edges []Edge)
	// OnSelectionChange receives the selected edge id, or "" when cleared.
	OnSelectionChange func(edgeID string)
}

// HitKind classifies what lies under the pointer.
type HitKind int

const (
	HitNone HitKind = iota
	HitAnchorHandle
	HitReconnect
	HitSideHandle
	HitEdge
	HitNode
)

// Hit is the result of a hit test.
type Hit struct {
	Kind   HitKind
	NodeID string
	Side   geometry.Side
	EdgeID string
	End    EndRole
	// Point is the hit position in canvas coordinates.
	Point geometry.Point
}

// Controller turns pointer gestures into edge list changes.
//
// The host owns nodes and edges and pushes them in with SetSnapshot. The
// controller never modifies those slices; every change is reported through
// Callbacks.OnEdgesChange as a fresh list. All methods must be called from the
// host's event loop.
type Controller struct {
	host Host
	mgr  *Manager
	cb   Callbacks
	opts Options
	log  *log.Logger

	nodes []Node
	edges []Edge
	state State

	unsubscribe func()
}

// NewController returns a controller drawing through mgr.
func NewController(host Host, mgr *Manager, cb Callbacks) *Controller {
	opts := mgr.Options()
	return &Controller{
		host: host,
		mgr:  mgr,
		cb:   cb,
		opts: opts,
		log:  opts.Logger,
	}
}

// Attach subscribes the controller to a gesture source, replacing any earlier one.
func (c *Controller) Attach(src GestureSource) {
	c.Detach()
	c.unsubscribe = src.Subscribe(func(ev PointerEvent) { c.HandlePointer(ev) })
}

// Detach unsubscribes from the gesture source.
func (c *Controller) Detach() {
	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
	}
}

// State returns a copy of the interaction state.
func (c *Controller) State() State {
	s := c.state
	if s.Connection != nil {
		cp := *s.Connection
		s.Connection = &cp
	}
	if s.Reconnect != nil {
		cp := *s.Reconnect
		s.Reconnect = &cp
	}
	if s.AnchorDrag != nil {
		cp := *s.AnchorDrag
		s.AnchorDrag = &cp
	}
	return s
}

// Manager returns the render manager the controller draws through.
func (c *Controller) Manager() *Manager { return c.mgr }

// SetSnapshot hands the controller the host's current nodes and edges and
// re-renders. A selection that no longer exists is cleared.
func (c *Controller) SetSnapshot(nodes []Node, edges []Edge) {
	c.nodes = append(c.nodes[:0:0], nodes...)
	c.edges = CloneEdges(edges)
	if c.state.Selected != "" && c.edgeIndex(c.state.Selected) < 0 {
		c.reset()
	}
	c.Render()
}

// Render redraws the current snapshot plus any in-progress gesture.
func (c *Controller) Render() Frame {
	vp := c.host.Viewport()
	c.mgr.SetSnapshot(c.measuredNodes(), c.edges)
	c.mgr.SetScale(vp.Scale)
	c.mgr.SetSelected(c.state.Selected)
	c.mgr.SetPreview(c.preview())
	if d := c.state.AnchorDrag; d != nil {
		if e, ok := c.mgr.Edge(d.EdgeID); ok {
			setStoredT(&e, d.End, d.T)
			if err := c.mgr.UpdateEdge(e); err != nil {
				c.log.Printf("warning: anchor drag on %s: %v", d.EdgeID, err)
			}
		}
	}
	frame, err := c.mgr.Render()
	if err != nil {
		c.log.Printf("warning: render: %v", err)
	}
	return frame
}

func (c *Controller) measuredNodes() []Node {
	out := make([]Node, len(c.nodes))
	for i, n := range c.nodes {
		if r, ok := c.host.MeasuredNode(n.ID); ok {
			n.Bounds = r
		}
		out[i] = n
	}
	return out
}

func (c *Controller) preview() *Preview {
	switch c.state.Mode {
	case ModeConnecting:
		conn := c.state.Connection
		return &Preview{Fixed: conn.Source, FixedT: conn.SourceT, FixedRole: EndSource, Pointer: conn.Pointer}
	case ModeReconnecting:
		rc := c.state.Reconnect
		fixedEnd := EndSource
		if rc.End == EndSource {
			fixedEnd = EndTarget
		}
		i := c.edgeIndex(rc.EdgeID)
		if i < 0 {
			return nil
		}
		e := c.edges[i]
		return &Preview{
			Fixed:     e.Endpoint(fixedEnd),
			FixedT:    rc.FixedT,
			FixedRole: fixedEnd,
			Pointer:   rc.Pointer,
			EdgeID:    e.ID,
		}
	}
	return nil
}

// resolvedT returns the t an edge end was drawn with in the last frame.
func (c *Controller) resolvedT(edgeID string, end EndRole) float64 {
	i := c.edgeIndex(edgeID)
	if i < 0 {
		return DefaultT
	}
	e := c.edges[i]
	if t := e.StoredT(end); t != nil {
		return *t
	}
	re, ok := c.mgr.LastFrame().Edge(edgeID)
	if !ok {
		return DefaultT
	}
	n, ok := c.mgr.Node(e.Endpoint(end).NodeID)
	if !ok {
		return DefaultT
	}
	anchor := re.SourceAnchor
	if end == EndTarget {
		anchor = re.TargetAnchor
	}
	return AnchorT(n, e.Endpoint(end).Side, anchor)
}

// HandlePointer feeds one pointer event through the state machine. It reports
// whether the controller consumed the event; a press it does not consume is
// free for the host, for example to start dragging a node.
func (c *Controller) HandlePointer(ev PointerEvent) bool {
	vp := c.host.Viewport()
	p := vp.ToCanvas(ev.Screen)

	switch ev.Kind {
	case PointerDown:
		return c.pointerDown(ev, p)
	case PointerMove:
		return c.pointerMove(ev, p)
	case PointerUp:
		return c.pointerUp(ev, p)
	case PointerCancel:
		busy := c.dragging()
		c.Cancel()
		return busy
	}
	return false
}

func (c *Controller) dragging() bool {
	return c.state.Mode == ModeConnecting || c.state.Mode == ModeReconnecting || c.state.AnchorDrag != nil
}

// HitTest reports what lies under a screen point. Anchor handles of the
// selected edge come first, then node side handles, edge strokes and node bodies.
func (c *Controller) HitTest(screen geometry.Point, mods Modifiers) Hit {
	vp := c.host.Viewport()
	p := vp.ToCanvas(screen)
	return c.hitTest(p, mods, vp.Scale)
}

func (c *Controller) hitTest(p geometry.Point, mods Modifiers, scale float64) Hit {
	if scale <= 0 {
		scale = 1
	}
	handleHit := (c.opts.HandleRadius + c.opts.HandleHit) / scale
	frame := c.mgr.LastFrame()

	if mods.Has(ModAlt) {
		for i := len(frame.Edges) - 1; i >= 0; i-- {
			re := frame.Edges[i]
			if re.Preview {
				continue
			}
			if re.TargetAnchor.Distance(p) <= handleHit {
				return Hit{Kind: HitReconnect, EdgeID: re.ID, End: EndTarget, Point: p}
			}
			if re.SourceAnchor.Distance(p) <= handleHit {
				return Hit{Kind: HitReconnect, EdgeID: re.ID, End: EndSource, Point: p}
			}
		}
	}

	if c.state.Selected != "" {
		if re, ok := frame.Edge(c.state.Selected); ok {
			if re.SourceAnchor.Distance(p) <= handleHit {
				return Hit{Kind: HitAnchorHandle, EdgeID: re.ID, End: EndSource, Point: p}
			}
			if re.TargetAnchor.Distance(p) <= handleHit {
				return Hit{Kind: HitAnchorHandle, EdgeID: re.ID, End: EndTarget, Point: p}
			}
		}
	}

	nodes := c.mgr.Nodes()
	for i := len(nodes) - 1; i >= 0; i-- {
		n := nodes[i]
		for _, side := range geometry.Sides {
			if SideAnchor(n, side, DefaultT).Distance(p) <= handleHit {
				return Hit{Kind: HitSideHandle, NodeID: n.ID, Side: side, Point: p}
			}
		}
	}

	tolerance := c.opts.HitTolerance / scale
	for i := len(frame.Edges) - 1; i >= 0; i-- {
		re := frame.Edges[i]
		if re.Preview {
			continue
		}
		if re.Path.Distance(p) <= tolerance {
			return Hit{Kind: HitEdge, EdgeID: re.ID, Point: p}
		}
	}

	for i := len(nodes) - 1; i >= 0; i-- {
		if nodes[i].Bounds.Contains(p) {
			return Hit{Kind: HitNode, NodeID: nodes[i].ID, Point: p}
		}
	}
	return Hit{Kind: HitNone, Point: p}
}

// hitFromTarget converts a host supplied hit target.
func hitFromTarget(t *HitTarget, p geometry.Point) Hit {
	switch {
	case t.ReconnectEdgeID != "":
		return Hit{Kind: HitReconnect, EdgeID: t.ReconnectEdgeID, End: t.ReconnectEnd, Point: p}
	case t.NodeID != "" && t.Side != "":
		return Hit{Kind: HitSideHandle, NodeID: t.NodeID, Side: t.Side, Point: p}
	case t.NodeID != "":
		return Hit{Kind: HitNode, NodeID: t.NodeID, Point: p}
	}
	return Hit{Kind: HitNone, Point: p}
}

func (c *Controller) pointerDown(ev PointerEvent, p geometry.Point) bool {
	if c.dragging() {
		// A second press while dragging means the release was lost.
		c.Cancel()
	}
	c.mgr.SetSnapshot(c.measuredNodes(), c.edges)

	var hit Hit
	if ev.Target != nil {
		hit = hitFromTarget(ev.Target, p)
	} else {
		hit = c.hitTest(p, ev.Modifiers, c.host.Viewport().Scale)
	}

	switch hit.Kind {
	case HitReconnect:
		if c.edgeIndex(hit.EdgeID) < 0 {
			return false
		}
		fixedEnd := EndSource
		if hit.End == EndSource {
			fixedEnd = EndTarget
		}
		c.state.Mode = ModeReconnecting
		c.state.Reconnect = &Reconnect{
			EdgeID:  hit.EdgeID,
			End:     hit.End,
			Pointer: p,
			FixedT:  c.resolvedT(hit.EdgeID, fixedEnd),
		}
		c.Render()
		return true

	case HitAnchorHandle:
		c.state.AnchorDrag = &AnchorDrag{EdgeID: hit.EdgeID, End: hit.End, T: c.resolvedT(hit.EdgeID, hit.End)}
		c.Render()
		return true

	case HitSideHandle:
		c.setSelected("")
		c.state.Mode = ModeConnecting
		c.state.Connection = &Connection{
			Source:  Endpoint{NodeID: hit.NodeID, Side: hit.Side},
			SourceT: DefaultT,
			Pointer: p,
		}
		c.Render()
		return true

	case HitEdge:
		c.setSelected(hit.EdgeID)
		c.state.Mode = ModeEdgeSelected
		c.Render()
		return true
	}

	// Node bodies and empty canvas clear the selection and are left to the host.
	if c.state.Selected != "" {
		c.reset()
		c.Render()
	}
	return false
}

func (c *Controller) pointerMove(ev PointerEvent, p geometry.Point) bool {
	switch {
	case c.state.Mode == ModeConnecting:
		c.state.Connection.Pointer = c.snap(p)
	case c.state.Mode == ModeReconnecting:
		c.state.Reconnect.Pointer = c.snap(p)
	case c.state.AnchorDrag != nil:
		d := c.state.AnchorDrag
		i := c.edgeIndex(d.EdgeID)
		if i < 0 {
			c.Cancel()
			return true
		}
		ep := c.edges[i].Endpoint(d.End)
		n, ok := c.mgr.Node(ep.NodeID)
		if !ok {
			c.Cancel()
			return true
		}
		d.T = AnchorT(n, ep.Side, p)
		d.Moved = true
	default:
		return false
	}
	c.autoPan(ev.Screen)
	c.Render()
	return true
}

// snap moves the preview end onto a side handle when the pointer is over one.
func (c *Controller) snap(p geometry.Point) geometry.Point {
	hit := c.hitTest(p, 0, c.host.Viewport().Scale)
	if hit.Kind != HitSideHandle {
		return p
	}
	n, ok := c.mgr.Node(hit.NodeID)
	if !ok {
		return p
	}
	return SideAnchor(n, hit.Side, DefaultT)
}

func (c *Controller) autoPan(screen geometry.Point) {
	vp := c.host.Viewport()
	if vp.Width <= 0 || vp.Height <= 0 {
		return
	}
	margin, step := c.opts.AutoPanMargin, c.opts.AutoPanStep
	var dx, dy float64
	switch {
	case screen.X < margin:
		dx = step
	case screen.X > vp.Width-margin:
		dx = -step
	}
	switch {
	case screen.Y < margin:
		dy = step
	case screen.Y > vp.Height-margin:
		dy = -step
	}
	if dx != 0 || dy != 0 {
		c.host.PanBy(dx, dy)
	}
}

func (c *Controller) pointerUp(ev PointerEvent, p geometry.Point) bool {
	switch {
	case c.state.Mode == ModeConnecting:
		c.finishConnection(c.dropTarget(ev, p))
	case c.state.Mode == ModeReconnecting:
		c.finishReconnect(c.dropTarget(ev, p), p)
	case c.state.AnchorDrag != nil:
		c.finishAnchorDrag()
	default:
		return false
	}
	c.Render()
	return true
}

// dropTarget resolves the node and side under a release. A release on a node
// body picks the side nearest to the pointer.
func (c *Controller) dropTarget(ev PointerEvent, p geometry.Point) Hit {
	var hit Hit
	if ev.Target != nil {
		hit = hitFromTarget(ev.Target, p)
	} else {
		hit = c.hitTest(p, 0, c.host.Viewport().Scale)
	}
	switch hit.Kind {
	case HitSideHandle:
		return hit
	case HitNode:
		if n, ok := c.mgr.Node(hit.NodeID); ok {
			hit.Side = NearestSide(n, p)
			return hit
		}
	case HitEdge, HitAnchorHandle:
		// An edge lying over a node still counts as a drop on that node.
		for _, n := range c.mgr.Nodes() {
			if n.Bounds.Contains(p) {
				return Hit{Kind: HitNode, NodeID: n.ID, Side: NearestSide(n, p), Point: p}
			}
		}
	}
	return Hit{Kind: HitNone, Point: p}
}

func (c *Controller) finishConnection(drop Hit) {
	conn := c.state.Connection
	c.clearGesture()
	if drop.Kind == HitNone {
		return
	}

	candidate := Edge{
		ID:     c.opts.NewID(),
		Source: conn.Source,
		Target: Endpoint{NodeID: drop.NodeID, Side: drop.Side},
		Style:  cloneStyle(c.opts.DefaultStyle),
	}
	if err := ValidateConnection(c.mgr.NodeMap(), c.edges, candidate, ""); err != nil {
		return
	}

	next := append(CloneEdges(c.edges), candidate)
	c.commit(next)
	c.state.Mode = ModeEdgeSelected
	c.setSelected(candidate.ID)
}

func (c *Controller) finishReconnect(drop Hit, p geometry.Point) {
	rc := c.state.Reconnect
	c.clearGesture()
	i := c.edgeIndex(rc.EdgeID)
	if i < 0 {
		return
	}

	if drop.Kind == HitNone {
		next := make([]Edge, 0, len(c.edges)-1)
		for _, e := range c.edges {
			if e.ID != rc.EdgeID {
				next = append(next, e.Clone())
			}
		}
		if c.state.Selected == rc.EdgeID {
			c.reset()
		}
		c.commit(next)
		return
	}

	n, ok := c.mgr.Node(drop.NodeID)
	if !ok {
		return
	}
	updated := c.edges[i].Clone()
	ep := Endpoint{NodeID: drop.NodeID, Side: drop.Side}
	t := AnchorT(n, drop.Side, p)
	if rc.End == EndSource {
		updated.Source, updated.SourceT = ep, Float(t)
	} else {
		updated.Target, updated.TargetT = ep, Float(t)
	}
	if err := ValidateConnection(c.mgr.NodeMap(), c.edges, updated, updated.ID); err != nil {
		return
	}

	next := CloneEdges(c.edges)
	next[i] = updated
	c.commit(next)
	c.state.Mode = ModeEdgeSelected
	c.setSelected(updated.ID)
}

func (c *Controller) finishAnchorDrag() {
	d := c.state.AnchorDrag
	c.state.AnchorDrag = nil
	i := c.edgeIndex(d.EdgeID)
	if i < 0 || !d.Moved {
		return
	}
	next := CloneEdges(c.edges)
	setStoredT(&next[i], d.End, d.T)
	c.commit(next)
}

// commit adopts next as the working edge list and reports it to the host.
func (c *Controller) commit(next []Edge) {
	c.edges = CloneEdges(next)
	if c.cb.OnEdgesChange != nil {
		c.cb.OnEdgesChange(next)
	}
}

// DeleteSelected removes the selected edge. It reports false when nothing is
// selected.
func (c *Controller) DeleteSelected() bool {
	id := c.state.Selected
	i := c.edgeIndex(id)
	if i < 0 {
		return false
	}
	next := make([]Edge, 0, len(c.edges)-1)
	for _, e := range c.edges {
		if e.ID != id {
			next = append(next, e.Clone())
		}
	}
	c.reset()
	c.commit(next)
	c.Render()
	return true
}

// Select selects an edge by id, as if its stroke had been clicked. An empty
// or unknown id clears the selection.
func (c *Controller) Select(id string) {
	if c.dragging() {
		c.Cancel()
	}
	if c.edgeIndex(id) < 0 {
		c.reset()
	} else {
		c.state.Mode = ModeEdgeSelected
		c.setSelected(id)
	}
	c.Render()
}

// Cancel abandons any gesture in progress and clears the selection.
func (c *Controller) Cancel() {
	c.reset()
	c.Render()
}

func (c *Controller) clearGesture() {
	c.state.Connection = nil
	c.state.Reconnect = nil
	c.state.AnchorDrag = nil
	if c.state.Selected != "" {
		c.state.Mode = ModeEdgeSelected
	} else {
		c.state.Mode = ModeIdle
	}
}

func (c *Controller) reset() {
	c.state.Connection = nil
	c.state.Reconnect = nil
	c.state.AnchorDrag = nil
	c.state.Mode = ModeIdle
	c.setSelected("")
}

func (c *Controller) setSelected(id string) {
	if c.state.Selected == id {
		return
	}
	c.state.Selected = id
	if c.cb.OnSelectionChange != nil {
		c.cb.OnSelectionChange(id)
	}
}

func (c *Controller) edgeIndex(id string) int {
	if id == "" {
		return -1
	}
	for i, e := range c.edges {
		if e.ID == id {
			return i
		}
	}
	return -1
}

func setStoredT(e *Edge, end EndRole, t float64) {
	if end == EndTarget {
		e.TargetT = Float(t)
	} else {
		e.SourceT = Float(t)
	}
}

func cloneStyle(s EdgeStyle) EdgeStyle {
	if s.Dash != nil {
		s.Dash = append([]float64(nil), s.Dash...)
	}
	return s
}
