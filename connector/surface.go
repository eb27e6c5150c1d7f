package connector

import (
	"sort"

	"wirecanvas/pkg/geometry"
)

// MarkerDef is one marker definition a surface must provide before edges
// reference it by id.
type MarkerDef struct {
	ID     string
	Marker Marker
}

// RenderedEdge is an edge as handed to a surface: its routed path plus style.
type RenderedEdge struct {
	ID    string
	Path  Path
	Style EdgeStyle
	// SourceAnchor and TargetAnchor are the resolved attachment points, before
	// the marker gap moved the path ends.
	SourceAnchor, TargetAnchor geometry.Point
	Selected                   bool
	Preview                    bool
}

// Surface is a drawing target sized to the manager's bounds. Coordinates passed
// to it are canvas coordinates; the surface translates by its own origin.
type Surface interface {
	Clear()
	DefineMarkers(defs []MarkerDef)
	DrawNode(id string, r geometry.Rect)
	DrawEdge(e RenderedEdge)
	DrawHandle(p geometry.Point, radius float64)
	Flush() error
	Destroy()
}

// SurfaceFactory creates a surface covering bounds.
type SurfaceFactory func(bounds geometry.Rect) (Surface, error)

// markerDefs returns the distinct marker definitions used by edges, sorted by id.
func markerDefs(edges []RenderedEdge) []MarkerDef {
	seen := map[string]Marker{}
	for _, e := range edges {
		for _, m := range []Marker{e.Style.MarkerStart, e.Style.MarkerEnd} {
			if id := m.ID(); id != "" {
				seen[id] = m
			}
		}
	}
	defs := make([]MarkerDef, 0, len(seen))
	for id, m := range seen {
		defs = append(defs, MarkerDef{ID: id, Marker: m})
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].ID < defs[j].ID })
	return defs
}

// HandleMark is a drawn anchor handle.
type HandleMark struct {
	Center geometry.Point
	Radius float64
}

// DisplayList records draw calls in memory. Hosts that rasterize on their own
// read it back after a render.
type DisplayList struct {
	Bounds    geometry.Rect
	Markers   []MarkerDef
	Nodes     map[string]geometry.Rect
	NodeOrder []string
	Edges     []RenderedEdge
	Handles   []HandleMark
	Flushes   int
	Destroyed bool
}

// NewDisplayList returns an empty display list covering bounds.
func NewDisplayList(bounds geometry.Rect) *DisplayList {
	return &DisplayList{Bounds: bounds, Nodes: map[string]geometry.Rect{}}
}

// DisplayListFactory returns a SurfaceFactory that creates display lists and
// reports each one through created, when it is not nil.
func DisplayListFactory(created func(*DisplayList)) SurfaceFactory {
	return func(bounds geometry.Rect) (Surface, error) {
		dl := NewDisplayList(bounds)
		if created != nil {
			created(dl)
		}
		return dl, nil
	}
}

func (d *DisplayList) Clear() {
	d.Markers = nil
	d.Nodes = map[string]geometry.Rect{}
	d.NodeOrder = nil
	d.Edges = nil
	d.Handles = nil
}

func (d *DisplayList) DefineMarkers(defs []MarkerDef) {
	d.Markers = append(d.Markers, defs...)
}

func (d *DisplayList) DrawNode(id string, r geometry.Rect) {
	if _, ok := d.Nodes[id]; !ok {
		d.NodeOrder = append(d.NodeOrder, id)
	}
	d.Nodes[id] = r
}

func (d *DisplayList) DrawEdge(e RenderedEdge) {
	d.Edges = append(d.Edges, e)
}

func (d *DisplayList) DrawHandle(p geometry.Point, radius float64) {
	d.Handles = append(d.Handles, HandleMark{Center: p, Radius: radius})
}

func (d *DisplayList) Flush() error {
	d.Flushes++
	return nil
}

func (d *DisplayList) Destroy() {
	d.Destroyed = true
}
