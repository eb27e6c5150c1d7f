// Package connector renders and manages the connector lines between canvas nodes.
//
// The host canvas owns nodes and edges. It pushes a snapshot into a Controller on
// every change, and the Controller resolves anchors, spreads edges that share a
// node side, routes paths, draws them onto a Surface and turns pointer gestures
// into new edge lists that are handed back to the host through a callback.
//
// Everything in this package runs on the host's event loop. Nothing here is safe
// for concurrent use.
package connector

import (
	"wirecanvas/pkg/geometry"
)

// NodeKind is the content kind of a canvas node.
type NodeKind string

const (
	KindDocument NodeKind = "document"
	KindImage    NodeKind = "image"
	KindThread   NodeKind = "thread"
)

// Node is a rectangular canvas item that edges attach to. The engine only reads it.
type Node struct {
	ID     string        `json:"id" yaml:"id"`
	Kind   NodeKind      `json:"kind,omitempty" yaml:"kind,omitempty"`
	Bounds geometry.Rect `json:"bounds" yaml:"bounds"`
	Label  string        `json:"label,omitempty" yaml:"label,omitempty"`

	// Anchors overrides the computed anchor for a side. Used for zero-size
	// helper nodes that follow the pointer during a drag.
	Anchors map[geometry.Side]geometry.Point `json:"-" yaml:"-"`
}

// Endpoint is one end of an edge. Side doubles as the handle id.
type Endpoint struct {
	NodeID string        `json:"nodeId" yaml:"nodeId"`
	Side   geometry.Side `json:"side" yaml:"side"`
	// Offset shifts the anchor along the side, in pixels.
	Offset float64 `json:"offset,omitempty" yaml:"offset,omitempty"`
}

// PathType selects the router used for an edge.
type PathType string

const (
	PathBezier           PathType = "bezier"
	PathOrthogonal       PathType = "orthogonal"
	PathHorizontalBezier PathType = "horizontal-bezier"
	PathStraight         PathType = "straight"
)

// PathTypes lists the path types in the order a host cycles through them.
var PathTypes = []PathType{PathBezier, PathOrthogonal, PathStraight}

// MarkerType is the shape drawn at an edge end.
type MarkerType string

const (
	MarkerNone        MarkerType = ""
	MarkerArrow       MarkerType = "arrow"
	MarkerArrowClosed MarkerType = "arrow-closed"
	MarkerCircle      MarkerType = "circle"
)

// MarkerTypes lists the marker types in the order a host cycles through them.
var MarkerTypes = []MarkerType{MarkerNone, MarkerArrow, MarkerArrowClosed, MarkerCircle}

// Marker describes an edge end decoration.
type Marker struct {
	Type MarkerType `json:"type,omitempty" yaml:"type,omitempty"`
	Size float64    `json:"size,omitempty" yaml:"size,omitempty"`
}

// ID returns the definition id shared by every marker of the same type and size.
func (m Marker) ID() string {
	if m.Type == MarkerNone {
		return ""
	}
	return "marker-" + string(m.Type) + "-" + formatFloat(m.Size)
}

// EdgeStyle holds the visual attributes of an edge.
type EdgeStyle struct {
	Path         PathType  `json:"path,omitempty" yaml:"path,omitempty"`
	StrokeWidth  float64   `json:"strokeWidth,omitempty" yaml:"strokeWidth,omitempty"`
	Dash         []float64 `json:"dash,omitempty" yaml:"dash,omitempty"`
	MarkerStart  Marker    `json:"markerStart,omitempty" yaml:"markerStart,omitempty"`
	MarkerEnd    Marker    `json:"markerEnd,omitempty" yaml:"markerEnd,omitempty"`
	Curvature    float64   `json:"curvature,omitempty" yaml:"curvature,omitempty"`
	BorderRadius float64   `json:"borderRadius,omitempty" yaml:"borderRadius,omitempty"`
}

// Edge connects two node sides. It is the only record a host needs to persist.
type Edge struct {
	ID     string   `json:"id" yaml:"id"`
	Source Endpoint `json:"source" yaml:"source"`
	Target Endpoint `json:"target" yaml:"target"`

	// SourceT and TargetT keep a manual anchor placement across renders.
	SourceT *float64 `json:"sourceT,omitempty" yaml:"sourceT,omitempty"`
	TargetT *float64 `json:"targetT,omitempty" yaml:"targetT,omitempty"`

	Style      EdgeStyle        `json:"style" yaml:"style"`
	BendPoints []geometry.Point `json:"bendPoints,omitempty" yaml:"bendPoints,omitempty"`
}

// Clone returns a deep copy of the edge.
func (e Edge) Clone() Edge {
	c := e
	if e.SourceT != nil {
		c.SourceT = Float(*e.SourceT)
	}
	if e.TargetT != nil {
		c.TargetT = Float(*e.TargetT)
	}
	if e.Style.Dash != nil {
		c.Style.Dash = append([]float64(nil), e.Style.Dash...)
	}
	if e.BendPoints != nil {
		c.BendPoints = append([]geometry.Point(nil), e.BendPoints...)
	}
	return c
}

// Endpoint returns the source or target endpoint.
func (e Edge) Endpoint(role EndRole) Endpoint {
	if role == EndTarget {
		return e.Target
	}
	return e.Source
}

// StoredT returns the stored t for an end, if any.
func (e Edge) StoredT(role EndRole) *float64 {
	if role == EndTarget {
		return e.TargetT
	}
	return e.SourceT
}

// EndRole selects one end of an edge.
type EndRole int

const (
	EndSource EndRole = iota
	EndTarget
)

func (r EndRole) String() string {
	if r == EndTarget {
		return "target"
	}
	return "source"
}

// Float returns a pointer to v, for the optional t fields.
func Float(v float64) *float64 {
	return &v
}

// CloneEdges returns a deep copy of an edge list. The controller emits copies so
// the host's snapshot is never aliased.
func CloneEdges(edges []Edge) []Edge {
	out := make([]Edge, len(edges))
	for i, e := range edges {
		out[i] = e.Clone()
	}
	return out
}

// NodeIndex builds an id lookup for a node list.
func NodeIndex(nodes []Node) map[string]Node {
	idx := make(map[string]Node, len(nodes))
	for _, n := range nodes {
		idx[n.ID] = n
	}
	return idx
}
