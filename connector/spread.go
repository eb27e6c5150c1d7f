package connector

import (
	"sort"

	"wirecanvas/pkg/geometry"
)

// SpreadOptions tunes the spread resolver.
type SpreadOptions struct {
	// BandMin and BandMax bound the t values handed to edges that share a source side.
	BandMin, BandMax float64
	// AlignMargin keeps an aligned target t away from the node's corners.
	AlignMargin float64
}

// DefaultSpreadOptions returns the band [0.35, 0.65] with a 0.05 alignment margin.
func DefaultSpreadOptions() SpreadOptions {
	return SpreadOptions{BandMin: 0.35, BandMax: 0.65, AlignMargin: 0.05}
}

// Placement is the resolved anchor position and lane of one edge.
type Placement struct {
	SourceT, TargetT     float64
	LaneIndex, LaneCount int
}

type sideKey struct {
	node string
	side geometry.Side
}

// ResolveSpread assigns anchor parameters and lanes so that edges sharing a node
// side do not overlap. Edges whose nodes are missing are left out of the result.
//
// Edges leaving the same side are ordered by where their far node sits along that
// side and spread across the band, which keeps them from crossing. Edges arriving
// at the same side get lane numbers in the same order, and each target t is
// chosen to make the edge straight when the source anchor lies within the target's
// span. Stored SourceT and TargetT values always win.
func ResolveSpread(nodes map[string]Node, edges []Edge, opts SpreadOptions) map[string]Placement {
	if opts.BandMax <= opts.BandMin {
		d := DefaultSpreadOptions()
		opts.BandMin, opts.BandMax = d.BandMin, d.BandMax
	}

	var live []Edge
	for _, e := range edges {
		_, okS := nodes[e.Source.NodeID]
		_, okT := nodes[e.Target.NodeID]
		if okS && okT {
			live = append(live, e)
		}
	}

	out := make(map[string]Placement, len(live))
	for _, e := range live {
		out[e.ID] = Placement{SourceT: DefaultT, TargetT: DefaultT, LaneCount: 1}
	}

	// Source groups: spread within the band.
	for _, group := range groupBy(live, EndSource) {
		if len(group) < 2 {
			continue
		}
		side := group[0].Source.Side
		sortByFarNode(group, nodes, side, EndTarget)
		for i, e := range group {
			f := float64(i) / float64(len(group)-1)
			p := out[e.ID]
			p.SourceT = opts.BandMin*(1-f) + opts.BandMax*f
			out[e.ID] = p
		}
	}

	// Target groups: lanes only.
	for _, group := range groupBy(live, EndTarget) {
		if len(group) < 2 {
			continue
		}
		side := group[0].Target.Side
		sortByFarNode(group, nodes, side, EndSource)
		for i, e := range group {
			p := out[e.ID]
			p.LaneIndex, p.LaneCount = i, len(group)
			out[e.ID] = p
		}
	}

	for _, e := range live {
		p := out[e.ID]
		if e.SourceT != nil {
			p.SourceT = *e.SourceT
		}
		if e.TargetT != nil {
			p.TargetT = *e.TargetT
		} else {
			src := EndpointAnchor(nodes[e.Source.NodeID], e.Source, p.SourceT)
			p.TargetT = AlignedT(nodes[e.Target.NodeID], e.Target.Side, src, opts.AlignMargin)
		}
		out[e.ID] = p
	}
	return out
}

// AlignedT returns the t on side of target that lines up with the source anchor,
// so the edge can be drawn straight. When the anchor lies outside the node's span
// the side's midpoint is used.
func AlignedT(target Node, side geometry.Side, source geometry.Point, margin float64) float64 {
	b := target.Bounds
	lo, hi, pos, span := b.Y, b.Bottom(), source.Y, b.Height
	if side.Vertical() {
		lo, hi, pos, span = b.X, b.Right(), source.X, b.Width
	} else if !side.Horizontal() {
		return DefaultT
	}
	if span <= 0 || pos < lo || pos > hi {
		return DefaultT
	}
	return geometry.Clamp((pos-lo)/span, margin, 1-margin)
}

// groupBy buckets edges by the node side of one end, keeping edge order inside
// each bucket and bucket order by first appearance.
func groupBy(edges []Edge, role EndRole) [][]Edge {
	index := map[sideKey]int{}
	var groups [][]Edge
	for _, e := range edges {
		ep := e.Endpoint(role)
		k := sideKey{ep.NodeID, ep.Side}
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], e)
	}
	return groups
}

// sortByFarNode orders a group by the center of the node at the far end, along
// the axis the shared side runs on. Ties fall back to the edge id.
func sortByFarNode(group []Edge, nodes map[string]Node, side geometry.Side, far EndRole) {
	pos := func(e Edge) float64 {
		c := nodes[e.Endpoint(far).NodeID].Bounds.Center()
		if side.Vertical() {
			return c.X
		}
		return c.Y
	}
	sort.SliceStable(group, func(i, j int) bool {
		pi, pj := pos(group[i]), pos(group[j])
		if pi != pj {
			return pi < pj
		}
		return group[i].ID < group[j].ID
	})
}
