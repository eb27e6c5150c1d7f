package connector

import (
	"math"

	"wirecanvas/pkg/geometry"
)

const (
	DefaultCurvature    = 0.25
	DefaultBorderRadius = 8.0
	DefaultLaneSpacing  = 12.0

	stubLength     = 20.0
	obstacleMargin = 10.0
)

// RouteRequest is everything the router needs to draw one edge.
type RouteRequest struct {
	Source, Target         geometry.Point
	SourceSide, TargetSide geometry.Side
	Style                  PathType
	Curvature              float64
	BorderRadius           float64

	// Obstacles are the node rectangles an orthogonal route must go around,
	// excluding the edge's own source and target. A nil slice means no
	// avoidance data is available and the router falls back to a bezier.
	Obstacles []geometry.Rect
	// BendPoints force the path through intermediate coordinates.
	BendPoints []geometry.Point

	LaneIndex, LaneCount int
	LaneSpacing          float64

	MarkerStartGap, MarkerEndGap float64
}

type routeFunc func(req RouteRequest, src, dst geometry.Point) Path

var routers = map[PathType]routeFunc{
	PathBezier:           routeBezier,
	PathOrthogonal:       routeOrthogonal,
	PathHorizontalBezier: routeHorizontalBezier,
	PathStraight:         routeStraight,
}

// Route computes the drawable path for req. It never fails: unknown styles and
// orthogonal requests without obstacle data come back as a bezier with Fallback set.
func Route(req RouteRequest) Path {
	src := req.Source.Add(req.SourceSide.Normal().Scale(req.MarkerStartGap))
	dst := req.Target.Add(req.TargetSide.Normal().Scale(req.MarkerEndGap))

	style := req.Style
	if style == "" {
		style = PathBezier
	}
	fn, ok := routers[style]
	fallback := !ok
	if style == PathOrthogonal && req.Obstacles == nil {
		fallback = true
	}
	if fallback {
		fn = routeBezier
	}

	p := fn(req, src, dst)
	p.Start, p.End = src, dst
	p.StartDir, p.EndDir = endDirections(p.Commands)
	if p.StartDir == (geometry.Point{}) {
		p.StartDir = req.SourceSide.Normal()
	}
	if p.EndDir == (geometry.Point{}) {
		p.EndDir = req.TargetSide.Normal().Scale(-1)
	}
	p.Fallback = p.Fallback || fallback
	return p
}

func routeStraight(req RouteRequest, src, dst geometry.Point) Path {
	var b pathBuilder
	b.moveTo(src)
	for _, bp := range req.BendPoints {
		b.lineTo(bp)
	}
	b.lineTo(dst)
	return Path{Commands: b.cmds}
}

func routeHorizontalBezier(_ RouteRequest, src, dst geometry.Point) Path {
	midX := (src.X + dst.X) / 2
	var b pathBuilder
	b.moveTo(src)
	b.cubicTo(geometry.Pt(midX, src.Y), geometry.Pt(midX, dst.Y), dst)
	return Path{Commands: b.cmds}
}

func routeBezier(req RouteRequest, src, dst geometry.Point) Path {
	curvature := req.Curvature
	if curvature <= 0 {
		curvature = DefaultCurvature
	}

	var b pathBuilder
	b.moveTo(src)
	if len(req.BendPoints) == 0 {
		c1 := controlPoint(req.SourceSide, src, dst, curvature)
		c2 := controlPoint(req.TargetSide, dst, src, curvature)
		b.cubicTo(c1, c2, dst)
		return Path{Commands: b.cmds}
	}

	// Catmull-Rom through the bend points, converted to cubic segments.
	pts := make([]geometry.Point, 0, len(req.BendPoints)+2)
	pts = append(pts, src)
	pts = append(pts, req.BendPoints...)
	pts = append(pts, dst)
	for i := 0; i < len(pts)-1; i++ {
		p0 := pts[max(i-1, 0)]
		p1 := pts[i]
		p2 := pts[i+1]
		p3 := pts[min(i+2, len(pts)-1)]
		c1 := p1.Add(p2.Sub(p0).Scale(1.0 / 6))
		c2 := p2.Sub(p3.Sub(p1).Scale(1.0 / 6))
		b.cubicTo(c1, c2, p2)
	}
	return Path{Commands: b.cmds}
}

func controlOffset(distance, curvature float64) float64 {
	if distance >= 0 {
		return 0.5 * distance
	}
	return curvature * 25 * math.Sqrt(-distance)
}

func controlPoint(side geometry.Side, p, other geometry.Point, curvature float64) geometry.Point {
	switch side {
	case geometry.SideLeft:
		return geometry.Pt(p.X-controlOffset(p.X-other.X, curvature), p.Y)
	case geometry.SideRight:
		return geometry.Pt(p.X+controlOffset(other.X-p.X, curvature), p.Y)
	case geometry.SideTop:
		return geometry.Pt(p.X, p.Y-controlOffset(p.Y-other.Y, curvature))
	case geometry.SideBottom:
		return geometry.Pt(p.X, p.Y+controlOffset(other.Y-p.Y, curvature))
	}
	return p
}

// endDirections returns unit vectors pointing out of the path at both ends.
func endDirections(cmds []Command) (start, end geometry.Point) {
	var pts []geometry.Point
	for _, c := range cmds {
		pts = append(pts, c.Points...)
	}
	if len(pts) < 2 {
		return geometry.Point{}, geometry.Point{}
	}
	first, last := pts[0], pts[len(pts)-1]
	for _, p := range pts[1:] {
		if p != first {
			start = first.Sub(p).Unit()
			break
		}
	}
	for i := len(pts) - 2; i >= 0; i-- {
		if pts[i] != last {
			end = last.Sub(pts[i]).Unit()
			break
		}
	}
	return start, end
}
