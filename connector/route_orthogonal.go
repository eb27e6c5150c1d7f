package connector

import (
	"math"
	"sort"

	"wirecanvas/pkg/geometry"
)

// routeOrthogonal draws axis-aligned segments with rounded corners. The route
// leaves each anchor along its side's normal, crosses over in a channel that is
// shifted by the edge's lane, and moves the channel around intervening nodes.
func routeOrthogonal(req RouteRequest, src, dst geometry.Point) Path {
	pts := simplifyPolyline(orthogonalPoints(req, src, dst))
	radius := req.BorderRadius
	if radius < 0 {
		radius = 0
	}
	return roundedPath(pts, radius)
}

func orthogonalPoints(req RouteRequest, src, dst geometry.Point) []geometry.Point {
	a := src.Add(req.SourceSide.Normal().Scale(stubLength))
	b := dst.Add(req.TargetSide.Normal().Scale(stubLength))

	if len(req.BendPoints) > 0 {
		pts := []geometry.Point{src, a}
		prev := a
		horizontal := !req.SourceSide.Vertical()
		for _, bp := range req.BendPoints {
			pts = appendElbow(pts, prev, bp, horizontal)
			prev = bp
			horizontal = !horizontal
		}
		pts = appendElbow(pts, prev, b, !req.TargetSide.Horizontal())
		return append(pts, dst)
	}

	obstacles := make([]geometry.Rect, len(req.Obstacles))
	for i, o := range req.Obstacles {
		obstacles[i] = o.Expand(obstacleMargin)
	}

	srcVertical := req.SourceSide.Vertical()
	dstVertical := req.TargetSide.Vertical()

	var mid []geometry.Point
	switch {
	case srcVertical && dstVertical:
		// Same algorithm with the axes swapped.
		t := channelRoute(transpose(a), transpose(b), transposeRects(obstacles), laneOffset(req))
		mid = transposeAll(t)
	case !srcVertical && !dstVertical:
		mid = channelRoute(a, b, obstacles, laneOffset(req))
	default:
		mid = cornerRoute(a, b, srcVertical, obstacles)
	}

	pts := make([]geometry.Point, 0, len(mid)+2)
	pts = append(pts, src)
	pts = append(pts, mid...)
	return append(pts, dst)
}

func laneOffset(req RouteRequest) float64 {
	if req.LaneCount < 2 {
		return 0
	}
	spacing := req.LaneSpacing
	if spacing <= 0 {
		spacing = DefaultLaneSpacing
	}
	return (float64(req.LaneIndex) - float64(req.LaneCount-1)/2) * spacing
}

// channelRoute connects a and b, both leaving horizontally, through a vertical
// channel. Candidates are tried nearest first and the first clear one wins.
func channelRoute(a, b geometry.Point, obstacles []geometry.Rect, lane float64) []geometry.Point {
	baseX := (a.X+b.X)/2 + lane
	base := []geometry.Point{a, geometry.Pt(baseX, a.Y), geometry.Pt(baseX, b.Y), b}
	if routeClear(base, obstacles) {
		return base
	}

	xs := make([]float64, 0, 2*len(obstacles))
	for _, o := range obstacles {
		xs = append(xs, o.X-1+lane, o.Right()+1+lane)
	}
	sortByDistance(xs, baseX)
	for _, x := range xs {
		candidate := []geometry.Point{a, geometry.Pt(x, a.Y), geometry.Pt(x, b.Y), b}
		if routeClear(candidate, obstacles) {
			return candidate
		}
	}

	// Detour: up or down to a free horizontal corridor, across, then back.
	midY := (a.Y + b.Y) / 2
	ys := make([]float64, 0, 2*len(obstacles))
	for _, o := range obstacles {
		ys = append(ys, o.Y-1+lane, o.Bottom()+1+lane)
	}
	sortByDistance(ys, midY)
	for _, y := range ys {
		candidate := []geometry.Point{a, geometry.Pt(a.X, y), geometry.Pt(b.X, y), b}
		if routeClear(candidate, obstacles) {
			return candidate
		}
	}
	return base
}

// cornerRoute connects a horizontal leg with a vertical one through one corner.
func cornerRoute(a, b geometry.Point, srcVertical bool, obstacles []geometry.Rect) []geometry.Point {
	first := []geometry.Point{a, geometry.Pt(b.X, a.Y), b}
	second := []geometry.Point{a, geometry.Pt(a.X, b.Y), b}
	if srcVertical {
		first, second = second, first
	}
	if routeClear(first, obstacles) {
		return first
	}
	if routeClear(second, obstacles) {
		return second
	}
	if srcVertical {
		t := channelRoute(transpose(a), transpose(b), transposeRects(obstacles), 0)
		if r := transposeAll(t); routeClear(r, obstacles) {
			return r
		}
		return first
	}
	if r := channelRoute(a, b, obstacles, 0); routeClear(r, obstacles) {
		return r
	}
	return first
}

func appendElbow(pts []geometry.Point, from, to geometry.Point, horizontalFirst bool) []geometry.Point {
	if from.X != to.X && from.Y != to.Y {
		if horizontalFirst {
			pts = append(pts, geometry.Pt(to.X, from.Y))
		} else {
			pts = append(pts, geometry.Pt(from.X, to.Y))
		}
	}
	return append(pts, to)
}

func routeClear(pts []geometry.Point, obstacles []geometry.Rect) bool {
	for i := 0; i < len(pts)-1; i++ {
		for _, o := range obstacles {
			if geometry.SegmentIntersectsRect(pts[i], pts[i+1], o) {
				return false
			}
		}
	}
	return true
}

func sortByDistance(vals []float64, origin float64) {
	sort.SliceStable(vals, func(i, j int) bool {
		return math.Abs(vals[i]-origin) < math.Abs(vals[j]-origin)
	})
}

// simplifyPolyline drops repeated points and merges collinear runs.
func simplifyPolyline(pts []geometry.Point) []geometry.Point {
	out := make([]geometry.Point, 0, len(pts))
	for _, p := range pts {
		if n := len(out); n > 0 && out[n-1] == p {
			continue
		}
		if n := len(out); n >= 2 && collinear(out[n-2], out[n-1], p) {
			out[n-1] = p
			continue
		}
		out = append(out, p)
	}
	return out
}

func collinear(a, b, c geometry.Point) bool {
	cross := (b.X-a.X)*(c.Y-b.Y) - (b.Y-a.Y)*(c.X-b.X)
	if math.Abs(cross) > 1e-9 {
		return false
	}
	// A reversal is collinear too but must keep its turning point.
	dot := (b.X-a.X)*(c.X-b.X) + (b.Y-a.Y)*(c.Y-b.Y)
	return dot >= 0
}

// roundedPath turns a polyline into line segments joined by quadratic corners.
func roundedPath(pts []geometry.Point, radius float64) Path {
	var b pathBuilder
	if len(pts) == 0 {
		return Path{}
	}
	b.moveTo(pts[0])
	for i := 1; i < len(pts)-1; i++ {
		prev, corner, next := pts[i-1], pts[i], pts[i+1]
		r := math.Min(radius, math.Min(corner.Distance(prev), corner.Distance(next))/2)
		if r <= 0 {
			b.lineTo(corner)
			continue
		}
		in := corner.Sub(prev).Unit()
		out := next.Sub(corner).Unit()
		b.lineTo(corner.Sub(in.Scale(r)))
		b.quadTo(corner, corner.Add(out.Scale(r)))
	}
	if len(pts) > 1 {
		b.lineTo(pts[len(pts)-1])
	}
	return Path{Commands: b.cmds}
}

func transpose(p geometry.Point) geometry.Point {
	return geometry.Point{X: p.Y, Y: p.X}
}

func transposeAll(pts []geometry.Point) []geometry.Point {
	out := make([]geometry.Point, len(pts))
	for i, p := range pts {
		out[i] = transpose(p)
	}
	return out
}

func transposeRects(rs []geometry.Rect) []geometry.Rect {
	out := make([]geometry.Rect, len(rs))
	for i, r := range rs {
		out[i] = geometry.Rect{X: r.Y, Y: r.X, Width: r.Height, Height: r.Width}
	}
	return out
}
