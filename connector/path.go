package connector

import (
	"math"
	"strconv"
	"strings"

	"wirecanvas/pkg/geometry"
)

// Op is a path command opcode.
type Op int

const (
	OpMoveTo Op = iota
	OpLineTo
	OpQuadTo
	OpCubicTo
)

// Command is one path segment. Points holds the control points followed by the
// end point: one for MoveTo/LineTo, two for QuadTo, three for CubicTo.
type Command struct {
	Op     Op
	Points []geometry.Point
}

// Path is the style-agnostic geometry produced by the router.
type Path struct {
	Commands []Command
	// Start and End are the visible ends after the marker gap was applied.
	Start, End geometry.Point
	// StartDir and EndDir are unit vectors pointing out of the path at each end,
	// used to orient markers.
	StartDir, EndDir geometry.Point
	// Fallback is set when the requested style could not be honoured.
	Fallback bool
}

type pathBuilder struct {
	cmds []Command
	cur  geometry.Point
}

func (b *pathBuilder) moveTo(p geometry.Point) {
	b.cmds = append(b.cmds, Command{Op: OpMoveTo, Points: []geometry.Point{p}})
	b.cur = p
}

func (b *pathBuilder) lineTo(p geometry.Point) {
	if p == b.cur {
		return
	}
	b.cmds = append(b.cmds, Command{Op: OpLineTo, Points: []geometry.Point{p}})
	b.cur = p
}

func (b *pathBuilder) quadTo(c, p geometry.Point) {
	b.cmds = append(b.cmds, Command{Op: OpQuadTo, Points: []geometry.Point{c, p}})
	b.cur = p
}

func (b *pathBuilder) cubicTo(c1, c2, p geometry.Point) {
	b.cmds = append(b.cmds, Command{Op: OpCubicTo, Points: []geometry.Point{c1, c2, p}})
	b.cur = p
}

// SVG returns the path in SVG path-data syntax.
func (p Path) SVG() string {
	var sb strings.Builder
	for i, c := range p.Commands {
		if i > 0 {
			sb.WriteByte(' ')
		}
		switch c.Op {
		case OpMoveTo:
			sb.WriteString("M")
		case OpLineTo:
			sb.WriteString("L")
		case OpQuadTo:
			sb.WriteString("Q")
		case OpCubicTo:
			sb.WriteString("C")
		}
		for j, pt := range c.Points {
			if j > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(formatFloat(pt.X))
			sb.WriteByte(' ')
			sb.WriteString(formatFloat(pt.Y))
		}
	}
	return sb.String()
}

// Flatten samples the path into a polyline. Curves are split into steps pieces.
func (p Path) Flatten(steps int) []geometry.Point {
	if steps < 1 {
		steps = 1
	}
	var pts []geometry.Point
	var cur geometry.Point
	for _, c := range p.Commands {
		switch c.Op {
		case OpMoveTo, OpLineTo:
			cur = c.Points[0]
			pts = append(pts, cur)
		case OpQuadTo:
			for i := 1; i <= steps; i++ {
				pts = append(pts, quadAt(cur, c.Points[0], c.Points[1], float64(i)/float64(steps)))
			}
			cur = c.Points[1]
		case OpCubicTo:
			for i := 1; i <= steps; i++ {
				pts = append(pts, cubicAt(cur, c.Points[0], c.Points[1], c.Points[2], float64(i)/float64(steps)))
			}
			cur = c.Points[2]
		}
	}
	return pts
}

// Distance returns the distance from pt to the stroke of the path.
func (p Path) Distance(pt geometry.Point) float64 {
	poly := p.Flatten(16)
	if len(poly) == 0 {
		return math.Inf(1)
	}
	if len(poly) == 1 {
		return pt.Distance(poly[0])
	}
	best := math.Inf(1)
	for i := 0; i < len(poly)-1; i++ {
		if d := geometry.DistanceToSegment(pt, poly[i], poly[i+1]); d < best {
			best = d
		}
	}
	return best
}

// Bounds returns the rectangle spanned by the path's points and control points.
func (p Path) Bounds() geometry.Rect {
	var r geometry.Rect
	first := true
	for _, c := range p.Commands {
		for _, pt := range c.Points {
			pr := geometry.Rect{X: pt.X, Y: pt.Y}
			if first {
				r, first = pr, false
				continue
			}
			r = r.Union(pr)
		}
	}
	return r
}

func quadAt(p0, p1, p2 geometry.Point, t float64) geometry.Point {
	mt := 1 - t
	return geometry.Point{
		X: mt*mt*p0.X + 2*mt*t*p1.X + t*t*p2.X,
		Y: mt*mt*p0.Y + 2*mt*t*p1.Y + t*t*p2.Y,
	}
}

func cubicAt(p0, p1, p2, p3 geometry.Point, t float64) geometry.Point {
	t2 := t * t
	t3 := t2 * t
	mt := 1 - t
	mt2 := mt * mt
	mt3 := mt2 * mt
	return geometry.Point{
		X: mt3*p0.X + 3*mt2*t*p1.X + 3*mt*t2*p2.X + t3*p3.X,
		Y: mt3*p0.Y + 3*mt2*t*p1.Y + 3*mt*t2*p2.Y + t3*p3.Y,
	}
}

func formatFloat(v float64) string {
	r := math.Round(v*100) / 100
	if r == 0 {
		return "0"
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}
