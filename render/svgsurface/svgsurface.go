// Package svgsurface draws connector frames as SVG documents.
package svgsurface

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"strings"

	svg "github.com/ajstarks/svgo"

	"wirecanvas/connector"
	"wirecanvas/pkg/geometry"
)

// Options controls what ends up in the document besides the edges.
type Options struct {
	// ShowNodes draws node outlines. Without it nodes are invisible
	// placeholders, as in an overlay on top of a host canvas.
	ShowNodes bool
	// Labels maps node ids to the text drawn inside them.
	Labels map[string]string
	// Background fills the document when not empty.
	Background string
}

const (
	edgeColor     = "#4a5568"
	selectedColor = "#2f80ed"
	previewColor  = "#a0aec0"
	nodeColor     = "#cbd5e0"
	labelColor    = "#2d3748"
)

// Surface records draw calls and writes a complete SVG document on Flush.
type Surface struct {
	*connector.DisplayList
	opts Options
	out  io.Writer
	doc  bytes.Buffer
}

// New returns a surface covering bounds. Every Flush rewrites the document;
// when out is not nil each flushed document is also written to it.
func New(bounds geometry.Rect, out io.Writer, opts Options) *Surface {
	return &Surface{
		DisplayList: connector.NewDisplayList(bounds),
		opts:        opts,
		out:         out,
	}
}

// Factory returns a SurfaceFactory building SVG surfaces. created, when not
// nil, receives every surface the manager asks for.
func Factory(opts Options, created func(*Surface)) connector.SurfaceFactory {
	return func(bounds geometry.Rect) (connector.Surface, error) {
		s := New(bounds, nil, opts)
		if created != nil {
			created(s)
		}
		return s, nil
	}
}

// Bytes returns the document written by the last Flush.
func (s *Surface) Bytes() []byte { return s.doc.Bytes() }

func (s *Surface) Flush() error {
	if err := s.DisplayList.Flush(); err != nil {
		return err
	}
	s.doc.Reset()
	s.write(&s.doc)
	if s.out != nil {
		if _, err := s.out.Write(s.doc.Bytes()); err != nil {
			return fmt.Errorf("write svg: %w", err)
		}
	}
	return nil
}

func (s *Surface) write(w io.Writer) {
	b := s.Bounds
	width, height := int(math.Ceil(b.Width)), int(math.Ceil(b.Height))
	canvas := svg.New(w)
	canvas.Startview(width, height, int(math.Floor(b.X)), int(math.Floor(b.Y)), width, height)

	if len(s.Markers) > 0 {
		canvas.Def()
		for _, def := range s.Markers {
			writeMarker(canvas, def)
		}
		canvas.DefEnd()
	}

	if s.opts.Background != "" {
		canvas.Rect(int(math.Floor(b.X)), int(math.Floor(b.Y)), width, height, "fill:"+s.opts.Background)
	}

	canvas.Gid("nodes")
	for _, id := range s.NodeOrder {
		r := s.Nodes[id]
		style := "fill:none;stroke:none"
		if s.opts.ShowNodes {
			style = "fill:#ffffff;stroke:" + nodeColor + ";stroke-width:1"
		}
		canvas.Rect(int(r.X), int(r.Y), int(r.Width), int(r.Height), style, fmt.Sprintf(`data-node="%s"`, id))
		if label := s.opts.Labels[id]; label != "" && s.opts.ShowNodes {
			c := r.Center()
			canvas.Text(int(c.X), int(c.Y), label, "text-anchor:middle;dominant-baseline:middle;font-family:monospace;font-size:12px;fill:"+labelColor)
		}
	}
	canvas.Gend()

	canvas.Gid("edges")
	for _, e := range s.Edges {
		attrs := []string{edgeStyle(e)}
		if id := e.Style.MarkerStart.ID(); id != "" {
			attrs = append(attrs, fmt.Sprintf(`marker-start="url(#%s)"`, id))
		}
		if id := e.Style.MarkerEnd.ID(); id != "" {
			attrs = append(attrs, fmt.Sprintf(`marker-end="url(#%s)"`, id))
		}
		if e.ID != "" {
			attrs = append(attrs, fmt.Sprintf(`data-edge="%s"`, e.ID))
		}
		canvas.Path(e.Path.SVG(), attrs...)
	}
	canvas.Gend()

	for _, h := range s.Handles {
		r := int(math.Max(1, math.Round(h.Radius)))
		canvas.Circle(int(math.Round(h.Center.X)), int(math.Round(h.Center.Y)), r, "fill:#ffffff;stroke:"+selectedColor+";stroke-width:1.5")
	}
	canvas.End()
}

func edgeStyle(e connector.RenderedEdge) string {
	color := edgeColor
	switch {
	case e.Preview:
		color = previewColor
	case e.Selected:
		color = selectedColor
	}
	width := e.Style.StrokeWidth
	if width <= 0 {
		width = 2
	}
	parts := []string{
		"fill:none",
		"stroke:" + color,
		fmt.Sprintf("stroke-width:%g", width),
	}
	if len(e.Style.Dash) > 0 {
		dash := make([]string, len(e.Style.Dash))
		for i, d := range e.Style.Dash {
			dash[i] = fmt.Sprintf("%g", d)
		}
		parts = append(parts, "stroke-dasharray:"+strings.Join(dash, ","))
	}
	return strings.Join(parts, ";")
}

// writeMarker emits one marker definition in a 10x10 box scaled to the
// marker size. Arrows point along +x; orient flips them at path starts.
func writeMarker(canvas *svg.SVG, def connector.MarkerDef) {
	size := int(math.Max(1, math.Round(def.Marker.Size)))
	refX := 10
	if def.Marker.Type == connector.MarkerCircle {
		refX = 5
	}
	canvas.Marker(def.ID, refX, 5, size, size,
		`viewBox="0 0 10 10"`, `orient="auto-start-reverse"`, `markerUnits="userSpaceOnUse"`)
	switch def.Marker.Type {
	case connector.MarkerArrow:
		canvas.Path("M0 0 L10 5 L0 10", "fill:none;stroke:"+edgeColor+";stroke-width:1.5")
	case connector.MarkerArrowClosed:
		canvas.Polygon([]int{0, 10, 0}, []int{0, 5, 10}, "fill:"+edgeColor)
	case connector.MarkerCircle:
		canvas.Circle(5, 5, 4, "fill:#ffffff;stroke:"+edgeColor+";stroke-width:1.5")
	}
	canvas.MarkerEnd()
}
