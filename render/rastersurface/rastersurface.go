// Package rastersurface draws connector frames into an image using gg.
package rastersurface

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"math"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"

	"wirecanvas/connector"
	"wirecanvas/pkg/geometry"
)

// Options controls the raster output.
type Options struct {
	// Scale multiplies canvas pixels into image pixels.
	Scale     float64
	ShowNodes bool
	Labels    map[string]string
	FontSize  float64
}

var (
	background    = color.White
	edgeColor     = color.RGBA{0x4a, 0x55, 0x68, 0xff}
	selectedColor = color.RGBA{0x2f, 0x80, 0xed, 0xff}
	previewColor  = color.RGBA{0xa0, 0xae, 0xc0, 0xff}
	nodeColor     = color.RGBA{0xcb, 0xd5, 0xe0, 0xff}
	labelColor    = color.RGBA{0x2d, 0x37, 0x48, 0xff}
)

// Surface records draw calls and rasterizes them on Flush.
type Surface struct {
	*connector.DisplayList
	opts Options
	face font.Face
	img  image.Image
}

// New returns a surface covering bounds.
func New(bounds geometry.Rect, opts Options) (*Surface, error) {
	if opts.Scale <= 0 {
		opts.Scale = 1
	}
	if opts.FontSize <= 0 {
		opts.FontSize = 12
	}
	ttfFont, err := truetype.Parse(gomono.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}
	face := truetype.NewFace(ttfFont, &truetype.Options{
		Size:    opts.FontSize * opts.Scale,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	return &Surface{
		DisplayList: connector.NewDisplayList(bounds),
		opts:        opts,
		face:        face,
	}, nil
}

// Factory returns a SurfaceFactory building raster surfaces.
func Factory(opts Options, created func(*Surface)) connector.SurfaceFactory {
	return func(bounds geometry.Rect) (connector.Surface, error) {
		s, err := New(bounds, opts)
		if err != nil {
			return nil, err
		}
		if created != nil {
			created(s)
		}
		return s, nil
	}
}

// Image returns the picture produced by the last Flush, or nil.
func (s *Surface) Image() image.Image { return s.img }

func (s *Surface) Flush() error {
	if err := s.DisplayList.Flush(); err != nil {
		return err
	}
	s.img = s.draw().Image()
	return nil
}

// SavePNG writes the last flushed image to path.
func (s *Surface) SavePNG(path string) error {
	if s.img == nil {
		return fmt.Errorf("nothing to export")
	}
	return gg.SavePNG(path, s.img)
}

// EncodePNG writes the last flushed image to w.
func (s *Surface) EncodePNG(w io.Writer) error {
	if s.img == nil {
		return fmt.Errorf("nothing to export")
	}
	dc := gg.NewContextForImage(s.img)
	return dc.EncodePNG(w)
}

func (s *Surface) draw() *gg.Context {
	b := s.Bounds
	scale := s.opts.Scale
	w := int(math.Max(1, math.Ceil(b.Width*scale)))
	h := int(math.Max(1, math.Ceil(b.Height*scale)))

	dc := gg.NewContext(w, h)
	dc.SetColor(background)
	dc.Clear()
	dc.Scale(scale, scale)
	dc.Translate(-b.X, -b.Y)
	dc.SetFontFace(s.face)

	// Edges first so nodes appear on top.
	for _, e := range s.Edges {
		s.drawEdge(dc, e)
	}
	if s.opts.ShowNodes {
		for _, id := range s.NodeOrder {
			s.drawNode(dc, id, s.Nodes[id])
		}
	}
	for _, hm := range s.Handles {
		dc.DrawCircle(hm.Center.X, hm.Center.Y, hm.Radius)
		dc.SetColor(color.White)
		dc.FillPreserve()
		dc.SetColor(selectedColor)
		dc.SetLineWidth(1.5)
		dc.Stroke()
	}
	return dc
}

func (s *Surface) drawEdge(dc *gg.Context, e connector.RenderedEdge) {
	col := edgeColor
	switch {
	case e.Preview:
		col = previewColor
	case e.Selected:
		col = selectedColor
	}
	width := e.Style.StrokeWidth
	if width <= 0 {
		width = 2
	}

	dc.NewSubPath()
	for _, c := range e.Path.Commands {
		p := c.Points
		switch c.Op {
		case connector.OpMoveTo:
			dc.MoveTo(p[0].X, p[0].Y)
		case connector.OpLineTo:
			dc.LineTo(p[0].X, p[0].Y)
		case connector.OpQuadTo:
			dc.QuadraticTo(p[0].X, p[0].Y, p[1].X, p[1].Y)
		case connector.OpCubicTo:
			dc.CubicTo(p[0].X, p[0].Y, p[1].X, p[1].Y, p[2].X, p[2].Y)
		}
	}
	dc.SetColor(col)
	dc.SetLineWidth(width)
	dc.SetDash(e.Style.Dash...)
	dc.Stroke()
	dc.SetDash()

	drawMarker(dc, e.Style.MarkerStart, e.Path.Start, e.Path.StartDir, col)
	drawMarker(dc, e.Style.MarkerEnd, e.Path.End, e.Path.EndDir, col)
}

// drawMarker draws a marker with its tip at p, pointing along dir.
func drawMarker(dc *gg.Context, m connector.Marker, tip, dir geometry.Point, col color.Color) {
	if m.Type == connector.MarkerNone {
		return
	}
	size := m.Size
	if size <= 0 {
		size = 10
	}
	if dir.Len() == 0 {
		return
	}
	dir = dir.Unit()
	normal := geometry.Pt(-dir.Y, dir.X)
	base := tip.Sub(dir.Scale(size))
	left := base.Add(normal.Scale(size / 2))
	right := base.Sub(normal.Scale(size / 2))

	dc.SetColor(col)
	dc.SetLineWidth(1.5)
	switch m.Type {
	case connector.MarkerArrow:
		dc.MoveTo(left.X, left.Y)
		dc.LineTo(tip.X, tip.Y)
		dc.LineTo(right.X, right.Y)
		dc.Stroke()
	case connector.MarkerArrowClosed:
		dc.MoveTo(tip.X, tip.Y)
		dc.LineTo(left.X, left.Y)
		dc.LineTo(right.X, right.Y)
		dc.ClosePath()
		dc.Fill()
	case connector.MarkerCircle:
		c := tip.Sub(dir.Scale(size / 2))
		dc.DrawCircle(c.X, c.Y, size*0.4)
		dc.SetColor(color.White)
		dc.FillPreserve()
		dc.SetColor(col)
		dc.Stroke()
	}
}

func (s *Surface) drawNode(dc *gg.Context, id string, r geometry.Rect) {
	dc.DrawRoundedRectangle(r.X, r.Y, r.Width, r.Height, 4)
	dc.SetColor(color.White)
	dc.FillPreserve()
	dc.SetColor(nodeColor)
	dc.SetLineWidth(1)
	dc.Stroke()

	if label := s.opts.Labels[id]; label != "" {
		c := r.Center()
		dc.SetColor(labelColor)
		// The face is sized in image pixels; undo the context scale for text.
		dc.Push()
		dc.Translate(c.X, c.Y)
		dc.Scale(1/s.opts.Scale, 1/s.opts.Scale)
		dc.DrawStringAnchored(label, 0, 0, 0.5, 0.5)
		dc.Pop()
	}
}
