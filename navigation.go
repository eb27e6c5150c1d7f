package main

import (
	"math"

	"wirecanvas/connector"
	"wirecanvas/pkg/geometry"
)

// MeasuredNode reports the node rectangle as laid out on the canvas.
func (b *Buffer) MeasuredNode(id string) (geometry.Rect, bool) {
	n, ok := b.canvas.Node(id)
	if !ok {
		return geometry.Rect{}, false
	}
	return n.Bounds, true
}

func (b *Buffer) Viewport() connector.Viewport { return b.view }

// PanBy moves the content by dx, dy screen pixels.
func (b *Buffer) PanBy(dx, dy float64) {
	b.view.X += dx
	b.view.Y += dy
}

// ZoomAt multiplies the zoom by factor, keeping the canvas point under
// screen fixed.
func (b *Buffer) ZoomAt(screen geometry.Point, factor float64) {
	old := b.view.Scale
	if old <= 0 {
		old = 1
	}
	scale := math.Max(minZoom, math.Min(maxZoom, old*factor))
	anchor := b.view.ToCanvas(screen)
	b.view.Scale = scale
	b.view.X = screen.X - anchor.X*scale
	b.view.Y = screen.Y - anchor.Y*scale
}

// Resize records the terminal area the canvas is drawn into.
func (b *Buffer) Resize(cols, rows int) {
	b.view.Width = float64(cols * cellWidth)
	b.view.Height = float64(rows * cellHeight)
}

// handleNavigation pans or zooms the current buffer. It reports whether key
// was a navigation key.
func (m *model) handleNavigation(key string) bool {
	buf := m.getCurrentBuffer()
	if buf == nil {
		return false
	}
	speed := m.getMoveSpeed(key)
	switch key {
	case "h", "left", "H", "shift+left":
		buf.PanBy(speed*cellWidth, 0)
	case "l", "right", "L", "shift+right":
		buf.PanBy(-speed*cellWidth, 0)
	case "k", "up", "K", "shift+up":
		buf.PanBy(0, speed*cellHeight)
	case "j", "down", "J", "shift+down":
		buf.PanBy(0, -speed*cellHeight)
	case "+", "=":
		buf.ZoomAt(m.viewCenter(), zoomStep)
	case "-", "_":
		buf.ZoomAt(m.viewCenter(), 1/zoomStep)
	case "0":
		buf.view.Scale, buf.view.X, buf.view.Y = 1, 0, 0
	default:
		return false
	}
	buf.ctrl.Render()
	return true
}

func (m *model) getMoveSpeed(key string) float64 {
	switch key {
	case "H", "L", "K", "J", "shift+left", "shift+right", "shift+up", "shift+down":
		return 8
	default:
		return 2
	}
}

func (m *model) viewCenter() geometry.Point {
	return geometry.Pt(float64(m.width*cellWidth)/2, float64(m.canvasRows()*cellHeight)/2)
}
