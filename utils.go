package main

import (
	"bytes"
	"fmt"

	"github.com/atotto/clipboard"
	"gopkg.in/yaml.v3"

	"wirecanvas/connector"
	"wirecanvas/pkg/geometry"
	"wirecanvas/render/svgsurface"
)

// newBuffer wires a canvas to its own engine instance.
func newBuffer(canvas *Canvas, filename string, opts connector.Options) *Buffer {
	b := &Buffer{
		canvas:   canvas,
		filename: filename,
		view:     connector.Viewport{Scale: 1},
	}
	b.mgr = connector.NewManager(connector.DisplayListFactory(func(dl *connector.DisplayList) {
		b.display = dl
	}), opts)
	b.ctrl = connector.NewController(b, b.mgr, connector.Callbacks{
		OnEdgesChange: b.onEdgesChange,
	})
	b.bus = connector.NewGestureBus()
	b.ctrl.Attach(b.bus)
	b.sync()
	return b
}

// onEdgesChange stores a committed edge list. The controller already works
// from it, so no snapshot push is needed here.
func (b *Buffer) onEdgesChange(edges []connector.Edge) {
	before := b.canvas.Document()
	b.canvas.SetEdges(edges)
	b.recordAction(ActionEditEdges, before, b.canvas.Document())
}

// sync pushes the canvas into the engine and redraws.
func (b *Buffer) sync() {
	b.ctrl.SetSnapshot(b.canvas.Nodes(), b.canvas.Edges())
}

// displayList returns what the engine drew last, or nil.
func (b *Buffer) displayList() *connector.DisplayList {
	if b.mgr.Surface() == nil {
		return nil
	}
	return b.display
}

func (b *Buffer) close() {
	b.ctrl.Detach()
	b.mgr.Destroy()
}

func (m *model) getCurrentBuffer() *Buffer {
	if len(m.buffers) == 0 {
		return nil
	}
	return m.buffers[m.currentBufferIndex]
}

func (m *model) getCanvas() *Canvas {
	if buf := m.getCurrentBuffer(); buf != nil {
		return buf.canvas
	}
	return nil
}

func (m *model) addNewBuffer(canvas *Canvas, filename string) *Buffer {
	buf := newBuffer(canvas, filename, m.engine)
	buf.Resize(m.width, m.canvasRows())
	m.buffers = append(m.buffers, buf)
	m.currentBufferIndex = len(m.buffers) - 1
	return buf
}

func (m *model) closeCurrentBuffer() {
	buf := m.getCurrentBuffer()
	if buf == nil {
		return
	}
	buf.close()
	m.buffers = append(m.buffers[:m.currentBufferIndex], m.buffers[m.currentBufferIndex+1:]...)
	if m.currentBufferIndex >= len(m.buffers) {
		m.currentBufferIndex = len(m.buffers) - 1
	}
	if len(m.buffers) == 0 {
		m.addNewBuffer(NewCanvas(), "")
	}
}

var nodeKinds = []connector.NodeKind{connector.KindDocument, connector.KindImage, connector.KindThread}

// addNode drops a node of the next kind under the pointer.
func (m *model) addNode() {
	buf := m.getCurrentBuffer()
	if buf == nil {
		return
	}
	kind := nodeKinds[m.nextKind%len(nodeKinds)]
	m.nextKind++

	at := buf.view.ToCanvas(m.cursor)
	before := buf.canvas.Document()
	label := fmt.Sprintf("%s %d", kind, len(buf.canvas.Nodes())+1)
	buf.canvas.AddNode(kind, at.Sub(geometry.Pt(defaultNodeWidth/2, defaultNodeHeight/2)), label)
	buf.recordAction(ActionAddNode, before, buf.canvas.Document())
	buf.sync()
}

// deleteNode removes a node and its edges.
func (m *model) deleteNode(id string) {
	buf := m.getCurrentBuffer()
	if buf == nil {
		return
	}
	before := buf.canvas.Document()
	if !buf.canvas.DeleteNode(id) {
		return
	}
	buf.recordAction(ActionDeleteNode, before, buf.canvas.Document())
	buf.sync()
}

// restyleSelected applies fn to the selected edge.
func (m *model) restyleSelected(fn func(*connector.EdgeStyle)) bool {
	buf := m.getCurrentBuffer()
	if buf == nil {
		return false
	}
	id := buf.ctrl.State().Selected
	e, ok := buf.canvas.Edge(id)
	if !ok {
		return false
	}
	before := buf.canvas.Document()
	fn(&e.Style)
	buf.canvas.UpdateEdge(e)
	buf.recordAction(ActionStyleEdge, before, buf.canvas.Document())
	buf.sync()
	return true
}

func cyclePath(s *connector.EdgeStyle) {
	s.Path = connector.PathTypes[(indexOf(connector.PathTypes, s.Path)+1)%len(connector.PathTypes)]
}

func cycleMarker(s *connector.EdgeStyle) {
	s.MarkerEnd.Type = connector.MarkerTypes[(indexOf(connector.MarkerTypes, s.MarkerEnd.Type)+1)%len(connector.MarkerTypes)]
	if s.MarkerEnd.Type != connector.MarkerNone && s.MarkerEnd.Size <= 0 {
		s.MarkerEnd.Size = 10
	}
}

func indexOf[T comparable](list []T, v T) int {
	for i, x := range list {
		if x == v {
			return i
		}
	}
	return -1
}

// copySVG puts the current document on the clipboard as SVG.
func (m *model) copySVG() error {
	canvas := m.getCanvas()
	if canvas == nil {
		return fmt.Errorf("no canvas available")
	}
	var buf bytes.Buffer
	if err := exportSVG(canvas.Document(), m.engine, svgsurface.Options{ShowNodes: true}, &buf); err != nil {
		return err
	}
	return clipboard.WriteAll(buf.String())
}

// copySelectedEdge puts the selected edge on the clipboard as YAML.
func (m *model) copySelectedEdge() error {
	buf := m.getCurrentBuffer()
	if buf == nil {
		return fmt.Errorf("no canvas available")
	}
	e, ok := buf.canvas.Edge(buf.ctrl.State().Selected)
	if !ok {
		return fmt.Errorf("no edge selected")
	}
	data, err := yaml.Marshal(e)
	if err != nil {
		return err
	}
	return clipboard.WriteAll(string(data))
}
