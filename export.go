package main

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"wirecanvas/connector"
	"wirecanvas/render/rastersurface"
	"wirecanvas/render/svgsurface"
)

var errNothingToExport = errors.New("nothing to export: the document has no drawable edges")

// renderHeadless draws doc once through factory, without a viewport or
// interaction state.
func renderHeadless(doc Document, opts connector.Options, factory connector.SurfaceFactory) (connector.Frame, error) {
	mgr := connector.NewManager(factory, opts)
	defer mgr.Destroy()
	mgr.SetSnapshot(doc.Nodes, doc.Edges)
	frame, err := mgr.Render()
	if err != nil {
		return connector.Frame{}, err
	}
	if len(frame.Edges) == 0 {
		return frame, errNothingToExport
	}
	return frame, nil
}

func nodeLabels(doc Document) map[string]string {
	labels := make(map[string]string, len(doc.Nodes))
	for _, n := range doc.Nodes {
		if n.Label != "" {
			labels[n.ID] = n.Label
		}
	}
	return labels
}

// exportSVG writes doc as an SVG document to w.
func exportSVG(doc Document, opts connector.Options, svgOpts svgsurface.Options, w io.Writer) error {
	if svgOpts.Labels == nil {
		svgOpts.Labels = nodeLabels(doc)
	}
	var surface *svgsurface.Surface
	factory := svgsurface.Factory(svgOpts, func(s *svgsurface.Surface) { surface = s })
	if _, err := renderHeadless(doc, opts, factory); err != nil {
		return err
	}
	if _, err := w.Write(surface.Bytes()); err != nil {
		return fmt.Errorf("write svg: %w", err)
	}
	return nil
}

// exportPNG rasterizes doc into a PNG file.
func exportPNG(doc Document, opts connector.Options, pngOpts rastersurface.Options, filename string) error {
	if pngOpts.Labels == nil {
		pngOpts.Labels = nodeLabels(doc)
	}
	var surface *rastersurface.Surface
	factory := rastersurface.Factory(pngOpts, func(s *rastersurface.Surface) { surface = s })
	if _, err := renderHeadless(doc, opts, factory); err != nil {
		return err
	}
	return surface.SavePNG(filename)
}

// exportFormat picks the export format from a file name.
func exportFormat(filename string) (string, error) {
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".svg", ".png":
		return ext[1:], nil
	default:
		return "", fmt.Errorf("unsupported export format %q (use .svg or .png)", ext)
	}
}
