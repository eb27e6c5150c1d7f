package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"wirecanvas/render/rastersurface"
	"wirecanvas/render/svgsurface"
)

func TestExportSVG(t *testing.T) {
	var buf bytes.Buffer
	if err := exportSVG(sampleDocument(), testEngine(), svgsurface.Options{ShowNodes: true}, &buf); err != nil {
		t.Fatalf("export: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "<svg") {
		t.Errorf("expected an svg document, got:\n%s", out)
	}
	if !strings.Contains(out, "Brief") {
		t.Errorf("expected node labels in the output, got:\n%s", out)
	}
}

func TestExportPNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.png")
	if err := exportPNG(sampleDocument(), testEngine(), rastersurface.Options{Scale: 1, ShowNodes: true}, path); err != nil {
		t.Fatalf("export: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() == 0 {
		t.Error("expected a non-empty png")
	}
}

func TestExportWithoutEdges(t *testing.T) {
	doc := sampleDocument()
	doc.Edges = nil

	var buf bytes.Buffer
	if err := exportSVG(doc, testEngine(), svgsurface.Options{ShowNodes: true}, &buf); !errors.Is(err, errNothingToExport) {
		t.Errorf("expected errNothingToExport, got %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("expected nothing written, got %d bytes", buf.Len())
	}
}

func TestExportFormat(t *testing.T) {
	tests := map[string]string{"a.svg": "svg", "b.PNG": "png", "dir/c.png": "png"}
	for name, want := range tests {
		got, err := exportFormat(name)
		if err != nil || got != want {
			t.Errorf("exportFormat(%q): expected %q, got %q (%v)", name, want, got, err)
		}
	}
	if _, err := exportFormat("a.pdf"); err == nil {
		t.Error("expected an error for pdf")
	}
}

func TestExportCommand(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	dir := t.TempDir()
	in := filepath.Join(dir, "board.yaml")
	if err := SaveDocument(in, sampleDocument()); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"export", in})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("export command: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "board.svg")); err != nil {
		t.Errorf("expected board.svg next to the input: %v", err)
	}
	if !strings.Contains(out.String(), "exported 2 nodes, 1 edges") {
		t.Errorf("unexpected output %q", out.String())
	}
}
