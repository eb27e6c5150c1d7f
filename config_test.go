package main

import (
	"os"
	"path/filepath"
	"testing"

	"wirecanvas/connector"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Canvas.PathType != "bezier" {
		t.Errorf("expected path type bezier, got %q", cfg.Canvas.PathType)
	}
	if cfg.Canvas.Marker != "arrow-closed" {
		t.Errorf("expected marker arrow-closed, got %q", cfg.Canvas.Marker)
	}
	if cfg.Canvas.HitTolerance != 14 {
		t.Errorf("expected hit tolerance 14, got %v", cfg.Canvas.HitTolerance)
	}
	if cfg.Spread.BandMin != 0.35 || cfg.Spread.BandMax != 0.65 {
		t.Errorf("expected band 0.35..0.65, got %v..%v", cfg.Spread.BandMin, cfg.Spread.BandMax)
	}
	if !cfg.Files.Confirmations {
		t.Error("default confirmations should be enabled")
	}
}

func TestConfigDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/test-xdg")
	if dir := ConfigDir(); dir != "/tmp/test-xdg/wirecanvas" {
		t.Errorf("expected /tmp/test-xdg/wirecanvas, got %q", dir)
	}

	t.Setenv("XDG_CONFIG_HOME", "")
	home, _ := os.UserHomeDir()
	expected := filepath.Join(home, ".config", "wirecanvas")
	if dir := ConfigDir(); dir != expected {
		t.Errorf("expected %q, got %q", expected, dir)
	}
}

func TestSaveAndLoad(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg := Default()
	cfg.Canvas.PathType = "orthogonal"
	cfg.Canvas.LaneSpacing = 20
	cfg.Files.Confirmations = false
	if err := Save(cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded := Load()
	if loaded.Canvas.PathType != "orthogonal" {
		t.Errorf("expected orthogonal, got %q", loaded.Canvas.PathType)
	}
	if loaded.Canvas.LaneSpacing != 20 {
		t.Errorf("expected lane spacing 20, got %v", loaded.Canvas.LaneSpacing)
	}
	if loaded.Files.Confirmations {
		t.Error("expected confirmations to stay disabled")
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg := Load()
	if cfg.Canvas.Padding != 200 {
		t.Errorf("expected default padding 200, got %v", cfg.Canvas.Padding)
	}
}

func TestLoadPartialFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	os.MkdirAll(filepath.Join(dir, "wirecanvas"), 0o755)
	data := "[canvas]\nmarker = \"circle\"\n\n[log]\nfile = \"~/wirecanvas.log\"\n"
	if err := os.WriteFile(filepath.Join(dir, "wirecanvas", "config.toml"), []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := Load()
	if cfg.Canvas.Marker != "circle" {
		t.Errorf("expected circle, got %q", cfg.Canvas.Marker)
	}
	if cfg.Canvas.PathType != "bezier" {
		t.Errorf("expected untouched keys to keep defaults, got %q", cfg.Canvas.PathType)
	}
	home, _ := os.UserHomeDir()
	if cfg.Log.File != filepath.Join(home, "wirecanvas.log") {
		t.Errorf("expected ~ to be expanded, got %q", cfg.Log.File)
	}
}

func TestEngineOptions(t *testing.T) {
	cfg := Default()
	cfg.Canvas.PathType = "orthogonal"
	cfg.Canvas.Marker = "circle"
	cfg.Canvas.HitTolerance = 20
	cfg.Spread.BandMin, cfg.Spread.BandMax = 0.2, 0.8

	opts := cfg.EngineOptions()
	if opts.DefaultStyle.Path != connector.PathOrthogonal {
		t.Errorf("expected orthogonal, got %q", opts.DefaultStyle.Path)
	}
	if opts.DefaultStyle.MarkerEnd.Type != connector.MarkerCircle {
		t.Errorf("expected circle marker, got %q", opts.DefaultStyle.MarkerEnd.Type)
	}
	if opts.HitTolerance != 20 {
		t.Errorf("expected hit tolerance 20, got %v", opts.HitTolerance)
	}
	if opts.Spread.BandMin != 0.2 || opts.Spread.BandMax != 0.8 {
		t.Errorf("expected band 0.2..0.8, got %v..%v", opts.Spread.BandMin, opts.Spread.BandMax)
	}
}

func TestEngineOptionsRejectsBadValues(t *testing.T) {
	cfg := Default()
	cfg.Canvas.PathType = "zigzag"
	cfg.Canvas.Marker = "star"
	cfg.Spread.BandMin, cfg.Spread.BandMax = 0.7, 0.3

	opts := cfg.EngineOptions()
	def := connector.DefaultOptions()
	if opts.DefaultStyle.Path != def.DefaultStyle.Path {
		t.Errorf("expected default path, got %q", opts.DefaultStyle.Path)
	}
	if opts.DefaultStyle.MarkerEnd.Type != def.DefaultStyle.MarkerEnd.Type {
		t.Errorf("expected default marker, got %q", opts.DefaultStyle.MarkerEnd.Type)
	}
	if opts.Spread != def.Spread {
		t.Errorf("expected default spread, got %+v", opts.Spread)
	}
}

func TestGetSavePath(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "saves")
	cfg := Default()
	if got := cfg.GetSavePath("a.yaml"); got != "a.yaml" {
		t.Errorf("expected a.yaml without a save directory, got %q", got)
	}

	cfg.Files.SaveDirectory = dir
	if got := cfg.GetSavePath("a.yaml"); got != filepath.Join(dir, "a.yaml") {
		t.Errorf("expected file in save directory, got %q", got)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("expected save directory to be created: %v", err)
	}
	if got := cfg.GetSavePath("/abs/a.yaml"); got != "/abs/a.yaml" {
		t.Errorf("expected absolute path untouched, got %q", got)
	}
}
