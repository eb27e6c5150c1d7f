package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"wirecanvas/connector"
)

// Config holds wirecanvas settings.
type Config struct {
	Canvas CanvasConfig `toml:"canvas"`
	Spread SpreadConfig `toml:"spread"`
	Files  FilesConfig  `toml:"files"`
	Log    LogConfig    `toml:"log"`
}

// CanvasConfig controls how new edges look and how the engine hit tests.
type CanvasConfig struct {
	PathType     string  `toml:"path_type"`
	Marker       string  `toml:"marker"`
	MarkerSize   float64 `toml:"marker_size"`
	MarkerGap    float64 `toml:"marker_gap"`
	Padding      float64 `toml:"padding"`
	HitTolerance float64 `toml:"hit_tolerance"`
	HandleRadius float64 `toml:"handle_radius"`
	LaneSpacing  float64 `toml:"lane_spacing"`
	BorderRadius float64 `toml:"border_radius"`
	Curvature    float64 `toml:"curvature"`
}

// SpreadConfig controls how edges sharing a node side are fanned out.
type SpreadConfig struct {
	BandMin     float64 `toml:"band_min"`
	BandMax     float64 `toml:"band_max"`
	AlignMargin float64 `toml:"align_margin"`
}

// FilesConfig controls where documents and exports are written.
type FilesConfig struct {
	SaveDirectory string `toml:"save_directory"`
	Confirmations bool   `toml:"confirmations"`
}

// LogConfig controls the debug log. The TUI owns the terminal, so log output
// goes to File or nowhere.
type LogConfig struct {
	File string `toml:"file"`
}

// Default returns the default configuration.
func Default() *Config {
	opts := connector.DefaultOptions()
	return &Config{
		Canvas: CanvasConfig{
			PathType:     string(opts.DefaultStyle.Path),
			Marker:       string(opts.DefaultStyle.MarkerEnd.Type),
			MarkerSize:   opts.DefaultStyle.MarkerEnd.Size,
			MarkerGap:    opts.MarkerGap,
			Padding:      opts.Padding,
			HitTolerance: opts.HitTolerance,
			HandleRadius: opts.HandleRadius,
			LaneSpacing:  opts.LaneSpacing,
			BorderRadius: opts.DefaultStyle.BorderRadius,
			Curvature:    opts.DefaultStyle.Curvature,
		},
		Spread: SpreadConfig{
			BandMin:     opts.Spread.BandMin,
			BandMax:     opts.Spread.BandMax,
			AlignMargin: opts.Spread.AlignMargin,
		},
		Files: FilesConfig{Confirmations: true},
	}
}

// ConfigDir returns the wirecanvas config directory path.
func ConfigDir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "wirecanvas")
}

func configPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// Load reads the config file. A missing or unreadable file yields the defaults.
func Load() *Config {
	cfg := Default()
	data, err := os.ReadFile(configPath())
	if err != nil {
		return cfg
	}
	_ = toml.Unmarshal(data, cfg)
	cfg.Files.SaveDirectory = expandHome(cfg.Files.SaveDirectory)
	cfg.Log.File = expandHome(cfg.Log.File)
	return cfg
}

// Save writes the config to disk.
func Save(cfg *Config) error {
	path := configPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

func expandHome(p string) string {
	if !strings.HasPrefix(p, "~") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}

// GetSavePath places a bare file name in the save directory.
func (c *Config) GetSavePath(filename string) string {
	if c.Files.SaveDirectory == "" || filepath.IsAbs(filename) || strings.ContainsRune(filename, os.PathSeparator) {
		return filename
	}
	os.MkdirAll(c.Files.SaveDirectory, 0o755)
	return filepath.Join(c.Files.SaveDirectory, filename)
}

// EngineOptions maps the config onto connector options. Unknown path or
// marker names fall back to the engine defaults.
func (c *Config) EngineOptions() connector.Options {
	opts := connector.DefaultOptions()
	cv := c.Canvas

	if pt := connector.PathType(cv.PathType); isPathType(pt) {
		opts.DefaultStyle.Path = pt
	}
	if mt := connector.MarkerType(cv.Marker); isMarkerType(mt) {
		opts.DefaultStyle.MarkerEnd.Type = mt
	}
	if cv.MarkerSize > 0 {
		opts.DefaultStyle.MarkerEnd.Size = cv.MarkerSize
	}
	if cv.MarkerGap >= 0 {
		opts.MarkerGap = cv.MarkerGap
	}
	if cv.Padding > 0 {
		opts.Padding = cv.Padding
	}
	if cv.HitTolerance > 0 {
		opts.HitTolerance = cv.HitTolerance
	}
	if cv.HandleRadius > 0 {
		opts.HandleRadius = cv.HandleRadius
	}
	if cv.LaneSpacing > 0 {
		opts.LaneSpacing = cv.LaneSpacing
	}
	if cv.BorderRadius >= 0 {
		opts.DefaultStyle.BorderRadius = cv.BorderRadius
	}
	if cv.Curvature > 0 {
		opts.DefaultStyle.Curvature = cv.Curvature
	}

	sp := c.Spread
	if sp.BandMin >= 0 && sp.BandMax <= 1 && sp.BandMin < sp.BandMax {
		opts.Spread.BandMin = sp.BandMin
		opts.Spread.BandMax = sp.BandMax
	}
	if sp.AlignMargin >= 0 && sp.AlignMargin < 0.5 {
		opts.Spread.AlignMargin = sp.AlignMargin
	}
	return opts
}

func isPathType(pt connector.PathType) bool {
	switch pt {
	case connector.PathBezier, connector.PathOrthogonal, connector.PathHorizontalBezier, connector.PathStraight:
		return true
	}
	return false
}

func isMarkerType(mt connector.MarkerType) bool {
	for _, t := range connector.MarkerTypes {
		if t == mt {
			return true
		}
	}
	return false
}
