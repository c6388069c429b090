package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configurable paths and render settings.
type Config struct {
	// Paths
	ModelDir   string `json:"model_dir" yaml:"model_dir"`
	TextureDir string `json:"texture_dir" yaml:"texture_dir"`
	OutputDir  string `json:"output_dir" yaml:"output_dir"`

	// Render settings
	RenderSize  int     `json:"render_size" yaml:"render_size"`
	Supersample int     `json:"supersample" yaml:"supersample"`
	FillRatio   float64 `json:"fill_ratio" yaml:"fill_ratio"`
	Workers     int     `json:"workers" yaml:"workers"`
	Yaw         float64 `json:"yaw" yaml:"yaw"`
	Pitch       float64 `json:"pitch" yaml:"pitch"`
	ToonBands   int     `json:"toon_bands" yaml:"toon_bands"`

	// Outlines need the adjacency index list. A nil Outline means on.
	Outline      *bool   `json:"outline" yaml:"outline"`
	OutlineWidth float64 `json:"outline_width" yaml:"outline_width"`

	// AdjacencyWorkers > 1 builds adjacency with the parallel builder.
	AdjacencyWorkers int `json:"adjacency_workers" yaml:"adjacency_workers"`
}

// Load reads a config file. Files ending in .yaml or .yml are parsed as
// YAML, anything else as JSON. Fields not set in the file keep their zero
// values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		err = json.Unmarshal(data, &cfg)
	}
	if err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	ModelDir   string
	OutputDir  string
	Size       int
	Workers    int
	ToonBands  int
	NoOutline  bool
	AdjWorkers int
}

// Resolve applies flags over the file values and fills in defaults.
// CLI flags take priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	if flags.ModelDir != "" {
		c.ModelDir = flags.ModelDir
	}
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.Size > 0 {
		c.RenderSize = flags.Size
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.ToonBands > 0 {
		c.ToonBands = flags.ToonBands
	}
	if flags.NoOutline {
		off := false
		c.Outline = &off
	}
	if flags.AdjWorkers > 0 {
		c.AdjacencyWorkers = flags.AdjWorkers
	}

	if c.ModelDir == "" {
		c.ModelDir = "."
	}
	if c.TextureDir == "" {
		c.TextureDir = c.ModelDir
	} else if !filepath.IsAbs(c.TextureDir) {
		c.TextureDir = filepath.Join(c.ModelDir, c.TextureDir)
	}
	if c.OutputDir == "" {
		c.OutputDir = filepath.Join(c.ModelDir, "renders")
	}

	if c.RenderSize <= 0 {
		c.RenderSize = 256
	}
	if c.Supersample <= 0 {
		c.Supersample = 2
	}
	if c.FillRatio <= 0 || c.FillRatio > 1 {
		c.FillRatio = 0.9
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.Yaw == 0 && c.Pitch == 0 {
		c.Yaw, c.Pitch = 35, 25
	}
	if c.Outline == nil {
		on := true
		c.Outline = &on
	}
	if c.OutlineWidth <= 0 {
		c.OutlineWidth = 2
	}
}

// OutlineEnabled reports whether silhouettes are drawn.
func (c *Config) OutlineEnabled() bool {
	return c.Outline == nil || *c.Outline
}
