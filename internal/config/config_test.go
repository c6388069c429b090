package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

func write(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadFormats(t *testing.T) {
	tests := []struct {
		name string
		file string
		body string
	}{
		{"json", "render.json", `{"model_dir": "models", "render_size": 128, "outline": false, "toon_bands": 3}`},
		{"yaml", "render.yaml", "model_dir: models\nrender_size: 128\noutline: false\ntoon_bands: 3\n"},
		{"yml", "render.yml", "model_dir: models\nrender_size: 128\noutline: false\ntoon_bands: 3\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(write(t, tt.file, tt.body))
			require.NoError(t, err)
			require.Equal(t, "models", cfg.ModelDir)
			require.Equal(t, 128, cfg.RenderSize)
			require.Equal(t, 3, cfg.ToonBands)
			require.NotNil(t, cfg.Outline)
			require.False(t, cfg.OutlineEnabled())
		})
	}
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.ErrorContains(t, err, "config: read")

	_, err = Load(write(t, "bad.json", "{"))
	require.ErrorContains(t, err, "config: parse")

	_, err = Load(write(t, "bad.yaml", "render_size: [1"))
	require.ErrorContains(t, err, "config: parse")
}

func TestResolveDefaults(t *testing.T) {
	var cfg Config
	cfg.Resolve(Flags{})

	require.Equal(t, ".", cfg.ModelDir)
	require.Equal(t, ".", cfg.TextureDir)
	require.Equal(t, "renders", cfg.OutputDir)
	require.Equal(t, 256, cfg.RenderSize)
	require.Equal(t, 2, cfg.Supersample)
	require.Equal(t, 0.9, cfg.FillRatio)
	require.Equal(t, runtime.NumCPU(), cfg.Workers)
	require.Equal(t, 35.0, cfg.Yaw)
	require.Equal(t, 25.0, cfg.Pitch)
	require.True(t, cfg.OutlineEnabled())
	require.Equal(t, 2.0, cfg.OutlineWidth)
	require.Zero(t, cfg.AdjacencyWorkers)
}

func TestResolveFlagsOverride(t *testing.T) {
	cfg := Config{ModelDir: "a", TextureDir: "tex", RenderSize: 64, Workers: 2}
	cfg.Resolve(Flags{OutputDir: "out", Size: 512, NoOutline: true, AdjWorkers: 4})

	require.Equal(t, "a", cfg.ModelDir)
	require.Equal(t, filepath.Join("a", "tex"), cfg.TextureDir)
	require.Equal(t, "out", cfg.OutputDir)
	require.Equal(t, 512, cfg.RenderSize)
	require.Equal(t, 2, cfg.Workers)
	require.False(t, cfg.OutlineEnabled())
	require.Equal(t, 4, cfg.AdjacencyWorkers)
}
