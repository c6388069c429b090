package batch

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/image/webp"

	"toon-mesh-renderer/internal/raster"
)

const quadOBJ = `# unit quad
v -1 -1 0
v 1 -1 0
v 1 1 0
v -1 1 0
vt 0 0
vt 1 0
vt 1 1
vt 0 1
f 1/1 2/2 3/3 4/4
`

func testConfig(t *testing.T) Config {
	t.Helper()
	opts := raster.DefaultOptions()
	opts.Size = 32
	return Config{
		OutputDir:   t.TempDir(),
		Render:      opts,
		Supersample: 2,
		FillRatio:   0.9,
		Workers:     2,
		Outline:     true,
	}
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "props"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "quad.obj"), []byte(quadOBJ), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "props", "crate.OBJ"), []byte(quadOBJ), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "props", "crate.mtl"), nil, 0644))

	items, err := Discover(dir)
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, "props/crate", items[0].Name)
	require.Equal(t, "quad", items[1].Name)
}

func TestShapeItem(t *testing.T) {
	it := ShapeItem("sphere:1.5:16")
	require.Equal(t, "shape_sphere_1_5_16", it.Name)
	require.Equal(t, "shape:sphere:1.5:16", it.Source)
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	objPath := filepath.Join(dir, "quad.obj")
	require.NoError(t, os.WriteFile(objPath, []byte(quadOBJ), 0644))

	cfg := testConfig(t)
	cfg.AdjacencyWorkers = 2
	items := []Item{
		{Name: "models/quad", Source: objPath},
		ShapeItem("box:1:8"),
		{Name: "missing", Source: filepath.Join(dir, "missing.obj")},
		ShapeItem("torus"),
	}
	results := Run(context.Background(), cfg, items)
	require.Len(t, results, 4)

	quad := results[0]
	require.True(t, quad.Success, quad.Error)
	require.Equal(t, "models/quad.webp", quad.Image)
	require.Equal(t, 1, quad.Meshes)
	require.Equal(t, 4, quad.Vertices)
	require.Equal(t, 2, quad.Topology.Triangles)
	require.Equal(t, 1, quad.Topology.InteriorEdges)
	require.Equal(t, 4, quad.Topology.BoundaryEdges)

	f, err := os.Open(filepath.Join(cfg.OutputDir, "models", "quad.webp"))
	require.NoError(t, err)
	defer f.Close()
	img, err := webp.Decode(f)
	require.NoError(t, err)
	require.Equal(t, 32, img.Bounds().Dx())
	require.Equal(t, 32, img.Bounds().Dy())

	box := results[1]
	require.True(t, box.Success, box.Error)
	require.Positive(t, box.Topology.Triangles)
	require.FileExists(t, filepath.Join(cfg.OutputDir, box.Image))

	require.False(t, results[2].Success)
	require.Contains(t, results[2].Error, "model not found")
	require.False(t, results[3].Success)
	require.NotEmpty(t, results[3].Error)
}

func TestRunWithoutOutline(t *testing.T) {
	cfg := testConfig(t)
	cfg.Outline = false
	results := Run(context.Background(), cfg, []Item{ShapeItem("sphere:1:8")})
	require.True(t, results[0].Success, results[0].Error)
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	results := Run(ctx, testConfig(t), []Item{ShapeItem("box")})
	require.False(t, results[0].Success)
	require.Equal(t, context.Canceled.Error(), results[0].Error)
}

func TestWriteManifest(t *testing.T) {
	results := []Result{
		{Item: Item{Name: "a"}, Image: "a.webp", Success: true},
		{Item: Item{Name: "b"}, Error: "model not found: b.obj"},
	}
	results[0].Topology.Triangles = 12
	results[1].Topology.Triangles = 5

	path := filepath.Join(t.TempDir(), "manifest.json")
	require.NoError(t, WriteManifest(path, results))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var m Manifest
	require.NoError(t, json.Unmarshal(data, &m))
	require.Equal(t, 1, m.Rendered)
	require.Equal(t, 1, m.Failed)
	require.Equal(t, 12, m.Topology.Triangles)
	require.Len(t, m.Items, 2)
	require.Equal(t, "a", m.Items[0].Name)
}
