package batch

import (
	"context"
	"fmt"
	"image"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/HugoSmits86/nativewebp"
	"github.com/schollz/progressbar/v3"

	"toon-mesh-renderer/internal/adjacency"
	"toon-mesh-renderer/internal/mesh"
	"toon-mesh-renderer/internal/objfile"
	"toon-mesh-renderer/internal/postprocess"
	"toon-mesh-renderer/internal/raster"
	"toon-mesh-renderer/internal/shapes"
	"toon-mesh-renderer/internal/texture"
)

// shapePrefix marks an item source as a procedural shape spec.
const shapePrefix = "shape:"

// Config holds all shared resources for a batch run.
type Config struct {
	OutputDir   string
	Textures    *texture.Cache // may be nil
	Render      raster.Options // Size is the final image size
	Supersample int
	FillRatio   float64
	Workers     int

	// Adjacency controls index conversion. With Outline off meshes are
	// drawn from their plain index lists.
	Outline          bool
	AdjacencyWorkers int

	Progress io.Writer // progress bar output, nil for none
}

// Item is one model to render.
type Item struct {
	Name   string `json:"name"`   // output name, relative path without extension
	Source string `json:"source"` // .obj path or "shape:<spec>"
}

// Result holds the outcome of processing one item.
type Result struct {
	Item
	Image    string           `json:"image,omitempty"`
	Meshes   int              `json:"meshes"`
	Vertices int              `json:"vertices"`
	Topology adjacency.Report `json:"topology"`
	Elapsed  time.Duration    `json:"elapsed_ns"`
	Success  bool             `json:"success"`
	Error    string           `json:"error,omitempty"`
}

// ShapeItem returns an item rendering the procedural shape spec.
func ShapeItem(spec string) Item {
	name := strings.NewReplacer(":", "_", ".", "_").Replace(spec)
	return Item{Name: "shape_" + name, Source: shapePrefix + spec}
}

// Discover walks dir for .obj files. Item names keep the directory
// structure so outputs mirror the model tree.
func Discover(dir string) ([]Item, error) {
	var items []Item
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".obj") {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		items = append(items, Item{
			Name:   filepath.ToSlash(strings.TrimSuffix(rel, filepath.Ext(rel))),
			Source: path,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("batch: scan %s: %w", dir, err)
	}
	return items, nil
}

// Run processes all items using a worker pool. Items not started before ctx
// is cancelled fail with the context error.
func Run(ctx context.Context, cfg Config, items []Item) []Result {
	total := len(items)
	results := make([]Result, total)

	progress := cfg.Progress
	if progress == nil {
		progress = io.Discard
	}
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(progress),
		progressbar.OptionSetDescription("rendering"),
		progressbar.OptionSetItsString("items"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionThrottle(100*time.Millisecond),
	)

	workers := max(cfg.Workers, 1)
	itemChan := make(chan int, workers*2)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range itemChan {
				if err := ctx.Err(); err != nil {
					results[idx] = Result{Item: items[idx], Error: err.Error()}
				} else {
					results[idx] = processItem(ctx, cfg, items[idx])
				}
				_ = bar.Add(1)
			}
		}()
	}

	for i := range items {
		itemChan <- i
	}
	close(itemChan)

	wg.Wait()
	_ = bar.Finish()

	return results
}

func processItem(ctx context.Context, cfg Config, item Item) Result {
	start := time.Now()
	res := Result{Item: item}
	fail := func(err error) Result {
		res.Error = err.Error()
		res.Elapsed = time.Since(start)
		return res
	}

	meshes, err := loadMeshes(item.Source, cfg.Textures)
	if err != nil {
		return fail(err)
	}
	if len(meshes) == 0 {
		return fail(fmt.Errorf("no meshes in %s", item.Source))
	}
	res.Meshes = len(meshes)

	for _, m := range meshes {
		rep, err := adjacency.Analyze(m.Indices())
		if err != nil {
			return fail(err)
		}
		res.Topology = res.Topology.Add(rep)
		res.Vertices += m.VertexCount()

		if !cfg.Outline {
			continue
		}
		if cfg.AdjacencyWorkers > 1 {
			err = m.ConvertToAdjacencyParallel(ctx, cfg.AdjacencyWorkers)
		} else {
			err = m.ConvertToAdjacency()
		}
		if err != nil {
			return fail(err)
		}
	}

	img, err := draw(cfg, meshes)
	if err != nil {
		return fail(err)
	}

	size := cfg.Render.Size
	if cfg.Supersample > 1 {
		img = postprocess.Downsample(img, size)
	}
	if cfg.FillRatio > 0 {
		img = postprocess.Frame(img, size, cfg.FillRatio)
	}

	res.Image = item.Name + ".webp"
	if err := writeWebP(filepath.Join(cfg.OutputDir, filepath.FromSlash(res.Image)), img); err != nil {
		res.Image = ""
		return fail(err)
	}

	res.Success = true
	res.Elapsed = time.Since(start)
	return res
}

func loadMeshes(source string, textures *texture.Cache) ([]*mesh.Mesh, error) {
	if spec, ok := strings.CutPrefix(source, shapePrefix); ok {
		s, err := shapes.Parse(spec)
		if err != nil {
			return nil, err
		}
		m, err := shapes.Build(s)
		if err != nil {
			return nil, err
		}
		return []*mesh.Mesh{m}, nil
	}

	if _, err := os.Stat(source); os.IsNotExist(err) {
		return nil, fmt.Errorf("model not found: %s", source)
	}
	var loader objfile.TextureLoader
	if textures != nil {
		loader = textures
	}
	return objfile.Load(source, loader)
}

// draw uploads every mesh to a fresh device, queues its draw and releases
// it again before rendering the frame.
func draw(cfg Config, meshes []*mesh.Mesh) (*image.NRGBA, error) {
	opts := cfg.Render
	opts.Size *= max(cfg.Supersample, 1)
	opts.Margin *= max(cfg.Supersample, 1)
	opts.OutlineWidth *= float64(max(cfg.Supersample, 1))
	opts.Outline = cfg.Outline

	var resolver texture.Resolver
	if cfg.Textures != nil {
		resolver = cfg.Textures
	}
	dev := raster.NewDevice(opts, resolver)

	for _, m := range meshes {
		if err := m.Upload(dev); err != nil {
			return nil, err
		}
		err := m.Draw()
		if cerr := m.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return nil, err
		}
	}
	if n := dev.Live(); n != 0 {
		return nil, fmt.Errorf("raster: %d buffers not released", n)
	}
	return dev.Render(), nil
}

func writeWebP(path string, img *image.NRGBA) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := nativewebp.Encode(f, img, nil); err != nil {
		return fmt.Errorf("WebP encode: %w", err)
	}
	return f.Close()
}
