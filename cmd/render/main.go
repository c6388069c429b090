package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"toon-mesh-renderer/internal/batch"
	"toon-mesh-renderer/internal/config"
	"toon-mesh-renderer/internal/raster"
	"toon-mesh-renderer/internal/texture"
)

func main() {
	// CLI flags
	configFile := flag.String("config", "", "Path to config file (.json, .yaml)")
	testN := flag.Int("test", 0, "Render only first N items for testing")
	only := flag.String("only", "", "Render only items whose name contains this")
	shapeList := flag.String("shapes", "", "Comma-separated shape specs to render, e.g. box,sphere:1:64")
	workers := flag.Int("workers", 0, "Number of worker goroutines (default: NumCPU)")
	modelDir := flag.String("models", "", "Directory scanned for .obj models (default: .)")
	outputDir := flag.String("output", "", "Output directory (default: <models>/renders)")
	size := flag.Int("size", 0, "Output image size in pixels (default: 256)")
	bands := flag.Int("bands", 0, "Toon shading bands (default: smooth)")
	noOutline := flag.Bool("no-outline", false, "Skip adjacency conversion and silhouette outlines")
	adjWorkers := flag.Int("adj-workers", 0, "Build adjacency with this many goroutines per mesh")

	flag.Parse()

	// Load config
	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	// CLI flags override config file
	cfg.Resolve(config.Flags{
		ModelDir:   *modelDir,
		OutputDir:  *outputDir,
		Size:       *size,
		Workers:    *workers,
		ToonBands:  *bands,
		NoOutline:  *noOutline,
		AdjWorkers: *adjWorkers,
	})

	// Collect items
	var items []batch.Item
	if *shapeList != "" {
		for _, spec := range strings.Split(*shapeList, ",") {
			if spec = strings.TrimSpace(spec); spec != "" {
				items = append(items, batch.ShapeItem(spec))
			}
		}
	} else {
		var err error
		items, err = batch.Discover(cfg.ModelDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error scanning models: %v\n", err)
			os.Exit(1)
		}
	}

	if *only != "" {
		var filtered []batch.Item
		for _, it := range items {
			if strings.Contains(it.Name, *only) {
				filtered = append(filtered, it)
			}
		}
		items = filtered
	}

	// Limit for testing
	if *testN > 0 && *testN < len(items) {
		items = items[:*testN]
	}

	if len(items) == 0 {
		fmt.Println("No items to render.")
		os.Exit(0)
	}

	// Build texture index
	texIndex := texture.BuildIndex(cfg.TextureDir)
	texCache := texture.NewCache(texIndex)
	fmt.Printf("Textures: %d indexed\n", texIndex.Len())

	mode := "outlined"
	if !cfg.OutlineEnabled() {
		mode = "plain"
	} else if cfg.AdjacencyWorkers > 1 {
		mode = fmt.Sprintf("outlined, %d adjacency workers", cfg.AdjacencyWorkers)
	}

	fmt.Printf("Toon mesh renderer → WebP (%s)\n", mode)
	fmt.Printf("Items: %d, Workers: %d\n", len(items), cfg.Workers)
	fmt.Printf("Output: %s\n", cfg.OutputDir)
	fmt.Println("------------------------------------------------------------")

	opts := raster.DefaultOptions()
	opts.Size = cfg.RenderSize
	opts.Camera = raster.Camera{Yaw: cfg.Yaw, Pitch: cfg.Pitch}
	opts.Light.ToonBands = cfg.ToonBands
	opts.OutlineWidth = cfg.OutlineWidth

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()

	// Run batch
	results := batch.Run(ctx, batch.Config{
		OutputDir:        cfg.OutputDir,
		Textures:         texCache,
		Render:           opts,
		Supersample:      cfg.Supersample,
		FillRatio:        cfg.FillRatio,
		Workers:          cfg.Workers,
		Outline:          cfg.OutlineEnabled(),
		AdjacencyWorkers: cfg.AdjacencyWorkers,
		Progress:         os.Stderr,
	}, items)

	elapsed := time.Since(start)
	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Done in %.1fs, %v\n", elapsed.Seconds(), texCache)

	manifest := batch.NewManifest(results)
	fmt.Printf("Rendered: %d/%d\n", manifest.Rendered, len(items))
	fmt.Printf("Topology: %d triangles, %d boundary edges, %d non-manifold edges\n",
		manifest.Topology.Triangles, manifest.Topology.BoundaryEdges, manifest.Topology.NonManifoldEdges)

	if manifest.Failed > 0 {
		fmt.Printf("\nFailed (%d):\n", manifest.Failed)
		shown := 0
		for _, r := range results {
			if r.Success {
				continue
			}
			if shown == 20 {
				fmt.Printf("  ... and %d more\n", manifest.Failed-shown)
				break
			}
			fmt.Printf("  %s: %s\n", r.Name, r.Error)
			shown++
		}
	}

	// Write manifest
	manifestPath := filepath.Join(cfg.OutputDir, "manifest.json")
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	if err := batch.WriteManifest(manifestPath, results); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: manifest write failed: %v\n", err)
	} else {
		fmt.Printf("Manifest: %s\n", manifestPath)
	}

	if manifest.Failed > 0 {
		os.Exit(1)
	}
}
