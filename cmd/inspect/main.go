package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"math"
	"os"
	"slices"
	"strings"
	"time"

	"toon-mesh-renderer/internal/adjacency"
	"toon-mesh-renderer/internal/mesh"
	"toon-mesh-renderer/internal/objfile"
	"toon-mesh-renderer/internal/shapes"
	"toon-mesh-renderer/internal/texture"
)

// pairwiseLimit caps the triangle count the quadratic builder is timed on.
const pairwiseLimit = 20000

type meshReport struct {
	Name      string           `json:"name"`
	Vertices  int              `json:"vertices"`
	Triangles int              `json:"triangles"`
	Samplers  []string         `json:"samplers,omitempty"`
	Topology  adjacency.Report `json:"topology"`
	Timings   map[string]int64 `json:"timings_us"`
}

func main() {
	asJSON := flag.Bool("json", false, "Print reports as JSON")
	workers := flag.Int("workers", 0, "Goroutines for the parallel builder (default: GOMAXPROCS)")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: inspect [-json] [-workers N] <model.obj | shape:spec>")
		os.Exit(2)
	}
	src := flag.Arg(0)

	meshes, err := load(src)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	var reports []meshReport
	for _, m := range meshes {
		rep, err := inspect(m, *workers)
		if err != nil {
			fmt.Printf("Error: mesh %q: %v\n", m.Name, err)
			os.Exit(1)
		}
		reports = append(reports, rep)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(reports); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	fmt.Printf("Meshes: %d\n", len(meshes))
	for i, m := range meshes {
		r := reports[i]
		fmt.Printf("  Mesh[%d] %q: verts=%d, tris=%d\n", i, r.Name, r.Vertices, r.Triangles)
		if len(r.Samplers) > 0 {
			fmt.Printf("    Samplers: %s\n", strings.Join(r.Samplers, ", "))
		}
		lo, hi := bounds(m.Vertices())
		fmt.Printf("    BBox: X[%.2f, %.2f] Y[%.2f, %.2f] Z[%.2f, %.2f]\n", lo[0], hi[0], lo[1], hi[1], lo[2], hi[2])

		t := r.Topology
		fmt.Printf("    Edges: interior=%d boundary=%d non-manifold=%d\n", t.InteriorEdges, t.BoundaryEdges, t.NonManifoldEdges)
		fmt.Printf("    Slots: matched=%d fallback=%d", t.MatchedSlots, t.FallbackSlots)
		switch {
		case t.Closed():
			fmt.Print(" (closed)")
		case !t.Manifold():
			fmt.Print(" (non-manifold, last match wins)")
		}
		fmt.Println()

		names := make([]string, 0, len(r.Timings))
		for name := range r.Timings {
			names = append(names, name)
		}
		slices.Sort(names)
		for _, name := range names {
			fmt.Printf("    %-9s %8dµs\n", name+":", r.Timings[name])
		}
	}
}

func load(src string) ([]*mesh.Mesh, error) {
	if spec, ok := strings.CutPrefix(src, "shape:"); ok {
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
	return objfile.Load(src, texture.NewCache(nil))
}

// inspect analyses m and times each adjacency builder, checking that they
// agree.
func inspect(m *mesh.Mesh, workers int) (meshReport, error) {
	indices := m.Indices()
	rep := meshReport{
		Name:      m.Name,
		Vertices:  m.VertexCount(),
		Triangles: m.TriangleCount(),
		Timings:   map[string]int64{},
	}
	for _, b := range mesh.SamplerBindings(m.Textures()) {
		rep.Samplers = append(rep.Samplers, fmt.Sprintf("%d=%s", b.Unit, b.Name))
	}

	var err error
	if rep.Topology, err = adjacency.Analyze(indices); err != nil {
		return rep, err
	}

	start := time.Now()
	want, err := adjacency.Build(indices)
	if err != nil {
		return rep, err
	}
	rep.Timings["build"] = time.Since(start).Microseconds()

	start = time.Now()
	got, err := adjacency.BuildParallel(context.Background(), indices, workers)
	if err != nil {
		return rep, err
	}
	rep.Timings["parallel"] = time.Since(start).Microseconds()
	if !slices.Equal(want, got) {
		return rep, errors.New("parallel builder disagrees")
	}

	if rep.Triangles <= pairwiseLimit {
		start = time.Now()
		got, err = adjacency.BuildPairwise(indices)
		if err != nil {
			return rep, err
		}
		rep.Timings["pairwise"] = time.Since(start).Microseconds()
		if !slices.Equal(want, got) {
			return rep, errors.New("pairwise builder disagrees")
		}
	}
	return rep, nil
}

func bounds(vs []mesh.Vertex) (lo, hi [3]float64) {
	lo = [3]float64{math.Inf(1), math.Inf(1), math.Inf(1)}
	hi = [3]float64{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for _, v := range vs {
		for k := 0; k < 3; k++ {
			lo[k] = math.Min(lo[k], float64(v.Position[k]))
			hi[k] = math.Max(hi[k], float64(v.Position[k]))
		}
	}
	return lo, hi
}
