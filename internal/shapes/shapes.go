// Package shapes builds closed indexed meshes from signed distance
// functions using sdfx marching cubes.
package shapes

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/go-gl/mathgl/mgl32"

	"toon-mesh-renderer/internal/mesh"
)

// defaultCells controls marching cubes resolution.
const defaultCells = 48

// Spec names a procedural shape.
type Spec struct {
	Name  string  // box, rounded-box, sphere, cylinder
	Size  float64 // overall extent
	Cells int     // marching cubes cells along the longest axis
}

// Parse reads "name", "name:size" or "name:size:cells".
func Parse(s string) (Spec, error) {
	parts := strings.Split(s, ":")
	spec := Spec{Name: strings.ToLower(parts[0]), Size: 1, Cells: defaultCells}
	if len(parts) > 3 {
		return Spec{}, fmt.Errorf("shapes: bad spec %q", s)
	}
	if len(parts) > 1 {
		size, err := strconv.ParseFloat(parts[1], 64)
		if err != nil || size <= 0 {
			return Spec{}, fmt.Errorf("shapes: bad size in %q", s)
		}
		spec.Size = size
	}
	if len(parts) > 2 {
		cells, err := strconv.Atoi(parts[2])
		if err != nil || cells < 2 {
			return Spec{}, fmt.Errorf("shapes: bad cell count in %q", s)
		}
		spec.Cells = cells
	}
	return spec, nil
}

func (s Spec) String() string {
	return fmt.Sprintf("%s:%g:%d", s.Name, s.Size, s.Cells)
}

func (s Spec) solid() (sdf.SDF3, error) {
	switch s.Name {
	case "box":
		return sdf.Box3D(v3.Vec{X: s.Size, Y: s.Size, Z: s.Size}, 0)
	case "rounded-box":
		return sdf.Box3D(v3.Vec{X: s.Size, Y: s.Size, Z: s.Size}, s.Size*0.15)
	case "sphere":
		return sdf.Sphere3D(s.Size / 2)
	case "cylinder":
		return sdf.Cylinder3D(s.Size, s.Size/2, 0)
	}
	return nil, fmt.Errorf("shapes: unknown shape %q", s.Name)
}

// Build tessellates the shape and welds the triangle soup into an indexed
// mesh. Triangles that collapse during welding are dropped.
func Build(s Spec) (*mesh.Mesh, error) {
	solid, err := s.solid()
	if err != nil {
		return nil, err
	}
	cells := s.Cells
	if cells <= 0 {
		cells = defaultCells
	}
	triangles := render.ToTriangles(solid, render.NewMarchingCubesUniform(cells))
	if len(triangles) == 0 {
		return nil, fmt.Errorf("shapes: %s produced no triangles", s)
	}

	bb := solid.BoundingBox()
	w := newWelder(s.Size / float64(cells) * 1e-4)
	indices := make([]uint32, 0, len(triangles)*3)
	for _, tri := range triangles {
		n := tri.Normal()
		normal := mgl32.Vec3{float32(n.X), float32(n.Y), float32(n.Z)}
		var idx [3]uint32
		for j := 0; j < 3; j++ {
			idx[j] = w.add(tri[j], normal, bb)
		}
		if idx[0] == idx[1] || idx[1] == idx[2] || idx[0] == idx[2] {
			continue
		}
		indices = append(indices, idx[0], idx[1], idx[2])
	}

	m, err := mesh.New(w.finish(), indices, nil)
	if err != nil {
		return nil, fmt.Errorf("shapes: %s: %w", s, err)
	}
	m.Name = s.Name
	return m, nil
}

// welder merges vertices whose positions quantize to the same grid point.
type welder struct {
	step     float64
	lookup   map[[3]int64]uint32
	vertices []mesh.Vertex
	normals  []mgl32.Vec3
}

func newWelder(step float64) *welder {
	return &welder{step: step, lookup: make(map[[3]int64]uint32)}
}

func (w *welder) add(p v3.Vec, normal mgl32.Vec3, bb sdf.Box3) uint32 {
	key := [3]int64{
		int64(math.Round(p.X / w.step)),
		int64(math.Round(p.Y / w.step)),
		int64(math.Round(p.Z / w.step)),
	}
	if idx, ok := w.lookup[key]; ok {
		w.normals[idx] = w.normals[idx].Add(normal)
		return idx
	}
	size := bb.Size()
	idx := uint32(len(w.vertices))
	w.vertices = append(w.vertices, mesh.Vertex{
		Position: mgl32.Vec3{float32(p.X), float32(p.Y), float32(p.Z)},
		// Planar projection on the XY plane of the bounding box.
		TexCoords: mgl32.Vec2{
			float32((p.X - bb.Min.X) / size.X),
			float32((p.Y - bb.Min.Y) / size.Y),
		},
	})
	w.normals = append(w.normals, normal)
	w.lookup[key] = idx
	return idx
}

func (w *welder) finish() []mesh.Vertex {
	for i := range w.vertices {
		if w.normals[i].Len() > 0 {
			w.vertices[i].Normal = w.normals[i].Normalize()
		}
	}
	return w.vertices
}
