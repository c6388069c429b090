// Package mesh holds the geometry of one drawable unit: vertices, the
// current index list and the textures bound when it is drawn.
package mesh

import (
	"context"
	"errors"
	"fmt"

	"toon-mesh-renderer/internal/adjacency"
)

var (
	ErrIndexCount      = adjacency.ErrIndexCount
	ErrIndexRange      = errors.New("index out of vertex range")
	ErrAlreadyAdjacent = errors.New("index list already has adjacency")
	ErrNotAdjacent     = errors.New("index list has no adjacency")
	ErrNotUploaded     = errors.New("mesh has not been uploaded")
)

// Mode is the primitive mode matching the stored index list.
type Mode uint8

const (
	Triangles          Mode = iota // 3 indices per triangle
	TrianglesAdjacency             // 6 indices per triangle
)

func (m Mode) String() string {
	switch m {
	case Triangles:
		return "triangles"
	case TrianglesAdjacency:
		return "triangles_adjacency"
	}
	return fmt.Sprintf("mode(%d)", uint8(m))
}

// IndicesPerTriangle returns 3 or 6.
func (m Mode) IndicesPerTriangle() int {
	if m == TrianglesAdjacency {
		return 6
	}
	return 3
}

// Mesh owns vertex data, exactly one index list (plain or with adjacency)
// and texture references. Vertex order is fixed at creation.
type Mesh struct {
	Name string

	vertices []Vertex
	indices  []uint32
	textures []Texture
	mode     Mode

	// GPU side, set by Upload.
	backend Backend
	buf     Buffer
	dirty   bool
}

// New validates a triangle index list against the vertices and copies all
// three inputs into a new Mesh.
func New(vertices []Vertex, indices []uint32, textures []Texture) (*Mesh, error) {
	if len(indices)%3 != 0 {
		return nil, fmt.Errorf("mesh: %w (len %d)", ErrIndexCount, len(indices))
	}
	n := uint32(len(vertices))
	for i, idx := range indices {
		if idx >= n {
			return nil, fmt.Errorf("mesh: %w: indices[%d] = %d, %d vertices", ErrIndexRange, i, idx, n)
		}
	}
	return &Mesh{
		vertices: append([]Vertex(nil), vertices...),
		indices:  append([]uint32(nil), indices...),
		textures: append([]Texture(nil), textures...),
		mode:     Triangles,
	}, nil
}

func (m *Mesh) Vertices() []Vertex { return m.vertices }
func (m *Mesh) Indices() []uint32 { return m.indices }
func (m *Mesh) Textures() []Texture { return m.textures }
func (m *Mesh) Mode() Mode { return m.mode }
func (m *Mesh) VertexCount() int { return len(m.vertices) }
func (m *Mesh) TriangleCount() int { return len(m.indices) / m.mode.IndicesPerTriangle() }

// ConvertToAdjacency replaces the plain index list with its adjacency form.
// The index count doubles and Mode becomes TrianglesAdjacency.
func (m *Mesh) ConvertToAdjacency() error {
	if m.mode == TrianglesAdjacency {
		return fmt.Errorf("mesh %q: %w", m.Name, ErrAlreadyAdjacent)
	}
	adj, err := adjacency.Build(m.indices)
	if err != nil {
		return fmt.Errorf("mesh %q: %w", m.Name, err)
	}
	m.setIndices(adj, TrianglesAdjacency)
	return nil
}

// ConvertToAdjacencyParallel is ConvertToAdjacency using
// adjacency.BuildParallel.
func (m *Mesh) ConvertToAdjacencyParallel(ctx context.Context, workers int) error {
	if m.mode == TrianglesAdjacency {
		return fmt.Errorf("mesh %q: %w", m.Name, ErrAlreadyAdjacent)
	}
	adj, err := adjacency.BuildParallel(ctx, m.indices, workers)
	if err != nil {
		return fmt.Errorf("mesh %q: %w", m.Name, err)
	}
	m.setIndices(adj, TrianglesAdjacency)
	return nil
}

// RestorePlain drops the adjacency slots and returns to a plain list.
func (m *Mesh) RestorePlain() error {
	if m.mode != TrianglesAdjacency {
		return fmt.Errorf("mesh %q: %w", m.Name, ErrNotAdjacent)
	}
	plain, err := adjacency.Plain(m.indices)
	if err != nil {
		return fmt.Errorf("mesh %q: %w", m.Name, err)
	}
	m.setIndices(plain, Triangles)
	return nil
}

func (m *Mesh) setIndices(indices []uint32, mode Mode) {
	m.indices = indices
	m.mode = mode
	if m.backend != nil {
		m.dirty = true
	}
}
