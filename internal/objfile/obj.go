// Package objfile loads Wavefront OBJ models into meshes, one mesh per
// material group.
package objfile

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"toon-mesh-renderer/internal/mesh"
)

// TextureLoader turns a texture path into a texture reference.
// texture.Cache implements it.
type TextureLoader interface {
	Load(path string, kind mesh.Kind) (mesh.Texture, error)
}

// Load reads an OBJ file. Material libraries and texture paths are resolved
// relative to the file's directory. textures may be nil.
func Load(path string, textures TextureLoader) ([]*mesh.Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("objfile: open %s: %w", path, err)
	}
	defer f.Close()

	meshes, err := Parse(f, filepath.Dir(path), textures)
	if err != nil {
		return nil, fmt.Errorf("objfile: %s: %w", path, err)
	}
	return meshes, nil
}

// group collects the triangles drawn with one material.
type group struct {
	material  string
	vertices  []mesh.Vertex
	hasNormal []bool
	indices   []uint32
	lookup    map[[3]int]uint32 // (v, vt, vn) → vertex index
}

func (g *group) vertex(p *parser, ref [3]int) uint32 {
	if idx, ok := g.lookup[ref]; ok {
		return idx
	}
	v := mesh.Vertex{Position: p.positions[ref[0]]}
	if ref[1] >= 0 {
		v.TexCoords = p.uvs[ref[1]]
	}
	if ref[2] >= 0 {
		v.Normal = p.normals[ref[2]]
	}
	idx := uint32(len(g.vertices))
	g.vertices = append(g.vertices, v)
	g.hasNormal = append(g.hasNormal, ref[2] >= 0)
	g.lookup[ref] = idx
	return idx
}

type parser struct {
	dir       string
	positions []mgl32.Vec3
	uvs       []mgl32.Vec2
	normals   []mgl32.Vec3
	materials map[string]material
	groups    []*group
	current   *group
}

// Parse reads OBJ data from r. dir is used to resolve mtllib statements.
func Parse(r io.Reader, dir string, textures TextureLoader) ([]*mesh.Mesh, error) {
	p := &parser{dir: dir, materials: make(map[string]material)}
	p.use("")

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		if err := p.statement(fields); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	var meshes []*mesh.Mesh
	for _, g := range p.groups {
		if len(g.indices) == 0 {
			continue
		}
		computeNormals(g)
		computeTangents(g)

		m, err := mesh.New(g.vertices, g.indices, p.textures(g.material, textures))
		if err != nil {
			return nil, err
		}
		m.Name = g.material
		if m.Name == "" {
			m.Name = "default"
		}
		meshes = append(meshes, m)
	}
	return meshes, nil
}

func (p *parser) statement(fields []string) error {
	switch fields[0] {
	case "v":
		v, err := parseFloats(fields[1:], 3)
		if err != nil {
			return err
		}
		p.positions = append(p.positions, mgl32.Vec3{v[0], v[1], v[2]})
	case "vt":
		v, err := parseFloats(fields[1:], 2)
		if err != nil {
			return err
		}
		p.uvs = append(p.uvs, mgl32.Vec2{v[0], v[1]})
	case "vn":
		v, err := parseFloats(fields[1:], 3)
		if err != nil {
			return err
		}
		p.normals = append(p.normals, mgl32.Vec3{v[0], v[1], v[2]})
	case "f":
		return p.face(fields[1:])
	case "usemtl":
		if len(fields) > 1 {
			p.use(fields[1])
		}
	case "mtllib":
		for _, name := range fields[1:] {
			path := filepath.Join(p.dir, name)
			mats, err := loadMTL(path)
			if err != nil {
				slog.Warn("objfile: material library not loaded", "path", path, "err", err)
				continue
			}
			for k, m := range mats {
				p.materials[k] = m
			}
		}
	}
	// o, g, s and anything else do not affect geometry.
	return nil
}

// use switches the current group, reusing an existing one for the material.
func (p *parser) use(material string) {
	for _, g := range p.groups {
		if g.material == material {
			p.current = g
			return
		}
	}
	p.current = &group{material: material, lookup: make(map[[3]int]uint32)}
	p.groups = append(p.groups, p.current)
}

// face triangulates a polygon as a fan around its first corner.
func (p *parser) face(corners []string) error {
	if len(corners) < 3 {
		return fmt.Errorf("face with %d corners", len(corners))
	}
	idx := make([]uint32, len(corners))
	for i, c := range corners {
		ref, err := p.reference(c)
		if err != nil {
			return err
		}
		idx[i] = p.current.vertex(p, ref)
	}
	for i := 2; i < len(idx); i++ {
		p.current.indices = append(p.current.indices, idx[0], idx[i-1], idx[i])
	}
	return nil
}

// reference parses "v", "v/vt", "v//vn" or "v/vt/vn" into zero-based
// indices, -1 for an absent part.
func (p *parser) reference(s string) ([3]int, error) {
	ref := [3]int{-1, -1, -1}
	counts := [3]int{len(p.positions), len(p.uvs), len(p.normals)}
	parts := strings.Split(s, "/")
	if len(parts) > 3 {
		return ref, fmt.Errorf("bad face corner %q", s)
	}
	for i, part := range parts {
		if part == "" {
			if i == 0 {
				return ref, fmt.Errorf("face corner %q has no vertex", s)
			}
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return ref, fmt.Errorf("bad face corner %q: %w", s, err)
		}
		switch {
		case n > 0:
			n--
		case n < 0:
			n += counts[i]
		default:
			return ref, fmt.Errorf("face corner %q uses index 0", s)
		}
		if n < 0 || n >= counts[i] {
			return ref, fmt.Errorf("face corner %q out of range", s)
		}
		ref[i] = n
	}
	return ref, nil
}

func parseFloats(fields []string, n int) ([]float32, error) {
	if len(fields) < n {
		return nil, fmt.Errorf("want %d values, got %d", n, len(fields))
	}
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return nil, err
		}
		out[i] = float32(f)
	}
	return out, nil
}

func (p *parser) textures(material string, loader TextureLoader) []mesh.Texture {
	mat, ok := p.materials[material]
	if !ok || loader == nil {
		return nil
	}
	var out []mesh.Texture
	for _, ref := range mat.maps {
		tex, err := loader.Load(ref.path, ref.kind)
		if err != nil {
			slog.Warn("objfile: texture not loaded", "material", material, "path", ref.path, "err", err)
			continue
		}
		out = append(out, tex)
	}
	return out
}
