package mesh

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Vertex is one entry of a mesh's vertex buffer.
type Vertex struct {
	Position  mgl32.Vec3
	Normal    mgl32.Vec3
	TexCoords mgl32.Vec2
	Tangent   mgl32.Vec3
	Bitangent mgl32.Vec3
}

// Attribute describes one float group inside an encoded vertex.
type Attribute struct {
	Name       string
	Location   int
	Components int
	Offset     int // bytes from the start of the vertex
}

// Layout is the interleaved attribute layout of an encoded vertex buffer.
type Layout struct {
	Stride     int
	Attributes []Attribute
}

// VertexLayout is the fixed layout produced by EncodeVertices:
// position, normal, texcoord, tangent, bitangent as float32 groups.
var VertexLayout = Layout{
	Stride: 56,
	Attributes: []Attribute{
		{Name: "position", Location: 0, Components: 3, Offset: 0},
		{Name: "normal", Location: 1, Components: 3, Offset: 12},
		{Name: "texcoord", Location: 2, Components: 2, Offset: 24},
		{Name: "tangent", Location: 3, Components: 3, Offset: 32},
		{Name: "bitangent", Location: 4, Components: 3, Offset: 44},
	},
}

const floatsPerVertex = 14

// EncodeVertices packs vertices into a little-endian float32 buffer in
// VertexLayout order.
func EncodeVertices(vs []Vertex) []byte {
	out := make([]byte, len(vs)*VertexLayout.Stride)
	off := 0
	put := func(f float32) {
		binary.LittleEndian.PutUint32(out[off:], math.Float32bits(f))
		off += 4
	}
	for i := range vs {
		v := &vs[i]
		for _, f := range v.Position {
			put(f)
		}
		for _, f := range v.Normal {
			put(f)
		}
		for _, f := range v.TexCoords {
			put(f)
		}
		for _, f := range v.Tangent {
			put(f)
		}
		for _, f := range v.Bitangent {
			put(f)
		}
	}
	return out
}

// DecodeVertices is the inverse of EncodeVertices.
func DecodeVertices(data []byte) ([]Vertex, error) {
	if len(data)%VertexLayout.Stride != 0 {
		return nil, fmt.Errorf("mesh: vertex buffer of %d bytes is not a multiple of stride %d", len(data), VertexLayout.Stride)
	}
	vs := make([]Vertex, len(data)/VertexLayout.Stride)
	var f [floatsPerVertex]float32
	for i := range vs {
		base := i * VertexLayout.Stride
		for k := range f {
			f[k] = math.Float32frombits(binary.LittleEndian.Uint32(data[base+k*4:]))
		}
		vs[i] = Vertex{
			Position:  mgl32.Vec3{f[0], f[1], f[2]},
			Normal:    mgl32.Vec3{f[3], f[4], f[5]},
			TexCoords: mgl32.Vec2{f[6], f[7]},
			Tangent:   mgl32.Vec3{f[8], f[9], f[10]},
			Bitangent: mgl32.Vec3{f[11], f[12], f[13]},
		}
	}
	return vs, nil
}
