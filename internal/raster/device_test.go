package raster

import (
	"image"
	"image/color"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/require"

	"toon-mesh-renderer/internal/mesh"
)

// quad is a unit square in the XY plane facing +Z.
func quad(t *testing.T) *mesh.Mesh {
	t.Helper()
	vs := []mesh.Vertex{
		{Position: mgl32.Vec3{-1, -1, 0}, Normal: mgl32.Vec3{0, 0, 1}, TexCoords: mgl32.Vec2{0, 0}},
		{Position: mgl32.Vec3{1, -1, 0}, Normal: mgl32.Vec3{0, 0, 1}, TexCoords: mgl32.Vec2{1, 0}},
		{Position: mgl32.Vec3{1, 1, 0}, Normal: mgl32.Vec3{0, 0, 1}, TexCoords: mgl32.Vec2{1, 1}},
		{Position: mgl32.Vec3{-1, 1, 0}, Normal: mgl32.Vec3{0, 0, 1}, TexCoords: mgl32.Vec2{0, 1}},
	}
	m, err := mesh.New(vs, []uint32{0, 1, 2, 0, 2, 3}, nil)
	require.NoError(t, err)
	return m
}

func frontOptions() Options {
	opts := DefaultOptions()
	opts.Size = 64
	opts.Camera = Camera{}
	return opts
}

func countColor(img *image.NRGBA, c color.NRGBA) int {
	n := 0
	for i := 0; i < len(img.Pix); i += 4 {
		if img.Pix[i] == c.R && img.Pix[i+1] == c.G && img.Pix[i+2] == c.B && img.Pix[i+3] == c.A {
			n++
		}
	}
	return n
}

func render(t *testing.T, opts Options, m *mesh.Mesh) *image.NRGBA {
	t.Helper()
	dev := NewDevice(opts, nil)
	require.NoError(t, m.Upload(dev))
	require.NoError(t, m.Draw())
	require.NoError(t, m.Close())
	require.Equal(t, 0, dev.Live())
	return dev.Render()
}

func TestRenderFillsFrontFace(t *testing.T) {
	img := render(t, frontOptions(), quad(t))
	require.Equal(t, 64, img.Bounds().Dx())
	require.Equal(t, uint8(255), img.NRGBAAt(32, 32).A)
	require.Equal(t, uint8(0), img.NRGBAAt(0, 0).A, "margin stays clear")
}

func TestRenderCullsBackFace(t *testing.T) {
	opts := frontOptions()
	opts.Camera.Yaw = 180
	img := render(t, opts, quad(t))
	require.Equal(t, 64*64, countColor(img, color.NRGBA{}))
}

func TestOutlineOnlyForAdjacency(t *testing.T) {
	opts := frontOptions()
	black := opts.OutlineColor

	plain := render(t, opts, quad(t))
	require.Zero(t, countColor(plain, black))

	m := quad(t)
	require.NoError(t, m.ConvertToAdjacency())
	adj := render(t, opts, m)
	require.Positive(t, countColor(adj, black))

	// The shared diagonal is interior and both faces are visible.
	require.NotEqual(t, black, adj.NRGBAAt(32, 32))

	opts.Outline = false
	require.Zero(t, countColor(render(t, opts, m), black))
}

func TestSilhouetteEdges(t *testing.T) {
	view := []mgl64.Vec3{{-1, -1, 0}, {1, -1, 0}, {1, 1, 0}, {-1, 1, 0}}
	// Quad adjacency: the first triangle's diagonal borders the second.
	tuple := []uint32{0, 2, 1, 0, 2, 3}
	edges := silhouetteEdges(view, tuple)
	require.Equal(t, [][2]uint32{{0, 1}, {1, 2}}, edges)

	// Reversed winding faces away.
	require.Nil(t, silhouetteEdges(view, []uint32{0, 1, 2, 3, 1, 0}))
}

func TestDeviceBufferAccounting(t *testing.T) {
	dev := NewDevice(frontOptions(), nil)
	m := quad(t)
	require.NoError(t, m.Upload(dev))
	require.Equal(t, 1, dev.Live())

	// Converting marks the mesh dirty; Draw re-uploads and releases the old
	// buffer.
	require.NoError(t, m.ConvertToAdjacency())
	require.NoError(t, m.Draw())
	require.Equal(t, 1, dev.Live())
	require.Equal(t, 1, dev.Pending())

	require.NoError(t, m.Close())
	require.NoError(t, m.Close())
	require.Equal(t, 0, dev.Live())

	require.ErrorIs(t, dev.Release(42), ErrUnknownBuffer)
	require.ErrorIs(t, dev.DrawElements(42, mesh.Triangles, 3, nil), ErrUnknownBuffer)

	dev.Render()
	require.Equal(t, 0, dev.Pending())
}

func TestDeviceRejectsBadUpload(t *testing.T) {
	dev := NewDevice(frontOptions(), nil)
	data := mesh.EncodeVertices(make([]mesh.Vertex, 2))
	_, err := dev.Upload(data, mesh.VertexLayout, []uint32{0, 1, 2})
	require.Error(t, err)
	_, err = dev.Upload(data, mesh.Layout{Stride: 12}, []uint32{0, 1, 1})
	require.Error(t, err)
}

type solidTextures struct{ img *image.NRGBA }

func (s solidTextures) Image(id uint32) *image.NRGBA {
	if id != 1 {
		return nil
	}
	return s.img
}

func TestDiffuseTextureIsSampled(t *testing.T) {
	red := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for i := 0; i < len(red.Pix); i += 4 {
		red.Pix[i], red.Pix[i+3] = 255, 255
	}
	vs := quad(t).Vertices()
	m, err := mesh.New(vs, []uint32{0, 1, 2, 0, 2, 3}, []mesh.Texture{{ID: 1, Kind: mesh.Diffuse}})
	require.NoError(t, err)

	dev := NewDevice(frontOptions(), solidTextures{red})
	require.NoError(t, m.Upload(dev))
	require.NoError(t, m.Draw())
	px := dev.Render().NRGBAAt(32, 32)
	require.Greater(t, px.R, uint8(100))
	require.Zero(t, px.G)
	require.Zero(t, px.B)
}
