package mesh

import (
	"context"
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/require"
)

func quad() []Vertex {
	return []Vertex{
		{Position: mgl32.Vec3{0, 0, 0}, TexCoords: mgl32.Vec2{0, 0}},
		{Position: mgl32.Vec3{1, 0, 0}, TexCoords: mgl32.Vec2{1, 0}},
		{Position: mgl32.Vec3{1, 1, 0}, TexCoords: mgl32.Vec2{1, 1}},
		{Position: mgl32.Vec3{0, 1, 0}, TexCoords: mgl32.Vec2{0, 1}},
	}
}

func TestNewValidatesIndices(t *testing.T) {
	tests := []struct {
		name    string
		indices []uint32
		wantErr error
	}{
		{"valid", []uint32{0, 1, 2, 0, 2, 3}, nil},
		{"empty", nil, nil},
		{"partial triangle", []uint32{0, 1, 2, 3}, ErrIndexCount},
		{"out of range", []uint32{0, 1, 4}, ErrIndexRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := New(quad(), tt.indices, nil)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				require.Nil(t, m)
				return
			}
			require.NoError(t, err)
			require.Equal(t, Triangles, m.Mode())
			require.Equal(t, len(tt.indices)/3, m.TriangleCount())
		})
	}
}

func TestNewCopiesInput(t *testing.T) {
	indices := []uint32{0, 1, 2}
	m, err := New(quad(), indices, nil)
	require.NoError(t, err)

	indices[0] = 3
	require.Equal(t, []uint32{0, 1, 2}, m.Indices())
}

func TestConvertToAdjacency(t *testing.T) {
	m, err := New(quad(), []uint32{0, 1, 2, 0, 2, 3}, nil)
	require.NoError(t, err)

	require.NoError(t, m.ConvertToAdjacency())
	require.Equal(t, TrianglesAdjacency, m.Mode())
	require.Equal(t, []uint32{0, 2, 1, 0, 2, 3, 0, 1, 2, 0, 3, 2}, m.Indices())
	require.Equal(t, 2, m.TriangleCount())

	// The builder cannot tell the forms apart; the store refuses instead.
	err = m.ConvertToAdjacency()
	require.ErrorIs(t, err, ErrAlreadyAdjacent)
	require.Len(t, m.Indices(), 12)

	require.NoError(t, m.RestorePlain())
	require.Equal(t, Triangles, m.Mode())
	require.Equal(t, []uint32{0, 1, 2, 0, 2, 3}, m.Indices())

	require.ErrorIs(t, m.RestorePlain(), ErrNotAdjacent)
}

func TestConvertToAdjacencyParallel(t *testing.T) {
	m, err := New(quad(), []uint32{0, 1, 2, 0, 2, 3}, nil)
	require.NoError(t, err)

	require.NoError(t, m.ConvertToAdjacencyParallel(context.Background(), 2))
	require.Equal(t, []uint32{0, 2, 1, 0, 2, 3, 0, 1, 2, 0, 3, 2}, m.Indices())
	require.ErrorIs(t, m.ConvertToAdjacencyParallel(context.Background(), 2), ErrAlreadyAdjacent)
}

func TestSamplerBindings(t *testing.T) {
	textures := []Texture{
		{ID: 10, Kind: Diffuse},
		{ID: 11, Kind: Specular},
		{ID: 12, Kind: Diffuse},
		{ID: 13, Kind: Normal},
		{ID: 14, Kind: Height},
		{ID: 15, Kind: Diffuse},
	}
	got := SamplerBindings(textures)
	names := make([]string, len(got))
	for i, b := range got {
		require.Equal(t, i, b.Unit)
		require.Equal(t, textures[i], b.Texture)
		names[i] = b.Name
	}
	require.Equal(t, []string{"diffuse1", "specular1", "diffuse2", "normal1", "height1", "diffuse3"}, names)

	// A second call starts numbering again.
	again := SamplerBindings(textures[:1])
	require.Equal(t, "diffuse1", again[0].Name)
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in   string
		want Kind
	}{
		{"diffuse", Diffuse},
		{"texture_specular", Specular},
		{"Normal", Normal},
		{"texture_height", Height},
	}
	for _, tt := range tests {
		got, err := ParseKind(tt.in)
		require.NoError(t, err, tt.in)
		require.Equal(t, tt.want, got)
	}
	_, err := ParseKind("emissive")
	require.Error(t, err)
}

func TestVertexEncodingRoundTrip(t *testing.T) {
	vs := []Vertex{{
		Position:  mgl32.Vec3{1, 2, 3},
		Normal:    mgl32.Vec3{0, 0, 1},
		TexCoords: mgl32.Vec2{0.25, 0.75},
		Tangent:   mgl32.Vec3{1, 0, 0},
		Bitangent: mgl32.Vec3{0, 1, 0},
	}}
	data := EncodeVertices(vs)
	require.Len(t, data, VertexLayout.Stride)

	got, err := DecodeVertices(data)
	require.NoError(t, err)
	require.Equal(t, vs, got)

	_, err = DecodeVertices(data[:10])
	require.Error(t, err)
}

type call struct {
	op    string
	buf   Buffer
	mode  Mode
	count int
}

type fakeBackend struct {
	next    Buffer
	live    map[Buffer]bool
	calls   []call
	drawErr error
	names   []string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{live: make(map[Buffer]bool)}
}

func (f *fakeBackend) Upload(vertices []byte, layout Layout, indices []uint32) (Buffer, error) {
	f.next++
	f.live[f.next] = true
	f.calls = append(f.calls, call{op: "upload", buf: f.next, count: len(indices)})
	return f.next, nil
}

func (f *fakeBackend) Release(buf Buffer) error {
	if !f.live[buf] {
		return errors.New("double release")
	}
	delete(f.live, buf)
	f.calls = append(f.calls, call{op: "release", buf: buf})
	return nil
}

func (f *fakeBackend) DrawElements(buf Buffer, mode Mode, count int, bindings []SamplerBinding) error {
	f.calls = append(f.calls, call{op: "draw", buf: buf, mode: mode, count: count})
	for _, b := range bindings {
		f.names = append(f.names, b.Name)
	}
	return f.drawErr
}

func TestDrawRequiresUpload(t *testing.T) {
	m, err := New(quad(), []uint32{0, 1, 2}, nil)
	require.NoError(t, err)
	require.ErrorIs(t, m.Draw(), ErrNotUploaded)
}

func TestUploadDrawClose(t *testing.T) {
	m, err := New(quad(), []uint32{0, 1, 2, 0, 2, 3}, []Texture{{ID: 1, Kind: Diffuse}, {ID: 2, Kind: Diffuse}})
	require.NoError(t, err)
	b := newFakeBackend()

	require.NoError(t, m.Upload(b))
	require.NoError(t, m.Draw())

	require.NoError(t, m.ConvertToAdjacency())
	require.NoError(t, m.Draw())

	require.NoError(t, m.Close())
	require.NoError(t, m.Close())
	require.Empty(t, b.live)

	require.Equal(t, []call{
		{op: "upload", buf: 1, count: 6},
		{op: "draw", buf: 1, mode: Triangles, count: 6},
		{op: "release", buf: 1},
		{op: "upload", buf: 2, count: 12},
		{op: "draw", buf: 2, mode: TrianglesAdjacency, count: 12},
		{op: "release", buf: 2},
	}, b.calls)
	require.Equal(t, []string{"diffuse1", "diffuse2", "diffuse1", "diffuse2"}, b.names)
}

func TestDrawWrapsBackendError(t *testing.T) {
	m, err := New(quad(), []uint32{0, 1, 2}, nil)
	require.NoError(t, err)
	b := newFakeBackend()
	b.drawErr = errors.New("lost device")

	require.NoError(t, m.Upload(b))
	require.ErrorIs(t, m.Draw(), b.drawErr)
	require.NoError(t, m.Close())
}
