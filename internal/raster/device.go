package raster

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"sync"

	"github.com/go-gl/mathgl/mgl64"

	"toon-mesh-renderer/internal/mesh"
	"toon-mesh-renderer/internal/texture"
)

// ErrUnknownBuffer is returned for a buffer handle the device never issued
// or has already released.
var ErrUnknownBuffer = errors.New("unknown buffer")

// Options controls a Device's output.
type Options struct {
	Size         int // output width and height in pixels
	Margin       int // pixels kept clear around the fitted geometry
	Camera       Camera
	Light        LightConfig
	Base         color.NRGBA // fill color for untextured meshes
	Outline      bool        // draw silhouettes for adjacency draws
	OutlineWidth float64
	OutlineColor color.NRGBA
}

// DefaultOptions returns a 256px front-three-quarter view with black
// outlines.
func DefaultOptions() Options {
	return Options{
		Size:         256,
		Margin:       8,
		Camera:       Camera{Yaw: 35, Pitch: 25},
		Light:        DefaultLightConfig(),
		Base:         color.NRGBA{R: 200, G: 200, B: 210, A: 255},
		Outline:      true,
		OutlineWidth: 2,
		OutlineColor: color.NRGBA{A: 255},
	}
}

type buffer struct {
	vertices []mesh.Vertex
	indices  []uint32
}

type drawCall struct {
	buf   *buffer
	mode  mesh.Mode
	count int
	tex   *image.NRGBA
}

// Device is a software mesh.Backend. Draw calls are queued and rasterized
// together by Render so the view can be fitted to everything drawn.
type Device struct {
	opts     Options
	textures texture.Resolver

	mu      sync.Mutex
	next    mesh.Buffer
	buffers map[mesh.Buffer]*buffer
	calls   []drawCall
}

// NewDevice creates a device. textures may be nil, in which case every mesh
// is filled with Options.Base.
func NewDevice(opts Options, textures texture.Resolver) *Device {
	if opts.Size <= 0 {
		opts.Size = DefaultOptions().Size
	}
	return &Device{
		opts:     opts,
		textures: textures,
		buffers:  make(map[mesh.Buffer]*buffer),
	}
}

// Upload implements mesh.Backend.
func (d *Device) Upload(vertices []byte, layout mesh.Layout, indices []uint32) (mesh.Buffer, error) {
	if layout.Stride != mesh.VertexLayout.Stride {
		return 0, fmt.Errorf("raster: unsupported vertex stride %d", layout.Stride)
	}
	vs, err := mesh.DecodeVertices(vertices)
	if err != nil {
		return 0, fmt.Errorf("raster: %w", err)
	}
	for _, idx := range indices {
		if int(idx) >= len(vs) {
			return 0, fmt.Errorf("raster: index %d out of range for %d vertices", idx, len(vs))
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.next++
	d.buffers[d.next] = &buffer{
		vertices: vs,
		indices:  append([]uint32(nil), indices...),
	}
	return d.next, nil
}

// Release implements mesh.Backend. Queued draws keep their geometry.
func (d *Device) Release(buf mesh.Buffer) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.buffers[buf]; !ok {
		return fmt.Errorf("raster: release %d: %w", buf, ErrUnknownBuffer)
	}
	delete(d.buffers, buf)
	return nil
}

// DrawElements implements mesh.Backend. The first diffuse binding, if any,
// textures the draw.
func (d *Device) DrawElements(buf mesh.Buffer, mode mesh.Mode, count int, bindings []mesh.SamplerBinding) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	b, ok := d.buffers[buf]
	if !ok {
		return fmt.Errorf("raster: draw %d: %w", buf, ErrUnknownBuffer)
	}
	if count > len(b.indices) || count%mode.IndicesPerTriangle() != 0 {
		return fmt.Errorf("raster: draw %d: bad count %d for %s", buf, count, mode)
	}

	var tex *image.NRGBA
	if d.textures != nil {
		for _, sb := range bindings {
			if sb.Texture.Kind == mesh.Diffuse {
				tex = d.textures.Image(sb.Texture.ID)
				break
			}
		}
	}
	d.calls = append(d.calls, drawCall{buf: b, mode: mode, count: count, tex: tex})
	return nil
}

// Live returns the number of uploaded buffers not yet released.
func (d *Device) Live() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.buffers)
}

// Pending returns the number of queued draw calls.
func (d *Device) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.calls)
}

// Render rasterizes every queued draw and clears the queue. Adjacency draws
// also get silhouette outlines when Options.Outline is set.
func (d *Device) Render() *image.NRGBA {
	d.mu.Lock()
	calls := d.calls
	d.calls = nil
	d.mu.Unlock()

	size := d.opts.Size
	fb := NewFrameBuffer(size, size)
	if len(calls) == 0 {
		return fb.Image()
	}

	view := d.opts.Camera.View()
	viewPos := make([][]mgl64.Vec3, len(calls))
	lo := mgl64.Vec3{math.Inf(1), math.Inf(1), math.Inf(1)}
	hi := mgl64.Vec3{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for i, call := range calls {
		vp := make([]mgl64.Vec3, len(call.buf.vertices))
		for j, v := range call.buf.vertices {
			p := v.Position
			vp[j] = mgl64.TransformCoordinate(mgl64.Vec3{float64(p[0]), float64(p[1]), float64(p[2])}, view)
		}
		for _, idx := range call.buf.indices[:call.count] {
			p := vp[idx]
			for k := 0; k < 3; k++ {
				lo[k] = math.Min(lo[k], p[k])
				hi[k] = math.Max(hi[k], p[k])
			}
		}
		viewPos[i] = vp
	}
	port := fitViewport(lo, hi, size, d.opts.Margin)

	for i, call := range calls {
		d.fill(fb, port, call, viewPos[i])
	}
	if d.opts.Outline && d.opts.OutlineWidth > 0 {
		bias := 0.01 * math.Max(hi[2]-lo[2], 0.001)
		for i, call := range calls {
			if call.mode != mesh.TrianglesAdjacency {
				continue
			}
			d.outline(fb, port, call, viewPos[i], bias)
		}
	}
	return fb.Image()
}

func (d *Device) fill(fb *FrameBuffer, port viewport, call drawCall, vp []mgl64.Vec3) {
	stride := call.mode.IndicesPerTriangle()
	step := stride / 3 // corners sit every other index in adjacency lists
	idx := call.buf.indices[:call.count]
	for t := 0; t+stride <= len(idx); t += stride {
		i0, i1, i2 := idx[t], idx[t+step], idx[t+2*step]
		a, b, c := vp[i0], vp[i1], vp[i2]

		n := b.Sub(a).Cross(c.Sub(a))
		if n.Len() < 1e-12 || n[2] <= 0 {
			continue
		}
		shade := d.opts.Light.ComputeShade(n.Normalize())

		var cs [3]corner
		for k, vi := range [3]uint32{i0, i1, i2} {
			p := port.project(vp[vi])
			cs[k] = corner{x: p[0], y: p[1], z: p[2], uv: call.buf.vertices[vi].TexCoords}
		}
		rasterizeTriangle(fb, cs, call.tex, d.opts.Base, shade, d.opts.Light.Exposure, d.opts.Light.InvGamma)
	}
}

func (d *Device) outline(fb *FrameBuffer, port viewport, call drawCall, vp []mgl64.Vec3, bias float64) {
	idx := call.buf.indices[:call.count]
	for t := 0; t+6 <= len(idx); t += 6 {
		for _, e := range silhouetteEdges(vp, idx[t:t+6]) {
			drawLine(fb, port.project(vp[e[0]]), port.project(vp[e[1]]), d.opts.OutlineWidth, bias, d.opts.OutlineColor)
		}
	}
}
