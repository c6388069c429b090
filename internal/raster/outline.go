package raster

import (
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// signedArea is twice the signed area of a view-space triangle projected
// on XY. Positive means counter-clockwise, i.e. facing the camera.
func signedArea(a, b, c mgl64.Vec3) float64 {
	return (b[0]-a[0])*(c[1]-a[1]) - (c[0]-a[0])*(b[1]-a[1])
}

// silhouetteEdges returns the edges of an adjacency 6-tuple that lie on
// the silhouette: the main triangle faces the camera and the neighbour
// across the edge does not. A boundary edge's neighbour is the triangle
// itself reversed, so boundary edges of visible faces always qualify.
// view holds view-space positions indexed by vertex.
func silhouetteEdges(view []mgl64.Vec3, tuple []uint32) [][2]uint32 {
	c0, c1, c2 := tuple[0], tuple[2], tuple[4]
	if signedArea(view[c0], view[c1], view[c2]) <= 0 {
		return nil
	}
	var edges [][2]uint32
	for k := 0; k < 3; k++ {
		a, adj, b := tuple[k*2], tuple[k*2+1], tuple[(k*2+2)%6]
		if signedArea(view[a], view[adj], view[b]) <= 0 {
			edges = append(edges, [2]uint32{a, b})
		}
	}
	return edges
}

// drawLine stamps a line of the given width between two projected points.
// Pixels are depth tested against the surface with bias so the line shows
// on the faces it borders; the z-buffer is left untouched.
func drawLine(fb *FrameBuffer, p0, p1 mgl64.Vec3, width, bias float64, clr color.NRGBA) {
	r := width / 2
	minX := max(int(math.Floor(math.Min(p0[0], p1[0])-r)), 0)
	maxX := min(int(math.Ceil(math.Max(p0[0], p1[0])+r)), fb.Width-1)
	minY := max(int(math.Floor(math.Min(p0[1], p1[1])-r)), 0)
	maxY := min(int(math.Ceil(math.Max(p0[1], p1[1])+r)), fb.Height-1)

	dx, dy := p1[0]-p0[0], p1[1]-p0[1]
	lenSq := dx*dx + dy*dy

	for sy := minY; sy <= maxY; sy++ {
		for sx := minX; sx <= maxX; sx++ {
			px, py := float64(sx)-p0[0], float64(sy)-p0[1]
			t := 0.0
			if lenSq > 0 {
				t = math.Max(0, math.Min(1, (px*dx+py*dy)/lenSq))
			}
			ex, ey := px-t*dx, py-t*dy
			if ex*ex+ey*ey > r*r {
				continue
			}
			idx := sy*fb.Width + sx
			z := p0[2] + t*(p1[2]-p0[2])
			if z+bias < fb.ZBuf[idx] {
				continue
			}
			o := idx * 4
			fb.Color[o] = clr.R
			fb.Color[o+1] = clr.G
			fb.Color[o+2] = clr.B
			fb.Color[o+3] = clr.A
		}
	}
}
