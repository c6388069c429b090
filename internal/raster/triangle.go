package raster

import (
	"image"
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// corner is one projected triangle vertex: screen x, y, depth and UV.
type corner struct {
	x, y, z float64
	uv      mgl32.Vec2
}

// rasterizeTriangle fills a triangle with texture mapping, z-buffer,
// sRGB color space and ACES tone mapping. shade is the flat lighting term
// for the face. A nil tex fills with base.
//
// This is the hot path and does not allocate in the pixel loop.
func rasterizeTriangle(fb *FrameBuffer, c [3]corner, tex *image.NRGBA, base color.NRGBA, shade, exposure, invGamma float64) {
	x0, y0, z0 := c[0].x, c[0].y, c[0].z
	x1, y1, z1 := c[1].x, c[1].y, c[1].z
	x2, y2, z2 := c[2].x, c[2].y, c[2].z

	// Bounding box
	minX := max(int(math.Min(math.Min(x0, x1), x2)), 0)
	maxX := min(int(math.Max(math.Max(x0, x1), x2))+1, fb.Width-1)
	minY := max(int(math.Min(math.Min(y0, y1), y2)), 0)
	maxY := min(int(math.Max(math.Max(y0, y1), y2))+1, fb.Height-1)
	if minX > maxX || minY > maxY {
		return
	}

	// Barycentric setup
	det := (y1-y2)*(x0-x2) + (x2-x1)*(y0-y2)
	if det > -1e-8 && det < 1e-8 {
		return
	}
	invDet := 1.0 / det

	dy12 := y1 - y2
	dx21 := x2 - x1
	dy20 := y2 - y0
	dx02 := x0 - x2

	u0, v0 := float64(c[0].uv[0]), float64(c[0].uv[1])
	u1, v1 := float64(c[1].uv[0]), float64(c[1].uv[1])
	u2, v2 := float64(c[2].uv[0]), float64(c[2].uv[1])

	for sy := minY; sy <= maxY; sy++ {
		dsy := float64(sy) - y2
		rowOff := sy * fb.Width
		for sx := minX; sx <= maxX; sx++ {
			dsx := float64(sx) - x2
			w0 := (dy12*dsx + dx21*dsy) * invDet
			w1 := (dy20*dsx + dx02*dsy) * invDet
			w2 := 1.0 - w0 - w1

			if w0 < -0.001 || w1 < -0.001 || w2 < -0.001 {
				continue
			}

			z := w0*z0 + w1*z1 + w2*z2
			zIdx := rowOff + sx
			if z <= fb.ZBuf[zIdx] {
				continue
			}

			cr, cg, cb, ca := base.R, base.G, base.B, base.A
			if tex != nil {
				u := w0*u0 + w1*u1 + w2*u2
				v := w0*v0 + w1*v1 + w2*v2
				cr, cg, cb, ca = SampleTexture(tex, u, v)
			}

			// Skip transparent texels
			if ca < 8 {
				continue
			}
			fb.ZBuf[zIdx] = z

			// sRGB decode, shade, tone map, encode
			lit := shade * exposure
			fr := math.Pow(ACESTonemap(srgbToLinear[cr]*lit), invGamma)
			fg := math.Pow(ACESTonemap(srgbToLinear[cg]*lit), invGamma)
			fbl := math.Pow(ACESTonemap(srgbToLinear[cb]*lit), invGamma)

			px := zIdx * 4
			fb.Color[px] = clamp255(fr * 255)
			fb.Color[px+1] = clamp255(fg * 255)
			fb.Color[px+2] = clamp255(fbl * 255)
			fb.Color[px+3] = ca
		}
	}
}

func clamp255(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
