// Package postprocess turns supersampled renders into final thumbnails.
package postprocess

import (
	"image"

	"golang.org/x/image/draw"
)

// Downsample scales img to a targetSize square. Filtering runs on
// premultiplied alpha so transparent edges do not pick up dark fringes.
// Images already at or below the target are returned unchanged.
func Downsample(img *image.NRGBA, targetSize int) *image.NRGBA {
	b := img.Bounds()
	if targetSize <= 0 || (b.Dx() <= targetSize && b.Dy() <= targetSize) {
		return img
	}

	// Drawing NRGBA onto RGBA premultiplies.
	premul := image.NewRGBA(b)
	draw.Draw(premul, b, img, b.Min, draw.Src)

	dst := image.NewRGBA(image.Rect(0, 0, targetSize, targetSize))
	draw.CatmullRom.Scale(dst, dst.Bounds(), premul, b, draw.Src, nil)

	return unpremultiply(dst)
}

func unpremultiply(src *image.RGBA) *image.NRGBA {
	out := image.NewNRGBA(src.Bounds())
	for i := 0; i < len(src.Pix); i += 4 {
		a := float64(src.Pix[i+3])
		if a > 1 {
			inv := 255.0 / a
			out.Pix[i] = clamp8(float64(src.Pix[i]) * inv)
			out.Pix[i+1] = clamp8(float64(src.Pix[i+1]) * inv)
			out.Pix[i+2] = clamp8(float64(src.Pix[i+2]) * inv)
		}
		out.Pix[i+3] = src.Pix[i+3]
	}
	return out
}

func clamp8(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
