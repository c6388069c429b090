package postprocess

import (
	"image"
	"math"

	"golang.org/x/image/draw"
)

// OpaqueBounds returns the bounding box of pixels with non-zero alpha, or
// an empty rectangle for a fully transparent image.
func OpaqueBounds(img *image.NRGBA) image.Rectangle {
	b := img.Bounds()
	box := image.Rectangle{}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[img.PixOffset(b.Min.X, y):]
		for x := 0; x < b.Dx(); x++ {
			if row[x*4+3] == 0 {
				continue
			}
			px := image.Rect(b.Min.X+x, y, b.Min.X+x+1, y+1)
			box = box.Union(px)
		}
	}
	return box
}

// Frame crops img to its opaque pixels, scales them to fill fillRatio of a
// size square and centers the result.
func Frame(img *image.NRGBA, size int, fillRatio float64) *image.NRGBA {
	canvas := image.NewNRGBA(image.Rect(0, 0, size, size))
	box := OpaqueBounds(img)
	if box.Empty() {
		return canvas
	}

	scale := float64(size) * fillRatio / math.Max(float64(box.Dx()), float64(box.Dy()))
	w := max(int(float64(box.Dx())*scale+0.5), 1)
	h := max(int(float64(box.Dy())*scale+0.5), 1)
	off := image.Pt((size-w)/2, (size-h)/2)

	draw.CatmullRom.Scale(canvas, image.Rectangle{Min: off, Max: off.Add(image.Pt(w, h))}, img, box, draw.Src, nil)
	return canvas
}
