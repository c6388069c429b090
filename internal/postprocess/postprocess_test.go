package postprocess

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"
)

func filled(size int, r image.Rectangle, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestDownsample(t *testing.T) {
	red := color.NRGBA{R: 255, A: 255}
	img := filled(64, image.Rect(0, 0, 32, 64), red)

	out := Downsample(img, 16)
	require.Equal(t, image.Rect(0, 0, 16, 16), out.Bounds())
	require.Equal(t, red, out.NRGBAAt(2, 8))
	require.Zero(t, out.NRGBAAt(14, 8).A)

	// Edge pixels are partially transparent but keep full red.
	edge := out.NRGBAAt(8, 8)
	if edge.A > 0 {
		require.InDelta(t, 255, int(edge.R), 2)
		require.Zero(t, edge.G)
	}

	require.Same(t, img, Downsample(img, 64))
}

func TestOpaqueBounds(t *testing.T) {
	img := filled(32, image.Rect(4, 6, 10, 20), color.NRGBA{A: 255})
	require.Equal(t, image.Rect(4, 6, 10, 20), OpaqueBounds(img))
	require.True(t, OpaqueBounds(image.NewNRGBA(image.Rect(0, 0, 8, 8))).Empty())
}

func TestFrame(t *testing.T) {
	img := filled(100, image.Rect(0, 0, 10, 20), color.NRGBA{G: 255, A: 255})
	out := Frame(img, 40, 0.5)
	require.Equal(t, image.Rect(0, 0, 40, 40), out.Bounds())

	box := OpaqueBounds(out)
	require.Equal(t, 20, box.Dy())
	require.Equal(t, 10, box.Dx())
	require.Equal(t, image.Pt(15, 10), box.Min)

	empty := Frame(image.NewNRGBA(image.Rect(0, 0, 8, 8)), 16, 0.9)
	require.True(t, OpaqueBounds(empty).Empty())
}
