package raster

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Camera orbits the origin. Angles are in degrees; pitch is clamped short
// of the poles so the up vector stays valid.
type Camera struct {
	Yaw   float64
	Pitch float64
}

// View returns the world-to-view matrix. The camera looks down -Z in view
// space with +Y up, so larger Z is nearer.
func (c Camera) View() mgl64.Mat4 {
	pitch := mgl64.DegToRad(math.Max(-89, math.Min(89, c.Pitch)))
	yaw := mgl64.DegToRad(c.Yaw)
	eye := mgl64.Vec3{
		math.Cos(pitch) * math.Sin(yaw),
		math.Sin(pitch),
		math.Cos(pitch) * math.Cos(yaw),
	}
	return mgl64.LookAtV(eye, mgl64.Vec3{}, mgl64.Vec3{0, 1, 0})
}

// viewport maps view-space points onto a square framebuffer so that the
// bounds fill it minus a margin.
type viewport struct {
	center mgl64.Vec3
	scale  float64
	half   float64
}

func fitViewport(min, max mgl64.Vec3, size, margin int) viewport {
	center := min.Add(max).Mul(0.5)
	span := math.Max(max[0]-min[0], max[1]-min[1])
	if span < 0.001 {
		span = 0.001
	}
	return viewport{
		center: center,
		scale:  float64(size-2*margin) / span,
		half:   float64(size) / 2,
	}
}

// project returns screen x, y (y down) and depth.
func (vp viewport) project(v mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{
		(v[0]-vp.center[0])*vp.scale + vp.half,
		-(v[1]-vp.center[1])*vp.scale + vp.half,
		v[2],
	}
}
