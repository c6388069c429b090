package raster

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// LightConfig holds precomputed lighting parameters. Directions are in
// view space.
type LightConfig struct {
	LightDir  mgl64.Vec3
	RimDir    mgl64.Vec3
	HalfMain  mgl64.Vec3 // precomputed half-vector for Blinn-Phong
	Ambient   float64
	Hemi      float64
	Direct    float64
	Rim       float64
	SpecInt   float64
	SpecPow   float64
	Exposure  float64
	InvGamma  float64
	ToonBands int // 0 = smooth shading
}

// DefaultLightConfig returns a key light from the upper right, a rim light
// from behind and toon banding off.
func DefaultLightConfig() LightConfig {
	lightDir := mgl64.Vec3{0.45, 0.65, 0.6}.Normalize()
	rimDir := mgl64.Vec3{-0.5, 0.4, -0.75}.Normalize()
	viewDir := mgl64.Vec3{0, 0, 1}

	return LightConfig{
		LightDir: lightDir,
		RimDir:   rimDir,
		HalfMain: lightDir.Add(viewDir).Normalize(),
		Ambient:  0.35,
		Hemi:     0.30,
		Direct:   0.90,
		Rim:      0.25,
		SpecInt:  0.30,
		SpecPow:  16.0,
		Exposure: 1.0,
		InvGamma: 1.0 / 2.2,
	}
}

// maxShade is the shade of a surface that every term lights fully.
func (lc *LightConfig) maxShade() float64 {
	return lc.Ambient + lc.Hemi + lc.Direct + lc.Rim + lc.SpecInt
}

// ComputeShade returns the combined lighting scalar for a unit face normal.
func (lc *LightConfig) ComputeShade(normal mgl64.Vec3) float64 {
	// Lambertian, front side only
	ndlMain := math.Max(normal.Dot(lc.LightDir), 0)
	ndlRim := math.Max(normal.Dot(lc.RimDir), 0)

	// Hemisphere fill
	hemi := normal[1]*0.5 + 0.5
	hemiLight := hemi * lc.Hemi

	// Blinn-Phong specular
	ndh := math.Max(normal.Dot(lc.HalfMain), 0)
	spec := math.Pow(ndh, lc.SpecPow) * lc.SpecInt

	shade := lc.Ambient + hemiLight + ndlMain*lc.Direct + ndlRim*lc.Rim + spec
	if lc.ToonBands > 0 {
		shade = lc.quantize(shade)
	}
	return shade
}

// quantize snaps shade to one of ToonBands steps between Ambient and
// maxShade.
func (lc *LightConfig) quantize(shade float64) float64 {
	lo, hi := lc.Ambient, lc.maxShade()
	if hi <= lo {
		return shade
	}
	bands := float64(lc.ToonBands)
	t := (shade - lo) / (hi - lo)
	t = math.Ceil(t*bands) / bands
	return lo + math.Min(math.Max(t, 0), 1)*(hi-lo)
}

// Precomputed sRGB-to-linear lookup table (256 entries).
var srgbToLinear [256]float64

func init() {
	for i := 0; i < 256; i++ {
		srgbToLinear[i] = math.Pow(float64(i)/255.0, 2.2)
	}
}

// ACESTonemap applies ACES Filmic tone mapping to a linear value.
func ACESTonemap(x float64) float64 {
	return (x * (2.51*x + 0.03)) / (x*(2.43*x+0.59) + 0.14)
}
