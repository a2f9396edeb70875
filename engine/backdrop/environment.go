package backdrop

import (
	"image"
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/image/draw"
)

// EquirectDirection returns the unit direction at equirectangular coordinates (u, v) in [0, 1].
// u wraps around +Y starting at −X, v runs from straight up (0) to straight down (1).
func EquirectDirection(u, v float64) mgl32.Vec3 {
	phi := (u - 0.5) * 2 * math.Pi
	theta := v * math.Pi
	sinTheta := math.Sin(theta)
	return mgl32.Vec3{
		float32(sinTheta * math.Cos(phi)),
		float32(math.Cos(theta)),
		float32(sinTheta * math.Sin(phi)),
	}
}

// BakeEnvironment renders the sky model into an equirectangular map and prefilters it. The layout
// matches environment_uv in the water shader.
//
// Parameters:
//   - model: the sky to bake
//   - width: the map width in pixels
//   - height: the map height in pixels
//
// Returns:
//   - *image.RGBA: the prefiltered map
func BakeEnvironment(model SkyModel, width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := range height {
		for x := range width {
			dir := EquirectDirection((float64(x)+0.5)/float64(width), (float64(y)+0.5)/float64(height))
			c := model.Radiance(dir)
			img.SetRGBA(x, y, color.RGBA{R: unorm8(c[0]), G: unorm8(c[1]), B: unorm8(c[2]), A: 0xff})
		}
	}
	return Prefilter(img, EnvironmentBlur)
}

// Prefilter blurs img by scaling it down by factor and back up with bilinear filtering.
// A factor below 2 returns img unchanged.
//
// Parameters:
//   - img: the source image
//   - factor: the downscale factor
//
// Returns:
//   - *image.RGBA: the blurred image, same bounds as img
func Prefilter(img *image.RGBA, factor int) *image.RGBA {
	if factor < 2 {
		return img
	}
	b := img.Bounds()
	small := image.NewRGBA(image.Rect(0, 0, max(b.Dx()/factor, 1), max(b.Dy()/factor, 1)))
	draw.BiLinear.Scale(small, small.Bounds(), img, b, draw.Src, nil)

	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.BiLinear.Scale(out, out.Bounds(), small, small.Bounds(), draw.Src, nil)
	return out
}

func unorm8(v float32) uint8 {
	return uint8(math.Round(float64(min(max(v, 0), 1)) * 255))
}
