package backdrop

import (
	"image"
	"image/color"
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl32"
)

type wave struct {
	fx, fy float64
	slope  float64
	phase  float64
}

// waveField is a sum of sine waves with whole-number frequencies over a square tile, so it
// repeats exactly every tile.
type waveField struct {
	size  float64
	waves []wave
}

func newWaveField(size int, seed int64) waveField {
	rng := rand.New(rand.NewSource(seed))
	field := waveField{size: float64(size), waves: make([]wave, 0, WaterWaveCount)}
	for len(field.waves) < WaterWaveCount {
		fx := float64(rng.Intn(17) - 8)
		fy := float64(rng.Intn(17) - 8)
		if fx == 0 && fy == 0 {
			continue
		}
		freq := math.Hypot(fx, fy)
		field.waves = append(field.waves, wave{
			fx:    fx,
			fy:    fy,
			slope: 0.6 / math.Sqrt(freq) / math.Sqrt(WaterWaveCount),
			phase: rng.Float64() * 2 * math.Pi,
		})
	}
	return field
}

// normal returns the unit surface normal at texel (x, y), z up.
func (f waveField) normal(x, y float64) mgl32.Vec3 {
	var dx, dy float64
	for _, w := range f.waves {
		freq := math.Hypot(w.fx, w.fy)
		c := math.Cos(2*math.Pi*(w.fx*x+w.fy*y)/f.size + w.phase)
		dx += w.slope * w.fx / freq * c
		dy += w.slope * w.fy / freq * c
	}
	n := mgl32.Vec3{float32(-dx), float32(-dy), 1}
	return n.Normalize()
}

// GenerateWaterNormals builds a tileable normal map. Normals are encoded as n·0.5 + 0.5 with the
// up axis in blue, which is what the water shader's noise lookup expects.
//
// Parameters:
//   - size: the edge length in pixels
//   - seed: the seed of the wave set
//
// Returns:
//   - *image.RGBA: a size×size normal map
func GenerateWaterNormals(size int, seed int64) *image.RGBA {
	field := newWaveField(size, seed)
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := range size {
		for x := range size {
			n := field.normal(float64(x), float64(y))
			img.SetRGBA(x, y, color.RGBA{
				R: unorm8(n[0]*0.5 + 0.5),
				G: unorm8(n[1]*0.5 + 0.5),
				B: unorm8(n[2]*0.5 + 0.5),
				A: 0xff,
			})
		}
	}
	return img
}
