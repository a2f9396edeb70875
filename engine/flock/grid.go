package flock

import (
	"math/rand"

	"github.com/go-gl/mathgl/mgl32"
)

// InitialGrid fills the position and velocity texels for a new flock. Positions are spread over
// the Bounds cube lifted 100 units above the ground with phase 1, and velocities are uniform in
// [-5, 5) per component with w = 1.
//
// Parameters:
//   - rng: the random source
//
// Returns:
//   - []mgl32.Vec4: TexelCount position texels
//   - []mgl32.Vec4: TexelCount velocity texels
func InitialGrid(rng *rand.Rand) ([]mgl32.Vec4, []mgl32.Vec4) {
	positions := make([]mgl32.Vec4, TexelCount)
	velocities := make([]mgl32.Vec4, TexelCount)

	const half = Bounds / 2
	for i := range positions {
		positions[i] = mgl32.Vec4{
			rng.Float32()*Bounds - half,
			rng.Float32()*Bounds + 100,
			rng.Float32()*Bounds - half,
			1,
		}
	}
	for i := range velocities {
		velocities[i] = mgl32.Vec4{
			(rng.Float32() - 0.5) * 10,
			(rng.Float32() - 0.5) * 10,
			(rng.Float32() - 0.5) * 10,
			1,
		}
	}
	return positions, velocities
}
