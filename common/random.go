package common

import (
	"math"
	"math/rand"
)

// NormalRandom draws a normally distributed sample using the Marsaglia polar method.
// Candidate points are drawn uniformly from [-1, 1)² and rejected until they fall strictly
// inside the unit circle and away from the origin.
//
// Parameters:
//   - rng: the random source
//   - mean: the distribution mean
//   - stdDev: the distribution standard deviation
//
// Returns:
//   - float32: the sample
func NormalRandom(rng *rand.Rand, mean, stdDev float64) float32 {
	var u, v, w float64
	for w == 0 || w >= 1 {
		u = rng.Float64()*2 - 1
		v = rng.Float64()*2 - 1
		w = u*u + v*v
	}
	c := math.Sqrt(-2 * math.Log(w) / w)
	return float32(mean + u*c*stdDev)
}
