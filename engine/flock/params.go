package flock

import (
	"fmt"
	"math/rand"

	"github.com/Carmen-Shannon/oxy-flock/common"
)

const (
	// Width is the side of the square simulation grid. Every texel is one simulated bird.
	Width = 32

	// TexelCount is the number of simulated texels, Width².
	TexelCount = Width * Width

	// Birds is the number of birds in the mesh. Only the first Birds texels are drawn.
	Birds = 256

	// Bounds is the spawn cube edge length.
	Bounds = 800

	// PhaseWrap is the period the wing phase is wrapped to.
	PhaseWrap float32 = 62.83

	// SpeedLimit is the maximum speed of a bird outside the ground band.
	SpeedLimit float32 = 9.0

	// GroundSpeedBoost is added to SpeedLimit while a bird is inside the ground band.
	GroundSpeedBoost float32 = 5.0

	// PreyRadius is the height of the ground band that pushes birds upward.
	PreyRadius float32 = 30.0

	// MaxDelta caps the frame delta in seconds.
	MaxDelta float32 = 1.0

	// DefaultFreedom is the freedom factor used when none is given.
	DefaultFreedom float32 = 0.75
)

// BoundsDefine is Bounds formatted the way the velocity kernel's BOUNDS define expects.
var BoundsDefine = fmt.Sprintf("%.2f", float64(Bounds))

// Params holds the behavioral weights of the flock.
type Params struct {
	Separation float32
	Alignment  float32
	Cohesion   float32
	Freedom    float32
}

// Zones are the neighborhood bands derived from Params.
type Zones struct {
	Radius           float32
	RadiusSq         float32
	SeparationThresh float32
	AlignmentThresh  float32
}

// SampleParams draws a parameter set from the default distributions: separation N(50,20),
// alignment N(30,10) and cohesion N(30,10).
//
// Parameters:
//   - rng: the random source
//
// Returns:
//   - Params: the sampled parameters with DefaultFreedom
func SampleParams(rng *rand.Rand) Params {
	return Params{
		Separation: common.NormalRandom(rng, 50, 20),
		Alignment:  common.NormalRandom(rng, 30, 10),
		Cohesion:   common.NormalRandom(rng, 30, 10),
		Freedom:    DefaultFreedom,
	}
}

// Zones derives the neighborhood bands. The thresholds are fractions of the squared zone radius.
func (p Params) Zones() Zones {
	radius := p.Separation + p.Alignment + p.Cohesion
	return Zones{
		Radius:           radius,
		RadiusSq:         radius * radius,
		SeparationThresh: p.Separation / radius,
		AlignmentThresh:  (p.Separation + p.Alignment) / radius,
	}
}
