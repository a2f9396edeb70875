package backdrop

import (
	"math/rand"
	"time"

	"github.com/Carmen-Shannon/oxy-flock/common"
	"github.com/go-gl/mathgl/mgl32"
)

// Sun is the sun placement and atmosphere for one time of day.
type Sun struct {
	// Hour is the fractional hour the placement was derived from.
	Hour float32
	// Day reports whether Hour falls in [6, 18).
	Day bool
	// Elevation is the polar angle in degrees fed to the spherical conversion.
	Elevation float32
	// Azimuth is the azimuth in degrees.
	Azimuth float32
	// Turbidity and Rayleigh are the sampled atmosphere coefficients.
	Turbidity float32
	Rayleigh  float32
	// Position is the unit sun vector.
	Position mgl32.Vec3
}

// HourOf returns the fractional hour used for the sun: hours plus minutes·5/300.
func HourOf(now time.Time) float32 {
	return float32(now.Hour()) + float32(now.Minute())*5/300
}

// SunAt places the sun for the wall time now. Days run from 6 to 18 with elevation 15t − 180
// and a hazy atmosphere; nights use elevation −15t and a near-clear atmosphere.
//
// Parameters:
//   - now: the wall time, only its hour and minute are used
//   - rng: the random source the atmosphere is sampled from
//
// Returns:
//   - Sun: the sun placement
func SunAt(now time.Time, rng *rand.Rand) Sun {
	s := Sun{Hour: HourOf(now)}

	if s.Hour >= 6 && s.Hour < 18 {
		s.Day = true
		s.Elevation = s.Hour*15 - 180
		s.Turbidity = common.NormalRandom(rng, 5, 2)
		s.Rayleigh = common.NormalRandom(rng, 2.5, 1)
	} else {
		s.Elevation = -s.Hour * 15
		s.Turbidity = common.NormalRandom(rng, 0.05, 0.02)
		s.Rayleigh = common.NormalRandom(rng, 0.005, 0.002)
	}

	s.Position = common.Spherical(1, mgl32.DegToRad(s.Elevation), mgl32.DegToRad(s.Azimuth))
	return s
}

// Direction is the normalized sun vector handed to the water.
func (s Sun) Direction() mgl32.Vec3 {
	return common.SafeNormalize(s.Position)
}
