package flock

import (
	"math"

	"github.com/Carmen-Shannon/oxy-flock/common"
	"github.com/go-gl/mathgl/mgl32"
)

var (
	flockCenter = mgl32.Vec3{0, 100, 0}
	twoPi       = float32(2 * math.Pi)
)

// VelocityKernel computes the next velocity texel for bird i. It mirrors assets/velocity.wgsl and
// reads only the current buffers.
//
// Parameters:
//   - i: the texel index
//   - positions: the current position texels
//   - velocities: the current velocity texels
//   - zones: the neighborhood bands of the active Params
//   - delta: the frame delta in seconds
//
// Returns:
//   - mgl32.Vec4: the new velocity with w = 1
func VelocityKernel(i int, positions, velocities []mgl32.Vec4, zones Zones, delta float32) mgl32.Vec4 {
	self := positions[i].Vec3()
	velocity := velocities[i].Vec3()
	limit := SpeedLimit

	dir := mgl32.Vec3{0, -self.Y(), 0}
	dist := dir.Len()
	if dist < PreyRadius {
		f := (dist*dist/(PreyRadius*PreyRadius) - 1) * delta * 100
		velocity = velocity.Add(common.SafeNormalize(dir).Mul(f))
		limit += GroundSpeedBoost
	}

	dir = self.Sub(flockCenter)
	dir[1] *= 2.5
	velocity = velocity.Sub(common.SafeNormalize(dir).Mul(delta * 5))

	for j := range positions {
		dir = positions[j].Vec3().Sub(self)
		dist = dir.Len()
		if dist < 0.0001 {
			continue
		}
		distSq := dist * dist
		if distSq > zones.RadiusSq {
			continue
		}

		percent := distSq / zones.RadiusSq
		switch {
		case percent < zones.SeparationThresh:
			f := (zones.SeparationThresh/percent - 1) * delta
			velocity = velocity.Sub(common.SafeNormalize(dir).Mul(f))
		case percent < zones.AlignmentThresh:
			adjusted := (percent - zones.SeparationThresh) / (zones.AlignmentThresh - zones.SeparationThresh)
			f := (0.5 - cos32(adjusted*twoPi)*0.5 + 0.5) * delta
			velocity = velocity.Add(common.SafeNormalize(velocities[j].Vec3()).Mul(f))
		default:
			threshDelta := 1 - zones.AlignmentThresh
			adjusted := float32(1)
			if threshDelta != 0 {
				adjusted = (percent - zones.AlignmentThresh) / threshDelta
			}
			f := (0.5 - (cos32(adjusted*twoPi)*-0.5 + 0.5)) * delta
			velocity = velocity.Add(common.SafeNormalize(dir).Mul(f))
		}
	}

	if velocity.Len() > limit {
		velocity = common.SafeNormalize(velocity).Mul(limit)
	}
	return velocity.Vec4(1)
}

// PositionKernel integrates one position texel against its freshly computed velocity and
// advances the wing phase. It mirrors assets/position.wgsl.
//
// Parameters:
//   - position: the current position texel, w holds the phase
//   - velocity: the velocity written by this frame's velocity pass
//   - delta: the frame delta in seconds
//
// Returns:
//   - mgl32.Vec4: the next position texel
func PositionKernel(position, velocity mgl32.Vec4, delta float32) mgl32.Vec4 {
	v := velocity.Vec3()
	xz := mgl32.Vec2{v.X(), v.Z()}.Len()

	phase := position.W() + delta + xz*delta*3 + max(v.Y(), 0)*delta*6
	phase = common.FloorMod(phase, PhaseWrap)

	return position.Vec3().Add(v.Mul(delta * 15)).Vec4(phase)
}

func cos32(x float32) float32 {
	return float32(math.Cos(float64(x)))
}
