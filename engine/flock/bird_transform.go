package flock

import (
	"math"

	"github.com/Carmen-Shannon/oxy-flock/common"
	"github.com/go-gl/mathgl/mgl32"
)

// BirdModelMatrix is the model matrix of the bird mesh, a quarter turn about Y.
func BirdModelMatrix() mgl32.Mat4 {
	return mgl32.HomogRotate3DY(math.Pi / 2)
}

// TexelIndex maps a grid uv back to the texel index it was built from.
func TexelIndex(reference mgl32.Vec2) int {
	col := int(math.Floor(float64(reference.X()*Width + 0.5)))
	row := int(math.Floor(float64(reference.Y()*Width + 0.5)))
	return row*Width + col
}

// BirdVertexWorldPosition places one bird vertex in the world. It is the CPU twin of the bird
// vertex shader: the wing tips flap with the phase, then the shape is turned to face its
// velocity and moved to its position.
//
// Parameters:
//   - local: the scaled local vertex position
//   - birdVertex: the index of the vertex inside its bird
//   - position: the bird's position texel, w holds the phase
//   - velocity: the bird's velocity
//   - model: the mesh model matrix, only its rotation part is used
//
// Returns:
//   - mgl32.Vec3: the world position
func BirdVertexWorldPosition(local mgl32.Vec3, birdVertex float32, position mgl32.Vec4, velocity mgl32.Vec3, model mgl32.Mat4) mgl32.Vec3 {
	if birdVertex == 4 || birdVertex == 7 {
		local[1] = float32(math.Sin(float64(position.W()))) * 5
	}
	local = model.Mat3().Mul3x1(local)

	v := common.SafeNormalize(velocity)
	v[2] = -v[2]

	xz := mgl32.Vec2{v.X(), v.Z()}.Len()
	cosry := v.X() / xz
	sinry := v.Z() / xz
	cosrz := float32(math.Sqrt(float64(max(1-v.Y()*v.Y(), 0))))
	sinrz := v.Y()

	maty := mgl32.Mat3FromCols(
		mgl32.Vec3{cosry, 0, -sinry},
		mgl32.Vec3{0, 1, 0},
		mgl32.Vec3{sinry, 0, cosry},
	)
	matz := mgl32.Mat3FromCols(
		mgl32.Vec3{cosrz, sinrz, 0},
		mgl32.Vec3{-sinrz, cosrz, 0},
		mgl32.Vec3{0, 0, 1},
	)
	return maty.Mul3(matz).Mul3x1(local).Add(position.Vec3())
}

// BirdShade is the grey level the bird fragment shader writes for a world depth and vertex color.
func BirdShade(worldZ float32, color mgl32.Vec3) float32 {
	return 0.2 + (1000-worldZ)/1000*color.X()
}
