package flock

import (
	"github.com/Carmen-Shannon/oxy-flock/common"
	"github.com/go-gl/mathgl/mgl32"
)

// VerticesPerBird is three triangles: the body and two wings.
const VerticesPerBird = 9

// BirdScale is applied to the local bird shape.
const BirdScale float32 = 0.2

var birdShape = [VerticesPerBird]mgl32.Vec3{
	// body
	{0, 0, -20}, {0, 4, -20}, {0, 0, 30},
	// wings
	{0, 0, -15}, {-20, 0, 0}, {0, 0, 15},
	{0, 0, 15}, {20, 0, 0}, {0, 0, -15},
}

// BirdGeometry builds the vertex list for Birds birds. Each vertex carries its local position, a
// grey ramp color, the uv of its bird's texel and its index inside the bird.
//
// Returns:
//   - []GPUBirdVertex: Birds·VerticesPerBird vertices, drawn without an index buffer
func BirdGeometry() []GPUBirdVertex {
	vertices := make([]GPUBirdVertex, 0, Birds*VerticesPerBird)
	for v := 0; v < Birds*VerticesPerBird; v++ {
		bird := v / VerticesPerBird
		vertices = append(vertices, GPUBirdVertex{
			Position:   birdShape[v%VerticesPerBird].Mul(BirdScale),
			Color:      BirdColor(bird),
			Reference:  BirdReference(bird),
			BirdVertex: float32(v % VerticesPerBird),
		})
	}
	return vertices
}

// BirdReference returns the grid uv of a bird's texel.
func BirdReference(bird int) mgl32.Vec2 {
	return mgl32.Vec2{
		float32(bird%Width) / Width,
		float32(bird/Width) / Width,
	}
}

// BirdColor returns the grey ramp color of a bird, from 0x444444 toward 0xaaaaaa.
func BirdColor(bird int) mgl32.Vec3 {
	hex := 0x444444 + float64(bird)/Birds*0x666666
	return common.HexToRGB(uint32(hex))
}
