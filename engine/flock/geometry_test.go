package flock

import (
	"math"
	"testing"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBirdGeometry_Attributes(t *testing.T) {
	vertices := BirdGeometry()
	require.Len(t, vertices, Birds*VerticesPerBird)
	require.Equal(t, uintptr(36), unsafe.Sizeof(vertices[0]))

	assert.Equal(t, mgl32.Vec3{0, 0, -4}, vertices[0].Position)
	assert.Equal(t, mgl32.Vec3{0, 0, 6}, vertices[2].Position)

	v := vertices[33*VerticesPerBird+4]
	assert.Equal(t, float32(4), v.BirdVertex)
	assert.Equal(t, mgl32.Vec2{1.0 / Width, 1.0 / Width}, v.Reference)
	assert.Equal(t, mgl32.Vec3{-4, 0, 0}, v.Position)
}

func TestBirdColor_Ramp(t *testing.T) {
	first := BirdColor(0)
	assert.InDelta(t, float32(0x44)/255, first.X(), 1e-6)
	assert.Equal(t, first.X(), first.Z())

	// 0x444444 + 0.5·0x666666 = 0x777777
	mid := BirdColor(Birds / 2)
	assert.InDelta(t, float32(0x77)/255, mid.X(), 1e-6)

	last := BirdColor(Birds - 1)
	assert.Greater(t, last.X(), mid.X())
	assert.Less(t, last.X(), float32(0xaa)/255+1e-6)
}

func TestTexelIndex_RoundTrip(t *testing.T) {
	for bird := range Birds {
		require.Equal(t, bird, TexelIndex(BirdReference(bird)))
	}
	// only the first rows of the grid are drawn
	assert.Equal(t, Birds/Width-1, TexelIndex(BirdReference(Birds-1))/Width)
}

func TestBirdVertexWorldPosition_WingFlap(t *testing.T) {
	model := BirdModelMatrix()
	tip := birdShape[4].Mul(BirdScale)
	velocity := mgl32.Vec3{1, 0, 0}

	for _, phase := range []float32{0, math.Pi / 2, math.Pi, 4} {
		got := BirdVertexWorldPosition(tip, 4, mgl32.Vec4{0, 0, 0, phase}, velocity, model)
		assert.InDelta(t, 5*math.Sin(float64(phase)), got.Y(), 1e-5)
	}

	// non-tip vertices keep their shape
	body := birdShape[3].Mul(BirdScale)
	got := BirdVertexWorldPosition(body, 3, mgl32.Vec4{0, 0, 0, math.Pi / 2}, velocity, model)
	assert.InDelta(t, 0, got.Y(), 1e-5)
}

func TestBirdVertexWorldPosition_NoseFollowsVelocity(t *testing.T) {
	model := BirdModelMatrix()
	nose := birdShape[2].Mul(BirdScale)
	position := mgl32.Vec4{10, 20, 30, 0}

	tests := []struct {
		name     string
		velocity mgl32.Vec3
	}{
		{name: "along x", velocity: mgl32.Vec3{3, 0, 0}},
		{name: "along z", velocity: mgl32.Vec3{0, 0, 2}},
		{name: "diagonal", velocity: mgl32.Vec3{1, 0, -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BirdVertexWorldPosition(nose, 2, position, tt.velocity, model)
			offset := got.Sub(position.Vec3())
			want := tt.velocity.Normalize().Mul(nose.Len())

			assert.InDelta(t, want.X(), offset.X(), 1e-4)
			assert.InDelta(t, want.Y(), offset.Y(), 1e-4)
			assert.InDelta(t, want.Z(), offset.Z(), 1e-4)
		})
	}
}

func TestBirdShade(t *testing.T) {
	assert.InDelta(t, 0.7, BirdShade(0, mgl32.Vec3{0.5, 0, 0}), 1e-6)
	assert.InDelta(t, 0.2, BirdShade(1000, mgl32.Vec3{1, 1, 1}), 1e-6)
}

func TestGPUTypes_Sizes(t *testing.T) {
	flockUniforms := NewGPUFlockUniforms(FrameUniforms{Time: 1, Delta: 0.5}, testParams)
	buf := flockUniforms.Marshal()
	require.Len(t, buf, 32)
	assert.Equal(t, uint32(Width), flockUniforms.Width)
	assert.Equal(t, uint32(TexelCount), flockUniforms.TexelCount)

	birdUniforms := GPUBirdUniforms{GridWidth: Width}
	assert.Len(t, birdUniforms.Marshal(), 96)

	assert.Len(t, texelBytes(make([]mgl32.Vec4, 3)), 48)
}
