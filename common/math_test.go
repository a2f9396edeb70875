package common

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestSafeNormalize(t *testing.T) {
	assert.Equal(t, mgl32.Vec3{}, SafeNormalize(mgl32.Vec3{}))

	n := SafeNormalize(mgl32.Vec3{3, 0, 4})
	assert.InDelta(t, 0.6, n.X(), 1e-6)
	assert.InDelta(t, 0.8, n.Z(), 1e-6)
	assert.InDelta(t, 1.0, n.Len(), 1e-6)
}

func TestSpherical(t *testing.T) {
	tests := []struct {
		name       string
		phi, theta float32
		want       mgl32.Vec3
	}{
		{"zenith", 0, 0, mgl32.Vec3{0, 1, 0}},
		{"horizon toward +z", math.Pi / 2, 0, mgl32.Vec3{0, 0, 1}},
		{"horizon toward +x", math.Pi / 2, math.Pi / 2, mgl32.Vec3{1, 0, 0}},
		{"nadir", math.Pi, 0, mgl32.Vec3{0, -1, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Spherical(1, tt.phi, tt.theta)
			for i := 0; i < 3; i++ {
				assert.InDelta(t, tt.want[i], got[i], 1e-6)
			}
		})
	}
}

func TestFloorMod(t *testing.T) {
	assert.InDelta(t, 1.0, FloorMod(63.83, 62.83), 1e-4)
	assert.InDelta(t, 61.83, FloorMod(-1, 62.83), 1e-4)
	assert.Equal(t, float32(0), FloorMod(62.83, 62.83))

	r := FloorMod(-1e-9, 62.83)
	assert.GreaterOrEqual(t, r, float32(0))
	assert.Less(t, r, float32(62.83))
}

func TestHexToRGB(t *testing.T) {
	c := HexToRGB(0x001e0f)
	assert.InDelta(t, 0, c.X(), 1e-6)
	assert.InDelta(t, 30.0/255, c.Y(), 1e-6)
	assert.InDelta(t, 15.0/255, c.Z(), 1e-6)
}

func TestPerspectiveDepthRange(t *testing.T) {
	near, far := float32(1), float32(20000)
	proj := Perspective(mgl32.DegToRad(55), 16.0/9.0, near, far)

	ndcZ := func(z float32) float32 {
		clip := proj.Mul4x1(mgl32.Vec4{0, 0, -z, 1})
		return clip.Z() / clip.W()
	}
	assert.InDelta(t, 0, ndcZ(near), 1e-5)
	assert.InDelta(t, 1, ndcZ(far), 1e-3)
}

func TestSliceToBytes(t *testing.T) {
	assert.Nil(t, SliceToBytes([]float32{}))
	b := SliceToBytes([]float32{1, 2})
	assert.Len(t, b, 8)
}
