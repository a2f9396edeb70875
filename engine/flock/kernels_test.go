package flock

import (
	"math"
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testParams = Params{Separation: 50, Alignment: 30, Cohesion: 30, Freedom: DefaultFreedom}

func hasNaN(v mgl32.Vec4) bool {
	for _, c := range v {
		if math.IsNaN(float64(c)) || math.IsInf(float64(c), 0) {
			return true
		}
	}
	return false
}

func TestParams_Zones(t *testing.T) {
	tests := []struct {
		name   string
		params Params
	}{
		{name: "defaults", params: testParams},
		{name: "separation heavy", params: Params{Separation: 90, Alignment: 1, Cohesion: 1}},
		{name: "cohesion heavy", params: Params{Separation: 1, Alignment: 1, Cohesion: 90}},
		{name: "no cohesion", params: Params{Separation: 10, Alignment: 10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			z := tt.params.Zones()
			assert.GreaterOrEqual(t, z.SeparationThresh, float32(0))
			assert.LessOrEqual(t, z.SeparationThresh, z.AlignmentThresh)
			assert.LessOrEqual(t, z.AlignmentThresh, float32(1)+1e-6)
			assert.InDelta(t, z.Radius*z.Radius, z.RadiusSq, 1e-3)
		})
	}
}

func TestSampleParams_UsesDefaultFreedom(t *testing.T) {
	p := SampleParams(rand.New(rand.NewSource(3)))
	assert.Equal(t, DefaultFreedom, p.Freedom)
	assert.NotZero(t, p.Separation)
}

func TestVelocityKernel_CenterAttraction(t *testing.T) {
	positions := []mgl32.Vec4{{0, 200, 0, 1}}
	velocities := []mgl32.Vec4{{0, 0, 0, 1}}

	got := VelocityKernel(0, positions, velocities, testParams.Zones(), 1)

	assert.InDelta(t, 0, got.X(), 1e-6)
	assert.InDelta(t, -5, got.Y(), 1e-5)
	assert.InDelta(t, 0, got.Z(), 1e-6)
	assert.Equal(t, float32(1), got.W())
}

func TestVelocityKernel_GroundRepulsion(t *testing.T) {
	positions := []mgl32.Vec4{{0, 10, 0, 1}}
	velocities := []mgl32.Vec4{{0, 0, 0, 1}}

	got := VelocityKernel(0, positions, velocities, testParams.Zones(), 0.1)

	// ground push (1 - 100/900)·10 plus center pull 0.5
	assert.InDelta(t, 8.8889+0.5, got.Y(), 1e-3)
}

func TestVelocityKernel_SpeedLimit(t *testing.T) {
	tests := []struct {
		name     string
		position mgl32.Vec4
		limit    float32
	}{
		{name: "open air", position: mgl32.Vec4{0, 200, 0, 1}, limit: SpeedLimit},
		{name: "ground band", position: mgl32.Vec4{0, 10, 0, 1}, limit: SpeedLimit + GroundSpeedBoost},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			positions := []mgl32.Vec4{tt.position}
			velocities := []mgl32.Vec4{{100, 0, 0, 1}}

			got := VelocityKernel(0, positions, velocities, testParams.Zones(), 0.016)
			assert.InDelta(t, tt.limit, got.Vec3().Len(), 1e-4)
		})
	}
}

func TestVelocityKernel_SeparationPushesApart(t *testing.T) {
	positions := []mgl32.Vec4{{0, 200, 0, 1}, {1, 200, 0, 1}}
	velocities := []mgl32.Vec4{{0, 0, 0, 1}, {0, 0, 0, 1}}

	got := VelocityKernel(0, positions, velocities, testParams.Zones(), 0.016)

	assert.Less(t, got.X(), float32(0))
	assert.LessOrEqual(t, got.Vec3().Len(), SpeedLimit+1e-4)
}

func TestVelocityKernel_IdenticalTexelsStayFinite(t *testing.T) {
	positions := make([]mgl32.Vec4, 16)
	velocities := make([]mgl32.Vec4, 16)
	for i := range positions {
		positions[i] = mgl32.Vec4{5, 150, 5, 1}
	}

	for i := range positions {
		got := VelocityKernel(i, positions, velocities, testParams.Zones(), 0.016)
		require.False(t, hasNaN(got), "texel %d produced %v", i, got)
	}
}

func TestVelocityKernel_RandomGridRespectsLimit(t *testing.T) {
	positions, velocities := InitialGrid(rand.New(rand.NewSource(11)))
	zones := testParams.Zones()

	for i := 0; i < TexelCount; i += 37 {
		got := VelocityKernel(i, positions, velocities, zones, 0.016)
		assert.False(t, hasNaN(got))
		assert.LessOrEqual(t, got.Vec3().Len(), SpeedLimit+GroundSpeedBoost+1e-4)
	}
}

func TestPositionKernel_Integrates(t *testing.T) {
	got := PositionKernel(mgl32.Vec4{1, 2, 3, 0}, mgl32.Vec4{1, 0, 0, 1}, 0.1)

	assert.InDelta(t, 2.5, got.X(), 1e-5)
	assert.InDelta(t, 2, got.Y(), 1e-6)
	assert.InDelta(t, 3, got.Z(), 1e-6)
	// delta + |v.xz|·delta·3
	assert.InDelta(t, 0.4, got.W(), 1e-5)
}

func TestPositionKernel_PhaseWraps(t *testing.T) {
	tests := []struct {
		name     string
		phase    float32
		velocity mgl32.Vec4
		delta    float32
	}{
		{name: "just below wrap", phase: 62.8, velocity: mgl32.Vec4{0, 0, 0, 1}, delta: 0.1},
		{name: "climbing", phase: 60, velocity: mgl32.Vec4{0, 9, 0, 1}, delta: 1},
		{name: "fast", phase: 0, velocity: mgl32.Vec4{14, 0, 14, 1}, delta: 1},
		{name: "zero", phase: 0, velocity: mgl32.Vec4{}, delta: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PositionKernel(mgl32.Vec4{0, 0, 0, tt.phase}, tt.velocity, tt.delta)
			assert.GreaterOrEqual(t, got.W(), float32(0))
			assert.Less(t, got.W(), PhaseWrap)
		})
	}
}

func TestInitialGrid_Ranges(t *testing.T) {
	positions, velocities := InitialGrid(rand.New(rand.NewSource(5)))
	require.Len(t, positions, TexelCount)
	require.Len(t, velocities, TexelCount)

	for i := range positions {
		p, v := positions[i], velocities[i]
		assert.True(t, p.X() >= -Bounds/2 && p.X() < Bounds/2)
		assert.True(t, p.Y() >= 100 && p.Y() < Bounds+100)
		assert.Equal(t, float32(1), p.W())
		assert.True(t, v.X() >= -5 && v.X() < 5)
		assert.Equal(t, float32(1), v.W())
	}
}
