package flock

import (
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-flock/common"
	"github.com/Carmen-Shannon/oxy-flock/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-flock/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestFlock(t *testing.T, clock common.Clock) Flock {
	t.Helper()
	return NewFlock(
		WithSeed(42),
		WithClock(clock),
		WithWorkers(4),
		WithLogger(zaptest.NewLogger(t)),
	)
}

func TestAnimate_ClampsDelta(t *testing.T) {
	clock := common.NewManualClock(time.Unix(0, 0))
	f := newTestFlock(t, clock)

	clock.Advance(5 * time.Minute)
	f.Animate()
	assert.Equal(t, MaxDelta, f.Frame().Delta)

	clock.Advance(16 * time.Millisecond)
	f.Animate()
	assert.InDelta(t, 0.016, f.Frame().Delta, 1e-6)
	assert.InDelta(t, 5*60*1000+16, f.Frame().Time, 0.1)
}

func TestAnimate_PausedKeepsGrid(t *testing.T) {
	clock := common.NewManualClock(time.Unix(0, 0))
	f := newTestFlock(t, clock)
	before := f.Positions()

	f.SetPaused(true)
	require.True(t, f.Paused())
	clock.Advance(20 * time.Millisecond)
	f.Animate()

	assert.Equal(t, before, f.Positions())
	assert.InDelta(t, 0.02, f.Frame().Delta, 1e-6)

	f.SetPaused(false)
	clock.Advance(20 * time.Millisecond)
	f.Animate()
	assert.NotEqual(t, before, f.Positions())
}

func TestStep_Deterministic(t *testing.T) {
	clock := common.NewManualClock(time.Unix(0, 0))
	a := newTestFlock(t, clock)
	b := NewFlock(WithSeed(42), WithClock(clock), WithWorkers(1))

	for _, delta := range []float32{0.016, 0.033, 0.5} {
		require.NoError(t, a.Step(delta))
		require.NoError(t, b.Step(delta))
	}

	assert.Equal(t, a.Params(), b.Params())
	assert.Equal(t, a.Positions(), b.Positions())
	assert.Equal(t, a.Velocities(), b.Velocities())
}

func TestStep_VelocitiesWithinLimit(t *testing.T) {
	f := newTestFlock(t, common.NewManualClock(time.Unix(0, 0)))
	require.NoError(t, f.Step(0.016))

	for i, v := range f.Velocities() {
		require.False(t, hasNaN(v), "texel %d", i)
		require.LessOrEqual(t, v.Vec3().Len(), SpeedLimit+GroundSpeedBoost+1e-4, "texel %d", i)
		require.Equal(t, float32(1), v.W())
	}
	for _, p := range f.Positions() {
		require.GreaterOrEqual(t, p.W(), float32(0))
		require.Less(t, p.W(), PhaseWrap)
	}
}

func TestSetParams(t *testing.T) {
	f := NewFlock(WithSeed(1), WithParams(testParams))
	assert.Equal(t, testParams, f.Params())

	next := Params{Separation: 10, Alignment: 20, Cohesion: 5, Freedom: 0.5}
	f.SetParams(next)
	assert.Equal(t, next, f.Params())
}

func TestParseBackendType(t *testing.T) {
	tests := []struct {
		in      string
		want    BackendType
		wantErr bool
	}{
		{in: "gpu", want: BackendGPU},
		{in: " CPU ", want: BackendCPU},
		{in: "metal", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseBackendType(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want.String(), got.String())
		})
	}
}

func TestInit_NilScene(t *testing.T) {
	_, err := Init(nil)
	assert.Error(t, err)
}

func TestComputePipelines_Layouts(t *testing.T) {
	velocity, position := computePipelines()

	vs := velocity.Shader(shader.ShaderTypeCompute)
	require.NotNil(t, vs)
	assert.Contains(t, vs.Source(), "const BOUNDS: f32 = 800.00;")
	assert.Equal(t, [3]uint32{64, 1, 1}, vs.WorkgroupSize())

	for _, p := range []pipeline.Pipeline{velocity, position} {
		desc := p.Shader(shader.ShaderTypeCompute).BindGroupLayoutDescriptor(0)
		require.Len(t, desc.Entries, 4, p.PipelineKey())
		assert.Equal(t, wgpu.BufferBindingTypeUniform, desc.Entries[0].Buffer.Type)
		assert.Equal(t, uint64(32), desc.Entries[0].Buffer.MinBindingSize)
		assert.Equal(t, wgpu.BufferBindingTypeReadOnlyStorage, desc.Entries[1].Buffer.Type)
		assert.Equal(t, wgpu.BufferBindingTypeReadOnlyStorage, desc.Entries[2].Buffer.Type)
		assert.Equal(t, wgpu.BufferBindingTypeStorage, desc.Entries[3].Buffer.Type)
	}
	assert.Equal(t, "velocity_out", vs.BindGroupVarName(0, 3))
}

func TestBirdPipeline_Layouts(t *testing.T) {
	p := birdPipeline()
	assert.Equal(t, wgpu.CullModeNone, p.CullMode())
	assert.True(t, p.DepthTestEnabled())

	vs := p.Shader(shader.ShaderTypeVertex)
	require.NotNil(t, vs)
	assert.Equal(t, "vs_main", vs.EntryPoint())
	assert.Equal(t, "camera", vs.BindGroupVarName(0, 0))

	bird := vs.BindGroupLayoutDescriptor(birdGroup)
	require.Len(t, bird.Entries, 3)
	assert.Equal(t, uint64(96), bird.Entries[0].Buffer.MinBindingSize)
	assert.Equal(t, wgpu.BufferBindingTypeReadOnlyStorage, bird.Entries[1].Buffer.Type)

	layout := vs.VertexLayout(0)
	require.Len(t, layout, 1)
	assert.Equal(t, uint64(36), layout[0].ArrayStride)

	fs := p.Shader(shader.ShaderTypeFragment)
	require.NotNil(t, fs)
	assert.Equal(t, "fs_main", fs.EntryPoint())
	assert.Empty(t, fs.BindGroupLayoutDescriptors())
}
