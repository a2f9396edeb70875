package backdrop

import (
	"math/rand"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-flock/common"
	"github.com/Carmen-Shannon/oxy-flock/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func at(hour, minute int) time.Time {
	return time.Date(2024, time.June, 1, hour, minute, 0, 0, time.UTC)
}

func TestHourOf(t *testing.T) {
	assert.InDelta(t, 13.5, HourOf(at(13, 30)), 1e-6)
	assert.InDelta(t, 0, HourOf(at(0, 0)), 1e-6)
}

func TestSunAt(t *testing.T) {
	tests := []struct {
		name      string
		now       time.Time
		day       bool
		elevation float32
	}{
		{name: "noon", now: at(12, 0), day: true, elevation: 0},
		{name: "dawn", now: at(6, 0), day: true, elevation: -90},
		{name: "midnight", now: at(0, 0), day: false, elevation: 0},
		{name: "evening", now: at(20, 0), day: false, elevation: -300},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sun := SunAt(tt.now, rand.New(rand.NewSource(7)))
			assert.Equal(t, tt.day, sun.Day)
			assert.InDelta(t, tt.elevation, sun.Elevation, 1e-4)
			assert.InDelta(t, 1, sun.Position.Len(), 1e-5)
		})
	}

	noon := SunAt(at(12, 0), rand.New(rand.NewSource(7)))
	assert.InDelta(t, 0, noon.Position.X(), 1e-6)
	assert.InDelta(t, 1, noon.Position.Y(), 1e-6)
	assert.InDelta(t, 0, noon.Position.Z(), 1e-6)
}

func TestSkyModel_DayBrighterThanNight(t *testing.T) {
	day := SkyModel{
		SunPosition:     mgl32.Vec3{0, 1, 0},
		Up:              mgl32.Vec3{0, 1, 0},
		Turbidity:       5,
		Rayleigh:        2.5,
		MieCoefficient:  MieCoefficient,
		MieDirectionalG: MieDirectionalG,
	}
	night := day
	night.Turbidity = 0.05
	night.Rayleigh = 0.005

	dir := mgl32.Vec3{0, 0.3, 1}
	assert.Greater(t, day.Luminance(dir), night.Luminance(dir))

	c := day.Radiance(dir)
	for i := range 3 {
		assert.False(t, c[i] != c[i], "channel %d is NaN", i)
	}
}

func TestBakeEnvironment(t *testing.T) {
	sun := SunAt(at(12, 0), rand.New(rand.NewSource(3)))
	img := BakeEnvironment(NewSkyModel(sun), 64, 32)

	require.Equal(t, 64, img.Bounds().Dx())
	require.Equal(t, 32, img.Bounds().Dy())
	for y := range 32 {
		for x := range 64 {
			require.Equal(t, uint8(0xff), img.RGBAAt(x, y).A)
		}
	}
}

func TestPrefilter_SmallFactorIsIdentity(t *testing.T) {
	img := GenerateWaterNormals(8, 1)
	assert.Same(t, img, Prefilter(img, 1))
}

func TestEquirectDirection(t *testing.T) {
	up := EquirectDirection(0.5, 0)
	assert.InDelta(t, 1, up.Y(), 1e-6)

	down := EquirectDirection(0.5, 1)
	assert.InDelta(t, -1, down.Y(), 1e-6)

	horizon := EquirectDirection(0.5, 0.5)
	assert.InDelta(t, 1, horizon.X(), 1e-6)
	assert.InDelta(t, 0, horizon.Y(), 1e-6)
}

func TestWaterNormals_Tileable(t *testing.T) {
	const size = 64
	field := newWaveField(size, 11)
	for _, y := range []float64{0, 13, 40} {
		a := field.normal(0, y)
		b := field.normal(size, y)
		for i := range 3 {
			assert.InDelta(t, a[i], b[i], 1e-4)
		}
		c := field.normal(y, 0)
		d := field.normal(y, size)
		for i := range 3 {
			assert.InDelta(t, c[i], d[i], 1e-4)
		}
	}

	img := GenerateWaterNormals(size, 11)
	require.Equal(t, size, img.Bounds().Dx())
	for y := range size {
		for x := range size {
			px := img.RGBAAt(x, y)
			require.Greater(t, px.B, uint8(127))
			require.Equal(t, uint8(0xff), px.A)
		}
	}
}

func TestBackdrop_Headless(t *testing.T) {
	b := NewBackdrop(WithSeed(5), WithLogger(zaptest.NewLogger(t)), WithEnvironmentSize(16, 8))
	assert.Nil(t, b.Environment())

	b.Animate()
	b.Animate()
	assert.InDelta(t, 2*WaterTimeStep, b.WaterTime(), 1e-7)

	require.NoError(t, b.UpdateTime(at(9, 0)))
	assert.True(t, b.Sun().Day)
	assert.Equal(t, b.Sun().Position, b.Sky().SunPosition)
	assert.Equal(t, MieCoefficient, b.Sky().MieCoefficient)
	require.NotNil(t, b.Environment())
	assert.Equal(t, 16, b.Environment().Bounds().Dx())
}

func TestBackdrop_SeedDeterminesAtmosphere(t *testing.T) {
	a := NewBackdrop(WithSeed(9))
	b := NewBackdrop(WithSeed(9))
	require.NoError(t, a.UpdateTime(at(14, 0)))
	require.NoError(t, b.UpdateTime(at(14, 0)))
	assert.Equal(t, a.Sun(), b.Sun())
}

func TestInit_NilScene(t *testing.T) {
	_, _, err := Init(nil, WithClock(common.NewManualClock(at(12, 0))))
	assert.Error(t, err)
}

func TestGeometry(t *testing.T) {
	box, boxIdx := BoxGeometry()
	require.Len(t, box, 8)
	require.Len(t, boxIdx, 36)
	for _, i := range boxIdx {
		require.Less(t, i, uint32(8))
	}
	for _, v := range box {
		for i := range 3 {
			assert.InDelta(t, 0.5, abs32(v.Position[i]), 1e-6)
		}
	}

	plane, planeIdx := PlaneGeometry(WaterSize)
	require.Len(t, plane, 4)
	assert.Equal(t, []uint32{0, 2, 1, 1, 2, 3}, planeIdx)
	for _, v := range plane {
		assert.Equal(t, float32(0), v.Position.Y())
		assert.InDelta(t, WaterSize/2, abs32(v.Position.X()), 1e-3)
	}
}

func TestGPUUniforms(t *testing.T) {
	sky := NewGPUSkyUniforms(SkyModel{Turbidity: 2, Rayleigh: 3, MieCoefficient: MieCoefficient})
	assert.Equal(t, 48, sky.Size())
	assert.Len(t, sky.Marshal(), 48)

	water := GPUWaterUniforms{Alpha: 1}
	assert.Len(t, water.Marshal(), 64)
}

func TestSkyPipeline_Layouts(t *testing.T) {
	p := skyPipeline()
	assert.False(t, p.DepthTestEnabled())
	assert.Equal(t, wgpu.CullModeNone, p.CullMode())

	vs := p.Shader(shader.ShaderTypeVertex)
	require.NotNil(t, vs)
	assert.Contains(t, vs.Source(), "const SKY_SCALE: f32 = 10000.00;")
	assert.Equal(t, "camera", vs.BindGroupVarName(0, 0))
	layout := vs.VertexLayout(0)
	require.Len(t, layout, 1)
	assert.Equal(t, uint64(12), layout[0].ArrayStride)

	fs := p.Shader(shader.ShaderTypeFragment)
	require.NotNil(t, fs)
	desc := fs.BindGroupLayoutDescriptor(uniformGroup)
	require.Len(t, desc.Entries, 1)
	assert.Equal(t, uint64(48), desc.Entries[0].Buffer.MinBindingSize)
}

func TestWaterPipeline_Layouts(t *testing.T) {
	p := waterPipeline()
	assert.True(t, p.DepthTestEnabled())

	fs := p.Shader(shader.ShaderTypeFragment)
	require.NotNil(t, fs)

	uniforms := fs.BindGroupLayoutDescriptor(uniformGroup)
	require.Len(t, uniforms.Entries, 1)
	assert.Equal(t, uint64(64), uniforms.Entries[0].Buffer.MinBindingSize)

	normals := fs.BindGroupLayoutDescriptor(normalGroup)
	require.Len(t, normals.Entries, 2)
	assert.Equal(t, wgpu.TextureViewDimension2D, normals.Entries[0].Texture.ViewDimension)

	require.Len(t, fs.BindGroupLayoutDescriptor(3).Entries, 2)
	assert.Equal(t, "environment_map", fs.BindGroupVarName(3, 0))
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
