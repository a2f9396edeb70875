package camera

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCamera_AppliesOptions(t *testing.T) {
	c := NewCamera(
		WithPosition(mgl32.Vec3{0, 60, 350}),
		WithTarget(mgl32.Vec3{0, 100, 0}),
		WithFov(mgl32.DegToRad(55)),
		WithAspect(16.0/9.0),
		WithClip(1, 20000),
	)

	assert.Equal(t, mgl32.Vec3{0, 60, 350}, c.Position())
	assert.Equal(t, mgl32.Vec3{0, 100, 0}, c.Target())
	assert.InDelta(t, mgl32.DegToRad(55), c.Fov(), 1e-6)
	assert.InDelta(t, 16.0/9.0, c.Aspect(), 1e-6)
	assert.Equal(t, float32(1), c.Near())
	assert.Equal(t, float32(20000), c.Far())
	assert.NotNil(t, c.BindGroupProvider())
}

func TestCamera_TargetProjectsToScreenCenter(t *testing.T) {
	c := NewCamera(
		WithPosition(mgl32.Vec3{0, 60, 350}),
		WithTarget(mgl32.Vec3{0, 100, 0}),
		WithClip(1, 20000),
	)

	clip := c.ViewProjectionMatrix().Mul4x1(mgl32.Vec4{0, 100, 0, 1})
	ndc := clip.Vec3().Mul(1 / clip.W())

	assert.InDelta(t, 0, ndc.X(), 1e-4)
	assert.InDelta(t, 0, ndc.Y(), 1e-4)
	assert.Greater(t, ndc.Z(), float32(0))
	assert.Less(t, ndc.Z(), float32(1))
}

func TestCamera_DepthRangeIsZeroToOne(t *testing.T) {
	c := NewCamera(WithPosition(mgl32.Vec3{0, 0, 0}), WithTarget(mgl32.Vec3{0, 0, -1}), WithClip(1, 100))

	near := c.ProjectionMatrix().Mul4x1(mgl32.Vec4{0, 0, -1, 1})
	far := c.ProjectionMatrix().Mul4x1(mgl32.Vec4{0, 0, -100, 1})

	assert.InDelta(t, 0, near.Z()/near.W(), 1e-5)
	assert.InDelta(t, 1, far.Z()/far.W(), 1e-5)
}

func TestCamera_SetAspectIgnoresNonPositive(t *testing.T) {
	c := NewCamera(WithAspect(2))
	before := c.ProjectionMatrix()

	c.SetAspect(0)
	assert.Equal(t, float32(2), c.Aspect())
	assert.Equal(t, before, c.ProjectionMatrix())

	c.SetAspect(1)
	assert.Equal(t, float32(1), c.Aspect())
	assert.NotEqual(t, before, c.ProjectionMatrix())
}

func TestGPUCameraUniform_Marshal(t *testing.T) {
	c := NewCamera(WithPosition(mgl32.Vec3{1, 2, 3}))
	u := c.Uniform()
	buf := u.Marshal()

	require.Len(t, buf, 80)
	assert.Equal(t, u.ViewProj[0], math.Float32frombits(binary.LittleEndian.Uint32(buf[0:])))
	assert.Equal(t, float32(1), math.Float32frombits(binary.LittleEndian.Uint32(buf[64:])))
	assert.Equal(t, float32(3), math.Float32frombits(binary.LittleEndian.Uint32(buf[72:])))
	assert.Equal(t, uint32(0), binary.LittleEndian.Uint32(buf[76:]))
}
