package pipeline

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
)

func TestNewPipelineDefaults(t *testing.T) {
	p := NewPipeline("bird", PipelineTypeRender)

	assert.Equal(t, "bird", p.PipelineKey())
	assert.Equal(t, PipelineTypeRender, p.Type())
	assert.True(t, p.DepthTestEnabled())
	assert.True(t, p.DepthWriteEnabled())
	assert.False(t, p.BlendEnabled())
	assert.Equal(t, wgpu.CullModeNone, p.CullMode())
	assert.Equal(t, wgpu.PrimitiveTopologyTriangleList, p.Topology())
	assert.NotNil(t, p.BlendState())
}

func TestPipelineOptions(t *testing.T) {
	p := NewPipeline("sky", PipelineTypeRender,
		WithDepthTestEnabled(false),
		WithDepthWriteEnabled(false),
		WithBlendEnabled(true),
		WithCullMode(wgpu.CullModeBack),
	)

	assert.False(t, p.DepthTestEnabled())
	assert.False(t, p.DepthWriteEnabled())
	assert.True(t, p.BlendEnabled())
	assert.Equal(t, wgpu.CullModeBack, p.CullMode())
}

func TestPipelineUnsetPipelineObject(t *testing.T) {
	compute := NewPipeline("velocity", PipelineTypeCompute)
	assert.Nil(t, compute.Pipeline().(*wgpu.ComputePipeline))
	assert.Nil(t, compute.Shader(0))
}
