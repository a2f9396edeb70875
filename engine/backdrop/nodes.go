package backdrop

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-flock/common"
	"github.com/Carmen-Shannon/oxy-flock/engine/renderer"
	"github.com/Carmen-Shannon/oxy-flock/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-flock/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-flock/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-flock/engine/scene"
	"github.com/cogentcore/webgpu/wgpu"
)

const (
	// SkyPipelineKey is the render pipeline drawing the sky box.
	SkyPipelineKey = "backdrop_sky"
	// WaterPipelineKey is the render pipeline drawing the water plane.
	WaterPipelineKey = "backdrop_water"

	// SkyNodeName and WaterNodeName are the scene node names of the backdrop.
	SkyNodeName   = "sky"
	WaterNodeName = "water"

	uniformGroup = 1
	normalGroup  = 2
)

// meshNode is an indexed mesh with the bind groups it owns.
type meshNode struct {
	name        string
	pipelineKey string
	mesh        bind_group_provider.BindGroupProvider
	groups      map[int]bind_group_provider.BindGroupProvider
}

var _ scene.Node = &meshNode{}

func (n *meshNode) Name() string        { return n.name }
func (n *meshNode) Visible() bool       { return true }
func (n *meshNode) PipelineKey() string { return n.pipelineKey }

func (n *meshNode) MeshProvider() bind_group_provider.BindGroupProvider {
	return n.mesh
}

func (n *meshNode) BindGroupProvider(group int) bind_group_provider.BindGroupProvider {
	return n.groups[group]
}

// writeUniforms queues a write of the node's uniform group.
func (n *meshNode) writeUniforms(r renderer.Renderer, data []byte) {
	r.WriteBuffers([]bind_group_provider.BufferWrite{{
		Provider: n.groups[uniformGroup],
		Binding:  0,
		Data:     data,
	}})
}

func skyPipeline() pipeline.Pipeline {
	vs := shader.NewShaderFromSource(SkyPipelineKey+"_vert", shader.ShaderTypeVertex, skyVertexShaderSource,
		shader.WithInclude("position_vertex", positionVertexSource, ""),
		shader.WithDefine("SKY_SCALE", fmt.Sprintf("%.2f", float64(SkyScale))),
	)
	fs := shader.NewShaderFromSource(SkyPipelineKey+"_frag", shader.ShaderTypeFragment, skyFragmentShaderSource,
		shader.WithInclude("sky_uniforms", GPUSkyUniformsSource, "SkyUniforms"),
	)
	return pipeline.NewPipeline(SkyPipelineKey, pipeline.PipelineTypeRender,
		pipeline.WithVertexShader(vs),
		pipeline.WithFragmentShader(fs),
		pipeline.WithCullMode(wgpu.CullModeNone),
		pipeline.WithDepthTestEnabled(false),
		pipeline.WithDepthWriteEnabled(false),
	)
}

func waterPipeline() pipeline.Pipeline {
	vs := shader.NewShaderFromSource(WaterPipelineKey+"_vert", shader.ShaderTypeVertex, waterVertexShaderSource,
		shader.WithInclude("position_vertex", positionVertexSource, ""),
	)
	fs := shader.NewShaderFromSource(WaterPipelineKey+"_frag", shader.ShaderTypeFragment, waterFragmentShaderSource,
		shader.WithInclude("water_uniforms", GPUWaterUniformsSource, "WaterUniforms"),
		shader.WithInclude("environment", scene.EnvironmentSource, ""),
	)
	return pipeline.NewPipeline(WaterPipelineKey, pipeline.PipelineTypeRender,
		pipeline.WithVertexShader(vs),
		pipeline.WithFragmentShader(fs),
		pipeline.WithCullMode(wgpu.CullModeNone),
		pipeline.WithDepthTestEnabled(true),
		pipeline.WithDepthWriteEnabled(true),
	)
}

// newMeshNode uploads an indexed mesh and creates the node's uniform bind group from the
// fragment shader layout.
func newMeshNode(r renderer.Renderer, p pipeline.Pipeline, name string, vertices []GPUPositionVertex, indices []uint32) (*meshNode, error) {
	n := &meshNode{
		name:        name,
		pipelineKey: p.PipelineKey(),
		mesh:        bind_group_provider.NewBindGroupProvider(name + " mesh"),
		groups:      make(map[int]bind_group_provider.BindGroupProvider),
	}
	if err := r.InitMeshBuffers(n.mesh, common.SliceToBytes(vertices), common.SliceToBytes(indices), len(indices)); err != nil {
		return nil, fmt.Errorf("failed to upload %s mesh: %w", name, err)
	}

	uniforms := bind_group_provider.NewBindGroupProvider(name + " uniforms")
	layout := p.Shader(shader.ShaderTypeFragment).BindGroupLayoutDescriptor(uniformGroup)
	if err := r.InitBindGroup(uniforms, layout, nil, nil); err != nil {
		n.mesh.Release()
		return nil, fmt.Errorf("failed to create %s uniforms: %w", name, err)
	}
	n.groups[uniformGroup] = uniforms
	return n, nil
}

// attachNormalMap uploads the water normal map as a linear, repeating texture group.
func (n *meshNode) attachNormalMap(r renderer.Renderer, p pipeline.Pipeline, size int, seed int64) error {
	normals := bind_group_provider.NewBindGroupProvider(n.name + " normals")

	staging := common.NewTextureStagingData(GenerateWaterNormals(size, seed))
	staging.Format = wgpu.TextureFormatRGBA8Unorm
	if err := r.InitTextureView(normals, 0, staging); err != nil {
		return fmt.Errorf("failed to upload water normals: %w", err)
	}
	err := r.InitSampler(normals, 1, common.SamplerStagingData{
		AddressModeU: wgpu.AddressModeRepeat,
		AddressModeV: wgpu.AddressModeRepeat,
		AddressModeW: wgpu.AddressModeRepeat,
		MagFilter:    wgpu.FilterModeLinear,
		MinFilter:    wgpu.FilterModeLinear,
	})
	if err != nil {
		return fmt.Errorf("failed to create water normal sampler: %w", err)
	}
	layout := p.Shader(shader.ShaderTypeFragment).BindGroupLayoutDescriptor(normalGroup)
	if err := r.InitBindGroup(normals, layout, nil, nil); err != nil {
		return fmt.Errorf("failed to create water normal bind group: %w", err)
	}
	n.groups[normalGroup] = normals
	return nil
}
