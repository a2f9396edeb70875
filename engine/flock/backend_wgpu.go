package flock

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-flock/engine/renderer"
	"github.com/Carmen-Shannon/oxy-flock/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-flock/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-flock/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// VelocityPipelineKey is the compute pipeline running the velocity kernel.
	VelocityPipelineKey = "flock_velocity"
	// PositionPipelineKey is the compute pipeline running the position kernel.
	PositionPipelineKey = "flock_position"
)

// computeWorkgroups matches @workgroup_size(64) in both kernels.
var computeWorkgroups = [3]uint32{(TexelCount + 63) / 64, 1, 1}

// wgpuBackend keeps the grid in two pairs of storage buffers and ping-pongs between them.
// The velocity pass reads P[c], V[c] and writes V[1-c]. The position pass reads P[c], V[1-c]
// and writes P[1-c]. Both passes are encoded into the engine's compute frame in that order.
type wgpuBackend struct {
	r renderer.Renderer

	uniformBuffer *wgpu.Buffer
	positions     [2]*wgpu.Buffer
	velocities    [2]*wgpu.Buffer

	velocityProviders [2]bind_group_provider.BindGroupProvider
	positionProviders [2]bind_group_provider.BindGroupProvider

	current int
}

var _ backend = &wgpuBackend{}

// computePipelines builds the velocity and position compute pipelines.
func computePipelines() (pipeline.Pipeline, pipeline.Pipeline) {
	include := shader.WithInclude("flock_uniforms", GPUFlockUniformsSource, "FlockUniforms")

	velocity := shader.NewShaderFromSource(VelocityPipelineKey, shader.ShaderTypeCompute, velocityShaderSource,
		include,
		shader.WithDefine("BOUNDS", BoundsDefine),
	)
	position := shader.NewShaderFromSource(PositionPipelineKey, shader.ShaderTypeCompute, positionShaderSource, include)

	return pipeline.NewPipeline(VelocityPipelineKey, pipeline.PipelineTypeCompute, pipeline.WithComputeShader(velocity)),
		pipeline.NewPipeline(PositionPipelineKey, pipeline.PipelineTypeCompute, pipeline.WithComputeShader(position))
}

func newWGPUBackend(r renderer.Renderer, positions, velocities []mgl32.Vec4) (*wgpuBackend, error) {
	velocityPipeline, positionPipeline := computePipelines()
	if err := r.RegisterPipelines(velocityPipeline, positionPipeline); err != nil {
		return nil, fmt.Errorf("failed to register flock compute pipelines: %w", err)
	}

	b := &wgpuBackend{r: r}
	uniforms := GPUFlockUniforms{}
	var err error
	b.uniformBuffer, err = r.CreateBuffer("flock uniforms", uint64(uniforms.Size()), wgpu.BufferUsageUniform, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create flock uniforms: %w", err)
	}

	size := uint64(TexelCount * 16)
	initial := [2][]byte{texelBytes(positions), texelBytes(velocities)}
	for k := range 2 {
		var posData, velData []byte
		if k == 0 {
			posData, velData = initial[0], initial[1]
		}
		if b.positions[k], err = r.CreateBuffer(fmt.Sprintf("flock positions %d", k), size, wgpu.BufferUsageStorage, posData); err != nil {
			b.Release()
			return nil, fmt.Errorf("failed to create position buffer %d: %w", k, err)
		}
		if b.velocities[k], err = r.CreateBuffer(fmt.Sprintf("flock velocities %d", k), size, wgpu.BufferUsageStorage, velData); err != nil {
			b.Release()
			return nil, fmt.Errorf("failed to create velocity buffer %d: %w", k, err)
		}
	}

	velocityLayout := velocityPipeline.Shader(shader.ShaderTypeCompute).BindGroupLayoutDescriptor(0)
	positionLayout := positionPipeline.Shader(shader.ShaderTypeCompute).BindGroupLayoutDescriptor(0)
	for c := range 2 {
		next := 1 - c
		b.velocityProviders[c] = bind_group_provider.NewBindGroupProvider(fmt.Sprintf("flock velocity %d", c),
			bind_group_provider.WithSharedBuffer(0, b.uniformBuffer),
			bind_group_provider.WithSharedBuffer(1, b.positions[c]),
			bind_group_provider.WithSharedBuffer(2, b.velocities[c]),
			bind_group_provider.WithSharedBuffer(3, b.velocities[next]),
		)
		b.positionProviders[c] = bind_group_provider.NewBindGroupProvider(fmt.Sprintf("flock position %d", c),
			bind_group_provider.WithSharedBuffer(0, b.uniformBuffer),
			bind_group_provider.WithSharedBuffer(1, b.positions[c]),
			bind_group_provider.WithSharedBuffer(2, b.velocities[next]),
			bind_group_provider.WithSharedBuffer(3, b.positions[next]),
		)
		if err := r.InitBindGroup(b.velocityProviders[c], velocityLayout, nil, nil); err != nil {
			b.Release()
			return nil, fmt.Errorf("failed to create velocity bind group %d: %w", c, err)
		}
		if err := r.InitBindGroup(b.positionProviders[c], positionLayout, nil, nil); err != nil {
			b.Release()
			return nil, fmt.Errorf("failed to create position bind group %d: %w", c, err)
		}
	}

	return b, nil
}

// Step encodes both passes into the open compute frame. It must run between the renderer's
// BeginComputeFrame and EndComputeFrame.
func (b *wgpuBackend) Step(frame FrameUniforms, params Params) error {
	uniforms := NewGPUFlockUniforms(frame, params)
	b.r.WriteBuffer(b.uniformBuffer, 0, uniforms.Marshal())

	b.r.DispatchCompute(VelocityPipelineKey, b.velocityProviders[b.current], computeWorkgroups)
	b.r.DispatchCompute(PositionPipelineKey, b.positionProviders[b.current], computeWorkgroups)

	b.current = 1 - b.current
	return nil
}

func (b *wgpuBackend) Positions() []mgl32.Vec4 {
	return nil
}

func (b *wgpuBackend) Velocities() []mgl32.Vec4 {
	return nil
}

func (b *wgpuBackend) DrawBuffers() (*wgpu.Buffer, *wgpu.Buffer) {
	return b.positions[b.current], b.velocities[b.current]
}

// Release frees the bind groups and the grid buffers.
func (b *wgpuBackend) Release() {
	for c := range 2 {
		if b.velocityProviders[c] != nil {
			b.velocityProviders[c].Release()
		}
		if b.positionProviders[c] != nil {
			b.positionProviders[c].Release()
		}
		if b.positions[c] != nil {
			b.positions[c].Release()
		}
		if b.velocities[c] != nil {
			b.velocities[c].Release()
		}
	}
	if b.uniformBuffer != nil {
		b.uniformBuffer.Release()
	}
}
