package flock

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-flock/common"
	"github.com/Carmen-Shannon/oxy-flock/engine/renderer"
	"github.com/Carmen-Shannon/oxy-flock/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-flock/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-flock/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-flock/engine/scene"
	"github.com/cogentcore/webgpu/wgpu"
)

const (
	// BirdPipelineKey is the render pipeline drawing the bird mesh.
	BirdPipelineKey = "flock_birds"

	// BirdNodeName is the scene node name of the bird mesh.
	BirdNodeName = "birds"

	// birdGroup is the @group holding the bird uniforms and the grid.
	birdGroup = 1

	// birdUniformColor is carried in the bird uniforms for parity with the material color.
	birdUniformColor = 0xff2200
)

// birdPipeline builds the double sided, depth tested bird render pipeline.
func birdPipeline() pipeline.Pipeline {
	vs := shader.NewShaderFromSource(BirdPipelineKey+"_vert", shader.ShaderTypeVertex, birdVertexShaderSource,
		shader.WithInclude("bird_uniforms", GPUBirdUniformsSource, "BirdUniforms"),
		shader.WithInclude("bird_vertex", GPUBirdVertexSource, ""),
	)
	fs := shader.NewShaderFromSource(BirdPipelineKey+"_frag", shader.ShaderTypeFragment, birdFragmentShaderSource)

	return pipeline.NewPipeline(BirdPipelineKey, pipeline.PipelineTypeRender,
		pipeline.WithVertexShader(vs),
		pipeline.WithFragmentShader(fs),
		pipeline.WithCullMode(wgpu.CullModeNone),
		pipeline.WithDepthTestEnabled(true),
		pipeline.WithDepthWriteEnabled(true),
	)
}

// birdMesh is the scene node drawing the flock. It keeps one bird bind group per grid buffer
// pair so ping-ponging never rebuilds bind groups.
type birdMesh struct {
	mu *sync.Mutex
	r  renderer.Renderer

	mesh          bind_group_provider.BindGroupProvider
	uniformBuffer *wgpu.Buffer
	layout        wgpu.BindGroupLayoutDescriptor

	providers map[*wgpu.Buffer]bind_group_provider.BindGroupProvider
	current   bind_group_provider.BindGroupProvider
	visible   bool
}

var _ scene.Node = &birdMesh{}

func newBirdMesh(r renderer.Renderer, p pipeline.Pipeline) (*birdMesh, error) {
	m := &birdMesh{
		mu:        &sync.Mutex{},
		r:         r,
		mesh:      bind_group_provider.NewBindGroupProvider("flock bird mesh"),
		layout:    p.Shader(shader.ShaderTypeVertex).BindGroupLayoutDescriptor(birdGroup),
		providers: make(map[*wgpu.Buffer]bind_group_provider.BindGroupProvider),
		visible:   true,
	}

	geometry := BirdGeometry()
	if err := r.InitMeshBuffers(m.mesh, common.SliceToBytes(geometry), nil, len(geometry)); err != nil {
		return nil, fmt.Errorf("failed to upload bird geometry: %w", err)
	}

	uniforms := GPUBirdUniforms{}
	var err error
	m.uniformBuffer, err = r.CreateBuffer("flock bird uniforms", uint64(uniforms.Size()), wgpu.BufferUsageUniform, nil)
	if err != nil {
		m.mesh.Release()
		return nil, fmt.Errorf("failed to create bird uniforms: %w", err)
	}
	return m, nil
}

func (m *birdMesh) Name() string {
	return BirdNodeName
}

func (m *birdMesh) Visible() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.visible && m.current != nil
}

func (m *birdMesh) PipelineKey() string {
	return BirdPipelineKey
}

func (m *birdMesh) MeshProvider() bind_group_provider.BindGroupProvider {
	return m.mesh
}

func (m *birdMesh) BindGroupProvider(group int) bind_group_provider.BindGroupProvider {
	if group != birdGroup {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// writeUniforms uploads the per-frame bird uniforms.
func (m *birdMesh) writeUniforms(frame FrameUniforms) {
	uniforms := GPUBirdUniforms{
		Model:     BirdModelMatrix(),
		Color:     common.HexToRGB(birdUniformColor),
		Time:      frame.Time,
		Delta:     frame.Delta,
		GridWidth: Width,
	}
	m.r.WriteBuffer(m.uniformBuffer, 0, uniforms.Marshal())
}

// setGrid points the next draw at the given grid buffers, creating their bind group on first use.
func (m *birdMesh) setGrid(positions, velocities *wgpu.Buffer) error {
	if positions == nil || velocities == nil {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if p, ok := m.providers[positions]; ok {
		m.current = p
		return nil
	}

	p := bind_group_provider.NewBindGroupProvider(fmt.Sprintf("flock birds %d", len(m.providers)),
		bind_group_provider.WithSharedBuffer(0, m.uniformBuffer),
		bind_group_provider.WithSharedBuffer(1, positions),
		bind_group_provider.WithSharedBuffer(2, velocities),
	)
	if err := m.r.InitBindGroup(p, m.layout, nil, nil); err != nil {
		return fmt.Errorf("failed to create bird bind group: %w", err)
	}
	m.providers[positions] = p
	m.current = p
	return nil
}
