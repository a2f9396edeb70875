package scene

import (
	_ "embed"
	"errors"
	"fmt"
	"image"
	"strings"
	"sync"

	"github.com/Carmen-Shannon/oxy-flock/common"
	"github.com/Carmen-Shannon/oxy-flock/engine/camera"
	"github.com/Carmen-Shannon/oxy-flock/engine/renderer"
	"github.com/Carmen-Shannon/oxy-flock/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-flock/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
	"go.uber.org/zap"
)

// EnvironmentSource declares the scene environment map bindings. Fragment shaders that sample the
// environment include it verbatim so their layout matches the scene's environment bind group.
//
//go:embed assets/environment.wgsl
var EnvironmentSource string

// EnvironmentGroup is the @group index EnvironmentSource binds to.
const EnvironmentGroup = 3

//go:embed assets/camera_binding.wgsl
var cameraBindingSource string

// Node is one drawable entry of a scene. Nodes are drawn in the order they were added.
//
// When drawing, the scene walks every bind group the node's pipeline declares. A group the node
// provides itself is used as-is. Otherwise groups whose variables are named after the camera or the
// environment get the scene's providers. A node with an unresolved group is skipped for that frame.
type Node interface {
	// Name returns the unique name of the node within its scene.
	Name() string

	// Visible reports whether the node should be drawn this frame.
	Visible() bool

	// PipelineKey returns the key of the registered render pipeline used to draw the node.
	PipelineKey() string

	// MeshProvider returns the provider holding the node's vertex (and optional index) buffer.
	MeshProvider() bind_group_provider.BindGroupProvider

	// BindGroupProvider returns the node's own provider for a bind group index, or nil to let
	// the scene resolve it.
	//
	// Parameters:
	//   - group: the @group index declared by the pipeline's shaders
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the provider, or nil
	BindGroupProvider(group int) bind_group_provider.BindGroupProvider
}

type scene struct {
	mu *sync.RWMutex

	name   string
	active bool

	cam camera.Camera
	r   renderer.Renderer

	nodes []Node

	environmentBGP    bind_group_provider.BindGroupProvider
	environmentLayout wgpu.BindGroupLayoutDescriptor

	logger *zap.Logger

	// drawBindGroupsPool is reused across DrawCalls to avoid per-frame allocations.
	drawBindGroupsPool []bind_group_provider.BindGroupProvider
}

// Scene is an ordered container of drawable nodes sharing one camera, one renderer and one
// environment map.
type Scene interface {
	// Name returns the name of the scene.
	Name() string

	// Active reports whether the engine renders this scene.
	Active() bool

	// SetActive sets whether the engine renders this scene.
	//
	// Parameters:
	//   - active: whether the scene is active
	SetActive(active bool)

	// Camera returns the scene camera.
	Camera() camera.Camera

	// Renderer returns the renderer the scene draws with.
	Renderer() renderer.Renderer

	// Logger returns the scene logger, never nil.
	Logger() *zap.Logger

	// Add appends a node to the draw order.
	//
	// Parameters:
	//   - n: the node to add
	//
	// Returns:
	//   - error: an error if n is nil or a node with the same name exists
	Add(n Node) error

	// Remove removes the node with the given name. Unknown names are ignored.
	//
	// Parameters:
	//   - name: the node name
	Remove(name string)

	// Nodes returns a copy of the nodes in draw order.
	//
	// Returns:
	//   - []Node: the nodes
	Nodes() []Node

	// Count returns the number of nodes.
	Count() int

	// SetEnvironment uploads img as the scene environment map and rebuilds the environment bind
	// group. The previous map is released.
	//
	// Parameters:
	//   - img: an equirectangular RGBA image
	//
	// Returns:
	//   - error: an error if the upload or bind group creation fails
	SetEnvironment(img *image.RGBA) error

	// EnvironmentBindGroupProvider returns the provider behind the environment bind group.
	// Its bind group is nil until SetEnvironment succeeds.
	EnvironmentBindGroupProvider() bind_group_provider.BindGroupProvider

	// PrepareCompute writes the per-frame camera uniform. It runs inside the engine's compute frame.
	PrepareCompute()

	// DrawCalls issues one draw call per visible node in node order.
	//
	// Returns:
	//   - error: the first draw error, if any
	DrawCalls() error
}

var _ Scene = &scene{}

// NewScene creates a new Scene with the given camera and renderer. Both are required and
// NewScene panics if either is nil or the camera bind group cannot be created.
//
// Parameters:
//   - name: the name of the scene
//   - cam: the camera to attach (must not be nil)
//   - r: the renderer to attach (must not be nil)
//   - options: functional options to further configure the scene
//
// Returns:
//   - Scene: the newly created scene
func NewScene(name string, cam camera.Camera, r renderer.Renderer, options ...SceneBuilderOption) Scene {
	if cam == nil {
		panic("scene: NewScene requires a non-nil Camera")
	}
	if r == nil {
		panic("scene: NewScene requires a non-nil Renderer")
	}

	s := &scene{
		mu:                 &sync.RWMutex{},
		name:               name,
		active:             true,
		cam:                cam,
		r:                  r,
		environmentBGP:     bind_group_provider.NewBindGroupProvider(name + "_environment"),
		environmentLayout:  shader.BindGroupLayoutsFromSource(EnvironmentSource, shader.ShaderTypeFragment)[EnvironmentGroup],
		logger:             zap.NewNop(),
		drawBindGroupsPool: make([]bind_group_provider.BindGroupProvider, 0, 4),
	}

	for _, option := range options {
		option(s)
	}

	cameraLayouts := shader.BindGroupLayoutsFromSource(camera.GPUCameraUniformSource+"\n"+cameraBindingSource, shader.ShaderTypeVertex)
	if err := r.InitBindGroup(cam.BindGroupProvider(), cameraLayouts[0], nil, nil); err != nil {
		panic(fmt.Sprintf("scene: failed to init camera bind group: %v", err))
	}

	return s
}

func (s *scene) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

func (s *scene) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

func (s *scene) SetActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = active
}

func (s *scene) Camera() camera.Camera {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cam
}

func (s *scene) Renderer() renderer.Renderer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.r
}

func (s *scene) Logger() *zap.Logger {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.logger
}

func (s *scene) Add(n Node) error {
	if n == nil {
		return errors.New("scene: cannot add a nil node")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if indexOfNode(s.nodes, n.Name()) >= 0 {
		return fmt.Errorf("scene %q already has a node named %q", s.name, n.Name())
	}
	s.nodes = append(s.nodes, n)
	return nil
}

func (s *scene) Remove(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := indexOfNode(s.nodes, name); i >= 0 {
		s.nodes = append(s.nodes[:i], s.nodes[i+1:]...)
	}
}

func (s *scene) Nodes() []Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Node, len(s.nodes))
	copy(out, s.nodes)
	return out
}

func (s *scene) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.nodes)
}

func (s *scene) SetEnvironment(img *image.RGBA) error {
	if img == nil {
		return errors.New("scene: environment image is nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.r.InitTextureView(s.environmentBGP, 0, common.NewTextureStagingData(img)); err != nil {
		return fmt.Errorf("failed to upload environment map: %w", err)
	}
	if s.environmentBGP.Sampler(1) == nil {
		err := s.r.InitSampler(s.environmentBGP, 1, common.SamplerStagingData{
			AddressModeU: wgpu.AddressModeRepeat,
			AddressModeV: wgpu.AddressModeClampToEdge,
			AddressModeW: wgpu.AddressModeClampToEdge,
		})
		if err != nil {
			return fmt.Errorf("failed to create environment sampler: %w", err)
		}
	}
	s.environmentBGP.ReleaseBindGroup()
	if err := s.r.InitBindGroup(s.environmentBGP, s.environmentLayout, nil, nil); err != nil {
		return fmt.Errorf("failed to create environment bind group: %w", err)
	}
	s.logger.Debug("environment map installed",
		zap.String("scene", s.name),
		zap.Int("width", img.Bounds().Dx()),
		zap.Int("height", img.Bounds().Dy()),
	)
	return nil
}

func (s *scene) EnvironmentBindGroupProvider() bind_group_provider.BindGroupProvider {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.environmentBGP
}

func (s *scene) PrepareCompute() {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u := s.cam.Uniform()
	s.r.WriteBuffers([]bind_group_provider.BufferWrite{
		{
			Provider: s.cam.BindGroupProvider(),
			Binding:  0,
			Offset:   0,
			Data:     u.Marshal(),
		},
	})
}

func (s *scene) DrawCalls() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, n := range s.nodes {
		if !n.Visible() {
			continue
		}
		p := s.r.Pipeline(n.PipelineKey())
		if p == nil {
			continue
		}
		mesh := n.MeshProvider()
		if mesh == nil || mesh.VertexBuffer() == nil {
			continue
		}

		vertexShader := p.Shader(shader.ShaderTypeVertex)
		fragmentShader := p.Shader(shader.ShaderTypeFragment)
		varNames := mergeVarNames(vertexShader.BindGroupVarNames(), fragmentShader.BindGroupVarNames())

		maxGroup := -1
		for g := range varNames {
			maxGroup = max(maxGroup, g)
		}

		bindGroups := s.drawBindGroupsPool[:0]
		resolved := true
		for g := 0; g <= maxGroup; g++ {
			provider := n.BindGroupProvider(g)
			if provider == nil {
				provider = s.sceneProvider(varNames[g])
			}
			if provider == nil || provider.BindGroup() == nil {
				resolved = false
				break
			}
			bindGroups = append(bindGroups, provider)
		}
		if !resolved {
			continue
		}

		if err := s.r.DrawCall(n.PipelineKey(), mesh, 1, bindGroups); err != nil {
			return fmt.Errorf("draw call failed for node %q in scene %q: %w", n.Name(), s.name, err)
		}
	}
	return nil
}

// sceneProvider maps a group's variable names onto a scene-owned provider.
func (s *scene) sceneProvider(names map[int]string) bind_group_provider.BindGroupProvider {
	switch groupRole(names) {
	case roleCamera:
		return s.cam.BindGroupProvider()
	case roleEnvironment:
		return s.environmentBGP
	default:
		return nil
	}
}

type providerRole int

const (
	roleNone providerRole = iota
	roleCamera
	roleEnvironment
)

// groupRole classifies a bind group by the names of its variables.
func groupRole(names map[int]string) providerRole {
	for _, name := range names {
		lower := strings.ToLower(name)
		switch {
		case strings.Contains(lower, "camera"):
			return roleCamera
		case strings.HasPrefix(lower, "environment"):
			return roleEnvironment
		}
	}
	return roleNone
}

// mergeVarNames unions the per-group variable names of two shader stages.
func mergeVarNames(a, b map[int]map[int]string) map[int]map[int]string {
	out := make(map[int]map[int]string, len(a)+len(b))
	for _, src := range []map[int]map[int]string{a, b} {
		for g, names := range src {
			if out[g] == nil {
				out[g] = make(map[int]string, len(names))
			}
			for binding, name := range names {
				out[g][binding] = name
			}
		}
	}
	return out
}

func indexOfNode(nodes []Node, name string) int {
	for i, n := range nodes {
		if n.Name() == name {
			return i
		}
	}
	return -1
}
