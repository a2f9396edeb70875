package flock

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

// GPUFlockUniformsSource is the WGSL definition of the FlockUniforms struct (32 bytes).
//
//go:embed assets/flock_uniforms.wgsl
var GPUFlockUniformsSource string

// GPUBirdUniformsSource is the WGSL definition of the BirdUniforms struct (96 bytes).
//
//go:embed assets/bird_uniforms.wgsl
var GPUBirdUniformsSource string

// GPUBirdVertexSource is the WGSL vertex input struct of the bird mesh.
//
//go:embed assets/bird_vertex.wgsl
var GPUBirdVertexSource string

var (
	//go:embed assets/velocity.wgsl
	velocityShaderSource string
	//go:embed assets/position.wgsl
	positionShaderSource string
	//go:embed assets/bird_vert.wgsl
	birdVertexShaderSource string
	//go:embed assets/bird_frag.wgsl
	birdFragmentShaderSource string
)

// FrameUniforms are the per-frame values shared by both kernels and the bird renderer.
type FrameUniforms struct {
	// Time is milliseconds since the flock started.
	Time float32
	// Delta is the clamped frame delta in seconds.
	Delta float32
}

// GPUFlockUniforms matches the WGSL FlockUniforms struct read by both compute kernels.
type GPUFlockUniforms struct {
	Time       float32 // offset  0
	Delta      float32 // offset  4
	Separation float32 // offset  8
	Alignment  float32 // offset 12
	Cohesion   float32 // offset 16
	Freedom    float32 // offset 20
	Width      uint32  // offset 24
	TexelCount uint32  // offset 28
}

// NewGPUFlockUniforms packs the frame values and parameters for upload.
func NewGPUFlockUniforms(frame FrameUniforms, params Params) GPUFlockUniforms {
	return GPUFlockUniforms{
		Time:       frame.Time,
		Delta:      frame.Delta,
		Separation: params.Separation,
		Alignment:  params.Alignment,
		Cohesion:   params.Cohesion,
		Freedom:    params.Freedom,
		Width:      Width,
		TexelCount: TexelCount,
	}
}

// Size returns the size of the GPUFlockUniforms struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (32)
func (g *GPUFlockUniforms) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the uniforms into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUFlockUniforms) Marshal() []byte {
	buf := make([]byte, g.Size())
	binary.LittleEndian.PutUint32(buf[0:], math.Float32bits(g.Time))
	binary.LittleEndian.PutUint32(buf[4:], math.Float32bits(g.Delta))
	binary.LittleEndian.PutUint32(buf[8:], math.Float32bits(g.Separation))
	binary.LittleEndian.PutUint32(buf[12:], math.Float32bits(g.Alignment))
	binary.LittleEndian.PutUint32(buf[16:], math.Float32bits(g.Cohesion))
	binary.LittleEndian.PutUint32(buf[20:], math.Float32bits(g.Freedom))
	binary.LittleEndian.PutUint32(buf[24:], g.Width)
	binary.LittleEndian.PutUint32(buf[28:], g.TexelCount)
	return buf
}

// GPUBirdUniforms matches the WGSL BirdUniforms struct read by the bird vertex shader.
type GPUBirdUniforms struct {
	Model     mgl32.Mat4 // offset  0
	Color     mgl32.Vec3 // offset 64
	Time      float32    // offset 76
	Delta     float32    // offset 80
	GridWidth float32    // offset 84
	_pad      [2]float32 // offset 88
}

// Size returns the size of the GPUBirdUniforms struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (96)
func (g *GPUBirdUniforms) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the uniforms into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUBirdUniforms) Marshal() []byte {
	buf := make([]byte, g.Size())
	for i := range 16 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(g.Model[i]))
	}
	for i := range 3 {
		binary.LittleEndian.PutUint32(buf[64+i*4:], math.Float32bits(g.Color[i]))
	}
	binary.LittleEndian.PutUint32(buf[76:], math.Float32bits(g.Time))
	binary.LittleEndian.PutUint32(buf[80:], math.Float32bits(g.Delta))
	binary.LittleEndian.PutUint32(buf[84:], math.Float32bits(g.GridWidth))
	return buf
}

// GPUBirdVertex is one vertex of the bird mesh. Matches the WGSL BirdVertex input (36 bytes).
type GPUBirdVertex struct {
	Position   mgl32.Vec3 // @location(0)
	Color      mgl32.Vec3 // @location(1)
	Reference  mgl32.Vec2 // @location(2)
	BirdVertex float32    // @location(3)
}

// texelBytes packs vec4 texels as the array<vec4<f32>> storage layout.
func texelBytes(texels []mgl32.Vec4) []byte {
	buf := make([]byte, len(texels)*16)
	for i, t := range texels {
		for c := range 4 {
			binary.LittleEndian.PutUint32(buf[i*16+c*4:], math.Float32bits(t[c]))
		}
	}
	return buf
}
