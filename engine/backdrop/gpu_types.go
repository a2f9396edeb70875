package backdrop

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

// GPUSkyUniformsSource is the WGSL definition of the SkyUniforms struct (48 bytes).
//
//go:embed assets/sky_uniforms.wgsl
var GPUSkyUniformsSource string

// GPUWaterUniformsSource is the WGSL definition of the WaterUniforms struct (64 bytes).
//
//go:embed assets/water_uniforms.wgsl
var GPUWaterUniformsSource string

//go:embed assets/position_vertex.wgsl
var positionVertexSource string

var (
	//go:embed assets/sky_vert.wgsl
	skyVertexShaderSource string
	//go:embed assets/sky_frag.wgsl
	skyFragmentShaderSource string
	//go:embed assets/water_vert.wgsl
	waterVertexShaderSource string
	//go:embed assets/water_frag.wgsl
	waterFragmentShaderSource string
)

// GPUSkyUniforms matches the WGSL SkyUniforms struct.
type GPUSkyUniforms struct {
	SunPosition     mgl32.Vec3 // offset  0
	Turbidity       float32    // offset 12
	Up              mgl32.Vec3 // offset 16
	Rayleigh        float32    // offset 28
	MieCoefficient  float32    // offset 32
	MieDirectionalG float32    // offset 36
	_pad            [2]float32 // offset 40
}

// NewGPUSkyUniforms packs a sky model for upload.
func NewGPUSkyUniforms(m SkyModel) GPUSkyUniforms {
	return GPUSkyUniforms{
		SunPosition:     m.SunPosition,
		Turbidity:       m.Turbidity,
		Up:              m.Up,
		Rayleigh:        m.Rayleigh,
		MieCoefficient:  m.MieCoefficient,
		MieDirectionalG: m.MieDirectionalG,
	}
}

// Size returns the size of the GPUSkyUniforms struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (48)
func (g *GPUSkyUniforms) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the uniforms into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUSkyUniforms) Marshal() []byte {
	buf := make([]byte, g.Size())
	putVec3(buf[0:], g.SunPosition)
	putFloat(buf[12:], g.Turbidity)
	putVec3(buf[16:], g.Up)
	putFloat(buf[28:], g.Rayleigh)
	putFloat(buf[32:], g.MieCoefficient)
	putFloat(buf[36:], g.MieDirectionalG)
	return buf
}

// GPUWaterUniforms matches the WGSL WaterUniforms struct.
type GPUWaterUniforms struct {
	SunDirection    mgl32.Vec3 // offset  0
	Time            float32    // offset 12
	SunColor        mgl32.Vec3 // offset 16
	DistortionScale float32    // offset 28
	WaterColor      mgl32.Vec3 // offset 32
	Size            float32    // offset 44
	Eye             mgl32.Vec3 // offset 48
	Alpha           float32    // offset 60
}

// Marshal serializes the uniforms into a 64 byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUWaterUniforms) Marshal() []byte {
	buf := make([]byte, unsafe.Sizeof(*g))
	putVec3(buf[0:], g.SunDirection)
	putFloat(buf[12:], g.Time)
	putVec3(buf[16:], g.SunColor)
	putFloat(buf[28:], g.DistortionScale)
	putVec3(buf[32:], g.WaterColor)
	putFloat(buf[44:], g.Size)
	putVec3(buf[48:], g.Eye)
	putFloat(buf[60:], g.Alpha)
	return buf
}

// GPUPositionVertex is the position-only vertex of the sky box and the water plane.
type GPUPositionVertex struct {
	Position mgl32.Vec3
}

// BoxGeometry returns a unit cube centered on the origin as 8 corners and 36 indices.
func BoxGeometry() ([]GPUPositionVertex, []uint32) {
	vertices := make([]GPUPositionVertex, 0, 8)
	for i := range 8 {
		vertices = append(vertices, GPUPositionVertex{Position: mgl32.Vec3{
			float32(i&1) - 0.5,
			float32(i>>1&1) - 0.5,
			float32(i>>2&1) - 0.5,
		}})
	}
	indices := []uint32{
		0, 2, 1, 1, 2, 3, // -z
		4, 5, 6, 5, 7, 6, // +z
		0, 1, 4, 1, 5, 4, // -y
		2, 6, 3, 3, 6, 7, // +y
		0, 4, 2, 2, 4, 6, // -x
		1, 3, 5, 3, 7, 5, // +x
	}
	return vertices, indices
}

// PlaneGeometry returns a size×size quad lying in the XZ plane at y = 0.
func PlaneGeometry(size float32) ([]GPUPositionVertex, []uint32) {
	h := size / 2
	vertices := []GPUPositionVertex{
		{Position: mgl32.Vec3{-h, 0, -h}},
		{Position: mgl32.Vec3{h, 0, -h}},
		{Position: mgl32.Vec3{-h, 0, h}},
		{Position: mgl32.Vec3{h, 0, h}},
	}
	return vertices, []uint32{0, 2, 1, 1, 2, 3}
}

func putFloat(buf []byte, v float32) {
	binary.LittleEndian.PutUint32(buf, math.Float32bits(v))
}

func putVec3(buf []byte, v mgl32.Vec3) {
	for i := range 3 {
		putFloat(buf[i*4:], v[i])
	}
}
