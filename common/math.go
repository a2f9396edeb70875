package common

import (
	"math"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

// clipSpaceCorrection remaps OpenGL clip depth [-1, 1] to the WebGPU range [0, 1].
var clipSpaceCorrection = mgl32.Mat4{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 0.5, 0,
	0, 0, 0.5, 1,
}

// SliceToBytes converts any slice to a byte slice for GPU buffer uploads.
// Uses unsafe pointer operations to create a view into the original data.
// WARNING: The returned slice shares memory with the input - do not modify.
//
// Parameters:
//   - data: source slice of any type
//
// Returns:
//   - []byte: byte slice view of the input data, or nil if input is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := unsafe.Sizeof(zero)
	totalBytes := int(size) * len(data)
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), totalBytes)
}

// Perspective creates a right-handed perspective projection matrix whose depth range is
// the WebGPU clip range [0, 1].
//
// Parameters:
//   - fovY: vertical field of view in radians
//   - aspect: viewport aspect ratio (width/height)
//   - near: near clipping plane distance (must be > 0)
//   - far: far clipping plane distance (must be > near)
//
// Returns:
//   - mgl32.Mat4: the column-major projection matrix
func Perspective(fovY, aspect, near, far float32) mgl32.Mat4 {
	return clipSpaceCorrection.Mul4(mgl32.Perspective(fovY, aspect, near, far))
}

// SafeNormalize returns v scaled to unit length, or the zero vector when v has no length.
func SafeNormalize(v mgl32.Vec3) mgl32.Vec3 {
	l := v.Len()
	if l == 0 {
		return mgl32.Vec3{}
	}
	return v.Mul(1 / l)
}

// Spherical returns the cartesian point for the spherical coordinates (radius, phi, theta),
// where phi is the polar angle measured from +Y and theta the azimuth around +Y measured from +Z.
//
// Parameters:
//   - radius: distance from the origin
//   - phi: polar angle in radians
//   - theta: azimuthal angle in radians
//
// Returns:
//   - mgl32.Vec3: (r·sinφ·sinθ, r·cosφ, r·sinφ·cosθ)
func Spherical(radius, phi, theta float32) mgl32.Vec3 {
	sinPhi := float32(math.Sin(float64(phi))) * radius
	return mgl32.Vec3{
		sinPhi * float32(math.Sin(float64(theta))),
		float32(math.Cos(float64(phi))) * radius,
		sinPhi * float32(math.Cos(float64(theta))),
	}
}

// FloorMod returns x - y·floor(x/y) for a positive y. The result always lies in [0, y).
func FloorMod(x, y float32) float32 {
	r := x - y*float32(math.Floor(float64(x/y)))
	// float32 rounding can land exactly on y for tiny negative x
	if r >= y {
		r -= y
	}
	if r < 0 {
		r = 0
	}
	return r
}

// HexToRGB decodes a 0xRRGGBB color into linear [0, 1] float channels.
func HexToRGB(hex uint32) mgl32.Vec3 {
	return mgl32.Vec3{
		float32((hex>>16)&0xff) / 255,
		float32((hex>>8)&0xff) / 255,
		float32(hex&0xff) / 255,
	}
}
