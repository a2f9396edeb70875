package flock

import (
	"fmt"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

// BackendType selects where the flock kernels run.
type BackendType int

const (
	// BackendGPU runs both kernels as WebGPU compute passes.
	BackendGPU BackendType = iota
	// BackendCPU runs both kernels on a worker pool and mirrors the grid to the GPU for drawing.
	BackendCPU
)

func (b BackendType) String() string {
	switch b {
	case BackendGPU:
		return "gpu"
	case BackendCPU:
		return "cpu"
	default:
		return fmt.Sprintf("BackendType(%d)", int(b))
	}
}

// ParseBackendType parses "gpu" or "cpu", case-insensitively.
//
// Parameters:
//   - s: the backend name
//
// Returns:
//   - BackendType: the parsed backend
//   - error: an error if the name is unknown
func ParseBackendType(s string) (BackendType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "gpu":
		return BackendGPU, nil
	case "cpu":
		return BackendCPU, nil
	default:
		return 0, fmt.Errorf("unknown flock backend %q: want gpu or cpu", s)
	}
}

// backend runs one simulation step per call: the velocity pass, then the position pass reading
// the fresh velocities, then the swap of current and next.
type backend interface {
	Step(frame FrameUniforms, params Params) error

	// Positions and Velocities return copies of the current grid, or nil when it lives on the GPU.
	Positions() []mgl32.Vec4
	Velocities() []mgl32.Vec4

	// DrawBuffers returns the storage buffers holding the current grid, or nils when headless.
	DrawBuffers() (positions, velocities *wgpu.Buffer)
}
