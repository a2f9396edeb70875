package flock

import (
	"fmt"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-flock/engine/renderer"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

type cpuBackend struct {
	pool worker.DynamicWorkerPool

	positions  [2][]mgl32.Vec4
	velocities [2][]mgl32.Vec4
	current    int
}

var _ backend = &cpuBackend{}

func newCPUBackend(positions, velocities []mgl32.Vec4, workers int) *cpuBackend {
	b := &cpuBackend{
		pool: worker.NewDynamicWorkerPool(workers, 256, 1*time.Second),
	}
	b.positions[0] = positions
	b.velocities[0] = velocities
	b.positions[1] = make([]mgl32.Vec4, len(positions))
	b.velocities[1] = make([]mgl32.Vec4, len(velocities))
	return b
}

func (b *cpuBackend) Step(frame FrameUniforms, params Params) error {
	zones := params.Zones()
	next := 1 - b.current

	positions := b.positions[b.current]
	velocities := b.velocities[b.current]
	nextVelocities := b.velocities[next]
	nextPositions := b.positions[next]

	b.parallelRows(func(i int) {
		nextVelocities[i] = VelocityKernel(i, positions, velocities, zones, frame.Delta)
	})
	b.parallelRows(func(i int) {
		nextPositions[i] = PositionKernel(positions[i], nextVelocities[i], frame.Delta)
	})

	b.current = next
	return nil
}

// parallelRows runs kernel for every texel, one pool task per grid row, and returns once all
// rows are done. Kernels only write their own texel of a next buffer.
func (b *cpuBackend) parallelRows(kernel func(i int)) {
	var wg sync.WaitGroup
	rows := len(b.positions[0]) / Width
	for row := range rows {
		wg.Add(1)
		first := row * Width
		b.pool.SubmitTask(worker.Task{
			ID: row,
			Do: func() (any, error) {
				defer wg.Done()
				for i := first; i < first+Width; i++ {
					kernel(i)
				}
				return nil, nil
			},
		})
	}
	wg.Wait()
}

func (b *cpuBackend) Positions() []mgl32.Vec4 {
	out := make([]mgl32.Vec4, len(b.positions[b.current]))
	copy(out, b.positions[b.current])
	return out
}

func (b *cpuBackend) Velocities() []mgl32.Vec4 {
	out := make([]mgl32.Vec4, len(b.velocities[b.current]))
	copy(out, b.velocities[b.current])
	return out
}

func (b *cpuBackend) DrawBuffers() (*wgpu.Buffer, *wgpu.Buffer) {
	return nil, nil
}

// mirroredBackend steps on the CPU and uploads the resulting grid so the bird mesh can draw it.
type mirroredBackend struct {
	*cpuBackend

	r          renderer.Renderer
	positions  *wgpu.Buffer
	velocities *wgpu.Buffer
}

var _ backend = &mirroredBackend{}

func newMirroredBackend(r renderer.Renderer, cpu *cpuBackend) (*mirroredBackend, error) {
	size := uint64(TexelCount * 16)
	positions, err := r.CreateBuffer("flock positions mirror", size, wgpu.BufferUsageStorage, texelBytes(cpu.positions[cpu.current]))
	if err != nil {
		return nil, fmt.Errorf("failed to create position mirror: %w", err)
	}
	velocities, err := r.CreateBuffer("flock velocities mirror", size, wgpu.BufferUsageStorage, texelBytes(cpu.velocities[cpu.current]))
	if err != nil {
		positions.Release()
		return nil, fmt.Errorf("failed to create velocity mirror: %w", err)
	}
	return &mirroredBackend{cpuBackend: cpu, r: r, positions: positions, velocities: velocities}, nil
}

func (b *mirroredBackend) Step(frame FrameUniforms, params Params) error {
	if err := b.cpuBackend.Step(frame, params); err != nil {
		return err
	}
	b.r.WriteBuffer(b.positions, 0, texelBytes(b.cpuBackend.positions[b.current]))
	b.r.WriteBuffer(b.velocities, 0, texelBytes(b.cpuBackend.velocities[b.current]))
	return nil
}

func (b *mirroredBackend) DrawBuffers() (*wgpu.Buffer, *wgpu.Buffer) {
	return b.positions, b.velocities
}
