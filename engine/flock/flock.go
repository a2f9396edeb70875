package flock

import (
	"errors"
	"fmt"
	"math/rand"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-flock/common"
	"github.com/Carmen-Shannon/oxy-flock/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// Flock is a flocking simulation over a Width×Width grid of birds.
type Flock interface {
	// Animate advances the flock by the wall time since the previous call. The delta is clamped
	// to MaxDelta. While paused the clock bookkeeping still runs but no step is taken.
	Animate()

	// Step runs one simulation step with an explicit delta in seconds.
	//
	// Parameters:
	//   - delta: the step delta in seconds, used as-is
	//
	// Returns:
	//   - error: an error if the backend fails to step
	Step(delta float32) error

	// Params returns the active behavioral parameters.
	Params() Params

	// SetParams replaces the behavioral parameters. The next step reads them.
	//
	// Parameters:
	//   - p: the new parameters
	SetParams(p Params)

	// Positions returns a copy of the current position texels, or nil when the grid only lives on the GPU.
	Positions() []mgl32.Vec4

	// Velocities returns a copy of the current velocity texels, or nil when the grid only lives on the GPU.
	Velocities() []mgl32.Vec4

	// Frame returns the uniforms of the most recent frame.
	Frame() FrameUniforms

	// Paused reports whether stepping is paused.
	Paused() bool

	// SetPaused pauses or resumes stepping.
	//
	// Parameters:
	//   - paused: whether to pause
	SetPaused(paused bool)
}

type flock struct {
	mu *sync.Mutex

	clock   common.Clock
	seed    int64
	workers int
	kind    BackendType
	logger  *zap.Logger

	params    Params
	hasParams bool

	start  time.Time
	last   time.Time
	frame  FrameUniforms
	paused bool

	backend backend
	mesh    *birdMesh
}

var _ Flock = &flock{}

func newFlock(options ...FlockBuilderOption) *flock {
	f := &flock{
		mu:      &sync.Mutex{},
		clock:   common.SystemClock,
		seed:    time.Now().UnixNano(),
		workers: runtime.NumCPU(),
		kind:    BackendGPU,
	}
	for _, option := range options {
		option(f)
	}
	return f
}

// seedGrid draws the parameters (unless given) and the initial grid from the flock's seed.
func (f *flock) seedGrid() ([]mgl32.Vec4, []mgl32.Vec4) {
	rng := rand.New(rand.NewSource(f.seed))
	sampled := SampleParams(rng)
	if !f.hasParams {
		f.params = sampled
	}
	positions, velocities := InitialGrid(rng)

	f.start = f.clock.Now()
	f.last = f.start
	return positions, velocities
}

// NewFlock creates a headless flock stepping on the CPU backend. Nothing is uploaded to a GPU.
//
// Parameters:
//   - options: functional options, WithBackend is ignored
//
// Returns:
//   - Flock: the flock
func NewFlock(options ...FlockBuilderOption) Flock {
	f := newFlock(options...)
	if f.logger == nil {
		f.logger = zap.NewNop()
	}
	f.workers = max(f.workers, 1)
	positions, velocities := f.seedGrid()
	f.kind = BackendCPU
	f.backend = newCPUBackend(positions, velocities, f.workers)
	return f
}

// Init creates a flock drawing into sc and returns its per-frame callback. The callback must run
// inside the engine's compute frame, which is where engine.AddFrameCallback runs it.
//
// Parameters:
//   - sc: the scene to draw into
//   - options: functional options
//
// Returns:
//   - func(): the per-frame callback
//   - error: an error if the flock cannot be attached, see Attach
func Init(sc scene.Scene, options ...FlockBuilderOption) (func(), error) {
	f, err := Attach(sc, options...)
	if err != nil {
		return nil, err
	}
	return f.Animate, nil
}

// Attach creates a flock drawing into sc and returns it. Its Animate method is the per-frame
// callback Init returns.
//
// If the compute pipelines cannot be registered the flock falls back to the CPU backend. If the
// bird pipeline cannot be registered the flock keeps simulating without being drawn.
//
// Parameters:
//   - sc: the scene to draw into
//   - options: functional options
//
// Returns:
//   - Flock: the attached flock
//   - error: an error if sc is nil, options are invalid or GPU resources cannot be created
func Attach(sc scene.Scene, options ...FlockBuilderOption) (Flock, error) {
	if sc == nil {
		return nil, errors.New("flock: scene is nil")
	}
	f := newFlock(options...)
	if f.workers < 1 {
		return nil, fmt.Errorf("flock: worker count must be positive, got %d", f.workers)
	}
	if f.logger == nil {
		f.logger = sc.Logger().Named("flock")
	}
	r := sc.Renderer()
	positions, velocities := f.seedGrid()

	if f.kind == BackendGPU {
		b, err := newWGPUBackend(r, positions, velocities)
		if err != nil {
			f.logger.Error("gpu flock backend unavailable, falling back to cpu", zap.Error(err))
			f.kind = BackendCPU
		} else {
			f.backend = b
		}
	}
	if f.kind == BackendCPU {
		b, err := newMirroredBackend(r, newCPUBackend(positions, velocities, f.workers))
		if err != nil {
			return nil, err
		}
		f.backend = b
	}

	p := birdPipeline()
	if err := r.RegisterPipelines(p); err != nil {
		f.logger.Error("bird pipeline unavailable, flock will not be drawn", zap.Error(err))
	} else {
		mesh, err := newBirdMesh(r, p)
		if err != nil {
			return nil, err
		}
		if err := sc.Add(mesh); err != nil {
			return nil, fmt.Errorf("flock: %w", err)
		}
		f.mesh = mesh
		f.publish()
	}

	f.logger.Info("flock initialized",
		zap.Stringer("backend", f.kind),
		zap.Int("texels", TexelCount),
		zap.Int("birds", Birds),
		zap.Float32("separation", f.params.Separation),
		zap.Float32("alignment", f.params.Alignment),
		zap.Float32("cohesion", f.params.Cohesion),
	)
	return f, nil
}

func (f *flock) Animate() {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := f.clock.Now()
	delta := float32(now.Sub(f.last).Seconds())
	if delta > MaxDelta {
		delta = MaxDelta
	}
	f.last = now
	f.frame = FrameUniforms{
		Time:  float32(now.Sub(f.start).Seconds() * 1000),
		Delta: delta,
	}

	if f.paused {
		return
	}
	if err := f.step(); err != nil {
		f.logger.Error("flock step failed", zap.Error(err))
	}
}

func (f *flock) Step(delta float32) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.frame = FrameUniforms{
		Time:  float32(f.clock.Now().Sub(f.start).Seconds() * 1000),
		Delta: delta,
	}
	return f.step()
}

// step runs the backend on f.frame and hands the new grid to the mesh. Callers hold f.mu.
func (f *flock) step() error {
	if err := f.backend.Step(f.frame, f.params); err != nil {
		return err
	}
	f.publish()
	return nil
}

// publish hands the current grid and frame uniforms to the bird mesh for the next draw.
func (f *flock) publish() {
	if f.mesh == nil {
		return
	}
	f.mesh.writeUniforms(f.frame)
	if err := f.mesh.setGrid(f.backend.DrawBuffers()); err != nil {
		f.logger.Error("bird grid binding failed", zap.Error(err))
	}
}

func (f *flock) Params() Params {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.params
}

func (f *flock) SetParams(p Params) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.params = p
	f.logger.Debug("flock params changed",
		zap.Float32("separation", p.Separation),
		zap.Float32("alignment", p.Alignment),
		zap.Float32("cohesion", p.Cohesion),
		zap.Float32("freedom", p.Freedom),
	)
}

func (f *flock) Positions() []mgl32.Vec4 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.backend.Positions()
}

func (f *flock) Velocities() []mgl32.Vec4 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.backend.Velocities()
}

func (f *flock) Frame() FrameUniforms {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.frame
}

func (f *flock) Paused() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.paused
}

func (f *flock) SetPaused(paused bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paused = paused
}
