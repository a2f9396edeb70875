package backdrop

import (
	"errors"
	"fmt"
	"image"
	"math/rand"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-flock/common"
	"github.com/Carmen-Shannon/oxy-flock/engine/scene"
	"go.uber.org/zap"
)

const (
	// SkyScale is the edge length of the sky box.
	SkyScale = 10000
	// WaterSize is the edge length of the water plane.
	WaterSize = 10000
	// NormalMapSize is the edge length of the generated water normal map.
	NormalMapSize = 512
	// WaterWaveCount is the number of sine waves summed into the normal map.
	WaterWaveCount = 12

	// EnvironmentWidth and EnvironmentHeight size the baked environment map.
	EnvironmentWidth  = 64
	EnvironmentHeight = 32
	// EnvironmentBlur is the prefilter downscale factor of the environment map.
	EnvironmentBlur = 4

	MieCoefficient  float32 = 0.005
	MieDirectionalG float32 = 0.8

	SunColor        = 0xffffff
	WaterColor      = 0x001e0f
	DistortionScale float32 = 3.7

	// WaterTimeStep is added to the water time on every Animate call.
	WaterTimeStep float32 = 1.0 / 60.0
)

// Backdrop is the sky and ocean behind the scene.
type Backdrop interface {
	// UpdateTime places the sun for the time of day of now, samples a new atmosphere and
	// regenerates the environment map.
	//
	// Parameters:
	//   - now: the wall time
	//
	// Returns:
	//   - error: an error if the environment map cannot be installed
	UpdateTime(now time.Time) error

	// Animate advances the water by WaterTimeStep.
	Animate()

	// Sun returns the current sun placement.
	Sun() Sun

	// Sky returns the current sky model.
	Sky() SkyModel

	// WaterTime returns the accumulated water time.
	WaterTime() float32

	// Environment returns the most recently baked environment map, nil before UpdateTime.
	Environment() *image.RGBA
}

type backdrop struct {
	mu *sync.Mutex

	rng       *rand.Rand
	seed      int64
	clock     common.Clock
	logger    *zap.Logger
	envWidth  int
	envHeight int
	normals   int

	sun         Sun
	sky         SkyModel
	waterTime   float32
	environment *image.RGBA

	sc    scene.Scene
	skyN  *meshNode
	water *meshNode
}

var _ Backdrop = &backdrop{}

func newBackdrop(options ...BackdropBuilderOption) *backdrop {
	b := &backdrop{
		mu:        &sync.Mutex{},
		seed:      time.Now().UnixNano(),
		clock:     common.SystemClock,
		envWidth:  EnvironmentWidth,
		envHeight: EnvironmentHeight,
		normals:   NormalMapSize,
	}
	for _, option := range options {
		option(b)
	}
	b.rng = rand.New(rand.NewSource(b.seed))
	return b
}

// NewBackdrop creates a backdrop that is not attached to a scene. UpdateTime still bakes the
// environment map and Animate still advances the water time.
//
// Parameters:
//   - options: functional options
//
// Returns:
//   - Backdrop: the backdrop
func NewBackdrop(options ...BackdropBuilderOption) Backdrop {
	b := newBackdrop(options...)
	if b.logger == nil {
		b.logger = zap.NewNop()
	}
	return b
}

// Init adds the sky and the water to sc, places the sun for the clock's current time and returns
// the backdrop with its per-frame callback. The sky must be drawn first, so call Init before
// adding other nodes.
//
// A pipeline that fails to register is logged and its node is left out.
//
// Parameters:
//   - sc: the scene to draw into
//   - options: functional options
//
// Returns:
//   - Backdrop: the backdrop
//   - func(): the per-frame callback
//   - error: an error if sc is nil, options are invalid or GPU resources cannot be created
func Init(sc scene.Scene, options ...BackdropBuilderOption) (Backdrop, func(), error) {
	if sc == nil {
		return nil, nil, errors.New("backdrop: scene is nil")
	}
	b := newBackdrop(options...)
	if b.envWidth < 1 || b.envHeight < 1 || b.normals < 1 {
		return nil, nil, fmt.Errorf("backdrop: invalid map sizes %dx%d, %d", b.envWidth, b.envHeight, b.normals)
	}
	if b.logger == nil {
		b.logger = sc.Logger().Named("backdrop")
	}
	b.sc = sc
	r := sc.Renderer()

	if p := skyPipeline(); r.RegisterPipelines(p) != nil {
		b.logger.Error("sky pipeline unavailable, sky will not be drawn", zap.String("pipeline", SkyPipelineKey))
	} else {
		vertices, indices := BoxGeometry()
		node, err := newMeshNode(r, p, SkyNodeName, vertices, indices)
		if err != nil {
			return nil, nil, err
		}
		if err := sc.Add(node); err != nil {
			return nil, nil, fmt.Errorf("backdrop: %w", err)
		}
		b.skyN = node
	}

	if p := waterPipeline(); r.RegisterPipelines(p) != nil {
		b.logger.Error("water pipeline unavailable, water will not be drawn", zap.String("pipeline", WaterPipelineKey))
	} else {
		vertices, indices := PlaneGeometry(WaterSize)
		node, err := newMeshNode(r, p, WaterNodeName, vertices, indices)
		if err != nil {
			return nil, nil, err
		}
		if err := node.attachNormalMap(r, p, b.normals, b.seed); err != nil {
			return nil, nil, err
		}
		if err := sc.Add(node); err != nil {
			return nil, nil, fmt.Errorf("backdrop: %w", err)
		}
		b.water = node
	}

	if err := b.UpdateTime(b.clock.Now()); err != nil {
		return nil, nil, err
	}
	return b, b.Animate, nil
}

func (b *backdrop) UpdateTime(now time.Time) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.sun = SunAt(now, b.rng)
	b.sky = NewSkyModel(b.sun)
	b.environment = BakeEnvironment(b.sky, b.envWidth, b.envHeight)

	b.logger.Info("sun updated",
		zap.Float32("hour", b.sun.Hour),
		zap.Bool("day", b.sun.Day),
		zap.Float32("elevation", b.sun.Elevation),
		zap.Float32("turbidity", b.sun.Turbidity),
		zap.Float32("rayleigh", b.sun.Rayleigh),
	)

	if b.sc == nil {
		return nil
	}
	if b.skyN != nil {
		uniforms := NewGPUSkyUniforms(b.sky)
		b.skyN.writeUniforms(b.sc.Renderer(), uniforms.Marshal())
	}
	b.writeWater()
	if err := b.sc.SetEnvironment(b.environment); err != nil {
		return fmt.Errorf("backdrop: %w", err)
	}
	return nil
}

func (b *backdrop) Animate() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.waterTime += WaterTimeStep
	b.writeWater()
}

// writeWater uploads the water uniforms. Callers hold b.mu.
func (b *backdrop) writeWater() {
	if b.sc == nil || b.water == nil {
		return
	}
	uniforms := GPUWaterUniforms{
		SunDirection:    b.sun.Direction(),
		Time:            b.waterTime,
		SunColor:        common.HexToRGB(SunColor),
		DistortionScale: DistortionScale,
		WaterColor:      common.HexToRGB(WaterColor),
		Size:            1,
		Eye:             b.sc.Camera().Position(),
		Alpha:           1,
	}
	b.water.writeUniforms(b.sc.Renderer(), uniforms.Marshal())
}

func (b *backdrop) Sun() Sun {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sun
}

func (b *backdrop) Sky() SkyModel {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sky
}

func (b *backdrop) WaterTime() float32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.waterTime
}

func (b *backdrop) Environment() *image.RGBA {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.environment
}
