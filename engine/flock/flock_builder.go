package flock

import (
	"github.com/Carmen-Shannon/oxy-flock/common"
	"go.uber.org/zap"
)

// FlockBuilderOption is a functional option for configuring a Flock.
// Use the With* functions to create options.
type FlockBuilderOption func(*flock)

// WithSeed sets the seed of the random source behind the parameters and the initial grid.
// Two flocks with the same seed and the same delta sequence stay identical.
//
// Parameters:
//   - seed: the seed
//
// Returns:
//   - FlockBuilderOption: option function to apply
func WithSeed(seed int64) FlockBuilderOption {
	return func(f *flock) {
		f.seed = seed
	}
}

// WithClock sets the clock Animate measures frame deltas with. Nil keeps the system clock.
//
// Parameters:
//   - clock: the clock
//
// Returns:
//   - FlockBuilderOption: option function to apply
func WithClock(clock common.Clock) FlockBuilderOption {
	return func(f *flock) {
		if clock != nil {
			f.clock = clock
		}
	}
}

// WithBackend selects where the kernels run. Defaults to BackendGPU.
//
// Parameters:
//   - kind: the backend
//
// Returns:
//   - FlockBuilderOption: option function to apply
func WithBackend(kind BackendType) FlockBuilderOption {
	return func(f *flock) {
		f.kind = kind
	}
}

// WithLogger sets the logger. Without it the flock logs through its scene's logger, or nowhere
// when headless.
//
// Parameters:
//   - logger: the logger
//
// Returns:
//   - FlockBuilderOption: option function to apply
func WithLogger(logger *zap.Logger) FlockBuilderOption {
	return func(f *flock) {
		if logger != nil {
			f.logger = logger.Named("flock")
		}
	}
}

// WithParams replaces the sampled behavioral parameters.
//
// Parameters:
//   - p: the parameters
//
// Returns:
//   - FlockBuilderOption: option function to apply
func WithParams(p Params) FlockBuilderOption {
	return func(f *flock) {
		f.params = p
		f.hasParams = true
	}
}

// WithWorkers sets the worker count of the CPU backend pool. Defaults to runtime.NumCPU.
//
// Parameters:
//   - workers: the number of workers
//
// Returns:
//   - FlockBuilderOption: option function to apply
func WithWorkers(workers int) FlockBuilderOption {
	return func(f *flock) {
		f.workers = workers
	}
}
