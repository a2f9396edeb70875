package backdrop

import (
	"github.com/Carmen-Shannon/oxy-flock/common"
	"go.uber.org/zap"
)

// BackdropBuilderOption is a functional option for configuring a Backdrop.
// Use the With* functions to create options.
type BackdropBuilderOption func(*backdrop)

// WithSeed seeds the atmosphere sampling and the water normal map.
//
// Parameters:
//   - seed: the seed
//
// Returns:
//   - BackdropBuilderOption: option function to apply
func WithSeed(seed int64) BackdropBuilderOption {
	return func(b *backdrop) {
		b.seed = seed
	}
}

// WithClock sets the clock Init places the sun with. Nil keeps the system clock.
//
// Parameters:
//   - clock: the clock
//
// Returns:
//   - BackdropBuilderOption: option function to apply
func WithClock(clock common.Clock) BackdropBuilderOption {
	return func(b *backdrop) {
		if clock != nil {
			b.clock = clock
		}
	}
}

// WithLogger sets the logger. Without it the backdrop logs through its scene's logger.
//
// Parameters:
//   - logger: the logger
//
// Returns:
//   - BackdropBuilderOption: option function to apply
func WithLogger(logger *zap.Logger) BackdropBuilderOption {
	return func(b *backdrop) {
		if logger != nil {
			b.logger = logger.Named("backdrop")
		}
	}
}

// WithEnvironmentSize sets the size of the baked environment map.
//
// Parameters:
//   - width: the map width in pixels
//   - height: the map height in pixels
//
// Returns:
//   - BackdropBuilderOption: option function to apply
func WithEnvironmentSize(width, height int) BackdropBuilderOption {
	return func(b *backdrop) {
		b.envWidth = width
		b.envHeight = height
	}
}

// WithNormalMapSize sets the edge length of the water normal map.
//
// Parameters:
//   - size: the edge length in pixels
//
// Returns:
//   - BackdropBuilderOption: option function to apply
func WithNormalMapSize(size int) BackdropBuilderOption {
	return func(b *backdrop) {
		b.normals = size
	}
}
