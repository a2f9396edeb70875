package main

import (
	"flag"
	"fmt"
	"runtime"

	"github.com/Carmen-Shannon/oxy-flock/engine/renderer"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Command-line flags mapped onto the engine, renderer, flock and backdrop options.
var (
	widthFlag  = flag.Int("width", 1280, "initial window width in pixels")
	heightFlag = flag.Int("height", 720, "initial window height in pixels")

	// backendFlag selects where the flocking kernels run.
	backendFlag = flag.String("backend", "gpu", "flock simulation backend: gpu or cpu")
	workersFlag = flag.Int("workers", runtime.NumCPU(), "worker goroutines for the cpu backend")

	// seedFlag seeds the grid, the behavior parameters, the atmosphere and the water normals.
	// Zero picks a seed from the wall clock.
	seedFlag = flag.Int64("seed", 0, "random seed, 0 for a time based seed")

	vsyncFlag    = flag.Bool("vsync", true, "wait for vertical blank when presenting")
	msaaFlag     = flag.Int("msaa", 4, "multisample count: 1, 4, 8 or 16")
	softwareFlag = flag.Bool("software", false, "request the fallback software adapter")
	profileFlag  = flag.Bool("profile", false, "log frame rate and memory statistics every second")

	logLevelFlag = flag.String("log-level", "info", "log level: debug, info, warn or error")

	// hourFlag pins the hour the sky is computed for.
	hourFlag = flag.Int("hour", -1, "hour of day (0-23) for the sky, -1 for the wall clock")
)

func parseMSAA(n int) (renderer.MSAASampleCount, error) {
	switch n {
	case 1:
		return renderer.MSAAOff, nil
	case 4:
		return renderer.MSAA4x, nil
	case 8:
		return renderer.MSAA8x, nil
	case 16:
		return renderer.MSAA16x, nil
	}
	return 0, fmt.Errorf("unsupported msaa sample count %d", n)
}

func presentMode(vsync bool) renderer.PresentMode {
	if vsync {
		return renderer.PresentModeVSync
	}
	return renderer.PresentModeUncapped
}

// newLogger builds a development logger at debug level and a production logger otherwise.
func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid -log-level: %w", err)
	}
	cfg := zap.NewProductionConfig()
	if lvl == zapcore.DebugLevel {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}
