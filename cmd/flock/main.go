// Command flock opens a window with a flock of birds circling over an animated ocean.
//
// Keys: T recomputes the sky for the current time, Space pauses the flock, Esc quits.
package main

import (
	"flag"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/oxy-flock/common"
	"github.com/Carmen-Shannon/oxy-flock/engine"
	"github.com/Carmen-Shannon/oxy-flock/engine/backdrop"
	"github.com/Carmen-Shannon/oxy-flock/engine/camera"
	"github.com/Carmen-Shannon/oxy-flock/engine/flock"
	"github.com/Carmen-Shannon/oxy-flock/engine/renderer"
	"github.com/Carmen-Shannon/oxy-flock/engine/scene"
	"github.com/Carmen-Shannon/oxy-flock/engine/window"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

func main() {
	flag.Parse()

	logger, err := newLogger(*logLevelFlag)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer func() { _ = logger.Sync() }()

	kind, err := flock.ParseBackendType(*backendFlag)
	if err != nil {
		logger.Fatal("invalid -backend", zap.Error(err))
	}
	msaa, err := parseMSAA(*msaaFlag)
	if err != nil {
		logger.Fatal("invalid -msaa", zap.Error(err))
	}
	seed := *seedFlag
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	clock := common.SystemClock
	if *hourFlag >= 0 {
		clock = common.NewHourClock(nil, *hourFlag)
	}

	// ── Engine + Window ─────────────────────────────────────────────────
	eng := engine.NewEngine(
		engine.WithLogger(logger),
		engine.WithProfiling(*profileFlag),
		engine.WithWindow(window.NewWindow(
			window.WithTitle("oxy-flock"),
			window.WithSize(*widthFlag, *heightFlag),
			window.WithSizeLimits(320, 240, max(*widthFlag, 3840), max(*heightFlag, 2160)),
			window.WithLogger(logger),
		)),
	)

	// ── Renderer ────────────────────────────────────────────────────────
	r := renderer.NewRenderer(
		renderer.BackendTypeWGPU,
		eng.Window(),
		renderer.WithPresentMode(presentMode(*vsyncFlag)),
		renderer.WithMSAA(msaa),
		renderer.WithForceSoftwareRenderer(*softwareFlag),
		renderer.WithLogger(logger),
	)

	// ── Camera + Scene ──────────────────────────────────────────────────
	cam := camera.NewCamera(
		camera.WithFov(mgl32.DegToRad(55)),
		camera.WithAspect(float32(eng.Window().Width())/float32(eng.Window().Height())),
		camera.WithClip(1, 20000),
		camera.WithPosition(mgl32.Vec3{0, 60, 350}),
		camera.WithTarget(mgl32.Vec3{0, 100, 0}),
	)
	sc := scene.NewScene("flock", cam, r,
		scene.WithActive(true),
		scene.WithLogger(logger),
	)
	eng.AddScene(0, sc)

	// ── Backdrop, then birds on top ─────────────────────────────────────
	sky, animateSky, err := backdrop.Init(sc,
		backdrop.WithSeed(seed),
		backdrop.WithClock(clock),
		backdrop.WithLogger(logger),
	)
	if err != nil {
		logger.Fatal("failed to create backdrop", zap.Error(err))
	}
	birds, err := flock.Attach(sc,
		flock.WithSeed(seed),
		flock.WithBackend(kind),
		flock.WithWorkers(*workersFlag),
		flock.WithLogger(logger),
	)
	if err != nil {
		logger.Fatal("failed to create flock", zap.Error(err))
	}

	// Key presses arrive on the window thread, the sky is rebuilt on the render goroutine.
	var refreshSky atomic.Bool
	eng.AddFrameCallback(func() {
		if refreshSky.Swap(false) {
			if err := sky.UpdateTime(clock.Now()); err != nil {
				logger.Error("failed to update sky", zap.Error(err))
			}
		}
		animateSky()
	})
	eng.AddFrameCallback(birds.Animate)

	eng.Window().SetKeyDownCallback(func(keyCode uint32) {
		switch keyCode {
		case common.KeyT:
			refreshSky.Store(true)
		case common.KeySpace:
			birds.SetPaused(!birds.Paused())
			title := "oxy-flock"
			if birds.Paused() {
				title += " (paused)"
			}
			eng.Window().SetTitle(title)
			logger.Info("flock paused", zap.Bool("paused", birds.Paused()))
		}
	})

	logger.Info("starting",
		zap.Int64("seed", seed),
		zap.Stringer("backend", kind),
		zap.Int("msaa", *msaaFlag),
		zap.Bool("vsync", *vsyncFlag),
	)
	eng.Run()
}
