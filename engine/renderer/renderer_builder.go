package renderer

import (
	"github.com/cogentcore/webgpu/wgpu"
	"go.uber.org/zap"
)

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// WithLogger sets the logger for device acquisition, surface and pipeline events.
//
// Parameters:
//   - logger: the logger, nil keeps the no-op default
//
// Returns:
//   - RendererBuilderOption: option function to apply
func WithLogger(logger *zap.Logger) RendererBuilderOption {
	return func(r *renderer) {
		if logger != nil {
			r.logger = logger.Named("renderer")
		}
	}
}

// WithPresentMode sets how frames are delivered to the display. VSync is the default.
//
// Parameters:
//   - mode: the PresentMode to use (VSync or Uncapped)
//
// Returns:
//   - RendererBuilderOption: option function to apply
func WithPresentMode(mode PresentMode) RendererBuilderOption {
	return func(r *renderer) {
		r.presentMode = mode
	}
}

// WithMSAA sets the sample count of the main render pass. MSAA4x is the default; MSAA8x and
// MSAA16x are adapter-dependent.
//
// Parameters:
//   - count: the MSAASampleCount to use
//
// Returns:
//   - RendererBuilderOption: option function to apply
func WithMSAA(count MSAASampleCount) RendererBuilderOption {
	return func(r *renderer) {
		r.msaa = count
	}
}

// WithForceSoftwareRenderer requests the fallback (software) adapter. A software Vulkan ICD such
// as lavapipe or SwiftShader must be installed.
//
// Parameters:
//   - force: true to request the fallback adapter
//
// Returns:
//   - RendererBuilderOption: option function to apply
func WithForceSoftwareRenderer(force bool) RendererBuilderOption {
	return func(r *renderer) {
		r.forceFallbackAdapter = force
	}
}

// WithClearColor sets the color the main render pass clears to.
//
// Parameters:
//   - r, g, b: color channels in [0, 1]
//
// Returns:
//   - RendererBuilderOption: option function to apply
func WithClearColor(r, g, b float64) RendererBuilderOption {
	return func(rr *renderer) {
		rr.clearColor = &wgpu.Color{R: r, G: g, B: b, A: 1}
	}
}
