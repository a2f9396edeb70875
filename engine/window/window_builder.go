package window

import "go.uber.org/zap"

// WindowBuilderOption configures a window before it is opened.
type WindowBuilderOption func(w *glfwWindow)

// WithTitle sets the title bar text.
func WithTitle(title string) WindowBuilderOption {
	return func(w *glfwWindow) {
		w.title = title
	}
}

// WithSize sets the requested initial size. The framebuffer may end up larger on high-DPI displays.
//
// Parameters:
//   - width, height: the initial size in screen coordinates
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithSize(width, height int) WindowBuilderOption {
	return func(w *glfwWindow) {
		w.initWidth, w.initHeight = width, height
	}
}

// WithSizeLimits bounds interactive resizing. Pass glfw.DontCare (-1) to leave a bound open.
//
// Parameters:
//   - minWidth, minHeight: the smallest allowed size
//   - maxWidth, maxHeight: the largest allowed size
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithSizeLimits(minWidth, minHeight, maxWidth, maxHeight int) WindowBuilderOption {
	return func(w *glfwWindow) {
		w.minWidth, w.minHeight = minWidth, minHeight
		w.maxWidth, w.maxHeight = maxWidth, maxHeight
	}
}

// WithLogger sets the logger for window lifecycle events.
func WithLogger(logger *zap.Logger) WindowBuilderOption {
	return func(w *glfwWindow) {
		if logger != nil {
			w.logger = logger.Named("window")
		}
	}
}
