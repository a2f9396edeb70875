// Package window owns the GLFW window the renderer presents into. All methods except Width and
// Height must be called from the thread that created the window.
package window

import (
	"fmt"
	"runtime"
	"sync/atomic"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
	"go.uber.org/zap"
)

// Window provides a native window and its input events.
type Window interface {
	// SetUpdateCallback sets the function called once per message loop iteration.
	SetUpdateCallback(callback func())

	// SetResizeCallback sets the function called with the new framebuffer size in pixels.
	SetResizeCallback(callback func(width, height int))

	// SetKeyDownCallback sets the callback for key presses. Escape closes the window and never
	// reaches the callback.
	//
	// Parameters:
	//   - callback: function receiving the key code, compare against common.KeyT, common.KeySpace
	SetKeyDownCallback(callback func(keyCode uint32))

	// SetTitle replaces the title bar text.
	SetTitle(title string)

	// SurfaceDescriptor returns the platform surface descriptor (Win32, X11, Wayland or Metal)
	// for creating a WebGPU surface, or nil once the window is closed.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the platform-specific surface descriptor
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// IsRunning reports whether the window is open.
	IsRunning() bool

	// Close destroys the window and terminates GLFW.
	//
	// Returns:
	//   - error: an error if the window was already closed
	Close() error

	// ProcessMessages polls window events until the window closes, calling the update callback
	// after every poll.
	ProcessMessages()

	// Width returns the framebuffer width in pixels. Safe from any goroutine.
	Width() int

	// Height returns the framebuffer height in pixels. Safe from any goroutine.
	Height() int
}

type glfwWindow struct {
	logger *zap.Logger

	title                 string
	minWidth, minHeight   int
	maxWidth, maxHeight   int
	initWidth, initHeight int

	// framebuffer size, written on the window thread and read by the renderer
	width, height atomic.Int32

	handle *glfw.Window
	closed bool

	onUpdate  func()
	onResize  func(width, height int)
	onKeyDown func(keyCode uint32)
}

var _ Window = &glfwWindow{}

// NewWindow opens a GLFW window without a client API, leaving the surface to WebGPU. It locks the
// calling goroutine to its OS thread and panics if GLFW cannot create the window.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the open window
func NewWindow(options ...WindowBuilderOption) Window {
	w := &glfwWindow{
		logger:     zap.NewNop(),
		title:      "oxy-flock",
		minWidth:   600,
		minHeight:  200,
		maxWidth:   1600,
		maxHeight:  1200,
		initWidth:  1280,
		initHeight: 720,
	}
	for _, opt := range options {
		opt(w)
	}
	if err := w.open(); err != nil {
		panic(fmt.Sprintf("failed to create window: %v", err))
	}
	return w
}

func (w *glfwWindow) open() error {
	runtime.LockOSThread()

	if err := glfw.Init(); err != nil {
		return fmt.Errorf("glfw init: %w", err)
	}
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)

	win, err := glfw.CreateWindow(w.initWidth, w.initHeight, w.title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return fmt.Errorf("glfw create window: %w", err)
	}
	win.SetSizeLimits(w.minWidth, w.minHeight, w.maxWidth, w.maxHeight)
	w.handle = win

	win.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if action != glfw.Press {
			return
		}
		if key == glfw.KeyEscape {
			win.SetShouldClose(true)
			return
		}
		if w.onKeyDown != nil {
			w.onKeyDown(uint32(key))
		}
	})

	// framebuffer size, not window size, so high-DPI displays get pixel dimensions
	win.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		w.setSize(width, height)
		if w.onResize != nil {
			w.onResize(width, height)
		}
	})
	w.setSize(win.GetFramebufferSize())

	w.logger.Info("window created",
		zap.String("title", w.title),
		zap.Int("width", w.Width()),
		zap.Int("height", w.Height()),
	)
	return nil
}

func (w *glfwWindow) setSize(width, height int) {
	w.width.Store(int32(width))
	w.height.Store(int32(height))
}

func (w *glfwWindow) SetUpdateCallback(callback func()) {
	w.onUpdate = callback
}

func (w *glfwWindow) SetResizeCallback(callback func(width, height int)) {
	w.onResize = callback
}

func (w *glfwWindow) SetKeyDownCallback(callback func(keyCode uint32)) {
	w.onKeyDown = callback
}

func (w *glfwWindow) SetTitle(title string) {
	w.title = title
	if !w.closed {
		w.handle.SetTitle(title)
	}
}

func (w *glfwWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	if w.closed {
		return nil
	}
	return wgpuglfw.GetSurfaceDescriptor(w.handle)
}

func (w *glfwWindow) IsRunning() bool {
	return !w.closed && !w.handle.ShouldClose()
}

func (w *glfwWindow) Close() error {
	if w.closed {
		return fmt.Errorf("window %q already closed", w.title)
	}
	w.closed = true
	w.handle.Destroy()
	glfw.Terminate()
	w.logger.Debug("window closed")
	return nil
}

func (w *glfwWindow) ProcessMessages() {
	for w.IsRunning() {
		glfw.PollEvents()
		if w.onUpdate != nil {
			w.onUpdate()
		}
		runtime.Gosched()
	}
}

func (w *glfwWindow) Width() int {
	return int(w.width.Load())
}

func (w *glfwWindow) Height() int {
	return int(w.height.Load())
}
