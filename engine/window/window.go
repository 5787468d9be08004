package window

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-deferred/common"
	"github.com/Carmen-Shannon/oxy-deferred/engine/logger"
	"github.com/cogentcore/webgpu/wgpu"
)

var log = logger.New("window")

// Window provides platform windowing and the input state the viewer samples once per frame.
// Events are delivered while PollEvents runs, on the goroutine that created the window.
type Window interface {
	// SetResizeCallback sets the function called when the framebuffer is resized.
	//
	// Parameters:
	//   - callback: function receiving new width and height in pixels
	SetResizeCallback(callback func(width, height int))

	// SetKeyDownCallback sets the callback for key press events. Repeats are not reported.
	//
	// Parameters:
	//   - callback: function receiving the key code (see common.Key*)
	SetKeyDownCallback(callback func(keyCode uint32))

	// IsKeyDown reports whether a key is currently held.
	//
	// Parameters:
	//   - keyCode: the key code (see common.Key*)
	//
	// Returns:
	//   - bool: true while the key is held
	IsKeyDown(keyCode uint32) bool

	// ConsumeDrag returns the cursor movement accumulated while the left mouse button was held
	// since the previous call, and resets it.
	//
	// Returns:
	//   - float64: horizontal movement in pixels
	//   - float64: vertical movement in pixels
	ConsumeDrag() (dx, dy float64)

	// SurfaceDescriptor returns a wgpu.SurfaceDescriptor suitable for creating a WebGPU surface,
	// or nil for a window without a platform surface.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the platform-specific surface descriptor
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// PollEvents processes pending platform events without blocking.
	//
	// Returns:
	//   - bool: false once the window has been asked to close
	PollEvents() bool

	// IsRunning returns true if the window is still active.
	//
	// Returns:
	//   - bool: true if window is running, false if closed
	IsRunning() bool

	// Close closes the window and releases platform resources.
	//
	// Returns:
	//   - error: error if close operation fails
	Close() error

	// Width returns the current framebuffer width in pixels.
	Width() int

	// Height returns the current framebuffer height in pixels.
	Height() int
}

// platformWindow is the platform layer behind an engineWindow.
type platformWindow interface {
	surfaceDescriptor() *wgpu.SurfaceDescriptor
	pollEvents()
	shouldClose() bool
	close() error
}

// engineWindow is the implementation of the Window interface.
// Holds window configuration, input state and event callbacks; the platform layer feeds it events.
type engineWindow struct {
	title string

	// width and height are the framebuffer size in pixels.
	width  int
	height int

	platform platformWindow
	closed   bool

	keys      map[uint32]bool
	dragging  bool
	hasCursor bool
	cursorX   float64
	cursorY   float64
	dragX     float64
	dragY     float64

	onResize  func(width, height int)
	onKeyDown func(keyCode uint32)
}

var _ Window = &engineWindow{}

func newEngineWindow(options ...WindowBuilderOption) *engineWindow {
	w := &engineWindow{
		title:  "oxy-deferred",
		width:  1600,
		height: 900,
		keys:   make(map[uint32]bool),
	}
	for _, opt := range options {
		opt(w)
	}
	return w
}

// NewWindow creates and shows a GLFW window. It must be called from the main goroutine,
// and every other method must be called from that goroutine too.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the window
//   - error: error if GLFW or the window cannot be initialized
func NewWindow(options ...WindowBuilderOption) (Window, error) {
	w := newEngineWindow(options...)
	platform, err := newGLFWWindow(w)
	if err != nil {
		return nil, fmt.Errorf("failed to create platform window: %w", err)
	}
	w.platform = platform
	log.Debugf("window %q created at %dx%d", w.title, w.width, w.height)
	return w, nil
}

func (w *engineWindow) SetResizeCallback(callback func(width, height int)) {
	w.onResize = callback
}

func (w *engineWindow) SetKeyDownCallback(callback func(keyCode uint32)) {
	w.onKeyDown = callback
}

func (w *engineWindow) IsKeyDown(keyCode uint32) bool {
	return w.keys[keyCode]
}

func (w *engineWindow) ConsumeDrag() (float64, float64) {
	dx, dy := w.dragX, w.dragY
	w.dragX, w.dragY = 0, 0
	return dx, dy
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	if w.platform == nil || w.closed {
		return nil
	}
	return w.platform.surfaceDescriptor()
}

func (w *engineWindow) PollEvents() bool {
	if w.IsRunning() {
		w.platform.pollEvents()
	}
	return w.IsRunning()
}

func (w *engineWindow) IsRunning() bool {
	return w.platform != nil && !w.closed && !w.platform.shouldClose()
}

func (w *engineWindow) Close() error {
	if w.platform == nil {
		return fmt.Errorf("window is not initialized")
	}
	if w.closed {
		return nil
	}
	w.closed = true
	return w.platform.close()
}

func (w *engineWindow) Width() int {
	return w.width
}

func (w *engineWindow) Height() int {
	return w.height
}

// handleKey records a key transition and reports presses.
func (w *engineWindow) handleKey(keyCode uint32, pressed bool) {
	if !pressed {
		delete(w.keys, keyCode)
		return
	}
	if w.keys[keyCode] {
		return
	}
	w.keys[keyCode] = true
	if w.onKeyDown != nil {
		w.onKeyDown(keyCode)
	}
}

// handleMouseButton starts or stops a left-button drag.
func (w *engineWindow) handleMouseButton(button int, pressed bool) {
	if button == common.MouseButtonLeft {
		w.dragging = pressed
	}
}

// handleCursor accumulates cursor movement while dragging.
func (w *engineWindow) handleCursor(x, y float64) {
	if w.hasCursor && w.dragging {
		w.dragX += x - w.cursorX
		w.dragY += y - w.cursorY
	}
	w.cursorX, w.cursorY = x, y
	w.hasCursor = true
}

// handleResize records a framebuffer size change. Zero sizes (minimized windows) are ignored.
func (w *engineWindow) handleResize(width, height int) {
	if width <= 0 || height <= 0 || (width == w.width && height == w.height) {
		return
	}
	w.width, w.height = width, height
	if w.onResize != nil {
		w.onResize(width, height)
	}
}
