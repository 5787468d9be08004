package window

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// HeadlessWindow is a Window without a platform surface. Input is injected by the caller,
// which makes it the window of the headless backend and of tests.
type HeadlessWindow interface {
	Window

	// PressKey delivers a key press.
	PressKey(keyCode uint32)

	// ReleaseKey delivers a key release.
	ReleaseKey(keyCode uint32)

	// MouseButton delivers a mouse button transition.
	//
	// Parameters:
	//   - button: the button (see common.MouseButton*)
	//   - pressed: true for a press, false for a release
	MouseButton(button int, pressed bool)

	// MoveCursor delivers a cursor position in pixels.
	MoveCursor(x, y float64)

	// Resize delivers a framebuffer size change.
	Resize(width, height int)

	// RequestClose makes IsRunning report false, as closing a platform window does.
	RequestClose()
}

// headlessPlatform is the platform layer of a HeadlessWindow.
type headlessPlatform struct {
	closeRequested bool
}

var _ platformWindow = &headlessPlatform{}

func (h *headlessPlatform) surfaceDescriptor() *wgpu.SurfaceDescriptor { return nil }
func (h *headlessPlatform) pollEvents()                                 {}
func (h *headlessPlatform) shouldClose() bool                           { return h.closeRequested }
func (h *headlessPlatform) close() error                                { return nil }

type headlessWindow struct {
	*engineWindow
	headless *headlessPlatform
}

var _ HeadlessWindow = &headlessWindow{}

// NewHeadlessWindow creates a window that never touches the platform.
//
// Parameters:
//   - options: functional options to configure the window; WithWidth/WithHeight set the framebuffer size
//
// Returns:
//   - HeadlessWindow: the window
func NewHeadlessWindow(options ...WindowBuilderOption) HeadlessWindow {
	w := newEngineWindow(options...)
	p := &headlessPlatform{}
	w.platform = p
	return &headlessWindow{engineWindow: w, headless: p}
}

func (h *headlessWindow) PressKey(keyCode uint32) {
	h.handleKey(keyCode, true)
}

func (h *headlessWindow) ReleaseKey(keyCode uint32) {
	h.handleKey(keyCode, false)
}

func (h *headlessWindow) MouseButton(button int, pressed bool) {
	h.handleMouseButton(button, pressed)
}

func (h *headlessWindow) MoveCursor(x, y float64) {
	h.handleCursor(x, y)
}

func (h *headlessWindow) Resize(width, height int) {
	h.handleResize(width, height)
}

func (h *headlessWindow) RequestClose() {
	h.headless.closeRequested = true
}
