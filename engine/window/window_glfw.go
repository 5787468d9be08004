package window

import (
	"fmt"
	"runtime"

	"github.com/Carmen-Shannon/oxy-deferred/common"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// glfwWindow holds the GLFW-specific window state.
type glfwWindow struct {
	window *glfw.Window
}

var _ platformWindow = &glfwWindow{}

// newGLFWWindow creates the GLFW window and routes its input callbacks into w.
//
// GLFW reference: https://www.glfw.org/docs/latest/window_guide.html
// go-gl/glfw: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw
func newGLFWWindow(w *engineWindow) (*glfwWindow, error) {
	runtime.LockOSThread()

	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize GLFW: %w", err)
	}

	// WebGPU provides its own graphics API, so disable OpenGL context creation.
	// Reference: https://www.glfw.org/docs/latest/window_guide.html#window_hints_ctx
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)

	win, err := glfw.CreateWindow(w.width, w.height, w.title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("failed to create GLFW window: %w", err)
	}

	win.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if key == glfw.KeyEscape && action == glfw.Press {
			win.SetShouldClose(true)
			return
		}
		switch action {
		case glfw.Press:
			w.handleKey(uint32(key), true)
		case glfw.Release:
			w.handleKey(uint32(key), false)
		}
	})

	win.SetMouseButtonCallback(func(_ *glfw.Window, button glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
		w.handleMouseButton(int(button), action == glfw.Press)
	})

	win.SetCursorPosCallback(func(_ *glfw.Window, xpos, ypos float64) {
		w.handleCursor(xpos, ypos)
	})

	// Framebuffer size, not window size: on high-DPI displays they differ and
	// the render targets need pixel dimensions.
	win.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		w.handleResize(width, height)
	})

	// Losing focus must not leave movement keys stuck down.
	win.SetFocusCallback(func(_ *glfw.Window, focused bool) {
		if !focused {
			clear(w.keys)
			w.handleMouseButton(common.MouseButtonLeft, false)
		}
	})

	w.width, w.height = win.GetFramebufferSize()
	return &glfwWindow{window: win}, nil
}

// surfaceDescriptor creates a platform-appropriate wgpu.SurfaceDescriptor from the GLFW window
// through the wgpuglfw bridge (Windows, X11, Wayland, macOS).
//
// Reference: https://pkg.go.dev/github.com/cogentcore/webgpu/wgpuglfw#GetSurfaceDescriptor
func (g *glfwWindow) surfaceDescriptor() *wgpu.SurfaceDescriptor {
	return wgpuglfw.GetSurfaceDescriptor(g.window)
}

// pollEvents processes pending GLFW events without blocking.
//
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#PollEvents
func (g *glfwWindow) pollEvents() {
	glfw.PollEvents()
}

func (g *glfwWindow) shouldClose() bool {
	return g.window.ShouldClose()
}

// close destroys the GLFW window and terminates the GLFW library.
func (g *glfwWindow) close() error {
	g.window.SetShouldClose(true)
	g.window.Destroy()
	glfw.Terminate()
	return nil
}
