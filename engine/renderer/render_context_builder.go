package renderer

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// RenderContextBuilderOption is a functional option applied to a render context during construction via NewRenderContext.
type RenderContextBuilderOption func(*renderContext)

// WithValidation enables the binding audit that runs before every draw call.
// The audit panics when a declared slot holds a released or undersized resource and warns when it is empty.
//
// Parameters:
//   - enabled: true to audit every draw
//
// Returns:
//   - RenderContextBuilderOption: a function that applies the validation option to a render context
func WithValidation(enabled bool) RenderContextBuilderOption {
	return func(c *renderContext) {
		c.validate = enabled
	}
}

// WithRecording keeps a log of every call made on the context, readable through Commands.
//
// Parameters:
//   - enabled: true to record commands
//
// Returns:
//   - RenderContextBuilderOption: a function that applies the recording option to a render context
func WithRecording(enabled bool) RenderContextBuilderOption {
	return func(c *renderContext) {
		c.recording = enabled
	}
}

// WithBackendType selects the GPU backend. The default is BackendTypeHeadless.
//
// Parameters:
//   - backendType: the backend to create
//
// Returns:
//   - RenderContextBuilderOption: a function that applies the backend option to a render context
func WithBackendType(backendType BackendType) RenderContextBuilderOption {
	return func(c *renderContext) {
		c.backendType = backendType
	}
}

// WithSurfaceDescriptor sets the window surface the wgpu backend presents to.
//
// Parameters:
//   - descriptor: the platform surface descriptor, usually from the window
//
// Returns:
//   - RenderContextBuilderOption: a function that applies the surface option to a render context
func WithSurfaceDescriptor(descriptor *wgpu.SurfaceDescriptor) RenderContextBuilderOption {
	return func(c *renderContext) {
		c.surfaceDescriptor = descriptor
	}
}

// WithPresentMode sets the surface present mode which controls how frames are delivered to the display.
//
// Parameters:
//   - mode: the PresentMode to use (VSync or Uncapped)
//
// Returns:
//   - RenderContextBuilderOption: a function that applies the present mode option to a render context
func WithPresentMode(mode PresentMode) RenderContextBuilderOption {
	return func(c *renderContext) {
		c.presentMode = mode
	}
}

// WithForceSoftwareRenderer forces WGPU to use a CPU/software fallback adapter instead of
// hardware GPU acceleration. This requires a software Vulkan ICD to be installed on the system.
//
// Parameters:
//   - force: true to force the software fallback adapter
//
// Returns:
//   - RenderContextBuilderOption: a function that applies the force software renderer option to a render context
func WithForceSoftwareRenderer(force bool) RenderContextBuilderOption {
	return func(c *renderContext) {
		c.forceFallbackAdapter = force
	}
}
