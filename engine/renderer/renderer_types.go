package renderer

import "fmt"

// BackendType identifies the GPU backend implementation used by a RenderContext.
type BackendType int

const (
	// BackendTypeWGPU selects the WebGPU-based rendering backend.
	BackendTypeWGPU BackendType = iota

	// BackendTypeHeadless selects a backend that keeps CPU-side resource shadows only.
	// Nothing is presented. Commands can still be recorded and audited.
	BackendTypeHeadless
)

// ParseBackendType converts a backend name into a BackendType.
//
// Parameters:
//   - name: "wgpu" or "headless"
//
// Returns:
//   - BackendType: the matching backend type
//   - error: an error if the name is unknown
func ParseBackendType(name string) (BackendType, error) {
	switch name {
	case "wgpu", "":
		return BackendTypeWGPU, nil
	case "headless":
		return BackendTypeHeadless, nil
	}
	return BackendTypeWGPU, fmt.Errorf("unknown backend %q", name)
}

// ImageFormat is the pixel format of a Texture.
type ImageFormat int

const (
	// ImageFormatDepth32F is a single-channel 32-bit float depth format.
	ImageFormatDepth32F ImageFormat = iota

	// ImageFormatRGBA8sRGB is 8-bit RGBA stored in sRGB color space.
	ImageFormatRGBA8sRGB

	// ImageFormatRGBA8Unorm is 8-bit RGBA stored linearly.
	ImageFormatRGBA8Unorm
)

// IsDepth reports whether the format is a depth format.
func (f ImageFormat) IsDepth() bool {
	return f == ImageFormatDepth32F
}

func (f ImageFormat) String() string {
	switch f {
	case ImageFormatDepth32F:
		return "Depth32F"
	case ImageFormatRGBA8sRGB:
		return "RGBA8_sRGB"
	case ImageFormatRGBA8Unorm:
		return "RGBA8_UNORM"
	}
	return fmt.Sprintf("ImageFormat(%d)", int(f))
}

// BufferUsage names the binding-point family a Buffer is created for and bound at.
type BufferUsage int

const (
	BufferUsageUniform BufferUsage = iota
	BufferUsageStorage
	BufferUsageAttribute
	BufferUsageIndex
)

func (u BufferUsage) String() string {
	switch u {
	case BufferUsageUniform:
		return "uniform"
	case BufferUsageStorage:
		return "storage"
	case BufferUsageAttribute:
		return "attribute"
	case BufferUsageIndex:
		return "index"
	}
	return fmt.Sprintf("BufferUsage(%d)", int(u))
}

// CullMode selects which triangle faces are discarded by the rasterizer.
type CullMode int

const (
	CullModeBack CullMode = iota
	CullModeFront
	CullModeNone
)

func (m CullMode) String() string {
	switch m {
	case CullModeBack:
		return "back"
	case CullModeFront:
		return "front"
	case CullModeNone:
		return "none"
	}
	return fmt.Sprintf("CullMode(%d)", int(m))
}

// BlendMode selects how fragment output is combined with the color target.
type BlendMode int

const (
	BlendModeNone BlendMode = iota

	// BlendModeAdditive accumulates the fragment color onto the target (one, one).
	BlendModeAdditive

	// BlendModeAlpha is standard straight-alpha blending.
	BlendModeAlpha
)

// DepthTest selects the depth comparison used by draws into a target with a depth attachment.
type DepthTest int

const (
	DepthTestLess DepthTest = iota
	DepthTestNone
)

// Stats counts the work submitted through a RenderContext since it was created.
type Stats struct {
	Frames           int
	Draws            int
	BufferWrites     int
	FramebufferBinds int
	LiveResources    int
}
