package pipeline

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// PipelineBuilderOption is a functional option used to configure a Pipeline during construction.
type PipelineBuilderOption func(*pipeline)

// WithLabel sets the pipeline label, which also distinguishes the cache keys of different programs.
//
// Parameters:
//   - label: the label, usually the program name
//
// Returns:
//   - PipelineBuilderOption: a function that sets the label
func WithLabel(label string) PipelineBuilderOption {
	return func(p *pipeline) {
		p.label = label
	}
}

// WithLayout sets the pipeline layout of the program.
//
// Parameters:
//   - layout: the pipeline layout
//
// Returns:
//   - PipelineBuilderOption: a function that sets the layout
func WithLayout(layout *wgpu.PipelineLayout) PipelineBuilderOption {
	return func(p *pipeline) {
		p.layout = layout
	}
}

// WithShaderModule sets the shader module and the entry points of both stages.
//
// Parameters:
//   - module: the compiled shader module
//   - vertexEntry: the vertex stage entry point
//   - fragmentEntry: the fragment stage entry point
//
// Returns:
//   - PipelineBuilderOption: a function that sets the shader module
func WithShaderModule(module *wgpu.ShaderModule, vertexEntry, fragmentEntry string) PipelineBuilderOption {
	return func(p *pipeline) {
		p.module = module
		p.vertexEntry = vertexEntry
		p.fragmentEntry = fragmentEntry
	}
}

// WithVertexBuffers sets the vertex buffer layouts. Fullscreen programs take none.
func WithVertexBuffers(layouts ...wgpu.VertexBufferLayout) PipelineBuilderOption {
	return func(p *pipeline) {
		p.vertexBuffers = layouts
	}
}

// WithColorTargets sets the formats of the pass's color attachments, in attachment order.
func WithColorTargets(formats ...wgpu.TextureFormat) PipelineBuilderOption {
	return func(p *pipeline) {
		p.colorFormats = formats
	}
}

// WithDepthTarget declares that the pass has a depth attachment of the given format.
func WithDepthTarget(format wgpu.TextureFormat) PipelineBuilderOption {
	return func(p *pipeline) {
		p.depthFormat = format
		p.hasDepth = true
	}
}

// WithDepthTestEnabled sets whether depth testing is enabled for this pipeline.
//
// Parameters:
//   - enabled: a boolean indicating whether depth testing should be enabled
//
// Returns:
//   - PipelineBuilderOption: a function that sets the depth test enabled state for this pipeline
func WithDepthTestEnabled(enabled bool) PipelineBuilderOption {
	return func(p *pipeline) {
		p.depthTestEnabled = enabled
	}
}

// WithDepthWriteEnabled sets whether depth writing is enabled for this pipeline.
//
// Parameters:
//   - enabled: a boolean indicating whether depth writing should be enabled
//
// Returns:
//   - PipelineBuilderOption: a function that sets the depth write enabled state for this pipeline
func WithDepthWriteEnabled(enabled bool) PipelineBuilderOption {
	return func(p *pipeline) {
		p.depthWriteEnabled = enabled
	}
}

// WithBlendState sets the blend state of every color target. nil disables blending.
func WithBlendState(state *wgpu.BlendState) PipelineBuilderOption {
	return func(p *pipeline) {
		p.blendState = state
	}
}

// WithCullMode sets the face culling mode.
//
// Parameters:
//   - mode: the cull mode (e.g., wgpu.CullModeNone, wgpu.CullModeFront, wgpu.CullModeBack)
//
// Returns:
//   - PipelineBuilderOption: a function that sets the cull mode for this pipeline
func WithCullMode(mode wgpu.CullMode) PipelineBuilderOption {
	return func(p *pipeline) {
		p.cullMode = mode
	}
}
