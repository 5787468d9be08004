package pipeline

import (
	"fmt"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

// pipeline is the implementation of the Pipeline interface.
// It holds the configuration a render pipeline is created from. Pipelines are cheap to build,
// the backend creates the GPU object once per distinct Key.
type pipeline struct {
	label string

	// layout and module come from the program the pipeline draws with
	layout        *wgpu.PipelineLayout
	module        *wgpu.ShaderModule
	vertexEntry   string
	fragmentEntry string
	vertexBuffers []wgpu.VertexBufferLayout

	// targets of the render pass the pipeline draws into
	colorFormats []wgpu.TextureFormat
	depthFormat  wgpu.TextureFormat
	hasDepth     bool

	depthTestEnabled  bool
	depthWriteEnabled bool
	blendState        *wgpu.BlendState
	cullMode          wgpu.CullMode
	topology          wgpu.PrimitiveTopology
	frontFace         wgpu.FrontFace
	writeMask         wgpu.ColorWriteMask
}

// Pipeline describes a render pipeline: a program's shader module and layout combined with the
// raster state of a draw and the attachment formats of the pass it draws into.
type Pipeline interface {
	// Key returns a string identifying the pipeline's configuration. Two pipelines with the same
	// label, raster state and target formats have the same key.
	//
	// Returns:
	//   - string: the cache key
	Key() string

	// Descriptor builds the descriptor the GPU pipeline is created from.
	// A pipeline without color targets has no fragment stage.
	//
	// Returns:
	//   - *wgpu.RenderPipelineDescriptor: the descriptor
	Descriptor() *wgpu.RenderPipelineDescriptor

	// DepthTestEnabled returns whether fragments are depth tested against the depth target.
	DepthTestEnabled() bool

	// DepthWriteEnabled returns whether fragments write the depth target.
	DepthWriteEnabled() bool

	// CullMode returns the face culling mode.
	CullMode() wgpu.CullMode
}

var _ Pipeline = &pipeline{}

// NewPipeline creates a render pipeline configuration. Defaults: triangle list, counter-clockwise
// front faces, back-face culling, depth test and depth write enabled, no blending.
//
// Parameters:
//   - options: functional options to configure the pipeline
//
// Returns:
//   - Pipeline: the pipeline configuration
func NewPipeline(options ...PipelineBuilderOption) Pipeline {
	p := &pipeline{
		depthTestEnabled:  true,
		depthWriteEnabled: true,
		cullMode:          wgpu.CullModeBack,
		topology:          wgpu.PrimitiveTopologyTriangleList,
		frontFace:         wgpu.FrontFaceCCW,
		writeMask:         wgpu.ColorWriteMaskAll,
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *pipeline) Key() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s|%v", p.label, p.colorFormats)
	if p.hasDepth {
		fmt.Fprintf(&sb, "|depth:%v:%t:%t", p.depthFormat, p.depthTestEnabled, p.depthWriteEnabled)
	}
	fmt.Fprintf(&sb, "|cull:%v|%v|%v", p.cullMode, p.topology, p.frontFace)
	if p.blendState != nil {
		fmt.Fprintf(&sb, "|blend:%+v", *p.blendState)
	}
	return sb.String()
}

func (p *pipeline) Descriptor() *wgpu.RenderPipelineDescriptor {
	descriptor := &wgpu.RenderPipelineDescriptor{
		Label:  p.Key(),
		Layout: p.layout,
		Vertex: wgpu.VertexState{
			Module:     p.module,
			EntryPoint: p.vertexEntry,
			Buffers:    p.vertexBuffers,
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  p.topology,
			FrontFace: p.frontFace,
			CullMode:  p.cullMode,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	}

	if len(p.colorFormats) > 0 {
		targets := make([]wgpu.ColorTargetState, len(p.colorFormats))
		for i, format := range p.colorFormats {
			targets[i] = wgpu.ColorTargetState{
				Format:    format,
				Blend:     p.blendState,
				WriteMask: p.writeMask,
			}
		}
		descriptor.Fragment = &wgpu.FragmentState{
			Module:     p.module,
			EntryPoint: p.fragmentEntry,
			Targets:    targets,
		}
	}

	if p.hasDepth {
		compare := wgpu.CompareFunctionAlways
		if p.depthTestEnabled {
			compare = wgpu.CompareFunctionLess
		}
		descriptor.DepthStencil = &wgpu.DepthStencilState{
			Format:            p.depthFormat,
			DepthWriteEnabled: p.depthWriteEnabled,
			DepthCompare:      compare,
			StencilFront: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
			StencilBack: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
		}
	}
	return descriptor
}

func (p *pipeline) DepthTestEnabled() bool {
	return p.depthTestEnabled
}

func (p *pipeline) DepthWriteEnabled() bool {
	return p.depthWriteEnabled
}

func (p *pipeline) CullMode() wgpu.CullMode {
	return p.cullMode
}
