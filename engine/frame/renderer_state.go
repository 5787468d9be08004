package frame

import (
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer"
)

// RendererState holds every render target of one output resolution.
// It is never resized; a resolution change replaces the whole state.
type RendererState struct {
	Width  int
	Height int

	Depth         renderer.Texture
	LitHDR        renderer.Texture
	ToneMapped    renderer.Texture
	Color         renderer.Texture
	Normal        renderer.Texture
	IndirectLight renderer.Texture
	FullLight     renderer.Texture

	Prepass        renderer.Framebuffer // depth only
	Main           renderer.Framebuffer // lit HDR, no depth
	GBuffer        renderer.Framebuffer // depth + color + normal
	ToneMap        renderer.Framebuffer
	IndirectLights renderer.Framebuffer
	Blur           renderer.Framebuffer
}

// NewRendererState allocates every texture and framebuffer for a resolution.
// A zero or negative size, e.g. a minimized window, yields an empty state holding no resources.
//
// Parameters:
//   - ctx: the render context owning the targets
//   - width: the output width in pixels
//   - height: the output height in pixels
//
// Returns:
//   - *RendererState: the new state
func NewRendererState(ctx renderer.RenderContext, width, height int) *RendererState {
	s := &RendererState{Width: width, Height: height}
	if width <= 0 || height <= 0 {
		return s
	}

	s.Depth = ctx.NewTexture("depth", renderer.ImageFormatDepth32F, width, height)
	s.LitHDR = ctx.NewTexture("lit_hdr", renderer.ImageFormatRGBA8sRGB, width, height)
	s.ToneMapped = ctx.NewTexture("tone_mapped", renderer.ImageFormatRGBA8Unorm, width, height)
	s.Color = ctx.NewTexture("color", renderer.ImageFormatRGBA8sRGB, width, height)
	s.Normal = ctx.NewTexture("normal", renderer.ImageFormatRGBA8Unorm, width, height)
	s.IndirectLight = ctx.NewTexture("indirect_light", renderer.ImageFormatRGBA8sRGB, width, height)
	s.FullLight = ctx.NewTexture("full_light", renderer.ImageFormatRGBA8sRGB, width, height)

	s.Prepass = ctx.NewFramebuffer("prepass", s.Depth)
	s.Main = ctx.NewFramebuffer("main", nil, s.LitHDR)
	s.GBuffer = ctx.NewFramebuffer("g_buffer", s.Depth, s.Color, s.Normal)
	s.ToneMap = ctx.NewFramebuffer("tone_map", nil, s.ToneMapped)
	s.IndirectLights = ctx.NewFramebuffer("indirect_lights", nil, s.IndirectLight)
	s.Blur = ctx.NewFramebuffer("blur", nil, s.FullLight)
	return s
}

// Empty reports whether the state holds no render targets.
func (s *RendererState) Empty() bool {
	return s.Depth == nil
}

// SameSize reports whether the state was created for the given resolution.
func (s *RendererState) SameSize(width, height int) bool {
	return s.Width == width && s.Height == height
}

// Framebuffers returns every framebuffer of the state, or nil for an empty state.
func (s *RendererState) Framebuffers() []renderer.Framebuffer {
	if s.Empty() {
		return nil
	}
	return []renderer.Framebuffer{s.Prepass, s.Main, s.GBuffer, s.ToneMap, s.IndirectLights, s.Blur}
}

// Textures returns every texture of the state, or nil for an empty state.
func (s *RendererState) Textures() []renderer.Texture {
	if s.Empty() {
		return nil
	}
	return []renderer.Texture{s.Depth, s.LitHDR, s.ToneMapped, s.Color, s.Normal, s.IndirectLight, s.FullLight}
}

// Resources returns every framebuffer and texture of the state.
func (s *RendererState) Resources() []renderer.Resource {
	var out []renderer.Resource
	for _, f := range s.Framebuffers() {
		out = append(out, f)
	}
	for _, t := range s.Textures() {
		out = append(out, t)
	}
	return out
}

// Release releases the framebuffers, then their attachments. Calling it twice is a no-op.
func (s *RendererState) Release() {
	for _, r := range s.Resources() {
		r.Release()
	}
}
