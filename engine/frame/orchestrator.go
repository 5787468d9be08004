package frame

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-deferred/common"
	"github.com/Carmen-Shannon/oxy-deferred/engine/logger"
	"github.com/Carmen-Shannon/oxy-deferred/engine/profiler"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer"
	"github.com/Carmen-Shannon/oxy-deferred/engine/scene"
)

var log = logger.New("frame")

// Pass names, also used as profiler zone names.
const (
	PassZPrepass = "Z-Prepass"
	PassGBuffer  = "GBuffer pass"
	PassLighting = "Lighting pass"
	PassIndirect = "Indirect lighting pass"
	PassBlur     = "Blur pass"
	PassToneMap  = "Tonemap pass"
	PassBlit     = "Blit pass"

	frameZone = "Frame"
)

// Exposure limits of the tone-map pass.
const (
	MinExposure     float32 = 0.01
	MaxExposure     float32 = 100
	DefaultExposure float32 = 1
)

// DebugDisplay selects what the lighting pass writes to the lit target.
type DebugDisplay uint32

const (
	DebugDisplayLit DebugDisplay = iota
	DebugDisplayAlbedo
	DebugDisplayNormals
	DebugDisplayDepth

	debugDisplayCount
)

func (d DebugDisplay) String() string {
	switch d {
	case DebugDisplayLit:
		return "lit"
	case DebugDisplayAlbedo:
		return "albedo"
	case DebugDisplayNormals:
		return "normals"
	case DebugDisplayDepth:
		return "depth"
	}
	return fmt.Sprintf("DebugDisplay(%d)", uint32(d))
}

// Next returns the following mode, wrapping from Depth back to Lit.
func (d DebugDisplay) Next() DebugDisplay {
	return (d + 1) % debugDisplayCount
}

// Orchestrator owns the render targets and runs the fixed pass sequence of a deferred frame:
// depth prepass, G-buffer, lighting (or a G-buffer debug view), indirect lighting, blur,
// tone mapping and the blit to the screen.
type Orchestrator interface {
	// Render renders one frame of a scene. Render targets are replaced first if the size changed.
	//
	// Parameters:
	//   - s: the scene to render
	//   - width: the output width in pixels
	//   - height: the output height in pixels
	//
	// Returns:
	//   - error: renderer.ErrEmptyFrame for a zero size, or an error from the render context
	Render(s scene.Scene, width, height int) error

	// Resize replaces every render target and framebuffer with new ones of the given size
	// and releases the old ones. A same-size call is a no-op.
	//
	// Parameters:
	//   - width: the output width in pixels
	//   - height: the output height in pixels
	Resize(width, height int)

	// State returns the current render targets.
	State() *RendererState

	// Passes builds the pass list of one frame against the current render targets.
	//
	// Parameters:
	//   - s: the scene the geometry and light passes draw
	//
	// Returns:
	//   - []Pass: the passes in execution order, nil while no render targets exist
	Passes(s scene.Scene) []Pass

	DebugDisplay() DebugDisplay

	// SetDebugDisplay selects the lighting pass output. Unknown modes fall back to Lit.
	SetDebugDisplay(mode DebugDisplay)

	Exposure() float32

	// SetExposure sets the tone-map exposure, clamped to [MinExposure, MaxExposure].
	SetExposure(exposure float32)

	// Release releases the render targets.
	Release()
}

type orchestrator struct {
	mu *sync.Mutex

	ctx      renderer.RenderContext
	state    *RendererState
	profiler *profiler.Profiler

	debug    DebugDisplay
	exposure float32
}

var _ Orchestrator = &orchestrator{}

// NewOrchestrator creates a frame orchestrator. Render targets are allocated by the first Render
// or Resize unless WithSize is given.
//
// Parameters:
//   - ctx: the render context every pass renders through
//   - options: variadic list of OrchestratorBuilderOption functions
//
// Returns:
//   - Orchestrator: the orchestrator
func NewOrchestrator(ctx renderer.RenderContext, options ...OrchestratorBuilderOption) Orchestrator {
	o := &orchestrator{
		mu:       &sync.Mutex{},
		ctx:      ctx,
		state:    &RendererState{},
		exposure: DefaultExposure,
	}
	for _, opt := range options {
		opt(o)
	}
	return o
}

func (o *orchestrator) Render(s scene.Scene, width, height int) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.state.SameSize(width, height) {
		o.resize(width, height)
	}
	if o.state.Empty() {
		return renderer.ErrEmptyFrame
	}

	passes := o.passes(s)
	if o.ctx.Validation() {
		if err := ValidatePasses(passes); err != nil {
			return err
		}
	}

	if err := o.ctx.BeginFrame(width, height); err != nil {
		return err
	}

	endFrame := o.zone(frameZone)
	o.ctx.SetCullMode(renderer.CullModeBack)
	o.ctx.SetDepthMask(true)
	o.ctx.SetDepthTest(renderer.DepthTestLess)
	o.ctx.SetBlendMode(renderer.BlendModeNone)
	for _, p := range passes {
		end := o.zone(p.Name)
		p.Execute(o.ctx)
		end()
	}
	endFrame()

	o.ctx.EndFrame()
	return nil
}

func (o *orchestrator) zone(name string) func() {
	if o.profiler == nil {
		return func() {}
	}
	return o.profiler.Begin(name)
}

func (o *orchestrator) Resize(width, height int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.state.SameSize(width, height) {
		o.resize(width, height)
	}
}

// resize replaces the state. Caller must hold the lock.
func (o *orchestrator) resize(width, height int) {
	old := o.state
	o.state = NewRendererState(o.ctx, width, height)
	old.Release()
	log.Debugf("render targets resized from %dx%d to %dx%d", old.Width, old.Height, width, height)
}

func (o *orchestrator) State() *RendererState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

func (o *orchestrator) Passes(s scene.Scene) []Pass {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.passes(s)
}

// passes builds the frame's pass list. Caller must hold the lock.
func (o *orchestrator) passes(s scene.Scene) []Pass {
	st := o.state
	if st.Empty() {
		return nil
	}
	debug := o.debug
	exposure := o.exposure
	gbufferInputs := []renderer.Resource{st.Color, st.Normal, st.Depth}

	return []Pass{
		{
			Name:   PassZPrepass,
			Writes: []renderer.Resource{st.Depth},
			Execute: func(ctx renderer.RenderContext) {
				st.Prepass.Bind(true, true)
				s.ZPrepass(ctx)
			},
		},
		{
			Name:   PassGBuffer,
			Writes: []renderer.Resource{st.Depth, st.Color, st.Normal},
			Execute: func(ctx renderer.RenderContext) {
				st.GBuffer.Bind(true, true)
				ctx.Program(renderer.ProgramGBuffer).Bind()
				s.Render(ctx)
			},
		},
		{
			Name:   PassLighting,
			Reads:  gbufferInputs,
			Writes: []renderer.Resource{st.LitHDR},
			Execute: func(ctx renderer.RenderContext) {
				if debug != DebugDisplayLit {
					st.Main.Bind(true, true)
					choice := ctx.Program(renderer.ProgramGBufferChoice)
					choice.Bind()
					choice.SetUniform("outputtype", uint32(debug))
					bindInputs(ctx, st.Color, st.Normal, st.Depth)
					ctx.DrawFullscreen()
					return
				}

				ctx.SetCullMode(renderer.CullModeFront)
				ctx.SetDepthMask(false)
				st.Main.Bind(true, true)
				bindInputs(ctx, st.Color, st.Normal, st.Depth)
				s.RenderLights(ctx, st.Width, st.Height)
				ctx.SetCullMode(renderer.CullModeBack)
				ctx.SetDepthMask(true)
			},
		},
		{
			Name:   PassIndirect,
			Reads:  []renderer.Resource{st.LitHDR, st.Normal, st.Depth},
			Writes: []renderer.Resource{st.IndirectLight},
			Execute: func(ctx renderer.RenderContext) {
				st.IndirectLights.Bind(false, true)
				ctx.Program(renderer.ProgramIndirectLights).Bind()
				bindInputs(ctx, st.LitHDR, st.Normal, st.Depth)
				ctx.DrawFullscreen()
			},
		},
		{
			Name:   PassBlur,
			Reads:  []renderer.Resource{st.IndirectLight, st.LitHDR, st.Depth},
			Writes: []renderer.Resource{st.FullLight},
			Execute: func(ctx renderer.RenderContext) {
				st.Blur.Bind(false, true)
				ctx.Program(renderer.ProgramBlur).Bind()
				bindInputs(ctx, st.IndirectLight, st.LitHDR, st.Depth)
				ctx.DrawFullscreen()
			},
		},
		{
			Name:   PassToneMap,
			Reads:  []renderer.Resource{st.FullLight},
			Writes: []renderer.Resource{st.ToneMapped},
			Execute: func(ctx renderer.RenderContext) {
				st.ToneMap.Bind(false, true)
				tonemap := ctx.Program(renderer.ProgramToneMap)
				tonemap.Bind()
				tonemap.SetUniform("exposure", exposure)
				bindInputs(ctx, st.FullLight)
				ctx.DrawFullscreen()
			},
		},
		{
			Name:  PassBlit,
			Reads: []renderer.Resource{st.ToneMapped},
			Execute: func(ctx renderer.RenderContext) {
				ctx.BindDefaultFramebuffer()
				st.ToneMap.Blit()
			},
		},
	}
}

// bindInputs binds textures at consecutive slots starting at TextureSlotInput0.
func bindInputs(ctx renderer.RenderContext, textures ...renderer.Texture) {
	for i, t := range textures {
		ctx.Bind(t, renderer.TextureSlotInput0+i)
	}
}

func (o *orchestrator) DebugDisplay() DebugDisplay {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.debug
}

func (o *orchestrator) SetDebugDisplay(mode DebugDisplay) {
	if mode >= debugDisplayCount {
		mode = DebugDisplayLit
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.debug = mode
}

func (o *orchestrator) Exposure() float32 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.exposure
}

func (o *orchestrator) SetExposure(exposure float32) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.exposure = common.Clamp(exposure, MinExposure, MaxExposure)
}

func (o *orchestrator) Release() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.state.Release()
	o.state = &RendererState{}
}
