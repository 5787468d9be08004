package renderer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-deferred/common"
	"github.com/Carmen-Shannon/oxy-deferred/engine/logger"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

var log = logger.New("renderer")

// Slot limits of the binding tables.
const (
	MaxBufferSlots  = 8
	MaxTextureSlots = 7
	MaxColorTargets = 4
)

// ErrEmptyFrame is returned by BeginFrame when the frame has no pixels, e.g. a minimized window.
var ErrEmptyFrame = errors.New("frame has zero size")

// ErrSurfaceUnavailable is returned by BeginFrame when the presentation surface cannot be acquired,
// e.g. while it is outdated or lost after a resize. The frame is dropped and a later one may succeed.
var ErrSurfaceUnavailable = errors.New("surface unavailable")

// bufferSlot keys the buffer binding table.
type bufferSlot struct {
	usage BufferUsage
	slot  int
}

// renderContext is the implementation of the RenderContext interface.
type renderContext struct {
	mu *sync.Mutex

	backendType BackendType
	backend     renderContextBackend

	// Pre-creation config collected from builder options
	validate             bool
	recording            bool
	surfaceDescriptor    *wgpu.SurfaceDescriptor
	forceFallbackAdapter bool
	presentMode          PresentMode

	programs map[ProgramName]*program
	live     map[uuid.UUID]Resource

	// Binding-point state
	buffers   map[bufferSlot]*buffer
	textures  map[int]*texture
	current   *program
	target    *framebuffer
	hasTarget bool
	cull      CullMode
	depthMask bool
	blend     BlendMode
	depthTest DepthTest

	inFrame  bool
	width    int
	height   int
	released bool

	commands []Command
	warned   map[string]bool
	stats    Stats
}

// RenderContext is the explicit binding-point table and command stream every pass renders through.
//
// Resources are created by the context and bound at numbered slots. Every bind overwrites whatever was
// previously bound at that slot; a draw consumes the bindings its current program declares.
// A RenderContext is used from one goroutine at a time; its lock only protects resource handles
// queried from other goroutines.
type RenderContext interface {
	// NewBuffer creates a zero-filled buffer.
	//
	// Parameters:
	//   - label: a human-readable name
	//   - usage: the usage family the buffer is bound at
	//   - size: the size in bytes, greater than 0
	//
	// Returns:
	//   - Buffer: the new buffer
	NewBuffer(label string, usage BufferUsage, size int) Buffer

	// NewBufferWithData creates a buffer sized to and filled with data.
	//
	// Parameters:
	//   - label: a human-readable name
	//   - usage: the usage family the buffer is bound at
	//   - data: the initial contents, not empty
	//
	// Returns:
	//   - Buffer: the new buffer
	NewBufferWithData(label string, usage BufferUsage, data []byte) Buffer

	// NewTexture creates a texture usable as a framebuffer attachment and a sampled input.
	//
	// Parameters:
	//   - label: a human-readable name
	//   - format: the pixel format
	//   - width, height: the dimensions in pixels, greater than 0
	//
	// Returns:
	//   - Texture: the new texture
	NewTexture(label string, format ImageFormat, width, height int) Texture

	// NewTextureFromImage creates a sampled texture from decoded RGBA8 pixels.
	//
	// Parameters:
	//   - label: a human-readable name
	//   - img: the decoded pixels
	//   - srgb: true for color data, false for linear data such as normal maps
	//
	// Returns:
	//   - Texture: the new texture
	NewTextureFromImage(label string, img common.DecodedImage, srgb bool) Texture

	// NewFramebuffer creates a framebuffer from attachments. All attachments must share one size.
	//
	// Parameters:
	//   - label: a human-readable name
	//   - depth: the depth attachment, or nil
	//   - colors: the color attachments in location order
	//
	// Returns:
	//   - Framebuffer: the new framebuffer
	NewFramebuffer(label string, depth Texture, colors ...Texture) Framebuffer

	// Program returns a built-in program. Panics for an unknown name.
	Program(name ProgramName) Program

	// Bind binds a buffer or texture at a slot. Buffers are bound at their creation usage.
	//
	// Parameters:
	//   - resource: a Buffer or Texture
	//   - slot: the binding slot
	Bind(resource Resource, slot int)

	// BindBuffer binds a buffer at a slot of a usage family.
	//
	// Parameters:
	//   - buffer: the buffer
	//   - usage: the usage family, which must match the buffer's
	//   - slot: the binding slot
	BindBuffer(buffer Buffer, usage BufferUsage, slot int)

	// Bound returns the buffer bound at a slot, or nil.
	Bound(usage BufferUsage, slot int) Buffer

	// BoundTexture returns the texture bound at a slot, or nil.
	BoundTexture(slot int) Texture

	// BoundFramebuffer returns the current render target, or nil for the default framebuffer.
	BoundFramebuffer() Framebuffer

	// CurrentProgram returns the bound program, or nil.
	CurrentProgram() Program

	SetCullMode(mode CullMode)
	SetDepthMask(enabled bool)
	SetBlendMode(mode BlendMode)
	SetDepthTest(test DepthTest)

	// BindDefaultFramebuffer makes the presentation surface the current render target.
	BindDefaultFramebuffer()

	// DrawIndexed draws indexed triangles with the current program and bindings.
	//
	// Parameters:
	//   - vertices: an attribute buffer of interleaved vertices
	//   - indices: an index buffer of uint32 indices
	//   - indexCount: the number of indices to draw
	DrawIndexed(vertices, indices Buffer, indexCount int)

	// DrawFullscreen draws one triangle covering the render target, without blending, culling or depth.
	DrawFullscreen()

	// BeginFrame starts recording a frame of the given size.
	//
	// Parameters:
	//   - width, height: the presentation size in pixels
	//
	// Returns:
	//   - error: ErrEmptyFrame for a zero size, or ErrSurfaceUnavailable if the surface cannot be acquired
	BeginFrame(width, height int) error

	// EndFrame submits and presents the frame.
	EndFrame()

	// Validation reports whether the binding audit runs before every draw.
	Validation() bool

	// Commands returns a copy of the recorded command log. Empty unless recording is enabled.
	Commands() []Command

	// ResetCommands clears the recorded command log.
	ResetCommands()

	// Stats returns counters of the work submitted so far.
	Stats() Stats

	// BackendType returns the backend in use.
	BackendType() BackendType

	// Release releases every live resource and the backend.
	Release()
}

var _ RenderContext = &renderContext{}

// NewRenderContext creates a RenderContext and compiles every built-in program.
//
// Parameters:
//   - options: variadic list of RenderContextBuilderOption functions to configure the context
//
// Returns:
//   - RenderContext: the new context
//   - error: an error if the backend or a program cannot be created
func NewRenderContext(options ...RenderContextBuilderOption) (RenderContext, error) {
	c := &renderContext{
		mu:          &sync.Mutex{},
		backendType: BackendTypeHeadless,
		presentMode: PresentModeVSync,
		programs:    make(map[ProgramName]*program),
		live:        make(map[uuid.UUID]Resource),
		buffers:     make(map[bufferSlot]*buffer),
		textures:    make(map[int]*texture),
		warned:      make(map[string]bool),
		depthMask:   true,
	}

	for _, option := range options {
		option(c)
	}

	switch c.backendType {
	case BackendTypeWGPU:
		if c.surfaceDescriptor == nil {
			return nil, errors.New("the wgpu backend needs a surface descriptor")
		}
		backend, err := newWGPUBackend(c.surfaceDescriptor, c.forceFallbackAdapter, c.presentMode)
		if err != nil {
			return nil, err
		}
		c.backend = backend
	default:
		c.backend = newHeadlessBackend()
	}

	for _, name := range ProgramNames() {
		desc, err := LookupProgram(name)
		if err != nil {
			c.backend.destroy()
			return nil, err
		}
		offsets, size := desc.UniformLayout()
		p := &program{
			resourceBase: newResourceBase(c, string(name)),
			desc:         desc,
			uniforms:     make([]byte, size),
			offsets:      offsets,
		}
		if err := c.backend.createProgram(p); err != nil {
			c.backend.destroy()
			return nil, fmt.Errorf("failed to create program %q: %w", name, err)
		}
		c.programs[name] = p
	}

	log.Debugf("render context created (backend %d, validation %t)", c.backendType, c.validate)
	return c, nil
}

// NewHeadlessContext creates a RenderContext on the headless backend, which cannot fail.
//
// Parameters:
//   - options: variadic list of RenderContextBuilderOption functions to configure the context
//
// Returns:
//   - RenderContext: the new context
func NewHeadlessContext(options ...RenderContextBuilderOption) RenderContext {
	options = append(options, WithBackendType(BackendTypeHeadless))
	ctx, err := NewRenderContext(options...)
	if err != nil {
		panic(fmt.Sprintf("renderer: headless context: %v", err))
	}
	return ctx
}

func (c *renderContext) NewBuffer(label string, usage BufferUsage, size int) Buffer {
	c.mu.Lock()
	defer c.mu.Unlock()

	if size <= 0 {
		panic(fmt.Sprintf("renderer: buffer %q must have a positive size, got %d", label, size))
	}

	b := &buffer{
		resourceBase: newResourceBase(c, label),
		usage:        usage,
		data:         make([]byte, size),
	}
	c.backend.createBuffer(b)
	c.live[b.id] = b
	return b
}

func (c *renderContext) NewBufferWithData(label string, usage BufferUsage, data []byte) Buffer {
	b := c.NewBuffer(label, usage, len(data))
	b.Write(data)
	return b
}

func (c *renderContext) NewTexture(label string, format ImageFormat, width, height int) Texture {
	c.mu.Lock()
	defer c.mu.Unlock()

	if width <= 0 || height <= 0 {
		panic(fmt.Sprintf("renderer: texture %q must have a positive size, got %dx%d", label, width, height))
	}

	t := &texture{
		resourceBase: newResourceBase(c, label),
		width:        width,
		height:       height,
		format:       format,
	}
	c.backend.createTexture(t, nil)
	c.live[t.id] = t
	return t
}

func (c *renderContext) NewTextureFromImage(label string, img common.DecodedImage, srgb bool) Texture {
	c.mu.Lock()
	defer c.mu.Unlock()

	if img.Width == 0 || img.Height == 0 || len(img.Pixels) != int(img.Width*img.Height*4) {
		panic(fmt.Sprintf("renderer: texture %q has %d bytes for a %dx%d RGBA8 image", label, len(img.Pixels), img.Width, img.Height))
	}

	format := ImageFormatRGBA8Unorm
	if srgb {
		format = ImageFormatRGBA8sRGB
	}
	t := &texture{
		resourceBase: newResourceBase(c, label),
		width:        int(img.Width),
		height:       int(img.Height),
		format:       format,
	}
	c.backend.createTexture(t, img.Pixels)
	c.live[t.id] = t
	return t
}

func (c *renderContext) NewFramebuffer(label string, depth Texture, colors ...Texture) Framebuffer {
	c.mu.Lock()
	defer c.mu.Unlock()

	if depth == nil && len(colors) == 0 {
		panic(fmt.Sprintf("renderer: framebuffer %q has no attachments", label))
	}
	if len(colors) > MaxColorTargets {
		panic(fmt.Sprintf("renderer: framebuffer %q has %d color attachments, at most %d are supported", label, len(colors), MaxColorTargets))
	}

	f := &framebuffer{resourceBase: newResourceBase(c, label)}
	width, height := -1, -1
	check := func(t *texture) {
		if t.ctx != c {
			panic(fmt.Sprintf("renderer: framebuffer %q uses texture %q from another context", label, t.label))
		}
		if t.released {
			panic(fmt.Sprintf("renderer: framebuffer %q uses released texture %q", label, t.label))
		}
		if width >= 0 && (t.width != width || t.height != height) {
			panic(fmt.Sprintf("renderer: framebuffer %q attachment %q is %dx%d, expected %dx%d", label, t.label, t.width, t.height, width, height))
		}
		width, height = t.width, t.height
	}

	if depth != nil {
		d := depth.impl()
		if !d.format.IsDepth() {
			panic(fmt.Sprintf("renderer: framebuffer %q depth attachment %q has color format %s", label, d.label, d.format))
		}
		check(d)
		f.depth = d
	}
	for _, color := range colors {
		t := color.impl()
		if t.format.IsDepth() {
			panic(fmt.Sprintf("renderer: framebuffer %q color attachment %q has depth format", label, t.label))
		}
		check(t)
		f.colors = append(f.colors, t)
	}

	c.backend.createFramebuffer(f)
	c.live[f.id] = f
	return f
}

func (c *renderContext) Program(name ProgramName) Program {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.programs[name]
	if !ok {
		panic(fmt.Sprintf("renderer: unknown program %q", name))
	}
	return p
}

func (c *renderContext) Bind(resource Resource, slot int) {
	switch r := resource.(type) {
	case Buffer:
		c.BindBuffer(r, r.Usage(), slot)
	case Texture:
		c.bindTexture(r.impl(), slot)
	default:
		panic(fmt.Sprintf("renderer: %T cannot be bound at a slot", resource))
	}
}

func (c *renderContext) BindBuffer(buf Buffer, usage BufferUsage, slot int) {
	if buf == nil {
		panic(fmt.Sprintf("renderer: nil buffer bound at %s slot %d", usage, slot))
	}
	b := buf.impl()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.checkOwned(&b.resourceBase)
	if b.usage != usage {
		panic(fmt.Sprintf("renderer: buffer %q created for %s usage bound as %s", b.label, b.usage, usage))
	}
	if usage != BufferUsageUniform && usage != BufferUsageStorage {
		panic(fmt.Sprintf("renderer: %s buffer %q cannot be bound at a slot", usage, b.label))
	}
	if slot < 0 || slot >= MaxBufferSlots {
		panic(fmt.Sprintf("renderer: buffer slot %d out of range [0, %d)", slot, MaxBufferSlots))
	}
	if b.released {
		panic(fmt.Sprintf("renderer: released buffer %q bound at %s slot %d", b.label, usage, slot))
	}

	c.buffers[bufferSlot{usage: usage, slot: slot}] = b
	c.record(Command{Kind: CommandBindBuffer, Label: b.label, Resource: b.id, Usage: usage, Slot: slot})
}

func (c *renderContext) bindTexture(t *texture, slot int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.checkOwned(&t.resourceBase)
	if slot < 0 || slot >= MaxTextureSlots {
		panic(fmt.Sprintf("renderer: texture slot %d out of range [0, %d)", slot, MaxTextureSlots))
	}
	if t.released {
		panic(fmt.Sprintf("renderer: released texture %q bound at slot %d", t.label, slot))
	}

	c.textures[slot] = t
	c.record(Command{Kind: CommandBindTexture, Label: t.label, Resource: t.id, Slot: slot})
}

func (c *renderContext) Bound(usage BufferUsage, slot int) Buffer {
	c.mu.Lock()
	defer c.mu.Unlock()

	if b, ok := c.buffers[bufferSlot{usage: usage, slot: slot}]; ok {
		return b
	}
	return nil
}

func (c *renderContext) BoundTexture(slot int) Texture {
	c.mu.Lock()
	defer c.mu.Unlock()

	if t, ok := c.textures[slot]; ok {
		return t
	}
	return nil
}

func (c *renderContext) BoundFramebuffer() Framebuffer {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.target == nil {
		return nil
	}
	return c.target
}

func (c *renderContext) CurrentProgram() Program {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil {
		return nil
	}
	return c.current
}

func (c *renderContext) useProgram(p *program) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.current = p
	c.record(Command{Kind: CommandBindProgram, Label: p.label, Resource: p.id})
}

func (c *renderContext) setUniform(p *program, name string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	offset, ok := p.offsets[name]
	if !ok {
		log.Debugf("program %s has no uniform %q", p.desc.Name, name)
		return
	}

	var encoded []byte
	switch v := value.(type) {
	case float32:
		encoded = make([]byte, 4)
		common.PutFloat32s(encoded, 0, v)
	case uint32:
		encoded = make([]byte, 4)
		common.PutUint32(encoded, 0, v)
	case int32:
		encoded = make([]byte, 4)
		common.PutUint32(encoded, 0, uint32(v))
	case int:
		encoded = make([]byte, 4)
		common.PutUint32(encoded, 0, uint32(int32(v)))
	case mgl32.Vec2:
		encoded = make([]byte, 8)
		common.PutFloat32s(encoded, 0, v[:]...)
	case mgl32.Vec3:
		encoded = make([]byte, 12)
		common.PutFloat32s(encoded, 0, v[:]...)
	case mgl32.Vec4:
		encoded = make([]byte, 16)
		common.PutFloat32s(encoded, 0, v[:]...)
	case mgl32.Mat4:
		encoded = make([]byte, 64)
		common.PutMat4(encoded, 0, v)
	default:
		panic(fmt.Sprintf("renderer: uniform %q of program %s has unsupported type %T", name, p.desc.Name, value))
	}

	limit := len(p.uniforms) - offset
	for _, u := range p.desc.Uniforms {
		if u.Name == name {
			limit = u.Size
		}
	}
	if len(encoded) > limit {
		panic(fmt.Sprintf("renderer: uniform %q of program %s holds %d bytes, got %T", name, p.desc.Name, limit, value))
	}

	copy(p.uniforms[offset:], encoded)
	c.record(Command{Kind: CommandSetUniform, Label: p.label, Resource: p.id, Name: name, Value: value})
}

func (c *renderContext) writeBuffer(b *buffer, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if b.released {
		panic(fmt.Sprintf("renderer: write to released buffer %q", b.label))
	}
	if len(data) > len(b.data) {
		panic(fmt.Sprintf("renderer: write of %d bytes to buffer %q of %d bytes", len(data), b.label, len(b.data)))
	}

	copy(b.data, data)
	c.backend.writeBuffer(b)
	c.stats.BufferWrites++

	if c.recording {
		snapshot := make([]byte, len(data))
		copy(snapshot, data)
		c.record(Command{Kind: CommandWriteBuffer, Label: b.label, Resource: b.id, Usage: b.usage, Data: snapshot})
	}
}

func (c *renderContext) SetCullMode(mode CullMode) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cull = mode
	c.record(Command{Kind: CommandSetCullMode, Cull: mode})
}

func (c *renderContext) SetDepthMask(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.depthMask = enabled
	c.record(Command{Kind: CommandSetDepthMask, DepthMask: enabled})
}

func (c *renderContext) SetBlendMode(mode BlendMode) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.blend = mode
	c.record(Command{Kind: CommandSetBlendMode, Blend: mode})
}

func (c *renderContext) SetDepthTest(test DepthTest) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.depthTest = test
	c.record(Command{Kind: CommandSetDepthTest, DepthTest: test})
}

func (c *renderContext) bindFramebuffer(f *framebuffer, clearDepth, clearColor bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.requireFrame("bind framebuffer " + f.label)
	c.checkTarget(f)

	c.target = f
	c.hasTarget = true
	c.backend.bindFramebuffer(f, clearDepth, clearColor)
	c.stats.FramebufferBinds++
	c.record(Command{Kind: CommandBindFramebuffer, Label: f.label, Resource: f.id, ClearDepth: clearDepth, ClearColor: clearColor})
}

func (c *renderContext) BindDefaultFramebuffer() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.requireFrame("bind default framebuffer")

	c.target = nil
	c.hasTarget = true
	c.backend.bindFramebuffer(nil, false, true)
	c.stats.FramebufferBinds++
	c.record(Command{Kind: CommandBindDefaultFramebuffer})
}

func (c *renderContext) blit(f *framebuffer) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.requireFrame("blit " + f.label)
	c.checkTarget(f)
	if len(f.colors) == 0 {
		panic(fmt.Sprintf("renderer: framebuffer %q has no color attachment to blit", f.label))
	}

	c.target = nil
	c.hasTarget = true
	c.backend.blit(f)
	c.record(Command{Kind: CommandBlit, Label: f.label, Resource: f.id, Inputs: []uuid.UUID{f.colors[0].id}})
}

func (c *renderContext) DrawIndexed(vertices, indices Buffer, indexCount int) {
	if vertices == nil || indices == nil {
		panic("renderer: draw with a nil vertex or index buffer")
	}
	vb, ib := vertices.impl(), indices.impl()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.requireDrawable("draw")
	if !c.current.desc.VertexInput {
		panic(fmt.Sprintf("renderer: program %s draws full-screen only", c.current.desc.Name))
	}
	for _, b := range []*buffer{vb, ib} {
		c.checkOwned(&b.resourceBase)
		if b.released {
			panic(fmt.Sprintf("renderer: draw with released buffer %q", b.label))
		}
	}
	if vb.usage != BufferUsageAttribute || ib.usage != BufferUsageIndex {
		panic(fmt.Sprintf("renderer: draw needs attribute and index buffers, got %s and %s", vb.usage, ib.usage))
	}
	if indexCount <= 0 || indexCount*4 > len(ib.data) {
		panic(fmt.Sprintf("renderer: draw of %d indices from index buffer %q of %d bytes", indexCount, ib.label, len(ib.data)))
	}

	state := c.resolveDrawState()
	state.vertices = vb
	state.indices = ib
	state.indexCount = indexCount

	c.backend.draw(state)
	c.stats.Draws++
	c.recordDraw(CommandDrawIndexed, state)
}

func (c *renderContext) DrawFullscreen() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.requireDrawable("full-screen draw")
	if c.current.desc.VertexInput {
		panic(fmt.Sprintf("renderer: program %s needs vertex buffers", c.current.desc.Name))
	}

	state := c.resolveDrawState()
	state.fullscreen = true
	state.cull = CullModeNone
	state.blend = BlendModeNone
	state.depthTest = DepthTestNone
	state.depthMask = false

	c.backend.draw(state)
	c.stats.Draws++
	c.recordDraw(CommandDrawFullscreen, state)
}

// resolveDrawState collects the bindings the current program declares, auditing them in validation mode.
func (c *renderContext) resolveDrawState() *drawState {
	p := c.current
	state := &drawState{
		program:   p,
		target:    c.target,
		textures:  make([]*texture, len(p.desc.Textures)),
		buffers:   make([]*buffer, len(p.desc.Buffers)),
		uniforms:  append([]byte(nil), p.uniforms...),
		cull:      c.cull,
		depthMask: c.depthMask,
		blend:     c.blend,
		depthTest: c.depthTest,
	}

	for i, decl := range p.desc.Textures {
		t := c.textures[decl.Slot]
		if c.validate {
			c.auditTexture(p, decl, t)
		}
		if t != nil && !t.released {
			state.textures[i] = t
		}
	}
	for i, decl := range p.desc.Buffers {
		b := c.buffers[bufferSlot{usage: decl.Usage, slot: decl.Slot}]
		if c.validate {
			c.auditBuffer(p, decl, b)
		}
		if b != nil && !b.released {
			state.buffers[i] = b
		}
	}
	return state
}

func (c *renderContext) auditTexture(p *program, decl TextureBinding, t *texture) {
	if t == nil {
		c.warnOnce(fmt.Sprintf("%s/texture/%d", p.desc.Name, decl.Slot),
			"program %s declares texture slot %d but nothing is bound; a placeholder is used", p.desc.Name, decl.Slot)
		return
	}
	if t.released {
		panic(fmt.Sprintf("renderer: program %s texture slot %d references released texture %q", p.desc.Name, decl.Slot, t.label))
	}
	if decl.Depth != t.format.IsDepth() {
		panic(fmt.Sprintf("renderer: program %s texture slot %d expects depth=%t, texture %q is %s", p.desc.Name, decl.Slot, decl.Depth, t.label, t.format))
	}
	if c.target != nil {
		if c.target.depth == t {
			panic(fmt.Sprintf("renderer: texture %q is read at slot %d while attached to the current target %q", t.label, decl.Slot, c.target.label))
		}
		for _, color := range c.target.colors {
			if color == t {
				panic(fmt.Sprintf("renderer: texture %q is read at slot %d while attached to the current target %q", t.label, decl.Slot, c.target.label))
			}
		}
	}
}

func (c *renderContext) auditBuffer(p *program, decl BufferBinding, b *buffer) {
	if b == nil {
		c.warnOnce(fmt.Sprintf("%s/%s/%d", p.desc.Name, decl.Usage, decl.Slot),
			"program %s declares %s slot %d but nothing is bound; a placeholder is used", p.desc.Name, decl.Usage, decl.Slot)
		return
	}
	if b.released {
		panic(fmt.Sprintf("renderer: program %s %s slot %d references released buffer %q", p.desc.Name, decl.Usage, decl.Slot, b.label))
	}
	if len(b.data) < decl.MinSize {
		panic(fmt.Sprintf("renderer: program %s %s slot %d needs %d bytes, buffer %q has %d", p.desc.Name, decl.Usage, decl.Slot, decl.MinSize, b.label, len(b.data)))
	}
}

func (c *renderContext) warnOnce(key, format string, args ...any) {
	if c.warned[key] {
		return
	}
	c.warned[key] = true
	log.Warningf(format, args...)
}

func (c *renderContext) requireFrame(action string) {
	if !c.inFrame {
		panic(fmt.Sprintf("renderer: %s outside of a frame", action))
	}
}

func (c *renderContext) requireDrawable(action string) {
	c.requireFrame(action)
	if !c.hasTarget {
		panic(fmt.Sprintf("renderer: %s without a bound framebuffer", action))
	}
	if c.current == nil {
		panic(fmt.Sprintf("renderer: %s without a bound program", action))
	}
	if c.target != nil {
		c.checkTarget(c.target)
	}
}

// checkTarget panics if the framebuffer or one of its attachments has been released.
func (c *renderContext) checkTarget(f *framebuffer) {
	c.checkOwned(&f.resourceBase)
	if f.released {
		panic(fmt.Sprintf("renderer: framebuffer %q has been released", f.label))
	}
	if f.depth != nil && f.depth.released {
		panic(fmt.Sprintf("renderer: framebuffer %q depth attachment %q has been released", f.label, f.depth.label))
	}
	for _, t := range f.colors {
		if t.released {
			panic(fmt.Sprintf("renderer: framebuffer %q color attachment %q has been released", f.label, t.label))
		}
	}
}

func (c *renderContext) checkOwned(r *resourceBase) {
	if r.ctx != c {
		panic(fmt.Sprintf("renderer: resource %q belongs to another render context", r.label))
	}
}

func (c *renderContext) BeginFrame(width, height int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.inFrame {
		panic("renderer: BeginFrame called twice without EndFrame")
	}
	if width <= 0 || height <= 0 {
		return ErrEmptyFrame
	}
	if err := c.backend.beginFrame(width, height); err != nil {
		return err
	}

	c.inFrame = true
	c.width, c.height = width, height
	c.target = nil
	c.hasTarget = false
	c.stats.Frames++
	c.record(Command{Kind: CommandBeginFrame, Count: c.stats.Frames})
	return nil
}

func (c *renderContext) EndFrame() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.requireFrame("EndFrame")
	c.backend.endFrame()
	c.inFrame = false
	c.hasTarget = false
	c.record(Command{Kind: CommandEndFrame})
}

func (c *renderContext) release(r Resource) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var base *resourceBase
	switch v := r.(type) {
	case *buffer:
		base = &v.resourceBase
	case *texture:
		base = &v.resourceBase
	case *framebuffer:
		base = &v.resourceBase
	default:
		return
	}
	if base.released {
		return
	}

	base.released = true
	delete(c.live, base.id)

	// A released resource leaves every slot it is bound at empty.
	switch v := r.(type) {
	case *buffer:
		for key, bound := range c.buffers {
			if bound == v {
				delete(c.buffers, key)
			}
		}
	case *texture:
		for slot, bound := range c.textures {
			if bound == v {
				delete(c.textures, slot)
			}
		}
	}
	c.backend.release(r)
	c.record(Command{Kind: CommandRelease, Label: base.label, Resource: base.id})
}

func (c *renderContext) recordDraw(kind CommandKind, state *drawState) {
	if !c.recording {
		return
	}

	cmd := Command{
		Kind:      kind,
		Label:     state.program.label,
		Resource:  state.program.id,
		Count:     state.indexCount,
		Cull:      state.cull,
		DepthMask: state.depthMask,
		Blend:     state.blend,
		DepthTest: state.depthTest,
	}
	if state.target != nil {
		cmd.Target = state.target.id
	}
	for _, t := range state.textures {
		if t != nil {
			cmd.Inputs = append(cmd.Inputs, t.id)
		}
	}
	for _, b := range state.buffers {
		if b != nil {
			cmd.Inputs = append(cmd.Inputs, b.id)
		}
	}
	c.commands = append(c.commands, cmd)
}

func (c *renderContext) record(cmd Command) {
	if c.recording {
		c.commands = append(c.commands, cmd)
	}
}

func (c *renderContext) Validation() bool {
	return c.validate
}

func (c *renderContext) Commands() []Command {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Command, len(c.commands))
	copy(out, c.commands)
	return out
}

func (c *renderContext) ResetCommands() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.commands = nil
}

func (c *renderContext) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.stats
	s.LiveResources = len(c.live)
	return s
}

func (c *renderContext) BackendType() BackendType {
	return c.backendType
}

func (c *renderContext) Release() {
	c.mu.Lock()
	if c.released {
		c.mu.Unlock()
		return
	}
	c.released = true

	// Framebuffers first so attachments are never released under a live framebuffer.
	var framebuffers, others []Resource
	for _, r := range c.live {
		if _, ok := r.(*framebuffer); ok {
			framebuffers = append(framebuffers, r)
		} else {
			others = append(others, r)
		}
	}
	c.mu.Unlock()

	for _, r := range framebuffers {
		r.Release()
	}
	for _, r := range others {
		r.Release()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.backend.destroy()
	log.Debug("render context released")
}
