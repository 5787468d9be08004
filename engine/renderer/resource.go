package renderer

import (
	"github.com/google/uuid"
)

// Resource is an opaque GPU object handle owned by a RenderContext.
// A released Resource keeps its identity so stale bindings can be detected.
type Resource interface {
	// ID returns the unique identity of the resource.
	ID() uuid.UUID

	// Label returns the human-readable name given at creation.
	Label() string

	// Released reports whether Release has been called.
	Released() bool

	// Release frees the GPU memory backing the resource. Calling it twice is a no-op.
	Release()
}

// Buffer is a block of GPU memory bound at a numbered slot of its usage family.
type Buffer interface {
	Resource

	// Size returns the size of the buffer in bytes.
	Size() int

	// Usage returns the usage family the buffer was created for.
	Usage() BufferUsage

	// Bind binds the buffer at the given slot of the usage's binding table.
	// Panics if usage differs from the usage the buffer was created with.
	//
	// Parameters:
	//   - usage: the binding-point family
	//   - slot: the binding slot
	Bind(usage BufferUsage, slot int)

	// Write replaces the leading bytes of the buffer with data.
	// Panics if data is larger than the buffer.
	//
	// Parameters:
	//   - data: the bytes to upload
	Write(data []byte)

	// Contents returns a copy of the CPU-side shadow of the buffer contents.
	//
	// Returns:
	//   - []byte: the last written contents, zero-filled where never written
	Contents() []byte

	impl() *buffer
}

// Texture is a 2D image usable as a sampled input or a framebuffer attachment.
type Texture interface {
	Resource

	Width() int
	Height() int
	Format() ImageFormat

	// Bind binds the texture at the given texture slot.
	//
	// Parameters:
	//   - slot: the texture slot
	Bind(slot int)

	impl() *texture
}

// Framebuffer is a set of attachments a pass renders into.
type Framebuffer interface {
	Resource

	// Bind makes the framebuffer the current render target, optionally clearing its attachments.
	//
	// Parameters:
	//   - clearDepth: clear the depth attachment to 1
	//   - clearColor: clear every color attachment to transparent black
	Bind(clearDepth, clearColor bool)

	// Blit copies the first color attachment to the default framebuffer.
	Blit()

	// Depth returns the depth attachment, or nil.
	Depth() Texture

	// Colors returns the color attachments in location order.
	Colors() []Texture

	impl() *framebuffer
}

// Program is a built-in shader program with its declared bindings and uniforms.
type Program interface {
	Resource

	// Name returns the built-in program name.
	Name() ProgramName

	// Bind makes the program current for subsequent draws.
	Bind()

	// SetUniform sets a named program uniform. Unknown names are ignored.
	// Supported value types are float32, uint32, int32, int, mgl32.Vec2, mgl32.Vec3, mgl32.Vec4 and mgl32.Mat4.
	//
	// Parameters:
	//   - name: the uniform name
	//   - value: the uniform value
	SetUniform(name string, value any)
}

// resourceBase holds the identity shared by every resource kind.
type resourceBase struct {
	ctx      *renderContext
	id       uuid.UUID
	label    string
	released bool
}

func newResourceBase(ctx *renderContext, label string) resourceBase {
	return resourceBase{ctx: ctx, id: uuid.New(), label: label}
}

func (r *resourceBase) ID() uuid.UUID {
	return r.id
}

func (r *resourceBase) Label() string {
	return r.label
}

func (r *resourceBase) Released() bool {
	r.ctx.mu.Lock()
	defer r.ctx.mu.Unlock()

	return r.released
}

type buffer struct {
	resourceBase
	usage BufferUsage

	// data is the CPU-side shadow of the buffer contents.
	data []byte
}

var _ Buffer = &buffer{}

func (b *buffer) impl() *buffer {
	return b
}

func (b *buffer) Size() int {
	return len(b.data)
}

func (b *buffer) Usage() BufferUsage {
	return b.usage
}

func (b *buffer) Bind(usage BufferUsage, slot int) {
	b.ctx.BindBuffer(b, usage, slot)
}

func (b *buffer) Write(data []byte) {
	b.ctx.writeBuffer(b, data)
}

func (b *buffer) Contents() []byte {
	b.ctx.mu.Lock()
	defer b.ctx.mu.Unlock()

	out := make([]byte, len(b.data))
	copy(out, b.data)
	return out
}

func (b *buffer) Release() {
	b.ctx.release(b)
}

type texture struct {
	resourceBase
	width  int
	height int
	format ImageFormat
}

var _ Texture = &texture{}

func (t *texture) impl() *texture {
	return t
}

func (t *texture) Width() int {
	return t.width
}

func (t *texture) Height() int {
	return t.height
}

func (t *texture) Format() ImageFormat {
	return t.format
}

func (t *texture) Bind(slot int) {
	t.ctx.bindTexture(t, slot)
}

func (t *texture) Release() {
	t.ctx.release(t)
}

type framebuffer struct {
	resourceBase
	depth  *texture
	colors []*texture
}

var _ Framebuffer = &framebuffer{}

func (f *framebuffer) impl() *framebuffer {
	return f
}

func (f *framebuffer) Bind(clearDepth, clearColor bool) {
	f.ctx.bindFramebuffer(f, clearDepth, clearColor)
}

func (f *framebuffer) Blit() {
	f.ctx.blit(f)
}

func (f *framebuffer) Depth() Texture {
	if f.depth == nil {
		return nil
	}
	return f.depth
}

func (f *framebuffer) Colors() []Texture {
	out := make([]Texture, len(f.colors))
	for i, c := range f.colors {
		out[i] = c
	}
	return out
}

// Release releases the framebuffer object only; attachments are owned by their creator.
func (f *framebuffer) Release() {
	f.ctx.release(f)
}

// size returns the attachment dimensions, or zero for an empty framebuffer.
func (f *framebuffer) size() (int, int) {
	if f.depth != nil {
		return f.depth.width, f.depth.height
	}
	if len(f.colors) > 0 {
		return f.colors[0].width, f.colors[0].height
	}
	return 0, 0
}

type program struct {
	resourceBase
	desc     ProgramDescriptor
	uniforms []byte
	offsets  map[string]int
}

var _ Program = &program{}

func (p *program) Name() ProgramName {
	return p.desc.Name
}

func (p *program) Bind() {
	p.ctx.useProgram(p)
}

func (p *program) SetUniform(name string, value any) {
	p.ctx.setUniform(p, name, value)
}

// Release is a no-op: built-in programs live as long as their RenderContext.
func (p *program) Release() {}
