package renderer

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)

// drawState is the snapshot of the binding-point table a draw consumes.
// textures and buffers are aligned with the program's declarations; nil entries
// are empty or released slots the backend fills with placeholders.
type drawState struct {
	program  *program
	target   *framebuffer
	textures []*texture
	buffers  []*buffer
	uniforms []byte

	cull      CullMode
	depthMask bool
	blend     BlendMode
	depthTest DepthTest

	vertices   *buffer
	indices    *buffer
	indexCount int
	fullscreen bool
}

// renderContextBackend is the GPU API a RenderContext drives.
// The context validates every call before forwarding it, so backends may assume valid input.
// Backends panic on GPU object creation failures.
type renderContextBackend interface {
	createProgram(p *program) error
	createBuffer(b *buffer)
	writeBuffer(b *buffer)
	createTexture(t *texture, pixels []byte)
	createFramebuffer(f *framebuffer)
	release(r Resource)

	beginFrame(width, height int) error

	// bindFramebuffer starts rendering into f, or into the presentation surface when f is nil.
	bindFramebuffer(f *framebuffer, clearDepth, clearColor bool)
	draw(state *drawState)
	blit(f *framebuffer)
	endFrame()

	destroy()
}

// headlessBackend keeps no GPU state. Resource contents live in the context's CPU shadows.
type headlessBackend struct {
	frameOpen bool
}

func newHeadlessBackend() *headlessBackend {
	return &headlessBackend{}
}

func (h *headlessBackend) createProgram(p *program) error {
	if p.desc.Source == "" {
		return errNoSource
	}
	return nil
}

func (h *headlessBackend) createBuffer(*buffer) {}
func (h *headlessBackend) writeBuffer(*buffer) {}
func (h *headlessBackend) createTexture(*texture, []byte) {}
func (h *headlessBackend) createFramebuffer(*framebuffer) {}
func (h *headlessBackend) release(Resource) {}
func (h *headlessBackend) bindFramebuffer(*framebuffer, bool, bool) {}
func (h *headlessBackend) draw(*drawState) {}
func (h *headlessBackend) blit(*framebuffer) {}

func (h *headlessBackend) beginFrame(int, int) error {
	h.frameOpen = true
	return nil
}

func (h *headlessBackend) endFrame() {
	h.frameOpen = false
}

func (h *headlessBackend) destroy() {}
