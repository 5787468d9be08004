package renderer

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

// VertexStride is the size of one interleaved mesh vertex:
// position vec3, normal vec3, uv vec2, tangent vec4, color vec3.
const VertexStride = 60

// Bind group 0 layout: buffers at their slot number, textures from textureBindingBase, the sampler last.
const (
	textureBindingBase = 8
	samplerBinding     = 15
)

// uniformAlignment is the minUniformBufferOffsetAlignment guaranteed by WebGPU.
const uniformAlignment = 256

var meshVertexLayout = wgpu.VertexBufferLayout{
	ArrayStride: VertexStride,
	StepMode:    wgpu.VertexStepModeVertex,
	Attributes: []wgpu.VertexAttribute{
		{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
		{Format: wgpu.VertexFormatFloat32x3, Offset: 12, ShaderLocation: 1},
		{Format: wgpu.VertexFormatFloat32x2, Offset: 24, ShaderLocation: 2},
		{Format: wgpu.VertexFormatFloat32x4, Offset: 32, ShaderLocation: 3},
		{Format: wgpu.VertexFormatFloat32x3, Offset: 48, ShaderLocation: 4},
	},
}

type wgpuProgram struct {
	module       *wgpu.ShaderModule
	groupLayouts []*wgpu.BindGroupLayout
	layout       *wgpu.PipelineLayout
}

// wgpuBuffer holds the GPU copies of one buffer. Queue writes land before the frame's commands
// execute, so a buffer rewritten after a draw has used it this frame moves to a fresh version.
type wgpuBuffer struct {
	versions []*wgpu.Buffer
	current  int
	used     bool
}

type wgpuTexture struct {
	texture *wgpu.Texture
	view    *wgpu.TextureView
}

// uniformArena hands out per-draw regions of a shared uniform buffer for one frame.
type uniformArena struct {
	buffer  *wgpu.Buffer
	size    uint64
	offset  uint64
	retired []*wgpu.Buffer
}

type wgpuBackend struct {
	instance      *wgpu.Instance
	adapter       *wgpu.Adapter
	device        *wgpu.Device
	queue         *wgpu.Queue
	surface       *wgpu.Surface
	surfaceFormat wgpu.TextureFormat
	presentMode   wgpu.PresentMode
	width         int
	height        int

	programs  map[*program]*wgpuProgram
	blitter   *program
	buffers   map[*buffer]*wgpuBuffer
	textures  map[*texture]*wgpuTexture
	pipelines map[string]*wgpu.RenderPipeline

	sampler           *wgpu.Sampler
	placeholderBuffer *wgpu.Buffer
	placeholderColor  *wgpuTexture
	placeholderDepth  *wgpuTexture
	uniforms          uniformArena

	frameSurface    *wgpu.Texture
	frameView       *wgpu.TextureView
	frameEncoder    *wgpu.CommandEncoder
	framePass       *wgpu.RenderPassEncoder
	passFormats     []wgpu.TextureFormat
	passHasDepth    bool
	frameBindGroups []*wgpu.BindGroup
}

var _ renderContextBackend = &wgpuBackend{}

func newWGPUBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, forceFallbackAdapter bool, mode PresentMode) (*wgpuBackend, error) {
	runtime.LockOSThread()
	b := &wgpuBackend{
		instance:  wgpu.CreateInstance(nil),
		programs:  make(map[*program]*wgpuProgram),
		buffers:   make(map[*buffer]*wgpuBuffer),
		textures:  make(map[*texture]*wgpuTexture),
		pipelines: make(map[string]*wgpu.RenderPipeline),
	}
	switch mode {
	case PresentModeUncapped:
		b.presentMode = wgpu.PresentModeImmediate
	default:
		b.presentMode = wgpu.PresentModeFifo
	}
	b.surface = b.instance.CreateSurface(surfaceDescriptor)

	a, err := b.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: forceFallbackAdapter,
		CompatibleSurface:    b.surface,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to request adapter: %w", err)
	}
	b.adapter = a

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: wgpu.DefaultLimits(),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to request device: %w", err)
	}
	b.device = d
	b.queue = d.GetQueue()

	capabilities := b.surface.GetCapabilities(b.adapter)
	if len(capabilities.Formats) == 0 {
		return nil, errors.New("surface reports no formats")
	}
	// The tone-mapped image is already display encoded, so a non-sRGB surface is preferred.
	b.surfaceFormat = capabilities.Formats[0]
	for _, f := range capabilities.Formats {
		if f == wgpu.TextureFormatBGRA8Unorm || f == wgpu.TextureFormatRGBA8Unorm {
			b.surfaceFormat = f
			break
		}
	}

	b.sampler, err = b.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         "Material Sampler",
		AddressModeU:  wgpu.AddressModeRepeat,
		AddressModeV:  wgpu.AddressModeRepeat,
		AddressModeW:  wgpu.AddressModeRepeat,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeLinear,
		LodMinClamp:   0,
		LodMaxClamp:   32,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return nil, err
	}

	b.placeholderBuffer, err = b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Placeholder Buffer",
		Size:  uniformAlignment,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, err
	}
	b.placeholderColor = b.newTexture("Placeholder Color", ImageFormatRGBA8Unorm, 1, 1, []byte{255, 255, 255, 255})
	b.placeholderDepth = b.newTexture("Placeholder Depth", ImageFormatDepth32F, 1, 1, nil)

	return b, nil
}

func (b *wgpuBackend) configureSurface(width, height int) {
	capabilities := b.surface.GetCapabilities(b.adapter)
	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      b.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: b.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})
	b.width, b.height = width, height
	log.Debugf("surface configured at %dx%d", width, height)
}

func (b *wgpuBackend) createProgram(p *program) error {
	module, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: string(p.desc.Name),
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: p.desc.Source,
		},
	})
	if err != nil {
		return err
	}

	visibility := wgpu.ShaderStageVertex | wgpu.ShaderStageFragment
	var entries []wgpu.BindGroupLayoutEntry
	for _, decl := range p.desc.Buffers {
		entry := wgpu.BindGroupLayoutEntry{Binding: uint32(decl.Slot), Visibility: visibility}
		if decl.Usage == BufferUsageStorage {
			entry.Buffer.Type = wgpu.BufferBindingTypeReadOnlyStorage
		} else {
			entry.Buffer.Type = wgpu.BufferBindingTypeUniform
		}
		entries = append(entries, entry)
	}
	for _, decl := range p.desc.Textures {
		entry := wgpu.BindGroupLayoutEntry{Binding: uint32(textureBindingBase + decl.Slot), Visibility: wgpu.ShaderStageFragment}
		entry.Texture.ViewDimension = wgpu.TextureViewDimension2D
		if decl.Depth {
			entry.Texture.SampleType = wgpu.TextureSampleTypeDepth
		} else {
			entry.Texture.SampleType = wgpu.TextureSampleTypeFloat
		}
		entries = append(entries, entry)
	}
	if p.desc.Sampler {
		entry := wgpu.BindGroupLayoutEntry{Binding: samplerBinding, Visibility: wgpu.ShaderStageFragment}
		entry.Sampler.Type = wgpu.SamplerBindingTypeFiltering
		entries = append(entries, entry)
	}

	resources, err := b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label:   string(p.desc.Name) + " Resources",
		Entries: entries,
	})
	if err != nil {
		return fmt.Errorf("failed to create resource layout: %w", err)
	}
	groupLayouts := []*wgpu.BindGroupLayout{resources}

	if len(p.uniforms) > 0 {
		entry := wgpu.BindGroupLayoutEntry{Binding: 0, Visibility: visibility}
		entry.Buffer.Type = wgpu.BufferBindingTypeUniform
		uniforms, err := b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
			Label:   string(p.desc.Name) + " Uniforms",
			Entries: []wgpu.BindGroupLayoutEntry{entry},
		})
		if err != nil {
			return fmt.Errorf("failed to create uniform layout: %w", err)
		}
		groupLayouts = append(groupLayouts, uniforms)
	}

	layout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            string(p.desc.Name),
		BindGroupLayouts: groupLayouts,
	})
	if err != nil {
		return err
	}

	b.programs[p] = &wgpuProgram{module: module, groupLayouts: groupLayouts, layout: layout}
	if p.desc.Name == ProgramBlit {
		b.blitter = p
	}
	return nil
}

func (b *wgpuBackend) newGPUBuffer(buf *buffer) *wgpu.Buffer {
	usage := wgpu.BufferUsageCopyDst
	switch buf.usage {
	case BufferUsageUniform:
		usage |= wgpu.BufferUsageUniform
	case BufferUsageStorage:
		usage |= wgpu.BufferUsageStorage
	case BufferUsageAttribute:
		usage |= wgpu.BufferUsageVertex
	case BufferUsageIndex:
		usage |= wgpu.BufferUsageIndex
	}

	gpu, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: buf.label,
		Size:  uint64(align(len(buf.data), 4)),
		Usage: usage,
	})
	if err != nil {
		panic(fmt.Sprintf("renderer: failed to create buffer %q: %v", buf.label, err))
	}
	return gpu
}

func (b *wgpuBackend) createBuffer(buf *buffer) {
	b.buffers[buf] = &wgpuBuffer{versions: []*wgpu.Buffer{b.newGPUBuffer(buf)}}
}

func (b *wgpuBackend) writeBuffer(buf *buffer) {
	wb := b.buffers[buf]
	if wb.used {
		wb.current++
		if wb.current == len(wb.versions) {
			wb.versions = append(wb.versions, b.newGPUBuffer(buf))
		}
		wb.used = false
	}
	b.queue.WriteBuffer(wb.versions[wb.current], 0, padTo4(buf.data))
}

// use returns the version draws recorded now should read, marking it as consumed.
func (wb *wgpuBuffer) use() *wgpu.Buffer {
	wb.used = true
	return wb.versions[wb.current]
}

// settle makes the latest version the base for the next frame.
func (wb *wgpuBuffer) settle() {
	wb.versions[0], wb.versions[wb.current] = wb.versions[wb.current], wb.versions[0]
	wb.current = 0
	wb.used = false
}

func padTo4(data []byte) []byte {
	if len(data)%4 == 0 {
		return data
	}
	padded := make([]byte, align(len(data), 4))
	copy(padded, data)
	return padded
}

func textureFormat(f ImageFormat) wgpu.TextureFormat {
	switch f {
	case ImageFormatDepth32F:
		return wgpu.TextureFormatDepth32Float
	case ImageFormatRGBA8sRGB:
		return wgpu.TextureFormatRGBA8UnormSrgb
	default:
		return wgpu.TextureFormatRGBA8Unorm
	}
}

func (b *wgpuBackend) newTexture(label string, format ImageFormat, width, height int, pixels []byte) *wgpuTexture {
	usage := wgpu.TextureUsageTextureBinding | wgpu.TextureUsageRenderAttachment
	if !format.IsDepth() {
		usage |= wgpu.TextureUsageCopyDst
	}

	size := wgpu.Extent3D{
		Width:              uint32(width),
		Height:             uint32(height),
		DepthOrArrayLayers: 1,
	}
	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         label,
		Usage:         usage,
		Dimension:     wgpu.TextureDimension2D,
		Size:          size,
		Format:        textureFormat(format),
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		panic(fmt.Sprintf("renderer: failed to create texture %q: %v", label, err))
	}

	if pixels != nil {
		b.queue.WriteTexture(
			&wgpu.ImageCopyTexture{
				Texture:  tex,
				MipLevel: 0,
				Origin:   wgpu.Origin3D{},
				Aspect:   wgpu.TextureAspectAll,
			},
			pixels,
			&wgpu.TextureDataLayout{
				Offset:       0,
				BytesPerRow:  uint32(width) * 4,
				RowsPerImage: uint32(height),
			},
			&size,
		)
	}

	view, err := tex.CreateView(nil)
	if err != nil {
		panic(fmt.Sprintf("renderer: failed to create view of texture %q: %v", label, err))
	}
	return &wgpuTexture{texture: tex, view: view}
}

func (b *wgpuBackend) createTexture(t *texture, pixels []byte) {
	b.textures[t] = b.newTexture(t.label, t.format, t.width, t.height, pixels)
}

// createFramebuffer keeps no GPU object: render passes are described from the attachments on bind.
func (b *wgpuBackend) createFramebuffer(*framebuffer) {}

func (b *wgpuBackend) release(r Resource) {
	switch v := r.(type) {
	case *buffer:
		if wb, ok := b.buffers[v]; ok {
			for _, gpu := range wb.versions {
				gpu.Release()
			}
			delete(b.buffers, v)
		}
	case *texture:
		if wt, ok := b.textures[v]; ok {
			wt.release()
			delete(b.textures, v)
		}
	}
}

func (wt *wgpuTexture) release() {
	wt.view.Release()
	wt.texture.Release()
}

func (b *wgpuBackend) beginFrame(width, height int) error {
	if b.frameSurface != nil {
		return errors.New("previous frame surface not yet presented")
	}
	if width != b.width || height != b.height {
		b.configureSurface(width, height)
	}

	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		// Force a reconfigure on the next frame; the surface is usually outdated after a resize.
		b.width, b.height = 0, 0
		return fmt.Errorf("%w: %v", ErrSurfaceUnavailable, err)
	}

	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return err
	}

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		surfaceTexture.Release()
		return err
	}

	b.frameSurface = surfaceTexture
	b.frameView = view
	b.frameEncoder = encoder
	return nil
}

func loadOp(clear bool) wgpu.LoadOp {
	if clear {
		return wgpu.LoadOpClear
	}
	return wgpu.LoadOpLoad
}

func (b *wgpuBackend) endPass() {
	if b.framePass != nil {
		b.framePass.End()
		b.framePass = nil
	}
}

func (b *wgpuBackend) bindFramebuffer(f *framebuffer, clearDepth, clearColor bool) {
	b.endPass()

	descriptor := &wgpu.RenderPassDescriptor{}
	if f == nil {
		descriptor.ColorAttachments = []wgpu.RenderPassColorAttachment{{
			View:       b.frameView,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: wgpu.Color{R: 0, G: 0, B: 0, A: 1},
		}}
		b.passFormats = []wgpu.TextureFormat{b.surfaceFormat}
		b.passHasDepth = false
	} else {
		b.passFormats = b.passFormats[:0]
		for _, c := range f.colors {
			descriptor.ColorAttachments = append(descriptor.ColorAttachments, wgpu.RenderPassColorAttachment{
				View:       b.textures[c].view,
				LoadOp:     loadOp(clearColor),
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: wgpu.Color{},
			})
			b.passFormats = append(b.passFormats, textureFormat(c.format))
		}
		b.passHasDepth = f.depth != nil
		if f.depth != nil {
			descriptor.DepthStencilAttachment = &wgpu.RenderPassDepthStencilAttachment{
				View:            b.textures[f.depth].view,
				DepthLoadOp:     loadOp(clearDepth),
				DepthStoreOp:    wgpu.StoreOpStore,
				DepthClearValue: 1.0,
			}
		}
	}

	b.framePass = b.frameEncoder.BeginRenderPass(descriptor)
}

func blendState(mode BlendMode) *wgpu.BlendState {
	switch mode {
	case BlendModeAdditive:
		add := wgpu.BlendComponent{
			SrcFactor: wgpu.BlendFactorOne,
			DstFactor: wgpu.BlendFactorOne,
			Operation: wgpu.BlendOperationAdd,
		}
		return &wgpu.BlendState{Color: add, Alpha: add}
	case BlendModeAlpha:
		return &wgpu.BlendState{
			Color: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorSrcAlpha,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
			Alpha: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorOne,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
		}
	}
	return nil
}

func cullMode(mode CullMode) wgpu.CullMode {
	switch mode {
	case CullModeFront:
		return wgpu.CullModeFront
	case CullModeNone:
		return wgpu.CullModeNone
	}
	return wgpu.CullModeBack
}

// renderPipeline returns the render pipeline for the draw's program, raster state and the current pass targets.
func (b *wgpuBackend) renderPipeline(state *drawState) *wgpu.RenderPipeline {
	prog := b.programs[state.program]
	desc := state.program.desc
	options := []pipeline.PipelineBuilderOption{
		pipeline.WithLabel(string(desc.Name)),
		pipeline.WithLayout(prog.layout),
		pipeline.WithShaderModule(prog.module, desc.VertexEntry, desc.FragmentEntry),
		pipeline.WithColorTargets(b.passFormats...),
		pipeline.WithCullMode(cullMode(state.cull)),
		pipeline.WithBlendState(blendState(state.blend)),
		pipeline.WithDepthTestEnabled(state.depthTest != DepthTestNone),
		pipeline.WithDepthWriteEnabled(state.depthMask),
	}
	if desc.VertexInput {
		options = append(options, pipeline.WithVertexBuffers(meshVertexLayout))
	}
	if b.passHasDepth {
		options = append(options, pipeline.WithDepthTarget(wgpu.TextureFormatDepth32Float))
	}

	p := pipeline.NewPipeline(options...)
	key := p.Key()
	if cached, ok := b.pipelines[key]; ok {
		return cached
	}

	created, err := b.device.CreateRenderPipeline(p.Descriptor())
	if err != nil {
		panic(fmt.Sprintf("renderer: failed to create pipeline %s: %v", key, err))
	}
	b.pipelines[key] = created
	return created
}

// resourceBindGroup builds bind group 0 for a draw, substituting placeholders for empty slots.
func (b *wgpuBackend) resourceBindGroup(state *drawState) *wgpu.BindGroup {
	desc := state.program.desc
	var entries []wgpu.BindGroupEntry

	for i, decl := range desc.Buffers {
		gpu := b.placeholderBuffer
		if buf := state.buffers[i]; buf != nil {
			gpu = b.buffers[buf].use()
		}
		entries = append(entries, wgpu.BindGroupEntry{
			Binding: uint32(decl.Slot),
			Buffer:  gpu,
			Offset:  0,
			Size:    wgpu.WholeSize,
		})
	}
	for i, decl := range desc.Textures {
		view := b.placeholderColor.view
		if decl.Depth {
			view = b.placeholderDepth.view
		}
		if t := state.textures[i]; t != nil {
			view = b.textures[t].view
		}
		entries = append(entries, wgpu.BindGroupEntry{
			Binding:     uint32(textureBindingBase + decl.Slot),
			TextureView: view,
		})
	}
	if desc.Sampler {
		entries = append(entries, wgpu.BindGroupEntry{
			Binding: samplerBinding,
			Sampler: b.sampler,
		})
	}

	return b.newBindGroup(string(desc.Name)+" Resources", b.programs[state.program].groupLayouts[0], entries)
}

func (b *wgpuBackend) newBindGroup(label string, layout *wgpu.BindGroupLayout, entries []wgpu.BindGroupEntry) *wgpu.BindGroup {
	bindGroup, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   label,
		Layout:  layout,
		Entries: entries,
	})
	if err != nil {
		panic(fmt.Sprintf("renderer: failed to create bind group %s: %v", label, err))
	}
	b.frameBindGroups = append(b.frameBindGroups, bindGroup)
	return bindGroup
}

func (b *wgpuBackend) draw(state *drawState) {
	if b.framePass == nil {
		panic("renderer: draw without an open render pass")
	}

	b.framePass.SetPipeline(b.renderPipeline(state))
	b.framePass.SetBindGroup(0, b.resourceBindGroup(state), nil)

	if len(state.uniforms) > 0 {
		gpu, offset := b.uniforms.push(b.device, b.queue, state.uniforms)
		group := b.newBindGroup(string(state.program.desc.Name)+" Uniforms", b.programs[state.program].groupLayouts[1], []wgpu.BindGroupEntry{{
			Binding: 0,
			Buffer:  gpu,
			Offset:  offset,
			Size:    uint64(len(state.uniforms)),
		}})
		b.framePass.SetBindGroup(1, group, nil)
	}

	if state.fullscreen {
		b.framePass.Draw(3, 1, 0, 0)
		return
	}

	b.framePass.SetVertexBuffer(0, b.buffers[state.vertices].use(), 0, wgpu.WholeSize)
	b.framePass.SetIndexBuffer(b.buffers[state.indices].use(), wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
	b.framePass.DrawIndexed(uint32(state.indexCount), 1, 0, 0, 0)
}

func (b *wgpuBackend) blit(f *framebuffer) {
	b.bindFramebuffer(nil, false, true)
	b.draw(&drawState{
		program:    b.blitter,
		textures:   []*texture{f.colors[0]},
		cull:       CullModeNone,
		blend:      BlendModeNone,
		depthTest:  DepthTestNone,
		fullscreen: true,
	})
}

// push writes data at the next aligned offset, growing into a new buffer when the current one is full.
func (a *uniformArena) push(device *wgpu.Device, queue *wgpu.Queue, data []byte) (*wgpu.Buffer, uint64) {
	offset := uint64(align(int(a.offset), uniformAlignment))
	if a.buffer == nil || offset+uint64(len(data)) > a.size {
		if a.buffer != nil {
			a.retired = append(a.retired, a.buffer)
		}
		a.size = max(a.size*2, 64*1024, uint64(align(len(data), uniformAlignment)))
		gpu, err := device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: "Uniform Arena",
			Size:  a.size,
			Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			panic(fmt.Sprintf("renderer: failed to grow uniform arena: %v", err))
		}
		a.buffer = gpu
		offset = 0
	}

	queue.WriteBuffer(a.buffer, offset, data)
	a.offset = offset + uint64(len(data))
	return a.buffer, offset
}

func (a *uniformArena) reset() {
	for _, gpu := range a.retired {
		gpu.Release()
	}
	a.retired = nil
	a.offset = 0
}

func (a *uniformArena) release() {
	a.reset()
	if a.buffer != nil {
		a.buffer.Release()
		a.buffer = nil
	}
}

func (b *wgpuBackend) endFrame() {
	b.endPass()

	commandBuffer, err := b.frameEncoder.Finish(nil)
	if err != nil {
		log.Errorf("failed to finish frame: %v", err)
	} else {
		b.queue.Submit(commandBuffer)
		commandBuffer.Release()
		b.surface.Present()
	}

	b.frameEncoder.Release()
	b.frameView.Release()
	b.frameSurface.Release()
	b.frameEncoder = nil
	b.frameView = nil
	b.frameSurface = nil

	for _, bg := range b.frameBindGroups {
		bg.Release()
	}
	b.frameBindGroups = b.frameBindGroups[:0]
	b.uniforms.reset()
	for _, wb := range b.buffers {
		wb.settle()
	}
}

func (b *wgpuBackend) destroy() {
	for _, p := range b.pipelines {
		p.Release()
	}
	for _, p := range b.programs {
		p.layout.Release()
		for _, l := range p.groupLayouts {
			l.Release()
		}
		p.module.Release()
	}
	for _, wb := range b.buffers {
		for _, gpu := range wb.versions {
			gpu.Release()
		}
	}
	for _, wt := range b.textures {
		wt.release()
	}
	b.uniforms.release()
	b.placeholderColor.release()
	b.placeholderDepth.release()
	b.placeholderBuffer.Release()
	b.sampler.Release()
	b.queue.Release()
	b.device.Release()
	b.adapter.Release()
	b.surface.Release()
	b.instance.Release()
}
