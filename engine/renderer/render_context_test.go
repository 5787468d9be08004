package renderer

import (
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-deferred/common"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testRecord struct {
	a, b uint32
}

func (r testRecord) Size() int { return 8 }

func (r testRecord) Marshal(dst []byte) {
	common.PutUint32(dst, 0, r.a)
	common.PutUint32(dst, 4, r.b)
}

func newTestContext(t *testing.T, validate bool) RenderContext {
	t.Helper()
	ctx := NewHeadlessContext(WithValidation(validate), WithRecording(true))
	t.Cleanup(ctx.Release)
	return ctx
}

// triangle returns minimal vertex and index buffers for one triangle.
func triangle(ctx RenderContext) (Buffer, Buffer) {
	vertices := ctx.NewBuffer("vertices", BufferUsageAttribute, VertexStride*3)
	indices := make([]byte, 12)
	common.PutUint32(indices, 4, 1)
	common.PutUint32(indices, 8, 2)
	return vertices, ctx.NewBufferWithData("indices", BufferUsageIndex, indices)
}

// bindGeometryInputs binds everything the gbuffer program declares.
func bindGeometryInputs(ctx RenderContext) {
	ctx.NewBuffer("frame", BufferUsageUniform, frameDataSize).Bind(BufferUsageUniform, SlotFrame)
	ctx.NewBuffer("lights", BufferUsageStorage, pointLightSize).Bind(BufferUsageStorage, SlotPointLights)
	ctx.NewTextureFromImage("albedo", common.SolidImage(255, 255, 255, 255), true).Bind(TextureSlotAlbedo)
	ctx.NewTextureFromImage("normal", common.SolidImage(128, 128, 255, 255), false).Bind(TextureSlotNormalMap)
}

func TestRenderContext_BindOverwritesSlot(t *testing.T) {
	ctx := newTestContext(t, false)

	first := ctx.NewBuffer("first", BufferUsageUniform, 16)
	second := ctx.NewBuffer("second", BufferUsageUniform, 16)

	assert.Nil(t, ctx.Bound(BufferUsageUniform, 2))

	ctx.Bind(first, 2)
	assert.Equal(t, first.ID(), ctx.Bound(BufferUsageUniform, 2).ID())

	second.Bind(BufferUsageUniform, 2)
	assert.Equal(t, second.ID(), ctx.Bound(BufferUsageUniform, 2).ID())

	// Slots are per usage family.
	assert.Nil(t, ctx.Bound(BufferUsageStorage, 2))
}

func TestRenderContext_BindPreconditions(t *testing.T) {
	ctx := newTestContext(t, false)
	uniform := ctx.NewBuffer("uniform", BufferUsageUniform, 16)
	vertices := ctx.NewBuffer("vertices", BufferUsageAttribute, 60)

	assert.Panics(t, func() { uniform.Bind(BufferUsageStorage, 0) }, "usage mismatch")
	assert.Panics(t, func() { ctx.Bind(vertices, 0) }, "attribute buffers have no slots")
	assert.Panics(t, func() { uniform.Bind(BufferUsageUniform, MaxBufferSlots) }, "slot out of range")
	assert.Panics(t, func() { ctx.BindBuffer(nil, BufferUsageUniform, 0) }, "nil buffer")

	uniform.Release()
	assert.Panics(t, func() { uniform.Bind(BufferUsageUniform, 0) }, "released buffer")
}

func TestRenderContext_WriteLargerThanBufferPanics(t *testing.T) {
	ctx := newTestContext(t, false)
	b := ctx.NewBuffer("small", BufferUsageUniform, 16)

	assert.NotPanics(t, func() { b.Write(make([]byte, 16)) })
	assert.Panics(t, func() { b.Write(make([]byte, 17)) })
}

func TestTypedBuffer_MapCommitsOnReturn(t *testing.T) {
	ctx := newTestContext(t, false)
	tb := NewTypedBuffer[testRecord](ctx, "records", BufferUsageStorage, 2)
	require.Equal(t, 2, tb.Len())
	require.Equal(t, 16, tb.Size())

	tb.Map(func(records []testRecord) {
		records[0] = testRecord{a: 1, b: 2}
		records[1] = testRecord{a: 3, b: 4}
	})

	data := tb.Contents()
	assert.Equal(t, uint32(1), common.Uint32At(data, 0))
	assert.Equal(t, uint32(2), common.Uint32At(data, 4))
	assert.Equal(t, uint32(3), common.Uint32At(data, 8))
	assert.Equal(t, uint32(4), common.Uint32At(data, 12))
	assert.Equal(t, testRecord{a: 3, b: 4}, tb.At(1))

	writes := FilterCommands(ctx.Commands(), CommandWriteBuffer)
	require.Len(t, writes, 1)
	assert.Equal(t, tb.ID(), writes[0].Resource)

	// A typed buffer binds like any other buffer.
	ctx.Bind(tb, 3)
	assert.Equal(t, tb.ID(), ctx.Bound(BufferUsageStorage, 3).ID())
}

func TestRenderContext_DrawPreconditions(t *testing.T) {
	ctx := newTestContext(t, false)
	vertices, indices := triangle(ctx)
	depth := ctx.NewTexture("depth", ImageFormatDepth32F, 4, 4)
	fb := ctx.NewFramebuffer("fb", depth)

	assert.Panics(t, func() { fb.Bind(true, true) }, "bind outside frame")

	require.NoError(t, ctx.BeginFrame(4, 4))
	ctx.Program(ProgramGBuffer).Bind()
	assert.Panics(t, func() { ctx.DrawIndexed(vertices, indices, 3) }, "no target")

	fb.Bind(true, true)
	assert.NotPanics(t, func() { ctx.DrawIndexed(vertices, indices, 3) })
	assert.Panics(t, func() { ctx.DrawIndexed(vertices, indices, 4) }, "too many indices")
	assert.Panics(t, func() { ctx.DrawIndexed(indices, vertices, 3) }, "swapped buffers")
	assert.Panics(t, func() { ctx.DrawFullscreen() }, "geometry program drawn full-screen")

	ctx.Program(ProgramToneMap).Bind()
	assert.Panics(t, func() { ctx.DrawIndexed(vertices, indices, 3) }, "full-screen program drawn with geometry")
	ctx.EndFrame()

	assert.Equal(t, 1, ctx.Stats().Draws)
}

func TestRenderContext_EmptyFrame(t *testing.T) {
	ctx := newTestContext(t, false)
	assert.ErrorIs(t, ctx.BeginFrame(0, 600), ErrEmptyFrame)
	assert.Equal(t, 0, ctx.Stats().Frames)
}

func TestRenderContext_ReleasedTargetPanicsWithoutValidation(t *testing.T) {
	ctx := newTestContext(t, false)
	color := ctx.NewTexture("color", ImageFormatRGBA8sRGB, 4, 4)
	fb := ctx.NewFramebuffer("fb", nil, color)

	require.NoError(t, ctx.BeginFrame(4, 4))
	fb.Bind(false, true)
	ctx.Program(ProgramBlit).Bind()
	color.Release()

	assert.Panics(t, func() { ctx.DrawFullscreen() })
}

func TestRenderContext_ReleaseClearsBindings(t *testing.T) {
	for _, validate := range []bool{true, false} {
		ctx := newTestContext(t, validate)
		vertices, indices := triangle(ctx)
		fb := ctx.NewFramebuffer("gbuffer", ctx.NewTexture("depth", ImageFormatDepth32F, 4, 4),
			ctx.NewTexture("color", ImageFormatRGBA8sRGB, 4, 4), ctx.NewTexture("normal", ImageFormatRGBA8Unorm, 4, 4))

		bindGeometryInputs(ctx)
		ctx.Bound(BufferUsageStorage, SlotPointLights).Release()
		ctx.BoundTexture(TextureSlotAlbedo).Release()
		assert.Nil(t, ctx.Bound(BufferUsageStorage, SlotPointLights))
		assert.Nil(t, ctx.BoundTexture(TextureSlotAlbedo))
		assert.NotNil(t, ctx.Bound(BufferUsageUniform, SlotFrame))

		require.NoError(t, ctx.BeginFrame(4, 4))
		fb.Bind(true, true)
		ctx.Program(ProgramGBuffer).Bind()

		// The emptied slots fall back to placeholders instead of failing the audit.
		assert.NotPanics(t, func() { ctx.DrawIndexed(vertices, indices, 3) })
		ctx.EndFrame()
	}
}

func TestRenderContext_AuditMissingBindingWarnsOnly(t *testing.T) {
	ctx := newTestContext(t, true)
	target := ctx.NewFramebuffer("out", nil, ctx.NewTexture("out", ImageFormatRGBA8Unorm, 4, 4))

	require.NoError(t, ctx.BeginFrame(4, 4))
	target.Bind(false, true)
	ctx.Program(ProgramToneMap).Bind()
	assert.NotPanics(t, func() { ctx.DrawFullscreen() })

	draws := FilterCommands(ctx.Commands(), CommandDrawFullscreen)
	require.Len(t, draws, 1)
	assert.Empty(t, draws[0].Inputs)
}

func TestRenderContext_AuditUndersizedBuffer(t *testing.T) {
	ctx := newTestContext(t, true)
	vertices, indices := triangle(ctx)
	fb := ctx.NewFramebuffer("depth", ctx.NewTexture("depth", ImageFormatDepth32F, 4, 4))

	bindGeometryInputs(ctx)
	ctx.NewBuffer("short frame", BufferUsageUniform, 64).Bind(BufferUsageUniform, SlotFrame)

	require.NoError(t, ctx.BeginFrame(4, 4))
	fb.Bind(true, true)
	ctx.Program(ProgramGBuffer).Bind()
	assert.Panics(t, func() { ctx.DrawIndexed(vertices, indices, 3) })
}

func TestRenderContext_AuditFeedbackLoop(t *testing.T) {
	ctx := newTestContext(t, true)
	color := ctx.NewTexture("color", ImageFormatRGBA8Unorm, 4, 4)
	fb := ctx.NewFramebuffer("fb", nil, color)

	require.NoError(t, ctx.BeginFrame(4, 4))
	fb.Bind(false, true)
	ctx.Program(ProgramBlit).Bind()
	color.Bind(TextureSlotInput0)

	assert.Panics(t, func() { ctx.DrawFullscreen() })
}

func TestRenderContext_AuditDepthSlotFormat(t *testing.T) {
	ctx := newTestContext(t, true)
	out := ctx.NewFramebuffer("out", nil, ctx.NewTexture("out", ImageFormatRGBA8Unorm, 4, 4))
	ctx.NewTexture("lit", ImageFormatRGBA8sRGB, 4, 4).Bind(TextureSlotInput0)
	ctx.NewTexture("normal", ImageFormatRGBA8Unorm, 4, 4).Bind(TextureSlotInput1)
	ctx.NewTexture("not depth", ImageFormatRGBA8Unorm, 4, 4).Bind(TextureSlotInput2)

	require.NoError(t, ctx.BeginFrame(4, 4))
	out.Bind(false, true)
	ctx.Program(ProgramIndirectLights).Bind()
	assert.Panics(t, func() { ctx.DrawFullscreen() })
}

func TestRenderContext_DrawRecordsTargetAndInputs(t *testing.T) {
	ctx := newTestContext(t, true)
	depth := ctx.NewTexture("depth", ImageFormatDepth32F, 4, 4)
	lit := ctx.NewTexture("lit", ImageFormatRGBA8sRGB, 4, 4)
	normal := ctx.NewTexture("normal", ImageFormatRGBA8Unorm, 4, 4)
	indirect := ctx.NewTexture("indirect", ImageFormatRGBA8sRGB, 4, 4)
	fb := ctx.NewFramebuffer("indirect", nil, indirect)

	require.NoError(t, ctx.BeginFrame(4, 4))
	fb.Bind(false, true)
	ctx.Program(ProgramIndirectLights).Bind()
	lit.Bind(0)
	normal.Bind(1)
	depth.Bind(2)
	ctx.DrawFullscreen()
	ctx.EndFrame()

	draws := FilterCommands(ctx.Commands(), CommandDrawFullscreen)
	require.Len(t, draws, 1)
	assert.Equal(t, fb.ID(), draws[0].Target)
	assert.Equal(t, lit.ID(), draws[0].Inputs[0])
	assert.Equal(t, normal.ID(), draws[0].Inputs[1])
	assert.Equal(t, depth.ID(), draws[0].Inputs[2])
	assert.Equal(t, CullModeNone, draws[0].Cull)
}

func TestRenderContext_SetUniform(t *testing.T) {
	ctx := newTestContext(t, false)
	tonemap := ctx.Program(ProgramToneMap)

	tonemap.SetUniform("exposure", float32(2.5))
	tonemap.SetUniform("no_such_uniform", float32(1))

	sets := FilterCommands(ctx.Commands(), CommandSetUniform)
	require.Len(t, sets, 1)
	assert.Equal(t, "exposure", sets[0].Name)
	assert.Equal(t, float32(2.5), sets[0].Value)

	p := tonemap.(*program)
	assert.Equal(t, float32(2.5), common.Float32At(p.uniforms, 0))

	assert.Panics(t, func() { tonemap.SetUniform("exposure", "bright") }, "unsupported type")
	assert.Panics(t, func() { tonemap.SetUniform("exposure", mgl32.Ident4()) }, "value larger than the field")

	choice := ctx.Program(ProgramGBufferChoice)
	choice.SetUniform("outputtype", uint32(3))
	assert.Equal(t, uint32(3), common.Uint32At(choice.(*program).uniforms, 0))
}

func TestRenderContext_NewFramebufferPreconditions(t *testing.T) {
	ctx := newTestContext(t, false)
	depth := ctx.NewTexture("depth", ImageFormatDepth32F, 4, 4)
	color := ctx.NewTexture("color", ImageFormatRGBA8Unorm, 4, 4)
	big := ctx.NewTexture("big", ImageFormatRGBA8Unorm, 8, 8)

	assert.Panics(t, func() { ctx.NewFramebuffer("empty", nil) })
	assert.Panics(t, func() { ctx.NewFramebuffer("swapped", color) })
	assert.Panics(t, func() { ctx.NewFramebuffer("depth as color", nil, depth) })
	assert.Panics(t, func() { ctx.NewFramebuffer("mismatched", depth, color, big) })

	fb := ctx.NewFramebuffer("ok", depth, color)
	assert.Equal(t, depth.ID(), fb.Depth().ID())
	require.Len(t, fb.Colors(), 1)
	assert.Equal(t, color.ID(), fb.Colors()[0].ID())
}

func TestRenderContext_BlitBindsDefaultFramebuffer(t *testing.T) {
	ctx := newTestContext(t, false)
	color := ctx.NewTexture("tone mapped", ImageFormatRGBA8Unorm, 4, 4)
	fb := ctx.NewFramebuffer("tone map", nil, color)

	require.NoError(t, ctx.BeginFrame(4, 4))
	fb.Bind(false, true)
	ctx.BindDefaultFramebuffer()
	fb.Blit()
	ctx.EndFrame()

	assert.Nil(t, ctx.BoundFramebuffer())
	blits := FilterCommands(ctx.Commands(), CommandBlit)
	require.Len(t, blits, 1)
	assert.Equal(t, color.ID(), blits[0].Inputs[0])
}

func TestRenderContext_ReleaseFreesEverything(t *testing.T) {
	ctx := NewHeadlessContext()
	depth := ctx.NewTexture("depth", ImageFormatDepth32F, 4, 4)
	ctx.NewFramebuffer("fb", depth)
	ctx.NewBuffer("buffer", BufferUsageUniform, 16)
	require.Equal(t, 3, ctx.Stats().LiveResources)

	ctx.Release()
	assert.Equal(t, 0, ctx.Stats().LiveResources)
	assert.True(t, depth.Released())
}

func TestLookupProgram_ExpandsIncludes(t *testing.T) {
	for _, name := range ProgramNames() {
		t.Run(string(name), func(t *testing.T) {
			desc, err := LookupProgram(name)
			require.NoError(t, err)
			assert.NotContains(t, desc.Source, "@oxy:")
			assert.Contains(t, desc.Source, "fn "+desc.FragmentEntry)
			assert.Contains(t, desc.Source, "fn "+desc.VertexEntry)
		})
	}

	desc, err := LookupProgram(ProgramGBuffer)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(desc.Source, "struct FrameData"))

	_, err = LookupProgram("missing")
	assert.Error(t, err)
}

func TestProgramDescriptor_UniformLayout(t *testing.T) {
	desc, err := LookupProgram(ProgramLightSphere)
	require.NoError(t, err)

	offsets, size := desc.UniformLayout()
	assert.Equal(t, 0, offsets["model"])
	assert.Equal(t, 64, offsets["inv_view_proj"])
	assert.Equal(t, 128, size)

	desc, err = LookupProgram(ProgramToneMap)
	require.NoError(t, err)
	_, size = desc.UniformLayout()
	assert.Equal(t, 16, size)
}

func TestParseBackendType(t *testing.T) {
	bt, err := ParseBackendType("headless")
	require.NoError(t, err)
	assert.Equal(t, BackendTypeHeadless, bt)

	bt, err = ParseBackendType("wgpu")
	require.NoError(t, err)
	assert.Equal(t, BackendTypeWGPU, bt)

	_, err = ParseBackendType("vulkan")
	assert.Error(t, err)
}
