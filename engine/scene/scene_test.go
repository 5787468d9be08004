package scene

import (
	"math"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-deferred/common"
	"github.com/Carmen-Shannon/oxy-deferred/engine/camera"
	"github.com/Carmen-Shannon/oxy-deferred/engine/game_object"
	"github.com/Carmen-Shannon/oxy-deferred/engine/light"
	"github.com/Carmen-Shannon/oxy-deferred/engine/model"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/material"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestContext(t *testing.T, validate bool) renderer.RenderContext {
	t.Helper()
	ctx := renderer.NewHeadlessContext(renderer.WithValidation(validate), renderer.WithRecording(true))
	t.Cleanup(ctx.Release)
	return ctx
}

// unitMesh returns a cube whose bounding sphere has radius 1 and is centered at the origin.
func unitMesh(t *testing.T, ctx renderer.RenderContext) *model.Mesh {
	t.Helper()
	mesh, err := model.NewMesh(ctx, model.Cube(float32(1/math.Sqrt(3))))
	require.NoError(t, err)
	require.InDelta(t, 1, mesh.Bounds().Radius, 1e-5)
	return mesh
}

func newObject(ctx renderer.RenderContext, mesh *model.Mesh, transform mgl32.Mat4) game_object.GameObject {
	return game_object.NewGameObject(mesh, material.NewMaterial(ctx), game_object.WithTransform(transform))
}

// gbufferTarget creates a framebuffer matching the geometry pass attachments.
func gbufferTarget(ctx renderer.RenderContext) (renderer.Framebuffer, []renderer.Texture) {
	depth := ctx.NewTexture("depth", renderer.ImageFormatDepth32F, 8, 8)
	color := ctx.NewTexture("color", renderer.ImageFormatRGBA8sRGB, 8, 8)
	normal := ctx.NewTexture("normal", renderer.ImageFormatRGBA8Unorm, 8, 8)
	return ctx.NewFramebuffer("g_buffer", depth, color, normal), []renderer.Texture{color, normal, depth}
}

func TestIsVisible_SphereInsideEveryPlane(t *testing.T) {
	ctx := newTestContext(t, false)
	obj := newObject(ctx, unitMesh(t, ctx), mgl32.Ident4())
	cam := camera.NewCamera(camera.WithPosition(0, 0, 5), camera.WithClipPlanes(0.1, 100))

	frustum := cam.Frustum()
	center, radius := CameraRelativeSphere(obj, cam.Position())
	for _, i := range common.CullingPlanes {
		assert.Truef(t, frustum.Planes[i].ContainsSphere(center, radius), "plane %d", i)
	}
	assert.True(t, IsVisible(frustum, obj, cam))
}

func TestIsVisible_BehindCameraFailsNearPlane(t *testing.T) {
	ctx := newTestContext(t, false)
	cam := camera.NewCamera(camera.WithPosition(0, 0, 5), camera.WithClipPlanes(0.1, 10))
	behind := cam.Position().Sub(cam.Forward().Mul(1000))
	obj := newObject(ctx, unitMesh(t, ctx), mgl32.Translate3D(behind.X(), behind.Y(), behind.Z()))

	frustum := cam.Frustum()
	center, radius := CameraRelativeSphere(obj, cam.Position())
	assert.False(t, frustum.Near().ContainsSphere(center, radius))
	assert.False(t, IsVisible(frustum, obj, cam))
}

func TestIsVisible_SideAndFarPlanes(t *testing.T) {
	ctx := newTestContext(t, false)
	mesh := unitMesh(t, ctx)
	cam := camera.NewCamera(camera.WithClipPlanes(0.1, 10))

	tests := []struct {
		name    string
		pos     mgl32.Vec3
		visible bool
	}{
		{"straight ahead", mgl32.Vec3{0, 0, -5}, true},
		{"far left", mgl32.Vec3{-100, 0, -5}, false},
		{"far right", mgl32.Vec3{100, 0, -5}, false},
		{"far above", mgl32.Vec3{0, 100, -5}, false},
		{"far below", mgl32.Vec3{0, -100, -5}, false},
		{"straddling the left edge", mgl32.Vec3{-2.5, 0, -5}, true},
		{"beyond the far plane", mgl32.Vec3{0, 0, -500}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj := newObject(ctx, mesh, mgl32.Translate3D(tt.pos.X(), tt.pos.Y(), tt.pos.Z()))
			assert.Equal(t, tt.visible, IsVisible(cam.Frustum(), obj, cam))
		})
	}
}

func TestIsVisible_TranslationInvariant(t *testing.T) {
	ctx := newTestContext(t, false)
	mesh := unitMesh(t, ctx)
	offset := mgl32.Vec3{137, -52, 911}

	tests := []struct {
		camPos   mgl32.Vec3
		yaw      float32
		objPos   mgl32.Vec3
		expected bool
	}{
		{mgl32.Vec3{0, 0, 0}, 0, mgl32.Vec3{0, 0, -10}, true},
		{mgl32.Vec3{0, 0, 0}, 0, mgl32.Vec3{0, 0, 10}, false},
		{mgl32.Vec3{5, 1, 2}, math.Pi / 2, mgl32.Vec3{20, 1, 2}, true},
		{mgl32.Vec3{5, 1, 2}, math.Pi / 2, mgl32.Vec3{-20, 1, 2}, false},
		{mgl32.Vec3{-3, 0, 7}, math.Pi, mgl32.Vec3{-3, 40, 20}, false},
	}
	for _, tt := range tests {
		cam := camera.NewCamera(camera.WithPosition(tt.camPos.X(), tt.camPos.Y(), tt.camPos.Z()), camera.WithOrientation(tt.yaw, 0))
		obj := newObject(ctx, mesh, mgl32.Translate3D(tt.objPos.X(), tt.objPos.Y(), tt.objPos.Z()))
		before := IsVisible(cam.Frustum(), obj, cam)
		require.Equal(t, tt.expected, before)

		moved := cam.Position().Add(offset)
		cam.SetPosition(moved)
		obj.SetTransform(mgl32.Translate3D(offset.X(), offset.Y(), offset.Z()).Mul4(obj.Transform()))
		assert.Equal(t, before, IsVisible(cam.Frustum(), obj, cam))
	}
}

func TestEffectiveRadius_MonotonicInUniformScale(t *testing.T) {
	bounds := common.BoundingSphere{Center: mgl32.Vec3{0.5, -1, 2}, Radius: 1.5}
	base := mgl32.Translate3D(10, 0, -3).Mul4(mgl32.HomogRotate3DY(0.7))

	prev := float32(0)
	for _, s := range []float32{0.1, 0.5, 1, 1.01, 2, 3.5, 10, 100} {
		r := EffectiveRadius(bounds, base.Mul4(mgl32.Scale3D(s, s, s)))
		assert.GreaterOrEqualf(t, r, prev, "scale %v", s)
		assert.InDeltaf(t, bounds.Radius*s, r, float64(1e-3*s), "scale %v", s)
		prev = r
	}
}

func TestEffectiveRadius_NonUniformScaleCoversLongestAxis(t *testing.T) {
	bounds := common.BoundingSphere{Radius: 1}
	r := EffectiveRadius(bounds, mgl32.Scale3D(1, 1, 10))
	assert.GreaterOrEqual(t, r, float32(10))
}

func TestScene_AddLightKeepsLightBallsInLockstep(t *testing.T) {
	ctx := newTestContext(t, false)
	s := NewScene(ctx, WithPointLights(light.NewPointLight(light.WithRadius(3.2))))

	for i := range 4 {
		s.AddLight(light.NewPointLight(light.WithPosition(float32(i), 0, 0), light.WithRadius(float32(i+1))))
	}

	lights := s.PointLights()
	balls := s.LightBalls()
	require.Len(t, lights, 5)
	require.Len(t, balls, 5)
	for i := range lights {
		assert.Equal(t, lights[i].BallTransform(), balls[i].Transform(), "ball %d", i)
		assert.Same(t, balls[0].Mesh(), balls[i].Mesh())
		assert.Equal(t, renderer.ProgramLightSphere, balls[i].Material().Program())
	}
	assert.Equal(t, 5, s.Stats().PointLights)
}

func TestScene_ZPrepassPacksNoLighting(t *testing.T) {
	ctx := newTestContext(t, false)
	s := NewScene(ctx,
		WithSun(mgl32.Vec3{0, 2, 0}, mgl32.Vec3{1, 1, 1}),
		WithPointLights(DefaultPointLights()...),
		WithObjects(newObject(ctx, unitMesh(t, ctx), mgl32.Translate3D(0, 0, -5))),
	)

	target := ctx.NewFramebuffer("prepass", ctx.NewTexture("depth", renderer.ImageFormatDepth32F, 8, 8))
	require.NoError(t, ctx.BeginFrame(8, 8))
	target.Bind(true, true)
	s.ZPrepass(ctx)
	ctx.EndFrame()

	frame := ctx.Bound(renderer.BufferUsageUniform, renderer.SlotFrame)
	require.NotNil(t, frame)
	data := frame.Contents()
	require.Len(t, data, 96)

	assert.Equal(t, uint32(0), common.Uint32At(data, 76))
	for off := 64; off < 76; off += 4 {
		assert.Equal(t, float32(0), common.Float32At(data, off))
	}
	assert.Equal(t, float32(1), common.Float32At(data, 84), "sun direction is normalized")
	assert.Equal(t, s.Camera().ViewProjectionMatrix()[0], common.Float32At(data, 0))
	assert.Equal(t, 1, s.Stats().VisibleObjects)
}

func TestScene_RenderPacksFrameAndLightArray(t *testing.T) {
	ctx := newTestContext(t, true)
	s := NewScene(ctx, WithPointLights(DefaultPointLights()...))
	fb, _ := gbufferTarget(ctx)

	require.NoError(t, ctx.BeginFrame(8, 8))
	fb.Bind(true, true)
	ctx.Program(renderer.ProgramGBuffer).Bind()
	s.Render(ctx)
	ctx.EndFrame()

	frame := ctx.Bound(renderer.BufferUsageUniform, renderer.SlotFrame).Contents()
	assert.Equal(t, uint32(2), common.Uint32At(frame, 76))
	assert.Equal(t, float32(1), common.Float32At(frame, 64))

	lights := ctx.Bound(renderer.BufferUsageStorage, renderer.SlotPointLights)
	require.Equal(t, 64, lights.Size())
	data := lights.Contents()
	assert.Equal(t, float32(4), common.Float32At(data, 8))
	assert.Equal(t, float32(100), common.Float32At(data, 12))
	assert.Equal(t, float32(-4), common.Float32At(data, 32+8))
	assert.Equal(t, float32(50), common.Float32At(data, 32+16))
}

func TestScene_RenderWithoutLightsKeepsOneElement(t *testing.T) {
	ctx := newTestContext(t, false)
	s := NewScene(ctx)
	fb, _ := gbufferTarget(ctx)

	require.NoError(t, ctx.BeginFrame(8, 8))
	fb.Bind(true, true)
	s.Render(ctx)
	ctx.EndFrame()

	assert.Equal(t, 32, ctx.Bound(renderer.BufferUsageStorage, renderer.SlotPointLights).Size())
	assert.Equal(t, uint32(0), common.Uint32At(ctx.Bound(renderer.BufferUsageUniform, renderer.SlotFrame).Contents(), 76))
}

func TestScene_RenderDrawsOnlyVisibleObjects(t *testing.T) {
	ctx := newTestContext(t, false)
	mesh := unitMesh(t, ctx)
	hidden := newObject(ctx, mesh, mgl32.Translate3D(0, 0, 50))
	s := NewScene(ctx, WithObjects(
		newObject(ctx, mesh, mgl32.Translate3D(0, 0, -5)),
		hidden,
		newObject(ctx, mesh, mgl32.Translate3D(1, 0, -8)),
	))
	disabled := newObject(ctx, mesh, mgl32.Translate3D(0, 0, -5))
	disabled.SetEnabled(false)
	s.AddObject(disabled)

	fb, _ := gbufferTarget(ctx)
	require.NoError(t, ctx.BeginFrame(8, 8))
	fb.Bind(true, true)
	s.Render(ctx)
	ctx.EndFrame()

	draws := renderer.FilterCommands(ctx.Commands(), renderer.CommandDrawIndexed)
	assert.Len(t, draws, 2)
	assert.Equal(t, 2, s.Stats().VisibleObjects)
	assert.Equal(t, 4, s.Stats().Objects)
}

func TestScene_RenderLightsInterleavesPerLightWrites(t *testing.T) {
	ctx := newTestContext(t, true)
	s := NewScene(ctx, WithName("lights"), WithPointLights(
		light.NewPointLight(light.WithPosition(0, 0, -10), light.WithRadius(1)),
		light.NewPointLight(light.WithPosition(0, 0, 1000), light.WithRadius(1)),
		light.NewPointLight(light.WithPosition(3, 0, -10), light.WithRadius(2)),
	))

	_, gbuffer := gbufferTarget(ctx)
	lit := ctx.NewFramebuffer("main", nil, ctx.NewTexture("lit_hdr", renderer.ImageFormatRGBA8sRGB, 8, 8))

	require.NoError(t, ctx.BeginFrame(8, 8))
	lit.Bind(true, true)
	for slot, tex := range gbuffer {
		tex.Bind(slot)
	}
	ctx.ResetCommands()
	s.RenderLights(ctx, 8, 8)
	ctx.EndFrame()

	var seq []renderer.Command
	for _, c := range ctx.Commands() {
		switch {
		case c.Kind == renderer.CommandDrawIndexed:
			seq = append(seq, c)
		case (c.Kind == renderer.CommandWriteBuffer || c.Kind == renderer.CommandBindBuffer) && strings.HasSuffix(c.Label, "_single_light"):
			seq = append(seq, c)
		}
	}

	require.Len(t, seq, 6)
	wantPositions := []float32{0, 3}
	for i := range 2 {
		write, bind, draw := seq[i*3], seq[i*3+1], seq[i*3+2]
		assert.Equal(t, renderer.CommandWriteBuffer, write.Kind)
		assert.Equal(t, wantPositions[i], common.Float32At(write.Data, 0))
		assert.Equal(t, renderer.CommandBindBuffer, bind.Kind)
		assert.Equal(t, renderer.SlotSingleLight, bind.Slot)
		assert.Equal(t, renderer.BufferUsageStorage, bind.Usage)
		assert.Equal(t, renderer.CommandDrawIndexed, draw.Kind)
		assert.Equal(t, renderer.BlendModeAdditive, draw.Blend)
	}
	assert.Equal(t, 2, s.Stats().VisibleLights)

	size := ctx.Bound(renderer.BufferUsageUniform, renderer.SlotWindowSize).Contents()
	assert.Equal(t, uint32(8), common.Uint32At(size, 0))
	assert.Equal(t, uint32(8), common.Uint32At(size, 4))
}

func TestScene_RenderLightsFollowsMovedLight(t *testing.T) {
	ctx := newTestContext(t, false)
	l := light.NewPointLight(light.WithPosition(0, 0, -10), light.WithRadius(1))
	s := NewScene(ctx, WithPointLights(l))
	lit := ctx.NewFramebuffer("main", nil, ctx.NewTexture("lit_hdr", renderer.ImageFormatRGBA8sRGB, 8, 8))

	l.SetPosition(mgl32.Vec3{0, 0, 10})

	require.NoError(t, ctx.BeginFrame(8, 8))
	lit.Bind(true, true)
	s.RenderLights(ctx, 8, 8)
	ctx.EndFrame()

	assert.Equal(t, 0, s.Stats().VisibleLights)
	assert.Equal(t, l.BallTransform(), s.LightBalls()[0].Transform())
}

func TestScene_ReleaseFreesSharedResourcesOnce(t *testing.T) {
	ctx := newTestContext(t, false)
	mesh := unitMesh(t, ctx)
	mat := material.NewMaterial(ctx)
	s := NewScene(ctx, WithObjects(
		game_object.NewGameObject(mesh, mat),
		game_object.NewGameObject(mesh, mat),
	), WithPointLights(DefaultPointLights()...))

	s.Release()
	s.Release()

	assert.True(t, mesh.Released())
	assert.True(t, mat.Albedo().Released())
	assert.True(t, s.LightBalls()[0].Mesh().Released())
	assert.Panics(t, func() { s.Render(ctx) })
}

func TestNewCubeScene_WithDefaultLighting(t *testing.T) {
	ctx := newTestContext(t, false)
	s, err := NewCubeScene(ctx)
	require.NoError(t, err)
	ApplyDefaultLighting(s)

	stats := s.Stats()
	assert.Equal(t, 1, stats.Objects)
	assert.Equal(t, 2, stats.PointLights)
	assert.InDelta(t, 1, s.Sun().Direction.Len(), 1e-6)
	assert.Equal(t, DefaultSunColor, s.Sun().Color)
}
