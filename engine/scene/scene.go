package scene

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-deferred/common"
	"github.com/Carmen-Shannon/oxy-deferred/engine/camera"
	"github.com/Carmen-Shannon/oxy-deferred/engine/game_object"
	"github.com/Carmen-Shannon/oxy-deferred/engine/light"
	"github.com/Carmen-Shannon/oxy-deferred/engine/logger"
	"github.com/Carmen-Shannon/oxy-deferred/engine/model"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/material"
	"github.com/go-gl/mathgl/mgl32"
)

var log = logger.New("scene")

// Light-ball sphere tessellation.
const (
	lightBallRings    = 12
	lightBallSegments = 16
)

// Stats reports the contents of a scene and what its last passes drew.
type Stats struct {
	Objects     int
	PointLights int

	// VisibleObjects is the number of objects drawn by the last Render or ZPrepass.
	VisibleObjects int

	// VisibleLights is the number of light balls drawn by the last RenderLights.
	VisibleLights int
}

// Scene owns the renderable objects, the point lights with their paired light-ball objects,
// a camera and the sun. Each pass method packs the GPU records its programs read, binds them
// at their fixed slots and draws the objects that pass the visibility test.
//
// Pass methods must be called with the RenderContext the scene was created with, inside a frame
// with a render target bound. The frustum is recomputed from the camera on every pass call.
type Scene interface {
	// Name returns the scene's identifier, usually the scene file name.
	Name() string

	// SetName sets the scene's identifier.
	SetName(name string)

	// Camera returns the scene's camera.
	Camera() camera.Camera

	// SetCamera replaces the scene's camera.
	//
	// Parameters:
	//   - cam: the new camera
	SetCamera(cam camera.Camera)

	// Sun returns the directional light.
	Sun() light.Sun

	// SetSun sets the directional light. The direction is normalized when packed.
	//
	// Parameters:
	//   - direction: the direction toward the sun
	//   - color: the linear RGB color
	SetSun(direction, color mgl32.Vec3)

	// AddObject appends an object. Objects cannot be removed.
	//
	// Parameters:
	//   - obj: the object, must not be nil
	AddObject(obj game_object.GameObject)

	// AddLight appends a point light and its light-ball object at the same index.
	//
	// Parameters:
	//   - l: the light, must not be nil
	AddLight(l light.PointLight)

	// Objects returns a copy of the object list in insertion order.
	Objects() []game_object.GameObject

	// PointLights returns a copy of the light list in insertion order.
	PointLights() []light.PointLight

	// LightBalls returns a copy of the light-ball list; entry i represents PointLights()[i].
	LightBalls() []game_object.GameObject

	// Render packs the frame record (uniform slot 0) and the whole light array (storage slot 1),
	// then draws every visible object.
	//
	// Parameters:
	//   - ctx: the render context
	Render(ctx renderer.RenderContext)

	// RenderLights packs the frame record (uniform slot 3) and the window size (uniform slot 5),
	// then for every light whose ball is visible rewrites and rebinds the single-light buffer
	// (storage slot 4) and draws the ball.
	//
	// Parameters:
	//   - ctx: the render context
	//   - width: the target width in pixels
	//   - height: the target height in pixels
	RenderLights(ctx renderer.RenderContext, width, height int)

	// ZPrepass packs a frame record with zero lights and a black sun (uniform slot 0)
	// and draws every visible object.
	//
	// Parameters:
	//   - ctx: the render context
	ZPrepass(ctx renderer.RenderContext)

	// Stats returns the object and light counts and the visible counts of the last passes.
	Stats() Stats

	// Release frees every GPU resource the scene owns. Meshes and materials shared by several
	// objects are released once. Pass methods panic after Release.
	Release()
}

type scene struct {
	mu *sync.Mutex

	name string
	cam  camera.Camera
	sun  light.Sun

	objects     []game_object.GameObject
	pointLights []light.PointLight
	lightBalls  []game_object.GameObject

	ballMesh     *model.Mesh
	ballMaterial material.Material

	frameBuffer       *renderer.TypedBuffer[light.FrameData]
	prepassBuffer     *renderer.TypedBuffer[light.FrameData]
	lightFrameBuffer  *renderer.TypedBuffer[light.FrameData]
	windowSizeBuffer  *renderer.TypedBuffer[light.WindowSize]
	singleLightBuffer *renderer.TypedBuffer[light.GPUPointLight]
	lightsBuffer      *renderer.TypedBuffer[light.GPUPointLight]

	// Collected by builder options, added once the light-ball resources exist.
	pendingLights []light.PointLight

	stats    Stats
	released bool
}

var _ Scene = &scene{}

// NewScene creates a scene. Without options it has a default camera, no objects, no lights
// and a white sun shining from (0.2, 1, 0.1).
//
// Parameters:
//   - ctx: the render context that owns the scene's GPU resources
//   - options: functional options to configure the scene
//
// Returns:
//   - Scene: the new scene
func NewScene(ctx renderer.RenderContext, options ...SceneBuilderOption) Scene {
	s := &scene{
		mu:   &sync.Mutex{},
		name: "scene",
		sun:  light.NewSun(mgl32.Vec3{0.2, 1, 0.1}, mgl32.Vec3{1, 1, 1}),
	}
	for _, opt := range options {
		opt(s)
	}

	if s.cam == nil {
		s.cam = camera.NewCamera()
	}
	if s.ballMesh == nil {
		mesh, err := model.NewMesh(ctx, model.Sphere(light.LightBallBaseRadius, lightBallRings, lightBallSegments))
		if err != nil {
			panic(fmt.Sprintf("scene: light-ball mesh: %v", err))
		}
		s.ballMesh = mesh
	}
	s.ballMaterial = material.NewLightSphereMaterial(ctx)

	s.frameBuffer = renderer.NewTypedBuffer[light.FrameData](ctx, s.name+"_frame", renderer.BufferUsageUniform, 1)
	s.prepassBuffer = renderer.NewTypedBuffer[light.FrameData](ctx, s.name+"_prepass_frame", renderer.BufferUsageUniform, 1)
	s.lightFrameBuffer = renderer.NewTypedBuffer[light.FrameData](ctx, s.name+"_light_frame", renderer.BufferUsageUniform, 1)
	s.windowSizeBuffer = renderer.NewTypedBuffer[light.WindowSize](ctx, s.name+"_window_size", renderer.BufferUsageUniform, 1)
	s.singleLightBuffer = renderer.NewTypedBuffer[light.GPUPointLight](ctx, s.name+"_single_light", renderer.BufferUsageStorage, 1)

	for _, l := range s.pendingLights {
		s.addLight(l)
	}
	s.pendingLights = nil
	return s
}

func (s *scene) Name() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.name
}

func (s *scene) SetName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
}

func (s *scene) Camera() camera.Camera {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cam
}

func (s *scene) SetCamera(cam camera.Camera) {
	if cam == nil {
		panic("scene: nil camera")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cam = cam
}

func (s *scene) Sun() light.Sun {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sun
}

func (s *scene) SetSun(direction, color mgl32.Vec3) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sun = light.NewSun(direction, color)
}

func (s *scene) AddObject(obj game_object.GameObject) {
	if obj == nil {
		panic("scene: nil object")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects = append(s.objects, obj)
}

func (s *scene) AddLight(l light.PointLight) {
	if l == nil {
		panic("scene: nil light")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addLight(l)
}

// addLight appends the light and its ball together. Caller must hold the lock.
func (s *scene) addLight(l light.PointLight) {
	ball := game_object.NewGameObject(s.ballMesh, s.ballMaterial,
		game_object.WithName(fmt.Sprintf("light_ball_%d", len(s.pointLights))),
		game_object.WithTransform(l.BallTransform()),
	)
	s.pointLights = append(s.pointLights, l)
	s.lightBalls = append(s.lightBalls, ball)
}

func (s *scene) Objects() []game_object.GameObject {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]game_object.GameObject(nil), s.objects...)
}

func (s *scene) PointLights() []light.PointLight {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]light.PointLight(nil), s.pointLights...)
}

func (s *scene) LightBalls() []game_object.GameObject {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]game_object.GameObject(nil), s.lightBalls...)
}

func (s *scene) Render(ctx renderer.RenderContext) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requireLive("Render")

	viewProj := s.cam.ViewProjectionMatrix()
	sun := s.sun
	count := uint32(len(s.pointLights))
	s.frameBuffer.Map(func(frames []light.FrameData) {
		frames[0] = light.FrameData{
			ViewProj:        viewProj,
			SunColor:        sun.Color,
			PointLightCount: count,
			SunDir:          common.NormalizeOrZero(sun.Direction),
		}
	})
	s.frameBuffer.Bind(renderer.BufferUsageUniform, renderer.SlotFrame)

	s.ensureLightsCapacity(ctx)
	s.lightsBuffer.Map(func(lights []light.GPUPointLight) {
		for i := range lights {
			if i < len(s.pointLights) {
				lights[i] = s.pointLights[i].ToGPU()
			} else {
				lights[i] = light.GPUPointLight{}
			}
		}
	})
	s.lightsBuffer.Bind(renderer.BufferUsageStorage, renderer.SlotPointLights)

	s.stats.VisibleObjects = s.drawVisible(ctx, s.objects)
}

func (s *scene) RenderLights(ctx renderer.RenderContext, width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requireLive("RenderLights")

	viewProj := s.cam.ViewProjectionMatrix()
	s.lightFrameBuffer.Map(func(frames []light.FrameData) {
		frames[0] = light.FrameData{ViewProj: viewProj}
	})
	s.lightFrameBuffer.Bind(renderer.BufferUsageUniform, renderer.SlotLightFrame)

	s.windowSizeBuffer.Map(func(sizes []light.WindowSize) {
		sizes[0] = light.NewWindowSize(width, height)
	})
	s.windowSizeBuffer.Bind(renderer.BufferUsageUniform, renderer.SlotWindowSize)

	ctx.Program(renderer.ProgramLightSphere).SetUniform("inv_view_proj", viewProj.Inv())

	frustum := s.cam.Frustum()
	camPos := s.cam.Position()
	visible := 0
	for i, l := range s.pointLights {
		ball := s.lightBalls[i]
		ball.SetTransform(l.BallTransform())
		if !isVisibleFrom(frustum, ball, camPos) {
			continue
		}

		record := l.ToGPU()
		s.singleLightBuffer.Map(func(lights []light.GPUPointLight) {
			lights[0] = record
		})
		s.singleLightBuffer.Bind(renderer.BufferUsageStorage, renderer.SlotSingleLight)
		ball.Draw(ctx)
		visible++
	}
	s.stats.VisibleLights = visible
	log.Debugf("%s: %d of %d light balls visible", s.name, visible, len(s.pointLights))
}

func (s *scene) ZPrepass(ctx renderer.RenderContext) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requireLive("ZPrepass")

	viewProj := s.cam.ViewProjectionMatrix()
	sunDir := common.NormalizeOrZero(s.sun.Direction)
	s.prepassBuffer.Map(func(frames []light.FrameData) {
		frames[0] = light.FrameData{
			ViewProj: viewProj,
			SunDir:   sunDir,
		}
	})
	s.prepassBuffer.Bind(renderer.BufferUsageUniform, renderer.SlotFrame)

	s.stats.VisibleObjects = s.drawVisible(ctx, s.objects)
}

func (s *scene) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	stats := s.stats
	stats.Objects = len(s.objects)
	stats.PointLights = len(s.pointLights)
	return stats
}

func (s *scene) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return
	}
	s.released = true

	meshes := map[*model.Mesh]struct{}{s.ballMesh: {}}
	materials := map[material.Material]struct{}{s.ballMaterial: {}}
	for _, obj := range s.objects {
		meshes[obj.Mesh()] = struct{}{}
		materials[obj.Material()] = struct{}{}
	}
	for mesh := range meshes {
		mesh.Release()
	}
	for mat := range materials {
		mat.Release()
	}

	for _, b := range []renderer.Buffer{
		s.frameBuffer,
		s.prepassBuffer,
		s.lightFrameBuffer,
		s.windowSizeBuffer,
		s.singleLightBuffer,
	} {
		b.Release()
	}
	if s.lightsBuffer != nil {
		s.lightsBuffer.Release()
	}
	log.Debugf("released scene %s: %d meshes, %d materials", s.name, len(meshes), len(materials))
}

// drawVisible draws the objects that pass the visibility test against the camera's current frustum.
// Caller must hold the lock.
func (s *scene) drawVisible(ctx renderer.RenderContext, objects []game_object.GameObject) int {
	frustum := s.cam.Frustum()
	camPos := s.cam.Position()

	visible := 0
	for _, obj := range objects {
		if !obj.Enabled() || !isVisibleFrom(frustum, obj, camPos) {
			continue
		}
		obj.Draw(ctx)
		visible++
	}
	return visible
}

// ensureLightsCapacity sizes the light array to max(lightCount, 1) elements. Caller must hold the lock.
func (s *scene) ensureLightsCapacity(ctx renderer.RenderContext) {
	need := max(len(s.pointLights), 1)
	if s.lightsBuffer != nil && s.lightsBuffer.Len() == need {
		return
	}
	if s.lightsBuffer != nil {
		s.lightsBuffer.Release()
	}
	s.lightsBuffer = renderer.NewTypedBuffer[light.GPUPointLight](ctx, s.name+"_point_lights", renderer.BufferUsageStorage, need)
}

func (s *scene) requireLive(pass string) {
	if s.released {
		panic(fmt.Sprintf("scene: %s on released scene %q", pass, s.name))
	}
}
