package engine

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"time"

	"github.com/Carmen-Shannon/oxy-deferred/common"
	"github.com/Carmen-Shannon/oxy-deferred/engine/camera"
	"github.com/Carmen-Shannon/oxy-deferred/engine/frame"
	"github.com/Carmen-Shannon/oxy-deferred/engine/loader"
	"github.com/Carmen-Shannon/oxy-deferred/engine/logger"
	"github.com/Carmen-Shannon/oxy-deferred/engine/profiler"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer"
	"github.com/Carmen-Shannon/oxy-deferred/engine/scene"
	"github.com/Carmen-Shannon/oxy-deferred/engine/window"
)

var log = logger.New("engine")

// DefaultSceneFile is the file of the default scene, relative to the data directory.
const DefaultSceneFile = "cube.glb"

// exposureStep is the factor one exposure key press multiplies or divides by.
const exposureStep float32 = 1.25

var (
	// ErrRenderPanic is returned by Run when a frame panicked. The engine stops after logging it.
	ErrRenderPanic = errors.New("render loop panicked")

	// ErrNoSceneFiles is returned by NextScene when the data directory has no scene files.
	ErrNoSceneFiles = errors.New("no scene files in the data directory")
)

// engine implements the Engine interface.
type engine struct {
	ctx          renderer.RenderContext
	window       window.Window
	orchestrator frame.Orchestrator
	loader       loader.Loader
	fly          camera.FlyController

	profiler         *profiler.Profiler
	profilingEnabled bool

	dataDir      string
	initialScene string

	scene          scene.Scene
	scenePath      string
	defaultScene   bool
	lastListedFile string

	exposure      float32
	maxFrames     int
	frames        int
	loaderWorkers int
	quit          bool
	now           func() time.Time
}

// Engine is the viewer application: it owns the current scene, the frame orchestrator and the
// scene loader, and runs a single-threaded loop in which each iteration polls window events,
// applies input to the camera and renders one frame. Every method must be called from the
// goroutine that created the window.
type Engine interface {
	// Window returns the window the engine reads input from.
	Window() window.Window

	// Orchestrator returns the frame orchestrator.
	Orchestrator() frame.Orchestrator

	// Scene returns the current scene.
	Scene() scene.Scene

	// ScenePath returns the file the current scene was loaded from, empty for the procedural fallback.
	ScenePath() string

	// LoadScene loads a scene file and makes it current, releasing the previous scene.
	// On failure the current scene is kept.
	//
	// Parameters:
	//   - path: the scene file
	//
	// Returns:
	//   - error: the load error
	LoadScene(path string) error

	// LoadDefaultScene loads DefaultSceneFile from the data directory, falling back to a
	// procedural cube, and adds the default sun and point lights.
	//
	// Returns:
	//   - error: error if neither the file nor the fallback could be created
	LoadDefaultScene() error

	// NextScene loads the scene file that follows the last one listed, in name order, wrapping
	// around. A file that fails to load is skipped by the following call.
	//
	// Returns:
	//   - error: ErrNoSceneFiles, a directory error or the load error
	NextScene() error

	// ReloadScene loads the current scene file again.
	//
	// Returns:
	//   - error: the load error; the current scene is kept
	ReloadScene() error

	// EnableProfiler enables per-pass zone timing and periodic profiler output.
	EnableProfiler()

	// DisableProfiler disables profiler output.
	DisableProfiler()

	// Step applies one frame of input and renders one frame.
	//
	// Parameters:
	//   - dt: the frame time in seconds
	//
	// Returns:
	//   - error: a render error; a zero-size window is not an error
	Step(dt float32) error

	// Run loops until the window closes, Quit is called or the frame limit is reached.
	// A panic inside a frame is recovered, logged and returned wrapped in ErrRenderPanic.
	//
	// Returns:
	//   - error: the first render error
	Run() error

	// Quit makes Run return after the current frame.
	Quit()

	// Frames returns the number of frames rendered so far.
	Frames() int

	// Release releases the scene, the render targets and the loader. The window and the
	// render context belong to the caller.
	Release()
}

var _ Engine = &engine{}

// NewEngine creates the engine and loads the initial scene: WithInitialScene's file if given
// and loadable, otherwise the default scene.
//
// Parameters:
//   - ctx: the render context frames are rendered through
//   - w: the window providing input and the framebuffer size
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the engine
//   - error: error if no scene could be created
func NewEngine(ctx renderer.RenderContext, w window.Window, options ...EngineBuilderOption) (Engine, error) {
	e := &engine{
		ctx:      ctx,
		window:   w,
		fly:      camera.NewFlyController(),
		profiler: profiler.NewProfiler(),
		dataDir:  "data",
		exposure: frame.DefaultExposure,
		now:      time.Now,
	}
	for _, opt := range options {
		opt(e)
	}

	e.orchestrator = frame.NewOrchestrator(ctx,
		frame.WithSize(w.Width(), w.Height()),
		frame.WithExposure(e.exposure),
		frame.WithProfiler(e.profiler),
	)
	loaderOptions := []loader.LoaderBuilderOption{}
	if e.loaderWorkers > 0 {
		loaderOptions = append(loaderOptions, loader.WithWorkers(e.loaderWorkers))
	}
	e.loader = loader.NewLoader(ctx, loader.BackendTypeGLTF, loaderOptions...)

	w.SetResizeCallback(func(width, height int) {
		e.orchestrator.Resize(width, height)
	})
	w.SetKeyDownCallback(e.handleKey)

	var err error
	if e.initialScene != "" {
		if err = e.LoadScene(e.initialScene); err != nil {
			log.Warningf("falling back to the default scene")
		}
	}
	if e.scene == nil {
		err = e.LoadDefaultScene()
	}
	if err != nil {
		e.Release()
		return nil, err
	}
	return e, nil
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Orchestrator() frame.Orchestrator {
	return e.orchestrator
}

func (e *engine) Scene() scene.Scene {
	return e.scene
}

func (e *engine) ScenePath() string {
	return e.scenePath
}

func (e *engine) LoadScene(path string) error {
	s, err := e.loader.Load(path)
	if err != nil {
		log.Errorf("%v", err)
		return err
	}
	e.setScene(s, path, false)
	return nil
}

func (e *engine) LoadDefaultScene() error {
	path := filepath.Join(e.dataDir, DefaultSceneFile)
	s, err := e.loader.Load(path)
	if err != nil {
		log.Warningf("default scene unavailable, using a procedural cube: %v", err)
		path = ""
		if s, err = scene.NewCubeScene(e.ctx); err != nil {
			return fmt.Errorf("failed to create the default scene: %w", err)
		}
	}
	scene.ApplyDefaultLighting(s)
	e.setScene(s, path, true)
	return nil
}

func (e *engine) NextScene() error {
	files, err := loader.ListSceneFiles(e.dataDir)
	if err != nil {
		log.Warningf("failed to list scene files: %v", err)
		return fmt.Errorf("failed to list scene files: %w", err)
	}
	if len(files) == 0 {
		log.Warningf("no scene files in %s", e.dataDir)
		return fmt.Errorf("%w: %s", ErrNoSceneFiles, e.dataDir)
	}

	next := files[(slices.Index(files, e.lastListedFile)+1)%len(files)]
	e.lastListedFile = next
	return e.LoadScene(next)
}

func (e *engine) ReloadScene() error {
	if e.defaultScene {
		return e.LoadDefaultScene()
	}
	return e.LoadScene(e.scenePath)
}

// setScene makes s current and releases the previous scene.
func (e *engine) setScene(s scene.Scene, path string, isDefault bool) {
	if e.window.Height() > 0 {
		s.Camera().SetAspect(float32(e.window.Width()) / float32(e.window.Height()))
	}

	old := e.scene
	e.scene = s
	e.scenePath = path
	e.defaultScene = isDefault
	if path != "" {
		e.lastListedFile = path
	}
	if old != nil {
		old.Release()
	}

	stats := s.Stats()
	log.Infof("scene %q: %d objects, %d point lights", s.Name(), stats.Objects, stats.PointLights)
}

func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
	log.Infof("profiler enabled")
}

func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
	log.Infof("profiler disabled")
}

func (e *engine) Step(dt float32) error {
	cam := e.scene.Camera()
	dragX, dragY := e.window.ConsumeDrag()
	e.fly.Update(cam, camera.FlyInput{
		Forward:  e.window.IsKeyDown(common.KeyW),
		Backward: e.window.IsKeyDown(common.KeyS),
		Left:     e.window.IsKeyDown(common.KeyA),
		Right:    e.window.IsKeyDown(common.KeyD),
		Boost:    e.window.IsKeyDown(common.KeyLeftShift),
		DragX:    dragX,
		DragY:    dragY,
	}, dt)

	width, height := e.window.Width(), e.window.Height()
	if height > 0 {
		cam.SetAspect(float32(width) / float32(height))
	}

	err := e.orchestrator.Render(e.scene, width, height)
	if errors.Is(err, renderer.ErrEmptyFrame) {
		return nil
	}
	if errors.Is(err, renderer.ErrSurfaceUnavailable) {
		log.Warningf("skipping frame: %v", err)
		return nil
	}
	if err != nil {
		return err
	}
	e.frames++

	if e.profilingEnabled && e.profiler.Tick() {
		log.Infof("frame zones:\n%s", e.profiler.Table())
	}
	return nil
}

func (e *engine) Run() (err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("render loop recovered from panic: %v", r)
			err = fmt.Errorf("%w: %v", ErrRenderPanic, r)
		}
	}()

	last := e.now()
	for !e.quit && e.window.PollEvents() {
		now := e.now()
		dt := float32(now.Sub(last).Seconds())
		last = now

		if err := e.Step(dt); err != nil {
			return err
		}
		if e.maxFrames > 0 && e.frames >= e.maxFrames {
			log.Infof("rendered %d frames", e.frames)
			return nil
		}
	}
	return nil
}

func (e *engine) Quit() {
	e.quit = true
}

func (e *engine) Frames() int {
	return e.frames
}

func (e *engine) Release() {
	if e.scene != nil {
		e.scene.Release()
		e.scene = nil
	}
	e.orchestrator.Release()
	e.loader.Release()
}

// handleKey runs the action bound to a key press.
func (e *engine) handleKey(keyCode uint32) {
	switch keyCode {
	case common.KeyN:
		_ = e.NextScene()
	case common.KeyF5:
		_ = e.ReloadScene()
	case common.KeyP:
		if e.profilingEnabled {
			e.DisableProfiler()
		} else {
			e.EnableProfiler()
		}
	case common.KeyEqual:
		e.orchestrator.SetExposure(e.orchestrator.Exposure() * exposureStep)
		log.Debugf("exposure %.2f", e.orchestrator.Exposure())
	case common.KeyMinus:
		e.orchestrator.SetExposure(e.orchestrator.Exposure() / exposureStep)
		log.Debugf("exposure %.2f", e.orchestrator.Exposure())
	case common.KeyR:
		e.orchestrator.SetExposure(frame.DefaultExposure)
	case common.Key1, common.Key2, common.Key3, common.Key4:
		mode := frame.DebugDisplay(keyCode - common.Key1)
		e.orchestrator.SetDebugDisplay(mode)
		log.Infof("display %s", mode)
	}
}
