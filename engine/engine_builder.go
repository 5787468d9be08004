package engine

import (
	"time"

	"github.com/Carmen-Shannon/oxy-deferred/engine/camera"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithDataDir sets the directory scene files are listed from and the default scene is loaded from.
//
// Parameters:
//   - dir: the data directory (default "data")
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithDataDir(dir string) EngineBuilderOption {
	return func(e *engine) {
		if dir != "" {
			e.dataDir = dir
		}
	}
}

// WithInitialScene sets the scene file loaded at startup instead of the default scene.
// If it cannot be loaded the default scene is used.
//
// Parameters:
//   - path: the scene file
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithInitialScene(path string) EngineBuilderOption {
	return func(e *engine) {
		e.initialScene = path
	}
}

// WithExposure sets the initial tone-map exposure, clamped by the orchestrator.
//
// Parameters:
//   - exposure: the exposure (default 1)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithExposure(exposure float32) EngineBuilderOption {
	return func(e *engine) {
		e.exposure = exposure
	}
}

// WithMaxFrames makes Run return after n frames. 0 runs until the window closes.
//
// Parameters:
//   - n: the frame limit
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithMaxFrames(n int) EngineBuilderOption {
	return func(e *engine) {
		if n >= 0 {
			e.maxFrames = n
		}
	}
}

// WithLoaderWorkers sets the number of workers decoding scene files.
func WithLoaderWorkers(n int) EngineBuilderOption {
	return func(e *engine) {
		e.loaderWorkers = n
	}
}

// WithFlyController replaces the camera controller driven by keyboard and mouse input.
func WithFlyController(fc camera.FlyController) EngineBuilderOption {
	return func(e *engine) {
		if fc != nil {
			e.fly = fc
		}
	}
}

// WithClock replaces the time source of Run's frame timing.
func WithClock(now func() time.Time) EngineBuilderOption {
	return func(e *engine) {
		e.now = now
	}
}
