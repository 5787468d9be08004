package loader

import (
	"github.com/Carmen-Shannon/oxy-deferred/engine/camera"
)

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithWorkers is an option builder that sets the number of workers decoding scene files.
// Values below 1 are ignored.
//
// Parameters:
//   - n: the worker count, defaults to runtime.NumCPU()
//
// Returns:
//   - LoaderBuilderOption: a function that applies the worker option to a loader
func WithWorkers(n int) LoaderBuilderOption {
	return func(l *loader) {
		if n > 0 {
			l.workers = n
		}
	}
}

// WithCameraOptions is an option builder that appends camera options to every loaded scene's camera.
// They are applied after the file's own camera values, so WithAspect here overrides the file.
//
// Parameters:
//   - options: the camera options
//
// Returns:
//   - LoaderBuilderOption: a function that applies the camera options to a loader
func WithCameraOptions(options ...camera.CameraBuilderOption) LoaderBuilderOption {
	return func(l *loader) {
		l.cameraOptions = append(l.cameraOptions, options...)
	}
}
