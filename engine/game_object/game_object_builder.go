package game_object

import "github.com/go-gl/mathgl/mgl32"

// GameObjectBuilderOption is a functional option for configuring a GameObject during construction.
type GameObjectBuilderOption func(*gameObject)

// WithName sets the name of the GameObject. The default is the mesh name.
//
// Parameters:
//   - name: the object name
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the name
func WithName(name string) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.name = name
	}
}

// WithEnabled sets whether the GameObject is drawn.
//
// Parameters:
//   - enabled: true to render the object, false to skip it
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the Enabled state
func WithEnabled(enabled bool) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.enabled.Store(enabled)
	}
}

// WithTransform sets the model-to-world matrix.
//
// Parameters:
//   - transform: the transform
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the transform
func WithTransform(transform mgl32.Mat4) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.transform = transform
	}
}

// WithPosition sets a translation-only transform.
//
// Parameters:
//   - x, y, z: the world-space position
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the transform
func WithPosition(x, y, z float32) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.transform = mgl32.Translate3D(x, y, z)
	}
}
