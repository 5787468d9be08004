package scene

import (
	"github.com/Carmen-Shannon/oxy-deferred/engine/camera"
	"github.com/Carmen-Shannon/oxy-deferred/engine/game_object"
	"github.com/Carmen-Shannon/oxy-deferred/engine/light"
	"github.com/Carmen-Shannon/oxy-deferred/engine/model"
	"github.com/go-gl/mathgl/mgl32"
)

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithName sets the scene's identifier. It also prefixes the labels of the scene's GPU buffers.
//
// Parameters:
//   - name: the scene name
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithName(name string) SceneBuilderOption {
	return func(s *scene) {
		s.name = name
	}
}

// WithCamera sets the scene's camera.
//
// Parameters:
//   - cam: the camera
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithCamera(cam camera.Camera) SceneBuilderOption {
	return func(s *scene) {
		s.cam = cam
	}
}

// WithSun sets the directional light.
//
// Parameters:
//   - direction: the direction toward the sun, normalized on use
//   - color: the linear RGB color
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithSun(direction, color mgl32.Vec3) SceneBuilderOption {
	return func(s *scene) {
		s.sun = light.NewSun(direction, color)
	}
}

// WithObjects adds initial objects to the scene in order.
//
// Parameters:
//   - objects: the objects to add
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithObjects(objects ...game_object.GameObject) SceneBuilderOption {
	return func(s *scene) {
		for _, obj := range objects {
			if obj != nil {
				s.objects = append(s.objects, obj)
			}
		}
	}
}

// WithPointLights adds initial point lights to the scene in order, each with its light ball.
//
// Parameters:
//   - lights: the lights to add
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithPointLights(lights ...light.PointLight) SceneBuilderOption {
	return func(s *scene) {
		for _, l := range lights {
			if l != nil {
				s.pendingLights = append(s.pendingLights, l)
			}
		}
	}
}

// WithLightBallMesh sets the mesh drawn for every light ball. It should be a sphere of radius
// light.LightBallBaseRadius. The scene takes ownership of the mesh. The default is a UV sphere.
//
// Parameters:
//   - mesh: the light-ball mesh
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithLightBallMesh(mesh *model.Mesh) SceneBuilderOption {
	return func(s *scene) {
		s.ballMesh = mesh
	}
}
