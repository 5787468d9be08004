package scene

import (
	"github.com/Carmen-Shannon/oxy-deferred/engine/game_object"
	"github.com/Carmen-Shannon/oxy-deferred/engine/light"
	"github.com/Carmen-Shannon/oxy-deferred/engine/model"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/material"
	"github.com/go-gl/mathgl/mgl32"
)

// Sun of the default scene.
var (
	DefaultSunDirection = mgl32.Vec3{0.2, 1, 0.1}
	DefaultSunColor     = mgl32.Vec3{1, 1, 1}
)

// DefaultPointLights returns the two lights added to the default scene:
// a green light in front of the origin and a red one behind it.
//
// Returns:
//   - []light.PointLight: new lights, in insertion order
func DefaultPointLights() []light.PointLight {
	return []light.PointLight{
		light.NewPointLight(light.WithPosition(1, 2, 4), light.WithColor(0, 50, 0), light.WithRadius(100)),
		light.NewPointLight(light.WithPosition(1, 2, -4), light.WithColor(50, 0, 0), light.WithRadius(50)),
	}
}

// NewCubeScene creates a scene holding a single procedural cube at the origin.
// It stands in for the default scene file when that file cannot be loaded.
//
// Parameters:
//   - ctx: the render context
//   - options: functional options applied to the scene
//
// Returns:
//   - Scene: the scene
//   - error: an error if the cube mesh cannot be built
func NewCubeScene(ctx renderer.RenderContext, options ...SceneBuilderOption) (Scene, error) {
	mesh, err := model.NewMesh(ctx, model.Cube(1))
	if err != nil {
		return nil, err
	}
	cube := game_object.NewGameObject(mesh, material.NewMaterial(ctx, material.WithName("cube")))

	options = append([]SceneBuilderOption{WithName("cube"), WithObjects(cube)}, options...)
	return NewScene(ctx, options...), nil
}

// ApplyDefaultLighting sets the default sun and appends the default point lights.
//
// Parameters:
//   - s: the scene to light
func ApplyDefaultLighting(s Scene) {
	s.SetSun(DefaultSunDirection, DefaultSunColor)
	for _, l := range DefaultPointLights() {
		s.AddLight(l)
	}
}
