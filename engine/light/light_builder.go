package light

import "github.com/go-gl/mathgl/mgl32"

// PointLightBuilderOption is a function that configures a PointLight during construction.
type PointLightBuilderOption func(*pointLightImpl)

// WithPosition is an option builder that sets the world-space position of the light.
//
// Parameters:
//   - x: the x position component
//   - y: the y position component
//   - z: the z position component
//
// Returns:
//   - PointLightBuilderOption: a function that applies the position option to a pointLightImpl
func WithPosition(x, y, z float32) PointLightBuilderOption {
	return func(l *pointLightImpl) {
		l.position = mgl32.Vec3{x, y, z}
	}
}

// WithColor is an option builder that sets the RGB color of the light.
//
// Parameters:
//   - r: the red color component
//   - g: the green color component
//   - b: the blue color component
//
// Returns:
//   - PointLightBuilderOption: a function that applies the color option to a pointLightImpl
func WithColor(r, g, b float32) PointLightBuilderOption {
	return func(l *pointLightImpl) {
		l.color = mgl32.Vec3{r, g, b}
	}
}

// WithRadius is an option builder that sets the radius of influence of the light.
//
// Parameters:
//   - radius: the radius in world units, clamped to zero when negative
//
// Returns:
//   - PointLightBuilderOption: a function that applies the radius option to a pointLightImpl
func WithRadius(radius float32) PointLightBuilderOption {
	return func(l *pointLightImpl) {
		l.radius = max(radius, 0)
	}
}
