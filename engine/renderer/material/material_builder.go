package material

import (
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer"
	"github.com/go-gl/mathgl/mgl32"
)

// MaterialBuilderOption is a function that configures a material during construction.
type MaterialBuilderOption func(*material)

// WithName sets the material identifier.
//
// Parameters:
//   - name: the name of the material
//
// Returns:
//   - MaterialBuilderOption: a function that applies the name option to a material
func WithName(name string) MaterialBuilderOption {
	return func(m *material) {
		m.name = name
	}
}

// WithProgram sets the built-in program the material draws with.
//
// Parameters:
//   - program: the program name
//
// Returns:
//   - MaterialBuilderOption: a function that applies the program option to a material
func WithProgram(program renderer.ProgramName) MaterialBuilderOption {
	return func(m *material) {
		m.program = program
	}
}

// WithBaseColor sets the RGBA color the albedo is multiplied with.
//
// Parameters:
//   - color: the base color
//
// Returns:
//   - MaterialBuilderOption: a function that applies the base color option to a material
func WithBaseColor(color mgl32.Vec4) MaterialBuilderOption {
	return func(m *material) {
		m.baseColor = color
	}
}

// WithAlbedo sets the base color texture. The material takes ownership of it.
//
// Parameters:
//   - tex: the texture
//
// Returns:
//   - MaterialBuilderOption: a function that applies the albedo option to a material
func WithAlbedo(tex renderer.Texture) MaterialBuilderOption {
	return func(m *material) {
		m.albedo = tex
	}
}

// WithNormalMap sets the tangent-space normal texture. The material takes ownership of it.
//
// Parameters:
//   - tex: the texture
//
// Returns:
//   - MaterialBuilderOption: a function that applies the normal map option to a material
func WithNormalMap(tex renderer.Texture) MaterialBuilderOption {
	return func(m *material) {
		m.normalMap = tex
	}
}

// WithBlendMode sets how the material's output combines with the target.
//
// Parameters:
//   - mode: the blend mode
//
// Returns:
//   - MaterialBuilderOption: a function that applies the blend option to a material
func WithBlendMode(mode renderer.BlendMode) MaterialBuilderOption {
	return func(m *material) {
		m.blend = mode
	}
}

// WithDepthTest sets the depth comparison used when drawing the material.
//
// Parameters:
//   - test: the depth test
//
// Returns:
//   - MaterialBuilderOption: a function that applies the depth test option to a material
func WithDepthTest(test renderer.DepthTest) MaterialBuilderOption {
	return func(m *material) {
		m.depthTest = test
	}
}
