package material

import (
	"github.com/Carmen-Shannon/oxy-deferred/common"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer"
	"github.com/go-gl/mathgl/mgl32"
)

// material is the implementation of the Material interface.
type material struct {
	name      string
	program   renderer.ProgramName
	baseColor mgl32.Vec4
	albedo    renderer.Texture
	normalMap renderer.Texture
	blend     renderer.BlendMode
	depthTest renderer.DepthTest
}

// Material describes how a scene object is drawn: the program it is drawn with, the textures
// that program samples and the raster state it needs. A Material owns its textures.
type Material interface {
	// Name retrieves the material identifier.
	//
	// Returns:
	//   - string: the name of the material
	Name() string

	// Program retrieves the built-in program the material draws with.
	//
	// Returns:
	//   - renderer.ProgramName: the program name
	Program() renderer.ProgramName

	// BaseColor retrieves the RGBA color the albedo texture is multiplied with.
	//
	// Returns:
	//   - mgl32.Vec4: the base color
	BaseColor() mgl32.Vec4

	// Albedo retrieves the base color texture, or nil for programs that sample none.
	Albedo() renderer.Texture

	// NormalMap retrieves the tangent-space normal texture, or nil for programs that sample none.
	NormalMap() renderer.Texture

	BlendMode() renderer.BlendMode
	DepthTest() renderer.DepthTest

	// Apply binds the material's program and textures and sets its raster state on ctx.
	// Texture slots the material has no texture for are left untouched, so a material
	// without textures reads whatever the pass bound there.
	//
	// Parameters:
	//   - ctx: the render context to configure
	Apply(ctx renderer.RenderContext)

	// Release frees the textures owned by the material.
	Release()
}

var _ Material = &material{}

// NewMaterial creates a Material. Geometry materials (the default gbuffer program) get a
// white albedo and a flat normal map when none are supplied.
//
// Parameters:
//   - ctx: the render context used for default textures
//   - options: variadic list of MaterialBuilderOption to configure the material
//
// Returns:
//   - Material: the new material
func NewMaterial(ctx renderer.RenderContext, options ...MaterialBuilderOption) Material {
	m := &material{
		name:      "default",
		program:   renderer.ProgramGBuffer,
		baseColor: mgl32.Vec4{1, 1, 1, 1},
		blend:     renderer.BlendModeNone,
		depthTest: renderer.DepthTestLess,
	}
	for _, opt := range options {
		opt(m)
	}

	if m.program == renderer.ProgramGBuffer {
		if m.albedo == nil {
			m.albedo = ctx.NewTextureFromImage(m.name+"_albedo", common.SolidImage(255, 255, 255, 255), true)
		}
		if m.normalMap == nil {
			m.normalMap = ctx.NewTextureFromImage(m.name+"_normal", common.SolidImage(128, 128, 255, 255), false)
		}
	}
	return m
}

// NewLightSphereMaterial creates the material of the light balls: the light-sphere program
// with additive blending. It samples the G-buffer textures the light pass binds.
//
// Parameters:
//   - ctx: the render context
//
// Returns:
//   - Material: the light-sphere material
func NewLightSphereMaterial(ctx renderer.RenderContext) Material {
	return NewMaterial(ctx,
		WithName("light_sphere"),
		WithProgram(renderer.ProgramLightSphere),
		WithBlendMode(renderer.BlendModeAdditive),
	)
}

func (m *material) Name() string {
	return m.name
}

func (m *material) Program() renderer.ProgramName {
	return m.program
}

func (m *material) BaseColor() mgl32.Vec4 {
	return m.baseColor
}

func (m *material) Albedo() renderer.Texture {
	return m.albedo
}

func (m *material) NormalMap() renderer.Texture {
	return m.normalMap
}

func (m *material) BlendMode() renderer.BlendMode {
	return m.blend
}

func (m *material) DepthTest() renderer.DepthTest {
	return m.depthTest
}

func (m *material) Apply(ctx renderer.RenderContext) {
	program := ctx.Program(m.program)
	program.Bind()
	ctx.SetBlendMode(m.blend)
	ctx.SetDepthTest(m.depthTest)

	if m.program == renderer.ProgramGBuffer {
		program.SetUniform("base_color", m.baseColor)
	}
	if m.albedo != nil {
		m.albedo.Bind(renderer.TextureSlotAlbedo)
	}
	if m.normalMap != nil {
		m.normalMap.Bind(renderer.TextureSlotNormalMap)
	}
}

func (m *material) Release() {
	if m.albedo != nil {
		m.albedo.Release()
	}
	if m.normalMap != nil {
		m.normalMap.Release()
	}
}
