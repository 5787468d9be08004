package renderer

import (
	"embed"
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/shader"
)

//go:embed assets/*.wgsl
var shaderAssets embed.FS

var errNoSource = errors.New("program has no shader source")

// ProgramName names one of the built-in shader programs.
type ProgramName string

const (
	ProgramGBuffer        ProgramName = "gbuffer"
	ProgramLightSphere    ProgramName = "light_sphere"
	ProgramGBufferChoice  ProgramName = "gbuffer_choice"
	ProgramIndirectLights ProgramName = "indirect_lights"
	ProgramBlur           ProgramName = "blur"
	ProgramToneMap        ProgramName = "tonemap"
	ProgramBlit           ProgramName = "blit"
)

// Buffer slots used by the built-in programs.
const (
	SlotFrame       = 0 // uniform FrameData for geometry passes
	SlotPointLights = 1 // storage array of every point light
	SlotLightFrame  = 3 // uniform FrameData for the light pass
	SlotSingleLight = 4 // storage array holding the light being drawn
	SlotWindowSize  = 5 // uniform window size in pixels
)

// Texture slots used by the built-in programs.
const (
	TextureSlotAlbedo    = 0
	TextureSlotNormalMap = 1

	// G-buffer and post-process inputs.
	TextureSlotInput0 = 0
	TextureSlotInput1 = 1
	TextureSlotInput2 = 2
)

// Record sizes of the GPU structs the built-in programs declare.
const (
	frameDataSize  = 96
	pointLightSize = 32
	windowSizeSize = 16
)

// BufferBinding is a buffer slot a program reads.
type BufferBinding struct {
	Slot    int
	Usage   BufferUsage
	MinSize int
}

// TextureBinding is a texture slot a program reads. Depth slots require a depth-format texture.
type TextureBinding struct {
	Slot  int
	Depth bool
}

// UniformField is one named value in a program's uniform block.
type UniformField struct {
	Name string
	Size int
}

// ProgramDescriptor declares a built-in program's source and bindings.
type ProgramDescriptor struct {
	Name   ProgramName
	Source string

	VertexEntry   string
	FragmentEntry string

	// VertexInput is true for programs drawn with mesh vertex buffers; the rest draw a full-screen triangle.
	VertexInput bool

	Buffers  []BufferBinding
	Textures []TextureBinding
	Sampler  bool
	Uniforms []UniformField
}

// UniformLayout returns the byte offset of every uniform field and the block size.
// Every field starts on a 16-byte boundary, matching a WGSL struct of vec4-aligned members.
//
// Returns:
//   - map[string]int: field offsets by name
//   - int: the block size, a multiple of 16
func (d ProgramDescriptor) UniformLayout() (map[string]int, int) {
	offsets := make(map[string]int, len(d.Uniforms))
	offset := 0
	for _, u := range d.Uniforms {
		offsets[u.Name] = offset
		offset += align(u.Size, 16)
	}
	return offsets, offset
}

func align(n, to int) int {
	return (n + to - 1) / to * to
}

var programDescriptors = map[ProgramName]ProgramDescriptor{
	ProgramGBuffer: {
		Name:          ProgramGBuffer,
		VertexEntry:   "vs_main",
		FragmentEntry: "fs_main",
		VertexInput:   true,
		Buffers: []BufferBinding{
			{Slot: SlotFrame, Usage: BufferUsageUniform, MinSize: frameDataSize},
			{Slot: SlotPointLights, Usage: BufferUsageStorage, MinSize: pointLightSize},
		},
		Textures: []TextureBinding{{Slot: TextureSlotAlbedo}, {Slot: TextureSlotNormalMap}},
		Sampler:  true,
		Uniforms: []UniformField{{Name: "model", Size: 64}, {Name: "base_color", Size: 16}},
	},
	ProgramLightSphere: {
		Name:          ProgramLightSphere,
		VertexEntry:   "vs_main",
		FragmentEntry: "fs_main",
		VertexInput:   true,
		Buffers: []BufferBinding{
			{Slot: SlotLightFrame, Usage: BufferUsageUniform, MinSize: frameDataSize},
			{Slot: SlotSingleLight, Usage: BufferUsageStorage, MinSize: pointLightSize},
			{Slot: SlotWindowSize, Usage: BufferUsageUniform, MinSize: windowSizeSize},
		},
		Textures: []TextureBinding{{Slot: TextureSlotInput0}, {Slot: TextureSlotInput1}, {Slot: TextureSlotInput2, Depth: true}},
		Uniforms: []UniformField{{Name: "model", Size: 64}, {Name: "inv_view_proj", Size: 64}},
	},
	ProgramGBufferChoice: {
		Name:          ProgramGBufferChoice,
		VertexEntry:   "vs_screen",
		FragmentEntry: "fs_main",
		Textures:      []TextureBinding{{Slot: TextureSlotInput0}, {Slot: TextureSlotInput1}, {Slot: TextureSlotInput2, Depth: true}},
		Uniforms:      []UniformField{{Name: "outputtype", Size: 4}},
	},
	ProgramIndirectLights: {
		Name:          ProgramIndirectLights,
		VertexEntry:   "vs_screen",
		FragmentEntry: "fs_main",
		Textures:      []TextureBinding{{Slot: TextureSlotInput0}, {Slot: TextureSlotInput1}, {Slot: TextureSlotInput2, Depth: true}},
	},
	ProgramBlur: {
		Name:          ProgramBlur,
		VertexEntry:   "vs_screen",
		FragmentEntry: "fs_main",
		Textures:      []TextureBinding{{Slot: TextureSlotInput0}, {Slot: TextureSlotInput1}, {Slot: TextureSlotInput2, Depth: true}},
	},
	ProgramToneMap: {
		Name:          ProgramToneMap,
		VertexEntry:   "vs_screen",
		FragmentEntry: "fs_main",
		Textures:      []TextureBinding{{Slot: TextureSlotInput0}},
		Uniforms:      []UniformField{{Name: "exposure", Size: 4}},
	},
	ProgramBlit: {
		Name:          ProgramBlit,
		VertexEntry:   "vs_screen",
		FragmentEntry: "fs_main",
		Textures:      []TextureBinding{{Slot: TextureSlotInput0}},
	},
}

// LookupProgram returns the descriptor of a built-in program with its shader source resolved.
//
// Parameters:
//   - name: the program name
//
// Returns:
//   - ProgramDescriptor: the descriptor
//   - error: an error if the program or one of its shader assets does not exist
func LookupProgram(name ProgramName) (ProgramDescriptor, error) {
	desc, ok := programDescriptors[name]
	if !ok {
		return ProgramDescriptor{}, fmt.Errorf("unknown program %q", name)
	}

	source, err := shader.NewPreProcessor(shaderAssets, "assets").Process(string(name) + ".wgsl")
	if err != nil {
		return ProgramDescriptor{}, fmt.Errorf("failed to load program %q: %w", name, err)
	}
	desc.Source = source
	return desc, nil
}

// ProgramNames returns every built-in program name.
func ProgramNames() []ProgramName {
	return []ProgramName{
		ProgramGBuffer,
		ProgramLightSphere,
		ProgramGBufferChoice,
		ProgramIndirectLights,
		ProgramBlur,
		ProgramToneMap,
		ProgramBlit,
	}
}
