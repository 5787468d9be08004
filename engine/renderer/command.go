package renderer

import (
	"fmt"

	"github.com/google/uuid"
)

// CommandKind identifies a recorded RenderContext call.
type CommandKind int

const (
	CommandBeginFrame CommandKind = iota
	CommandEndFrame
	CommandBindFramebuffer
	CommandBindDefaultFramebuffer
	CommandBindProgram
	CommandSetUniform
	CommandBindBuffer
	CommandBindTexture
	CommandWriteBuffer
	CommandSetCullMode
	CommandSetDepthMask
	CommandSetBlendMode
	CommandSetDepthTest
	CommandDrawIndexed
	CommandDrawFullscreen
	CommandBlit
	CommandRelease
)

var commandNames = map[CommandKind]string{
	CommandBeginFrame:             "BeginFrame",
	CommandEndFrame:               "EndFrame",
	CommandBindFramebuffer:        "BindFramebuffer",
	CommandBindDefaultFramebuffer: "BindDefaultFramebuffer",
	CommandBindProgram:            "BindProgram",
	CommandSetUniform:             "SetUniform",
	CommandBindBuffer:             "BindBuffer",
	CommandBindTexture:            "BindTexture",
	CommandWriteBuffer:            "WriteBuffer",
	CommandSetCullMode:            "SetCullMode",
	CommandSetDepthMask:           "SetDepthMask",
	CommandSetBlendMode:           "SetBlendMode",
	CommandSetDepthTest:           "SetDepthTest",
	CommandDrawIndexed:            "DrawIndexed",
	CommandDrawFullscreen:         "DrawFullscreen",
	CommandBlit:                   "Blit",
	CommandRelease:                "Release",
}

func (k CommandKind) String() string {
	if name, ok := commandNames[k]; ok {
		return name
	}
	return fmt.Sprintf("CommandKind(%d)", int(k))
}

// Command is one recorded RenderContext call. Only the fields relevant to Kind are set.
type Command struct {
	Kind CommandKind

	// Label is the label of the resource involved, or the program name.
	Label    string
	Resource uuid.UUID

	Slot  int
	Usage BufferUsage
	Count int

	ClearDepth bool
	ClearColor bool

	// Data is a copy of the bytes written by a WriteBuffer.
	Data []byte

	// Name and Value describe a SetUniform.
	Name  string
	Value any

	Cull      CullMode
	DepthMask bool
	Blend     BlendMode
	DepthTest DepthTest

	// Target is the framebuffer a draw renders into; uuid.Nil for the default framebuffer.
	Target uuid.UUID

	// Inputs lists the resources a draw reads, declared textures first, then declared buffers.
	Inputs []uuid.UUID
}

func (c Command) String() string {
	switch c.Kind {
	case CommandBindBuffer:
		return fmt.Sprintf("%s(%s, %s, %d)", c.Kind, c.Label, c.Usage, c.Slot)
	case CommandBindTexture:
		return fmt.Sprintf("%s(%s, %d)", c.Kind, c.Label, c.Slot)
	case CommandBindFramebuffer:
		return fmt.Sprintf("%s(%s, %t, %t)", c.Kind, c.Label, c.ClearDepth, c.ClearColor)
	case CommandDrawIndexed:
		return fmt.Sprintf("%s(%s, %d)", c.Kind, c.Label, c.Count)
	case CommandSetUniform:
		return fmt.Sprintf("%s(%s, %v)", c.Kind, c.Name, c.Value)
	case CommandWriteBuffer:
		return fmt.Sprintf("%s(%s, %d bytes)", c.Kind, c.Label, len(c.Data))
	}
	if c.Label != "" {
		return fmt.Sprintf("%s(%s)", c.Kind, c.Label)
	}
	return c.Kind.String()
}

// FilterCommands returns the commands whose kind is one of kinds, preserving order.
//
// Parameters:
//   - commands: the recorded commands
//   - kinds: the kinds to keep
//
// Returns:
//   - []Command: the matching commands
func FilterCommands(commands []Command, kinds ...CommandKind) []Command {
	keep := make(map[CommandKind]bool, len(kinds))
	for _, k := range kinds {
		keep[k] = true
	}

	var out []Command
	for _, c := range commands {
		if keep[c.Kind] {
			out = append(out, c)
		}
	}
	return out
}
