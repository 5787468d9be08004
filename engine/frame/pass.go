package frame

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer"
	"github.com/google/uuid"
)

var (
	// ErrUnwrittenInput is returned when a pass reads a resource no earlier pass wrote.
	ErrUnwrittenInput = errors.New("pass reads a resource no earlier pass wrote")

	// ErrFeedbackLoop is returned when a pass reads a resource it also writes.
	ErrFeedbackLoop = errors.New("pass reads a resource it writes")

	// ErrUnnamedPass is returned for a pass without a name or an Execute function.
	ErrUnnamedPass = errors.New("pass has no name or no Execute function")
)

// Pass is one step of a frame. Reads and Writes list the render-target textures it samples and
// renders into; Execute issues its commands. A pass writing the default framebuffer lists no writes.
type Pass struct {
	Name    string
	Reads   []renderer.Resource
	Writes  []renderer.Resource
	Execute func(ctx renderer.RenderContext)
}

// ValidatePasses checks that the passes can run in the given order: every resource a pass reads
// must be written by an earlier pass or be one of the external inputs, and no pass may read what it writes.
//
// Parameters:
//   - passes: the passes in execution order
//   - external: resources that are valid inputs before the first pass
//
// Returns:
//   - error: the first violation found, wrapping one of the package sentinel errors
func ValidatePasses(passes []Pass, external ...renderer.Resource) error {
	written := make(map[uuid.UUID]string, len(external))
	for _, r := range external {
		written[r.ID()] = "external"
	}

	for _, p := range passes {
		if p.Name == "" || p.Execute == nil {
			return fmt.Errorf("%w: %q", ErrUnnamedPass, p.Name)
		}

		writes := make(map[uuid.UUID]bool, len(p.Writes))
		for _, w := range p.Writes {
			writes[w.ID()] = true
		}
		for _, r := range p.Reads {
			if writes[r.ID()] {
				return fmt.Errorf("%w: %q reads and writes %q", ErrFeedbackLoop, p.Name, r.Label())
			}
			if _, ok := written[r.ID()]; !ok {
				return fmt.Errorf("%w: %q reads %q", ErrUnwrittenInput, p.Name, r.Label())
			}
		}
		for _, w := range p.Writes {
			written[w.ID()] = p.Name
		}
	}
	return nil
}

// PassNames returns the names of the passes in order.
func PassNames(passes []Pass) []string {
	names := make([]string, len(passes))
	for i, p := range passes {
		names[i] = p.Name
	}
	return names
}
