package frame

import (
	"github.com/Carmen-Shannon/oxy-deferred/common"
	"github.com/Carmen-Shannon/oxy-deferred/engine/profiler"
)

// OrchestratorBuilderOption is a functional option for configuring an Orchestrator.
type OrchestratorBuilderOption func(*orchestrator)

// WithSize allocates the render targets for an initial resolution.
//
// Parameters:
//   - width: the output width in pixels
//   - height: the output height in pixels
//
// Returns:
//   - OrchestratorBuilderOption: a function that applies the size option
func WithSize(width, height int) OrchestratorBuilderOption {
	return func(o *orchestrator) {
		o.state = NewRendererState(o.ctx, width, height)
	}
}

// WithExposure sets the initial tone-map exposure, clamped to [MinExposure, MaxExposure].
func WithExposure(exposure float32) OrchestratorBuilderOption {
	return func(o *orchestrator) {
		o.exposure = common.Clamp(exposure, MinExposure, MaxExposure)
	}
}

// WithDebugDisplay sets the initial debug display mode.
func WithDebugDisplay(mode DebugDisplay) OrchestratorBuilderOption {
	return func(o *orchestrator) {
		if mode < debugDisplayCount {
			o.debug = mode
		}
	}
}

// WithProfiler times every pass as a zone of p, nested in a "Frame" zone.
//
// Parameters:
//   - p: the profiler receiving the zones
//
// Returns:
//   - OrchestratorBuilderOption: a function that applies the profiler option
func WithProfiler(p *profiler.Profiler) OrchestratorBuilderOption {
	return func(o *orchestrator) {
		o.profiler = p
	}
}
