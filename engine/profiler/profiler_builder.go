package profiler

import "time"

// ProfilerBuilderOption is a functional option for configuring a Profiler.
type ProfilerBuilderOption func(*Profiler)

// WithUpdateInterval sets how often Tick logs FPS and memory statistics.
//
// Parameters:
//   - interval: the logging interval, ignored if not positive
//
// Returns:
//   - ProfilerBuilderOption: a function that applies the interval option
func WithUpdateInterval(interval time.Duration) ProfilerBuilderOption {
	return func(p *Profiler) {
		if interval > 0 {
			p.updateInterval = interval
		}
	}
}

// WithClock replaces the time source, e.g. with a fake clock in tests.
func WithClock(now func() time.Time) ProfilerBuilderOption {
	return func(p *Profiler) {
		if now != nil {
			p.now = now
		}
	}
}
