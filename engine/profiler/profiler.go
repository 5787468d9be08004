package profiler

import (
	"bytes"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-deferred/engine/logger"
	"github.com/olekukonko/tablewriter"
)

var log = logger.New("profiler")

// ZoneStats is the CPU time spent in one named zone during a frame.
type ZoneStats struct {
	Name string

	// Depth is the nesting level, 0 for zones opened outside any other zone.
	Depth int

	// Duration is the total time spent in the zone, summed over Calls.
	Duration time.Duration
	Calls    int
}

// Profiler tracks frame rate, memory statistics and per-frame CPU zone timings.
// Tick closes the current frame; it logs FPS and memory stats at the configured interval.
type Profiler struct {
	mu *sync.Mutex

	now            func() time.Time
	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64

	// Zones of the frame in progress, in the order they were first opened.
	current []ZoneStats
	index   map[string]int
	depth   int

	// Zones of the last completed frame.
	last []ZoneStats
}

// NewProfiler creates a new Profiler with default settings.
// Update interval defaults to 1 second.
//
// Parameters:
//   - options: variadic list of ProfilerBuilderOption functions to configure the profiler
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerBuilderOption) *Profiler {
	p := &Profiler{
		mu:             &sync.Mutex{},
		now:            time.Now,
		updateInterval: time.Second,
		index:          make(map[string]int),
	}
	for _, opt := range options {
		opt(p)
	}
	p.lastTime = p.now()
	return p
}

// Begin opens a named zone and returns the function that closes it.
// Zones nest; a zone opened several times in one frame accumulates its durations.
//
// Usage:
//
//	defer p.Begin("Blur pass")()
//
// Parameters:
//   - name: the zone name
//
// Returns:
//   - func(): closes the zone, must be called exactly once
func (p *Profiler) Begin(name string) func() {
	p.mu.Lock()
	start := p.now()
	i, ok := p.index[name]
	if !ok {
		i = len(p.current)
		p.index[name] = i
		p.current = append(p.current, ZoneStats{Name: name, Depth: p.depth})
	}
	p.depth++
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		p.current[i].Duration += p.now().Sub(start)
		p.current[i].Calls++
		p.depth--
	}
}

// Zones returns the zones of the last frame closed by Tick.
//
// Returns:
//   - []ZoneStats: a copy of the zone timings in opening order
func (p *Profiler) Zones() []ZoneStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]ZoneStats(nil), p.last...)
}

// Table renders the zones of the last frame as a table of name, CPU time and share of the root zone.
//
// Returns:
//   - string: the rendered table, empty if no frame has been closed
func (p *Profiler) Table() string {
	zones := p.Zones()
	if len(zones) == 0 {
		return ""
	}

	var total time.Duration
	for _, z := range zones {
		if z.Depth == 0 {
			total += z.Duration
		}
	}

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeader([]string{"Zone", "CPU (ms)", "% of frame"})
	for _, z := range zones {
		share := 0.0
		if total > 0 {
			share = 100 * float64(z.Duration) / float64(total)
		}
		table.Append([]string{
			fmt.Sprintf("%*s%s", z.Depth*2, "", z.Name),
			fmt.Sprintf("%.3f", float64(z.Duration)/float64(time.Millisecond)),
			fmt.Sprintf("%02.1f %%", share),
		})
	}
	table.SetFooter([]string{"TOTAL", fmt.Sprintf("%.3f", float64(total)/float64(time.Millisecond)), ""})
	table.Render()
	return buf.String()
}

// Tick should be called once per frame to close the frame's zones and track frame timing.
// Logs performance statistics when the update interval has elapsed.
// Statistics include: FPS, heap usage, allocation rate, GC count/pause times, total memory.
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.last = p.current
	p.current = nil
	p.index = make(map[string]int, len(p.last))
	p.depth = 0

	p.frameCount++
	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	fps := float64(p.frameCount) / elapsed.Seconds()

	runtime.ReadMemStats(&p.memStats)
	// Alloc: Bytes of allocated heap objects (live memory)
	// TotalAlloc: Cumulative bytes allocated for heap objects (increases forever, tracks churn)
	// Sys: Total bytes of memory obtained from the OS (actual process footprint)
	allocMB := float64(p.memStats.Alloc) / 1024 / 1024
	sysMB := float64(p.memStats.Sys) / 1024 / 1024

	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
	allocRateMB := float64(allocDelta) / 1024 / 1024 / elapsed.Seconds()

	gcCount := p.memStats.NumGC
	var lastPauseUs, maxPauseUs uint64
	if gcCount > 0 {
		// PauseNs is a circular buffer of last 256 GC pauses
		lastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000

		startIdx := p.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			pause := p.memStats.PauseNs[i%256] / 1000
			if pause > maxPauseUs {
				maxPauseUs = pause
			}
		}
	}

	log.Infof("FPS: %.2f | Heap: %.2f MB | Alloc Rate: %.2f MB/s | GC: %d (last: %d µs, max: %d µs) | Sys: %.2f MB",
		fps, allocMB, allocRateMB, gcCount, lastPauseUs, maxPauseUs, sysMB)

	p.frameCount = 0
	p.lastTime = currentTime
	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}
