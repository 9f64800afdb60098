package profiler

import (
	"log"
	"runtime"
	"time"
)

// Frame is what the engine reports to the profiler after each frame.
type Frame struct {
	Rigid    int
	Skeletal int
	Lights   int
}

// Report summarizes one update interval.
type Report struct {
	FPS          float64
	Frames       int
	Rigid        int
	Skeletal     int
	Lights       int
	HeapMB       float64
	AllocRateMB  float64
	GCCount      uint32
	LastPauseUs  uint64
	MaxPauseUs   uint64
	SysMB        float64
	IntervalSecs float64
}

// Profiler tracks frame rate, dispatch counts and memory statistics.
// Outputs stats to the log at a configurable interval.
type Profiler struct {
	frameCount     int
	rigid          int
	skeletal       int
	lights         int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
	quiet          bool
	last           Report
}

// NewProfiler creates a new Profiler. The update interval defaults to 1 second.
//
// Parameters:
//   - options: functional options to configure the profiler
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerBuilderOption) *Profiler {
	p := &Profiler{
		lastTime:       time.Now(),
		updateInterval: time.Second,
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

// Tick should be called once per rendered frame.
// Logs performance statistics when the update interval has elapsed: FPS, draw counts
// per render path, active lights, heap usage, allocation rate and GC pauses.
//
// Parameters:
//   - f: the frame's dispatch counts
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick(f Frame) bool {
	p.frameCount++
	p.rigid += f.Rigid
	p.skeletal += f.Skeletal
	p.lights = f.Lights

	currentTime := time.Now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}
	secs := max(elapsed.Seconds(), 1e-9)

	runtime.ReadMemStats(&p.memStats)
	r := Report{
		FPS:          float64(p.frameCount) / secs,
		Frames:       p.frameCount,
		Rigid:        p.rigid,
		Skeletal:     p.skeletal,
		Lights:       p.lights,
		HeapMB:       float64(p.memStats.Alloc) / 1024 / 1024,
		SysMB:        float64(p.memStats.Sys) / 1024 / 1024,
		AllocRateMB:  float64(p.memStats.TotalAlloc-p.lastTotalAlloc) / 1024 / 1024 / secs,
		GCCount:      p.memStats.NumGC,
		IntervalSecs: secs,
	}

	if gcCount := p.memStats.NumGC; gcCount > 0 {
		// PauseNs is a circular buffer of the last 256 GC pauses.
		r.LastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000
		startIdx := p.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			r.MaxPauseUs = max(r.MaxPauseUs, p.memStats.PauseNs[i%256]/1000)
		}
	}

	if !p.quiet {
		log.Printf("[Profiler] FPS: %.2f | Draws/frame: %.1f rigid, %.1f skeletal | Lights: %d | Heap: %.2f MB | Alloc Rate: %.2f MB/s | GC: %d (last: %d µs, max: %d µs) | Sys: %.2f MB",
			r.FPS, float64(r.Rigid)/float64(r.Frames), float64(r.Skeletal)/float64(r.Frames), r.Lights,
			r.HeapMB, r.AllocRateMB, r.GCCount, r.LastPauseUs, r.MaxPauseUs, r.SysMB)
	}

	p.last = r
	p.frameCount = 0
	p.rigid = 0
	p.skeletal = 0
	p.lastTime = currentTime
	p.lastGCCount = p.memStats.NumGC
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}

// Last returns the most recent report, or the zero Report before the first interval.
func (p *Profiler) Last() Report {
	return p.last
}

// ProfilerBuilderOption is a functional option for configuring a Profiler.
type ProfilerBuilderOption func(*Profiler)

// WithInterval sets how often Tick reports. Values <= 0 report on every tick.
//
// Parameters:
//   - d: the reporting interval
//
// Returns:
//   - ProfilerBuilderOption: option function to apply
func WithInterval(d time.Duration) ProfilerBuilderOption {
	return func(p *Profiler) {
		p.updateInterval = max(d, 0)
	}
}

// WithQuiet suppresses log output while still collecting reports.
//
// Parameters:
//   - quiet: true to disable logging
//
// Returns:
//   - ProfilerBuilderOption: option function to apply
func WithQuiet(quiet bool) ProfilerBuilderOption {
	return func(p *Profiler) {
		p.quiet = quiet
	}
}
