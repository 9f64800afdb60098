package engine

import (
	"time"

	"github.com/Carmen-Shannon/oxy-scene/engine/mesh"
	"github.com/Carmen-Shannon/oxy-scene/engine/profiler"
	"github.com/Carmen-Shannon/oxy-scene/engine/scene"
	"github.com/Carmen-Shannon/oxy-scene/engine/window"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithProfiler replaces the default profiler.
//
// Parameters:
//   - p: the profiler receiving per-frame statistics
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiler(p *profiler.Profiler) EngineBuilderOption {
	return func(e *engine) {
		e.profiler = p
	}
}

// WithTickRate sets the frame rate in frames per second.
// Values <= 0 will be treated as the default (60Hz).
//
// Parameters:
//   - fps: target frames per second (default 60)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTickRate(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			fps = 60.0
		}
		e.engineTickRate = time.Duration(float64(time.Second) / fps)
	}
}

// WithFixedDelta runs frames back to back with a constant delta time instead of waiting
// on the tick rate. Useful for offline tools that simulate a number of frames.
//
// Parameters:
//   - dt: the simulated frame time in seconds (<= 0 restores real time)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithFixedDelta(dt float32) EngineBuilderOption {
	return func(e *engine) {
		e.fixedDelta = dt
	}
}

// WithMaxFrames stops Run after n frames. Zero runs until Quit or the window closes.
//
// Parameters:
//   - n: the frame limit
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithMaxFrames(n uint64) EngineBuilderOption {
	return func(e *engine) {
		e.maxFrames = n
	}
}

// WithWindow sets the window pumped by Run. Its aspect ratio is passed to every render.
//
// Parameters:
//   - w: a pre-configured Window instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithAspect sets the aspect ratio used when running without a window.
//
// Parameters:
//   - aspect: width divided by height (<= 0 keeps each camera's own)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithAspect(aspect float32) EngineBuilderOption {
	return func(e *engine) {
		e.aspect = aspect
	}
}

// WithFrameTarget sets the target that brackets each frame's draw calls.
//
// Parameters:
//   - t: the frame target, for example a GPU backend
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithFrameTarget(t FrameTarget) EngineBuilderOption {
	return func(e *engine) {
		e.target = t
	}
}

// WithPipelines sets the pipelines handed to every scene render.
//
// Parameters:
//   - object: the pipeline for rigid meshes
//   - skinned: the pipeline for skinned meshes
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithPipelines(object, skinned mesh.Pipeline) EngineBuilderOption {
	return func(e *engine) {
		e.objectPipeline = object
		e.skinnedPipeline = skinned
	}
}

// WithResizeCallback registers a function run when the window's framebuffer changes size.
//
// Parameters:
//   - callback: function receiving the new width and height in pixels
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithResizeCallback(callback func(width, height int)) EngineBuilderOption {
	return func(e *engine) {
		e.onResize = callback
	}
}

// WithScene registers a scene at the given z-index key during engine construction.
//
// Parameters:
//   - key: the z-index determining frame order (lower goes first)
//   - s: the Scene to register
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithScene(key int, s scene.Scene) EngineBuilderOption {
	return func(e *engine) {
		e.scenes[key] = s
	}
}
