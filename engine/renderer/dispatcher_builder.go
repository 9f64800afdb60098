package renderer

import "github.com/Carmen-Shannon/oxy-scene/engine/mesh"

// DispatcherBuilderOption is a functional option for configuring a Dispatcher.
type DispatcherBuilderOption func(*dispatcherImpl)

// WithMaxBones lowers the bone capacity below MaxBones, for pipelines compiled with
// smaller bone arrays. Values outside (0, MaxBones] are ignored.
//
// Parameters:
//   - n: the bone capacity
//
// Returns:
//   - DispatcherBuilderOption: option function to apply
func WithMaxBones(n int) DispatcherBuilderOption {
	return func(d *dispatcherImpl) {
		if n > 0 && n <= MaxBones {
			d.maxBones = n
		}
	}
}

// WithDrawCallback registers a function invoked after every successful dispatch.
//
// Parameters:
//   - fn: the callback receiving the drawn instance and the path taken
//
// Returns:
//   - DispatcherBuilderOption: option function to apply
func WithDrawCallback(fn func(mi mesh.Instance, path Path)) DispatcherBuilderOption {
	return func(d *dispatcherImpl) {
		d.onDraw = fn
	}
}
