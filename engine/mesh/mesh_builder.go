package mesh

// InstanceBuilderOption is a functional option for configuring a mesh Instance.
type InstanceBuilderOption func(*instanceImpl)

// WithSkeleton attaches a skeleton. Instances whose mesh also carries a skin render
// through the skeletal path.
//
// Parameters:
//   - s: the skeleton
//
// Returns:
//   - InstanceBuilderOption: option function to apply
func WithSkeleton(s Skeleton) InstanceBuilderOption {
	return func(i *instanceImpl) {
		i.skeleton = s
	}
}

// WithUpdateHook registers a function run once per frame during the scene's update phase.
//
// Parameters:
//   - hook: the per-frame hook
//
// Returns:
//   - InstanceBuilderOption: option function to apply
func WithUpdateHook(hook UpdateHook) InstanceBuilderOption {
	return func(i *instanceImpl) {
		i.onUpdate = hook
	}
}
