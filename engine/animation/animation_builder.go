package animation

// InstanceBuilderOption is a functional option for configuring an animation Instance.
type InstanceBuilderOption func(*instanceImpl)

// WithSpeed sets the playback speed multiplier.
//
// Parameters:
//   - speed: the speed multiplier (1.0 = normal, 0.5 = half speed)
//
// Returns:
//   - InstanceBuilderOption: option function to apply
func WithSpeed(speed float32) InstanceBuilderOption {
	return func(i *instanceImpl) {
		i.speed = speed
	}
}

// WithStartTime starts playback at t seconds instead of zero.
//
// Parameters:
//   - t: the initial playback time in seconds
//
// Returns:
//   - InstanceBuilderOption: option function to apply
func WithStartTime(t float32) InstanceBuilderOption {
	return func(i *instanceImpl) {
		i.elapsed = t
	}
}

// ClipBuilderOption is a functional option for configuring a Clip.
type ClipBuilderOption func(*clipImpl)

// WithDefaultTarget embeds the target a Clip drives when played without an explicit one.
//
// Parameters:
//   - target: the embedded target
//
// Returns:
//   - ClipBuilderOption: option function to apply
func WithDefaultTarget(target Target) ClipBuilderOption {
	return func(c *clipImpl) {
		c.defaultTarget = target
	}
}

// WithDuration overrides the duration derived from the last keyframe.
//
// Parameters:
//   - duration: the clip length in seconds
//
// Returns:
//   - ClipBuilderOption: option function to apply
func WithDuration(duration float32) ClipBuilderOption {
	return func(c *clipImpl) {
		c.duration = duration
	}
}
