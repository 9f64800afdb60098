package animation

import (
	"errors"
	"fmt"
	"sync"

	"github.com/chewxy/math32"
)

// ErrUnknownChannel is returned by a Target asked to drive a channel it has no binding for.
var ErrUnknownChannel = errors.New("animation: unknown channel")

// Target receives the values produced by an Animation.
// Channels are identified by name; a scene-graph target maps them to node local transforms.
type Target interface {
	// SetChannelTransform writes an animated local transform to a channel.
	//
	// Parameters:
	//   - channel: the channel name
	//   - local: the sampled local-to-parent transform (column-major)
	//
	// Returns:
	//   - error: ErrUnknownChannel if the target has no binding for channel
	SetChannelTransform(channel string, local [16]float32) error
}

// Animation is a playable animation resource. It owns its curves and knows how to
// evaluate them at a point in time; playback state lives in an Instance.
type Animation interface {
	// Name returns the resource name.
	//
	// Returns:
	//   - string: the animation name
	Name() string

	// Duration returns the length of the animation in seconds.
	//
	// Returns:
	//   - float32: the duration in seconds
	Duration() float32

	// DefaultTarget returns the target embedded with the animation, used when an
	// Instance is played without an explicit target. May be nil.
	//
	// Returns:
	//   - Target: the embedded target or nil
	DefaultTarget() Target

	// Apply evaluates every channel at time t and writes the results to target.
	//
	// Parameters:
	//   - t: the playback time in seconds
	//   - target: the receiver of the sampled values
	//
	// Returns:
	//   - error: the first error returned by target
	Apply(t float32, target Target) error
}

type instanceImpl struct {
	mu *sync.Mutex

	animation Animation
	target    Target
	looping   bool
	speed     float32
	elapsed   float32
}

// Instance is one playback of an Animation: it tracks elapsed time and drives the
// animation's target each update.
type Instance interface {
	// Animation returns the animation being played.
	//
	// Returns:
	//   - Animation: the animation resource
	Animation() Animation

	// Target returns the explicit target, or nil when the animation's default target is used.
	//
	// Returns:
	//   - Target: the explicit target or nil
	Target() Target

	// Looping reports whether playback wraps at the end of the animation.
	//
	// Returns:
	//   - bool: true if looping
	Looping() bool

	// SetLooping changes the looping flag.
	//
	// Parameters:
	//   - looping: true to wrap at the end
	SetLooping(looping bool)

	// Speed returns the playback speed multiplier.
	//
	// Returns:
	//   - float32: the speed multiplier (1.0 = normal)
	Speed() float32

	// SetSpeed sets the playback speed multiplier.
	//
	// Parameters:
	//   - speed: the multiplier (1.0 = normal, 0.5 = half speed)
	SetSpeed(speed float32)

	// Elapsed returns the current playback time in seconds.
	//
	// Returns:
	//   - float32: elapsed time
	Elapsed() float32

	// SetElapsed jumps playback to t seconds. Nothing is applied until the next Update.
	//
	// Parameters:
	//   - t: the playback time in seconds
	SetElapsed(t float32)

	// Finished reports whether a non-looping playback has reached the end.
	//
	// Returns:
	//   - bool: true once elapsed time reaches the duration without looping
	Finished() bool

	// Update advances playback by deltaTime and writes the sampled values to the
	// target, mutating the bound node transforms in place. Looping playback wraps
	// by the duration; otherwise time clamps at the end.
	//
	// Parameters:
	//   - deltaTime: the frame time in seconds
	//
	// Returns:
	//   - error: any error produced while applying the animation
	Update(deltaTime float32) error
}

var _ Instance = &instanceImpl{}

// NewInstance creates a playback of anim. A nil target defers to anim.DefaultTarget().
//
// Parameters:
//   - anim: the animation to play (must not be nil)
//   - target: the explicit target, or nil
//   - looping: true to wrap at the end
//   - options: functional options to configure the instance
//
// Returns:
//   - Instance: the newly created instance
func NewInstance(anim Animation, target Target, looping bool, options ...InstanceBuilderOption) Instance {
	if anim == nil {
		panic("animation: NewInstance requires a non-nil Animation")
	}
	i := &instanceImpl{
		mu:        &sync.Mutex{},
		animation: anim,
		target:    target,
		looping:   looping,
		speed:     1.0,
	}
	for _, opt := range options {
		opt(i)
	}
	return i
}

func (i *instanceImpl) Animation() Animation {
	return i.animation
}

func (i *instanceImpl) Target() Target {
	return i.target
}

func (i *instanceImpl) Looping() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.looping
}

func (i *instanceImpl) SetLooping(looping bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.looping = looping
}

func (i *instanceImpl) Speed() float32 {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.speed
}

func (i *instanceImpl) SetSpeed(speed float32) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.speed = speed
}

func (i *instanceImpl) Elapsed() float32 {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.elapsed
}

func (i *instanceImpl) SetElapsed(t float32) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.elapsed = t
}

func (i *instanceImpl) Finished() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return !i.looping && i.elapsed >= i.animation.Duration()
}

func (i *instanceImpl) Update(deltaTime float32) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.elapsed += deltaTime * i.speed

	duration := i.animation.Duration()
	if duration > 0 {
		if i.looping {
			if i.elapsed >= duration || i.elapsed < 0 {
				i.elapsed = math32.Mod(i.elapsed, duration)
				if i.elapsed < 0 {
					i.elapsed += duration
				}
			}
		} else {
			i.elapsed = min(max(i.elapsed, 0), duration)
		}
	}

	target := i.target
	if target == nil {
		target = i.animation.DefaultTarget()
	}
	if target == nil {
		return nil
	}
	if err := i.animation.Apply(i.elapsed, target); err != nil {
		return fmt.Errorf("animation %q: %w", i.animation.Name(), err)
	}
	return nil
}
