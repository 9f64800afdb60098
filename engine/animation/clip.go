package animation

import (
	"fmt"
	"sort"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/chewxy/math32"
)

// VectorKeyframe stores a 3D vector value at a specific time.
type VectorKeyframe struct {
	// Time is the keyframe timestamp in seconds.
	Time float32 `yaml:"time"`

	// Value is the 3D vector value at this keyframe.
	Value [3]float32 `yaml:"value"`
}

// QuaternionKeyframe stores a quaternion rotation at a specific time.
type QuaternionKeyframe struct {
	// Time is the keyframe timestamp in seconds.
	Time float32 `yaml:"time"`

	// Value is the quaternion value at this keyframe (x, y, z, w).
	Value [4]float32 `yaml:"value"`
}

// Channel contains the keyframes animating a single named target.
// Keyframes must be sorted by time. A channel with no keys for a component
// writes the identity for it (zero translation, no rotation, unit scale).
type Channel struct {
	// Target is the channel name resolved by the Target (a node name for NodeTarget).
	Target string `yaml:"target"`

	// PositionKeys are keyframes for translation.
	PositionKeys []VectorKeyframe `yaml:"position,omitempty"`

	// RotationKeys are keyframes for rotation (quaternion).
	RotationKeys []QuaternionKeyframe `yaml:"rotation,omitempty"`

	// ScaleKeys are keyframes for scale.
	ScaleKeys []VectorKeyframe `yaml:"scale,omitempty"`
}

// ClipDefinition is the serializable description of a keyframe clip.
type ClipDefinition struct {
	// Name is the animation identifier.
	Name string `yaml:"name"`

	// Duration is the total length in seconds. Zero derives it from the last keyframe.
	Duration float32 `yaml:"duration,omitempty"`

	// Channels contains the per-target keyframe data.
	Channels []Channel `yaml:"channels"`
}

type clipImpl struct {
	name          string
	duration      float32
	channels      []Channel
	defaultTarget Target
}

// Clip is a keyframe Animation sampling translation, rotation and scale per channel.
type Clip interface {
	Animation

	// Channels returns a copy of the clip's channels.
	//
	// Returns:
	//   - []Channel: the channels in definition order
	Channels() []Channel
}

var _ Clip = &clipImpl{}

// NewClip builds a Clip from a definition.
//
// Parameters:
//   - def: the clip definition
//   - options: functional options (default target, duration override)
//
// Returns:
//   - Clip: the new clip
//   - error: an error if a channel has unsorted keyframes
func NewClip(def ClipDefinition, options ...ClipBuilderOption) (Clip, error) {
	c := &clipImpl{
		name:     def.Name,
		duration: def.Duration,
		channels: make([]Channel, len(def.Channels)),
	}
	copy(c.channels, def.Channels)

	for _, ch := range c.channels {
		if !sortedVectors(ch.PositionKeys) || !sortedQuaternions(ch.RotationKeys) || !sortedVectors(ch.ScaleKeys) {
			return nil, fmt.Errorf("animation: clip %q channel %q has unsorted keyframes", def.Name, ch.Target)
		}
	}
	if def.Duration == 0 {
		for _, ch := range c.channels {
			c.duration = max(c.duration, lastVectorTime(ch.PositionKeys), lastQuaternionTime(ch.RotationKeys), lastVectorTime(ch.ScaleKeys))
		}
	}

	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

func (c *clipImpl) Name() string {
	return c.name
}

func (c *clipImpl) Duration() float32 {
	return c.duration
}

func (c *clipImpl) DefaultTarget() Target {
	return c.defaultTarget
}

func (c *clipImpl) Channels() []Channel {
	out := make([]Channel, len(c.channels))
	copy(out, c.channels)
	return out
}

func (c *clipImpl) Apply(t float32, target Target) error {
	for _, ch := range c.channels {
		translation := sampleVector(ch.PositionKeys, t, [3]float32{0, 0, 0})
		rotation := sampleQuaternion(ch.RotationKeys, t)
		scale := sampleVector(ch.ScaleKeys, t, [3]float32{1, 1, 1})
		if err := target.SetChannelTransform(ch.Target, common.ComposeTRS(translation, rotation, scale)); err != nil {
			return err
		}
	}
	return nil
}

// sampleVector linearly interpolates keys at t, clamping outside the key range.
func sampleVector(keys []VectorKeyframe, t float32, fallback [3]float32) [3]float32 {
	switch {
	case len(keys) == 0:
		return fallback
	case t <= keys[0].Time:
		return keys[0].Value
	case t >= keys[len(keys)-1].Time:
		return keys[len(keys)-1].Value
	}
	i := sort.Search(len(keys), func(i int) bool { return keys[i].Time > t })
	a, b := keys[i-1], keys[i]
	f := (t - a.Time) / (b.Time - a.Time)
	var out [3]float32
	for j := range out {
		out[j] = a.Value[j] + (b.Value[j]-a.Value[j])*f
	}
	return out
}

// sampleQuaternion interpolates keys at t along the shortest arc (normalized lerp).
func sampleQuaternion(keys []QuaternionKeyframe, t float32) [4]float32 {
	switch {
	case len(keys) == 0:
		return [4]float32{0, 0, 0, 1}
	case t <= keys[0].Time:
		return normalize4(keys[0].Value)
	case t >= keys[len(keys)-1].Time:
		return normalize4(keys[len(keys)-1].Value)
	}
	i := sort.Search(len(keys), func(i int) bool { return keys[i].Time > t })
	a, b := keys[i-1].Value, keys[i].Value
	f := (t - keys[i-1].Time) / (keys[i].Time - keys[i-1].Time)

	dot := a[0]*b[0] + a[1]*b[1] + a[2]*b[2] + a[3]*b[3]
	sign := float32(1)
	if dot < 0 {
		sign = -1
	}
	var out [4]float32
	for j := range out {
		out[j] = a[j]*(1-f) + sign*b[j]*f
	}
	return normalize4(out)
}

func normalize4(q [4]float32) [4]float32 {
	l := math32.Sqrt(q[0]*q[0] + q[1]*q[1] + q[2]*q[2] + q[3]*q[3])
	if l == 0 {
		return [4]float32{0, 0, 0, 1}
	}
	return [4]float32{q[0] / l, q[1] / l, q[2] / l, q[3] / l}
}

func sortedVectors(keys []VectorKeyframe) bool {
	return sort.SliceIsSorted(keys, func(i, j int) bool { return keys[i].Time < keys[j].Time })
}

func sortedQuaternions(keys []QuaternionKeyframe) bool {
	return sort.SliceIsSorted(keys, func(i, j int) bool { return keys[i].Time < keys[j].Time })
}

func lastVectorTime(keys []VectorKeyframe) float32 {
	if len(keys) == 0 {
		return 0
	}
	return keys[len(keys)-1].Time
}

func lastQuaternionTime(keys []QuaternionKeyframe) float32 {
	if len(keys) == 0 {
		return 0
	}
	return keys[len(keys)-1].Time
}
