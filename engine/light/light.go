package light

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/node"
)

// Kind identifies the kind of light source.
type Kind int

const (
	// KindAmbient represents light that reaches every surface equally regardless of
	// direction or distance. Ambient lights are summed into the ambient slot of the
	// frame's light uniforms instead of taking a light block.
	KindAmbient Kind = iota

	// KindDirectional represents a light with no position, only direction.
	// Used for large distant sources like the sun or moon. Affects all fragments
	// uniformly with no distance attenuation.
	KindDirectional

	// KindPoint represents a light that emits in all directions from a position.
	// Attenuates with distance up to a configurable range.
	KindPoint

	// KindSpot represents a light that emits in a cone from a position along a direction.
	// Attenuates with both distance and angle from the cone axis, controlled by inner and
	// outer cone angles.
	KindSpot
)

// String returns the lowercase name of the light kind.
func (k Kind) String() string {
	switch k {
	case KindAmbient:
		return "ambient"
	case KindDirectional:
		return "directional"
	case KindPoint:
		return "point"
	case KindSpot:
		return "spot"
	default:
		return "unknown"
	}
}

// ParseKind converts a lowercase kind name back to a Kind.
//
// Parameters:
//   - s: the kind name ("ambient", "directional", "point" or "spot")
//
// Returns:
//   - Kind: the parsed kind
//   - bool: false if s names no kind
func ParseKind(s string) (Kind, bool) {
	for k := KindAmbient; k <= KindSpot; k++ {
		if k.String() == s {
			return k, true
		}
	}
	return KindDirectional, false
}

// Block is the fixed-size uniform fragment describing one non-ambient light in camera space.
//
// Layout:
//
//	[0] position (x, y, z, 1) for point and spot lights; the light's +Z axis as a
//	    point at infinity (x, y, z, 0) for directional lights
//	[1] light +Z axis (x, y, z, 0), the cone axis of spot lights
//	[2] color (r, g, b, a)
//	[3] (kind, range, cos inner cone, cos outer cone)
type Block [BlockSize][4]float32

type lightImpl struct {
	mu *sync.Mutex

	node       node.Handle
	kind       Kind
	color      [4]float32
	lightRange float32
	innerCone  float32 // stored as cos(angle in radians)
	outerCone  float32 // stored as cos(angle in radians)
}

// Instance attaches a light source to a node of the scene graph.
//
// The light's position is its node's world origin and its direction is the node's +Z
// axis. Ambient lights ignore both. Every frame the light aggregator converts each
// non-ambient light into a camera-space Block with WriteFragmentUniforms.
type Instance interface {
	// Node returns the handle of the node this light is attached to.
	//
	// Returns:
	//   - node.Handle: the light node
	Node() node.Handle

	// Kind returns the kind of light source.
	//
	// Returns:
	//   - Kind: ambient, directional, point or spot
	Kind() Kind

	// Color returns the RGBA color of the light.
	//
	// Returns:
	//   - [4]float32: color as (r, g, b, a)
	Color() [4]float32

	// Range returns the maximum attenuation distance for point and spot lights.
	//
	// Returns:
	//   - float32: the range value
	Range() float32

	// InnerCone returns the cosine of the inner cone half-angle for spot lights.
	//
	// Returns:
	//   - float32: cos(inner half-angle)
	InnerCone() float32

	// OuterCone returns the cosine of the outer cone half-angle for spot lights.
	//
	// Returns:
	//   - float32: cos(outer half-angle)
	OuterCone() float32

	// SetKind changes the kind of light source.
	//
	// Parameters:
	//   - kind: the new kind
	SetKind(kind Kind)

	// SetColor sets the RGBA color of the light.
	//
	// Parameters:
	//   - r, g, b, a: color components
	SetColor(r, g, b, a float32)

	// SetRange sets the maximum attenuation distance.
	//
	// Parameters:
	//   - lightRange: the range value
	SetRange(lightRange float32)

	// SetSpotCone sets the inner and outer cone half-angles for spot lights.
	// Angles are specified in degrees and stored internally as cosines.
	//
	// Parameters:
	//   - innerDeg: inner cone half-angle in degrees
	//   - outerDeg: outer cone half-angle in degrees
	SetSpotCone(innerDeg, outerDeg float32)

	// WriteFragmentUniforms writes the camera-space description of the light into dst.
	//
	// Parameters:
	//   - dst: the block to fill
	//   - lightToWorld: the world transform of the light's node
	//   - worldToCamera: the frame's view matrix
	WriteFragmentUniforms(dst *Block, lightToWorld, worldToCamera [16]float32)
}

var _ Instance = &lightImpl{}

// NewInstance creates a light of the given kind attached to n, white and with
// sensible defaults, then applies the provided options.
//
// Parameters:
//   - n: the node carrying the light
//   - kind: the kind of light to create
//   - opts: variadic list of LightBuilderOption functions to configure the light
//
// Returns:
//   - Instance: a new light instance
func NewInstance(n node.Handle, kind Kind, opts ...LightBuilderOption) Instance {
	l := &lightImpl{
		mu:         &sync.Mutex{},
		node:       n,
		kind:       kind,
		color:      [4]float32{1, 1, 1, 1},
		lightRange: 10.0,
		innerCone:  0.9063, // cos(25°)
		outerCone:  0.8192, // cos(35°)
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *lightImpl) Node() node.Handle {
	return l.node
}

func (l *lightImpl) Kind() Kind {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.kind
}

func (l *lightImpl) Color() [4]float32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.color
}

func (l *lightImpl) Range() float32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lightRange
}

func (l *lightImpl) InnerCone() float32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.innerCone
}

func (l *lightImpl) OuterCone() float32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.outerCone
}

func (l *lightImpl) SetKind(kind Kind) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.kind = kind
}

func (l *lightImpl) SetColor(r, g, b, a float32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.color = [4]float32{r, g, b, a}
}

func (l *lightImpl) SetRange(lightRange float32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lightRange = lightRange
}

func (l *lightImpl) SetSpotCone(innerDeg, outerDeg float32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.innerCone = cosDeg(innerDeg)
	l.outerCone = cosDeg(outerDeg)
}

func (l *lightImpl) WriteFragmentUniforms(dst *Block, lightToWorld, worldToCamera [16]float32) {
	l.mu.Lock()
	defer l.mu.Unlock()

	lightToCamera := common.Multiply(worldToCamera, lightToWorld)
	axis := common.TransformVec4(lightToCamera, [4]float32{0, 0, 1, 0})

	if l.kind == KindDirectional {
		dst[0] = axis
	} else {
		dst[0] = common.TransformVec4(lightToCamera, [4]float32{0, 0, 0, 1})
	}
	dst[1] = axis
	dst[2] = l.color
	dst[3] = [4]float32{float32(l.kind), l.lightRange, l.innerCone, l.outerCone}
}
