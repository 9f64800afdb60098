package light

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-scene/engine/node"
)

// MaxLights is the maximum number of non-ambient lights packed into a frame's
// uniforms. Once it is reached every remaining light is dropped in collection order,
// with no sorting by distance or intensity and no error.
const MaxLights = 4

// BlockSize is the number of vec4 slots each non-ambient light occupies in the
// uniform buffer (see Block for the layout).
const BlockSize = 4

// UniformSlots is the capacity of the uniform buffer in vec4 slots: one ambient
// slot followed by MaxLights blocks.
const UniformSlots = 1 + MaxLights*BlockSize

// DefaultAmbient is the ambient color used when a frame has no ambient lights.
var DefaultAmbient = [4]float32{0.5, 0.5, 0.5, 1.0}

// Uniforms is the lighting state shared by every draw call of a frame.
// Slot 0 holds the ambient color; active light i occupies slots 1+i*BlockSize
// through (i+1)*BlockSize. The zero value is an empty frame.
type Uniforms struct {
	buffer        [UniformSlots][4]float32
	count         int
	activeLights  int
	ambientLights int
}

// Aggregate rebuilds the uniforms from lights in collection order.
//
// Ambient lights are summed into slot 0. Every other light writes its Block into
// the next free block. The scan stops once MaxLights blocks are filled, so any later
// light, ambient or not, is ignored. When no ambient light was reached slot 0 falls
// back to DefaultAmbient. On error u is left unchanged.
//
// Parameters:
//   - graph: the graph resolving light node world transforms
//   - lights: the scene's light instances in collection order
//   - worldToCamera: the frame's view matrix
//
// Returns:
//   - error: an error wrapping node.ErrInvalidHandle if an active light's node is gone
func (u *Uniforms) Aggregate(graph node.Graph, lights []Instance, worldToCamera [16]float32) error {
	var next Uniforms
	var ambient [4]float32
	for _, l := range lights {
		if next.activeLights == MaxLights {
			break
		}
		if l.Kind() == KindAmbient {
			c := l.Color()
			for i := range ambient {
				ambient[i] += c[i]
			}
			next.ambientLights++
			continue
		}

		lightToWorld, err := graph.WorldTransform(l.Node())
		if err != nil {
			return fmt.Errorf("aggregate light %d: %w", next.activeLights, err)
		}
		l.WriteFragmentUniforms(next.block(next.activeLights), lightToWorld, worldToCamera)
		next.activeLights++
	}

	if next.ambientLights == 0 {
		ambient = DefaultAmbient
	}
	next.buffer[0] = ambient
	next.count = 1 + next.activeLights*BlockSize
	*u = next
	return nil
}

// Ambient returns the aggregated ambient color.
//
// Returns:
//   - [4]float32: the ambient slot
func (u *Uniforms) Ambient() [4]float32 {
	return u.buffer[0]
}

// Count returns the number of vec4 slots in use: 1 + ActiveLights()*BlockSize.
// A zero value Uniforms reports 0 until the first Aggregate.
//
// Returns:
//   - int: the uniform buffer length in vec4 slots
func (u *Uniforms) Count() int {
	return u.count
}

// ActiveLights returns how many non-ambient lights were packed.
//
// Returns:
//   - int: the active light count (at most MaxLights)
func (u *Uniforms) ActiveLights() int {
	return u.activeLights
}

// AmbientLights returns how many ambient lights contributed to the ambient slot.
//
// Returns:
//   - int: the ambient light count
func (u *Uniforms) AmbientLights() int {
	return u.ambientLights
}

// Slots returns the in-use portion of the buffer. The slice aliases the uniforms and
// must be treated as read-only.
//
// Returns:
//   - [][4]float32: the first Count() slots
func (u *Uniforms) Slots() [][4]float32 {
	return u.buffer[:u.count]
}

// Block returns a copy of active light i's block.
//
// Parameters:
//   - i: the active light index, 0 <= i < ActiveLights()
//
// Returns:
//   - Block: the light's camera-space description
func (u *Uniforms) Block(i int) Block {
	if i < 0 || i >= u.activeLights {
		panic(fmt.Sprintf("light: block index %d out of range [0,%d)", i, u.activeLights))
	}
	return *u.block(i)
}

func (u *Uniforms) block(i int) *Block {
	start := 1 + i*BlockSize
	return (*Block)(u.buffer[start : start+BlockSize])
}
