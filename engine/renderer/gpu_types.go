package renderer

import (
	"encoding/binary"
	"math"

	"github.com/Carmen-Shannon/oxy-scene/engine/light"
)

// lightBlockSize is the byte size of the light header plus every light slot.
const lightBlockSize = 16 + light.UniformSlots*16

// GPUObjectUniform is the uniform buffer layout for rigid draws.
//
// Layout (std140):
//   - offset   0: model-to-projection mat4x4<f32>
//   - offset  64: model-to-camera mat4x4<f32>
//   - offset 128: base color vec4<f32>
//   - offset 144: shininess f32 followed by 12 bytes of padding
//   - offset 160: light header (slot count, light count, ambient flag, pad)
//   - offset 176: light slots array<vec4<f32>, 17>
type GPUObjectUniform struct {
	ModelToProjection [16]float32
	ModelToCamera     [16]float32
	Color             [4]float32
	Shininess         float32
	Lights            *light.Uniforms
}

// Size returns the size of the GPUObjectUniform struct in bytes.
//
// Returns:
//   - int: the struct size in bytes
func (u *GPUObjectUniform) Size() int {
	return 160 + lightBlockSize
}

// Marshal serializes the GPUObjectUniform struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the buffer ready for GPU upload
func (u *GPUObjectUniform) Marshal() []byte {
	buf := make([]byte, u.Size())
	putMatrix(buf[0:64], u.ModelToProjection)
	putMatrix(buf[64:128], u.ModelToCamera)
	putVec4(buf[128:144], u.Color)
	binary.LittleEndian.PutUint32(buf[144:148], math.Float32bits(u.Shininess))
	putLights(buf[160:], u.Lights)
	return buf
}

// GPUSkinnedUniform is the uniform buffer layout for skinned draws.
//
// Layout (std140):
//   - offset    0: camera-to-projection mat4x4<f32>
//   - offset   64: bone count u32
//   - offset   68: shininess f32 followed by 8 bytes of padding
//   - offset   80: base color vec4<f32>
//   - offset   96: bones array<mat4x4<f32>, 64>, unused entries zeroed
//   - offset 4192: light header
//   - offset 4208: light slots array<vec4<f32>, 17>
type GPUSkinnedUniform struct {
	CameraToProjection [16]float32
	Color              [4]float32
	Shininess          float32
	Bones              [][16]float32
	Lights             *light.Uniforms
}

// Size returns the size of the GPUSkinnedUniform struct in bytes.
//
// Returns:
//   - int: the struct size in bytes
func (u *GPUSkinnedUniform) Size() int {
	return 96 + MaxBones*64 + lightBlockSize
}

// Marshal serializes the GPUSkinnedUniform struct into a byte buffer suitable for GPU upload.
// Bones past MaxBones are not written.
//
// Returns:
//   - []byte: the buffer ready for GPU upload
func (u *GPUSkinnedUniform) Marshal() []byte {
	buf := make([]byte, u.Size())
	putMatrix(buf[0:64], u.CameraToProjection)

	n := min(len(u.Bones), MaxBones)
	binary.LittleEndian.PutUint32(buf[64:68], uint32(n))
	binary.LittleEndian.PutUint32(buf[68:72], math.Float32bits(u.Shininess))
	putVec4(buf[80:96], u.Color)
	for i := range n {
		off := 96 + i*64
		putMatrix(buf[off:off+64], u.Bones[i])
	}
	putLights(buf[96+MaxBones*64:], u.Lights)
	return buf
}

// Vertex is the interleaved vertex layout consumed by the mesh adapter: position and
// normal, 24 bytes per vertex.
type Vertex struct {
	Position [3]float32
	Normal   [3]float32
}

// VertexStride is the byte size of one Vertex.
const VertexStride = 24

// MarshalVertices serializes vertices into an interleaved little-endian buffer.
//
// Parameters:
//   - vertices: the vertices to encode
//
// Returns:
//   - []byte: len(vertices)*VertexStride bytes
func MarshalVertices(vertices []Vertex) []byte {
	buf := make([]byte, len(vertices)*VertexStride)
	for i, v := range vertices {
		off := i * VertexStride
		for j := range 3 {
			binary.LittleEndian.PutUint32(buf[off+j*4:], math.Float32bits(v.Position[j]))
			binary.LittleEndian.PutUint32(buf[off+12+j*4:], math.Float32bits(v.Normal[j]))
		}
	}
	return buf
}

func putMatrix(dst []byte, m [16]float32) {
	for i, f := range m {
		binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(f))
	}
}

func putVec4(dst []byte, v [4]float32) {
	for i, f := range v {
		binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(f))
	}
}

// putLights writes the header and every slot; a nil uniforms leaves the region zeroed.
func putLights(dst []byte, lights *light.Uniforms) {
	if lights == nil {
		return
	}
	header := lights.Header()
	copy(dst[0:16], header.Marshal())
	copy(dst[16:], lights.MarshalPadded(light.UniformSlots))
}
