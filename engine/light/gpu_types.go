package light

import (
	"encoding/binary"
	"math"
)

// GPULightHeader is the 16-byte header written ahead of the light slots in a
// uniform buffer. It tells the shader how many slots and lights follow.
type GPULightHeader struct {
	SlotCount   uint32 // offset  0: 1 + ActiveLights*BlockSize
	LightCount  uint32 // offset  4: active non-ambient lights
	AmbientUsed uint32 // offset  8: 1 if any ambient light contributed, 0 if the default was used
	_pad        uint32 // offset 12: padding to 16 bytes
}

// Size returns the size of the GPULightHeader struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (16)
func (h *GPULightHeader) Size() int {
	return 16
}

// Marshal serializes the GPULightHeader struct into a byte buffer suitable for
// GPU upload.
//
// Returns:
//   - []byte: 16-byte buffer ready for GPU upload
func (h *GPULightHeader) Marshal() []byte {
	buf := make([]byte, 16)
	binary.LittleEndian.PutUint32(buf[0:4], h.SlotCount)
	binary.LittleEndian.PutUint32(buf[4:8], h.LightCount)
	binary.LittleEndian.PutUint32(buf[8:12], h.AmbientUsed)
	binary.LittleEndian.PutUint32(buf[12:16], 0) // padding
	return buf
}

// Header returns the GPU header describing the uniforms.
//
// Returns:
//   - GPULightHeader: the header for the current frame
func (u *Uniforms) Header() GPULightHeader {
	h := GPULightHeader{
		SlotCount:  uint32(u.count),
		LightCount: uint32(u.activeLights),
	}
	if u.ambientLights > 0 {
		h.AmbientUsed = 1
	}
	return h
}

// Marshal serializes the in-use slots as little-endian float32 vec4s (16 bytes per slot).
//
// Returns:
//   - []byte: Count()*16 bytes ready for GPU upload
func (u *Uniforms) Marshal() []byte {
	return u.MarshalPadded(u.count)
}

// MarshalPadded serializes the first slots vec4s of the buffer, zero-filling slots past
// Count(). Fixed-size uniform bindings use UniformSlots so every frame uploads the same size.
//
// Parameters:
//   - slots: the number of vec4 slots to write (clamped to UniformSlots)
//
// Returns:
//   - []byte: slots*16 bytes ready for GPU upload
func (u *Uniforms) MarshalPadded(slots int) []byte {
	slots = min(max(slots, 0), UniformSlots)
	buf := make([]byte, slots*16)
	for i := 0; i < slots && i < u.count; i++ {
		for j := range 4 {
			binary.LittleEndian.PutUint32(buf[i*16+j*4:], math.Float32bits(u.buffer[i][j]))
		}
	}
	return buf
}
