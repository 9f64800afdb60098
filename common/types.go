// package common contains common types and helpers that are used throughout this engine. They are not interface-wrapped structs, just plain
// structs and functions that express commonly used data-types and matrix math.
package common

// TextureStagingData holds RGBA pixel data for a texture slot pending GPU upload.
// Materials produced by the default material factory describe each slot with one of these.
type TextureStagingData struct {
	// Pixels is the byte slice representing the actual pixel data for the texture. It should be in RGBA format, with 4 bytes per pixel.
	Pixels []byte
	// Width is the width of the texture in pixels. This is required to correctly create the GPU texture and interpret the pixel data.
	Width uint32
	// Height is the height of the texture in pixels. This is required to correctly create the GPU texture and interpret the pixel data.
	Height uint32
}

// Texel returns the RGBA bytes of the pixel at (x, y), or nil when out of range.
//
// Parameters:
//   - x, y: pixel coordinates
//
// Returns:
//   - []byte: a 4-byte view into Pixels, or nil
func (t *TextureStagingData) Texel(x, y uint32) []byte {
	if x >= t.Width || y >= t.Height {
		return nil
	}
	i := (y*t.Width + x) * 4
	if int(i+4) > len(t.Pixels) {
		return nil
	}
	return t.Pixels[i : i+4]
}
