package material

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/chewxy/math32"
)

// BumpSize is the edge length in pixels of the procedural bump map.
const BumpSize = 64

// bumpPeriod is the wavelength of the procedural bump pattern in pixels.
const bumpPeriod = 16

var (
	solidMu    sync.Mutex
	solidCache = make(map[[4]byte]*common.TextureStagingData)

	bumpOnce sync.Once
	bumpTex  *common.TextureStagingData
)

// EncodeColor converts a float RGBA color to bytes, rounding to nearest and clamping
// each component to [0, 1] first.
//
// Parameters:
//   - c: the RGBA color
//
// Returns:
//   - [4]byte: the encoded texel
func EncodeColor(c [4]float32) [4]byte {
	var out [4]byte
	for i, v := range c {
		v = math32.Max(0, math32.Min(1, v))
		out[i] = uint8(v*255 + 0.5)
	}
	return out
}

// SolidTexture returns a 1x1 texture of color. Equal encoded colors share one
// staging buffer, which callers must not modify.
//
// Parameters:
//   - color: the RGBA color
//
// Returns:
//   - *common.TextureStagingData: the shared 1x1 texture
func SolidTexture(color [4]float32) *common.TextureStagingData {
	texel := EncodeColor(color)

	solidMu.Lock()
	defer solidMu.Unlock()
	if tex, ok := solidCache[texel]; ok {
		return tex
	}
	tex := &common.TextureStagingData{
		Pixels: texel[:],
		Width:  1,
		Height: 1,
	}
	solidCache[texel] = tex
	return tex
}

// FlatNormal returns the 1x1 normal map pointing straight out of the surface.
//
// Returns:
//   - *common.TextureStagingData: the shared flat normal texture
func FlatNormal() *common.TextureStagingData {
	return SolidTexture([4]float32{0.5, 0.5, 1, 0})
}

// ProceduralBump returns a BumpSize x BumpSize tangent-space normal map of a tiling
// egg-crate height field. The map is generated once and shared.
//
// Returns:
//   - *common.TextureStagingData: the shared bump texture
func ProceduralBump() *common.TextureStagingData {
	bumpOnce.Do(func() {
		const amplitude = 0.5
		k := 2 * math32.Pi / bumpPeriod
		pixels := make([]byte, BumpSize*BumpSize*4)
		for y := range BumpSize {
			for x := range BumpSize {
				sx, cx := math32.Sincos(k * float32(x))
				sy, cy := math32.Sincos(k * float32(y))
				// gradient of amplitude*sin(kx)*sin(ky)
				dx := amplitude * k * cx * sy
				dy := amplitude * k * sx * cy
				inv := 1 / math32.Sqrt(dx*dx+dy*dy+1)
				texel := EncodeColor([4]float32{
					-dx*inv*0.5 + 0.5,
					-dy*inv*0.5 + 0.5,
					inv*0.5 + 0.5,
					0,
				})
				copy(pixels[(y*BumpSize+x)*4:], texel[:])
			}
		}
		bumpTex = &common.TextureStagingData{
			Pixels: pixels,
			Width:  BumpSize,
			Height: BumpSize,
		}
	})
	return bumpTex
}
