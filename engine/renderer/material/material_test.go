package material

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-scene/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeColor(t *testing.T) {
	tests := []struct {
		in   [4]float32
		want [4]byte
	}{
		{[4]float32{0, 0, 0, 0}, [4]byte{0, 0, 0, 0}},
		{[4]float32{1, 1, 1, 1}, [4]byte{255, 255, 255, 255}},
		{[4]float32{0.5, 0.5, 1, 0}, [4]byte{128, 128, 255, 0}},
		{[4]float32{-1, 2, 0.25, 0.75}, [4]byte{0, 255, 64, 191}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, EncodeColor(tt.in), "%v", tt.in)
	}
}

func TestMakeColorShinyBumpy(t *testing.T) {
	red := [4]float32{1, 0, 0, 1}
	s := MakeColor(red, true, true)

	assert.Equal(t, red, s.BaseColor())
	assert.Equal(t, []byte{255, 0, 0, 255}, s.Diffuse().Pixels)
	assert.Same(t, s.Diffuse(), s.Ambient())
	assert.Equal(t, []byte{0, 0, 0, 0}, s.Emission().Pixels)
	assert.Equal(t, []byte{128, 128, 128, 0}, s.Specular().Pixels)
	assert.Equal(t, uint32(BumpSize), s.Bump().Width)
	assert.Equal(t, DefaultShininess, s.Shininess())
}

func TestMakeColorMattFlat(t *testing.T) {
	s := MakeColor([4]float32{0.2, 0.4, 0.6, 1}, false, false)

	assert.Equal(t, []byte{51, 102, 153, 255}, s.Diffuse().Pixels)
	assert.Equal(t, []byte{0, 0, 0, 0}, s.Specular().Pixels)
	assert.Equal(t, []byte{128, 128, 255, 0}, s.Bump().Pixels)
	assert.Equal(t, uint32(1), s.Bump().Width)
	assert.Equal(t, DefaultShininess, s.Shininess())
}

func TestMakeEmissive(t *testing.T) {
	glow := SolidTexture([4]float32{1, 0.5, 0, 1})
	s := MakeEmissive(glow)

	assert.Equal(t, [4]float32{1, 1, 1, 1}, s.BaseColor())
	assert.Same(t, glow, s.Emission())
	for _, tex := range []*common.TextureStagingData{s.Diffuse(), s.Ambient(), s.Specular()} {
		assert.Equal(t, []byte{0, 0, 0, 0}, tex.Pixels)
	}
	assert.Same(t, FlatNormal(), s.Bump())
	assert.Equal(t, DefaultShininess, s.Shininess())

	dark := MakeEmissive(nil)
	assert.Equal(t, []byte{0, 0, 0, 0}, dark.Emission().Pixels)
}

func TestSolidTexturesAreShared(t *testing.T) {
	a := MakeColor([4]float32{0.1, 0.2, 0.3, 1}, false, false)
	b := MakeColor([4]float32{0.1, 0.2, 0.3, 1}, false, true)
	assert.Same(t, a.Diffuse(), b.Diffuse())
	assert.Same(t, a.Emission(), b.Emission())
	assert.NotSame(t, a.Specular(), b.Specular())
}

func TestProceduralBumpIsUnitNormals(t *testing.T) {
	tex := ProceduralBump()
	require.Len(t, tex.Pixels, BumpSize*BumpSize*4)
	assert.Same(t, tex, ProceduralBump())

	// the height field is flat where both sines vanish
	assert.Equal(t, []byte{128, 128, 255, 0}, tex.Texel(0, 0))

	for y := uint32(0); y < BumpSize; y += 7 {
		for x := uint32(0); x < BumpSize; x += 5 {
			texel := tex.Texel(x, y)
			var sum float32
			for _, c := range texel[:3] {
				n := float32(c)/255*2 - 1
				sum += n * n
			}
			assert.InDelta(t, 1, sum, 0.03, "texel (%d,%d)", x, y)
			assert.Greater(t, texel[2], byte(128), "normals face outward")
		}
	}
}

func TestNewSurfaceDefaults(t *testing.T) {
	s := NewSurface(WithName("blank"))
	assert.Equal(t, "blank", s.Name())
	assert.Equal(t, [4]float32{1, 1, 1, 1}, s.BaseColor())
	assert.Equal(t, []byte{0, 0, 0, 0}, s.Diffuse().Pixels)
	assert.Same(t, FlatNormal(), s.Bump())
	assert.Zero(t, s.Shininess())
}
