package renderer

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/light"
	"github.com/Carmen-Shannon/oxy-scene/engine/node"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer/material"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readFloat(buf []byte, off int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(buf[off:]))
}

func aggregatedLights(t *testing.T) *light.Uniforms {
	t.Helper()
	g := node.NewGraph()
	n, err := g.AddChild(g.Root())
	require.NoError(t, err)
	var u light.Uniforms
	require.NoError(t, u.Aggregate(g, []light.Instance{light.NewInstance(n, light.KindPoint)}, common.IdentityMatrix()))
	return &u
}

func TestGPUObjectUniformMarshal(t *testing.T) {
	lights := aggregatedLights(t)
	u := GPUObjectUniform{
		ModelToProjection: common.Translation(1, 2, 3),
		ModelToCamera:     common.Translation(4, 5, 6),
		Color:             [4]float32{0.25, 0.5, 0.75, 1},
		Shininess:         30,
		Lights:            lights,
	}
	buf := u.Marshal()
	require.Len(t, buf, u.Size())
	assert.Equal(t, 448, u.Size())

	assert.Equal(t, float32(1), readFloat(buf, 12*4))
	assert.Equal(t, float32(6), readFloat(buf, 64+14*4))
	assert.Equal(t, float32(0.75), readFloat(buf, 128+8))
	assert.Equal(t, float32(30), readFloat(buf, 144))

	assert.Equal(t, uint32(1+light.BlockSize), binary.LittleEndian.Uint32(buf[160:]))
	assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(buf[164:]))
	assert.Equal(t, uint32(0), binary.LittleEndian.Uint32(buf[168:]))
	assert.Equal(t, light.DefaultAmbient[0], readFloat(buf, 176))
}

func TestGPUSkinnedUniformMarshal(t *testing.T) {
	bones := make([][16]float32, 3)
	for i := range bones {
		bones[i] = common.Translation(float32(i+1), 0, 0)
	}
	u := GPUSkinnedUniform{
		CameraToProjection: common.IdentityMatrix(),
		Color:              [4]float32{1, 0, 0, 1},
		Shininess:          12,
		Bones:              bones,
		Lights:             aggregatedLights(t),
	}
	buf := u.Marshal()
	require.Len(t, buf, 4480)

	assert.Equal(t, uint32(3), binary.LittleEndian.Uint32(buf[64:]))
	assert.Equal(t, float32(12), readFloat(buf, 68))
	assert.Equal(t, float32(1), readFloat(buf, 80))
	assert.Equal(t, float32(2), readFloat(buf, 96+64+12*4))
	// unused bone slots stay zeroed
	assert.Equal(t, float32(0), readFloat(buf, 96+3*64))
	assert.Equal(t, uint32(5), binary.LittleEndian.Uint32(buf[96+MaxBones*64:]))
}

func TestGPUUniformWithoutLights(t *testing.T) {
	u := GPUObjectUniform{ModelToProjection: common.IdentityMatrix()}
	buf := u.Marshal()
	assert.Equal(t, make([]byte, lightBlockSize), buf[160:])
}

func TestMarshalVertices(t *testing.T) {
	buf := MarshalVertices([]Vertex{
		{Position: [3]float32{1, 2, 3}, Normal: [3]float32{0, 0, 1}},
		{Position: [3]float32{4, 5, 6}, Normal: [3]float32{0, 1, 0}},
	})
	require.Len(t, buf, 2*VertexStride)
	assert.Equal(t, float32(3), readFloat(buf, 8))
	assert.Equal(t, float32(1), readFloat(buf, 20))
	assert.Equal(t, float32(4), readFloat(buf, VertexStride))
	assert.Equal(t, float32(1), readFloat(buf, VertexStride+16))
}

func TestCubeGeometry(t *testing.T) {
	vertices, indices := Cube()
	assert.Len(t, vertices, 24)
	assert.Len(t, indices, 36)
	for _, v := range vertices {
		for _, c := range v.Position {
			assert.InDelta(t, 0.5, math.Abs(float64(c)), 1e-6)
		}
	}
	for _, i := range indices {
		assert.Less(t, int(i), len(vertices))
	}
}

func TestPassTargetRequiresOpenPass(t *testing.T) {
	target := NewPassTarget()
	_, err := target.Pass()
	assert.ErrorIs(t, err, ErrNoPass)

	m := NewWGPUMesh(target, nil, nil, 0, nil)
	assert.ErrorIs(t, m.Draw(), ErrNoPass)
	assert.Nil(t, m.Skin())
}

func TestWGPUMaterialRejectsForeignPipeline(t *testing.T) {
	mat := NewWGPUMaterial(nil, nil, NewPassTarget(), WithMaterialLabel("red"))
	err := mat.Render(stubPipeline("other"), common.IdentityMatrix(), common.IdentityMatrix(), &light.Uniforms{})
	assert.ErrorIs(t, err, ErrPipelineType)
	assert.Contains(t, err.Error(), "red")

	err = mat.RenderSkinned(&WGPUPipeline{name: "skinned"}, common.IdentityMatrix(), nil, &light.Uniforms{})
	assert.ErrorIs(t, err, ErrNoPass)
}

type stubPipeline string

func (s stubPipeline) Name() string { return string(s) }

func TestSurfaceTexturesFollowBindings(t *testing.T) {
	s := material.MakeColor([4]float32{1, 0, 0, 1}, true, true)
	slots := surfaceTextures(s)
	require.Len(t, slots, 5)

	assert.Equal(t, BindingDiffuse, slots[0].binding)
	assert.Equal(t, BindingBump, slots[4].binding)
	assert.Same(t, s.Diffuse(), slots[0].data)
	assert.Same(t, s.Ambient(), slots[1].data)
	assert.Same(t, s.Emission(), slots[2].data)
	assert.Same(t, s.Specular(), slots[3].data)
	assert.Same(t, material.ProceduralBump(), slots[4].data)
	assert.Equal(t, wgpu.TextureFormatRGBA8UnormSrgb, slots[0].format)
	assert.Equal(t, wgpu.TextureFormatRGBA8Unorm, slots[4].format)
	for _, slot := range slots {
		assert.NoError(t, validateTexture(slot), slot.slot)
	}
}

func TestValidateTexture(t *testing.T) {
	tests := []struct {
		name string
		data *common.TextureStagingData
		ok   bool
	}{
		{"nil", nil, false},
		{"zero size", &common.TextureStagingData{}, false},
		{"short", &common.TextureStagingData{Pixels: make([]byte, 12), Width: 2, Height: 2}, false},
		{"exact", &common.TextureStagingData{Pixels: make([]byte, 16), Width: 2, Height: 2}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateTexture(surfaceTexture{slot: "Diffuse", data: tt.data})
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrTextureData)
		})
	}
}

func TestSurfaceLayoutEntries(t *testing.T) {
	entries := surfaceLayoutEntries()
	require.Len(t, entries, 6)
	for i, e := range entries[:5] {
		assert.Equal(t, BindingDiffuse+uint32(i), e.Binding)
		assert.Equal(t, wgpu.TextureSampleTypeFloat, e.Texture.SampleType)
		assert.Equal(t, wgpu.ShaderStageFragment, e.Visibility)
	}
	assert.Equal(t, BindingSampler, entries[5].Binding)
	assert.Equal(t, wgpu.SamplerBindingTypeFiltering, entries[5].Sampler.Type)
}

func TestWGPUMaterialSurface(t *testing.T) {
	m := NewWGPUMaterial(nil, nil, NewPassTarget()).(*wgpuMaterialImpl)
	assert.Equal(t, [4]float32{1, 1, 1, 1}, m.color)
	assert.Equal(t, material.DefaultShininess, m.surface.Shininess())
	assert.Same(t, material.SolidTexture([4]float32{1, 1, 1, 1}), m.surface.Diffuse())

	s := material.NewSurface(material.WithShininess(8))
	m = NewWGPUMaterial(nil, nil, NewPassTarget(), WithSurface(s), WithBaseColor([4]float32{0.5, 0.5, 0.5, 1})).(*wgpuMaterialImpl)
	assert.Same(t, s, m.surface)
	assert.Equal(t, [4]float32{0.5, 0.5, 0.5, 1}, m.color)
}
