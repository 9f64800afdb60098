package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eps = 1e-4

func TestMultiplyAppliesRightOperandFirst(t *testing.T) {
	rot := RotationY(90)
	move := Translation(10, 0, 0)

	// translate, then rotate: (10,0,0) -> (0,0,-10)
	p := TransformVec4(Multiply(rot, move), [4]float32{0, 0, 0, 1})
	assert.InDelta(t, 0, p[0], eps)
	assert.InDelta(t, -10, p[2], eps)

	// rotate, then translate: origin stays at (10,0,0)
	p = TransformVec4(Multiply(move, rot), [4]float32{0, 0, 0, 1})
	assert.InDelta(t, 10, p[0], eps)
	assert.InDelta(t, 0, p[2], eps)
}

func TestInvertRigidMatchesInvert4(t *testing.T) {
	m := Multiply(Translation(3, -2, 7), Multiply(RotationX(30), RotationY(-60)))

	var full [16]float32
	require.True(t, Invert4(full[:], m[:]))
	quick := InvertRigid(m)

	assert.True(t, ApproxEqual(full, quick, eps), "full=%v quick=%v", full, quick)
	assert.True(t, ApproxEqual(IdentityMatrix(), Multiply(m, quick), eps))
}

func TestInvert4Singular(t *testing.T) {
	var zero, out [16]float32
	assert.False(t, Invert4(out[:], zero[:]))
}

func TestComposeTRSIdentityQuaternion(t *testing.T) {
	m := ComposeTRS([3]float32{1, 2, 3}, [4]float32{0, 0, 0, 1}, [3]float32{2, 2, 2})
	expected := [16]float32{2, 0, 0, 0, 0, 2, 0, 0, 0, 0, 2, 0, 1, 2, 3, 1}
	assert.Equal(t, expected, m)
}

func TestComposeTRSMatchesRotationZ(t *testing.T) {
	// 90 degrees about Z: q = (0, 0, sin45, cos45)
	q := [4]float32{0, 0, 0.70710677, 0.70710677}
	m := ComposeTRS([3]float32{}, q, [3]float32{1, 1, 1})
	assert.True(t, ApproxEqual(RotationZ(90), m, eps))
}

func TestPerspectiveDepthRange(t *testing.T) {
	var proj [16]float32
	Perspective(proj[:], 1.5707964, 1, 1, 100)

	near := TransformVec4(proj, [4]float32{0, 0, -1, 1})
	far := TransformVec4(proj, [4]float32{0, 0, -100, 1})
	assert.InDelta(t, 0, near[2]/near[3], eps)
	assert.InDelta(t, 1, far[2]/far[3], eps)
}

func TestOrthographicDepthRange(t *testing.T) {
	var proj [16]float32
	Orthographic(proj[:], -2, 2, -1, 1, 0.5, 10)

	near := TransformVec4(proj, [4]float32{2, 1, -0.5, 1})
	far := TransformVec4(proj, [4]float32{-2, -1, -10, 1})
	assert.InDelta(t, 0, near[2], eps)
	assert.InDelta(t, 1, near[0], eps)
	assert.InDelta(t, 1, far[2], eps)
	assert.InDelta(t, -1, far[1], eps)
}

func TestSliceToBytes(t *testing.T) {
	assert.Nil(t, SliceToBytes[uint32](nil))
	assert.Len(t, SliceToBytes([]float32{1, 2, 3}), 12)
}

func TestCoalesce(t *testing.T) {
	assert.Equal(t, float32(3), Coalesce[float32](0, 0, 3, 4))
	assert.Equal(t, "", Coalesce("", ""))
}

func TestTexel(t *testing.T) {
	tex := TextureStagingData{Pixels: []byte{1, 2, 3, 4, 5, 6, 7, 8}, Width: 2, Height: 1}
	assert.Equal(t, []byte{5, 6, 7, 8}, tex.Texel(1, 0))
	assert.Nil(t, tex.Texel(2, 0))
	assert.Nil(t, tex.Texel(0, 1))
}
