package mesh_test

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-scene/engine/mesh"
	"github.com/Carmen-Shannon/oxy-scene/engine/node"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer/headless"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInstanceRequiresMeshAndMaterial(t *testing.T) {
	assert.PanicsWithValue(t, "mesh: NewInstance requires a non-nil Mesh", func() {
		mesh.NewInstance(node.Nil, nil, headless.NewMaterial("m"))
	})
	assert.PanicsWithValue(t, "mesh: NewInstance requires a non-nil Material", func() {
		mesh.NewInstance(node.Nil, headless.NewMesh("m", nil), nil)
	})
}

func TestSkinnedNeedsSkeletonAndSkin(t *testing.T) {
	m := headless.NewMesh("body", nil)
	inst := mesh.NewInstance(node.Nil, m, headless.NewMaterial("skin"))
	assert.False(t, inst.Skinned())

	inst.SetSkeleton(headless.NewSkeleton(3))
	assert.False(t, inst.Skinned(), "skeleton without skin")

	m.SetSkin(headless.Skin(3))
	assert.True(t, inst.Skinned())

	inst.SetSkeleton(nil)
	assert.False(t, inst.Skinned(), "skin without skeleton")
}

func TestSetters(t *testing.T) {
	inst := mesh.NewInstance(node.Nil, headless.NewMesh("a", nil), headless.NewMaterial("a"))
	m := headless.NewMesh("b", nil)
	mat := headless.NewMaterial("b")
	inst.SetMesh(m)
	inst.SetMaterial(mat)
	assert.Same(t, m, inst.Mesh())
	assert.Same(t, mat, inst.Material())
	assert.Nil(t, inst.Skeleton())
	assert.Panics(t, func() { inst.SetMesh(nil) })
	assert.Panics(t, func() { inst.SetMaterial(nil) })
}

func TestUpdateHook(t *testing.T) {
	var total float32
	inst := mesh.NewInstance(node.Nil, headless.NewMesh("a", nil), headless.NewMaterial("a"),
		mesh.WithUpdateHook(func(dt float32) error {
			total += dt
			return nil
		}),
	)
	require.NoError(t, inst.Update(0.25))
	require.NoError(t, inst.Update(0.5))
	assert.Equal(t, float32(0.75), total)

	failing := mesh.NewInstance(node.Nil, headless.NewMesh("a", nil), headless.NewMaterial("a"),
		mesh.WithUpdateHook(func(float32) error { return errors.New("hook failed") }),
	)
	assert.EqualError(t, failing.Update(1), "hook failed")

	plain := mesh.NewInstance(node.Nil, headless.NewMesh("a", nil), headless.NewMaterial("a"))
	assert.NoError(t, plain.Update(1))
}
