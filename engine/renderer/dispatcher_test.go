package renderer_test

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/camera"
	"github.com/Carmen-Shannon/oxy-scene/engine/light"
	"github.com/Carmen-Shannon/oxy-scene/engine/mesh"
	"github.com/Carmen-Shannon/oxy-scene/engine/node"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer/headless"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	graph  node.Graph
	frame  *renderer.Frame
	target node.Handle
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	g := node.NewGraph()
	camNode, err := g.AddChild(g.Root(), node.WithLocalTransform(common.Translation(0, 0, 10)))
	require.NoError(t, err)
	target, err := g.AddChild(g.Root(), node.WithLocalTransform(common.Translation(1, 2, 3)))
	require.NoError(t, err)

	cam := camera.NewInstance(camNode)
	cameraToWorld, err := g.WorldTransform(camNode)
	require.NoError(t, err)
	cam.SetWorldTransform(cameraToWorld, 1)

	var lights light.Uniforms
	require.NoError(t, lights.Aggregate(g, nil, cam.WorldToCamera()))

	return &fixture{
		graph:  g,
		target: target,
		frame: &renderer.Frame{
			Graph:              g,
			Camera:             cam,
			CameraToProjection: cam.CameraToProjection(),
			Lights:             &lights,
			ObjectPipeline:     headless.Pipeline("object"),
			SkinnedPipeline:    headless.Pipeline("skinned"),
		},
	}
}

func TestDispatchRigid(t *testing.T) {
	f := newFixture(t)
	m := headless.NewMesh("cube", nil)
	mat := headless.NewMaterial("flat")
	mi := mesh.NewInstance(f.target, m, mat)

	d := renderer.NewDispatcher()
	path, err := d.Dispatch(f.frame, mi)
	require.NoError(t, err)
	assert.Equal(t, renderer.PathRigid, path)

	calls := mat.Calls()
	require.Len(t, calls, 1)
	assert.False(t, calls[0].Skinned)
	assert.Equal(t, "object", calls[0].Pipeline)
	assert.Equal(t, 1, calls[0].UniformCount)
	assert.Equal(t, light.DefaultAmbient, calls[0].Ambient)
	assert.Equal(t, 1, m.Draws())

	// model (1,2,3) seen from a camera at z=10
	assert.True(t, common.ApproxEqual(common.Translation(1, 2, -7), calls[0].ModelToCamera, 1e-5))
	want := common.Multiply(f.frame.CameraToProjection, calls[0].ModelToCamera)
	assert.True(t, common.ApproxEqual(want, calls[0].ModelToProjection, 1e-5))

	assert.Equal(t, renderer.Stats{Rigid: 1}, d.Stats())
}

func TestDispatchSkeletonWithoutSkinIsRigid(t *testing.T) {
	f := newFixture(t)
	mat := headless.NewMaterial("flat")
	mi := mesh.NewInstance(f.target, headless.NewMesh("cube", nil), mat, mesh.WithSkeleton(headless.NewSkeleton(3)))

	path, err := renderer.NewDispatcher().Dispatch(f.frame, mi)
	require.NoError(t, err)
	assert.Equal(t, renderer.PathRigid, path)
}

func TestDispatchSkeletal(t *testing.T) {
	f := newFixture(t)
	m := headless.NewMesh("fox", headless.Skin(24))
	mat := headless.NewMaterial("fur")
	mi := mesh.NewInstance(f.target, m, mat, mesh.WithSkeleton(headless.NewSkeleton(24)))

	d := renderer.NewDispatcher()
	path, err := d.Dispatch(f.frame, mi)
	require.NoError(t, err)
	assert.Equal(t, renderer.PathSkeletal, path)

	calls := mat.Calls()
	require.Len(t, calls, 1)
	assert.True(t, calls[0].Skinned)
	assert.Equal(t, "skinned", calls[0].Pipeline)
	assert.Equal(t, 24, calls[0].Bones)
	assert.Equal(t, f.frame.CameraToProjection, calls[0].CameraToProjection)
	assert.Equal(t, 1, m.Draws())
	assert.Equal(t, renderer.Stats{Skeletal: 1}, d.Stats())
}

func TestDispatchBoneLimit(t *testing.T) {
	tests := []struct {
		name    string
		bones   int
		wantErr bool
	}{
		{"below limit", renderer.MaxBones - 1, false},
		{"at limit", renderer.MaxBones, true},
		{"above limit", renderer.MaxBones + 10, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			m := headless.NewMesh("rig", headless.Skin(tt.bones))
			mat := headless.NewMaterial("rig")
			mi := mesh.NewInstance(f.target, m, mat, mesh.WithSkeleton(headless.NewSkeleton(tt.bones)))

			_, err := renderer.NewDispatcher().Dispatch(f.frame, mi)
			if !tt.wantErr {
				require.NoError(t, err)
				assert.Equal(t, 1, m.Draws())
				return
			}
			assert.ErrorIs(t, err, renderer.ErrBoneLimit)
			assert.Empty(t, mat.Calls())
			assert.Zero(t, m.Draws())
		})
	}
}

func TestDispatchWithMaxBones(t *testing.T) {
	f := newFixture(t)
	mi := mesh.NewInstance(f.target, headless.NewMesh("rig", headless.Skin(16)), headless.NewMaterial("rig"),
		mesh.WithSkeleton(headless.NewSkeleton(16)))

	_, err := renderer.NewDispatcher(renderer.WithMaxBones(16)).Dispatch(f.frame, mi)
	assert.ErrorIs(t, err, renderer.ErrBoneLimit)
}

func TestDispatchBoneLimitUsesSkeletonBoneCount(t *testing.T) {
	tests := []struct {
		name      string
		skeleton  int
		skin      int
		wantErr   bool
		wantBones int
	}{
		{"large skeleton small skin", 100, 10, true, 0},
		{"skeleton at limit", renderer.MaxBones, 1, true, 0},
		{"small skeleton large skin", 8, 100, false, 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			m := headless.NewMesh("rig", headless.Skin(tt.skin))
			mat := headless.NewMaterial("rig")
			mi := mesh.NewInstance(f.target, m, mat, mesh.WithSkeleton(headless.NewSkeleton(tt.skeleton)))

			path, err := renderer.NewDispatcher().Dispatch(f.frame, mi)
			assert.Equal(t, renderer.PathSkeletal, path)
			if tt.wantErr {
				assert.ErrorIs(t, err, renderer.ErrBoneLimit)
				assert.Empty(t, mat.Calls())
				assert.Zero(t, m.Draws())
				return
			}
			require.NoError(t, err)
			calls := mat.Calls()
			require.Len(t, calls, 1)
			assert.Equal(t, tt.wantBones, calls[0].Bones)
		})
	}
}

// shortSkeleton claims more bones than it computes.
type shortSkeleton struct{ *headless.Skeleton }

func (s shortSkeleton) ComputeBoneTransforms(modelToCamera [16]float32, skin mesh.Skin) [][16]float32 {
	return s.Skeleton.ComputeBoneTransforms(modelToCamera, skin)[:1]
}

func TestDispatchRejectsShortBoneTransforms(t *testing.T) {
	f := newFixture(t)
	m := headless.NewMesh("rig", headless.Skin(4))
	mat := headless.NewMaterial("rig")
	mi := mesh.NewInstance(f.target, m, mat, mesh.WithSkeleton(shortSkeleton{headless.NewSkeleton(4)}))

	_, err := renderer.NewDispatcher().Dispatch(f.frame, mi)
	require.Error(t, err)
	assert.NotErrorIs(t, err, renderer.ErrBoneLimit)
	assert.Empty(t, mat.Calls())
	assert.Zero(t, m.Draws())
}

func TestDispatchSwitchesPathAtRuntime(t *testing.T) {
	f := newFixture(t)
	m := headless.NewMesh("fox", nil)
	mat := headless.NewMaterial("fur")
	mi := mesh.NewInstance(f.target, m, mat, mesh.WithSkeleton(headless.NewSkeleton(4)))
	d := renderer.NewDispatcher()

	path, err := d.Dispatch(f.frame, mi)
	require.NoError(t, err)
	assert.Equal(t, renderer.PathRigid, path)

	m.SetSkin(headless.Skin(4))
	path, err = d.Dispatch(f.frame, mi)
	require.NoError(t, err)
	assert.Equal(t, renderer.PathSkeletal, path)

	mi.SetSkeleton(nil)
	path, err = d.Dispatch(f.frame, mi)
	require.NoError(t, err)
	assert.Equal(t, renderer.PathRigid, path)

	rigid, skinned := mat.Counts()
	assert.Equal(t, 2, rigid)
	assert.Equal(t, 1, skinned)
	assert.Equal(t, 3, m.Draws())
	assert.Equal(t, 3, d.Stats().Total())

	d.BeginFrame()
	assert.Zero(t, d.Stats().Total())
}

func TestDispatchStaleNode(t *testing.T) {
	f := newFixture(t)
	m := headless.NewMesh("cube", nil)
	mi := mesh.NewInstance(f.target, m, headless.NewMaterial("flat"))
	require.NoError(t, f.graph.Remove(f.target))

	_, err := renderer.NewDispatcher().Dispatch(f.frame, mi)
	assert.ErrorIs(t, err, node.ErrInvalidHandle)
	assert.Zero(t, m.Draws())
}

func TestDispatchDrawCallback(t *testing.T) {
	f := newFixture(t)
	mi := mesh.NewInstance(f.target, headless.NewMesh("cube", nil), headless.NewMaterial("flat"))

	var seen []renderer.Path
	d := renderer.NewDispatcher(renderer.WithDrawCallback(func(got mesh.Instance, path renderer.Path) {
		assert.Same(t, mi, got)
		seen = append(seen, path)
	}))
	_, err := d.Dispatch(f.frame, mi)
	require.NoError(t, err)
	assert.Equal(t, []renderer.Path{renderer.PathRigid}, seen)
	assert.Equal(t, "rigid", seen[0].String())
}
