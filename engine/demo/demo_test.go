package demo

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/oxy-scene/engine/config"
	"github.com/Carmen-Shannon/oxy-scene/engine/light"
	"github.com/Carmen-Shannon/oxy-scene/engine/mesh"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer/headless"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-scene/engine/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, d *Demo) {
	t.Helper()
	s := d.Scene
	require.NoError(t, s.Render(headless.Pipeline("object"), headless.Pipeline("skinned"), s.CameraInstance(0), 16.0/9.0))
}

func TestBuildDefaultDemo(t *testing.T) {
	d, err := Build(context.Background(), config.Default())
	require.NoError(t, err)
	s := d.Scene

	assert.Equal(t, "main", s.Name())
	assert.Equal(t, 10, s.MeshInstanceCount())
	assert.Equal(t, 1, s.CameraInstanceCount())
	assert.Equal(t, 3, s.LightInstanceCount())
	assert.Equal(t, 10, d.Registry.Len(resource.KindMesh))
	assert.Equal(t, 10, d.Registry.Len(resource.KindMaterial))
	assert.Equal(t, 1, d.Registry.Len(resource.KindSkeleton))

	require.NoError(t, s.Update(0.1))
	render(t, d)
	stats := s.DispatchStats()
	assert.Equal(t, 9, stats.Rigid)
	assert.Equal(t, 1, stats.Skeletal)
	lu := s.LightUniforms()
	assert.Equal(t, 3, lu.ActiveLights())
	assert.Equal(t, light.DefaultAmbient, lu.Ambient())
}

func TestBuildAmbientAndLightCap(t *testing.T) {
	cfg := config.Default()
	cfg.Demo.PointLights = 6
	cfg.Demo.Ambient = [4]float32{0.2, 0.2, 0.2, 1}
	cfg.Demo.Skinned = 0

	d, err := Build(context.Background(), cfg)
	require.NoError(t, err)
	render(t, d)

	u := d.Scene.LightUniforms()
	assert.Equal(t, light.MaxLights, u.ActiveLights())
	assert.Equal(t, 1+light.MaxLights*light.BlockSize, u.Count())
	assert.Equal(t, [4]float32{0.2, 0.2, 0.2, 1}, u.Ambient())
}

func TestSkinnedHookPosesSkeleton(t *testing.T) {
	cfg := config.Default()
	cfg.Demo.Rigid = 0
	cfg.Demo.Bones = 4

	d, err := Build(context.Background(), cfg)
	require.NoError(t, err)
	v, ok := d.Registry.Get(resource.KindSkeleton, "skinned-0")
	require.True(t, ok)
	skel := v.(*headless.Skeleton)

	before := skel.ComputeBoneTransforms(identity(), nil)
	require.NoError(t, d.Scene.Update(1))
	after := skel.ComputeBoneTransforms(identity(), nil)
	assert.NotEqual(t, before[1], after[1])
}

func TestBuildUsesFactories(t *testing.T) {
	cfg := config.Default()
	cfg.Demo.Rigid = 2
	cfg.Demo.Skinned = 0

	var surfaces []material.Surface
	d, err := Build(context.Background(), cfg,
		WithMaterialFactory(func(name string, s material.Surface) (mesh.Material, error) {
			surfaces = append(surfaces, s)
			return headless.NewMaterial(name), nil
		}),
	)
	require.NoError(t, err)
	require.Len(t, surfaces, 2)
	assert.Equal(t, material.DefaultShininess, surfaces[0].Shininess())
	assert.Equal(t, material.ProceduralBump(), surfaces[0].Bump())
	assert.Equal(t, material.FlatNormal(), surfaces[1].Bump())
	assert.Equal(t, 2, d.Scene.MeshInstanceCount())

	surfaces = nil
	cfg.Demo.Rigid = 5
	_, err = Build(context.Background(), cfg,
		WithMaterialFactory(func(name string, s material.Surface) (mesh.Material, error) {
			surfaces = append(surfaces, s)
			return headless.NewMaterial(name), nil
		}),
	)
	require.NoError(t, err)
	require.Len(t, surfaces, 5)
	assert.Equal(t, []byte{0, 0, 0, 0}, surfaces[4].Diffuse().Pixels, "fifth mesh glows")
	assert.NotEqual(t, []byte{0, 0, 0, 0}, surfaces[4].Emission().Pixels)
	assert.Equal(t, []byte{0, 0, 0, 0}, surfaces[3].Emission().Pixels)

	boom := errors.New("out of memory")
	_, err = Build(context.Background(), cfg, WithMeshFactory(func(string, mesh.Skin) (mesh.Mesh, error) {
		return nil, boom
	}))
	assert.ErrorIs(t, err, boom)
}

func TestBuildLoadsClips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spin.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
channels:
  - target: rigid-0
    position:
      - time: 0
        value: [0, 0, 0]
      - time: 1
        value: [0, 10, 0]
`), 0o644))

	cfg := config.Default()
	cfg.Demo.Clips = []string{path}
	d, err := Build(context.Background(), cfg)
	require.NoError(t, err)

	assert.Equal(t, []string{"spin"}, d.Registry.Names(resource.KindAnimation))
	assert.Equal(t, 1, d.Scene.AnimationInstanceCount())
	require.NoError(t, d.Scene.Update(0.5))

	h, ok := d.Scene.Graph().Find("rigid-0")
	require.True(t, ok)
	local, err := d.Scene.Graph().LocalTransform(h)
	require.NoError(t, err)
	assert.InDelta(t, 5, local[13], 1e-4)
}

func TestBuildMissingClip(t *testing.T) {
	cfg := config.Default()
	cfg.Demo.Clips = []string{filepath.Join(t.TempDir(), "missing.yaml")}
	_, err := Build(context.Background(), cfg)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func identity() [16]float32 {
	return [16]float32{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}
}
