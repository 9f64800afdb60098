package resource

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/oxy-scene/engine/animation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClip(t *testing.T, name string) animation.Clip {
	t.Helper()
	clip, err := animation.NewClip(animation.ClipDefinition{Name: name, Duration: 1})
	require.NoError(t, err)
	return clip
}

func TestRegistryPreservesOrder(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"walk", "run", "idle"} {
		require.NoError(t, r.Add(KindAnimation, name, testClip(t, name)))
	}
	require.NoError(t, r.Add(KindMesh, "walk", "mesh data"))

	assert.Equal(t, []string{"walk", "run", "idle"}, r.Names(KindAnimation))
	anims := r.Animations()
	require.Len(t, anims, 3)
	assert.Equal(t, "run", anims[1].Name())
	assert.Len(t, r.FindAll(KindAnimation), 3)
	assert.Equal(t, 1, r.Len(KindMesh))
	assert.Zero(t, r.Len(KindSkeleton))

	v, ok := r.Get(KindMesh, "walk")
	require.True(t, ok)
	assert.Equal(t, "mesh data", v)
	_, ok = r.Get(KindMaterial, "walk")
	assert.False(t, ok)
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Add(KindMaterial, "red", 1))
	err := r.Add(KindMaterial, "red", 2)
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.Contains(t, err.Error(), "material")
}

func TestRegistryPanicsOnBadValues(t *testing.T) {
	r := NewRegistry()
	assert.Panics(t, func() { _ = r.Add(KindMesh, "nil", nil) })
	assert.Panics(t, func() { _ = r.Add(KindAnimation, "str", "not an animation") })
}

func writeClip(t *testing.T, dir, file, body string) string {
	t.Helper()
	path := filepath.Join(dir, file)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadClipsRegistersInPathOrder(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for i := range 12 {
		paths = append(paths, writeClip(t, dir, fmt.Sprintf("clip%02d.yaml", i), fmt.Sprintf(`
channels:
  - target: bone%d
    position:
      - time: 0
        value: [0, 0, 0]
      - time: %d
        value: [1, 0, 0]
`, i, i+1)))
	}
	named := writeClip(t, dir, "named.yml", "name: wave\nduration: 3\nchannels: []\n")
	paths = append(paths, named)

	r := NewRegistry()
	clips, err := NewLoader(WithWorkers(4)).LoadClips(context.Background(), r, nil, paths...)
	require.NoError(t, err)
	require.Len(t, clips, 13)

	names := r.Names(KindAnimation)
	require.Len(t, names, 13)
	for i := range 12 {
		assert.Equal(t, fmt.Sprintf("clip%02d", i), names[i])
		assert.Equal(t, float32(i+1), clips[i].Duration())
	}
	assert.Equal(t, "wave", names[12])
	assert.Equal(t, float32(3), clips[12].Duration())
}

type nopTarget struct{}

func (nopTarget) SetChannelTransform(string, [16]float32) error { return nil }

func TestLoadClipsAttachesDefaultTarget(t *testing.T) {
	path := writeClip(t, t.TempDir(), "a.yaml", "channels: []\n")
	clips, err := LoadClips(context.Background(), NewRegistry(), nopTarget{}, path)
	require.NoError(t, err)
	assert.Equal(t, nopTarget{}, clips[0].DefaultTarget())
}

func TestLoadClipsFailsAtomically(t *testing.T) {
	dir := t.TempDir()
	good := writeClip(t, dir, "good.yaml", "channels: []\n")
	bad := writeClip(t, dir, "bad.yaml", "channels: {oops")
	missing := filepath.Join(dir, "missing.yaml")

	r := NewRegistry()
	_, err := NewLoader(WithWorkers(2)).LoadClips(context.Background(), r, nil, good, bad, missing)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, err.Error(), "bad.yaml")
	assert.Zero(t, r.Len(KindAnimation))
}

func TestLoadClipsDuplicateNames(t *testing.T) {
	dir := t.TempDir()
	a := writeClip(t, dir, "a.yaml", "name: same\nchannels: []\n")
	b := writeClip(t, dir, "b.yaml", "name: same\nchannels: []\n")
	_, err := LoadClips(context.Background(), NewRegistry(), nil, a, b)
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestLoadClipsCanceled(t *testing.T) {
	path := writeClip(t, t.TempDir(), "a.yaml", "channels: []\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewRegistry()
	_, err := LoadClips(ctx, r, nil, path)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, r.Len(KindAnimation))
}
