package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/oxy-scene/engine/dump"
	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestDumpDefaultYAML(t *testing.T) {
	out, err := execute(t, "--frames", "3")
	require.NoError(t, err)

	var doc dump.Document
	require.NoError(t, yaml.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "main", doc.Name)
	assert.Equal(t, uint64(3), doc.Frame)
	assert.Len(t, doc.Meshes, 10)
	assert.Equal(t, dump.Dispatch{Rigid: 9, Skeletal: 1}, doc.Dispatch)
	assert.Equal(t, 3, doc.Uniforms.ActiveLights)
}

func TestDumpWithConfigTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[scene]
name = "lab"

[demo]
rigid = 2
skinned = 0
point_lights = 0
ambient = [0.2, 0.2, 0.2, 1.0]
`), 0o644))

	out, err := execute(t, "-c", path, "-f", "toml", "-n", "1")
	require.NoError(t, err)

	var doc dump.Document
	require.NoError(t, toml.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "lab", doc.Name)
	assert.Len(t, doc.Meshes, 2)
	assert.Equal(t, [4]float32{0.2, 0.2, 0.2, 1}, doc.Uniforms.Ambient)
	assert.Equal(t, 5, doc.Uniforms.Count)
}

func TestDumpXMLWithoutFrames(t *testing.T) {
	out, err := execute(t, "--format", "xml", "--frames", "0")
	require.NoError(t, err)
	assert.Contains(t, out, `<scene name="main" frame="0">`)
}

func TestDumpRejectsBadInput(t *testing.T) {
	_, err := execute(t, "--format", "json")
	assert.ErrorIs(t, err, dump.ErrUnsupportedFormat)

	_, err = execute(t, "--dt", "0")
	assert.Error(t, err)

	_, err = execute(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = execute(t, "extra")
	assert.Error(t, err)
}
