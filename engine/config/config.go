// Package config loads engine and scene settings from YAML or TOML files. Values
// absent from a file keep their defaults, so a file only needs the settings it changes.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ErrUnsupportedFormat is returned for configuration files that are neither YAML nor TOML.
var ErrUnsupportedFormat = errors.New("config: unsupported format")

// Format identifies a configuration file encoding.
type Format string

const (
	// FormatYAML decodes with gopkg.in/yaml.v3.
	FormatYAML Format = "yaml"

	// FormatTOML decodes with github.com/pelletier/go-toml/v2.
	FormatTOML Format = "toml"
)

// Window holds the settings of the native window.
type Window struct {
	Title  string `yaml:"title" toml:"title"`
	Width  int    `yaml:"width" toml:"width"`
	Height int    `yaml:"height" toml:"height"`
	VSync  bool   `yaml:"vsync" toml:"vsync"`

	// Resize limits in pixels. Zero leaves the window default in place.
	MinWidth  int `yaml:"min_width" toml:"min_width"`
	MinHeight int `yaml:"min_height" toml:"min_height"`
	MaxWidth  int `yaml:"max_width" toml:"max_width"`
	MaxHeight int `yaml:"max_height" toml:"max_height"`
}

// Engine holds the settings of the main loop.
type Engine struct {
	// TickRate is the target number of frames per second.
	TickRate int `yaml:"tick_rate" toml:"tick_rate"`

	// LoaderWorkers is the number of workers decoding resource files.
	LoaderWorkers int `yaml:"loader_workers" toml:"loader_workers"`

	// Profile enables the once-per-second frame statistics log.
	Profile bool `yaml:"profile" toml:"profile"`
}

// Camera describes the camera synthesized when a scene has none.
type Camera struct {
	Position   [3]float32 `yaml:"position" toml:"position"`
	FovDegrees float32    `yaml:"fov_degrees" toml:"fov_degrees"`
	Near       float32    `yaml:"near" toml:"near"`
	Far        float32    `yaml:"far" toml:"far"`
}

// Light describes the light synthesized when a scene has none. The light node is
// translated to Position, then rotated about X and then about Y.
type Light struct {
	Position [3]float32 `yaml:"position" toml:"position"`
	RotateX  float32    `yaml:"rotate_x" toml:"rotate_x"`
	RotateY  float32    `yaml:"rotate_y" toml:"rotate_y"`
	Kind     string     `yaml:"kind" toml:"kind"`
	Color    [4]float32 `yaml:"color" toml:"color"`
}

// Scene holds the per-scene defaults.
type Scene struct {
	Name   string `yaml:"name" toml:"name"`
	Camera Camera `yaml:"camera" toml:"camera"`
	Light  Light  `yaml:"light" toml:"light"`
}

// Demo describes the generated scene used by the command line tools.
type Demo struct {
	// Rigid is the number of rigid meshes laid out on a grid.
	Rigid int `yaml:"rigid" toml:"rigid"`

	// Skinned is the number of skinned meshes.
	Skinned int `yaml:"skinned" toml:"skinned"`

	// Bones is the bone count of every skinned mesh.
	Bones int `yaml:"bones" toml:"bones"`

	// PointLights is the number of point lights added around the grid.
	PointLights int `yaml:"point_lights" toml:"point_lights"`

	// Ambient is an optional ambient light color; all zeros adds none.
	Ambient [4]float32 `yaml:"ambient" toml:"ambient"`

	// Clips lists YAML animation clip files to load and play.
	Clips []string `yaml:"clips" toml:"clips"`
}

// Config is the root configuration document.
type Config struct {
	Window Window `yaml:"window" toml:"window"`
	Engine Engine `yaml:"engine" toml:"engine"`
	Scene  Scene  `yaml:"scene" toml:"scene"`
	Demo   Demo   `yaml:"demo" toml:"demo"`
}

// Default returns the built-in configuration.
//
// Returns:
//   - Config: the defaults
func Default() Config {
	return Config{
		Window: Window{
			Title:  "oxy-scene",
			Width:  1280,
			Height: 720,
			VSync:  true,
		},
		Engine: Engine{
			TickRate:      60,
			LoaderWorkers: 4,
		},
		Scene: DefaultScene(),
		Demo: Demo{
			Rigid:       9,
			Skinned:     1,
			Bones:       24,
			PointLights: 2,
		},
	}
}

// DefaultScene returns the built-in scene defaults: a perspective camera 100 units
// down +Z with a 90 degree field of view, and a white directional light.
//
// Returns:
//   - Scene: the scene defaults
func DefaultScene() Scene {
	return Scene{
		Name: "main",
		Camera: Camera{
			Position:   [3]float32{0, 0, 100},
			FovDegrees: 90,
			Near:       0.1,
			Far:        5000,
		},
		Light: Light{
			Position: [3]float32{100, 100, 100},
			RotateX:  45,
			RotateY:  45,
			Kind:     "directional",
			Color:    [4]float32{1, 1, 1, 1},
		},
	}
}

// ParseFormat maps a name or file extension ("yaml", ".yml", "toml") to a Format.
//
// Parameters:
//   - s: the format name or extension
//
// Returns:
//   - Format: the format
//   - error: an error wrapping ErrUnsupportedFormat
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "yaml", "yml":
		return FormatYAML, nil
	case "toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("%q: %w", s, ErrUnsupportedFormat)
	}
}

// Load reads a configuration file over the defaults. The format follows the extension.
//
// Parameters:
//   - path: the file path
//
// Returns:
//   - Config: the merged configuration
//   - error: an error if the file cannot be read or decoded
func Load(path string) (Config, error) {
	format, err := ParseFormat(filepath.Ext(path))
	if err != nil {
		return Config{}, fmt.Errorf("load %s: %w", path, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("load %s: %w", path, err)
	}
	cfg, err := Parse(data, format)
	if err != nil {
		return Config{}, fmt.Errorf("load %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes data over the defaults.
//
// Parameters:
//   - data: the encoded document
//   - format: the encoding
//
// Returns:
//   - Config: the merged configuration
//   - error: an error if the document cannot be decoded
func Parse(data []byte, format Format) (Config, error) {
	cfg := Default()
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, err
		}
	case FormatTOML:
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&cfg); err != nil {
			return Config{}, err
		}
	default:
		return Config{}, fmt.Errorf("%q: %w", format, ErrUnsupportedFormat)
	}
	cfg.normalize()
	return cfg, nil
}

// normalize restores defaults for settings explicitly zeroed where zero is invalid.
func (c *Config) normalize() {
	def := Default()
	c.Window.Title = common.Coalesce(c.Window.Title, def.Window.Title)
	c.Window.Width = common.Coalesce(c.Window.Width, def.Window.Width)
	c.Window.Height = common.Coalesce(c.Window.Height, def.Window.Height)
	c.Engine.TickRate = common.Coalesce(c.Engine.TickRate, def.Engine.TickRate)
	c.Engine.LoaderWorkers = common.Coalesce(c.Engine.LoaderWorkers, def.Engine.LoaderWorkers)
	c.Scene.Name = common.Coalesce(c.Scene.Name, def.Scene.Name)
	c.Scene.Camera.FovDegrees = common.Coalesce(c.Scene.Camera.FovDegrees, def.Scene.Camera.FovDegrees)
	c.Scene.Camera.Near = common.Coalesce(c.Scene.Camera.Near, def.Scene.Camera.Near)
	c.Scene.Camera.Far = common.Coalesce(c.Scene.Camera.Far, def.Scene.Camera.Far)
	c.Scene.Light.Kind = common.Coalesce(c.Scene.Light.Kind, def.Scene.Light.Kind)
}
