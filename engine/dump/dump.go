// Package dump captures a read-only snapshot of a scene and encodes it as YAML, TOML or
// XML for inspection tools.
package dump

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Carmen-Shannon/oxy-scene/engine/light"
	"github.com/Carmen-Shannon/oxy-scene/engine/node"
	"github.com/Carmen-Shannon/oxy-scene/engine/scene"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ErrUnsupportedFormat is returned for an unknown output format name.
var ErrUnsupportedFormat = errors.New("dump: unsupported format")

// Format selects an encoder.
type Format int

const (
	FormatYAML Format = iota
	FormatTOML
	FormatXML
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatYAML:
		return "yaml"
	case FormatTOML:
		return "toml"
	case FormatXML:
		return "xml"
	default:
		return fmt.Sprintf("format(%d)", int(f))
	}
}

// ParseFormat maps a format name or file extension to a Format.
//
// Parameters:
//   - s: "yaml", "yml", "toml" or "xml", with or without a leading dot
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
	case "xml":
		return FormatXML, nil
	default:
		return 0, fmt.Errorf("%q: %w", s, ErrUnsupportedFormat)
	}
}

// Document is the encoded form of a scene.
type Document struct {
	XMLName    xml.Name    `yaml:"-" toml:"-" xml:"scene"`
	Name       string      `yaml:"name" toml:"name" xml:"name,attr"`
	Frame      uint64      `yaml:"frame" toml:"frame" xml:"frame,attr"`
	Nodes      []Node      `yaml:"nodes" toml:"nodes" xml:"nodes>node"`
	Cameras    []Camera    `yaml:"cameras" toml:"cameras" xml:"cameras>camera"`
	Lights     []Light     `yaml:"lights" toml:"lights" xml:"lights>light"`
	Meshes     []Mesh      `yaml:"meshes" toml:"meshes" xml:"meshes>mesh"`
	Animations []Animation `yaml:"animations" toml:"animations" xml:"animations>animation"`
	Uniforms   Uniforms    `yaml:"uniforms" toml:"uniforms" xml:"uniforms"`
	Dispatch   Dispatch    `yaml:"dispatch" toml:"dispatch" xml:"dispatch"`
}

// Node describes one graph node in depth-first order.
type Node struct {
	Handle   string     `yaml:"handle" toml:"handle" xml:"handle,attr"`
	Name     string     `yaml:"name,omitempty" toml:"name,omitempty" xml:"name,attr,omitempty"`
	Parent   string     `yaml:"parent,omitempty" toml:"parent,omitempty" xml:"parent,attr,omitempty"`
	Depth    int        `yaml:"depth" toml:"depth" xml:"depth,attr"`
	Position [3]float32 `yaml:"position,flow" toml:"position" xml:"position>v"`
}

// Camera describes one camera instance.
type Camera struct {
	Node       string  `yaml:"node" toml:"node" xml:"node,attr"`
	Projection string  `yaml:"projection" toml:"projection" xml:"projection,attr"`
	Fov        float32 `yaml:"fov" toml:"fov" xml:"fov"`
	Near       float32 `yaml:"near" toml:"near" xml:"near"`
	Far        float32 `yaml:"far" toml:"far" xml:"far"`
	Aspect     float32 `yaml:"aspect" toml:"aspect" xml:"aspect"`
}

// Light describes one light instance.
type Light struct {
	Node  string     `yaml:"node" toml:"node" xml:"node,attr"`
	Kind  string     `yaml:"kind" toml:"kind" xml:"kind,attr"`
	Color [4]float32 `yaml:"color,flow" toml:"color" xml:"color>v"`
}

// Mesh describes one mesh instance.
type Mesh struct {
	Node    string `yaml:"node" toml:"node" xml:"node,attr"`
	Skinned bool   `yaml:"skinned" toml:"skinned" xml:"skinned,attr"`
	Bones   int    `yaml:"bones,omitempty" toml:"bones,omitempty" xml:"bones,attr,omitempty"`
}

// Animation describes one animation instance.
type Animation struct {
	Name     string  `yaml:"name" toml:"name" xml:"name,attr"`
	Duration float32 `yaml:"duration" toml:"duration" xml:"duration"`
	Elapsed  float32 `yaml:"elapsed" toml:"elapsed" xml:"elapsed"`
	Looping  bool    `yaml:"looping" toml:"looping" xml:"looping,attr"`
}

// Uniforms summarizes the light uniforms of the last rendered frame.
type Uniforms struct {
	Count         int        `yaml:"count" toml:"count" xml:"count,attr"`
	ActiveLights  int        `yaml:"active_lights" toml:"active_lights" xml:"active,attr"`
	AmbientLights int        `yaml:"ambient_lights" toml:"ambient_lights" xml:"ambient,attr"`
	Ambient       [4]float32 `yaml:"ambient,flow" toml:"ambient" xml:"color>v"`
}

// Dispatch holds the render path counts of the last frame.
type Dispatch struct {
	Rigid    int `yaml:"rigid" toml:"rigid" xml:"rigid,attr"`
	Skeletal int `yaml:"skeletal" toml:"skeletal" xml:"skeletal,attr"`
}

// Capture snapshots s without modifying it.
//
// Parameters:
//   - s: the scene
//
// Returns:
//   - Document: the snapshot
func Capture(s scene.Scene) Document {
	if s == nil {
		panic("dump: Capture requires a non-nil scene.Scene")
	}
	g := s.Graph()
	doc := Document{
		Name:  s.Name(),
		Frame: s.FrameNumber(),
	}

	g.Walk(func(h node.Handle, depth int) bool {
		n := Node{Handle: h.String(), Depth: depth}
		n.Name, _ = g.Name(h)
		if parent, err := g.Parent(h); err == nil && !parent.IsNil() {
			n.Parent = parent.String()
		}
		if world, err := g.WorldTransform(h); err == nil {
			n.Position = [3]float32{world[12], world[13], world[14]}
		}
		doc.Nodes = append(doc.Nodes, n)
		return true
	})

	for _, c := range s.CameraInstances() {
		doc.Cameras = append(doc.Cameras, Camera{
			Node:       c.Node().String(),
			Projection: c.Projection().String(),
			Fov:        c.Fov(),
			Near:       c.Near(),
			Far:        c.Far(),
			Aspect:     c.Aspect(),
		})
	}
	for _, l := range s.LightInstances() {
		doc.Lights = append(doc.Lights, Light{
			Node:  l.Node().String(),
			Kind:  l.Kind().String(),
			Color: l.Color(),
		})
	}
	for _, mi := range s.MeshInstances() {
		m := Mesh{Node: mi.Node().String(), Skinned: mi.Skinned()}
		if m.Skinned {
			m.Bones = mi.Mesh().Skin().BoneCount()
		}
		doc.Meshes = append(doc.Meshes, m)
	}
	for _, ai := range s.AnimationInstances() {
		doc.Animations = append(doc.Animations, Animation{
			Name:     ai.Animation().Name(),
			Duration: ai.Animation().Duration(),
			Elapsed:  ai.Elapsed(),
			Looping:  ai.Looping(),
		})
	}

	doc.Uniforms = captureUniforms(s.LightUniforms())
	stats := s.DispatchStats()
	doc.Dispatch = Dispatch{Rigid: stats.Rigid, Skeletal: stats.Skeletal}
	return doc
}

func captureUniforms(u light.Uniforms) Uniforms {
	return Uniforms{
		Count:         u.Count(),
		ActiveLights:  u.ActiveLights(),
		AmbientLights: u.AmbientLights(),
		Ambient:       u.Ambient(),
	}
}

// Encode writes doc to w.
//
// Parameters:
//   - w: the destination
//   - doc: the captured scene
//   - format: the output format
//
// Returns:
//   - error: an encoder error or one wrapping ErrUnsupportedFormat
func Encode(w io.Writer, doc Document, format Format) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("dump yaml: %w", err)
		}
		return enc.Close()
	case FormatTOML:
		if err := toml.NewEncoder(w).SetIndentTables(true).Encode(doc); err != nil {
			return fmt.Errorf("dump toml: %w", err)
		}
		return nil
	case FormatXML:
		if _, err := io.WriteString(w, xml.Header); err != nil {
			return err
		}
		enc := xml.NewEncoder(w)
		enc.Indent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("dump xml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return err
		}
		_, err := io.WriteString(w, "\n")
		return err
	default:
		return fmt.Errorf("%s: %w", format, ErrUnsupportedFormat)
	}
}
