// Package demo assembles the showcase scene used by the command line tools: a grid of
// spinning rigid meshes, a row of posed skinned meshes, colored point lights and any
// animation clips named in the configuration. Mesh, material and skeleton construction
// is delegated to factories so the same scene runs headless or on the GPU.
package demo

import (
	"context"
	"fmt"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/animation"
	"github.com/Carmen-Shannon/oxy-scene/engine/config"
	"github.com/Carmen-Shannon/oxy-scene/engine/light"
	"github.com/Carmen-Shannon/oxy-scene/engine/mesh"
	"github.com/Carmen-Shannon/oxy-scene/engine/node"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer/headless"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-scene/engine/resource"
	"github.com/Carmen-Shannon/oxy-scene/engine/scene"
	"github.com/chewxy/math32"
)

const (
	gridSpacing = 30
	lightRadius = 150
	lightRange  = 400
	spinDegrees = 45
	swayDegrees = 20
	glowEvery   = 5 // every fifth rigid mesh is emissive
)

// palette cycles through the rigid mesh colors.
var palette = [][4]float32{
	{0.9, 0.2, 0.2, 1},
	{0.2, 0.8, 0.3, 1},
	{0.2, 0.4, 0.9, 1},
	{0.9, 0.8, 0.2, 1},
	{0.7, 0.3, 0.8, 1},
}

// MeshFactory creates the geometry of a mesh instance; skin is nil for rigid meshes.
type MeshFactory func(name string, skin mesh.Skin) (mesh.Mesh, error)

// MaterialFactory creates the material of a mesh instance from its surface description.
type MaterialFactory func(name string, surface material.Surface) (mesh.Material, error)

// SkeletonFactory creates a skeleton with the given number of bones.
type SkeletonFactory func(bones int) mesh.Skeleton

// Poser is implemented by skeletons whose bones can be posed directly.
type Poser interface {
	SetPose(i int, m [16]float32)
}

// Demo is a built scene together with the registry holding its resources.
type Demo struct {
	Scene    scene.Scene
	Registry resource.Registry
}

type builder struct {
	meshes    MeshFactory
	materials MaterialFactory
	skeletons SkeletonFactory
	registry  resource.Registry
}

// Build creates the demo scene described by cfg.
//
// Parameters:
//   - ctx: cancels clip loading
//   - cfg: the configuration; Scene sets the defaults and Demo the content
//   - options: functional options selecting the factories
//
// Returns:
//   - *Demo: the scene and its registry
//   - error: a factory, graph or clip loading error
func Build(ctx context.Context, cfg config.Config, options ...BuilderOption) (*Demo, error) {
	b := &builder{
		meshes: func(name string, skin mesh.Skin) (mesh.Mesh, error) {
			return headless.NewMesh(name, skin), nil
		},
		materials: func(name string, _ material.Surface) (mesh.Material, error) {
			return headless.NewMaterial(name), nil
		},
		skeletons: func(bones int) mesh.Skeleton {
			return headless.NewSkeleton(bones)
		},
	}
	for _, opt := range options {
		opt(b)
	}
	if b.registry == nil {
		b.registry = resource.NewRegistry()
	}

	s := scene.NewScene(scene.WithDefaults(cfg.Scene))
	if err := s.CreateDefaultCameraAndLights(); err != nil {
		return nil, err
	}
	if err := b.addRigid(s, cfg.Demo.Rigid); err != nil {
		return nil, err
	}
	if err := b.addSkinned(s, cfg.Demo.Skinned, cfg.Demo.Bones); err != nil {
		return nil, err
	}
	if err := addLights(s, cfg.Demo); err != nil {
		return nil, err
	}

	if len(cfg.Demo.Clips) > 0 {
		target := animation.NewNodeTarget(s.Graph(), animation.WithNameResolution(true))
		loader := resource.NewLoader(resource.WithWorkers(cfg.Engine.LoaderWorkers))
		if _, err := loader.LoadClips(ctx, b.registry, target, cfg.Demo.Clips...); err != nil {
			return nil, fmt.Errorf("demo clips: %w", err)
		}
		s.PlayAllAnimations(b.registry)
	}

	return &Demo{Scene: s, Registry: b.registry}, nil
}

func (b *builder) addRigid(s scene.Scene, n int) error {
	if n <= 0 {
		return nil
	}
	g := s.Graph()
	group, err := g.AddChild(g.Root(), node.WithName("grid"))
	if err != nil {
		return err
	}

	side := int(math32.Ceil(math32.Sqrt(float32(n))))
	offset := float32(side-1) * gridSpacing / 2
	for i := range n {
		name := fmt.Sprintf("rigid-%d", i)
		x := float32(i%side)*gridSpacing - offset
		y := float32(i/side)*gridSpacing - offset
		h, err := g.AddChild(group, node.WithName(name), node.WithLocalTransform(common.Translation(x, y, 0)))
		if err != nil {
			return err
		}

		color := palette[i%len(palette)]
		surface := material.MakeColor(color, i%2 == 0, i%3 == 0)
		if i%glowEvery == glowEvery-1 {
			surface = material.MakeEmissive(material.SolidTexture(color))
		}
		m, mat, err := b.build(name, nil, surface)
		if err != nil {
			return err
		}
		s.AddMeshInstance(mesh.NewInstance(h, m, mat, mesh.WithUpdateHook(func(dt float32) error {
			return g.RotateY(h, spinDegrees*dt)
		})))
	}
	return nil
}

func (b *builder) addSkinned(s scene.Scene, n, bones int) error {
	if n <= 0 {
		return nil
	}
	g := s.Graph()
	for i := range n {
		name := fmt.Sprintf("skinned-%d", i)
		x := float32(i)*gridSpacing - float32(n-1)*gridSpacing/2
		h, err := g.AddChild(g.Root(), node.WithName(name), node.WithLocalTransform(common.Translation(x, -2*gridSpacing, 0)))
		if err != nil {
			return err
		}

		skeleton := b.skeletons(bones)
		if err := b.registry.Add(resource.KindSkeleton, name, skeleton); err != nil {
			return err
		}
		m, mat, err := b.build(name, headless.Skin(bones), material.MakeColor([4]float32{0.8, 0.8, 0.8, 1}, false, true))
		if err != nil {
			return err
		}

		var elapsed float32
		s.AddMeshInstance(mesh.NewInstance(h, m, mat,
			mesh.WithSkeleton(skeleton),
			mesh.WithUpdateHook(func(dt float32) error {
				poser, ok := skeleton.(Poser)
				if !ok {
					return nil
				}
				elapsed += dt
				for bone := range skeleton.BoneCount() {
					phase := elapsed + float32(bone)*0.25
					poser.SetPose(bone, common.RotationZ(swayDegrees*math32.Sin(phase)))
				}
				return nil
			}),
		))
	}
	return nil
}

func (b *builder) build(name string, skin mesh.Skin, surface material.Surface) (mesh.Mesh, mesh.Material, error) {
	m, err := b.meshes(name, skin)
	if err != nil {
		return nil, nil, fmt.Errorf("demo mesh %s: %w", name, err)
	}
	mat, err := b.materials(name, surface)
	if err != nil {
		return nil, nil, fmt.Errorf("demo material %s: %w", name, err)
	}
	if err := b.registry.Add(resource.KindMesh, name, m); err != nil {
		return nil, nil, err
	}
	if err := b.registry.Add(resource.KindMaterial, name, mat); err != nil {
		return nil, nil, err
	}
	return m, mat, nil
}

func addLights(s scene.Scene, cfg config.Demo) error {
	g := s.Graph()
	// Aggregation stops at the light cap, so ambient goes ahead of the point lights.
	if cfg.Ambient != [4]float32{} {
		a := cfg.Ambient
		s.AddLightInstance(light.NewInstance(g.Root(), light.KindAmbient, light.WithColor(a[0], a[1], a[2], a[3])))
	}
	for i := range cfg.PointLights {
		angle := 2 * math32.Pi * float32(i) / float32(cfg.PointLights)
		sin, cos := math32.Sincos(angle)
		h, err := g.AddChild(g.Root(),
			node.WithName(fmt.Sprintf("point-%d", i)),
			node.WithLocalTransform(common.Translation(lightRadius*cos, lightRadius*sin, 50)),
		)
		if err != nil {
			return err
		}
		c := palette[i%len(palette)]
		s.AddLightInstance(light.NewInstance(h, light.KindPoint,
			light.WithColor(c[0], c[1], c[2], c[3]),
			light.WithRange(lightRange),
		))
	}

	return nil
}

// BuilderOption is a functional option for configuring Build.
type BuilderOption func(*builder)

// WithMeshFactory sets how mesh geometry is created. Defaults to headless meshes.
//
// Parameters:
//   - f: the mesh factory
//
// Returns:
//   - BuilderOption: option function to apply
func WithMeshFactory(f MeshFactory) BuilderOption {
	return func(b *builder) {
		b.meshes = f
	}
}

// WithMaterialFactory sets how materials are created. Defaults to headless materials.
//
// Parameters:
//   - f: the material factory
//
// Returns:
//   - BuilderOption: option function to apply
func WithMaterialFactory(f MaterialFactory) BuilderOption {
	return func(b *builder) {
		b.materials = f
	}
}

// WithSkeletonFactory sets how skeletons are created. Defaults to headless skeletons.
//
// Parameters:
//   - f: the skeleton factory
//
// Returns:
//   - BuilderOption: option function to apply
func WithSkeletonFactory(f SkeletonFactory) BuilderOption {
	return func(b *builder) {
		b.skeletons = f
	}
}

// WithRegistry registers the demo resources in an existing registry.
//
// Parameters:
//   - r: the registry
//
// Returns:
//   - BuilderOption: option function to apply
func WithRegistry(r resource.Registry) BuilderOption {
	return func(b *builder) {
		b.registry = r
	}
}
