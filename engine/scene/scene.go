package scene

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/animation"
	"github.com/Carmen-Shannon/oxy-scene/engine/camera"
	"github.com/Carmen-Shannon/oxy-scene/engine/config"
	"github.com/Carmen-Shannon/oxy-scene/engine/light"
	"github.com/Carmen-Shannon/oxy-scene/engine/mesh"
	"github.com/Carmen-Shannon/oxy-scene/engine/node"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer"
	"github.com/Carmen-Shannon/oxy-scene/engine/resource"
	"github.com/chewxy/math32"
)

// ErrNoCamera is returned by Render when called without a camera.
var ErrNoCamera = errors.New("scene: render requires a camera")

// Scene owns a node graph and the mesh, animation, camera and light instances attached
// to it, and drives one frame at a time: Update advances animations and mesh hooks,
// Render aggregates lights once and dispatches every mesh.
//
// Collections keep insertion order and allow duplicates. A frame works on the
// collections as they were when it started, so instances added or removed while a
// frame runs take effect on the next one.
// Thread-safe for concurrent access.
type Scene interface {
	// Name returns the scene's identifier.
	Name() string

	// SetName sets the scene's identifier.
	SetName(name string)

	// Active returns whether the engine loop drives this scene.
	Active() bool

	// SetActive sets whether the engine loop drives this scene.
	SetActive(active bool)

	// Graph returns the node graph owned by the scene.
	//
	// Returns:
	//   - node.Graph: the graph
	Graph() node.Graph

	// AddMeshInstance appends a mesh instance.
	//
	// Parameters:
	//   - mi: the mesh instance (must not be nil)
	AddMeshInstance(mi mesh.Instance)

	// AddAnimationInstance appends an animation instance.
	//
	// Parameters:
	//   - ai: the animation instance (must not be nil)
	AddAnimationInstance(ai animation.Instance)

	// AddCameraInstance appends a camera instance.
	//
	// Parameters:
	//   - ci: the camera instance (must not be nil)
	AddCameraInstance(ci camera.Instance)

	// AddLightInstance appends a light instance.
	//
	// Parameters:
	//   - li: the light instance (must not be nil)
	AddLightInstance(li light.Instance)

	// RemoveMeshInstance removes the first occurrence of mi.
	//
	// Parameters:
	//   - mi: the mesh instance
	//
	// Returns:
	//   - bool: true if mi was found
	RemoveMeshInstance(mi mesh.Instance) bool

	// RemoveAnimationInstance removes the first occurrence of ai.
	//
	// Parameters:
	//   - ai: the animation instance
	//
	// Returns:
	//   - bool: true if ai was found
	RemoveAnimationInstance(ai animation.Instance) bool

	// RemoveCameraInstance removes the first occurrence of ci.
	//
	// Parameters:
	//   - ci: the camera instance
	//
	// Returns:
	//   - bool: true if ci was found
	RemoveCameraInstance(ci camera.Instance) bool

	// RemoveLightInstance removes the first occurrence of li.
	//
	// Parameters:
	//   - li: the light instance
	//
	// Returns:
	//   - bool: true if li was found
	RemoveLightInstance(li light.Instance) bool

	// CreateDefaultCameraAndLights adds a perspective camera if the scene has no camera
	// and a directional light if it has no light. Calling it again does nothing for a
	// collection that is no longer empty.
	//
	// Returns:
	//   - error: an error if the default nodes could not be created
	CreateDefaultCameraAndLights() error

	// PlayAllAnimations starts a looping instance of every animation in the registry,
	// each driving its animation's default target.
	//
	// Parameters:
	//   - registry: the resource registry
	//
	// Returns:
	//   - int: the number of animations started
	PlayAllAnimations(registry resource.Registry) int

	// Play starts an animation on its default target.
	//
	// Parameters:
	//   - anim: the animation
	//   - looping: true to wrap at the end
	//
	// Returns:
	//   - animation.Instance: the registered instance
	Play(anim animation.Animation, looping bool) animation.Instance

	// PlayOn starts an animation on an explicit target.
	//
	// Parameters:
	//   - anim: the animation
	//   - target: the target driven by the animation
	//   - looping: true to wrap at the end
	//
	// Returns:
	//   - animation.Instance: the registered instance
	PlayOn(anim animation.Animation, target animation.Target, looping bool) animation.Instance

	// Update advances every animation instance by deltaTime, then runs every mesh
	// instance's update hook, both in collection order.
	//
	// Parameters:
	//   - deltaTime: the frame time in seconds
	//
	// Returns:
	//   - error: the first animation or hook error, which stops the update
	Update(deltaTime float32) error

	// Render draws one frame through cam: it resolves the camera's world transform,
	// aggregates the lights once and dispatches every mesh instance in collection
	// order. The frame counter advances only when every mesh was dispatched.
	//
	// Parameters:
	//   - objectPipeline: the pipeline for rigid meshes
	//   - skinnedPipeline: the pipeline for skinned meshes
	//   - cam: the camera to render through
	//   - aspect: the viewport aspect ratio; values <= 0 keep the camera's current one
	//
	// Returns:
	//   - error: ErrNoCamera, renderer.ErrBoneLimit, or a node or collaborator error
	Render(objectPipeline, skinnedPipeline mesh.Pipeline, cam camera.Instance, aspect float32) error

	// MeshInstanceCount returns the number of mesh instances.
	MeshInstanceCount() int

	// AnimationInstanceCount returns the number of animation instances.
	AnimationInstanceCount() int

	// CameraInstanceCount returns the number of camera instances.
	CameraInstanceCount() int

	// LightInstanceCount returns the number of light instances.
	LightInstanceCount() int

	// CameraInstance returns camera instance i. Panics when i is out of range.
	//
	// Parameters:
	//   - i: the index in insertion order
	//
	// Returns:
	//   - camera.Instance: the camera
	CameraInstance(i int) camera.Instance

	// FirstMeshInstance returns the first mesh instance attached to h.
	//
	// Parameters:
	//   - h: the node handle
	//
	// Returns:
	//   - mesh.Instance: the mesh instance
	//   - bool: false if no mesh instance uses h
	FirstMeshInstance(h node.Handle) (mesh.Instance, bool)

	// MeshInstances returns a snapshot of the mesh instances.
	MeshInstances() []mesh.Instance

	// AnimationInstances returns a snapshot of the animation instances.
	AnimationInstances() []animation.Instance

	// CameraInstances returns a snapshot of the camera instances.
	CameraInstances() []camera.Instance

	// LightInstances returns a snapshot of the light instances.
	LightInstances() []light.Instance

	// FrameNumber returns the number of frames rendered to completion.
	FrameNumber() uint64

	// LightUniforms returns a copy of the uniforms built by the last Render.
	LightUniforms() light.Uniforms

	// DispatchStats returns the dispatch counts of the last Render.
	DispatchStats() renderer.Stats
}

type scene struct {
	mu      *sync.RWMutex
	frameMu *sync.Mutex

	name     string
	active   bool
	defaults config.Scene

	graph      node.Graph
	dispatcher renderer.Dispatcher

	meshes     []mesh.Instance
	animations []animation.Instance
	cameras    []camera.Instance
	lights     []light.Instance

	uniforms    light.Uniforms
	frameNumber atomic.Uint64
}

var _ Scene = &scene{}

// NewScene creates an empty scene with its own node graph.
//
// Parameters:
//   - options: functional options to configure the scene
//
// Returns:
//   - Scene: the new scene
func NewScene(options ...SceneBuilderOption) Scene {
	s := &scene{
		mu:       &sync.RWMutex{},
		frameMu:  &sync.Mutex{},
		name:     "scene",
		active:   true,
		defaults: config.DefaultScene(),
	}
	for _, option := range options {
		option(s)
	}
	if s.graph == nil {
		s.graph = node.NewGraph()
	}
	if s.dispatcher == nil {
		s.dispatcher = renderer.NewDispatcher()
	}
	return s
}

func (s *scene) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

func (s *scene) SetName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
}

func (s *scene) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

func (s *scene) SetActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = active
}

func (s *scene) Graph() node.Graph {
	return s.graph
}

func (s *scene) AddMeshInstance(mi mesh.Instance) {
	if mi == nil {
		panic("scene: AddMeshInstance requires a non-nil mesh.Instance")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.meshes = append(s.meshes, mi)
}

func (s *scene) AddAnimationInstance(ai animation.Instance) {
	if ai == nil {
		panic("scene: AddAnimationInstance requires a non-nil animation.Instance")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.animations = append(s.animations, ai)
}

func (s *scene) AddCameraInstance(ci camera.Instance) {
	if ci == nil {
		panic("scene: AddCameraInstance requires a non-nil camera.Instance")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cameras = append(s.cameras, ci)
}

func (s *scene) AddLightInstance(li light.Instance) {
	if li == nil {
		panic("scene: AddLightInstance requires a non-nil light.Instance")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lights = append(s.lights, li)
}

func (s *scene) RemoveMeshInstance(mi mesh.Instance) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return removeFirst(&s.meshes, mi)
}

func (s *scene) RemoveAnimationInstance(ai animation.Instance) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return removeFirst(&s.animations, ai)
}

func (s *scene) RemoveCameraInstance(ci camera.Instance) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return removeFirst(&s.cameras, ci)
}

func (s *scene) RemoveLightInstance(li light.Instance) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return removeFirst(&s.lights, li)
}

func (s *scene) CreateDefaultCameraAndLights() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	root := s.graph.Root()
	if len(s.cameras) == 0 {
		c := s.defaults.Camera
		h, err := s.graph.AddChild(root,
			node.WithName("default camera"),
			node.WithLocalTransform(common.Translation(c.Position[0], c.Position[1], c.Position[2])),
		)
		if err != nil {
			return fmt.Errorf("default camera: %w", err)
		}
		s.cameras = append(s.cameras, camera.NewInstance(h,
			camera.WithFov(c.FovDegrees*math32.Pi/180),
			camera.WithNear(c.Near),
			camera.WithFar(c.Far),
		))
	}

	if len(s.lights) == 0 {
		l := s.defaults.Light
		h, err := s.graph.AddChild(root,
			node.WithName("default light"),
			node.WithLocalTransform(common.Translation(l.Position[0], l.Position[1], l.Position[2])),
		)
		if err != nil {
			return fmt.Errorf("default light: %w", err)
		}
		if err := s.graph.RotateX(h, l.RotateX); err != nil {
			return fmt.Errorf("default light: %w", err)
		}
		if err := s.graph.RotateY(h, l.RotateY); err != nil {
			return fmt.Errorf("default light: %w", err)
		}
		kind, ok := light.ParseKind(l.Kind)
		if !ok {
			kind = light.KindDirectional
		}
		s.lights = append(s.lights, light.NewInstance(h, kind,
			light.WithColor(l.Color[0], l.Color[1], l.Color[2], l.Color[3]),
		))
	}
	return nil
}

func (s *scene) PlayAllAnimations(registry resource.Registry) int {
	if registry == nil {
		panic("scene: PlayAllAnimations requires a non-nil resource.Registry")
	}
	anims := registry.Animations()
	for _, anim := range anims {
		s.Play(anim, true)
	}
	return len(anims)
}

func (s *scene) Play(anim animation.Animation, looping bool) animation.Instance {
	return s.PlayOn(anim, nil, looping)
}

func (s *scene) PlayOn(anim animation.Animation, target animation.Target, looping bool) animation.Instance {
	ai := animation.NewInstance(anim, target, looping)
	s.AddAnimationInstance(ai)
	return ai
}

func (s *scene) Update(deltaTime float32) error {
	s.frameMu.Lock()
	defer s.frameMu.Unlock()

	s.mu.RLock()
	animations := slices.Clone(s.animations)
	meshes := slices.Clone(s.meshes)
	s.mu.RUnlock()

	for i, ai := range animations {
		if err := ai.Update(deltaTime); err != nil {
			return fmt.Errorf("update animation %d: %w", i, err)
		}
	}
	for i, mi := range meshes {
		if err := mi.Update(deltaTime); err != nil {
			return fmt.Errorf("update mesh %d: %w", i, err)
		}
	}
	return nil
}

func (s *scene) Render(objectPipeline, skinnedPipeline mesh.Pipeline, cam camera.Instance, aspect float32) error {
	if cam == nil {
		return ErrNoCamera
	}

	s.frameMu.Lock()
	defer s.frameMu.Unlock()

	s.mu.RLock()
	meshes := slices.Clone(s.meshes)
	lights := slices.Clone(s.lights)
	s.mu.RUnlock()

	cameraToWorld, err := s.graph.WorldTransform(cam.Node())
	if err != nil {
		return fmt.Errorf("render camera: %w", err)
	}
	cam.SetWorldTransform(cameraToWorld, aspect)

	if err := s.uniforms.Aggregate(s.graph, lights, cam.WorldToCamera()); err != nil {
		return fmt.Errorf("render: %w", err)
	}

	frame := &renderer.Frame{
		Graph:              s.graph,
		Camera:             cam,
		CameraToProjection: cam.CameraToProjection(),
		Lights:             &s.uniforms,
		ObjectPipeline:     objectPipeline,
		SkinnedPipeline:    skinnedPipeline,
	}
	s.dispatcher.BeginFrame()
	for i, mi := range meshes {
		if _, err := s.dispatcher.Dispatch(frame, mi); err != nil {
			return fmt.Errorf("render mesh %d: %w", i, err)
		}
	}

	s.frameNumber.Add(1)
	return nil
}

func (s *scene) MeshInstanceCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.meshes)
}

func (s *scene) AnimationInstanceCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.animations)
}

func (s *scene) CameraInstanceCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cameras)
}

func (s *scene) LightInstanceCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.lights)
}

func (s *scene) CameraInstance(i int) camera.Instance {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cameras[i]
}

func (s *scene) FirstMeshInstance(h node.Handle) (mesh.Instance, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, mi := range s.meshes {
		if mi.Node() == h {
			return mi, true
		}
	}
	return nil, false
}

func (s *scene) MeshInstances() []mesh.Instance {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.meshes)
}

func (s *scene) AnimationInstances() []animation.Instance {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.animations)
}

func (s *scene) CameraInstances() []camera.Instance {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.cameras)
}

func (s *scene) LightInstances() []light.Instance {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.lights)
}

func (s *scene) FrameNumber() uint64 {
	return s.frameNumber.Load()
}

func (s *scene) LightUniforms() light.Uniforms {
	s.frameMu.Lock()
	defer s.frameMu.Unlock()
	return s.uniforms
}

func (s *scene) DispatchStats() renderer.Stats {
	return s.dispatcher.Stats()
}

// removeFirst deletes the first element equal to v, keeping order.
func removeFirst[T comparable](list *[]T, v T) bool {
	i := slices.Index(*list, v)
	if i < 0 {
		return false
	}
	*list = slices.Delete(*list, i, i+1)
	return true
}
