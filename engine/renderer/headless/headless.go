// Package headless implements the mesh collaborators without a GPU. Each piece records
// what the render dispatcher asked of it, which makes the package usable for tooling
// that walks frames offline and for tests asserting dispatch behavior.
package headless

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/light"
	"github.com/Carmen-Shannon/oxy-scene/engine/mesh"
)

// Pipeline is a named mesh.Pipeline.
type Pipeline string

var _ mesh.Pipeline = Pipeline("")

// Name returns the pipeline label.
func (p Pipeline) Name() string {
	return string(p)
}

// Call records one Material invocation.
type Call struct {
	Skinned            bool
	Pipeline           string
	ModelToProjection  [16]float32
	ModelToCamera      [16]float32
	CameraToProjection [16]float32
	Bones              int
	UniformCount       int
	ActiveLights       int
	Ambient            [4]float32
}

// Material records every render request.
type Material struct {
	mu    sync.Mutex
	name  string
	calls []Call
}

var _ mesh.Material = &Material{}

// NewMaterial creates a recording material.
//
// Parameters:
//   - name: the label reported by Name
//
// Returns:
//   - *Material: the new material
func NewMaterial(name string) *Material {
	return &Material{name: name}
}

// Name returns the material label.
func (m *Material) Name() string {
	return m.name
}

func (m *Material) Render(pipeline mesh.Pipeline, modelToProjection, modelToCamera [16]float32, lights *light.Uniforms) error {
	m.record(Call{
		Pipeline:          pipelineName(pipeline),
		ModelToProjection: modelToProjection,
		ModelToCamera:     modelToCamera,
		UniformCount:      lights.Count(),
		ActiveLights:      lights.ActiveLights(),
		Ambient:           lights.Ambient(),
	})
	return nil
}

func (m *Material) RenderSkinned(pipeline mesh.Pipeline, cameraToProjection [16]float32, bones [][16]float32, lights *light.Uniforms) error {
	m.record(Call{
		Skinned:            true,
		Pipeline:           pipelineName(pipeline),
		CameraToProjection: cameraToProjection,
		Bones:              len(bones),
		UniformCount:       lights.Count(),
		ActiveLights:       lights.ActiveLights(),
		Ambient:            lights.Ambient(),
	})
	return nil
}

// Calls returns a copy of the recorded invocations.
func (m *Material) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Call, len(m.calls))
	copy(out, m.calls)
	return out
}

// Counts returns how many rigid and skinned renders were recorded.
func (m *Material) Counts() (rigid, skinned int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.calls {
		if c.Skinned {
			skinned++
		} else {
			rigid++
		}
	}
	return rigid, skinned
}

// Reset forgets the recorded invocations.
func (m *Material) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
}

func (m *Material) record(c Call) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, c)
}

// Skin is a mesh.Skin referencing a fixed number of bones.
type Skin int

var _ mesh.Skin = Skin(0)

// BoneCount returns the number of bones the skin references.
func (s Skin) BoneCount() int {
	return int(s)
}

// Mesh counts draw calls. A non-nil skin makes it eligible for skeletal dispatch.
type Mesh struct {
	mu    sync.Mutex
	name  string
	skin  mesh.Skin
	draws int
}

var _ mesh.Mesh = &Mesh{}

// NewMesh creates a counting mesh.
//
// Parameters:
//   - name: the label reported by Name
//   - skin: the skin binding, or nil for rigid geometry
//
// Returns:
//   - *Mesh: the new mesh
func NewMesh(name string, skin mesh.Skin) *Mesh {
	return &Mesh{name: name, skin: skin}
}

// Name returns the mesh label.
func (m *Mesh) Name() string {
	return m.name
}

func (m *Mesh) Draw() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.draws++
	return nil
}

func (m *Mesh) Skin() mesh.Skin {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.skin
}

// SetSkin replaces the skin binding; nil makes the mesh rigid.
func (m *Mesh) SetSkin(skin mesh.Skin) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.skin = skin
}

// Draws returns the number of draw calls issued.
func (m *Mesh) Draws() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.draws
}

// Skeleton poses every bone with a local transform relative to the model.
type Skeleton struct {
	mu    sync.Mutex
	poses [][16]float32
}

var _ mesh.Skeleton = &Skeleton{}

// NewSkeleton creates a skeleton of n bones in bind pose (identity).
//
// Parameters:
//   - n: the bone count
//
// Returns:
//   - *Skeleton: the new skeleton
func NewSkeleton(n int) *Skeleton {
	poses := make([][16]float32, n)
	for i := range poses {
		poses[i] = common.IdentityMatrix()
	}
	return &Skeleton{poses: poses}
}

func (s *Skeleton) BoneCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.poses)
}

// SetPose sets the model-space transform of bone i.
func (s *Skeleton) SetPose(i int, m [16]float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.poses[i] = m
}

func (s *Skeleton) ComputeBoneTransforms(modelToCamera [16]float32, skin mesh.Skin) [][16]float32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][16]float32, len(s.poses))
	for i := range out {
		out[i] = common.Multiply(modelToCamera, s.poses[i])
	}
	return out
}

func pipelineName(p mesh.Pipeline) string {
	if p == nil {
		return ""
	}
	return p.Name()
}
