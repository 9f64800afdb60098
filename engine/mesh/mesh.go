package mesh

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-scene/engine/light"
	"github.com/Carmen-Shannon/oxy-scene/engine/node"
)

// Pipeline is the opaque shading context a Material renders with, such as a compiled
// shader program or a GPU render pipeline. The scene passes one pipeline for rigid
// meshes and one for skinned meshes.
type Pipeline interface {
	// Name returns a label for logs and dumps.
	//
	// Returns:
	//   - string: the pipeline label
	Name() string
}

// Skin is the binding between a mesh's vertices and a skeleton's bones.
type Skin interface {
	// BoneCount returns how many bones the skin's vertices reference.
	//
	// Returns:
	//   - int: the number of bones used by the skin
	BoneCount() int
}

// Mesh is renderable geometry. It issues the draw call using whatever state the
// Material bound just before.
type Mesh interface {
	// Draw issues the geometry draw call.
	//
	// Returns:
	//   - error: an error if the draw could not be issued
	Draw() error

	// Skin returns the skinning data of the mesh, or nil for rigid geometry.
	//
	// Returns:
	//   - Skin: the skin binding or nil
	Skin() Skin
}

// Skeleton computes bone matrices for skinned meshes.
type Skeleton interface {
	// BoneCount returns the number of bones in the skeleton.
	//
	// Returns:
	//   - int: the bone count
	BoneCount() int

	// ComputeBoneTransforms returns exactly BoneCount() model-to-camera transforms
	// for the current pose, bound through skin.
	//
	// Parameters:
	//   - modelToCamera: the mesh instance's model-to-camera transform
	//   - skin: the mesh's skin binding
	//
	// Returns:
	//   - [][16]float32: the bone transforms (column-major)
	ComputeBoneTransforms(modelToCamera [16]float32, skin Skin) [][16]float32
}

// Material binds textures and shader state for a draw. Neither render method issues
// the geometry draw call; the dispatcher calls Mesh.Draw right after. Both receive the
// frame's light uniforms read-only: Slots() carries Count() vec4 values and
// ActiveLights() the number of packed lights.
type Material interface {
	// Render prepares a rigid draw.
	//
	// Parameters:
	//   - pipeline: the rigid-geometry pipeline
	//   - modelToProjection: model to clip space
	//   - modelToCamera: model to camera space
	//   - lights: the frame's light uniforms
	//
	// Returns:
	//   - error: an error if the material could not be bound
	Render(pipeline Pipeline, modelToProjection, modelToCamera [16]float32, lights *light.Uniforms) error

	// RenderSkinned prepares a skinned draw.
	//
	// Parameters:
	//   - pipeline: the skinned-geometry pipeline
	//   - cameraToProjection: camera to clip space
	//   - bones: per-bone model-to-camera transforms; len(bones) is the bone count
	//   - lights: the frame's light uniforms
	//
	// Returns:
	//   - error: an error if the material could not be bound
	RenderSkinned(pipeline Pipeline, cameraToProjection [16]float32, bones [][16]float32, lights *light.Uniforms) error
}

// UpdateHook runs once per frame for a mesh instance during the scene's update phase.
type UpdateHook func(deltaTime float32) error

type instanceImpl struct {
	mu *sync.Mutex

	node     node.Handle
	mesh     Mesh
	material Material
	skeleton Skeleton
	onUpdate UpdateHook
}

// Instance places a Mesh with a Material, and optionally a Skeleton, at a node of the
// scene graph. The instance references all of them without owning any.
type Instance interface {
	// Node returns the handle of the node this mesh is attached to.
	//
	// Returns:
	//   - node.Handle: the mesh node
	Node() node.Handle

	// Mesh returns the geometry.
	//
	// Returns:
	//   - Mesh: the mesh
	Mesh() Mesh

	// Material returns the material.
	//
	// Returns:
	//   - Material: the material
	Material() Material

	// Skeleton returns the skeleton, or nil for rigid instances.
	//
	// Returns:
	//   - Skeleton: the skeleton or nil
	Skeleton() Skeleton

	// SetMesh replaces the geometry.
	//
	// Parameters:
	//   - m: the new mesh (must not be nil)
	SetMesh(m Mesh)

	// SetMaterial replaces the material.
	//
	// Parameters:
	//   - m: the new material (must not be nil)
	SetMaterial(m Material)

	// SetSkeleton replaces the skeleton. Pass nil to render rigidly from the next frame on.
	//
	// Parameters:
	//   - s: the new skeleton or nil
	SetSkeleton(s Skeleton)

	// Skinned reports whether the instance renders through the skeletal path:
	// both a skeleton and a mesh skin must be present.
	//
	// Returns:
	//   - bool: true for skeletal dispatch
	Skinned() bool

	// Update runs the per-frame update hook, if any.
	//
	// Parameters:
	//   - deltaTime: the frame time in seconds
	//
	// Returns:
	//   - error: the hook's error
	Update(deltaTime float32) error
}

var _ Instance = &instanceImpl{}

// NewInstance creates a mesh instance at n. Mesh and material are required.
//
// Parameters:
//   - n: the node carrying the mesh
//   - m: the geometry
//   - mat: the material
//   - options: functional options (skeleton, update hook)
//
// Returns:
//   - Instance: the newly created mesh instance
func NewInstance(n node.Handle, m Mesh, mat Material, options ...InstanceBuilderOption) Instance {
	if m == nil {
		panic("mesh: NewInstance requires a non-nil Mesh")
	}
	if mat == nil {
		panic("mesh: NewInstance requires a non-nil Material")
	}
	i := &instanceImpl{
		mu:       &sync.Mutex{},
		node:     n,
		mesh:     m,
		material: mat,
	}
	for _, opt := range options {
		opt(i)
	}
	return i
}

func (i *instanceImpl) Node() node.Handle {
	return i.node
}

func (i *instanceImpl) Mesh() Mesh {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.mesh
}

func (i *instanceImpl) Material() Material {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.material
}

func (i *instanceImpl) Skeleton() Skeleton {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.skeleton
}

func (i *instanceImpl) SetMesh(m Mesh) {
	if m == nil {
		panic("mesh: SetMesh requires a non-nil Mesh")
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	i.mesh = m
}

func (i *instanceImpl) SetMaterial(m Material) {
	if m == nil {
		panic("mesh: SetMaterial requires a non-nil Material")
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	i.material = m
}

func (i *instanceImpl) SetSkeleton(s Skeleton) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.skeleton = s
}

func (i *instanceImpl) Skinned() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.skeleton != nil && i.mesh.Skin() != nil
}

func (i *instanceImpl) Update(deltaTime float32) error {
	i.mu.Lock()
	hook := i.onUpdate
	i.mu.Unlock()
	if hook == nil {
		return nil
	}
	return hook(deltaTime)
}
