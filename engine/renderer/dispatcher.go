package renderer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-scene/engine/camera"
	"github.com/Carmen-Shannon/oxy-scene/engine/light"
	"github.com/Carmen-Shannon/oxy-scene/engine/mesh"
	"github.com/Carmen-Shannon/oxy-scene/engine/node"
)

// MaxBones is the bone capacity of the skinned shading path. A skeleton producing
// MaxBones or more bone transforms cannot be rendered.
const MaxBones = 64

// ErrBoneLimit is returned when a skinned mesh exceeds MaxBones. It aborts the frame.
var ErrBoneLimit = errors.New("renderer: bone count exceeds skinned pipeline capacity")

// Path identifies which shading path a mesh instance was dispatched through.
type Path int

const (
	// PathRigid renders with per-object model-to-projection and model-to-camera transforms.
	PathRigid Path = iota

	// PathSkeletal renders with per-bone model-to-camera transforms.
	PathSkeletal
)

// String returns the path name.
func (p Path) String() string {
	switch p {
	case PathSkeletal:
		return "skeletal"
	default:
		return "rigid"
	}
}

// Frame is the per-frame state shared by every dispatch. The scene fills it once per
// Render after resolving the camera and aggregating lights.
type Frame struct {
	// Graph resolves mesh node world transforms.
	Graph node.Graph

	// Camera composes model transforms into camera and clip space.
	Camera camera.Instance

	// CameraToProjection is the camera's projection matrix for the frame.
	CameraToProjection [16]float32

	// Lights are the frame's aggregated light uniforms, read-only to materials.
	Lights *light.Uniforms

	// ObjectPipeline shades rigid meshes.
	ObjectPipeline mesh.Pipeline

	// SkinnedPipeline shades skinned meshes.
	SkinnedPipeline mesh.Pipeline
}

// Stats counts the dispatches made since the last BeginFrame.
type Stats struct {
	Rigid    int
	Skeletal int
}

// Total returns the number of meshes dispatched.
func (s Stats) Total() int {
	return s.Rigid + s.Skeletal
}

type dispatcherImpl struct {
	mu *sync.Mutex

	stats    Stats
	maxBones int
	onDraw   func(mi mesh.Instance, path Path)
}

// Dispatcher selects and issues the shading path for one mesh instance at a time.
// It holds no state across meshes beyond the per-frame statistics.
type Dispatcher interface {
	// BeginFrame resets the per-frame statistics.
	BeginFrame()

	// Dispatch resolves the instance's transforms, binds its material through the rigid
	// or skeletal path and issues the mesh draw call.
	//
	// An instance renders skeletally when it has a skeleton and its mesh carries a skin.
	// That is re-evaluated on every call, so attaching or detaching either switches the
	// path on the next frame.
	//
	// Parameters:
	//   - frame: the frame state
	//   - mi: the mesh instance to draw
	//
	// Returns:
	//   - Path: the path taken
	//   - error: an error wrapping ErrBoneLimit, node.ErrInvalidHandle, or a collaborator error
	Dispatch(frame *Frame, mi mesh.Instance) (Path, error)

	// Stats returns the dispatch counts since the last BeginFrame.
	//
	// Returns:
	//   - Stats: the per-path counts
	Stats() Stats
}

var _ Dispatcher = &dispatcherImpl{}

// NewDispatcher creates a Dispatcher.
//
// Parameters:
//   - options: functional options to configure the dispatcher
//
// Returns:
//   - Dispatcher: the new dispatcher
func NewDispatcher(options ...DispatcherBuilderOption) Dispatcher {
	d := &dispatcherImpl{
		mu:       &sync.Mutex{},
		maxBones: MaxBones,
	}
	for _, opt := range options {
		opt(d)
	}
	return d
}

func (d *dispatcherImpl) BeginFrame() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stats = Stats{}
}

func (d *dispatcherImpl) Stats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stats
}

func (d *dispatcherImpl) Dispatch(frame *Frame, mi mesh.Instance) (Path, error) {
	modelToWorld, err := frame.Graph.WorldTransform(mi.Node())
	if err != nil {
		return PathRigid, fmt.Errorf("dispatch mesh at %s: %w", mi.Node(), err)
	}
	modelToProjection, modelToCamera := frame.Camera.ResolveModelTransforms(modelToWorld)

	m := mi.Mesh()
	material := mi.Material()
	skeleton := mi.Skeleton()
	skin := m.Skin()

	path := PathRigid
	if skeleton != nil && skin != nil {
		path = PathSkeletal
		count := skeleton.BoneCount()
		if count >= d.maxBones {
			return path, fmt.Errorf("dispatch mesh at %s with %d bones (limit %d): %w", mi.Node(), count, d.maxBones, ErrBoneLimit)
		}
		bones := skeleton.ComputeBoneTransforms(modelToCamera, skin)
		if len(bones) != count {
			return path, fmt.Errorf("dispatch mesh at %s: skeleton returned %d transforms for %d bones", mi.Node(), len(bones), count)
		}
		if err := material.RenderSkinned(frame.SkinnedPipeline, frame.CameraToProjection, bones, frame.Lights); err != nil {
			return path, fmt.Errorf("render skinned material: %w", err)
		}
	} else {
		if err := material.Render(frame.ObjectPipeline, modelToProjection, modelToCamera, frame.Lights); err != nil {
			return path, fmt.Errorf("render material: %w", err)
		}
	}

	if err := m.Draw(); err != nil {
		return path, fmt.Errorf("draw mesh: %w", err)
	}

	d.mu.Lock()
	if path == PathSkeletal {
		d.stats.Skeletal++
	} else {
		d.stats.Rigid++
	}
	onDraw := d.onDraw
	d.mu.Unlock()

	if onDraw != nil {
		onDraw(mi, path)
	}
	return path, nil
}
