package camera

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/node"
	"github.com/chewxy/math32"
)

// Projection identifies how a camera maps camera space to clip space.
type Projection int

const (
	// ProjectionPerspective uses a vertical field of view and converging view rays.
	ProjectionPerspective Projection = iota

	// ProjectionOrthographic uses parallel view rays over a fixed view height.
	ProjectionOrthographic
)

// String returns the lowercase name of the projection.
func (p Projection) String() string {
	switch p {
	case ProjectionPerspective:
		return "perspective"
	case ProjectionOrthographic:
		return "orthographic"
	default:
		return "unknown"
	}
}

type cameraImpl struct {
	mu *sync.Mutex

	node       node.Handle
	projection Projection

	fov        float32
	halfHeight float32
	aspect     float32
	near       float32
	far        float32

	cameraToWorld      [16]float32
	worldToCamera      [16]float32
	cameraToProjection [16]float32
}

// Instance attaches a viewpoint to a node of the scene graph.
// The camera looks down its node's local -Z axis. Each frame the scene resolves the
// node's world transform and hands it to SetWorldTransform, after which the camera
// serves the world-to-camera and camera-to-projection transforms and composes them
// with model transforms for the render dispatcher.
type Instance interface {
	// Node returns the handle of the node this camera is attached to.
	//
	// Returns:
	//   - node.Handle: the camera node
	Node() node.Handle

	// Projection returns the projection kind.
	//
	// Returns:
	//   - Projection: perspective or orthographic
	Projection() Projection

	// Fov returns the vertical field of view in radians (perspective cameras).
	//
	// Returns:
	//   - float32: field of view in radians
	Fov() float32

	// HalfHeight returns half the view volume height (orthographic cameras).
	//
	// Returns:
	//   - float32: half height in world units
	HalfHeight() float32

	// Aspect returns the aspect ratio (width / height) used by the last projection update.
	//
	// Returns:
	//   - float32: the aspect ratio
	Aspect() float32

	// Near returns the near clipping plane distance.
	//
	// Returns:
	//   - float32: near plane distance
	Near() float32

	// Far returns the far clipping plane distance.
	//
	// Returns:
	//   - float32: far plane distance
	Far() float32

	// SetPerspective switches to a perspective projection.
	//
	// Parameters:
	//   - fov: vertical field of view in radians
	//   - near: near plane distance
	//   - far: far plane distance
	SetPerspective(fov, near, far float32)

	// SetOrthographic switches to an orthographic projection.
	//
	// Parameters:
	//   - halfHeight: half the view volume height in world units
	//   - near: near plane distance
	//   - far: far plane distance
	SetOrthographic(halfHeight, near, far float32)

	// SetWorldTransform stores the camera-to-world transform for the frame, derives the
	// world-to-camera transform and rebuilds the projection for the given aspect ratio.
	//
	// Parameters:
	//   - cameraToWorld: the camera node's world transform (rotation and translation only)
	//   - aspect: viewport aspect ratio (width / height)
	SetWorldTransform(cameraToWorld [16]float32, aspect float32)

	// CameraToWorld returns the transform last passed to SetWorldTransform.
	//
	// Returns:
	//   - [16]float32: the camera-to-world matrix
	CameraToWorld() [16]float32

	// WorldToCamera returns the inverse of the camera-to-world transform.
	//
	// Returns:
	//   - [16]float32: the world-to-camera (view) matrix
	WorldToCamera() [16]float32

	// CameraToProjection returns the projection matrix.
	//
	// Returns:
	//   - [16]float32: the camera-to-projection matrix
	CameraToProjection() [16]float32

	// ResolveModelTransforms composes a model's world transform with the camera transforms.
	//
	// Parameters:
	//   - modelToWorld: the model node's world transform
	//
	// Returns:
	//   - modelToProjection: cameraToProjection * worldToCamera * modelToWorld
	//   - modelToCamera: worldToCamera * modelToWorld
	ResolveModelTransforms(modelToWorld [16]float32) (modelToProjection, modelToCamera [16]float32)
}

var _ Instance = &cameraImpl{}

// NewInstance creates a camera attached to n with a 45 degree perspective projection.
//
// Parameters:
//   - n: the node carrying the camera
//   - options: functional options to configure the camera
//
// Returns:
//   - Instance: the newly created camera
func NewInstance(n node.Handle, options ...CameraBuilderOption) Instance {
	c := &cameraImpl{
		mu:            &sync.Mutex{},
		node:          n,
		projection:    ProjectionPerspective,
		fov:           45.0 * (math32.Pi / 180.0),
		halfHeight:    1.0,
		aspect:        1.0,
		near:          0.1,
		far:           100.0,
		cameraToWorld: common.IdentityMatrix(),
		worldToCamera: common.IdentityMatrix(),
	}
	for _, option := range options {
		option(c)
	}
	c.updateProjection()
	return c
}

func (c *cameraImpl) Node() node.Handle {
	return c.node
}

func (c *cameraImpl) Projection() Projection {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projection
}

func (c *cameraImpl) Fov() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fov
}

func (c *cameraImpl) HalfHeight() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.halfHeight
}

func (c *cameraImpl) Aspect() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aspect
}

func (c *cameraImpl) Near() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.near
}

func (c *cameraImpl) Far() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.far
}

func (c *cameraImpl) SetPerspective(fov, near, far float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.projection = ProjectionPerspective
	c.fov, c.near, c.far = fov, near, far
	c.updateProjection()
}

func (c *cameraImpl) SetOrthographic(halfHeight, near, far float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.projection = ProjectionOrthographic
	c.halfHeight, c.near, c.far = halfHeight, near, far
	c.updateProjection()
}

func (c *cameraImpl) SetWorldTransform(cameraToWorld [16]float32, aspect float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cameraToWorld = cameraToWorld
	c.worldToCamera = common.InvertRigid(cameraToWorld)
	if aspect > 0 {
		c.aspect = aspect
	}
	c.updateProjection()
}

func (c *cameraImpl) CameraToWorld() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cameraToWorld
}

func (c *cameraImpl) WorldToCamera() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.worldToCamera
}

func (c *cameraImpl) CameraToProjection() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cameraToProjection
}

func (c *cameraImpl) ResolveModelTransforms(modelToWorld [16]float32) (modelToProjection, modelToCamera [16]float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	common.Mul4(modelToCamera[:], c.worldToCamera[:], modelToWorld[:])
	common.Mul4(modelToProjection[:], c.cameraToProjection[:], modelToCamera[:])
	return modelToProjection, modelToCamera
}

// updateProjection rebuilds the camera-to-projection matrix from the current settings.
// Caller must hold the mutex.
func (c *cameraImpl) updateProjection() {
	switch c.projection {
	case ProjectionOrthographic:
		hw := c.halfHeight * c.aspect
		common.Orthographic(c.cameraToProjection[:], -hw, hw, -c.halfHeight, c.halfHeight, c.near, c.far)
	default:
		common.Perspective(c.cameraToProjection[:], c.fov, c.aspect, c.near, c.far)
	}
}
