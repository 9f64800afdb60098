package camera

// CameraBuilderOption is a functional option for configuring a camera Instance.
type CameraBuilderOption func(*cameraImpl)

// WithFov sets the camera's vertical field of view in radians.
//
// Parameters:
//   - fov: field of view in radians
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's field of view
func WithFov(fov float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.fov = fov
	}
}

// WithAspect sets the camera's initial aspect ratio (width / height).
// The scene overrides it every frame with the aspect passed to Render.
//
// Parameters:
//   - aspect: the aspect ratio to set
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's aspect ratio
func WithAspect(aspect float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.aspect = aspect
	}
}

// WithNear sets the near clipping plane distance.
//
// Parameters:
//   - near: near plane distance
//
// Returns:
//   - CameraBuilderOption: a function that sets the near plane
func WithNear(near float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.near = near
	}
}

// WithFar sets the far clipping plane distance.
//
// Parameters:
//   - far: far plane distance
//
// Returns:
//   - CameraBuilderOption: functional option to set the far plane
func WithFar(far float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.far = far
	}
}

// WithOrthographic switches the camera to an orthographic projection of the given half height.
//
// Parameters:
//   - halfHeight: half the view volume height in world units
//
// Returns:
//   - CameraBuilderOption: functional option to set the projection
func WithOrthographic(halfHeight float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.projection = ProjectionOrthographic
		c.halfHeight = halfHeight
	}
}
