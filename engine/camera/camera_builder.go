package camera

import "github.com/go-gl/mathgl/mgl32"

type CameraBuilderOption func(*cameraImpl)

// WithPosition sets the camera's world-space position.
//
// Parameters:
//   - x, y, z: position components
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's position
func WithPosition(x, y, z float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.position = mgl32.Vec3{x, y, z}
	}
}

// WithOrientation sets the camera's yaw and pitch in radians.
//
// Parameters:
//   - yaw: rotation around the up axis, zero looks down -Z
//   - pitch: elevation, clamped to ±89 degrees
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's orientation
func WithOrientation(yaw, pitch float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.setOrientation(yaw, pitch)
	}
}

// WithTarget orients the camera toward a world-space point. Apply after WithPosition.
//
// Parameters:
//   - x, y, z: the point to look at
//
// Returns:
//   - CameraBuilderOption: a function that orients the camera
func WithTarget(x, y, z float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.lookToward(mgl32.Vec3{x, y, z}.Sub(c.position))
	}
}

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

// WithAspect sets the camera's aspect ratio (width / height).
//
// Parameters:
//   - aspect: the aspect ratio to set
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's aspect ratio
func WithAspect(aspect float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		if aspect > 0 {
			c.aspect = aspect
		}
	}
}

// WithClipPlanes sets the near and far clipping distances.
//
// Parameters:
//   - near: near plane distance
//   - far: far plane distance
//
// Returns:
//   - CameraBuilderOption: a function that sets the clip planes
func WithClipPlanes(near, far float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.near = near
		c.far = far
	}
}
