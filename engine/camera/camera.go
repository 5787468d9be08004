package camera

import (
	"math"
	"sync"

	"github.com/Carmen-Shannon/oxy-deferred/common"
	"github.com/go-gl/mathgl/mgl32"
)

// maxPitch keeps the forward vector away from the world up axis.
const maxPitch = float32(89 * math.Pi / 180)

// worldUp is the fixed up axis of the fly camera.
var worldUp = mgl32.Vec3{0, 1, 0}

type cameraImpl struct {
	mu *sync.Mutex

	position mgl32.Vec3
	yaw      float32
	pitch    float32

	fov    float32
	aspect float32
	near   float32
	far    float32

	viewMatrix           mgl32.Mat4
	projectionMatrix     mgl32.Mat4
	viewProjectionMatrix mgl32.Mat4
}

// Camera is a perspective camera positioned by a world-space position and a yaw/pitch orientation.
// Matrices are recomputed on every mutation. The frustum is derived on demand and never cached,
// so a Frustum obtained before a mutation describes the old state.
type Camera interface {
	// Position returns the camera's world-space position.
	//
	// Returns:
	//   - mgl32.Vec3: the position
	Position() mgl32.Vec3

	// SetPosition moves the camera.
	//
	// Parameters:
	//   - position: the new world-space position
	SetPosition(position mgl32.Vec3)

	// Yaw returns the rotation around the world up axis in radians. Zero looks down -Z.
	//
	// Returns:
	//   - float32: yaw in radians
	Yaw() float32

	// Pitch returns the elevation of the view direction in radians, within ±89 degrees.
	//
	// Returns:
	//   - float32: pitch in radians
	Pitch() float32

	// SetOrientation sets yaw and pitch. Pitch is clamped to ±89 degrees.
	//
	// Parameters:
	//   - yaw: rotation around the up axis in radians
	//   - pitch: elevation in radians
	SetOrientation(yaw, pitch float32)

	// Rotate adds deltas to yaw and pitch.
	//
	// Parameters:
	//   - dYaw: yaw delta in radians
	//   - dPitch: pitch delta in radians
	Rotate(dYaw, dPitch float32)

	// LookAt places the camera at eye and orients it toward target.
	// A target equal to eye leaves the orientation unchanged.
	//
	// Parameters:
	//   - eye: the new position
	//   - target: the point to look at
	LookAt(eye, target mgl32.Vec3)

	// Forward returns the unit view direction.
	//
	// Returns:
	//   - mgl32.Vec3: the view direction
	Forward() mgl32.Vec3

	// Right returns the unit right vector.
	//
	// Returns:
	//   - mgl32.Vec3: the right vector
	Right() mgl32.Vec3

	// Up returns the unit up vector of the view, orthogonal to Forward and Right.
	//
	// Returns:
	//   - mgl32.Vec3: the up vector
	Up() mgl32.Vec3

	// Fov returns the vertical field of view.
	//
	// Returns:
	//   - float32: field of view in radians
	Fov() float32

	// Aspect returns the aspect ratio.
	//
	// Returns:
	//   - float32: width divided by height
	Aspect() float32

	// Near returns the near clipping distance.
	//
	// Returns:
	//   - float32: near plane distance
	Near() float32

	// Far returns the far clipping distance.
	//
	// Returns:
	//   - float32: far plane distance
	Far() float32

	// SetFov sets the vertical field of view in radians and recomputes matrices.
	//
	// Parameters:
	//   - fov: field of view in radians
	SetFov(fov float32)

	// SetAspect sets the aspect ratio (width / height) and recomputes matrices.
	// Non-positive values are ignored.
	//
	// Parameters:
	//   - aspect: the aspect ratio
	SetAspect(aspect float32)

	// SetClipPlanes sets the near and far clipping distances and recomputes matrices.
	//
	// Parameters:
	//   - near: near plane distance
	//   - far: far plane distance
	SetClipPlanes(near, far float32)

	// ViewMatrix returns the world-to-view matrix.
	ViewMatrix() mgl32.Mat4

	// ProjectionMatrix returns the perspective projection with a [0, 1] depth range.
	ProjectionMatrix() mgl32.Mat4

	// ViewProjectionMatrix returns ProjectionMatrix * ViewMatrix.
	ViewProjectionMatrix() mgl32.Mat4

	// InverseViewProjectionMatrix returns the inverse of ViewProjectionMatrix.
	// Used by the light pass to reconstruct world positions from depth.
	InverseViewProjectionMatrix() mgl32.Mat4

	// Frustum extracts the view frustum in camera-relative space: the planes are built from
	// the projection times the rotation-only view, so points are tested after subtracting Position.
	//
	// Returns:
	//   - common.Frustum: the frustum of the current camera state
	Frustum() common.Frustum
}

var _ Camera = &cameraImpl{}

// NewCamera creates a new Camera at the origin looking down -Z.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:     &sync.Mutex{},
		fov:    45.0 * (math.Pi / 180.0),
		aspect: 1.0,
		near:   0.1,
		far:    1000.0,
	}
	for _, option := range options {
		option(c)
	}
	c.updateMatrices()
	return c
}

func (c *cameraImpl) Position() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position
}

func (c *cameraImpl) SetPosition(position mgl32.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.position = position
	c.updateMatrices()
}

func (c *cameraImpl) Yaw() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.yaw
}

func (c *cameraImpl) Pitch() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pitch
}

func (c *cameraImpl) SetOrientation(yaw, pitch float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setOrientation(yaw, pitch)
	c.updateMatrices()
}

func (c *cameraImpl) Rotate(dYaw, dPitch float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setOrientation(c.yaw+dYaw, c.pitch+dPitch)
	c.updateMatrices()
}

func (c *cameraImpl) LookAt(eye, target mgl32.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.position = eye
	c.lookToward(target.Sub(eye))
	c.updateMatrices()
}

func (c *cameraImpl) Forward() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.forward()
}

func (c *cameraImpl) Right() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.right()
}

func (c *cameraImpl) Up() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.right().Cross(c.forward())
}

func (c *cameraImpl) Fov() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fov
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

func (c *cameraImpl) SetFov(fov float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fov = fov
	c.updateMatrices()
}

func (c *cameraImpl) SetAspect(aspect float32) {
	if aspect <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aspect = aspect
	c.updateMatrices()
}

func (c *cameraImpl) SetClipPlanes(near, far float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.near = near
	c.far = far
	c.updateMatrices()
}

func (c *cameraImpl) ViewMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewMatrix
}

func (c *cameraImpl) ProjectionMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projectionMatrix
}

func (c *cameraImpl) ViewProjectionMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewProjectionMatrix
}

func (c *cameraImpl) InverseViewProjectionMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewProjectionMatrix.Inv()
}

func (c *cameraImpl) Frustum() common.Frustum {
	c.mu.Lock()
	defer c.mu.Unlock()
	return common.ExtractFrustumFromMatrix(c.projectionMatrix.Mul4(common.WithoutTranslation(c.viewMatrix)))
}

// forward computes the view direction from yaw and pitch. Caller must hold the lock.
func (c *cameraImpl) forward() mgl32.Vec3 {
	sy, cy := math.Sincos(float64(c.yaw))
	sp, cp := math.Sincos(float64(c.pitch))
	return mgl32.Vec3{float32(cp * sy), float32(sp), float32(-cp * cy)}
}

func (c *cameraImpl) right() mgl32.Vec3 {
	return common.NormalizeOrZero(c.forward().Cross(worldUp))
}

func (c *cameraImpl) setOrientation(yaw, pitch float32) {
	c.yaw = float32(math.Remainder(float64(yaw), 2*math.Pi))
	c.pitch = common.Clamp(pitch, -maxPitch, maxPitch)
}

// lookToward orients the camera along dir. Caller must hold the lock.
func (c *cameraImpl) lookToward(dir mgl32.Vec3) {
	if dir.Len() == 0 {
		return
	}
	dir = dir.Normalize()
	yaw := float32(math.Atan2(float64(dir.X()), float64(-dir.Z())))
	pitch := float32(math.Asin(float64(common.Clamp(dir.Y(), -1, 1))))
	c.setOrientation(yaw, pitch)
}

// updateMatrices recomputes the view, projection, and view-projection matrices.
// Caller must hold the lock.
func (c *cameraImpl) updateMatrices() {
	f := c.forward()
	c.viewMatrix = mgl32.LookAtV(c.position, c.position.Add(f), worldUp)
	c.projectionMatrix = common.Perspective(c.fov, c.aspect, c.near, c.far)
	c.viewProjectionMatrix = c.projectionMatrix.Mul4(c.viewMatrix)
}
