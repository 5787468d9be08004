package scene

import (
	"github.com/Carmen-Shannon/oxy-deferred/common"
	"github.com/Carmen-Shannon/oxy-deferred/engine/camera"
	"github.com/Carmen-Shannon/oxy-deferred/engine/game_object"
	"github.com/go-gl/mathgl/mgl32"
)

// EffectiveRadius returns the world-space radius used to cull a bounding sphere under a transform.
// It is the larger of half the length of the transformed (1,1,1) diagonal sample and the
// local radius times the largest axis scale, so it never shrinks as a uniform scale grows.
//
// Parameters:
//   - bounds: the local-space bounding sphere
//   - transform: the model-to-world transform
//
// Returns:
//   - float32: the effective radius
func EffectiveRadius(bounds common.BoundingSphere, transform mgl32.Mat4) float32 {
	center := common.TransformPoint(transform, bounds.Center)
	surface := common.TransformPoint(transform, bounds.Center.Add(mgl32.Vec3{1, 1, 1}.Mul(bounds.Radius)))
	sampled := surface.Sub(center).Len() * 0.5

	return max(sampled, bounds.Radius*common.MaxAxisScale(transform))
}

// CameraRelativeSphere returns an object's culling sphere with its center expressed relative to
// the camera position, the space the camera's frustum planes live in.
//
// Parameters:
//   - obj: the object
//   - cameraPosition: the camera's world-space position
//
// Returns:
//   - mgl32.Vec3: the camera-relative center
//   - float32: the effective radius
func CameraRelativeSphere(obj game_object.GameObject, cameraPosition mgl32.Vec3) (mgl32.Vec3, float32) {
	bounds := obj.Mesh().Bounds()
	transform := obj.Transform()

	center := common.TransformPoint(transform, bounds.Center)
	return center.Sub(cameraPosition), EffectiveRadius(bounds, transform)
}

// IsVisible reports whether an object's bounding sphere is on or in front of every culling
// plane of the frustum (bottom, top, left, right and near). The far plane is not tested.
// False positives are possible; a visible object is never rejected.
//
// Parameters:
//   - frustum: the camera's frustum, computed for the current pass
//   - obj: the object to test
//   - cam: the camera the frustum was computed from
//
// Returns:
//   - bool: true if the object may be visible
func IsVisible(frustum common.Frustum, obj game_object.GameObject, cam camera.Camera) bool {
	return isVisibleFrom(frustum, obj, cam.Position())
}

func isVisibleFrom(frustum common.Frustum, obj game_object.GameObject, cameraPosition mgl32.Vec3) bool {
	center, radius := CameraRelativeSphere(obj, cameraPosition)
	for _, i := range common.CullingPlanes {
		if !frustum.Planes[i].ContainsSphere(center, radius) {
			return false
		}
	}
	return true
}
