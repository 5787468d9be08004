package common

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Plane represents a half-space in 3D space using the equation: dot(Normal, p) + Distance = 0.
// The normal points into the frustum, so points with a positive signed distance are inside.
type Plane struct {
	Normal   mgl32.Vec3
	Distance float32
}

// SignedDistance returns the signed distance from the point to the plane.
//
// Parameters:
//   - point: the point to measure
//
// Returns:
//   - float32: positive inside the half-space, negative outside
func (p Plane) SignedDistance(point mgl32.Vec3) float32 {
	return p.Normal.Dot(point) + p.Distance
}

// ContainsSphere reports whether a sphere is on or in front of the plane, i.e. not fully behind it.
//
// Parameters:
//   - center: sphere center, in the same space as the plane
//   - radius: sphere radius
//
// Returns:
//   - bool: true if SignedDistance(center) >= -radius
func (p Plane) ContainsSphere(center mgl32.Vec3, radius float32) bool {
	return p.SignedDistance(center) >= -radius
}

// Frustum represents the six planes of a view frustum for culling.
// Planes are oriented so that positive half-space is inside the frustum.
// A Frustum is a transient value derived from a camera and must not outlive a camera mutation.
type Frustum struct {
	Planes [6]Plane // Left, Right, Bottom, Top, Near, Far
}

// FrustumPlane indices for clarity
const (
	FrustumLeft   = 0
	FrustumRight  = 1
	FrustumBottom = 2
	FrustumTop    = 3
	FrustumNear   = 4
	FrustumFar    = 5
)

// CullingPlanes lists the planes tested by sphere culling. The far plane is deliberately absent.
var CullingPlanes = [5]int{FrustumBottom, FrustumTop, FrustumLeft, FrustumRight, FrustumNear}

// Left returns the left plane.
func (f Frustum) Left() Plane { return f.Planes[FrustumLeft] }

// Right returns the right plane.
func (f Frustum) Right() Plane { return f.Planes[FrustumRight] }

// Bottom returns the bottom plane.
func (f Frustum) Bottom() Plane { return f.Planes[FrustumBottom] }

// Top returns the top plane.
func (f Frustum) Top() Plane { return f.Planes[FrustumTop] }

// Near returns the near plane.
func (f Frustum) Near() Plane { return f.Planes[FrustumNear] }

// Far returns the far plane.
func (f Frustum) Far() Plane { return f.Planes[FrustumFar] }

// ExtractFrustumFromMatrix extracts frustum planes from a view-projection matrix.
// The matrix should be the combined Projection * View matrix and must target WebGPU
// clip space, where depth runs from 0 at the near plane to w at the far plane.
// Uses the Gribb/Hartmann method for plane extraction.
//
// Reference: https://www8.cs.umu.se/kurser/5DV051/HT12/lab/plane_extraction.pdf
//
// Parameters:
//   - viewProj: the combined view-projection matrix (column-major)
//
// Returns:
//   - Frustum: the extracted frustum with normalized planes
func ExtractFrustumFromMatrix(viewProj mgl32.Mat4) Frustum {
	var f Frustum

	r0, r1, r2, r3 := viewProj.Rows()

	f.Planes[FrustumLeft] = planeFromRow(r3.Add(r0))
	f.Planes[FrustumRight] = planeFromRow(r3.Sub(r0))
	f.Planes[FrustumBottom] = planeFromRow(r3.Add(r1))
	f.Planes[FrustumTop] = planeFromRow(r3.Sub(r1))
	// [0, 1] depth: the near plane is z >= 0 rather than z >= -w.
	f.Planes[FrustumNear] = planeFromRow(r2)
	f.Planes[FrustumFar] = planeFromRow(r3.Sub(r2))

	return f
}

// planeFromRow builds a normalized Plane from a combined matrix row (a, b, c, d).
func planeFromRow(row mgl32.Vec4) Plane {
	p := Plane{
		Normal:   row.Vec3(),
		Distance: row[3],
	}
	length := p.Normal.Len()
	if length > 0 {
		invLen := 1.0 / length
		p.Normal = p.Normal.Mul(invLen)
		p.Distance *= invLen
	}
	return p
}
