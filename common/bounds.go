package common

import (
	"errors"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrEmptyMesh is returned when a bounding volume is requested for a vertex set with no positions.
var ErrEmptyMesh = errors.New("mesh has no vertices")

// BoundingSphere is a sphere guaranteed to contain every vertex it was computed from.
type BoundingSphere struct {
	Center mgl32.Vec3
	Radius float32
}

// ComputeBoundingSphere computes the sphere enclosing the axis-aligned bounding box of the positions.
// The center is the midpoint of the min/max corners and the radius is half the corner-to-corner diagonal.
//
// Parameters:
//   - positions: vertex positions in local space
//
// Returns:
//   - BoundingSphere: the enclosing sphere
//   - error: ErrEmptyMesh if positions is empty
func ComputeBoundingSphere(positions []mgl32.Vec3) (BoundingSphere, error) {
	if len(positions) == 0 {
		return BoundingSphere{}, ErrEmptyMesh
	}

	min, max := ComputeBoundingBox(positions)
	diag := max.Sub(min)
	return BoundingSphere{
		Center: min.Add(max).Mul(0.5),
		Radius: diag.Len() * 0.5,
	}, nil
}

// ComputeBoundingBox returns the component-wise minimum and maximum corners of the positions.
// An empty input yields (+Inf, -Inf) corners.
//
// Parameters:
//   - positions: vertex positions
//
// Returns:
//   - mgl32.Vec3: minimum corner
//   - mgl32.Vec3: maximum corner
func ComputeBoundingBox(positions []mgl32.Vec3) (mgl32.Vec3, mgl32.Vec3) {
	inf := float32(math.Inf(1))
	min := mgl32.Vec3{inf, inf, inf}
	max := mgl32.Vec3{-inf, -inf, -inf}

	for _, p := range positions {
		for i := range 3 {
			if p[i] < min[i] {
				min[i] = p[i]
			}
			if p[i] > max[i] {
				max[i] = p[i]
			}
		}
	}
	return min, max
}

// Contains reports whether the point lies inside the sphere, with a tolerance for float rounding.
//
// Parameters:
//   - p: the point to test
//   - epsilon: tolerance added to the radius
//
// Returns:
//   - bool: true if the point is within Radius + epsilon of Center
func (s BoundingSphere) Contains(p mgl32.Vec3, epsilon float32) bool {
	return p.Sub(s.Center).Len() <= s.Radius+epsilon
}
