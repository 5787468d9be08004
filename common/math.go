package common

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// clipDepthCorrection remaps OpenGL clip depth [-w, w] to WebGPU clip depth [0, w]: z' = 0.5z + 0.5w.
var clipDepthCorrection = mgl32.Mat4{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 0.5, 0,
	0, 0, 0.5, 1,
}

// Perspective creates a perspective projection matrix targeting WebGPU clip space,
// where depth is 0 at the near plane and 1 at the far plane.
//
// Parameters:
//   - fovY: vertical field of view in radians
//   - aspect: viewport aspect ratio (width/height)
//   - near: near clipping plane distance (must be > 0)
//   - far: far clipping plane distance (must be > near)
//
// Returns:
//   - mgl32.Mat4: the projection matrix (column-major)
func Perspective(fovY, aspect, near, far float32) mgl32.Mat4 {
	return clipDepthCorrection.Mul4(mgl32.Perspective(fovY, aspect, near, far))
}

// TransformPoint transforms a point by an affine matrix, applying translation.
//
// Parameters:
//   - m: the transform
//   - p: the point
//
// Returns:
//   - mgl32.Vec3: m * (p, 1), truncated to xyz
func TransformPoint(m mgl32.Mat4, p mgl32.Vec3) mgl32.Vec3 {
	return m.Mul4x1(p.Vec4(1)).Vec3()
}

// WithoutTranslation returns a copy of the matrix with its translation column cleared.
// Applied to a view matrix it yields the camera-relative view used for culling.
//
// Parameters:
//   - m: an affine matrix
//
// Returns:
//   - mgl32.Mat4: m with m[12..14] zeroed
func WithoutTranslation(m mgl32.Mat4) mgl32.Mat4 {
	m[12], m[13], m[14] = 0, 0, 0
	return m
}

// NormalizeOrZero normalizes v, returning the zero vector for a zero-length input instead of NaNs.
//
// Parameters:
//   - v: the vector to normalize
//
// Returns:
//   - mgl32.Vec3: unit-length v, or zero
func NormalizeOrZero(v mgl32.Vec3) mgl32.Vec3 {
	l := v.Len()
	if l == 0 {
		return mgl32.Vec3{}
	}
	return v.Mul(1 / l)
}

// PutFloat32s writes little-endian float32 values into buf starting at offset.
//
// Parameters:
//   - buf: destination buffer
//   - offset: byte offset of the first value
//   - values: the values to write
func PutFloat32s(buf []byte, offset int, values ...float32) {
	for i, v := range values {
		binary.LittleEndian.PutUint32(buf[offset+i*4:], math.Float32bits(v))
	}
}

// PutMat4 writes a column-major 4x4 matrix (64 bytes) into buf at offset.
//
// Parameters:
//   - buf: destination buffer
//   - offset: byte offset
//   - m: the matrix
func PutMat4(buf []byte, offset int, m mgl32.Mat4) {
	PutFloat32s(buf, offset, m[:]...)
}

// PutVec3 writes a vec3 (12 bytes) into buf at offset.
//
// Parameters:
//   - buf: destination buffer
//   - offset: byte offset
//   - v: the vector
func PutVec3(buf []byte, offset int, v mgl32.Vec3) {
	PutFloat32s(buf, offset, v[:]...)
}

// PutUint32 writes a little-endian uint32 into buf at offset.
//
// Parameters:
//   - buf: destination buffer
//   - offset: byte offset
//   - v: the value
func PutUint32(buf []byte, offset int, v uint32) {
	binary.LittleEndian.PutUint32(buf[offset:], v)
}

// Float32At reads a little-endian float32 from buf at offset.
//
// Parameters:
//   - buf: source buffer
//   - offset: byte offset
//
// Returns:
//   - float32: the decoded value
func Float32At(buf []byte, offset int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(buf[offset:]))
}

// Uint32At reads a little-endian uint32 from buf at offset.
//
// Parameters:
//   - buf: source buffer
//   - offset: byte offset
//
// Returns:
//   - uint32: the decoded value
func Uint32At(buf []byte, offset int) uint32 {
	return binary.LittleEndian.Uint32(buf[offset:])
}

// MaxAxisScale returns the largest scale factor an affine matrix applies along any of its basis axes.
//
// Parameters:
//   - m: an affine transform
//
// Returns:
//   - float32: the maximum length of the transformed x, y and z unit vectors
func MaxAxisScale(m mgl32.Mat4) float32 {
	return max(m.Col(0).Vec3().Len(), m.Col(1).Vec3().Len(), m.Col(2).Vec3().Len())
}
