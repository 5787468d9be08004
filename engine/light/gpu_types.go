package light

import (
	"unsafe"

	"github.com/Carmen-Shannon/oxy-deferred/common"
	"github.com/go-gl/mathgl/mgl32"
)

// FrameData is the per-frame uniform read by the geometry and light passes.
// Matches the WGSL FrameData struct (96 bytes, uniform aligned).
type FrameData struct {
	ViewProj        mgl32.Mat4 // offset  0: camera view-projection
	SunColor        mgl32.Vec3 // offset 64: linear RGB sun color
	PointLightCount uint32     // offset 76: number of valid entries in the light array
	SunDir          mgl32.Vec3 // offset 80: normalized direction toward the sun
	_pad            float32    // offset 92
}

// Size returns the size of the FrameData struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (96)
func (f FrameData) Size() int {
	return int(unsafe.Sizeof(f))
}

// Marshal serializes the FrameData struct into dst.
//
// Parameters:
//   - dst: a buffer of at least 96 bytes
func (f FrameData) Marshal(dst []byte) {
	common.PutMat4(dst, 0, f.ViewProj)
	common.PutVec3(dst, 64, f.SunColor)
	common.PutUint32(dst, 76, f.PointLightCount)
	common.PutVec3(dst, 80, f.SunDir)
	common.PutFloat32s(dst, 92, 0)
}

// GPUPointLight is the GPU representation of one point light.
// Matches the WGSL PointLight struct (32 bytes, std430 aligned).
type GPUPointLight struct {
	Position mgl32.Vec3 // offset  0: world-space position
	Radius   float32    // offset 12: radius of influence
	Color    mgl32.Vec3 // offset 16: linear RGB color
	_pad     float32    // offset 28
}

// Size returns the size of the GPUPointLight struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (32)
func (g GPUPointLight) Size() int {
	return int(unsafe.Sizeof(g))
}

// Marshal serializes the GPUPointLight struct into dst.
//
// Parameters:
//   - dst: a buffer of at least 32 bytes
func (g GPUPointLight) Marshal(dst []byte) {
	common.PutVec3(dst, 0, g.Position)
	common.PutFloat32s(dst, 12, g.Radius)
	common.PutVec3(dst, 16, g.Color)
	common.PutFloat32s(dst, 28, 0)
}

// WindowSize is the uniform holding the render target size in pixels.
// Matches the WGSL WindowSize struct (16 bytes, uniform aligned).
type WindowSize struct {
	Width  uint32 // offset 0
	Height uint32 // offset 4
	_pad   [2]uint32
}

// NewWindowSize creates a WindowSize record. Negative sizes are stored as zero.
//
// Parameters:
//   - width: the width in pixels
//   - height: the height in pixels
//
// Returns:
//   - WindowSize: the record
func NewWindowSize(width, height int) WindowSize {
	return WindowSize{Width: uint32(max(width, 0)), Height: uint32(max(height, 0))}
}

// Size returns the size of the WindowSize struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (16)
func (w WindowSize) Size() int {
	return int(unsafe.Sizeof(w))
}

// Marshal serializes the WindowSize struct into dst.
//
// Parameters:
//   - dst: a buffer of at least 16 bytes
func (w WindowSize) Marshal(dst []byte) {
	common.PutUint32(dst, 0, w.Width)
	common.PutUint32(dst, 4, w.Height)
	common.PutUint32(dst, 8, 0)
	common.PutUint32(dst, 12, 0)
}
