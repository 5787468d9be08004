package model

import (
	"unsafe"

	"github.com/Carmen-Shannon/oxy-deferred/common"
	"github.com/go-gl/mathgl/mgl32"
)

// GPUVertex is the interleaved vertex format read by the mesh programs.
// Matches the WGSL VertexInput struct locations 0..4 (60 bytes, tightly packed).
type GPUVertex struct {
	Position mgl32.Vec3 // offset  0: model-space position
	Normal   mgl32.Vec3 // offset 12: unit normal
	TexCoord mgl32.Vec2 // offset 24: UV coordinate
	Tangent  mgl32.Vec4 // offset 32: tangent (xyz) and bitangent sign (w)
	Color    mgl32.Vec3 // offset 48: linear RGB vertex color
}

// DefaultTangent is used for vertices that carry no tangent.
var DefaultTangent = mgl32.Vec4{1, 0, 0, 1}

// Size returns the size of the GPUVertex struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes (60)
func (g GPUVertex) Size() int {
	return int(unsafe.Sizeof(g))
}

// Marshal serializes the vertex into dst.
//
// Parameters:
//   - dst: a buffer of at least 60 bytes
func (g GPUVertex) Marshal(dst []byte) {
	common.PutVec3(dst, 0, g.Position)
	common.PutVec3(dst, 12, g.Normal)
	common.PutFloat32s(dst, 24, g.TexCoord[:]...)
	common.PutFloat32s(dst, 32, g.Tangent[:]...)
	common.PutVec3(dst, 48, g.Color)
}

// MarshalVertices packs vertices into one contiguous byte slice.
//
// Parameters:
//   - vertices: the vertices to pack
//
// Returns:
//   - []byte: len(vertices) * 60 bytes
func MarshalVertices(vertices []GPUVertex) []byte {
	stride := GPUVertex{}.Size()
	buf := make([]byte, len(vertices)*stride)
	for i, v := range vertices {
		v.Marshal(buf[i*stride:])
	}
	return buf
}

// MarshalIndices packs 32-bit indices into a little-endian byte slice.
//
// Parameters:
//   - indices: the indices to pack
//
// Returns:
//   - []byte: len(indices) * 4 bytes
func MarshalIndices(indices []uint32) []byte {
	buf := make([]byte, len(indices)*4)
	for i, idx := range indices {
		common.PutUint32(buf, i*4, idx)
	}
	return buf
}
