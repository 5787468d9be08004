package model

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

var white = mgl32.Vec3{1, 1, 1}

// cubeFace is one side of the cube: its outward normal and the in-plane u/v axes.
type cubeFace struct {
	normal, u, v mgl32.Vec3
}

var cubeFaces = [6]cubeFace{
	{mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0}},
	{mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0, 1, 0}},
	{mgl32.Vec3{0, 1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}},
	{mgl32.Vec3{0, -1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, 1}},
	{mgl32.Vec3{0, 0, 1}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0}},
	{mgl32.Vec3{0, 0, -1}, mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 1, 0}},
}

// Cube returns an axis-aligned cube centered at the origin with the given half extent.
// Each face has its own four vertices so normals stay flat. Triangles wind counter-clockwise
// when seen from outside.
//
// Parameters:
//   - halfExtent: half the edge length
//
// Returns:
//   - MeshData: 24 vertices and 36 indices
func Cube(halfExtent float32) MeshData {
	data := MeshData{
		Name:     "cube",
		Vertices: make([]GPUVertex, 0, 24),
		Indices:  make([]uint32, 0, 36),
	}

	corners := [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}
	for _, face := range cubeFaces {
		base := uint32(len(data.Vertices))
		for _, c := range corners {
			p := face.normal.Add(face.u.Mul(c[0])).Add(face.v.Mul(c[1])).Mul(halfExtent)
			data.Vertices = append(data.Vertices, GPUVertex{
				Position: p,
				Normal:   face.normal,
				TexCoord: mgl32.Vec2{(c[0] + 1) / 2, (1 - c[1]) / 2},
				Tangent:  face.u.Vec4(1),
				Color:    white,
			})
		}
		data.Indices = append(data.Indices, base, base+1, base+2, base, base+2, base+3)
	}
	return data
}

// Sphere returns a UV sphere centered at the origin.
//
// Parameters:
//   - radius: the sphere radius
//   - rings: the number of latitude bands, at least 2
//   - segments: the number of longitude bands, at least 3
//
// Returns:
//   - MeshData: (rings+1)*(segments+1) vertices
func Sphere(radius float32, rings, segments int) MeshData {
	rings = max(rings, 2)
	segments = max(segments, 3)

	data := MeshData{
		Name:     "sphere",
		Vertices: make([]GPUVertex, 0, (rings+1)*(segments+1)),
		Indices:  make([]uint32, 0, rings*segments*6),
	}

	for r := 0; r <= rings; r++ {
		theta := float64(r) / float64(rings) * math.Pi
		sinTheta, cosTheta := math.Sincos(theta)
		for s := 0; s <= segments; s++ {
			phi := float64(s) / float64(segments) * 2 * math.Pi
			sinPhi, cosPhi := math.Sincos(phi)

			n := mgl32.Vec3{float32(sinTheta * cosPhi), float32(cosTheta), float32(-sinTheta * sinPhi)}
			data.Vertices = append(data.Vertices, GPUVertex{
				Position: n.Mul(radius),
				Normal:   n,
				TexCoord: mgl32.Vec2{float32(s) / float32(segments), float32(r) / float32(rings)},
				Tangent:  mgl32.Vec4{float32(-sinPhi), 0, float32(-cosPhi), 1},
				Color:    white,
			})
		}
	}

	stride := uint32(segments + 1)
	for r := uint32(0); r < uint32(rings); r++ {
		for s := uint32(0); s < uint32(segments); s++ {
			a := r*stride + s
			b := a + stride
			data.Indices = append(data.Indices, a, b, a+1, a+1, b, b+1)
		}
	}
	return data
}
