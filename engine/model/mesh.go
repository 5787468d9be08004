package model

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-deferred/common"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer"
	"github.com/go-gl/mathgl/mgl32"
)

// ErrEmptyMesh is returned for geometry without vertices.
var ErrEmptyMesh = common.ErrEmptyMesh

var (
	// ErrIndexOutOfRange is returned when an index refers past the vertex array.
	ErrIndexOutOfRange = errors.New("mesh index out of range")

	// ErrNotTriangles is returned when the index count is not a multiple of three.
	ErrNotTriangles = errors.New("mesh index count is not a multiple of 3")
)

// MeshData is CPU-side triangle-list geometry. Indices may be nil, in which case
// every three consecutive vertices form a triangle.
type MeshData struct {
	Name     string
	Vertices []GPUVertex
	Indices  []uint32
}

// Mesh is immutable GPU geometry shared by pointer between scene objects.
// Its bounding sphere is computed once from the vertex positions at construction.
type Mesh struct {
	name        string
	bounds      common.BoundingSphere
	boxMin      mgl32.Vec3
	boxMax      mgl32.Vec3
	vertexCount int
	indexCount  int

	vertices renderer.Buffer
	indices  renderer.Buffer
}

// NewMesh uploads geometry and computes its bounding sphere.
//
// Parameters:
//   - ctx: the render context owning the GPU buffers
//   - data: the geometry
//
// Returns:
//   - *Mesh: the mesh
//   - error: ErrEmptyMesh, ErrNotTriangles or ErrIndexOutOfRange for malformed geometry
func NewMesh(ctx renderer.RenderContext, data MeshData) (*Mesh, error) {
	if len(data.Vertices) == 0 {
		return nil, fmt.Errorf("mesh %q: %w", data.Name, ErrEmptyMesh)
	}

	indices := data.Indices
	if indices == nil {
		indices = make([]uint32, len(data.Vertices))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}
	if len(indices) == 0 || len(indices)%3 != 0 {
		return nil, fmt.Errorf("mesh %q has %d indices: %w", data.Name, len(indices), ErrNotTriangles)
	}
	for _, idx := range indices {
		if int(idx) >= len(data.Vertices) {
			return nil, fmt.Errorf("mesh %q index %d with %d vertices: %w", data.Name, idx, len(data.Vertices), ErrIndexOutOfRange)
		}
	}

	positions := make([]mgl32.Vec3, len(data.Vertices))
	for i, v := range data.Vertices {
		positions[i] = v.Position
	}
	bounds, err := common.ComputeBoundingSphere(positions)
	if err != nil {
		return nil, fmt.Errorf("mesh %q: %w", data.Name, err)
	}
	boxMin, boxMax := common.ComputeBoundingBox(positions)

	return &Mesh{
		name:        data.Name,
		bounds:      bounds,
		boxMin:      boxMin,
		boxMax:      boxMax,
		vertexCount: len(data.Vertices),
		indexCount:  len(indices),
		vertices:    ctx.NewBufferWithData(data.Name+"_vertices", renderer.BufferUsageAttribute, MarshalVertices(data.Vertices)),
		indices:     ctx.NewBufferWithData(data.Name+"_indices", renderer.BufferUsageIndex, MarshalIndices(indices)),
	}, nil
}

// Name returns the mesh name.
func (m *Mesh) Name() string { return m.name }

// Bounds returns the model-space bounding sphere.
func (m *Mesh) Bounds() common.BoundingSphere { return m.bounds }

// BoundingBox returns the model-space axis-aligned bounds.
//
// Returns:
//   - mgl32.Vec3: the minimum corner
//   - mgl32.Vec3: the maximum corner
func (m *Mesh) BoundingBox() (mgl32.Vec3, mgl32.Vec3) { return m.boxMin, m.boxMax }

func (m *Mesh) VertexCount() int { return m.vertexCount }
func (m *Mesh) IndexCount() int  { return m.indexCount }

// Draw issues an indexed draw of the whole mesh with the context's current bindings.
//
// Parameters:
//   - ctx: the render context the mesh was created on
func (m *Mesh) Draw(ctx renderer.RenderContext) {
	ctx.DrawIndexed(m.vertices, m.indices, m.indexCount)
}

// Released reports whether the GPU buffers have been released.
func (m *Mesh) Released() bool {
	return m.vertices.Released()
}

// Release frees the vertex and index buffers. Calling it twice is a no-op.
func (m *Mesh) Release() {
	m.vertices.Release()
	m.indices.Release()
}
