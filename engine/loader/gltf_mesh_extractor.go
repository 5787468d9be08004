package loader

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-deferred/engine/model"
	"github.com/go-gl/mathgl/mgl32"
)

// gltfMeshExtractorImpl is the implementation of the gltfMeshExtractor interface.
type gltfMeshExtractorImpl struct {
	parser gltfParser
}

// gltfMeshExtractor converts glTF mesh primitives into triangle-list MeshData.
// Missing normals and tangents are generated from the geometry.
type gltfMeshExtractor interface {
	// ExtractPrimitive extracts one primitive of one mesh. It only reads the parsed
	// document, so several primitives may be extracted concurrently.
	//
	// Parameters:
	//   - meshIndex: the index of the mesh in the document
	//   - primIndex: the index of the primitive in the mesh
	//
	// Returns:
	//   - importedPrimitive: the geometry and its material index
	//   - error: ErrMissingPosition, ErrUnsupportedPrimitive or an accessor error
	ExtractPrimitive(meshIndex, primIndex int) (importedPrimitive, error)
}

var _ gltfMeshExtractor = &gltfMeshExtractorImpl{}

// newGLTFMeshExtractor creates a new mesh extractor for a parsed document.
//
// Parameters:
//   - parser: the parser containing a loaded document
//
// Returns:
//   - gltfMeshExtractor: the mesh extractor
func newGLTFMeshExtractor(parser gltfParser) gltfMeshExtractor {
	return &gltfMeshExtractorImpl{parser: parser}
}

func (e *gltfMeshExtractorImpl) ExtractPrimitive(meshIndex, primIndex int) (importedPrimitive, error) {
	doc := e.parser.Document()
	if meshIndex < 0 || meshIndex >= len(doc.Meshes) {
		return importedPrimitive{}, fmt.Errorf("%w: mesh %d of %d", ErrInvalidReference, meshIndex, len(doc.Meshes))
	}
	mesh := &doc.Meshes[meshIndex]
	if primIndex < 0 || primIndex >= len(mesh.Primitives) {
		return importedPrimitive{}, fmt.Errorf("%w: primitive %d of mesh %d", ErrInvalidReference, primIndex, meshIndex)
	}
	prim := &mesh.Primitives[primIndex]

	// Only triangle lists; TRIANGLES is the default mode.
	if prim.Mode != nil && *prim.Mode != gltfPrimitiveModeTriangles {
		return importedPrimitive{}, fmt.Errorf("%w: mode %d", ErrUnsupportedPrimitive, *prim.Mode)
	}

	posAccessor, ok := prim.Attributes["POSITION"]
	if !ok {
		return importedPrimitive{}, ErrMissingPosition
	}
	positions, err := e.parser.ReadVec3Accessor(posAccessor)
	if err != nil {
		return importedPrimitive{}, fmt.Errorf("failed to read positions: %w", err)
	}

	vertexCount := len(positions)
	vertices := make([]model.GPUVertex, vertexCount)
	for i, pos := range positions {
		vertices[i].Position = pos
		vertices[i].Color = mgl32.Vec3{1, 1, 1}
		vertices[i].Tangent = model.DefaultTangent
	}

	hasNormals := false
	if normalAccessor, ok := prim.Attributes["NORMAL"]; ok {
		normals, err := e.parser.ReadVec3Accessor(normalAccessor)
		if err != nil {
			return importedPrimitive{}, fmt.Errorf("failed to read normals: %w", err)
		}
		for i := range min(len(normals), vertexCount) {
			vertices[i].Normal = normals[i]
		}
		hasNormals = true
	}

	if texCoordAccessor, ok := prim.Attributes["TEXCOORD_0"]; ok {
		texCoords, err := e.parser.ReadVec2Accessor(texCoordAccessor)
		if err != nil {
			return importedPrimitive{}, fmt.Errorf("failed to read texcoords: %w", err)
		}
		for i := range min(len(texCoords), vertexCount) {
			vertices[i].TexCoord = texCoords[i]
		}
	}

	if colorAccessor, ok := prim.Attributes["COLOR_0"]; ok {
		colors, err := e.readColorAccessor(colorAccessor)
		if err != nil {
			return importedPrimitive{}, fmt.Errorf("failed to read colors: %w", err)
		}
		for i := range min(len(colors), vertexCount) {
			vertices[i].Color = mgl32.Vec3{colors[i][0], colors[i][1], colors[i][2]}
		}
	}

	// glTF TANGENT is VEC4: xyz = tangent direction, w = handedness (±1).
	hasTangents := false
	if tangentAccessor, ok := prim.Attributes["TANGENT"]; ok {
		tangents, err := e.parser.ReadVec4Accessor(tangentAccessor)
		if err != nil {
			return importedPrimitive{}, fmt.Errorf("failed to read tangents: %w", err)
		}
		for i := range min(len(tangents), vertexCount) {
			vertices[i].Tangent = tangents[i]
		}
		hasTangents = true
	}

	var indices []uint32
	if prim.Indices != nil {
		indices, err = e.parser.ReadIndicesAccessor(*prim.Indices)
		if err != nil {
			return importedPrimitive{}, fmt.Errorf("failed to read indices: %w", err)
		}
	}

	// Generation walks triangles, so it needs an index list even when the file has none.
	triangles := indices
	if triangles == nil {
		triangles = make([]uint32, vertexCount)
		for i := range triangles {
			triangles[i] = uint32(i)
		}
	}

	// Normals first: tangents are orthonormalized against them.
	if !hasNormals && len(triangles) >= 3 {
		generateNormals(vertices, triangles)
	}
	if !hasTangents && len(triangles) >= 3 {
		generateTangents(vertices, triangles)
	}

	materialIndex := noIndex
	if prim.Material != nil {
		materialIndex = *prim.Material
		if materialIndex < 0 || materialIndex >= len(doc.Materials) {
			return importedPrimitive{}, fmt.Errorf("%w: material %d of %d", ErrInvalidReference, materialIndex, len(doc.Materials))
		}
	}

	name := mesh.Name
	if name == "" {
		name = fmt.Sprintf("mesh_%d", meshIndex)
	}
	if primIndex > 0 {
		name = fmt.Sprintf("%s_prim%d", name, primIndex)
	}

	return importedPrimitive{
		Data: model.MeshData{
			Name:     name,
			Vertices: vertices,
			Indices:  indices,
		},
		Material: materialIndex,
	}, nil
}

// readColorAccessor reads a color accessor, handling various formats.
// glTF colors can be VEC3 or VEC4, and can be float or normalized int.
func (e *gltfMeshExtractorImpl) readColorAccessor(accessorIndex int) ([][4]float32, error) {
	doc := e.parser.Document()
	if accessorIndex < 0 || accessorIndex >= len(doc.Accessors) {
		return nil, fmt.Errorf("%w: accessor %d of %d", ErrInvalidReference, accessorIndex, len(doc.Accessors))
	}
	acc := &doc.Accessors[accessorIndex]

	switch {
	case acc.Type == gltfAccessorTypeVec4 && acc.ComponentType == gltfComponentTypeFloat:
		return e.parser.ReadVec4Accessor(accessorIndex)

	case acc.Type == gltfAccessorTypeVec3 && acc.ComponentType == gltfComponentTypeFloat:
		vec3s, err := e.parser.ReadVec3Accessor(accessorIndex)
		if err != nil {
			return nil, err
		}
		result := make([][4]float32, len(vec3s))
		for i, v := range vec3s {
			result[i] = [4]float32{v[0], v[1], v[2], 1.0}
		}
		return result, nil

	case acc.ComponentType == gltfComponentTypeUnsignedByte || acc.ComponentType == gltfComponentTypeUnsignedShort:
		components := gltfAccessorTypeComponentCount(acc.Type)
		if components != 3 && components != 4 {
			break
		}
		data, err := e.parser.ReadAccessorData(accessorIndex)
		if err != nil {
			return nil, err
		}
		size := gltfComponentTypeSize(acc.ComponentType)
		result := make([][4]float32, acc.Count)
		for i := range result {
			result[i][3] = 1
			for c := range components {
				offset := (i*components + c) * size
				if size == 1 {
					result[i][c] = float32(data[offset]) / 255.0
				} else {
					result[i][c] = float32(uint16(data[offset])|uint16(data[offset+1])<<8) / 65535.0
				}
			}
		}
		return result, nil
	}

	return nil, fmt.Errorf("%w: color type=%s, componentType=%d", ErrUnsupportedAccessor, acc.Type, acc.ComponentType)
}

// generateNormals computes smooth vertex normals from the triangle geometry when the
// file does not provide a NORMAL attribute. Face normals (cross products, so area-weighted)
// are accumulated onto each vertex of the triangle, then normalized.
//
// Parameters:
//   - vertices: the vertex slice to write normal data into
//   - indices: the triangle index buffer
func generateNormals(vertices []model.GPUVertex, indices []uint32) {
	n := len(vertices)
	accum := make([]mgl32.Vec3, n)

	for i := 0; i+2 < len(indices); i += 3 {
		i0, i1, i2 := indices[i], indices[i+1], indices[i+2]
		if int(i0) >= n || int(i1) >= n || int(i2) >= n {
			continue
		}

		p0 := vertices[i0].Position
		faceNormal := vertices[i1].Position.Sub(p0).Cross(vertices[i2].Position.Sub(p0))

		accum[i0] = accum[i0].Add(faceNormal)
		accum[i1] = accum[i1].Add(faceNormal)
		accum[i2] = accum[i2].Add(faceNormal)
	}

	for i := range n {
		if accum[i].Len() < 1e-6 {
			// Degenerate: default to up vector
			vertices[i].Normal = mgl32.Vec3{0, 1, 0}
			continue
		}
		vertices[i].Normal = accum[i].Normalize()
	}
}

// generateTangents computes per-vertex tangents from the UV gradients of each triangle,
// accumulated per vertex and Gram-Schmidt orthonormalized against the vertex normal.
// W stores the bitangent handedness (±1).
//
// Parameters:
//   - vertices: the vertex slice to write tangent data into
//   - indices: the triangle index buffer
func generateTangents(vertices []model.GPUVertex, indices []uint32) {
	n := len(vertices)
	tan := make([]mgl32.Vec3, n)
	btan := make([]mgl32.Vec3, n)

	for i := 0; i+2 < len(indices); i += 3 {
		i0, i1, i2 := indices[i], indices[i+1], indices[i+2]
		if int(i0) >= n || int(i1) >= n || int(i2) >= n {
			continue
		}

		p0 := vertices[i0].Position
		edge1 := vertices[i1].Position.Sub(p0)
		edge2 := vertices[i2].Position.Sub(p0)

		uv0 := vertices[i0].TexCoord
		duv1 := vertices[i1].TexCoord.Sub(uv0)
		duv2 := vertices[i2].TexCoord.Sub(uv0)

		det := duv1.X()*duv2.Y() - duv1.Y()*duv2.X()
		if det == 0 {
			continue
		}
		invDet := 1.0 / det

		t := edge1.Mul(duv2.Y()).Sub(edge2.Mul(duv1.Y())).Mul(invDet)
		b := edge2.Mul(duv1.X()).Sub(edge1.Mul(duv2.X())).Mul(invDet)

		for _, idx := range [3]uint32{i0, i1, i2} {
			tan[idx] = tan[idx].Add(t)
			btan[idx] = btan[idx].Add(b)
		}
	}

	for i := range n {
		normal := vertices[i].Normal

		// T' = normalize(T - N * dot(N, T))
		ortho := tan[i].Sub(normal.Mul(normal.Dot(tan[i])))
		if ortho.Len() < 1e-6 {
			vertices[i].Tangent = model.DefaultTangent
			continue
		}
		ortho = ortho.Normalize()

		w := float32(1.0)
		if normal.Cross(ortho).Dot(btan[i]) < 0 {
			w = -1.0
		}
		vertices[i].Tangent = ortho.Vec4(w)
	}
}
