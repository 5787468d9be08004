// gltf_types.go holds the subset of the glTF 2.0 JSON schema the scene loader reads.
// Skins, animations, samplers and morph targets are not part of it; encoding/json skips them.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html
package loader

// --- glTF Root Structure ---

// gltfDocument represents the root of a glTF JSON document.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-gltf
type gltfDocument struct {
	// Asset contains metadata about the glTF asset.
	Asset gltfAsset `json:"asset"`

	// Scene is the index of the default scene.
	Scene *int `json:"scene,omitempty"`

	// Scenes is an array of scenes.
	Scenes []gltfScene `json:"scenes,omitempty"`

	// Nodes is an array of nodes (transform hierarchy).
	Nodes []gltfNode `json:"nodes,omitempty"`

	// Meshes is an array of meshes.
	Meshes []gltfMesh `json:"meshes,omitempty"`

	// Accessors define how to interpret buffer data.
	Accessors []gltfAccessor `json:"accessors,omitempty"`

	// BufferViews define portions of buffers.
	BufferViews []gltfBufferView `json:"bufferViews,omitempty"`

	// Buffers are raw binary data containers.
	Buffers []gltfBuffer `json:"buffers,omitempty"`

	// Materials is an array of materials.
	Materials []gltfMaterial `json:"materials,omitempty"`

	// Textures is an array of textures.
	Textures []gltfTexture `json:"textures,omitempty"`

	// Images is an array of images.
	Images []gltfImage `json:"images,omitempty"`

	// Cameras is an array of cameras referenced by nodes.
	Cameras []gltfCamera `json:"cameras,omitempty"`

	// Extensions holds document-level extensions; only KHR_lights_punctual is read.
	Extensions *gltfDocumentExtensions `json:"extensions,omitempty"`

	// ExtensionsUsed lists extensions used by this asset.
	ExtensionsUsed []string `json:"extensionsUsed,omitempty"`

	// ExtensionsRequired lists extensions required to load this asset.
	ExtensionsRequired []string `json:"extensionsRequired,omitempty"`
}

// --- Asset Metadata ---

// gltfAsset contains metadata about the glTF asset.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-asset
type gltfAsset struct {
	// Version is the glTF version (required, must be "2.0").
	Version string `json:"version"`

	// MinVersion is the minimum glTF version required.
	MinVersion string `json:"minVersion,omitempty"`

	// Generator is the tool that generated this asset.
	Generator string `json:"generator,omitempty"`

	// Copyright information.
	Copyright string `json:"copyright,omitempty"`
}

// --- Scene Graph ---

// gltfScene is a set of visual objects to render.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-scene
type gltfScene struct {
	// Name is an optional name for this scene.
	Name string `json:"name,omitempty"`

	// Nodes are the indices of root nodes in this scene.
	Nodes []int `json:"nodes,omitempty"`
}

// gltfNode is a node in the node hierarchy.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-node
type gltfNode struct {
	// Name is an optional name for this node.
	Name string `json:"name,omitempty"`

	// Children are indices of child nodes.
	Children []int `json:"children,omitempty"`

	// Mesh is the index of the mesh in this node.
	Mesh *int `json:"mesh,omitempty"`

	// Camera is the index of the camera in this node.
	Camera *int `json:"camera,omitempty"`

	// Matrix is a 4x4 transformation matrix (column-major).
	Matrix *[16]float32 `json:"matrix,omitempty"`

	// Translation is the node's translation (x, y, z).
	Translation *[3]float32 `json:"translation,omitempty"`

	// Rotation is the node's rotation as a quaternion (x, y, z, w).
	Rotation *[4]float32 `json:"rotation,omitempty"`

	// Scale is the node's scale (x, y, z).
	Scale *[3]float32 `json:"scale,omitempty"`

	// Extensions holds node-level extensions; only KHR_lights_punctual is read.
	Extensions *gltfNodeExtensions `json:"extensions,omitempty"`
}

// --- Mesh Data ---

// gltfMesh is a set of primitives to be rendered.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-mesh
type gltfMesh struct {
	// Name is an optional name for this mesh.
	Name string `json:"name,omitempty"`

	// Primitives defines the geometry to render.
	Primitives []gltfPrimitive `json:"primitives"`

}

// gltfPrimitive defines geometry for rendering.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-mesh-primitive
type gltfPrimitive struct {
	// Attributes is a map of attribute semantic to accessor index.
	// Standard attributes: POSITION, NORMAL, TANGENT, TEXCOORD_0, COLOR_0, JOINTS_0, WEIGHTS_0
	Attributes map[string]int `json:"attributes"`

	// Indices is the accessor index for the index buffer.
	Indices *int `json:"indices,omitempty"`

	// Material is the material index.
	Material *int `json:"material,omitempty"`

	// Mode is the primitive topology.
	// 0=POINTS, 1=LINES, 2=LINE_LOOP, 3=LINE_STRIP, 4=TRIANGLES (default), 5=TRIANGLE_STRIP, 6=TRIANGLE_FAN
	Mode *int `json:"mode,omitempty"`
}

// PrimitiveMode constants
const (
	// gltfPrimitiveModePoints        = 0
	// gltfPrimitiveModeLines         = 1
	// gltfPrimitiveModeLineLoop      = 2
	// gltfPrimitiveModeLineStrip     = 3
	gltfPrimitiveModeTriangles = 4
	// gltfPrimitiveModeTriangleStrip = 5
	// gltfPrimitiveModeTriangleFan   = 6
)

// --- Buffer Data ---

// gltfAccessor defines how to interpret buffer data.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-accessor
type gltfAccessor struct {
	// Name is an optional name.
	Name string `json:"name,omitempty"`

	// BufferView is the index of the bufferView.
	BufferView *int `json:"bufferView,omitempty"`

	// ByteOffset is the offset within the bufferView.
	ByteOffset int `json:"byteOffset,omitempty"`

	// ComponentType is the data type of components.
	// 5120=BYTE, 5121=UNSIGNED_BYTE, 5122=SHORT, 5123=UNSIGNED_SHORT, 5125=UNSIGNED_INT, 5126=FLOAT
	ComponentType int `json:"componentType"`

	// Normalized indicates if integer data should be normalized.
	Normalized bool `json:"normalized,omitempty"`

	// Count is the number of elements.
	Count int `json:"count"`

	// Type is the element type (SCALAR, VEC2, VEC3, VEC4, MAT2, MAT3, MAT4).
	Type string `json:"type"`

	// Max is the maximum value of each component.
	Max []float32 `json:"max,omitempty"`

	// Min is the minimum value of each component.
	Min []float32 `json:"min,omitempty"`

	// Sparse defines sparse storage of accessor values.
	Sparse *gltfAccessorSparse `json:"sparse,omitempty"`
}

// ComponentType constants
const (
	gltfComponentTypeByte          = 5120
	gltfComponentTypeUnsignedByte  = 5121
	gltfComponentTypeShort         = 5122
	gltfComponentTypeUnsignedShort = 5123
	gltfComponentTypeUnsignedInt   = 5125
	gltfComponentTypeFloat         = 5126
)

// AccessorType constants
const (
	gltfAccessorTypeScalar = "SCALAR"
	gltfAccessorTypeVec2   = "VEC2"
	gltfAccessorTypeVec3   = "VEC3"
	gltfAccessorTypeVec4   = "VEC4"
	gltfAccessorTypeMat2   = "MAT2"
	gltfAccessorTypeMat3   = "MAT3"
	gltfAccessorTypeMat4   = "MAT4"
)

// gltfAccessorSparse defines sparse storage.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-accessor-sparse
// Only its presence matters: sparse accessors are rejected with ErrUnsupportedAccessor.
type gltfAccessorSparse struct {
	// Count is the number of sparse entries.
	Count int `json:"count"`
}

// gltfBufferView represents a subset of a buffer.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-bufferview
type gltfBufferView struct {
	// Name is an optional name.
	Name string `json:"name,omitempty"`

	// Buffer is the index of the buffer.
	Buffer int `json:"buffer"`

	// ByteOffset is the offset into the buffer.
	ByteOffset int `json:"byteOffset,omitempty"`

	// ByteLength is the length of the bufferView.
	ByteLength int `json:"byteLength"`

	// ByteStride is the stride for interleaved data (optional).
	ByteStride *int `json:"byteStride,omitempty"`

	// Target is the intended GPU buffer type.
	// 34962=ARRAY_BUFFER, 34963=ELEMENT_ARRAY_BUFFER
	Target *int `json:"target,omitempty"`
}

// gltfBuffer represents binary data.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-buffer
type gltfBuffer struct {
	// Name is an optional name.
	Name string `json:"name,omitempty"`

	// URI is the URI of the buffer data (can be data: URI or external file).
	URI string `json:"uri,omitempty"`

	// ByteLength is the length of the buffer.
	ByteLength int `json:"byteLength"`

	// Data holds the loaded binary data (not part of JSON, populated during load).
	Data []byte `json:"-"`
}

// --- Materials and Textures ---

// gltfMaterial defines the material appearance of a primitive.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-material
type gltfMaterial struct {
	// Name is an optional name.
	Name string `json:"name,omitempty"`

	// PbrMetallicRoughness is the PBR metallic-roughness model.
	PbrMetallicRoughness *gltfPbrMetallicRoughness `json:"pbrMetallicRoughness,omitempty"`

	// NormalTexture is the normal map.
	NormalTexture *gltfNormalTextureInfo `json:"normalTexture,omitempty"`
}

// gltfPbrMetallicRoughness is the metallic-roughness material model. The G-buffer stores
// albedo and normals only, so metalness and roughness are not read.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-material-pbrmetallicroughness
type gltfPbrMetallicRoughness struct {
	// BaseColorFactor is the base color (RGBA).
	BaseColorFactor *[4]float32 `json:"baseColorFactor,omitempty"`

	// BaseColorTexture is the base color texture.
	BaseColorTexture *gltfTextureInfo `json:"baseColorTexture,omitempty"`
}

// gltfTextureInfo references a texture.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-textureinfo
type gltfTextureInfo struct {
	// Index is the texture index.
	Index int `json:"index"`

	// TexCoord is the UV set to use (default 0).
	TexCoord int `json:"texCoord,omitempty"`
}

// gltfNormalTextureInfo references a normal map.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-material-normaltextureinfo
type gltfNormalTextureInfo struct {
	gltfTextureInfo

	// Scale is the normal scale factor.
	Scale *float32 `json:"scale,omitempty"`
}

// gltfTexture combines an image and a sampler.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-texture
type gltfTexture struct {
	// Name is an optional name.
	Name string `json:"name,omitempty"`

	// Source is the image index.
	Source *int `json:"source,omitempty"`
}

// gltfImage is a texture image source.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-image
type gltfImage struct {
	// Name is an optional name.
	Name string `json:"name,omitempty"`

	// URI is the image URI (can be data: URI or external file).
	URI string `json:"uri,omitempty"`

	// MimeType is the MIME type when embedded in a bufferView.
	MimeType string `json:"mimeType,omitempty"`

	// BufferView is the index of the bufferView containing the image.
	BufferView *int `json:"bufferView,omitempty"`
}

// --- Cameras ---

// gltfCamera is a projection referenced by a node.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-camera
type gltfCamera struct {
	// Name is an optional name.
	Name string `json:"name,omitempty"`

	// Type is "perspective" or "orthographic".
	Type string `json:"type"`

	// Perspective holds the perspective projection parameters.
	Perspective *gltfCameraPerspective `json:"perspective,omitempty"`
}

// gltfCameraPerspective is a perspective projection.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-camera-perspective
type gltfCameraPerspective struct {
	// AspectRatio is the viewport aspect ratio; the window's aspect is used instead.
	AspectRatio *float32 `json:"aspectRatio,omitempty"`

	// YFov is the vertical field of view in radians.
	YFov float32 `json:"yfov"`

	// ZNear is the near clip distance.
	ZNear float32 `json:"znear"`

	// ZFar is the far clip distance; absent means an infinite projection.
	ZFar *float32 `json:"zfar,omitempty"`
}

const gltfCameraTypePerspective = "perspective"

// --- KHR_lights_punctual ---

// gltfDocumentExtensions holds the document-level extensions the loader reads.
type gltfDocumentExtensions struct {
	LightsPunctual *gltfLightsPunctual `json:"KHR_lights_punctual,omitempty"`
}

// gltfLightsPunctual lists the lights nodes may reference.
// Reference: https://github.com/KhronosGroup/glTF/tree/main/extensions/2.0/Khronos/KHR_lights_punctual
type gltfLightsPunctual struct {
	Lights []gltfLight `json:"lights"`
}

// gltfLight is one punctual light. Only "point" lights become scene lights.
type gltfLight struct {
	Name string `json:"name,omitempty"`

	// Type is "directional", "point" or "spot".
	Type string `json:"type"`

	// Color is the linear RGB color, default white.
	Color *[3]float32 `json:"color,omitempty"`

	// Intensity scales the color, default 1.
	Intensity *float32 `json:"intensity,omitempty"`

	// Range is the distance cutoff; absent means unbounded.
	Range *float32 `json:"range,omitempty"`
}

// gltfNodeExtensions holds the node-level extensions the loader reads.
type gltfNodeExtensions struct {
	LightsPunctual *gltfNodeLight `json:"KHR_lights_punctual,omitempty"`
}

// gltfNodeLight references a light of the document-level light list.
type gltfNodeLight struct {
	Light int `json:"light"`
}

const gltfLightTypePoint = "point"

// --- GLB Binary Format ---

// gltfGLBHeader is the header of a GLB file (12 bytes).
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#glb-file-format-specification
type gltfGLBHeader struct {
	Magic   uint32 // Must be 0x46546C67 ("glTF" in ASCII)
	Version uint32 // Must be 2
	Length  uint32 // Total file length
}

// gltfGLBChunkHeader is the header of a GLB chunk (8 bytes).
type gltfGLBChunkHeader struct {
	ChunkLength uint32
	ChunkType   uint32 // 0x4E4F534A for JSON, 0x004E4942 for BIN
}

// GLB magic number and chunk type constants
const (
	gltfGLBMagic     = 0x46546C67 // "glTF" in little-endian ASCII
	gltfGLBVersion   = 2
	gltfGLBChunkJSON = 0x4E4F534A // "JSON" in little-endian ASCII
	gltfGLBChunkBIN  = 0x004E4942 // "BIN\0" in little-endian ASCII
)
