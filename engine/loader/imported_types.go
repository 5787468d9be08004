package loader

import (
	"github.com/Carmen-Shannon/oxy-deferred/common"
	"github.com/Carmen-Shannon/oxy-deferred/engine/model"
	"github.com/go-gl/mathgl/mgl32"
)

// noIndex marks an absent material or texture reference.
const noIndex = -1

// importedScene is the CPU side of a scene file: every array a backend extracts before
// anything is uploaded to the GPU.
type importedScene struct {
	Name string

	// Meshes holds the primitives of each file mesh, indexed like the file's mesh array.
	Meshes [][]importedPrimitive

	Materials []importedMaterial
	Textures  []importedTexture

	// Nodes are the mesh instances with their world transforms, in traversal order.
	Nodes []importedNode

	Lights []importedLight

	// Camera is nil when the file has no perspective camera node.
	Camera *importedCamera
}

// importedPrimitive is one triangle list with its material index, or noIndex for the default material.
type importedPrimitive struct {
	Data     model.MeshData
	Material int
}

// importedMaterial references its textures by index into importedScene.Textures.
type importedMaterial struct {
	Name      string
	BaseColor mgl32.Vec4
	Albedo    int
	NormalMap int
}

// importedTexture is a decoded image. SRGB is true for color data and false for normal maps.
type importedTexture struct {
	Name  string
	Image common.DecodedImage
	SRGB  bool
}

// importedNode places a file mesh in the world.
type importedNode struct {
	Name  string
	Mesh  int
	World mgl32.Mat4
}

// importedLight is a point light in world space. Color is already scaled by the intensity.
type importedLight struct {
	Name     string
	Position mgl32.Vec3
	Color    mgl32.Vec3
	Radius   float32
}

// importedCamera is a perspective camera in world space.
type importedCamera struct {
	Name     string
	Position mgl32.Vec3
	Forward  mgl32.Vec3
	Fov      float32
	Near     float32
	Far      float32
}

// ObjectCount returns how many scene objects the file instantiates: one per primitive of each mesh node.
func (s *importedScene) ObjectCount() int {
	n := 0
	for _, node := range s.Nodes {
		n += len(s.Meshes[node.Mesh])
	}
	return n
}
