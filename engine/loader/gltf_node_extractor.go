package loader

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-deferred/common"
	"github.com/go-gl/mathgl/mgl32"
)

// Defaults for file values that are optional.
const (
	// DefaultLightRadius is the radius of a point light without a range.
	DefaultLightRadius float32 = 10

	// DefaultFar is the far plane of a camera without zfar.
	DefaultFar float32 = 1000
)

// gltfNodeExtractorImpl is the implementation of the gltfNodeExtractor interface.
type gltfNodeExtractorImpl struct {
	parser gltfParser
}

// gltfNodeExtractor walks the node hierarchy of the default scene.
type gltfNodeExtractor interface {
	// Walk computes the world transform of every node reachable from the scene roots and collects
	// the mesh instances, the KHR_lights_punctual point lights and the first perspective camera.
	//
	// Returns:
	//   - []importedNode: mesh nodes in depth-first order
	//   - []importedLight: point lights in depth-first order
	//   - *importedCamera: the first perspective camera, or nil
	//   - error: ErrInvalidReference for dangling indices or a cyclic hierarchy
	Walk() ([]importedNode, []importedLight, *importedCamera, error)
}

var _ gltfNodeExtractor = &gltfNodeExtractorImpl{}

// newGLTFNodeExtractor creates a new node extractor for a parsed document.
//
// Parameters:
//   - parser: the parser containing a loaded document
//
// Returns:
//   - gltfNodeExtractor: the node extractor
func newGLTFNodeExtractor(parser gltfParser) gltfNodeExtractor {
	return &gltfNodeExtractorImpl{parser: parser}
}

// gltfWalk holds the state of one traversal.
type gltfWalk struct {
	doc      *gltfDocument
	visiting []bool

	nodes  []importedNode
	lights []importedLight
	camera *importedCamera
}

func (e *gltfNodeExtractorImpl) Walk() ([]importedNode, []importedLight, *importedCamera, error) {
	doc := e.parser.Document()
	roots, err := gltfSceneRoots(doc)
	if err != nil {
		return nil, nil, nil, err
	}

	w := &gltfWalk{doc: doc, visiting: make([]bool, len(doc.Nodes))}
	for _, root := range roots {
		if err := w.visit(root, mgl32.Ident4()); err != nil {
			return nil, nil, nil, err
		}
	}
	return w.nodes, w.lights, w.camera, nil
}

// gltfSceneRoots returns the root nodes of the default scene: doc.Scene, else the first scene,
// else every node that is nobody's child.
func gltfSceneRoots(doc *gltfDocument) ([]int, error) {
	if doc.Scene != nil {
		if *doc.Scene < 0 || *doc.Scene >= len(doc.Scenes) {
			return nil, fmt.Errorf("%w: scene %d of %d", ErrInvalidReference, *doc.Scene, len(doc.Scenes))
		}
		return doc.Scenes[*doc.Scene].Nodes, nil
	}
	if len(doc.Scenes) > 0 {
		return doc.Scenes[0].Nodes, nil
	}

	isChild := make([]bool, len(doc.Nodes))
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			if c >= 0 && c < len(isChild) {
				isChild[c] = true
			}
		}
	}
	var roots []int
	for i, child := range isChild {
		if !child {
			roots = append(roots, i)
		}
	}
	return roots, nil
}

func (w *gltfWalk) visit(index int, parent mgl32.Mat4) error {
	if index < 0 || index >= len(w.doc.Nodes) {
		return fmt.Errorf("%w: node %d of %d", ErrInvalidReference, index, len(w.doc.Nodes))
	}
	if w.visiting[index] {
		return fmt.Errorf("%w: node %d is its own ancestor", ErrInvalidReference, index)
	}
	w.visiting[index] = true
	defer func() { w.visiting[index] = false }()

	node := &w.doc.Nodes[index]
	world := parent.Mul4(gltfLocalMatrix(node))
	name := common.Coalesce(node.Name, fmt.Sprintf("node_%d", index))

	if node.Mesh != nil {
		if *node.Mesh < 0 || *node.Mesh >= len(w.doc.Meshes) {
			return fmt.Errorf("%w: node %q mesh %d of %d", ErrInvalidReference, name, *node.Mesh, len(w.doc.Meshes))
		}
		w.nodes = append(w.nodes, importedNode{Name: name, Mesh: *node.Mesh, World: world})
	}

	if node.Extensions != nil && node.Extensions.LightsPunctual != nil {
		if err := w.addLight(name, node.Extensions.LightsPunctual.Light, world); err != nil {
			return err
		}
	}

	if node.Camera != nil && w.camera == nil {
		if err := w.setCamera(name, *node.Camera, world); err != nil {
			return err
		}
	}

	for _, child := range node.Children {
		if err := w.visit(child, world); err != nil {
			return err
		}
	}
	return nil
}

func (w *gltfWalk) addLight(nodeName string, index int, world mgl32.Mat4) error {
	var lights []gltfLight
	if w.doc.Extensions != nil && w.doc.Extensions.LightsPunctual != nil {
		lights = w.doc.Extensions.LightsPunctual.Lights
	}
	if index < 0 || index >= len(lights) {
		return fmt.Errorf("%w: node %q light %d of %d", ErrInvalidReference, nodeName, index, len(lights))
	}

	l := &lights[index]
	if l.Type != gltfLightTypePoint {
		log.Debugf("skipping %s light on node %q", l.Type, nodeName)
		return nil
	}

	color := mgl32.Vec3{1, 1, 1}
	if l.Color != nil {
		color = *l.Color
	}
	if l.Intensity != nil {
		color = color.Mul(*l.Intensity)
	}
	radius := DefaultLightRadius
	if l.Range != nil && *l.Range > 0 {
		radius = *l.Range
	}

	w.lights = append(w.lights, importedLight{
		Name:     common.Coalesce(l.Name, nodeName),
		Position: world.Col(3).Vec3(),
		Color:    color,
		Radius:   radius,
	})
	return nil
}

func (w *gltfWalk) setCamera(nodeName string, index int, world mgl32.Mat4) error {
	if index < 0 || index >= len(w.doc.Cameras) {
		return fmt.Errorf("%w: node %q camera %d of %d", ErrInvalidReference, nodeName, index, len(w.doc.Cameras))
	}
	c := &w.doc.Cameras[index]
	if c.Type != gltfCameraTypePerspective || c.Perspective == nil {
		log.Debugf("skipping %s camera on node %q", c.Type, nodeName)
		return nil
	}

	far := DefaultFar
	if c.Perspective.ZFar != nil {
		far = *c.Perspective.ZFar
	}

	// glTF cameras look down their local -Z axis.
	forward := world.Mul4x1(mgl32.Vec4{0, 0, -1, 0}).Vec3()
	w.camera = &importedCamera{
		Name:     common.Coalesce(c.Name, nodeName),
		Position: world.Col(3).Vec3(),
		Forward:  common.NormalizeOrZero(forward),
		Fov:      c.Perspective.YFov,
		Near:     c.Perspective.ZNear,
		Far:      far,
	}
	return nil
}

// gltfLocalMatrix returns a node's matrix, or T * R * S from its TRS properties.
func gltfLocalMatrix(node *gltfNode) mgl32.Mat4 {
	if node.Matrix != nil {
		// glTF matrices are column-major like mgl32.Mat4.
		return mgl32.Mat4(*node.Matrix)
	}

	m := mgl32.Ident4()
	if t := node.Translation; t != nil {
		m = mgl32.Translate3D(t[0], t[1], t[2])
	}
	if r := node.Rotation; r != nil {
		q := mgl32.Quat{W: r[3], V: mgl32.Vec3{r[0], r[1], r[2]}}
		if q.Len() > 0 {
			m = m.Mul4(q.Normalize().Mat4())
		}
	}
	if s := node.Scale; s != nil {
		m = m.Mul4(mgl32.Scale3D(s[0], s[1], s[2]))
	}
	return m
}
