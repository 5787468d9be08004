package game_object

import (
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-deferred/engine/model"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/material"
	"github.com/go-gl/mathgl/mgl32"
)

// objectCount generates unique object IDs.
var objectCount atomic.Uint64

type gameObject struct {
	id      uint64
	name    string
	enabled atomic.Bool

	mesh *model.Mesh
	mat  material.Material

	mu        sync.RWMutex
	transform mgl32.Mat4
}

// GameObject is a renderable instance in a scene: a shared immutable mesh drawn with a
// material at a mutable model-to-world transform.
type GameObject interface {
	// ID returns the object's unique identifier.
	//
	// Returns:
	//   - uint64: the object ID
	ID() uint64

	// Name returns the object's name, usually the scene-file node name.
	Name() string

	// Enabled returns whether this object is drawn.
	//
	// Returns:
	//   - bool: true if enabled
	Enabled() bool

	// SetEnabled sets whether the object is drawn.
	//
	// Parameters:
	//   - enabled: true to enable
	SetEnabled(enabled bool)

	// Mesh returns the shared mesh. Several objects may return the same pointer.
	//
	// Returns:
	//   - *model.Mesh: the mesh
	Mesh() *model.Mesh

	// Material returns the material the object is drawn with.
	//
	// Returns:
	//   - material.Material: the material
	Material() material.Material

	// Transform returns the model-to-world matrix.
	//
	// Returns:
	//   - mgl32.Mat4: the transform
	Transform() mgl32.Mat4

	// SetTransform replaces the model-to-world matrix.
	//
	// Parameters:
	//   - transform: the new transform
	SetTransform(transform mgl32.Mat4)

	// Draw applies the material, sets the program's "model" uniform to the transform and
	// issues the mesh draw. Buffers the program reads must already be bound.
	//
	// Parameters:
	//   - ctx: the render context
	Draw(ctx renderer.RenderContext)
}

var _ GameObject = &gameObject{}

// NewGameObject creates an enabled object with an identity transform.
//
// Parameters:
//   - mesh: the shared mesh, must not be nil
//   - mat: the material, must not be nil
//   - options: variadic list of GameObjectBuilderOption to configure the object
//
// Returns:
//   - GameObject: the new object
func NewGameObject(mesh *model.Mesh, mat material.Material, options ...GameObjectBuilderOption) GameObject {
	if mesh == nil || mat == nil {
		panic("game_object: object needs a mesh and a material")
	}

	obj := &gameObject{
		id:        objectCount.Add(1),
		name:      mesh.Name(),
		mesh:      mesh,
		mat:       mat,
		transform: mgl32.Ident4(),
	}
	obj.enabled.Store(true)
	for _, opt := range options {
		opt(obj)
	}
	return obj
}

func (o *gameObject) ID() uint64 {
	return o.id
}

func (o *gameObject) Name() string {
	return o.name
}

func (o *gameObject) Enabled() bool {
	return o.enabled.Load()
}

func (o *gameObject) SetEnabled(enabled bool) {
	o.enabled.Store(enabled)
}

func (o *gameObject) Mesh() *model.Mesh {
	return o.mesh
}

func (o *gameObject) Material() material.Material {
	return o.mat
}

func (o *gameObject) Transform() mgl32.Mat4 {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.transform
}

func (o *gameObject) SetTransform(transform mgl32.Mat4) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.transform = transform
}

func (o *gameObject) Draw(ctx renderer.RenderContext) {
	o.mat.Apply(ctx)
	ctx.CurrentProgram().SetUniform("model", o.Transform())
	o.mesh.Draw(ctx)
}
