package loader

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-deferred/engine/camera"
	"github.com/Carmen-Shannon/oxy-deferred/engine/game_object"
	"github.com/Carmen-Shannon/oxy-deferred/engine/light"
	"github.com/Carmen-Shannon/oxy-deferred/engine/logger"
	"github.com/Carmen-Shannon/oxy-deferred/engine/model"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-deferred/engine/scene"
)

var log = logger.New("loader")

// Load errors. Every error a Loader returns wraps one of these or an I/O error; none is fatal.
var (
	// ErrUnsupportedFormat is returned for a file extension no backend handles.
	ErrUnsupportedFormat = errors.New("unsupported scene file format")

	ErrInvalidGLTFVersion = errors.New("invalid glTF version: must be 2.x")
	ErrInvalidGLB         = errors.New("invalid GLB container")
	ErrMissingJSONChunk   = errors.New("GLB file missing JSON chunk")
	ErrInvalidDataURI     = errors.New("invalid data URI")
	ErrBufferSizeMismatch = errors.New("buffer size mismatch")

	// ErrUnsupportedExtension is returned when the file requires an extension the loader cannot honor.
	ErrUnsupportedExtension = errors.New("unsupported required glTF extension")

	// ErrInvalidReference is returned for an index into a document array that does not exist.
	ErrInvalidReference = errors.New("invalid glTF reference")

	// ErrAccessorOutOfRange is returned when accessor or buffer view data runs past its buffer.
	ErrAccessorOutOfRange = errors.New("accessor data out of range")

	// ErrUnsupportedAccessor is returned for sparse accessors and unexpected component types.
	ErrUnsupportedAccessor = errors.New("unsupported accessor")

	ErrMissingPosition      = errors.New("primitive has no POSITION attribute")
	ErrUnsupportedPrimitive = errors.New("unsupported primitive mode: only triangles are supported")
)

// supportedExtensions are the extensions a file may list as required.
var supportedExtensions = map[string]bool{
	"KHR_lights_punctual": true,
}

// LoaderBackendType identifies the scene file format backend to use.
type LoaderBackendType int

const (
	// BackendTypeGLTF selects the glTF/GLB loader backend.
	BackendTypeGLTF LoaderBackendType = iota
)

// loader is the implementation of the Loader interface.
type loader struct {
	mu *sync.Mutex

	ctx     renderer.RenderContext
	workers int
	pool    worker.DynamicWorkerPool
	backend loaderBackend

	cameraOptions []camera.CameraBuilderOption
}

// Loader turns scene files into Scenes. CPU work (parsing, primitive extraction, image decoding)
// runs on a worker pool; GPU resources are created afterwards on the caller's goroutine through
// the render context. A failed load returns an error and leaves no GPU resources behind.
type Loader interface {
	// Load imports a scene file. The backend is selected by extension (.gltf/.glb → glTF backend).
	//
	// Parameters:
	//   - path: the file path to the scene file
	//
	// Returns:
	//   - scene.Scene: the new scene, named after the file
	//   - error: a wrapped load error; the caller keeps its previous scene
	Load(path string) (scene.Scene, error)

	// LoadReader imports a scene from a reader stream.
	//
	// Parameters:
	//   - name: the scene name; relative URIs resolve against its directory
	//   - r: the reader providing the file contents
	//   - isGLB: true if the reader provides GLB binary data
	//
	// Returns:
	//   - scene.Scene: the new scene
	//   - error: a wrapped load error
	LoadReader(name string, r io.Reader, isGLB bool) (scene.Scene, error)

	// Release stops the worker pool. The loader must not be used afterwards.
	Release()
}

var _ Loader = &loader{}

// NewLoader creates a new Loader instance with the specified backend type and options applied.
//
// Parameters:
//   - ctx: the render context scenes are created on
//   - backendType: the type of loader backend to use (e.g., BackendTypeGLTF)
//   - options: a variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - Loader: a new instance of Loader configured with the provided backend and options
func NewLoader(ctx renderer.RenderContext, backendType LoaderBackendType, options ...LoaderBuilderOption) Loader {
	l := &loader{
		mu:      &sync.Mutex{},
		ctx:     ctx,
		workers: runtime.NumCPU(),
	}
	for _, option := range options {
		option(l)
	}

	// Queue size of 256 covers the primitives and images of typical scene files.
	l.pool = worker.NewDynamicWorkerPool(l.workers, 256, 1*time.Second)

	switch backendType {
	case BackendTypeGLTF:
		l.backend = newGLTFLoaderBackend(l.pool)
	}
	return l
}

func (l *loader) Load(path string) (scene.Scene, error) {
	backend, err := l.resolveBackend(path)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	imported, err := backend.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}

	s, err := l.build(imported)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	log.Debugf("loaded %s in %v", path, time.Since(start).Round(time.Millisecond))
	return s, nil
}

func (l *loader) LoadReader(name string, r io.Reader, isGLB bool) (scene.Scene, error) {
	imported, err := l.backend.LoadReader(name, r, isGLB)
	if err != nil {
		return nil, fmt.Errorf("failed to load from reader %q: %w", name, err)
	}

	s, err := l.build(imported)
	if err != nil {
		return nil, fmt.Errorf("failed to load from reader %q: %w", name, err)
	}
	return s, nil
}

func (l *loader) Release() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.pool != nil {
		l.pool.Stop()
		l.pool = nil
	}
}

// resolveBackend selects an appropriate loader backend based on the file extension.
// Currently only glTF/GLB is supported.
func (l *loader) resolveBackend(path string) (loaderBackend, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".gltf", ".glb":
		return l.backend, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// build uploads an imported scene: one mesh per primitive shared by every node that instances it,
// one material per file material, one object per primitive of each mesh node, then lights and camera.
// Resources created before a failure are released.
func (l *loader) build(imported *importedScene) (s scene.Scene, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	b := &sceneBuilder{ctx: l.ctx, imported: imported}
	defer func() {
		if err != nil {
			b.release()
		}
	}()

	objects := make([]game_object.GameObject, 0, imported.ObjectCount())
	for _, node := range imported.Nodes {
		for pi, prim := range imported.Meshes[node.Mesh] {
			mesh, err := b.mesh(node.Mesh, pi)
			if err != nil {
				return nil, fmt.Errorf("node %q: %w", node.Name, err)
			}
			name := node.Name
			if pi > 0 {
				name = fmt.Sprintf("%s_prim%d", node.Name, pi)
			}
			objects = append(objects, game_object.NewGameObject(mesh, b.material(prim.Material),
				game_object.WithName(name),
				game_object.WithTransform(node.World),
			))
		}
	}

	lights := make([]light.PointLight, len(imported.Lights))
	for i, il := range imported.Lights {
		lights[i] = light.NewPointLight(
			light.WithPosition(il.Position.X(), il.Position.Y(), il.Position.Z()),
			light.WithColor(il.Color.X(), il.Color.Y(), il.Color.Z()),
			light.WithRadius(il.Radius),
		)
	}

	options := []scene.SceneBuilderOption{
		scene.WithName(imported.Name),
		scene.WithObjects(objects...),
		scene.WithPointLights(lights...),
	}
	if c := imported.Camera; c != nil {
		target := c.Position.Add(c.Forward)
		camOptions := append([]camera.CameraBuilderOption{
			camera.WithPosition(c.Position.X(), c.Position.Y(), c.Position.Z()),
			camera.WithTarget(target.X(), target.Y(), target.Z()),
			camera.WithFov(c.Fov),
			camera.WithClipPlanes(c.Near, c.Far),
		}, l.cameraOptions...)
		options = append(options, scene.WithCamera(camera.NewCamera(camOptions...)))
	} else if len(l.cameraOptions) > 0 {
		options = append(options, scene.WithCamera(camera.NewCamera(l.cameraOptions...)))
	}

	return scene.NewScene(l.ctx, options...), nil
}

// sceneBuilder creates the GPU resources of one imported scene, each at most once.
type sceneBuilder struct {
	ctx      renderer.RenderContext
	imported *importedScene

	meshes    map[[2]int]*model.Mesh
	materials map[int]material.Material
	textures  map[int]renderer.Texture
}

func (b *sceneBuilder) mesh(meshIndex, primIndex int) (*model.Mesh, error) {
	key := [2]int{meshIndex, primIndex}
	if m, ok := b.meshes[key]; ok {
		return m, nil
	}
	m, err := model.NewMesh(b.ctx, b.imported.Meshes[meshIndex][primIndex].Data)
	if err != nil {
		return nil, err
	}
	if b.meshes == nil {
		b.meshes = make(map[[2]int]*model.Mesh)
	}
	b.meshes[key] = m
	return m, nil
}

// material returns the material of a file material index; noIndex selects a shared default material.
func (b *sceneBuilder) material(index int) material.Material {
	if m, ok := b.materials[index]; ok {
		return m
	}

	var m material.Material
	if index == noIndex {
		m = material.NewMaterial(b.ctx, material.WithName(b.imported.Name+"_default"))
	} else {
		im := b.imported.Materials[index]
		options := []material.MaterialBuilderOption{
			material.WithName(im.Name),
			material.WithBaseColor(im.BaseColor),
		}
		if tex := b.texture(im.Albedo); tex != nil {
			options = append(options, material.WithAlbedo(tex))
		}
		if tex := b.texture(im.NormalMap); tex != nil {
			options = append(options, material.WithNormalMap(tex))
		}
		m = material.NewMaterial(b.ctx, options...)
	}

	if b.materials == nil {
		b.materials = make(map[int]material.Material)
	}
	b.materials[index] = m
	return m
}

func (b *sceneBuilder) texture(index int) renderer.Texture {
	if index == noIndex {
		return nil
	}
	if t, ok := b.textures[index]; ok {
		return t
	}
	it := b.imported.Textures[index]
	t := b.ctx.NewTextureFromImage(it.Name, it.Image, it.SRGB)
	if b.textures == nil {
		b.textures = make(map[int]renderer.Texture)
	}
	b.textures[index] = t
	return t
}

// release frees everything created so far. Material release covers their textures.
func (b *sceneBuilder) release() {
	for _, m := range b.meshes {
		m.Release()
	}
	for _, m := range b.materials {
		m.Release()
	}
	for _, t := range b.textures {
		t.Release()
	}
}

// ListSceneFiles returns the .gltf and .glb files directly inside dir, sorted by name.
//
// Parameters:
//   - dir: the directory to scan
//
// Returns:
//   - []string: the file paths
//   - error: error if the directory cannot be read
func ListSceneFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".gltf", ".glb":
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	slices.Sort(files)
	return files, nil
}
