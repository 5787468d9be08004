package loader

import (
	"fmt"
	"io"
	"path/filepath"
	"sync"

	"github.com/Carmen-Shannon/automation/tools/worker"
)

// gltfImporterImpl is the implementation of the gltfImporter interface.
type gltfImporterImpl struct {
	pool worker.DynamicWorkerPool
}

// gltfImporter combines the parser and the extractors into a complete importedScene.
// Primitive extraction and texture decoding run on the worker pool; nothing touches the GPU.
type gltfImporter interface {
	// Import loads a glTF/GLB file.
	//
	// Parameters:
	//   - path: the file path to the glTF or GLB file
	//
	// Returns:
	//   - *importedScene: the scene named after the file
	//   - error: error if import fails
	Import(path string) (*importedScene, error)

	// ImportReader loads a glTF document from a reader.
	//
	// Parameters:
	//   - name: the scene name, also its URI base: relative URIs resolve against its directory
	//   - r: the reader providing glTF/GLB data
	//   - isGLB: true if the reader provides GLB binary data, false for glTF JSON
	//
	// Returns:
	//   - *importedScene: the imported scene
	//   - error: error if import fails
	ImportReader(name string, r io.Reader, isGLB bool) (*importedScene, error)
}

var _ gltfImporter = &gltfImporterImpl{}

// newGLTFImporter creates a new glTF importer.
//
// Parameters:
//   - pool: the pool running primitive extraction and texture decoding
//
// Returns:
//   - gltfImporter: the importer
func newGLTFImporter(pool worker.DynamicWorkerPool) gltfImporter {
	return &gltfImporterImpl{pool: pool}
}

func (imp *gltfImporterImpl) Import(path string) (*importedScene, error) {
	parser := newGLTFParser()
	if err := parser.Parse(path); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return imp.importFromParser(parser, gltfSceneName(path))
}

func (imp *gltfImporterImpl) ImportReader(name string, r io.Reader, isGLB bool) (*importedScene, error) {
	parser := newGLTFParser()
	baseDir := ""
	if name != "" {
		baseDir = filepath.Dir(name)
	}
	if err := parser.ParseReader(r, isGLB, baseDir); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", name, err)
	}

	return imp.importFromParser(parser, gltfSceneName(name))
}

// importFromParser extracts a scene from a parser that has already loaded a document.
//
// Parameters:
//   - parser: the glTF parser that has already loaded a document
//   - name: the scene name
func (imp *gltfImporterImpl) importFromParser(parser gltfParser, name string) (*importedScene, error) {
	doc := parser.Document()
	if doc == nil {
		return nil, fmt.Errorf("no document after parsing")
	}

	nodes, lights, cam, err := newGLTFNodeExtractor(parser).Walk()
	if err != nil {
		return nil, fmt.Errorf("node traversal failed: %w", err)
	}

	materialExtractor := newGLTFMaterialExtractor(parser)
	materials, textureRefs, err := materialExtractor.ExtractMaterials()
	if err != nil {
		return nil, fmt.Errorf("material extraction failed: %w", err)
	}

	// Only meshes some node instantiates are extracted.
	meshes := make([][]importedPrimitive, len(doc.Meshes))
	meshErrs := make([][]error, len(doc.Meshes))
	for _, n := range nodes {
		if meshes[n.Mesh] == nil {
			meshes[n.Mesh] = make([]importedPrimitive, len(doc.Meshes[n.Mesh].Primitives))
			meshErrs[n.Mesh] = make([]error, len(doc.Meshes[n.Mesh].Primitives))
		}
	}
	textures := make([]importedTexture, len(textureRefs))
	textureErrs := make([]error, len(textureRefs))

	// Every task writes its own slot, and the WaitGroup is the barrier before the results are read.
	meshExtractor := newGLTFMeshExtractor(parser)
	var wg sync.WaitGroup
	taskID := 0
	submit := func(do func()) {
		wg.Add(1)
		id := taskID
		taskID++
		imp.pool.SubmitTask(worker.Task{
			ID: id,
			Do: func() (any, error) {
				defer wg.Done()
				do()
				return nil, nil
			},
		})
	}

	for mi := range meshes {
		for pi := range meshes[mi] {
			submit(func() {
				meshes[mi][pi], meshErrs[mi][pi] = meshExtractor.ExtractPrimitive(mi, pi)
			})
		}
	}
	for ti, ref := range textureRefs {
		submit(func() {
			textures[ti], textureErrs[ti] = materialExtractor.LoadTexture(ref)
		})
	}
	wg.Wait()

	for mi := range meshErrs {
		for pi, err := range meshErrs[mi] {
			if err != nil {
				return nil, fmt.Errorf("mesh %d primitive %d: %w", mi, pi, err)
			}
		}
	}

	// An unreadable image is not fatal: the material keeps its default texture.
	for ti, err := range textureErrs {
		if err == nil {
			continue
		}
		log.Warningf("%s: texture %d: %v", name, textureRefs[ti].Index, err)
		for mi := range materials {
			if materials[mi].Albedo == ti {
				materials[mi].Albedo = noIndex
			}
			if materials[mi].NormalMap == ti {
				materials[mi].NormalMap = noIndex
			}
		}
	}

	return &importedScene{
		Name:      name,
		Meshes:    meshes,
		Materials: materials,
		Textures:  textures,
		Nodes:     nodes,
		Lights:    lights,
		Camera:    cam,
	}, nil
}

// gltfSceneName derives a scene name from a file path: its base name.
func gltfSceneName(path string) string {
	if path == "" {
		return "unnamed_scene"
	}
	return filepath.Base(path)
}
