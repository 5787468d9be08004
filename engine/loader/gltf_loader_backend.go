package loader

import (
	"io"

	"github.com/Carmen-Shannon/automation/tools/worker"
)

// gltfLoaderBackendImpl is the implementation of gltfLoaderBackend.
type gltfLoaderBackendImpl struct {
	importer gltfImporter
}

// gltfLoaderBackend is a loaderBackend implementation for glTF/GLB files.
// It delegates to the gltfImporter for parsing and extraction.
type gltfLoaderBackend interface {
	loaderBackend
}

var _ gltfLoaderBackend = &gltfLoaderBackendImpl{}

// newGLTFLoaderBackend creates a new glTF loader backend.
//
// Parameters:
//   - pool: the worker pool the importer fans extraction out to
//
// Returns:
//   - gltfLoaderBackend: the loader backend for glTF/GLB files
func newGLTFLoaderBackend(pool worker.DynamicWorkerPool) gltfLoaderBackend {
	return &gltfLoaderBackendImpl{
		importer: newGLTFImporter(pool),
	}
}

func (b *gltfLoaderBackendImpl) Load(path string) (*importedScene, error) {
	return b.importer.Import(path)
}

func (b *gltfLoaderBackendImpl) LoadReader(name string, r io.Reader, isGLB bool) (*importedScene, error) {
	return b.importer.ImportReader(name, r, isGLB)
}
