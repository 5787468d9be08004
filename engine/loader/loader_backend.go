package loader

import (
	"io"
)

// loaderBackend extracts the CPU side of a scene from one file format.
// Concrete implementations (e.g., gltfLoaderBackend) handle format-specific details.
type loaderBackend interface {
	// Load imports a scene file.
	//
	// Parameters:
	//   - path: the file path to load
	//
	// Returns:
	//   - *importedScene: the imported scene data
	//   - error: error if loading fails
	Load(path string) (*importedScene, error)

	// LoadReader imports a scene from a reader stream.
	//
	// Parameters:
	//   - name: the scene name; relative URIs resolve against its directory
	//   - r: the reader providing the file contents
	//   - isGLB: true if the reader provides GLB binary data, false for text-based formats
	//
	// Returns:
	//   - *importedScene: the imported scene data
	//   - error: error if loading fails
	LoadReader(name string, r io.Reader, isGLB bool) (*importedScene, error)
}
