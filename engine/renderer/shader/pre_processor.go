// pre_processor.go implements the WGSL shader pre-processor. It reads a shader file from a
// file system, replaces @oxy:include annotations with the contents of the named files and
// records every annotation it consumed.
package shader

import (
	"fmt"
	"io/fs"
	"path"
	"strings"
)

// preProcessor is the implementation of the PreProcessor interface.
type preProcessor struct {
	// files is the file system shader sources and their includes are read from.
	files fs.FS

	// root is the directory of files the shader paths are relative to.
	root string

	// declarations accumulates the annotations consumed during a Process call.
	// Reset at the start of each Process invocation.
	declarations []Annotation
}

// PreProcessor expands the annotations of WGSL shader files into plain WGSL.
type PreProcessor interface {
	// Process reads a shader file and expands its annotations recursively. Each file is
	// injected at most once; later includes of the same file expand to nothing.
	//
	// The declarations list is reset at the start of each call and can be retrieved
	// via Declarations() after Process returns.
	//
	// Parameters:
	//   - file: the shader file, relative to the pre-processor root
	//
	// Returns:
	//   - string: the expanded WGSL source
	//   - error: an error if a file is missing or an annotation is malformed
	Process(file string) (string, error)

	// Declarations returns the annotations consumed during the most recent call to Process,
	// in the order they were expanded.
	//
	// Returns:
	//   - []Annotation: the annotations of the last Process call
	Declarations() []Annotation
}

var _ PreProcessor = &preProcessor{}

// NewPreProcessor creates a PreProcessor reading shader files from files.
//
// Parameters:
//   - files: the file system holding the shader sources
//   - root: the directory within files the shader paths are relative to; "" or "." for the top level
//
// Returns:
//   - PreProcessor: a ready-to-use pre-processor instance
func NewPreProcessor(files fs.FS, root string) PreProcessor {
	if root == "" {
		root = "."
	}
	return &preProcessor{files: files, root: root}
}

func (p *preProcessor) Process(file string) (string, error) {
	p.declarations = p.declarations[:0]
	return p.expand(file, map[string]bool{})
}

func (p *preProcessor) expand(file string, included map[string]bool) (string, error) {
	if included[file] {
		return "", nil
	}
	included[file] = true

	raw, err := fs.ReadFile(p.files, path.Join(p.root, file))
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for i, line := range strings.Split(string(raw), "\n") {
		a, err := parseAnnotation(line, i+1)
		if err != nil {
			return "", fmt.Errorf("%s: %w", file, err)
		}
		if a == nil {
			sb.WriteString(line)
			sb.WriteByte('\n')
			continue
		}

		p.declarations = append(p.declarations, *a)
		switch a.Type {
		case AnnotationTypeInclude:
			body, err := p.expand(a.Args[0], included)
			if err != nil {
				return "", fmt.Errorf("%s: include %q: %w", file, a.Args[0], err)
			}
			sb.WriteString(body)
		}
	}
	return sb.String(), nil
}

func (p *preProcessor) Declarations() []Annotation {
	return p.declarations
}
