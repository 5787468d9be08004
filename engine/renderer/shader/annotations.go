// annotations.go defines the annotation syntax of the WGSL pre-processor. Annotations are
// single-line WGSL comments prefixed with @oxy: that the pre-processor replaces before the
// source reaches the shader compiler.
package shader

import (
	"fmt"
	"strings"
)

// annotationPrefix is the marker that identifies an annotation within a WGSL comment line.
const annotationPrefix = "@oxy:"

// AnnotationType identifies the kind of annotation parsed from a WGSL comment line.
type AnnotationType string

const (
	// AnnotationTypeInclude injects the contents of another shader file at the annotation site.
	// A file is injected at most once per processed program, so shared struct declarations
	// may be included from several files.
	//
	// Syntax: // @oxy:include <file>
	//
	// Example: // @oxy:include common.wgsl
	AnnotationTypeInclude AnnotationType = "include"
)

// Annotation represents a single parsed @oxy: annotation.
type Annotation struct {
	// Type identifies which annotation was parsed.
	Type AnnotationType

	// Args holds the annotation's arguments. For include: [0] = the included file.
	Args []string

	// Line is the 1-based line number of the annotation in its file.
	Line int
}

// annotationArity is the number of arguments each annotation type takes.
var annotationArity = map[AnnotationType]int{
	AnnotationTypeInclude: 1,
}

// parseAnnotation parses one source line. Lines that are not annotation comments yield nil.
//
// Parameters:
//   - line: the raw source line
//   - lineNumber: the 1-based line number, used for error reporting
//
// Returns:
//   - *Annotation: the parsed annotation, or nil if the line is not an annotation
//   - error: an error if the annotation is unknown or has the wrong number of arguments
func parseAnnotation(line string, lineNumber int) (*Annotation, error) {
	comment, ok := strings.CutPrefix(strings.TrimSpace(line), "//")
	if !ok {
		return nil, nil
	}
	body, ok := strings.CutPrefix(strings.TrimSpace(comment), annotationPrefix)
	if !ok {
		return nil, nil
	}

	fields := strings.Fields(body)
	if len(fields) == 0 {
		return nil, fmt.Errorf("line %d: empty annotation", lineNumber)
	}

	annotationType := AnnotationType(fields[0])
	arity, known := annotationArity[annotationType]
	if !known {
		return nil, fmt.Errorf("line %d: unknown annotation type %q", lineNumber, fields[0])
	}
	if len(fields)-1 != arity {
		return nil, fmt.Errorf("line %d: @oxy:%s takes %d argument(s), got %d", lineNumber, annotationType, arity, len(fields)-1)
	}

	return &Annotation{Type: annotationType, Args: fields[1:], Line: lineNumber}, nil
}
