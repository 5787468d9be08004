package shader

import (
	"io/fs"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mainSource = `// @oxy:include common.wgsl
//@oxy:include lighting.wgsl
// plain comment
fn fs_main() {}
`

func testFiles() fstest.MapFS {
	return fstest.MapFS{
		"assets/common.wgsl":   {Data: []byte("struct FrameData { vp: mat4x4f }\n")},
		"assets/lighting.wgsl": {Data: []byte("// @oxy:include common.wgsl\nfn light() -> f32 { return 1.0; }\n")},
		"assets/main.wgsl":     {Data: []byte(mainSource)},
		"assets/broken.wgsl":   {Data: []byte("// @oxy:include\n")},
		"assets/unknown.wgsl":  {Data: []byte("// @oxy:group 0 0 uniform frame frame\n")},
		"assets/missing.wgsl":  {Data: []byte("// @oxy:include nowhere.wgsl\n")},
	}
}

func TestProcess_ExpandsIncludesOnce(t *testing.T) {
	pp := NewPreProcessor(testFiles(), "assets")

	source, err := pp.Process("main.wgsl")
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(source, "struct FrameData"))
	assert.Contains(t, source, "fn light()")
	assert.Contains(t, source, "// plain comment")
	assert.Contains(t, source, "fn fs_main()")
	assert.NotContains(t, source, annotationPrefix)

	decls := pp.Declarations()
	require.Len(t, decls, 3)
	assert.Equal(t, []string{"common.wgsl"}, decls[0].Args)
	assert.Equal(t, []string{"lighting.wgsl"}, decls[1].Args)
	assert.Equal(t, 2, decls[1].Line)
	assert.Equal(t, AnnotationTypeInclude, decls[2].Type)
}

func TestProcess_ResetsDeclarations(t *testing.T) {
	pp := NewPreProcessor(testFiles(), "assets")
	_, err := pp.Process("main.wgsl")
	require.NoError(t, err)

	_, err = pp.Process("common.wgsl")
	require.NoError(t, err)
	assert.Empty(t, pp.Declarations())
}

func TestProcess_Errors(t *testing.T) {
	pp := NewPreProcessor(testFiles(), "assets")

	_, err := pp.Process("broken.wgsl")
	assert.ErrorContains(t, err, "takes 1 argument")

	_, err = pp.Process("unknown.wgsl")
	assert.ErrorContains(t, err, `unknown annotation type "group"`)

	_, err = pp.Process("missing.wgsl")
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.ErrorContains(t, err, `include "nowhere.wgsl"`)
}

func TestParseAnnotation_IgnoresPlainLines(t *testing.T) {
	for _, line := range []string{"", "fn main() {}", "// a comment", "let x = 1; // @oxy:include a.wgsl"} {
		a, err := parseAnnotation(line, 1)
		require.NoError(t, err)
		assert.Nil(t, a, line)
	}
}
