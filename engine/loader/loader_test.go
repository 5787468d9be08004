package loader

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/oxy-deferred/engine/camera"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer"
	"github.com/Carmen-Shannon/oxy-deferred/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestContext(t *testing.T) renderer.RenderContext {
	t.Helper()
	ctx := renderer.NewHeadlessContext(renderer.WithValidation(true), renderer.WithRecording(true))
	t.Cleanup(ctx.Release)
	return ctx
}

func newTestLoader(t *testing.T, ctx renderer.RenderContext, options ...LoaderBuilderOption) Loader {
	t.Helper()
	l := NewLoader(ctx, BackendTypeGLTF, append([]LoaderBuilderOption{WithWorkers(2)}, options...)...)
	t.Cleanup(l.Release)
	return l
}

// testDoc assembles a glTF document and its single binary buffer.
type testDoc struct {
	bin       bytes.Buffer
	views     []map[string]any
	accessors []map[string]any
	fields    map[string]any
}

func newTestDoc() *testDoc {
	return &testDoc{fields: map[string]any{
		"asset": map[string]any{"version": "2.0"},
	}}
}

func (d *testDoc) addView(data []byte) int {
	for d.bin.Len()%4 != 0 {
		d.bin.WriteByte(0)
	}
	d.views = append(d.views, map[string]any{
		"buffer":     0,
		"byteOffset": d.bin.Len(),
		"byteLength": len(data),
	})
	d.bin.Write(data)
	return len(d.views) - 1
}

func (d *testDoc) addAccessor(accessor map[string]any) int {
	d.accessors = append(d.accessors, accessor)
	return len(d.accessors) - 1
}

func (d *testDoc) addFloats(typ string, count int, values ...float32) int {
	var buf bytes.Buffer
	_ = binary.Write(&buf, binary.LittleEndian, values)
	return d.addAccessor(map[string]any{
		"bufferView":    d.addView(buf.Bytes()),
		"componentType": gltfComponentTypeFloat,
		"type":          typ,
		"count":         count,
	})
}

func (d *testDoc) addIndices(values ...uint16) int {
	var buf bytes.Buffer
	_ = binary.Write(&buf, binary.LittleEndian, values)
	return d.addAccessor(map[string]any{
		"bufferView":    d.addView(buf.Bytes()),
		"componentType": gltfComponentTypeUnsignedShort,
		"type":          gltfAccessorTypeScalar,
		"count":         len(values),
	})
}

// addTriangle adds a one-triangle mesh and returns its index.
func (d *testDoc) addTriangle(name string, primitive map[string]any) int {
	pos := d.addFloats(gltfAccessorTypeVec3, 3, 0, 0, 0, 1, 0, 0, 0, 1, 0)
	idx := d.addIndices(0, 1, 2)
	prim := map[string]any{"attributes": map[string]any{"POSITION": pos}, "indices": idx}
	for k, v := range primitive {
		prim[k] = v
	}
	meshes, _ := d.fields["meshes"].([]any)
	d.fields["meshes"] = append(meshes, map[string]any{"name": name, "primitives": []any{prim}})
	return len(meshes)
}

func (d *testDoc) set(key string, value any) *testDoc {
	d.fields[key] = value
	return d
}

func (d *testDoc) document(bufferURI string) map[string]any {
	doc := make(map[string]any, len(d.fields)+3)
	for k, v := range d.fields {
		doc[k] = v
	}
	doc["bufferViews"] = d.views
	doc["accessors"] = d.accessors
	buffer := map[string]any{"byteLength": d.bin.Len()}
	if bufferURI != "" {
		buffer["uri"] = bufferURI
	}
	doc["buffers"] = []any{buffer}
	return doc
}

// gltf returns the document as JSON with the buffer embedded as a data URI.
func (d *testDoc) gltf(t *testing.T) []byte {
	t.Helper()
	uri := "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(d.bin.Bytes())
	data, err := json.Marshal(d.document(uri))
	require.NoError(t, err)
	return data
}

// glb returns the document packed into a GLB container.
func (d *testDoc) glb(t *testing.T) []byte {
	t.Helper()
	jsonData, err := json.Marshal(d.document(""))
	require.NoError(t, err)
	for len(jsonData)%4 != 0 {
		jsonData = append(jsonData, ' ')
	}
	binData := append([]byte(nil), d.bin.Bytes()...)
	for len(binData)%4 != 0 {
		binData = append(binData, 0)
	}

	var out bytes.Buffer
	total := 12 + 8 + len(jsonData) + 8 + len(binData)
	_ = binary.Write(&out, binary.LittleEndian, gltfGLBHeader{Magic: gltfGLBMagic, Version: gltfGLBVersion, Length: uint32(total)})
	_ = binary.Write(&out, binary.LittleEndian, gltfGLBChunkHeader{ChunkLength: uint32(len(jsonData)), ChunkType: gltfGLBChunkJSON})
	out.Write(jsonData)
	_ = binary.Write(&out, binary.LittleEndian, gltfGLBChunkHeader{ChunkLength: uint32(len(binData)), ChunkType: gltfGLBChunkBIN})
	out.Write(binData)
	return out.Bytes()
}

func singleNodeScene(mesh int) []any {
	return []any{map[string]any{"name": "tri", "mesh": mesh}}
}

func loadGLTF(t *testing.T, l Loader, name string, d *testDoc) scene.Scene {
	t.Helper()
	s, err := l.LoadReader(name, bytes.NewReader(d.gltf(t)), false)
	require.NoError(t, err)
	t.Cleanup(s.Release)
	return s
}

func TestLoadReader_Triangle(t *testing.T) {
	ctx := newTestContext(t)
	l := newTestLoader(t, ctx)

	d := newTestDoc()
	d.set("nodes", singleNodeScene(d.addTriangle("tri", nil)))
	s := loadGLTF(t, l, "models/triangle.gltf", d)

	assert.Equal(t, "triangle.gltf", s.Name())
	require.Len(t, s.Objects(), 1)
	obj := s.Objects()[0]
	assert.Equal(t, "tri", obj.Name())
	assert.Equal(t, 3, obj.Mesh().VertexCount())
	assert.Equal(t, 3, obj.Mesh().IndexCount())
	assert.Equal(t, mgl32.Ident4(), obj.Transform())

	// No file material: the default material with its fallback textures.
	mat := obj.Material()
	assert.Equal(t, renderer.ProgramGBuffer, mat.Program())
	assert.Equal(t, mgl32.Vec4{1, 1, 1, 1}, mat.BaseColor())
	require.NotNil(t, mat.Albedo())
	require.NotNil(t, mat.NormalMap())

	assert.Empty(t, s.PointLights())
	assert.NotNil(t, s.Camera())
}

func TestLoadReader_NonIndexedPrimitive(t *testing.T) {
	ctx := newTestContext(t)
	l := newTestLoader(t, ctx)

	d := newTestDoc()
	pos := d.addFloats(gltfAccessorTypeVec3, 3, 0, 0, 0, 1, 0, 0, 0, 1, 0)
	d.set("meshes", []any{map[string]any{
		"primitives": []any{map[string]any{"attributes": map[string]any{"POSITION": pos}}},
	}})
	d.set("nodes", singleNodeScene(0))
	s := loadGLTF(t, l, "flat.gltf", d)

	require.Len(t, s.Objects(), 1)
	assert.Equal(t, 3, s.Objects()[0].Mesh().IndexCount())
	assert.Equal(t, "mesh_0", s.Objects()[0].Mesh().Name())
}

func TestLoadReader_NodeHierarchyAndSharedMesh(t *testing.T) {
	ctx := newTestContext(t)
	l := newTestLoader(t, ctx)

	d := newTestDoc()
	mesh := d.addTriangle("tri", nil)
	d.set("nodes", []any{
		map[string]any{"name": "parent", "translation": []float32{1, 0, 0}, "children": []int{1}},
		map[string]any{"name": "child", "mesh": mesh, "translation": []float32{0, 2, 0}, "scale": []float32{2, 2, 2}},
		map[string]any{"name": "other", "mesh": mesh, "rotation": []float32{0, 0, 0, 1}},
	})
	d.set("scenes", []any{map[string]any{"nodes": []int{0, 2}}})
	d.set("scene", 0)
	s := loadGLTF(t, l, "tree.gltf", d)

	objects := s.Objects()
	require.Len(t, objects, 2)
	assert.Equal(t, "child", objects[0].Name())
	assert.Equal(t, "other", objects[1].Name())

	want := mgl32.Translate3D(1, 2, 0).Mul4(mgl32.Scale3D(2, 2, 2))
	assert.True(t, want.ApproxEqualThreshold(objects[0].Transform(), 1e-5), "got %v", objects[0].Transform())
	assert.True(t, mgl32.Ident4().ApproxEqualThreshold(objects[1].Transform(), 1e-5))

	assert.Same(t, objects[0].Mesh(), objects[1].Mesh())
	assert.Same(t, objects[0].Material(), objects[1].Material())
}

func TestLoadReader_MatrixOverridesTRS(t *testing.T) {
	ctx := newTestContext(t)
	l := newTestLoader(t, ctx)

	d := newTestDoc()
	matrix := mgl32.Translate3D(3, 4, 5)
	d.set("nodes", []any{map[string]any{
		"mesh":        d.addTriangle("tri", nil),
		"matrix":      matrix,
		"translation": []float32{9, 9, 9},
	}})
	s := loadGLTF(t, l, "matrix.gltf", d)

	require.Len(t, s.Objects(), 1)
	assert.Equal(t, matrix, s.Objects()[0].Transform())
	assert.Equal(t, "node_0", s.Objects()[0].Name())
}

func TestLoadReader_PointLights(t *testing.T) {
	ctx := newTestContext(t)
	l := newTestLoader(t, ctx)

	d := newTestDoc()
	d.set("extensionsUsed", []string{"KHR_lights_punctual"})
	d.set("extensionsRequired", []string{"KHR_lights_punctual"})
	d.set("extensions", map[string]any{"KHR_lights_punctual": map[string]any{"lights": []any{
		map[string]any{"type": "point", "color": []float32{1, 0.5, 0}, "intensity": 4, "range": 7},
		map[string]any{"type": "point"},
		map[string]any{"type": "spot", "spot": map[string]any{}},
	}}})
	lightNode := func(index int, x, y, z float32) map[string]any {
		return map[string]any{
			"translation": []float32{x, y, z},
			"extensions":  map[string]any{"KHR_lights_punctual": map[string]any{"light": index}},
		}
	}
	d.set("nodes", []any{
		map[string]any{"translation": []float32{0, 1, 0}, "children": []int{1, 2, 3}},
		lightNode(0, 1, 2, 3),
		lightNode(1, -1, 0, 0),
		lightNode(2, 0, 0, 0),
	})
	s := loadGLTF(t, l, "lights.gltf", d)

	assert.Empty(t, s.Objects())
	lights := s.PointLights()
	require.Len(t, lights, 2)

	assert.Equal(t, mgl32.Vec3{1, 3, 3}, lights[0].Position())
	assert.Equal(t, mgl32.Vec3{4, 2, 0}, lights[0].Color())
	assert.Equal(t, float32(7), lights[0].Radius())

	assert.Equal(t, mgl32.Vec3{-1, 1, 0}, lights[1].Position())
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, lights[1].Color())
	assert.Equal(t, DefaultLightRadius, lights[1].Radius())

	assert.Len(t, s.LightBalls(), 2)
}

func TestLoadReader_Camera(t *testing.T) {
	ctx := newTestContext(t)
	l := newTestLoader(t, ctx, WithCameraOptions(camera.WithAspect(2)))

	half := float32(math.Sqrt2 / 2)
	d := newTestDoc()
	d.set("cameras", []any{
		map[string]any{"type": "orthographic", "orthographic": map[string]any{"xmag": 1, "ymag": 1, "znear": 0.1, "zfar": 10}},
		map[string]any{"type": "perspective", "perspective": map[string]any{"yfov": 0.8, "znear": 0.1, "zfar": 50}},
	})
	d.set("nodes", []any{
		map[string]any{"camera": 0},
		// 90 degrees about +Y turns the local -Z view direction into -X.
		map[string]any{"camera": 1, "translation": []float32{0, 1, 5}, "rotation": []float32{0, half, 0, half}},
	})
	s := loadGLTF(t, l, "camera.gltf", d)

	cam := s.Camera()
	assert.Equal(t, mgl32.Vec3{0, 1, 5}, cam.Position())
	forward := cam.Forward()
	assert.InDelta(t, -1, forward.X(), 1e-4)
	assert.InDelta(t, 0, forward.Y(), 1e-4)
	assert.InDelta(t, 0, forward.Z(), 1e-4)
	assert.InDelta(t, 0.8, cam.Fov(), 1e-6)
	assert.InDelta(t, 0.1, cam.Near(), 1e-6)
	assert.InDelta(t, 50, cam.Far(), 1e-6)
	assert.Equal(t, float32(2), cam.Aspect())
}

func TestLoadReader_CameraOptionsWithoutFileCamera(t *testing.T) {
	ctx := newTestContext(t)
	l := newTestLoader(t, ctx, WithCameraOptions(camera.WithAspect(1.5)))

	d := newTestDoc()
	d.set("nodes", singleNodeScene(d.addTriangle("tri", nil)))
	s := loadGLTF(t, l, "plain.gltf", d)

	assert.Equal(t, float32(1.5), s.Camera().Aspect())
}

func TestLoadReader_GLB(t *testing.T) {
	ctx := newTestContext(t)
	l := newTestLoader(t, ctx)

	d := newTestDoc()
	d.set("nodes", singleNodeScene(d.addTriangle("tri", nil)))
	s, err := l.LoadReader("packed.glb", bytes.NewReader(d.glb(t)), true)
	require.NoError(t, err)
	t.Cleanup(s.Release)

	assert.Equal(t, "packed.glb", s.Name())
	require.Len(t, s.Objects(), 1)
	assert.Equal(t, 3, s.Objects()[0].Mesh().VertexCount())
}

func testPNG(t *testing.T, c color.RGBA) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for y := range 2 {
		for x := range 2 {
			img.SetRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestLoadReader_MaterialTextures(t *testing.T) {
	ctx := newTestContext(t)
	l := newTestLoader(t, ctx)

	d := newTestDoc()
	uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString(testPNG(t, color.RGBA{R: 200, A: 255}))
	d.set("images", []any{map[string]any{"uri": uri}})
	d.set("textures", []any{map[string]any{"source": 0}})
	d.set("materials", []any{map[string]any{
		"name": "painted",
		"pbrMetallicRoughness": map[string]any{
			"baseColorFactor":  []float32{0.5, 0.25, 1, 1},
			"baseColorTexture": map[string]any{"index": 0},
		},
		"normalTexture": map[string]any{"index": 0},
	}})
	d.set("nodes", singleNodeScene(d.addTriangle("tri", map[string]any{"material": 0})))
	s := loadGLTF(t, l, "textured.gltf", d)

	require.Len(t, s.Objects(), 1)
	mat := s.Objects()[0].Material()
	assert.Equal(t, "painted", mat.Name())
	assert.Equal(t, mgl32.Vec4{0.5, 0.25, 1, 1}, mat.BaseColor())

	// The same image is uploaded once per color space.
	require.NotNil(t, mat.Albedo())
	require.NotNil(t, mat.NormalMap())
	assert.NotEqual(t, mat.Albedo().ID(), mat.NormalMap().ID())
	assert.Equal(t, 2, mat.Albedo().Width())
	assert.Equal(t, renderer.ImageFormatRGBA8sRGB, mat.Albedo().Format())
	assert.Equal(t, renderer.ImageFormatRGBA8Unorm, mat.NormalMap().Format())
}

func TestLoadReader_UndecodableTextureFallsBack(t *testing.T) {
	ctx := newTestContext(t)
	l := newTestLoader(t, ctx)

	d := newTestDoc()
	uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("not a png"))
	d.set("images", []any{map[string]any{"uri": uri}})
	d.set("textures", []any{map[string]any{"source": 0}})
	d.set("materials", []any{map[string]any{
		"pbrMetallicRoughness": map[string]any{"baseColorTexture": map[string]any{"index": 0}},
	}})
	d.set("nodes", singleNodeScene(d.addTriangle("tri", map[string]any{"material": 0})))
	s := loadGLTF(t, l, "broken.gltf", d)

	mat := s.Objects()[0].Material()
	assert.Equal(t, "material_0", mat.Name())
	require.NotNil(t, mat.Albedo())
	assert.Equal(t, 1, mat.Albedo().Width())
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name  string
		build func(d *testDoc)
		want  error
	}{
		{
			name: "version 1",
			build: func(d *testDoc) {
				d.set("asset", map[string]any{"version": "1.0"})
				d.set("nodes", singleNodeScene(d.addTriangle("tri", nil)))
			},
			want: ErrInvalidGLTFVersion,
		},
		{
			name: "missing position",
			build: func(d *testDoc) {
				normals := d.addFloats(gltfAccessorTypeVec3, 1, 0, 1, 0)
				d.set("meshes", []any{map[string]any{"primitives": []any{
					map[string]any{"attributes": map[string]any{"NORMAL": normals}},
				}}})
				d.set("nodes", singleNodeScene(0))
			},
			want: ErrMissingPosition,
		},
		{
			name: "line primitive",
			build: func(d *testDoc) {
				d.set("nodes", singleNodeScene(d.addTriangle("lines", map[string]any{"mode": 1})))
			},
			want: ErrUnsupportedPrimitive,
		},
		{
			name: "accessor past its view",
			build: func(d *testDoc) {
				mesh := d.addTriangle("tri", nil)
				d.accessors[0]["count"] = 100
				d.set("nodes", singleNodeScene(mesh))
			},
			want: ErrAccessorOutOfRange,
		},
		{
			name: "required extension",
			build: func(d *testDoc) {
				d.set("extensionsRequired", []string{"KHR_draco_mesh_compression"})
				d.set("nodes", singleNodeScene(d.addTriangle("tri", nil)))
			},
			want: ErrUnsupportedExtension,
		},
		{
			name: "node cycle",
			build: func(d *testDoc) {
				mesh := d.addTriangle("tri", nil)
				d.set("nodes", []any{
					map[string]any{"mesh": mesh, "children": []int{1}},
					map[string]any{"children": []int{0}},
				})
				d.set("scenes", []any{map[string]any{"nodes": []int{0}}})
			},
			want: ErrInvalidReference,
		},
		{
			name: "dangling mesh",
			build: func(d *testDoc) {
				d.addTriangle("tri", nil)
				d.set("nodes", singleNodeScene(5))
			},
			want: ErrInvalidReference,
		},
		{
			name: "dangling material",
			build: func(d *testDoc) {
				d.set("nodes", singleNodeScene(d.addTriangle("tri", map[string]any{"material": 3})))
			},
			want: ErrInvalidReference,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := newTestContext(t)
			l := newTestLoader(t, ctx)
			live := ctx.Stats().LiveResources

			d := newTestDoc()
			tt.build(d)
			s, err := l.LoadReader("bad.gltf", bytes.NewReader(d.gltf(t)), false)
			assert.ErrorIs(t, err, tt.want)
			assert.Nil(t, s)
			assert.Equal(t, live, ctx.Stats().LiveResources)
		})
	}
}

func TestLoadReader_InvalidContainers(t *testing.T) {
	ctx := newTestContext(t)
	l := newTestLoader(t, ctx)

	_, err := l.LoadReader("junk.glb", bytes.NewReader([]byte("definitely not a glb file")), true)
	assert.ErrorIs(t, err, ErrInvalidGLB)

	d := newTestDoc()
	d.set("nodes", singleNodeScene(d.addTriangle("tri", nil)))
	doc := d.document("data:application/octet-stream,raw")
	data, err := json.Marshal(doc)
	require.NoError(t, err)
	_, err = l.LoadReader("uri.gltf", bytes.NewReader(data), false)
	assert.ErrorIs(t, err, ErrInvalidDataURI)
}

func TestLoad_FileWithExternalBuffer(t *testing.T) {
	ctx := newTestContext(t)
	l := newTestLoader(t, ctx)

	dir := t.TempDir()
	d := newTestDoc()
	d.set("nodes", singleNodeScene(d.addTriangle("tri", nil)))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scene.bin"), d.bin.Bytes(), 0o644))
	data, err := json.Marshal(d.document("scene.bin"))
	require.NoError(t, err)
	path := filepath.Join(dir, "scene.gltf")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	s, err := l.Load(path)
	require.NoError(t, err)
	defer s.Release()

	assert.Equal(t, "scene.gltf", s.Name())
	require.Len(t, s.Objects(), 1)

	mesh := s.Objects()[0].Mesh()
	s.Release()
	assert.True(t, mesh.Released())
}

func TestLoad_MissingAndUnsupportedFiles(t *testing.T) {
	ctx := newTestContext(t)
	l := newTestLoader(t, ctx)
	dir := t.TempDir()

	_, err := l.Load(filepath.Join(dir, "model.obj"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = l.Load(filepath.Join(dir, "missing.glb"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestListSceneFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.GLTF", "a.glb", "notes.txt", "c.bin"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "d.gltf"), 0o755))

	files, err := ListSceneFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.glb"), filepath.Join(dir, "b.GLTF")}, files)

	_, err = ListSceneFiles(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}
