package loader

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// gltfParserImpl is the implementation of the gltfParser interface.
type gltfParserImpl struct {
	baseDir        string
	document       *gltfDocument
	glbBinaryChunk []byte
}

// gltfParser loads a glTF/GLB document with its buffers and reads typed accessor data.
// Every read is bounds-checked against the buffer it refers to.
type gltfParser interface {
	// Parse loads and parses a glTF/GLB file from the given path.
	// GLB is detected by extension or by the magic number.
	//
	// Parameters:
	//   - path: path to the glTF or GLB file
	//
	// Returns:
	//   - error: error if reading, parsing or buffer loading fails
	Parse(path string) error

	// ParseReader parses a glTF document from a reader. External buffer and image URIs
	// resolve against baseDir.
	//
	// Parameters:
	//   - r: reader containing glTF JSON or GLB data
	//   - isGLB: true if the data is in GLB format
	//   - baseDir: directory for relative URIs, may be empty
	//
	// Returns:
	//   - error: error if parsing fails
	ParseReader(r io.Reader, isGLB bool, baseDir string) error

	// Document returns the parsed document, or nil before a successful parse.
	Document() *gltfDocument

	// BaseDir returns the directory relative URIs resolve against.
	BaseDir() string

	ReadAccessorData(accessorIndex int) ([]byte, error)
	ReadVec2Accessor(accessorIndex int) ([][2]float32, error)
	ReadVec3Accessor(accessorIndex int) ([][3]float32, error)
	ReadVec4Accessor(accessorIndex int) ([][4]float32, error)

	// ReadIndicesAccessor reads an accessor as index data.
	// Handles UNSIGNED_BYTE, UNSIGNED_SHORT, and UNSIGNED_INT component types.
	//
	// Parameters:
	//   - accessorIndex: the index of the accessor
	//
	// Returns:
	//   - []uint32: the index data (converted to uint32)
	//   - error: error if reading fails
	ReadIndicesAccessor(accessorIndex int) ([]uint32, error)

	// ReadBufferView returns a copy of the raw bytes of a buffer view, used for embedded images.
	//
	// Parameters:
	//   - bufferViewIndex: the index of the buffer view
	//
	// Returns:
	//   - []byte: the bytes
	//   - error: ErrAccessorOutOfRange if the view exceeds its buffer
	ReadBufferView(bufferViewIndex int) ([]byte, error)
}

var _ gltfParser = &gltfParserImpl{}

// newGLTFParser creates a new glTF parser instance.
//
// Returns:
//   - gltfParser: a new parser instance
func newGLTFParser() gltfParser {
	return &gltfParserImpl{}
}

func (p *gltfParserImpl) Document() *gltfDocument {
	return p.document
}

func (p *gltfParserImpl) BaseDir() string {
	return p.baseDir
}

func (p *gltfParserImpl) Parse(path string) error {
	p.baseDir = filepath.Dir(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".glb" || (len(data) >= 4 && binary.LittleEndian.Uint32(data[:4]) == gltfGLBMagic) {
		return p.parseGLB(data)
	}

	return p.parseGLTF(data)
}

func (p *gltfParserImpl) ParseReader(r io.Reader, isGLB bool, baseDir string) error {
	p.baseDir = baseDir

	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read data: %w", err)
	}

	if isGLB {
		return p.parseGLB(data)
	}
	return p.parseGLTF(data)
}

// parseGLTF parses a glTF JSON file.
func (p *gltfParserImpl) parseGLTF(data []byte) error {
	return p.parseDocument(data)
}

// parseGLB parses a GLB binary file.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#glb-file-format-specification
func (p *gltfParserImpl) parseGLB(data []byte) error {
	if len(data) < 12 {
		return fmt.Errorf("%w: file too small (%d bytes)", ErrInvalidGLB, len(data))
	}

	r := bytes.NewReader(data)

	var header gltfGLBHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return fmt.Errorf("%w: header: %v", ErrInvalidGLB, err)
	}

	if header.Magic != gltfGLBMagic {
		return fmt.Errorf("%w: bad magic 0x%08x", ErrInvalidGLB, header.Magic)
	}
	if header.Version != gltfGLBVersion {
		return fmt.Errorf("%w: container version %d", ErrInvalidGLB, header.Version)
	}

	var jsonData []byte
	var binData []byte

	for {
		var chunkHeader gltfGLBChunkHeader
		if err := binary.Read(r, binary.LittleEndian, &chunkHeader); err != nil {
			if err == io.EOF {
				break
			}
			return fmt.Errorf("%w: chunk header: %v", ErrInvalidGLB, err)
		}

		if int64(chunkHeader.ChunkLength) > int64(r.Len()) {
			return fmt.Errorf("%w: chunk of %d bytes exceeds the file", ErrInvalidGLB, chunkHeader.ChunkLength)
		}
		chunkData := make([]byte, chunkHeader.ChunkLength)
		if _, err := io.ReadFull(r, chunkData); err != nil {
			return fmt.Errorf("%w: chunk data: %v", ErrInvalidGLB, err)
		}

		switch chunkHeader.ChunkType {
		case gltfGLBChunkJSON:
			jsonData = chunkData
		case gltfGLBChunkBIN:
			binData = chunkData
		}
	}

	if jsonData == nil {
		return ErrMissingJSONChunk
	}

	p.glbBinaryChunk = binData
	return p.parseDocument(jsonData)
}

// parseDocument decodes the JSON, checks the version and required extensions, and loads the buffers.
func (p *gltfParserImpl) parseDocument(jsonData []byte) error {
	var doc gltfDocument
	if err := json.Unmarshal(jsonData, &doc); err != nil {
		return fmt.Errorf("failed to parse glTF JSON: %w", err)
	}

	if !strings.HasPrefix(doc.Asset.Version, "2.") {
		return fmt.Errorf("%w: got %q", ErrInvalidGLTFVersion, doc.Asset.Version)
	}
	for _, ext := range doc.ExtensionsRequired {
		if !supportedExtensions[ext] {
			return fmt.Errorf("%w: %s", ErrUnsupportedExtension, ext)
		}
	}

	if err := p.loadBuffers(&doc); err != nil {
		return fmt.Errorf("failed to load buffers: %w", err)
	}

	p.document = &doc
	return nil
}

// loadBuffers loads all buffer data (from URIs, embedded data, or GLB binary chunk).
func (p *gltfParserImpl) loadBuffers(doc *gltfDocument) error {
	for i := range doc.Buffers {
		buf := &doc.Buffers[i]

		if buf.URI == "" {
			if i == 0 && p.glbBinaryChunk != nil {
				buf.Data = p.glbBinaryChunk
				if len(buf.Data) < buf.ByteLength {
					return fmt.Errorf("buffer %d: %w", i, ErrBufferSizeMismatch)
				}
				continue
			}
			return fmt.Errorf("buffer %d has no URI and no GLB binary chunk: %w", i, ErrBufferSizeMismatch)
		}

		data, err := p.loadBufferURI(buf.URI)
		if err != nil {
			return fmt.Errorf("buffer %d: %w", i, err)
		}
		buf.Data = data

		if len(buf.Data) < buf.ByteLength {
			return fmt.Errorf("buffer %d: %w", i, ErrBufferSizeMismatch)
		}
	}

	return nil
}

// loadBufferURI loads buffer data from a URI (data: URI or file path).
func (p *gltfParserImpl) loadBufferURI(uri string) ([]byte, error) {
	if strings.HasPrefix(uri, "data:") {
		data, _, err := gltfDecodeDataURI(uri)
		return data, err
	}

	data, err := os.ReadFile(gltfResolveURI(p.baseDir, uri))
	if err != nil {
		return nil, fmt.Errorf("failed to load buffer file %q: %w", uri, err)
	}

	return data, nil
}

// gltfResolveURI joins a relative buffer or image URI to the document's directory.
func gltfResolveURI(baseDir, uri string) string {
	if filepath.IsAbs(uri) {
		return uri
	}
	return filepath.Join(baseDir, filepath.FromSlash(uri))
}

// gltfDecodeDataURI decodes a base64 data URI into raw bytes and extracts the MIME type.
// Format: data:[<mediatype>][;base64],<data>
func gltfDecodeDataURI(uri string) ([]byte, string, error) {
	if !strings.HasPrefix(uri, "data:") {
		return nil, "", fmt.Errorf("%w: not a data URI", ErrInvalidDataURI)
	}

	header, encoded, ok := strings.Cut(uri[len("data:"):], ",")
	if !ok {
		return nil, "", fmt.Errorf("%w: no comma found", ErrInvalidDataURI)
	}

	mimeType, isBase64 := strings.CutSuffix(header, ";base64")
	if !isBase64 {
		return nil, "", fmt.Errorf("%w: unsupported encoding %q", ErrInvalidDataURI, header)
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrInvalidDataURI, err)
	}

	return data, mimeType, nil
}

// --- Accessor Data Reading ---

func (p *gltfParserImpl) accessor(accessorIndex int) (*gltfAccessor, error) {
	if p.document == nil {
		return nil, fmt.Errorf("no document loaded")
	}
	if accessorIndex < 0 || accessorIndex >= len(p.document.Accessors) {
		return nil, fmt.Errorf("%w: accessor %d of %d", ErrInvalidReference, accessorIndex, len(p.document.Accessors))
	}
	return &p.document.Accessors[accessorIndex], nil
}

func (p *gltfParserImpl) ReadAccessorData(accessorIndex int) ([]byte, error) {
	acc, err := p.accessor(accessorIndex)
	if err != nil {
		return nil, err
	}

	if acc.Sparse != nil {
		return nil, fmt.Errorf("%w: accessor %d is sparse", ErrUnsupportedAccessor, accessorIndex)
	}

	componentSize := gltfComponentTypeSize(acc.ComponentType)
	componentCount := gltfAccessorTypeComponentCount(acc.Type)
	if componentSize == 0 || componentCount == 0 {
		return nil, fmt.Errorf("%w: accessor %d has type %s/%d", ErrUnsupportedAccessor, accessorIndex, acc.Type, acc.ComponentType)
	}
	if acc.Count < 0 {
		return nil, fmt.Errorf("%w: accessor %d has count %d", ErrAccessorOutOfRange, accessorIndex, acc.Count)
	}
	elementSize := componentSize * componentCount

	result := make([]byte, acc.Count*elementSize)

	// An accessor without a buffer view reads as zeros.
	if acc.BufferView == nil {
		return result, nil
	}

	bv, view, err := p.bufferView(*acc.BufferView)
	if err != nil {
		return nil, err
	}

	stride := elementSize
	if bv.ByteStride != nil && *bv.ByteStride > 0 {
		stride = *bv.ByteStride
	}

	if acc.Count > 0 {
		last := acc.ByteOffset + (acc.Count-1)*stride + elementSize
		if acc.ByteOffset < 0 || last > len(view) {
			return nil, fmt.Errorf("%w: accessor %d needs %d bytes of a %d byte view", ErrAccessorOutOfRange, accessorIndex, last, len(view))
		}
	}

	for i := 0; i < acc.Count; i++ {
		srcOffset := acc.ByteOffset + i*stride
		dstOffset := i * elementSize
		copy(result[dstOffset:dstOffset+elementSize], view[srcOffset:srcOffset+elementSize])
	}

	return result, nil
}

// bufferView returns a view's definition and its slice of the buffer, bounds-checked.
func (p *gltfParserImpl) bufferView(bufferViewIndex int) (*gltfBufferView, []byte, error) {
	doc := p.document
	if bufferViewIndex < 0 || bufferViewIndex >= len(doc.BufferViews) {
		return nil, nil, fmt.Errorf("%w: bufferView %d of %d", ErrInvalidReference, bufferViewIndex, len(doc.BufferViews))
	}

	bv := &doc.BufferViews[bufferViewIndex]
	if bv.Buffer < 0 || bv.Buffer >= len(doc.Buffers) {
		return nil, nil, fmt.Errorf("%w: buffer %d of %d", ErrInvalidReference, bv.Buffer, len(doc.Buffers))
	}

	buf := &doc.Buffers[bv.Buffer]
	start := bv.ByteOffset
	end := start + bv.ByteLength
	if start < 0 || bv.ByteLength < 0 || end > len(buf.Data) {
		return nil, nil, fmt.Errorf("%w: bufferView %d spans [%d, %d) of a %d byte buffer", ErrAccessorOutOfRange, bufferViewIndex, start, end, len(buf.Data))
	}
	return bv, buf.Data[start:end], nil
}

func (p *gltfParserImpl) ReadBufferView(bufferViewIndex int) ([]byte, error) {
	if p.document == nil {
		return nil, fmt.Errorf("no document loaded")
	}
	_, view, err := p.bufferView(bufferViewIndex)
	if err != nil {
		return nil, err
	}
	data := make([]byte, len(view))
	copy(data, view)
	return data, nil
}

// readFloatAccessor reads an accessor of FLOAT components with the given element type.
func readFloatAccessor[T any](p *gltfParserImpl, accessorIndex int, accessorType string) ([]T, error) {
	acc, err := p.accessor(accessorIndex)
	if err != nil {
		return nil, err
	}
	if acc.Type != accessorType || acc.ComponentType != gltfComponentTypeFloat {
		return nil, fmt.Errorf("%w: accessor %d is not %s FLOAT: type=%s, componentType=%d",
			ErrUnsupportedAccessor, accessorIndex, accessorType, acc.Type, acc.ComponentType)
	}

	data, err := p.ReadAccessorData(accessorIndex)
	if err != nil {
		return nil, err
	}

	result := make([]T, acc.Count)
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, result); err != nil {
		return nil, err
	}
	return result, nil
}

func (p *gltfParserImpl) ReadVec2Accessor(accessorIndex int) ([][2]float32, error) {
	return readFloatAccessor[[2]float32](p, accessorIndex, gltfAccessorTypeVec2)
}

func (p *gltfParserImpl) ReadVec3Accessor(accessorIndex int) ([][3]float32, error) {
	return readFloatAccessor[[3]float32](p, accessorIndex, gltfAccessorTypeVec3)
}

func (p *gltfParserImpl) ReadVec4Accessor(accessorIndex int) ([][4]float32, error) {
	return readFloatAccessor[[4]float32](p, accessorIndex, gltfAccessorTypeVec4)
}

func (p *gltfParserImpl) ReadIndicesAccessor(accessorIndex int) ([]uint32, error) {
	acc, err := p.accessor(accessorIndex)
	if err != nil {
		return nil, err
	}
	if acc.Type != gltfAccessorTypeScalar {
		return nil, fmt.Errorf("%w: index accessor is not SCALAR: type=%s", ErrUnsupportedAccessor, acc.Type)
	}

	data, err := p.ReadAccessorData(accessorIndex)
	if err != nil {
		return nil, err
	}

	result := make([]uint32, acc.Count)
	switch acc.ComponentType {
	case gltfComponentTypeUnsignedByte:
		for i := range result {
			result[i] = uint32(data[i])
		}
	case gltfComponentTypeUnsignedShort:
		for i := range result {
			result[i] = uint32(binary.LittleEndian.Uint16(data[i*2:]))
		}
	case gltfComponentTypeUnsignedInt:
		for i := range result {
			result[i] = binary.LittleEndian.Uint32(data[i*4:])
		}
	default:
		return nil, fmt.Errorf("%w: index component type %d", ErrUnsupportedAccessor, acc.ComponentType)
	}

	return result, nil
}

// --- Helper Functions ---

// gltfComponentTypeSize returns the byte size of a component type.
func gltfComponentTypeSize(componentType int) int {
	switch componentType {
	case gltfComponentTypeByte, gltfComponentTypeUnsignedByte:
		return 1
	case gltfComponentTypeShort, gltfComponentTypeUnsignedShort:
		return 2
	case gltfComponentTypeUnsignedInt, gltfComponentTypeFloat:
		return 4
	default:
		return 0
	}
}

// gltfAccessorTypeComponentCount returns the number of components for an accessor type.
func gltfAccessorTypeComponentCount(accessorType string) int {
	switch accessorType {
	case gltfAccessorTypeScalar:
		return 1
	case gltfAccessorTypeVec2:
		return 2
	case gltfAccessorTypeVec3:
		return 3
	case gltfAccessorTypeVec4:
		return 4
	case gltfAccessorTypeMat2:
		return 4
	case gltfAccessorTypeMat3:
		return 9
	case gltfAccessorTypeMat4:
		return 16
	default:
		return 0
	}
}
