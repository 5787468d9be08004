package loader

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-deferred/common"
	"github.com/go-gl/mathgl/mgl32"
)

// gltfTextureRef identifies one GPU texture to create: a glTF texture in one color space.
// A texture used both as albedo and as a normal map yields two refs.
type gltfTextureRef struct {
	Index int
	SRGB  bool
}

// gltfMaterialExtractorImpl is the implementation of the gltfMaterialExtractor interface.
type gltfMaterialExtractorImpl struct {
	parser gltfParser
}

// gltfMaterialExtractor resolves glTF materials into base colors and texture references,
// and loads the referenced images.
type gltfMaterialExtractor interface {
	// ExtractMaterials resolves every material of the document. Texture fields of the result
	// index into the returned refs, which list each texture once per color space.
	//
	// Returns:
	//   - []importedMaterial: one entry per document material
	//   - []gltfTextureRef: the textures the materials use
	//   - error: ErrInvalidReference for a texture index out of range
	ExtractMaterials() ([]importedMaterial, []gltfTextureRef, error)

	// LoadTexture reads and decodes the image of a texture reference. It only reads the parsed
	// document, so several textures may be loaded concurrently.
	//
	// Parameters:
	//   - ref: the texture to load
	//
	// Returns:
	//   - importedTexture: the decoded RGBA8 image
	//   - error: error if the image cannot be read or decoded
	LoadTexture(ref gltfTextureRef) (importedTexture, error)
}

var _ gltfMaterialExtractor = &gltfMaterialExtractorImpl{}

// newGLTFMaterialExtractor creates a new material extractor for a parsed document.
//
// Parameters:
//   - parser: the parser containing a loaded document
//
// Returns:
//   - gltfMaterialExtractor: the material extractor
func newGLTFMaterialExtractor(parser gltfParser) gltfMaterialExtractor {
	return &gltfMaterialExtractorImpl{parser: parser}
}

func (e *gltfMaterialExtractorImpl) ExtractMaterials() ([]importedMaterial, []gltfTextureRef, error) {
	doc := e.parser.Document()

	var refs []gltfTextureRef
	refIndex := make(map[gltfTextureRef]int)
	resolve := func(info *gltfTextureInfo, srgb bool) (int, error) {
		if info == nil {
			return noIndex, nil
		}
		if info.Index < 0 || info.Index >= len(doc.Textures) {
			return noIndex, fmt.Errorf("%w: texture %d of %d", ErrInvalidReference, info.Index, len(doc.Textures))
		}
		// A texture without an image source leaves the material on its default texture.
		if doc.Textures[info.Index].Source == nil {
			return noIndex, nil
		}
		ref := gltfTextureRef{Index: info.Index, SRGB: srgb}
		if i, ok := refIndex[ref]; ok {
			return i, nil
		}
		refIndex[ref] = len(refs)
		refs = append(refs, ref)
		return len(refs) - 1, nil
	}

	materials := make([]importedMaterial, len(doc.Materials))
	for i := range doc.Materials {
		mat := &doc.Materials[i]
		result := importedMaterial{
			Name:      mat.Name,
			BaseColor: mgl32.Vec4{1, 1, 1, 1},
			Albedo:    noIndex,
			NormalMap: noIndex,
		}
		if result.Name == "" {
			result.Name = fmt.Sprintf("material_%d", i)
		}

		var err error
		if pbr := mat.PbrMetallicRoughness; pbr != nil {
			if pbr.BaseColorFactor != nil {
				result.BaseColor = *pbr.BaseColorFactor
			}
			if result.Albedo, err = resolve(pbr.BaseColorTexture, true); err != nil {
				return nil, nil, fmt.Errorf("material %q: base color texture: %w", result.Name, err)
			}
		}
		if mat.NormalTexture != nil {
			if result.NormalMap, err = resolve(&mat.NormalTexture.gltfTextureInfo, false); err != nil {
				return nil, nil, fmt.Errorf("material %q: normal texture: %w", result.Name, err)
			}
		}
		materials[i] = result
	}

	return materials, refs, nil
}

func (e *gltfMaterialExtractorImpl) LoadTexture(ref gltfTextureRef) (importedTexture, error) {
	doc := e.parser.Document()
	tex := &doc.Textures[ref.Index]

	imageIndex := *tex.Source
	if imageIndex < 0 || imageIndex >= len(doc.Images) {
		return importedTexture{}, fmt.Errorf("%w: image %d of %d", ErrInvalidReference, imageIndex, len(doc.Images))
	}
	img := &doc.Images[imageIndex]

	source := &common.ImportedTexture{
		Name:     common.Coalesce(tex.Name, img.Name, fmt.Sprintf("texture_%d", ref.Index)),
		MimeType: img.MimeType,
		SRGB:     ref.SRGB,
	}

	switch {
	// Image embedded in a buffer view (common in GLB)
	case img.BufferView != nil:
		data, err := e.parser.ReadBufferView(*img.BufferView)
		if err != nil {
			return importedTexture{}, fmt.Errorf("failed to read image buffer view: %w", err)
		}
		source.Data = data

	case strings.HasPrefix(img.URI, "data:"):
		data, mimeType, err := gltfDecodeDataURI(img.URI)
		if err != nil {
			return importedTexture{}, fmt.Errorf("failed to decode image data URI: %w", err)
		}
		source.Data = data
		if source.MimeType == "" {
			source.MimeType = mimeType
		}

	case img.URI != "":
		source.Path = gltfResolveURI(e.parser.BaseDir(), img.URI)

	default:
		return importedTexture{}, fmt.Errorf("%w: image %d has neither a URI nor a buffer view", ErrInvalidReference, imageIndex)
	}

	decoded, err := source.Decode()
	if err != nil {
		return importedTexture{}, err
	}

	name := source.Name
	if !ref.SRGB {
		name += "_linear"
	}
	return importedTexture{Name: name, Image: decoded, SRGB: ref.SRGB}, nil
}
