// package common contains the small math, culling and asset types shared by every engine package.
// They are plain structs and functions rather than interface-wrapped types.
package common

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ImportedTexture represents texture data extracted from a scene file.
// For embedded textures (GLB buffer views, data URIs), the Data field contains raw image bytes.
// For external textures, the Path field contains the file path.
type ImportedTexture struct {
	// Name is an identifier for this texture (e.g., "albedo", "normal").
	Name string

	// Path is the file path for external textures (empty for embedded).
	Path string

	// Data contains raw encoded image bytes for embedded textures.
	Data []byte

	// MimeType indicates the image format (e.g., "image/png", "image/webp").
	MimeType string

	// SRGB is true for color data (albedo) and false for linear data (normal maps).
	SRGB bool
}

// DecodedImage is RGBA8 pixel data ready for GPU upload.
type DecodedImage struct {
	// Pixels holds 4 bytes per pixel in row-major order.
	Pixels []byte
	Width  uint32
	Height uint32
}

// Decode decodes the texture to raw RGBA pixel data.
// Uses either embedded Data bytes or loads from Path on disk.
// Supports PNG, JPEG, BMP, TIFF and WebP.
//
// Returns:
//   - DecodedImage: the RGBA8 pixels and dimensions
//   - error: error if decoding fails
func (t *ImportedTexture) Decode() (DecodedImage, error) {
	if t == nil {
		return DecodedImage{}, fmt.Errorf("texture is nil")
	}

	var img image.Image
	var err error

	switch {
	case len(t.Data) > 0:
		img, _, err = image.Decode(bytes.NewReader(t.Data))
		if err != nil {
			return DecodedImage{}, fmt.Errorf("failed to decode embedded image %q: %w", t.Name, err)
		}
	case t.Path != "":
		file, fileErr := os.Open(t.Path)
		if fileErr != nil {
			return DecodedImage{}, fmt.Errorf("failed to open texture file %s: %w", t.Path, fileErr)
		}
		defer file.Close()

		img, _, err = image.Decode(file)
		if err != nil {
			return DecodedImage{}, fmt.Errorf("failed to decode texture file %s: %w", t.Path, err)
		}
	default:
		return DecodedImage{}, fmt.Errorf("texture %q has neither data nor path", t.Name)
	}

	bounds := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)

	return DecodedImage{
		Pixels: rgba.Pix,
		Width:  uint32(bounds.Dx()),
		Height: uint32(bounds.Dy()),
	}, nil
}

// SolidImage returns a 1x1 image of the given color, used as a placeholder texture.
//
// Parameters:
//   - r, g, b, a: the pixel color
//
// Returns:
//   - DecodedImage: a single pixel image
func SolidImage(r, g, b, a uint8) DecodedImage {
	return DecodedImage{Pixels: []byte{r, g, b, a}, Width: 1, Height: 1}
}
