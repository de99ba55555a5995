package models

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ftrvxmtrx/tga"
)

// Image is a flat color buffer used for diffuse textures and normal maps.
// Row 0 is the bottom row so that (u, v) texture coordinates map onto
// (x, y) without flipping.
type Image struct {
	Width  int
	Height int
	Pixels []Color // Row-major pixel data, bottom row first
}

// NewImage creates a black image with the given dimensions.
func NewImage(width, height int) *Image {
	return &Image{
		Width:  width,
		Height: height,
		Pixels: make([]Color, width*height),
	}
}

// NewSolidImage creates an image filled with c.
func NewSolidImage(width, height int, c Color) *Image {
	img := NewImage(width, height)
	for i := range img.Pixels {
		img.Pixels[i] = c
	}
	return img
}

// NewFlatNormalMap creates a 1x1 tangent-space normal map whose only texel
// selects the interpolated vertex normal unchanged.
func NewFlatNormalMap() *Image {
	return NewSolidImage(1, 1, ColorBlue)
}

// NewCheckerImage creates a procedural checkerboard image.
func NewCheckerImage(width, height, checkSize int, c1, c2 Color) *Image {
	img := NewImage(width, height)
	for y := range height {
		for x := range width {
			if (x/checkSize+y/checkSize)%2 == 0 {
				img.Set(x, y, c1)
			} else {
				img.Set(x, y, c2)
			}
		}
	}
	return img
}

// At returns the pixel at (x, y). There is no bounds checking; callers keep
// coordinates inside the image.
func (img *Image) At(x, y int) Color {
	return img.Pixels[x+y*img.Width]
}

// Set sets the pixel at (x, y) without bounds checking.
func (img *Image) Set(x, y int, c Color) {
	img.Pixels[x+y*img.Width] = c
}

// ImageFromImage converts a decoded image.Image (top row first) into an
// Image (bottom row first).
func ImageFromImage(src image.Image) *Image {
	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	img := NewImage(width, height)

	for y := range height {
		for x := range width {
			c := src.At(bounds.Min.X+x, bounds.Min.Y+y)
			img.Set(x, height-1-y, ColorFrom(c))
		}
	}
	return img
}

// LoadImage loads a texture, choosing the decoder from the file extension.
// TGA files go through DecodeTGA; PNG and JPEG use the standard decoders.
func LoadImage(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open image: %w", ErrIO, err)
	}
	defer f.Close()

	var img *Image
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".tga":
		img, err = DecodeTGA(f)
	case ".png":
		img, err = decodeRaster(f, formatPNG)
	case ".jpg", ".jpeg":
		img, err = decodeRaster(f, formatJPEG)
	default:
		err = fmt.Errorf("%w: image extension %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return img, nil
}

// Encoded image formats other than TGA.
const (
	formatPNG  = "png"
	formatJPEG = "jpeg"
)

// decodeRaster decodes PNG or JPEG data with the named decoder. The tga
// package registers itself with image.Decode under an empty magic string,
// which matches any input, so the format is never sniffed by image.Decode.
func decodeRaster(r io.Reader, format string) (*Image, error) {
	var (
		decoded image.Image
		err     error
	)
	switch format {
	case formatPNG:
		decoded, err = png.Decode(r)
	case formatJPEG:
		decoded, err = jpeg.Decode(r)
	default:
		return nil, fmt.Errorf("%w: image format %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: decode %s: %w", ErrParse, format, err)
	}
	return ImageFromImage(decoded), nil
}

// sniffFormat picks a decoder from a MIME type, falling back to the PNG and
// JPEG signatures when the type is empty or unknown.
func sniffFormat(mimeType string, data []byte) string {
	switch mimeType {
	case "image/png":
		return formatPNG
	case "image/jpeg":
		return formatJPEG
	}
	switch {
	case bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")):
		return formatPNG
	case bytes.HasPrefix(data, []byte{0xFF, 0xD8}):
		return formatJPEG
	}
	return ""
}

// TGA header layout (all little-endian).
const (
	tgaHeaderSize   = 18
	tgaIDLength     = 0
	tgaColorMapType = 1
	tgaImageType    = 2
	tgaWidth        = 12
	tgaHeight       = 14
	tgaPixelDepth   = 16

	tgaTrueColor    = 2
	tgaTrueColorRLE = 10

	// The decoder looks for a TGA 2.0 footer this far from the end of the
	// data. Zeros never carry its signature.
	tgaFooterSize = 26
)

// DecodeTGA decodes a truecolor TGA image, raw or run-length encoded.
//
// The header is checked first so that only the two truecolor variants
// without a color map are accepted; anything else is ErrUnsupportedFormat.
// A header that is too short or pixel data that ends early is ErrParse.
func DecodeTGA(r io.Reader) (*Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: read tga: %w", ErrIO, err)
	}
	if len(data) <= tgaHeaderSize {
		return nil, fmt.Errorf("%w: tga header truncated (%d bytes)", ErrParse, len(data))
	}

	if data[tgaColorMapType] != 0 {
		return nil, fmt.Errorf("%w: tga color map type %d", ErrUnsupportedFormat, data[tgaColorMapType])
	}
	imageType := data[tgaImageType]
	switch imageType {
	case tgaTrueColor, tgaTrueColorRLE:
	default:
		return nil, fmt.Errorf("%w: tga image type %d", ErrUnsupportedFormat, imageType)
	}

	width := int(binary.LittleEndian.Uint16(data[tgaWidth:]))
	height := int(binary.LittleEndian.Uint16(data[tgaHeight:]))
	pixelSize := (int(data[tgaPixelDepth]) + 7) / 8
	if pixelSize == 0 {
		return nil, fmt.Errorf("%w: tga pixel depth 0", ErrParse)
	}

	// Padding must not stand in for missing pixels, so the payload is
	// measured before the footer space is added
	start := tgaHeaderSize + int(data[tgaIDLength])
	if !tgaPayloadComplete(data, start, width*height, pixelSize, imageType == tgaTrueColorRLE) {
		return nil, fmt.Errorf("%w: tga pixel data truncated", ErrParse)
	}
	padded := append(data[:len(data):len(data)], make([]byte, tgaFooterSize)...)

	decoded, err := tga.Decode(bytes.NewReader(padded))
	if err != nil {
		return nil, fmt.Errorf("%w: decode tga: %w", ErrParse, err)
	}

	img := ImageFromImage(decoded)
	if img.Width != width || img.Height != height {
		return nil, fmt.Errorf("%w: tga decoded as %dx%d, header says %dx%d", ErrParse, img.Width, img.Height, width, height)
	}
	return img, nil
}

// tgaPayloadComplete reports whether data holds count pixels from start. RLE
// packets start with a byte whose top bit selects a repeated pixel and whose
// low seven bits are the pixel count minus one.
func tgaPayloadComplete(data []byte, start, count, pixelSize int, rle bool) bool {
	if !rle {
		return len(data)-start >= count*pixelSize
	}

	pos := start
	for count > 0 {
		if pos >= len(data) {
			return false
		}
		packet := data[pos]
		n := int(packet&0x7F) + 1
		pos++
		if packet&0x80 != 0 {
			pos += pixelSize
		} else {
			pos += n * pixelSize
		}
		count -= n
	}
	return pos <= len(data)
}
