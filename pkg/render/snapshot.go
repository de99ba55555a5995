package render

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"golang.org/x/image/draw"

	"github.com/taigrr/termshade/pkg/models"
)

// Upscale enlarges img by an integer factor with nearest-neighbour sampling
// so every plane pixel stays a crisp square. Factors below 2 return img.
func Upscale(img image.Image, scale int) image.Image {
	if scale < 2 {
		return img
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx()*scale, b.Dy()*scale))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// EncodeSnapshot writes img to w in the format named by ext (".png" or
// ".webp").
func EncodeSnapshot(w io.Writer, ext string, img image.Image) error {
	var err error
	switch strings.ToLower(ext) {
	case ".png":
		err = png.Encode(w, img)
	case ".webp":
		err = nativewebp.Encode(w, img, nil)
	default:
		return fmt.Errorf("%w: snapshot extension %q", models.ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return fmt.Errorf("%w: encode snapshot: %w", models.ErrIO, err)
	}
	return nil
}

// SaveSnapshot upscales img and saves it to path, picking the encoder from
// the file extension.
func SaveSnapshot(path string, img image.Image, scale int) error {
	ext := filepath.Ext(path)
	switch strings.ToLower(ext) {
	case ".png", ".webp":
	default:
		return fmt.Errorf("%w: snapshot extension %q", models.ErrUnsupportedFormat, ext)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: create snapshot: %w", models.ErrIO, err)
	}

	if err := EncodeSnapshot(f, ext, Upscale(img, scale)); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: close snapshot: %w", models.ErrIO, err)
	}
	return nil
}
