// Package render implements the software rasterizer for termshade and the
// terminal compositor that puts its frames on screen.
package render

import (
	"image"
	"math"

	"github.com/taigrr/termshade/pkg/models"
)

// Color is an alias for models.Color for convenience.
type Color = models.Color

// Framebuffer is a 2D array of pixels that can be rendered to the terminal.
// We use double vertical resolution by using half-block characters (▄), so
// Height is twice the number of terminal rows.
type Framebuffer struct {
	Width  int     // Width in "pixels" (same as terminal columns)
	Height int     // Height in "pixels" (2x terminal rows due to half-blocks)
	Pixels []Color // Row-major pixel data, top row first
}

// NewFramebuffer creates a new framebuffer with the given dimensions.
func NewFramebuffer(width, height int) *Framebuffer {
	return &Framebuffer{
		Width:  width,
		Height: height,
		Pixels: make([]Color, width*height),
	}
}

// Clear fills the framebuffer with a solid color.
func (fb *Framebuffer) Clear(c Color) {
	for i := range fb.Pixels {
		fb.Pixels[i] = c
	}
}

// SetPixel sets a pixel at (x, y) to the given color.
// Bounds checking is performed.
func (fb *Framebuffer) SetPixel(x, y int, c Color) {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return
	}
	fb.Pixels[y*fb.Width+x] = c
}

// GetPixel returns the color at (x, y).
// Returns black if out of bounds.
func (fb *Framebuffer) GetPixel(x, y int) Color {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return Color{}
	}
	return fb.Pixels[y*fb.Width+x]
}

// ToImage converts the framebuffer to a standard Go image.RGBA.
func (fb *Framebuffer) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	for y := 0; y < fb.Height; y++ {
		for x := 0; x < fb.Width; x++ {
			c := fb.Pixels[y*fb.Width+x]
			i := img.PixOffset(x, y)
			img.Pix[i+0] = c.R
			img.Pix[i+1] = c.G
			img.Pix[i+2] = c.B
			img.Pix[i+3] = 255
		}
	}
	return img
}

// DepthBuffer stores one depth per plane pixel. Larger values are nearer the
// viewer; -Inf marks a pixel nothing has been drawn to yet.
type DepthBuffer struct {
	Width  int
	Height int
	Values []float64
}

// NewDepthBuffer creates a depth buffer with every entry at -Inf.
func NewDepthBuffer(width, height int) *DepthBuffer {
	d := &DepthBuffer{
		Width:  width,
		Height: height,
		Values: make([]float64, width*height),
	}
	d.Reset()
	return d
}

// Reset sets every entry back to -Inf.
func (d *DepthBuffer) Reset() {
	// Use copy-doubling for faster clearing
	n := len(d.Values)
	if n == 0 {
		return
	}
	d.Values[0] = math.Inf(-1)
	for i := 1; i < n; i *= 2 {
		copy(d.Values[i:], d.Values[:i])
	}
}

// At returns the depth at (x, y), or -Inf outside the buffer.
func (d *DepthBuffer) At(x, y int) float64 {
	if x < 0 || x >= d.Width || y < 0 || y >= d.Height {
		return math.Inf(-1)
	}
	return d.Values[y*d.Width+x]
}

// TestAndSet stores z at (x, y) if it is strictly nearer than the current
// value and reports whether it did. Ties keep the existing depth.
func (d *DepthBuffer) TestAndSet(x, y int, z float64) bool {
	i := y*d.Width + x
	if z <= d.Values[i] {
		return false
	}
	d.Values[i] = z
	return true
}
