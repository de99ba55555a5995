package render

import (
	"github.com/taigrr/termshade/pkg/math3d"
	"github.com/taigrr/termshade/pkg/models"
)

// texelCoords maps a texture coordinate to a pixel of img by truncating
// u*(w-1) and v*(h-1). Results are clamped to the image so coordinates that
// drift slightly outside [0, 1] at triangle edges stay addressable.
func texelCoords(img *models.Image, uv math3d.Vec2) (x, y int) {
	x = clampInt(int(uv.X*float64(img.Width-1)), 0, img.Width-1)
	y = clampInt(int(uv.Y*float64(img.Height-1)), 0, img.Height-1)
	return x, y
}

// Sample returns the texel of img at uv without filtering.
func Sample(img *models.Image, uv math3d.Vec2) Color {
	x, y := texelCoords(img, uv)
	return img.At(x, y)
}

// channelWeight turns a normal map channel into the weight of its basis
// vector. Cubing sharpens the contrast of the map.
func channelWeight(v uint8) float64 {
	f := float64(v) / 255
	return f * f * f
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
