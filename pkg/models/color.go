package models

import "image/color"

// Color is an opaque 24-bit RGB color.
type Color struct {
	R, G, B uint8
}

// Colors for convenience
var (
	ColorWhite   = Color{255, 255, 255}
	ColorGray    = Color{127, 127, 127}
	ColorBlack   = Color{0, 0, 0}
	ColorRed     = Color{255, 0, 0}
	ColorGreen   = Color{0, 255, 0}
	ColorBlue    = Color{0, 0, 255}
	ColorYellow  = Color{255, 255, 0}
	ColorMagenta = Color{255, 0, 255}
	ColorCyan    = Color{0, 255, 255}
)

// RGB creates a color from RGB values.
func RGB(r, g, b uint8) Color {
	return Color{r, g, b}
}

// Scale multiplies every channel by f, clamping to [0, 255] before
// truncating. This is the only arithmetic shading needs.
func (c Color) Scale(f float64) Color {
	return Color{
		R: clampChannel(float64(c.R) * f),
		G: clampChannel(float64(c.G) * f),
		B: clampChannel(float64(c.B) * f),
	}
}

// RGBA implements color.Color. The color is always fully opaque.
func (c Color) RGBA() (r, g, b, a uint32) {
	return color.RGBA{c.R, c.G, c.B, 255}.RGBA()
}

// ColorFrom converts any color.Color to Color, dropping alpha.
func ColorFrom(c color.Color) Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return Color{n.R, n.G, n.B}
}

func clampChannel(v float64) uint8 {
	switch {
	case v > 255:
		return 255
	case v > 0:
		return uint8(v)
	default:
		// Also catches NaN
		return 0
	}
}
