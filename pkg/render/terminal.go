package render

import (
	"fmt"
	"image"
	"io"
	"os"

	"github.com/charmbracelet/x/ansi"
	"github.com/charmbracelet/x/term"

	"github.com/taigrr/termshade/pkg/models"
)

// Each cell is a background color, a foreground color and a lower half
// block. The background shows the upper (even) pixel row and the glyph
// itself paints the lower (odd) row in the foreground color.
const (
	cellColors = "\x1b[48;2;000;000;000m\x1b[38;2;000;000;000m"
	cellGlyph  = "\xE2\x96\x84" // ▄

	cellLen     = len(cellColors) + len(cellGlyph)
	colorSeqLen = len(cellColors) / 2
	channelOff  = len("\x1b[48;2;") // First digit of the red channel
	channelStep = len("000;")
)

// SizeFunc reports the terminal size in character cells.
type SizeFunc func() (cols, rows int, err error)

// TerminalSize returns a SizeFunc that asks the terminal behind f for its
// window size.
func TerminalSize(f *os.File) SizeFunc {
	return func() (int, int, error) {
		cols, rows, err := term.GetSize(f.Fd())
		if err != nil {
			return 0, 0, fmt.Errorf("%w: terminal size: %w", models.ErrIO, err)
		}
		return cols, rows, nil
	}
}

// FixedSize returns a SizeFunc that always reports cols x rows. It is used
// for headless rendering.
func FixedSize(cols, rows int) SizeFunc {
	return func() (int, int, error) {
		return cols, rows, nil
	}
}

type flusher interface {
	Flush() error
}

// Compositor owns the pixel plane and the escape sequence buffer that
// mirrors it. The buffer is laid out once per size and afterwards only the
// three digit color fields are rewritten, so a frame costs no allocations.
type Compositor struct {
	out  io.Writer
	size SizeFunc

	cols, rows int
	fb         *Framebuffer
	buf        []byte // Cursor home followed by cols*rows cells
}

// NewCompositor creates a compositor writing to out, sized by size.
func NewCompositor(out io.Writer, size SizeFunc) (*Compositor, error) {
	c := &Compositor{out: out, size: size}
	if _, err := c.Resize(); err != nil {
		return nil, err
	}
	return c, nil
}

// Resize queries the size and rebuilds the plane and escape buffer when it
// changed. It reports whether anything was rebuilt.
func (c *Compositor) Resize() (bool, error) {
	cols, rows, err := c.size()
	if err != nil {
		return false, err
	}
	if cols < 0 || rows < 0 {
		return false, fmt.Errorf("%w: invalid terminal size %dx%d", models.ErrIO, cols, rows)
	}
	if c.fb != nil && cols == c.cols && rows == c.rows {
		return false, nil
	}

	c.cols, c.rows = cols, rows
	c.fb = NewFramebuffer(cols, rows*2)

	c.buf = make([]byte, 0, len(ansi.CursorHomePosition)+cols*rows*cellLen)
	c.buf = append(c.buf, ansi.CursorHomePosition...)
	for range cols * rows {
		c.buf = append(c.buf, cellColors...)
		c.buf = append(c.buf, cellGlyph...)
	}
	return true, nil
}

// PlaneSize returns the pixel plane size: cols x rows*2.
func (c *Compositor) PlaneSize() (width, height int) {
	return c.fb.Width, c.fb.Height
}

// Clear fills the plane with a solid color.
func (c *Compositor) Clear(col Color) {
	c.fb.Clear(col)
}

// Set sets the pixel at (x, y). Out of range coordinates are ignored.
func (c *Compositor) Set(x, y int, col Color) {
	c.fb.SetPixel(x, y, col)
}

// At returns the pixel at (x, y).
func (c *Compositor) At(x, y int) Color {
	return c.fb.GetPixel(x, y)
}

// Encode copies the plane into the escape buffer.
func (c *Compositor) Encode() {
	for y := 0; y < c.fb.Height; y++ {
		for x := 0; x < c.fb.Width; x++ {
			c.encodePixel(x, y, c.fb.Pixels[y*c.fb.Width+x])
		}
	}
}

// pixelOffset returns the index of the red channel digits for pixel (x, y).
func (c *Compositor) pixelOffset(x, y int) int {
	cell := (y/2)*c.cols + x
	return len(ansi.CursorHomePosition) + cell*cellLen + (y%2)*colorSeqLen + channelOff
}

func (c *Compositor) encodePixel(x, y int, col Color) {
	pos := c.pixelOffset(x, y)
	putChannel(c.buf[pos:], col.R)
	putChannel(c.buf[pos+channelStep:], col.G)
	putChannel(c.buf[pos+2*channelStep:], col.B)
}

// putChannel writes v as exactly three zero padded ASCII digits.
func putChannel(b []byte, v uint8) {
	b[0] = '0' + v/100
	b[1] = '0' + v/10%10
	b[2] = '0' + v%10
}

// Bytes returns the escape buffer as of the last Encode. The slice is
// reused by later frames.
func (c *Compositor) Bytes() []byte {
	return c.buf
}

// Display encodes the plane, homes the cursor and writes the whole frame in
// one call, flushing the writer if it buffers.
func (c *Compositor) Display() error {
	c.Encode()

	n, err := c.out.Write(c.buf)
	if err == nil && n < len(c.buf) {
		err = io.ErrShortWrite
	}
	if err != nil {
		return fmt.Errorf("%w: write frame: %w", models.ErrIO, err)
	}

	if f, ok := c.out.(flusher); ok {
		if err := f.Flush(); err != nil {
			return fmt.Errorf("%w: flush frame: %w", models.ErrIO, err)
		}
	}
	return nil
}

// Image returns a copy of the plane as an image, top row first.
func (c *Compositor) Image() *image.RGBA {
	return c.fb.ToImage()
}

// Enter switches to the alternate screen and hides the cursor.
func (c *Compositor) Enter() error {
	return c.writeControl(ansi.SetAltScreenSaveCursorMode + ansi.HideCursor + ansi.EraseEntireScreen)
}

// Leave resets colors, shows the cursor and restores the main screen.
func (c *Compositor) Leave() error {
	return c.writeControl(ansi.ResetStyle + ansi.ShowCursor + ansi.ResetAltScreenSaveCursorMode)
}

func (c *Compositor) writeControl(seq string) error {
	if _, err := io.WriteString(c.out, seq); err != nil {
		return fmt.Errorf("%w: terminal control: %w", models.ErrIO, err)
	}
	if f, ok := c.out.(flusher); ok {
		if err := f.Flush(); err != nil {
			return fmt.Errorf("%w: terminal control: %w", models.ErrIO, err)
		}
	}
	return nil
}
