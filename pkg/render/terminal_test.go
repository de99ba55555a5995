package render

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taigrr/termshade/pkg/models"
)

func TestCompositorLayout(t *testing.T) {
	var out bytes.Buffer
	comp, err := NewCompositor(&out, FixedSize(2, 1))
	require.NoError(t, err)

	w, h := comp.PlaneSize()
	assert.Equal(t, 2, w)
	assert.Equal(t, 2, h)

	comp.Set(0, 0, models.RGB(1, 2, 3))     // upper pixel: background
	comp.Set(0, 1, models.RGB(255, 128, 7)) // lower pixel: foreground
	comp.Set(1, 0, models.RGB(10, 200, 99))
	comp.Set(1, 1, models.RGB(0, 0, 0))
	require.NoError(t, comp.Display())

	want := "\x1b[H" +
		"\x1b[48;2;001;002;003m\x1b[38;2;255;128;007m▄" +
		"\x1b[48;2;010;200;099m\x1b[38;2;000;000;000m▄"
	assert.Equal(t, want, out.String())
}

func TestCompositorUpdatesInPlace(t *testing.T) {
	var out bytes.Buffer
	comp, err := NewCompositor(&out, FixedSize(3, 2))
	require.NoError(t, err)

	comp.Clear(models.ColorWhite)
	comp.Encode()
	before := comp.Bytes()
	size := len(before)

	comp.Set(2, 3, models.RGB(12, 34, 56))
	comp.Encode()
	after := comp.Bytes()

	assert.Len(t, after, size, "encoding never changes the buffer length")
	assert.Same(t, &before[0], &after[0], "buffer is reused")

	// Pixel (2, 3) is the foreground of the last cell
	pos := comp.pixelOffset(2, 3)
	assert.Equal(t, "012;034;056", string(after[pos:pos+11]))
	assert.Equal(t, "\x1b[38;2;", string(after[pos-7:pos]))
}

func TestPutChannel(t *testing.T) {
	for _, v := range []uint8{0, 7, 42, 100, 199, 255} {
		b := make([]byte, 3)
		putChannel(b, v)
		assert.Equal(t, fmt.Sprintf("%03d", v), string(b))
	}
}

func TestCompositorSetIgnoresOutOfRange(t *testing.T) {
	comp, err := NewCompositor(io.Discard, FixedSize(2, 1))
	require.NoError(t, err)

	comp.Set(-1, 0, models.ColorRed)
	comp.Set(2, 0, models.ColorRed)
	comp.Set(0, 2, models.ColorRed)
	assert.Equal(t, models.ColorBlack, comp.At(0, 0))
	assert.Equal(t, models.ColorBlack, comp.At(5, 5))
}

func TestCompositorFlushes(t *testing.T) {
	var out bytes.Buffer
	bw := bufio.NewWriterSize(&out, 1<<16)
	comp, err := NewCompositor(bw, FixedSize(4, 2))
	require.NoError(t, err)

	require.NoError(t, comp.Display())
	assert.Equal(t, len(comp.Bytes()), out.Len(), "frame reaches the underlying writer")
}

type shortWriter struct{}

func (shortWriter) Write(p []byte) (int, error) {
	return len(p) - 1, nil
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("broken pipe")
}

func TestCompositorDisplayErrors(t *testing.T) {
	comp, err := NewCompositor(shortWriter{}, FixedSize(2, 1))
	require.NoError(t, err)
	err = comp.Display()
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrIO)
	assert.ErrorIs(t, err, io.ErrShortWrite)

	comp, err = NewCompositor(failingWriter{}, FixedSize(2, 1))
	require.NoError(t, err)
	assert.ErrorIs(t, comp.Display(), models.ErrIO)
}

func TestCompositorSizeError(t *testing.T) {
	sizeErr := fmt.Errorf("%w: no tty", models.ErrIO)
	_, err := NewCompositor(io.Discard, func() (int, int, error) { return 0, 0, sizeErr })
	assert.ErrorIs(t, err, models.ErrIO)
}

func TestCompositorResize(t *testing.T) {
	cols, rows := 2, 1
	comp, err := NewCompositor(io.Discard, func() (int, int, error) { return cols, rows, nil })
	require.NoError(t, err)

	changed, err := comp.Resize()
	require.NoError(t, err)
	assert.False(t, changed)

	cols, rows = 5, 3
	changed, err = comp.Resize()
	require.NoError(t, err)
	assert.True(t, changed)
	w, h := comp.PlaneSize()
	assert.Equal(t, 5, w)
	assert.Equal(t, 6, h)
	assert.Len(t, comp.Bytes(), len(ansi.CursorHomePosition)+15*cellLen)
}

func TestCompositorEnterLeave(t *testing.T) {
	var out bytes.Buffer
	comp, err := NewCompositor(&out, FixedSize(1, 1))
	require.NoError(t, err)

	require.NoError(t, comp.Enter())
	assert.Contains(t, out.String(), ansi.HideCursor)
	assert.Contains(t, out.String(), ansi.SetAltScreenSaveCursorMode)

	out.Reset()
	require.NoError(t, comp.Leave())
	assert.Contains(t, out.String(), ansi.ShowCursor)
	assert.Contains(t, out.String(), ansi.ResetAltScreenSaveCursorMode)
}

func TestCompositorImage(t *testing.T) {
	comp, err := NewCompositor(io.Discard, FixedSize(2, 1))
	require.NoError(t, err)
	comp.Set(1, 1, models.RGB(9, 8, 7))

	img := comp.Image()
	assert.Equal(t, 2, img.Bounds().Dx())
	assert.Equal(t, 2, img.Bounds().Dy())
	r, g, b, a := img.At(1, 1).RGBA()
	assert.Equal(t, []uint32{9 * 0x101, 8 * 0x101, 7 * 0x101, 0xffff}, []uint32{r, g, b, a})
}
