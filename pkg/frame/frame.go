// Package frame wraps the raw camera buffers: a big-endian RGB565 frame and the
// one-byte-per-pixel debug mask the localizer can fill in.
package frame

import (
	"image"
	imgcolor "image/color"

	"beadsorter/pkg/color"
)

// Frame is a row-major capture, 2 bytes per pixel, big-endian RGB565.
type Frame struct {
	Width  int
	Height int
	Data   []byte
}

// New allocates a zeroed (black) frame.
func New(width, height int) Frame {
	return Frame{Width: width, Height: height, Data: make([]byte, width*height*2)}
}

// Valid reports whether the geometry is non-empty and the buffer is large enough to
// hold it.
func (f Frame) Valid() bool {
	return f.Width > 0 && f.Height > 0 && len(f.Data) >= f.Width*f.Height*2
}

// Pixel returns the packed RGB565 value at x, y. The caller checks bounds.
func (f Frame) Pixel(x, y int) uint16 {
	i := (y*f.Width + x) * 2
	return uint16(f.Data[i])<<8 | uint16(f.Data[i+1])
}

// SetPixel stores a packed RGB565 value at x, y. Out of range writes are dropped.
func (f Frame) SetPixel(x, y int, p uint16) {
	if x < 0 || y < 0 || x >= f.Width || y >= f.Height {
		return
	}
	i := (y*f.Width + x) * 2
	if i+1 >= len(f.Data) {
		return
	}
	f.Data[i] = byte(p >> 8)
	f.Data[i+1] = byte(p)
}

// RGB decodes the pixel at x, y.
func (f Frame) RGB(x, y int) color.RGB {
	return color.FromRGB565(f.Pixel(x, y))
}

func (f Frame) ColorModel() imgcolor.Model {
	return color.Model
}

func (f Frame) Bounds() image.Rectangle {
	return image.Rect(0, 0, f.Width, f.Height)
}

func (f Frame) At(x, y int) imgcolor.Color {
	if !(image.Point{X: x, Y: y}.In(f.Bounds())) || !f.Valid() {
		return color.RGB{}
	}
	return f.RGB(x, y)
}

// FromImage packs img into an RGB565 frame the same way the bench tools convert saved
// captures: each channel is scaled down by (v * max) / 255.
func FromImage(img image.Image) Frame {
	b := img.Bounds()
	f := New(b.Dx(), b.Dy())
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			c := color.FromColor(img.At(b.Min.X+x, b.Min.Y+y))
			f.SetPixel(x, y, color.ToRGB565(c))
		}
	}
	return f
}

// Fill paints the whole frame with one colour.
func (f Frame) Fill(c color.RGB) {
	p := color.ToRGB565(c)
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			f.SetPixel(x, y, p)
		}
	}
}
