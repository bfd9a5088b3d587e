package frame

import (
	"image"
	imgcolor "image/color"
)

// Mask values written by the localizer's debug entry point. They are for looking at,
// nothing downstream reads them.
const (
	MaskUnused byte = 0
	MaskKept   byte = 1
	MaskCenter byte = 4
)

// MaskPalette maps mask values to overlay colours: unused pixels are transparent, kept
// pixels green, the chosen center blue. Values without an entry render transparent.
var MaskPalette = imgcolor.Palette{
	imgcolor.RGBA{},                 // MaskUnused
	imgcolor.RGBA{G: 0xff, A: 0xff}, // MaskKept
	imgcolor.RGBA{},                 // 2
	imgcolor.RGBA{},                 // 3
	imgcolor.RGBA{B: 0xff, A: 0xff}, // MaskCenter
}

// Mask is a caller-owned width*height byte buffer.
type Mask struct {
	Width  int
	Height int
	Data   []byte
}

// NewMask allocates a mask for a frame of the given size.
func NewMask(width, height int) Mask {
	return Mask{Width: width, Height: height, Data: make([]byte, width*height)}
}

// Count returns how many cells hold v.
func (m Mask) Count(v byte) int {
	n := 0
	for _, b := range m.Data {
		if b == v {
			n++
		}
	}
	return n
}

// Image returns the mask as a paletted image suitable for PNG encoding.
func (m Mask) Image() *image.Paletted {
	img := image.NewPaletted(image.Rect(0, 0, m.Width, m.Height), MaskPalette)
	for i, v := range m.Data {
		if i >= len(img.Pix) {
			break
		}
		if int(v) >= len(MaskPalette) {
			v = MaskUnused
		}
		img.Pix[i] = v
	}
	return img
}
