// Package color is the colour model used to tell beads apart: RGB565 decoding from the
// camera, a cheap squared RGB distance for locating the bead, and a CIE Lab conversion
// whose squared component distance is the similarity metric for everything else.
package color

import imgcolor "image/color"

// RGB is an 8-bit per channel colour sample.
type RGB struct {
	R, G, B uint8
}

// FromRGB565 unpacks a 5/6/5 pixel and rescales each channel to 0-255 with integer
// truncation, i.e. (v * 255) / max.
func FromRGB565(p uint16) RGB {
	r := (p >> 11) & 0x1f
	g := (p >> 5) & 0x3f
	b := p & 0x1f
	return RGB{
		R: uint8(r * 255 / 31),
		G: uint8(g * 255 / 63),
		B: uint8(b * 255 / 31),
	}
}

// ToRGB565 packs c the way the offline tools convert PNG captures back into camera
// frames. FromRGB565(ToRGB565(c)) is not the identity: the low bits are lost.
func ToRGB565(c RGB) uint16 {
	r := uint16(c.R) * 31 / 255
	g := uint16(c.G) * 63 / 255
	b := uint16(c.B) * 31 / 255
	return r<<11 | g<<5 | b
}

// Dist is the squared euclidean distance in RGB space.
func (c RGB) Dist(other RGB) uint32 {
	dr := int32(c.R) - int32(other.R)
	dg := int32(c.G) - int32(other.G)
	db := int32(c.B) - int32(other.B)
	return uint32(dr*dr + dg*dg + db*db)
}

// RGBA implements image/color.Color, so samples can be drawn or fed to other colour
// libraries directly.
func (c RGB) RGBA() (r, g, b, a uint32) {
	r = uint32(c.R) * 0x101
	g = uint32(c.G) * 0x101
	b = uint32(c.B) * 0x101
	return r, g, b, 0xffff
}

// Model converts any colour to an RGB, dropping alpha.
var Model = imgcolor.ModelFunc(func(c imgcolor.Color) imgcolor.Color {
	return FromColor(c)
})

// FromColor converts a standard library colour to RGB. Alpha is ignored; captures are
// opaque.
func FromColor(c imgcolor.Color) RGB {
	if rgb, ok := c.(RGB); ok {
		return rgb
	}
	r, g, b, _ := c.RGBA()
	return RGB{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8)}
}

func min3(a, b, c uint8) uint8 {
	if c < b {
		b = c
	}
	if b < a {
		a = b
	}
	return a
}

func max3(a, b, c uint8) uint8 {
	if b < a {
		b = a
	}
	if c < b {
		c = b
	}
	return c
}

// Saturation is the chroma of c, max channel minus min channel.
func (c RGB) Saturation() uint8 {
	return max3(c.R, c.G, c.B) - min3(c.R, c.G, c.B)
}

// Luminance is the plain channel average, (r+g+b)/3.
func (c RGB) Luminance() uint8 {
	return uint8((uint32(c.R) + uint32(c.G) + uint32(c.B)) / 3)
}
