package pixel

import "image/color"

// Models for the standard color types.
var (
	MonoModel   color.Model = color.ModelFunc(monoModel)
	Gray2Model  color.Model = color.ModelFunc(gray2Model)
	Gray4Model  color.Model = color.ModelFunc(gray4Model)
	RGB111Model color.Model = color.ModelFunc(rgb111Model)
	RGB332Model color.Model = color.ModelFunc(rgb332Model)
	CRGB16Model color.Model = color.ModelFunc(crgb16Model)
)

var (
	Off = Mono{false}
	On  = Mono{true}
)

// Mono represents a 1-bit monochrome color.
type Mono struct {
	On bool
}

func (c Mono) RGBA() (r, g, b, a uint32) {
	if c.On {
		return 0xffff, 0xffff, 0xffff, 0xffff
	}
	return 0, 0, 0, 0xffff
}

func monoModel(c color.Color) color.Color {
	if _, ok := c.(Mono); ok {
		return c
	}
	r, g, b, _ := c.RGBA()

	// These coefficients (the fractions 0.299, 0.587 and 0.114) are the same
	// as those given by the JFIF specification and used by func RGBToYCbCr in
	// ycbcr.go.
	//
	// Note that 19595 + 38470 + 7471 equals 65536.
	//
	// The 31 is 16 + 15. The 16 is the same as used in RGBToYCbCr. The 15 is
	// because the return value is 1 bit color, not 16 bit color.
	y := (19595*r + 38470*g + 7471*b + 1<<15) >> 31

	return Mono{On: y != 0}
}

// luma returns the 16-bit luminance of c.
func luma(c color.Color) uint32 {
	r, g, b, _ := c.RGBA()
	return (299*r + 587*g + 114*b + 500) / 1000
}

// Gray2 represents a 2-bit grayscale color, Y is in the range 0-3.
type Gray2 struct {
	Y uint8
}

func (c Gray2) RGBA() (r, g, b, a uint32) {
	y := uint32(c.Y&0x3) * 0x5555
	return y, y, y, 0xffff
}

func gray2Model(c color.Color) color.Color {
	if _, ok := c.(Gray2); ok {
		return c
	}
	return Gray2{Y: uint8(luma(c) >> 14)}
}

// Gray4 represents a 4-bit grayscale color, Y is in the range 0-15.
type Gray4 struct {
	Y uint8
}

func (c Gray4) RGBA() (r, g, b, a uint32) {
	// 0xf * 0x1111 = 0xffff
	y := uint32(c.Y&0xf) * 0x1111
	return y, y, y, 0xffff
}

func gray4Model(c color.Color) color.Color {
	if _, ok := c.(Gray4); ok {
		return c
	}
	return Gray4{Y: uint8(luma(c) >> 12)}
}

// RGB111 represents a 3-bit color with one bit per channel, as used by
// e-paper and memory LCD panels with a tiny palette.
type RGB111 struct {
	// CIgnore, 1, CRed, 1, CGreen, 1, CBlue, 1
	V uint8
}

func (c RGB111) RGBA() (r, g, b, a uint32) {
	if c.V&0x4 != 0 {
		r = 0xffff
	}
	if c.V&0x2 != 0 {
		g = 0xffff
	}
	if c.V&0x1 != 0 {
		b = 0xffff
	}
	return r, g, b, 0xffff
}

func rgb111Model(c color.Color) color.Color {
	if _, ok := c.(RGB111); ok {
		return c
	}
	r, g, b, _ := c.RGBA()
	return RGB111{V: uint8(r>>15<<2 | g>>15<<1 | b>>15)}
}

// RGB332 represents an 8-bit 3-3-2 RGB color.
type RGB332 struct {
	// CRed, 3, CGreen, 3, CBlue, 2
	V uint8
}

func (c RGB332) RGBA() (r, g, b, a uint32) {
	r = uint32(c.V>>5) * 0xffff / 7
	g = uint32(c.V>>2&0x7) * 0xffff / 7
	b = uint32(c.V&0x3) * 0x5555
	return r, g, b, 0xffff
}

func rgb332Model(c color.Color) color.Color {
	if _, ok := c.(RGB332); ok {
		return c
	}
	r, g, b, _ := c.RGBA()
	return RGB332{V: uint8(r>>13<<5 | g>>13<<2 | b>>14)}
}

// CRGB16 represents a 16-bit 5-6-5 RGB color.
//
// It is wider than a byte and can therefore not be packed in a Framebuffer, it
// is the native format of most color TFT controllers.
type CRGB16 struct {
	// CRed, 5, CGreen, 6, CBlue, 5
	V uint16
}

func (c CRGB16) RGBA() (r, g, b, a uint32) {
	// Build a 5- or 6-bit value at the top of the low byte of each component.
	red := (c.V & 0xF800) >> 8
	grn := (c.V & 0x07E0) >> 3
	blu := (c.V & 0x001F) << 3
	// Duplicate the high bits in the low bits.
	red |= red >> 5
	grn |= grn >> 6
	blu |= blu >> 5
	// Duplicate the whole value in the high byte.
	red |= red << 8
	grn |= grn << 8
	blu |= blu << 8
	return uint32(red), uint32(grn), uint32(blu), 0xffff
}

func crgb16Model(c color.Color) color.Color {
	switch c := c.(type) {
	case CRGB16:
		return c
	case Mono:
		if c.On {
			return CRGB16{0xffff}
		}
		return CRGB16{}
	default:
		r, g, b, _ := c.RGBA()
		r = (r & 0xF800)
		g = (g & 0xFC00) >> 5
		b = (b & 0xF800) >> 11
		return CRGB16{uint16(r | g | b)}
	}
}
