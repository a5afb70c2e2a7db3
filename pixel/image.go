package pixel

import (
	"encoding/binary"
	"image"
	"image/color"
	"image/draw"
)

// Image is a device native pixel layout that remembers which area was written.
//
// Drivers keep their display RAM mirror in one of these images and only
// transfer the dirty area on refresh.
type Image interface {
	draw.Image

	// Clear the image.
	Clear()

	// Fill the image with a single color.
	Fill(color.Color)

	// Dirty returns the smallest rectangle covering every pixel written since
	// the last call to Clean.
	Dirty() image.Rectangle

	// Clean marks the image as transferred.
	Clean()
}

// Buffer holds the pixel values and is a container that is used by the device
// native image formats in this package.
type Buffer struct {
	// Rect is the image bounding box.
	Rect image.Rectangle

	// Pix are the image pixels.
	Pix []byte

	// Stride is the Pix stride (in bytes) between vertically adjacent pixels.
	Stride int

	dirty image.Rectangle
}

func makeBuffer(w, h, stride, size int) Buffer {
	return Buffer{
		Rect:   image.Rect(0, 0, w, h),
		Pix:    make([]byte, size),
		Stride: stride,
		dirty:  image.Rect(0, 0, w, h),
	}
}

// BufferOf wraps pix, which holds h rows of stride bytes, as the buffer of a
// w×h image. The whole image starts out dirty.
func BufferOf(pix []byte, w, h, stride int) Buffer {
	return Buffer{
		Rect:   image.Rect(0, 0, w, h),
		Pix:    pix[:h*stride],
		Stride: stride,
		dirty:  image.Rect(0, 0, w, h),
	}
}

func (p *Buffer) Bounds() image.Rectangle {
	return p.Rect
}

func (p *Buffer) Clear() {
	clear(p.Pix)
	p.dirty = p.Rect
}

func (p *Buffer) Dirty() image.Rectangle {
	return p.dirty
}

func (p *Buffer) Clean() {
	p.dirty = image.Rectangle{}
}

// Rows returns the bytes of rows [y0, y1).
func (p *Buffer) Rows(y0, y1 int) []byte {
	return p.Pix[y0*p.Stride : y1*p.Stride]
}

// Mark adds r to the dirty area.
func (p *Buffer) Mark(r image.Rectangle) {
	p.dirty = p.dirty.Union(r.Intersect(p.Rect))
}

func (p *Buffer) mark(x, y int) {
	p.dirty = p.dirty.Union(image.Rect(x, y, x+1, y+1))
}

func (p *Buffer) fill(value byte) {
	for i := range p.Pix {
		p.Pix[i] = value
	}
	p.dirty = p.Rect
}

// VerticalLSB is a 1-bit per pixel monochrome image where each byte holds a
// column of 8 vertical pixels, least significant bit on top.
//
// This is the page layout of SSD1306 and SH1106 OLED controllers.
type VerticalLSB struct {
	Buffer
}

func NewVerticalLSB(w, h int) *VerticalLSB {
	pages := (h + 7) / 8
	return &VerticalLSB{
		Buffer: makeBuffer(w, h, w, pages*w),
	}
}

func (p *VerticalLSB) ColorModel() color.Model {
	return MonoModel
}

func (p *VerticalLSB) At(x, y int) color.Color {
	if !(image.Point{X: x, Y: y}).In(p.Rect) {
		return color.Transparent
	}

	var (
		pos = y/8*p.Stride + x
		bit = byte(1) << uint(y&7)
	)
	return Mono{
		On: p.Pix[pos]&bit != 0,
	}
}

func (p *VerticalLSB) Set(x, y int, c color.Color) {
	if !(image.Point{X: x, Y: y}).In(p.Rect) {
		return
	}

	var (
		pos = y/8*p.Stride + x
		bit = byte(1) << uint(y&7)
	)
	if monoModel(c).(Mono).On {
		p.Pix[pos] |= bit
	} else {
		p.Pix[pos] &^= bit
	}
	p.mark(x, y)
}

func (p *VerticalLSB) Fill(c color.Color) {
	var value byte
	if monoModel(c).(Mono).On {
		value = 0xff
	}
	p.fill(value)
}

// Page returns the bytes of the 8 pixel high band starting at row page*8.
func (p *VerticalLSB) Page(page int) []byte {
	off := page * p.Stride
	return p.Pix[off : off+p.Stride]
}

// HorizontalNibble is a 4-bit grayscale image where each byte holds two
// horizontally adjacent pixels, the left pixel in the high nibble.
//
// This is the layout of the SSD1322 display RAM.
type HorizontalNibble struct {
	Buffer
}

func NewHorizontalNibble(w, h int) *HorizontalNibble {
	stride := (w + 1) / 2
	return &HorizontalNibble{
		Buffer: makeBuffer(w, h, stride, h*stride),
	}
}

func (p *HorizontalNibble) ColorModel() color.Model {
	return Gray4Model
}

func (p *HorizontalNibble) pixOffset(x, y int) (int, uint) {
	return y*p.Stride + x>>1, uint(4 * (1 - x&1))
}

func (p *HorizontalNibble) At(x, y int) color.Color {
	if !(image.Point{X: x, Y: y}).In(p.Rect) {
		return color.Transparent
	}
	index, shift := p.pixOffset(x, y)
	return Gray4{Y: p.Pix[index] >> shift & 0xf}
}

func (p *HorizontalNibble) Set(x, y int, c color.Color) {
	if !(image.Point{X: x, Y: y}).In(p.Rect) {
		return
	}
	index, shift := p.pixOffset(x, y)
	v := gray4Model(c).(Gray4).Y & 0xf
	p.Pix[index] = p.Pix[index]&^(0xf<<shift) | v<<shift
	p.mark(x, y)
}

func (p *HorizontalNibble) Fill(c color.Color) {
	value := gray4Model(c).(Gray4).Y & 0xf
	p.fill(value | value<<4)
}

// RGB565Image is a 16-bits per pixel 5-6-5-bit RGB image.
type RGB565Image struct {
	Buffer
	Order binary.ByteOrder
}

func NewRGB565Image(w, h int) *RGB565Image {
	return &RGB565Image{
		Buffer: makeBuffer(w, h, w*2, w*2*h),
		Order:  binary.BigEndian,
	}
}

func (p *RGB565Image) ColorModel() color.Model {
	return CRGB16Model
}

func (p *RGB565Image) At(x, y int) color.Color {
	if !(image.Point{X: x, Y: y}).In(p.Rect) {
		return color.Transparent
	}
	return CRGB16{p.Order.Uint16(p.Pix[x*2+y*p.Stride:])}
}

func (p *RGB565Image) Set(x, y int, c color.Color) {
	if !(image.Point{X: x, Y: y}).In(p.Rect) {
		return
	}
	p.Order.PutUint16(p.Pix[x*2+y*p.Stride:], crgb16Model(c).(CRGB16).V)
	p.mark(x, y)
}

func (p *RGB565Image) Fill(c color.Color) {
	value := crgb16Model(c).(CRGB16).V
	bytes := make([]byte, 2)
	p.Order.PutUint16(bytes, value)
	for i, l := 0, len(p.Pix); i < l; i += 2 {
		copy(p.Pix[i:], bytes)
	}
	p.dirty = p.Rect
}

// Interface checks.
var (
	_ Image = (*VerticalLSB)(nil)
	_ Image = (*HorizontalNibble)(nil)
	_ Image = (*RGB565Image)(nil)
)
