package pixel

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"iter"
	"math"
)

// Framebuffer errors.
var (
	ErrSize       = errors.New("pixel: invalid framebuffer size")
	ErrBufferSize = errors.New("pixel: buffer length does not match framebuffer size")
	ErrAlignment  = errors.New("pixel: width is not a multiple of the pixels per byte")
)

// Pixel is a colored point.
type Pixel[C any] struct {
	image.Point
	Color C
}

// Px is shorthand for a Pixel at (x, y).
func Px[C any](x, y int, c C) Pixel[C] {
	return Pixel[C]{Point: image.Point{X: x, Y: y}, Color: c}
}

// Framebuffer is a packed raster of colors of type C over caller supplied storage.
//
// Pixels are stored row-major with Codec.PixelsPerByte pixels in each byte, the
// leftmost pixel of a byte occupies the least significant bits. Rows start on a
// byte boundary.
type Framebuffer[C Color] struct {
	// Pix holds the packed pixels. It is owned by the framebuffer for its lifetime.
	Pix []byte

	// Stride is the Pix stride (in bytes) between vertically adjacent pixels.
	Stride int

	// Rect is the framebuffer bounding box, it always starts at (0, 0).
	Rect image.Rectangle

	codec *Codec[C]
	ppb   int
	depth int
	mask  uint8
}

// NewFramebuffer binds a w×h framebuffer to buf.
//
// The length of buf must be exactly codec.BufferSize(w, h) and w must be a
// multiple of codec.PixelsPerByte().
func NewFramebuffer[C Color](codec *Codec[C], buf []byte, w, h int) (*Framebuffer[C], error) {
	if w < 0 || h < 0 {
		return nil, fmt.Errorf("%w %dx%d", ErrSize, w, h)
	}
	if h != 0 && w > math.MaxInt/h/codec.Depth() {
		return nil, fmt.Errorf("%w %dx%d overflows", ErrSize, w, h)
	}
	ppb := codec.PixelsPerByte()
	if w%ppb != 0 {
		return nil, fmt.Errorf("%w: width %d, %d pixels per byte", ErrAlignment, w, ppb)
	}
	if size := codec.BufferSize(w, h); len(buf) != size {
		return nil, fmt.Errorf("%w: %dx%d at %d bpp needs %d bytes, got %d", ErrBufferSize, w, h, codec.Depth(), size, len(buf))
	}
	return &Framebuffer[C]{
		Pix:    buf,
		Stride: w / ppb,
		Rect:   image.Rect(0, 0, w, h),
		codec:  codec,
		ppb:    ppb,
		depth:  codec.Depth(),
		mask:   codec.Mask(),
	}, nil
}

// Codec used to pack the pixels.
func (f *Framebuffer[C]) Codec() *Codec[C] {
	return f.codec
}

// Size returns the framebuffer dimensions.
func (f *Framebuffer[C]) Size() image.Point {
	return f.Rect.Size()
}

func (f *Framebuffer[C]) Bounds() image.Rectangle {
	return f.Rect
}

func (f *Framebuffer[C]) ColorModel() color.Model {
	return f.codec.Model
}

// PixOffset returns the byte offset and the bit shift of the pixel at (x, y).
func (f *Framebuffer[C]) PixOffset(x, y int) (int, uint) {
	return y*f.Stride + x/f.ppb, uint(f.depth * (x % f.ppb))
}

func (f *Framebuffer[C]) get(x, y int) C {
	index, shift := f.PixOffset(x, y)
	return f.codec.Decode(f.Pix[index] >> shift & f.mask)
}

func (f *Framebuffer[C]) set(x, y int, c C) {
	index, shift := f.PixOffset(x, y)
	f.Pix[index] = f.Pix[index]&^(f.mask<<shift) | f.codec.Encode(c)<<shift
}

// Pixel returns the color at (x, y), or the zero code color when out of bounds.
func (f *Framebuffer[C]) Pixel(x, y int) C {
	if !(image.Point{X: x, Y: y}).In(f.Rect) {
		return f.codec.Decode(0)
	}
	return f.get(x, y)
}

// SetPixel sets the color at (x, y), out of bounds points are ignored.
func (f *Framebuffer[C]) SetPixel(x, y int, c C) {
	if !(image.Point{X: x, Y: y}).In(f.Rect) {
		return
	}
	f.set(x, y, c)
}

func (f *Framebuffer[C]) At(x, y int) color.Color {
	if !(image.Point{X: x, Y: y}).In(f.Rect) {
		return color.Transparent
	}
	return f.get(x, y)
}

func (f *Framebuffer[C]) Set(x, y int, c color.Color) {
	if !(image.Point{X: x, Y: y}).In(f.Rect) {
		return
	}
	f.set(x, y, f.codec.Convert(c))
}

// DrawIter sets every pixel, pixels outside of the framebuffer are dropped.
func (f *Framebuffer[C]) DrawIter(pixels iter.Seq[Pixel[C]]) {
	for p := range pixels {
		if p.In(f.Rect) {
			f.set(p.X, p.Y, p.Color)
		}
	}
}

// FillContiguous fills the part of r inside the framebuffer, in row-major
// order, with the colors from the sequence. Cells left over when the sequence
// ends are not changed, surplus colors are ignored.
func (f *Framebuffer[C]) FillContiguous(r image.Rectangle, colors iter.Seq[C]) {
	r = r.Intersect(f.Rect)
	if r.Empty() {
		return
	}
	x, y := r.Min.X, r.Min.Y
	for c := range colors {
		f.set(x, y, c)
		if x++; x == r.Max.X {
			x = r.Min.X
			if y++; y == r.Max.Y {
				return
			}
		}
	}
}

// FillSolid sets every pixel of r inside the framebuffer to c.
func (f *Framebuffer[C]) FillSolid(r image.Rectangle, c C) {
	r = r.Intersect(f.Rect)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			f.set(x, y, c)
		}
	}
}

// Clear sets every pixel to c.
func (f *Framebuffer[C]) Clear(c C) {
	if f.codec.Encode(c) == 0 {
		// A zero byte decodes to c at every bit offset.
		clear(f.Pix)
		return
	}
	f.FillSolid(f.Rect, c)
}

// CopyFrom copies all pixels from src, which must have the same size.
func (f *Framebuffer[C]) CopyFrom(src *Framebuffer[C]) error {
	if src.Rect != f.Rect || len(src.Pix) != len(f.Pix) {
		return fmt.Errorf("%w: copy %s into %s", ErrSize, src.Rect.Size(), f.Rect.Size())
	}
	copy(f.Pix, src.Pix)
	return nil
}

// Interface check.
var _ draw.Image = (*Framebuffer[Mono])(nil)
