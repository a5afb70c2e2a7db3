package pixel

import (
	"errors"
	"fmt"
	"image/color"
)

// Codec errors.
var (
	ErrBitDepth = errors.New("pixel: native bit width must be between 1 and 8")
	ErrModel    = errors.New("pixel: color model does not convert to the codec color")
)

// Color is a pixel color that can be packed into at most 8 bits.
type Color interface {
	comparable
	color.Color
}

// Built-in codecs.
var (
	MonoCodec   = mustCodec(1, MonoModel, encodeMono, decodeMono)
	Gray2Codec  = mustCodec(2, Gray2Model, func(c Gray2) uint8 { return c.Y }, func(v uint8) Gray2 { return Gray2{Y: v} })
	Gray4Codec  = mustCodec(4, Gray4Model, func(c Gray4) uint8 { return c.Y }, func(v uint8) Gray4 { return Gray4{Y: v} })
	RGB111Codec = mustCodec(3, RGB111Model, func(c RGB111) uint8 { return c.V }, func(v uint8) RGB111 { return RGB111{V: v} })
	RGB332Codec = mustCodec(8, RGB332Model, func(c RGB332) uint8 { return c.V }, func(v uint8) RGB332 { return RGB332{V: v} })
	GrayCodec   = mustCodec(8, color.GrayModel, func(c color.Gray) uint8 { return c.Y }, func(v uint8) color.Gray { return color.Gray{Y: v} })
)

func encodeMono(c Mono) uint8 {
	if c.On {
		return 1
	}
	return 0
}

func decodeMono(v uint8) Mono {
	return Mono{On: v&1 != 0}
}

// Codec packs colors of type C into fixed width bit codes.
//
// The packing width (depth) is chosen once, from the native bit width of the
// color, as the smallest of 1, 2, 4 or 8 bits that can hold it.
type Codec[C Color] struct {
	// Model converts arbitrary colors to C.
	Model color.Model

	bits   int
	depth  int
	mask   uint8
	ppb    int
	encode func(C) uint8
	decode func(uint8) C
}

// NewCodec returns a codec for a color with the given native bit width.
//
// The decode function must accept every code in [0, 1<<Depth()) and encode must
// be its exact inverse.
func NewCodec[C Color](bits int, model color.Model, encode func(C) uint8, decode func(uint8) C) (*Codec[C], error) {
	if bits < 1 || bits > 8 {
		return nil, fmt.Errorf("%w, got %d", ErrBitDepth, bits)
	}
	if model == nil || encode == nil || decode == nil {
		return nil, errors.New("pixel: codec needs a model, encoder and decoder")
	}
	if _, ok := model.Convert(decode(0)).(C); !ok {
		var zero C
		return nil, fmt.Errorf("%w %T", ErrModel, zero)
	}
	depth := DepthFor(bits)
	return &Codec[C]{
		Model:  model,
		bits:   bits,
		depth:  depth,
		mask:   uint8(1<<depth - 1),
		ppb:    8 / depth,
		encode: encode,
		decode: decode,
	}, nil
}

func mustCodec[C Color](bits int, model color.Model, encode func(C) uint8, decode func(uint8) C) *Codec[C] {
	c, err := NewCodec(bits, model, encode, decode)
	if err != nil {
		panic(err)
	}
	return c
}

// DepthFor returns the packing width for a color with the given native bit width.
func DepthFor(bits int) int {
	switch {
	case bits > 4:
		return 8
	case bits > 2:
		return 4
	case bits > 1:
		return 2
	default:
		return 1
	}
}

// Bits is the native bit width of the color.
func (c *Codec[C]) Bits() int { return c.bits }

// Depth is the number of bits each pixel occupies in a packed buffer.
func (c *Codec[C]) Depth() int { return c.depth }

// Mask has the Depth low bits set.
func (c *Codec[C]) Mask() uint8 { return c.mask }

// PixelsPerByte is the number of pixels sharing one byte.
func (c *Codec[C]) PixelsPerByte() int { return c.ppb }

// Encode returns the bit code for v, only the Depth low bits are ever set.
func (c *Codec[C]) Encode(v C) uint8 {
	return c.encode(v) & c.mask
}

// Decode returns the color for the bit code v, bits above Depth are ignored.
func (c *Codec[C]) Decode(v uint8) C {
	return c.decode(v & c.mask)
}

// Convert converts any color to C using the codec's model.
func (c *Codec[C]) Convert(v color.Color) C {
	if v, ok := v.(C); ok {
		return v
	}
	return c.Model.Convert(v).(C)
}

// BufferSize is the number of bytes needed to store a w×h packed image.
func (c *Codec[C]) BufferSize(w, h int) int {
	return w * h * c.depth / 8
}
