package oled

import (
	"errors"
	"fmt"
	"image"
	"iter"
	"log"

	"github.com/BeatGlow/oled/pixel"
)

// ErrSinkBounds is returned for sinks that do not start at the origin.
var ErrSinkBounds = errors.New("oled: sink bounds must start at (0, 0)")

// Buffered is a double buffered drawing plane in front of a Sink.
//
// Drawing only changes the current plane. Flush compares it with the reference
// plane, which holds what the sink was last sent, and forwards only the pixels
// that differ.
type Buffered[C pixel.Color] struct {
	current   *pixel.Framebuffer[C]
	reference *pixel.Framebuffer[C]
	sink      Sink[C]
	full      bool
}

// NewBuffered sets up a double buffer for sink over the caller's storage. Both
// buffers must be codec.BufferSize bytes for the sink's size.
//
// The reference buffer is taken as what the sink currently shows; zeroed
// storage means the sink is assumed to show the zero code color everywhere.
func NewBuffered[C pixel.Color](codec *pixel.Codec[C], current, reference []byte, sink Sink[C]) (*Buffered[C], error) {
	r := sink.Bounds()
	if r.Min != (image.Point{}) {
		return nil, fmt.Errorf("%w, got %s", ErrSinkBounds, r)
	}

	size := r.Size()
	cur, err := pixel.NewFramebuffer(codec, current, size.X, size.Y)
	if err != nil {
		return nil, fmt.Errorf("oled: current plane: %w", err)
	}
	ref, err := pixel.NewFramebuffer(codec, reference, size.X, size.Y)
	if err != nil {
		return nil, fmt.Errorf("oled: reference plane: %w", err)
	}

	return &Buffered[C]{
		current:   cur,
		reference: ref,
		sink:      sink,
	}, nil
}

// Size returns the plane dimensions.
func (b *Buffered[C]) Size() image.Point {
	return b.current.Size()
}

func (b *Buffered[C]) Bounds() image.Rectangle {
	return b.current.Bounds()
}

// Pixel returns the color at (x, y) of the current plane.
func (b *Buffered[C]) Pixel(x, y int) C {
	return b.current.Pixel(x, y)
}

// SetPixel sets the color at (x, y) of the current plane.
func (b *Buffered[C]) SetPixel(x, y int, c C) {
	b.current.SetPixel(x, y, c)
}

func (b *Buffered[C]) DrawIter(pixels iter.Seq[pixel.Pixel[C]]) {
	b.current.DrawIter(pixels)
}

func (b *Buffered[C]) FillContiguous(r image.Rectangle, colors iter.Seq[C]) {
	b.current.FillContiguous(r, colors)
}

func (b *Buffered[C]) FillSolid(r image.Rectangle, c C) {
	b.current.FillSolid(r, c)
}

func (b *Buffered[C]) Clear(c C) {
	b.current.Clear(c)
}

// Image returns the current plane. It must not be modified directly.
func (b *Buffered[C]) Image() image.Image {
	return b.current
}

// Invalidate forgets what the sink shows, the next Flush sends every pixel.
func (b *Buffered[C]) Invalidate() {
	b.full = true
}

// Flush sends every pixel that changed since the last flush to the sink and
// commits them. It returns the number of pixels sent.
//
// If the sink fails, the plane is invalidated and the next flush resends
// everything.
func (b *Buffered[C]) Flush() (int, error) {
	var changed []pixel.Pixel[C]

	size := b.current.Size()
	if b.full {
		changed = make([]pixel.Pixel[C], 0, size.X*size.Y)
		for y := 0; y < size.Y; y++ {
			for x := 0; x < size.X; x++ {
				changed = append(changed, pixel.Px(x, y, b.current.Pixel(x, y)))
			}
		}
		// Both planes share the codec and size.
		if err := b.reference.CopyFrom(b.current); err != nil {
			return 0, fmt.Errorf("oled: resync reference plane: %w", err)
		}
		b.full = false
	} else {
		for y := 0; y < size.Y; y++ {
			for x := 0; x < size.X; x++ {
				if c := b.current.Pixel(x, y); c != b.reference.Pixel(x, y) {
					b.reference.SetPixel(x, y, c)
					changed = append(changed, pixel.Px(x, y, c))
				}
			}
		}
	}

	if debug {
		log.Printf("oled: display updated (%d/%d changed pixels)", len(changed), size.X*size.Y)
	}

	n := len(changed)
	if err := b.sink.DrawPixels(changed); err != nil {
		b.full = true
		return 0, fmt.Errorf("oled: draw %d pixels: %w", n, err)
	}
	if err := b.sink.Flush(); err != nil {
		b.full = true
		return 0, fmt.Errorf("oled: flush: %w", err)
	}
	return n, nil
}
